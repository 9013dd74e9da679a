// Package exportimport implements the wallet backup stream.
//
// Layout:
//
//	"IWAL" | version(1) | kdf id(1) | salt(16) | nonce(12)
//	u32 length | sealed metadata JSON
//	u32 length | sealed record JSON      (repeated)
//	u32 0
//	HMAC-SHA256 over every preceding byte
//
// Frames are sealed with chacha20poly1305 under a key expanded from the
// export passphrase; frame i uses the header nonce with i xored into its
// last eight bytes. Metadata is frame 0.
package exportimport

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"indy/internal/wallet/encryption"
	dErrors "indy/pkg/domain-errors"
)

const (
	Magic     = "IWAL"
	Version   = 1
	NonceSize = chacha20poly1305.NonceSize

	headerSize = len(Magic) + 2 + encryption.SaltSize + NonceSize
	// maxFrame bounds a single record so a corrupt length cannot force a
	// huge allocation.
	maxFrame = 64 << 20
)

// Header is the cleartext prefix of a stream.
type Header struct {
	Method encryption.KeyDerivationMethod
	Salt   []byte
	Nonce  []byte
}

// Metadata is the first sealed frame.
type Metadata struct {
	Version int   `json:"version"`
	Time    int64 `json:"time"`
}

func (h Header) marshal() []byte {
	out := make([]byte, 0, headerSize)
	out = append(out, Magic...)
	out = append(out, Version, h.Method.ID())
	salt := make([]byte, encryption.SaltSize)
	copy(salt, h.Salt)
	out = append(out, salt...)
	return append(out, h.Nonce...)
}

func parseHeader(b []byte) (Header, error) {
	if string(b[:len(Magic)]) != Magic {
		return Header{}, dErrors.New(dErrors.CodeWalletDecodingError, "not a wallet export")
	}
	if b[len(Magic)] != Version {
		return Header{}, dErrors.Newf(dErrors.CodeWalletDecodingError, "unsupported export version %d", b[len(Magic)])
	}
	m, err := encryption.MethodFromID(b[len(Magic)+1])
	if err != nil {
		return Header{}, err
	}
	off := len(Magic) + 2
	h := Header{
		Method: m,
		Salt:   append([]byte(nil), b[off:off+encryption.SaltSize]...),
		Nonce:  append([]byte(nil), b[off+encryption.SaltSize:headerSize]...),
	}
	if m == encryption.KDFRaw {
		h.Salt = nil
	}
	return h, nil
}

// streamKeys are the frame and MAC keys of one stream.
type streamKeys struct {
	enc [encryption.KeySize]byte
	mac [encryption.KeySize]byte
}

func expand(master *[encryption.KeySize]byte, nonce []byte) (*streamKeys, error) {
	r := hkdf.New(sha256.New, master[:], nonce, []byte("wallet export v1"))
	k := &streamKeys{}
	if _, err := io.ReadFull(r, k.enc[:]); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "expand export key")
	}
	if _, err := io.ReadFull(r, k.mac[:]); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "expand export key")
	}
	return k, nil
}

func frameNonce(base []byte, counter uint64) []byte {
	n := append([]byte(nil), base...)
	var c [8]byte
	binary.BigEndian.PutUint64(c[:], counter)
	for i := range c {
		n[NonceSize-8+i] ^= c[i]
	}
	return n
}
