package exportimport

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"hash"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"indy/internal/wallet"
	"indy/internal/wallet/encryption"
	dErrors "indy/pkg/domain-errors"
)

// Writer produces an export stream.
type Writer struct {
	w       io.Writer
	mac     hash.Hash
	seal    func(dst, nonce, pt, ad []byte) []byte
	nonce   []byte
	counter uint64
	closed  bool
}

// NewHeader returns a header with a fresh salt and nonce.
func NewHeader(m encryption.KeyDerivationMethod) (Header, error) {
	salt, err := encryption.NewSalt(m)
	if err != nil {
		return Header{}, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Header{}, dErrors.Wrap(err, dErrors.CodeInvalidState, "read nonce")
	}
	return Header{Method: m, Salt: salt, Nonce: nonce}, nil
}

// NewWriter writes the header and the metadata frame. master is the key
// derived from the export passphrase with h.Method and h.Salt.
func NewWriter(w io.Writer, h Header, master *[encryption.KeySize]byte) (*Writer, error) {
	keys, err := expand(master, h.Nonce)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(keys.enc[:])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "init export cipher")
	}
	ew := &Writer{
		w:     w,
		mac:   hmac.New(sha256.New, keys.mac[:]),
		seal:  aead.Seal,
		nonce: h.Nonce,
	}
	if err := ew.write(h.marshal()); err != nil {
		return nil, err
	}
	md, err := json.Marshal(Metadata{Version: Version, Time: time.Now().Unix()})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "encode export metadata")
	}
	if err := ew.frame(md); err != nil {
		return nil, err
	}
	return ew, nil
}

func (ew *Writer) write(b []byte) error {
	if _, err := ew.w.Write(b); err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "write export")
	}
	ew.mac.Write(b)
	return nil
}

func (ew *Writer) frame(pt []byte) error {
	ct := ew.seal(nil, frameNonce(ew.nonce, ew.counter), pt, nil)
	ew.counter++
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(ct)))
	if err := ew.write(l[:]); err != nil {
		return err
	}
	return ew.write(ct)
}

// WriteRecord appends one decrypted record.
func (ew *Writer) WriteRecord(r wallet.Record) error {
	if ew.closed {
		return dErrors.New(dErrors.CodeInvalidState, "export already finished")
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "encode record")
	}
	return ew.frame(raw)
}

// Close writes the terminator and the trailing MAC. It does not close the
// underlying writer.
func (ew *Writer) Close() error {
	if ew.closed {
		return nil
	}
	ew.closed = true
	if err := ew.write([]byte{0, 0, 0, 0}); err != nil {
		return err
	}
	if _, err := ew.w.Write(ew.mac.Sum(nil)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "write export")
	}
	return nil
}
