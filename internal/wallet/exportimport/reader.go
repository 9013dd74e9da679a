package exportimport

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"indy/internal/wallet"
	"indy/internal/wallet/encryption"
	dErrors "indy/pkg/domain-errors"
)

// Reader consumes an export stream. Records are handed out before the
// trailing MAC is checked, so callers must not commit anything until
// Next reports the end of the stream without error.
type Reader struct {
	r       io.Reader
	header  Header
	raw     []byte
	mac     hash.Hash
	open    func(dst, nonce, ct, ad []byte) ([]byte, error)
	counter uint64
	done    bool
}

// NewReader reads the header. Call Init with the derived key before Next.
func NewReader(r io.Reader) (*Reader, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletDecodingError, "read export header")
	}
	h, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, header: h, raw: buf}, nil
}

// Header returns the stream header. Its method and salt select the key
// derivation for the export passphrase.
func (rd *Reader) Header() Header {
	return rd.header
}

// Init installs the stream keys and checks the metadata frame. A wrong
// passphrase fails here with WalletAccessFailed.
func (rd *Reader) Init(master *[encryption.KeySize]byte) error {
	keys, err := expand(master, rd.header.Nonce)
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.New(keys.enc[:])
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "init export cipher")
	}
	rd.mac = hmac.New(sha256.New, keys.mac[:])
	rd.mac.Write(rd.raw)
	rd.open = aead.Open

	pt, err := rd.frame()
	if err != nil {
		return err
	}
	if pt == nil {
		return dErrors.New(dErrors.CodeWalletDecodingError, "export has no metadata")
	}
	var md Metadata
	if err := json.Unmarshal(pt, &md); err != nil || md.Version != Version {
		return dErrors.New(dErrors.CodeWalletDecodingError, "invalid export metadata")
	}
	return nil
}

func (rd *Reader) read(b []byte) error {
	if _, err := io.ReadFull(rd.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return dErrors.New(dErrors.CodeWalletDecodingError, "export is truncated")
		}
		return dErrors.Wrap(err, dErrors.CodeIOError, "read export")
	}
	rd.mac.Write(b)
	return nil
}

// frame returns the next plaintext, or nil at the terminator.
func (rd *Reader) frame() ([]byte, error) {
	var l [4]byte
	if err := rd.read(l[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(l[:])
	if n == 0 {
		return nil, nil
	}
	if n > maxFrame {
		return nil, dErrors.New(dErrors.CodeWalletDecodingError, "export frame too large")
	}
	ct := make([]byte, n)
	if err := rd.read(ct); err != nil {
		return nil, err
	}
	pt, err := rd.open(nil, frameNonce(rd.header.Nonce, rd.counter), ct, nil)
	rd.counter++
	if err != nil {
		code := dErrors.CodeWalletDecodingError
		if rd.counter == 1 {
			code = dErrors.CodeWalletAccessFailed
		}
		return nil, dErrors.Wrap(err, code, "decrypt export frame")
	}
	return pt, nil
}

// Next returns the next record, or nil once the terminator has been read
// and the trailing MAC verified.
func (rd *Reader) Next() (*wallet.Record, error) {
	if rd.done {
		return nil, nil
	}
	if rd.open == nil {
		return nil, dErrors.New(dErrors.CodeInvalidState, "export reader not initialised")
	}
	pt, err := rd.frame()
	if err != nil {
		return nil, err
	}
	if pt == nil {
		rd.done = true
		return nil, rd.verify()
	}
	var rec wallet.Record
	if err := json.Unmarshal(pt, &rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeWalletDecodingError, "decode exported record")
	}
	if rec.Type == "" || rec.ID == "" {
		return nil, dErrors.New(dErrors.CodeWalletDecodingError, "exported record lacks type or id")
	}
	return &rec, nil
}

func (rd *Reader) verify() error {
	want := rd.mac.Sum(nil)
	got := make([]byte, len(want))
	if _, err := io.ReadFull(rd.r, got); err != nil {
		return dErrors.New(dErrors.CodeWalletDecodingError, "export is missing its MAC")
	}
	if !hmac.Equal(want, got) {
		return dErrors.New(dErrors.CodeWalletDecodingError, "export MAC mismatch")
	}
	return nil
}
