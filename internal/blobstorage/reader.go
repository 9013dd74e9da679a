package blobstorage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"

	dErrors "indy/pkg/domain-errors"
)

// Blob is a verified, read-only tails file.
type Blob struct {
	file *os.File
	size int64
}

// openBlob resolves the file from the base58 digest, or from location when
// the configuration has no base dir, and checks its contents against both
// the digest and the file name.
func openBlob(cfg ReaderConfig, location, digest string) (*Blob, error) {
	want, err := base58.Decode(digest)
	if err != nil || len(want) != sha256.Size {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "invalid tails hash %q", digest)
	}
	name := hex.EncodeToString(want)
	path := filepath.Join(cfg.BaseDir, name)
	if cfg.BaseDir == "" && location != "" {
		path = location
	}
	if filepath.Base(path) != name {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "tails file %s is not named after its hash", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIOError, "open tails file")
	}
	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		_ = f.Close()
		return nil, dErrors.Wrap(err, dErrors.CodeIOError, "read tails file")
	}
	if !bytes.Equal(h.Sum(nil), want) {
		_ = f.Close()
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "tails file %s does not match its hash", path)
	}
	return &Blob{file: f, size: size}, nil
}

// ReadAt reads len(p) bytes at off.
func (b *Blob) ReadAt(p []byte, off int64) (int, error) {
	n, err := b.file.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return n, dErrors.Wrap(err, dErrors.CodeIOError, "read tails file")
	}
	return n, err
}

// Size is the length of the blob in bytes.
func (b *Blob) Size() int64 {
	return b.size
}

func (b *Blob) Close() error {
	return b.file.Close()
}
