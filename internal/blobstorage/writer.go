package blobstorage

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-tron/base58"

	dErrors "indy/pkg/domain-errors"
)

// Writer appends to a blob in a temporary file until Finalize names it.
type Writer struct {
	cfg  WriterConfig
	file *os.File
	buf  *bufio.Writer
	sum  hash.Hash
	done bool
}

func newWriter(cfg WriterConfig) (*Writer, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIOError, "create tails directory")
	}
	f, err := os.CreateTemp(cfg.BaseDir, ".tails-*")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIOError, "create tails file")
	}
	return &Writer{cfg: cfg, file: f, buf: bufio.NewWriter(f), sum: sha256.New()}, nil
}

// Write appends p.
func (w *Writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, dErrors.New(dErrors.CodeInvalidState, "blob already finalized")
	}
	w.sum.Write(p)
	n, err := w.buf.Write(p)
	if err != nil {
		return n, dErrors.Wrap(err, dErrors.CodeIOError, "write tails file")
	}
	return n, nil
}

// Finalize flushes the blob, moves it to its content address and returns
// its location and the base58 SHA-256 of its contents.
func (w *Writer) Finalize() (location, digest string, err error) {
	if w.done {
		return "", "", dErrors.New(dErrors.CodeInvalidState, "blob already finalized")
	}
	w.done = true
	defer func() {
		if err != nil {
			_ = os.Remove(w.file.Name())
		}
	}()
	if err = w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return "", "", dErrors.Wrap(err, dErrors.CodeIOError, "flush tails file")
	}
	if err = w.file.Sync(); err != nil {
		_ = w.file.Close()
		return "", "", dErrors.Wrap(err, dErrors.CodeIOError, "sync tails file")
	}
	if err = w.file.Close(); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeIOError, "close tails file")
	}
	sum := w.sum.Sum(nil)
	name := hex.EncodeToString(sum)
	path := filepath.Join(w.cfg.BaseDir, name)
	if err = os.Rename(w.file.Name(), path); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeIOError, "rename tails file")
	}
	location = path
	if w.cfg.URIPattern != "" {
		location = strings.ReplaceAll(w.cfg.URIPattern, "{hash}", name)
	}
	return location, base58.Encode(sum), nil
}

// Abort discards an unfinished blob.
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true
	_ = w.file.Close()
	_ = os.Remove(w.file.Name())
}
