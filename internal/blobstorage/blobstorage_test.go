package blobstorage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indy/internal/command"
	dErrors "indy/pkg/domain-errors"
)

func writeBlob(t *testing.T, svc *Service, cfg string, data []byte) (string, string) {
	t.Helper()
	wh, err := svc.OpenWriter(TypeDefault, cfg)
	require.NoError(t, err)
	w, err := svc.CreateBlob(wh)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	location, digest, err := w.Finalize()
	require.NoError(t, err)
	return location, digest
}

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)
	data := []byte("tails contents for a small registry")

	location, digest := writeBlob(t, svc, "", data)
	sum := sha256.Sum256(data)
	assert.Equal(t, filepath.Join(dir, hex.EncodeToString(sum[:])), location)
	assert.Equal(t, base58.Encode(sum[:]), digest)

	rh, err := svc.OpenReader(TypeDefault, `{"base_dir":"`+dir+`"}`)
	require.NoError(t, err)
	blob, err := svc.OpenBlob(rh, location, digest)
	require.NoError(t, err)
	defer blob.Close()

	assert.EqualValues(t, len(data), blob.Size())
	buf := make([]byte, 8)
	_, err = blob.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(buf))
}

func TestURIPattern(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)
	location, _ := writeBlob(t, svc, `{"base_dir":"`+dir+`","uri_pattern":"https://tails.example/{hash}"}`, []byte("x"))
	sum := sha256.Sum256([]byte("x"))
	assert.Equal(t, "https://tails.example/"+hex.EncodeToString(sum[:]), location)
}

func TestReaderRefusesTamperedBlob(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)
	location, digest := writeBlob(t, svc, "", []byte("original"))
	require.NoError(t, os.WriteFile(location, []byte("tampered"), 0o600))

	rh, err := svc.OpenReader(TypeDefault, "")
	require.NoError(t, err)
	_, err = svc.OpenBlob(rh, location, digest)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidStructure))
}

func TestReaderMissingBlob(t *testing.T) {
	svc := NewService(t.TempDir())
	rh, err := svc.OpenReader(TypeDefault, "")
	require.NoError(t, err)
	sum := sha256.Sum256([]byte("never written"))
	_, err = svc.OpenBlob(rh, "", base58.Encode(sum[:]))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeIOError))

	_, err = svc.OpenBlob(rh, "", "not-a-hash")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidStructure))
}

func TestHandlesAndTypes(t *testing.T) {
	svc := NewService(t.TempDir())

	_, err := svc.OpenWriter("s3", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	_, err = svc.OpenReader("default", "{not json")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidStructure))

	_, err = svc.CreateBlob(command.BlobWriterHandle(command.InvalidHandle))
	assert.Error(t, err)
	_, err = svc.OpenBlob(command.BlobReaderHandle(command.InvalidHandle), "", "")
	assert.Error(t, err)
}

func TestWriterAbort(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)
	wh, err := svc.OpenWriter(TypeDefault, "")
	require.NoError(t, err)
	w, err := svc.CreateBlob(wh)
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	w.Abort()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, _, err = w.Finalize()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}
