package pool

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/mr-tron/base58"

	"indy/pkg/canonical"
	dErrors "indy/pkg/domain-errors"
)

// Merkle tree hashing follows RFC 6962: leaves and interior nodes are
// domain separated by a one byte prefix.
const (
	leafPrefix = 0x00
	nodePrefix = 0x01
)

func leafHash(leaf []byte) []byte {
	h := sha256.New()
	h.Write([]byte{leafPrefix})
	h.Write(leaf)
	return h.Sum(nil)
}

func nodeHash(left, right []byte) []byte {
	h := sha256.New()
	h.Write([]byte{nodePrefix})
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

func merkleRoot(leaves [][]byte) []byte {
	switch len(leaves) {
	case 0:
		h := sha256.Sum256(nil)
		return h[:]
	case 1:
		return leafHash(leaves[0])
	}
	k := 1
	for k<<1 < len(leaves) {
		k <<= 1
	}
	return nodeHash(merkleRoot(leaves[:k]), merkleRoot(leaves[k:]))
}

// LedgerRoot is the base58 Merkle root of txns. Leaves are the canonical
// form of each transaction so formatting differences do not matter.
func LedgerRoot(txns []json.RawMessage) (string, error) {
	leaves := make([][]byte, len(txns))
	for i, txn := range txns {
		var v any
		if err := canonical.Decode(txn, &v); err != nil {
			return "", dErrors.Newf(dErrors.CodeInvalidStructure, "pool transaction %d is malformed", i+1)
		}
		leaf, err := canonical.JSON(v)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "serialise pool transaction")
		}
		leaves[i] = leaf
	}
	return base58.Encode(merkleRoot(leaves)), nil
}

func genesisPath(dir, name string) string {
	return filepath.Join(dir, name, name+".txn")
}

func snapshotPath(dir, name string) string {
	return filepath.Join(dir, name, name+".snapshot.zst")
}

// writeSnapshot stores the caught-up pool ledger next to its genesis file.
func writeSnapshot(path string, txns []json.RawMessage) error {
	var out bytes.Buffer
	enc, err := zstd.NewWriter(&out)
	if err != nil {
		return err
	}
	for _, txn := range txns {
		buf := make([]byte, 0, len(txn)+1)
		if _, err := enc.Write(append(append(buf, txn...), '\n')); err != nil {
			_ = enc.Close()
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out.Bytes(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readSnapshot returns the stored ledger, or nil when there is none.
func readSnapshot(path string) ([]json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, err
	}
	return ParseTxns(plain)
}

// extends reports whether txns starts with every transaction of prefix.
func extends(txns, prefix []json.RawMessage) bool {
	if len(txns) < len(prefix) {
		return false
	}
	for i := range prefix {
		if !bytes.Equal(txns[i], prefix[i]) {
			return false
		}
	}
	return true
}
