package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"

	"indy/pkg/platform/sentinel"
)

// TypeDefault is the registry name of the pebble backend.
const TypeDefault = "default"

var (
	metadataKey  = []byte{'m'}
	recordPrefix = byte('r')
)

// PebbleBackend keeps each wallet in its own pebble database under
// <root>/<wallet id>.
type PebbleBackend struct {
	root string
}

// pebbleConfig is the storage_config understood by the backend.
type pebbleConfig struct {
	Path string `json:"path"`
}

// NewPebble creates a backend rooted at dir.
func NewPebble(root string) *PebbleBackend {
	return &PebbleBackend{root: root}
}

func (b *PebbleBackend) dir(id, config string) (string, error) {
	root := b.root
	if config != "" {
		var cfg pebbleConfig
		if err := json.Unmarshal([]byte(config), &cfg); err != nil {
			return "", fmt.Errorf("storage config: %w", sentinel.ErrInvalidInput)
		}
		if cfg.Path != "" {
			root = cfg.Path
		}
	}
	if id == "" || filepath.Base(id) != id || id == "." || id == ".." {
		return "", fmt.Errorf("wallet id %q: %w", id, sentinel.ErrInvalidInput)
	}
	return filepath.Join(root, id), nil
}

func exists(dir string) bool {
	_, err := os.Stat(dir)
	return err == nil
}

func (b *PebbleBackend) Create(_ context.Context, id, config, _ string, metadata []byte) error {
	dir, err := b.dir(id, config)
	if err != nil {
		return err
	}
	if exists(dir) {
		return sentinel.ErrAlreadyExists
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o700); err != nil {
		return fmt.Errorf("create wallet root: %w", err)
	}
	db, err := pebble.Open(dir, &pebble.Options{ErrorIfExists: true})
	if err != nil {
		return fmt.Errorf("create wallet db: %w", err)
	}
	if err := db.Set(metadataKey, metadata, pebble.Sync); err != nil {
		_ = db.Close()
		_ = os.RemoveAll(dir)
		return fmt.Errorf("write metadata: %w", err)
	}
	return db.Close()
}

func (b *PebbleBackend) Open(_ context.Context, id, config, _ string) (Storage, error) {
	dir, err := b.dir(id, config)
	if err != nil {
		return nil, err
	}
	if !exists(dir) {
		return nil, sentinel.ErrNotFound
	}
	db, err := pebble.Open(dir, &pebble.Options{
		ErrorIfNotExists: true,
		MemTableSize:     4 << 20,
	})
	if err != nil {
		return nil, fmt.Errorf("open wallet db: %w", err)
	}
	return &pebbleWallet{db: db}, nil
}

func (b *PebbleBackend) Delete(_ context.Context, id, config, _ string) error {
	dir, err := b.dir(id, config)
	if err != nil {
		return err
	}
	if !exists(dir) {
		return sentinel.ErrNotFound
	}
	return os.RemoveAll(dir)
}

type pebbleWallet struct {
	db *pebble.DB
	mu sync.Mutex
}

func pebbleKey(typ, id []byte) []byte {
	return append([]byte{recordPrefix}, recordKey(typ, id)...)
}

func (w *pebbleWallet) get(key []byte) ([]byte, error) {
	value, closer, err := w.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (w *pebbleWallet) Metadata(context.Context) ([]byte, error) {
	return w.get(metadataKey)
}

func (w *pebbleWallet) SetMetadata(_ context.Context, metadata []byte) error {
	return w.db.Set(metadataKey, metadata, pebble.Sync)
}

func (w *pebbleWallet) load(key []byte) (*Record, error) {
	raw, err := w.get(key)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

func (w *pebbleWallet) store(key []byte, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return w.db.Set(key, raw, pebble.Sync)
}

func (w *pebbleWallet) Add(_ context.Context, rec *Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := pebbleKey(rec.Type, rec.ID)
	if _, err := w.get(key); err == nil {
		return sentinel.ErrAlreadyExists
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	c := rec.Clone()
	sortTags(c.Tags)
	return w.store(key, c)
}

func (w *pebbleWallet) Get(_ context.Context, typ, id []byte) (*Record, error) {
	return w.load(pebbleKey(typ, id))
}

func (w *pebbleWallet) mutate(typ, id []byte, fn func(*Record)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := pebbleKey(typ, id)
	rec, err := w.load(key)
	if err != nil {
		return err
	}
	fn(rec)
	return w.store(key, rec)
}

func (w *pebbleWallet) UpdateValue(_ context.Context, typ, id, value, key []byte) error {
	return w.mutate(typ, id, func(r *Record) {
		r.Value, r.Key = value, key
	})
}

func (w *pebbleWallet) UpdateTags(_ context.Context, typ, id []byte, tags []Tag) error {
	return w.mutate(typ, id, func(r *Record) {
		r.Tags = append([]Tag(nil), tags...)
		sortTags(r.Tags)
	})
}

func (w *pebbleWallet) AddTags(_ context.Context, typ, id []byte, tags []Tag) error {
	return w.mutate(typ, id, func(r *Record) {
		r.Tags = MergeTags(r.Tags, tags)
	})
}

func (w *pebbleWallet) DeleteTags(_ context.Context, typ, id []byte, names [][]byte) error {
	return w.mutate(typ, id, func(r *Record) {
		r.Tags = RemoveTags(r.Tags, names)
	})
}

func (w *pebbleWallet) Delete(_ context.Context, typ, id []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := pebbleKey(typ, id)
	if _, err := w.get(key); err != nil {
		return err
	}
	return w.db.Delete(key, pebble.Sync)
}

func (w *pebbleWallet) Search(_ context.Context, typ []byte) (Iterator, error) {
	prefix := []byte{recordPrefix}
	if typ != nil {
		prefix = append(prefix, typePrefix(typ)...)
	}
	snap := w.db.NewSnapshot()
	iter, err := snap.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		_ = snap.Close()
		return nil, fmt.Errorf("open iterator: %w", err)
	}
	iter.First()
	return &pebbleIterator{snap: snap, iter: iter}, nil
}

func (w *pebbleWallet) Close() error {
	return w.db.Close()
}

type pebbleIterator struct {
	snap *pebble.Snapshot
	iter *pebble.Iterator
}

func (it *pebbleIterator) Next() (*Record, error) {
	if !it.iter.Valid() {
		return nil, it.iter.Error()
	}
	value, err := it.iter.ValueAndErr()
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	it.iter.Next()
	return &rec, nil
}

func (it *pebbleIterator) Close() error {
	err := it.iter.Close()
	if serr := it.snap.Close(); err == nil {
		err = serr
	}
	return err
}

// prefixUpperBound computes the exclusive upper bound for a prefix scan.
// Increments the last byte; returns nil if prefix is all 0xFF (full range).
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)

	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}

	return nil
}
