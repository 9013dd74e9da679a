package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"indy/pkg/platform/sentinel"
)

// TypeInMem is the registry name of the in-memory backend.
const TypeInMem = "inmem"

// InMemBackend keeps wallets in process memory. Wallets survive close and
// reopen for the lifetime of the backend value.
type InMemBackend struct {
	mu      sync.Mutex
	wallets map[string]*memWallet
}

type memWallet struct {
	mu       sync.RWMutex
	metadata []byte
	records  map[string]*Record
}

// NewInMem creates an empty in-memory backend.
func NewInMem() *InMemBackend {
	return &InMemBackend{wallets: make(map[string]*memWallet)}
}

func (b *InMemBackend) Create(_ context.Context, id, _, _ string, metadata []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.wallets[id]; ok {
		return sentinel.ErrAlreadyExists
	}
	b.wallets[id] = &memWallet{metadata: metadata, records: make(map[string]*Record)}
	return nil
}

func (b *InMemBackend) Open(_ context.Context, id, _, _ string) (Storage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.wallets[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return w, nil
}

func (b *InMemBackend) Delete(_ context.Context, id, _, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.wallets[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(b.wallets, id)
	return nil
}

func (w *memWallet) Metadata(context.Context) ([]byte, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]byte(nil), w.metadata...), nil
}

func (w *memWallet) SetMetadata(_ context.Context, metadata []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metadata = append([]byte(nil), metadata...)
	return nil
}

func (w *memWallet) Add(_ context.Context, rec *Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := string(recordKey(rec.Type, rec.ID))
	if _, ok := w.records[k]; ok {
		return sentinel.ErrAlreadyExists
	}
	c := rec.Clone()
	sortTags(c.Tags)
	w.records[k] = c
	return nil
}

func (w *memWallet) Get(_ context.Context, typ, id []byte) (*Record, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.records[string(recordKey(typ, id))]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

func (w *memWallet) mutate(typ, id []byte, fn func(r *Record)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.records[string(recordKey(typ, id))]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := r.Clone()
	fn(next)
	w.records[string(recordKey(typ, id))] = next
	return nil
}

func (w *memWallet) UpdateValue(_ context.Context, typ, id, value, key []byte) error {
	return w.mutate(typ, id, func(r *Record) {
		r.Value = append([]byte(nil), value...)
		r.Key = append([]byte(nil), key...)
	})
}

func (w *memWallet) UpdateTags(_ context.Context, typ, id []byte, tags []Tag) error {
	return w.mutate(typ, id, func(r *Record) {
		r.Tags = (&Record{Tags: tags}).Clone().Tags
		sortTags(r.Tags)
	})
}

func (w *memWallet) AddTags(_ context.Context, typ, id []byte, tags []Tag) error {
	return w.mutate(typ, id, func(r *Record) {
		r.Tags = MergeTags(r.Tags, (&Record{Tags: tags}).Clone().Tags)
	})
}

func (w *memWallet) DeleteTags(_ context.Context, typ, id []byte, names [][]byte) error {
	return w.mutate(typ, id, func(r *Record) {
		r.Tags = RemoveTags(r.Tags, names)
	})
}

func (w *memWallet) Delete(_ context.Context, typ, id []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := string(recordKey(typ, id))
	if _, ok := w.records[k]; !ok {
		return sentinel.ErrNotFound
	}
	delete(w.records, k)
	return nil
}

func (w *memWallet) Search(_ context.Context, typ []byte) (Iterator, error) {
	w.mu.RLock()
	keys := make([]string, 0, len(w.records))
	prefix := string(typePrefix(typ))
	for k := range w.records {
		if typ == nil || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	recs := make([]*Record, len(keys))
	for i, k := range keys {
		recs[i] = w.records[k]
	}
	w.mu.RUnlock()
	// Stored records are replaced on write, never mutated, so the slice
	// is a stable snapshot.
	return NewSliceIterator(recs), nil
}

func (w *memWallet) Close() error { return nil }
