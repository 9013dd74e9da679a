// Package storage defines the contract between the wallet service and the
// backends that persist encrypted records. Backends never see plaintext
// except for the values of "~" tags; all other fields arrive encrypted.
package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"sort"
	"sync"
	"sync/atomic"

	"indy/pkg/platform/sentinel"
)

//go:generate mockgen -source=storage.go -destination=mocks/mocks.go -package=mocks Backend,Storage,Iterator

// Tag is one stored tag. Name is always encrypted. Plain tags keep their
// value in cleartext; encrypted tags carry a randomised ciphertext plus a
// deterministic HMAC used for equality.
type Tag struct {
	Name  []byte `json:"n"`
	Value []byte `json:"v"`
	Plain bool   `json:"p,omitempty"`
	HMAC  []byte `json:"h,omitempty"`
}

// Record is an encrypted record. Type and ID are deterministic
// ciphertexts so they can be used as lookup keys. Key is the per-record
// value key, itself encrypted under the wallet's value key.
type Record struct {
	Type  []byte `json:"t"`
	ID    []byte `json:"i"`
	Value []byte `json:"v"`
	Key   []byte `json:"k"`
	Tags  []Tag  `json:"g,omitempty"`
}

// Iterator walks a snapshot of records. Next returns nil, nil at the end.
type Iterator interface {
	Next() (*Record, error)
	Close() error
}

// Storage is one opened wallet.
type Storage interface {
	Metadata(ctx context.Context) ([]byte, error)
	SetMetadata(ctx context.Context, metadata []byte) error
	Add(ctx context.Context, rec *Record) error
	Get(ctx context.Context, typ, id []byte) (*Record, error)
	UpdateValue(ctx context.Context, typ, id, value, key []byte) error
	UpdateTags(ctx context.Context, typ, id []byte, tags []Tag) error
	AddTags(ctx context.Context, typ, id []byte, tags []Tag) error
	DeleteTags(ctx context.Context, typ, id []byte, names [][]byte) error
	Delete(ctx context.Context, typ, id []byte) error
	// Search snapshots every record of typ, or all records when typ is nil.
	Search(ctx context.Context, typ []byte) (Iterator, error)
	Close() error
}

// Backend creates, opens and deletes wallets of one storage type.
// config and credentials are the backend-specific JSON documents passed by
// the host; either may be empty.
type Backend interface {
	Create(ctx context.Context, id, config, credentials string, metadata []byte) error
	Open(ctx context.Context, id, config, credentials string) (Storage, error)
	Delete(ctx context.Context, id, config, credentials string) error
}

// Registry maps storage type names to backends. Lookups read an immutable
// snapshot; registration swaps in a new one.
type Registry struct {
	mu       sync.Mutex
	backends atomic.Pointer[map[string]Backend]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := map[string]Backend{}
	r.backends.Store(&empty)
	return r
}

// Register adds a backend. A name can only be registered once.
func (r *Registry) Register(name string, b Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := *r.backends.Load()
	if _, ok := cur[name]; ok {
		return sentinel.ErrAlreadyExists
	}
	next := make(map[string]Backend, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[name] = b
	r.backends.Store(&next)
	return nil
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := (*r.backends.Load())[name]
	return b, ok
}

// MergeTags returns existing with every tag of add applied, replacing tags
// with the same name.
func MergeTags(existing, add []Tag) []Tag {
	out := make([]Tag, 0, len(existing)+len(add))
	for _, t := range existing {
		if !containsName(add, t.Name) {
			out = append(out, t)
		}
	}
	out = append(out, add...)
	sortTags(out)
	return out
}

// RemoveTags returns existing without the named tags.
func RemoveTags(existing []Tag, names [][]byte) []Tag {
	out := make([]Tag, 0, len(existing))
	for _, t := range existing {
		drop := false
		for _, n := range names {
			if bytes.Equal(n, t.Name) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, t)
		}
	}
	return out
}

func containsName(tags []Tag, name []byte) bool {
	for _, t := range tags {
		if bytes.Equal(t.Name, name) {
			return true
		}
	}
	return false
}

func sortTags(tags []Tag) {
	sort.Slice(tags, func(i, j int) bool { return bytes.Compare(tags[i].Name, tags[j].Name) < 0 })
}

// Clone deep-copies a record so callers cannot alias backend memory.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		Type:  bytes.Clone(r.Type),
		ID:    bytes.Clone(r.ID),
		Value: bytes.Clone(r.Value),
		Key:   bytes.Clone(r.Key),
	}
	if r.Tags != nil {
		out.Tags = make([]Tag, len(r.Tags))
		for i, t := range r.Tags {
			out.Tags[i] = Tag{Name: bytes.Clone(t.Name), Value: bytes.Clone(t.Value), Plain: t.Plain, HMAC: bytes.Clone(t.HMAC)}
		}
	}
	return out
}

// typePrefix is the key prefix shared by all records of typ: a two-byte
// big-endian length followed by the type ciphertext.
func typePrefix(typ []byte) []byte {
	out := make([]byte, 2, 2+len(typ))
	binary.BigEndian.PutUint16(out, uint16(len(typ)))
	return append(out, typ...)
}

// recordKey is the unique key of ⟨typ, id⟩.
func recordKey(typ, id []byte) []byte {
	return append(typePrefix(typ), id...)
}

// sliceIterator serves a materialised snapshot.
type sliceIterator struct {
	recs []*Record
	pos  int
}

// NewSliceIterator iterates recs in order.
func NewSliceIterator(recs []*Record) Iterator {
	return &sliceIterator{recs: recs}
}

func (it *sliceIterator) Next() (*Record, error) {
	if it.pos >= len(it.recs) {
		return nil, nil
	}
	r := it.recs[it.pos]
	it.pos++
	return r, nil
}

func (it *sliceIterator) Close() error {
	it.recs = nil
	return nil
}
