package command

import (
	"sync"
	"sync/atomic"
)

// Handle kinds. Each is a signed 32-bit integer; InvalidHandle marks "none".
type (
	WalletHandle     int32
	PoolHandle       int32
	SearchHandle     int32
	BlobReaderHandle int32
	BlobWriterHandle int32
	CommandHandle    int32
)

// InvalidHandle is the sentinel for an absent or closed resource.
const InvalidHandle int32 = -1

var handleSeq atomic.Int32

// NextHandle allocates a process-wide handle value. Values start at 1, are
// shared across kinds and are never reused within the process lifetime.
func NextHandle() int32 {
	return handleSeq.Add(1)
}

// Table maps live handles of one kind to their resources. Lookups do not
// take a lock; inserts and deletes synchronise on the individual entry.
type Table[H ~int32, V any] struct {
	m     sync.Map
	count atomic.Int64
}

// Insert allocates a fresh handle for v.
func (t *Table[H, V]) Insert(v V) H {
	h := H(NextHandle())
	t.m.Store(h, v)
	t.count.Add(1)
	return h
}

// Get returns the resource for h.
func (t *Table[H, V]) Get(h H) (V, bool) {
	v, ok := t.m.Load(h)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Remove deletes h and returns the resource it referenced.
func (t *Table[H, V]) Remove(h H) (V, bool) {
	v, ok := t.m.LoadAndDelete(h)
	if !ok {
		var zero V
		return zero, false
	}
	t.count.Add(-1)
	return v.(V), true
}

// Len is the number of live handles.
func (t *Table[H, V]) Len() int {
	return int(t.count.Load())
}

// Range calls fn for every live handle until fn returns false.
func (t *Table[H, V]) Range(fn func(H, V) bool) {
	t.m.Range(func(k, v any) bool {
		return fn(k.(H), v.(V))
	})
}
