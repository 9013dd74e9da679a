package sync

import (
	"sync"
)

const shardCount = 64

// ShardedRWMutex spreads reader/writer locks over a fixed set of shards
// chosen by a hash of the resource key. Wallet records use it for
// per-record serialisability: writers take the shard exclusively, readers
// share it, and distinct records rarely contend.
type ShardedRWMutex struct {
	shards [shardCount]sync.RWMutex
}

// NewShardedRWMutex creates a new ShardedRWMutex.
func NewShardedRWMutex() *ShardedRWMutex {
	return &ShardedRWMutex{}
}

// Lock acquires the key's shard for writing. Empty keys map to shard 0.
func (m *ShardedRWMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases a write lock taken by Lock.
func (m *ShardedRWMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// RLock acquires the key's shard for reading.
func (m *ShardedRWMutex) RLock(key string) {
	m.shards[m.shardFor(key)].RLock()
}

// RUnlock releases a read lock taken by RLock.
func (m *ShardedRWMutex) RUnlock(key string) {
	m.shards[m.shardFor(key)].RUnlock()
}

// WithLock runs fn while holding the key's write lock.
func (m *ShardedRWMutex) WithLock(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

// WithRLock runs fn while holding the key's read lock.
func (m *ShardedRWMutex) WithRLock(key string, fn func() error) error {
	m.RLock(key)
	defer m.RUnlock(key)
	return fn()
}

func (m *ShardedRWMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % uint32(len(m.shards)))
}

// djb2-style hash; distribution only, not security.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}

// RecordKey joins the components that identify one wallet record.
func RecordKey(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, 0)
		}
		b = append(b, p...)
	}
	return string(b)
}
