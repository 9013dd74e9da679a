package command

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var tbl Table[WalletHandle, string]

	h1 := tbl.Insert("alpha")
	h2 := tbl.Insert("beta")
	require.NotEqual(t, h1, h2)
	assert.Positive(t, int32(h1))
	assert.Equal(t, 2, tbl.Len())

	v, ok := tbl.Get(h1)
	require.True(t, ok)
	assert.Equal(t, "alpha", v)

	removed, ok := tbl.Remove(h1)
	require.True(t, ok)
	assert.Equal(t, "alpha", removed)

	_, ok = tbl.Get(h1)
	assert.False(t, ok)
	_, ok = tbl.Remove(h1)
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Len())
}

func TestHandlesAreNeverReused(t *testing.T) {
	var tbl Table[SearchHandle, int]
	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := range 200 {
		wg.Go(func() {
			h := tbl.Insert(i)
			_, dup := seen.LoadOrStore(h, true)
			assert.False(t, dup)
			tbl.Remove(h)
		})
	}
	wg.Wait()
	assert.Equal(t, 0, tbl.Len())
}

func TestConcurrentRemoveHasOneWinner(t *testing.T) {
	var tbl Table[PoolHandle, string]
	h := tbl.Insert("pool")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Go(func() {
			if _, ok := tbl.Remove(h); ok {
				wins.Add(1)
			}
		})
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 0, tbl.Len())
}
