package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indy/pkg/platform/sentinel"
)

// callbacksOver exposes an in-memory backend through host callbacks, the
// way a host application would wrap its own store.
func callbacksOver(b *InMemBackend) Callbacks {
	open := map[int32]Storage{}
	searches := map[int32]Iterator{}
	var next int32
	return Callbacks{
		Create: func(id, config, credentials string, metadata []byte) error {
			return b.Create(context.Background(), id, config, credentials, metadata)
		},
		Open: func(id, config, credentials string) (int32, error) {
			st, err := b.Open(context.Background(), id, config, credentials)
			if err != nil {
				return 0, err
			}
			next++
			open[next] = st
			return next, nil
		},
		Close:  func(h int32) error { delete(open, h); return nil },
		Delete: func(id, config, credentials string) error { return b.Delete(context.Background(), id, config, credentials) },
		GetMetadata: func(h int32) ([]byte, error) {
			return open[h].Metadata(context.Background())
		},
		SetMetadata: func(h int32, md []byte) error { return open[h].SetMetadata(context.Background(), md) },
		AddRecord:   func(h int32, r *Record) error { return open[h].Add(context.Background(), r) },
		GetRecord: func(h int32, typ, id []byte) (*Record, error) {
			return open[h].Get(context.Background(), typ, id)
		},
		UpdateRecordValue: func(h int32, typ, id, v, k []byte) error {
			return open[h].UpdateValue(context.Background(), typ, id, v, k)
		},
		UpdateRecordTags: func(h int32, typ, id []byte, tags []Tag) error {
			return open[h].UpdateTags(context.Background(), typ, id, tags)
		},
		AddRecordTags: func(h int32, typ, id []byte, tags []Tag) error {
			return open[h].AddTags(context.Background(), typ, id, tags)
		},
		DeleteRecordTags: func(h int32, typ, id []byte, names [][]byte) error {
			return open[h].DeleteTags(context.Background(), typ, id, names)
		},
		DeleteRecord: func(h int32, typ, id []byte) error { return open[h].Delete(context.Background(), typ, id) },
		SearchRecords: func(h int32, typ []byte) (int32, error) {
			it, err := open[h].Search(context.Background(), typ)
			if err != nil {
				return 0, err
			}
			next++
			searches[next] = it
			return next, nil
		},
		FetchSearchNext: func(_, sh int32) (*Record, error) { return searches[sh].Next() },
		FreeSearch:      func(_, sh int32) error { delete(searches, sh); return nil },
	}
}

func TestPluggedRejectsIncompleteCallbacks(t *testing.T) {
	_, err := NewPlugged(Callbacks{})
	assert.True(t, errors.Is(err, sentinel.ErrInvalidInput))
}

func TestPluggedRoundTrip(t *testing.T) {
	ctx := context.Background()
	b, err := NewPlugged(callbacksOver(NewInMem()))
	require.NoError(t, err)

	require.NoError(t, b.Create(ctx, "host", "", "", []byte("md")))
	st, err := b.Open(ctx, "host", "", "")
	require.NoError(t, err)

	require.NoError(t, st.Add(ctx, rec("t", "1", "v")))
	got, err := st.Get(ctx, []byte("t"), []byte("1"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(got.Value))

	it, err := st.Search(ctx, []byte("t"))
	require.NoError(t, err)
	assert.Len(t, drain(it), 1)

	_, err = st.Get(ctx, []byte("t"), []byte("2"))
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	require.NoError(t, st.Close())
}
