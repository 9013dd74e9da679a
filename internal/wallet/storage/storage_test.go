package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"indy/pkg/platform/sentinel"
)

// BackendSuite runs the storage contract against one backend.
type BackendSuite struct {
	suite.Suite
	newBackend func(t *testing.T) Backend
	backend    Backend
	ctx        context.Context
}

func TestInMemBackend(t *testing.T) {
	suite.Run(t, &BackendSuite{newBackend: func(*testing.T) Backend { return NewInMem() }})
}

func TestPebbleBackend(t *testing.T) {
	suite.Run(t, &BackendSuite{newBackend: func(t *testing.T) Backend { return NewPebble(t.TempDir()) }})
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.newBackend(s.T())
}

func (s *BackendSuite) open(id string) Storage {
	s.Require().NoError(s.backend.Create(s.ctx, id, "", "", []byte("meta-"+id)))
	st, err := s.backend.Open(s.ctx, id, "", "")
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = st.Close() })
	return st
}

func rec(typ, id, value string, tags ...Tag) *Record {
	return &Record{Type: []byte(typ), ID: []byte(id), Value: []byte(value), Key: []byte("k"), Tags: tags}
}

func tag(name, value string) Tag {
	return Tag{Name: []byte(name), Value: []byte(value), Plain: true}
}

func drain(it Iterator) []*Record {
	var out []*Record
	for {
		r, err := it.Next()
		if err != nil {
			panic(err)
		}
		if r == nil {
			_ = it.Close()
			return out
		}
		out = append(out, r)
	}
}

func (s *BackendSuite) TestLifecycle() {
	s.Run("create twice", func() {
		s.Require().NoError(s.backend.Create(s.ctx, "w1", "", "", []byte("m")))
		err := s.backend.Create(s.ctx, "w1", "", "", []byte("m"))
		s.True(errors.Is(err, sentinel.ErrAlreadyExists))
	})

	s.Run("open missing", func() {
		_, err := s.backend.Open(s.ctx, "missing", "", "")
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})

	s.Run("metadata survives reopen", func() {
		st, err := s.backend.Open(s.ctx, "w1", "", "")
		s.Require().NoError(err)
		s.Require().NoError(st.SetMetadata(s.ctx, []byte("m2")))
		s.Require().NoError(st.Close())

		st, err = s.backend.Open(s.ctx, "w1", "", "")
		s.Require().NoError(err)
		md, err := st.Metadata(s.ctx)
		s.NoError(err)
		s.Equal("m2", string(md))
		s.Require().NoError(st.Close())
	})

	s.Run("delete", func() {
		s.Require().NoError(s.backend.Delete(s.ctx, "w1", "", ""))
		s.True(errors.Is(s.backend.Delete(s.ctx, "w1", "", ""), sentinel.ErrNotFound))
	})
}

func (s *BackendSuite) TestRecords() {
	st := s.open("records")

	s.Require().NoError(st.Add(s.ctx, rec("t", "a", "v1", tag("x", "1"))))
	s.True(errors.Is(st.Add(s.ctx, rec("t", "a", "v2")), sentinel.ErrAlreadyExists))

	got, err := st.Get(s.ctx, []byte("t"), []byte("a"))
	s.Require().NoError(err)
	s.Equal("v1", string(got.Value))

	s.Run("update value", func() {
		s.Require().NoError(st.UpdateValue(s.ctx, []byte("t"), []byte("a"), []byte("v3"), []byte("k3")))
		got, _ := st.Get(s.ctx, []byte("t"), []byte("a"))
		s.Equal("v3", string(got.Value))
		s.Equal("k3", string(got.Key))
	})

	s.Run("tag operations", func() {
		s.Require().NoError(st.AddTags(s.ctx, []byte("t"), []byte("a"), []Tag{tag("y", "2"), tag("x", "9")}))
		got, _ := st.Get(s.ctx, []byte("t"), []byte("a"))
		s.Len(got.Tags, 2)
		s.Equal("9", string(got.Tags[0].Value))

		s.Require().NoError(st.DeleteTags(s.ctx, []byte("t"), []byte("a"), [][]byte{[]byte("x")}))
		got, _ = st.Get(s.ctx, []byte("t"), []byte("a"))
		s.Require().Len(got.Tags, 1)
		s.Equal("y", string(got.Tags[0].Name))

		s.Require().NoError(st.UpdateTags(s.ctx, []byte("t"), []byte("a"), []Tag{tag("z", "3")}))
		got, _ = st.Get(s.ctx, []byte("t"), []byte("a"))
		s.Require().Len(got.Tags, 1)
		s.Equal("z", string(got.Tags[0].Name))
	})

	s.Run("missing record", func() {
		s.True(errors.Is(st.UpdateValue(s.ctx, []byte("t"), []byte("nope"), nil, nil), sentinel.ErrNotFound))
		s.True(errors.Is(st.AddTags(s.ctx, []byte("t"), []byte("nope"), nil), sentinel.ErrNotFound))
		s.True(errors.Is(st.Delete(s.ctx, []byte("t"), []byte("nope")), sentinel.ErrNotFound))
	})

	s.Run("delete", func() {
		s.Require().NoError(st.Delete(s.ctx, []byte("t"), []byte("a")))
		_, err := st.Get(s.ctx, []byte("t"), []byte("a"))
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})
}

func (s *BackendSuite) TestSearchIsSnapshot() {
	st := s.open("search")
	s.Require().NoError(st.Add(s.ctx, rec("cred", "1", "a")))
	s.Require().NoError(st.Add(s.ctx, rec("cred", "2", "b")))
	s.Require().NoError(st.Add(s.ctx, rec("credx", "1", "other type")))

	it, err := st.Search(s.ctx, []byte("cred"))
	s.Require().NoError(err)

	s.Require().NoError(st.Add(s.ctx, rec("cred", "3", "late")))
	got := drain(it)
	s.Len(got, 2)

	all, err := st.Search(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(drain(all), 4)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("inmem", NewInMem()); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("inmem", NewInMem()); !errors.Is(err, sentinel.ErrAlreadyExists) {
		t.Fatalf("duplicate registration: %v", err)
	}
	if _, ok := r.Get("inmem"); !ok {
		t.Fatal("registered backend not found")
	}
	if _, ok := r.Get("nope"); ok {
		t.Fatal("unexpected backend")
	}
}
