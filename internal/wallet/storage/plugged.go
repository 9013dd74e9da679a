package storage

import (
	"context"
	"fmt"

	"indy/pkg/platform/sentinel"
)

// Callbacks is a storage implementation supplied by the host at runtime.
// Every function must be set. Callbacks receive and return the same
// encrypted records as built-in backends and report failures with the
// sentinel errors of pkg/platform/sentinel.
type Callbacks struct {
	Create            func(id, config, credentials string, metadata []byte) error
	Open              func(id, config, credentials string) (int32, error)
	Close             func(h int32) error
	Delete            func(id, config, credentials string) error
	GetMetadata       func(h int32) ([]byte, error)
	SetMetadata       func(h int32, metadata []byte) error
	AddRecord         func(h int32, rec *Record) error
	GetRecord         func(h int32, typ, id []byte) (*Record, error)
	UpdateRecordValue func(h int32, typ, id, value, key []byte) error
	UpdateRecordTags  func(h int32, typ, id []byte, tags []Tag) error
	AddRecordTags     func(h int32, typ, id []byte, tags []Tag) error
	DeleteRecordTags  func(h int32, typ, id []byte, names [][]byte) error
	DeleteRecord      func(h int32, typ, id []byte) error
	SearchRecords     func(h int32, typ []byte) (int32, error)
	FetchSearchNext   func(h, search int32) (*Record, error)
	FreeSearch        func(h, search int32) error
}

func (c Callbacks) complete() bool {
	return c.Create != nil && c.Open != nil && c.Close != nil && c.Delete != nil &&
		c.GetMetadata != nil && c.SetMetadata != nil && c.AddRecord != nil &&
		c.GetRecord != nil && c.UpdateRecordValue != nil && c.UpdateRecordTags != nil &&
		c.AddRecordTags != nil && c.DeleteRecordTags != nil && c.DeleteRecord != nil &&
		c.SearchRecords != nil && c.FetchSearchNext != nil && c.FreeSearch != nil
}

// PluggedBackend adapts host callbacks to Backend.
type PluggedBackend struct {
	cb Callbacks
}

// NewPlugged validates cb and wraps it.
func NewPlugged(cb Callbacks) (*PluggedBackend, error) {
	if !cb.complete() {
		return nil, fmt.Errorf("storage callbacks incomplete: %w", sentinel.ErrInvalidInput)
	}
	return &PluggedBackend{cb: cb}, nil
}

func (b *PluggedBackend) Create(_ context.Context, id, config, credentials string, metadata []byte) error {
	return b.cb.Create(id, config, credentials, metadata)
}

func (b *PluggedBackend) Open(_ context.Context, id, config, credentials string) (Storage, error) {
	h, err := b.cb.Open(id, config, credentials)
	if err != nil {
		return nil, err
	}
	return &pluggedStorage{cb: b.cb, h: h}, nil
}

func (b *PluggedBackend) Delete(_ context.Context, id, config, credentials string) error {
	return b.cb.Delete(id, config, credentials)
}

type pluggedStorage struct {
	cb Callbacks
	h  int32
}

func (s *pluggedStorage) Metadata(context.Context) ([]byte, error) {
	return s.cb.GetMetadata(s.h)
}

func (s *pluggedStorage) SetMetadata(_ context.Context, metadata []byte) error {
	return s.cb.SetMetadata(s.h, metadata)
}

func (s *pluggedStorage) Add(_ context.Context, rec *Record) error {
	return s.cb.AddRecord(s.h, rec.Clone())
}

func (s *pluggedStorage) Get(_ context.Context, typ, id []byte) (*Record, error) {
	rec, err := s.cb.GetRecord(s.h, typ, id)
	if err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

func (s *pluggedStorage) UpdateValue(_ context.Context, typ, id, value, key []byte) error {
	return s.cb.UpdateRecordValue(s.h, typ, id, value, key)
}

func (s *pluggedStorage) UpdateTags(_ context.Context, typ, id []byte, tags []Tag) error {
	return s.cb.UpdateRecordTags(s.h, typ, id, tags)
}

func (s *pluggedStorage) AddTags(_ context.Context, typ, id []byte, tags []Tag) error {
	return s.cb.AddRecordTags(s.h, typ, id, tags)
}

func (s *pluggedStorage) DeleteTags(_ context.Context, typ, id []byte, names [][]byte) error {
	return s.cb.DeleteRecordTags(s.h, typ, id, names)
}

func (s *pluggedStorage) Delete(_ context.Context, typ, id []byte) error {
	return s.cb.DeleteRecord(s.h, typ, id)
}

// Search drains the host cursor at once so the result is a snapshot even
// if the host implementation streams live data.
func (s *pluggedStorage) Search(_ context.Context, typ []byte) (Iterator, error) {
	sh, err := s.cb.SearchRecords(s.h, typ)
	if err != nil {
		return nil, err
	}
	defer s.cb.FreeSearch(s.h, sh) //nolint:errcheck

	var recs []*Record
	for {
		rec, err := s.cb.FetchSearchNext(s.h, sh)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return NewSliceIterator(recs), nil
		}
		recs = append(recs, rec.Clone())
	}
}

func (s *pluggedStorage) Close() error {
	return s.cb.Close(s.h)
}
