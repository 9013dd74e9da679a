package service

import (
	"context"

	"indy/internal/command"
	"indy/internal/wallet"
	"indy/internal/wallet/encryption"
	"indy/internal/wallet/query"
	"indy/internal/wallet/storage"
	dErrors "indy/pkg/domain-errors"
)

// cursor serves a search from the records matched when it was opened.
type cursor struct {
	keys  *encryption.Keys
	recs  []*storage.Record
	pos   int
	opts  wallet.SearchOptions
	total int
}

func (c *cursor) TotalCount() (int, bool) {
	return c.total, c.opts.RetrieveTotalCount
}

// Next returns up to n records. n == 0 yields an empty page even on an
// exhausted cursor.
func (c *cursor) Next(_ context.Context, n int) ([]wallet.Record, error) {
	if n < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "negative fetch count")
	}
	if !c.opts.RetrieveRecords {
		return nil, nil
	}
	if n == 0 {
		return []wallet.Record{}, nil
	}
	if c.pos >= len(c.recs) {
		return nil, dErrors.New(dErrors.CodeWalletNoRecords, "no more records")
	}
	end := min(c.pos+n, len(c.recs))
	out := make([]wallet.Record, 0, end-c.pos)
	for _, enc := range c.recs[c.pos:end] {
		rec, err := c.keys.DecryptRecord(enc, c.opts.RecordOptions())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	c.pos = end
	return out, nil
}

func (c *cursor) Close() error {
	c.recs = nil
	return nil
}

// Search evaluates query over a snapshot of every record of typ.
func (s *Service) Search(ctx context.Context, h command.WalletHandle, typ, rawQuery string, opts wallet.SearchOptions) (wallet.Cursor, error) {
	if typ == "" {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "record type is empty")
	}
	w, err := s.wallet(h)
	if err != nil {
		return nil, err
	}
	q, err := query.Parse(rawQuery)
	if err != nil {
		return nil, err
	}
	compiled, err := query.Compile(q, w.keys)
	if err != nil {
		return nil, err
	}
	it, err := w.storage.Search(ctx, w.keys.EncryptType(typ))
	if err != nil {
		return nil, wrapStorage(err, dErrors.CodeWalletItemNotFound, "search records")
	}
	defer it.Close()

	c := &cursor{keys: w.keys, opts: opts}
	for {
		rec, err := it.Next()
		if err != nil {
			return nil, wrapStorage(err, dErrors.CodeWalletItemNotFound, "search records")
		}
		if rec == nil {
			break
		}
		if compiled.Match(rec.Tags) {
			c.total++
			if opts.RetrieveRecords {
				c.recs = append(c.recs, rec)
			}
		}
	}
	return c, nil
}

var _ wallet.Searcher = (*Service)(nil)

type search struct {
	wallet command.WalletHandle
	cursor wallet.Cursor
}

// OpenSearch starts a search and returns its handle.
func (s *Service) OpenSearch(ctx context.Context, h command.WalletHandle, typ, rawQuery string, opts wallet.SearchOptions) (command.SearchHandle, error) {
	c, err := s.Search(ctx, h, typ, rawQuery, opts)
	if err != nil {
		return command.SearchHandle(command.InvalidHandle), err
	}
	return s.searches.Insert(&search{wallet: h, cursor: c}), nil
}

// FetchNext returns the next page of an open search. The handle must
// belong to h.
func (s *Service) FetchNext(ctx context.Context, h command.WalletHandle, sh command.SearchHandle, n int) (*wallet.SearchPage, error) {
	if _, err := s.wallet(h); err != nil {
		return nil, err
	}
	sr, ok := s.searches.Get(sh)
	if !ok || sr.wallet != h {
		return nil, dErrors.Newf(dErrors.CodeWalletInvalidHandle, "invalid search handle %d", sh)
	}
	recs, err := sr.cursor.Next(ctx, n)
	if err != nil {
		return nil, err
	}
	page := &wallet.SearchPage{Records: recs}
	if total, ok := sr.cursor.TotalCount(); ok {
		page.TotalCount = &total
	}
	return page, nil
}

// CloseSearch releases a search handle.
func (s *Service) CloseSearch(sh command.SearchHandle) error {
	sr, ok := s.searches.Remove(sh)
	if !ok {
		return dErrors.Newf(dErrors.CodeWalletInvalidHandle, "invalid search handle %d", sh)
	}
	return sr.cursor.Close()
}

// OpenSearches is the number of live search handles.
func (s *Service) OpenSearches() int {
	return s.searches.Len()
}
