package service

import (
	"context"
	"strconv"

	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
	platformsync "indy/pkg/platform/sync"
)

var _ wallet.Store = (*Service)(nil)

func checkTypeID(typ, id string) error {
	if typ == "" {
		return dErrors.New(dErrors.CodeInvalidStructure, "record type is empty")
	}
	if id == "" {
		return dErrors.New(dErrors.CodeInvalidStructure, "record id is empty")
	}
	return nil
}

func lockKey(h command.WalletHandle, typ, id string) string {
	return platformsync.RecordKey(strconv.Itoa(int(h)), typ, id)
}

// write runs fn under the record's write lock.
func (s *Service) write(h command.WalletHandle, typ, id string, fn func(w *openWallet) error) error {
	if err := checkTypeID(typ, id); err != nil {
		return err
	}
	w, err := s.wallet(h)
	if err != nil {
		return err
	}
	return s.locks.WithLock(lockKey(h, typ, id), func() error { return fn(w) })
}

func (s *Service) AddRecord(ctx context.Context, h command.WalletHandle, typ, id, value string, tags wallet.Tags) error {
	return s.write(h, typ, id, func(w *openWallet) error {
		rec, err := w.keys.EncryptRecord(wallet.Record{Type: typ, ID: id, Value: value, Tags: tags})
		if err != nil {
			return err
		}
		return wrapStorage(w.storage.Add(ctx, rec), dErrors.CodeWalletItemNotFound, "add record")
	})
}

func (s *Service) UpdateRecordValue(ctx context.Context, h command.WalletHandle, typ, id, value string) error {
	return s.write(h, typ, id, func(w *openWallet) error {
		ct, key, err := w.keys.EncryptValue(value)
		if err != nil {
			return err
		}
		err = w.storage.UpdateValue(ctx, w.keys.EncryptType(typ), w.keys.EncryptID(id), ct, key)
		return wrapStorage(err, dErrors.CodeWalletItemNotFound, "update record value")
	})
}

func (s *Service) UpdateRecordTags(ctx context.Context, h command.WalletHandle, typ, id string, tags wallet.Tags) error {
	return s.write(h, typ, id, func(w *openWallet) error {
		enc, err := w.keys.EncryptTags(tags)
		if err != nil {
			return err
		}
		err = w.storage.UpdateTags(ctx, w.keys.EncryptType(typ), w.keys.EncryptID(id), enc)
		return wrapStorage(err, dErrors.CodeWalletItemNotFound, "update record tags")
	})
}

func (s *Service) AddRecordTags(ctx context.Context, h command.WalletHandle, typ, id string, tags wallet.Tags) error {
	return s.write(h, typ, id, func(w *openWallet) error {
		enc, err := w.keys.EncryptTags(tags)
		if err != nil {
			return err
		}
		err = w.storage.AddTags(ctx, w.keys.EncryptType(typ), w.keys.EncryptID(id), enc)
		return wrapStorage(err, dErrors.CodeWalletItemNotFound, "add record tags")
	})
}

func (s *Service) DeleteRecordTags(ctx context.Context, h command.WalletHandle, typ, id string, names []string) error {
	return s.write(h, typ, id, func(w *openWallet) error {
		err := w.storage.DeleteTags(ctx, w.keys.EncryptType(typ), w.keys.EncryptID(id), w.keys.EncryptTagNames(names))
		return wrapStorage(err, dErrors.CodeWalletItemNotFound, "delete record tags")
	})
}

func (s *Service) DeleteRecord(ctx context.Context, h command.WalletHandle, typ, id string) error {
	return s.write(h, typ, id, func(w *openWallet) error {
		err := w.storage.Delete(ctx, w.keys.EncryptType(typ), w.keys.EncryptID(id))
		return wrapStorage(err, dErrors.CodeWalletItemNotFound, "delete record")
	})
}

// GetRecord returns the projections of the record selected by opts.
func (s *Service) GetRecord(ctx context.Context, h command.WalletHandle, typ, id string, opts wallet.RecordOptions) (*wallet.Record, error) {
	if err := checkTypeID(typ, id); err != nil {
		return nil, err
	}
	w, err := s.wallet(h)
	if err != nil {
		return nil, err
	}
	key := lockKey(h, typ, id)
	s.locks.RLock(key)
	enc, err := w.storage.Get(ctx, w.keys.EncryptType(typ), w.keys.EncryptID(id))
	s.locks.RUnlock(key)
	if err != nil {
		return nil, wrapStorage(err, dErrors.CodeWalletItemNotFound, "get record")
	}
	rec, err := w.keys.DecryptRecord(enc, opts)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
