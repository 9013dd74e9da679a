package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"indy/internal/command"
	"indy/internal/wallet/encryption"
	"indy/internal/wallet/storage"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

// Wallet creation, opening, deletion, export and import each run in three
// steps so the key derivation can leave the command workers: Prepare does
// the cheap checks, Derive runs the KDF and touches nothing shared, Finish
// commits. Prepare reserves whatever Finish needs; Abort releases it when
// Derive fails.

// PendingCreate is a wallet creation between Prepare and Finish.
type PendingCreate struct {
	cfg     Config
	creds   Credentials
	backend storage.Backend
	salt    []byte
	master  *[encryption.KeySize]byte
}

// PrepareCreate validates config and credentials.
func (s *Service) PrepareCreate(config, credentials string) (*PendingCreate, error) {
	cfg, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	creds, err := ParseCredentials(credentials)
	if err != nil {
		return nil, err
	}
	b, err := s.backend(cfg.StorageType)
	if err != nil {
		return nil, err
	}
	salt, err := encryption.NewSalt(creds.method())
	if err != nil {
		return nil, err
	}
	return &PendingCreate{cfg: cfg, creds: creds, backend: b, salt: salt}, nil
}

// Derive runs the key derivation.
func (p *PendingCreate) Derive() error {
	master, err := encryption.DeriveMasterKey(p.creds.method(), p.creds.Key, p.salt)
	p.master = master
	return err
}

// FinishCreate generates the wallet keys and creates the storage.
func (s *Service) FinishCreate(ctx context.Context, p *PendingCreate) error {
	_, err := s.create(ctx, p)
	return err
}

func (s *Service) create(ctx context.Context, p *PendingCreate) (*encryption.Keys, error) {
	keys, err := encryption.NewKeys()
	if err != nil {
		return nil, err
	}
	md, err := encryption.NewMetadata(keys, p.creds.method(), p.salt, p.master)
	if err != nil {
		return nil, err
	}
	raw, err := md.Marshal()
	if err != nil {
		return nil, err
	}
	if err := p.backend.Create(ctx, p.cfg.ID, p.cfg.storageConfig(), p.creds.storageCredentials(), raw); err != nil {
		return nil, wrapStorage(err, dErrors.CodeWalletNotFound, "create wallet")
	}
	s.logger.InfoContext(ctx, "wallet created", "wallet", p.cfg.ID, "storage_type", p.cfg.StorageType)
	return keys, nil
}

// Create runs all three steps inline.
func (s *Service) Create(ctx context.Context, config, credentials string) error {
	p, err := s.PrepareCreate(config, credentials)
	if err != nil {
		return err
	}
	if err := p.Derive(); err != nil {
		return err
	}
	return s.FinishCreate(ctx, p)
}

// PendingOpen is a wallet opening between Prepare and Finish. The wallet
// id stays reserved until Finish or Abort.
type PendingOpen struct {
	cfg         Config
	creds       Credentials
	storage     storage.Storage
	md          *encryption.Metadata
	master      *[encryption.KeySize]byte
	rekeySalt   []byte
	rekeyMaster *[encryption.KeySize]byte
}

// PrepareOpen reserves the wallet, opens its storage and reads the
// metadata.
func (s *Service) PrepareOpen(ctx context.Context, config, credentials string) (*PendingOpen, error) {
	cfg, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	creds, err := ParseCredentials(credentials)
	if err != nil {
		return nil, err
	}
	b, err := s.backend(cfg.StorageType)
	if err != nil {
		return nil, err
	}
	if err := s.reserve(cfg.walletKey()); err != nil {
		return nil, err
	}
	s.pendingOpen.Add(1)
	p := &PendingOpen{cfg: cfg, creds: creds}

	st, err := b.Open(ctx, cfg.ID, cfg.storageConfig(), creds.storageCredentials())
	if err != nil {
		s.AbortOpen(p)
		return nil, wrapStorage(err, dErrors.CodeWalletNotFound, "open wallet")
	}
	p.storage = st
	raw, err := st.Metadata(ctx)
	if err == nil {
		p.md, err = encryption.ParseMetadata(raw)
	}
	if err != nil {
		s.AbortOpen(p)
		return nil, wrapStorage(err, dErrors.CodeWalletNotFound, "read wallet metadata")
	}
	if creds.Rekey != nil {
		if p.rekeySalt, err = encryption.NewSalt(creds.rekeyMethod()); err != nil {
			s.AbortOpen(p)
			return nil, err
		}
	}
	return p, nil
}

// Derive derives the master key and, when rekeying, the new one.
func (p *PendingOpen) Derive() error {
	var err error
	if p.master, err = encryption.DeriveMasterKey(p.md.KDF, p.creds.Key, p.md.Salt); err != nil {
		return err
	}
	if p.creds.Rekey != nil {
		p.rekeyMaster, err = encryption.DeriveMasterKey(p.creds.rekeyMethod(), *p.creds.Rekey, p.rekeySalt)
	}
	return err
}

// AbortOpen releases what PrepareOpen reserved.
func (s *Service) AbortOpen(p *PendingOpen) {
	if p.storage != nil {
		_ = p.storage.Close()
	}
	s.pendingOpen.Add(-1)
	s.release(p.cfg.walletKey())
}

// FinishOpen unseals the wallet keys, applies a rekey and allocates the
// handle. A wrong key fails with WalletAccessFailed.
func (s *Service) FinishOpen(ctx context.Context, p *PendingOpen) (command.WalletHandle, error) {
	keys, err := encryption.OpenKeys(p.master, p.md.Keys)
	if err != nil {
		s.AbortOpen(p)
		return command.WalletHandle(command.InvalidHandle), err
	}
	if p.rekeyMaster != nil {
		md, err := encryption.NewMetadata(keys, p.creds.rekeyMethod(), p.rekeySalt, p.rekeyMaster)
		if err == nil {
			var raw []byte
			if raw, err = md.Marshal(); err == nil {
				err = p.storage.SetMetadata(ctx, raw)
			}
		}
		if err != nil {
			s.AbortOpen(p)
			return command.WalletHandle(command.InvalidHandle), wrapStorage(err, dErrors.CodeWalletNotFound, "rekey wallet")
		}
		s.logger.InfoContext(ctx, "wallet rekeyed", "wallet", p.cfg.ID)
	}

	key := p.cfg.walletKey()
	h := s.wallets.Insert(&openWallet{key: key, id: p.cfg.ID, storage: p.storage, keys: keys})
	s.mu.Lock()
	delete(s.pending, key)
	s.opened[key] = h
	s.mu.Unlock()
	s.pendingOpen.Add(-1)
	if s.prom != nil {
		s.prom.IncrementWalletsOpened()
	}
	s.logger.InfoContext(ctx, "wallet opened", "wallet", p.cfg.ID, "handle", int32(h))
	return h, nil
}

// Open runs all three steps inline.
func (s *Service) Open(ctx context.Context, config, credentials string) (command.WalletHandle, error) {
	p, err := s.PrepareOpen(ctx, config, credentials)
	if err != nil {
		return command.WalletHandle(command.InvalidHandle), err
	}
	if err := p.Derive(); err != nil {
		s.AbortOpen(p)
		return command.WalletHandle(command.InvalidHandle), err
	}
	return s.FinishOpen(ctx, p)
}

// Close releases the handle and every search opened on it.
func (s *Service) Close(ctx context.Context, h command.WalletHandle) error {
	w, ok := s.wallets.Remove(h)
	if !ok {
		return dErrors.Newf(dErrors.CodeWalletInvalidHandle, "invalid wallet handle %d", h)
	}
	s.searches.Range(func(sh command.SearchHandle, sr *search) bool {
		if sr.wallet == h {
			s.searches.Remove(sh)
		}
		return true
	})
	s.mu.Lock()
	delete(s.opened, w.key)
	s.mu.Unlock()
	if s.prom != nil {
		s.prom.DecrementWalletsOpened()
	}
	s.logger.InfoContext(ctx, "wallet closed", "wallet", w.id, "handle", int32(h))
	return wrapStorage(w.storage.Close(), dErrors.CodeWalletNotFound, "close wallet")
}

// PendingDelete is a deletion between Prepare and Finish.
type PendingDelete struct {
	cfg     Config
	creds   Credentials
	backend storage.Backend
	md      *encryption.Metadata
	master  *[encryption.KeySize]byte
}

// PrepareDelete reads the wallet metadata so the key can be checked. An
// opened wallet cannot be deleted.
func (s *Service) PrepareDelete(ctx context.Context, config, credentials string) (*PendingDelete, error) {
	cfg, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	creds, err := ParseCredentials(credentials)
	if err != nil {
		return nil, err
	}
	b, err := s.backend(cfg.StorageType)
	if err != nil {
		return nil, err
	}
	if err := s.reserve(cfg.walletKey()); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidState, "cannot delete an opened wallet")
	}
	p := &PendingDelete{cfg: cfg, creds: creds, backend: b}

	st, err := b.Open(ctx, cfg.ID, cfg.storageConfig(), creds.storageCredentials())
	if err != nil {
		s.AbortDelete(p)
		return nil, wrapStorage(err, dErrors.CodeWalletNotFound, "open wallet")
	}
	defer st.Close()
	raw, err := st.Metadata(ctx)
	if err == nil {
		p.md, err = encryption.ParseMetadata(raw)
	}
	if err != nil {
		s.AbortDelete(p)
		return nil, wrapStorage(err, dErrors.CodeWalletNotFound, "read wallet metadata")
	}
	return p, nil
}

// Derive derives the master key.
func (p *PendingDelete) Derive() error {
	master, err := encryption.DeriveMasterKey(p.md.KDF, p.creds.Key, p.md.Salt)
	p.master = master
	return err
}

// AbortDelete releases the reservation.
func (s *Service) AbortDelete(p *PendingDelete) {
	s.release(p.cfg.walletKey())
}

// FinishDelete checks the key and removes the wallet.
func (s *Service) FinishDelete(ctx context.Context, p *PendingDelete) error {
	defer s.AbortDelete(p)
	if _, err := encryption.OpenKeys(p.master, p.md.Keys); err != nil {
		return err
	}
	if err := p.backend.Delete(ctx, p.cfg.ID, p.cfg.storageConfig(), p.creds.storageCredentials()); err != nil {
		return wrapStorage(err, dErrors.CodeWalletNotFound, "delete wallet")
	}
	s.logger.InfoContext(ctx, "wallet deleted", "wallet", p.cfg.ID)
	return nil
}

// Delete runs all three steps inline.
func (s *Service) Delete(ctx context.Context, config, credentials string) error {
	p, err := s.PrepareDelete(ctx, config, credentials)
	if err != nil {
		return err
	}
	if err := p.Derive(); err != nil {
		s.AbortDelete(p)
		return err
	}
	return s.FinishDelete(ctx, p)
}

// GenerateKey returns a key for the RAW derivation method.
func (s *Service) GenerateKey(config string) (string, error) {
	var cfg KeyConfig
	if config != "" {
		if err := validation.DecodeJSON(config, &cfg); err != nil {
			return "", err
		}
	}
	seed := []byte(cfg.Seed)
	if len(seed) != encryption.KeySize && strings.HasSuffix(cfg.Seed, "=") {
		if raw, err := base64.StdEncoding.DecodeString(cfg.Seed); err == nil {
			seed = raw
		}
	}
	return encryption.GenerateKey(seed)
}

// Shutdown closes every opened wallet.
func (s *Service) Shutdown(ctx context.Context) error {
	var handles []command.WalletHandle
	s.wallets.Range(func(h command.WalletHandle, _ *openWallet) bool {
		handles = append(handles, h)
		return true
	})
	var errs []error
	for _, h := range handles {
		if err := s.Close(ctx, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
