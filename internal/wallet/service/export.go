package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"indy/internal/command"
	"indy/internal/wallet"
	"indy/internal/wallet/encryption"
	"indy/internal/wallet/exportimport"
	dErrors "indy/pkg/domain-errors"
)

// PendingExport is an export between Prepare and Finish.
type PendingExport struct {
	h      command.WalletHandle
	cfg    ExportConfig
	header exportimport.Header
	master *[encryption.KeySize]byte
}

// PrepareExport validates the target. An existing file is not overwritten.
func (s *Service) PrepareExport(h command.WalletHandle, config string) (*PendingExport, error) {
	if _, err := s.wallet(h); err != nil {
		return nil, err
	}
	cfg, err := ParseExportConfig(config)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.Path); err == nil {
		return nil, dErrors.Newf(dErrors.CodeIOError, "export file %s already exists", cfg.Path)
	}
	m, _ := encryption.ParseMethod(cfg.KeyDerivationMethod)
	header, err := exportimport.NewHeader(m)
	if err != nil {
		return nil, err
	}
	return &PendingExport{h: h, cfg: cfg, header: header}, nil
}

// Derive derives the export key.
func (p *PendingExport) Derive() error {
	master, err := encryption.DeriveMasterKey(p.header.Method, p.cfg.Key, p.header.Salt)
	p.master = master
	return err
}

// FinishExport writes every record of the wallet to the file.
func (s *Service) FinishExport(ctx context.Context, p *PendingExport) (err error) {
	w, err := s.wallet(p.h)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.cfg.Path), 0o700); err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "create export directory")
	}
	f, err := os.OpenFile(p.cfg.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "create export file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = dErrors.Wrap(cerr, dErrors.CodeIOError, "close export file")
		}
		if err != nil {
			_ = os.Remove(p.cfg.Path)
		}
	}()

	ew, err := exportimport.NewWriter(f, p.header, p.master)
	if err != nil {
		return err
	}
	it, err := w.storage.Search(ctx, nil)
	if err != nil {
		return wrapStorage(err, dErrors.CodeWalletItemNotFound, "read wallet")
	}
	defer it.Close()

	n := 0
	for {
		enc, err := it.Next()
		if err != nil {
			return wrapStorage(err, dErrors.CodeWalletItemNotFound, "read wallet")
		}
		if enc == nil {
			break
		}
		rec, err := w.keys.DecryptRecord(enc, wallet.FullRecordOptions())
		if err != nil {
			return err
		}
		if err := ew.WriteRecord(rec); err != nil {
			return err
		}
		n++
	}
	if err := ew.Close(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "wallet exported", "wallet", w.id, "records", n)
	return nil
}

// Export runs all three steps inline.
func (s *Service) Export(ctx context.Context, h command.WalletHandle, config string) error {
	p, err := s.PrepareExport(h, config)
	if err != nil {
		return err
	}
	if err := p.Derive(); err != nil {
		return err
	}
	return s.FinishExport(ctx, p)
}

// PendingImport is an import between Prepare and Finish. The target wallet
// id stays reserved until Finish or Abort.
type PendingImport struct {
	create *PendingCreate
	cfg    ImportConfig
	file   *os.File
	reader *exportimport.Reader
	master *[encryption.KeySize]byte
}

// PrepareImport validates the inputs and reads the export header.
func (s *Service) PrepareImport(config, credentials, importConfig string) (*PendingImport, error) {
	create, err := s.PrepareCreate(config, credentials)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseImportConfig(importConfig)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dErrors.Wrap(err, dErrors.CodeIOError, "export file not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeIOError, "open export file")
	}
	rd, err := exportimport.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := s.reserve(create.cfg.walletKey()); err != nil {
		_ = f.Close()
		return nil, dErrors.New(dErrors.CodeWalletAlreadyExists, "wallet already exists")
	}
	s.pendingImport.Add(1)
	return &PendingImport{create: create, cfg: cfg, file: f, reader: rd}, nil
}

// Derive derives the export key and the new wallet's master key.
func (p *PendingImport) Derive() error {
	h := p.reader.Header()
	master, err := encryption.DeriveMasterKey(h.Method, p.cfg.Key, h.Salt)
	if err != nil {
		return err
	}
	p.master = master
	return p.create.Derive()
}

// AbortImport releases the file and the reservation.
func (s *Service) AbortImport(p *PendingImport) {
	_ = p.file.Close()
	s.pendingImport.Add(-1)
	s.release(p.create.cfg.walletKey())
}

// FinishImport verifies the whole stream, then creates the wallet and
// fills it. If filling fails the new wallet is deleted again, so either
// every record is imported or the wallet does not exist.
func (s *Service) FinishImport(ctx context.Context, p *PendingImport) error {
	defer s.AbortImport(p)

	if err := p.reader.Init(p.master); err != nil {
		return err
	}
	var recs []*wallet.Record
	for {
		rec, err := p.reader.Next()
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		recs = append(recs, rec)
	}

	c := p.create
	keys, err := s.create(ctx, c)
	if err != nil {
		return err
	}
	rollback := func(cause error) error {
		if err := c.backend.Delete(ctx, c.cfg.ID, c.cfg.storageConfig(), c.creds.storageCredentials()); err != nil {
			s.logger.ErrorContext(ctx, "import rollback failed", "wallet", c.cfg.ID, "error", err)
		}
		return cause
	}

	st, err := c.backend.Open(ctx, c.cfg.ID, c.cfg.storageConfig(), c.creds.storageCredentials())
	if err != nil {
		return rollback(wrapStorage(err, dErrors.CodeWalletNotFound, "open imported wallet"))
	}
	for _, rec := range recs {
		enc, err := keys.EncryptRecord(*rec)
		if err == nil {
			err = wrapStorage(st.Add(ctx, enc), dErrors.CodeWalletItemNotFound, "import record")
		}
		if err != nil {
			_ = st.Close()
			return rollback(err)
		}
	}
	if err := st.Close(); err != nil {
		return rollback(wrapStorage(err, dErrors.CodeWalletNotFound, "close imported wallet"))
	}
	s.logger.InfoContext(ctx, "wallet imported", "wallet", c.cfg.ID, "records", len(recs))
	return nil
}

// Import runs all three steps inline.
func (s *Service) Import(ctx context.Context, config, credentials, importConfig string) error {
	p, err := s.PrepareImport(config, credentials, importConfig)
	if err != nil {
		return err
	}
	if err := p.Derive(); err != nil {
		s.AbortImport(p)
		return err
	}
	return s.FinishImport(ctx, p)
}
