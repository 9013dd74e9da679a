package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/locator"
	walletservice "indy/internal/wallet/service"
	"indy/internal/wallet/storage"
)

// WalletHandleCallback receives an opened wallet.
type WalletHandleCallback func(CommandHandle, ErrorCode, WalletHandle)

// StorageCallbacks is a wallet storage implementation supplied by the host.
type StorageCallbacks = storage.Callbacks

// RegisterWalletStorage makes a host storage available under name for
// wallet configs with "storage_type": name.
func RegisterWalletStorage(ch CommandHandle, name string, callbacks StorageCallbacks, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, a(2, name)); code != Success {
		return code
	}
	return submit(command.WalletCommandRegisterWalletType, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		backend, err := storage.NewPlugged(callbacks)
		if err != nil {
			return noResult(err)
		}
		return noResult(l.Wallets.RegisterStorage(name, backend))
	}, none(ch, cb))
}

// CreateWallet creates a wallet described by config, sealed with the key
// in credentials.
func CreateWallet(ch CommandHandle, config, credentials string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, j(2, config), j(3, credentials)); code != Success {
		return code
	}
	return submitOffload(command.WalletCommandCreate,
		func(_ context.Context, l *locator.Locator) (*walletservice.PendingCreate, error) {
			return l.Wallets.PrepareCreate(config, credentials)
		},
		func(_ *locator.Locator, p *walletservice.PendingCreate) (*walletservice.PendingCreate, error) {
			return p, p.Derive()
		},
		command.WalletCommandCreateContinue,
		func(ctx context.Context, l *locator.Locator, p *walletservice.PendingCreate) (struct{}, error) {
			return noResult(l.Wallets.FinishCreate(ctx, p))
		},
		none(ch, cb))
}

// OpenWallet opens a wallet and returns its handle. A wallet can be open
// once at a time.
func OpenWallet(ch CommandHandle, config, credentials string, cb WalletHandleCallback) ErrorCode {
	if code := check(cb == nil, 4, j(2, config), j(3, credentials)); code != Success {
		return code
	}
	return submitOffload(command.WalletCommandOpen,
		func(ctx context.Context, l *locator.Locator) (*walletservice.PendingOpen, error) {
			return l.Wallets.PrepareOpen(ctx, config, credentials)
		},
		func(l *locator.Locator, p *walletservice.PendingOpen) (*walletservice.PendingOpen, error) {
			if err := p.Derive(); err != nil {
				l.Wallets.AbortOpen(p)
				return nil, err
			}
			return p, nil
		},
		command.WalletCommandOpenContinue,
		func(ctx context.Context, l *locator.Locator, p *walletservice.PendingOpen) (WalletHandle, error) {
			return l.Wallets.FinishOpen(ctx, p)
		},
		func(h WalletHandle, code ErrorCode) {
			if code != Success {
				h = WalletHandle(InvalidHandle)
			}
			cb(ch, code, h)
		})
}

// CloseWallet closes an opened wallet and its searches.
func CloseWallet(ch CommandHandle, h WalletHandle, cb Callback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.WalletCommandClose, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Wallets.Close(ctx, h))
	}, none(ch, cb))
}

// DeleteWallet removes a closed wallet after checking its key.
func DeleteWallet(ch CommandHandle, config, credentials string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, j(2, config), j(3, credentials)); code != Success {
		return code
	}
	return submitOffload(command.WalletCommandDelete,
		func(ctx context.Context, l *locator.Locator) (*walletservice.PendingDelete, error) {
			return l.Wallets.PrepareDelete(ctx, config, credentials)
		},
		func(l *locator.Locator, p *walletservice.PendingDelete) (*walletservice.PendingDelete, error) {
			if err := p.Derive(); err != nil {
				l.Wallets.AbortDelete(p)
				return nil, err
			}
			return p, nil
		},
		command.WalletCommandDeleteContinue,
		func(ctx context.Context, l *locator.Locator, p *walletservice.PendingDelete) (struct{}, error) {
			return noResult(l.Wallets.FinishDelete(ctx, p))
		},
		none(ch, cb))
}

// ExportWallet writes an encrypted copy of an opened wallet to the path in
// exportConfig.
func ExportWallet(ch CommandHandle, h WalletHandle, exportConfig string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, j(3, exportConfig)); code != Success {
		return code
	}
	return submitOffload(command.WalletCommandExport,
		func(_ context.Context, l *locator.Locator) (*walletservice.PendingExport, error) {
			return l.Wallets.PrepareExport(h, exportConfig)
		},
		func(_ *locator.Locator, p *walletservice.PendingExport) (*walletservice.PendingExport, error) {
			return p, p.Derive()
		},
		command.WalletCommandExportContinue,
		func(ctx context.Context, l *locator.Locator, p *walletservice.PendingExport) (struct{}, error) {
			return noResult(l.Wallets.FinishExport(ctx, p))
		},
		none(ch, cb))
}

// ImportWallet creates a wallet from an export file.
func ImportWallet(ch CommandHandle, config, credentials, importConfig string, cb Callback) ErrorCode {
	if code := check(cb == nil, 5, j(2, config), j(3, credentials), j(4, importConfig)); code != Success {
		return code
	}
	return submitOffload(command.WalletCommandImport,
		func(_ context.Context, l *locator.Locator) (*walletservice.PendingImport, error) {
			return l.Wallets.PrepareImport(config, credentials, importConfig)
		},
		func(l *locator.Locator, p *walletservice.PendingImport) (*walletservice.PendingImport, error) {
			if err := p.Derive(); err != nil {
				l.Wallets.AbortImport(p)
				return nil, err
			}
			return p, nil
		},
		command.WalletCommandImportContinue,
		func(ctx context.Context, l *locator.Locator, p *walletservice.PendingImport) (struct{}, error) {
			return noResult(l.Wallets.FinishImport(ctx, p))
		},
		none(ch, cb))
}

// GenerateWalletKey returns a random key usable with the RAW derivation
// method, or one derived from the seed in config.
func GenerateWalletKey(ch CommandHandle, config string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.WalletCommandGenerateKey, func(_ context.Context, l *locator.Locator) (string, error) {
		return l.Wallets.GenerateKey(config)
	}, str(ch, cb))
}
