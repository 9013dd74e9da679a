// Package service is the wallet service: it owns opened wallets, encrypts
// every record before it reaches a storage backend and serves the record
// and search API other services depend on.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"indy/internal/command"
	"indy/internal/metrics"
	platformmetrics "indy/internal/platform/metrics"
	"indy/internal/wallet/encryption"
	"indy/internal/wallet/storage"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/platform/sentinel"
	platformsync "indy/pkg/platform/sync"
)

// Service manages wallets of every registered storage type.
type Service struct {
	registry *storage.Registry
	wallets  command.Table[command.WalletHandle, *openWallet]
	searches command.Table[command.SearchHandle, *search]
	locks    *platformsync.ShardedRWMutex
	logger   *slog.Logger
	prom     *platformmetrics.Metrics

	mu      sync.Mutex
	opened  map[string]command.WalletHandle
	pending map[string]struct{}

	pendingOpen   atomic.Int64
	pendingImport atomic.Int64
}

type openWallet struct {
	key     string
	id      string
	storage storage.Storage
	keys    *encryption.Keys
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics tracks the number of open wallets in m.
func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) {
		s.prom = m
	}
}

// WithBackend registers an additional storage type at construction.
func WithBackend(name string, b storage.Backend) Option {
	return func(s *Service) {
		_ = s.registry.Register(name, b)
	}
}

// New creates a wallet service with the built-in backends: "inmem",
// "default" (one pebble database per wallet under storageRoot) and
// "postgres".
func New(storageRoot string, opts ...Option) *Service {
	s := &Service{
		registry: storage.NewRegistry(),
		locks:    platformsync.NewShardedRWMutex(),
		logger:   slog.Default(),
		opened:   make(map[string]command.WalletHandle),
		pending:  make(map[string]struct{}),
	}
	_ = s.registry.Register(storage.TypeInMem, storage.NewInMem())
	_ = s.registry.Register(storage.TypeDefault, storage.NewPebble(storageRoot))
	_ = s.registry.Register(storage.TypePostgres, storage.NewPostgres())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterStorage adds a host-provided storage type.
func (s *Service) RegisterStorage(name string, b storage.Backend) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidStructure, "storage type name is empty")
	}
	if err := s.registry.Register(name, b); err != nil {
		return dErrors.Newf(dErrors.CodeWalletTypeAlreadyRegistered, "storage type %q already registered", name)
	}
	return nil
}

func (s *Service) backend(name string) (storage.Backend, error) {
	b, ok := s.registry.Get(name)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeWalletUnknownType, "unknown storage type %q", name)
	}
	return b, nil
}

func (s *Service) wallet(h command.WalletHandle) (*openWallet, error) {
	w, ok := s.wallets.Get(h)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeWalletInvalidHandle, "invalid wallet handle %d", h)
	}
	return w, nil
}

// Stats reports the counts included in collected metrics.
func (s *Service) Stats() metrics.WalletStats {
	s.mu.Lock()
	ids := len(s.opened)
	s.mu.Unlock()
	return metrics.WalletStats{
		Opened:           s.wallets.Len(),
		OpenedIDs:        ids,
		PendingForOpen:   int(s.pendingOpen.Load()),
		PendingForImport: int(s.pendingImport.Load()),
	}
}

// reserve claims a wallet key for an open, delete or import in progress.
func (s *Service) reserve(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.opened[key]; ok {
		return dErrors.New(dErrors.CodeWalletAlreadyOpened, "wallet already opened")
	}
	if _, ok := s.pending[key]; ok {
		return dErrors.New(dErrors.CodeWalletAlreadyOpened, "wallet is being opened")
	}
	s.pending[key] = struct{}{}
	return nil
}

func (s *Service) release(key string) {
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
}

// wrapStorage maps backend failures onto wallet codes. notFound is the code
// for a missing entity at this call site.
func wrapStorage(err error, notFound dErrors.Code, msg string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, notFound, msg)
	case errors.Is(err, sentinel.ErrAlreadyExists):
		code := dErrors.CodeWalletItemAlreadyExists
		if notFound == dErrors.CodeWalletNotFound {
			code = dErrors.CodeWalletAlreadyExists
		}
		return dErrors.Wrap(err, code, msg)
	case errors.Is(err, sentinel.ErrInvalidInput):
		return dErrors.Wrap(err, dErrors.CodeInvalidStructure, fmt.Sprintf("%s: %v", msg, err))
	}
	return dErrors.Wrap(err, dErrors.CodeWalletStorageError, msg)
}
