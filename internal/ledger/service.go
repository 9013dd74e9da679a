package ledger

import (
	"context"
	"log/slog"
	"time"

	"indy/internal/command"
	"indy/internal/ledger/stateproof"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks KeyResolver,Signer,Pool

// KeyResolver finds the verkey of one of the wallet's own DIDs.
type KeyResolver interface {
	KeyForLocalDid(ctx context.Context, h command.WalletHandle, did string) (string, error)
}

// Signer signs with a key held in the wallet.
type Signer interface {
	Sign(ctx context.Context, h command.WalletHandle, signerVk string, msg []byte) ([]byte, error)
}

// Pool delivers requests to the validator nodes.
type Pool interface {
	// Submit sends request and returns the reply the pool agreed on.
	Submit(ctx context.Context, pool command.PoolHandle, request string) (string, error)
	// SubmitAction sends request to the named nodes (all when empty) and
	// returns each node's reply keyed by alias. A zero timeout uses the
	// pool default.
	SubmitAction(ctx context.Context, pool command.PoolHandle, request string, nodes []string, timeout time.Duration) (map[string]string, error)
	// ProtocolVersion is the version stamped on new requests.
	ProtocolVersion() int
}

// Service implements the ledger commands.
type Service struct {
	keys    KeyResolver
	signer  Signer
	pool    Pool
	parsers *stateproof.Registry
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPool enables submission and stamps requests with the pool's protocol
// version.
func WithPool(p Pool) Option {
	return func(s *Service) {
		s.pool = p
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a ledger service. parsers holds the state proof
// parsers registered by the host and is shared with the pool.
func NewService(keys KeyResolver, signer Signer, parsers *stateproof.Registry, opts ...Option) *Service {
	s := &Service{
		keys:    keys,
		signer:  signer,
		parsers: parsers,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) protocolVersion() int {
	if s.pool == nil {
		return DefaultProtocolVersion
	}
	return s.pool.ProtocolVersion()
}

// RegisterTransactionParserForSP installs a state proof parser for a
// custom transaction type.
func (s *Service) RegisterTransactionParserForSP(txnType string, parser stateproof.Parser) error {
	if err := s.parsers.Register(txnType, parser); err != nil {
		return err
	}
	s.logger.Info("state proof parser registered", "txn_type", txnType)
	return nil
}
