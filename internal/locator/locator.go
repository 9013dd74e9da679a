// Package locator builds the process-wide set of services every command
// runs against.
package locator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"indy/internal/anoncreds"
	"indy/internal/blobstorage"
	"indy/internal/cache"
	"indy/internal/crypto"
	"indy/internal/did"
	"indy/internal/executor"
	"indy/internal/ledger"
	"indy/internal/ledger/stateproof"
	"indy/internal/metrics"
	"indy/internal/nonsecrets"
	"indy/internal/pairwise"
	"indy/internal/payments"
	"indy/internal/platform/config"
	"indy/internal/platform/logger"
	platformmetrics "indy/internal/platform/metrics"
	"indy/internal/platform/tracer"
	"indy/internal/pool"
	walletservice "indy/internal/wallet/service"
	dErrors "indy/pkg/domain-errors"
)

// Locator owns every service.
type Locator struct {
	Config     config.Runtime
	Logger     *slog.Logger
	Prometheus *platformmetrics.Metrics
	Executor   *executor.Executor

	Wallets    *walletservice.Service
	Crypto     *crypto.Service
	Dids       *did.Service
	Pairwise   *pairwise.Service
	NonSecrets *nonsecrets.Service
	Blobs      *blobstorage.Service
	Issuer     *anoncreds.Issuer
	Prover     *anoncreds.Prover
	Verifier   *anoncreds.Verifier
	Parsers    *stateproof.Registry
	Ledger     *ledger.Service
	Pools      *pool.Service
	Payments   *payments.Service
	Cache      *cache.Service
	// Lookups reads DIDs and endpoints from the ledger for the DID
	// service's fallbacks.
	Lookups did.Ledger
}

type options struct {
	logger    *slog.Logger
	registry  prometheus.Registerer
	transport pool.Transport
	tracer    tracer.Tracer
}

// Option configures New.
type Option func(*options)

// WithLogger replaces the logger built from the config level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRegisterer registers the Prometheus mirror on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithTransport replaces the QUIC node transport.
func WithTransport(t pool.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithTracer replaces the OpenTelemetry tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// New builds and starts a Locator for cfg.
func New(cfg config.Runtime, opts ...Option) (*Locator, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.New(cfg.LogLevel)
	}
	if o.tracer == nil {
		o.tracer = tracer.NewOTel()
	}
	if o.transport == nil {
		t, err := pool.NewQUICTransport(o.logger)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeIOError, "create node transport")
		}
		o.transport = t
	}
	log := o.logger

	l := &Locator{
		Config:     cfg,
		Logger:     log,
		Prometheus: platformmetrics.New(o.registry),
		Parsers:    stateproof.NewRegistry(),
	}
	l.Executor = executor.New(metrics.New(),
		executor.WithWorkers(cfg.Workers),
		executor.WithBlockingPoolSize(cfg.BlockingPoolSize),
		executor.WithPrometheus(l.Prometheus),
		executor.WithTracer(o.tracer),
		executor.WithLogger(log),
	)

	l.Wallets = walletservice.New(cfg.WalletsDir(),
		walletservice.WithLogger(log),
		walletservice.WithMetrics(l.Prometheus),
	)
	l.Crypto = crypto.NewService(l.Wallets, crypto.WithLogger(log))
	l.Pairwise = pairwise.NewService(l.Wallets, pairwise.WithLogger(log))
	l.NonSecrets = nonsecrets.NewService(l.Wallets, nonsecrets.WithLogger(log))
	l.Blobs = blobstorage.NewService(cfg.TailsDir(), blobstorage.WithLogger(log))
	l.Issuer = anoncreds.NewIssuer(l.Wallets, l.Blobs, anoncreds.WithLogger(log))
	l.Prover = anoncreds.NewProver(l.Wallets, l.Blobs, anoncreds.WithLogger(log))
	l.Verifier = anoncreds.NewVerifier(anoncreds.WithLogger(log))

	l.Pools = pool.NewService(cfg.PoolsDir(), o.transport, l.Parsers,
		pool.WithLogger(log),
		pool.WithDefaultGenesis(cfg.DefaultGenesisPath),
		pool.WithTimeouts(cfg.PoolTimeout, cfg.PoolExtTimeout),
		pool.WithRetryBudget(cfg.NodeRetryBudget),
		pool.WithProtocolVersion(cfg.PoolProtocolVersion),
		pool.WithMetrics(l.Prometheus),
	)

	lookups := &ledgerLookups{}
	l.Dids = did.NewService(l.Wallets, l.Crypto, did.WithLogger(log), did.WithLedger(lookups))
	l.Ledger = ledger.NewService(l.Dids, l.Crypto, l.Parsers, ledger.WithLogger(log), ledger.WithPool(l.Pools))
	lookups.ledger = l.Ledger
	l.Lookups = lookups

	l.Payments = payments.NewService(l.Wallets, payments.WithLogger(log))
	if err := l.Payments.RegisterMethod(payments.NullMethodName, payments.NewNullMethod(l.Crypto)); err != nil {
		return nil, err
	}
	l.Cache = cache.NewService(l.Wallets, lookups, cache.WithLogger(log))

	l.Executor.Start()
	log.Info("library initialised",
		"workers", cfg.Workers,
		"protocol_version", cfg.PoolProtocolVersion,
		"home", cfg.HomeDir,
	)
	return l, nil
}

// CollectMetrics renders the collect_metrics document.
func (l *Locator) CollectMetrics() (string, error) {
	return l.Executor.Collector().Collect(l.Executor.Stats(), l.Wallets.Stats())
}

// Shutdown drains the executor, then closes pools and wallets.
func (l *Locator) Shutdown(ctx context.Context) error {
	var errs []error
	if err := l.Executor.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := l.Pools.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := l.Wallets.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	l.Logger.Info("library shut down")
	return errors.Join(errs...)
}

var (
	once     sync.Once
	mu       sync.Mutex
	built    bool
	pending  = config.FromEnv()
	instance *Locator
	initErr  error
)

// Configure adjusts the config the process-wide Locator will be built
// with. It reports false once the Locator exists.
func Configure(fn func(*config.Runtime)) bool {
	mu.Lock()
	defer mu.Unlock()
	if built {
		return false
	}
	fn(&pending)
	return true
}

// Get returns the process-wide Locator, building it on first use.
func Get() (*Locator, error) {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		built = true
		instance, initErr = New(pending)
	})
	return instance, initErr
}
