// Package pool connects to validator pools: it keeps named pool configs,
// catches up the pool ledger to learn the current validators and routes
// ledger requests to them.
package pool

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"indy/internal/command"
	"indy/internal/ledger/stateproof"
	platformmetrics "indy/internal/platform/metrics"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/platform/circuit"
	"indy/pkg/validation"
)

// Defaults applied when neither the service options nor the open config
// set a value.
const (
	DefaultTimeout         = 20 * time.Second
	DefaultExtendedTimeout = 60 * time.Second
	DefaultRetryBudget     = 3
	DefaultNumberReadNodes = 2
	DefaultProtocolVersion = 2
)

// Service owns pool configs and open pools.
type Service struct {
	dir         string
	transport   Transport
	parsers     *stateproof.Registry
	logger      *slog.Logger
	genesis     string
	timeout     time.Duration
	extTimeout  time.Duration
	retryBudget int
	breakerOpts []circuit.Option
	metrics     *platformmetrics.Metrics
	protocol    atomic.Int32

	pools command.Table[command.PoolHandle, *openPool]

	mu    sync.Mutex
	names map[string]struct{}
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDefaultGenesis names the genesis file used when a pool config does
// not give one.
func WithDefaultGenesis(path string) Option {
	return func(s *Service) {
		s.genesis = path
	}
}

// WithTimeouts sets the default read and write timeouts.
func WithTimeouts(timeout, extended time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
		if extended > 0 {
			s.extTimeout = extended
		}
	}
}

// WithRetryBudget sets how many failed nodes a read tolerates.
func WithRetryBudget(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retryBudget = n
		}
	}
}

// WithProtocolVersion sets the initial protocol version.
func WithProtocolVersion(v int) Option {
	return func(s *Service) {
		if validProtocol(v) {
			s.protocol.Store(int32(v))
		}
	}
}

// WithBreakerOptions configures the per-node circuit breakers.
func WithBreakerOptions(opts ...circuit.Option) Option {
	return func(s *Service) {
		s.breakerOpts = opts
	}
}

// WithMetrics mirrors request outcomes and node blacklisting into m.
func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a pool service keeping configs under dir.
func NewService(dir string, transport Transport, parsers *stateproof.Registry, opts ...Option) *Service {
	s := &Service{
		dir:         dir,
		transport:   transport,
		parsers:     parsers,
		logger:      slog.Default(),
		timeout:     DefaultTimeout,
		extTimeout:  DefaultExtendedTimeout,
		retryBudget: DefaultRetryBudget,
		names:       map[string]struct{}{},
	}
	s.protocol.Store(DefaultProtocolVersion)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validProtocol(v int) bool {
	return v == 1 || v == 2
}

// ProtocolVersion is the version new requests and genesis checks use.
func (s *Service) ProtocolVersion() int {
	return int(s.protocol.Load())
}

// SetProtocolVersion changes the protocol version for pools opened later.
func (s *Service) SetProtocolVersion(v int) error {
	if !validProtocol(v) {
		return dErrors.Newf(dErrors.CodePoolIncompatibleProtocol, "unsupported protocol version %d", v)
	}
	s.protocol.Store(int32(v))
	s.logger.Info("pool protocol version set", "version", v)
	return nil
}

// PoolConfig is the document given to CreateConfig.
type PoolConfig struct {
	GenesisTxn string `json:"genesis_txn"`
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return dErrors.Newf(dErrors.CodeInvalidStructure, "invalid pool name %q", name)
	}
	return nil
}

// CreateConfig stores a named pool config by copying its genesis file.
func (s *Service) CreateConfig(name, configJSON string) error {
	if err := checkName(name); err != nil {
		return err
	}
	var cfg PoolConfig
	if configJSON != "" && configJSON != "null" {
		if err := validation.DecodeJSON(configJSON, &cfg); err != nil {
			return err
		}
	}
	if cfg.GenesisTxn == "" {
		cfg.GenesisTxn = s.genesis
	}
	if cfg.GenesisTxn == "" {
		return dErrors.New(dErrors.CodeInvalidStructure, "genesis_txn is required")
	}
	raw, err := os.ReadFile(cfg.GenesisTxn)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "read genesis transactions")
	}
	if _, err := ParseTxns(raw); err != nil {
		return err
	}

	dir := filepath.Join(s.dir, name)
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "create pool directory")
	}
	if err := os.Mkdir(dir, 0o700); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return dErrors.Newf(dErrors.CodePoolLedgerConfigAlreadyExists, "pool %q already exists", name)
		}
		return dErrors.Wrap(err, dErrors.CodeIOError, "create pool directory")
	}
	if err := os.WriteFile(genesisPath(s.dir, name), raw, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return dErrors.Wrap(err, dErrors.CodeIOError, "write genesis transactions")
	}
	s.logger.Info("pool config created", "pool", name)
	return nil
}

// DeleteConfig removes a pool config. Open pools cannot be deleted.
func (s *Service) DeleteConfig(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, open := s.names[name]; open {
		return dErrors.Newf(dErrors.CodeInvalidState, "pool %q is open", name)
	}
	dir := filepath.Join(s.dir, name)
	if _, err := os.Stat(dir); err != nil {
		return dErrors.Newf(dErrors.CodePoolLedgerNotCreated, "pool %q does not exist", name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return dErrors.Wrap(err, dErrors.CodeIOError, "delete pool")
	}
	s.logger.Info("pool config deleted", "pool", name)
	return nil
}

// ListConfigs returns [{"pool": name}, ...] for every stored config.
func (s *Service) ListConfigs() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", dErrors.Wrap(err, dErrors.CodeIOError, "list pools")
	}
	out := []map[string]string{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(genesisPath(s.dir, e.Name())); err == nil {
			out = append(out, map[string]string{"pool": e.Name()})
		}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode pool list")
	}
	return string(raw), nil
}

// OpenConfig tunes an open pool.
type OpenConfig struct {
	Timeout         *int64   `json:"timeout" validate:"omitempty,gt=0"`
	ExtendedTimeout *int64   `json:"extended_timeout" validate:"omitempty,gt=0"`
	PreorderedNodes []string `json:"preordered_nodes" validate:"omitempty,dive,notblank"`
	NumberReadNodes *int     `json:"number_read_nodes" validate:"omitempty,gt=0"`
}

type openPool struct {
	name       string
	timeout    time.Duration
	extTimeout time.Duration
	preordered []string
	readNodes  int
	inflight   sync.WaitGroup

	mu   sync.RWMutex
	view *view
}

// view is the pool ledger and the validators it names.
type view struct {
	txns     []json.RawMessage
	nodes    []Node
	breakers map[string]*circuit.Breaker
	verifier *stateproof.Verifier
}

func (p *openPool) current() *view {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view
}

func (p *openPool) swap(v *view) {
	p.mu.Lock()
	p.view = v
	p.mu.Unlock()
}

func (s *Service) newView(txns []json.RawMessage, nodes []Node, prev *view) *view {
	v := &view{txns: txns, nodes: nodes, breakers: make(map[string]*circuit.Breaker, len(nodes))}
	keys := map[string][]byte{}
	for _, n := range nodes {
		if prev != nil {
			if b, ok := prev.breakers[n.Alias]; ok {
				v.breakers[n.Alias] = b
			}
		}
		if v.breakers[n.Alias] == nil {
			v.breakers[n.Alias] = circuit.New(n.Alias, s.breakerOpts...)
		}
		if n.BlsKey == "" {
			continue
		}
		if raw, err := stateproof.DecodePublicKey(n.BlsKey); err == nil {
			keys[n.Alias] = raw
		} else {
			s.logger.Warn("ignoring malformed node bls key", "node", n.Alias)
		}
	}
	if len(keys) > 0 {
		v.verifier = stateproof.NewVerifier(keys, len(nodes)-faulty(len(nodes)), s.parsers)
	}
	return v
}

// PendingOpen is a pool between Open and OpenAck. Its name stays reserved
// until OpenAck or AbortOpen.
type PendingOpen struct {
	pool *openPool
}

// PrepareOpen reserves name and loads its ledger from disk.
func (s *Service) PrepareOpen(name, configJSON string) (*PendingOpen, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	var cfg OpenConfig
	if configJSON != "" && configJSON != "null" {
		if err := validation.DecodeJSON(configJSON, &cfg); err != nil {
			return nil, err
		}
	}
	raw, err := os.ReadFile(genesisPath(s.dir, name))
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodePoolLedgerNotCreated, "pool %q does not exist", name)
	}
	genesis, err := ParseTxns(raw)
	if err != nil {
		return nil, err
	}
	txns := genesis
	if cached, err := readSnapshot(snapshotPath(s.dir, name)); err != nil {
		s.logger.Warn("ignoring unreadable pool snapshot", "pool", name, "error", err)
	} else if extends(cached, genesis) {
		txns = cached
	}
	nodes, err := NodesFromTxns(txns, s.ProtocolVersion())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, open := s.names[name]; open {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "pool %q is already open", name)
	}
	s.names[name] = struct{}{}

	p := &openPool{
		name:       name,
		timeout:    s.timeout,
		extTimeout: s.extTimeout,
		preordered: cfg.PreorderedNodes,
		readNodes:  DefaultNumberReadNodes,
	}
	if cfg.Timeout != nil {
		p.timeout = time.Duration(*cfg.Timeout) * time.Second
	}
	if cfg.ExtendedTimeout != nil {
		p.extTimeout = time.Duration(*cfg.ExtendedTimeout) * time.Second
	}
	if cfg.NumberReadNodes != nil {
		p.readNodes = *cfg.NumberReadNodes
	}
	p.view = s.newView(txns, nodes, nil)
	return &PendingOpen{pool: p}, nil
}

// FinishOpen catches up the pool ledger and allocates the handle.
func (s *Service) FinishOpen(ctx context.Context, pending *PendingOpen) (command.PoolHandle, error) {
	p := pending.pool
	v, err := s.catchup(ctx, p, p.current())
	if err != nil {
		s.AbortOpen(pending)
		return command.PoolHandle(command.InvalidHandle), err
	}
	p.swap(v)
	h := s.pools.Insert(p)
	s.logger.InfoContext(ctx, "pool opened", "pool", p.name, "nodes", len(v.nodes), "txns", len(v.txns))
	return h, nil
}

// AbortOpen releases the name reserved by PrepareOpen.
func (s *Service) AbortOpen(pending *PendingOpen) {
	s.release(pending.pool.name)
}

func (s *Service) release(name string) {
	s.mu.Lock()
	delete(s.names, name)
	s.mu.Unlock()
}

// Open runs both phases inline.
func (s *Service) Open(ctx context.Context, name, configJSON string) (command.PoolHandle, error) {
	p, err := s.PrepareOpen(name, configJSON)
	if err != nil {
		return command.PoolHandle(command.InvalidHandle), err
	}
	return s.FinishOpen(ctx, p)
}

func (s *Service) get(h command.PoolHandle) (*openPool, error) {
	p, ok := s.pools.Get(h)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodePoolLedgerInvalidPoolHandle, "unknown pool handle %d", h)
	}
	return p, nil
}

// PendingClose is a pool detached from its handle that still drains
// requests in flight.
type PendingClose struct {
	pool *openPool
}

// PrepareClose invalidates h.
func (s *Service) PrepareClose(h command.PoolHandle) (*PendingClose, error) {
	p, ok := s.pools.Remove(h)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodePoolLedgerInvalidPoolHandle, "unknown pool handle %d", h)
	}
	return &PendingClose{pool: p}, nil
}

// FinishClose waits for requests in flight, drops node connections and
// releases the pool name.
func (s *Service) FinishClose(ctx context.Context, pending *PendingClose) error {
	p := pending.pool
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "closing pool with requests in flight", "pool", p.name)
	}
	for _, n := range p.current().nodes {
		s.transport.Disconnect(n.Address)
	}
	s.release(p.name)
	s.logger.InfoContext(ctx, "pool closed", "pool", p.name)
	return nil
}

// Close runs both phases inline.
func (s *Service) Close(ctx context.Context, h command.PoolHandle) error {
	p, err := s.PrepareClose(h)
	if err != nil {
		return err
	}
	return s.FinishClose(ctx, p)
}

// PendingRefresh is a catchup between Refresh and RefreshAck.
type PendingRefresh struct {
	pool *openPool
	view *view
}

// PrepareRefresh captures the current ledger of h.
func (s *Service) PrepareRefresh(h command.PoolHandle) (*PendingRefresh, error) {
	p, err := s.get(h)
	if err != nil {
		return nil, err
	}
	return &PendingRefresh{pool: p, view: p.current()}, nil
}

// FinishRefresh catches up and installs the new validator set.
func (s *Service) FinishRefresh(ctx context.Context, pending *PendingRefresh) error {
	v, err := s.catchup(ctx, pending.pool, pending.view)
	if err != nil {
		return err
	}
	pending.pool.swap(v)
	s.logger.InfoContext(ctx, "pool refreshed", "pool", pending.pool.name, "nodes", len(v.nodes), "txns", len(v.txns))
	return nil
}

// Refresh runs both phases inline.
func (s *Service) Refresh(ctx context.Context, h command.PoolHandle) error {
	p, err := s.PrepareRefresh(h)
	if err != nil {
		return err
	}
	return s.FinishRefresh(ctx, p)
}

// Nodes returns the aliases and BLS keys of the validators of h.
func (s *Service) Nodes(h command.PoolHandle) ([]Node, error) {
	p, err := s.get(h)
	if err != nil {
		return nil, err
	}
	return slices.Clone(p.current().nodes), nil
}

// Opened is the number of open pools.
func (s *Service) Opened() int {
	return s.pools.Len()
}

// Shutdown closes every pool and the transport.
func (s *Service) Shutdown(ctx context.Context) error {
	var handles []command.PoolHandle
	s.pools.Range(func(h command.PoolHandle, _ *openPool) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		if err := s.Close(ctx, h); err != nil {
			s.logger.WarnContext(ctx, "close pool", "handle", h, "error", err)
		}
	}
	return s.transport.Close()
}
