package locator_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"indy/internal/cache"
	"indy/internal/ledger"
	"indy/internal/locator"
	"indy/internal/platform/config"
	"indy/internal/platform/logger"
	"indy/internal/platform/tracer"
	"indy/internal/pool"
	"indy/internal/pool/pooltest"
	fixtures "indy/pkg/testutil"
)

type LocatorSuite struct {
	suite.Suite
	ctx   context.Context
	nodes *pooltest.Pool
	reg   *prometheus.Registry
	l     *locator.Locator
}

func TestLocatorSuite(t *testing.T) {
	suite.Run(t, new(LocatorSuite))
}

func (s *LocatorSuite) SetupTest() {
	s.ctx = context.Background()
	nodes, err := pooltest.New(2, "Node1", "Node2", "Node3", "Node4")
	s.Require().NoError(err)
	s.nodes = nodes
	transport := pool.NewMemoryTransport()
	nodes.Register(transport)

	cfg := config.Default()
	cfg.HomeDir = s.T().TempDir()
	cfg.Workers = 2
	cfg.PoolTimeout = 2 * time.Second
	cfg.PoolExtTimeout = 2 * time.Second

	s.reg = prometheus.NewRegistry()
	s.l, err = locator.New(cfg,
		locator.WithLogger(logger.Discard()),
		locator.WithRegisterer(s.reg),
		locator.WithTransport(transport),
		locator.WithTracer(tracer.NewNoop()),
	)
	s.Require().NoError(err)
}

func (s *LocatorSuite) TearDownTest() {
	s.NoError(s.l.Shutdown(s.ctx))
}

func (s *LocatorSuite) TestWiring() {
	s.Equal([]string{"null"}, s.l.Payments.Methods())

	config := fixtures.WalletConfig()
	s.Require().NoError(s.l.Wallets.Create(s.ctx, config, fixtures.WalletCredentials()))
	h, err := s.l.Wallets.Open(s.ctx, config, fixtures.WalletCredentials())
	s.Require().NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.l.Prometheus.WalletsOpened))

	did, verkey, err := s.l.Dids.CreateAndStoreMyDid(s.ctx, h, `{"seed":"`+fixtures.MySeed+`"}`)
	s.Require().NoError(err)
	s.Equal(fixtures.MyDID, did)
	s.Equal(fixtures.MyVerkey, verkey)

	req, err := s.l.Ledger.BuildGetNymRequest(did, fixtures.TrusteeDID)
	s.Require().NoError(err)
	signed, err := s.l.Ledger.SignRequest(s.ctx, h, did, req)
	s.Require().NoError(err)
	s.Contains(signed, `"signature"`)

	raw, err := s.l.CollectMetrics()
	s.Require().NoError(err)
	var doc map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal([]byte(raw), &doc))
	s.Contains(doc, "wallet_count")
}

func (s *LocatorSuite) TestCacheReadsThroughPool() {
	s.Require().NoError(s.nodes.SetRead(json.RawMessage(`{"type":"` + ledger.TxnGetSchema + `","dest":"` + fixtures.IssuerDID +
		`","seqNo":14,"txnTime":1700000000,"data":{"name":"gvt","version":"1.0","attr_names":["age","name"]}}`)))

	path, err := s.nodes.WriteGenesis(s.T().TempDir())
	s.Require().NoError(err)
	poolConfig, err := json.Marshal(pool.PoolConfig{GenesisTxn: path})
	s.Require().NoError(err)
	s.Require().NoError(s.l.Pools.CreateConfig("sandbox", string(poolConfig)))
	ph, err := s.l.Pools.Open(s.ctx, "sandbox", "")
	s.Require().NoError(err)

	config := fixtures.WalletConfig()
	s.Require().NoError(s.l.Wallets.Create(s.ctx, config, fixtures.WalletCredentials()))
	h, err := s.l.Wallets.Open(s.ctx, config, fixtures.WalletCredentials())
	s.Require().NoError(err)

	opts, err := cache.ParseGetOptions("")
	s.Require().NoError(err)
	schemaID := fixtures.IssuerDID + ":2:gvt:1.0"
	schema, err := s.l.Cache.GetSchema(s.ctx, ph, h, fixtures.MyDID, schemaID, opts)
	s.Require().NoError(err)
	s.Contains(schema, `"attrNames":["age","name"]`)

	cached, ok, err := s.l.Cache.CachedSchema(s.ctx, h, schemaID, opts)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(schema, cached)
	s.Equal(1.0, testutil.ToFloat64(s.l.Prometheus.LedgerRequests.WithLabelValues("read", "ok")))
}

func (s *LocatorSuite) TestShutdownClosesEverything() {
	config := fixtures.WalletConfig()
	s.Require().NoError(s.l.Wallets.Create(s.ctx, config, fixtures.WalletCredentials()))
	_, err := s.l.Wallets.Open(s.ctx, config, fixtures.WalletCredentials())
	s.Require().NoError(err)

	s.Require().NoError(s.l.Wallets.Shutdown(s.ctx))
	s.Equal(0, s.l.Wallets.Stats().Opened)
	s.Equal(0.0, testutil.ToFloat64(s.l.Prometheus.WalletsOpened))
}
