package pool_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"indy/internal/ledger"
	"indy/internal/ledger/stateproof"
	"indy/internal/pool"
	"indy/internal/pool/pooltest"
)

type QUICSuite struct {
	suite.Suite
	ctx     context.Context
	nodes   *pooltest.Pool
	servers []*pool.QUICServer
	client  *pool.QUICTransport
}

func TestQUICSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("opens UDP sockets")
	}
	suite.Run(t, new(QUICSuite))
}

func (s *QUICSuite) SetupTest() {
	s.ctx = context.Background()
	nodes, err := pooltest.New(2, "Node1", "Node2", "Node3", "Node4")
	s.Require().NoError(err)
	s.nodes = nodes
	s.servers = nil
	for _, n := range nodes.Nodes() {
		srv, err := pool.ListenQUIC("127.0.0.1:0", n.Handle, slog.Default())
		s.Require().NoError(err)
		s.servers = append(s.servers, srv)
		nodes.SetAddress(n.Alias, srv.Addr())
	}
	s.client, err = pool.NewQUICTransport(slog.Default())
	s.Require().NoError(err)
}

func (s *QUICSuite) TearDownTest() {
	for _, srv := range s.servers {
		s.NoError(srv.Close())
	}
}

func (s *QUICSuite) TestRoundTrip() {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	reply, err := s.client.Send(ctx, s.servers[0].Addr(), []byte(`{"op":"LEDGER_STATUS","ledgerId":0}`))
	s.Require().NoError(err)
	s.Contains(string(reply), `"txnSeqNo":4`)

	s.client.Disconnect(s.servers[0].Addr())
	_, err = s.client.Send(ctx, s.servers[0].Addr(), []byte(`{"op":"LEDGER_STATUS","ledgerId":0}`))
	s.Require().NoError(err, "a dropped connection is redialled")
	s.NoError(s.client.Close())
}

func (s *QUICSuite) TestPoolOverQUIC() {
	dir := s.T().TempDir()
	path, err := s.nodes.WriteGenesis(s.T().TempDir())
	s.Require().NoError(err)
	svc := pool.NewService(dir, s.client, stateproof.NewRegistry(), pool.WithTimeouts(5*time.Second, 5*time.Second))
	s.Require().NoError(svc.CreateConfig("local", `{"genesis_txn":"`+path+`"}`))

	h, err := svc.Open(s.ctx, "local", "")
	s.Require().NoError(err)
	s.Require().NoError(s.nodes.SetRead(schemaRead()))
	reply, err := svc.Submit(s.ctx, h, schemaRequest(1))
	s.Require().NoError(err)
	_, err = ledger.ReplyResult(reply)
	s.Require().NoError(err)

	reply, err = svc.Submit(s.ctx, h, request(ledger.TxnNym, 8, nil))
	s.Require().NoError(err)
	s.Contains(reply, `"seqNo":9`)
	s.Require().NoError(svc.Shutdown(s.ctx))
}
