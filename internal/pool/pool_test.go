package pool_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"indy/internal/command"
	"indy/internal/ledger"
	"indy/internal/ledger/stateproof"
	"indy/internal/pool"
	"indy/internal/pool/mocks"
	"indy/internal/pool/pooltest"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/testutil"
)

type PoolSuite struct {
	suite.Suite
	ctx       context.Context
	dir       string
	nodes     *pooltest.Pool
	transport *pool.MemoryTransport
	svc       *pool.Service
}

func TestPoolSuite(t *testing.T) {
	suite.Run(t, new(PoolSuite))
}

func (s *PoolSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()
	nodes, err := pooltest.New(2, "Node1", "Node2", "Node3", "Node4")
	s.Require().NoError(err)
	s.nodes = nodes
	s.transport = pool.NewMemoryTransport()
	s.nodes.Register(s.transport)
	s.svc = pool.NewService(s.dir, s.transport, stateproof.NewRegistry(), pool.WithTimeouts(2*time.Second, 2*time.Second))
}

func (s *PoolSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}

func (s *PoolSuite) genesisConfig() string {
	path, err := s.nodes.WriteGenesis(s.T().TempDir())
	s.Require().NoError(err)
	raw, err := json.Marshal(pool.PoolConfig{GenesisTxn: path})
	s.Require().NoError(err)
	return string(raw)
}

func (s *PoolSuite) open(name, config string) command.PoolHandle {
	s.T().Helper()
	s.Require().NoError(s.svc.CreateConfig(name, s.genesisConfig()))
	h, err := s.svc.Open(s.ctx, name, config)
	s.Require().NoError(err)
	return h
}

func request(txnType string, reqID int, extra map[string]any) string {
	op := map[string]any{"type": txnType}
	for k, v := range extra {
		op[k] = v
	}
	raw, _ := json.Marshal(map[string]any{
		"reqId":           reqID,
		"identifier":      testutil.TrusteeDID,
		"operation":       op,
		"protocolVersion": 2,
	})
	return string(raw)
}

func schemaRead() json.RawMessage {
	raw, _ := json.Marshal(map[string]any{
		"type":    ledger.TxnGetSchema,
		"dest":    testutil.IssuerDID,
		"seqNo":   14,
		"txnTime": 1700000000,
		"data":    map[string]any{"name": "gvt", "version": "1.0", "attr_names": []string{"age", "name"}},
	})
	return raw
}

func schemaRequest(reqID int) string {
	return request(ledger.TxnGetSchema, reqID, map[string]any{
		"dest": testutil.IssuerDID,
		"data": map[string]any{"name": "gvt", "version": "1.0"},
	})
}

func (s *PoolSuite) TestConfigs() {
	s.Run("create and list", func() {
		s.Require().NoError(s.svc.CreateConfig("sandbox", s.genesisConfig()))
		s.Require().NoError(s.svc.CreateConfig("staging", s.genesisConfig()))
		list, err := s.svc.ListConfigs()
		s.Require().NoError(err)
		s.JSONEq(`[{"pool":"sandbox"},{"pool":"staging"}]`, list)
	})

	s.Run("duplicate name", func() {
		s.requireCode(s.svc.CreateConfig("sandbox", s.genesisConfig()), dErrors.CodePoolLedgerConfigAlreadyExists)
	})

	s.Run("invalid names", func() {
		for _, name := range []string{"", "..", "a/b"} {
			s.requireCode(s.svc.CreateConfig(name, s.genesisConfig()), dErrors.CodeInvalidStructure)
		}
	})

	s.Run("missing genesis file", func() {
		err := s.svc.CreateConfig("missing", `{"genesis_txn":"/nonexistent/genesis"}`)
		s.requireCode(err, dErrors.CodeIOError)
	})

	s.Run("malformed genesis file", func() {
		path := filepath.Join(s.T().TempDir(), "bad")
		s.Require().NoError(os.WriteFile(path, []byte("not json\n"), 0o600))
		raw, _ := json.Marshal(pool.PoolConfig{GenesisTxn: path})
		s.requireCode(s.svc.CreateConfig("bad", string(raw)), dErrors.CodeInvalidStructure)
	})

	s.Run("default genesis", func() {
		path, err := s.nodes.WriteGenesis(s.T().TempDir())
		s.Require().NoError(err)
		svc := pool.NewService(s.T().TempDir(), s.transport, stateproof.NewRegistry(), pool.WithDefaultGenesis(path))
		s.Require().NoError(svc.CreateConfig("default", ""))
		svc = pool.NewService(s.T().TempDir(), s.transport, stateproof.NewRegistry())
		s.requireCode(svc.CreateConfig("default", ""), dErrors.CodeInvalidStructure)
	})

	s.Run("delete", func() {
		s.Require().NoError(s.svc.DeleteConfig("staging"))
		s.requireCode(s.svc.DeleteConfig("staging"), dErrors.CodePoolLedgerNotCreated)
		list, err := s.svc.ListConfigs()
		s.Require().NoError(err)
		s.JSONEq(`[{"pool":"sandbox"}]`, list)
	})

	s.Run("open pools cannot be deleted", func() {
		h, err := s.svc.Open(s.ctx, "sandbox", "")
		s.Require().NoError(err)
		s.requireCode(s.svc.DeleteConfig("sandbox"), dErrors.CodeInvalidState)
		s.Require().NoError(s.svc.Close(s.ctx, h))
		s.Require().NoError(s.svc.DeleteConfig("sandbox"))
	})
}

func (s *PoolSuite) TestOpen() {
	s.Run("genesis pool", func() {
		h := s.open("sandbox", "")
		nodes, err := s.svc.Nodes(h)
		s.Require().NoError(err)
		s.Len(nodes, 4)
		s.Equal("Node1", nodes[0].Alias)
		s.NotEmpty(nodes[0].BlsKey)
		s.Equal(1, s.svc.Opened())
	})

	s.Run("already open", func() {
		_, err := s.svc.Open(s.ctx, "sandbox", "")
		s.requireCode(err, dErrors.CodeInvalidState)
	})

	s.Run("unknown pool", func() {
		_, err := s.svc.Open(s.ctx, "nope", "")
		s.requireCode(err, dErrors.CodePoolLedgerNotCreated)
	})

	s.Run("invalid open config", func() {
		s.Require().NoError(s.svc.CreateConfig("tuned", s.genesisConfig()))
		_, err := s.svc.Open(s.ctx, "tuned", `{"timeout":0}`)
		s.requireCode(err, dErrors.CodeInvalidStructure)
		_, err = s.svc.Open(s.ctx, "tuned", `{"number_read_nodes":-1}`)
		s.requireCode(err, dErrors.CodeInvalidStructure)
	})

	s.Run("abort releases the name", func() {
		pending, err := s.svc.PrepareOpen("tuned", "")
		s.Require().NoError(err)
		_, err = s.svc.PrepareOpen("tuned", "")
		s.requireCode(err, dErrors.CodeInvalidState)
		s.svc.AbortOpen(pending)
		pending, err = s.svc.PrepareOpen("tuned", "")
		s.Require().NoError(err)
		_, err = s.svc.FinishOpen(s.ctx, pending)
		s.Require().NoError(err)
	})

	s.Run("no node answers", func() {
		s.Require().NoError(s.svc.CreateConfig("down", s.genesisConfig()))
		for _, n := range s.nodes.Nodes() {
			n.SetFault(pooltest.Down)
		}
		_, err := s.svc.Open(s.ctx, "down", "")
		s.requireCode(err, dErrors.CodePoolLedgerTimeout)
		for _, n := range s.nodes.Nodes() {
			n.SetFault(pooltest.Healthy)
		}
		_, err = s.svc.Open(s.ctx, "down", "")
		s.Require().NoError(err, "a failed open must release the name")
	})
}

func (s *PoolSuite) TestProtocolVersion() {
	s.Run("unsupported version", func() {
		s.requireCode(s.svc.SetProtocolVersion(3), dErrors.CodePoolIncompatibleProtocol)
		s.Equal(pool.DefaultProtocolVersion, s.svc.ProtocolVersion())
	})

	s.Run("genesis layout must match", func() {
		s.Require().NoError(s.svc.CreateConfig("sandbox", s.genesisConfig()))
		s.Require().NoError(s.svc.SetProtocolVersion(1))
		_, err := s.svc.Open(s.ctx, "sandbox", "")
		s.requireCode(err, dErrors.CodePoolIncompatibleProtocol)
	})

	s.Run("protocol 1 pool", func() {
		old, err := pooltest.New(1, "Alpha", "Beta", "Gamma", "Delta")
		s.Require().NoError(err)
		old.Register(s.transport)
		path, err := old.WriteGenesis(s.T().TempDir())
		s.Require().NoError(err)
		raw, _ := json.Marshal(pool.PoolConfig{GenesisTxn: path})
		s.Require().NoError(s.svc.CreateConfig("legacy", string(raw)))
		h, err := s.svc.Open(s.ctx, "legacy", "")
		s.Require().NoError(err)
		nodes, err := s.svc.Nodes(h)
		s.Require().NoError(err)
		s.Len(nodes, 4)
	})
}

func (s *PoolSuite) TestCatchup() {
	s.Require().NoError(s.svc.CreateConfig("sandbox", s.genesisConfig()))
	_, err := s.nodes.AddNode("Node5", "127.0.0.1:9710")
	s.Require().NoError(err)
	s.nodes.Register(s.transport)

	s.Run("learns validators added after genesis", func() {
		h, err := s.svc.Open(s.ctx, "sandbox", "")
		s.Require().NoError(err)
		nodes, err := s.svc.Nodes(h)
		s.Require().NoError(err)
		s.Len(nodes, 5)
		s.FileExists(filepath.Join(s.dir, "sandbox", "sandbox.snapshot.zst"))
		s.Require().NoError(s.svc.Close(s.ctx, h))
	})

	s.Run("reuses the stored snapshot", func() {
		for _, n := range s.nodes.Nodes() {
			n.SetFault(pooltest.Stale)
		}
		h, err := s.svc.Open(s.ctx, "sandbox", "")
		s.Require().NoError(err)
		nodes, err := s.svc.Nodes(h)
		s.Require().NoError(err)
		s.Len(nodes, 5)
		s.Require().NoError(s.svc.Close(s.ctx, h))
	})

	s.Run("a stale minority is outvoted", func() {
		for _, n := range s.nodes.Nodes() {
			n.SetFault(pooltest.Healthy)
		}
		s.nodes.Node("Node2").SetFault(pooltest.Stale)
		s.Require().NoError(s.svc.DeleteConfig("sandbox"))
		s.Require().NoError(s.svc.CreateConfig("sandbox", s.genesisConfig()))
		h, err := s.svc.Open(s.ctx, "sandbox", "")
		s.Require().NoError(err)
		nodes, err := s.svc.Nodes(h)
		s.Require().NoError(err)
		s.Len(nodes, 5)
	})
}

func (s *PoolSuite) TestRefresh() {
	h := s.open("sandbox", "")
	_, err := s.nodes.AddNode("Node5", "127.0.0.1:9710")
	s.Require().NoError(err)
	s.nodes.Register(s.transport)

	s.Require().NoError(s.svc.Refresh(s.ctx, h))
	nodes, err := s.svc.Nodes(h)
	s.Require().NoError(err)
	s.Len(nodes, 5)

	s.requireCode(s.svc.Refresh(s.ctx, h+100), dErrors.CodePoolLedgerInvalidPoolHandle)
}

func (s *PoolSuite) TestRead() {
	s.Require().NoError(s.nodes.SetRead(schemaRead()))

	s.Run("proven reply", func() {
		h := s.open("proven", "")
		reply, err := s.svc.Submit(s.ctx, h, schemaRequest(1))
		s.Require().NoError(err)
		parser := ledger.NewService(nil, nil, stateproof.NewRegistry())
		id, _, err := parser.ParseGetSchemaResponse(reply)
		s.Require().NoError(err)
		s.Equal(testutil.IssuerDID+":2:gvt:1.0", id)
	})

	s.Run("tampering node is blacklisted", func() {
		h := s.open("tampered", `{"preordered_nodes":["Node1"],"number_read_nodes":1}`)
		node1 := s.nodes.Node("Node1")
		node1.SetFault(pooltest.Tamper)
		before := node1.Requests()

		reply, err := s.svc.Submit(s.ctx, h, schemaRequest(2))
		s.Require().NoError(err)
		result, err := ledger.ReplyResult(reply)
		s.Require().NoError(err)
		s.Contains(string(result), `"seqNo":14`)
		s.Equal(before+1, node1.Requests())

		_, err = s.svc.Submit(s.ctx, h, schemaRequest(3))
		s.Require().NoError(err)
		s.Equal(before+1, node1.Requests(), "blacklisted node must not be asked again")
		node1.SetFault(pooltest.Healthy)
	})

	s.Run("unproven reply needs agreement", func() {
		s.Require().NoError(s.nodes.SetRead(json.RawMessage(`{"type":"3","seqNo":5,"data":{"txn":{"type":"1"}}}`)))
		h := s.open("unproven", "")
		reply, err := s.svc.Submit(s.ctx, h, request(ledger.TxnGetTxn, 4, map[string]any{"ledgerId": 1, "data": 5}))
		s.Require().NoError(err)
		s.Contains(reply, `"seqNo":5`)
	})

	s.Run("silent pool", func() {
		h := s.open("silent", `{"timeout":1}`)
		for _, n := range s.nodes.Nodes() {
			n.SetFault(pooltest.Silent)
		}
		defer func() {
			for _, n := range s.nodes.Nodes() {
				n.SetFault(pooltest.Healthy)
			}
		}()
		_, err := s.svc.Submit(s.ctx, h, schemaRequest(5))
		s.requireCode(err, dErrors.CodePoolLedgerTimeout)
	})

	s.Run("request without operation", func() {
		h := s.open("malformed", "")
		_, err := s.svc.Submit(s.ctx, h, `{"reqId":1}`)
		s.requireCode(err, dErrors.CodeInvalidStructure)
	})
}

func (s *PoolSuite) TestWrite() {
	nym := request(ledger.TxnNym, 42, map[string]any{"dest": testutil.MyDID})

	s.Run("consensus", func() {
		h := s.open("healthy", "")
		s.nodes.Node("Node4").SetFault(pooltest.Diverge)
		defer s.nodes.Node("Node4").SetFault(pooltest.Healthy)
		reply, err := s.svc.Submit(s.ctx, h, nym)
		s.Require().NoError(err)
		result, err := ledger.ReplyResult(reply)
		s.Require().NoError(err)
		s.NotContains(string(result), "auditPath")
		s.Contains(string(result), `"seqNo":43`)
	})

	s.Run("no agreement", func() {
		h := s.open("diverged", "")
		for _, alias := range []string{"Node1", "Node2", "Node3"} {
			s.nodes.Node(alias).SetFault(pooltest.Diverge)
		}
		defer func() {
			for _, n := range s.nodes.Nodes() {
				n.SetFault(pooltest.Healthy)
			}
		}()
		_, err := s.svc.Submit(s.ctx, h, nym)
		s.requireCode(err, dErrors.CodeLedgerNoConsensus)
	})

	s.Run("no reply in time", func() {
		h := s.open("silent", `{"extended_timeout":1}`)
		for _, n := range s.nodes.Nodes() {
			n.SetFault(pooltest.Silent)
		}
		defer func() {
			for _, n := range s.nodes.Nodes() {
				n.SetFault(pooltest.Healthy)
			}
		}()
		start := time.Now()
		_, err := s.svc.Submit(s.ctx, h, nym)
		s.requireCode(err, dErrors.CodePoolLedgerTimeout)
		s.Less(time.Since(start), 2*time.Second)
	})
}

func (s *PoolSuite) TestSubmitAction() {
	h := s.open("sandbox", "")
	info := request(ledger.TxnGetValidatorInfo, 7, nil)

	s.Run("every node", func() {
		out, err := s.svc.SubmitAction(s.ctx, h, info, nil, 0)
		s.Require().NoError(err)
		s.Len(out, 4)
		s.Contains(out["Node3"], `"REPLY"`)
	})

	s.Run("selected nodes with a silent one", func() {
		s.nodes.Node("Node2").SetFault(pooltest.Silent)
		defer s.nodes.Node("Node2").SetFault(pooltest.Healthy)
		out, err := s.svc.SubmitAction(s.ctx, h, info, []string{"Node1", "Node2"}, 500*time.Millisecond)
		s.Require().NoError(err)
		s.Len(out, 2)
		s.Contains(out["Node1"], `"REPLY"`)
		s.Equal("timeout", out["Node2"])
	})

	s.Run("unknown node", func() {
		_, err := s.svc.SubmitAction(s.ctx, h, info, []string{"Node9"}, 0)
		s.requireCode(err, dErrors.CodeInvalidStructure)
	})
}

func (s *PoolSuite) TestClose() {
	h := s.open("sandbox", "")

	pending, err := s.svc.PrepareClose(h)
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, h, schemaRequest(1))
	s.requireCode(err, dErrors.CodePoolLedgerInvalidPoolHandle)
	s.Require().NoError(s.svc.FinishClose(s.ctx, pending))

	s.requireCode(s.svc.Close(s.ctx, h), dErrors.CodePoolLedgerInvalidPoolHandle)
	_, err = s.svc.Nodes(h)
	s.requireCode(err, dErrors.CodePoolLedgerInvalidPoolHandle)

	_, err = s.svc.Open(s.ctx, "sandbox", "")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Shutdown(s.ctx))
	s.Equal(0, s.svc.Opened())
}

func (s *PoolSuite) TestTransportFailures() {
	ctrl := gomock.NewController(s.T())
	transport := mocks.NewMockTransport(ctrl)
	svc := pool.NewService(s.T().TempDir(), transport, stateproof.NewRegistry(), pool.WithTimeouts(time.Second, time.Second))
	s.Require().NoError(svc.CreateConfig("sandbox", s.genesisConfig()))

	s.Run("unreachable nodes", func() {
		transport.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, pool.ErrUnreachable).Times(4)
		_, err := svc.Open(s.ctx, "sandbox", "")
		s.requireCode(err, dErrors.CodePoolLedgerTimeout)
	})

	s.Run("garbage replies", func() {
		transport.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]byte("garbage"), nil).Times(4)
		_, err := svc.Open(s.ctx, "sandbox", "")
		s.requireCode(err, dErrors.CodePoolLedgerTimeout)
	})

	s.Run("shutdown closes the transport", func() {
		transport.EXPECT().Close().Return(errors.New("boom"))
		s.Require().Error(svc.Shutdown(s.ctx))
	})
}
