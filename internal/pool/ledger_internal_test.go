package pool

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "indy/pkg/domain-errors"
)

type LedgerInternalSuite struct {
	suite.Suite
}

func TestLedgerInternalSuite(t *testing.T) {
	suite.Run(t, new(LedgerInternalSuite))
}

func (s *LedgerInternalSuite) TestFrames() {
	s.Run("round trip", func() {
		var buf bytes.Buffer
		s.Require().NoError(writeFrame(&buf, []byte(`{"op":"LEDGER_STATUS"}`)))
		s.Require().NoError(writeFrame(&buf, nil))
		s.Equal([]byte{0, 0, 0, 22}, buf.Bytes()[:4])

		first, err := readFrame(&buf)
		s.Require().NoError(err)
		s.Equal(`{"op":"LEDGER_STATUS"}`, string(first))
		second, err := readFrame(&buf)
		s.Require().NoError(err)
		s.Empty(second)
	})

	s.Run("oversized length is rejected", func() {
		_, err := readFrame(bytes.NewReader([]byte{0x7f, 0xff, 0xff, 0xff}))
		s.Require().ErrorContains(err, "too large")
		s.Require().Error(writeFrame(&bytes.Buffer{}, make([]byte, maxFrameSize+1)))
	})

	s.Run("truncated payload", func() {
		_, err := readFrame(bytes.NewReader([]byte{0, 0, 0, 9, 'a'}))
		s.Require().Error(err)
	})
}

func (s *LedgerInternalSuite) TestMerkleRoot() {
	empty := sha256.Sum256(nil)
	s.Equal(empty[:], merkleRoot(nil))

	a, b, c := []byte("a"), []byte("b"), []byte("c")
	s.Equal(leafHash(a), merkleRoot([][]byte{a}))
	s.Equal(nodeHash(leafHash(a), leafHash(b)), merkleRoot([][]byte{a, b}))
	s.Equal(nodeHash(nodeHash(leafHash(a), leafHash(b)), leafHash(c)), merkleRoot([][]byte{a, b, c}))
	s.NotEqual(leafHash(a), nodeHash(a, nil), "leaves and nodes are domain separated")

	s.Run("formatting does not change the root", func() {
		compact, err := LedgerRoot([]json.RawMessage{json.RawMessage(`{"a":1,"b":[1,2]}`)})
		s.Require().NoError(err)
		spaced, err := LedgerRoot([]json.RawMessage{json.RawMessage(`{ "b": [1, 2], "a": 1 }`)})
		s.Require().NoError(err)
		s.Equal(compact, spaced)
	})
}

func (s *LedgerInternalSuite) TestSnapshot() {
	path := filepath.Join(s.T().TempDir(), "pool.snapshot.zst")
	missing, err := readSnapshot(path)
	s.Require().NoError(err)
	s.Nil(missing)

	txns := []json.RawMessage{json.RawMessage(`{"seq":1}`), json.RawMessage(`{"seq":2}`)}
	s.Require().NoError(writeSnapshot(path, txns))
	got, err := readSnapshot(path)
	s.Require().NoError(err)
	s.Equal(txns, got)

	s.True(extends(got, txns[:1]))
	s.True(extends(got, txns))
	s.False(extends(txns[:1], got))
	s.False(extends(got, []json.RawMessage{json.RawMessage(`{"seq":9}`)}))
}

func (s *LedgerInternalSuite) TestParseTxns() {
	txns, err := ParseTxns([]byte("{\"a\":1}\n\n  {\"b\":2}  \n"))
	s.Require().NoError(err)
	s.Len(txns, 2)
	s.Equal(`{"b":2}`, string(txns[1]))

	_, err = ParseTxns([]byte("\n\n"))
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
}

func (s *LedgerInternalSuite) TestNodesFromTxns() {
	node := func(dest, alias string, port int, services []string) json.RawMessage {
		data := map[string]any{"alias": alias, "client_ip": "10.0.0.1", "client_port": port}
		if services != nil {
			data["services"] = services
		}
		raw, _ := json.Marshal(map[string]any{
			"txn": map[string]any{"type": "0", "data": map[string]any{"dest": dest, "data": data}},
		})
		return raw
	}
	nym, _ := json.Marshal(map[string]any{"txn": map[string]any{"type": "1", "data": map[string]any{}}})

	txns := []json.RawMessage{
		node("d1", "Node1", 9702, []string{"VALIDATOR"}),
		node("d2", "Node2", 9704, []string{"VALIDATOR"}),
		nym,
		node("d1", "", 9800, nil),
		node("d2", "", 0, []string{}),
	}
	nodes, err := NodesFromTxns(txns, 2)
	s.Require().NoError(err)
	s.Require().Len(nodes, 1)
	s.Equal("Node1", nodes[0].Alias)
	s.Equal("10.0.0.1:9800", nodes[0].Address)

	_, err = NodesFromTxns(txns, 1)
	s.True(dErrors.HasCode(err, dErrors.CodePoolIncompatibleProtocol))

	_, err = NodesFromTxns(txns[:1:1], 2)
	s.Require().NoError(err)
	_, err = NodesFromTxns([]json.RawMessage{nym}, 2)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
}

func (s *LedgerInternalSuite) TestAgreedStatus() {
	statuses := map[string]LedgerStatus{
		"Node1": {TxnSeqNo: 5, MerkleRoot: "r5"},
		"Node2": {TxnSeqNo: 5, MerkleRoot: "r5"},
		"Node3": {TxnSeqNo: 4, MerkleRoot: "r4"},
		"Node4": {TxnSeqNo: 5, MerkleRoot: "bogus"},
	}
	st, sources, ok := agreedStatus(statuses, 2)
	s.Require().True(ok)
	s.Equal(5, st.TxnSeqNo)
	s.Equal("r5", st.MerkleRoot)
	s.Equal([]string{"Node1", "Node2"}, sources)

	_, _, ok = agreedStatus(statuses, 3)
	s.False(ok)
	s.Equal(1, faulty(4))
	s.Equal(2, faulty(7))
}
