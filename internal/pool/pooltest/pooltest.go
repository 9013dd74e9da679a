// Package pooltest runs a simulated validator pool behind the pool
// transports, for tests of the pool client and the layers above it.
package pooltest

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/mr-tron/base58"

	"indy/internal/ledger/stateproof"
	"indy/internal/ledger/stateproof/sptest"
	"indy/internal/pool"
)

// Fault is how a simulated node misbehaves.
type Fault int

const (
	Healthy Fault = iota
	// Down fails every request at the transport level.
	Down
	// Silent never answers.
	Silent
	// Tamper alters read results after signing them.
	Tamper
	// Diverge answers writes differently from everyone else.
	Diverge
	// Stale reports and serves only the genesis ledger.
	Stale
)

// Node is one simulated validator.
type Node struct {
	Alias   string
	Address string
	pool    *Pool
	fault   atomic.Int32
	hits    atomic.Int32
}

// SetFault changes how the node behaves from now on.
func (n *Node) SetFault(f Fault) { n.fault.Store(int32(f)) }

// Requests is the number of ledger requests the node answered or dropped.
func (n *Node) Requests() int { return int(n.hits.Load()) }

// Pool is a set of simulated validators sharing one pool ledger and one
// domain state.
type Pool struct {
	Keys     *sptest.Pool
	protocol int

	mu      sync.Mutex
	nodes   []*Node
	genesis int
	extra   []json.RawMessage
	reads   map[string]json.RawMessage
}

// New creates a pool of aliases with loopback addresses. Every node is in
// the genesis file.
func New(protocol int, aliases ...string) (*Pool, error) {
	keys, err := sptest.NewPool(aliases...)
	if err != nil {
		return nil, err
	}
	p := &Pool{Keys: keys, protocol: protocol, reads: map[string]json.RawMessage{}, genesis: len(aliases)}
	for i, alias := range aliases {
		p.nodes = append(p.nodes, &Node{Alias: alias, Address: "127.0.0.1:" + strconv.Itoa(9702+2*i), pool: p})
	}
	return p, nil
}

// Node returns the node called alias.
func (p *Pool) Node(alias string) *Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.nodes {
		if n.Alias == alias {
			return n
		}
	}
	return nil
}

// Nodes returns every node.
func (p *Pool) Nodes() []*Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Node(nil), p.nodes...)
}

// SetAddress moves a node, for servers bound to ephemeral ports.
func (p *Pool) SetAddress(alias, address string) {
	if n := p.Node(alias); n != nil {
		p.mu.Lock()
		n.Address = address
		p.mu.Unlock()
	}
}

// NodeTxn builds a NODE transaction in the layout of protocol.
func NodeTxn(protocol, seqNo int, alias, address, blsKey string) json.RawMessage {
	host, port := splitAddress(address)
	dest := sha256.Sum256([]byte(alias))
	data := map[string]any{
		"alias":       alias,
		"client_ip":   host,
		"client_port": port,
		"node_ip":     host,
		"node_port":   port - 1,
		"services":    []string{"VALIDATOR"},
		"blskey":      blsKey,
	}
	var txn any
	if protocol == 1 {
		txn = map[string]any{
			"data":       data,
			"dest":       base58.Encode(dest[:]),
			"identifier": "FYmoFw55GeQH7SRFa37dkx1d2dZ3zUF8ckg7wmL7ofN4",
			"txnId":      fmt.Sprintf("%064x", seqNo),
			"type":       "0",
		}
	} else {
		txn = map[string]any{
			"reqSignature": map[string]any{},
			"txn": map[string]any{
				"data":     map[string]any{"data": data, "dest": base58.Encode(dest[:])},
				"metadata": map[string]any{"from": "Th7MpTaRZVRYnPiabds81Y"},
				"type":     "0",
			},
			"txnMetadata": map[string]any{"seqNo": seqNo, "txnId": fmt.Sprintf("%064x", seqNo)},
			"ver":         "1",
		}
	}
	raw, _ := json.Marshal(txn)
	return raw
}

func splitAddress(address string) (string, int) {
	for i := len(address) - 1; i >= 0; i-- {
		if address[i] == ':' {
			port, _ := strconv.Atoi(address[i+1:])
			return address[:i], port
		}
	}
	return address, 0
}

// ledger is the full pool ledger every healthy node holds.
func (p *Pool) ledger() []json.RawMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	txns := make([]json.RawMessage, 0, p.genesis+len(p.extra))
	for i, n := range p.nodes[:p.genesis] {
		txns = append(txns, NodeTxn(p.protocol, i+1, n.Alias, n.Address, p.Keys.Keys[n.Alias].PublicKey()))
	}
	return append(txns, p.extra...)
}

// Genesis is the genesis file content: one transaction per line.
func (p *Pool) Genesis() []byte {
	txns := p.ledger()
	p.mu.Lock()
	n := p.genesis
	p.mu.Unlock()
	var out []byte
	for _, txn := range txns[:n] {
		out = append(append(out, txn...), '\n')
	}
	return out
}

// WriteGenesis stores the genesis file under dir.
func (p *Pool) WriteGenesis(dir string) (string, error) {
	path := filepath.Join(dir, "pool_transactions_genesis")
	return path, os.WriteFile(path, p.Genesis(), 0o600)
}

// AddNode appends a NODE transaction for a new validator after genesis.
// The node is known to the pool but missing from the genesis file.
func (p *Pool) AddNode(alias, address string) (*Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.Keys.Add(alias); err != nil {
		return nil, err
	}
	n := &Node{Alias: alias, Address: address, pool: p}
	p.nodes = append(p.nodes, n)
	seqNo := p.genesis + len(p.extra) + 1
	p.extra = append(p.extra, NodeTxn(p.protocol, seqNo, alias, address, p.Keys.Keys[alias].PublicKey()))
	return n, nil
}

// SetRead makes every node answer reads of result's type with result.
// Results with a built-in proof are proven against a state holding
// exactly that entry.
func (p *Pool) SetRead(result json.RawMessage) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(result, &head); err != nil {
		return err
	}
	p.mu.Lock()
	p.reads[head.Type] = result
	p.mu.Unlock()
	return nil
}

// Register serves every node on t.
func (p *Pool) Register(t *pool.MemoryTransport) {
	for _, n := range p.Nodes() {
		t.Register(n.Address, n.Handle)
	}
}

// signers are the genesis nodes, whose keys every client knows.
func (p *Pool) signers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, p.genesis)
	for _, n := range p.nodes[:p.genesis] {
		out = append(out, n.Alias)
	}
	return out
}

// Handle answers one request frame.
func (n *Node) Handle(ctx context.Context, msg []byte) ([]byte, error) {
	fault := Fault(n.fault.Load())
	switch fault {
	case Down:
		return nil, fmt.Errorf("node %s is down", n.Alias)
	case Silent:
		<-ctx.Done()
		return nil, ctx.Err()
	}
	var head struct {
		Op         string `json:"op"`
		SeqNoStart int    `json:"seqNoStart"`
		SeqNoEnd   int    `json:"seqNoEnd"`
		Operation  *struct {
			Type string `json:"type"`
		} `json:"operation"`
		ReqID uint64 `json:"reqId"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return nil, err
	}
	txns := n.pool.ledger()
	if fault == Stale {
		n.pool.mu.Lock()
		txns = txns[:n.pool.genesis]
		n.pool.mu.Unlock()
	}
	switch head.Op {
	case pool.OpLedgerStatus:
		root, err := pool.LedgerRoot(txns)
		if err != nil {
			return nil, err
		}
		return json.Marshal(pool.LedgerStatus{Op: pool.OpLedgerStatus, TxnSeqNo: len(txns), MerkleRoot: root, ProtocolVersion: n.pool.protocol})
	case pool.OpCatchupReq:
		rep := pool.CatchupRep{Op: pool.OpCatchupRep, Txns: map[string]json.RawMessage{}}
		for seqNo := head.SeqNoStart; seqNo <= head.SeqNoEnd && seqNo <= len(txns); seqNo++ {
			rep.Txns[strconv.Itoa(seqNo)] = txns[seqNo-1]
		}
		return json.Marshal(rep)
	}
	if head.Operation == nil {
		return nil, fmt.Errorf("unexpected message")
	}
	n.hits.Add(1)
	return n.answer(head.Operation.Type, head.ReqID, fault)
}

func (n *Node) answer(txnType string, reqID uint64, fault Fault) ([]byte, error) {
	p := n.pool
	p.mu.Lock()
	result, isRead := p.reads[txnType]
	p.mu.Unlock()

	if !isRead {
		result := map[string]any{
			"ver":         "1",
			"reqId":       reqID,
			"txn":         map[string]any{"type": txnType},
			"txnMetadata": map[string]any{"seqNo": reqID%100000 + 1, "txnTime": 1700000000},
		}
		if fault == Diverge {
			result["auditPath"] = []string{n.Alias}
		}
		return json.Marshal(map[string]any{"op": "REPLY", "result": result})
	}

	proven := result
	var err error
	if _, _, provable, _ := stateproof.Extract(result); provable {
		if proven, err = p.Keys.Prove(result, nil, 1700000500, p.signers()...); err != nil {
			return nil, err
		}
	}
	if fault == Tamper {
		var m map[string]any
		if err = json.Unmarshal(proven, &m); err != nil {
			return nil, err
		}
		m["seqNo"] = 999999
		if proven, err = json.Marshal(m); err != nil {
			return nil, err
		}
	}
	return json.Marshal(map[string]any{"op": "REPLY", "result": json.RawMessage(proven)})
}
