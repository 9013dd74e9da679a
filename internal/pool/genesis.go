package pool

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net"
	"slices"
	"strconv"

	dErrors "indy/pkg/domain-errors"
)

const (
	txnTypeNode      = "0"
	serviceValidator = "VALIDATOR"
)

// Node is a validator as described by the pool ledger.
type Node struct {
	Alias    string
	Dest     string
	Address  string
	BlsKey   string
	Services []string
}

type nodeData struct {
	Alias      string   `json:"alias"`
	ClientIP   string   `json:"client_ip"`
	ClientPort *int     `json:"client_port"`
	NodeIP     string   `json:"node_ip"`
	NodePort   *int     `json:"node_port"`
	Services   []string `json:"services"`
	BlsKey     string   `json:"blskey"`
}

// nodeTxnV1 is the flat transaction layout of protocol version 1.
type nodeTxnV1 struct {
	Type string   `json:"type"`
	Dest string   `json:"dest"`
	Data nodeData `json:"data"`
}

// nodeTxnV2 nests the payload under "txn" and carries ledger metadata.
type nodeTxnV2 struct {
	Txn *struct {
		Type string `json:"type"`
		Data struct {
			Dest string   `json:"dest"`
			Data nodeData `json:"data"`
		} `json:"data"`
	} `json:"txn"`
}

// ParseTxns splits a genesis or snapshot document into one transaction
// per non-empty line.
func ParseTxns(raw []byte) ([]json.RawMessage, error) {
	var txns []json.RawMessage
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64<<10), maxFrameSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "pool transaction %d is not JSON", len(txns)+1)
		}
		txns = append(txns, json.RawMessage(slices.Clone(line)))
	}
	if err := sc.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIOError, "read pool transactions")
	}
	if len(txns) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "pool ledger has no transactions")
	}
	return txns, nil
}

func txnVersion(txn json.RawMessage) int {
	var probe struct {
		Txn json.RawMessage `json:"txn"`
	}
	if json.Unmarshal(txn, &probe) == nil && len(probe.Txn) > 0 {
		return 2
	}
	return 1
}

func parseNodeTxn(txn json.RawMessage, protocol int) (dest string, data *nodeData, err error) {
	if v := txnVersion(txn); v != protocol {
		return "", nil, dErrors.Newf(dErrors.CodePoolIncompatibleProtocol,
			"pool transaction has layout %d but protocol version %d is in use", v, protocol)
	}
	if protocol == 1 {
		var t nodeTxnV1
		if err := json.Unmarshal(txn, &t); err != nil {
			return "", nil, dErrors.New(dErrors.CodeInvalidStructure, "malformed pool transaction")
		}
		if t.Type != txnTypeNode {
			return "", nil, nil
		}
		return t.Dest, &t.Data, nil
	}
	var t nodeTxnV2
	if err := json.Unmarshal(txn, &t); err != nil || t.Txn == nil {
		return "", nil, dErrors.New(dErrors.CodeInvalidStructure, "malformed pool transaction")
	}
	if t.Txn.Type != txnTypeNode {
		return "", nil, nil
	}
	return t.Txn.Data.Dest, &t.Txn.Data.Data, nil
}

// NodesFromTxns replays NODE transactions in order and returns the active
// validators. Later transactions for the same dest update earlier ones;
// an empty services list retires a node.
func NodesFromTxns(txns []json.RawMessage, protocol int) ([]Node, error) {
	byDest := map[string]*Node{}
	var order []string
	clientPorts := map[string]int{}
	clientIPs := map[string]string{}
	for _, txn := range txns {
		dest, data, err := parseNodeTxn(txn, protocol)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		if dest == "" {
			return nil, dErrors.New(dErrors.CodeInvalidStructure, "node transaction has no dest")
		}
		n, ok := byDest[dest]
		if !ok {
			n = &Node{Dest: dest}
			byDest[dest] = n
			order = append(order, dest)
		}
		if data.Alias != "" {
			n.Alias = data.Alias
		}
		if data.ClientIP != "" {
			clientIPs[dest] = data.ClientIP
		}
		if data.ClientPort != nil {
			clientPorts[dest] = *data.ClientPort
		}
		if data.BlsKey != "" {
			n.BlsKey = data.BlsKey
		}
		if data.Services != nil {
			n.Services = data.Services
		}
	}

	nodes := make([]Node, 0, len(order))
	for _, dest := range order {
		n := byDest[dest]
		if !slices.Contains(n.Services, serviceValidator) {
			continue
		}
		ip, port := clientIPs[dest], clientPorts[dest]
		if n.Alias == "" || ip == "" || port <= 0 {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "node %s has no alias or client address", dest)
		}
		n.Address = net.JoinHostPort(ip, strconv.Itoa(port))
		nodes = append(nodes, *n)
	}
	if len(nodes) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "pool ledger names no validator nodes")
	}
	return nodes, nil
}

// faulty is the number of faulty nodes a pool of n tolerates.
func faulty(n int) int {
	return (n - 1) / 3
}
