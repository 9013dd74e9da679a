// Package sptest signs read replies the way a validator pool does, for
// tests that stand in for ledger nodes.
package sptest

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mr-tron/base58"

	"indy/internal/ledger/stateproof"
)

// Pool is a set of validator BLS keys by alias.
type Pool struct {
	Keys map[string]*stateproof.NodeKey
}

// NewPool derives one key per alias from a fixed seed.
func NewPool(aliases ...string) (*Pool, error) {
	p := &Pool{Keys: make(map[string]*stateproof.NodeKey, len(aliases))}
	for i, alias := range aliases {
		seed := make([]byte, 32)
		copy(seed, alias)
		seed[31] = byte(i)
		k, err := stateproof.NewNodeKey(seed)
		if err != nil {
			return nil, err
		}
		p.Keys[alias] = k
	}
	return p, nil
}

// Add derives a key for one more alias.
func (p *Pool) Add(alias string) error {
	if _, ok := p.Keys[alias]; ok {
		return fmt.Errorf("duplicate alias %q", alias)
	}
	seed := make([]byte, 32)
	copy(seed, alias)
	seed[31] = byte(len(p.Keys))
	k, err := stateproof.NewNodeKey(seed)
	if err != nil {
		return err
	}
	p.Keys[alias] = k
	return nil
}

// PublicKeys returns the decoded BLS keys the verifier expects.
func (p *Pool) PublicKeys() map[string][]byte {
	out := make(map[string][]byte, len(p.Keys))
	for alias, k := range p.Keys {
		raw, _ := stateproof.DecodePublicKey(k.PublicKey())
		out[alias] = raw
	}
	return out
}

// Prove attaches a "state_proof" to result. The proven trie holds state
// plus the entry result itself is about; signers lists the aliases that
// join the multi-signature.
func (p *Pool) Prove(result json.RawMessage, state map[string][]byte, timestamp uint64, signers ...string) (json.RawMessage, error) {
	key, value, ok, err := stateproof.Extract(result)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no built-in proof for this reply")
	}
	kvs := make(map[string][]byte, len(state)+1)
	for k, v := range state {
		kvs[k] = v
	}
	if value != nil {
		kvs[string(key)] = []byte(*value)
	}
	root, nodes := stateproof.Build(kvs)
	ms, err := p.Sign(base58.Encode(root), timestamp, signers...)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(result, &fields); err != nil {
		return nil, err
	}
	proof, err := json.Marshal(stateproof.Proof{
		RootHash:       base58.Encode(root),
		ProofNodes:     stateproof.EncodeProofNodes(nodes),
		MultiSignature: ms,
	})
	if err != nil {
		return nil, err
	}
	fields["state_proof"] = proof
	return json.Marshal(fields)
}

// Sign produces the multi-signature of signers over a state root.
func (p *Pool) Sign(rootHash string, timestamp uint64, signers ...string) (*stateproof.MultiSignature, error) {
	value := stateproof.MultiSignatureValue{
		LedgerID:      1,
		StateRootHash: rootHash,
		Timestamp:     timestamp,
	}
	slices.Sort(signers)
	sigs := make([]string, 0, len(signers))
	for _, alias := range signers {
		k, ok := p.Keys[alias]
		if !ok {
			return nil, fmt.Errorf("unknown signer %q", alias)
		}
		sig, err := k.Sign(value)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	agg, err := stateproof.AggregateSignatures(sigs)
	if err != nil {
		return nil, err
	}
	return &stateproof.MultiSignature{Signature: agg, Participants: signers, Value: value}, nil
}
