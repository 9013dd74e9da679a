// Package stateproof verifies that a single node's reply to a read request
// matches state the pool has signed: the reply's key and value are proven
// against a Merkle-Patricia root, and the root is covered by the pool's
// BLS multi-signature.
package stateproof

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/mr-tron/base58"

	dErrors "indy/pkg/domain-errors"
)

// ErrNoProof means the reply carries nothing that can be verified.
var ErrNoProof = errors.New("reply has no state proof")

// Proof is the "state_proof" object attached to read replies.
type Proof struct {
	RootHash       string          `json:"root_hash"`
	ProofNodes     string          `json:"proof_nodes"`
	MultiSignature *MultiSignature `json:"multi_signature"`
}

// KV is one key and the value it must hold; a nil Value asserts absence.
type KV struct {
	Key   string
	Value *string
}

// MarshalJSON encodes the pair as a two element array.
func (kv KV) MarshalJSON() ([]byte, error) {
	return json.Marshal([]*string{&kv.Key, kv.Value})
}

// UnmarshalJSON decodes a two element array.
func (kv *KV) UnmarshalJSON(data []byte) error {
	var pair []*string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 || pair[0] == nil {
		return errors.New("kv must be a [key, value] pair")
	}
	kv.Key, kv.Value = *pair[0], pair[1]
	return nil
}

// KeyValues lists what a proof must establish. Keys are base64.
type KeyValues struct {
	Type string `json:"type"`
	KVs  []KV   `json:"kvs"`
}

// KVsSimple is the only supported KeyValues type.
const KVsSimple = "Simple"

// ParsedProof is one proof ready for verification. Custom parsers return
// a JSON list of these.
type ParsedProof struct {
	Proof
	KeyValues KeyValues `json:"kvs_to_verify"`
}

// EncodeProofNodes packs trie nodes into the "proof_nodes" wire form.
func EncodeProofNodes(nodes [][]byte) string {
	items := make([]item, len(nodes))
	for i, n := range nodes {
		items[i] = str(n)
	}
	return base64.StdEncoding.EncodeToString(encode(list(items...)))
}

func decodeProofNodes(s string) ([][]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	it, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if !it.isList {
		return nil, errRLP
	}
	nodes := make([][]byte, len(it.list))
	for i, n := range it.list {
		if n.isList {
			return nil, errRLP
		}
		nodes[i] = n.str
	}
	return nodes, nil
}

// Verifier checks replies against the pool's state.
type Verifier struct {
	keys    map[string][]byte
	quorum  int
	parsers *Registry
}

// NewVerifier creates a verifier. keys maps node aliases to their BLS keys
// and quorum is the minimum number of signers. With no keys only the trie
// proof is checked.
func NewVerifier(keys map[string][]byte, quorum int, parsers *Registry) *Verifier {
	return &Verifier{keys: keys, quorum: quorum, parsers: parsers}
}

// Verify checks the "result" object of a reply. It returns ErrNoProof when
// neither a built-in nor a registered parser yields a proof.
func (v *Verifier) Verify(result json.RawMessage) error {
	proofs, err := v.parse(result)
	if err != nil {
		return err
	}
	if len(proofs) == 0 {
		return ErrNoProof
	}
	for i := range proofs {
		if err := v.check(&proofs[i]); err != nil {
			return dErrors.Wrap(err, dErrors.CodeLedgerInvalidTransaction, "state proof verification failed")
		}
	}
	return nil
}

func (v *Verifier) parse(result json.RawMessage) ([]ParsedProof, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(result, &head); err != nil {
		return nil, dErrors.New(dErrors.CodeLedgerInvalidTransaction, "malformed reply result")
	}
	if v.parsers != nil {
		if parser, ok := v.parsers.Lookup(head.Type); ok {
			out, err := parser(string(result))
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeLedgerInvalidTransaction, "custom state proof parser failed")
			}
			var proofs []ParsedProof
			if err := json.Unmarshal([]byte(out), &proofs); err != nil {
				return nil, dErrors.New(dErrors.CodeLedgerInvalidTransaction, "custom state proof parser returned malformed proofs")
			}
			return proofs, nil
		}
	}
	return builtin(result)
}

func builtin(result json.RawMessage) ([]ParsedProof, error) {
	var r struct {
		StateProof *Proof `json:"state_proof"`
	}
	if err := json.Unmarshal(result, &r); err != nil {
		return nil, dErrors.New(dErrors.CodeLedgerInvalidTransaction, "malformed reply result")
	}
	if r.StateProof == nil {
		return nil, nil
	}
	key, value, ok, err := Extract(result)
	if err != nil || !ok {
		return nil, err
	}
	return []ParsedProof{{
		Proof: *r.StateProof,
		KeyValues: KeyValues{
			Type: KVsSimple,
			KVs:  []KV{{Key: base64.StdEncoding.EncodeToString(key), Value: value}},
		},
	}}, nil
}

func (v *Verifier) check(p *ParsedProof) error {
	if p.KeyValues.Type != KVsSimple {
		return errors.New("unsupported kvs type " + p.KeyValues.Type)
	}
	root, err := base58.Decode(p.RootHash)
	if err != nil || len(root) == 0 {
		return errors.New("malformed root hash")
	}
	if v.keys != nil {
		if p.MultiSignature == nil {
			return errors.New("missing multi-signature")
		}
		if p.MultiSignature.Value.StateRootHash != p.RootHash {
			return errors.New("multi-signature covers a different root")
		}
		if err := verifyMultiSignature(p.MultiSignature, v.keys, v.quorum); err != nil {
			return err
		}
	}
	nodes, err := decodeProofNodes(p.ProofNodes)
	if err != nil {
		return err
	}
	for _, kv := range p.KeyValues.KVs {
		key, err := base64.StdEncoding.DecodeString(kv.Key)
		if err != nil {
			return err
		}
		got, err := lookup(root, nodes, key)
		if err != nil {
			return err
		}
		switch {
		case kv.Value == nil && got != nil:
			return errors.New("proof shows a value where none was returned")
		case kv.Value != nil && string(got) != *kv.Value:
			return errors.New("returned value is not the proven one")
		}
	}
	return nil
}
