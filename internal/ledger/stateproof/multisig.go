package stateproof

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
	blst "github.com/supranational/blst/bindings/go"
)

const (
	// BLSPublicKeySize is the size of a compressed node BLS key.
	BLSPublicKeySize = 48

	// BLSSignatureSize is the size of a compressed BLS signature.
	BLSSignatureSize = 96
)

var blsDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")

// MultiSignature is the pool's aggregated signature over a state root.
type MultiSignature struct {
	Signature    string              `json:"signature"`
	Participants []string            `json:"participants"`
	Value        MultiSignatureValue `json:"value"`
}

// MultiSignatureValue is what the nodes sign. Fields are declared in key
// order so its JSON encoding is canonical.
type MultiSignatureValue struct {
	LedgerID          int    `json:"ledger_id"`
	PoolStateRootHash string `json:"pool_state_root_hash"`
	StateRootHash     string `json:"state_root_hash"`
	Timestamp         uint64 `json:"timestamp"`
	TxnRootHash       string `json:"txn_root_hash"`
}

func (v MultiSignatureValue) message() ([]byte, error) {
	return json.Marshal(v)
}

// NodeKey is a validator's BLS signing key.
type NodeKey struct {
	secret *blst.SecretKey
	public *blst.P1Affine
}

// NewNodeKey derives a BLS key from a seed of at least 32 bytes.
func NewNodeKey(seed []byte) (*NodeKey, error) {
	if len(seed) < 32 {
		return nil, fmt.Errorf("seed must be at least 32 bytes")
	}
	secret := blst.KeyGen(seed)
	if secret == nil {
		return nil, fmt.Errorf("failed to generate BLS key")
	}
	return &NodeKey{secret: secret, public: new(blst.P1Affine).From(secret)}, nil
}

// PublicKey returns the base58 compressed public key as published in the
// pool's NODE transactions.
func (k *NodeKey) PublicKey() string {
	return base58.Encode(k.public.Compress())
}

// Sign signs v and returns the base58 compressed signature.
func (k *NodeKey) Sign(v MultiSignatureValue) (string, error) {
	msg, err := v.message()
	if err != nil {
		return "", err
	}
	return base58.Encode(new(blst.P2Affine).Sign(k.secret, msg, blsDST).Compress()), nil
}

// AggregateSignatures combines base58 signatures over the same value.
func AggregateSignatures(signatures []string) (string, error) {
	if len(signatures) == 0 {
		return "", fmt.Errorf("no signatures to aggregate")
	}
	sigs := make([]*blst.P2Affine, len(signatures))
	for i, s := range signatures {
		raw, err := base58.Decode(s)
		if err != nil || len(raw) != BLSSignatureSize {
			return "", fmt.Errorf("invalid signature at index %d", i)
		}
		if sigs[i] = new(blst.P2Affine).Uncompress(raw); sigs[i] == nil {
			return "", fmt.Errorf("invalid signature at index %d", i)
		}
	}
	agg := new(blst.P2Aggregate)
	if !agg.Aggregate(sigs, true) {
		return "", fmt.Errorf("signature aggregation failed")
	}
	return base58.Encode(agg.ToAffine().Compress()), nil
}

// DecodePublicKey parses a base58 node BLS key.
func DecodePublicKey(key string) ([]byte, error) {
	raw, err := base58.Decode(key)
	if err != nil || len(raw) != BLSPublicKeySize {
		return nil, fmt.Errorf("invalid BLS key")
	}
	if new(blst.P1Affine).Uncompress(raw) == nil {
		return nil, fmt.Errorf("invalid BLS key")
	}
	return raw, nil
}

// verifyMultiSignature checks ms against the keys of its participants.
// At least quorum distinct known nodes must have signed.
func verifyMultiSignature(ms *MultiSignature, keys map[string][]byte, quorum int) error {
	seen := make(map[string]bool, len(ms.Participants))
	pks := make([]*blst.P1Affine, 0, len(ms.Participants))
	for _, alias := range ms.Participants {
		if seen[alias] {
			return fmt.Errorf("duplicate participant %q", alias)
		}
		seen[alias] = true
		raw, ok := keys[alias]
		if !ok {
			return fmt.Errorf("unknown participant %q", alias)
		}
		pk := new(blst.P1Affine).Uncompress(raw)
		if pk == nil {
			return fmt.Errorf("invalid key for participant %q", alias)
		}
		pks = append(pks, pk)
	}
	if len(pks) < quorum {
		return fmt.Errorf("%d participants, need %d", len(pks), quorum)
	}
	raw, err := base58.Decode(ms.Signature)
	if err != nil || len(raw) != BLSSignatureSize {
		return fmt.Errorf("malformed multi-signature")
	}
	sig := new(blst.P2Affine).Uncompress(raw)
	if sig == nil {
		return fmt.Errorf("malformed multi-signature")
	}
	aggPk := new(blst.P1Aggregate)
	if !aggPk.Aggregate(pks, true) {
		return fmt.Errorf("key aggregation failed")
	}
	msg, err := ms.Value.message()
	if err != nil {
		return err
	}
	if !sig.Verify(true, aggPk.ToAffine(), true, msg, blsDST) {
		return fmt.Errorf("multi-signature does not verify")
	}
	return nil
}
