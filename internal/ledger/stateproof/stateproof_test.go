package stateproof_test

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/suite"

	"indy/internal/ledger/stateproof"
	"indy/internal/ledger/stateproof/sptest"
	dErrors "indy/pkg/domain-errors"
)

type StateProofSuite struct {
	suite.Suite
	pool  *sptest.Pool
	state map[string][]byte
}

func TestStateProofSuite(t *testing.T) {
	suite.Run(t, new(StateProofSuite))
}

func (s *StateProofSuite) SetupSuite() {
	pool, err := sptest.NewPool("Node1", "Node2", "Node3", "Node4")
	s.Require().NoError(err)
	s.pool = pool
	s.state = map[string][]byte{
		"V4SGRU86Z58d6TV7PBUe6f:\x02:other:1.0": []byte(`{"lsn":3,"lut":1,"val":{}}`),
		"5:unrelated":                           []byte("x"),
		"short":                                 []byte("v"),
		"shorter-and-longer-key-sharing-prefix": []byte("w"),
	}
}

func (s *StateProofSuite) verifier() *stateproof.Verifier {
	return stateproof.NewVerifier(s.pool.PublicKeys(), 3, stateproof.NewRegistry())
}

func schemaResult(seqNo any) json.RawMessage {
	r := map[string]any{
		"type":    "107",
		"dest":    "V4SGRU86Z58d6TV7PBUe6f",
		"seqNo":   seqNo,
		"txnTime": 1700000000,
		"data":    map[string]any{"name": "gvt", "version": "1.0", "attr_names": []string{"age", "name"}},
	}
	if seqNo == nil {
		r["data"] = map[string]any{"name": "gvt", "version": "1.0"}
	}
	raw, _ := json.Marshal(r)
	return raw
}

func (s *StateProofSuite) TestTrie() {
	s.Run("every stored key is provable", func() {
		root, nodes := stateproof.Build(s.state)
		v := trieVerifier()
		for k, val := range s.state {
			value := string(val)
			err := v.Verify(customResult(s.T(), root, nodes, k, &value))
			s.NoError(err, k)
		}
	})

	s.Run("absence is provable", func() {
		root, nodes := stateproof.Build(s.state)
		v := trieVerifier()
		s.NoError(v.Verify(customResult(s.T(), root, nodes, "missing", nil)))
	})

	s.Run("wrong value is refused", func() {
		root, nodes := stateproof.Build(s.state)
		v := trieVerifier()
		wrong := "forged"
		err := v.Verify(customResult(s.T(), root, nodes, "short", &wrong))
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerInvalidTransaction))
	})

	s.Run("claiming absence of a stored key is refused", func() {
		root, nodes := stateproof.Build(s.state)
		v := trieVerifier()
		err := v.Verify(customResult(s.T(), root, nodes, "short", nil))
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerInvalidTransaction))
	})

	s.Run("nodes from another trie are refused", func() {
		root, _ := stateproof.Build(s.state)
		_, nodes := stateproof.Build(map[string][]byte{"short": []byte("v")})
		value := "v"
		err := trieVerifier().Verify(customResult(s.T(), root, nodes, "short", &value))
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerInvalidTransaction))
	})
}

// trieVerifier checks trie proofs carried by "custom" replies.
func trieVerifier() *stateproof.Verifier {
	reg := stateproof.NewRegistry()
	_ = reg.Register("custom", func(result string) (string, error) {
		var r struct {
			Proofs json.RawMessage `json:"proofs"`
		}
		if err := json.Unmarshal([]byte(result), &r); err != nil {
			return "", err
		}
		return string(r.Proofs), nil
	})
	return stateproof.NewVerifier(nil, 0, reg)
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// customResult wraps a raw proof in a reply handled by a custom parser.
func customResult(t *testing.T, root []byte, nodes [][]byte, key string, value *string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"type": "custom",
		"proofs": []stateproof.ParsedProof{{
			Proof: stateproof.Proof{RootHash: base58.Encode(root), ProofNodes: stateproof.EncodeProofNodes(nodes)},
			KeyValues: stateproof.KeyValues{
				Type: stateproof.KVsSimple,
				KVs:  []stateproof.KV{{Key: b64(key), Value: value}},
			},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func (s *StateProofSuite) TestBuiltinReplies() {
	s.Run("signed schema reply verifies", func() {
		proven, err := s.pool.Prove(schemaResult(7), s.state, 1700000001, "Node1", "Node2", "Node3")
		s.Require().NoError(err)
		s.NoError(s.verifier().Verify(proven))
	})

	s.Run("not found reply verifies as absent", func() {
		proven, err := s.pool.Prove(schemaResult(nil), s.state, 1700000001, "Node1", "Node2", "Node3")
		s.Require().NoError(err)
		s.NoError(s.verifier().Verify(proven))
	})

	s.Run("tampered data is refused", func() {
		proven, err := s.pool.Prove(schemaResult(7), s.state, 1700000001, "Node1", "Node2", "Node3")
		s.Require().NoError(err)
		var fields map[string]any
		s.Require().NoError(json.Unmarshal(proven, &fields))
		fields["data"].(map[string]any)["attr_names"] = []string{"age"}
		tampered, _ := json.Marshal(fields)
		err = s.verifier().Verify(tampered)
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerInvalidTransaction))
	})

	s.Run("too few signers are refused", func() {
		proven, err := s.pool.Prove(schemaResult(7), s.state, 1700000001, "Node1", "Node2")
		s.Require().NoError(err)
		err = s.verifier().Verify(proven)
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerInvalidTransaction))
	})

	s.Run("unknown signer is refused", func() {
		other, err := sptest.NewPool("Node1", "Node2", "Node3", "Node5")
		s.Require().NoError(err)
		proven, err := other.Prove(schemaResult(7), s.state, 1700000001, "Node1", "Node2", "Node5")
		s.Require().NoError(err)
		err = s.verifier().Verify(proven)
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerInvalidTransaction))
	})

	s.Run("reply without proof reports ErrNoProof", func() {
		s.ErrorIs(s.verifier().Verify(schemaResult(7)), stateproof.ErrNoProof)
	})

	s.Run("nym reply verifies", func() {
		data, _ := json.Marshal(map[string]any{"dest": "V4SGRU86Z58d6TV7PBUe6f", "identifier": "Th7MpTaRZVRYnPiabds81Y", "role": "0", "verkey": "~CoRER63DVYnWZtK8uAzNbx"})
		result, _ := json.Marshal(map[string]any{"type": "105", "dest": "V4SGRU86Z58d6TV7PBUe6f", "seqNo": 2, "txnTime": 1700000000, "data": string(data)})
		proven, err := s.pool.Prove(result, s.state, 1700000001, "Node1", "Node2", "Node3", "Node4")
		s.Require().NoError(err)
		s.NoError(s.verifier().Verify(proven))
	})
}

func (s *StateProofSuite) TestCustomParsers() {
	s.Run("registered parser decides the proof", func() {
		root, nodes := stateproof.Build(s.state)
		value := "v"
		s.NoError(trieVerifier().Verify(customResult(s.T(), root, nodes, "short", &value)))
	})

	s.Run("failing parser is a ledger error", func() {
		reg := stateproof.NewRegistry()
		s.Require().NoError(reg.Register("custom", func(string) (string, error) {
			return "", errors.New("cannot parse")
		}))
		raw, _ := json.Marshal(map[string]any{"type": "custom"})
		err := stateproof.NewVerifier(nil, 0, reg).Verify(raw)
		s.True(dErrors.HasCode(err, dErrors.CodeLedgerInvalidTransaction))
	})

	s.Run("unregistered custom type has no proof", func() {
		raw, _ := json.Marshal(map[string]any{"type": "9999"})
		s.ErrorIs(stateproof.NewVerifier(nil, 0, stateproof.NewRegistry()).Verify(raw), stateproof.ErrNoProof)
	})

	s.Run("empty registration is refused", func() {
		err := stateproof.NewRegistry().Register("", nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}
