package anoncreds_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"indy/internal/anoncreds"
	"indy/internal/anoncreds/cl"
	"indy/internal/anoncreds/models"
	"indy/internal/anoncreds/revocation"
	"indy/internal/blobstorage"
	"indy/internal/command"
	"indy/internal/wallet"
	walletservice "indy/internal/wallet/service"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/testutil"
)

const (
	masterSecret = "main"
	aliceName    = "Alex"
	aliceEncoded = "1139481716457488690172217916278103335"
)

type AnoncredsSuite struct {
	suite.Suite
	ctx      context.Context
	wallets  *walletservice.Service
	blobs    *blobstorage.Service
	tailsDir string
	issuerW  command.WalletHandle
	proverW  command.WalletHandle
	issuer   *anoncreds.Issuer
	prover   *anoncreds.Prover
	verifier *anoncreds.Verifier

	gvtSchemaID  string
	gvtSchema    string
	gvtCredDefID string
	gvtCredDef   string
	xyzSchemaID  string
	xyzSchema    string
	xyzCredDefID string
	xyzCredDef   string
}

func TestAnoncredsSuite(t *testing.T) {
	suite.Run(t, new(AnoncredsSuite))
}

func (s *AnoncredsSuite) SetupSuite() {
	s.ctx = context.Background()
	s.wallets = walletservice.New(s.T().TempDir())
	s.tailsDir = s.T().TempDir()
	s.blobs = blobstorage.NewService(s.tailsDir)
	s.issuerW = s.openWallet()
	s.proverW = s.openWallet()

	opts := []anoncreds.Option{anoncreds.WithModulusBits(512)}
	s.issuer = anoncreds.NewIssuer(s.wallets, s.blobs, opts...)
	s.prover = anoncreds.NewProver(s.wallets, s.blobs, opts...)
	s.verifier = anoncreds.NewVerifier(opts...)

	var err error
	s.gvtSchemaID, s.gvtSchema, err = s.issuer.CreateSchema(testutil.IssuerDID, "gvt", "1.0", `["name","sex","age","height"]`)
	s.Require().NoError(err)
	s.gvtCredDefID, s.gvtCredDef, err = s.issuer.CreateAndStoreCredentialDefinition(s.ctx, s.issuerW, testutil.IssuerDID, s.gvtSchema, "TAG1", "CL", `{"support_revocation":true}`)
	s.Require().NoError(err)

	s.xyzSchemaID, s.xyzSchema, err = s.issuer.CreateSchema(testutil.TrusteeDID, "xyz", "1.0", `["status","period"]`)
	s.Require().NoError(err)
	s.xyzCredDefID, s.xyzCredDef, err = s.issuer.CreateAndStoreCredentialDefinition(s.ctx, s.issuerW, testutil.TrusteeDID, s.xyzSchema, "TAG1", "", "")
	s.Require().NoError(err)

	_, err = s.prover.CreateMasterSecret(s.ctx, s.proverW, masterSecret)
	s.Require().NoError(err)
}

func (s *AnoncredsSuite) openWallet() command.WalletHandle {
	config := testutil.WalletConfig()
	s.Require().NoError(s.wallets.Create(s.ctx, config, testutil.WalletCredentials()))
	h, err := s.wallets.Open(s.ctx, config, testutil.WalletCredentials())
	s.Require().NoError(err)
	return h
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

func gvtValues(name, encodedName, age string) string {
	return fmt.Sprintf(`{
		"name":{"raw":%q,"encoded":%q},
		"sex":{"raw":"male","encoded":""},
		"age":{"raw":%q,"encoded":%q},
		"height":{"raw":"175","encoded":"175"}
	}`, name, encodedName, age, age)
}

type issued struct {
	credID    string
	credRevID string
	delta     string
}

func (s *AnoncredsSuite) issue(credDefID, credDef, values, revRegID, revRegDef string, reader command.BlobReaderHandle) issued {
	offer, err := s.issuer.CreateCredentialOffer(s.ctx, s.issuerW, credDefID)
	s.Require().NoError(err)
	req, meta, err := s.prover.CreateCredentialRequest(s.ctx, s.proverW, testutil.MyDID, offer, credDef, masterSecret)
	s.Require().NoError(err)
	cred, credRevID, delta, err := s.issuer.CreateCredential(s.ctx, s.issuerW, offer, req, values, revRegID, reader)
	s.Require().NoError(err)
	credID, err := s.prover.StoreCredential(s.ctx, s.proverW, "", meta, cred, credDef, revRegDef)
	s.Require().NoError(err)
	return issued{credID: credID, credRevID: credRevID, delta: delta}
}

func (s *AnoncredsSuite) gvtRequest(nonce string) map[string]any {
	return map[string]any{
		"name":    "proof",
		"version": "0.1",
		"nonce":   nonce,
		"requested_attributes": map[string]any{
			"attr1_referent": map[string]any{"name": "name"},
			"attr2_referent": map[string]any{"name": "sex"},
			"attr3_referent": map[string]any{"name": "phone"},
		},
		"requested_predicates": map[string]any{
			"predicate1_referent": map[string]any{"name": "age", "p_type": ">=", "p_value": 18},
		},
	}
}

func gvtRequested(credID string) string {
	return mustJSON(map[string]any{
		"self_attested_attributes": map[string]string{"attr3_referent": "8-800-300"},
		"requested_attributes": map[string]any{
			"attr1_referent": map[string]any{"cred_id": credID, "revealed": true},
			"attr2_referent": map[string]any{"cred_id": credID, "revealed": false},
		},
		"requested_predicates": map[string]any{
			"predicate1_referent": map[string]any{"cred_id": credID},
		},
	})
}

func (s *AnoncredsSuite) gvtArtifacts() (string, string) {
	return mustJSON(map[string]json.RawMessage{s.gvtSchemaID: json.RawMessage(s.gvtSchema)}),
		mustJSON(map[string]json.RawMessage{s.gvtCredDefID: json.RawMessage(s.gvtCredDef)})
}

func (s *AnoncredsSuite) TestSchemaBoundaries() {
	attrs := func(n int) string {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("attr%d", i)
		}
		return mustJSON(names)
	}

	s.Run("no attributes", func() {
		_, _, err := s.issuer.CreateSchema(testutil.IssuerDID, "empty", "1.0", attrs(0))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("125 attributes", func() {
		id, _, err := s.issuer.CreateSchema(testutil.IssuerDID, "big", "1.0", attrs(125))
		s.Require().NoError(err)
		s.Equal(testutil.IssuerDID+":2:big:1.0", id)
	})

	s.Run("126 attributes", func() {
		_, _, err := s.issuer.CreateSchema(testutil.IssuerDID, "huge", "1.0", attrs(126))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("invalid issuer did", func() {
		_, _, err := s.issuer.CreateSchema("not a did", "gvt", "1.0", `["name"]`)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}

func (s *AnoncredsSuite) TestCredentialDefinitionAlreadyExists() {
	_, _, err := s.issuer.CreateAndStoreCredentialDefinition(s.ctx, s.issuerW, testutil.IssuerDID, s.gvtSchema, "TAG1", "CL", `{"support_revocation":true}`)
	s.True(dErrors.HasCode(err, dErrors.CodeCredDefAlreadyExists))

	rec, err := s.wallets.GetRecord(s.ctx, s.issuerW, wallet.TypeCredDef, s.gvtCredDefID, wallet.DefaultRecordOptions())
	s.Require().NoError(err)
	s.JSONEq(s.gvtCredDef, rec.Value)
}

func (s *AnoncredsSuite) TestMasterSecretDuplicateName() {
	_, err := s.prover.CreateMasterSecret(s.ctx, s.proverW, masterSecret)
	s.True(dErrors.HasCode(err, dErrors.CodeMasterSecretDuplicateName))

	name, err := s.prover.CreateMasterSecret(s.ctx, s.proverW, "")
	s.Require().NoError(err)
	s.NotEmpty(name)
}

func (s *AnoncredsSuite) TestCredentialRequestRejectsForeignOffer() {
	offer, err := s.issuer.CreateCredentialOffer(s.ctx, s.issuerW, s.gvtCredDefID)
	s.Require().NoError(err)
	_, _, err = s.prover.CreateCredentialRequest(s.ctx, s.proverW, testutil.MyDID, offer, s.xyzCredDef, masterSecret)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
}

// Single issuer, single prover: reveal name, prove age >= 18, self-attest
// phone.
func (s *AnoncredsSuite) TestSingleIssuerProof() {
	cred := s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues(aliceName, aliceEncoded, "28"), "", "", 0)
	schemas, credDefs := s.gvtArtifacts()
	req := mustJSON(s.gvtRequest(s.verifier.GenerateNonce()))

	proofJSON, err := s.prover.CreateProof(s.ctx, s.proverW, req, gvtRequested(cred.credID), masterSecret, schemas, credDefs, "{}")
	s.Require().NoError(err)

	var proof models.Proof
	s.Require().NoError(json.Unmarshal([]byte(proofJSON), &proof))
	s.Equal(aliceName, proof.RequestedProof.RevealedAttrs["attr1_referent"].Raw)
	s.Equal("8-800-300", proof.RequestedProof.SelfAttestedAttrs["attr3_referent"])
	s.Contains(proof.RequestedProof.UnrevealedAttrs, "attr2_referent")
	s.Contains(proof.RequestedProof.Predicates, "predicate1_referent")
	s.Len(proof.Proof.Proofs, 1)

	s.Run("verifies", func() {
		ok, err := s.verifier.VerifyProof(s.ctx, req, proofJSON, schemas, credDefs, "{}", "{}")
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("tampered challenge", func() {
		var p models.Proof
		s.Require().NoError(json.Unmarshal([]byte(proofJSON), &p))
		c := p.Proof.AggregatedProof.CHash.Int()
		p.Proof.AggregatedProof.CHash = cl.N(new(big.Int).Add(c, big.NewInt(1)))
		ok, err := s.verifier.VerifyProof(s.ctx, req, mustJSON(p), schemas, credDefs, "{}", "{}")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("tampered revealed encoding", func() {
		var p models.Proof
		s.Require().NoError(json.Unmarshal([]byte(proofJSON), &p))
		info := p.RequestedProof.RevealedAttrs["attr1_referent"]
		info.Encoded = "42"
		p.RequestedProof.RevealedAttrs["attr1_referent"] = info
		ok, err := s.verifier.VerifyProof(s.ctx, req, mustJSON(p), schemas, credDefs, "{}", "{}")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("different nonce", func() {
		other := mustJSON(s.gvtRequest(s.verifier.GenerateNonce()))
		ok, err := s.verifier.VerifyProof(s.ctx, other, proofJSON, schemas, credDefs, "{}", "{}")
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("missing predicate is a structure error", func() {
		var p models.Proof
		s.Require().NoError(json.Unmarshal([]byte(proofJSON), &p))
		delete(p.RequestedProof.Predicates, "predicate1_referent")
		_, err := s.verifier.VerifyProof(s.ctx, req, mustJSON(p), schemas, credDefs, "{}", "{}")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("missing credential definition is a structure error", func() {
		_, err := s.verifier.VerifyProof(s.ctx, req, proofJSON, schemas, "{}", "{}", "{}")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("restriction not met is rejected", func() {
		r := s.gvtRequest(nonceOf(req))
		r["requested_attributes"].(map[string]any)["attr1_referent"] = map[string]any{
			"name":         "name",
			"restrictions": []map[string]string{{"cred_def_id": s.xyzCredDefID}},
		}
		_, err := s.verifier.VerifyProof(s.ctx, mustJSON(r), proofJSON, schemas, credDefs, "{}", "{}")
		s.True(dErrors.HasCode(err, dErrors.CodeProofRejected))
	})
}

func nonceOf(req string) string {
	var r models.ProofRequest
	if err := json.Unmarshal([]byte(req), &r); err != nil {
		panic(err)
	}
	return r.Nonce
}

func (s *AnoncredsSuite) TestCreateProofChecksRestrictions() {
	cred := s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues(aliceName, aliceEncoded, "28"), "", "", 0)
	schemas, credDefs := s.gvtArtifacts()
	r := s.gvtRequest(s.verifier.GenerateNonce())
	r["requested_attributes"].(map[string]any)["attr1_referent"] = map[string]any{
		"name":         "name",
		"restrictions": map[string]string{"schema_name": "xyz"},
	}
	_, err := s.prover.CreateProof(s.ctx, s.proverW, mustJSON(r), gvtRequested(cred.credID), masterSecret, schemas, credDefs, "{}")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))

	s.Run("unsatisfied predicate", func() {
		young := s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues("Kid", "7", "12"), "", "", 0)
		req := mustJSON(s.gvtRequest(s.verifier.GenerateNonce()))
		_, err := s.prover.CreateProof(s.ctx, s.proverW, req, gvtRequested(young.credID), masterSecret, schemas, credDefs, "{}")
		s.True(dErrors.HasCode(err, dErrors.CodeProofRejected))
	})
}

// Two issuers, one prover, one proof.
func (s *AnoncredsSuite) TestTwoIssuerProof() {
	gvt := s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues(aliceName, aliceEncoded, "28"), "", "", 0)
	xyz := s.issue(s.xyzCredDefID, s.xyzCredDef, `{"status":{"raw":"partial","encoded":""},"period":{"raw":"8","encoded":"8"}}`, "", "", 0)

	req := mustJSON(map[string]any{
		"name":    "proof",
		"version": "0.1",
		"nonce":   s.verifier.GenerateNonce(),
		"requested_attributes": map[string]any{
			"attr1_referent": map[string]any{"name": "name", "restrictions": map[string]string{"cred_def_id": s.gvtCredDefID}},
			"attr2_referent": map[string]any{"name": "status", "restrictions": map[string]string{"cred_def_id": s.xyzCredDefID}},
		},
		"requested_predicates": map[string]any{
			"predicate1_referent": map[string]any{"name": "age", "p_type": ">=", "p_value": 18},
			"predicate2_referent": map[string]any{"name": "period", "p_type": ">=", "p_value": 5},
		},
	})
	requested := mustJSON(map[string]any{
		"self_attested_attributes": map[string]string{},
		"requested_attributes": map[string]any{
			"attr1_referent": map[string]any{"cred_id": gvt.credID, "revealed": true},
			"attr2_referent": map[string]any{"cred_id": xyz.credID, "revealed": true},
		},
		"requested_predicates": map[string]any{
			"predicate1_referent": map[string]any{"cred_id": gvt.credID},
			"predicate2_referent": map[string]any{"cred_id": xyz.credID},
		},
	})
	schemas := mustJSON(map[string]json.RawMessage{
		s.gvtSchemaID: json.RawMessage(s.gvtSchema),
		s.xyzSchemaID: json.RawMessage(s.xyzSchema),
	})
	credDefs := mustJSON(map[string]json.RawMessage{
		s.gvtCredDefID: json.RawMessage(s.gvtCredDef),
		s.xyzCredDefID: json.RawMessage(s.xyzCredDef),
	})

	proofJSON, err := s.prover.CreateProof(s.ctx, s.proverW, req, requested, masterSecret, schemas, credDefs, "{}")
	s.Require().NoError(err)
	var proof models.Proof
	s.Require().NoError(json.Unmarshal([]byte(proofJSON), &proof))
	s.Equal(aliceName, proof.RequestedProof.RevealedAttrs["attr1_referent"].Raw)
	s.Equal("partial", proof.RequestedProof.RevealedAttrs["attr2_referent"].Raw)
	s.Len(proof.Identifiers, 2)
	s.Equal(s.gvtCredDefID, proof.Identifiers[0].CredDefID)

	ok, err := s.verifier.VerifyProof(s.ctx, req, proofJSON, schemas, credDefs, "{}", "{}")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *AnoncredsSuite) TestCredentialsForProofRequest() {
	cred := s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues(aliceName, aliceEncoded, "28"), "", "", 0)
	r := s.gvtRequest(s.verifier.GenerateNonce())
	r["requested_predicates"].(map[string]any)["predicate2_referent"] = map[string]any{"name": "Age", "p_type": ">", "p_value": 99}
	req := mustJSON(r)

	referents := func(list []models.RequestedCredential) []string {
		var out []string
		for _, c := range list {
			out = append(out, c.CredInfo.Referent)
		}
		return out
	}

	s.Run("lists candidates per referent", func() {
		out, err := s.prover.GetCredentialsForProofReq(s.ctx, s.proverW, req)
		s.Require().NoError(err)
		var creds models.CredentialsForProofRequest
		s.Require().NoError(json.Unmarshal([]byte(out), &creds))
		s.Contains(referents(creds.Attrs["attr1_referent"]), cred.credID)
		s.Empty(creds.Attrs["attr3_referent"])
		s.Contains(referents(creds.Predicates["predicate1_referent"]), cred.credID)
		s.Empty(creds.Predicates["predicate2_referent"])
	})

	s.Run("search honours the extra query", func() {
		extra := mustJSON(map[string]any{"attr1_referent": map[string]string{"attr::name::value": "nobody"}})
		sh, err := s.prover.SearchCredentialsForProofReq(s.ctx, s.proverW, req, extra)
		s.Require().NoError(err)
		defer func() { s.NoError(s.prover.CloseCredentialsSearchForProofReq(sh)) }()

		out, err := s.prover.FetchCredentialsForProofReq(s.ctx, sh, "attr1_referent", 10)
		s.Require().NoError(err)
		s.JSONEq(`[]`, out)

		out, err = s.prover.FetchCredentialsForProofReq(s.ctx, sh, "attr2_referent", 100)
		s.Require().NoError(err)
		var list []models.RequestedCredential
		s.Require().NoError(json.Unmarshal([]byte(out), &list))
		s.Contains(referents(list), cred.credID)

		_, err = s.prover.FetchCredentialsForProofReq(s.ctx, sh, "unknown", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}

func (s *AnoncredsSuite) TestCredentialStorage() {
	cred := s.issue(s.xyzCredDefID, s.xyzCredDef, `{"status":{"raw":"full","encoded":""},"period":{"raw":"3","encoded":"3"}}`, "", "", 0)

	s.Run("get", func() {
		out, err := s.prover.GetCredential(s.ctx, s.proverW, cred.credID)
		s.Require().NoError(err)
		var info models.CredentialInfo
		s.Require().NoError(json.Unmarshal([]byte(out), &info))
		s.Equal(s.xyzSchemaID, info.SchemaID)
		s.Equal("full", info.Attrs["status"])
		s.Nil(info.RevRegID)
	})

	s.Run("filter and search", func() {
		out, err := s.prover.GetCredentials(s.ctx, s.proverW, `{"schema_name":"xyz","attr::status::value":"full"}`)
		s.Require().NoError(err)
		s.Contains(out, cred.credID)

		sh, total, err := s.prover.SearchCredentials(s.ctx, s.proverW, `{"issuer_did":"`+testutil.TrusteeDID+`"}`)
		s.Require().NoError(err)
		s.GreaterOrEqual(total, 1)
		page, err := s.prover.FetchCredentials(s.ctx, sh, total)
		s.Require().NoError(err)
		s.Contains(page, cred.credID)
		page, err = s.prover.FetchCredentials(s.ctx, sh, 1)
		s.Require().NoError(err)
		s.JSONEq(`[]`, page)
		s.NoError(s.prover.CloseCredentialsSearch(sh))
		s.True(dErrors.HasCode(s.prover.CloseCredentialsSearch(sh), dErrors.CodeInvalidState))
	})

	s.Run("tag policy", func() {
		s.Require().NoError(s.prover.SetCredentialAttrTagPolicy(s.ctx, s.proverW, s.xyzCredDefID, `["Period"]`, true))
		policy, err := s.prover.GetCredentialAttrTagPolicy(s.ctx, s.proverW, s.xyzCredDefID)
		s.Require().NoError(err)
		s.JSONEq(`["period"]`, policy)

		out, err := s.prover.GetCredentials(s.ctx, s.proverW, `{"attr::status::value":"full"}`)
		s.Require().NoError(err)
		s.NotContains(out, cred.credID)

		s.Require().NoError(s.prover.SetCredentialAttrTagPolicy(s.ctx, s.proverW, s.xyzCredDefID, "null", true))
		policy, err = s.prover.GetCredentialAttrTagPolicy(s.ctx, s.proverW, s.xyzCredDefID)
		s.Require().NoError(err)
		s.Equal("null", policy)
		out, err = s.prover.GetCredentials(s.ctx, s.proverW, `{"attr::status::value":"full"}`)
		s.Require().NoError(err)
		s.Contains(out, cred.credID)
	})

	s.Run("delete", func() {
		s.Require().NoError(s.prover.DeleteCredential(s.ctx, s.proverW, cred.credID))
		_, err := s.prover.GetCredential(s.ctx, s.proverW, cred.credID)
		s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
	})
}

func (s *AnoncredsSuite) createRegistry(tag string, maxCredNum int) (string, string, string, command.BlobReaderHandle) {
	writer, err := s.blobs.OpenWriter(blobstorage.TypeDefault, `{"base_dir":"`+s.tailsDir+`"}`)
	s.Require().NoError(err)
	reader, err := s.blobs.OpenReader(blobstorage.TypeDefault, `{"base_dir":"`+s.tailsDir+`"}`)
	s.Require().NoError(err)
	config := fmt.Sprintf(`{"max_cred_num":%d,"issuance_type":"ISSUANCE_ON_DEMAND"}`, maxCredNum)
	id, def, entry, err := s.issuer.CreateAndStoreRevocationRegistry(s.ctx, s.issuerW, testutil.IssuerDID, "CL_ACCUM", tag, s.gvtCredDefID, config, writer)
	s.Require().NoError(err)
	return id, def, entry, reader
}

func registryAt(deltaJSON string) *models.RevocationRegistry {
	var d models.RevocationRegistryDelta
	if err := json.Unmarshal([]byte(deltaJSON), &d); err != nil {
		panic(err)
	}
	return &models.RevocationRegistry{Ver: models.Version, Value: revocation.Registry{Accum: d.Value.Accum}}
}

// Issue with revocation, prove non-revocation, revoke, and check that the
// old proof no longer verifies against the new accumulator.
func (s *AnoncredsSuite) TestRevocation() {
	revRegID, revRegDef, _, reader := s.createRegistry("REV1", 5)
	cred := s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues(aliceName, aliceEncoded, "28"), revRegID, revRegDef, reader)
	s.Equal("1", cred.credRevID)
	s.Require().NotEmpty(cred.delta)

	state, err := s.prover.CreateRevocationState(reader, revRegDef, cred.delta, 100, cred.credRevID)
	s.Require().NoError(err)

	r := s.gvtRequest(s.verifier.GenerateNonce())
	r["non_revoked"] = map[string]uint64{"from": 100, "to": 100}
	req := mustJSON(r)
	requested := mustJSON(map[string]any{
		"self_attested_attributes": map[string]string{"attr3_referent": "8-800-300"},
		"requested_attributes": map[string]any{
			"attr1_referent": map[string]any{"cred_id": cred.credID, "revealed": true, "timestamp": 100},
			"attr2_referent": map[string]any{"cred_id": cred.credID, "revealed": false, "timestamp": 100},
		},
		"requested_predicates": map[string]any{
			"predicate1_referent": map[string]any{"cred_id": cred.credID, "timestamp": 100},
		},
	})
	schemas, credDefs := s.gvtArtifacts()
	revStates := mustJSON(map[string]map[string]json.RawMessage{revRegID: {"100": json.RawMessage(state)}})
	revRegDefs := mustJSON(map[string]json.RawMessage{revRegID: json.RawMessage(revRegDef)})

	proofJSON, err := s.prover.CreateProof(s.ctx, s.proverW, req, requested, masterSecret, schemas, credDefs, revStates)
	s.Require().NoError(err)

	s.Run("verifies before revocation", func() {
		regs := mustJSON(models.RevocationRegistries{revRegID: {"100": registryAt(cred.delta)}})
		ok, err := s.verifier.VerifyProof(s.ctx, req, proofJSON, schemas, credDefs, revRegDefs, regs)
		s.Require().NoError(err)
		s.True(ok)
	})

	s.Run("proof without registry is a structure error", func() {
		_, err := s.verifier.VerifyProof(s.ctx, req, proofJSON, schemas, credDefs, revRegDefs, "{}")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	revokeDelta, err := s.issuer.RevokeCredential(s.ctx, s.issuerW, reader, revRegID, cred.credRevID)
	s.Require().NoError(err)
	var d models.RevocationRegistryDelta
	s.Require().NoError(json.Unmarshal([]byte(revokeDelta), &d))
	s.Equal([]uint32{1}, d.Value.Revoked)

	s.Run("stale proof fails against the new accumulator", func() {
		regs := mustJSON(models.RevocationRegistries{revRegID: {"100": registryAt(revokeDelta)}})
		ok, err := s.verifier.VerifyProof(s.ctx, req, proofJSON, schemas, credDefs, revRegDefs, regs)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("state cannot move past the revocation", func() {
		_, err := s.prover.UpdateRevocationState(reader, state, revRegDef, revokeDelta, 200, cred.credRevID)
		s.True(dErrors.HasCode(err, dErrors.CodeCredentialRevoked))
	})

	s.Run("revoking twice", func() {
		_, err := s.issuer.RevokeCredential(s.ctx, s.issuerW, reader, revRegID, cred.credRevID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidUserRevocID))
	})

	s.Run("merged deltas", func() {
		merged, err := anoncreds.MergeRevocationRegistryDeltas(cred.delta, revokeDelta)
		s.Require().NoError(err)
		var m models.RevocationRegistryDelta
		s.Require().NoError(json.Unmarshal([]byte(merged), &m))
		s.Empty(m.Value.Issued)
		s.Equal([]uint32{1}, m.Value.Revoked)
	})
}

func (s *AnoncredsSuite) TestWitnessFollowsLaterIssuance() {
	revRegID, revRegDef, _, reader := s.createRegistry("REV2", 5)
	first := s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues(aliceName, aliceEncoded, "28"), revRegID, revRegDef, reader)
	second := s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues("Bob", "7", "40"), revRegID, revRegDef, reader)
	s.Equal("2", second.credRevID)

	state, err := s.prover.CreateRevocationState(reader, revRegDef, first.delta, 100, first.credRevID)
	s.Require().NoError(err)
	state, err = s.prover.UpdateRevocationState(reader, state, revRegDef, second.delta, 200, first.credRevID)
	s.Require().NoError(err)

	var st revocation.State
	s.Require().NoError(json.Unmarshal([]byte(state), &st))
	s.EqualValues(200, st.Timestamp)
	s.True(st.RevReg.Accum.Equal(&registryAt(second.delta).Value.Accum))

	s.Run("delta from elsewhere", func() {
		_, err := s.prover.UpdateRevocationState(reader, state, revRegDef, first.delta, 300, first.credRevID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}

func (s *AnoncredsSuite) TestRegistryBoundaries() {
	revRegID, revRegDef, entry, reader := s.createRegistry("SMALL", 1)
	s.True(strings.HasPrefix(revRegID, testutil.IssuerDID+":4:"))
	s.Contains(entry, `"accum"`)

	s.Run("never issued index", func() {
		_, err := s.issuer.RevokeCredential(s.ctx, s.issuerW, reader, revRegID, "1")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidUserRevocID))
		_, err = s.issuer.RevokeCredential(s.ctx, s.issuerW, reader, revRegID, "first")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidUserRevocID))
	})

	s.issue(s.gvtCredDefID, s.gvtCredDef, gvtValues(aliceName, aliceEncoded, "28"), revRegID, revRegDef, reader)

	s.Run("full", func() {
		offer, err := s.issuer.CreateCredentialOffer(s.ctx, s.issuerW, s.gvtCredDefID)
		s.Require().NoError(err)
		req, _, err := s.prover.CreateCredentialRequest(s.ctx, s.proverW, testutil.MyDID, offer, s.gvtCredDef, masterSecret)
		s.Require().NoError(err)
		_, _, _, err = s.issuer.CreateCredential(s.ctx, s.issuerW, offer, req, gvtValues(aliceName, aliceEncoded, "28"), revRegID, reader)
		s.True(dErrors.HasCode(err, dErrors.CodeRevocationRegistryFull))
	})

	s.Run("registry needs a revocable definition", func() {
		writer, err := s.blobs.OpenWriter(blobstorage.TypeDefault, "")
		s.Require().NoError(err)
		_, _, _, err = s.issuer.CreateAndStoreRevocationRegistry(s.ctx, s.issuerW, testutil.TrusteeDID, "CL_ACCUM", "X", s.xyzCredDefID, `{"max_cred_num":1}`, writer)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}

func (s *AnoncredsSuite) TestCreateCredentialValues() {
	offer, err := s.issuer.CreateCredentialOffer(s.ctx, s.issuerW, s.xyzCredDefID)
	s.Require().NoError(err)
	req, _, err := s.prover.CreateCredentialRequest(s.ctx, s.proverW, testutil.MyDID, offer, s.xyzCredDef, masterSecret)
	s.Require().NoError(err)

	s.Run("missing attribute", func() {
		_, _, _, err := s.issuer.CreateCredential(s.ctx, s.issuerW, offer, req, `{"status":{"raw":"full","encoded":""}}`, "", 0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})

	s.Run("names are canonicalised", func() {
		cred, _, _, err := s.issuer.CreateCredential(s.ctx, s.issuerW, offer, req, `{" Status":{"raw":"full","encoded":""},"PERIOD":{"raw":"3","encoded":""}}`, "", 0)
		s.Require().NoError(err)
		var c models.Credential
		s.Require().NoError(json.Unmarshal([]byte(cred), &c))
		s.Equal("3", c.Values["period"].Encoded)
		s.Equal(cl.EncodeAttribute("full"), c.Values["status"].Encoded)
	})

	s.Run("offer and request disagree", func() {
		other, err := s.issuer.CreateCredentialOffer(s.ctx, s.issuerW, s.gvtCredDefID)
		s.Require().NoError(err)
		_, _, _, err = s.issuer.CreateCredential(s.ctx, s.issuerW, other, req, `{}`, "", 0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStructure))
	})
}

func (s *AnoncredsSuite) TestRotateCredentialDefinition() {
	_, schema, err := s.issuer.CreateSchema(testutil.IssuerDID, "rot", "1.0", `["a"]`)
	s.Require().NoError(err)
	id, original, err := s.issuer.CreateAndStoreCredentialDefinition(s.ctx, s.issuerW, testutil.IssuerDID, schema, "ROT", "", "")
	s.Require().NoError(err)

	rotated, err := s.issuer.RotateCredentialDefinitionStart(s.ctx, s.issuerW, id, "")
	s.Require().NoError(err)
	s.NotEqual(original, rotated)

	rec, err := s.wallets.GetRecord(s.ctx, s.issuerW, wallet.TypeCredDef, id, wallet.DefaultRecordOptions())
	s.Require().NoError(err)
	s.JSONEq(original, rec.Value)

	s.Require().NoError(s.issuer.RotateCredentialDefinitionApply(s.ctx, s.issuerW, id))
	rec, err = s.wallets.GetRecord(s.ctx, s.issuerW, wallet.TypeCredDef, id, wallet.DefaultRecordOptions())
	s.Require().NoError(err)
	s.JSONEq(rotated, rec.Value)

	err = s.issuer.RotateCredentialDefinitionApply(s.ctx, s.issuerW, id)
	s.True(dErrors.HasCode(err, dErrors.CodeWalletItemNotFound))
}

// schemaIDFailStore fails the last record written for a credential
// definition.
type schemaIDFailStore struct {
	wallet.Store
}

func (f schemaIDFailStore) AddRecord(ctx context.Context, h command.WalletHandle, typ, id, value string, tags wallet.Tags) error {
	if typ == wallet.TypeSchemaID {
		return dErrors.New(dErrors.CodeIOError, "disk full")
	}
	return f.Store.AddRecord(ctx, h, typ, id, value, tags)
}

func (s *AnoncredsSuite) TestFailedCredDefStoreLeavesNothing() {
	w := s.openWallet()
	_, schema, err := s.issuer.CreateSchema(testutil.IssuerDID, "retry", "1.0", `["name"]`)
	s.Require().NoError(err)

	failing := anoncreds.NewIssuer(schemaIDFailStore{s.wallets}, s.blobs, anoncreds.WithModulusBits(512))
	_, _, err = failing.CreateAndStoreCredentialDefinition(s.ctx, w, testutil.IssuerDID, schema, "TAG1", "CL", "")
	s.Require().True(dErrors.HasCode(err, dErrors.CodeIOError))

	id, _, err := s.issuer.CreateAndStoreCredentialDefinition(s.ctx, w, testutil.IssuerDID, schema, "TAG1", "CL", "")
	s.Require().NoError(err)
	_, err = s.wallets.GetRecord(s.ctx, w, wallet.TypeCredDefPrivate, id, wallet.DefaultRecordOptions())
	s.NoError(err)
}
