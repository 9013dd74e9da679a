package models

import (
	"encoding/json"
	"strings"

	"indy/internal/anoncreds/cl"
	"indy/internal/anoncreds/revocation"
	dErrors "indy/pkg/domain-errors"
	s "indy/pkg/string"
	"indy/pkg/validation"
)

// Version is the document version written into every entity.
const Version = "1.0"

// Schema lists the attribute names a credential carries.
type Schema struct {
	Ver       string   `json:"ver"`
	ID        string   `json:"id" validate:"notblank"`
	Name      string   `json:"name" validate:"notblank"`
	Version   string   `json:"version" validate:"notblank"`
	AttrNames []string `json:"attrNames" validate:"required,min=1,max=125,dive,notblank"`
	SeqNo     *uint32  `json:"seqNo"`
}

// CanonicalAttrs returns the schema's attribute names in canonical form.
// Duplicates after canonicalisation are refused.
func CanonicalAttrs(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "empty list of attribute names")
	}
	if err := validation.CheckSliceCount("attribute names", len(names), validation.MaxSchemaAttributes); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		c := s.Canonical(n)
		if c == "" || c == cl.MasterSecretName {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "invalid attribute name %q", n)
		}
		if seen[c] {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "duplicate attribute name %q", n)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// CredentialDefinition is the public half of an issuer's key.
type CredentialDefinition struct {
	Ver      string       `json:"ver"`
	ID       string       `json:"id" validate:"notblank"`
	SchemaID string       `json:"schemaId" validate:"notblank"`
	Type     string       `json:"type" validate:"eq=CL"`
	Tag      string       `json:"tag"`
	Value    CredDefValue `json:"value"`
}

// CredDefValue holds the primary and optional revocation keys.
type CredDefValue struct {
	Primary    *cl.PublicKey         `json:"primary" validate:"required"`
	Revocation *revocation.PublicKey `json:"revocation,omitempty"`
}

// CredDefPrivate is the secret half stored by the issuer.
type CredDefPrivate struct {
	Primary    *cl.PrivateKey         `json:"p_key"`
	Revocation *revocation.PrivateKey `json:"r_key,omitempty"`
}

// CredDefConfig tunes credential definition creation.
type CredDefConfig struct {
	SupportRevocation bool `json:"support_revocation"`
}

// IssuanceType decides whether registry indices start issued.
type IssuanceType string

const (
	IssuanceByDefault IssuanceType = "ISSUANCE_BY_DEFAULT"
	IssuanceOnDemand  IssuanceType = "ISSUANCE_ON_DEMAND"
)

// ByDefault reports whether every index starts issued.
func (t IssuanceType) ByDefault() bool { return t == IssuanceByDefault }

// RevRegConfig tunes registry creation.
type RevRegConfig struct {
	IssuanceType IssuanceType `json:"issuance_type,omitempty" validate:"omitempty,oneof=ISSUANCE_BY_DEFAULT ISSUANCE_ON_DEMAND"`
	MaxCredNum   uint32       `json:"max_cred_num,omitempty"`
}

// DefaultMaxCredNum is used when a registry config names no capacity.
const DefaultMaxCredNum = 100000

// RevRegDef describes a revocation registry and its tails.
type RevRegDef struct {
	Ver          string         `json:"ver"`
	ID           string         `json:"id" validate:"notblank"`
	RevocDefType string         `json:"revocDefType" validate:"eq=CL_ACCUM"`
	Tag          string         `json:"tag"`
	CredDefID    string         `json:"credDefId" validate:"notblank"`
	Value        RevRegDefValue `json:"value"`
}

// RevRegDefValue is the body of a registry definition.
type RevRegDefValue struct {
	IssuanceType  IssuanceType     `json:"issuanceType" validate:"oneof=ISSUANCE_BY_DEFAULT ISSUANCE_ON_DEMAND"`
	MaxCredNum    uint32           `json:"maxCredNum" validate:"min=1"`
	PublicKeys    RevRegPublicKeys `json:"publicKeys"`
	TailsHash     string           `json:"tailsHash" validate:"notblank"`
	TailsLocation string           `json:"tailsLocation" validate:"notblank"`
}

// RevRegPublicKeys wraps the accumulator key.
type RevRegPublicKeys struct {
	AccumKey *revocation.RegistryPublicKey `json:"accumKey" validate:"required"`
}

// RevRegDefPrivate is the registry trapdoor.
type RevRegDefPrivate struct {
	Value *revocation.RegistryPrivateKey `json:"value"`
}

// RevocationRegistry is a published accumulator value.
type RevocationRegistry struct {
	Ver   string              `json:"ver"`
	Value revocation.Registry `json:"value"`
}

// RevocationRegistryDelta is a published accumulator change.
type RevocationRegistryDelta struct {
	Ver   string           `json:"ver"`
	Value revocation.Delta `json:"value"`
}

// RevRegInfo is the issuer's bookkeeping for a registry.
type RevRegInfo struct {
	ID        string   `json:"id"`
	CurrID    uint32   `json:"curr_id"`
	UsedIDs   []uint32 `json:"used_ids"`
	Revoked   []uint32 `json:"revoked"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

// CredentialOffer announces the definition an issuer will sign under.
type CredentialOffer struct {
	SchemaID            string                  `json:"schema_id" validate:"notblank"`
	CredDefID           string                  `json:"cred_def_id" validate:"notblank"`
	KeyCorrectnessProof *cl.KeyCorrectnessProof `json:"key_correctness_proof" validate:"required"`
	Nonce               *cl.Num                 `json:"nonce" validate:"required"`
	MethodName          string                  `json:"method_name,omitempty"`
}

// CredentialRequest carries the prover's blinded master secret.
type CredentialRequest struct {
	ProverDID                 string                  `json:"prover_did" validate:"notblank"`
	CredDefID                 string                  `json:"cred_def_id" validate:"notblank"`
	BlindedMS                 *cl.BlindedSecrets      `json:"blinded_ms" validate:"required"`
	BlindedMSCorrectnessProof *cl.BlindedSecretsProof `json:"blinded_ms_correctness_proof" validate:"required"`
	Nonce                     *cl.Num                 `json:"nonce" validate:"required"`
}

// CredentialRequestMetadata stays with the prover until the credential
// arrives.
type CredentialRequestMetadata struct {
	MasterSecretBlindingData *cl.BlindingFactors `json:"master_secret_blinding_data" validate:"required"`
	Nonce                    *cl.Num             `json:"nonce" validate:"required"`
	MasterSecretName         string              `json:"master_secret_name" validate:"notblank"`
}

// AttributeValue is a raw value and its signed encoding.
type AttributeValue struct {
	Raw     string `json:"raw"`
	Encoded string `json:"encoded"`
}

// CredentialValues maps attribute names to values.
type CredentialValues map[string]AttributeValue

// CredentialSignature holds the primary and non-revocation signatures.
type CredentialSignature struct {
	P *cl.Signature         `json:"p_credential" validate:"required"`
	R *revocation.Signature `json:"r_credential,omitempty"`
}

// Credential is an issued credential.
type Credential struct {
	SchemaID                  string                        `json:"schema_id" validate:"notblank"`
	CredDefID                 string                        `json:"cred_def_id" validate:"notblank"`
	RevRegID                  *string                       `json:"rev_reg_id"`
	Values                    CredentialValues              `json:"values" validate:"required"`
	Signature                 CredentialSignature           `json:"signature"`
	SignatureCorrectnessProof *cl.SignatureCorrectnessProof `json:"signature_correctness_proof" validate:"required"`
	RevReg                    *revocation.Registry          `json:"rev_reg"`
	Witness                   *revocation.Witness           `json:"witness"`
}

// CredentialInfo is the prover-facing summary of a stored credential.
type CredentialInfo struct {
	Referent  string            `json:"referent"`
	Attrs     map[string]string `json:"attrs"`
	SchemaID  string            `json:"schema_id"`
	CredDefID string            `json:"cred_def_id"`
	RevRegID  *string           `json:"rev_reg_id"`
	CredRevID *string           `json:"cred_rev_id"`
}

// MasterSecret is the prover's secret.
type MasterSecret struct {
	Value *cl.Num `json:"value"`
}

// NonRevokedInterval bounds the time a credential must be valid in.
type NonRevokedInterval struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

// AttributeInfo is one requested attribute.
type AttributeInfo struct {
	Name         string              `json:"name" validate:"notblank"`
	Restrictions json.RawMessage     `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// PredicateInfo is one requested predicate.
type PredicateInfo struct {
	Name         string              `json:"name" validate:"notblank"`
	PType        cl.PredicateType    `json:"p_type"`
	PValue       int32               `json:"p_value"`
	Restrictions json.RawMessage     `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// ProofRequest is what a verifier asks a prover to show.
type ProofRequest struct {
	Name                string                   `json:"name" validate:"notblank"`
	Version             string                   `json:"version" validate:"notblank"`
	Nonce               string                   `json:"nonce" validate:"notblank,numeric"`
	RequestedAttributes map[string]AttributeInfo `json:"requested_attributes" validate:"dive"`
	RequestedPredicates map[string]PredicateInfo `json:"requested_predicates" validate:"dive"`
	NonRevoked          *NonRevokedInterval      `json:"non_revoked,omitempty"`
	Ver                 string                   `json:"ver,omitempty"`
}

// Interval returns the interval that applies to a referent.
func (r *ProofRequest) Interval(own *NonRevokedInterval) *NonRevokedInterval {
	if own != nil {
		return own
	}
	return r.NonRevoked
}

// RequestedAttribute names the credential backing an attribute referent.
type RequestedAttribute struct {
	CredID    string  `json:"cred_id" validate:"notblank"`
	Timestamp *uint64 `json:"timestamp,omitempty"`
	Revealed  bool    `json:"revealed"`
}

// RequestedPredicate names the credential backing a predicate referent.
type RequestedPredicate struct {
	CredID    string  `json:"cred_id" validate:"notblank"`
	Timestamp *uint64 `json:"timestamp,omitempty"`
}

// RequestedCredentials is the prover's choice of credentials.
type RequestedCredentials struct {
	SelfAttestedAttributes map[string]string             `json:"self_attested_attributes"`
	RequestedAttributes    map[string]RequestedAttribute `json:"requested_attributes" validate:"dive"`
	RequestedPredicates    map[string]RequestedPredicate `json:"requested_predicates" validate:"dive"`
}

// SubProof is one credential's contribution to a proof.
type SubProof struct {
	PrimaryProof  *cl.PrimaryProof  `json:"primary_proof" validate:"required"`
	NonRevocProof *revocation.Proof `json:"non_revoc_proof,omitempty"`
}

// ProofBody is the cryptographic part of a proof.
type ProofBody struct {
	Proofs          []SubProof          `json:"proofs"`
	AggregatedProof *cl.AggregatedProof `json:"aggregated_proof" validate:"required"`
}

// RevealedAttributeInfo discloses one attribute.
type RevealedAttributeInfo struct {
	SubProofIndex int    `json:"sub_proof_index"`
	Raw           string `json:"raw"`
	Encoded       string `json:"encoded"`
}

// SubProofReferent points a referent at a sub-proof.
type SubProofReferent struct {
	SubProofIndex int `json:"sub_proof_index"`
}

// RequestedProof maps referents onto sub-proofs.
type RequestedProof struct {
	RevealedAttrs     map[string]RevealedAttributeInfo `json:"revealed_attrs"`
	SelfAttestedAttrs map[string]string                `json:"self_attested_attrs"`
	UnrevealedAttrs   map[string]SubProofReferent      `json:"unrevealed_attrs"`
	Predicates        map[string]SubProofReferent      `json:"predicates"`
}

// Identifier pins the ledger artifacts of a sub-proof.
type Identifier struct {
	SchemaID  string  `json:"schema_id"`
	CredDefID string  `json:"cred_def_id"`
	RevRegID  *string `json:"rev_reg_id"`
	Timestamp *uint64 `json:"timestamp"`
}

// Proof is the prover's answer to a proof request.
type Proof struct {
	Proof          ProofBody      `json:"proof"`
	RequestedProof RequestedProof `json:"requested_proof"`
	Identifiers    []Identifier   `json:"identifiers"`
}

// RequestedCredential is a candidate for a referent.
type RequestedCredential struct {
	CredInfo CredentialInfo      `json:"cred_info"`
	Interval *NonRevokedInterval `json:"interval"`
}

// CredentialsForProofRequest lists candidates per referent.
type CredentialsForProofRequest struct {
	Attrs      map[string][]RequestedCredential `json:"attrs"`
	Predicates map[string][]RequestedCredential `json:"predicates"`
}

// TagPolicy lists the attribute names that get attr:: tags. nil tags
// every attribute.
type TagPolicy []string

// Taggable reports whether attr is covered by the policy.
func (p TagPolicy) Taggable(attr string) bool {
	if p == nil {
		return true
	}
	for _, a := range p {
		if s.Canonical(a) == attr {
			return true
		}
	}
	return false
}

// RevocationStates maps a registry id and timestamp to a prover state.
type RevocationStates map[string]map[string]*revocation.State

// RevocationRegistries maps a registry id and timestamp to an accumulator.
type RevocationRegistries map[string]map[string]*RevocationRegistry

// AttrTagMarker and AttrTagValue name the tags a stored credential gets
// per attribute.
func AttrTagMarker(attr string) string { return "attr::" + attr + "::marker" }

// AttrTagValue is the value tag of attr.
func AttrTagValue(attr string) string { return "attr::" + attr + "::value" }

// IsAttrTag reports whether name is an attribute tag.
func IsAttrTag(name string) bool { return strings.HasPrefix(name, "attr::") }
