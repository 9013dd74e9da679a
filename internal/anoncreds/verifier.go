package anoncreds

import (
	"context"
	"encoding/json"
	"math/big"
	"slices"
	"sort"
	"strconv"

	"indy/internal/anoncreds/cl"
	"indy/internal/anoncreds/models"
	"indy/internal/anoncreds/revocation"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
	s "indy/pkg/string"
	"indy/pkg/validation"
)

// Verifier checks proofs. It keeps no state.
type Verifier struct {
	opts options
}

// NewVerifier creates a verifier.
func NewVerifier(opts ...Option) *Verifier {
	return &Verifier{opts: newOptions(opts)}
}

// GenerateNonce returns a fresh proof request nonce.
func (v *Verifier) GenerateNonce() string {
	return GenerateNonce()
}

type verifierInputs struct {
	req       *models.ProofRequest
	proof     models.Proof
	schemas   map[string]models.Schema
	credDefs  map[string]models.CredentialDefinition
	revRegDef map[string]models.RevRegDef
	revRegs   models.RevocationRegistries
}

func decodeMap[T any](raw, what string) (map[string]T, error) {
	out := map[string]T{}
	if isNull(json.RawMessage(raw)) {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed "+what)
	}
	return out, nil
}

func parseVerifierInputs(reqJSON, proofJSON, schemasJSON, credDefsJSON, revRegDefsJSON, revRegsJSON string) (*verifierInputs, error) {
	in := &verifierInputs{}
	var err error
	if in.req, err = parseProofRequest(reqJSON); err != nil {
		return nil, err
	}
	if err := validation.DecodeJSON(proofJSON, &in.proof); err != nil {
		return nil, err
	}
	if in.schemas, err = decodeMap[models.Schema](schemasJSON, "schemas"); err != nil {
		return nil, err
	}
	if in.credDefs, err = decodeMap[models.CredentialDefinition](credDefsJSON, "credential definitions"); err != nil {
		return nil, err
	}
	if in.revRegDef, err = decodeMap[models.RevRegDef](revRegDefsJSON, "revocation registry definitions"); err != nil {
		return nil, err
	}
	regs, err := decodeMap[map[string]*models.RevocationRegistry](revRegsJSON, "revocation registries")
	if err != nil {
		return nil, err
	}
	in.revRegs = regs
	return in, nil
}

// VerifyProof checks a proof against the request it answers. Malformed or
// inconsistent input is an error, restrictions the proof does not meet
// are ProofRejected, and a proof that fails the cryptographic checks
// returns false.
func (v *Verifier) VerifyProof(ctx context.Context, reqJSON, proofJSON, schemasJSON, credDefsJSON, revRegDefsJSON, revRegsJSON string) (bool, error) {
	in, err := parseVerifierInputs(reqJSON, proofJSON, schemasJSON, credDefsJSON, revRegDefsJSON, revRegsJSON)
	if err != nil {
		return false, err
	}
	subs, err := in.subProofRequests()
	if err != nil {
		return false, err
	}
	if err := in.checkRestrictions(); err != nil {
		return false, err
	}
	if !in.revealedValuesConsistent() {
		v.opts.logger.InfoContext(ctx, "proof rejected: revealed values do not match their encoding")
		return false, nil
	}

	verifierSubs := make([]cl.VerifierSubProof, len(subs))
	for i, sub := range in.proof.Proof.Proofs {
		id := in.proof.Identifiers[i]
		cd := in.credDefs[id.CredDefID]
		extraC, ok, err := in.verifyNonRevocation(i, &cd)
		if err != nil {
			return false, err
		}
		if !ok {
			v.opts.logger.InfoContext(ctx, "proof rejected: credential revoked", "sub_proof_index", i)
			return false, nil
		}
		verifierSubs[i] = cl.VerifierSubProof{
			PublicKey: cd.Value.Primary,
			Proof:     sub.PrimaryProof,
			Request:   subs[i],
			ExtraC:    extraC,
		}
	}
	nonce, _ := parseDecimal(in.req.Nonce, "nonce")
	ok, err := cl.VerifyProof(verifierSubs, in.proof.Proof.AggregatedProof, nonce)
	if err != nil {
		return false, err
	}
	if !ok {
		v.opts.logger.InfoContext(ctx, "proof rejected: primary proof does not verify")
	}
	return ok, nil
}

// subProofRequests checks that every referent is answered and rebuilds
// what each sub-proof must disclose.
func (in *verifierInputs) subProofRequests() ([]cl.SubProofRequest, error) {
	proofs := in.proof.Proof.Proofs
	rp := &in.proof.RequestedProof
	if len(proofs) != len(in.proof.Identifiers) {
		return nil, dErrors.New(dErrors.CodeInvalidStructure, "proof and identifier counts differ")
	}
	for i, id := range in.proof.Identifiers {
		if _, ok := in.schemas[id.SchemaID]; !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "schema %s not provided", id.SchemaID)
		}
		if _, ok := in.credDefs[id.CredDefID]; !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "credential definition %s not provided", id.CredDefID)
		}
		if proofs[i].PrimaryProof == nil || proofs[i].PrimaryProof.EqProof == nil {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "sub-proof %d has no primary proof", i)
		}
	}
	index := func(ref string, idx int) error {
		if idx < 0 || idx >= len(proofs) {
			return dErrors.Newf(dErrors.CodeInvalidStructure, "referent %s points at missing sub-proof %d", ref, idx)
		}
		return nil
	}

	for ref, info := range rp.RevealedAttrs {
		if _, ok := in.req.RequestedAttributes[ref]; !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "revealed attribute %s was not requested", ref)
		}
		if err := index(ref, info.SubProofIndex); err != nil {
			return nil, err
		}
	}
	for ref := range rp.UnrevealedAttrs {
		if _, ok := in.req.RequestedAttributes[ref]; !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "unrevealed attribute %s was not requested", ref)
		}
	}
	for ref := range rp.Predicates {
		if _, ok := in.req.RequestedPredicates[ref]; !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "predicate %s was not requested", ref)
		}
	}

	subs := make([]cl.SubProofRequest, len(proofs))
	attrRefs := make([]string, 0, len(in.req.RequestedAttributes))
	for ref := range in.req.RequestedAttributes {
		attrRefs = append(attrRefs, ref)
	}
	sort.Strings(attrRefs)
	for _, ref := range attrRefs {
		name := s.Canonical(in.req.RequestedAttributes[ref].Name)
		rev, isRev := rp.RevealedAttrs[ref]
		unrev, isUnrev := rp.UnrevealedAttrs[ref]
		_, isSelf := rp.SelfAttestedAttrs[ref]
		n := 0
		for _, b := range []bool{isRev, isUnrev, isSelf} {
			if b {
				n++
			}
		}
		if n != 1 {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "attribute %s must be answered exactly once", ref)
		}
		switch {
		case isRev:
			if err := index(ref, rev.SubProofIndex); err != nil {
				return nil, err
			}
			if !slices.Contains(subs[rev.SubProofIndex].Revealed, name) {
				subs[rev.SubProofIndex].Revealed = append(subs[rev.SubProofIndex].Revealed, name)
			}
		case isUnrev:
			if err := index(ref, unrev.SubProofIndex); err != nil {
				return nil, err
			}
		}
		if err := in.checkInterval(ref, in.req.RequestedAttributes[ref].NonRevoked, rev, unrev, isRev, isUnrev); err != nil {
			return nil, err
		}
	}

	predRefs := make([]string, 0, len(in.req.RequestedPredicates))
	for ref := range in.req.RequestedPredicates {
		predRefs = append(predRefs, ref)
	}
	sort.Strings(predRefs)
	for _, ref := range predRefs {
		pr, ok := rp.Predicates[ref]
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "predicate %s is not answered", ref)
		}
		if err := index(ref, pr.SubProofIndex); err != nil {
			return nil, err
		}
		pi := in.req.RequestedPredicates[ref]
		subs[pr.SubProofIndex].Predicates = append(subs[pr.SubProofIndex].Predicates, predicateOf(pi))
		if err := in.requireTimestamp(ref, in.req.Interval(pi.NonRevoked), pr.SubProofIndex); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

func (in *verifierInputs) checkInterval(ref string, own *models.NonRevokedInterval, rev models.RevealedAttributeInfo, unrev models.SubProofReferent, isRev, isUnrev bool) error {
	switch {
	case isRev:
		return in.requireTimestamp(ref, in.req.Interval(own), rev.SubProofIndex)
	case isUnrev:
		return in.requireTimestamp(ref, in.req.Interval(own), unrev.SubProofIndex)
	}
	return nil
}

// requireTimestamp checks that a referent asked to be non-revoked is
// backed by a sub-proof carrying a non-revocation proof.
func (in *verifierInputs) requireTimestamp(ref string, interval *models.NonRevokedInterval, idx int) error {
	if interval == nil {
		return nil
	}
	id := in.proof.Identifiers[idx]
	if id.Timestamp == nil || in.proof.Proof.Proofs[idx].NonRevocProof == nil {
		return dErrors.Newf(dErrors.CodeInvalidStructure, "referent %s needs a non-revocation proof", ref)
	}
	return nil
}

// subProofTags are the tags restrictions are evaluated against: the
// identifiers of the sub-proof plus the attributes it reveals.
func (in *verifierInputs) subProofTags(idx int) wallet.Tags {
	id := in.proof.Identifiers[idx]
	tags := models.IdentifierTags(id.SchemaID, id.CredDefID, id.RevRegID)
	for ref, info := range in.proof.RequestedProof.RevealedAttrs {
		if info.SubProofIndex != idx {
			continue
		}
		name := s.Canonical(in.req.RequestedAttributes[ref].Name)
		tags[models.AttrTagMarker(name)] = "1"
		tags[models.AttrTagValue(name)] = info.Raw
	}
	return tags
}

func (in *verifierInputs) checkRestrictions() error {
	rp := &in.proof.RequestedProof
	check := func(ref string, restrictions json.RawMessage, idx int) error {
		ok, err := matchRestrictions(restrictions, in.subProofTags(idx))
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.Newf(dErrors.CodeProofRejected, "%s does not satisfy its restrictions", ref)
		}
		return nil
	}
	for ref, attr := range in.req.RequestedAttributes {
		if _, self := rp.SelfAttestedAttrs[ref]; self {
			if !isNull(attr.Restrictions) {
				return dErrors.Newf(dErrors.CodeProofRejected, "%s is restricted but self-attested", ref)
			}
			continue
		}
		idx := -1
		if info, ok := rp.RevealedAttrs[ref]; ok {
			idx = info.SubProofIndex
		} else if info, ok := rp.UnrevealedAttrs[ref]; ok {
			idx = info.SubProofIndex
		}
		if err := check(ref, attr.Restrictions, idx); err != nil {
			return err
		}
	}
	for ref, pi := range in.req.RequestedPredicates {
		if err := check(ref, pi.Restrictions, rp.Predicates[ref].SubProofIndex); err != nil {
			return err
		}
	}
	return nil
}

// revealedValuesConsistent checks every revealed raw value against the
// encoding the primary proof commits to.
func (in *verifierInputs) revealedValuesConsistent() bool {
	for ref, info := range in.proof.RequestedProof.RevealedAttrs {
		name := s.Canonical(in.req.RequestedAttributes[ref].Name)
		committed, ok := in.proof.Proof.Proofs[info.SubProofIndex].PrimaryProof.EqProof.RevealedAttrs[name]
		if !ok || committed == nil {
			return false
		}
		enc, ok := new(big.Int).SetString(info.Encoded, 10)
		if !ok || enc.Cmp(committed.Int()) != 0 {
			return false
		}
		if cl.IsInt32(info.Raw) && info.Encoded != info.Raw {
			return false
		}
	}
	return true
}

// verifyNonRevocation checks the non-revocation proof of sub-proof idx, if
// any, and returns its commitments for the aggregated challenge.
func (in *verifierInputs) verifyNonRevocation(idx int, cd *models.CredentialDefinition) ([]*big.Int, bool, error) {
	nrp := in.proof.Proof.Proofs[idx].NonRevocProof
	if nrp == nil {
		return nil, true, nil
	}
	id := in.proof.Identifiers[idx]
	if id.RevRegID == nil || id.Timestamp == nil {
		return nil, false, dErrors.Newf(dErrors.CodeInvalidStructure, "sub-proof %d has a non-revocation proof without registry and timestamp", idx)
	}
	if cd.Value.Revocation == nil {
		return nil, false, dErrors.Newf(dErrors.CodeInvalidStructure, "credential definition %s has no revocation key", cd.ID)
	}
	def, ok := in.revRegDef[*id.RevRegID]
	if !ok {
		return nil, false, dErrors.Newf(dErrors.CodeInvalidStructure, "revocation registry definition %s not provided", *id.RevRegID)
	}
	reg, ok := in.revRegs[*id.RevRegID][strconv.FormatUint(*id.Timestamp, 10)]
	if !ok || reg == nil {
		return nil, false, dErrors.Newf(dErrors.CodeInvalidStructure, "revocation registry %s at %d not provided", *id.RevRegID, *id.Timestamp)
	}
	valid, err := revocation.Verify(cd.Value.Revocation, def.Value.PublicKeys.AccumKey, &reg.Value, nrp)
	if err != nil || !valid {
		return nil, false, err
	}
	return nrp.CList(), true, nil
}
