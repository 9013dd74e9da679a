package anoncreds

import (
	"bytes"
	"encoding/json"

	"indy/internal/anoncreds/cl"
	"indy/internal/anoncreds/models"
	"indy/internal/wallet"
	"indy/internal/wallet/query"
	dErrors "indy/pkg/domain-errors"
	s "indy/pkg/string"
	"indy/pkg/validation"
)

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// referentQuery builds the wallet query of a requested attribute or
// predicate: the credential must carry the attribute, satisfy the
// restrictions and match the caller's extra query.
func referentQuery(name string, restrictions, extra json.RawMessage) (string, error) {
	marker, err := json.Marshal(map[string]string{models.AttrTagMarker(s.Canonical(name)): "1"})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode attribute marker")
	}
	parts := []json.RawMessage{marker}
	r, err := models.RestrictionQuery(restrictions)
	if err != nil {
		return "", err
	}
	if r != "" {
		parts = append(parts, json.RawMessage(r))
	}
	if !isNull(extra) {
		parts = append(parts, extra)
	}
	out, err := json.Marshal(map[string][]json.RawMessage{"$and": parts})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed referent query")
	}
	return string(out), nil
}

// matchRestrictions evaluates restrictions against tags. Query errors are
// reported as structure errors.
func matchRestrictions(restrictions json.RawMessage, tags wallet.Tags) (bool, error) {
	r, err := models.RestrictionQuery(restrictions)
	if err != nil {
		return false, err
	}
	if r == "" {
		return true, nil
	}
	q, err := query.Parse(r)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed restrictions")
	}
	ok, err := query.MatchTags(q, tags)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed restrictions")
	}
	return ok, nil
}

// parseProofRequest decodes a proof request and checks what the validator
// tags cannot express.
func parseProofRequest(raw string) (*models.ProofRequest, error) {
	var req models.ProofRequest
	if err := validation.DecodeJSON(raw, &req); err != nil {
		return nil, err
	}
	if _, err := parseDecimal(req.Nonce, "nonce"); err != nil {
		return nil, err
	}
	for ref, p := range req.RequestedPredicates {
		if !p.PType.Valid() {
			return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "predicate %s has unsupported type %q", ref, p.PType)
		}
	}
	return &req, nil
}

func predicateOf(p models.PredicateInfo) cl.Predicate {
	return cl.Predicate{AttrName: s.Canonical(p.Name), PType: p.PType, Value: p.PValue}
}
