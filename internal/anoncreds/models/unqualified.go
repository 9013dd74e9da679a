package models

import (
	"bytes"
	"encoding/json"
	"strings"

	dErrors "indy/pkg/domain-errors"
)

var idFields = map[string]bool{
	"id":                true,
	"schemaId":          true,
	"credDefId":         true,
	"revocRegDefId":     true,
	"schema_id":         true,
	"cred_def_id":       true,
	"rev_reg_id":        true,
	"issuer_did":        true,
	"schema_issuer_did": true,
	"prover_did":        true,
}

// ToUnqualified strips method prefixes from an identifier, or from every
// identifier inside a JSON entity.
func ToUnqualified(entity string) (string, error) {
	trimmed := strings.TrimSpace(entity)
	if !strings.HasPrefix(trimmed, "{") {
		return Unqualify(entity), nil
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "entity is not valid json")
	}
	doc = unqualifyValue(doc, false)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode entity")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func unqualifyValue(v any, isID bool) any {
	switch t := v.(type) {
	case map[string]any:
		for k, sub := range t {
			t[k] = unqualifyValue(sub, idFields[k])
		}
		return t
	case []any:
		for i, sub := range t {
			t[i] = unqualifyValue(sub, isID)
		}
		return t
	case string:
		if isID {
			return Unqualify(t)
		}
	}
	return v
}

// RestrictionQuery turns the restrictions of a referent into a wallet
// query. A list is a disjunction of its objects; an object is used as is.
func RestrictionQuery(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	switch trimmed[0] {
	case '{':
		return string(trimmed), nil
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed restrictions")
		}
		if len(list) == 0 {
			return "", nil
		}
		out, err := json.Marshal(map[string][]json.RawMessage{"$or": list})
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInvalidStructure, "malformed restrictions")
		}
		return string(out), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidStructure, "restrictions must be an object or a list")
}
