// Package models holds the JSON documents exchanged by issuers, provers
// and verifiers, and the identifiers that name them on the ledger.
package models

import (
	"regexp"
	"strings"

	dErrors "indy/pkg/domain-errors"
)

const (
	SignatureTypeCL = "CL"
	RevocDefTypeCL  = "CL_ACCUM"

	schemaMarker  = "2"
	credDefMarker = "3"
	revRegMarker  = "4"

	schemaPrefix  = "schema"
	credDefPrefix = "creddef"
	revRegPrefix  = "revreg"
)

var qualifiedPrefix = regexp.MustCompile(`(?:^|:)(?:schema|creddef|revreg):[a-z0-9]+:`)
var qualifiedDid = regexp.MustCompile(`did:[a-z0-9]+:`)

func didMethod(did string) (string, bool) {
	rest, ok := strings.CutPrefix(did, "did:")
	if !ok {
		return "", false
	}
	method, _, found := strings.Cut(rest, ":")
	return method, found
}

func qualify(prefix, did, id string) string {
	if method, ok := didMethod(did); ok {
		return prefix + ":" + method + ":" + id
	}
	return id
}

// SchemaID derives the id of a schema.
func SchemaID(did, name, version string) string {
	return qualify(schemaPrefix, did, strings.Join([]string{did, schemaMarker, name, version}, ":"))
}

// CredDefID derives the id of a credential definition. schemaRef is the
// schema's ledger sequence number or its id.
func CredDefID(did, schemaRef, tag string) string {
	return qualify(credDefPrefix, did, strings.Join([]string{did, credDefMarker, SignatureTypeCL, schemaRef, tag}, ":"))
}

// RevRegID derives the id of a revocation registry.
func RevRegID(did, credDefID, tag string) string {
	return qualify(revRegPrefix, did, strings.Join([]string{did, revRegMarker, credDefID, RevocDefTypeCL, tag}, ":"))
}

// Unqualify strips every method prefix from an identifier.
func Unqualify(id string) string {
	id = qualifiedPrefix.ReplaceAllStringFunc(id, func(m string) string {
		if strings.HasPrefix(m, ":") {
			return ":"
		}
		return ""
	})
	return qualifiedDid.ReplaceAllString(id, "")
}

// IsQualified reports whether id carries a method prefix.
func IsQualified(id string) bool {
	return strings.HasPrefix(id, "did:") || qualifiedPrefix.MatchString(id)
}

// splitIssuer cuts the issuer DID off an id, keeping a qualified DID whole.
func splitIssuer(id string) (did, rest string, ok bool) {
	id = qualifiedPrefix.ReplaceAllStringFunc(id, func(m string) string {
		if strings.HasPrefix(m, ":") {
			return m
		}
		return ""
	})
	if strings.HasPrefix(id, "did:") {
		parts := strings.SplitN(id, ":", 4)
		if len(parts) < 4 {
			return "", "", false
		}
		return strings.Join(parts[:3], ":"), parts[3], true
	}
	did, rest, ok = strings.Cut(id, ":")
	return did, rest, ok
}

// SchemaIDParts splits a schema id into its issuer, name and version.
func SchemaIDParts(id string) (did, name, version string, err error) {
	did, rest, ok := splitIssuer(id)
	parts := strings.Split(rest, ":")
	if !ok || len(parts) != 3 || parts[0] != schemaMarker {
		return "", "", "", dErrors.Newf(dErrors.CodeInvalidStructure, "malformed schema id %q", id)
	}
	return did, parts[1], parts[2], nil
}

// CredDefIssuer returns the issuer DID of a credential definition id.
func CredDefIssuer(id string) (string, error) {
	did, rest, ok := splitIssuer(id)
	if !ok || !strings.HasPrefix(rest, credDefMarker+":"+SignatureTypeCL+":") {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "malformed credential definition id %q", id)
	}
	return did, nil
}

// RevRegCredDef returns the credential definition id of a revocation
// registry id.
func RevRegCredDef(id string) (string, error) {
	_, rest, ok := splitIssuer(id)
	if !ok || !strings.HasPrefix(rest, revRegMarker+":") {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "malformed revocation registry id %q", id)
	}
	body := strings.TrimPrefix(rest, revRegMarker+":")
	i := strings.LastIndex(body, ":"+RevocDefTypeCL+":")
	if i < 0 {
		return "", dErrors.Newf(dErrors.CodeInvalidStructure, "malformed revocation registry id %q", id)
	}
	return body[:i], nil
}

// CredDefIDParts splits a credential definition id into its issuer, schema
// reference and tag.
func CredDefIDParts(id string) (did, schemaRef, tag string, err error) {
	did, rest, ok := splitIssuer(id)
	parts := strings.Split(rest, ":")
	if !ok || len(parts) < 4 || parts[0] != credDefMarker || parts[1] != SignatureTypeCL {
		return "", "", "", dErrors.Newf(dErrors.CodeInvalidStructure, "malformed credential definition id %q", id)
	}
	return did, strings.Join(parts[2:len(parts)-1], ":"), parts[len(parts)-1], nil
}
