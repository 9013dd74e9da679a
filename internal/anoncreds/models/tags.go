package models

import (
	"indy/internal/wallet"
)

// Tag names describing where a credential comes from.
const (
	TagSchemaID        = "schema_id"
	TagSchemaIssuerDid = "schema_issuer_did"
	TagSchemaName      = "schema_name"
	TagSchemaVersion   = "schema_version"
	TagIssuerDid       = "issuer_did"
	TagCredDefID       = "cred_def_id"
	TagRevRegID        = "rev_reg_id"
)

// IdentifierTags derives the restriction tags of a credential from its
// identifiers. Unparseable ids contribute only their raw value.
func IdentifierTags(schemaID, credDefID string, revRegID *string) wallet.Tags {
	tags := wallet.Tags{
		TagSchemaID:  schemaID,
		TagCredDefID: credDefID,
	}
	if did, name, version, err := SchemaIDParts(schemaID); err == nil {
		tags[TagSchemaIssuerDid] = did
		tags[TagSchemaName] = name
		tags[TagSchemaVersion] = version
	}
	if did, err := CredDefIssuer(credDefID); err == nil {
		tags[TagIssuerDid] = did
	}
	if revRegID != nil {
		tags[TagRevRegID] = *revRegID
	}
	return tags
}

// CredentialTags are the tags a stored credential is indexed by. values
// are keyed by canonical attribute name.
func CredentialTags(cred *Credential, policy TagPolicy) wallet.Tags {
	tags := IdentifierTags(cred.SchemaID, cred.CredDefID, cred.RevRegID)
	for name, v := range cred.Values {
		if !policy.Taggable(name) {
			continue
		}
		tags[AttrTagMarker(name)] = "1"
		tags[AttrTagValue(name)] = v.Raw
	}
	return tags
}
