// Package wallet defines the record model shared by every service that
// keeps state in an encrypted wallet, and the Store port they depend on.
package wallet

import (
	"context"
	"encoding/json"
	"strings"

	"indy/internal/command"
	dErrors "indy/pkg/domain-errors"
)

// ReservedPrefix marks record types owned by the library itself.
const ReservedPrefix = "Indy::"

// Internal record types.
const (
	TypeKey              = "Indy::Key"
	TypeKeyMetadata      = "Indy::KeyMetadata"
	TypeDid              = "Indy::Did"
	TypeTheirDid         = "Indy::TheirDid"
	TypeTemporaryDid     = "Indy::TemporaryDid"
	TypeDidMetadata      = "Indy::DidMetadata"
	TypeEndpoint         = "Indy::Endpoint"
	TypePairwise         = "Indy::Pairwise"
	TypeMasterSecret     = "Indy::MasterSecret"
	TypeCredential       = "Indy::Credential"
	TypeAttrTagPolicy    = "Indy::CredentialAttrTagPolicy"
	TypeSchema           = "Indy::Schema"
	TypeSchemaID         = "Indy::SchemaId"
	TypeCredDef          = "Indy::CredentialDefinition"
	TypeCredDefPrivate   = "Indy::CredentialDefinitionPrivateKey"
	TypeCredDefProof     = "Indy::CredentialDefinitionCorrectnessProof"
	TypeTemporaryCredDef = "Indy::TemporaryCredentialDefinition"
	TypeRevRegDef        = "Indy::RevocationRegistryDefinition"
	TypeRevRegDefPrivate = "Indy::RevocationRegistryDefinitionPrivate"
	TypeRevReg           = "Indy::RevocationRegistry"
	TypeRevRegInfo       = "Indy::RevocationRegistryInfo"
	TypeSchemaCache      = "Indy::SchemaCache"
	TypeCredDefCache     = "Indy::CredDefCache"
	TypePaymentAddress   = "Indy::PaymentAddress"
)

// IsReserved reports whether typ belongs to the library's own namespace.
func IsReserved(typ string) bool {
	return strings.HasPrefix(typ, ReservedPrefix)
}

// Tags maps tag names to values. Names starting with "~" are stored in
// plaintext and support every query operator; all other tags are
// encrypted and only support equality.
type Tags map[string]string

// IsPlainTag reports whether a tag name is stored unencrypted.
func IsPlainTag(name string) bool {
	return strings.HasPrefix(name, "~")
}

// Record is a decrypted wallet record. Fields not requested through the
// retrieve options are left empty.
type Record struct {
	Type  string `json:"type,omitempty"`
	ID    string `json:"id"`
	Value string `json:"value,omitempty"`
	Tags  Tags   `json:"tags,omitempty"`
}

// RecordOptions selects the projections returned by a get.
type RecordOptions struct {
	RetrieveType  bool `json:"retrieveType"`
	RetrieveValue bool `json:"retrieveValue"`
	RetrieveTags  bool `json:"retrieveTags"`
}

// DefaultRecordOptions returns value only.
func DefaultRecordOptions() RecordOptions {
	return RecordOptions{RetrieveValue: true}
}

// FullRecordOptions returns every projection.
func FullRecordOptions() RecordOptions {
	return RecordOptions{RetrieveType: true, RetrieveValue: true, RetrieveTags: true}
}

// SearchOptions selects the projections returned by a search.
type SearchOptions struct {
	RetrieveRecords    bool `json:"retrieveRecords"`
	RetrieveTotalCount bool `json:"retrieveTotalCount"`
	RetrieveType       bool `json:"retrieveType"`
	RetrieveValue      bool `json:"retrieveValue"`
	RetrieveTags       bool `json:"retrieveTags"`
}

// DefaultSearchOptions returns records with values, without count.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{RetrieveRecords: true, RetrieveValue: true}
}

// RecordOptions projects the per-record part of the search options.
func (o SearchOptions) RecordOptions() RecordOptions {
	return RecordOptions{RetrieveType: o.RetrieveType, RetrieveValue: o.RetrieveValue, RetrieveTags: o.RetrieveTags}
}

// Cursor walks the result of a search. It is bound to the snapshot taken
// when the search was opened.
type Cursor interface {
	// TotalCount is the number of matching records, when it was requested.
	TotalCount() (int, bool)
	// Next returns up to n records. It fails with WalletNoRecords once the
	// cursor is exhausted.
	Next(ctx context.Context, n int) ([]Record, error)
	Close() error
}

// SearchPage is one fetch from an open search. Records is null when the
// search was opened without retrieveRecords.
type SearchPage struct {
	TotalCount *int     `json:"totalCount,omitempty"`
	Records    []Record `json:"records"`
}

// Store is the record API of an opened wallet.
type Store interface {
	AddRecord(ctx context.Context, h command.WalletHandle, typ, id, value string, tags Tags) error
	UpdateRecordValue(ctx context.Context, h command.WalletHandle, typ, id, value string) error
	UpdateRecordTags(ctx context.Context, h command.WalletHandle, typ, id string, tags Tags) error
	AddRecordTags(ctx context.Context, h command.WalletHandle, typ, id string, tags Tags) error
	DeleteRecordTags(ctx context.Context, h command.WalletHandle, typ, id string, names []string) error
	DeleteRecord(ctx context.Context, h command.WalletHandle, typ, id string) error
	GetRecord(ctx context.Context, h command.WalletHandle, typ, id string, opts RecordOptions) (*Record, error)
	Search(ctx context.Context, h command.WalletHandle, typ, query string, opts SearchOptions) (Cursor, error)
}

// Searcher keeps searches open across calls behind a SearchHandle.
type Searcher interface {
	OpenSearch(ctx context.Context, h command.WalletHandle, typ, query string, opts SearchOptions) (command.SearchHandle, error)
	FetchNext(ctx context.Context, h command.WalletHandle, sh command.SearchHandle, n int) (*SearchPage, error)
	CloseSearch(sh command.SearchHandle) error
}

// AddObject stores v as JSON.
func AddObject[T any](ctx context.Context, s Store, h command.WalletHandle, typ, id string, v T, tags Tags) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "encode "+typ)
	}
	return s.AddRecord(ctx, h, typ, id, string(raw), tags)
}

// UpdateObject replaces the JSON value of an existing record.
func UpdateObject[T any](ctx context.Context, s Store, h command.WalletHandle, typ, id string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "encode "+typ)
	}
	return s.UpdateRecordValue(ctx, h, typ, id, string(raw))
}

// GetObject loads and decodes a JSON record.
func GetObject[T any](ctx context.Context, s Store, h command.WalletHandle, typ, id string) (T, error) {
	var out T
	rec, err := s.GetRecord(ctx, h, typ, id, DefaultRecordOptions())
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(rec.Value), &out); err != nil {
		return out, dErrors.Wrap(err, dErrors.CodeInvalidState, "decode "+typ)
	}
	return out, nil
}

// Exists reports whether ⟨typ, id⟩ is present.
func Exists(ctx context.Context, s Store, h command.WalletHandle, typ, id string) (bool, error) {
	_, err := s.GetRecord(ctx, h, typ, id, RecordOptions{})
	switch {
	case err == nil:
		return true, nil
	case dErrors.HasCode(err, dErrors.CodeWalletItemNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Upsert adds ⟨typ, id⟩ or replaces its value when it already exists.
func Upsert(ctx context.Context, s Store, h command.WalletHandle, typ, id, value string) error {
	ok, err := Exists(ctx, s, h, typ, id)
	if err != nil {
		return err
	}
	if ok {
		return s.UpdateRecordValue(ctx, h, typ, id, value)
	}
	return s.AddRecord(ctx, h, typ, id, value, nil)
}

// SearchAll drains a search into memory.
func SearchAll(ctx context.Context, s Store, h command.WalletHandle, typ, query string, opts SearchOptions) ([]Record, error) {
	if !opts.RetrieveRecords {
		return nil, nil
	}
	cur, err := s.Search(ctx, h, typ, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close() //nolint:errcheck
	var out []Record
	for {
		page, err := cur.Next(ctx, 100)
		if dErrors.HasCode(err, dErrors.CodeWalletNoRecords) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
}
