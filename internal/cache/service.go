// Package cache keeps ledger schemas and credential definitions in the
// wallet so repeated lookups do not reach the pool.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Ledger

// Ledger fetches entities the cache does not hold.
type Ledger interface {
	// GetSchema returns the raw GET_SCHEMA reply for id.
	GetSchema(ctx context.Context, pool command.PoolHandle, submitterDID, id string) (string, error)
	// GetCredDef returns the raw GET_CRED_DEF reply for id.
	GetCredDef(ctx context.Context, pool command.PoolHandle, submitterDID, id string) (string, error)
	ParseGetSchemaResponse(response string) (string, string, error)
	ParseGetCredDefResponse(response string) (string, string, error)
}

// timestampTag holds the unix time a record was cached at. It is a plain
// tag so purges can range over it.
const timestampTag = "~timestamp"

// GetOptions controls a cached read.
type GetOptions struct {
	// NoCache skips the cache lookup.
	NoCache bool `json:"noCache"`
	// NoUpdate fails instead of asking the ledger on a miss.
	NoUpdate bool `json:"noUpdate"`
	// NoStore does not cache what the ledger returned.
	NoStore bool `json:"noStore"`
	// MinFresh is the maximum age in seconds of a usable entry, -1 for any.
	MinFresh int64 `json:"minFresh" validate:"gte=-1"`
}

// PurgeOptions controls a purge.
type PurgeOptions struct {
	// MaxAge keeps entries younger than this many seconds, -1 purges all.
	MaxAge int64 `json:"maxAge" validate:"gte=-1"`
}

// ParseGetOptions decodes get options, filling defaults for absent fields.
func ParseGetOptions(raw string) (GetOptions, error) {
	opts := GetOptions{MinFresh: -1}
	if raw == "" {
		return opts, nil
	}
	err := validation.DecodeJSON(raw, &opts)
	return opts, err
}

// ParsePurgeOptions decodes purge options.
func ParsePurgeOptions(raw string) (PurgeOptions, error) {
	opts := PurgeOptions{MaxAge: -1}
	if raw == "" {
		return opts, nil
	}
	err := validation.DecodeJSON(raw, &opts)
	return opts, err
}

type kind struct {
	typ   string
	name  string
	fetch func(Ledger, context.Context, command.PoolHandle, string, string) (string, error)
	parse func(Ledger, string) (string, string, error)
}

var (
	schemaKind = kind{
		typ:   wallet.TypeSchemaCache,
		name:  "schema",
		fetch: Ledger.GetSchema,
		parse: Ledger.ParseGetSchemaResponse,
	}
	credDefKind = kind{
		typ:   wallet.TypeCredDefCache,
		name:  "credential definition",
		fetch: Ledger.GetCredDef,
		parse: Ledger.ParseGetCredDefResponse,
	}
)

// Service serves schemas and credential definitions from the wallet cache
// and the ledger.
type Service struct {
	store  wallet.Store
	ledger Ledger
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a cache over store that falls back to ledger.
func NewService(store wallet.Store, ledger Ledger, opts ...Option) *Service {
	s := &Service{store: store, ledger: ledger, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CachedSchema returns the cached schema when it is fresh enough. The
// boolean is false on a miss that may be resolved by the ledger.
func (s *Service) CachedSchema(ctx context.Context, h command.WalletHandle, id string, opts GetOptions) (string, bool, error) {
	return s.cached(ctx, h, schemaKind, id, opts)
}

// CachedCredDef is CachedSchema for credential definitions.
func (s *Service) CachedCredDef(ctx context.Context, h command.WalletHandle, id string, opts GetOptions) (string, bool, error) {
	return s.cached(ctx, h, credDefKind, id, opts)
}

// FetchSchema asks the ledger for id.
func (s *Service) FetchSchema(ctx context.Context, pool command.PoolHandle, submitterDID, id string) (string, error) {
	return s.fetch(ctx, schemaKind, pool, submitterDID, id)
}

// FetchCredDef asks the ledger for id.
func (s *Service) FetchCredDef(ctx context.Context, pool command.PoolHandle, submitterDID, id string) (string, error) {
	return s.fetch(ctx, credDefKind, pool, submitterDID, id)
}

// GetSchemaContinue parses a ledger reply and caches the schema unless
// NoStore is set.
func (s *Service) GetSchemaContinue(ctx context.Context, h command.WalletHandle, id, response string, opts GetOptions) (string, error) {
	return s.storeReply(ctx, h, schemaKind, id, response, opts)
}

// GetCredDefContinue is GetSchemaContinue for credential definitions.
func (s *Service) GetCredDefContinue(ctx context.Context, h command.WalletHandle, id, response string, opts GetOptions) (string, error) {
	return s.storeReply(ctx, h, credDefKind, id, response, opts)
}

// GetSchema runs the whole lookup in one call.
func (s *Service) GetSchema(ctx context.Context, pool command.PoolHandle, h command.WalletHandle, submitterDID, id string, opts GetOptions) (string, error) {
	return s.get(ctx, schemaKind, pool, h, submitterDID, id, opts)
}

// GetCredDef runs the whole lookup in one call.
func (s *Service) GetCredDef(ctx context.Context, pool command.PoolHandle, h command.WalletHandle, submitterDID, id string, opts GetOptions) (string, error) {
	return s.get(ctx, credDefKind, pool, h, submitterDID, id, opts)
}

// PurgeSchemaCache deletes cached schemas older than opts.MaxAge.
func (s *Service) PurgeSchemaCache(ctx context.Context, h command.WalletHandle, opts PurgeOptions) error {
	return s.purge(ctx, h, schemaKind, opts)
}

// PurgeCredDefCache deletes cached credential definitions older than
// opts.MaxAge.
func (s *Service) PurgeCredDefCache(ctx context.Context, h command.WalletHandle, opts PurgeOptions) error {
	return s.purge(ctx, h, credDefKind, opts)
}

func (s *Service) get(ctx context.Context, k kind, pool command.PoolHandle, h command.WalletHandle, submitterDID, id string, opts GetOptions) (string, error) {
	value, ok, err := s.cached(ctx, h, k, id, opts)
	if err != nil || ok {
		return value, err
	}
	resp, err := s.fetch(ctx, k, pool, submitterDID, id)
	if err != nil {
		return "", err
	}
	return s.storeReply(ctx, h, k, id, resp, opts)
}

func (s *Service) cached(ctx context.Context, h command.WalletHandle, k kind, id string, opts GetOptions) (string, bool, error) {
	if id == "" {
		return "", false, dErrors.Newf(dErrors.CodeInvalidParam4, "%s id is required", k.name)
	}
	if !opts.NoCache {
		rec, err := s.store.GetRecord(ctx, h, k.typ, id, wallet.RecordOptions{RetrieveValue: true, RetrieveTags: true})
		switch {
		case err == nil:
			if s.fresh(rec, opts.MinFresh) {
				s.logger.DebugContext(ctx, "cache hit", "type", k.typ, "id", id)
				return rec.Value, true, nil
			}
		case !dErrors.HasCode(err, dErrors.CodeWalletItemNotFound):
			return "", false, err
		}
	}
	if opts.NoUpdate {
		return "", false, dErrors.Newf(dErrors.CodeWalletItemNotFound, "%s %s is not cached", k.name, id)
	}
	return "", false, nil
}

func (s *Service) fresh(rec *wallet.Record, minFresh int64) bool {
	if minFresh < 0 {
		return true
	}
	ts, err := strconv.ParseInt(rec.Tags[timestampTag], 10, 64)
	if err != nil {
		return false
	}
	return s.now().Unix()-ts <= minFresh
}

func (s *Service) fetch(ctx context.Context, k kind, pool command.PoolHandle, submitterDID, id string) (string, error) {
	if s.ledger == nil {
		return "", dErrors.Newf(dErrors.CodeInvalidState, "no ledger to fetch %s %s", k.name, id)
	}
	return k.fetch(s.ledger, ctx, pool, submitterDID, id)
}

func (s *Service) storeReply(ctx context.Context, h command.WalletHandle, k kind, id, response string, opts GetOptions) (string, error) {
	_, value, err := k.parse(s.ledger, response)
	if err != nil {
		return "", err
	}
	if opts.NoStore {
		return value, nil
	}
	tags := wallet.Tags{timestampTag: strconv.FormatInt(s.now().Unix(), 10)}
	ok, err := wallet.Exists(ctx, s.store, h, k.typ, id)
	if err != nil {
		return "", err
	}
	if ok {
		if err := s.store.UpdateRecordValue(ctx, h, k.typ, id, value); err != nil {
			return "", err
		}
		err = s.store.UpdateRecordTags(ctx, h, k.typ, id, tags)
	} else {
		err = s.store.AddRecord(ctx, h, k.typ, id, value, tags)
	}
	if err != nil {
		return "", err
	}
	s.logger.DebugContext(ctx, "cached", "type", k.typ, "id", id)
	return value, nil
}

func (s *Service) purge(ctx context.Context, h command.WalletHandle, k kind, opts PurgeOptions) error {
	query := "{}"
	if opts.MaxAge >= 0 {
		query = fmt.Sprintf(`{%q:{"$lt":"%d"}}`, timestampTag, s.now().Unix()-opts.MaxAge)
	}
	records, err := wallet.SearchAll(ctx, s.store, h, k.typ, query, wallet.SearchOptions{RetrieveRecords: true})
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := s.store.DeleteRecord(ctx, h, k.typ, r.ID); err != nil && !dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) {
			return err
		}
	}
	s.logger.InfoContext(ctx, "cache purged", "type", k.typ, "count", len(records))
	return nil
}
