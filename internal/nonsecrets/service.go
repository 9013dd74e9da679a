// Package nonsecrets exposes the wallet record API to applications for
// their own record types. Types in the library's reserved namespace are
// refused.
package nonsecrets

import (
	"context"
	"encoding/json"
	"log/slog"

	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

// Wallet is the part of the wallet service used here.
type Wallet interface {
	wallet.Store
	wallet.Searcher
}

// Service implements the generic record commands.
type Service struct {
	wallet Wallet
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a non-secrets service.
func NewService(w Wallet, opts ...Option) *Service {
	s := &Service{wallet: w, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkType(typ string) error {
	if wallet.IsReserved(typ) {
		return dErrors.Newf(dErrors.CodeWalletInputError, "record type %q is reserved", typ)
	}
	return nil
}

// parseTags accepts an empty string or JSON null as no tags. Tag values
// must be strings.
func parseTags(raw string) (wallet.Tags, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var tags wallet.Tags
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "tags must be a JSON object of strings")
	}
	return tags, nil
}

// ParseRecordOptions decodes get options over the defaults.
func ParseRecordOptions(raw string) (wallet.RecordOptions, error) {
	opts := wallet.DefaultRecordOptions()
	if raw == "" || raw == "null" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return opts, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "invalid record options")
	}
	return opts, nil
}

// ParseSearchOptions decodes search options over the defaults.
func ParseSearchOptions(raw string) (wallet.SearchOptions, error) {
	opts := wallet.DefaultSearchOptions()
	if raw == "" || raw == "null" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return opts, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "invalid search options")
	}
	return opts, nil
}

func (s *Service) AddRecord(ctx context.Context, h command.WalletHandle, typ, id, value, tagsJSON string) error {
	if err := checkType(typ); err != nil {
		return err
	}
	tags, err := parseTags(tagsJSON)
	if err != nil {
		return err
	}
	return s.wallet.AddRecord(ctx, h, typ, id, value, tags)
}

func (s *Service) UpdateRecordValue(ctx context.Context, h command.WalletHandle, typ, id, value string) error {
	if err := checkType(typ); err != nil {
		return err
	}
	return s.wallet.UpdateRecordValue(ctx, h, typ, id, value)
}

func (s *Service) UpdateRecordTags(ctx context.Context, h command.WalletHandle, typ, id, tagsJSON string) error {
	if err := checkType(typ); err != nil {
		return err
	}
	tags, err := parseTags(tagsJSON)
	if err != nil {
		return err
	}
	return s.wallet.UpdateRecordTags(ctx, h, typ, id, tags)
}

func (s *Service) AddRecordTags(ctx context.Context, h command.WalletHandle, typ, id, tagsJSON string) error {
	if err := checkType(typ); err != nil {
		return err
	}
	tags, err := parseTags(tagsJSON)
	if err != nil {
		return err
	}
	return s.wallet.AddRecordTags(ctx, h, typ, id, tags)
}

// DeleteRecordTags removes the tags named in tagNamesJSON, a JSON array.
func (s *Service) DeleteRecordTags(ctx context.Context, h command.WalletHandle, typ, id, tagNamesJSON string) error {
	if err := checkType(typ); err != nil {
		return err
	}
	var names []string
	if err := json.Unmarshal([]byte(tagNamesJSON), &names); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidStructure, "tag names must be a JSON array of strings")
	}
	return s.wallet.DeleteRecordTags(ctx, h, typ, id, names)
}

func (s *Service) DeleteRecord(ctx context.Context, h command.WalletHandle, typ, id string) error {
	if err := checkType(typ); err != nil {
		return err
	}
	return s.wallet.DeleteRecord(ctx, h, typ, id)
}

// GetRecord returns the record as JSON with the projections selected by
// optionsJSON.
func (s *Service) GetRecord(ctx context.Context, h command.WalletHandle, typ, id, optionsJSON string) (string, error) {
	if err := checkType(typ); err != nil {
		return "", err
	}
	opts, err := ParseRecordOptions(optionsJSON)
	if err != nil {
		return "", err
	}
	rec, err := s.wallet.GetRecord(ctx, h, typ, id, opts)
	if err != nil {
		return "", err
	}
	return marshal(rec)
}

// OpenSearch starts a search over typ.
func (s *Service) OpenSearch(ctx context.Context, h command.WalletHandle, typ, queryJSON, optionsJSON string) (command.SearchHandle, error) {
	if err := checkType(typ); err != nil {
		return command.SearchHandle(command.InvalidHandle), err
	}
	opts, err := ParseSearchOptions(optionsJSON)
	if err != nil {
		return command.SearchHandle(command.InvalidHandle), err
	}
	return s.wallet.OpenSearch(ctx, h, typ, queryJSON, opts)
}

// FetchNext returns up to count records as a page JSON.
func (s *Service) FetchNext(ctx context.Context, h command.WalletHandle, sh command.SearchHandle, count int) (string, error) {
	if err := validation.CheckSliceCount("count", count, validation.MaxFetchCount); err != nil {
		return "", err
	}
	page, err := s.wallet.FetchNext(ctx, h, sh, count)
	if err != nil {
		return "", err
	}
	return marshal(page)
}

// CloseSearch releases sh.
func (s *Service) CloseSearch(sh command.SearchHandle) error {
	return s.wallet.CloseSearch(sh)
}

func marshal(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode result")
	}
	return string(raw), nil
}
