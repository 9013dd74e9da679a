// Package pairwise links a peer DID to the caller's DID used with that
// peer.
package pairwise

import (
	"context"
	"encoding/json"
	"log/slog"

	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

// Pairwise is stored under the peer DID.
type Pairwise struct {
	MyDid    string  `json:"my_did"`
	TheirDid string  `json:"their_did"`
	Metadata *string `json:"metadata,omitempty"`
}

// Info is what GetPairwise returns.
type Info struct {
	MyDid    string  `json:"my_did"`
	Metadata *string `json:"metadata,omitempty"`
}

const tagMyDid = "my_did"

// Service implements the pairwise commands.
type Service struct {
	store  wallet.Store
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

func NewService(store wallet.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) PairwiseExists(ctx context.Context, h command.WalletHandle, theirDid string) (bool, error) {
	return wallet.Exists(ctx, s.store, h, wallet.TypePairwise, theirDid)
}

// CreatePairwise links theirDid, which must already be stored, to myDid,
// which must be one of the wallet's own DIDs.
func (s *Service) CreatePairwise(ctx context.Context, h command.WalletHandle, theirDid, myDid string, metadata *string) error {
	if !validation.IsDID(theirDid) || !validation.IsDID(myDid) {
		return dErrors.New(dErrors.CodeInvalidStructure, "invalid did")
	}
	for _, check := range []struct{ typ, id string }{
		{wallet.TypeTheirDid, theirDid},
		{wallet.TypeDid, myDid},
	} {
		if _, err := s.store.GetRecord(ctx, h, check.typ, check.id, wallet.RecordOptions{}); err != nil {
			return err
		}
	}
	p := Pairwise{MyDid: myDid, TheirDid: theirDid, Metadata: metadata}
	return wallet.AddObject(ctx, s.store, h, wallet.TypePairwise, theirDid, p, wallet.Tags{tagMyDid: myDid})
}

// ListPairwise returns every link. Each element is itself a JSON document.
func (s *Service) ListPairwise(ctx context.Context, h command.WalletHandle) ([]string, error) {
	recs, err := wallet.SearchAll(ctx, s.store, h, wallet.TypePairwise, "{}", wallet.DefaultSearchOptions())
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Value)
	}
	return out, nil
}

func (s *Service) GetPairwise(ctx context.Context, h command.WalletHandle, theirDid string) (*Info, error) {
	p, err := wallet.GetObject[Pairwise](ctx, s.store, h, wallet.TypePairwise, theirDid)
	if err != nil {
		return nil, err
	}
	return &Info{MyDid: p.MyDid, Metadata: p.Metadata}, nil
}

// SetPairwiseMetadata replaces the metadata; nil clears it.
func (s *Service) SetPairwiseMetadata(ctx context.Context, h command.WalletHandle, theirDid string, metadata *string) error {
	p, err := wallet.GetObject[Pairwise](ctx, s.store, h, wallet.TypePairwise, theirDid)
	if err != nil {
		return err
	}
	p.Metadata = metadata
	return wallet.UpdateObject(ctx, s.store, h, wallet.TypePairwise, theirDid, p)
}

// RewriteMyDid points every link that uses from at to instead.
func RewriteMyDid(ctx context.Context, store wallet.Store, h command.WalletHandle, from, to string) error {
	query, err := json.Marshal(map[string]string{tagMyDid: from})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "encode query")
	}
	recs, err := wallet.SearchAll(ctx, store, h, wallet.TypePairwise, string(query), wallet.DefaultSearchOptions())
	if err != nil {
		return err
	}
	for _, rec := range recs {
		var p Pairwise
		if err := json.Unmarshal([]byte(rec.Value), &p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidState, "decode pairwise")
		}
		p.MyDid = to
		if err := wallet.UpdateObject(ctx, store, h, wallet.TypePairwise, rec.ID, p); err != nil {
			return err
		}
		if err := store.UpdateRecordTags(ctx, h, wallet.TypePairwise, rec.ID, wallet.Tags{tagMyDid: to}); err != nil {
			return err
		}
	}
	return nil
}
