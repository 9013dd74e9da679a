package did

import (
	"context"
	"log/slog"

	"indy/internal/command"
	"indy/internal/crypto"
	"indy/internal/pairwise"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/validation"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Ledger

// Ledger resolves DIDs the wallet does not know about.
type Ledger interface {
	// GetNym returns the DID and verkey recorded on the ledger for did.
	GetNym(ctx context.Context, pool command.PoolHandle, h command.WalletHandle, did string) (*Did, error)
	// GetEndpoint returns the "endpoint" attribute of did.
	GetEndpoint(ctx context.Context, pool command.PoolHandle, h command.WalletHandle, did string) (*Endpoint, error)
}

// Service implements the DID commands on top of a wallet.
type Service struct {
	store  wallet.Store
	keys   *crypto.Service
	ledger Ledger
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

// WithLedger enables the ledger fallback of KeyForDid and GetEndpointForDid.
func WithLedger(l Ledger) Option {
	return func(s *Service) {
		s.ledger = l
	}
}

// NewService creates a DID service over store.
func NewService(store wallet.Store, keys *crypto.Service, opts ...Option) *Service {
	s := &Service{store: store, keys: keys, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAndStoreMyDid creates a key and the DID bound to it. The DID
// defaults to the first 16 bytes of the verkey, or the whole verkey when
// cid is set.
func (s *Service) CreateAndStoreMyDid(ctx context.Context, h command.WalletHandle, infoJSON string) (string, string, error) {
	var info MyDidInfo
	if err := validation.DecodeJSON(infoJSON, &info); err != nil {
		return "", "", err
	}
	key, err := crypto.CreateKey(crypto.KeyInfo{Seed: info.Seed, CryptoType: info.CryptoType})
	if err != nil {
		return "", "", err
	}
	id, err := deriveDid(info, key.Verkey)
	if err != nil {
		return "", "", err
	}

	exists, err := wallet.Exists(ctx, s.store, h, wallet.TypeDid, id)
	if err != nil {
		return "", "", err
	}
	if exists {
		return "", "", dErrors.Newf(dErrors.CodeDidAlreadyExists, "did %s already exists", id)
	}
	if err := s.storeKeyOnce(ctx, h, key); err != nil {
		return "", "", err
	}
	if err := wallet.AddObject(ctx, s.store, h, wallet.TypeDid, id, Did{Did: id, Verkey: key.Verkey}, nil); err != nil {
		return "", "", err
	}
	s.logger.DebugContext(ctx, "did created", "did", id)
	return id, key.Verkey, nil
}

func deriveDid(info MyDidInfo, verkey string) (string, error) {
	raw, err := crypto.DecodeVerkey(verkey)
	if err != nil {
		return "", err
	}
	var id string
	switch {
	case info.Did != "":
		if err := Validate(info.Did); err != nil {
			return "", err
		}
		id = info.Did
	case info.Cid:
		id = verkey
	default:
		id = encode(raw[:16])
	}
	if info.MethodName != "" {
		return Qualify(id, info.MethodName)
	}
	return id, nil
}

// storeKeyOnce tolerates a key that is already in the wallet, which is
// the case when the same seed backs several DIDs.
func (s *Service) storeKeyOnce(ctx context.Context, h command.WalletHandle, key *crypto.Key) error {
	err := s.keys.StoreKey(ctx, h, key)
	if dErrors.HasCode(err, dErrors.CodeWalletItemAlreadyExists) {
		return nil
	}
	return err
}

// ReplaceKeysStart creates a new key for did and keeps it as pending until
// ReplaceKeysApply.
func (s *Service) ReplaceKeysStart(ctx context.Context, h command.WalletHandle, did, keyInfoJSON string) (string, error) {
	if err := Validate(did); err != nil {
		return "", err
	}
	var info crypto.KeyInfo
	if err := validation.DecodeJSON(keyInfoJSON, &info); err != nil {
		return "", err
	}
	if _, err := s.myDid(ctx, h, did); err != nil {
		return "", err
	}
	key, err := crypto.CreateKey(info)
	if err != nil {
		return "", err
	}
	if err := s.storeKeyOnce(ctx, h, key); err != nil {
		return "", err
	}
	if err := upsertObject(ctx, s.store, h, wallet.TypeTemporaryDid, did, Did{Did: did, Verkey: key.Verkey}); err != nil {
		return "", err
	}
	return key.Verkey, nil
}

// ReplaceKeysApply makes the pending key of did current.
func (s *Service) ReplaceKeysApply(ctx context.Context, h command.WalletHandle, did string) error {
	if err := Validate(did); err != nil {
		return err
	}
	if _, err := s.myDid(ctx, h, did); err != nil {
		return err
	}
	tmp, err := wallet.GetObject[Did](ctx, s.store, h, wallet.TypeTemporaryDid, did)
	if err != nil {
		return err
	}
	if err := wallet.UpdateObject(ctx, s.store, h, wallet.TypeDid, did, tmp); err != nil {
		return err
	}
	return s.store.DeleteRecord(ctx, h, wallet.TypeTemporaryDid, did)
}

// StoreTheirDid records a peer DID, replacing an earlier entry.
func (s *Service) StoreTheirDid(ctx context.Context, h command.WalletHandle, identityJSON string) error {
	var info TheirDidInfo
	if err := validation.DecodeJSON(identityJSON, &info); err != nil {
		return err
	}
	their, err := theirDid(info)
	if err != nil {
		return err
	}
	return upsertObject(ctx, s.store, h, wallet.TypeTheirDid, their.Did, their)
}

func theirDid(info TheirDidInfo) (Did, error) {
	if err := Validate(info.Did); err != nil {
		return Did{}, err
	}
	if err := crypto.CheckCryptoType(info.CryptoType); err != nil {
		return Did{}, err
	}
	verkey := info.Verkey
	if verkey == "" {
		verkey = Unqualify(info.Did)
	}
	verkey, err := crypto.FullVerkey(info.Did, verkey)
	if err != nil {
		return Did{}, err
	}
	if _, err := crypto.DecodeVerkey(verkey); err != nil {
		return Did{}, err
	}
	if info.CryptoType != "" && info.CryptoType != crypto.TypeEd25519 {
		verkey += ":" + info.CryptoType
	}
	return Did{Did: info.Did, Verkey: verkey}, nil
}

// GetMyDidWithMeta returns did with its key, pending key and metadata.
func (s *Service) GetMyDidWithMeta(ctx context.Context, h command.WalletHandle, did string) (*WithMeta, error) {
	if err := Validate(did); err != nil {
		return nil, err
	}
	my, err := s.myDid(ctx, h, did)
	if err != nil {
		return nil, err
	}
	return s.withMeta(ctx, h, my)
}

// ListMyDidsWithMeta lists every DID owned by the wallet.
func (s *Service) ListMyDidsWithMeta(ctx context.Context, h command.WalletHandle) ([]WithMeta, error) {
	recs, err := wallet.SearchAll(ctx, s.store, h, wallet.TypeDid, "{}", wallet.DefaultSearchOptions())
	if err != nil {
		return nil, err
	}
	out := make([]WithMeta, 0, len(recs))
	for _, rec := range recs {
		var my Did
		if err := decode(rec.Value, &my); err != nil {
			return nil, err
		}
		m, err := s.withMeta(ctx, h, my)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *Service) withMeta(ctx context.Context, h command.WalletHandle, my Did) (*WithMeta, error) {
	out := &WithMeta{Did: my.Did, Verkey: my.Verkey}
	meta, err := optional(s.store.GetRecord(ctx, h, wallet.TypeDidMetadata, my.Did, wallet.DefaultRecordOptions()))
	if err != nil {
		return nil, err
	}
	if meta != nil {
		out.Metadata = &meta.Value
	}
	tmp, err := optional(wallet.GetObject[Did](ctx, s.store, h, wallet.TypeTemporaryDid, my.Did))
	if err != nil {
		return nil, err
	}
	if tmp.Verkey != "" {
		out.TempVerkey = &tmp.Verkey
	}
	return out, nil
}

// KeyForLocalDid resolves did against the wallet only: own DIDs first,
// then peers.
func (s *Service) KeyForLocalDid(ctx context.Context, h command.WalletHandle, did string) (string, error) {
	if err := Validate(did); err != nil {
		return "", err
	}
	my, err := s.myDid(ctx, h, did)
	if err == nil {
		return my.Verkey, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) {
		return "", err
	}
	their, err := wallet.GetObject[Did](ctx, s.store, h, wallet.TypeTheirDid, did)
	if err != nil {
		return "", err
	}
	return their.Verkey, nil
}

// KeyForDid resolves did locally and falls back to a GET_NYM through pool.
// A ledger answer is stored as a peer DID.
func (s *Service) KeyForDid(ctx context.Context, pool command.PoolHandle, h command.WalletHandle, did string) (string, error) {
	vk, err := s.KeyForLocalDid(ctx, h, did)
	if !dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) || s.ledger == nil {
		return vk, err
	}
	nym, err := s.ledger.GetNym(ctx, pool, h, did)
	if err != nil {
		return "", err
	}
	return s.GetNymAck(ctx, h, nym)
}

// GetNymAck stores the result of a ledger GET_NYM and returns the full
// verkey.
func (s *Service) GetNymAck(ctx context.Context, h command.WalletHandle, nym *Did) (string, error) {
	their, err := theirDid(TheirDidInfo{Did: nym.Did, Verkey: nym.Verkey})
	if err != nil {
		return "", err
	}
	if err := upsertObject(ctx, s.store, h, wallet.TypeTheirDid, their.Did, their); err != nil {
		return "", err
	}
	return their.Verkey, nil
}

// SetEndpointForDid records where did can be reached.
func (s *Service) SetEndpointForDid(ctx context.Context, h command.WalletHandle, did, address, transportKey string) error {
	if err := Validate(did); err != nil {
		return err
	}
	if err := crypto.ValidateVerkey(transportKey); err != nil {
		return err
	}
	return upsertObject(ctx, s.store, h, wallet.TypeEndpoint, did, Endpoint{Address: address, Verkey: transportKey})
}

// GetEndpointForDid returns the stored endpoint of did, falling back to the
// ledger "endpoint" attribute.
func (s *Service) GetEndpointForDid(ctx context.Context, h command.WalletHandle, pool command.PoolHandle, did string) (*Endpoint, error) {
	if err := Validate(did); err != nil {
		return nil, err
	}
	ep, err := wallet.GetObject[Endpoint](ctx, s.store, h, wallet.TypeEndpoint, did)
	if err == nil {
		return &ep, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) || s.ledger == nil {
		return nil, err
	}
	fetched, err := s.ledger.GetEndpoint(ctx, pool, h, did)
	if err != nil {
		return nil, err
	}
	if err := s.GetAttribAck(ctx, h, did, fetched); err != nil {
		return nil, err
	}
	return fetched, nil
}

// GetAttribAck stores an endpoint read from the ledger.
func (s *Service) GetAttribAck(ctx context.Context, h command.WalletHandle, did string, ep *Endpoint) error {
	return upsertObject(ctx, s.store, h, wallet.TypeEndpoint, did, *ep)
}

func (s *Service) SetDidMetadata(ctx context.Context, h command.WalletHandle, did, metadata string) error {
	if err := Validate(did); err != nil {
		return err
	}
	return wallet.Upsert(ctx, s.store, h, wallet.TypeDidMetadata, did, metadata)
}

func (s *Service) GetDidMetadata(ctx context.Context, h command.WalletHandle, did string) (string, error) {
	if err := Validate(did); err != nil {
		return "", err
	}
	rec, err := s.store.GetRecord(ctx, h, wallet.TypeDidMetadata, did, wallet.DefaultRecordOptions())
	if err != nil {
		return "", err
	}
	return rec.Value, nil
}

// AbbreviateVerkey shortens verkey when it extends did.
func AbbreviateVerkey(did, verkey string) (string, error) {
	if err := Validate(did); err != nil {
		return "", err
	}
	if err := crypto.ValidateVerkey(verkey); err != nil {
		return "", err
	}
	return crypto.AbbreviateVerkey(Unqualify(did), verkey)
}

// QualifyDid moves did and everything keyed by it to did:<method>:<id>
// and returns the new identifier.
func (s *Service) QualifyDid(ctx context.Context, h command.WalletHandle, did, method string) (string, error) {
	if err := Validate(did); err != nil {
		return "", err
	}
	qualified, err := Qualify(did, method)
	if err != nil {
		return "", err
	}
	my, err := s.myDid(ctx, h, did)
	if err != nil {
		return "", err
	}
	if qualified == did {
		return did, nil
	}

	my.Did = qualified
	if err := wallet.AddObject(ctx, s.store, h, wallet.TypeDid, qualified, my, nil); err != nil {
		if dErrors.HasCode(err, dErrors.CodeWalletItemAlreadyExists) {
			return "", dErrors.Newf(dErrors.CodeDidAlreadyExists, "did %s already exists", qualified)
		}
		return "", err
	}
	if err := s.store.DeleteRecord(ctx, h, wallet.TypeDid, did); err != nil {
		return "", err
	}
	if tmp, err := optional(wallet.GetObject[Did](ctx, s.store, h, wallet.TypeTemporaryDid, did)); err != nil {
		return "", err
	} else if tmp.Verkey != "" {
		tmp.Did = qualified
		if err := s.move(ctx, h, wallet.TypeTemporaryDid, did, qualified, tmp); err != nil {
			return "", err
		}
	}
	for _, typ := range []string{wallet.TypeDidMetadata, wallet.TypeEndpoint} {
		if err := s.moveRaw(ctx, h, typ, did, qualified); err != nil {
			return "", err
		}
	}
	if err := pairwise.RewriteMyDid(ctx, s.store, h, did, qualified); err != nil {
		return "", err
	}
	s.logger.DebugContext(ctx, "did qualified", "did", qualified)
	return qualified, nil
}

func (s *Service) move(ctx context.Context, h command.WalletHandle, typ, from, to string, v Did) error {
	if err := wallet.AddObject(ctx, s.store, h, typ, to, v, nil); err != nil {
		return err
	}
	return s.store.DeleteRecord(ctx, h, typ, from)
}

func (s *Service) moveRaw(ctx context.Context, h command.WalletHandle, typ, from, to string) error {
	rec, err := optional(s.store.GetRecord(ctx, h, typ, from, wallet.FullRecordOptions()))
	if err != nil || rec == nil {
		return err
	}
	if err := s.store.AddRecord(ctx, h, typ, to, rec.Value, rec.Tags); err != nil {
		return err
	}
	return s.store.DeleteRecord(ctx, h, typ, from)
}

func (s *Service) myDid(ctx context.Context, h command.WalletHandle, did string) (Did, error) {
	return wallet.GetObject[Did](ctx, s.store, h, wallet.TypeDid, did)
}
