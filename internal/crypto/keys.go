package crypto

import (
	"context"
	"encoding/json"
	"log/slog"

	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
)

// Service binds the key operations to keys held in a wallet.
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

// NewService creates a crypto service over store.
func NewService(store wallet.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateKey generates a key and stores it under its verkey.
func (s *Service) CreateKey(ctx context.Context, h command.WalletHandle, info KeyInfo) (string, error) {
	key, err := CreateKey(info)
	if err != nil {
		return "", err
	}
	if err := s.StoreKey(ctx, h, key); err != nil {
		return "", err
	}
	return key.Verkey, nil
}

// StoreKey persists a key pair.
func (s *Service) StoreKey(ctx context.Context, h command.WalletHandle, key *Key) error {
	return wallet.AddObject(ctx, s.store, h, wallet.TypeKey, key.Verkey, key, nil)
}

// Key loads the key pair for verkey.
func (s *Service) Key(ctx context.Context, h command.WalletHandle, verkey string) (*Key, error) {
	vk, err := SplitVerkey(verkey)
	if err != nil {
		return nil, err
	}
	key, err := wallet.GetObject[Key](ctx, s.store, h, wallet.TypeKey, vk)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// SetKeyMetadata replaces the metadata attached to verkey.
func (s *Service) SetKeyMetadata(ctx context.Context, h command.WalletHandle, verkey, metadata string) error {
	if err := ValidateVerkey(verkey); err != nil {
		return err
	}
	return wallet.Upsert(ctx, s.store, h, wallet.TypeKeyMetadata, verkey, metadata)
}

// GetKeyMetadata returns the metadata attached to verkey.
func (s *Service) GetKeyMetadata(ctx context.Context, h command.WalletHandle, verkey string) (string, error) {
	rec, err := s.store.GetRecord(ctx, h, wallet.TypeKeyMetadata, verkey, wallet.DefaultRecordOptions())
	if err != nil {
		return "", err
	}
	return rec.Value, nil
}

// Sign signs msg with the wallet key signerVk.
func (s *Service) Sign(ctx context.Context, h command.WalletHandle, signerVk string, msg []byte) ([]byte, error) {
	key, err := s.Key(ctx, h, signerVk)
	if err != nil {
		return nil, err
	}
	return Sign(key, msg)
}

// AuthCrypt encrypts from the wallet key senderVk to recipientVk.
func (s *Service) AuthCrypt(ctx context.Context, h command.WalletHandle, senderVk, recipientVk string, msg []byte) ([]byte, error) {
	key, err := s.Key(ctx, h, senderVk)
	if err != nil {
		return nil, err
	}
	return AuthCrypt(key, recipientVk, msg)
}

// AuthDecrypt decrypts with the wallet key recipientVk.
func (s *Service) AuthDecrypt(ctx context.Context, h command.WalletHandle, recipientVk string, data []byte) (string, []byte, error) {
	key, err := s.Key(ctx, h, recipientVk)
	if err != nil {
		return "", nil, err
	}
	return AuthDecrypt(key, data)
}

// AnonDecrypt opens a sealed message with the wallet key recipientVk.
func (s *Service) AnonDecrypt(ctx context.Context, h command.WalletHandle, recipientVk string, data []byte) ([]byte, error) {
	key, err := s.Key(ctx, h, recipientVk)
	if err != nil {
		return nil, err
	}
	return AnonDecrypt(key, data)
}

// PackMessage packs msg for receiversJSON, a JSON array of verkeys. An
// empty senderVk selects anoncrypt.
func (s *Service) PackMessage(ctx context.Context, h command.WalletHandle, msg []byte, receiversJSON, senderVk string) ([]byte, error) {
	var receivers []string
	if err := json.Unmarshal([]byte(receiversJSON), &receivers); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidStructure, "receivers must be a json array of verkeys")
	}
	for _, r := range receivers {
		if err := ValidateVerkey(r); err != nil {
			return nil, err
		}
	}
	var sender *Key
	if senderVk != "" {
		k, err := s.Key(ctx, h, senderVk)
		if err != nil {
			return nil, err
		}
		sender = k
	}
	return Pack(msg, receivers, sender)
}

// UnpackMessage decrypts a packed message with a key from the wallet and
// returns the UnpackedMessage JSON.
func (s *Service) UnpackMessage(ctx context.Context, h command.WalletHandle, data []byte) ([]byte, error) {
	out, err := Unpack(data, func(verkey string) (*Key, error) {
		return s.Key(ctx, h, verkey)
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}
