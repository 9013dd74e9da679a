package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
)

// Service holds the registered payment methods and the payment addresses
// each wallet owns.
type Service struct {
	store  wallet.Store
	logger *slog.Logger

	mu      sync.Mutex
	methods atomic.Pointer[map[string]Method]
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a payments service with no methods registered.
func NewService(store wallet.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	empty := map[string]Method{}
	s.methods.Store(&empty)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterMethod adds a payment method. A name can be registered once.
func (s *Service) RegisterMethod(name string, m Method) error {
	if name == "" || m == nil {
		return dErrors.New(dErrors.CodeInvalidStructure, "payment method name and callbacks are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := *s.methods.Load()
	if _, ok := cur[name]; ok {
		return dErrors.Newf(dErrors.CodeInvalidState, "payment method %q is already registered", name)
	}
	next := maps.Clone(cur)
	next[name] = m
	s.methods.Store(&next)
	s.logger.Info("payment method registered", "method", name)
	return nil
}

// Methods lists the registered method names.
func (s *Service) Methods() []string {
	return slices.Sorted(maps.Keys(*s.methods.Load()))
}

func (s *Service) method(name string) (Method, error) {
	m, ok := (*s.methods.Load())[name]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodePaymentUnknownMethod, "unknown payment method %q", name)
	}
	return m, nil
}

// CreateAddress asks method for a new address. StoreAddress records it.
func (s *Service) CreateAddress(ctx context.Context, h command.WalletHandle, method, config string) (string, error) {
	m, err := s.method(method)
	if err != nil {
		return "", err
	}
	return m.CreateAddress(ctx, h, config)
}

// StoreAddress records address as owned by the wallet.
func (s *Service) StoreAddress(ctx context.Context, h command.WalletHandle, address string) (string, error) {
	if _, err := MethodFromAddress(address); err != nil {
		return "", dErrors.Newf(dErrors.CodeInvalidState, "payment method returned a malformed address %q", address)
	}
	if err := s.store.AddRecord(ctx, h, wallet.TypePaymentAddress, address, address, nil); err != nil {
		return "", err
	}
	s.logger.DebugContext(ctx, "payment address stored", "address", address)
	return address, nil
}

// ListAddresses returns the JSON list of addresses the wallet owns.
func (s *Service) ListAddresses(ctx context.Context, h command.WalletHandle) (string, error) {
	records, err := wallet.SearchAll(ctx, s.store, h, wallet.TypePaymentAddress, "{}", wallet.DefaultSearchOptions())
	if err != nil {
		return "", err
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	slices.Sort(out)
	raw, err := json.Marshal(out)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode payment addresses")
	}
	return string(raw), nil
}

// AddRequestFees attaches fees paid from inputs to request. It returns the
// request and the method used.
func (s *Service) AddRequestFees(ctx context.Context, h command.WalletHandle, submitterDID, request, inputs, outputs, extra string) (string, string, error) {
	if !json.Valid([]byte(request)) {
		return "", "", dErrors.New(dErrors.CodeInvalidStructure, "request is not JSON")
	}
	name, err := MethodFromInputsOutputs(inputs, outputs)
	if err != nil {
		return "", "", err
	}
	m, err := s.method(name)
	if err != nil {
		return "", "", err
	}
	out, err := m.AddRequestFees(ctx, h, submitterDID, request, inputs, outputs, extra)
	return out, name, err
}

// ParseResponseWithFees extracts the receipts of a request sent with fees.
func (s *Service) ParseResponseWithFees(ctx context.Context, method, response string) (string, error) {
	m, err := s.method(method)
	if err != nil {
		return "", err
	}
	return m.ParseResponseWithFees(ctx, response)
}

// BuildGetPaymentSourcesRequest builds a request listing the sources of
// address, starting at from when given.
func (s *Service) BuildGetPaymentSourcesRequest(ctx context.Context, h command.WalletHandle, submitterDID, address string, from *int64) (string, string, error) {
	name, err := MethodFromAddress(address)
	if err != nil {
		return "", "", err
	}
	m, err := s.method(name)
	if err != nil {
		return "", "", err
	}
	out, err := m.BuildGetPaymentSourcesRequest(ctx, h, submitterDID, address, from)
	return out, name, err
}

// ParseGetPaymentSourcesResponse returns the sources and the position of
// the next page, -1 when there is none.
func (s *Service) ParseGetPaymentSourcesResponse(ctx context.Context, method, response string) (string, int64, error) {
	m, err := s.method(method)
	if err != nil {
		return "", 0, err
	}
	return m.ParseGetPaymentSourcesResponse(ctx, response)
}

// BuildPaymentRequest builds a transfer from inputs to outputs.
func (s *Service) BuildPaymentRequest(ctx context.Context, h command.WalletHandle, submitterDID, inputs, outputs, extra string) (string, string, error) {
	name, err := MethodFromInputsOutputs(inputs, outputs)
	if err != nil {
		return "", "", err
	}
	m, err := s.method(name)
	if err != nil {
		return "", "", err
	}
	out, err := m.BuildPaymentRequest(ctx, h, submitterDID, inputs, outputs, extra)
	return out, name, err
}

// ParsePaymentResponse extracts the receipts of a payment.
func (s *Service) ParsePaymentResponse(ctx context.Context, method, response string) (string, error) {
	m, err := s.method(method)
	if err != nil {
		return "", err
	}
	return m.ParsePaymentResponse(ctx, response)
}

// BuildMintRequest builds a request creating tokens at outputs.
func (s *Service) BuildMintRequest(ctx context.Context, h command.WalletHandle, submitterDID, outputs, extra string) (string, string, error) {
	name, err := MethodFromInputsOutputs("", outputs)
	if err != nil {
		return "", "", err
	}
	m, err := s.method(name)
	if err != nil {
		return "", "", err
	}
	out, err := m.BuildMintRequest(ctx, h, submitterDID, outputs, extra)
	return out, name, err
}

// BuildSetTxnFeesRequest builds a request setting the fee of each
// transaction type. fees maps a fee alias to an amount.
func (s *Service) BuildSetTxnFeesRequest(ctx context.Context, h command.WalletHandle, submitterDID, method, fees string) (string, error) {
	var parsed map[string]uint64
	if err := json.Unmarshal([]byte(fees), &parsed); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "fees must map aliases to amounts")
	}
	m, err := s.method(method)
	if err != nil {
		return "", err
	}
	return m.BuildSetTxnFeesRequest(ctx, h, submitterDID, fees)
}

// BuildGetTxnFeesRequest builds a request for the current fees.
func (s *Service) BuildGetTxnFeesRequest(ctx context.Context, h command.WalletHandle, submitterDID, method string) (string, error) {
	m, err := s.method(method)
	if err != nil {
		return "", err
	}
	return m.BuildGetTxnFeesRequest(ctx, h, submitterDID)
}

// ParseGetTxnFeesResponse returns the fee aliases and amounts.
func (s *Service) ParseGetTxnFeesResponse(ctx context.Context, method, response string) (string, error) {
	m, err := s.method(method)
	if err != nil {
		return "", err
	}
	return m.ParseGetTxnFeesResponse(ctx, response)
}

// BuildVerifyPaymentRequest builds a request for the details of receipt.
func (s *Service) BuildVerifyPaymentRequest(ctx context.Context, h command.WalletHandle, submitterDID, receipt string) (string, string, error) {
	name, err := MethodFromAddress(receipt)
	if err != nil {
		return "", "", err
	}
	m, err := s.method(name)
	if err != nil {
		return "", "", err
	}
	out, err := m.BuildVerifyPaymentRequest(ctx, h, submitterDID, receipt)
	return out, name, err
}

// ParseVerifyPaymentResponse returns the receipt details.
func (s *Service) ParseVerifyPaymentResponse(ctx context.Context, method, response string) (string, error) {
	m, err := s.method(method)
	if err != nil {
		return "", err
	}
	return m.ParseVerifyPaymentResponse(ctx, response)
}

// SignWithAddress signs message with the key behind address.
func (s *Service) SignWithAddress(ctx context.Context, h command.WalletHandle, address string, message []byte) ([]byte, error) {
	name, err := MethodFromAddress(address)
	if err != nil {
		return nil, err
	}
	m, err := s.method(name)
	if err != nil {
		return nil, err
	}
	return m.SignWithAddress(ctx, h, address, message)
}

// VerifyWithAddress checks signature over message against address.
func (s *Service) VerifyWithAddress(ctx context.Context, address string, message, signature []byte) (bool, error) {
	name, err := MethodFromAddress(address)
	if err != nil {
		return false, err
	}
	m, err := s.method(name)
	if err != nil {
		return false, err
	}
	return m.VerifyWithAddress(ctx, address, message, signature)
}
