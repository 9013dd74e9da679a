package payments

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"indy/internal/command"
	"indy/internal/crypto"
	"indy/internal/ledger"
	dErrors "indy/pkg/domain-errors"
)

// NullMethodName is the name the reference method registers under.
const NullMethodName = "null"

// Keys creates and uses wallet-held signing keys.
type Keys interface {
	CreateKey(ctx context.Context, h command.WalletHandle, info crypto.KeyInfo) (string, error)
	Sign(ctx context.Context, h command.WalletHandle, signerVk string, msg []byte) ([]byte, error)
}

// NullMethod is a reference payment method with no token ledger behind
// it. Addresses are "pay:null:<verkey>" over keys held in the wallet;
// requests carry their arguments under NULL_* operations and parsers read
// the fields of the reply result back.
type NullMethod struct {
	keys Keys
	now  func() time.Time
}

// NewNullMethod creates the reference method over keys.
func NewNullMethod(keys Keys) *NullMethod {
	return &NullMethod{keys: keys, now: time.Now}
}

var _ Method = (*NullMethod)(nil)

type nullAddressConfig struct {
	Seed string `json:"seed"`
}

func nullAddress(verkey string) string {
	return addressPrefix + ":" + NullMethodName + ":" + verkey
}

func nullVerkey(address string) (string, error) {
	verkey, ok := strings.CutPrefix(address, addressPrefix+":"+NullMethodName+":")
	if !ok {
		return "", dErrors.Newf(dErrors.CodePaymentIncompatibleMethods, "%q is not a null payment address", address)
	}
	if err := crypto.ValidateVerkey(verkey); err != nil {
		return "", err
	}
	return verkey, nil
}

func (m *NullMethod) CreateAddress(ctx context.Context, h command.WalletHandle, config string) (string, error) {
	var cfg nullAddressConfig
	if config != "" && config != "null" {
		if err := json.Unmarshal([]byte(config), &cfg); err != nil {
			return "", dErrors.New(dErrors.CodeInvalidStructure, "malformed address config")
		}
	}
	verkey, err := m.keys.CreateKey(ctx, h, crypto.KeyInfo{Seed: cfg.Seed})
	if err != nil {
		return "", err
	}
	return nullAddress(verkey), nil
}

func (m *NullMethod) request(submitterDID, opType string, fields map[string]any) (string, error) {
	op := map[string]any{"type": opType}
	for k, v := range fields {
		op[k] = v
	}
	req := map[string]any{
		"reqId":     m.now().UnixNano(),
		"operation": op,
	}
	if submitterDID != "" {
		req["identifier"] = submitterDID
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode payment request")
	}
	return string(raw), nil
}

func rawOrNull(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}

// resultField returns field of the reply result, or def when it is absent.
func resultField(response, field, def string) (string, error) {
	result, err := ledger.ReplyResult(response)
	if err != nil {
		return "", err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(result, &fields); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "reply result is not an object")
	}
	v, ok := fields[field]
	if !ok || string(v) == "null" {
		return def, nil
	}
	return string(v), nil
}

func (m *NullMethod) AddRequestFees(_ context.Context, _ command.WalletHandle, _, request, inputs, outputs, extra string) (string, error) {
	var req map[string]any
	if err := json.Unmarshal([]byte(request), &req); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidStructure, "request is not a JSON object")
	}
	req["fees"] = []json.RawMessage{rawOrNull(inputs), rawOrNull(outputs), rawOrNull(extra)}
	raw, err := json.Marshal(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode request")
	}
	return string(raw), nil
}

func (m *NullMethod) ParseResponseWithFees(_ context.Context, response string) (string, error) {
	return resultField(response, "receipts", "[]")
}

func (m *NullMethod) BuildGetPaymentSourcesRequest(_ context.Context, _ command.WalletHandle, submitterDID, address string, from *int64) (string, error) {
	if _, err := nullVerkey(address); err != nil {
		return "", err
	}
	fields := map[string]any{"address": address}
	if from != nil {
		fields["from"] = *from
	}
	return m.request(submitterDID, "NULL_GET_SOURCES", fields)
}

func (m *NullMethod) ParseGetPaymentSourcesResponse(_ context.Context, response string) (string, int64, error) {
	sources, err := resultField(response, "sources", "[]")
	if err != nil {
		return "", 0, err
	}
	next, err := resultField(response, "next", "-1")
	if err != nil {
		return "", 0, err
	}
	var n int64
	if err := json.Unmarshal([]byte(next), &n); err != nil {
		return "", 0, dErrors.New(dErrors.CodeInvalidStructure, "next must be a number")
	}
	return sources, n, nil
}

func (m *NullMethod) BuildPaymentRequest(_ context.Context, _ command.WalletHandle, submitterDID, inputs, outputs, extra string) (string, error) {
	return m.request(submitterDID, "NULL_PAYMENT", map[string]any{
		"inputs":  rawOrNull(inputs),
		"outputs": rawOrNull(outputs),
		"extra":   rawOrNull(extra),
	})
}

func (m *NullMethod) ParsePaymentResponse(_ context.Context, response string) (string, error) {
	return resultField(response, "receipts", "[]")
}

func (m *NullMethod) BuildMintRequest(_ context.Context, _ command.WalletHandle, submitterDID, outputs, extra string) (string, error) {
	return m.request(submitterDID, "NULL_MINT", map[string]any{
		"outputs": rawOrNull(outputs),
		"extra":   rawOrNull(extra),
	})
}

func (m *NullMethod) BuildSetTxnFeesRequest(_ context.Context, _ command.WalletHandle, submitterDID, fees string) (string, error) {
	return m.request(submitterDID, "NULL_SET_FEES", map[string]any{"fees": rawOrNull(fees)})
}

func (m *NullMethod) BuildGetTxnFeesRequest(_ context.Context, _ command.WalletHandle, submitterDID string) (string, error) {
	return m.request(submitterDID, "NULL_GET_FEES", nil)
}

func (m *NullMethod) ParseGetTxnFeesResponse(_ context.Context, response string) (string, error) {
	return resultField(response, "fees", "{}")
}

func (m *NullMethod) BuildVerifyPaymentRequest(_ context.Context, _ command.WalletHandle, submitterDID, receipt string) (string, error) {
	return m.request(submitterDID, "NULL_VERIFY", map[string]any{"receipt": receipt})
}

func (m *NullMethod) ParseVerifyPaymentResponse(_ context.Context, response string) (string, error) {
	info, err := resultField(response, "receipt_info", "")
	if err != nil {
		return "", err
	}
	if info == "" {
		return "", dErrors.New(dErrors.CodePaymentSourceDoesNotExist, "receipt not found")
	}
	return info, nil
}

func (m *NullMethod) SignWithAddress(ctx context.Context, h command.WalletHandle, address string, message []byte) ([]byte, error) {
	verkey, err := nullVerkey(address)
	if err != nil {
		return nil, err
	}
	return m.keys.Sign(ctx, h, verkey, message)
}

func (m *NullMethod) VerifyWithAddress(_ context.Context, address string, message, signature []byte) (bool, error) {
	verkey, err := nullVerkey(address)
	if err != nil {
		return false, err
	}
	return crypto.Verify(verkey, message, signature)
}
