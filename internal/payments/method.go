// Package payments routes payment operations to registered payment
// methods. A method is chosen from the "pay:<method>:" prefix of the
// addresses, sources and receipts an operation is given.
package payments

import (
	"context"

	"indy/internal/command"
	dErrors "indy/pkg/domain-errors"
)

//go:generate mockgen -source=method.go -destination=mocks/mocks.go -package=mocks Method

// Method is the callback set of one payment method. Inputs and outputs are
// passed through as the JSON the application gave.
type Method interface {
	CreateAddress(ctx context.Context, h command.WalletHandle, config string) (string, error)
	AddRequestFees(ctx context.Context, h command.WalletHandle, submitterDID, request, inputs, outputs, extra string) (string, error)
	ParseResponseWithFees(ctx context.Context, response string) (string, error)
	BuildGetPaymentSourcesRequest(ctx context.Context, h command.WalletHandle, submitterDID, address string, from *int64) (string, error)
	ParseGetPaymentSourcesResponse(ctx context.Context, response string) (sources string, next int64, err error)
	BuildPaymentRequest(ctx context.Context, h command.WalletHandle, submitterDID, inputs, outputs, extra string) (string, error)
	ParsePaymentResponse(ctx context.Context, response string) (string, error)
	BuildMintRequest(ctx context.Context, h command.WalletHandle, submitterDID, outputs, extra string) (string, error)
	BuildSetTxnFeesRequest(ctx context.Context, h command.WalletHandle, submitterDID, fees string) (string, error)
	BuildGetTxnFeesRequest(ctx context.Context, h command.WalletHandle, submitterDID string) (string, error)
	ParseGetTxnFeesResponse(ctx context.Context, response string) (string, error)
	BuildVerifyPaymentRequest(ctx context.Context, h command.WalletHandle, submitterDID, receipt string) (string, error)
	ParseVerifyPaymentResponse(ctx context.Context, response string) (string, error)
	SignWithAddress(ctx context.Context, h command.WalletHandle, address string, message []byte) ([]byte, error)
	VerifyWithAddress(ctx context.Context, address string, message, signature []byte) (bool, error)
}

// Unimplemented answers every operation with PaymentOperationNotSupported.
// Methods embed it and override what they support.
type Unimplemented struct{}

func notSupported(op string) error {
	return dErrors.Newf(dErrors.CodePaymentOperationNotSupported, "payment method does not support %s", op)
}

func (Unimplemented) CreateAddress(context.Context, command.WalletHandle, string) (string, error) {
	return "", notSupported("create address")
}

func (Unimplemented) AddRequestFees(context.Context, command.WalletHandle, string, string, string, string, string) (string, error) {
	return "", notSupported("request fees")
}

func (Unimplemented) ParseResponseWithFees(context.Context, string) (string, error) {
	return "", notSupported("request fees")
}

func (Unimplemented) BuildGetPaymentSourcesRequest(context.Context, command.WalletHandle, string, string, *int64) (string, error) {
	return "", notSupported("payment sources")
}

func (Unimplemented) ParseGetPaymentSourcesResponse(context.Context, string) (string, int64, error) {
	return "", 0, notSupported("payment sources")
}

func (Unimplemented) BuildPaymentRequest(context.Context, command.WalletHandle, string, string, string, string) (string, error) {
	return "", notSupported("payments")
}

func (Unimplemented) ParsePaymentResponse(context.Context, string) (string, error) {
	return "", notSupported("payments")
}

func (Unimplemented) BuildMintRequest(context.Context, command.WalletHandle, string, string, string) (string, error) {
	return "", notSupported("minting")
}

func (Unimplemented) BuildSetTxnFeesRequest(context.Context, command.WalletHandle, string, string) (string, error) {
	return "", notSupported("setting fees")
}

func (Unimplemented) BuildGetTxnFeesRequest(context.Context, command.WalletHandle, string) (string, error) {
	return "", notSupported("fees")
}

func (Unimplemented) ParseGetTxnFeesResponse(context.Context, string) (string, error) {
	return "", notSupported("fees")
}

func (Unimplemented) BuildVerifyPaymentRequest(context.Context, command.WalletHandle, string, string) (string, error) {
	return "", notSupported("payment verification")
}

func (Unimplemented) ParseVerifyPaymentResponse(context.Context, string) (string, error) {
	return "", notSupported("payment verification")
}

func (Unimplemented) SignWithAddress(context.Context, command.WalletHandle, string, []byte) ([]byte, error) {
	return nil, notSupported("signing")
}

func (Unimplemented) VerifyWithAddress(context.Context, string, []byte, []byte) (bool, error) {
	return false, notSupported("signing")
}
