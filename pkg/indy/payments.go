package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/locator"
	"indy/internal/payments"
)

// PaymentMethod is a payment ledger plugin.
type PaymentMethod = payments.Method

// ack forwards a first-phase result unchanged.
func ack[T any](_ context.Context, _ *locator.Locator, v T) (T, error) {
	return v, nil
}

// methodCall runs a payment method callback as idx and hands its result
// over as ackIdx.
func methodCall[T any](idx, ackIdx command.Index, fn func(ctx context.Context, l *locator.Locator) (T, error), out func(T, ErrorCode)) ErrorCode {
	return submitThen(idx, fn, ackIdx, ack[T], out)
}

// RegisterPaymentMethod makes m available under name.
func RegisterPaymentMethod(ch CommandHandle, name string, m PaymentMethod, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, a(2, name)); code != Success {
		return code
	}
	if m == nil {
		return invalidParam(3)
	}
	return submit(command.PaymentsCommandRegisterMethod, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Payments.RegisterMethod(name, m))
	}, none(ch, cb))
}

// CreatePaymentAddress asks method for a new address and records it in the
// wallet.
func CreatePaymentAddress(ch CommandHandle, h WalletHandle, method, configJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, method), j(4, configJSON)); code != Success {
		return code
	}
	return submitThen(command.PaymentsCommandCreateAddress,
		func(ctx context.Context, l *locator.Locator) (string, error) {
			return l.Payments.CreateAddress(ctx, h, method, configJSON)
		},
		command.PaymentsCommandCreateAddressAck,
		func(ctx context.Context, l *locator.Locator, address string) (string, error) {
			return l.Payments.StoreAddress(ctx, h, address)
		},
		str(ch, cb))
}

// ListPaymentAddresses returns the addresses recorded in the wallet.
func ListPaymentAddresses(ch CommandHandle, h WalletHandle, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.PaymentsCommandListAddresses, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Payments.ListAddresses(ctx, h)
	}, str(ch, cb))
}

// AddRequestFees attaches fees paid from inputs to a ledger request. It
// returns the request and the method that handled it.
func AddRequestFees(ch CommandHandle, h WalletHandle, submitterDid, requestJSON, inputsJSON, outputsJSON, extra string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 8, j(4, requestJSON), j(5, inputsJSON), j(6, outputsJSON)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandAddRequestFees, command.PaymentsCommandAddRequestFeesAck,
		func(ctx context.Context, l *locator.Locator) (pair, error) {
			req, m, err := l.Payments.AddRequestFees(ctx, h, submitterDid, requestJSON, inputsJSON, outputsJSON, extra)
			return pair{req, m}, err
		}, two(ch, cb))
}

// ParseResponseWithFees extracts the receipts of a request sent with fees.
func ParseResponseWithFees(ch CommandHandle, method, responseJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, method), j(3, responseJSON)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandParseResponseWithFees, command.PaymentsCommandParseResponseWithFeesAck,
		func(ctx context.Context, l *locator.Locator) (string, error) {
			return l.Payments.ParseResponseWithFees(ctx, method, responseJSON)
		}, str(ch, cb))
}

// BuildGetPaymentSourcesRequest builds a request listing the sources of
// address, starting at from. A negative from starts at the beginning.
func BuildGetPaymentSourcesRequest(ch CommandHandle, h WalletHandle, submitterDid, address string, from int64, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 6, a(4, address)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandBuildGetPaymentSourcesRequest, command.PaymentsCommandBuildGetPaymentSourcesRequestAck,
		func(ctx context.Context, l *locator.Locator) (pair, error) {
			req, m, err := l.Payments.BuildGetPaymentSourcesRequest(ctx, h, submitterDid, address, optionalInt(from))
			return pair{req, m}, err
		}, two(ch, cb))
}

// ParseGetPaymentSourcesResponse returns the sources and the position of
// the next page, -1 when there is none.
func ParseGetPaymentSourcesResponse(ch CommandHandle, method, responseJSON string, cb func(CommandHandle, ErrorCode, string, int64)) ErrorCode {
	if code := check(cb == nil, 4, a(2, method), j(3, responseJSON)); code != Success {
		return code
	}
	type page struct {
		sources string
		next    int64
	}
	return methodCall(command.PaymentsCommandParseGetPaymentSourcesResponse, command.PaymentsCommandParseGetPaymentSourcesResponseAck,
		func(ctx context.Context, l *locator.Locator) (page, error) {
			sources, next, err := l.Payments.ParseGetPaymentSourcesResponse(ctx, method, responseJSON)
			return page{sources, next}, err
		}, func(p page, code ErrorCode) {
			if code != Success {
				p.next = -1
			}
			cb(ch, code, p.sources, p.next)
		})
}

// BuildPaymentRequest builds a transfer from inputs to outputs.
func BuildPaymentRequest(ch CommandHandle, h WalletHandle, submitterDid, inputsJSON, outputsJSON, extra string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 7, j(4, inputsJSON), j(5, outputsJSON)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandBuildPaymentReq, command.PaymentsCommandBuildPaymentReqAck,
		func(ctx context.Context, l *locator.Locator) (pair, error) {
			req, m, err := l.Payments.BuildPaymentRequest(ctx, h, submitterDid, inputsJSON, outputsJSON, extra)
			return pair{req, m}, err
		}, two(ch, cb))
}

// ParsePaymentResponse extracts the receipts of a payment.
func ParsePaymentResponse(ch CommandHandle, method, responseJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, method), j(3, responseJSON)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandParsePaymentResponse, command.PaymentsCommandParsePaymentResponseAck,
		func(ctx context.Context, l *locator.Locator) (string, error) {
			return l.Payments.ParsePaymentResponse(ctx, method, responseJSON)
		}, str(ch, cb))
}

// PreparePaymentExtraWithAcceptanceData records the acceptance of a
// transaction author agreement in a payment's extra.
func PreparePaymentExtraWithAcceptanceData(ch CommandHandle, extraJSON, text, version, digest, mechanism string, acceptedAt uint64, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 8, a(6, mechanism)); code != Success {
		return code
	}
	return submit(command.PaymentsCommandAppendTxnAuthorAgreementAcceptanceToExtra, func(context.Context, *locator.Locator) (string, error) {
		return payments.PreparePaymentExtraWithAcceptanceData(extraJSON, optionalString(text), optionalString(version),
			optionalString(digest), mechanism, acceptedAt)
	}, str(ch, cb))
}

// BuildMintRequest builds a request creating tokens at outputs.
func BuildMintRequest(ch CommandHandle, h WalletHandle, submitterDid, outputsJSON, extra string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 6, j(4, outputsJSON)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandBuildMintReq, command.PaymentsCommandBuildMintReqAck,
		func(ctx context.Context, l *locator.Locator) (pair, error) {
			req, m, err := l.Payments.BuildMintRequest(ctx, h, submitterDid, outputsJSON, extra)
			return pair{req, m}, err
		}, two(ch, cb))
}

// BuildSetTxnFeesRequest builds a request setting the fee of each
// transaction alias in feesJSON.
func BuildSetTxnFeesRequest(ch CommandHandle, h WalletHandle, submitterDid, method, feesJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 6, a(4, method), j(5, feesJSON)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandBuildSetTxnFeesReq, command.PaymentsCommandBuildSetTxnFeesReqAck,
		func(ctx context.Context, l *locator.Locator) (string, error) {
			return l.Payments.BuildSetTxnFeesRequest(ctx, h, submitterDid, method, feesJSON)
		}, str(ch, cb))
}

// BuildGetTxnFeesRequest builds a request for the current fees.
func BuildGetTxnFeesRequest(ch CommandHandle, h WalletHandle, submitterDid, method string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(4, method)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandBuildGetTxnFeesReq, command.PaymentsCommandBuildGetTxnFeesReqAck,
		func(ctx context.Context, l *locator.Locator) (string, error) {
			return l.Payments.BuildGetTxnFeesRequest(ctx, h, submitterDid, method)
		}, str(ch, cb))
}

// ParseGetTxnFeesResponse returns the fee aliases and amounts.
func ParseGetTxnFeesResponse(ch CommandHandle, method, responseJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, method), j(3, responseJSON)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandParseGetTxnFeesResponse, command.PaymentsCommandParseGetTxnFeesResponseAck,
		func(ctx context.Context, l *locator.Locator) (string, error) {
			return l.Payments.ParseGetTxnFeesResponse(ctx, method, responseJSON)
		}, str(ch, cb))
}

// BuildVerifyPaymentRequest builds a request for the details of receipt.
func BuildVerifyPaymentRequest(ch CommandHandle, h WalletHandle, submitterDid, receipt string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 5, a(4, receipt)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandBuildVerifyPaymentReq, command.PaymentsCommandBuildVerifyPaymentReqAck,
		func(ctx context.Context, l *locator.Locator) (pair, error) {
			req, m, err := l.Payments.BuildVerifyPaymentRequest(ctx, h, submitterDid, receipt)
			return pair{req, m}, err
		}, two(ch, cb))
}

// ParseVerifyPaymentResponse returns the receipt details.
func ParseVerifyPaymentResponse(ch CommandHandle, method, responseJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, method), j(3, responseJSON)); code != Success {
		return code
	}
	return methodCall(command.PaymentsCommandParseVerifyPaymentResponse, command.PaymentsCommandParseVerifyPaymentResponseAck,
		func(ctx context.Context, l *locator.Locator) (string, error) {
			return l.Payments.ParseVerifyPaymentResponse(ctx, method, responseJSON)
		}, str(ch, cb))
}

// GetRequestInfo picks the cheapest auth rule constraint the requester
// meets and prices it with feesJSON.
func GetRequestInfo(ch CommandHandle, getAuthRuleResponseJSON, requesterInfoJSON, feesJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, j(2, getAuthRuleResponseJSON), j(3, requesterInfoJSON), j(4, feesJSON)); code != Success {
		return code
	}
	return submit(command.PaymentsCommandGetRequestInfo, func(context.Context, *locator.Locator) (string, error) {
		return payments.GetRequestInfo(getAuthRuleResponseJSON, requesterInfoJSON, feesJSON)
	}, str(ch, cb))
}

// SignWithAddress signs message with the key behind address.
func SignWithAddress(ch CommandHandle, h WalletHandle, address string, message []byte, cb BytesCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, address)); code != Success {
		return code
	}
	if len(message) == 0 {
		return invalidParam(4)
	}
	return methodCall(command.PaymentsCommandSignWithAddressReq, command.PaymentsCommandSignWithAddressAck,
		func(ctx context.Context, l *locator.Locator) ([]byte, error) {
			return l.Payments.SignWithAddress(ctx, h, address, message)
		}, bytes(ch, cb))
}

// VerifyWithAddress checks signature over message against address.
func VerifyWithAddress(ch CommandHandle, address string, message, signature []byte, cb BoolCallback) ErrorCode {
	if code := check(cb == nil, 5, a(2, address)); code != Success {
		return code
	}
	if len(message) == 0 {
		return invalidParam(3)
	}
	if len(signature) == 0 {
		return invalidParam(4)
	}
	return methodCall(command.PaymentsCommandVerifyWithAddressReq, command.PaymentsCommandVerifyWithAddressAck,
		func(ctx context.Context, l *locator.Locator) (bool, error) {
			return l.Payments.VerifyWithAddress(ctx, address, message, signature)
		}, boolean(ch, cb))
}
