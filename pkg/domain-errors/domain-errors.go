package domainerrors

import (
	"errors"
	"fmt"
)

// Code is the flat numeric error taxonomy reported at the library boundary.
// Values are stable and grouped by subsystem.
type Code int32

const (
	Success Code = 0

	// Common
	CodeInvalidParam1    Code = 100
	CodeInvalidParam2    Code = 101
	CodeInvalidParam3    Code = 102
	CodeInvalidParam4    Code = 103
	CodeInvalidParam5    Code = 104
	CodeInvalidParam6    Code = 105
	CodeInvalidParam7    Code = 106
	CodeInvalidParam8    Code = 107
	CodeInvalidParam9    Code = 108
	CodeInvalidParam10   Code = 109
	CodeInvalidParam11   Code = 110
	CodeInvalidParam12   Code = 111
	CodeInvalidState     Code = 112
	CodeInvalidStructure Code = 113
	CodeIOError          Code = 114
	CodeInvalidParam13   Code = 115
	CodeInvalidParam14   Code = 116
	CodeInvalidParam15   Code = 117
	CodeInvalidParam16   Code = 118
	CodeInvalidParam17   Code = 119
	CodeInvalidParam18   Code = 120
	CodeInvalidParam19   Code = 121
	CodeInvalidParam20   Code = 122
	CodeInvalidParam21   Code = 123
	CodeInvalidParam22   Code = 124
	CodeInvalidParam23   Code = 125
	CodeInvalidParam24   Code = 126
	CodeInvalidParam25   Code = 127
	CodeInvalidParam26   Code = 128
	CodeInvalidParam27   Code = 129

	// Wallet
	CodeWalletInvalidHandle         Code = 200
	CodeWalletUnknownType           Code = 201
	CodeWalletTypeAlreadyRegistered Code = 202
	CodeWalletAlreadyExists         Code = 203
	CodeWalletNotFound              Code = 204
	CodeWalletIncompatiblePool      Code = 205
	CodeWalletAlreadyOpened         Code = 206
	CodeWalletAccessFailed          Code = 207
	CodeWalletInputError            Code = 208
	CodeWalletDecodingError         Code = 209
	CodeWalletStorageError          Code = 210
	CodeWalletEncryptionError       Code = 211
	CodeWalletItemNotFound          Code = 212
	CodeWalletItemAlreadyExists     Code = 213
	CodeWalletQueryError            Code = 214
	CodeWalletNoRecords             Code = 215

	// Pool and ledger
	CodePoolLedgerNotCreated          Code = 300
	CodePoolLedgerInvalidPoolHandle   Code = 301
	CodePoolLedgerTerminated          Code = 302
	CodeLedgerNoConsensus             Code = 303
	CodeLedgerInvalidTransaction      Code = 304
	CodeLedgerSecurityError           Code = 305
	CodePoolLedgerConfigAlreadyExists Code = 306
	CodePoolLedgerTimeout             Code = 307
	CodePoolIncompatibleProtocol      Code = 308
	CodeLedgerNotFound                Code = 309

	// Anoncreds
	CodeRevocationRegistryFull    Code = 400
	CodeInvalidUserRevocID        Code = 401
	CodeMasterSecretDuplicateName Code = 404
	CodeProofRejected             Code = 405
	CodeCredentialRevoked         Code = 406
	CodeCredDefAlreadyExists      Code = 407

	// Crypto
	CodeUnknownCryptoType Code = 500

	// DID
	CodeDidAlreadyExists Code = 600

	// Payments
	CodePaymentUnknownMethod         Code = 700
	CodePaymentIncompatibleMethods   Code = 701
	CodePaymentInsufficientFunds     Code = 702
	CodePaymentSourceDoesNotExist    Code = 703
	CodePaymentOperationNotSupported Code = 704
	CodePaymentExtraFunds            Code = 705
	CodeTransactionNotAllowed        Code = 706
)

var codeNames = map[Code]string{
	Success:                           "Success",
	CodeInvalidState:                  "CommonInvalidState",
	CodeInvalidStructure:              "CommonInvalidStructure",
	CodeIOError:                       "CommonIOError",
	CodeWalletInvalidHandle:           "WalletInvalidHandle",
	CodeWalletUnknownType:             "WalletUnknownTypeError",
	CodeWalletTypeAlreadyRegistered:   "WalletTypeAlreadyRegisteredError",
	CodeWalletAlreadyExists:           "WalletAlreadyExistsError",
	CodeWalletNotFound:                "WalletNotFoundError",
	CodeWalletIncompatiblePool:        "WalletIncompatiblePoolError",
	CodeWalletAlreadyOpened:           "WalletAlreadyOpenedError",
	CodeWalletAccessFailed:            "WalletAccessFailed",
	CodeWalletInputError:              "WalletInputError",
	CodeWalletDecodingError:           "WalletDecodingError",
	CodeWalletStorageError:            "WalletStorageError",
	CodeWalletEncryptionError:         "WalletEncryptionError",
	CodeWalletItemNotFound:            "WalletItemNotFound",
	CodeWalletItemAlreadyExists:       "WalletItemAlreadyExists",
	CodeWalletQueryError:              "WalletQueryError",
	CodeWalletNoRecords:               "WalletNoRecords",
	CodePoolLedgerNotCreated:          "PoolLedgerNotCreatedError",
	CodePoolLedgerInvalidPoolHandle:   "PoolLedgerInvalidPoolHandle",
	CodePoolLedgerTerminated:          "PoolLedgerTerminated",
	CodeLedgerNoConsensus:             "LedgerNoConsensusError",
	CodeLedgerInvalidTransaction:      "LedgerInvalidTransaction",
	CodeLedgerSecurityError:           "LedgerSecurityError",
	CodePoolLedgerConfigAlreadyExists: "PoolLedgerConfigAlreadyExistsError",
	CodePoolLedgerTimeout:             "PoolLedgerTimeout",
	CodePoolIncompatibleProtocol:      "PoolIncompatibleProtocolVersion",
	CodeLedgerNotFound:                "LedgerNotFound",
	CodeRevocationRegistryFull:        "AnoncredsRevocationRegistryFullError",
	CodeInvalidUserRevocID:            "AnoncredsInvalidUserRevocId",
	CodeMasterSecretDuplicateName:     "AnoncredsMasterSecretDuplicateNameError",
	CodeProofRejected:                 "AnoncredsProofRejected",
	CodeCredentialRevoked:             "AnoncredsCredentialRevoked",
	CodeCredDefAlreadyExists:          "AnoncredsCredDefAlreadyExistsError",
	CodeUnknownCryptoType:             "UnknownCryptoTypeError",
	CodeDidAlreadyExists:              "DidAlreadyExistsError",
	CodePaymentUnknownMethod:          "PaymentUnknownMethodError",
	CodePaymentIncompatibleMethods:    "PaymentIncompatibleMethodsError",
	CodePaymentInsufficientFunds:      "PaymentInsufficientFundsError",
	CodePaymentSourceDoesNotExist:     "PaymentSourceDoesNotExistError",
	CodePaymentOperationNotSupported:  "PaymentOperationNotSupportedError",
	CodePaymentExtraFunds:             "PaymentExtraFundsError",
	CodeTransactionNotAllowed:         "TransactionNotAllowedError",
}

// String returns the taxonomy name of the code.
func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	if p := c.ParamPosition(); p > 0 {
		return fmt.Sprintf("CommonInvalidParam%d", p)
	}
	return fmt.Sprintf("Code(%d)", int32(c))
}

// ParamPosition returns the 1-based argument position encoded by an
// InvalidParam code, or 0 when c is not an InvalidParam code.
func (c Code) ParamPosition() int {
	switch {
	case c >= CodeInvalidParam1 && c <= CodeInvalidParam12:
		return int(c-CodeInvalidParam1) + 1
	case c >= CodeInvalidParam13 && c <= CodeInvalidParam27:
		return int(c-CodeInvalidParam13) + 13
	}
	return 0
}

// InvalidParam returns the InvalidParam code for a 1-based argument position.
func InvalidParam(pos int) Code {
	switch {
	case pos >= 1 && pos <= 12:
		return CodeInvalidParam1 + Code(pos-1)
	case pos >= 13 && pos <= 27:
		return CodeInvalidParam13 + Code(pos-13)
	}
	return CodeInvalidStructure
}

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code.String()
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf is New with fmt-style formatting.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf maps any error onto the taxonomy. nil is Success; errors that
// carry no domain code are reported as CommonInvalidState.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInvalidState
}
