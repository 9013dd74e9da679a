package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/crypto"
	"indy/internal/locator"
	"indy/pkg/validation"
)

// CreateKey creates a signing key in the wallet and returns its verkey.
func CreateKey(ch CommandHandle, h WalletHandle, keyJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, j(3, keyJSON)); code != Success {
		return code
	}
	return submit(command.CryptoCommandCreateKey, func(ctx context.Context, l *locator.Locator) (string, error) {
		var info crypto.KeyInfo
		if err := validation.DecodeJSON(keyJSON, &info); err != nil {
			return "", err
		}
		return l.Crypto.CreateKey(ctx, h, info)
	}, str(ch, cb))
}

// SetKeyMetadata replaces the metadata of verkey.
func SetKeyMetadata(ch CommandHandle, h WalletHandle, verkey, metadata string, cb Callback) ErrorCode {
	if code := check(cb == nil, 5, a(3, verkey)); code != Success {
		return code
	}
	return submit(command.CryptoCommandSetKeyMetadata, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Crypto.SetKeyMetadata(ctx, h, verkey, metadata))
	}, none(ch, cb))
}

// GetKeyMetadata returns the metadata of verkey.
func GetKeyMetadata(ch CommandHandle, h WalletHandle, verkey string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, verkey)); code != Success {
		return code
	}
	return submit(command.CryptoCommandGetKeyMetadata, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Crypto.GetKeyMetadata(ctx, h, verkey)
	}, str(ch, cb))
}

// CryptoSign signs message with the key behind signerVk.
func CryptoSign(ch CommandHandle, h WalletHandle, signerVk string, message []byte, cb BytesCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, signerVk)); code != Success {
		return code
	}
	if len(message) == 0 {
		return invalidParam(4)
	}
	return submit(command.CryptoCommandCryptoSign, func(ctx context.Context, l *locator.Locator) ([]byte, error) {
		return l.Crypto.Sign(ctx, h, signerVk, message)
	}, bytes(ch, cb))
}

// CryptoVerify checks signature over message against signerVk.
func CryptoVerify(ch CommandHandle, signerVk string, message, signature []byte, cb BoolCallback) ErrorCode {
	if code := check(cb == nil, 5, a(2, signerVk)); code != Success {
		return code
	}
	if len(message) == 0 {
		return invalidParam(3)
	}
	if len(signature) == 0 {
		return invalidParam(4)
	}
	return submit(command.CryptoCommandCryptoVerify, func(context.Context, *locator.Locator) (bool, error) {
		return crypto.Verify(signerVk, message, signature)
	}, boolean(ch, cb))
}

// AuthCrypt encrypts message for recipientVk so that it can tell the
// message came from senderVk.
func AuthCrypt(ch CommandHandle, h WalletHandle, senderVk, recipientVk string, message []byte, cb BytesCallback) ErrorCode {
	if code := check(cb == nil, 6, a(3, senderVk), a(4, recipientVk)); code != Success {
		return code
	}
	if len(message) == 0 {
		return invalidParam(5)
	}
	return submit(command.CryptoCommandAuthenticatedEncrypt, func(ctx context.Context, l *locator.Locator) ([]byte, error) {
		return l.Crypto.AuthCrypt(ctx, h, senderVk, recipientVk, message)
	}, bytes(ch, cb))
}

// AuthDecrypt decrypts an AuthCrypt message and returns the sender verkey.
func AuthDecrypt(ch CommandHandle, h WalletHandle, recipientVk string, data []byte, cb func(CommandHandle, ErrorCode, string, []byte)) ErrorCode {
	if code := check(cb == nil, 5, a(3, recipientVk)); code != Success {
		return code
	}
	if len(data) == 0 {
		return invalidParam(4)
	}
	type decrypted struct {
		sender string
		msg    []byte
	}
	return submit(command.CryptoCommandAuthenticatedDecrypt, func(ctx context.Context, l *locator.Locator) (decrypted, error) {
		sender, msg, err := l.Crypto.AuthDecrypt(ctx, h, recipientVk, data)
		return decrypted{sender, msg}, err
	}, func(d decrypted, code ErrorCode) {
		cb(ch, code, d.sender, d.msg)
	})
}

// AnonCrypt encrypts message for recipientVk without naming a sender.
func AnonCrypt(ch CommandHandle, recipientVk string, message []byte, cb BytesCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, recipientVk)); code != Success {
		return code
	}
	if len(message) == 0 {
		return invalidParam(3)
	}
	return submit(command.CryptoCommandAnonymousEncrypt, func(context.Context, *locator.Locator) ([]byte, error) {
		return crypto.AnonCrypt(recipientVk, message)
	}, bytes(ch, cb))
}

// AnonDecrypt decrypts an AnonCrypt message.
func AnonDecrypt(ch CommandHandle, h WalletHandle, recipientVk string, data []byte, cb BytesCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, recipientVk)); code != Success {
		return code
	}
	if len(data) == 0 {
		return invalidParam(4)
	}
	return submit(command.CryptoCommandAnonymousDecrypt, func(ctx context.Context, l *locator.Locator) ([]byte, error) {
		return l.Crypto.AnonDecrypt(ctx, h, recipientVk, data)
	}, bytes(ch, cb))
}

// PackMessage wraps message in a JWE for the verkeys in receiversJSON,
// authenticated by senderVk when it is set.
func PackMessage(ch CommandHandle, h WalletHandle, message []byte, receiversJSON, senderVk string, cb BytesCallback) ErrorCode {
	if code := check(cb == nil, 6, j(4, receiversJSON)); code != Success {
		return code
	}
	if len(message) == 0 {
		return invalidParam(3)
	}
	return submit(command.CryptoCommandPackMessage, func(ctx context.Context, l *locator.Locator) ([]byte, error) {
		return l.Crypto.PackMessage(ctx, h, message, receiversJSON, senderVk)
	}, bytes(ch, cb))
}

// UnpackMessage opens a JWE addressed to one of the wallet's keys.
func UnpackMessage(ch CommandHandle, h WalletHandle, jwe []byte, cb BytesCallback) ErrorCode {
	if code := check(cb == nil, 4); code != Success {
		return code
	}
	if len(jwe) == 0 {
		return invalidParam(3)
	}
	return submit(command.CryptoCommandUnpackMessage, func(ctx context.Context, l *locator.Locator) ([]byte, error) {
		return l.Crypto.UnpackMessage(ctx, h, jwe)
	}, bytes(ch, cb))
}
