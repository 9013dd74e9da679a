package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/did"
	"indy/internal/locator"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
)

// CreateAndStoreMyDid creates a DID and its signing key from infoJSON
// (did, seed, crypto_type, cid, method_name) and returns both.
func CreateAndStoreMyDid(ch CommandHandle, h WalletHandle, infoJSON string, cb PairCallback) ErrorCode {
	if code := check(cb == nil, 4, j(3, infoJSON)); code != Success {
		return code
	}
	return submit(command.DidCommandCreateAndStoreMyDid, func(ctx context.Context, l *locator.Locator) (pair, error) {
		d, vk, err := l.Dids.CreateAndStoreMyDid(ctx, h, infoJSON)
		return pair{d, vk}, err
	}, two(ch, cb))
}

// ReplaceKeysStart generates a temporary verkey for did.
func ReplaceKeysStart(ch CommandHandle, h WalletHandle, myDid, keyInfoJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, myDid), j(4, keyInfoJSON)); code != Success {
		return code
	}
	return submit(command.DidCommandReplaceKeysStart, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Dids.ReplaceKeysStart(ctx, h, myDid, keyInfoJSON)
	}, str(ch, cb))
}

// ReplaceKeysApply makes the temporary verkey of did the current one.
func ReplaceKeysApply(ch CommandHandle, h WalletHandle, myDid string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, a(3, myDid)); code != Success {
		return code
	}
	return submit(command.DidCommandReplaceKeysApply, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Dids.ReplaceKeysApply(ctx, h, myDid))
	}, none(ch, cb))
}

// StoreTheirDid records a peer DID and optionally its verkey.
func StoreTheirDid(ch CommandHandle, h WalletHandle, identityJSON string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, j(3, identityJSON)); code != Success {
		return code
	}
	return submit(command.DidCommandStoreTheirDid, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Dids.StoreTheirDid(ctx, h, identityJSON))
	}, none(ch, cb))
}

// GetMyDidWithMeta returns one of the wallet's DIDs with its metadata.
func GetMyDidWithMeta(ch CommandHandle, h WalletHandle, myDid string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, myDid)); code != Success {
		return code
	}
	return submit(command.DidCommandGetMyDidWithMeta, func(ctx context.Context, l *locator.Locator) (string, error) {
		m, err := l.Dids.GetMyDidWithMeta(ctx, h, myDid)
		if err != nil {
			return "", err
		}
		return encode(m)
	}, str(ch, cb))
}

// ListMyDidsWithMeta returns every DID of the wallet.
func ListMyDidsWithMeta(ch CommandHandle, h WalletHandle, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.DidCommandListMyDidsWithMeta, func(ctx context.Context, l *locator.Locator) (string, error) {
		list, err := l.Dids.ListMyDidsWithMeta(ctx, h)
		if err != nil {
			return "", err
		}
		return encode(list)
	}, str(ch, cb))
}

// KeyForLocalDid resolves did from the wallet only.
func KeyForLocalDid(ch CommandHandle, h WalletHandle, target string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, target)); code != Success {
		return code
	}
	return submit(command.DidCommandKeyForLocalDid, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Dids.KeyForLocalDid(ctx, h, target)
	}, str(ch, cb))
}

type nymLookup struct {
	verkey string
	nym    *did.Did
}

// KeyForDid resolves did from the wallet and, on a miss, from the ledger
// through pool. A ledger answer is remembered as a peer DID.
func KeyForDid(ch CommandHandle, pool PoolHandle, h WalletHandle, target string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(4, target)); code != Success {
		return code
	}
	return submitThen(command.DidCommandKeyForDid,
		func(ctx context.Context, l *locator.Locator) (nymLookup, error) {
			vk, err := l.Dids.KeyForLocalDid(ctx, h, target)
			if !dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) {
				return nymLookup{verkey: vk}, err
			}
			nym, err := l.Lookups.GetNym(ctx, pool, h, target)
			return nymLookup{nym: nym}, err
		},
		command.DidCommandGetNymAck,
		func(ctx context.Context, l *locator.Locator, r nymLookup) (string, error) {
			if r.nym == nil {
				return r.verkey, nil
			}
			return l.Dids.GetNymAck(ctx, h, r.nym)
		},
		str(ch, cb))
}

// SetEndpointForDid records the address and transport key of did.
func SetEndpointForDid(ch CommandHandle, h WalletHandle, target, address, transportKey string, cb Callback) ErrorCode {
	if code := check(cb == nil, 6, a(3, target), a(4, address), a(5, transportKey)); code != Success {
		return code
	}
	return submit(command.DidCommandSetEndpointForDid, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Dids.SetEndpointForDid(ctx, h, target, address, transportKey))
	}, none(ch, cb))
}

type endpointLookup struct {
	ep      *did.Endpoint
	fetched bool
}

// GetEndpointForDid returns the address and transport key of did, asking
// the ledger when the wallet has none.
func GetEndpointForDid(ch CommandHandle, h WalletHandle, pool PoolHandle, target string, cb func(CommandHandle, ErrorCode, string, *string)) ErrorCode {
	if code := check(cb == nil, 5, a(4, target)); code != Success {
		return code
	}
	return submitThen(command.DidCommandGetEndpointForDid,
		func(ctx context.Context, l *locator.Locator) (endpointLookup, error) {
			if err := did.Validate(target); err != nil {
				return endpointLookup{}, err
			}
			local, err := wallet.GetObject[did.Endpoint](ctx, l.Wallets, h, wallet.TypeEndpoint, target)
			if err == nil {
				return endpointLookup{ep: &local}, nil
			}
			if !dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) {
				return endpointLookup{}, err
			}
			ep, err := l.Lookups.GetEndpoint(ctx, pool, h, target)
			return endpointLookup{ep: ep, fetched: true}, err
		},
		command.DidCommandGetAttribAck,
		func(ctx context.Context, l *locator.Locator, r endpointLookup) (*did.Endpoint, error) {
			if r.fetched {
				if err := l.Dids.GetAttribAck(ctx, h, target, r.ep); err != nil {
					return nil, err
				}
			}
			return r.ep, nil
		},
		func(ep *did.Endpoint, code ErrorCode) {
			if ep == nil {
				cb(ch, code, "", nil)
				return
			}
			var key *string
			if ep.Verkey != "" {
				key = &ep.Verkey
			}
			cb(ch, code, ep.Address, key)
		})
}

// SetDidMetadata replaces the metadata of did.
func SetDidMetadata(ch CommandHandle, h WalletHandle, target, metadata string, cb Callback) ErrorCode {
	if code := check(cb == nil, 5, a(3, target)); code != Success {
		return code
	}
	return submit(command.DidCommandSetDidMetadata, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Dids.SetDidMetadata(ctx, h, target, metadata))
	}, none(ch, cb))
}

// GetDidMetadata returns the metadata of did.
func GetDidMetadata(ch CommandHandle, h WalletHandle, target string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, target)); code != Success {
		return code
	}
	return submit(command.DidCommandGetDidMetadata, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Dids.GetDidMetadata(ctx, h, target)
	}, str(ch, cb))
}

// AbbreviateVerkey shortens verkey when it extends did.
func AbbreviateVerkey(ch CommandHandle, target, verkey string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, target), a(3, verkey)); code != Success {
		return code
	}
	return submit(command.DidCommandAbbreviateVerkey, func(context.Context, *locator.Locator) (string, error) {
		return did.AbbreviateVerkey(target, verkey)
	}, str(ch, cb))
}

// QualifyDid rewrites did, and everything stored under it, with method.
func QualifyDid(ch CommandHandle, h WalletHandle, target, method string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 5, a(3, target), a(4, method)); code != Success {
		return code
	}
	return submit(command.DidCommandQualifyDid, func(ctx context.Context, l *locator.Locator) (string, error) {
		return l.Dids.QualifyDid(ctx, h, target, method)
	}, str(ch, cb))
}
