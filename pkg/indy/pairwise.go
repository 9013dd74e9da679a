package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/locator"
)

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// IsPairwiseExists reports whether a pairwise is stored for theirDid.
func IsPairwiseExists(ch CommandHandle, h WalletHandle, theirDid string, cb BoolCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, theirDid)); code != Success {
		return code
	}
	return submit(command.PairwiseCommandPairwiseExists, func(ctx context.Context, l *locator.Locator) (bool, error) {
		return l.Pairwise.PairwiseExists(ctx, h, theirDid)
	}, boolean(ch, cb))
}

// CreatePairwise links one of the wallet's DIDs to a stored peer DID.
// An empty metadata stores none.
func CreatePairwise(ch CommandHandle, h WalletHandle, theirDid, myDid, metadata string, cb Callback) ErrorCode {
	if code := check(cb == nil, 6, a(3, theirDid), a(4, myDid)); code != Success {
		return code
	}
	return submit(command.PairwiseCommandCreatePairwise, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Pairwise.CreatePairwise(ctx, h, theirDid, myDid, optionalString(metadata)))
	}, none(ch, cb))
}

// ListPairwise returns every pairwise of the wallet.
func ListPairwise(ch CommandHandle, h WalletHandle, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.PairwiseCommandListPairwise, func(ctx context.Context, l *locator.Locator) (string, error) {
		list, err := l.Pairwise.ListPairwise(ctx, h)
		if err != nil {
			return "", err
		}
		return encode(list)
	}, str(ch, cb))
}

// GetPairwise returns the DID and metadata paired with theirDid.
func GetPairwise(ch CommandHandle, h WalletHandle, theirDid string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 4, a(3, theirDid)); code != Success {
		return code
	}
	return submit(command.PairwiseCommandGetPairwise, func(ctx context.Context, l *locator.Locator) (string, error) {
		info, err := l.Pairwise.GetPairwise(ctx, h, theirDid)
		if err != nil {
			return "", err
		}
		return encode(info)
	}, str(ch, cb))
}

// SetPairwiseMetadata replaces the metadata of the pairwise with theirDid.
// An empty metadata removes it.
func SetPairwiseMetadata(ch CommandHandle, h WalletHandle, theirDid, metadata string, cb Callback) ErrorCode {
	if code := check(cb == nil, 5, a(3, theirDid)); code != Success {
		return code
	}
	return submit(command.PairwiseCommandSetPairwiseMetadata, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Pairwise.SetPairwiseMetadata(ctx, h, theirDid, optionalString(metadata)))
	}, none(ch, cb))
}
