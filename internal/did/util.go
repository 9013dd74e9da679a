package did

import (
	"context"
	"encoding/json"

	"github.com/mr-tron/base58"

	"indy/internal/command"
	"indy/internal/wallet"
	dErrors "indy/pkg/domain-errors"
)

func encode(b []byte) string {
	return base58.Encode(b)
}

func decode(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "decode did record")
	}
	return nil
}

// optional turns WalletItemNotFound into a zero value.
func optional[T any](v T, err error) (T, error) {
	if dErrors.HasCode(err, dErrors.CodeWalletItemNotFound) {
		var zero T
		return zero, nil
	}
	return v, err
}

func upsertObject[T any](ctx context.Context, s wallet.Store, h command.WalletHandle, typ, id string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "encode "+typ)
	}
	return wallet.Upsert(ctx, s, h, typ, id, string(raw))
}
