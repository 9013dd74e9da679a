package indy

import (
	"context"

	"indy/internal/cache"
	"indy/internal/command"
	"indy/internal/locator"
)

type cacheLookup struct {
	opts  cache.GetOptions
	value string
	hit   bool
	reply string
}

// GetSchema returns schema id from the wallet cache or, on a miss, from
// the ledger through pool. optionsJSON takes noCache, noUpdate, noStore
// and minFresh.
func GetSchema(ch CommandHandle, pool PoolHandle, h WalletHandle, submitterDid, id, optionsJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 7, a(4, submitterDid), a(5, id)); code != Success {
		return code
	}
	return cachedGet(ch, command.CacheCommandGetSchema, command.CacheCommandGetSchemaContinue, optionsJSON, cb,
		func(ctx context.Context, c *cache.Service, opts cache.GetOptions) (string, bool, error) {
			return c.CachedSchema(ctx, h, id, opts)
		},
		func(ctx context.Context, c *cache.Service) (string, error) {
			return c.FetchSchema(ctx, pool, submitterDid, id)
		},
		func(ctx context.Context, c *cache.Service, reply string, opts cache.GetOptions) (string, error) {
			return c.GetSchemaContinue(ctx, h, id, reply, opts)
		})
}

// GetCredDef is GetSchema for credential definitions.
func GetCredDef(ch CommandHandle, pool PoolHandle, h WalletHandle, submitterDid, id, optionsJSON string, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 7, a(4, submitterDid), a(5, id)); code != Success {
		return code
	}
	return cachedGet(ch, command.CacheCommandGetCredDef, command.CacheCommandGetCredDefContinue, optionsJSON, cb,
		func(ctx context.Context, c *cache.Service, opts cache.GetOptions) (string, bool, error) {
			return c.CachedCredDef(ctx, h, id, opts)
		},
		func(ctx context.Context, c *cache.Service) (string, error) {
			return c.FetchCredDef(ctx, pool, submitterDid, id)
		},
		func(ctx context.Context, c *cache.Service, reply string, opts cache.GetOptions) (string, error) {
			return c.GetCredDefContinue(ctx, h, id, reply, opts)
		})
}

func cachedGet(
	ch CommandHandle,
	idx, continueIdx command.Index,
	optionsJSON string,
	cb StringCallback,
	cached func(context.Context, *cache.Service, cache.GetOptions) (string, bool, error),
	fetch func(context.Context, *cache.Service) (string, error),
	store func(context.Context, *cache.Service, string, cache.GetOptions) (string, error),
) ErrorCode {
	opts, err := cache.ParseGetOptions(optionsJSON)
	if err != nil {
		return invalidParam(6)
	}
	return submitThen(idx,
		func(ctx context.Context, l *locator.Locator) (cacheLookup, error) {
			value, hit, err := cached(ctx, l.Cache, opts)
			if err != nil || hit {
				return cacheLookup{opts: opts, value: value, hit: hit}, err
			}
			reply, err := fetch(ctx, l.Cache)
			return cacheLookup{opts: opts, reply: reply}, err
		},
		continueIdx,
		func(ctx context.Context, l *locator.Locator, r cacheLookup) (string, error) {
			if r.hit {
				return r.value, nil
			}
			return store(ctx, l.Cache, r.reply, r.opts)
		},
		str(ch, cb))
}

// PurgeSchemaCache deletes cached schemas older than maxAge seconds from
// optionsJSON, or all of them.
func PurgeSchemaCache(ch CommandHandle, h WalletHandle, optionsJSON string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4); code != Success {
		return code
	}
	opts, err := cache.ParsePurgeOptions(optionsJSON)
	if err != nil {
		return invalidParam(3)
	}
	return submit(command.CacheCommandPurgeSchemaCache, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Cache.PurgeSchemaCache(ctx, h, opts))
	}, none(ch, cb))
}

// PurgeCredDefCache deletes cached credential definitions older than
// maxAge seconds from optionsJSON, or all of them.
func PurgeCredDefCache(ch CommandHandle, h WalletHandle, optionsJSON string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4); code != Success {
		return code
	}
	opts, err := cache.ParsePurgeOptions(optionsJSON)
	if err != nil {
		return invalidParam(3)
	}
	return submit(command.CacheCommandPurgeCredDefCache, func(ctx context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Cache.PurgeCredDefCache(ctx, h, opts))
	}, none(ch, cb))
}
