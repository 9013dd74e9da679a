package indy

import (
	"context"

	"indy/internal/command"
	"indy/internal/locator"
	"indy/internal/pool"
)

// PoolHandleCallback receives an opened pool.
type PoolHandleCallback func(CommandHandle, ErrorCode, PoolHandle)

// CreatePoolLedgerConfig stores a named pool config. configJSON names the
// genesis file; when empty the configured default genesis is used.
func CreatePoolLedgerConfig(ch CommandHandle, name, configJSON string, cb Callback) ErrorCode {
	if code := check(cb == nil, 4, a(2, name)); code != Success {
		return code
	}
	return submit(command.PoolCommandCreate, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Pools.CreateConfig(name, configJSON))
	}, none(ch, cb))
}

// DeletePoolLedgerConfig removes a pool config that is not open.
func DeletePoolLedgerConfig(ch CommandHandle, name string, cb Callback) ErrorCode {
	if code := check(cb == nil, 3, a(2, name)); code != Success {
		return code
	}
	return submit(command.PoolCommandDelete, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Pools.DeleteConfig(name))
	}, none(ch, cb))
}

// ListPools returns the names of the stored pool configs.
func ListPools(ch CommandHandle, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 2); code != Success {
		return code
	}
	return submit(command.PoolCommandList, func(_ context.Context, l *locator.Locator) (string, error) {
		return l.Pools.ListConfigs()
	}, str(ch, cb))
}

// SetProtocolVersion selects protocol 1 or 2 for requests and pools
// opened afterwards.
func SetProtocolVersion(ch CommandHandle, version int, cb Callback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submit(command.PoolCommandSetProtocolVersion, func(_ context.Context, l *locator.Locator) (struct{}, error) {
		return noResult(l.Pools.SetProtocolVersion(version))
	}, none(ch, cb))
}

// OpenPoolLedger connects to the validators of a stored pool, catching up
// its ledger first. configJSON may override timeouts.
func OpenPoolLedger(ch CommandHandle, name, configJSON string, cb PoolHandleCallback) ErrorCode {
	if code := check(cb == nil, 4, a(2, name)); code != Success {
		return code
	}
	return submitThen(command.PoolCommandOpen,
		func(_ context.Context, l *locator.Locator) (*pool.PendingOpen, error) {
			return l.Pools.PrepareOpen(name, configJSON)
		},
		command.PoolCommandOpenAck,
		func(ctx context.Context, l *locator.Locator, p *pool.PendingOpen) (PoolHandle, error) {
			return l.Pools.FinishOpen(ctx, p)
		},
		func(h PoolHandle, code ErrorCode) {
			if code != Success {
				h = PoolHandle(InvalidHandle)
			}
			cb(ch, code, h)
		})
}

// RefreshPoolLedger catches up the ledger of an open pool and adopts the
// new validator set.
func RefreshPoolLedger(ch CommandHandle, h PoolHandle, cb Callback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submitThen(command.PoolCommandRefresh,
		func(_ context.Context, l *locator.Locator) (*pool.PendingRefresh, error) {
			return l.Pools.PrepareRefresh(h)
		},
		command.PoolCommandRefreshAck,
		func(ctx context.Context, l *locator.Locator, p *pool.PendingRefresh) (struct{}, error) {
			return noResult(l.Pools.FinishRefresh(ctx, p))
		},
		none(ch, cb))
}

// ClosePoolLedger invalidates h and drops its node connections once
// requests in flight are answered.
func ClosePoolLedger(ch CommandHandle, h PoolHandle, cb Callback) ErrorCode {
	if code := check(cb == nil, 3); code != Success {
		return code
	}
	return submitThen(command.PoolCommandClose,
		func(_ context.Context, l *locator.Locator) (*pool.PendingClose, error) {
			return l.Pools.PrepareClose(h)
		},
		command.PoolCommandCloseAck,
		func(ctx context.Context, l *locator.Locator, p *pool.PendingClose) (struct{}, error) {
			return noResult(l.Pools.FinishClose(ctx, p))
		},
		none(ch, cb))
}
