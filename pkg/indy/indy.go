// Package indy is the public command surface of the library.
//
// Every operation takes a caller-chosen command handle, its inputs and a
// callback. Inputs that can be rejected without touching any state are
// checked synchronously and reported through the returned error code, in
// which case the callback is never called. Otherwise the operation runs on
// the library's workers and its outcome is delivered exactly once to the
// callback, with zero-valued outputs on error.
package indy

import (
	"context"
	"encoding/json"
	"runtime"

	"indy/internal/command"
	"indy/internal/executor"
	"indy/internal/locator"
	"indy/internal/platform/config"
	dErrors "indy/pkg/domain-errors"
)

// Handle kinds.
type (
	CommandHandle    = command.CommandHandle
	WalletHandle     = command.WalletHandle
	PoolHandle       = command.PoolHandle
	SearchHandle     = command.SearchHandle
	BlobReaderHandle = command.BlobReaderHandle
	BlobWriterHandle = command.BlobWriterHandle
)

// ErrorCode is the numeric outcome of an operation.
type ErrorCode = dErrors.Code

// Success is the ErrorCode of an operation that completed.
const Success = dErrors.Success

// InvalidHandle is returned in place of a handle on error.
const InvalidHandle = command.InvalidHandle

// Callback shapes shared by many operations.
type (
	Callback       func(CommandHandle, ErrorCode)
	StringCallback func(CommandHandle, ErrorCode, string)
	BoolCallback   func(CommandHandle, ErrorCode, bool)
	BytesCallback  func(CommandHandle, ErrorCode, []byte)
	PairCallback   func(CommandHandle, ErrorCode, string, string)
)

func codeOf(err error) ErrorCode {
	return dErrors.CodeOf(err)
}

// invalidParam is the code for the argument at position pos, counting the
// command handle as 1.
func invalidParam(pos int) ErrorCode {
	switch {
	case pos >= 1 && pos <= 12:
		return dErrors.CodeInvalidParam1 + ErrorCode(pos-1)
	case pos >= 13 && pos <= 27:
		return dErrors.CodeInvalidParam13 + ErrorCode(pos-13)
	}
	return dErrors.CodeInvalidStructure
}

// arg is a required string argument and its position.
type arg struct {
	pos   int
	value string
}

func a(pos int, value string) arg { return arg{pos: pos, value: value} }

// jsonArg is a required argument that must be well-formed JSON.
type jsonArg struct {
	pos   int
	value string
}

func j(pos int, value string) jsonArg { return jsonArg{pos: pos, value: value} }

// check validates callback presence and arguments without running
// anything.
func check(noCallback bool, cbPos int, args ...any) ErrorCode {
	if noCallback {
		return invalidParam(cbPos)
	}
	for _, raw := range args {
		switch v := raw.(type) {
		case arg:
			if v.value == "" {
				return invalidParam(v.pos)
			}
		case jsonArg:
			if v.value == "" || !json.Valid([]byte(v.value)) {
				return invalidParam(v.pos)
			}
		}
	}
	return Success
}

func env() (*locator.Locator, ErrorCode) {
	l, err := locator.Get()
	if err != nil {
		return nil, codeOf(err)
	}
	return l, Success
}

// submit runs fn as command idx and delivers its result through out.
func submit[R any](idx command.Index, fn func(ctx context.Context, l *locator.Locator) (R, error), out func(R, ErrorCode)) ErrorCode {
	l, code := env()
	if code != Success {
		return code
	}
	executor.Run(l.Executor, idx, func(ctx context.Context) (R, error) {
		return fn(ctx, l)
	}, func(v R, err error) {
		out(v, codeOf(err))
	})
	return Success
}

// submitThen runs a two-phase command: first as idx, next as nextIdx.
func submitThen[T, R any](
	idx command.Index,
	first func(ctx context.Context, l *locator.Locator) (T, error),
	nextIdx command.Index,
	next func(ctx context.Context, l *locator.Locator, v T) (R, error),
	out func(R, ErrorCode),
) ErrorCode {
	l, code := env()
	if code != Success {
		return code
	}
	executor.Then(l.Executor, idx, func(ctx context.Context) (T, error) {
		return first(ctx, l)
	}, nextIdx, func(ctx context.Context, v T) (R, error) {
		return next(ctx, l, v)
	}, func(v R, err error) {
		out(v, codeOf(err))
	})
	return Success
}

// submitOffload runs a command whose middle step leaves the workers.
func submitOffload[T, U, R any](
	idx command.Index,
	first func(ctx context.Context, l *locator.Locator) (T, error),
	work func(l *locator.Locator, v T) (U, error),
	nextIdx command.Index,
	next func(ctx context.Context, l *locator.Locator, v U) (R, error),
	out func(R, ErrorCode),
) ErrorCode {
	l, code := env()
	if code != Success {
		return code
	}
	executor.Offload(l.Executor, idx, func(ctx context.Context) (T, error) {
		return first(ctx, l)
	}, func(v T) (U, error) {
		return work(l, v)
	}, nextIdx, func(ctx context.Context, v U) (R, error) {
		return next(ctx, l, v)
	}, func(v R, err error) {
		out(v, codeOf(err))
	})
	return Success
}

func none(ch CommandHandle, cb Callback) func(struct{}, ErrorCode) {
	return func(_ struct{}, code ErrorCode) { cb(ch, code) }
}

func str(ch CommandHandle, cb StringCallback) func(string, ErrorCode) {
	return func(v string, code ErrorCode) { cb(ch, code, v) }
}

func boolean(ch CommandHandle, cb BoolCallback) func(bool, ErrorCode) {
	return func(v bool, code ErrorCode) { cb(ch, code, v) }
}

func bytes(ch CommandHandle, cb BytesCallback) func([]byte, ErrorCode) {
	return func(v []byte, code ErrorCode) { cb(ch, code, v) }
}

type pair struct{ a, b string }

func two(ch CommandHandle, cb PairCallback) func(pair, ErrorCode) {
	return func(v pair, code ErrorCode) { cb(ch, code, v.a, v.b) }
}

func noResult(err error) (struct{}, error) {
	return struct{}{}, err
}

func encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode output")
	}
	return string(raw), nil
}

// RuntimeConfig tunes the library before its first operation.
type RuntimeConfig struct {
	CryptoThreadPoolSize int  `json:"crypto_thread_pool_size"`
	CollectBacktrace     bool `json:"collect_backtrace"`
}

// SetRuntimeConfig applies configJSON to the configuration the library
// starts with. It has no effect once an operation has run.
func SetRuntimeConfig(configJSON string) ErrorCode {
	if configJSON == "" {
		return invalidParam(1)
	}
	var rc RuntimeConfig
	if err := json.Unmarshal([]byte(configJSON), &rc); err != nil || rc.CryptoThreadPoolSize < 0 {
		return invalidParam(1)
	}
	locator.Configure(func(cfg *config.Runtime) {
		if rc.CryptoThreadPoolSize > 0 {
			cfg.BlockingPoolSize = min(rc.CryptoThreadPoolSize, 4*runtime.NumCPU())
		}
	})
	return Success
}

// Shutdown drains running operations and closes every wallet and pool.
func Shutdown(ctx context.Context) ErrorCode {
	l, code := env()
	if code != Success {
		return code
	}
	return codeOf(l.Shutdown(ctx))
}

// CollectMetrics reports command counters, worker pool and wallet state.
func CollectMetrics(ch CommandHandle, cb StringCallback) ErrorCode {
	if code := check(cb == nil, 2); code != Success {
		return code
	}
	return submit(command.MetricsCommandCollectMetrics, func(_ context.Context, l *locator.Locator) (string, error) {
		return l.CollectMetrics()
	}, str(ch, cb))
}
