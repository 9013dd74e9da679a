package executor

import (
	"context"

	"indy/internal/command"
)

// Run submits fn as command idx and delivers its outcome exactly once:
// the result after a normal return, a CommonInvalidState error after a
// panic, or the submission error if the executor is already shut down.
func Run[T any](e *Executor, idx command.Index, fn func(ctx context.Context) (T, error), deliver func(T, error)) {
	var zero T
	err := e.Submit(&Task{
		Index: idx,
		Exec: func(ctx context.Context) func() {
			v, err := fn(ctx)
			if err != nil {
				return func() { deliver(zero, err) }
			}
			return func() { deliver(v, nil) }
		},
		Fail: func(err error) { deliver(zero, err) },
	})
	if err != nil {
		deliver(zero, err)
	}
}

// Then runs a two-phase command. first executes as idx; its result feeds
// next, which executes as nextIdx (the Continue/Ack variant). Each phase is
// metered under its own index. A failed first phase is still handed to the
// second phase's slot so both counters advance together.
func Then[T, R any](
	e *Executor,
	idx command.Index,
	first func(ctx context.Context) (T, error),
	nextIdx command.Index,
	next func(ctx context.Context, v T) (R, error),
	deliver func(R, error),
) {
	Run(e, idx, func(ctx context.Context) (result[T], error) {
		v, err := first(ctx)
		return result[T]{v: v, err: err}, nil
	}, func(r result[T], err error) {
		if err == nil {
			err = r.err
		}
		Run(e, nextIdx, func(ctx context.Context) (R, error) {
			if err != nil {
				var zero R
				return zero, err
			}
			return next(ctx, r.v)
		}, deliver)
	})
}

// Offload runs a command whose middle step is expensive (key derivation,
// CL key generation). first runs on a worker as idx, work runs on the
// blocking subpool, and next runs on a worker as nextIdx.
func Offload[T, U, R any](
	e *Executor,
	idx command.Index,
	first func(ctx context.Context) (T, error),
	work func(T) (U, error),
	nextIdx command.Index,
	next func(ctx context.Context, v U) (R, error),
	deliver func(R, error),
) {
	Run(e, idx, first, func(v T, err error) {
		var out U
		cont := func(werr error) {
			Run(e, nextIdx, func(ctx context.Context) (R, error) {
				if werr != nil {
					var zero R
					return zero, werr
				}
				return next(ctx, out)
			}, deliver)
		}
		if err != nil {
			cont(err)
			return
		}
		e.Offload(func() error {
			var werr error
			out, werr = work(v)
			return werr
		}, cont)
	})
}

type result[T any] struct {
	v   T
	err error
}
