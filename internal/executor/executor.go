// Package executor runs every command on a fixed pool of workers and
// records per-command queue and execution timings.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"indy/internal/command"
	"indy/internal/metrics"
	platformmetrics "indy/internal/platform/metrics"
	"indy/internal/platform/tracer"
	dErrors "indy/pkg/domain-errors"
)

// Task is one unit of work. Exec runs on a worker and returns the
// continuation that delivers the outcome; the executor records the
// command's metrics before calling it. If Exec panics, Fail is called with
// a CommonInvalidState error instead.
type Task struct {
	Index command.Index
	Exec  func(ctx context.Context) (deliver func())
	Fail  func(err error)

	enqueuedAt time.Time
}

// Executor is a cooperative task scheduler with a bounded worker pool and
// an unbounded FIFO queue, so submitting never blocks the caller.
type Executor struct {
	workers   int
	collector *metrics.Collector
	prom      *platformmetrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
	blocking  *semaphore.Weighted
	now       func() time.Time

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*Task
	closed  bool
	started bool

	active atomic.Int64
	panics atomic.Int64

	wg         sync.WaitGroup
	blockingWg sync.WaitGroup
}

// Option configures the Executor.
type Option func(*Executor)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithBlockingPoolSize bounds how many blocking jobs (KDFs, key
// generation) run at once.
func WithBlockingPoolSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.blocking = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithPrometheus mirrors command timings into Prometheus histograms.
func WithPrometheus(m *platformmetrics.Metrics) Option {
	return func(e *Executor) {
		e.prom = m
	}
}

// WithTracer sets the span tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates an executor. Call Start before submitting work.
func New(collector *metrics.Collector, opts ...Option) *Executor {
	e := &Executor{
		workers:   4,
		collector: collector,
		tracer:    tracer.NewNoop(),
		blocking:  semaphore.NewWeighted(2),
		now:       time.Now,
	}
	e.cond = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	if e.collector == nil {
		e.collector = metrics.New()
	}
	return e
}

// Start launches the workers.
func (e *Executor) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	for range e.workers {
		e.wg.Add(1)
		go e.run()
	}
}

// Submit enqueues a task. It fails with CommonInvalidState once the
// executor has been shut down.
func (e *Executor) Submit(t *Task) error {
	if t == nil || t.Exec == nil {
		return dErrors.New(dErrors.CodeInvalidState, "empty task")
	}
	t.enqueuedAt = e.now()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return dErrors.New(dErrors.CodeInvalidState, "executor is shut down")
	}
	e.queue = append(e.queue, t)
	e.mu.Unlock()
	e.cond.Signal()
	return nil
}

func (e *Executor) run() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.cond.Wait()
		}
		if len(e.queue) == 0 && e.closed {
			e.mu.Unlock()
			return
		}
		t := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()

		e.process(t)
	}
}

func (e *Executor) process(t *Task) {
	dequeued := e.now()
	waited := dequeued.Sub(t.enqueuedAt)
	e.collector.CmdLeftQueue(t.Index, waited)
	cmd, sub := t.Index.Tags()
	if e.prom != nil {
		e.prom.ObserveQueued(cmd, sub, waited)
	}

	e.active.Add(1)
	ctx, span := e.tracer.Start(context.Background(), tracer.SpanCommand,
		tracer.String(tracer.AttrCommand, cmd),
		tracer.String(tracer.AttrSubcommand, sub),
		tracer.Duration(tracer.AttrQueuedMs, waited),
	)
	deliver, panicErr := e.execute(ctx, t)
	span.End(panicErr)
	e.active.Add(-1)

	ran := e.now().Sub(dequeued)
	e.collector.CmdExecuted(t.Index, ran)
	if e.prom != nil {
		e.prom.ObserveExecuted(cmd, sub, ran)
	}

	switch {
	case panicErr != nil:
		if t.Fail != nil {
			e.guard(t.Index, func() { t.Fail(panicErr) })
		}
	case deliver != nil:
		e.guard(t.Index, deliver)
	}
}

func (e *Executor) execute(ctx context.Context, t *Task) (deliver func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			err = e.recordPanic(t.Index, r)
			deliver = nil
		}
	}()
	return t.Exec(ctx), nil
}

// guard runs a continuation. A panicking host callback must not take the
// worker down with it.
func (e *Executor) guard(idx command.Index, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			_ = e.recordPanic(idx, r)
		}
	}()
	fn()
}

func (e *Executor) recordPanic(idx command.Index, r any) error {
	e.panics.Add(1)
	if e.prom != nil {
		e.prom.IncrementPanics()
	}
	if e.logger != nil {
		e.logger.Error("command panicked",
			"command", idx.String(),
			"panic", fmt.Sprint(r),
			"stack", string(debug.Stack()),
		)
	}
	return dErrors.Newf(dErrors.CodeInvalidState, "command %s panicked: %v", idx, r)
}

// Offload runs fn on the blocking subpool, outside the cooperative
// workers, and calls done with its error when it finishes. done usually
// submits the Continue phase of a command.
func (e *Executor) Offload(fn func() error, done func(error)) {
	e.blockingWg.Add(1)
	go func() {
		defer e.blockingWg.Done()
		if err := e.blocking.Acquire(context.Background(), 1); err != nil {
			done(dErrors.Wrap(err, dErrors.CodeInvalidState, "blocking pool unavailable"))
			return
		}
		var err error
		func() {
			defer e.blocking.Release(1)
			defer func() {
				if r := recover(); r != nil {
					err = e.recordPanic(command.Exit, r)
				}
			}()
			err = fn()
		}()
		done(err)
	}()
}

// Stats snapshots the worker pool.
func (e *Executor) Stats() metrics.PoolStats {
	e.mu.Lock()
	queued := len(e.queue)
	e.mu.Unlock()
	return metrics.PoolStats{
		Active: e.active.Load(),
		Queued: int64(queued),
		Max:    int64(e.workers),
		Panics: e.panics.Load(),
	}
}

// Collector exposes the dense counters the executor updates.
func (e *Executor) Collector() *metrics.Collector {
	return e.collector
}

// Shutdown stops intake, lets queued tasks drain and waits for the
// workers, or until ctx is done. The Exit command marks the boundary.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.blockingWg.Wait()

	exitDone := make(chan struct{})
	if err := e.Submit(&Task{
		Index: command.Exit,
		Exec:  func(context.Context) func() { return func() { close(exitDone) } },
	}); err != nil {
		return nil
	}

	e.mu.Lock()
	e.closed = true
	started := e.started
	e.mu.Unlock()
	e.cond.Broadcast()
	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		<-exitDone
		return nil
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeInvalidState, "executor drain interrupted")
	}
}
