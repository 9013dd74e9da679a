package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"indy/internal/command"
	"indy/internal/metrics"
	dErrors "indy/pkg/domain-errors"
)

type ExecutorSuite struct {
	suite.Suite
	exec *Executor
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorSuite))
}

func (s *ExecutorSuite) SetupTest() {
	s.exec = New(metrics.New(), WithWorkers(3), WithBlockingPoolSize(1))
	s.exec.Start()
}

func (s *ExecutorSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Require().NoError(s.exec.Shutdown(ctx))
}

func wait[T any](ch <-chan T) T {
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		panic("timed out waiting for delivery")
	}
}

func (s *ExecutorSuite) TestRunDeliversOnce() {
	s.Run("success value", func() {
		out := make(chan string, 2)
		Run(s.exec, command.IssuerCommandCreateSchema, func(context.Context) (string, error) {
			return "schema", nil
		}, func(v string, err error) {
			s.NoError(err)
			out <- v
		})
		s.Equal("schema", wait(out))
	})

	s.Run("error leaves output at zero value", func() {
		type res struct {
			v   int
			err error
		}
		out := make(chan res, 2)
		Run(s.exec, command.ProverCommandCreateMasterSecret, func(context.Context) (int, error) {
			return 42, dErrors.New(dErrors.CodeMasterSecretDuplicateName, "dup")
		}, func(v int, err error) {
			out <- res{v, err}
		})
		r := wait(out)
		s.Zero(r.v)
		s.True(dErrors.HasCode(r.err, dErrors.CodeMasterSecretDuplicateName))
	})
}

func (s *ExecutorSuite) TestMetricsRecordedBeforeDelivery() {
	c := s.exec.Collector()
	idx := command.VerifierCommandGenerateNonce
	seen := make(chan metrics.Counters, 1)
	Run(s.exec, idx, func(context.Context) (struct{}, error) {
		return struct{}{}, nil
	}, func(struct{}, error) {
		seen <- c.Get(idx)
	})
	got := wait(seen)
	s.EqualValues(1, got.QueuedCount)
	s.EqualValues(1, got.ExecutedCount)
}

func (s *ExecutorSuite) TestPanicBecomesInvalidState() {
	errs := make(chan error, 1)
	Run(s.exec, command.CryptoCommandCryptoSign, func(context.Context) (string, error) {
		panic("boom")
	}, func(_ string, err error) {
		errs <- err
	})
	err := wait(errs)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	s.EqualValues(1, s.exec.Stats().Panics)

	s.Run("pool survives the panic", func() {
		out := make(chan int, 1)
		Run(s.exec, command.CryptoCommandCryptoVerify, func(context.Context) (int, error) {
			return 7, nil
		}, func(v int, _ error) { out <- v })
		s.Equal(7, wait(out))
	})
}

func (s *ExecutorSuite) TestPanickingCallbackIsContained() {
	Run(s.exec, command.PairwiseCommandListPairwise, func(context.Context) (int, error) {
		return 1, nil
	}, func(int, error) { panic("host callback") })

	out := make(chan int, 1)
	Run(s.exec, command.PairwiseCommandListPairwise, func(context.Context) (int, error) {
		return 2, nil
	}, func(v int, _ error) { out <- v })
	s.Equal(2, wait(out))
}

func (s *ExecutorSuite) TestThenMetersBothPhases() {
	c := s.exec.Collector()
	out := make(chan string, 1)
	Then(s.exec, command.PoolCommandOpen, func(context.Context) (int, error) {
		return 3, nil
	}, command.PoolCommandOpenAck, func(_ context.Context, n int) (string, error) {
		if n != 3 {
			return "", errors.New("wrong input")
		}
		return "opened", nil
	}, func(v string, err error) {
		s.NoError(err)
		out <- v
	})
	s.Equal("opened", wait(out))
	s.EqualValues(1, c.Get(command.PoolCommandOpen).ExecutedCount)
	s.EqualValues(1, c.Get(command.PoolCommandOpenAck).ExecutedCount)

	s.Run("first phase error reaches caller through second phase", func() {
		errs := make(chan error, 1)
		Then(s.exec, command.PoolCommandRefresh, func(context.Context) (int, error) {
			return 0, dErrors.New(dErrors.CodePoolLedgerTimeout, "timeout")
		}, command.PoolCommandRefreshAck, func(context.Context, int) (int, error) {
			s.Fail("second phase must not run")
			return 0, nil
		}, func(_ int, err error) { errs <- err })
		s.True(dErrors.HasCode(wait(errs), dErrors.CodePoolLedgerTimeout))
		s.EqualValues(1, c.Get(command.PoolCommandRefreshAck).ExecutedCount)
	})
}

func (s *ExecutorSuite) TestOffloadRunsWorkOffTheWorkers() {
	c := s.exec.Collector()
	out := make(chan []byte, 1)
	Offload(s.exec, command.WalletCommandCreate, func(context.Context) (string, error) {
		return "passphrase", nil
	}, func(p string) ([]byte, error) {
		return []byte(p + "-derived"), nil
	}, command.WalletCommandCreateContinue, func(_ context.Context, key []byte) ([]byte, error) {
		return key, nil
	}, func(v []byte, err error) {
		s.NoError(err)
		out <- v
	})
	s.Equal("passphrase-derived", string(wait(out)))
	s.EqualValues(1, c.Get(command.WalletCommandCreateContinue).ExecutedCount)

	s.Run("work error skips continuation body", func() {
		errs := make(chan error, 1)
		Offload(s.exec, command.WalletCommandOpen, func(context.Context) (int, error) {
			return 1, nil
		}, func(int) (int, error) {
			return 0, dErrors.New(dErrors.CodeWalletAccessFailed, "bad key")
		}, command.WalletCommandOpenContinue, func(context.Context, int) (int, error) {
			s.Fail("continuation must not run")
			return 0, nil
		}, func(_ int, err error) { errs <- err })
		s.True(dErrors.HasCode(wait(errs), dErrors.CodeWalletAccessFailed))
	})
}

func (s *ExecutorSuite) TestQueueCountCoversExecuteCount() {
	c := s.exec.Collector()
	const n = 50
	var wg sync.WaitGroup
	var delivered atomic.Int32
	wg.Add(n)
	for range n {
		Run(s.exec, command.IssuerCommandCreateSchema, func(context.Context) (int, error) {
			cnt := c.Get(command.IssuerCommandCreateSchema)
			s.GreaterOrEqual(cnt.QueuedCount, cnt.ExecutedCount)
			return 0, nil
		}, func(int, error) {
			delivered.Add(1)
			wg.Done()
		})
	}
	wg.Wait()
	got := c.Get(command.IssuerCommandCreateSchema)
	s.EqualValues(n, got.QueuedCount)
	s.EqualValues(n, got.ExecutedCount)
	s.EqualValues(n, delivered.Load())
}

func TestSubmitAfterShutdownFails(t *testing.T) {
	e := New(nil)
	e.Start()
	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := e.Collector().Get(command.Exit).ExecutedCount; got != 1 {
		t.Fatalf("exit executed %d times, want 1", got)
	}

	var got error
	Run(e, command.MetricsCommandCollectMetrics, func(context.Context) (int, error) {
		return 0, nil
	}, func(_ int, err error) { got = err })
	if !dErrors.HasCode(got, dErrors.CodeInvalidState) {
		t.Fatalf("expected invalid state, got %v", got)
	}
}
