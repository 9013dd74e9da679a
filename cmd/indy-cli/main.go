// Package main is a small command line front end over the indy library,
// mostly useful for poking at wallets and pools by hand.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"indy/internal/locator"
	"indy/internal/platform/config"
	dErrors "indy/pkg/domain-errors"
	"indy/pkg/indy"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		home     string
		logLevel string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:           "indy-cli",
		Short:         "Manage indy wallets, DIDs and pool configs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			locator.Configure(func(cfg *config.Runtime) {
				if home != "" {
					cfg.HomeDir = home
				}
				if logLevel != "" {
					cfg.LogLevel = logLevel
				}
			})
			callTimeout = timeout
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			indy.Shutdown(ctx)
		},
	}

	cmd.PersistentFlags().StringVar(&home, "home", "", "library home directory (default ~/.indy_client)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "off", "log level: off, error, warn, info, debug, trace")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for a single operation")

	cmd.AddCommand(
		walletCmd(),
		didCmd(),
		poolCmd(),
		schemaCmd(),
		nonceCmd(),
		metricsCmd(),
	)
	return cmd
}

var (
	callTimeout = 2 * time.Minute
	handles     atomic.Int32
)

func next() indy.CommandHandle {
	return indy.CommandHandle(handles.Add(1))
}

type result[T any] struct {
	code  indy.ErrorCode
	value T
}

// await starts an operation and blocks until its callback fires.
func await[T any](start func(done func(indy.ErrorCode, T)) indy.ErrorCode) (T, error) {
	var zero T
	ch := make(chan result[T], 1)
	if code := start(func(code indy.ErrorCode, v T) {
		ch <- result[T]{code: code, value: v}
	}); code != indy.Success {
		return zero, failure(code)
	}
	select {
	case r := <-ch:
		if r.code != indy.Success {
			return zero, failure(r.code)
		}
		return r.value, nil
	case <-time.After(callTimeout):
		return zero, fmt.Errorf("operation did not complete within %s", callTimeout)
	}
}

// awaitNone is await for operations without an output.
func awaitNone(start func(cb indy.Callback) indy.ErrorCode) error {
	_, err := await(func(done func(indy.ErrorCode, struct{})) indy.ErrorCode {
		return start(func(_ indy.CommandHandle, code indy.ErrorCode) {
			done(code, struct{}{})
		})
	})
	return err
}

// awaitString is await for operations returning one string.
func awaitString(start func(cb indy.StringCallback) indy.ErrorCode) (string, error) {
	return await(func(done func(indy.ErrorCode, string)) indy.ErrorCode {
		return start(func(_ indy.CommandHandle, code indy.ErrorCode, v string) {
			done(code, v)
		})
	})
}

func failure(code dErrors.Code) error {
	return fmt.Errorf("%s (%d)", code, int32(code))
}
