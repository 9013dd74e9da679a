// Package anoncreds implements the issuer, prover and verifier commands of
// anonymous credentials on top of the CL signature and revocation
// primitives.
package anoncreds

import (
	"encoding/json"
	"log/slog"
	"math/big"
	"time"

	"indy/internal/anoncreds/cl"
	dErrors "indy/pkg/domain-errors"
)

type options struct {
	logger      *slog.Logger
	modulusBits int
	now         func() time.Time
}

// Option configures the issuer, prover and verifier services.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithModulusBits sets the size of generated CL moduli.
func WithModulusBits(bits int) Option {
	return func(o *options) {
		o.modulusBits = bits
	}
}

// WithClock replaces the clock used for registry timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default(), modulusBits: cl.DefaultModulusBits, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidState, "encode anoncreds entity")
	}
	return string(raw), nil
}

func parseDecimal(s, what string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInvalidStructure, "%s %q is not a decimal integer", what, s)
	}
	return v, nil
}

// GenerateNonce returns a fresh 80-bit nonce as a decimal string.
func GenerateNonce() string {
	return cl.NewNonce().String()
}
