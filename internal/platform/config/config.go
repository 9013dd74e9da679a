package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

// Environment variables recognised by the library. Anything else is ignored.
const (
	EnvLogLevel            = "INDY_LOG_LEVEL"
	EnvDefaultGenesisPath  = "INDY_DEFAULT_GENESIS_TXNS_PATH"
	EnvPoolProtocolVersion = "INDY_POOL_PROTOCOL_VERSION"
)

// Runtime captures process-wide library configuration.
type Runtime struct {
	LogLevel            string
	DefaultGenesisPath  string
	PoolProtocolVersion int

	// Root directory for wallets, pool configs and tails files.
	HomeDir string

	Workers            int
	BlockingPoolSize   int
	PoolTimeout        time.Duration
	PoolExtTimeout     time.Duration
	PoolConnTimeout    time.Duration
	NodeRetryBudget    int
	FreshnessThreshold time.Duration
}

// Default protocol version used when the environment does not pin one.
const DefaultProtocolVersion = 2

// Default returns configuration without looking at the environment.
func Default() Runtime {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	return Runtime{
		LogLevel:            "info",
		PoolProtocolVersion: DefaultProtocolVersion,
		HomeDir:             filepath.Join(home, ".indy_client"),
		Workers:             workers,
		BlockingPoolSize:    4,
		PoolTimeout:         20 * time.Second,
		PoolExtTimeout:      60 * time.Second,
		PoolConnTimeout:     10 * time.Second,
		NodeRetryBudget:     3,
		FreshnessThreshold:  300 * time.Second,
	}
}

// FromEnv builds a Runtime config from environment variables so callers stay lean.
func FromEnv() Runtime {
	cfg := Default()
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	cfg.DefaultGenesisPath = os.Getenv(EnvDefaultGenesisPath)
	if v := os.Getenv(EnvPoolProtocolVersion); v != "" {
		if n, err := strconv.Atoi(v); err == nil && ValidProtocolVersion(n) {
			cfg.PoolProtocolVersion = n
		}
	}
	return cfg
}

// ValidProtocolVersion reports whether n is a supported pool protocol version.
func ValidProtocolVersion(n int) bool {
	return n == 1 || n == 2
}

// WalletsDir is where file-backed wallets live.
func (r Runtime) WalletsDir() string { return filepath.Join(r.HomeDir, "wallet") }

// PoolsDir is where pool ledger configs live.
func (r Runtime) PoolsDir() string { return filepath.Join(r.HomeDir, "pool") }

// TailsDir is the default blob writer root.
func (r Runtime) TailsDir() string { return filepath.Join(r.HomeDir, "tails") }
