// Package metrics keeps the dense per-command counters reported by
// collect_metrics.
package metrics

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"indy/internal/command"
	dErrors "indy/pkg/domain-errors"
)

// Metric names in the collect document.
const (
	MetricCommandsCount      = "commands_count"
	MetricCommandsDurationMs = "commands_duration_ms"
	MetricThreadpoolThreads  = "threadpool_threads_count"
	MetricWalletCount        = "wallet_count"
)

// Collector holds four dense arrays indexed by command.Index. Updates are
// relaxed atomics, so a snapshot may not be consistent across counters.
type Collector struct {
	queuedCount      [command.Count]atomic.Uint64
	queuedDuration   [command.Count]atomic.Uint64
	executedCount    [command.Count]atomic.Uint64
	executedDuration [command.Count]atomic.Uint64
}

// New creates an empty Collector.
func New() *Collector {
	return &Collector{}
}

// CmdLeftQueue accounts for a command being dequeued after waiting d.
func (c *Collector) CmdLeftQueue(idx command.Index, d time.Duration) {
	if !idx.Valid() {
		return
	}
	c.queuedCount[idx].Add(1)
	c.queuedDuration[idx].Add(uint64(d.Milliseconds()))
}

// CmdExecuted accounts for a command that ran for d.
func (c *Collector) CmdExecuted(idx command.Index, d time.Duration) {
	if !idx.Valid() {
		return
	}
	c.executedCount[idx].Add(1)
	c.executedDuration[idx].Add(uint64(d.Milliseconds()))
}

// Counters is one command's slot.
type Counters struct {
	QueuedCount        uint64
	QueuedDurationMs   uint64
	ExecutedCount      uint64
	ExecutedDurationMs uint64
}

// Get returns the counters for idx.
func (c *Collector) Get(idx command.Index) Counters {
	if !idx.Valid() {
		return Counters{}
	}
	return Counters{
		QueuedCount:        c.queuedCount[idx].Load(),
		QueuedDurationMs:   c.queuedDuration[idx].Load(),
		ExecutedCount:      c.executedCount[idx].Load(),
		ExecutedDurationMs: c.executedDuration[idx].Load(),
	}
}

// PoolStats is the worker-pool state included in a collect snapshot.
type PoolStats struct {
	Active int64
	Queued int64
	Max    int64
	Panics int64
}

// WalletStats is the wallet-service state included in a collect snapshot.
type WalletStats struct {
	Opened           int
	OpenedIDs        int
	PendingForOpen   int
	PendingForImport int
}

// Value is one tagged metric sample.
type Value struct {
	Tags  map[string]string `json:"tags"`
	Value uint64            `json:"value"`
}

func labelled(label string, v int64) Value {
	if v < 0 {
		v = 0
	}
	return Value{Tags: map[string]string{"label": label}, Value: uint64(v)}
}

// Collect emits the tagged-metric JSON document.
func (c *Collector) Collect(pool PoolStats, wallet WalletStats) (string, error) {
	doc := map[string][]Value{
		MetricThreadpoolThreads: {
			labelled("active", pool.Active),
			labelled("queued", pool.Queued),
			labelled("max", pool.Max),
			labelled("panic", pool.Panics),
		},
		MetricWalletCount: {
			labelled("opened", int64(wallet.Opened)),
			labelled("opened_ids", int64(wallet.OpenedIDs)),
			labelled("pending_for_import", int64(wallet.PendingForImport)),
			labelled("pending_for_open", int64(wallet.PendingForOpen)),
		},
	}

	counts := make([]Value, 0, 2*command.Count)
	durations := make([]Value, 0, 2*command.Count)
	for i := command.Count - 1; i >= 0; i-- {
		idx := command.Index(i)
		cnt := c.Get(idx)
		executed := tags(idx, command.StageExecuted)
		queued := tags(idx, command.StageQueued)
		counts = append(counts,
			Value{Tags: executed, Value: cnt.ExecutedCount},
			Value{Tags: queued, Value: cnt.QueuedCount},
		)
		durations = append(durations,
			Value{Tags: executed, Value: cnt.ExecutedDurationMs},
			Value{Tags: queued, Value: cnt.QueuedDurationMs},
		)
	}
	doc[MetricCommandsCount] = counts
	doc[MetricCommandsDurationMs] = durations

	out, err := json.Marshal(doc)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeIOError, "unable to encode metrics")
	}
	return string(out), nil
}

func tags(idx command.Index, stage command.Stage) map[string]string {
	cmd, sub := idx.Tags()
	return map[string]string{
		"command":    cmd,
		"subcommand": sub,
		"stage":      string(stage),
	}
}
