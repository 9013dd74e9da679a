package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus mirror of library activity. The dense
// per-command counters used by collect_metrics live in internal/metrics;
// these series exist for hosts that scrape a Prometheus registry.
type Metrics struct {
	CommandQueueLatency *prometheus.HistogramVec
	CommandExecLatency  *prometheus.HistogramVec
	CommandPanics       prometheus.Counter

	// Wallet metrics
	WalletsOpened prometheus.Gauge

	// Pool metrics
	LedgerRequests     *prometheus.CounterVec
	NodesBlacklisted   prometheus.Counter
	StateProofFailures prometheus.Counter
}

// New creates and registers all metrics on reg. A nil reg gets a private
// registry so several locators can coexist in one process (tests).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		CommandQueueLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indy_command_queue_seconds",
			Help:    "Time commands spend queued before a worker picks them up",
			Buckets: prometheus.DefBuckets,
		}, []string{"command", "subcommand"}),
		CommandExecLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indy_command_execute_seconds",
			Help:    "Time commands spend executing",
			Buckets: prometheus.DefBuckets,
		}, []string{"command", "subcommand"}),
		CommandPanics: factory.NewCounter(prometheus.CounterOpts{
			Name: "indy_command_panics_total",
			Help: "Total number of worker panics converted into errors",
		}),
		WalletsOpened: factory.NewGauge(prometheus.GaugeOpts{
			Name: "indy_wallets_opened",
			Help: "Current number of open wallets",
		}),
		LedgerRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "indy_ledger_requests_total",
			Help: "Total number of ledger requests, labeled by kind and outcome",
		}, []string{"kind", "outcome"}),
		NodesBlacklisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "indy_pool_nodes_blacklisted_total",
			Help: "Total number of nodes blacklisted after a state proof failure",
		}),
		StateProofFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "indy_state_proof_failures_total",
			Help: "Total number of read replies rejected by state proof verification",
		}),
	}
}

// ObserveQueued records queue latency for a command.
func (m *Metrics) ObserveQueued(command, subcommand string, d time.Duration) {
	m.CommandQueueLatency.WithLabelValues(command, subcommand).Observe(d.Seconds())
}

// ObserveExecuted records execution latency for a command.
func (m *Metrics) ObserveExecuted(command, subcommand string, d time.Duration) {
	m.CommandExecLatency.WithLabelValues(command, subcommand).Observe(d.Seconds())
}

// IncrementPanics records a recovered worker panic.
func (m *Metrics) IncrementPanics() {
	m.CommandPanics.Inc()
}

// IncrementWalletsOpened tracks a newly opened wallet.
func (m *Metrics) IncrementWalletsOpened() {
	m.WalletsOpened.Inc()
}

// DecrementWalletsOpened tracks a closed wallet.
func (m *Metrics) DecrementWalletsOpened() {
	m.WalletsOpened.Dec()
}

// IncrementLedgerRequests counts ledger requests by kind (read|write|action) and outcome.
func (m *Metrics) IncrementLedgerRequests(kind, outcome string) {
	m.LedgerRequests.WithLabelValues(kind, outcome).Inc()
}

// IncrementNodesBlacklisted counts a node excluded from a pool handle.
func (m *Metrics) IncrementNodesBlacklisted() {
	m.NodesBlacklisted.Inc()
}

// IncrementStateProofFailures counts a rejected read reply.
func (m *Metrics) IncrementStateProofFailures() {
	m.StateProofFailures.Inc()
}
