package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQueued("issuer", "create_schema", 2*time.Millisecond)
	m.ObserveExecuted("issuer", "create_schema", 5*time.Millisecond)
	m.IncrementPanics()
	m.IncrementWalletsOpened()
	m.IncrementWalletsOpened()
	m.DecrementWalletsOpened()
	m.IncrementLedgerRequests("read", "ok")
	m.IncrementNodesBlacklisted()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandPanics))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WalletsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerRequests.WithLabelValues("read", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CommandQueueLatency))
}

func TestNewWithNilRegistryDoesNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}
