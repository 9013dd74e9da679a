package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	lvl, on := ParseLevel("debug")
	assert.True(t, on)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, on = ParseLevel("TRACE")
	assert.True(t, on)
	assert.Equal(t, LevelTrace, lvl)

	_, on = ParseLevel("off")
	assert.False(t, on)

	lvl, on = ParseLevel("nonsense")
	assert.True(t, on)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown", "wallet", "w1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"wallet":"w1"`)

	buf.Reset()
	NewWithWriter(&buf, "off").Error("dropped")
	assert.Empty(t, buf.String())
}
