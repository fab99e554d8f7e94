package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	previous := globalLogger
	t.Cleanup(func() { globalLogger = previous })
	globalLogger = nil
}

func TestGet_BeforeInitReturnsNop(t *testing.T) {
	resetGlobal(t)

	l := Get()
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestInit_Development(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Init("development", "debug"))

	l := Get()
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestInit_ProductionRespectsLevel(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Init("production", "warn"))

	l := Get()
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestInit_InvalidLevelFallsBackToDefault(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Init("production", "loud"))

	assert.True(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Get().Core().Enabled(zapcore.DebugLevel))
}

func TestNamed_AddsComponent(t *testing.T) {
	resetGlobal(t)

	assert.NotNil(t, Named("jobs"))
	Sync()
}
