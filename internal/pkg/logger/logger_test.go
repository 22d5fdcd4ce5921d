package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("chatty"))
}

func TestInit_InstallsGlobalLogger(t *testing.T) {
	prev := globalLogger
	t.Cleanup(func() { globalLogger = prev })

	zl, err := Init("warn")
	require.NoError(t, err)
	require.NotNil(t, zl)
	assert.True(t, zl.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, zl.Core().Enabled(zapcore.InfoLevel))
	assert.NotNil(t, globalLogger)

	assert.NotPanics(t, func() {
		NewComponentLogger("test").Info("hello", "k", "v")
		NewNopLogger().Error("discarded")
	})
}
