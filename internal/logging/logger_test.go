package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).Named("engine").With(String("selection", "abc"))

	log.Warn("feature skipped", Int("index", 3), Err(errors.New("bad ring")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "feature skipped", entry.Message)
	assert.Equal(t, "engine", entry.LoggerName)
	ctx := entry.ContextMap()
	assert.Equal(t, "abc", ctx["selection"])
	assert.EqualValues(t, 3, ctx["index"])
	assert.Equal(t, "bad ring", ctx["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("whatever"))
}

func TestNewDefaults(t *testing.T) {
	log, err := New(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Debug("ok")
}

func TestErrNil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "<nil>", f.Value)
}
