package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core, LevelInfo)

	l.Debug("hidden")
	l.Info("shown", String("node", "root"), Int("tick", 3))
	l.Warn("careful", Duration("took", time.Millisecond))
	l.Error("broken", Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "shown", entries[0].Message)
	assert.Equal(t, "root", entries[0].ContextMap()["node"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["tick"])
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestLoggerSetLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core, LevelError)

	l.Info("dropped")
	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("kept")

	l.SetLevel(LevelSilent)
	assert.Equal(t, LevelSilent, l.GetLevel())
	l.Error("dropped too")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestLoggerWith(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core, LevelDebug).With(String("agent", "a1"))
	l.Info("step")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a1", logs.All()[0].ContextMap()["agent"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	assert.Equal(t, LevelSilent, l.GetLevel())
	assert.NotPanics(t, func() { l.Error("ignored", Any("x", 1)) })
}
