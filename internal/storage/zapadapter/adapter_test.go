package zapadapter

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextID(t *testing.T) {
	_, ok := IDFromContext(context.Background())
	require.False(t, ok)

	ctx := NewContextWithID(context.Background(), "c0ffee")
	id, ok := IDFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "c0ffee", id)
}

func TestSugarAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sugar := zap.New(core).Sugar()

	Sugar(context.Background(), sugar).Debug("no id")
	Sugar(NewContextWithID(context.Background(), "abc"), sugar).Debug("with id")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	require.Empty(t, entries[0].Context)
	require.Equal(t, "abc", entries[1].ContextMap()[requestIDField])
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogger(zap.New(core))
	ctx := NewContextWithID(context.Background(), "req-1")

	l.Log(ctx, pgx.LogLevelDebug, "debug", map[string]interface{}{"sql": "select 1"})
	l.Log(ctx, pgx.LogLevelInfo, "info", nil)
	l.Log(ctx, pgx.LogLevelWarn, "warn", nil)
	l.Log(ctx, pgx.LogLevelError, "error", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, "select 1", entries[0].ContextMap()["sql"])
	require.Equal(t, zapcore.InfoLevel, entries[1].Level)
	require.Equal(t, zapcore.WarnLevel, entries[2].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	for _, e := range entries {
		require.Equal(t, "req-1", e.ContextMap()[requestIDField])
	}
}
