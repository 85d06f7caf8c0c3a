package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestTimeLogsFailures(t *testing.T) {
	logs := observe(t)
	ctx := WithRequestID(context.Background(), "req-42")

	err := errors.New("upstream down")
	Time(ctx, "resolver.geocode")(&err)

	entries := logs.FilterMessage("operation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["req_id"])
	assert.Equal(t, "resolver.geocode", fields["op"])
	assert.Equal(t, "upstream down", fields["error"])
}

func TestTimeLogsSuccessAtDebug(t *testing.T) {
	logs := observe(t)

	var err error
	Time(context.Background(), "quote.Quote")(&err)

	entries := logs.FilterMessage("operation done").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "", entries[0].ContextMap()["req_id"])
}

func TestNewLogger(t *testing.T) {
	dev, err := NewLogger("development")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod, err := NewLogger("production")
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
}
