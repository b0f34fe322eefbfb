package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	require.Equal(t, slog.LevelDebug, LevelFromString("DEBUG"))
	require.Equal(t, slog.LevelInfo, LevelFromString(" info "))
	require.Equal(t, slog.LevelError, LevelFromString("error"))
	require.Equal(t, slog.LevelWarn, LevelFromString("bogus"))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug)

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Debug("discovered skills", "count", 3)

	require.Contains(t, buf.String(), "discovered skills")
	require.Contains(t, buf.String(), "count=3")
}

func TestFromContextWithoutLoggerDiscards(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	require.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
