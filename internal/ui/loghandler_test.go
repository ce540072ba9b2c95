package ui_test

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/fritzkink/chuid/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	h := ui.NewLogHandler(&buf, slog.LevelInfo)

	ts := time.Date(2024, time.March, 5, 14, 30, 9, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "chuid started", 0)
	require.NoError(t, h.Handle(context.Background(), r))

	assert.Equal(t, "Tue Mar 05 14:30:09 2024 INFO: chuid started\n", buf.String())
}

func TestLogHandlerSeverities(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "INFO"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARNING"},
		{slog.LevelError, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		h := ui.NewLogHandler(&buf, slog.LevelDebug)
		r := slog.NewRecord(time.Now(), tt.level, "msg", 0)
		require.NoError(t, h.Handle(context.Background(), r))
		assert.Regexp(t, regexp.MustCompile(`^\w{3} \w{3} \d{2} \d{2}:\d{2}:\d{2} \d{4} `+tt.want+`: msg\n$`), buf.String())
	}
}

func TestLogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ui.NewLogHandler(&buf, slog.LevelInfo))

	logger.With("worker", 3).Info("handover", "moved", 5)

	assert.Contains(t, buf.String(), "INFO: handover worker=3 moved=5")
}

func TestLogHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ui.NewLogHandler(&buf, slog.LevelWarn))

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "WARNING: kept")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	ha := ui.NewLogHandler(&a, slog.LevelInfo)
	hb := ui.NewLogHandler(&b, slog.LevelInfo)

	logger := slog.New(ui.NewMultiHandler(ha, hb))
	logger.Info("both sides")

	assert.Contains(t, a.String(), "both sides")
	assert.Contains(t, b.String(), "both sides")
}

func TestMultiHandlerLevelFiltering(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	debugH := ui.NewLogHandler(&debugBuf, slog.LevelDebug)
	warnH := ui.NewLogHandler(&warnBuf, slog.LevelWarn)

	logger := slog.New(ui.NewMultiHandler(debugH, warnH))
	logger.Info("info only")
	logger.Warn("warn both")

	assert.Contains(t, debugBuf.String(), "info only")
	assert.Contains(t, debugBuf.String(), "warn both")
	assert.NotContains(t, warnBuf.String(), "info only")
	assert.Contains(t, warnBuf.String(), "warn both")
}

func TestMultiHandlerEnabled(t *testing.T) {
	warnH := ui.NewLogHandler(&bytes.Buffer{}, slog.LevelWarn)
	errH := ui.NewLogHandler(&bytes.Buffer{}, slog.LevelError)

	m := ui.NewMultiHandler(warnH, errH)
	assert.False(t, m.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, m.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, m.Enabled(context.Background(), slog.LevelError))
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := ui.NewLogHandler(&buf, slog.LevelInfo)

	logger := slog.New(ui.NewMultiHandler(h).WithAttrs([]slog.Attr{slog.Int("run", 7)}))
	logger.Info("tagged")

	assert.Contains(t, buf.String(), "tagged run=7")
}
