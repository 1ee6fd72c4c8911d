// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/parquet2csv/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelWarn, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warning ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup(t *testing.T) {
	t.Run("text filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, cleanup, err := Setup(types.LogConfig{Level: "info"}, &buf)
		require.NoError(t, err)
		defer cleanup()

		logger.Debug("hidden")
		logger.Info("converted", "rows", 3)
		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "msg=converted")
		assert.Contains(t, out, "rows=3")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, cleanup, err := Setup(types.LogConfig{Level: "warn", Format: "json"}, &buf)
		require.NoError(t, err)
		defer cleanup()

		logger.Warn("slow file", "path", "a.parquet")
		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "slow file", rec["msg"])
		assert.Equal(t, "a.parquet", rec["path"])
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, err := Setup(types.LogConfig{Format: "xml"}, &bytes.Buffer{})
		require.Error(t, err)
	})
}

func TestMultiHandler(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(h).With("run", "r1")
	logger.Info("only debug sink")
	logger.Warn("both sinks")

	assert.Contains(t, debugBuf.String(), "only debug sink")
	assert.Contains(t, debugBuf.String(), "run=r1")
	assert.NotContains(t, warnBuf.String(), "only debug sink")
	assert.Contains(t, warnBuf.String(), "both sinks")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
