package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf, false, slog.LevelInfo)
	logger.Info("hello", "k", "v")
	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "k=v")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf, false, slog.LevelWarn)
	logger.Debug("should be suppressed")
	logger.Warn("should appear")
	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "should appear")
}

func TestAppendCtxCarriesAttrsIntoRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := Logger(&buf, true, slog.LevelInfo)
	ctx := AppendCtx(context.Background(), slog.String("request_id", "abc123"))
	logger.InfoContext(ctx, "handled request")
	out := buf.String()
	assert.True(t, strings.Contains(out, `"request_id":"abc123"`))
}

func TestAppendCtxIsCumulative(t *testing.T) {
	ctx := AppendCtx(context.Background(), slog.String("a", "1"))
	ctx = AppendCtx(ctx, slog.String("b", "2"))

	var buf bytes.Buffer
	logger := Logger(&buf, true, slog.LevelInfo)
	logger.InfoContext(ctx, "msg")
	out := buf.String()
	assert.Contains(t, out, `"a":"1"`)
	assert.Contains(t, out, `"b":"2"`)
}
