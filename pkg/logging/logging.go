// Package logging wires log/slog up the way the CLI expects it: a plain
// text handler for interactive use, a JSON handler for shipped logs, and
// a context helper for attaching request-scoped attributes that every
// subsequent log line in that context should carry.
package logging

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger builds the process-wide slog.Logger. When json is true, records
// are emitted as JSON (suitable for piping to a log aggregator); otherwise
// a human-readable text handler is used.
func Logger(w io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{Handler: handler})
}

// RotatingLogger is Logger backed by a size/age-rotated file, for long-running
// services that shouldn't grow an unbounded log file.
func RotatingLogger(path string, json bool, level slog.Level) *slog.Logger {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	return Logger(writer, json, level)
}

type ctxKey struct{}

// AppendCtx returns a context that carries additional slog attributes.
// Any logger built by Logger/RotatingLogger merges these into every
// record logged with that context, on top of attributes from an outer
// AppendCtx call already present on ctx.
func AppendCtx(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	existing, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// ctxHandler injects attributes stashed via AppendCtx into every record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}
