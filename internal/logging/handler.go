// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package logging provides structured logging with OpenTelemetry trace
// context and the running match attached to every record.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/trace"
)

// Formats accepted by Setup.
const (
	FormatJSON = "json"
	FormatText = "text"
)

type matchKey struct{}

// WithMatch returns a context whose log records carry match_id.
func WithMatch(ctx context.Context, matchID string) context.Context {
	return context.WithValue(ctx, matchKey{}, matchID)
}

// MatchFrom returns the match id stored by WithMatch.
func MatchFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(matchKey{}).(string)
	return id, ok && id != ""
}

// contextHandler adds service details, trace ids and the match to records.
type contextHandler struct {
	handler slog.Handler
	service string
	version string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}
	if id, ok := MatchFrom(ctx); ok && !hasAttr(r, "match_id") {
		r.AddAttrs(slog.String("match_id", id))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		found = a.Key == key
		return !found
	})
	return found
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{
		handler: h.handler.WithAttrs(attrs),
		service: h.service,
		version: h.version,
	}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
	}
}

// ParseLevel parses a level name such as "debug" or "warn".
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, oops.Code("CONFIG_INVALID").With("log_level", name).Wrap(err)
	}
	return level, nil
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if format == FormatText {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&contextHandler{
		handler: base,
		service: service,
		version: version,
	})
}

// SetDefault sets up and installs the default logger.
func SetDefault(service, version, format string, level slog.Level) {
	slog.SetDefault(Setup(service, version, format, level, nil))
}
