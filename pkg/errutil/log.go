// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package errutil logs and inspects oops errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level. Codes and context of oops errors are
// logged as separate attributes.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, attrs(err)...)
}

// LogErrorContext logs err on the default logger, keeping trace correlation
// from ctx.
func LogErrorContext(ctx context.Context, msg string, err error) {
	slog.Default().ErrorContext(ctx, msg, attrs(err)...)
}

// HasCode reports whether err is an oops error carrying code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	c, _ := oopsErr.Code().(string)
	return c == code
}

func attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	out := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		out = append(out, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		out = append(out, "context", ctx)
	}
	return out
}
