// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("FLUSH_FAILED").
		With("match_id", "m1").
		Errorf("write failed")

	errutil.LogError(logger, "tick failed", err)

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "tick failed", entry["msg"])
	assert.Equal(t, "FLUSH_FAILED", entry["code"])
	require.IsType(t, map[string]any{}, entry["context"])
	assert.Equal(t, "m1", entry["context"].(map[string]any)["match_id"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "tick failed", errors.New("standard error"))

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}

func TestLogErrorContext_UsesDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	errutil.LogErrorContext(context.Background(), "archive game logs", oops.Code("LOG_ARCHIVE_FAILED").Errorf("down"))

	entry := decode(t, &buf)
	assert.Equal(t, "archive game logs", entry["msg"])
	assert.Equal(t, "LOG_ARCHIVE_FAILED", entry["code"])
}

func TestHasCode(t *testing.T) {
	assert.True(t, errutil.HasCode(oops.Code("MATCH_EXISTS").Errorf("dup"), "MATCH_EXISTS"))
	assert.False(t, errutil.HasCode(oops.Code("MATCH_EXISTS").Errorf("dup"), "LOAD_FAILED"))
	assert.False(t, errutil.HasCode(errors.New("plain"), "MATCH_EXISTS"))
}
