// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error with the given code.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	oopsErr := requireOops(t, err)
	assert.Equal(t, code, oopsErr.Code(), "error: %v", err)
}

// AssertErrorContext asserts that err is an oops error with the given context key/value.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	ctx := requireOops(t, err).Context()
	if assert.Contains(t, ctx, key) {
		assert.Equal(t, value, ctx[key], "context %q", key)
	}
}

// AssertMatchError asserts err carries code and is attributed to matchID.
// Store, entity and runner failures all tag the match they were working on.
func AssertMatchError(t testing.TB, err error, code, matchID string) {
	t.Helper()
	AssertErrorCode(t, err, code)
	AssertErrorContext(t, err, "match_id", matchID)
}

// AssertTickError is AssertMatchError plus the tick the failure happened on.
func AssertTickError(t testing.TB, err error, code, matchID string, tickID int) {
	t.Helper()
	AssertMatchError(t, err, code, matchID)
	AssertErrorContext(t, err, "tick_id", tickID)
}

func requireOops(t testing.TB, err error) oops.OopsError {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	return oopsErr
}
