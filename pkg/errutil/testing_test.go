// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("CONFIG_INVALID").Errorf("world radius must be positive")
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("match_id", "01J").Errorf("match not found")
	errutil.AssertErrorContext(t, err, "match_id", "01J")
}

func TestAssertMatchError_WrappedFlush(t *testing.T) {
	cause := oops.Code("TX_BEGIN_FAILED").With("match_id", "01J").Errorf("connection refused")
	err := oops.With("pending", 3).Wrapf(cause, "flushing")
	errutil.AssertMatchError(t, err, "TX_BEGIN_FAILED", "01J")
}

func TestAssertTickError_MatchAndTick(t *testing.T) {
	err := oops.Code("TICK_FAILED").With("match_id", "01J").With("tick_id", 7).Errorf("boom")
	errutil.AssertTickError(t, err, "TICK_FAILED", "01J", 7)
}
