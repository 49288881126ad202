// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package core

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewULID generates a new ULID. IDs from one process sort in creation order,
// so the latest match is also the greatest id.
func NewULID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// NewMatchID returns a fresh match id.
func NewMatchID() string {
	return NewULID().String()
}

// ParseMatchID checks that s is a match id and returns when it was minted.
func ParseMatchID(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, oops.Code("INVALID_MATCH_ID").With("match_id", s).Wrap(err)
	}
	return ulid.Time(id.Time()), nil
}
