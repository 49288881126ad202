// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package core

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendLogs(t *testing.T, store *MemoryEventStore, stream string, n int) []ulid.ULID {
	t.Helper()
	ids := make([]ulid.ULID, 0, n)
	for range n {
		event := Event{
			ID:        NewULID(),
			Stream:    stream,
			Type:      EventTypeGameLog,
			MatchID:   "m1",
			Timestamp: time.Now(),
			Payload:   []byte(`{}`),
		}
		ids = append(ids, event.ID)
		require.NoError(t, store.Append(context.Background(), event))
	}
	return ids
}

func TestMemoryEventStore_Replay(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()
	ids := appendLogs(t, store, LogStream("m1"), 5)

	events, err := store.Replay(ctx, LogStream("m1"), ulid.ULID{}, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	events, err = store.Replay(ctx, LogStream("m1"), ids[2], 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ids[3], events[0].ID)
}

func TestMemoryEventStore_Replay_EmptyStream(t *testing.T) {
	store := NewMemoryEventStore()

	events, err := store.Replay(context.Background(), "nonexistent", ulid.ULID{}, 10)
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestMemoryEventStore_Replay_AfterIDNotFound(t *testing.T) {
	store := NewMemoryEventStore()
	appendLogs(t, store, LogStream("m1"), 3)

	events, err := store.Replay(context.Background(), LogStream("m1"), NewULID(), 10)
	require.NoError(t, err)
	assert.Len(t, events, 3, "unknown afterID replays from the start")
}

func TestMemoryEventStore_Tail(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()
	ids := appendLogs(t, store, LogStream("m1"), 5)

	events, err := store.Tail(ctx, LogStream("m1"), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ids[3], events[0].ID)
	assert.Equal(t, ids[4], events[1].ID)

	events, err = store.Tail(ctx, LogStream("m1"), 50)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestMemoryEventStore_LastEventID(t *testing.T) {
	store := NewMemoryEventStore()
	ctx := context.Background()

	_, err := store.LastEventID(ctx, "empty")
	require.ErrorIs(t, err, ErrStreamEmpty)

	ids := appendLogs(t, store, LogStream("m1"), 2)
	last, err := store.LastEventID(ctx, LogStream("m1"))
	require.NoError(t, err)
	assert.Equal(t, ids[1], last)
}
