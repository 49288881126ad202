// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package core

import (
	"context"
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"
)

// ErrStreamEmpty is returned when a stream has no events.
var ErrStreamEmpty = errors.New("stream is empty")

// EventStore archives envelopes so that late clients can catch up.
type EventStore interface {
	// Append archives a batch of envelopes, all or nothing.
	Append(ctx context.Context, events ...Event) error

	// Replay returns up to limit events from a stream, starting after afterID.
	// If afterID is zero ULID, starts from beginning.
	Replay(ctx context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error)

	// Tail returns the last limit events of a stream, oldest first.
	Tail(ctx context.Context, stream string, limit int) ([]Event, error)

	// LastEventID returns the most recent event ID for a stream.
	LastEventID(ctx context.Context, stream string) (ulid.ULID, error)
}

// MemoryEventStore is an in-memory EventStore.
type MemoryEventStore struct {
	mu      sync.RWMutex
	streams map[string][]Event
}

// NewMemoryEventStore creates a new in-memory event store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		streams: make(map[string][]Event),
	}
}

// Append archives events in the order given.
func (s *MemoryEventStore) Append(_ context.Context, events ...Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.streams[ev.Stream] = append(s.streams[ev.Stream], ev)
	}
	return nil
}

// Replay returns events from a stream starting after the given ID.
func (s *MemoryEventStore) Replay(_ context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.streams[stream]
	if len(events) == 0 || limit <= 0 {
		return nil, nil
	}

	start := 0
	if afterID.Compare(ulid.ULID{}) != 0 {
		for i, e := range events {
			if e.ID == afterID {
				start = i + 1
				break
			}
		}
	}

	end := min(start+limit, len(events))
	return append([]Event(nil), events[start:end]...), nil
}

// Tail returns the last limit events of a stream.
func (s *MemoryEventStore) Tail(_ context.Context, stream string, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.streams[stream]
	if limit <= 0 {
		return nil, nil
	}
	start := max(len(events)-limit, 0)
	return append([]Event(nil), events[start:]...), nil
}

// LastEventID returns the most recent event ID for a stream.
func (s *MemoryEventStore) LastEventID(_ context.Context, stream string) (ulid.ULID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.streams[stream]
	if len(events) == 0 {
		return ulid.ULID{}, ErrStreamEmpty
	}
	return events[len(events)-1].ID, nil
}
