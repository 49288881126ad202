// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
)

// Publisher delivers match output to live subscribers and archives game logs.
type Publisher struct {
	broadcaster *Broadcaster
	store       EventStore
}

// NewPublisher creates a publisher. A nil store archives in memory.
func NewPublisher(b *Broadcaster, store EventStore) *Publisher {
	if store == nil {
		store = NewMemoryEventStore()
	}
	return &Publisher{broadcaster: b, store: store}
}

// Broadcaster returns the broadcaster live envelopes are sent on.
func (p *Publisher) Broadcaster() *Broadcaster {
	return p.broadcaster
}

// Store returns the game log archive.
func (p *Publisher) Store() EventStore {
	return p.store
}

// ForMatch returns a publisher scoped to one match.
func (p *Publisher) ForMatch(matchID string) *MatchPublisher {
	return &MatchPublisher{parent: p, matchID: matchID}
}

// MatchPublisher publishes the output of a single match. Game logs are
// broadcast as soon as they are sent and archived on Flush.
type MatchPublisher struct {
	parent  *Publisher
	matchID string

	mu     sync.Mutex
	queued []Event
}

// MatchID returns the match this publisher is scoped to.
func (m *MatchPublisher) MatchID() string {
	return m.matchID
}

// Send broadcasts a game log and queues it for archiving.
func (m *MatchPublisher) Send(l gamelog.Log) {
	ev, err := newEvent(StreamLog, EventTypeGameLog, m.matchID, l)
	if err != nil {
		slog.Error("encode game log", "match_id", m.matchID, "kind", l.Kind, "error", err)
		return
	}
	m.parent.broadcaster.Broadcast(ev)

	ev.Stream = LogStream(m.matchID)
	m.mu.Lock()
	m.queued = append(m.queued, ev)
	m.mu.Unlock()
}

// EntityChanges broadcasts a flushed batch of mutations.
func (m *MatchPublisher) EntityChanges(ctx context.Context, matchID string, mutations []entity.Mutation) {
	if matchID != m.matchID {
		slog.WarnContext(ctx, "entity changes for another match",
			"match_id", m.matchID,
			"other_match_id", matchID,
		)
		return
	}
	if err := m.PublishTick(ctx, EntityChanges(mutations)); err != nil {
		slog.ErrorContext(ctx, "publish entity changes", "match_id", matchID, "error", err)
	}
}

// PublishTick broadcasts a tick event. Tick events are not archived.
func (m *MatchPublisher) PublishTick(_ context.Context, te TickEvent) error {
	ev, err := newEvent(StreamTick, te.Kind, m.matchID, te)
	if err != nil {
		return oops.Code("EVENT_ENCODE_FAILED").
			With("match_id", m.matchID).
			With("kind", te.Kind).
			Wrap(err)
	}
	m.parent.broadcaster.Broadcast(ev)
	return nil
}

// Pending returns the number of game logs waiting to be archived.
func (m *MatchPublisher) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}

// Flush archives queued game logs. On failure the logs stay queued.
func (m *MatchPublisher) Flush(ctx context.Context) error {
	m.mu.Lock()
	batch := m.queued
	m.queued = nil
	m.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := m.parent.store.Append(ctx, batch...); err != nil {
		m.mu.Lock()
		m.queued = append(batch, m.queued...)
		m.mu.Unlock()
		return oops.Code("LOG_ARCHIVE_FAILED").
			With("match_id", m.matchID).
			With("count", len(batch)).
			Wrap(err)
	}
	return nil
}
