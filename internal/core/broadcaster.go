// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package core

import (
	"log/slog"
	"sync"
)

// SubscriberBuffer is the channel capacity given to each subscriber.
const SubscriberBuffer = 256

// Broadcaster fans envelopes out to subscribers of a stream.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string][]chan Event),
	}
}

// Subscribe creates a channel receiving envelopes broadcast on stream.
func (b *Broadcaster) Subscribe(stream string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, SubscriberBuffer)
	b.subs[stream] = append(b.subs[stream], ch)
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Broadcaster) Unsubscribe(stream string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[stream]
	for i, sub := range subs {
		if sub == ch {
			b.subs[stream] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Subscribers returns the number of subscribers on stream.
func (b *Broadcaster) Subscribers(stream string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[stream])
}

// Broadcast sends an envelope to every subscriber of its stream. Slow
// subscribers miss envelopes rather than stall the simulation.
func (b *Broadcaster) Broadcast(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[ev.Stream] {
		select {
		case ch <- ev:
		default:
			slog.Warn("event dropped: subscriber buffer full",
				"stream", ev.Stream,
				"match_id", ev.MatchID,
				"event_id", ev.ID.String(),
				"event_type", ev.Type,
			)
		}
	}
}
