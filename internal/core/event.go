// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package core carries simulation output to the outside world: tick events
// and game logs are wrapped in envelopes, broadcast to subscribers and
// archived.
package core

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/giraugh/abduction-sub000/internal/entity"
)

// EventType identifies the kind of envelope.
type EventType string

const (
	EventTypeStartOfTick   EventType = "start_of_tick"
	EventTypeEndOfTick     EventType = "end_of_tick"
	EventTypeStartOfMatch  EventType = "start_of_match"
	EventTypeEndOfMatch    EventType = "end_of_match"
	EventTypeEntityChanges EventType = "entity_changes"
	EventTypeGameLog       EventType = "game_log"
)

// Streams envelopes are broadcast on.
const (
	StreamTick = "tick"
	StreamLog  = "log"
)

// LogStream is the archive stream holding one match's game logs.
func LogStream(matchID string) string {
	return "log:" + matchID
}

// Event is an envelope around a tick event or game log.
type Event struct {
	ID        ulid.ULID
	Stream    string
	Type      EventType
	MatchID   string
	Timestamp time.Time
	Payload   []byte // JSON
}

// TickEvent is a match lifecycle notification sent to clients.
//
// Within a tick the order is start_of_tick, entity_changes, end_of_tick.
type TickEvent struct {
	Kind    EventType         `json:"kind"`
	TickID  *int              `json:"tick_id,omitempty"`
	Changes []entity.Mutation `json:"changes,omitempty"`
}

// StartOfTick announces that tick id is being resolved.
func StartOfTick(id int) TickEvent {
	return TickEvent{Kind: EventTypeStartOfTick, TickID: &id}
}

// EndOfTick announces that tick id has been resolved and flushed.
func EndOfTick(id int) TickEvent {
	return TickEvent{Kind: EventTypeEndOfTick, TickID: &id}
}

// StartOfMatch announces a brand new match. Resumed matches do not send it.
func StartOfMatch() TickEvent {
	return TickEvent{Kind: EventTypeStartOfMatch}
}

// EndOfMatch announces that the match is complete.
func EndOfMatch() TickEvent {
	return TickEvent{Kind: EventTypeEndOfMatch}
}

// EntityChanges carries a flushed batch of mutations.
func EntityChanges(changes []entity.Mutation) TickEvent {
	return TickEvent{Kind: EventTypeEntityChanges, Changes: changes}
}

func newEvent(stream string, typ EventType, matchID string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:        NewULID(),
		Stream:    stream,
		Type:      typ,
		MatchID:   matchID,
		Timestamp: time.Now(),
		Payload:   data,
	}, nil
}
