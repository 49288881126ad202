// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package event implements one-tick-delayed event propagation.
//
// Events raised while tick N resolves go into a write-only Buffer. At the end
// of the tick the buffer replaces the store's active events, which are only
// readable during tick N+1 and then discarded.
package event

import (
	"fmt"
	"log/slog"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/hex"
)

// Kind identifies what happened.
type Kind string

// Event kinds.
const (
	ArriveInHex Kind = "arrive_in_hex"
	LeaveHex    Kind = "leave_hex"
	Death       Kind = "death"
	// Asked is a question put to the targeted entity during a discussion.
	Asked Kind = "asked"
)

// TargetKind is the shape of an event's audience.
type TargetKind uint8

// Target kinds.
const (
	TargetEntity TargetKind = iota
	TargetEntities
	TargetHex
	TargetHexSurrounds
	TargetGlobal
)

// Target is who can respond to an event.
type Target struct {
	Kind     TargetKind
	Entities []entity.ID
	Hex      hex.Hex
}

// ToEntity targets a single entity.
func ToEntity(id entity.ID) Target {
	return Target{Kind: TargetEntity, Entities: []entity.ID{id}}
}

// ToEntities targets a set of entities.
func ToEntities(ids ...entity.ID) Target {
	return Target{Kind: TargetEntities, Entities: ids}
}

// ToHex targets everything in h.
func ToHex(h hex.Hex) Target {
	return Target{Kind: TargetHex, Hex: h}
}

// ToHexSurrounds targets h and its six neighbours.
func ToHexSurrounds(h hex.Hex) Target {
	return Target{Kind: TargetHexSurrounds, Hex: h}
}

// ToGlobal targets everyone.
func ToGlobal() Target {
	return Target{Kind: TargetGlobal}
}

// Location returns where the event happened, if its target has a place.
func (t Target) Location() (hex.Hex, bool) {
	switch t.Kind {
	case TargetHex, TargetHexSurrounds:
		return t.Hex, true
	default:
		return hex.Hex{}, false
	}
}

// NoticeCondition is a sensory gate on noticing an event.
type NoticeCondition struct {
	MaxDist        int
	Characteristic entity.Characteristic
}

// Sense requires characteristic of at least Average within maxDist hexes.
func Sense(characteristic entity.Characteristic, maxDist int) NoticeCondition {
	return NoticeCondition{MaxDist: maxDist, Characteristic: characteristic}
}

// Test reports whether e notices an event at location.
func (c NoticeCondition) Test(location hex.Hex, e *entity.Entity) bool {
	if e.Attributes.Hex == nil {
		return false
	}
	if e.Attributes.Hex.DistTo(location) > c.MaxDist {
		return false
	}
	return e.Characteristic(c.Characteristic) >= entity.Average
}

// Event is something that happened which other entities may react to.
type Event struct {
	Kind Kind
	// Subject is the entity the event is about.
	Subject entity.ID
	// Question is set for Asked events.
	Question string
	Target   Target
	// NoticeConditions, when non-empty, must have at least one condition met.
	NoticeConditions []NoticeCondition
}

// NoticedBy reports whether e passes the event's notice conditions.
// A sense-gated event without a location is a programming error.
func (ev *Event) NoticedBy(e *entity.Entity) bool {
	if len(ev.NoticeConditions) == 0 {
		return true
	}
	location, ok := ev.Target.Location()
	if !ok {
		panic(fmt.Sprintf("event %s about %s has notice conditions but no location", ev.Kind, ev.Subject))
	}
	for _, c := range ev.NoticeConditions {
		if c.Test(location, e) {
			return true
		}
	}
	return false
}

// Buffer collects the events raised during the current tick.
type Buffer struct {
	events []Event
}

// Add queues an event for the next tick.
func (b *Buffer) Add(ev Event) {
	b.events = append(b.events, ev)
}

// Len returns the number of queued events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Events returns the queued events.
func (b *Buffer) Events() []Event {
	return b.events
}

// Store holds the events readable during the current tick.
type Store struct {
	active []Event
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// EndTick makes pending the active events for the next tick and discards
// the previously active ones.
func (s *Store) EndTick(pending *Buffer) {
	var next []Event
	if pending != nil {
		next = pending.events
		pending.events = nil
	}
	slog.Debug("loading events for next tick", "count", len(next))
	s.active = next
}

// Len returns the number of active events.
func (s *Store) Len() int {
	return len(s.active)
}

// View indexes the active events.
func (s *Store) View() *View {
	v := &View{
		byEntity: make(map[entity.ID][]*Event),
		byHex:    make(map[hex.Hex][]*Event),
	}
	for i := range s.active {
		ev := &s.active[i]
		switch ev.Target.Kind {
		case TargetEntity, TargetEntities:
			for _, id := range ev.Target.Entities {
				v.byEntity[id] = append(v.byEntity[id], ev)
			}
		case TargetHex:
			v.byHex[ev.Target.Hex] = append(v.byHex[ev.Target.Hex], ev)
		case TargetHexSurrounds:
			for _, h := range ev.Target.Hex.Surrounds() {
				v.byHex[h] = append(v.byHex[h], ev)
			}
		case TargetGlobal:
			v.global = append(v.global, ev)
		}
	}
	return v
}

// View is a read-only index over a tick's active events.
type View struct {
	byEntity map[entity.ID][]*Event
	byHex    map[hex.Hex][]*Event
	global   []*Event
}

// SignalsFor returns the events e can react to this tick: events at its hex,
// then global events, then events aimed at it directly.
func (v *View) SignalsFor(e *entity.Entity) []*Event {
	var candidates []*Event
	if e.Attributes.Hex != nil {
		candidates = append(candidates, v.byHex[*e.Attributes.Hex]...)
	}
	candidates = append(candidates, v.global...)
	candidates = append(candidates, v.byEntity[e.ID]...)

	out := candidates[:0:0]
	for _, ev := range candidates {
		if ev.NoticedBy(e) {
			out = append(out, ev)
		}
	}
	return out
}
