// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"math/rand/v2"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/event"
	"github.com/giraugh/abduction-sub000/internal/random"
)

// WeightedAction is a candidate action and its relative weight.
type WeightedAction struct {
	Weight int
	Action Action
}

// WeightedActions accumulates candidate actions from every signal.
type WeightedActions struct {
	entries []WeightedAction
}

// Add proposes action with weight. Zero weights are kept but never sampled.
func (w *WeightedActions) Add(weight int, action Action) {
	w.entries = append(w.entries, WeightedAction{Weight: weight, Action: action})
}

// AddAll proposes each action with the same weight.
func (w *WeightedActions) AddAll(weight int, actions []Action) {
	for _, a := range actions {
		w.Add(weight, a)
	}
}

// Entries returns the candidates in insertion order.
func (w *WeightedActions) Entries() []WeightedAction {
	return w.entries
}

// Len returns the number of candidates.
func (w *WeightedActions) Len() int {
	return len(w.entries)
}

// Sample picks an action with probability proportional to its weight.
// An implicit Nothing at weight 1 is always a candidate.
func (w *WeightedActions) Sample(rng *rand.Rand) Action {
	weights := make([]int, 0, len(w.entries)+1)
	for _, e := range w.entries {
		weights = append(weights, e.Weight)
	}
	weights = append(weights, 1)

	i := random.WeightedIndex(rng, weights)
	if i < 0 || i >= len(w.entries) {
		return Nothing()
	}
	return w.entries[i].Action
}

// SignalKind identifies where a signal comes from.
type SignalKind uint8

// Signal kinds, in the order they are gathered.
const (
	SignalMotivator SignalKind = iota
	SignalEvent
	SignalFocus
	SignalPlanning
)

// PlanningNeed is a future need an entity can prepare for.
type PlanningNeed uint8

// Planning needs.
const (
	// NeedFoodAccess is raised when no food is held.
	NeedFoodAccess PlanningNeed = iota
)

// Signal is anything that proposes weighted actions for an entity's turn.
type Signal struct {
	Kind SignalKind

	Motivator  entity.MotivatorKey
	Motivation float64

	Event *event.Event

	Focus entity.Focus

	Need PlanningNeed
}

// SignalContext is what a signal can see while proposing actions.
type SignalContext struct {
	Entity   *entity.Entity
	Focus    entity.Focus
	Entities *entity.View
	World    entity.World
	Rng      *rand.Rand
}

// ActOn adds the signal's candidate actions to actions.
func (s Signal) ActOn(ctx *SignalContext, actions *WeightedActions) {
	switch s.Kind {
	case SignalMotivator:
		actOnMotivator(s.Motivator, s.Motivation, ctx, actions)
	case SignalEvent:
		actOnEvent(s.Event, ctx, actions)
	case SignalFocus:
		actOnFocus(s.Focus, ctx, actions)
	case SignalPlanning:
		actOnPlanning(s.Need, ctx, actions)
	}
}

// MotivatorSignals returns one signal per motivator the entity has, in
// declaration order.
func MotivatorSignals(e *entity.Entity) []Signal {
	signals := make([]Signal, 0, len(entity.AllMotivators))
	for _, key := range entity.AllMotivators {
		motivation, ok := e.Attributes.Motivators.Motivation(key)
		if !ok {
			continue
		}
		signals = append(signals, Signal{Kind: SignalMotivator, Motivator: key, Motivation: motivation})
	}
	return signals
}

// EventSignals wraps visible events as signals.
func EventSignals(events []*event.Event) []Signal {
	signals := make([]Signal, len(events))
	for i, ev := range events {
		signals[i] = Signal{Kind: SignalEvent, Event: ev}
	}
	return signals
}

// CandidateActions gathers every signal for e and returns the weighted
// candidates: motivators, then events, then focus, then planning.
func CandidateActions(ctx *Context, e *entity.Entity, events []*event.Event) *WeightedActions {
	focus := e.Focus()
	sc := &SignalContext{
		Entity:   e,
		Focus:    focus,
		Entities: ctx.Entities,
		World:    ctx.World,
		Rng:      ctx.Rng,
	}

	signals := MotivatorSignals(e)
	signals = append(signals, EventSignals(events)...)
	signals = append(signals, Signal{Kind: SignalFocus, Focus: focus})
	signals = append(signals, PlanningSignals(sc)...)

	actions := &WeightedActions{}
	for _, s := range signals {
		s.ActOn(sc, actions)
	}
	return actions
}

// NextAction picks the action e takes this tick.
func NextAction(ctx *Context, e *entity.Entity, events []*event.Event) Action {
	return CandidateActions(ctx, e, events).Sample(ctx.Rng)
}
