// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package gamelog defines the narrative logs shown to spectators.
package gamelog

import (
	"sync"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/hex"
)

// Kind identifies what happened.
type Kind string

// Log kinds.
const (
	EntityMovement               Kind = "entity_movement"
	TimeOfDayChange              Kind = "time_of_day_change"
	WeatherChange                Kind = "weather_change"
	EntityDeath                  Kind = "entity_death"
	EntityGreet                  Kind = "entity_greet"
	EntityIgnore                 Kind = "entity_ignore"
	EntityTrackBeing             Kind = "entity_track_being"
	EntityAvoid                  Kind = "entity_avoid"
	LightningStrike              Kind = "lightning_strike"
	FireExtinguished             Kind = "fire_extinguished"
	EntityMotivatorBark          Kind = "entity_motivator_bark"
	EntityHitByLightning         Kind = "entity_hit_by_lightning"
	EntityWarmBecauseOfTime      Kind = "entity_warm_because_of_time"
	EntityColdBecauseOfTime      Kind = "entity_cold_because_of_time"
	EntitySaturatedBecauseOfRain Kind = "entity_saturated_because_of_rain"
	EntityGoDownhill             Kind = "entity_go_downhill"
	EntityGoToAdjacentLush       Kind = "entity_go_to_adjacent_lush"
	EntityFellInWaterSource      Kind = "entity_fell_in_water_source"
	EntityComplainAboutTaste     Kind = "entity_complain_about_taste"
	EntityDrinkFrom              Kind = "entity_drink_from"
	EntityStartSleeping          Kind = "entity_start_sleeping"
	EntityKeepSleeping           Kind = "entity_keep_sleeping"
	EntityStopSleeping           Kind = "entity_stop_sleeping"
	EntityHesitateBeforeConsume  Kind = "entity_hesitate_before_consume"
	EntityConsume                Kind = "entity_consume"
	HazardHurt                   Kind = "hazard_hurt"
	EntityPickUp                 Kind = "entity_pick_up"
	EntityRetrieve               Kind = "entity_retrieve"
	EntityMournOverCorpse        Kind = "entity_mourn_over_corpse"
	EntityTakeShelter            Kind = "entity_take_shelter"
	EntityLeaveShelter           Kind = "entity_leave_shelter"
	EntityWarpIn                 Kind = "entity_warp_in"
	EntityFarewell               Kind = "entity_farewell"
	EntityAsk                    Kind = "entity_ask"
	EntityRespond                Kind = "entity_respond"
	EntityLoseInterest           Kind = "entity_lose_interest"
	EntitySayExact               Kind = "entity_say_exact"
)

// Reply is what an entity said in answer to a question.
type Reply struct {
	Kind    string `json:"kind"`
	Opinion string `json:"opinion,omitempty"`
	Topic   string `json:"topic,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Body is the kind-tagged payload of a log. Only the fields relevant to
// Kind are set.
type Body struct {
	Kind       Kind                `json:"kind"`
	By         *hex.Direction      `json:"by,omitempty"`
	TimeOfDay  entity.TimeOfDay    `json:"time_of_day,omitempty"`
	Weather    entity.Weather      `json:"weather,omitempty"`
	Bond       *float64            `json:"bond,omitempty"`
	Response   *bool               `json:"response,omitempty"`
	Motivation *float64            `json:"motivation,omitempty"`
	Motivator  entity.MotivatorKey `json:"motivator,omitempty"`
	Question   string              `json:"question,omitempty"`
	Reply      *Reply              `json:"reply,omitempty"`
	Quote      string              `json:"quote,omitempty"`
}

// Log is a narrative event. By convention the first involved entity is the
// actor and the second the entity acted upon.
type Log struct {
	Hex              *hex.Hex    `json:"hex,omitempty"`
	InvolvedEntities []entity.ID `json:"involved_entities"`
	Body
}

// Of returns a body with no extra fields.
func Of(kind Kind) Body {
	return Body{Kind: kind}
}

// Movement is a step in direction d.
func Movement(d hex.Direction) Body {
	return Body{Kind: EntityMovement, By: &d}
}

// TimeChanged announces a new time of day.
func TimeChanged(t entity.TimeOfDay) Body {
	return Body{Kind: TimeOfDayChange, TimeOfDay: t}
}

// WeatherChanged announces new weather.
func WeatherChanged(w entity.Weather) Body {
	return Body{Kind: WeatherChange, Weather: w}
}

// Greet carries the greeter's bond and whether it is a greeting back.
func Greet(bond float64, response bool) Body {
	return Body{Kind: EntityGreet, Bond: &bond, Response: &response}
}

// Bark lets others know about a strong motivator.
func Bark(motivation float64, key entity.MotivatorKey) Body {
	return Body{Kind: EntityMotivatorBark, Motivation: &motivation, Motivator: key}
}

// Ask is a question put to the second entity.
func Ask(question string) Body {
	return Body{Kind: EntityAsk, Question: question}
}

// Respond is an answer given to the second entity.
func Respond(reply Reply) Body {
	return Body{Kind: EntityRespond, Reply: &reply}
}

// SayExact quotes the entity verbatim.
func SayExact(quote string) Body {
	return Body{Kind: EntitySayExact, Quote: quote}
}

// Global is a log with no location or entities.
func Global(body Body) Log {
	return Log{InvolvedEntities: []entity.ID{}, Body: body}
}

// ForEntity is a log about a single entity at its current hex.
func ForEntity(e *entity.Entity, body Body) Log {
	return Log{
		Hex:              hexOf(e),
		InvolvedEntities: []entity.ID{e.ID},
		Body:             body,
	}
}

// ForPair is a log about a acting on other, located at a's hex.
func ForPair(a *entity.Entity, other entity.ID, body Body) Log {
	return Log{
		Hex:              hexOf(a),
		InvolvedEntities: []entity.ID{a.ID, other},
		Body:             body,
	}
}

func hexOf(e *entity.Entity) *hex.Hex {
	if e.Attributes.Hex == nil {
		return nil
	}
	h := *e.Attributes.Hex
	return &h
}

// Sink accepts logs. Sending never blocks the simulation on delivery.
type Sink interface {
	Send(Log)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Log)

// Send calls f.
func (f SinkFunc) Send(l Log) { f(l) }

// Discard drops every log.
var Discard Sink = SinkFunc(func(Log) {})

// Buffer is a Sink that keeps every log in memory.
type Buffer struct {
	mu   sync.Mutex
	logs []Log
}

// Send records l.
func (b *Buffer) Send(l Log) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs = append(b.logs, l)
}

// Logs returns a copy of everything recorded.
func (b *Buffer) Logs() []Log {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Log, len(b.logs))
	copy(out, b.logs)
	return out
}

// Kinds returns the kind of each recorded log in order.
func (b *Buffer) Kinds() []Kind {
	logs := b.Logs()
	out := make([]Kind, len(logs))
	for i, l := range logs {
		out[i] = l.Kind
	}
	return out
}

// Reset forgets everything recorded.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs = nil
}
