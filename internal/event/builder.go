// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package event

import (
	"github.com/giraugh/abduction-sub000/internal/entity"
)

// Builder assembles an Event fluently.
type Builder struct {
	ev Event
}

// Of starts an event of kind about subject. Without a target the event is global.
func Of(kind Kind, subject entity.ID) *Builder {
	return &Builder{ev: Event{Kind: kind, Subject: subject, Target: ToGlobal()}}
}

// Targets sets the audience.
func (b *Builder) Targets(t Target) *Builder {
	b.ev.Target = t
	return b
}

// TargetsHexOf targets the hex e currently occupies.
func (b *Builder) TargetsHexOf(e *entity.Entity) *Builder {
	return b.Targets(ToHex(e.MustHex()))
}

// WithQuestion attaches a discussion question.
func (b *Builder) WithQuestion(q string) *Builder {
	b.ev.Question = q
	return b
}

// WithSense adds a sensory notice condition.
func (b *Builder) WithSense(c entity.Characteristic, maxDist int) *Builder {
	b.ev.NoticeConditions = append(b.ev.NoticeConditions, Sense(c, maxDist))
	return b
}

// WithPhysicalSenses lets the event be seen or heard within maxDist.
func (b *Builder) WithPhysicalSenses(maxDist int) *Builder {
	return b.WithSense(entity.Vision, maxDist).WithSense(entity.Hearing, maxDist)
}

// Build returns the event.
func (b *Builder) Build() Event {
	return b.ev
}

// Add queues the event on buf.
func (b *Builder) Add(buf *Buffer) {
	buf.Add(b.ev)
}
