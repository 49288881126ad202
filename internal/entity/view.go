// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import (
	"cmp"
	"slices"

	"github.com/giraugh/abduction-sub000/internal/hex"
)

// View is a frozen, tick-scoped index over every entity in a match.
//
// All reads during a tick go through the same View so no entity observes
// another entity's same-tick mutation. Pointers handed out by a View refer
// to the frozen copy and must not be mutated.
type View struct {
	entities []*Entity
	byID     map[ID]*Entity
	byHex    map[hex.Hex][]*Entity
}

// NewView indexes entities. The view takes ownership of the slice contents.
func NewView(entities []Entity) *View {
	v := &View{
		entities: make([]*Entity, 0, len(entities)),
		byID:     make(map[ID]*Entity, len(entities)),
		byHex:    make(map[hex.Hex][]*Entity),
	}
	for i := range entities {
		e := &entities[i]
		v.entities = append(v.entities, e)
	}
	slices.SortFunc(v.entities, func(a, b *Entity) int { return cmp.Compare(a.ID, b.ID) })

	for _, e := range v.entities {
		v.byID[e.ID] = e
		if e.Attributes.Hex != nil {
			v.byHex[*e.Attributes.Hex] = append(v.byHex[*e.Attributes.Hex], e)
		}
	}
	return v
}

// ByID returns the entity with id, or nil.
func (v *View) ByID(id ID) *Entity {
	return v.byID[id]
}

// All returns every entity ordered by id.
func (v *View) All() []*Entity {
	return v.entities
}

// Len returns the number of entities.
func (v *View) Len() int {
	return len(v.entities)
}

// InHex returns the entities located at h.
func (v *View) InHex(h hex.Hex) []*Entity {
	return v.byHex[h]
}

// AdjacentTo returns the entities in the six hexes around h, not h itself.
func (v *View) AdjacentTo(h hex.Hex) []*Entity {
	var adjacent []*Entity
	for _, n := range h.Neighbours() {
		adjacent = append(adjacent, v.byHex[n]...)
	}
	return adjacent
}

// Filter returns the entities for which keep returns true.
func (v *View) Filter(keep func(*Entity) bool) []*Entity {
	var out []*Entity
	for _, e := range v.entities {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first entity, in id order, for which match returns true.
func (v *View) Find(match func(*Entity) bool) *Entity {
	for _, e := range v.entities {
		if match(e) {
			return e
		}
	}
	return nil
}
