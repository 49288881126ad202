// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package entity defines the simulation's universal object and its stores.
package entity

import (
	"crypto/rand"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/giraugh/abduction-sub000/internal/hex"
)

// ErrNotFound is returned when an entity does not exist in a store.
var ErrNotFound = errors.New("entity not found")

// ID identifies an entity for its whole lifetime.
type ID string

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewID generates a new, time-ordered entity id.
func NewID() ID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

// Entity is anything that exists in a match: players, crew, props, locations,
// hazards and the world itself. What an entity is depends on its markers and
// which attributes are set.
type Entity struct {
	ID         ID         `json:"entity_id"`
	Name       string     `json:"name"`
	Markers    Markers    `json:"markers"`
	Attributes Attributes `json:"attributes"`
	Relations  Relations  `json:"relations"`
}

// HasMarkers reports whether the entity carries every given marker.
func (e *Entity) HasMarkers(markers ...Marker) bool {
	return e.Markers.Has(markers...)
}

// HasAnyMarker reports whether the entity carries at least one given marker.
func (e *Entity) HasAnyMarker(markers ...Marker) bool {
	return e.Markers.HasAny(markers...)
}

// Located reports whether the entity currently occupies a hex.
func (e *Entity) Located() bool {
	return e.Attributes.Hex != nil
}

// MustHex returns the entity's hex and panics if it has none.
func (e *Entity) MustHex() hex.Hex {
	if e.Attributes.Hex == nil {
		panic("entity " + string(e.ID) + " (" + e.Name + ") has no hex")
	}
	return *e.Attributes.Hex
}

// SetHex places the entity at h.
func (e *Entity) SetHex(h hex.Hex) {
	e.Attributes.Hex = &h
}

// Banish removes the entity from the grid without deleting it.
func (e *Entity) Banish() {
	e.Attributes.Hex = nil
}

// Characteristic returns the strength of c, Average when unset.
func (e *Entity) Characteristic(c Characteristic) Level {
	if s, ok := e.Attributes.Characteristics[c]; ok {
		return s
	}
	return Average
}

// Focus returns the current focus, Unfocused when unset.
func (e *Entity) Focus() Focus {
	if e.Attributes.Focus == nil {
		return Unfocused()
	}
	return *e.Attributes.Focus
}

// SetFocus replaces the current focus.
func (e *Entity) SetFocus(f Focus) {
	e.Attributes.Focus = &f
}

// Memes returns the meme table, creating it if needed.
func (e *Entity) Memes() *MemeTable {
	if e.Attributes.Memes == nil {
		e.Attributes.Memes = NewMemeTable()
	}
	return e.Attributes.Memes
}

// MaxInventoryLoad is the total heft the entity can carry.
func (e *Entity) MaxInventoryLoad() int {
	switch e.Characteristic(Strength) {
	case Low:
		return 2
	case High:
		return 5
	default:
		return 3
	}
}

// AvailableInventoryLoad is the heft left after counting held items.
func (e *Entity) AvailableInventoryLoad(view *View) int {
	used := 0
	for _, held := range e.ResolveInventory(view) {
		if held.Attributes.Item != nil {
			used += held.Attributes.Item.Heft
		}
	}
	return e.MaxInventoryLoad() - used
}

// ResolveInventory looks up held entities in view, skipping unknown ids.
func (e *Entity) ResolveInventory(view *View) []*Entity {
	var held []*Entity
	for _, id := range e.Relations.Inventory() {
		if other := view.ByID(id); other != nil {
			held = append(held, other)
		}
	}
	return held
}

// Clone returns a deep copy.
func (e Entity) Clone() Entity {
	c := e
	c.Markers = slices.Clone(e.Markers)
	c.Attributes = e.Attributes.clone()
	c.Relations = e.Relations.clone()
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (a Attributes) clone() Attributes {
	c := a
	c.Motivators = maps.Clone(a.Motivators)
	c.FirstName = clonePtr(a.FirstName)
	c.FamilyName = clonePtr(a.FamilyName)
	c.Age = clonePtr(a.Age)
	c.Hex = clonePtr(a.Hex)
	c.Corpse = clonePtr(a.Corpse)
	c.Item = clonePtr(a.Item)
	c.Hazard = clonePtr(a.Hazard)
	c.Location = clonePtr(a.Location)
	c.Food = clonePtr(a.Food)
	c.WaterSource = clonePtr(a.WaterSource)
	c.World = clonePtr(a.World)
	c.Focus = clonePtr(a.Focus)
	c.Characteristics = maps.Clone(a.Characteristics)
	c.DisplayColorHue = clonePtr(a.DisplayColorHue)
	c.Background = clonePtr(a.Background)
	if a.Memes != nil {
		c.Memes = a.Memes.Clone()
	}
	c.Presenter = clonePtr(a.Presenter)
	c.Collector = clonePtr(a.Collector)
	return c
}
