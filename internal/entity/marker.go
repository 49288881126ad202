// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import "slices"

// Marker is a capability or category tag.
type Marker string

// Markers known to the simulation.
const (
	Player           Marker = "player"
	Inspectable      Marker = "inspectable"
	LushLocation     Marker = "lush_location"
	LowLyingLocation Marker = "low_lying_location"
	Human            Marker = "human"
	Alien            Marker = "alien"
	Crew             Marker = "crew"
	CanTalk          Marker = "can_talk"
	Being            Marker = "being"
	Escaped          Marker = "escaped"
	Fire             Marker = "fire"
	Shelter          Marker = "shelter"
)

// Markers is a set of tags stored as a slice.
type Markers []Marker

// NewMarkers builds a marker set, dropping duplicates.
func NewMarkers(markers ...Marker) Markers {
	var set Markers
	for _, m := range markers {
		set = set.With(m)
	}
	return set
}

// Has reports whether every marker is present.
func (ms Markers) Has(markers ...Marker) bool {
	for _, m := range markers {
		if !slices.Contains(ms, m) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one marker is present.
func (ms Markers) HasAny(markers ...Marker) bool {
	return slices.ContainsFunc(markers, func(m Marker) bool {
		return slices.Contains(ms, m)
	})
}

// With returns the set including m.
func (ms Markers) With(m Marker) Markers {
	if slices.Contains(ms, m) {
		return ms
	}
	return append(ms, m)
}
