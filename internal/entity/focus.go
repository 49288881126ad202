// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

// FocusKind is the high-level mode an entity is in.
type FocusKind string

// Focus kinds.
const (
	FocusUnfocused  FocusKind = "unfocused"
	FocusSleeping   FocusKind = "sleeping"
	FocusDiscussion FocusKind = "discussion"
	FocusSheltering FocusKind = "sheltering"
)

// Focus is a tagged variant; only the fields of its Kind are meaningful.
//
// Transitions happen only while resolving actions, either the entity's own or
// through another entity's SetFocus side effect.
type Focus struct {
	Kind FocusKind `json:"kind"`

	// Sleeping
	RemainingTurns int `json:"remaining_turns,omitempty"`

	// Discussion
	With     ID   `json:"with,omitempty"`
	Interest int  `json:"interest,omitempty"`
	IsLead   bool `json:"is_lead,omitempty"`

	// Sheltering
	ShelterEntityID ID `json:"shelter_entity_id,omitempty"`
}

// Unfocused is the default focus.
func Unfocused() Focus {
	return Focus{Kind: FocusUnfocused}
}

// Sleeping sleeps for the given number of turns.
func Sleeping(remainingTurns int) Focus {
	return Focus{Kind: FocusSleeping, RemainingTurns: remainingTurns}
}

// Discussion talks with another entity. The lead speaks next.
func Discussion(with ID, interest int, isLead bool) Focus {
	return Focus{Kind: FocusDiscussion, With: with, Interest: interest, IsLead: isLead}
}

// Sheltering shelters inside the given entity.
func Sheltering(shelter ID) Focus {
	return Focus{Kind: FocusSheltering, ShelterEntityID: shelter}
}

// Is reports whether the focus is of kind k.
func (f Focus) Is(k FocusKind) bool {
	if f.Kind == "" {
		return k == FocusUnfocused
	}
	return f.Kind == k
}
