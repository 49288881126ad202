// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import "math/rand/v2"

// NewCorpse creates the corpse left behind when dead dies. The corpse keeps a
// reference to the dead entity's id and is dubious, morally wrong food.
func NewCorpse(rng *rand.Rand, dead Entity) Entity {
	food := DubiousFood(rng)
	food.MorallyWrong = true

	return Entity{
		ID:      NewID(),
		Name:    "Corpse of " + dead.Name,
		Markers: NewMarkers(Inspectable),
		Attributes: Attributes{
			Hex:    clonePtr(dead.Attributes.Hex),
			Corpse: &dead.ID,
			Food:   food,
		},
	}
}
