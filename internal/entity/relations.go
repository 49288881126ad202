// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import (
	"encoding/json"
	"maps"
	"slices"
)

// BondStep is how far a single interaction moves a bond.
const BondStep = 0.01

// Associate is another entity this one has an opinion of.
// Bond is roughly in [-1, 1]; negative means dislike.
type Associate struct {
	Bond float64 `json:"bond"`
}

// Relations are weak references to other entities, resolved by id.
type Relations struct {
	Associates map[ID]Associate
	Held       map[ID]struct{}
}

type relationsJSON struct {
	Associates map[ID]Associate `json:"associates,omitempty"`
	Inventory  []ID             `json:"inventory,omitempty"`
}

// MarshalJSON encodes the inventory as a sorted list.
func (r Relations) MarshalJSON() ([]byte, error) {
	return json.Marshal(relationsJSON{Associates: r.Associates, Inventory: r.Inventory()})
}

// UnmarshalJSON decodes the list form of the inventory.
func (r *Relations) UnmarshalJSON(data []byte) error {
	var raw relationsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Associates = raw.Associates
	r.Held = nil
	for _, id := range raw.Inventory {
		r.AddToInventory(id)
	}
	return nil
}

// Bond returns the bond toward id, 0 when unknown.
func (r *Relations) Bond(id ID) float64 {
	return r.Associates[id].Bond
}

// Like reports a positive bond.
func (r *Relations) Like(id ID) bool {
	return r.Bond(id) > 0
}

// Dislike reports a negative bond.
func (r *Relations) Dislike(id ID) bool {
	return r.Bond(id) < 0
}

// AssociateIDs returns known associates in a stable order.
func (r *Relations) AssociateIDs() []ID {
	return slices.Sorted(maps.Keys(r.Associates))
}

// IncreaseBond strengthens the bond toward id, creating it if needed.
func (r *Relations) IncreaseBond(id ID) {
	r.adjustBond(id, BondStep)
}

// DecreaseBond weakens the bond toward id, creating it if needed.
func (r *Relations) DecreaseBond(id ID) {
	r.adjustBond(id, -BondStep)
}

func (r *Relations) adjustBond(id ID, delta float64) {
	if r.Associates == nil {
		r.Associates = make(map[ID]Associate)
	}
	a := r.Associates[id]
	a.Bond += delta
	r.Associates[id] = a
}

// Inventory returns held entity ids in a stable order.
func (r *Relations) Inventory() []ID {
	return slices.Sorted(maps.Keys(r.Held))
}

// Holds reports whether id is in the inventory.
func (r *Relations) Holds(id ID) bool {
	_, ok := r.Held[id]
	return ok
}

// AddToInventory puts id in the inventory.
func (r *Relations) AddToInventory(id ID) {
	if r.Held == nil {
		r.Held = make(map[ID]struct{})
	}
	r.Held[id] = struct{}{}
}

// RemoveFromInventory takes id out of the inventory, reporting whether it was held.
func (r *Relations) RemoveFromInventory(id ID) bool {
	if !r.Holds(id) {
		return false
	}
	delete(r.Held, id)
	return true
}

func (r Relations) clone() Relations {
	return Relations{
		Associates: maps.Clone(r.Associates),
		Held:       maps.Clone(r.Held),
	}
}
