// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import (
	"math/rand/v2"

	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/internal/random"
)

// Attributes is a sparse bag of optional fields. A nil field means the
// attribute does not apply to the entity, not that it is zero.
type Attributes struct {
	Motivators      MotivatorTable           `json:"motivators,omitempty"`
	FirstName       *string                  `json:"first_name,omitempty"`
	FamilyName      *string                  `json:"family_name,omitempty"`
	Age             *int                     `json:"age,omitempty"`
	Hex             *hex.Hex                 `json:"hex,omitempty"`
	Corpse          *ID                      `json:"corpse,omitempty"`
	Item            *Item                    `json:"item,omitempty"`
	Hazard          *Hazard                  `json:"hazard,omitempty"`
	Location        *Location                `json:"location,omitempty"`
	Food            *Food                    `json:"food,omitempty"`
	WaterSource     *WaterSource             `json:"water_source,omitempty"`
	World           *World                   `json:"world,omitempty"`
	Focus           *Focus                   `json:"focus,omitempty"`
	Characteristics map[Characteristic]Level `json:"characteristics,omitempty"`
	DisplayColorHue *float64                 `json:"display_color_hue,omitempty"`
	Background      *Background              `json:"background,omitempty"`
	Memes           *MemeTable               `json:"memes,omitempty"`
	Presenter       *Presenter               `json:"presenter,omitempty"`
	Collector       *Collector               `json:"collector,omitempty"`
}

// Item marks an entity as something that can be carried.
type Item struct {
	// Heft is how much inventory load the item takes up.
	Heft int `json:"heft"`
}

// DefaultItem is a single-heft item.
func DefaultItem() *Item {
	return &Item{Heft: 1}
}

// Hazard deals damage to players sharing its hex.
type Hazard struct {
	// Damage is measured in bumps to the Hurt motivator.
	Damage int `json:"damage"`
}

// LocationKind is the terrain of a location entity.
type LocationKind string

// Location kinds.
const (
	Plain    LocationKind = "plain"
	Forest   LocationKind = "forest"
	River    LocationKind = "river"
	Hill     LocationKind = "hill"
	Mountain LocationKind = "mountain"
	SmallHut LocationKind = "small_hut"
)

// Location marks an entity as the terrain of its hex.
type Location struct {
	Kind LocationKind `json:"location_kind"`
}

// Food is something edible.
type Food struct {
	Sustenance   float64 `json:"sustenance"`
	Poison       float64 `json:"poison"`
	MorallyWrong bool    `json:"morally_wrong"`
}

// HealthyFood rolls food with no poison.
func HealthyFood(rng *rand.Rand) *Food {
	return &Food{Sustenance: rng.Float64()}
}

// DubiousFood rolls food that is less filling and often poisonous.
func DubiousFood(rng *rand.Rand) *Food {
	f := &Food{Sustenance: random.Float(rng, 0, 0.5)}
	if random.Bool(rng, 0.7) {
		f.Poison = rng.Float64()
	}
	return f
}

// WaterSource is an infinite source of water.
type WaterSource struct {
	// Poison is in [0, 1]; 0 is clean water.
	Poison float64 `json:"poison"`
}

// QualityWaterSource is clean water.
func QualityWaterSource() *WaterSource {
	return &WaterSource{}
}

// DubiousWaterSource rolls water that may make the drinker sick.
func DubiousWaterSource(rng *rand.Rand) *WaterSource {
	return &WaterSource{Poison: rng.Float64()}
}

// Background is flavour data produced at generation time.
type Background struct {
	Career   string `json:"career"`
	Retired  bool   `json:"is_retired"`
	Hometown string `json:"hometown"`
	Fear     string `json:"fear"`
	Hope     string `json:"hope"`
}

// Presenter is the state of the match presenter.
type Presenter struct {
	// Wait is the number of ticks before the presenter acts again.
	Wait int `json:"wait"`
}

// DefaultPresenter waits ten ticks before the first introduction.
func DefaultPresenter() *Presenter {
	return &Presenter{Wait: 10}
}

// Collector is the state of the corpse collector.
type Collector struct{}
