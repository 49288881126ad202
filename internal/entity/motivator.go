// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/giraugh/abduction-sub000/internal/random"
)

// MotivatorKey names a drive.
type MotivatorKey string

// Motivator keys.
const (
	Hunger     MotivatorKey = "hunger"
	Thirst     MotivatorKey = "thirst"
	Boredom    MotivatorKey = "boredom"
	Hurt       MotivatorKey = "hurt"
	Sickness   MotivatorKey = "sickness"
	Tiredness  MotivatorKey = "tiredness"
	Saturation MotivatorKey = "saturation"
	Cold       MotivatorKey = "cold"
	Sadness    MotivatorKey = "sadness"
)

// AllMotivators lists every key in declaration order.
var AllMotivators = []MotivatorKey{
	Hunger, Thirst, Boredom, Hurt, Sickness, Tiredness, Saturation, Cold, Sadness,
}

// Sensitivity bounds used when initialising a table.
const (
	MinSensitivity = 0.01
	MaxSensitivity = 0.1
)

// MotivatorData is a single drive. Both values are in [0, 1].
type MotivatorData struct {
	Motivation  float64
	Sensitivity float64
}

// MarshalJSON encodes the data as a [motivation, sensitivity] pair.
func (d MotivatorData) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{d.Motivation, d.Sensitivity})
}

// UnmarshalJSON decodes a [motivation, sensitivity] pair.
func (d *MotivatorData) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("invalid motivator data %s: %w", data, err)
	}
	d.Motivation, d.Sensitivity = pair[0], pair[1]
	return nil
}

// MotivatorTable maps each drive an entity has to its current state.
//
// Mutating a key the table does not hold logs a warning and does nothing;
// partially initialised entities are expected.
type MotivatorTable map[MotivatorKey]MotivatorData

// NewMotivatorTable returns a full table with zero motivation and a random
// sensitivity per key.
func NewMotivatorTable(rng *rand.Rand) MotivatorTable {
	t := make(MotivatorTable, len(AllMotivators))
	for _, key := range AllMotivators {
		t[key] = MotivatorData{
			Motivation:  0,
			Sensitivity: random.Float(rng, MinSensitivity, MaxSensitivity),
		}
	}
	return t
}

// Motivation returns the current value of key.
func (t MotivatorTable) Motivation(key MotivatorKey) (float64, bool) {
	d, ok := t[key]
	return d.Motivation, ok
}

// Get returns the value of key, 0 when missing.
func (t MotivatorTable) Get(key MotivatorKey) float64 {
	return t[key].Motivation
}

// Bump raises key by its sensitivity.
func (t MotivatorTable) Bump(key MotivatorKey) {
	t.update(key, func(d MotivatorData) float64 { return d.Motivation + d.Sensitivity })
}

// BumpScaled raises key by its sensitivity multiplied by scale.
func (t MotivatorTable) BumpScaled(key MotivatorKey, scale float64) {
	t.update(key, func(d MotivatorData) float64 { return d.Motivation + d.Sensitivity*scale })
}

// Reduce lowers key by its sensitivity.
func (t MotivatorTable) Reduce(key MotivatorKey) {
	t.update(key, func(d MotivatorData) float64 { return d.Motivation - d.Sensitivity })
}

// ReduceBy lowers key by an absolute amount.
func (t MotivatorTable) ReduceBy(key MotivatorKey, amount float64) {
	t.update(key, func(d MotivatorData) float64 { return d.Motivation - amount })
}

// Clear sets key to 0.
func (t MotivatorTable) Clear(key MotivatorKey) {
	t.update(key, func(MotivatorData) float64 { return 0 })
}

func (t MotivatorTable) update(key MotivatorKey, next func(MotivatorData) float64) {
	d, ok := t[key]
	if !ok {
		slog.Warn("entity is missing motivator data", "motivator", key)
		return
	}
	d.Motivation = clamp01(next(d))
	t[key] = d
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
