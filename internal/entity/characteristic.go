// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

// Characteristic is a personality trait or physical ability.
type Characteristic string

// Characteristics.
const (
	// Personality
	Friendliness Characteristic = "friendliness"
	Empathy      Characteristic = "empathy"
	Aggression   Characteristic = "aggression"
	Resolve      Characteristic = "resolve"
	Planning     Characteristic = "planning"
	Curiosity    Characteristic = "curiosity"

	// Physical ability
	Strength   Characteristic = "strength"
	Speed      Characteristic = "speed"
	Acrobatics Characteristic = "acrobatics"
	Vision     Characteristic = "vision"
	Hearing    Characteristic = "hearing"
)

// AllCharacteristics lists every characteristic.
var AllCharacteristics = []Characteristic{
	Friendliness, Empathy, Aggression, Resolve, Planning, Curiosity,
	Strength, Speed, Acrobatics, Vision, Hearing,
}

// InfluencedByAge reports whether c tends to be higher when young and lower when old.
func (c Characteristic) InfluencedByAge() bool {
	switch c {
	case Strength, Speed, Acrobatics, Vision, Hearing:
		return true
	default:
		return false
	}
}

// Level is the strength of a characteristic. Entities without an explicit
// level are Average.
type Level int

// Levels, ordered.
const (
	Low Level = iota
	Average
	High
)

// IsHigh reports l == High.
func (l Level) IsHigh() bool { return l == High }

// IsLow reports l == Low.
func (l Level) IsLow() bool { return l == Low }

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Average:
		return "average"
	case High:
		return "high"
	default:
		return "unknown"
	}
}
