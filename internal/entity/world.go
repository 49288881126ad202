// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import (
	"math/rand/v2"

	"github.com/giraugh/abduction-sub000/internal/random"
)

// TimeOfDay cycles Morning, Afternoon, Night.
type TimeOfDay string

// Times of day.
const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Night     TimeOfDay = "night"
)

// Next returns the following time of day.
func (t TimeOfDay) Next() TimeOfDay {
	switch t {
	case Morning:
		return Afternoon
	case Afternoon:
		return Night
	default:
		return Morning
	}
}

// ColdChanceScale scales the chance of a player getting cold.
func (t TimeOfDay) ColdChanceScale() float64 {
	switch t {
	case Morning:
		return 0.3
	case Night:
		return 1.0
	default:
		return 0
	}
}

// Weather is the current weather kind.
type Weather string

// Weather kinds.
const (
	Lovely         Weather = "lovely"
	Sunny          Weather = "sunny"
	Overcast       Weather = "overcast"
	LightWind      Weather = "light_wind"
	Hurricane      Weather = "hurricane"
	LightRain      Weather = "light_rain"
	HeavyRain      Weather = "heavy_rain"
	LightningStorm Weather = "lightning_storm"
)

// RainChanceScale scales the chance of a player getting wet.
func (w Weather) RainChanceScale() float64 {
	switch w {
	case LightRain:
		return 0.3
	case HeavyRain, LightningStorm:
		return 1.0
	default:
		return 0
	}
}

// IsRaining reports whether any rain is falling.
func (w Weather) IsRaining() bool {
	return w.RainChanceScale() > 0
}

// WindChanceScale scales the chance of a player getting cold.
func (w Weather) WindChanceScale() float64 {
	switch w {
	case Overcast:
		return 0.2
	case LightWind:
		return 0.5
	case Hurricane:
		return 1.0
	case LightRain, HeavyRain:
		return 0.4
	case LightningStorm:
		return 0.9
	default:
		return 0
	}
}

// WeatherTransition is one weighted edge of the weather chain.
type WeatherTransition struct {
	To     Weather
	Weight int
}

// Transitions returns the weighted successors of w.
func (w Weather) Transitions() []WeatherTransition {
	switch w {
	case Lovely:
		return []WeatherTransition{{Lovely, 5}, {Overcast, 5}, {LightWind, 2}, {LightRain, 2}}
	case Sunny:
		return []WeatherTransition{{Sunny, 5}, {Lovely, 5}, {Overcast, 2}}
	case Overcast:
		return []WeatherTransition{{Overcast, 5}, {Lovely, 5}, {LightWind, 5}, {LightRain, 5}}
	case LightWind:
		return []WeatherTransition{{LightWind, 5}, {Overcast, 5}, {Hurricane, 1}, {LightRain, 2}}
	case Hurricane:
		return []WeatherTransition{{Hurricane, 5}, {LightWind, 5}, {LightningStorm, 2}}
	case LightRain:
		return []WeatherTransition{{LightRain, 5}, {HeavyRain, 4}}
	case HeavyRain:
		return []WeatherTransition{{HeavyRain, 5}, {LightRain, 5}, {LightningStorm, 2}}
	case LightningStorm:
		return []WeatherTransition{{LightningStorm, 5}, {HeavyRain, 5}}
	default:
		return []WeatherTransition{{Lovely, 1}}
	}
}

// NextWeather samples the chain. ok is false when the weather stays the same.
func (w Weather) NextWeather(rng *rand.Rand) (next Weather, ok bool) {
	transitions := w.Transitions()
	weights := make([]int, len(transitions))
	for i, t := range transitions {
		weights[i] = t.Weight
	}
	next = transitions[random.WeightedIndex(rng, weights)].To
	return next, next != w
}

// World is the global state held by the single world entity.
type World struct {
	TimeOfDay TimeOfDay `json:"time_of_day"`
	Weather   Weather   `json:"weather"`
	Day       int       `json:"day"`
}

// DefaultWorld is the first morning of a match.
func DefaultWorld() World {
	return World{TimeOfDay: Morning, Weather: Lovely, Day: 1}
}

// Advance moves to the next time of day and maybe new weather.
// It reports whether the weather changed.
func (w *World) Advance(rng *rand.Rand) (weatherChanged bool) {
	w.TimeOfDay = w.TimeOfDay.Next()
	if w.TimeOfDay == Morning {
		w.Day++
	}
	if next, ok := w.Weather.NextWeather(rng); ok {
		w.Weather = next
		return true
	}
	return false
}
