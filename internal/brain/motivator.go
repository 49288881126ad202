// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
)

func actOnMotivator(key entity.MotivatorKey, m float64, ctx *SignalContext, actions *WeightedActions) {
	switch key {
	case entity.Hunger:
		hunger(m, ctx, actions)
	case entity.Thirst:
		thirst(m, ctx, actions)
	case entity.Boredom:
		if ctx.Focus.Is(entity.FocusUnfocused) {
			if m > 0.5 {
				actions.Add(2, Bark(m, entity.Boredom))
			}
			if m > 0.7 {
				actions.AddAll(25, AllMovements())
			}
		}
	case entity.Hurt:
		if ctx.Focus.Is(entity.FocusUnfocused) && m > 0.5 {
			actions.Add(5, Bark(m, entity.Hurt))
			actions.Add(2, Bump(entity.Sadness))
		}
		// Dying takes priority whatever the focus.
		if m >= 0.99 {
			actions.Add(1000, Death())
		}
	case entity.Sickness:
		if !ctx.Focus.Is(entity.FocusUnfocused) {
			return
		}
		if m > 0 {
			actions.Add(8, Reduce(entity.Sickness))
			actions.Add(5, Bump(entity.Sickness))
		}
		if m > 0.5 {
			actions.Add(10, Bark(m, entity.Sickness))
		}
		if m > 0.8 {
			actions.Add(10, Bark(m, entity.Sickness))
			actions.Add(10, Bump(entity.Hurt))
		}
	case entity.Tiredness:
		if !ctx.Focus.Is(entity.FocusUnfocused) {
			return
		}
		if m > 0.7 {
			actions.Add(10, Bark(m, entity.Tiredness))
		}
		if m > 0.8 {
			actions.Add(20, Bark(m, entity.Tiredness))
			actions.Add(pick(m > 0.95, 50, 10), Sleep())
		}
	case entity.Saturation:
		saturation(m, ctx, actions)
	case entity.Cold:
		cold(m, ctx, actions)
	case entity.Sadness:
		if ctx.Focus.Is(entity.FocusUnfocused) && m > 0 {
			actions.Add(5, Bark(m, entity.Sadness))
			actions.Add(5, Reduce(entity.Sadness))
		}
	}
}

func hunger(m float64, ctx *SignalContext, actions *WeightedActions) {
	switch {
	case ctx.Focus.Is(entity.FocusUnfocused):
		seekFood := []Action{
			GoToAdjacent(gamelog.Of(gamelog.EntityGoToAdjacentLush), entity.LushLocation),
			Bark(m, entity.Hunger),
		}
		weight := pick(m > 0.7, 30, 10)

		if m > 0.3 {
			actions.Add(weight, Sequential(append([]Action{
				ConsumeNearbyFood(false, false),
				RetrieveInventoryFood(),
			}, seekFood...)...))
		}
		// Desperate enough to eat dubious food.
		if m > 0.6 {
			actions.Add(weight, Sequential(append([]Action{
				ConsumeNearbyFood(false, false),
				RetrieveInventoryFood(),
				ConsumeNearbyFood(true, false),
			}, seekFood...)...))
		}
		if m > 0.9 {
			actions.Add(10, ConsumeNearbyFood(true, true))
			actions.Add(20, Bump(entity.Hurt))
		}
	case ctx.Focus.Is(entity.FocusDiscussion):
		interruptDiscussion(m, entity.Hunger, actions)
	}
}

func thirst(m float64, ctx *SignalContext, actions *WeightedActions) {
	switch {
	case ctx.Focus.Is(entity.FocusUnfocused):
		seekWater := []Action{
			GoToAdjacent(gamelog.Of(gamelog.EntityGoToAdjacentLush), entity.LushLocation),
			GoTowards(gamelog.Of(gamelog.EntityGoDownhill), entity.LowLyingLocation),
			Bark(m, entity.Thirst),
		}

		if m > 0.4 {
			actions.Add(20, Sequential(append([]Action{
				DrinkFromWaterSource(false),
			}, seekWater...)...))
		}
		if m > 0.7 {
			actions.Add(30, Sequential(append([]Action{
				DrinkFromWaterSource(false),
				DrinkFromWaterSource(true),
			}, seekWater...)...))
		}
		if m > 0.9 {
			actions.Add(20, Bump(entity.Hurt))
		}
	case ctx.Focus.Is(entity.FocusDiscussion):
		interruptDiscussion(m, entity.Thirst, actions)
	}
}

func interruptDiscussion(m float64, key entity.MotivatorKey, actions *WeightedActions) {
	if m > 0.6 {
		actions.Add(pick(m > 0.7, 30, 10), Sequential(
			Bark(m, key),
			Discuss(LoseInterest()),
		))
	}
}

func saturation(m float64, ctx *SignalContext, actions *WeightedActions) {
	if !ctx.Focus.Is(entity.FocusUnfocused) {
		return
	}
	if m > 0 {
		actions.Add(15, Bark(m, entity.Saturation))
		actions.Add(5, Reduce(entity.Saturation))
	}
	if m > 0.1 {
		actions.Add(10, Bump(entity.Cold))
		actions.Add(pick(m > 0.5, 10, 20), Bump(entity.Sickness))
	}
	if m > 0.1 && ctx.World.Weather.IsRaining() {
		actions.Add(10, seekShelter(m, entity.Saturation))
	}
}

func cold(m float64, ctx *SignalContext, actions *WeightedActions) {
	switch {
	case ctx.Focus.Is(entity.FocusUnfocused):
		if m > 0.4 {
			actions.Add(10, seekShelter(m, entity.Cold))
		}
		if m > 0.6 {
			actions.Add(5, Bump(entity.Tiredness))
			actions.Add(2, Bump(entity.Sickness))
			actions.Add(2, Bump(entity.Sadness))
			actions.Add(8, Bark(m, entity.Cold))
		}
		if m > 0.95 {
			actions.Add(5, Bump(entity.Hurt))
		}
	case ctx.Focus.Is(entity.FocusSleeping):
		if m > 0.7 {
			actions.Add(5, Sequential(Bark(m, entity.Cold), WakeUp()))
		}
	}
}

func seekShelter(m float64, key entity.MotivatorKey) Action {
	return Sequential(TakeShelter(), SeekKnownShelter(), Bark(m, key))
}

func pick(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
