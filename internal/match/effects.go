// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/internal/random"
)

// World effect chances, per tick and per chosen player.
const (
	HazardChance          = 0.7
	FallInWaterChance     = 0.01
	HungerOrThirstChance  = 0.02
	ColdChanceScale       = 0.2
	WarmUpChance          = 0.05
	WarmUpAmount          = 0.3
	RainChanceScale       = 0.1
	LightningHitChance    = 0.0005
	TiredChance           = 0.005
	TiredAtNightChance    = 0.01
	LightningFireChance   = 0.05
	RainExtinguishChance  = 0.05
	LightningHurtScale    = 20
	FallInWaterSaturation = 2
)

// playersByHex groups located players by hex, ordered by hex.
func playersByHex(view *entity.View) [][]*entity.Entity {
	groups := make(map[hex.Hex][]*entity.Entity)
	for _, e := range view.All() {
		if e.HasMarkers(entity.Player) && e.Located() {
			h := e.MustHex()
			groups[h] = append(groups[h], e)
		}
	}

	hexes := slices.SortedFunc(maps.Keys(groups), func(a, b hex.Hex) int {
		return cmp.Or(cmp.Compare(a.Q, b.Q), cmp.Compare(a.R, b.R))
	})
	out := make([][]*entity.Entity, len(hexes))
	for i, h := range hexes {
		out[i] = groups[h]
	}
	return out
}

// worldEntity returns the live world entity, if any.
func (m *Match) worldEntity() (entity.Entity, bool) {
	for _, e := range m.entities.All() {
		if e.Attributes.World != nil {
			return e, true
		}
	}
	return entity.Entity{}, false
}

// maybeAdvanceWorld moves the time of day on every WorldAdvanceEvery ticks
// and returns the world state for this tick.
func (m *Match) maybeAdvanceWorld() entity.World {
	w, ok := m.worldEntity()
	if !ok {
		slog.Warn("match has no world entity", "match_id", m.config.MatchID)
		return entity.DefaultWorld()
	}
	if m.ticks%m.opts.WorldAdvanceEvery != 0 {
		return *w.Attributes.World
	}

	state := w.Attributes.World
	weatherChanged := state.Advance(m.rng)
	m.opts.Logs.Send(gamelog.Global(gamelog.TimeChanged(state.TimeOfDay)))
	if weatherChanged {
		m.opts.Logs.Send(gamelog.Global(gamelog.WeatherChanged(state.Weather)))
	}
	m.entities.Upsert(w)
	return *state
}

// globalEffects applies effects that are not aimed at a particular player.
func (m *Match) globalEffects(view *entity.View, world entity.World) {
	if world.Weather == entity.LightningStorm && random.Bool(m.rng, LightningFireChance) {
		fire := newFire(m.rng, m.config.WorldRadius)
		m.opts.Logs.Send(gamelog.ForEntity(&fire, gamelog.Of(gamelog.LightningStrike)))
		m.entities.Upsert(fire)
	}

	if world.Weather.IsRaining() {
		for _, e := range view.All() {
			if e.HasMarkers(entity.Fire) && random.Bool(m.rng, RainExtinguishChance) {
				m.opts.Logs.Send(gamelog.ForEntity(e, gamelog.Of(gamelog.FireExtinguished)))
				m.entities.Remove(e.ID)
			}
		}
	}
}

// worldEffect applies the world to one player. Hazards in the player's hex
// take precedence over everything else. Sheltering players are not chilled
// or soaked.
func (m *Match) worldEffect(player *entity.Entity, view *entity.View, world entity.World) {
	rng := m.rng
	logs := m.opts.Logs
	motivators := player.Attributes.Motivators

	if player.Located() && random.Bool(rng, HazardChance) {
		for _, e := range view.InHex(player.MustHex()) {
			if e.Attributes.Hazard == nil {
				continue
			}
			for range e.Attributes.Hazard.Damage {
				motivators.Bump(entity.Hurt)
			}
			logs.Send(gamelog.ForPair(e, player.ID, gamelog.Of(gamelog.HazardHurt)))
			break
		}
		return
	}

	if random.Bool(rng, FallInWaterChance) && player.Located() {
		for _, e := range view.InHex(player.MustHex()) {
			if e.Attributes.WaterSource != nil {
				logs.Send(gamelog.ForPair(player, e.ID, gamelog.Of(gamelog.EntityFellInWaterSource)))
				motivators.BumpScaled(entity.Saturation, FallInWaterSaturation)
				break
			}
		}
	}

	if random.Bool(rng, HungerOrThirstChance) {
		if random.Bool(rng, 0.5) {
			motivators.Bump(entity.Hunger)
		} else {
			motivators.Bump(entity.Thirst)
		}
	}

	// Shelter keeps out the cold and the rain.
	sheltered := player.Focus().Is(entity.FocusSheltering)

	timeScale := world.TimeOfDay.ColdChanceScale()
	if !sheltered && random.Bool(rng, timeScale*world.Weather.WindChanceScale()*ColdChanceScale) {
		motivators.Bump(entity.Cold)
		logs.Send(gamelog.ForEntity(player, gamelog.Of(gamelog.EntityColdBecauseOfTime)))
	}

	if timeScale == 0 && random.Bool(rng, WarmUpChance) && motivators.Get(entity.Cold) > 0 {
		motivators.ReduceBy(entity.Cold, WarmUpAmount)
		logs.Send(gamelog.ForEntity(player, gamelog.Of(gamelog.EntityWarmBecauseOfTime)))
	}

	if !sheltered && random.Bool(rng, world.Weather.RainChanceScale()*RainChanceScale) {
		motivators.Bump(entity.Saturation)
		logs.Send(gamelog.ForEntity(player, gamelog.Of(gamelog.EntitySaturatedBecauseOfRain)))
	}

	if world.Weather == entity.LightningStorm && random.Bool(rng, LightningHitChance) {
		motivators.BumpScaled(entity.Hurt, LightningHurtScale)
		logs.Send(gamelog.ForEntity(player, gamelog.Of(gamelog.EntityHitByLightning)))
	}

	tired := TiredChance
	if world.TimeOfDay == entity.Night {
		tired = TiredAtNightChance
	}
	if random.Bool(rng, tired) {
		motivators.Bump(entity.Tiredness)
	}
}
