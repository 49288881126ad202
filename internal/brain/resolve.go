// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package brain turns entity state into actions and resolves them.
//
// Each tick an entity gathers signals (motivators, visible events, its focus
// and planning needs), each signal proposes weighted actions, and one is
// sampled. Resolution mutates only the acting entity; changes to anything
// else are returned as a SideEffect for the scheduler to apply.
package brain

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/event"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/internal/random"
)

// Tuning values used during resolution.
const (
	SleepTurns       = 25
	RestRecovery     = 0.2
	MoveTiredness    = 0.3
	MaxFoodNutrition = 0.1
	WarpInRadius     = 3
)

// Context is what resolution reads and writes besides the acting entity.
type Context struct {
	// Entities is the frozen snapshot for the current tick.
	Entities *entity.View
	// Radius bounds movement.
	Radius int
	World  entity.World
	Logs   gamelog.Sink
	// Events receives events raised this tick; they become visible next tick.
	Events *event.Buffer
	Rng    *rand.Rand
}

type resolver struct {
	ctx *Context
	me  *entity.Entity
}

func (r *resolver) send(l gamelog.Log) {
	r.ctx.Logs.Send(l)
}

// Resolve applies action to me, which must be the live mutable copy of the
// acting entity. An entity without a hex cannot act.
func Resolve(ctx *Context, me *entity.Entity, action Action) Result {
	r := &resolver{ctx: ctx, me: me}
	return r.resolve(action)
}

func (r *resolver) resolve(action Action) Result {
	me := r.me
	if !me.Located() {
		return resultNoEffect
	}
	here := me.MustHex()
	motivators := me.Attributes.Motivators

	switch action.Kind {
	case ActNothing:
		return resultNoEffect

	case ActLog:
		if action.Target != "" {
			r.send(gamelog.ForPair(me, action.Target, action.Log))
		} else {
			r.send(gamelog.ForEntity(me, action.Log))
		}
		return resultNoEffect

	case ActIgnoreResult:
		for _, child := range action.Actions {
			r.resolve(child)
		}
		return resultNoEffect

	case ActSequential:
		for _, child := range action.Actions {
			res := r.resolve(child)
			if res.Outcome == SideEffected {
				return res
			}
			if res.Outcome == Ok {
				break
			}
		}
		// A sequence whose step succeeded still reports no effect.
		return resultNoEffect

	case ActPickUpEntity:
		item := r.ctx.Entities.ByID(action.Target)
		if item == nil {
			slog.Warn("cannot pick up non-existent entity", "entity_id", me.ID, "target", action.Target)
			return resultNoEffect
		}
		if item.Attributes.Item == nil {
			slog.Warn("cannot pick up non-item", "entity_id", me.ID, "target", action.Target)
			return resultNoEffect
		}
		if item.Attributes.Item.Heft > me.AvailableInventoryLoad(r.ctx.Entities) {
			return resultNoEffect
		}
		r.send(gamelog.ForPair(me, item.ID, gamelog.Of(gamelog.EntityPickUp)))
		me.Relations.AddToInventory(item.ID)
		return withEffect(SideEffect{Kind: EffectBanishOther, Entity: item.ID})

	case ActBumpMotivator:
		motivators.Bump(action.Motivator)
		return resultOk

	case ActReduceMotivator:
		motivators.Reduce(action.Motivator)
		return resultOk

	case ActWakeUp:
		if !me.Focus().Is(entity.FocusSleeping) {
			return resultNoEffect
		}
		r.stopSleeping()
		return resultOk

	case ActSleep:
		f := me.Focus()
		switch {
		case f.Is(entity.FocusSleeping) && f.RemainingTurns <= 1:
			r.stopSleeping()
		case f.Is(entity.FocusSleeping):
			f.RemainingTurns--
			me.SetFocus(f)
			// Waking early still leaves the entity groggy.
			motivators.ReduceBy(entity.Tiredness, RestRecovery)
			r.send(gamelog.ForEntity(me, gamelog.Of(gamelog.EntityKeepSleeping)))
		default:
			me.SetFocus(entity.Sleeping(SleepTurns))
			r.send(gamelog.ForEntity(me, gamelog.Of(gamelog.EntityStartSleeping)))
		}
		return resultOk

	case ActDeath:
		r.send(gamelog.ForEntity(me, gamelog.Of(gamelog.EntityDeath)))
		event.Of(event.Death, me.ID).
			WithPhysicalSenses(0).
			TargetsHexOf(me).
			Add(r.ctx.Events)
		return withEffect(SideEffect{Kind: EffectDeath})

	case ActMoveAwayFrom:
		var avoid []*entity.Entity
		for _, e := range r.ctx.Entities.InHex(here) {
			if e.ID != me.ID && e.HasAnyMarker(action.Markers...) {
				avoid = append(avoid, e)
			}
		}
		other, ok := random.Choose(r.ctx.Rng, avoid)
		if !ok {
			return resultNoEffect
		}
		r.send(gamelog.ForPair(me, other.ID, action.Log))
		move, _ := random.Choose(r.ctx.Rng, AllMovements())
		return r.resolve(move)

	case ActGoToAdjacent:
		if r.hexHasAny(here, action.Markers) {
			return resultNoEffect
		}
		var candidates []*entity.Entity
		for _, e := range r.ctx.Entities.AdjacentTo(here) {
			if e.HasAnyMarker(action.Markers...) {
				candidates = append(candidates, e)
			}
		}
		target, ok := random.Choose(r.ctx.Rng, candidates)
		if !ok {
			return resultNoEffect
		}
		dir, ok := here.DirectionTo(target.MustHex())
		if !ok {
			panic(fmt.Sprintf("cannot determine direction from %s to adjacent %s", here, target.MustHex()))
		}
		r.send(gamelog.ForEntity(me, action.Log))
		return r.resolve(Move(dir))

	case ActGoTowards:
		if r.hexHasAny(here, action.Markers) {
			return resultNoEffect
		}
		var nearest *entity.Entity
		for _, e := range r.ctx.Entities.All() {
			if !e.Located() || !e.HasAnyMarker(action.Markers...) {
				continue
			}
			if nearest == nil || e.MustHex().DistTo(here) < nearest.MustHex().DistTo(here) {
				nearest = e
			}
		}
		if nearest == nil {
			return resultNoEffect
		}
		r.send(gamelog.ForEntity(me, action.Log))
		return r.resolve(GoTowardsHex(nearest.MustHex()))

	case ActGoTowardsHex:
		if action.Hex == here {
			return resultNoEffect
		}
		best, found := hex.Hex{}, false
		for _, n := range here.Neighbours() {
			if !n.WithinBounds(r.ctx.Radius) {
				continue
			}
			if !found || n.DistTo(action.Hex) < best.DistTo(action.Hex) {
				best, found = n, true
			}
		}
		if !found {
			return resultNoEffect
		}
		dir, _ := here.DirectionTo(best)
		return r.resolve(Move(dir))

	case ActBark:
		r.send(gamelog.ForEntity(me, gamelog.Bark(action.Motivation, action.Motivator)))
		// No effect so barks stack with other steps of a sequence and still bore.
		return resultNoEffect

	case ActConsumeFoodEntity:
		item := r.ctx.Entities.ByID(action.Target)
		if item == nil || item.Attributes.Food == nil {
			panic(fmt.Sprintf("entity %s cannot consume %s: not food", me.ID, action.Target))
		}
		food := item.Attributes.Food
		motivators.ReduceBy(entity.Hunger, math.Min(food.Sustenance, MaxFoodNutrition))
		if food.MorallyWrong {
			r.send(gamelog.ForPair(me, item.ID, gamelog.Of(gamelog.EntityHesitateBeforeConsume)))
		}
		r.send(gamelog.ForPair(me, item.ID, gamelog.Of(gamelog.EntityConsume)))
		if food.Sustenance < 0 {
			motivators.BumpScaled(entity.Sickness, food.Sustenance)
			r.send(gamelog.ForPair(me, item.ID, gamelog.Of(gamelog.EntityComplainAboutTaste)))
		}
		return withEffect(SideEffect{Kind: EffectRemoveOther, Entity: item.ID})

	case ActRetrieveInventoryFood:
		for _, held := range me.ResolveInventory(r.ctx.Entities) {
			if held.Attributes.Food != nil {
				return r.resolve(RetrieveEntity(held.ID))
			}
		}
		return resultNoEffect

	case ActRetrieveEntity:
		me.Relations.RemoveFromInventory(action.Target)
		item := r.ctx.Entities.ByID(action.Target)
		if item == nil {
			slog.Warn("retrieving non-existent entity from inventory", "entity_id", me.ID, "target", action.Target)
			return resultNoEffect
		}
		r.send(gamelog.ForPair(me, item.ID, gamelog.Of(gamelog.EntityRetrieve)))
		return withEffect(SideEffect{Kind: EffectUnbanishOther, Entity: item.ID, Hex: here})

	case ActConsumeNearbyFood:
		var candidates []*entity.Entity
		for _, e := range r.ctx.Entities.InHex(here) {
			food := e.Attributes.Food
			switch {
			case food == nil:
			case food.Poison > 0:
				if action.TryDubious && (!food.MorallyWrong || action.TryMorallyWrong) {
					candidates = append(candidates, e)
				}
			default:
				candidates = append(candidates, e)
			}
		}
		food, ok := random.Choose(r.ctx.Rng, candidates)
		if !ok {
			return resultNoEffect
		}
		return r.resolve(ConsumeFoodEntity(food.ID))

	case ActMournEntity:
		motivators.Bump(entity.Sadness)
		corpse := r.ctx.Entities.Find(func(e *entity.Entity) bool {
			return e.Attributes.Corpse != nil && *e.Attributes.Corpse == action.Target
		})
		if corpse != nil {
			r.send(gamelog.ForPair(me, corpse.ID, gamelog.Of(gamelog.EntityMournOverCorpse)))
		} else {
			slog.Warn("no corpse to mourn over", "entity_id", me.ID, "dead", action.Target)
		}
		return resultOk

	case ActDrinkFromWaterSource:
		return r.drink(here, action.TryDubious)

	case ActGreetEntity:
		return r.greet(action.Target)

	case ActTakeShelter:
		var shelter *entity.Entity
		for _, e := range r.ctx.Entities.InHex(here) {
			if e.HasMarkers(entity.Shelter) {
				shelter = e
				break
			}
		}
		if shelter == nil {
			return resultNoEffect
		}
		me.SetFocus(entity.Sheltering(shelter.ID))
		r.send(gamelog.ForPair(me, shelter.ID, gamelog.Of(gamelog.EntityTakeShelter)))
		me.Memes().Insert(entity.ShelterAt(shelter.MustHex()))
		return resultOk

	case ActLeaveShelter:
		f := me.Focus()
		if !f.Is(entity.FocusSheltering) {
			slog.Warn("tried to leave shelter but not in shelter", "entity_id", me.ID)
			return resultNoEffect
		}
		me.SetFocus(entity.Unfocused())
		r.send(gamelog.ForPair(me, f.ShelterEntityID, gamelog.Of(gamelog.EntityLeaveShelter)))
		return resultOk

	case ActSeekKnownWaterSource:
		return r.seek(here, me.Memes().WaterSourceLocations())

	case ActSeekKnownShelter:
		return r.seek(here, me.Memes().ShelterLocations())

	case ActWarpInEntity:
		to := hex.RandomInBounds(r.ctx.Rng, WarpInRadius)
		r.send(gamelog.ForPair(me, action.Target, gamelog.Of(gamelog.EntityWarpIn)))
		return withEffect(SideEffect{Kind: EffectUnbanishOther, Entity: action.Target, Hex: to})

	case ActMove:
		to := here.Step(action.Direction)
		if !to.WithinBounds(r.ctx.Radius) {
			// The step is dropped but the turn still counts as taken.
			return resultOk
		}
		motivators.Bump(entity.Thirst)
		motivators.BumpScaled(entity.Tiredness, MoveTiredness)

		event.Of(event.LeaveHex, me.ID).
			Targets(event.ToHex(here)).
			WithPhysicalSenses(0).
			Add(r.ctx.Events)
		event.Of(event.ArriveInHex, me.ID).
			Targets(event.ToHex(to)).
			WithSense(entity.Vision, 0).
			WithSense(entity.Hearing, 0).
			Add(r.ctx.Events)

		me.SetHex(to)
		r.send(gamelog.ForEntity(me, gamelog.Movement(action.Direction)))
		return resultOk

	case ActDiscussion:
		return r.discuss(action.Discussion)

	case ActPresenter:
		return r.present(action.Presenter)

	default:
		panic(fmt.Sprintf("unknown action kind %q", action.Kind))
	}
}

func (r *resolver) stopSleeping() {
	r.me.SetFocus(entity.Unfocused())
	r.me.Attributes.Motivators.ReduceBy(entity.Hurt, RestRecovery)
	r.send(gamelog.ForEntity(r.me, gamelog.Of(gamelog.EntityStopSleeping)))
}

func (r *resolver) hexHasAny(h hex.Hex, markers []entity.Marker) bool {
	for _, e := range r.ctx.Entities.InHex(h) {
		if e.HasAnyMarker(markers...) {
			return true
		}
	}
	return false
}

func (r *resolver) seek(here hex.Hex, known []hex.Hex) Result {
	if len(known) == 0 {
		return resultNoEffect
	}
	nearest := known[0]
	for _, h := range known[1:] {
		if h.DistTo(here) < nearest.DistTo(here) {
			nearest = h
		}
	}
	return r.resolve(GoTowardsHex(nearest))
}

func (r *resolver) drink(here hex.Hex, tryDubious bool) Result {
	me := r.me
	memes := me.Memes()

	var candidates []*entity.Entity
	for _, e := range r.ctx.Entities.InHex(here) {
		ws := e.Attributes.WaterSource
		if ws == nil || !memes.AssumablySafe(e.ID) {
			continue
		}
		if ws.Poison > 0 && !tryDubious {
			continue
		}
		candidates = append(candidates, e)
	}
	source, ok := random.Choose(r.ctx.Rng, candidates)
	if !ok {
		return resultNoEffect
	}
	ws := source.Attributes.WaterSource

	me.Attributes.Motivators.Clear(entity.Thirst)
	r.send(gamelog.ForPair(me, source.ID, gamelog.Of(gamelog.EntityDrinkFrom)))

	if ws.Poison > 0 {
		me.Attributes.Motivators.BumpScaled(entity.Sickness, 2*ws.Poison)
		r.send(gamelog.ForPair(me, source.ID, gamelog.Of(gamelog.EntityComplainAboutTaste)))
		memes.RememberIsDangerous(source.ID)
	} else {
		memes.RememberIsSafe(source.ID)
		memes.Insert(entity.WaterSourceAt(source.MustHex()))
	}
	return resultOk
}

func (r *resolver) greet(id entity.ID) Result {
	me := r.me
	other := r.ctx.Entities.ByID(id)
	if other == nil {
		slog.Warn("cannot greet non-existent entity", "entity_id", me.ID, "target", id)
		return resultNoEffect
	}

	bond := me.Relations.Bond(id)
	r.send(gamelog.ForPair(me, id, gamelog.Greet(bond, false)))

	// Entities without characteristics count as Average, so animals are friendly.
	if other.Characteristic(entity.Friendliness) < entity.Average {
		r.send(gamelog.ForPair(other, me.ID, gamelog.Of(gamelog.EntityIgnore)))
		me.Relations.DecreaseBond(id)
		return resultOk
	}

	me.Relations.IncreaseBond(id)
	if !other.HasMarkers(entity.CanTalk) {
		return resultOk
	}

	interest := min(max(int(bond*MaxInterest), MinInterest), MaxInterest)
	r.send(gamelog.ForPair(other, me.ID, gamelog.Greet(bond, true)))
	me.SetFocus(entity.Discussion(id, interest, true))
	return withEffect(SideEffect{
		Kind:   EffectSetFocus,
		Entity: id,
		Focus:  entity.Discussion(me.ID, interest, false),
	})
}
