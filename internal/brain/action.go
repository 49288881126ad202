// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
	"github.com/giraugh/abduction-sub000/internal/hex"
)

// ActionKind identifies an action variant.
type ActionKind string

// Action kinds.
const (
	ActNothing               ActionKind = "nothing"
	ActLog                   ActionKind = "log"
	ActIgnoreResult          ActionKind = "ignore_result"
	ActSequential            ActionKind = "sequential"
	ActPickUpEntity          ActionKind = "pick_up_entity"
	ActRetrieveEntity        ActionKind = "retrieve_entity"
	ActRetrieveInventoryFood ActionKind = "retrieve_inventory_food"
	ActBumpMotivator         ActionKind = "bump_motivator"
	ActReduceMotivator       ActionKind = "reduce_motivator"
	ActGreetEntity           ActionKind = "greet_entity"
	ActMournEntity           ActionKind = "mourn_entity"
	ActDiscussion            ActionKind = "discussion"
	ActPresenter             ActionKind = "presenter"
	ActGoTowardsHex          ActionKind = "go_towards_hex"
	ActGoTowards             ActionKind = "go_towards"
	ActGoToAdjacent          ActionKind = "go_to_adjacent"
	ActMoveAwayFrom          ActionKind = "move_away_from"
	ActDeath                 ActionKind = "death"
	ActBark                  ActionKind = "bark"
	ActMove                  ActionKind = "move"
	ActConsumeFoodEntity     ActionKind = "consume_food_entity"
	ActConsumeNearbyFood     ActionKind = "consume_nearby_food"
	ActSleep                 ActionKind = "sleep"
	ActWakeUp                ActionKind = "wake_up"
	ActDrinkFromWaterSource  ActionKind = "drink_from_water_source"
	ActTakeShelter           ActionKind = "take_shelter"
	ActLeaveShelter          ActionKind = "leave_shelter"
	ActSeekKnownShelter      ActionKind = "seek_known_shelter"
	ActSeekKnownWaterSource  ActionKind = "seek_known_water_source"
	ActWarpInEntity          ActionKind = "warp_in_entity"
)

// Action is a tagged variant describing what an entity attempts this tick.
// Only the fields relevant to Kind are set.
type Action struct {
	Kind ActionKind

	// Target is the other entity the action concerns, if any.
	Target entity.ID

	Motivator  entity.MotivatorKey
	Motivation float64

	Direction hex.Direction
	Hex       hex.Hex

	// Markers select destination or avoided entities for movement actions.
	Markers []entity.Marker
	// Log is emitted interstitially by movement actions and by ActLog.
	Log gamelog.Body

	TryDubious      bool
	TryMorallyWrong bool

	// Actions holds the children of ActSequential and the single child of
	// ActIgnoreResult.
	Actions []Action

	Discussion DiscussionAction
	Presenter  PresenterAction
}

// Nothing twiddles thumbs. It always has no effect.
func Nothing() Action { return Action{Kind: ActNothing} }

// Log sends body about the actor, paired with other when other is not empty.
func Log(other entity.ID, body gamelog.Body) Action {
	return Action{Kind: ActLog, Target: other, Log: body}
}

// IgnoreResult resolves a and reports no effect regardless of its outcome.
func IgnoreResult(a Action) Action {
	return Action{Kind: ActIgnoreResult, Actions: []Action{a}}
}

// Sequential tries each action in turn until one succeeds.
func Sequential(actions ...Action) Action {
	return Action{Kind: ActSequential, Actions: actions}
}

// PickUpEntity puts an item in the inventory if it fits.
func PickUpEntity(id entity.ID) Action { return Action{Kind: ActPickUpEntity, Target: id} }

// RetrieveEntity takes an item out of the inventory.
func RetrieveEntity(id entity.ID) Action { return Action{Kind: ActRetrieveEntity, Target: id} }

// RetrieveInventoryFood takes out the first food item held.
func RetrieveInventoryFood() Action { return Action{Kind: ActRetrieveInventoryFood} }

// Bump raises a motivator by its sensitivity.
func Bump(key entity.MotivatorKey) Action {
	return Action{Kind: ActBumpMotivator, Motivator: key}
}

// Reduce lowers a motivator by its sensitivity.
func Reduce(key entity.MotivatorKey) Action {
	return Action{Kind: ActReduceMotivator, Motivator: key}
}

// GreetEntity says hello and may start a discussion.
func GreetEntity(id entity.ID) Action { return Action{Kind: ActGreetEntity, Target: id} }

// MournEntity grieves for a dead entity.
func MournEntity(id entity.ID) Action { return Action{Kind: ActMournEntity, Target: id} }

// Discuss wraps a discussion sub-action.
func Discuss(d DiscussionAction) Action { return Action{Kind: ActDiscussion, Discussion: d} }

// Present wraps a presenter sub-action.
func Present(p PresenterAction) Action { return Action{Kind: ActPresenter, Presenter: p} }

// GoTowardsHex steps once toward h.
func GoTowardsHex(h hex.Hex) Action { return Action{Kind: ActGoTowardsHex, Hex: h} }

// GoTowards steps toward the nearest entity with any of markers.
func GoTowards(body gamelog.Body, markers ...entity.Marker) Action {
	return Action{Kind: ActGoTowards, Log: body, Markers: markers}
}

// GoToAdjacent steps into a neighbouring hex holding an entity with any of markers.
func GoToAdjacent(body gamelog.Body, markers ...entity.Marker) Action {
	return Action{Kind: ActGoToAdjacent, Log: body, Markers: markers}
}

// MoveAwayFrom steps in a random direction when sharing a hex with an entity
// with any of markers.
func MoveAwayFrom(body gamelog.Body, markers ...entity.Marker) Action {
	return Action{Kind: ActMoveAwayFrom, Log: body, Markers: markers}
}

// Death removes the actor from the game.
func Death() Action { return Action{Kind: ActDeath} }

// Bark exclaims about a strong motivator.
func Bark(motivation float64, key entity.MotivatorKey) Action {
	return Action{Kind: ActBark, Motivation: motivation, Motivator: key}
}

// Move steps one hex in d.
func Move(d hex.Direction) Action { return Action{Kind: ActMove, Direction: d} }

// ConsumeFoodEntity eats a specific food entity.
func ConsumeFoodEntity(id entity.ID) Action {
	return Action{Kind: ActConsumeFoodEntity, Target: id}
}

// ConsumeNearbyFood eats a random acceptable food in the current hex.
func ConsumeNearbyFood(tryDubious, tryMorallyWrong bool) Action {
	return Action{Kind: ActConsumeNearbyFood, TryDubious: tryDubious, TryMorallyWrong: tryMorallyWrong}
}

// Sleep starts or continues sleeping.
func Sleep() Action { return Action{Kind: ActSleep} }

// WakeUp stops sleeping.
func WakeUp() Action { return Action{Kind: ActWakeUp} }

// DrinkFromWaterSource drinks from a water source in the current hex.
func DrinkFromWaterSource(tryDubious bool) Action {
	return Action{Kind: ActDrinkFromWaterSource, TryDubious: tryDubious}
}

// TakeShelter enters shelter in the current hex.
func TakeShelter() Action { return Action{Kind: ActTakeShelter} }

// LeaveShelter leaves the current shelter.
func LeaveShelter() Action { return Action{Kind: ActLeaveShelter} }

// SeekKnownShelter steps toward the nearest remembered shelter.
func SeekKnownShelter() Action { return Action{Kind: ActSeekKnownShelter} }

// SeekKnownWaterSource steps toward the nearest remembered safe water.
func SeekKnownWaterSource() Action { return Action{Kind: ActSeekKnownWaterSource} }

// WarpInEntity brings a banished entity into the world near the centre.
func WarpInEntity(id entity.ID) Action { return Action{Kind: ActWarpInEntity, Target: id} }

// AllMovements returns a move in each of the six directions.
func AllMovements() []Action {
	dirs := hex.AllMovements()
	moves := make([]Action, len(dirs))
	for i, d := range dirs {
		moves[i] = Move(d)
	}
	return moves
}

// Outcome is how an action resolved.
type Outcome uint8

// Outcomes.
const (
	// NoEffect means nothing happened, e.g. there was no food to eat.
	NoEffect Outcome = iota
	// Ok means the action succeeded, even if nothing visible happened.
	Ok
	// SideEffected means the action succeeded and the world must apply Result.Effect.
	SideEffected
)

func (o Outcome) String() string {
	switch o {
	case NoEffect:
		return "no_effect"
	case Ok:
		return "ok"
	case SideEffected:
		return "side_effect"
	default:
		return "unknown"
	}
}

// Result is the outcome of resolving an action.
type Result struct {
	Outcome Outcome
	Effect  SideEffect
}

var (
	resultNoEffect = Result{Outcome: NoEffect}
	resultOk       = Result{Outcome: Ok}
)

func withEffect(se SideEffect) Result {
	return Result{Outcome: SideEffected, Effect: se}
}

// SideEffectKind identifies a side effect variant.
type SideEffectKind string

// Side effect kinds.
const (
	// EffectDeath kills the actor.
	EffectDeath SideEffectKind = "death"
	// EffectRemoveOther deletes another entity, e.g. eaten food.
	EffectRemoveOther SideEffectKind = "remove_other"
	// EffectBanishOther removes another entity's location.
	EffectBanishOther SideEffectKind = "banish_other"
	// EffectUnbanishOther places another entity at Hex.
	EffectUnbanishOther SideEffectKind = "unbanish_other"
	// EffectSetFocus sets another entity's focus.
	EffectSetFocus SideEffectKind = "set_focus"
	// EffectShareMeme teaches another entity a meme.
	EffectShareMeme SideEffectKind = "share_meme"
)

// SideEffect is a change to the world beyond the actor itself.
type SideEffect struct {
	Kind   SideEffectKind
	Entity entity.ID
	Hex    hex.Hex
	Focus  entity.Focus
	Meme   entity.Meme
}
