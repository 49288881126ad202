// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"fmt"
	"log/slog"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
)

// IntroductionWait is how long the presenter waits between warping in players.
const IntroductionWait = 10

// PresenterKind identifies a presenter sub-action.
type PresenterKind uint8

// Presenter sub-action kinds.
const (
	PresenterWait PresenterKind = iota
	PresenterStartWaiting
	PresenterIntroducePlayer
)

// PresenterAction is a scripted action only the presenter takes.
type PresenterAction struct {
	Kind   PresenterKind
	Ticks  int
	Player entity.ID
}

// PresenterNextAction warps in banished players one at a time, waiting
// between each.
func PresenterNextAction(ctx *Context, presenter *entity.Entity) Action {
	state := presenter.Attributes.Presenter
	if state == nil {
		slog.Warn("non-presenter tried to act as presenter", "entity_id", presenter.ID)
		return Nothing()
	}
	if state.Wait > 0 {
		return Present(PresenterAction{Kind: PresenterWait})
	}

	next := ctx.Entities.Find(func(e *entity.Entity) bool {
		return !e.Located() && e.HasMarkers(entity.Player)
	})
	if next == nil {
		return Nothing()
	}
	return Sequential(
		IgnoreResult(Present(PresenterAction{Kind: PresenterIntroducePlayer, Player: next.ID})),
		Present(PresenterAction{Kind: PresenterStartWaiting, Ticks: IntroductionWait}),
		WarpInEntity(next.ID),
	)
}

// CollectorNextAction heads for the nearest corpse still in the world.
func CollectorNextAction(ctx *Context, collector *entity.Entity) Action {
	if collector.Attributes.Collector == nil {
		slog.Warn("non-collector tried to act as collector", "entity_id", collector.ID)
		return Nothing()
	}
	if !collector.Located() {
		return Nothing()
	}
	here := collector.MustHex()

	var nearest *entity.Entity
	for _, e := range ctx.Entities.All() {
		if e.Attributes.Corpse == nil || !e.Located() {
			continue
		}
		if nearest == nil || e.MustHex().DistTo(here) < nearest.MustHex().DistTo(here) {
			nearest = e
		}
	}
	if nearest == nil {
		return Nothing()
	}
	return GoTowardsHex(nearest.MustHex())
}

func (r *resolver) present(p PresenterAction) Result {
	state := r.me.Attributes.Presenter
	if state == nil {
		slog.Warn("presenter action by non-presenter", "entity_id", r.me.ID)
		return resultNoEffect
	}

	switch p.Kind {
	case PresenterWait:
		state.Wait = max(state.Wait-1, 0)
		return resultOk

	case PresenterStartWaiting:
		state.Wait = p.Ticks
		// No effect so it can lead a sequence.
		return resultNoEffect

	default:
		player := r.ctx.Entities.ByID(p.Player)
		if player == nil {
			panic(fmt.Sprintf("presenter introducing unknown player %s", p.Player))
		}
		r.send(gamelog.ForEntity(r.me, gamelog.SayExact(introduction(player))))
		return resultOk
	}
}

func introduction(player *entity.Entity) string {
	name := player.Name
	if player.Attributes.FirstName != nil {
		name = *player.Attributes.FirstName
	}
	bg := player.Attributes.Background
	if bg == nil {
		return fmt.Sprintf("Next up we have %s", name)
	}
	retired := ""
	if bg.Retired {
		retired = "retired "
	}
	return fmt.Sprintf("Next up we have %s. A %s%s warping in from %s", name, retired, bg.Career, bg.Hometown)
}
