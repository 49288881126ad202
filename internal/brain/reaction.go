// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/event"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
)

func actOnEvent(ev *event.Event, ctx *SignalContext, actions *WeightedActions) {
	me := ctx.Entity
	if ev.Subject == me.ID {
		return
	}

	switch ev.Kind {
	case event.Asked:
		respondTo(ev, ctx, actions)

	case event.ArriveInHex:
		if !ctx.Focus.Is(entity.FocusUnfocused) {
			return
		}
		other := ctx.Entities.ByID(ev.Subject)
		if other == nil || !other.HasMarkers(entity.Being) || !other.Focus().Is(entity.FocusUnfocused) {
			return
		}
		switch me.Characteristic(entity.Friendliness) {
		case entity.High:
			actions.Add(10, GreetEntity(other.ID))
		case entity.Average:
			actions.Add(3, GreetEntity(other.ID))
		case entity.Low:
			if other.HasMarkers(entity.Player) {
				actions.Add(5, MoveAwayFrom(gamelog.Of(gamelog.EntityAvoid), entity.Player))
			}
		}

	case event.LeaveHex:
		// Friendly entities follow those they like.
		if ctx.Focus.Is(entity.FocusUnfocused) &&
			me.Characteristic(entity.Friendliness).IsHigh() &&
			me.Relations.Like(ev.Subject) {
			actions.Add(3, GoToAdjacent(gamelog.Of(gamelog.EntityTrackBeing), entity.Being))
		}

	case event.Death:
		if !ctx.Focus.Is(entity.FocusUnfocused) {
			return
		}
		_, known := me.Relations.Associates[ev.Subject]
		switch {
		case known:
			actions.Add(pick(me.Characteristic(entity.Empathy).IsHigh(), 30, 20), MournEntity(ev.Subject))
		case !me.Characteristic(entity.Empathy).IsLow():
			actions.Add(3, MournEntity(ev.Subject))
		}
	}
}
