// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"github.com/giraugh/abduction-sub000/internal/entity"
)

// PlanningSignals returns the future needs e should prepare for. Entities
// with Low planning never plan.
func PlanningSignals(ctx *SignalContext) []Signal {
	e := ctx.Entity
	if e.Characteristic(entity.Planning).IsLow() {
		return nil
	}

	var signals []Signal
	hasFood := false
	for _, held := range e.ResolveInventory(ctx.Entities) {
		if held.Attributes.Food != nil {
			hasFood = true
			break
		}
	}
	if !hasFood {
		signals = append(signals, Signal{Kind: SignalPlanning, Need: NeedFoodAccess})
	}
	return signals
}

// Planning actions use low weights since they are not urgent.
func actOnPlanning(need PlanningNeed, ctx *SignalContext, actions *WeightedActions) {
	if !ctx.Entity.Located() {
		return
	}

	switch need {
	case NeedFoodAccess:
		for _, candidate := range ctx.Entities.InHex(ctx.Entity.MustHex()) {
			food := candidate.Attributes.Food
			if food == nil {
				continue
			}
			if food.MorallyWrong && !ctx.Entity.Characteristic(entity.Empathy).IsLow() {
				continue
			}
			actions.Add(2, PickUpEntity(candidate.ID))
			break
		}
	}
}
