// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"github.com/giraugh/abduction-sub000/internal/entity"
)

func actOnFocus(f entity.Focus, ctx *SignalContext, actions *WeightedActions) {
	switch f.Kind {
	case entity.FocusSleeping:
		actions.Add(10, Sleep())

	case entity.FocusSheltering:
		actions.Add(5, Reduce(entity.Cold))
		actions.Add(5, Reduce(entity.Saturation))

		// Always leave once warm and dry.
		m := ctx.Entity.Attributes.Motivators
		if m.Get(entity.Cold) == 0 && m.Get(entity.Saturation) == 0 {
			actions.Add(10, LeaveShelter())
		}

	case entity.FocusDiscussion:
		// The partner answers through the Asked event instead.
		if f.IsLead {
			leadActions(f, ctx, actions)
		}
	}
}
