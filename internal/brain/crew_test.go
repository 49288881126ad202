// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
	"github.com/giraugh/abduction-sub000/internal/hex"
)

func presenter(wait int) entity.Entity {
	return prop("presenter", hex.Zero, func(e *entity.Entity) {
		e.Markers = entity.NewMarkers(entity.Being, entity.Crew, entity.Alien, entity.CanTalk)
		e.Attributes.Presenter = &entity.Presenter{Wait: wait}
	})
}

func TestPresenter_WaitsThenIntroduces(t *testing.T) {
	mc := presenter(1)
	newbie := player("newbie", hex.Zero)
	newbie.Banish()
	first := "Ada"
	newbie.Attributes.FirstName = &first
	newbie.Attributes.Background = &entity.Background{Career: "pilot", Retired: true, Hometown: "Lyon"}
	f := newFixture(t, mc, newbie)

	action := PresenterNextAction(f.ctx, &mc)
	require.Equal(t, ActPresenter, action.Kind)
	assert.Equal(t, Ok, Resolve(f.ctx, &mc, action).Outcome)
	assert.Equal(t, 0, mc.Attributes.Presenter.Wait)

	action = PresenterNextAction(f.ctx, &mc)
	require.Equal(t, ActSequential, action.Kind)
	res := Resolve(f.ctx, &mc, action)
	require.Equal(t, SideEffected, res.Outcome)
	assert.Equal(t, EffectUnbanishOther, res.Effect.Kind)
	assert.Equal(t, entity.ID("newbie"), res.Effect.Entity)
	assert.Equal(t, IntroductionWait, mc.Attributes.Presenter.Wait)

	logs := f.logs.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, gamelog.EntitySayExact, logs[0].Kind)
	assert.Equal(t, "Next up we have Ada. A retired pilot warping in from Lyon", logs[0].Quote)
	assert.Equal(t, gamelog.EntityWarpIn, logs[1].Kind)
}

func TestPresenter_NothingToDo(t *testing.T) {
	mc := presenter(0)
	f := newFixture(t, mc, player("p", hex.Zero))
	assert.Equal(t, ActNothing, PresenterNextAction(f.ctx, &mc).Kind)

	stranger := player("stranger", hex.Zero)
	assert.Equal(t, ActNothing, PresenterNextAction(f.ctx, &stranger).Kind)
}

func TestCollector_HeadsForNearestCorpse(t *testing.T) {
	alpy := prop("alpy", hex.Zero, func(e *entity.Entity) { e.Attributes.Collector = &entity.Collector{} })
	f := newFixture(t, alpy)
	assert.Equal(t, ActNothing, CollectorNextAction(f.ctx, &alpy).Kind)

	dead := entity.ID("dead")
	far := prop("far", hex.New(4, 0), func(e *entity.Entity) { e.Attributes.Corpse = &dead })
	near := prop("near", hex.New(0, -2), func(e *entity.Entity) { e.Attributes.Corpse = &dead })
	held := prop("held", hex.New(0, 1), func(e *entity.Entity) {
		e.Attributes.Corpse = &dead
		e.Banish()
	})
	f = newFixture(t, alpy, far, near, held)

	action := CollectorNextAction(f.ctx, &alpy)
	assert.Equal(t, GoTowardsHex(hex.New(0, -2)), action)
}
