// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giraugh/abduction-sub000/internal/brain"
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

type recordingNotifier struct {
	batches [][]entity.Mutation
}

func (n *recordingNotifier) EntityChanges(_ context.Context, _ string, muts []entity.Mutation) {
	n.batches = append(n.batches, muts)
}

func ids(es []entity.Entity) []entity.ID {
	out := make([]entity.ID, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	cfg := Isolated(3, 4)
	m := New(cfg, Options{})

	assert.Equal(t, cfg, m.Config())
	assert.Equal(t, DefaultWorldAdvanceEvery, m.opts.WorldAdvanceEvery)
	assert.Equal(t, uint64(DefaultFlushRetries), m.opts.FlushRetries)
	assert.NotZero(t, m.opts.Seed, "seed derives from the match id")
}

func TestMatch_TickPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	notifier := &recordingNotifier{}
	m := New(Isolated(4, 3), Options{Seed: 5, Persister: store, Notifier: notifier})
	require.NoError(t, m.Initialise(nil))

	report, err := m.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Players)
	assert.Equal(t, m.entities.Len(), report.Entities)
	assert.Zero(t, m.PendingMutations())
	require.NotEmpty(t, notifier.batches)

	persisted, err := store.LoadEntities(ctx, m.Config().MatchID)
	require.NoError(t, err)
	assert.Equal(t, ids(m.Entities()), ids(persisted))
}

func TestMatch_FlushFailureKeepsPending(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.setFailWrite(true)
	m := New(Isolated(3, 2), Options{
		Seed:         5,
		Persister:    store,
		FlushRetries: 1,
		FlushBackoff: time.Millisecond,
	})
	require.NoError(t, m.Initialise(nil))
	pending := m.PendingMutations()

	_, err := m.Tick(ctx)
	require.Error(t, err)
	errutil.AssertMatchError(t, err, "FLUSH_FAILED", m.Config().MatchID)
	assert.Equal(t, pending, m.PendingMutations(), "nothing resolved while the backlog is unflushed")
	assert.Zero(t, m.ticks)

	store.setFailWrite(false)
	_, err = m.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, m.PendingMutations())
	assert.Equal(t, 1, m.ticks)

	persisted, err := store.LoadEntities(ctx, m.Config().MatchID)
	require.NoError(t, err)
	assert.Equal(t, ids(m.Entities()), ids(persisted))
}

func TestMatch_ApplyDeathLeavesCorpse(t *testing.T) {
	logs := &gamelog.Buffer{}
	p := testPlayer("doomed", at(1, -1))
	m := loaded(logs, p)

	m.apply(p, brain.Result{Outcome: brain.SideEffected, Effect: brain.SideEffect{Kind: brain.EffectDeath}})

	_, ok := m.Entity(p.ID)
	assert.False(t, ok)
	all := m.Entities()
	require.Len(t, all, 1)
	corpse := all[0]
	require.NotNil(t, corpse.Attributes.Corpse)
	assert.Equal(t, p.ID, *corpse.Attributes.Corpse)
	assert.Equal(t, hex.New(1, -1), corpse.MustHex())
	assert.True(t, corpse.Attributes.Food.MorallyWrong)
}

func TestMatch_ApplySideEffects(t *testing.T) {
	me := testPlayer("me", at(0, 0))
	other := testPlayer("other", at(0, 0))
	m := loaded(nil, me, other)

	m.apply(me, brain.Result{Outcome: brain.SideEffected, Effect: brain.SideEffect{Kind: brain.EffectBanishOther, Entity: other.ID}})
	got, _ := m.Entity(other.ID)
	assert.False(t, got.Located())

	m.apply(me, brain.Result{Outcome: brain.SideEffected, Effect: brain.SideEffect{
		Kind: brain.EffectUnbanishOther, Entity: other.ID, Hex: hex.New(2, 0),
	}})
	got, _ = m.Entity(other.ID)
	assert.Equal(t, hex.New(2, 0), got.MustHex())

	m.apply(me, brain.Result{Outcome: brain.SideEffected, Effect: brain.SideEffect{Kind: brain.EffectRemoveOther, Entity: other.ID}})
	_, ok := m.Entity(other.ID)
	assert.False(t, ok)
	_, ok = m.Entity(me.ID)
	assert.True(t, ok)
}

func TestMatch_ApplyMissingTargetPanics(t *testing.T) {
	me := testPlayer("me", at(0, 0))
	m := loaded(nil, me)

	assert.Panics(t, func() {
		m.apply(me, brain.Result{Outcome: brain.SideEffected, Effect: brain.SideEffect{Kind: brain.EffectBanishOther, Entity: "ghost"}})
	})
}

func TestMatch_Over(t *testing.T) {
	a := testPlayer("a", at(0, 0))
	b := testPlayer("b", nil)

	assert.False(t, loaded(nil, a, b).Over())
	assert.True(t, loaded(nil, a).Over())
	assert.True(t, loaded(nil).Over())
}

func TestMatch_LongRunKeepsInvariants(t *testing.T) {
	const radius = 4
	ctx := context.Background()
	m := New(Isolated(6, radius), Options{Seed: 2024, WorldAdvanceEvery: 5})
	require.NoError(t, m.Initialise(nil))

	warped := false
	for range 200 {
		_, err := m.Tick(ctx)
		require.NoError(t, err)

		for _, e := range m.Entities() {
			assertMotivatorsClamped(t, e)
			if e.Located() {
				assert.True(t, e.MustHex().WithinBounds(radius), "%s at %v", e.Name, e.MustHex())
			}
			if e.HasMarkers(entity.Player) && e.Located() {
				warped = true
			}
		}
	}
	assert.True(t, warped, "the presenter warps players in")
}
