// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/giraugh/abduction-sub000/internal/core"
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

// harness runs a Runner in the background and collects tick event kinds.
type harness struct {
	runner *Runner
	store  *memStore
	stop   func()
	done   chan error

	mu    sync.Mutex
	kinds []core.EventType
}

func startRunner(t *testing.T, cfg RunnerConfig, store *memStore) *harness {
	t.Helper()
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Millisecond
	}
	if cfg.WorldRadius == 0 {
		cfg.WorldRadius = 2
	}
	cfg.FlushRetries = 1
	cfg.FlushBackoff = time.Millisecond

	b := core.NewBroadcaster()
	sub := b.Subscribe(core.StreamTick)
	h := &harness{
		runner: NewRunner(cfg, store, core.NewPublisher(b, nil)),
		store:  store,
		done:   make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for ev := range sub {
			h.mu.Lock()
			h.kinds = append(h.kinds, ev.Type)
			h.mu.Unlock()
		}
	}()
	go func() { h.done <- h.runner.Run(ctx) }()

	var once sync.Once
	h.stop = func() { once.Do(func() { h.shutdown(t, cancel, b, sub, collected) }) }
	return h
}

func (h *harness) shutdown(t *testing.T, cancel context.CancelFunc, b *core.Broadcaster, sub chan core.Event, collected chan struct{}) {
	t.Helper()
	cancel()
	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Error("runner did not stop")
	}
	b.Unsubscribe(core.StreamTick, sub)
	<-collected
}

func (h *harness) eventKinds() []core.EventType {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]core.EventType(nil), h.kinds...)
}

func TestRunner_SinglePlayerMatchEndsImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newMemStore()
	h := startRunner(t, RunnerConfig{PlayerCount: 1, Cooldown: time.Hour}, store)
	defer h.stop()

	require.Eventually(t, func() bool {
		matches := store.snapshot()
		return len(matches) == 1 && matches[0].Complete
	}, 5*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		kinds := h.eventKinds()
		return len(kinds) > 0 && kinds[len(kinds)-1] == core.EventTypeEndOfMatch
	}, 5*time.Second, 5*time.Millisecond)

	kinds := h.eventKinds()
	assert.Equal(t, core.EventTypeStartOfMatch, kinds[0])
	assert.Contains(t, kinds, core.EventTypeEntityChanges)
	assert.Contains(t, kinds, core.EventTypeStartOfTick)
	assert.Contains(t, kinds, core.EventTypeEndOfTick)

	status := h.runner.Status()
	assert.False(t, status.Running)
	assert.Equal(t, store.snapshot()[0].MatchID, status.MatchID)

}

func TestRunner_EndMatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newMemStore()
	h := startRunner(t, RunnerConfig{PlayerCount: 4, Cooldown: time.Hour}, store)
	defer h.stop()

	require.Eventually(t, func() bool { return h.runner.Status().TickID >= 2 }, 5*time.Second, time.Millisecond)
	assert.True(t, h.runner.Status().Running)
	assert.True(t, h.runner.Ready())
	assert.NoError(t, h.runner.CheckReady())

	h.runner.EndMatch()

	require.Eventually(t, func() bool {
		matches := store.snapshot()
		return len(matches) == 1 && matches[0].Complete
	}, 5*time.Second, 5*time.Millisecond)

	cfg, ok := h.runner.MatchConfig()
	require.True(t, ok)
	assert.True(t, cfg.Complete)
}

func TestRunner_NextMatchCarriesOverSurvivors(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newMemStore()
	h := startRunner(t, RunnerConfig{PlayerCount: 1, Cooldown: time.Millisecond}, store)
	defer h.stop()

	require.Eventually(t, func() bool { return len(store.snapshot()) >= 2 }, 5*time.Second, 5*time.Millisecond)
	h.stop()

	matches := store.snapshot()
	first, second := matches[0], matches[1]
	require.NotNil(t, second.PrecedingMatchID)
	assert.Equal(t, first.MatchID, *second.PrecedingMatchID)

	survivors, err := store.LoadEntities(context.Background(), first.MatchID)
	require.NoError(t, err)
	next, err := store.LoadEntities(context.Background(), second.MatchID)
	require.NoError(t, err)

	players := func(es []entity.Entity) []entity.ID {
		var out []entity.ID
		for _, e := range es {
			if e.HasMarkers(entity.Player) {
				out = append(out, e.ID)
			}
		}
		return out
	}
	require.NotEmpty(t, players(survivors))
	assert.Subset(t, players(next), players(survivors))
}

func TestRunner_ResumesIncompleteMatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := newMemStore()
	existing := New(Isolated(3, 2), Options{Seed: 8, Persister: store})
	require.NoError(t, existing.Initialise(nil))
	require.NoError(t, store.CreateMatch(ctx, existing.Config()))
	require.NoError(t, existing.Flush(ctx))

	h := startRunner(t, RunnerConfig{PlayerCount: 3, Cooldown: time.Hour}, store)
	defer h.stop()

	require.Eventually(t, func() bool { return h.runner.Status().TickID >= 1 }, 5*time.Second, time.Millisecond)
	assert.Equal(t, existing.Config().MatchID, h.runner.Status().MatchID)
	assert.Len(t, store.snapshot(), 1, "no new match was created")
	assert.NotContains(t, h.eventKinds(), core.EventTypeStartOfMatch)
	assert.NotEmpty(t, h.runner.Entities())
}

func TestRunner_FailedFlushPausesReadiness(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := newMemStore()
	existing := New(Isolated(3, 2), Options{Seed: 8, Persister: store})
	require.NoError(t, existing.Initialise(nil))
	require.NoError(t, store.CreateMatch(ctx, existing.Config()))
	require.NoError(t, existing.Flush(ctx))

	store.setFailWrite(true)
	h := startRunner(t, RunnerConfig{PlayerCount: 3, Cooldown: time.Hour}, store)
	defer h.stop()

	require.Eventually(t, func() bool {
		return h.runner.Status().TickID >= 2 && !h.runner.Ready()
	}, 5*time.Second, time.Millisecond)
	errutil.AssertMatchError(t, h.runner.CheckReady(), "NOT_READY", h.runner.Status().MatchID)

	store.setFailWrite(false)
	require.Eventually(t, h.runner.Ready, 5*time.Second, time.Millisecond)
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(Status{MatchID: "m1", TickID: 3, Players: 2, Entities: 40, Running: true, Ready: true})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"match_id":"m1","tick_id":3,"players":2,"entities":40,"running":true,"ready":true}`,
		string(data))
}
