// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package match runs matches: it generates the world, resolves ticks and
// sequences one match after another.
package match

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/giraugh/abduction-sub000/internal/brain"
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/event"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
	"github.com/giraugh/abduction-sub000/internal/random"
)

// Default tuning for a match.
const (
	DefaultWorldAdvanceEvery = 30
	DefaultFlushRetries      = 3
	DefaultFlushBackoff      = 100 * time.Millisecond
)

// Options configures a Match beyond its persisted Config.
type Options struct {
	// Seed seeds the match's random source. Zero derives it from the match id.
	Seed uint64
	// WorldAdvanceEvery is the number of ticks between time of day changes.
	WorldAdvanceEvery int
	Logs              gamelog.Sink
	Persister         entity.Persister
	Notifier          entity.ChangeNotifier
	FlushRetries      uint64
	FlushBackoff      time.Duration
}

// Match is the state of one running match. It is not safe for concurrent
// use; the runner serialises access.
type Match struct {
	config   Config
	entities *entity.Manager
	events   *event.Store
	rng      *rand.Rand
	opts     Options
	ticks    int
}

// ActionRecord is one player action resolved during a tick.
type ActionRecord struct {
	Entity  entity.ID
	Kind    brain.ActionKind
	Outcome brain.Outcome
}

// Report summarises a tick.
type Report struct {
	Actions  []ActionRecord
	Deaths   int
	Entities int
	Players  int
}

type discardPersister struct{}

func (discardPersister) AppendMutations(context.Context, string, []entity.Mutation) error { return nil }

// New creates an empty match. Call Load or Initialise before ticking.
func New(cfg Config, opts Options) *Match {
	if opts.Seed == 0 {
		opts.Seed = random.SeedFor(cfg.MatchID)
	}
	if opts.WorldAdvanceEvery <= 0 {
		opts.WorldAdvanceEvery = DefaultWorldAdvanceEvery
	}
	if opts.Logs == nil {
		opts.Logs = gamelog.Discard
	}
	if opts.Persister == nil {
		opts.Persister = discardPersister{}
	}
	if opts.FlushRetries == 0 {
		opts.FlushRetries = DefaultFlushRetries
	}
	if opts.FlushBackoff <= 0 {
		opts.FlushBackoff = DefaultFlushBackoff
	}

	return &Match{
		config:   cfg,
		entities: entity.NewManager(cfg.MatchID),
		events:   event.NewStore(),
		rng:      random.New(opts.Seed),
		opts:     opts,
	}
}

// Config returns the match configuration.
func (m *Match) Config() Config {
	return m.config
}

// MarkComplete flags the match as finished.
func (m *Match) MarkComplete() {
	m.config.Complete = true
}

// Load restores a match from persisted entities.
func (m *Match) Load(entities []entity.Entity) {
	m.entities.Load(entities)
}

// Entities returns copies of every live entity.
func (m *Match) Entities() []entity.Entity {
	return m.entities.All()
}

// Entity returns a copy of one live entity.
func (m *Match) Entity(id entity.ID) (entity.Entity, bool) {
	return m.entities.Get(id)
}

// Players counts player entities, located or not.
func (m *Match) Players() int {
	n := 0
	for _, e := range m.entities.All() {
		if e.HasMarkers(entity.Player) {
			n++
		}
	}
	return n
}

// Over reports whether at most one player remains.
func (m *Match) Over() bool {
	return m.Players() <= 1
}

// PendingMutations is the number of changes not yet flushed.
func (m *Match) PendingMutations() int {
	return m.entities.Pending()
}

// Tick resolves one tick and flushes its changes. If changes from an
// earlier tick are still unflushed, they are retried first and the tick is
// not resolved unless that succeeds.
func (m *Match) Tick(ctx context.Context) (Report, error) {
	if m.entities.Pending() > 0 {
		if err := m.Flush(ctx); err != nil {
			return Report{}, err
		}
	}

	report := m.step()
	err := m.Flush(ctx)
	report.Entities = m.entities.Len()
	report.Players = m.Players()
	return report, err
}

// Flush persists pending mutations, retrying with exponential backoff.
func (m *Match) Flush(ctx context.Context) error {
	backoff := retry.WithMaxRetries(m.opts.FlushRetries, retry.NewExponential(m.opts.FlushBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := m.entities.Flush(ctx, m.opts.Persister, m.opts.Notifier); err != nil {
			slog.WarnContext(ctx, "flush failed",
				"match_id", m.config.MatchID,
				"pending", m.entities.Pending(),
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// step resolves the tick in memory.
func (m *Match) step() Report {
	var report Report
	m.ticks++

	view := m.entities.Snapshot()
	world := m.maybeAdvanceWorld()
	m.globalEffects(view, world)

	events := m.events.View()
	pending := &event.Buffer{}
	ctx := &brain.Context{
		Entities: view,
		Radius:   m.config.WorldRadius,
		World:    world,
		Logs:     m.opts.Logs,
		Events:   pending,
		Rng:      m.rng,
	}

	for _, players := range playersByHex(view) {
		if chosen, ok := random.Choose(m.rng, players); ok {
			player := chosen.Clone()
			m.worldEffect(&player, view, world)
			m.entities.Upsert(player)
		}

		chosen, ok := random.Choose(m.rng, players)
		if !ok {
			continue
		}
		// Re-read to keep the world effect above.
		player, ok := m.entities.Get(chosen.ID)
		if !ok {
			continue
		}

		action := brain.NextAction(ctx, &player, events.SignalsFor(&player))
		res := brain.Resolve(ctx, &player, action)
		report.Actions = append(report.Actions, ActionRecord{Entity: player.ID, Kind: action.Kind, Outcome: res.Outcome})

		if res.Outcome == brain.NoEffect {
			player.Attributes.Motivators.BumpScaled(entity.Boredom, 2)
		} else {
			player.Attributes.Motivators.Clear(entity.Boredom)
		}

		if res.Outcome == brain.SideEffected && res.Effect.Kind == brain.EffectDeath {
			report.Deaths++
		}
		m.apply(player, res)
	}

	m.crewAct(ctx, view)
	m.events.EndTick(pending)
	return report
}

// apply stores the acting entity and carries out its side effect.
func (m *Match) apply(me entity.Entity, res brain.Result) {
	if res.Outcome != brain.SideEffected {
		m.entities.Upsert(me)
		return
	}

	se := res.Effect
	switch se.Kind {
	case brain.EffectDeath:
		m.entities.Remove(me.ID)
		m.entities.Upsert(entity.NewCorpse(m.rng, me))
		return

	case brain.EffectRemoveOther:
		m.entities.Remove(se.Entity)

	case brain.EffectBanishOther:
		m.mustMutate(se.Entity, func(o *entity.Entity) { o.Banish() })

	case brain.EffectUnbanishOther:
		m.mustMutate(se.Entity, func(o *entity.Entity) { o.SetHex(se.Hex) })

	case brain.EffectSetFocus:
		m.mustMutate(se.Entity, func(o *entity.Entity) { o.SetFocus(se.Focus) })

	case brain.EffectShareMeme:
		m.mustMutate(se.Entity, func(o *entity.Entity) { o.Memes().Insert(se.Meme) })
	}
	m.entities.Upsert(me)
}

func (m *Match) mustMutate(id entity.ID, fn func(*entity.Entity)) {
	if err := m.entities.Mutate(id, fn); err != nil {
		panic("side effect on missing entity " + string(id) + ": " + err.Error())
	}
}

// crewAct lets the presenter and then the collector act.
func (m *Match) crewAct(ctx *brain.Context, view *entity.View) {
	crew := []struct {
		is   func(*entity.Entity) bool
		next func(*brain.Context, *entity.Entity) brain.Action
	}{
		{func(e *entity.Entity) bool { return e.Attributes.Presenter != nil }, brain.PresenterNextAction},
		{func(e *entity.Entity) bool { return e.Attributes.Collector != nil }, brain.CollectorNextAction},
	}

	for _, c := range crew {
		member := view.Find(c.is)
		if member == nil {
			continue
		}
		live, ok := m.entities.Get(member.ID)
		if !ok {
			continue
		}
		res := brain.Resolve(ctx, &live, c.next(ctx, &live))
		m.apply(live, res)
	}
}
