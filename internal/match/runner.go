// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/giraugh/abduction-sub000/internal/core"
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/logging"
	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

var tracer = otel.Tracer("abduction/match")

// ErrMatchNotFound is returned by a Store when no match has the given id.
var ErrMatchNotFound = errors.New("match not found")

// Store persists match configurations and their entity mutation logs.
type Store interface {
	entity.Persister

	CreateMatch(ctx context.Context, cfg Config) error
	UpdateMatch(ctx context.Context, cfg Config) error
	GetMatch(ctx context.Context, matchID string) (Config, error)
	// IncompleteMatch returns the most recent match that has not completed.
	IncompleteMatch(ctx context.Context) (Config, bool, error)
	// LastCompletedMatch returns the most recently created completed match.
	LastCompletedMatch(ctx context.Context) (Config, bool, error)
	// LoadEntities rebuilds a match's entity set from its mutation log.
	LoadEntities(ctx context.Context, matchID string) ([]entity.Entity, error)
}

// RunnerConfig tunes the runner.
type RunnerConfig struct {
	TickInterval      time.Duration
	Cooldown          time.Duration
	PlayerCount       int
	WorldRadius       int
	WorldAdvanceEvery int
	Seed              uint64
	// ResumeMatchID resumes a specific match instead of the latest one.
	ResumeMatchID string
	FlushRetries  uint64
	FlushBackoff  time.Duration
}

// Status is a point-in-time summary of the runner.
type Status struct {
	MatchID  string `json:"match_id,omitempty"`
	TickID   int    `json:"tick_id"`
	Players  int    `json:"players"`
	Entities int    `json:"entities"`
	Running  bool   `json:"running"`
	Ready    bool   `json:"ready"`
}

// Runner plays matches back to back: it resumes or creates a match, ticks
// it until it is over, waits out the cooldown and starts the next one with
// the survivors.
type Runner struct {
	cfg       RunnerConfig
	store     Store
	publisher *core.Publisher

	mu      sync.RWMutex
	current *Match
	tickID  int

	forceEnd atomic.Bool
	ready    atomic.Bool
}

// NewRunner creates a runner.
func NewRunner(cfg RunnerConfig, store Store, publisher *core.Publisher) *Runner {
	return &Runner{cfg: cfg, store: store, publisher: publisher}
}

// EndMatch asks the runner to end the current match after the tick in
// progress.
func (r *Runner) EndMatch() {
	r.forceEnd.Store(true)
}

// Ready reports whether the last tick flushed successfully.
func (r *Runner) Ready() bool {
	return r.ready.Load()
}

// CheckReady returns nil when a match is installed and its last tick
// flushed, for use as a readiness probe.
func (r *Runner) CheckReady() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch {
	case r.current == nil:
		return oops.Code("NOT_READY").Errorf("no match loaded")
	case !r.ready.Load():
		return oops.Code("NOT_READY").
			With("match_id", r.current.Config().MatchID).
			With("tick_id", r.tickID).
			Errorf("tick %d failed to flush", r.tickID)
	}
	return nil
}

// Status summarises the runner.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Status{TickID: r.tickID, Ready: r.ready.Load()}
	if r.current != nil {
		s.MatchID = r.current.Config().MatchID
		s.Players = r.current.Players()
		s.Entities = r.current.entities.Len()
		s.Running = !r.current.Config().Complete
	}
	return s
}

// Entities returns copies of the current match's entities.
func (r *Runner) Entities() []entity.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil
	}
	return r.current.Entities()
}

// MatchConfig returns the current match configuration, if any.
func (r *Runner) MatchConfig() (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return Config{}, false
	}
	return r.current.Config(), true
}

// Run plays matches until ctx is cancelled. It returns nil on cancellation
// and an error only when no match could be started.
func (r *Runner) Run(ctx context.Context) error {
	m, pub, err := r.firstMatch(ctx)
	if err != nil {
		return err
	}

	for {
		if err := r.play(ctx, m, pub); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		slog.InfoContext(ctx, "waiting before next match", "cooldown", r.cfg.Cooldown)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.cfg.Cooldown):
		}

		preceding := m.Config().MatchID
		m, pub, err = r.newMatch(ctx, &preceding)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (r *Runner) options(pub *core.MatchPublisher) Options {
	return Options{
		Seed:              r.cfg.Seed,
		WorldAdvanceEvery: r.cfg.WorldAdvanceEvery,
		Logs:              pub,
		Persister:         r.store,
		Notifier:          pub,
		FlushRetries:      r.cfg.FlushRetries,
		FlushBackoff:      r.cfg.FlushBackoff,
	}
}

// firstMatch picks the match to run at startup.
func (r *Runner) firstMatch(ctx context.Context) (*Match, *core.MatchPublisher, error) {
	if r.cfg.ResumeMatchID != "" {
		cfg, err := r.store.GetMatch(ctx, r.cfg.ResumeMatchID)
		if err != nil {
			return nil, nil, oops.Code("MATCH_NOT_FOUND").With("match_id", r.cfg.ResumeMatchID).Wrap(err)
		}
		if !cfg.Complete {
			return r.resume(ctx, cfg)
		}
		return r.newMatch(ctx, &cfg.MatchID)
	}

	cfg, ok, err := r.store.IncompleteMatch(ctx)
	if err != nil {
		return nil, nil, oops.Code("LOAD_FAILED").Wrap(err)
	}
	if ok {
		return r.resume(ctx, cfg)
	}

	last, ok, err := r.store.LastCompletedMatch(ctx)
	if err != nil {
		return nil, nil, oops.Code("LOAD_FAILED").Wrap(err)
	}
	if ok {
		return r.newMatch(ctx, &last.MatchID)
	}
	return r.newMatch(ctx, nil)
}

// resume restores an incomplete match. No start-of-match event is sent.
func (r *Runner) resume(ctx context.Context, cfg Config) (*Match, *core.MatchPublisher, error) {
	slog.InfoContext(ctx, "resuming match", "match_id", cfg.MatchID)

	entities, err := r.store.LoadEntities(ctx, cfg.MatchID)
	if err != nil {
		return nil, nil, oops.Code("LOAD_FAILED").With("match_id", cfg.MatchID).Wrap(err)
	}

	pub := r.publisher.ForMatch(cfg.MatchID)
	m := New(cfg, r.options(pub))
	m.Load(entities)
	r.install(m)
	return m, pub, nil
}

// newMatch creates, initialises and persists a match.
func (r *Runner) newMatch(ctx context.Context, preceding *string) (*Match, *core.MatchPublisher, error) {
	cfg := NewConfig(r.cfg.PlayerCount, r.cfg.WorldRadius, preceding)
	slog.InfoContext(ctx, "starting match", "match_id", cfg.MatchID, "preceding_match_id", preceding)

	var survivors []entity.Entity
	if preceding != nil {
		var err error
		survivors, err = r.store.LoadEntities(ctx, *preceding)
		if err != nil {
			return nil, nil, oops.Code("LOAD_FAILED").With("match_id", *preceding).Wrap(err)
		}
	}

	pub := r.publisher.ForMatch(cfg.MatchID)
	m := New(cfg, r.options(pub))
	if err := m.Initialise(survivors); err != nil {
		return nil, nil, err
	}
	if err := r.store.CreateMatch(ctx, cfg); err != nil {
		return nil, nil, err
	}
	if err := pub.PublishTick(ctx, core.StartOfMatch()); err != nil {
		errutil.LogErrorContext(ctx, "publish start of match", err)
	}
	if err := m.Flush(ctx); err != nil {
		return nil, nil, err
	}

	r.forceEnd.Store(false)
	r.install(m)
	return m, pub, nil
}

func (r *Runner) install(m *Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = m
	r.tickID = 0
	r.ready.Store(true)
}

// play ticks m until it is over or an end is forced.
func (r *Runner) play(ctx context.Context, m *Match, pub *core.MatchPublisher) error {
	ctx = logging.WithMatch(ctx, m.Config().MatchID)
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := r.tick(ctx, m, pub); err != nil {
			r.ready.Store(false)
			errutil.LogErrorContext(ctx, "tick failed", err)
			continue
		}
		r.ready.Store(true)

		if m.Over() || r.forceEnd.Swap(false) {
			return r.finish(ctx, m, pub)
		}
	}
}

// tick resolves one tick of m and publishes its boundaries.
func (r *Runner) tick(ctx context.Context, m *Match, pub *core.MatchPublisher) error {
	r.mu.Lock()
	id := r.tickID
	r.tickID++
	r.mu.Unlock()

	matchID := m.Config().MatchID
	ctx, span := tracer.Start(ctx, "match.tick",
		trace.WithAttributes(
			attribute.String("match_id", matchID),
			attribute.Int("tick_id", id),
		),
	)
	defer span.End()

	start := time.Now()
	if err := pub.PublishTick(ctx, core.StartOfTick(id)); err != nil {
		errutil.LogErrorContext(ctx, "publish start of tick", err)
	}

	r.mu.Lock()
	report, err := m.Tick(ctx)
	r.mu.Unlock()
	if err != nil {
		recordTick(StatusFailed, time.Since(start))
		FlushFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "tick failed")
		return oops.Code("TICK_FAILED").With("match_id", matchID).With("tick_id", id).Wrap(err)
	}

	if err := pub.Flush(ctx); err != nil {
		errutil.LogErrorContext(ctx, "archive game logs", err)
	}
	if err := pub.PublishTick(ctx, core.EndOfTick(id)); err != nil {
		errutil.LogErrorContext(ctx, "publish end of tick", err)
	}

	recordTick(StatusOK, time.Since(start))
	recordReport(report)
	span.SetAttributes(
		attribute.Int("actions", len(report.Actions)),
		attribute.Int("deaths", report.Deaths),
	)
	slog.DebugContext(ctx, "tick resolved",
		"match_id", matchID,
		"tick_id", id,
		"actions", len(report.Actions),
		"players", report.Players,
	)
	return nil
}

// finish marks m complete and announces the end of the match.
func (r *Runner) finish(ctx context.Context, m *Match, pub *core.MatchPublisher) error {
	r.mu.Lock()
	m.MarkComplete()
	cfg := m.Config()
	r.mu.Unlock()

	backoff := retry.WithMaxRetries(m.opts.FlushRetries, retry.NewExponential(m.opts.FlushBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.store.UpdateMatch(ctx, cfg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("MATCH_UPDATE_FAILED").With("match_id", cfg.MatchID).Wrap(err)
	}

	if err := pub.Flush(ctx); err != nil {
		errutil.LogErrorContext(ctx, "archive game logs", err)
	}
	if err := pub.PublishTick(ctx, core.EndOfMatch()); err != nil {
		errutil.LogErrorContext(ctx, "publish end of match", err)
	}
	slog.InfoContext(ctx, "match complete", "match_id", cfg.MatchID, "players", m.Players())
	return nil
}
