// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/internal/match"
)

// MatchRepository stores match configurations.
type MatchRepository struct {
	pool poolIface
}

// NewMatchRepository creates a match repository.
func NewMatchRepository(pool poolIface) *MatchRepository {
	return &MatchRepository{pool: pool}
}

const matchColumns = `match_id, player_count, preceding_match_id, world_radius, complete`

// CreateMatch inserts a new match.
func (r *MatchRepository) CreateMatch(ctx context.Context, cfg match.Config) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO matches (`+matchColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		cfg.MatchID, cfg.PlayerCount, cfg.PrecedingMatchID, cfg.WorldRadius, cfg.Complete)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("MATCH_EXISTS").With("match_id", cfg.MatchID).Wrap(err)
		}
		return oops.With("operation", "create match").With("match_id", cfg.MatchID).Wrap(err)
	}
	return nil
}

// UpdateMatch overwrites the mutable fields of a match.
func (r *MatchRepository) UpdateMatch(ctx context.Context, cfg match.Config) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE matches SET player_count = $2, world_radius = $3, complete = $4, updated_at = now()
		 WHERE match_id = $1`,
		cfg.MatchID, cfg.PlayerCount, cfg.WorldRadius, cfg.Complete)
	if err != nil {
		return oops.With("operation", "update match").With("match_id", cfg.MatchID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("MATCH_NOT_FOUND").With("match_id", cfg.MatchID).Wrap(match.ErrMatchNotFound)
	}
	return nil
}

// GetMatch returns one match.
func (r *MatchRepository) GetMatch(ctx context.Context, matchID string) (match.Config, error) {
	cfg, err := scanMatch(r.pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE match_id = $1`, matchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return match.Config{}, oops.Code("MATCH_NOT_FOUND").With("match_id", matchID).Wrap(match.ErrMatchNotFound)
	}
	if err != nil {
		return match.Config{}, oops.With("operation", "get match").With("match_id", matchID).Wrap(err)
	}
	return cfg, nil
}

// IncompleteMatch returns the newest match that has not completed.
func (r *MatchRepository) IncompleteMatch(ctx context.Context) (match.Config, bool, error) {
	return r.latest(ctx, false)
}

// LastCompletedMatch returns the newest completed match.
func (r *MatchRepository) LastCompletedMatch(ctx context.Context) (match.Config, bool, error) {
	return r.latest(ctx, true)
}

func (r *MatchRepository) latest(ctx context.Context, complete bool) (match.Config, bool, error) {
	cfg, err := scanMatch(r.pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE complete = $1 ORDER BY created_at DESC, match_id DESC LIMIT 1`,
		complete))
	if errors.Is(err, pgx.ErrNoRows) {
		return match.Config{}, false, nil
	}
	if err != nil {
		return match.Config{}, false, oops.With("operation", "latest match").With("complete", complete).Wrap(err)
	}
	return cfg, true, nil
}

func scanMatch(row pgx.Row) (match.Config, error) {
	var cfg match.Config
	err := row.Scan(&cfg.MatchID, &cfg.PlayerCount, &cfg.PrecedingMatchID, &cfg.WorldRadius, &cfg.Complete)
	return cfg, err
}
