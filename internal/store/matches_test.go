// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giraugh/abduction-sub000/internal/match"
	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

var matchCols = []string{"match_id", "player_count", "preceding_match_id", "world_radius", "complete"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func TestMatchRepository_CreateMatch(t *testing.T) {
	preceding := "01PREV"
	cfg := match.Config{MatchID: "01NEW", PlayerCount: 15, PrecedingMatchID: &preceding, WorldRadius: 10}

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "inserted"},
		{name: "duplicate", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, wantCode: "MATCH_EXISTS"},
		{name: "other error", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			exp := mock.ExpectExec(`INSERT INTO matches`).
				WithArgs("01NEW", 15, pgxmock.AnyArg(), 10, false)
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := NewMatchRepository(mock).CreateMatch(context.Background(), cfg)
			switch {
			case tt.err == nil:
				require.NoError(t, err)
			case tt.wantCode != "":
				errutil.AssertErrorCode(t, err, tt.wantCode)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
				assert.False(t, errutil.HasCode(err, "MATCH_EXISTS"))
			}
		})
	}
}

func TestMatchRepository_UpdateMatch(t *testing.T) {
	cfg := match.Config{MatchID: "01M", PlayerCount: 15, WorldRadius: 10, Complete: true}

	t.Run("updated", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE matches SET`).
			WithArgs("01M", 15, 10, true).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewMatchRepository(mock).UpdateMatch(context.Background(), cfg))
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE matches SET`).
			WithArgs("01M", 15, 10, true).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewMatchRepository(mock).UpdateMatch(context.Background(), cfg)
		errutil.AssertMatchError(t, err, "MATCH_NOT_FOUND", "01M")
		assert.ErrorIs(t, err, match.ErrMatchNotFound)
	})
}

func TestMatchRepository_GetMatch(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		preceding := "01PREV"
		mock.ExpectQuery(`SELECT match_id, .* FROM matches WHERE match_id = \$1`).
			WithArgs("01M").
			WillReturnRows(pgxmock.NewRows(matchCols).AddRow("01M", 4, &preceding, 6, false))

		cfg, err := NewMatchRepository(mock).GetMatch(context.Background(), "01M")
		require.NoError(t, err)
		assert.Equal(t, "01M", cfg.MatchID)
		assert.Equal(t, 4, cfg.PlayerCount)
		require.NotNil(t, cfg.PrecedingMatchID)
		assert.Equal(t, "01PREV", *cfg.PrecedingMatchID)
		assert.Equal(t, 6, cfg.WorldRadius)
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM matches WHERE match_id`).
			WithArgs("01M").
			WillReturnRows(pgxmock.NewRows(matchCols))

		_, err := NewMatchRepository(mock).GetMatch(context.Background(), "01M")
		errutil.AssertMatchError(t, err, "MATCH_NOT_FOUND", "01M")
		assert.ErrorIs(t, err, match.ErrMatchNotFound)
	})
}

func TestMatchRepository_Latest(t *testing.T) {
	t.Run("incomplete match exists", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM matches WHERE complete = \$1 ORDER BY created_at DESC`).
			WithArgs(false).
			WillReturnRows(pgxmock.NewRows(matchCols).AddRow("01M", 4, (*string)(nil), 6, false))

		cfg, ok, err := NewMatchRepository(mock).IncompleteMatch(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "01M", cfg.MatchID)
		assert.Nil(t, cfg.PrecedingMatchID)
	})

	t.Run("no completed match", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM matches WHERE complete = \$1`).
			WithArgs(true).
			WillReturnRows(pgxmock.NewRows(matchCols))

		_, ok, err := NewMatchRepository(mock).LastCompletedMatch(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("query error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM matches WHERE complete = \$1`).
			WithArgs(true).
			WillReturnError(errors.New("connection refused"))

		_, ok, err := NewMatchRepository(mock).LastCompletedMatch(context.Background())
		require.Error(t, err)
		assert.False(t, ok)
	})
}
