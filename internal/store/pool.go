// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package store persists matches, their entity mutation logs and archived
// game logs in PostgreSQL.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// poolIface is the subset of pgxpool.Pool the repositories use. It is
// satisfied by pgxmock in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return pool, nil
}

// Postgres is the match.Store backed by PostgreSQL.
type Postgres struct {
	*MatchRepository
	*MutationRepository
}

// NewPostgres creates a store over pool.
func NewPostgres(pool poolIface) *Postgres {
	return &Postgres{
		MatchRepository:    NewMatchRepository(pool),
		MutationRepository: NewMutationRepository(pool),
	}
}
