// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package store

import (
	"context"
	"errors"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/internal/core"
)

// LogArchive is a core.EventStore keeping game logs in PostgreSQL.
type LogArchive struct {
	pool poolIface
}

// NewLogArchive creates a log archive.
func NewLogArchive(pool poolIface) *LogArchive {
	return &LogArchive{pool: pool}
}

const eventColumns = `id, stream, type, match_id, payload, created_at`

// Append archives a batch of events in one transaction.
func (a *LogArchive) Append(ctx context.Context, events ...core.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").With("operation", "archive events").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, ev := range events {
		if _, err := tx.Exec(ctx,
			`INSERT INTO events (`+eventColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			ev.ID.String(), ev.Stream, string(ev.Type), ev.MatchID, ev.Payload, ev.Timestamp,
		); err != nil {
			return oops.With("operation", "append event").
				With("event_id", ev.ID.String()).
				With("stream", ev.Stream).
				Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").With("operation", "archive events").Wrap(err)
	}
	return nil
}

// Replay returns events from a stream after the given ID.
func (a *LogArchive) Replay(ctx context.Context, stream string, afterID ulid.ULID, limit int) ([]core.Event, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if afterID.Compare(ulid.ULID{}) == 0 {
		rows, err = a.pool.Query(ctx,
			`SELECT `+eventColumns+` FROM events WHERE stream = $1 ORDER BY id LIMIT $2`,
			stream, limit)
	} else {
		rows, err = a.pool.Query(ctx,
			`SELECT `+eventColumns+` FROM events WHERE stream = $1 AND id > $2 ORDER BY id LIMIT $3`,
			stream, afterID.String(), limit)
	}
	if err != nil {
		return nil, oops.With("operation", "replay events").With("stream", stream).Wrap(err)
	}
	return scanEvents(rows, stream)
}

// Tail returns the newest limit events of a stream, oldest first.
func (a *LogArchive) Tail(ctx context.Context, stream string, limit int) ([]core.Event, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE stream = $1 ORDER BY id DESC LIMIT $2`,
		stream, limit)
	if err != nil {
		return nil, oops.With("operation", "tail events").With("stream", stream).Wrap(err)
	}
	events, err := scanEvents(rows, stream)
	if err != nil {
		return nil, err
	}
	slices.Reverse(events)
	return events, nil
}

// LastEventID returns the most recent event ID for a stream.
func (a *LogArchive) LastEventID(ctx context.Context, stream string) (ulid.ULID, error) {
	var idStr string
	err := a.pool.QueryRow(ctx,
		`SELECT id FROM events WHERE stream = $1 ORDER BY id DESC LIMIT 1`,
		stream).Scan(&idStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return ulid.ULID{}, core.ErrStreamEmpty
	}
	if err != nil {
		return ulid.ULID{}, oops.With("operation", "last event id").With("stream", stream).Wrap(err)
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return ulid.ULID{}, oops.With("stream", stream).With("id", idStr).Wrapf(err, "corrupt event id")
	}
	return id, nil
}

func scanEvents(rows pgx.Rows, stream string) ([]core.Event, error) {
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var (
			e       core.Event
			idStr   string
			typeStr string
		)
		if err := rows.Scan(&idStr, &e.Stream, &typeStr, &e.MatchID, &e.Payload, &e.Timestamp); err != nil {
			return nil, oops.With("operation", "scan event row").Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.With("stream", stream).With("id", idStr).Wrapf(err, "corrupt event id")
		}
		e.ID = id
		e.Type = core.EventType(typeStr)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate events").Wrap(err)
	}
	return events, nil
}
