// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package store

import (
	"context"
	"encoding/json"

	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/internal/entity"
)

// MutationRepository stores the append-only entity mutation log of each
// match. A match's entity set is the reduction of its log.
type MutationRepository struct {
	pool poolIface
}

// NewMutationRepository creates a mutation repository.
func NewMutationRepository(pool poolIface) *MutationRepository {
	return &MutationRepository{pool: pool}
}

// AppendMutations writes a flushed batch in one transaction.
func (r *MutationRepository) AppendMutations(ctx context.Context, matchID string, mutations []entity.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").With("match_id", matchID).Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, mut := range mutations {
		var body []byte
		if mut.Entity != nil {
			body, err = json.Marshal(mut.Entity)
			if err != nil {
				return oops.With("operation", "encode entity").With("entity_id", mut.EntityID).Wrap(err)
			}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO entity_mutations (match_id, kind, entity_id, entity) VALUES ($1, $2, $3, $4)`,
			matchID, string(mut.Kind), string(mut.EntityID), body,
		); err != nil {
			return oops.With("operation", "append mutation").
				With("match_id", matchID).
				With("entity_id", mut.EntityID).
				Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").With("match_id", matchID).Wrap(err)
	}
	return nil
}

// LoadEntities replays a match's mutation log.
func (r *MutationRepository) LoadEntities(ctx context.Context, matchID string) ([]entity.Entity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT kind, entity_id, entity FROM entity_mutations WHERE match_id = $1 ORDER BY seq`,
		matchID)
	if err != nil {
		return nil, oops.Code("LOAD_FAILED").With("match_id", matchID).Wrap(err)
	}
	defer rows.Close()

	var mutations []entity.Mutation
	for rows.Next() {
		var kind, id string
		var body []byte
		if err := rows.Scan(&kind, &id, &body); err != nil {
			return nil, oops.Code("LOAD_FAILED").With("operation", "scan mutation row").Wrap(err)
		}

		switch entity.MutationKind(kind) {
		case entity.MutationSet:
			var e entity.Entity
			if err := json.Unmarshal(body, &e); err != nil {
				return nil, oops.Code("LOAD_FAILED").With("entity_id", id).Wrapf(err, "corrupt entity")
			}
			mutations = append(mutations, entity.SetEntity(e))
		case entity.MutationDelete:
			mutations = append(mutations, entity.RemoveEntity(entity.ID(id)))
		default:
			return nil, oops.Code("LOAD_FAILED").With("kind", kind).Errorf("unknown mutation kind")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("LOAD_FAILED").With("operation", "iterate mutations").Wrap(err)
	}
	return entity.Reduce(mutations), nil
}
