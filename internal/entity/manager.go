// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/samber/oops"
)

// MutationKind is how a mutation row is tagged in storage.
type MutationKind string

// Mutation kinds.
const (
	MutationSet    MutationKind = "S"
	MutationDelete MutationKind = "D"
)

// Mutation is a single pending change to the entity set.
type Mutation struct {
	Kind     MutationKind
	EntityID ID
	// Entity is the full new state for a Set and nil for a Delete.
	Entity *Entity
}

// SetEntity builds a Set mutation.
func SetEntity(e Entity) Mutation {
	return Mutation{Kind: MutationSet, EntityID: e.ID, Entity: &e}
}

// RemoveEntity builds a Delete mutation.
func RemoveEntity(id ID) Mutation {
	return Mutation{Kind: MutationDelete, EntityID: id}
}

type mutationJSON struct {
	Kind     string  `json:"kind"`
	Entity   *Entity `json:"entity,omitempty"`
	EntityID ID      `json:"entity_id,omitempty"`
}

// MarshalJSON encodes the client-facing form of the mutation.
func (m Mutation) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case MutationSet:
		return json.Marshal(mutationJSON{Kind: "set_entity", Entity: m.Entity})
	case MutationDelete:
		return json.Marshal(mutationJSON{Kind: "remove_entity", EntityID: m.EntityID})
	default:
		return nil, fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
}

// UnmarshalJSON decodes the client-facing form of the mutation.
func (m *Mutation) UnmarshalJSON(data []byte) error {
	var raw mutationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "set_entity":
		if raw.Entity == nil {
			return fmt.Errorf("set_entity mutation without entity")
		}
		*m = SetEntity(*raw.Entity)
	case "remove_entity":
		*m = RemoveEntity(raw.EntityID)
	default:
		return fmt.Errorf("unknown mutation kind %q", raw.Kind)
	}
	return nil
}

// Persister durably records a batch of mutations for a match.
type Persister interface {
	AppendMutations(ctx context.Context, matchID string, mutations []Mutation) error
}

// ChangeNotifier is told about every batch of mutations once it is durable.
type ChangeNotifier interface {
	EntityChanges(ctx context.Context, matchID string, mutations []Mutation)
}

// Manager owns the live entity set for one match and queues every change
// until the end of the tick.
//
// Manager is not safe for concurrent use; a match's tick scheduler owns it.
type Manager struct {
	matchID string
	live    map[ID]Entity
	pending []Mutation
}

// NewManager creates an empty manager for a match.
func NewManager(matchID string) *Manager {
	return &Manager{
		matchID: matchID,
		live:    make(map[ID]Entity),
	}
}

// MatchID returns the match the manager belongs to.
func (m *Manager) MatchID() string {
	return m.matchID
}

// Load replaces the live set without queueing mutations.
func (m *Manager) Load(entities []Entity) {
	m.live = make(map[ID]Entity, len(entities))
	for _, e := range entities {
		m.live[e.ID] = e.Clone()
	}
	slog.Info("loaded entities", "match_id", m.matchID, "count", len(entities))
}

// Upsert creates or replaces an entity.
func (m *Manager) Upsert(e Entity) {
	stored := e.Clone()
	m.live[e.ID] = stored
	m.pending = append(m.pending, SetEntity(stored.Clone()))
}

// Mutate applies fn to a copy of the entity and upserts the result.
func (m *Manager) Mutate(id ID, fn func(*Entity)) error {
	e, ok := m.live[id]
	if !ok {
		return oops.With("entity_id", id).Wrap(ErrNotFound)
	}
	updated := e.Clone()
	fn(&updated)
	m.Upsert(updated)
	return nil
}

// Remove deletes an entity. Removing an unknown id still queues a Delete.
func (m *Manager) Remove(id ID) {
	delete(m.live, id)
	m.pending = append(m.pending, RemoveEntity(id))
}

// Get returns a copy of the live entity.
func (m *Manager) Get(id ID) (Entity, bool) {
	e, ok := m.live[id]
	if !ok {
		return Entity{}, false
	}
	return e.Clone(), true
}

// Len returns the number of live entities.
func (m *Manager) Len() int {
	return len(m.live)
}

// All returns copies of every live entity ordered by id.
func (m *Manager) All() []Entity {
	ids := slices.SortedFunc(maps.Keys(m.live), func(a, b ID) int { return cmp.Compare(a, b) })
	out := make([]Entity, len(ids))
	for i, id := range ids {
		out[i] = m.live[id].Clone()
	}
	return out
}

// Snapshot freezes the live set into a View.
func (m *Manager) Snapshot() *View {
	return NewView(m.All())
}

// Pending returns the number of queued mutations.
func (m *Manager) Pending() int {
	return len(m.pending)
}

// Flush persists queued mutations and then notifies subscribers.
// On a persistence error the queue is kept so a later flush can retry it.
func (m *Manager) Flush(ctx context.Context, persister Persister, notifier ChangeNotifier) (int, error) {
	if len(m.pending) == 0 {
		return 0, nil
	}

	batch := slices.Clone(m.pending)
	if err := persister.AppendMutations(ctx, m.matchID, batch); err != nil {
		return 0, oops.Code("FLUSH_FAILED").
			With("match_id", m.matchID).
			With("pending", len(batch)).
			Wrapf(err, "persisting entity mutations")
	}
	m.pending = m.pending[len(batch):]

	if notifier != nil {
		notifier.EntityChanges(ctx, m.matchID, batch)
	}

	slog.Debug("flushed pending mutations", "match_id", m.matchID, "count", len(batch))
	return len(batch), nil
}

// Reduce folds an ordered mutation log into the latest state of each entity.
func Reduce(mutations []Mutation) []Entity {
	latest := make(map[ID]Entity)
	for _, mut := range mutations {
		switch mut.Kind {
		case MutationSet:
			if mut.Entity != nil {
				latest[mut.EntityID] = mut.Entity.Clone()
			}
		case MutationDelete:
			delete(latest, mut.EntityID)
		}
	}
	ids := slices.SortedFunc(maps.Keys(latest), func(a, b ID) int { return cmp.Compare(a, b) })
	out := make([]Entity, len(ids))
	for i, id := range ids {
		out[i] = latest[id]
	}
	return out
}
