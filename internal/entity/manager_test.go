// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

type recordingPersister struct {
	batches [][]Mutation
	err     error
}

func (p *recordingPersister) AppendMutations(_ context.Context, _ string, muts []Mutation) error {
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, muts)
	return nil
}

type recordingNotifier struct {
	batches [][]Mutation
}

func (n *recordingNotifier) EntityChanges(_ context.Context, _ string, muts []Mutation) {
	n.batches = append(n.batches, muts)
}

func located(id ID, h hex.Hex) Entity {
	e := Entity{ID: id, Name: string(id)}
	e.SetHex(h)
	return e
}

func TestManager_UpsertGetRemove(t *testing.T) {
	m := NewManager("match")

	m.Upsert(located("a", hex.Zero))
	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, hex.Zero, got.MustHex())

	got.SetHex(hex.East)
	again, _ := m.Get("a")
	assert.Equal(t, hex.Zero, again.MustHex(), "Get returns a copy")

	m.Remove("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Pending())
}

func TestManager_Mutate(t *testing.T) {
	m := NewManager("match")
	m.Upsert(located("a", hex.Zero))

	require.NoError(t, m.Mutate("a", func(e *Entity) { e.Name = "renamed" }))
	got, _ := m.Get("a")
	assert.Equal(t, "renamed", got.Name)

	err := m.Mutate("missing", func(*Entity) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	errutil.AssertErrorContext(t, err, "entity_id", ID("missing"))
}

func TestManager_SnapshotIsolation(t *testing.T) {
	m := NewManager("match")
	m.Upsert(located("a", hex.Zero))
	m.Upsert(located("b", hex.Zero))

	view := m.Snapshot()

	require.NoError(t, m.Mutate("a", func(e *Entity) { e.SetHex(hex.East) }))
	m.Remove("b")

	assert.Equal(t, hex.Zero, view.ByID("a").MustHex(), "snapshot keeps the pre-tick state")
	assert.NotNil(t, view.ByID("b"))
	assert.Len(t, view.InHex(hex.Zero), 2)
}

func TestManager_Flush(t *testing.T) {
	ctx := context.Background()
	m := NewManager("match")
	p := &recordingPersister{}
	n := &recordingNotifier{}

	count, err := m.Flush(ctx, p, n)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, p.batches, "nothing pending means nothing written")
	assert.Empty(t, n.batches)

	m.Upsert(located("a", hex.Zero))
	m.Remove("a")

	count, err = m.Flush(ctx, p, n)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, p.batches, 1)
	assert.Equal(t, MutationSet, p.batches[0][0].Kind)
	assert.Equal(t, MutationDelete, p.batches[0][1].Kind)
	assert.Equal(t, p.batches, n.batches)
	assert.Zero(t, m.Pending())
}

func TestManager_FlushFailureKeepsPending(t *testing.T) {
	ctx := context.Background()
	m := NewManager("match")
	m.Upsert(located("a", hex.Zero))

	p := &recordingPersister{err: errors.New("db down")}
	n := &recordingNotifier{}
	_, err := m.Flush(ctx, p, n)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "FLUSH_FAILED")
	assert.Equal(t, 1, m.Pending())
	assert.Empty(t, n.batches, "subscribers only hear about durable changes")

	p.err = nil
	count, err := m.Flush(ctx, p, n)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReduce(t *testing.T) {
	a1 := located("a", hex.Zero)
	a2 := located("a", hex.East)
	b := located("b", hex.West)

	got := Reduce([]Mutation{
		SetEntity(a1),
		SetEntity(b),
		SetEntity(a2),
		RemoveEntity("b"),
		RemoveEntity("never-existed"),
	})

	require.Len(t, got, 1)
	assert.Equal(t, ID("a"), got[0].ID)
	assert.Equal(t, hex.East, got[0].MustHex())
}

func TestMutation_JSON(t *testing.T) {
	data, err := json.Marshal([]Mutation{SetEntity(Entity{ID: "a", Name: "A"}), RemoveEntity("b")})
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "set_entity", raw[0]["kind"])
	assert.Equal(t, "remove_entity", raw[1]["kind"])
	assert.Equal(t, "b", raw[1]["entity_id"])

	var decoded []Mutation
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, MutationSet, decoded[0].Kind)
	assert.Equal(t, ID("a"), decoded[0].EntityID)
	assert.Equal(t, RemoveEntity("b"), decoded[1])
}

func TestView_Indexes(t *testing.T) {
	view := NewView([]Entity{
		located("c", hex.East),
		located("a", hex.Zero),
		{ID: "b", Name: "banished"},
		located("d", hex.New(2, 0)),
	})

	ids := func(es []*Entity) []ID {
		var out []ID
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []ID{"a", "b", "c", "d"}, ids(view.All()), "ordered by id")
	assert.Equal(t, []ID{"a"}, ids(view.InHex(hex.Zero)))
	assert.Equal(t, []ID{"c"}, ids(view.AdjacentTo(hex.Zero)))
	assert.Nil(t, view.ByID("zzz"))
	assert.Equal(t, "banished", view.ByID("b").Name)
	assert.Equal(t, ID("c"), view.Find(func(e *Entity) bool { return e.Located() && e.ID > "a" }).ID)
}
