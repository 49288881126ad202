// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/internal/random"
	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

func initialised(t *testing.T, players, radius int, seed uint64, preceding []entity.Entity) *Match {
	t.Helper()
	m := New(Isolated(players, radius), Options{Seed: seed})
	require.NoError(t, m.Initialise(preceding))
	return m
}

func filter(es []entity.Entity, keep func(*entity.Entity) bool) []entity.Entity {
	var out []entity.Entity
	for i := range es {
		if keep(&es[i]) {
			out = append(out, es[i])
		}
	}
	return out
}

func TestInitialise_PopulatesWorld(t *testing.T) {
	const radius = 3
	m := initialised(t, 5, radius, 42, nil)
	all := m.Entities()

	players := filter(all, func(e *entity.Entity) bool { return e.HasMarkers(entity.Player) })
	require.Len(t, players, 5)
	for _, p := range players {
		assert.False(t, p.Located(), "players wait to be warped in")
		assert.NotNil(t, p.Attributes.Motivators)
	}

	locations := filter(all, func(e *entity.Entity) bool { return e.Attributes.Location != nil })
	assert.Len(t, locations, len(hex.AllInBounds(radius)), "one location per hex")
	seen := make(map[hex.Hex]bool)
	for _, l := range locations {
		h := l.MustHex()
		assert.False(t, seen[h], "duplicate location at %v", h)
		seen[h] = true
	}

	shelters := filter(all, func(e *entity.Entity) bool { return e.HasMarkers(entity.Shelter) })
	assert.LessOrEqual(t, len(shelters), MaxShelters)

	lava := filter(all, func(e *entity.Entity) bool {
		return e.Attributes.Hazard != nil && !e.HasMarkers(entity.Fire)
	})
	require.Len(t, lava, LavaCount)
	for _, l := range lava {
		assert.NotEqual(t, hex.Zero, l.MustHex())
	}

	assert.Len(t, filter(all, func(e *entity.Entity) bool { return e.Attributes.Presenter != nil }), 1)
	assert.Len(t, filter(all, func(e *entity.Entity) bool { return e.Attributes.Collector != nil }), 1)
	assert.Len(t, filter(all, func(e *entity.Entity) bool { return e.Attributes.World != nil }), 1)

	assert.Equal(t, len(all), m.PendingMutations(), "everything is queued for the first flush")
}

func TestInitialise_LocationMarkers(t *testing.T) {
	m := initialised(t, 1, 4, 9, nil)
	for _, e := range m.Entities() {
		if e.Attributes.Location == nil {
			continue
		}
		switch e.Attributes.Location.Kind {
		case entity.Forest:
			assert.True(t, e.HasMarkers(entity.LushLocation))
		case entity.River:
			assert.True(t, e.HasMarkers(entity.LushLocation, entity.LowLyingLocation))
		case entity.SmallHut:
			assert.True(t, e.HasMarkers(entity.Shelter))
		default:
			assert.False(t, e.HasAnyMarker(entity.LushLocation, entity.Shelter), e.Name)
		}
	}
}

func TestInitialise_RiversHaveWater(t *testing.T) {
	m := initialised(t, 1, 5, 3, nil)
	all := m.Entities()
	for _, loc := range all {
		if loc.Attributes.Location == nil || loc.Attributes.Location.Kind != entity.River {
			continue
		}
		water := filter(all, func(e *entity.Entity) bool {
			return e.Attributes.WaterSource != nil && e.Located() && e.MustHex() == loc.MustHex()
		})
		assert.Len(t, water, 1, "river at %v", loc.MustHex())
	}
}

func TestInitialise_CarriesOverSurvivors(t *testing.T) {
	rng := random.New(1)
	survivor := generatePlayer(rng)
	survivor.SetHex(hex.New(1, 1))
	survivor.SetFocus(entity.Unfocused())
	survivor.Relations.Associates = map[entity.ID]entity.Associate{"someone": {Bond: 0.5}}

	escaped := generatePlayer(rng)
	escaped.Markers = escaped.Markers.With(entity.Escaped)

	rock := entity.Entity{ID: entity.NewID(), Name: "Rock"}

	m := initialised(t, 3, 2, 5, []entity.Entity{survivor, escaped, rock})

	carried, ok := m.Entity(survivor.ID)
	require.True(t, ok)
	assert.False(t, carried.Located())
	assert.Nil(t, carried.Attributes.Focus)
	assert.Empty(t, carried.Relations.Associates)
	assert.Equal(t, survivor.Name, carried.Name)

	_, ok = m.Entity(escaped.ID)
	assert.False(t, ok, "escaped players stay gone")
	_, ok = m.Entity(rock.ID)
	assert.False(t, ok)

	assert.Equal(t, 3, m.Players())
}

func TestInitialise_CarryOverIsCapped(t *testing.T) {
	rng := random.New(2)
	var preceding []entity.Entity
	for range 4 {
		preceding = append(preceding, generatePlayer(rng))
	}

	m := initialised(t, 2, 2, 5, preceding)
	assert.Equal(t, 2, m.Players())
}

func TestInitialise_InvalidConfig(t *testing.T) {
	m := New(Isolated(0, 3), Options{Seed: 1})
	err := m.Initialise(nil)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Zero(t, m.PendingMutations())
}

func TestInitialise_SameSeedSameWorld(t *testing.T) {
	names := func(m *Match) []string {
		var out []string
		for _, e := range m.Entities() {
			out = append(out, e.Name)
		}
		return out
	}

	a := initialised(t, 4, 3, 77, nil)
	b := initialised(t, 4, 3, 77, nil)
	assert.Equal(t, names(a), names(b))
}

func TestGeneratePlayer(t *testing.T) {
	rng := random.New(11)
	for range 50 {
		p := generatePlayer(rng)

		assert.True(t, p.HasMarkers(entity.Player, entity.Inspectable, entity.Being, entity.Human, entity.CanTalk))
		require.NotNil(t, p.Attributes.Age)
		age := *p.Attributes.Age
		assert.GreaterOrEqual(t, age, MinPlayerAge)
		assert.LessOrEqual(t, age, MaxPlayerAge)

		require.Len(t, p.Attributes.Characteristics, UniqueTraits)
		for c, level := range p.Attributes.Characteristics {
			assert.NotEqual(t, entity.Average, level, "trait %v", c)
		}

		require.NotNil(t, p.Attributes.Background)
		assert.Equal(t, age >= 65, p.Attributes.Background.Retired)
		assert.Equal(t, *p.Attributes.FirstName+" "+*p.Attributes.FamilyName, p.Name)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Small hut", capitalize("small hut"))
	assert.Equal(t, "", capitalize(""))
}
