// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/internal/random"
)

// Generation tuning.
const (
	LavaCount          = 3
	MaxShelters        = 5
	AdjacentKindWeight = 2
	MinPlayerAge       = 18
	MaxPlayerAge       = 99
	UniqueTraits       = 5
)

// Initialise populates a new match. Surviving players from the preceding
// match are carried over first and the remaining places are generated.
// Every player starts banished, waiting for the presenter to warp them in.
func (m *Match) Initialise(preceding []entity.Entity) error {
	if err := m.config.Validate(); err != nil {
		return err
	}
	slog.Info("initialising match", "match_id", m.config.MatchID)

	players := 0
	for _, e := range preceding {
		if players >= m.config.PlayerCount {
			break
		}
		if !e.HasMarkers(entity.Player) || e.HasMarkers(entity.Escaped) {
			continue
		}
		m.entities.Upsert(carryOver(e))
		players++
	}
	for range m.config.PlayerCount - players {
		m.entities.Upsert(generatePlayer(m.rng))
	}

	for _, e := range generateLocations(m.rng, m.config.WorldRadius) {
		m.entities.Upsert(e)
	}

	for i := range LavaCount {
		m.entities.Upsert(newLava(m.rng, m.config.WorldRadius, i))
	}

	m.entities.Upsert(newPresenter())
	m.entities.Upsert(newCollector())
	m.entities.Upsert(newWorld())

	slog.Info("match initialised",
		"match_id", m.config.MatchID,
		"carried_over", players,
		"entities", m.entities.Len(),
	)
	return nil
}

// carryOver prepares a surviving player for a new match.
func carryOver(e entity.Entity) entity.Entity {
	c := e.Clone()
	c.Banish()
	c.Attributes.Focus = nil
	c.Relations = entity.Relations{}
	return c
}

var (
	youngNames  = []string{"Mia", "Noah", "Zoe", "Kai", "Ivy", "Leo", "Ava", "Finn"}
	matureNames = []string{"Sarah", "David", "Priya", "Marcus", "Elena", "Tom", "Grace", "Omar"}
	oldNames    = []string{"Edith", "Harold", "Margaret", "Walter", "Dorothy", "Frank", "Irene", "Bernard"}
	familyNames = []string{"Nguyen", "Smith", "Okafor", "Garcia", "Kowalski", "Tanaka", "Haddad", "O'Brien", "Larsen", "Moreau"}
	careers     = []string{"accountant", "baker", "pilot", "nurse", "plumber", "teacher", "chef", "librarian", "farmer", "lawyer"}
	hometowns   = []string{"Lyon", "Osaka", "Perth", "Lagos", "Quito", "Oslo", "Dundee", "Austin", "Pune", "Tbilisi"}
	fears       = []string{"spiders", "the dark", "deep water", "being forgotten", "heights", "crowds"}
	hopes       = []string{"to see their family again", "to win", "to be famous", "to retire somewhere warm", "to make a friend"}
)

func pick(rng *rand.Rand, items []string) string {
	s, _ := random.Choose(rng, items)
	return s
}

func namesFor(age int) []string {
	switch {
	case age < 30:
		return youngNames
	case age < 60:
		return matureNames
	default:
		return oldNames
	}
}

// generatePlayer rolls a new player. A few characteristics are pushed away
// from Average; physical ones favour the young.
func generatePlayer(rng *rand.Rand) entity.Entity {
	age := random.IntInclusive(rng, MinPlayerAge, MaxPlayerAge)
	first := pick(rng, namesFor(age))
	family := pick(rng, familyNames)
	hue := random.Float(rng, 0, 360)

	chanceOfLow := func(c entity.Characteristic) float64 {
		if !c.InfluencedByAge() {
			return 0.5
		}
		switch {
		case age < 30:
			return 0.25
		case age >= 60:
			return 0.75
		default:
			return 0.5
		}
	}
	traits := make(map[entity.Characteristic]entity.Level, UniqueTraits)
	for _, i := range rng.Perm(len(entity.AllCharacteristics))[:UniqueTraits] {
		c := entity.AllCharacteristics[i]
		if random.Bool(rng, chanceOfLow(c)) {
			traits[c] = entity.Low
		} else {
			traits[c] = entity.High
		}
	}

	return entity.Entity{
		ID:      entity.NewID(),
		Name:    first + " " + family,
		Markers: entity.NewMarkers(entity.Player, entity.Inspectable, entity.Being, entity.Human, entity.CanTalk),
		Attributes: entity.Attributes{
			Motivators:      entity.NewMotivatorTable(rng),
			FirstName:       &first,
			FamilyName:      &family,
			Age:             &age,
			DisplayColorHue: &hue,
			Characteristics: traits,
			Background: &entity.Background{
				Career:   pick(rng, careers),
				Retired:  age >= 65,
				Hometown: pick(rng, hometowns),
				Fear:     pick(rng, fears),
				Hope:     pick(rng, hopes),
			},
		},
	}
}

var locationKinds = []entity.LocationKind{
	entity.Plain, entity.Forest, entity.River, entity.Hill, entity.Mountain, entity.SmallHut,
}

// generateLocations places one location in every hex. Each kind is weighted
// towards kinds already placed next to it so terrain clumps together.
func generateLocations(rng *rand.Rand, radius int) []entity.Entity {
	placed := make(map[hex.Hex]entity.LocationKind)
	counts := make(map[entity.LocationKind]int)
	var out []entity.Entity

	for _, h := range hex.AllInBounds(radius) {
		weights := make([]int, len(locationKinds))
		for i, kind := range locationKinds {
			weights[i] = 1
			for _, n := range h.Neighbours() {
				if placed[n] == kind {
					weights[i] += AdjacentKindWeight
				}
			}
			if kind == entity.SmallHut && counts[kind] >= MaxShelters {
				weights[i] = 0
			}
		}
		kind := locationKinds[random.WeightedIndex(rng, weights)]
		placed[h] = kind
		counts[kind]++

		out = append(out, newLocation(kind, h))
		out = append(out, propsFor(rng, kind, h)...)
	}
	return out
}

func newLocation(kind entity.LocationKind, h hex.Hex) entity.Entity {
	var markers entity.Markers
	switch kind {
	case entity.Forest:
		markers = entity.NewMarkers(entity.LushLocation)
	case entity.River:
		markers = entity.NewMarkers(entity.LushLocation, entity.LowLyingLocation)
	case entity.SmallHut:
		markers = entity.NewMarkers(entity.Shelter, entity.Inspectable)
	}

	return entity.Entity{
		ID:      entity.NewID(),
		Name:    capitalize(strings.ReplaceAll(string(kind), "_", " ")),
		Markers: markers,
		Attributes: entity.Attributes{
			Hex:      &h,
			Location: &entity.Location{Kind: kind},
		},
	}
}

var (
	colours          = []string{"red", "blue", "purple", "yellow", "orange", "speckled", "pale"}
	shapes           = []string{"small", "large", "round", "long", "knobbly", "tiny"}
	naturalFoods     = []string{"berries", "apple", "nuts", "mushroom", "root", "plum"}
	dubiousFoods     = []string{"berries", "mushroom", "toadstool", "fungus", "seeds"}
	dubiousQualifier = []string{"slimy", "odd smelling", "wrinkled", "sticky"}
	fish             = []string{"trout", "perch", "eel", "carp"}
	goodWater        = []string{"crystal clear", "babbling", "fresh"}
	badWater         = []string{"murky", "stagnant", "brackish"}
	waterSources     = []string{"spring", "stream", "brook", "pool"}
)

// propsFor scatters food and water around a location.
func propsFor(rng *rand.Rand, kind entity.LocationKind, h hex.Hex) []entity.Entity {
	var props []entity.Entity
	add := func(name string, attrs entity.Attributes, markers ...entity.Marker) {
		attrs.Hex = &h
		props = append(props, entity.Entity{
			ID:         entity.NewID(),
			Name:       capitalize(name),
			Markers:    entity.NewMarkers(markers...).With(entity.Inspectable),
			Attributes: attrs,
		})
	}

	switch kind {
	case entity.Forest:
		if random.Bool(rng, 0.5) {
			add(pick(rng, colours)+" "+pick(rng, naturalFoods),
				entity.Attributes{Item: entity.DefaultItem(), Food: entity.HealthyFood(rng)})
		}
		if random.Bool(rng, 0.2) {
			add(pick(rng, dubiousQualifier)+" "+pick(rng, shapes)+" "+pick(rng, dubiousFoods),
				entity.Attributes{Item: entity.DefaultItem(), Food: entity.DubiousFood(rng)})
		}
	case entity.River:
		if random.Bool(rng, 0.7) {
			add(pick(rng, goodWater)+" "+pick(rng, waterSources),
				entity.Attributes{WaterSource: entity.QualityWaterSource()})
		} else {
			add(pick(rng, badWater)+" "+pick(rng, waterSources),
				entity.Attributes{WaterSource: entity.DubiousWaterSource(rng)})
		}
		if random.Bool(rng, 0.3) {
			add(pick(rng, shapes)+" "+pick(rng, fish),
				entity.Attributes{Item: entity.DefaultItem(), Food: entity.HealthyFood(rng)}, entity.Being)
		}
	case entity.Plain:
		if random.Bool(rng, 0.15) {
			add(pick(rng, dubiousQualifier)+" "+pick(rng, colours)+" "+pick(rng, dubiousFoods),
				entity.Attributes{Item: entity.DefaultItem(), Food: entity.DubiousFood(rng)})
		}
	}
	return props
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// newLava places a hazard anywhere but the origin.
func newLava(rng *rand.Rand, radius, i int) entity.Entity {
	h := hex.RandomInBounds(rng, radius)
	for h == hex.Zero {
		h = hex.RandomInBounds(rng, radius)
	}
	return entity.Entity{
		ID:      entity.NewID(),
		Name:    fmt.Sprintf("Lava Hazard %d", i),
		Markers: entity.NewMarkers(entity.Inspectable),
		Attributes: entity.Attributes{
			Hex:    &h,
			Hazard: &entity.Hazard{Damage: 1},
		},
	}
}

// newFire is a fire started by lightning.
func newFire(rng *rand.Rand, radius int) entity.Entity {
	h := hex.RandomInBounds(rng, radius)
	return entity.Entity{
		ID:      entity.NewID(),
		Name:    "Fire",
		Markers: entity.NewMarkers(entity.Fire, entity.Inspectable),
		Attributes: entity.Attributes{
			Hex:    &h,
			Hazard: &entity.Hazard{Damage: 1},
		},
	}
}

func crewMember(name, first, family string, age int, traits map[entity.Characteristic]entity.Level) entity.Entity {
	h := hex.Zero
	hue := 130.0
	return entity.Entity{
		ID:      entity.NewID(),
		Name:    name,
		Markers: entity.NewMarkers(entity.Being, entity.Inspectable, entity.Alien, entity.Crew, entity.CanTalk),
		Attributes: entity.Attributes{
			FirstName:       &first,
			FamilyName:      &family,
			Age:             &age,
			Hex:             &h,
			Characteristics: traits,
			DisplayColorHue: &hue,
		},
	}
}

func newPresenter() entity.Entity {
	e := crewMember("Mr Giraffe", "??", "Giraffe", 999_999, map[entity.Characteristic]entity.Level{
		entity.Hearing:      entity.High,
		entity.Planning:     entity.High,
		entity.Resolve:      entity.High,
		entity.Strength:     entity.High,
		entity.Vision:       entity.High,
		entity.Friendliness: entity.High,
		entity.Acrobatics:   entity.Low,
	})
	e.Attributes.Presenter = entity.DefaultPresenter()
	return e
}

func newCollector() entity.Entity {
	e := crewMember("Alpy the Collector", "Alpy", "??", 100, map[entity.Characteristic]entity.Level{
		entity.Strength:     entity.High,
		entity.Acrobatics:   entity.High,
		entity.Hearing:      entity.Low,
		entity.Planning:     entity.High,
		entity.Resolve:      entity.High,
		entity.Vision:       entity.High,
		entity.Friendliness: entity.Low,
		entity.Empathy:      entity.Low,
	})
	e.Attributes.Collector = &entity.Collector{}
	return e
}

func newWorld() entity.Entity {
	w := entity.DefaultWorld()
	return entity.Entity{
		ID:         entity.NewID(),
		Name:       "World",
		Attributes: entity.Attributes{World: &w},
	}
}
