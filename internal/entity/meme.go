// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package entity

import (
	"encoding/json"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/giraugh/abduction-sub000/internal/hex"
	"github.com/giraugh/abduction-sub000/internal/random"
)

// MemeKind is the category of a piece of knowledge.
type MemeKind string

// Meme kinds. The string is also the tag used when encoding.
const (
	MemeEntityIsSafe      MemeKind = "safe"
	MemeEntityIsDangerous MemeKind = "dangerous"
	MemeShelterAt         MemeKind = "shelter_at"
	MemeWaterSourceAt     MemeKind = "water_source_at"
	MemeAsked             MemeKind = "asked"
)

// Meme is a piece of shareable knowledge. Which fields are set depends on Kind.
type Meme struct {
	Kind     MemeKind
	Entity   ID
	Hex      hex.Hex
	Question string
}

// EntityIsSafe believes id is safe.
func EntityIsSafe(id ID) Meme { return Meme{Kind: MemeEntityIsSafe, Entity: id} }

// EntityIsDangerous believes id is dangerous.
func EntityIsDangerous(id ID) Meme { return Meme{Kind: MemeEntityIsDangerous, Entity: id} }

// ShelterAt knows of shelter at h.
func ShelterAt(h hex.Hex) Meme { return Meme{Kind: MemeShelterAt, Hex: h} }

// WaterSourceAt knows of safe water at h.
func WaterSourceAt(h hex.Hex) Meme { return Meme{Kind: MemeWaterSourceAt, Hex: h} }

// Asked remembers that question was already put to id.
func Asked(id ID, question string) Meme {
	return Meme{Kind: MemeAsked, Entity: id, Question: question}
}

func (m Meme) String() string {
	switch m.Kind {
	case MemeEntityIsSafe, MemeEntityIsDangerous:
		return string(m.Kind) + ":" + string(m.Entity)
	case MemeShelterAt, MemeWaterSourceAt:
		return fmt.Sprintf("%s:%d,%d", m.Kind, m.Hex.Q, m.Hex.R)
	case MemeAsked:
		return string(m.Kind) + ":" + string(m.Entity) + ":" + m.Question
	default:
		return string(m.Kind)
	}
}

// ParseMeme decodes the tagged string form of a meme.
func ParseMeme(s string) (Meme, error) {
	tag, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Meme{}, fmt.Errorf("malformed meme %q: no tag", s)
	}

	switch kind := MemeKind(tag); kind {
	case MemeEntityIsSafe, MemeEntityIsDangerous:
		return Meme{Kind: kind, Entity: ID(rest)}, nil
	case MemeShelterAt, MemeWaterSourceAt:
		qs, rs, ok := strings.Cut(rest, ",")
		if !ok {
			return Meme{}, fmt.Errorf("malformed meme %q: bad hex", s)
		}
		q, err := strconv.Atoi(qs)
		if err != nil {
			return Meme{}, fmt.Errorf("malformed meme %q: %w", s, err)
		}
		r, err := strconv.Atoi(rs)
		if err != nil {
			return Meme{}, fmt.Errorf("malformed meme %q: %w", s, err)
		}
		return Meme{Kind: kind, Hex: hex.New(q, r)}, nil
	case MemeAsked:
		id, question, ok := strings.Cut(rest, ":")
		if !ok {
			return Meme{}, fmt.Errorf("malformed meme %q: no question", s)
		}
		return Asked(ID(id), question), nil
	default:
		return Meme{}, fmt.Errorf("unknown meme tag %q", tag)
	}
}

// Danger is what an entity believes about another entity's safety.
type Danger int

// Danger beliefs.
const (
	DangerUnknown Danger = iota
	DangerSafe
	DangerDangerous
)

// MemeTable is the set of memes an entity knows.
type MemeTable struct {
	memes map[Meme]struct{}
}

// NewMemeTable returns an empty table.
func NewMemeTable() *MemeTable {
	return &MemeTable{memes: make(map[Meme]struct{})}
}

// Insert adds a meme.
func (t *MemeTable) Insert(m Meme) {
	if t.memes == nil {
		t.memes = make(map[Meme]struct{})
	}
	t.memes[m] = struct{}{}
}

// Remove forgets a meme.
func (t *MemeTable) Remove(m Meme) {
	delete(t.memes, m)
}

// Has reports whether m is known.
func (t *MemeTable) Has(m Meme) bool {
	if t == nil {
		return false
	}
	_, ok := t.memes[m]
	return ok
}

// Len returns the number of known memes.
func (t *MemeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.memes)
}

// RememberIsSafe records that id is safe.
func (t *MemeTable) RememberIsSafe(id ID) { t.Insert(EntityIsSafe(id)) }

// RememberIsDangerous records that id is dangerous.
func (t *MemeTable) RememberIsDangerous(id ID) { t.Insert(EntityIsDangerous(id)) }

// RememberAsked records that question was put to id.
func (t *MemeTable) RememberAsked(id ID, question string) { t.Insert(Asked(id, question)) }

// AskedBefore reports whether question was already put to id.
func (t *MemeTable) AskedBefore(id ID, question string) bool {
	return t.Has(Asked(id, question))
}

// CheckDanger returns the belief about id. Contradicting memes cancel out.
func (t *MemeTable) CheckDanger(id ID) Danger {
	safe, dangerous := t.Has(EntityIsSafe(id)), t.Has(EntityIsDangerous(id))
	switch {
	case safe && !dangerous:
		return DangerSafe
	case dangerous && !safe:
		return DangerDangerous
	default:
		return DangerUnknown
	}
}

// AssumablySafe reports that there is no evidence id is dangerous.
func (t *MemeTable) AssumablySafe(id ID) bool {
	return t.CheckDanger(id) != DangerDangerous
}

// ShelterLocations returns known shelter hexes.
func (t *MemeTable) ShelterLocations() []hex.Hex {
	return t.locations(MemeShelterAt)
}

// WaterSourceLocations returns known water source hexes.
func (t *MemeTable) WaterSourceLocations() []hex.Hex {
	return t.locations(MemeWaterSourceAt)
}

func (t *MemeTable) locations(kind MemeKind) []hex.Hex {
	var hexes []hex.Hex
	for _, m := range t.sorted() {
		if m.Kind == kind {
			hexes = append(hexes, m.Hex)
		}
	}
	return hexes
}

// SampleShareable picks a random meme of the given kinds that other does not
// know. With no kinds given, any non-asked meme qualifies.
func (t *MemeTable) SampleShareable(other *MemeTable, rng *rand.Rand, kinds ...MemeKind) (Meme, bool) {
	var shareable []Meme
	for _, m := range t.sorted() {
		if m.Kind == MemeAsked || other.Has(m) {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, m.Kind) {
			continue
		}
		shareable = append(shareable, m)
	}
	return random.Choose(rng, shareable)
}

// Strings returns the encoded memes in a stable order.
func (t *MemeTable) Strings() []string {
	memes := t.sorted()
	out := make([]string, len(memes))
	for i, m := range memes {
		out[i] = m.String()
	}
	return out
}

func (t *MemeTable) sorted() []Meme {
	if t == nil {
		return nil
	}
	return slices.SortedFunc(maps.Keys(t.memes), func(a, b Meme) int {
		return strings.Compare(a.String(), b.String())
	})
}

// Clone returns an independent copy.
func (t *MemeTable) Clone() *MemeTable {
	return &MemeTable{memes: maps.Clone(t.memes)}
}

// MarshalJSON encodes the table as a sorted list of tagged strings.
func (t *MemeTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Strings())
}

// UnmarshalJSON decodes a list of tagged strings.
func (t *MemeTable) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.memes = make(map[Meme]struct{}, len(raw))
	for _, s := range raw {
		m, err := ParseMeme(s)
		if err != nil {
			return err
		}
		t.memes[m] = struct{}{}
	}
	return nil
}
