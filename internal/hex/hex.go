// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package hex implements axial coordinates on a pointy-topped hex grid.
//
// See https://www.redblobgames.com/grids/hexagons for the coordinate system.
package hex

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// Hex is an axial (q, r) coordinate. The cube coordinate s is -q-r.
type Hex struct {
	Q int
	R int
}

// Unit vectors for each direction plus the origin.
var (
	Zero      = Hex{0, 0}
	East      = Hex{1, 0}
	West      = Hex{-1, 0}
	NorthEast = Hex{1, -1}
	NorthWest = Hex{0, -1}
	SouthEast = Hex{0, 1}
	SouthWest = Hex{-1, 1}
)

// New returns the hex at (q, r).
func New(q, r int) Hex {
	return Hex{Q: q, R: r}
}

// S returns the derived third cube coordinate.
func (h Hex) S() int {
	return -h.Q - h.R
}

// Add returns h + o.
func (h Hex) Add(o Hex) Hex {
	return Hex{h.Q + o.Q, h.R + o.R}
}

// Sub returns h - o.
func (h Hex) Sub(o Hex) Hex {
	return Hex{h.Q - o.Q, h.R - o.R}
}

// Step returns the hex one step away in direction d.
func (h Hex) Step(d Direction) Hex {
	return h.Add(d.Vector())
}

// Neighbours returns the six adjacent hexes in a fixed order.
func (h Hex) Neighbours() [6]Hex {
	q, r := h.Q, h.R
	return [6]Hex{
		{q + 1, r},
		{q + 1, r - 1},
		{q, r - 1},
		{q - 1, r},
		{q - 1, r + 1},
		{q, r + 1},
	}
}

// Surrounds returns the hex itself followed by its neighbours.
func (h Hex) Surrounds() [7]Hex {
	n := h.Neighbours()
	return [7]Hex{h, n[0], n[1], n[2], n[3], n[4], n[5]}
}

// DistToOrigin returns the hex distance from (0, 0).
func (h Hex) DistToOrigin() int {
	return (abs(h.Q) + abs(h.R) + abs(h.S())) / 2
}

// DistTo returns the hex distance between h and o.
func (h Hex) DistTo(o Hex) int {
	return h.Sub(o).DistToOrigin()
}

// IsAdjacent reports whether o is exactly one step from h.
func (h Hex) IsAdjacent(o Hex) bool {
	return h.DistTo(o) == 1
}

// WithinBounds reports whether h lies inside a world of the given radius.
func (h Hex) WithinBounds(radius int) bool {
	return h.DistToOrigin() <= radius
}

// DirectionTo returns the direction from h to an adjacent hex o.
// ok is false when o is not adjacent, including when o == h.
func (h Hex) DirectionTo(o Hex) (Direction, bool) {
	delta := o.Sub(h)
	for _, dir := range AllMovements() {
		if dir.Vector() == delta {
			return dir, true
		}
	}
	return 0, false
}

func (h Hex) String() string {
	return fmt.Sprintf("(%d, %d)", h.Q, h.R)
}

// MarshalJSON encodes the hex as a [q, r] pair.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{h.Q, h.R})
}

// UnmarshalJSON decodes a [q, r] pair.
func (h *Hex) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("invalid hex %s: %w", data, err)
	}
	h.Q, h.R = pair[0], pair[1]
	return nil
}

// AllInBounds enumerates every hex in a world of the given radius.
func AllInBounds(radius int) []Hex {
	var result []Hex
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			s := -q - r
			if max(abs(q), abs(r), abs(s)) <= radius {
				result = append(result, Hex{q, r})
			}
		}
	}
	return result
}

// RandomInBounds picks a hex inside the given radius.
func RandomInBounds(rng *rand.Rand, radius int) Hex {
	x := rng.IntN(2*radius+1) - radius
	minY := max(-radius, -x-radius)
	maxY := min(radius, -x+radius)
	y := rng.IntN(maxY-minY+1) + minY
	return Hex{x, -x - y}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
