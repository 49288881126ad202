// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package hex

import (
	"encoding/json"
	"fmt"
)

// Direction is one of the six unit moves on the grid.
type Direction uint8

// Directions, in movement order.
const (
	DirEast Direction = iota
	DirNorthEast
	DirSouthEast
	DirWest
	DirNorthWest
	DirSouthWest
)

var directionNames = map[Direction]string{
	DirEast:      "east",
	DirNorthEast: "north_east",
	DirSouthEast: "south_east",
	DirWest:      "west",
	DirNorthWest: "north_west",
	DirSouthWest: "south_west",
}

// AllMovements returns every direction.
func AllMovements() [6]Direction {
	return [6]Direction{DirEast, DirNorthEast, DirSouthEast, DirWest, DirNorthWest, DirSouthWest}
}

// Vector returns the unit offset for d.
func (d Direction) Vector() Hex {
	switch d {
	case DirEast:
		return East
	case DirWest:
		return West
	case DirNorthEast:
		return NorthEast
	case DirNorthWest:
		return NorthWest
	case DirSouthEast:
		return SouthEast
	case DirSouthWest:
		return SouthWest
	default:
		panic(fmt.Sprintf("hex: invalid direction %d", d))
	}
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the direction by name.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a direction name.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for dir, n := range directionNames {
		if n == name {
			*d = dir
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", name)
}
