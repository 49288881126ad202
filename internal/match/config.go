// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/internal/core"
)

// Config is the persisted configuration of a match.
type Config struct {
	// MatchID is a ULID string.
	MatchID string `json:"match_id"`
	// PlayerCount is how many players the match starts with. Survivors of the
	// preceding match count towards it; the rest are generated.
	PlayerCount int `json:"player_count"`
	// PrecedingMatchID names the match whose survivors carry over.
	PrecedingMatchID *string `json:"preceding_match_id,omitempty"`
	// WorldRadius is how far the world extends from the origin in hexes.
	WorldRadius int  `json:"world_radius"`
	Complete    bool `json:"complete"`
}

// NewConfig creates a configuration with a fresh match id.
func NewConfig(playerCount, worldRadius int, precedingMatchID *string) Config {
	return Config{
		MatchID:          core.NewMatchID(),
		PlayerCount:      playerCount,
		PrecedingMatchID: precedingMatchID,
		WorldRadius:      worldRadius,
	}
}

// Isolated creates a configuration with no preceding match.
func Isolated(playerCount, worldRadius int) Config {
	return NewConfig(playerCount, worldRadius, nil)
}

// Validate rejects configurations no match can run with.
func (c Config) Validate() error {
	errb := oops.Code("CONFIG_INVALID").With("match_id", c.MatchID)
	if c.MatchID == "" {
		return errb.Errorf("match id is required")
	}
	if c.PlayerCount <= 0 {
		return errb.With("player_count", c.PlayerCount).Errorf("player count must be positive")
	}
	if c.WorldRadius <= 0 {
		return errb.With("world_radius", c.WorldRadius).Errorf("world radius must be positive")
	}
	return nil
}
