// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package random holds the seeded random helpers shared by the simulation.
//
// Every stochastic decision in a match draws from a single *rand.Rand owned by
// the match so a run can be replayed from its seed.
package random

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// New returns a PCG-backed generator for the given seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeedFor derives a stable seed from an identifier such as a match id.
func SeedFor(id string) uint64 {
	return xxhash.Sum64String(id)
}

// Bool returns true with probability p. Values outside [0, 1] are clamped.
func Bool(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}

// Float returns a value in [lo, hi).
func Float(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// IntInclusive returns a value in [lo, hi].
func IntInclusive(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// Choose picks a uniformly random element. ok is false for an empty slice.
func Choose[T any](rng *rand.Rand, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[rng.IntN(len(items))], true
}

// WeightedIndex samples an index with probability proportional to its weight.
// It returns -1 when every weight is zero or the slice is empty.
func WeightedIndex(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}

	pick := rng.IntN(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if pick < w {
			return i
		}
		pick -= w
	}
	return len(weights) - 1
}
