// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package match

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/giraugh/abduction-sub000/internal/entity"
)

// memStore is an in-memory Store.
type memStore struct {
	mu        sync.Mutex
	matches   []Config
	mutations map[string][]entity.Mutation
	failWrite bool
}

func newMemStore() *memStore {
	return &memStore{mutations: make(map[string][]entity.Mutation)}
}

var errWriteFailed = errors.New("database unavailable")

func (s *memStore) AppendMutations(_ context.Context, matchID string, muts []entity.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errWriteFailed
	}
	s.mutations[matchID] = append(s.mutations[matchID], muts...)
	return nil
}

func (s *memStore) setFailWrite(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite = fail
}

func (s *memStore) CreateMatch(_ context.Context, cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, cfg)
	return nil
}

func (s *memStore) UpdateMatch(_ context.Context, cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.matches {
		if s.matches[i].MatchID == cfg.MatchID {
			s.matches[i] = cfg
			return nil
		}
	}
	return ErrMatchNotFound
}

func (s *memStore) GetMatch(_ context.Context, matchID string) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.MatchID == matchID {
			return m, nil
		}
	}
	return Config{}, ErrMatchNotFound
}

func (s *memStore) IncompleteMatch(context.Context) (Config, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range slices.Backward(s.matches) {
		if !m.Complete {
			return m, true, nil
		}
	}
	return Config{}, false, nil
}

func (s *memStore) LastCompletedMatch(context.Context) (Config, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range slices.Backward(s.matches) {
		if m.Complete {
			return m, true, nil
		}
	}
	return Config{}, false, nil
}

func (s *memStore) LoadEntities(_ context.Context, matchID string) ([]entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.Reduce(s.mutations[matchID]), nil
}

func (s *memStore) snapshot() []Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.matches)
}
