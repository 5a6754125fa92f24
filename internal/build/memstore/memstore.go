// Package memstore provides an in-memory implementation of build.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/preslist/internal/build"
)

// Store holds build runs in memory. Suitable for dev/testing and one-shot CLI runs.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*build.Run // run ID -> run
	seen map[string]string     // request fingerprint -> latest run ID (dedup)
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		runs: make(map[string]*build.Run),
		seen: make(map[string]string),
	}
}

// Get retrieves a build run by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*build.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, false, nil
	}
	return clone(r), true, nil
}

// GetByFingerprint retrieves the latest run for a request fingerprint. Returns a copy.
func (s *Store) GetByFingerprint(_ context.Context, fp string) (*build.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.seen[fp]
	if !ok {
		return nil, false, nil
	}
	return clone(s.runs[id]), true, nil
}

// Put stores a copy of the build run.
func (s *Store) Put(_ context.Context, r *build.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = clone(r)
	s.seen[r.Fingerprint] = r.ID
	return nil
}

func clone(r *build.Run) *build.Run {
	cp := *r
	cp.Outputs = append(cp.Outputs[:0:0], r.Outputs...)
	cp.Warnings = append(cp.Warnings[:0:0], r.Warnings...)
	return &cp
}
