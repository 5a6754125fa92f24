// Package memstore provides an in-memory implementation of docstore.Store.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/linnemanlabs/preslist/internal/docstore"
)

// Store holds collections in memory. Suitable for dev/testing.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]docstore.Document // collection -> documents in insertion order
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{collections: make(map[string][]docstore.Document)}
}

// List returns copies of every document in the collection.
func (s *Store) List(_ context.Context, collection string) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", docstore.ErrUnknownCollection, collection)
	}
	out := make([]docstore.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out, nil
}

// Put stores a copy of doc, replacing any document with the same ID.
func (s *Store) Put(_ context.Context, collection string, doc docstore.Document) error {
	if doc.ID() == "" {
		return fmt.Errorf("memstore: document in %s has no %s", collection, docstore.IDKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := doc.Clone()
	docs := s.collections[collection]
	for i, d := range docs {
		if d.ID() == doc.ID() {
			docs[i] = cp
			return nil
		}
	}
	s.collections[collection] = append(docs, cp)
	return nil
}

// Ensure declares an empty collection so List does not report it unknown.
func (s *Store) Ensure(collections ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range collections {
		if _, ok := s.collections[c]; !ok {
			s.collections[c] = nil
		}
	}
}
