package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/pfc/pkg/ports"
	"github.com/aretw0/pfc/pkg/schema"
)

// Store implements ports.ChartStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*schema.Chart
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with records.
func NewStore(seed ...*schema.Chart) *Store {
	s := &Store{
		data: make(map[string]*schema.Chart, len(seed)),
	}
	for _, rec := range seed {
		s.data[rec.Name] = rec.Clone()
	}
	return s
}

// Save persists a copy of the record set.
func (s *Store) Save(ctx context.Context, rec *schema.Chart) error {
	if rec.Name == "" {
		return ports.ErrInvalidName
	}
	cp := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.Name] = cp
	return nil
}

// Load returns a copy so callers cannot mutate the stored record set.
func (s *Store) Load(ctx context.Context, name string) (*schema.Chart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[name]
	if !ok {
		return nil, ports.ErrChartNotFound
	}
	return rec.Clone(), nil
}

// Delete removes the record set.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored chart names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
