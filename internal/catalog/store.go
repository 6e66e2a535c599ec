package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/bittubunny/BLMS/internal/apperr"
)

// MemoryStore is an in-memory implementation of Store, used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	courses []Course
}

// NewMemoryStore creates a new in-memory course store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{courses: []Course{}}
}

func (s *MemoryStore) Insert(_ context.Context, course Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = append(s.courses, course)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Insertion order reversed gives newest first.
	out := make([]Course, 0, len(s.courses))
	for i := len(s.courses) - 1; i >= 0; i-- {
		out = append(out, s.courses[i])
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return Course{}, fmt.Errorf("course %s: %w", id, apperr.ErrNotFound)
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.courses {
		if c.ID == id {
			s.courses = append(s.courses[:i], s.courses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("course %s: %w", id, apperr.ErrNotFound)
}
