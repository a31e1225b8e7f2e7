package memory

import (
	"context"
	"sync"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
)

// Ensure StructureStore implements the interface.
var _ driven.StructureStore = (*StructureStore)(nil)

// StructureStore is an in-memory implementation of driven.StructureStore.
type StructureStore struct {
	mu         sync.RWMutex
	structures map[string]*domain.CourseStructure
}

// NewStructureStore creates a new in-memory structure store.
func NewStructureStore() *StructureStore {
	return &StructureStore{
		structures: make(map[string]*domain.CourseStructure),
	}
}

// Save stores or replaces the copy for a course.
func (s *StructureStore) Save(_ context.Context, structure *domain.CourseStructure) error {
	if structure == nil || structure.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.structures[structure.ID] = structure
	return nil
}

// Load retrieves the copy for a course.
func (s *StructureStore) Load(_ context.Context, courseID string) (*domain.CourseStructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	structure, ok := s.structures[courseID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return structure, nil
}

// Delete removes the copy for a course.
func (s *StructureStore) Delete(_ context.Context, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.structures, courseID)
	return nil
}
