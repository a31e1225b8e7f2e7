package memory

import (
	"context"
	"sync"
	"time"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
)

// Ensure DownloadStore implements the interface.
var _ driven.DownloadStore = (*DownloadStore)(nil)

// DownloadStore is an in-memory implementation of driven.DownloadStore.
type DownloadStore struct {
	mu      sync.RWMutex
	records map[string]domain.DownloadRecord
}

// NewDownloadStore creates a new in-memory download store.
func NewDownloadStore() *DownloadStore {
	return &DownloadStore{
		records: make(map[string]domain.DownloadRecord),
	}
}

// Save stores or updates a download record.
func (s *DownloadStore) Save(_ context.Context, record domain.DownloadRecord) error {
	if record.BlockID == "" || record.CourseID == "" {
		return domain.ErrInvalidInput
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.BlockID] = record
	return nil
}

// Get retrieves the record for a block.
func (s *DownloadStore) Get(_ context.Context, blockID string) (*domain.DownloadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[blockID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// ListByCourse returns all records for a course.
func (s *DownloadStore) ListByCourse(_ context.Context, courseID string) ([]domain.DownloadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []domain.DownloadRecord
	for _, record := range s.records {
		if record.CourseID == courseID {
			records = append(records, record)
		}
	}
	return records, nil
}

// Delete removes the record for a block.
func (s *DownloadStore) Delete(_ context.Context, blockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, blockID)
	return nil
}
