package driven

import (
	"context"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// StructureStore persists course structures for offline use.
// Keyed by course id, last-write-wins; no versioning beyond "latest".
type StructureStore interface {
	// Save stores or replaces the durable copy for a course.
	Save(ctx context.Context, structure *domain.CourseStructure) error

	// Load retrieves the most recent durable copy for a course.
	// Fails with domain.ErrNotFound when nothing is saved for this course.
	Load(ctx context.Context, courseID string) (*domain.CourseStructure, error)

	// Delete removes the durable copy for a course.
	// Deleting an absent copy is a no-op.
	Delete(ctx context.Context, courseID string) error
}
