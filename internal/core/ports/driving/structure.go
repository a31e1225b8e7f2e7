package driving

import (
	"context"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// StructureLoader loads and caches the active course's content structure.
// Exactly one structure is live at a time; loading a second course
// replaces it wholesale.
type StructureLoader interface {
	// Preload fetches the structure over the network, persists a durable
	// copy and swaps it in as current. Fails with domain.ErrConnectivity
	// or domain.ErrRemote.
	Preload(ctx context.Context, courseID string) error

	// PreloadFromStore loads the most recent durable copy, for offline
	// sessions. Fails with domain.ErrNoCachedData when nothing is saved
	// for this course.
	PreloadFromStore(ctx context.Context, courseID string) error

	// Update re-fetches the current course's structure and publishes
	// StructureUpdated on success. While the fetch is in flight, readers
	// keep seeing the previous structure.
	Update(ctx context.Context, courseID string, userInitiated bool) error

	// Current returns the in-memory structure.
	// Fails with domain.ErrNotLoaded before the first successful load.
	Current() (*domain.CourseStructure, error)

	// CurrentForVideos returns the videos-only projection of the current
	// structure. Derived on demand, never cached separately.
	CurrentForVideos() (*domain.CourseStructure, error)
}
