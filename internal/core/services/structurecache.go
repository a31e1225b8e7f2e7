package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driving"
	"github.com/opencourse-labs/stride-cli/internal/logger"
)

// Ensure StructureCache implements the interface.
var _ driving.StructureLoader = (*StructureCache)(nil)

// StructureCache holds the most recently loaded course structure and
// mediates between the remote fetch path and the durable store.
//
// The in-memory structure is single-writer (the refresh path),
// multi-reader: replacement is a pointer swap under the mutex, so a
// reader never observes a half-populated structure. A refresh in flight
// keeps serving the previous structure.
type StructureCache struct {
	api      driven.CourseAPI
	store    driven.StructureStore
	notifier driven.CourseNotifier

	mu      sync.RWMutex
	current *domain.CourseStructure

	// reqSeq identifies the most recently started load. A load that
	// finishes after a newer one started discards its result instead of
	// clobbering the newer structure.
	reqSeq uint64
}

// NewStructureCache creates a structure cache.
// The notifier is optional; without it Update does not broadcast.
func NewStructureCache(
	api driven.CourseAPI,
	store driven.StructureStore,
	notifier driven.CourseNotifier,
) *StructureCache {
	return &StructureCache{
		api:      api,
		store:    store,
		notifier: notifier,
	}
}

// Preload fetches the structure over the network, persists a durable copy
// and swaps it in as current.
func (c *StructureCache) Preload(ctx context.Context, courseID string) error {
	if courseID == "" {
		return fmt.Errorf("preload: %w: empty course id", domain.ErrInvalidInput)
	}

	seq := c.beginLoad()

	structure, err := c.api.FetchCourseStructure(ctx, courseID)
	if err != nil {
		return fmt.Errorf("fetch course structure: %w", err)
	}

	// Persist before swapping so the durable copy never lags the
	// in-memory one. A save failure is logged, not fatal: the session
	// can still navigate from memory.
	if err := c.store.Save(ctx, structure); err != nil {
		logger.Warn("structure cache: durable save failed for %s: %v", courseID, err)
	}

	if !c.commitLoad(seq, structure) {
		logger.Debug("structure cache: discarding stale load for %s", courseID)
	}
	return nil
}

// PreloadFromStore loads the most recent durable copy, for offline use.
func (c *StructureCache) PreloadFromStore(ctx context.Context, courseID string) error {
	if courseID == "" {
		return fmt.Errorf("preload from store: %w: empty course id", domain.ErrInvalidInput)
	}

	seq := c.beginLoad()

	structure, err := c.store.Load(ctx, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("load course structure: %w", domain.ErrNoCachedData)
		}
		return fmt.Errorf("load course structure: %w", err)
	}

	c.commitLoad(seq, structure)
	return nil
}

// Update re-fetches the current course's structure and publishes
// StructureUpdated on success.
func (c *StructureCache) Update(ctx context.Context, courseID string, userInitiated bool) error {
	if err := c.Preload(ctx, courseID); err != nil {
		return err
	}
	if c.notifier != nil {
		c.notifier.Publish(domain.StructureUpdated{CourseID: courseID, UserInitiated: userInitiated})
	}
	return nil
}

// Current returns the in-memory structure.
func (c *StructureCache) Current() (*domain.CourseStructure, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil, domain.ErrNotLoaded
	}
	return c.current, nil
}

// CurrentForVideos returns the videos-only projection of the current
// structure. A view over the same data, derived on every call.
func (c *StructureCache) CurrentForVideos() (*domain.CourseStructure, error) {
	structure, err := c.Current()
	if err != nil {
		return nil, err
	}
	return structure.VideoStructure(), nil
}

// beginLoad registers a new load attempt and returns its sequence number.
func (c *StructureCache) beginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqSeq++
	return c.reqSeq
}

// commitLoad swaps in the loaded structure unless a newer load has
// started since. Returns false when the result was discarded as stale.
func (c *StructureCache) commitLoad(seq uint64, structure *domain.CourseStructure) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.reqSeq {
		return false
	}
	c.current = structure
	return true
}
