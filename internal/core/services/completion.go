package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driving"
)

// Ensure CompletionTracker implements the interface.
var _ driving.CompletionReporter = (*CompletionTracker)(nil)

// CompletionTracker reports block completion to the LMS, guarded by a
// local already-completed set. The guard, not a server check, is what
// makes duplicate marking a no-op, so CompletionSet consumers can be
// safely re-invoked on at-least-once delivery.
type CompletionTracker struct {
	api      driven.CourseAPI
	notifier driven.CourseNotifier

	mu        sync.Mutex
	completed map[string]struct{}
}

// NewCompletionTracker creates a completion tracker with an empty guard.
func NewCompletionTracker(api driven.CourseAPI, notifier driven.CourseNotifier) *CompletionTracker {
	return &CompletionTracker{
		api:       api,
		notifier:  notifier,
		completed: make(map[string]struct{}),
	}
}

// MarkCompleted reports the given blocks as completed.
// Blocks already in the local guard are skipped. On failure the guard is
// rolled back for the blocks of this request, so the next interaction
// retries them. Publishes CompletionSet when anything was newly marked.
func (c *CompletionTracker) MarkCompleted(ctx context.Context, courseID string, blockIDs []string) error {
	if courseID == "" || len(blockIDs) == 0 {
		return fmt.Errorf("mark completed: %w", domain.ErrInvalidInput)
	}

	// Optimistically claim the blocks so a concurrent duplicate request
	// sees them as done.
	newlyMarked := c.claim(blockIDs)
	if len(newlyMarked) == 0 {
		return nil
	}

	if err := c.api.MarkBlocksCompletion(ctx, courseID, newlyMarked); err != nil {
		c.rollback(newlyMarked)
		return fmt.Errorf("mark blocks completion: %w", err)
	}

	if c.notifier != nil {
		c.notifier.Publish(domain.CompletionSet{})
	}
	return nil
}

// IsCompleted reports the local guard state for a block.
func (c *CompletionTracker) IsCompleted(blockID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.completed[blockID]
	return ok
}

// claim adds the not-yet-completed blocks to the guard and returns them.
func (c *CompletionTracker) claim(blockIDs []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var claimed []string
	for _, id := range blockIDs {
		if _, done := c.completed[id]; done {
			continue
		}
		c.completed[id] = struct{}{}
		claimed = append(claimed, id)
	}
	return claimed
}

// rollback removes blocks from the guard after a failed report.
func (c *CompletionTracker) rollback(blockIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range blockIDs {
		delete(c.completed, id)
	}
}
