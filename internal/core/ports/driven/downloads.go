package driven

import (
	"context"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// DownloadStore persists download records.
type DownloadStore interface {
	// Save stores or updates a download record.
	Save(ctx context.Context, record domain.DownloadRecord) error

	// Get retrieves the record for a block.
	// Fails with domain.ErrNotFound when no record exists.
	Get(ctx context.Context, blockID string) (*domain.DownloadRecord, error)

	// ListByCourse returns all records for a course.
	ListByCourse(ctx context.Context, courseID string) ([]domain.DownloadRecord, error)

	// Delete removes the record for a block.
	// Deleting an absent record is a no-op.
	Delete(ctx context.Context, blockID string) error
}

// DownloadRunner executes downloads and broadcasts their progress.
// The navigation core never touches the filesystem or the transfer
// machinery directly; it only issues intents through this port and
// observes the status stream.
type DownloadRunner interface {
	// Enqueue schedules a block's asset for download.
	// Enqueueing a block that is already downloaded or in flight is a
	// no-op; the runner re-emits its current state on the stream.
	Enqueue(ctx context.Context, record domain.DownloadRecord) error

	// Cancel removes a block from the active queue. The cancellation is
	// reported back through the status stream as not-downloaded.
	Cancel(blockID string)

	// Remove deletes the local copy and purges the record for a block.
	// Removing an absent download is a no-op, not an error.
	Remove(ctx context.Context, blockID string) error

	// Subscribe returns a channel of status emissions and a cancel
	// function. Multiple subscribers each receive every emission; there
	// is no replay for late subscribers.
	Subscribe() (<-chan domain.DownloadStatus, func())

	// Close stops all transfers and releases resources.
	Close() error
}
