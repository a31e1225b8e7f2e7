package driving

import (
	"context"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// DownloadManager joins the download status stream against the current
// course structure and exposes bulk download intents to screens.
type DownloadManager interface {
	// Start begins consuming the runner's status stream. Blocks until
	// ctx is cancelled; run it on its own goroutine.
	Start(ctx context.Context) error

	// RequestDownload enqueues every downloadable leaf under the given
	// scope (a single leaf, or a vertical/sequential/chapter id) that is
	// not already downloaded or in flight. When downloads are restricted
	// to Wi-Fi and the device is not on Wi-Fi, the whole request is
	// rejected with domain.ErrWifiRequired: one rejection for the
	// request, not one per block.
	RequestDownload(ctx context.Context, scopeBlockID string) error

	// RequestRemoval deletes local copies and purges records for every
	// leaf under the given scope. Idempotent.
	RequestRemoval(ctx context.Context, scopeBlockID string) error

	// Snapshot returns the current per-block download states.
	// The returned map is a copy; mutating it affects nothing.
	Snapshot() domain.DownloadSnapshot

	// AggregateState derives the state of a container from its
	// downloadable leaves: downloaded only if all are downloaded,
	// in-progress if any is queued or transferring, otherwise
	// not-downloaded. Recomputed on every call, never cached.
	AggregateState(containerID string) domain.DownloadState

	// Subscribe returns a channel receiving a fresh snapshot after every
	// status emission, plus a cancel function.
	Subscribe() (<-chan domain.DownloadSnapshot, func())
}

// CompletionReporter marks blocks complete against the LMS, guarded by a
// local already-completed set so duplicate marking is a no-op.
type CompletionReporter interface {
	// MarkCompleted reports the blocks as completed and publishes
	// CompletionSet on success. Already-completed blocks are skipped
	// locally without a server round-trip. On failure the local guard
	// is rolled back so the next interaction can retry.
	MarkCompleted(ctx context.Context, courseID string, blockIDs []string) error

	// IsCompleted reports the local guard state for a block.
	IsCompleted(blockID string) bool
}
