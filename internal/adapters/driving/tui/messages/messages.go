// Package messages defines bubbletea message types for the unit pager.
package messages

import (
	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// SnapshotReceived carries a fresh download snapshot from the manager's
// status stream.
type SnapshotReceived struct {
	Snapshot domain.DownloadSnapshot
}

// StreamClosed is sent when the download status stream ends.
type StreamClosed struct{}

// CompletionReported carries the outcome of marking a block complete.
type CompletionReported struct {
	BlockID string
	Err     error
}

// DownloadRequested carries the outcome of a section download request.
type DownloadRequested struct {
	Err error
}

// RemovalDone carries the outcome of a section removal request.
type RemovalDone struct {
	Err error
}
