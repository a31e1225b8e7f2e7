package domain

import "time"

// DownloadState is the lifecycle state of one block's local download.
type DownloadState string

// Download states, in rough lifecycle order.
const (
	// DownloadStateNotDownloaded means no local copy exists.
	DownloadStateNotDownloaded DownloadState = "not_downloaded"

	// DownloadStateWaiting means the block is queued behind other work.
	DownloadStateWaiting DownloadState = "waiting"

	// DownloadStateDownloading means bytes are actively being fetched.
	DownloadStateDownloading DownloadState = "downloading"

	// DownloadStateDownloaded means a complete local copy exists.
	DownloadStateDownloaded DownloadState = "downloaded"
)

// IsValid returns true if the state is recognised.
func (s DownloadState) IsValid() bool {
	switch s {
	case DownloadStateNotDownloaded, DownloadStateWaiting,
		DownloadStateDownloading, DownloadStateDownloaded:
		return true
	default:
		return false
	}
}

// InProgress returns true while a download is queued or transferring.
func (s DownloadState) InProgress() bool {
	return s == DownloadStateWaiting || s == DownloadStateDownloading
}

// String returns the string representation.
func (s DownloadState) String() string {
	return string(s)
}

// Description returns a human-readable description of the state.
func (s DownloadState) Description() string {
	switch s {
	case DownloadStateNotDownloaded:
		return "Not downloaded"
	case DownloadStateWaiting:
		return "Waiting"
	case DownloadStateDownloading:
		return "Downloading"
	case DownloadStateDownloaded:
		return "Downloaded"
	default:
		return "Unknown"
	}
}

// DownloadRecord tracks the local download of one block's asset.
// The download subsystem owns the state machine; the navigation core
// only ever joins these against blocks by id.
type DownloadRecord struct {
	// BlockID is the block whose asset this record tracks.
	BlockID string

	// CourseID is the owning course.
	CourseID string

	// Title is the block display name at enqueue time.
	Title string

	// URL is the remote asset location.
	URL string

	// Path is the local file location, empty until downloading starts.
	Path string

	// Size is the asset size in bytes, zero when unknown.
	Size int64

	// State is the current lifecycle state.
	State DownloadState

	// UpdatedAt is when the state last changed.
	UpdatedAt time.Time
}

// DownloadStatus is one emission on the download status stream.
type DownloadStatus struct {
	// BlockID is the block the status applies to.
	BlockID string

	// State is the new lifecycle state.
	State DownloadState

	// Progress is the transferred fraction in [0.0, 1.0], meaningful
	// only while State is downloading.
	Progress float64
}

// DownloadSnapshot is an immutable view of per-block download state,
// republished to screens on every stream emission.
type DownloadSnapshot map[string]DownloadState

// Clone returns a copy; snapshots handed across component boundaries
// must never share the underlying map.
func (s DownloadSnapshot) Clone() DownloadSnapshot {
	out := make(DownloadSnapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// StateOf returns the state for a block, defaulting to not-downloaded.
func (s DownloadSnapshot) StateOf(blockID string) DownloadState {
	if st, ok := s[blockID]; ok {
		return st
	}
	return DownloadStateNotDownloaded
}
