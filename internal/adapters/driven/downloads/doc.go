// Package downloads implements the DownloadRunner port with a bounded
// worker pool over plain HTTP.
//
// Each enqueued block becomes a task with its own cancellable context.
// Transfers resume from a partial file with a Range request when the
// server honours ranges, and every lifecycle transition is both
// persisted through the DownloadStore and emitted on the status stream.
package downloads
