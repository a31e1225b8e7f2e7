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

// Ensure DownloadReconciler implements the interface.
var _ driving.DownloadManager = (*DownloadReconciler)(nil)

// DownloadReconciler merges the download status stream into per-screen
// download state and exposes bulk download intents.
//
// The reconciler owns the status map exclusively; every other component
// only ever receives immutable snapshot copies. Status events arriving
// interleaved with structure refreshes are re-joined against the current
// structure's leaf set, and status for leaves that no longer exist after
// a refresh is discarded.
type DownloadReconciler struct {
	runner   driven.DownloadRunner
	store    driven.DownloadStore
	loader   driving.StructureLoader
	notifier driven.CourseNotifier
	network  driven.NetworkMonitor
	config   driven.ConfigStore
	lin      *Linearizer

	mu       sync.RWMutex
	snapshot domain.DownloadSnapshot
	nextSub  int
	subs     map[int]chan domain.DownloadSnapshot
}

// NewDownloadReconciler creates a reconciler.
// The network monitor is optional; without it the Wi-Fi-only gate never
// rejects.
func NewDownloadReconciler(
	runner driven.DownloadRunner,
	store driven.DownloadStore,
	loader driving.StructureLoader,
	notifier driven.CourseNotifier,
	network driven.NetworkMonitor,
	config driven.ConfigStore,
) *DownloadReconciler {
	return &DownloadReconciler{
		runner:   runner,
		store:    store,
		loader:   loader,
		notifier: notifier,
		network:  network,
		config:   config,
		lin:      NewLinearizer(),
		snapshot: make(domain.DownloadSnapshot),
		subs:     make(map[int]chan domain.DownloadSnapshot),
	}
}

// Start consumes the runner's status stream and the course notifier,
// maintaining the snapshot until ctx is cancelled.
func (r *DownloadReconciler) Start(ctx context.Context) error {
	r.prime(ctx)

	statusCh, cancelStatus := r.runner.Subscribe()
	defer cancelStatus()

	var eventCh <-chan domain.CourseEvent
	if r.notifier != nil {
		ch, cancelEvents := r.notifier.Subscribe()
		defer cancelEvents()
		eventCh = ch
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case status, ok := <-statusCh:
			if !ok {
				return nil
			}
			r.applyStatus(status)

		case event, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			// A refreshed structure can drop leaves; purge their status
			// so stale ids never reach a screen.
			if _, isUpdate := event.(domain.StructureUpdated); isUpdate {
				r.rejoin()
			}
		}
	}
}

// prime seeds the snapshot from persisted records for the active course.
func (r *DownloadReconciler) prime(ctx context.Context) {
	structure, err := r.loader.Current()
	if err != nil {
		return
	}
	records, err := r.store.ListByCourse(ctx, structure.ID)
	if err != nil {
		logger.Warn("reconciler: priming from store failed: %v", err)
		return
	}

	r.mu.Lock()
	for _, record := range records {
		if structure.BlockByID(record.BlockID) == nil {
			continue
		}
		r.snapshot[record.BlockID] = record.State
	}
	r.mu.Unlock()
	r.broadcast()
}

// applyStatus folds one stream emission into the snapshot.
// Applying the same emission twice yields the same snapshot.
func (r *DownloadReconciler) applyStatus(status domain.DownloadStatus) {
	structure, err := r.loader.Current()
	if err == nil && structure.BlockByID(status.BlockID) == nil {
		logger.Debug("reconciler: dropping status for unknown block %s", status.BlockID)
		return
	}

	r.mu.Lock()
	if status.State == domain.DownloadStateNotDownloaded {
		delete(r.snapshot, status.BlockID)
	} else {
		r.snapshot[status.BlockID] = status.State
	}
	r.mu.Unlock()
	r.broadcast()
}

// rejoin drops snapshot entries whose blocks no longer exist in the
// current structure.
func (r *DownloadReconciler) rejoin() {
	structure, err := r.loader.Current()
	if err != nil {
		return
	}

	r.mu.Lock()
	for blockID := range r.snapshot {
		if structure.BlockByID(blockID) == nil {
			delete(r.snapshot, blockID)
		}
	}
	r.mu.Unlock()
	r.broadcast()
}

// RequestDownload enqueues the downloadable leaves under scopeBlockID
// that are not already downloaded or in flight.
func (r *DownloadReconciler) RequestDownload(ctx context.Context, scopeBlockID string) error {
	structure, err := r.loader.Current()
	if err != nil {
		return err
	}

	// Policy gate first: one rejection per request, never one per block.
	if r.wifiOnly() && r.network != nil && !r.network.IsWifi() {
		return domain.ErrWifiRequired
	}

	leaves := r.lin.DownloadableLeaves(structure, scopeBlockID)
	if len(leaves) == 0 {
		return fmt.Errorf("request download %q: %w: nothing downloadable", scopeBlockID, domain.ErrNotFound)
	}

	folder := r.config.GetString(driven.ConfigKeyDownloadDir)
	snap := r.Snapshot()
	var errs []error
	for _, leaf := range leaves {
		state := snap.StateOf(leaf.ID)
		if state == domain.DownloadStateDownloaded || state.InProgress() {
			continue
		}
		record := domain.DownloadRecord{
			BlockID:  leaf.ID,
			CourseID: structure.ID,
			Title:    leaf.DisplayName,
			URL:      leaf.DownloadURL,
			Path:     folder,
			Size:     leaf.DownloadSize,
			State:    domain.DownloadStateWaiting,
		}
		if err := r.runner.Enqueue(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("enqueue %s: %w", leaf.ID, err))
		}
	}
	return errors.Join(errs...)
}

// RequestRemoval deletes local copies and purges records for every leaf
// under scopeBlockID. Removing an absent download is a no-op.
func (r *DownloadReconciler) RequestRemoval(ctx context.Context, scopeBlockID string) error {
	structure, err := r.loader.Current()
	if err != nil {
		return err
	}

	var errs []error
	for _, leaf := range r.lin.DownloadableLeaves(structure, scopeBlockID) {
		if err := r.runner.Remove(ctx, leaf.ID); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", leaf.ID, err))
			continue
		}
		r.mu.Lock()
		delete(r.snapshot, leaf.ID)
		r.mu.Unlock()
	}
	r.broadcast()
	return errors.Join(errs...)
}

// Snapshot returns a copy of the current per-block download states.
func (r *DownloadReconciler) Snapshot() domain.DownloadSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.Clone()
}

// AggregateState derives a container's state from its downloadable
// leaves. Derived on every call: leaf membership changes when the
// structure refreshes, so a cached aggregate would lie.
func (r *DownloadReconciler) AggregateState(containerID string) domain.DownloadState {
	structure, err := r.loader.Current()
	if err != nil {
		return domain.DownloadStateNotDownloaded
	}

	leaves := r.lin.DownloadableLeaves(structure, containerID)
	if len(leaves) == 0 {
		return domain.DownloadStateNotDownloaded
	}

	snap := r.Snapshot()
	allDownloaded := true
	for _, leaf := range leaves {
		state := snap.StateOf(leaf.ID)
		if state.InProgress() {
			return domain.DownloadStateDownloading
		}
		if state != domain.DownloadStateDownloaded {
			allDownloaded = false
		}
	}
	if allDownloaded {
		return domain.DownloadStateDownloaded
	}
	return domain.DownloadStateNotDownloaded
}

// Subscribe returns a channel receiving a fresh snapshot after every
// change, plus a cancel function.
func (r *DownloadReconciler) Subscribe() (<-chan domain.DownloadSnapshot, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan domain.DownloadSnapshot, subscriberBuffer)
	r.subs[id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// broadcast fans the current snapshot out to subscribers without
// blocking on slow ones.
func (r *DownloadReconciler) broadcast() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, ch := range r.subs {
		select {
		case ch <- r.snapshot.Clone():
		default:
			logger.Warn("reconciler: subscriber %d is slow, dropping snapshot", id)
		}
	}
}

// wifiOnly reads the download policy from configuration. An unset key
// falls back to the default policy, which restricts to Wi-Fi.
func (r *DownloadReconciler) wifiOnly() bool {
	if r.config == nil {
		return false
	}
	if _, ok := r.config.Get(driven.ConfigKeyWifiOnly); !ok {
		return domain.DefaultVideoSettings().WifiDownloadOnly
	}
	return r.config.GetBool(driven.ConfigKeyWifiOnly)
}
