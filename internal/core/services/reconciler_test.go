package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// reconcilerFixture wires a reconciler against mocks with the test
// structure already loaded as current.
type reconcilerFixture struct {
	reconciler *DownloadReconciler
	runner     *mockRunner
	store      *mockDownloadStore
	cache      *StructureCache
	notifier   *CourseNotifier
	network    *mockNetwork
	config     *mockConfigStore
	api        *mockCourseAPI
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()

	structure := testStructure()
	api := &mockCourseAPI{structure: structure}
	notifier := NewCourseNotifier()
	cache := NewStructureCache(api, newMockStructureStore(), notifier)
	require.NoError(t, cache.Preload(context.Background(), structure.ID))

	runner := newMockRunner()
	store := newMockDownloadStore()
	network := &mockNetwork{online: true, wifi: true}
	config := newMockConfigStore()

	return &reconcilerFixture{
		reconciler: NewDownloadReconciler(runner, store, cache, notifier, network, config),
		runner:     runner,
		store:      store,
		cache:      cache,
		notifier:   notifier,
		network:    network,
		config:     config,
		api:        api,
	}
}

// start runs the reconciler loop for the duration of the test.
func (f *reconcilerFixture) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = f.reconciler.Start(ctx) }()
}

// waitSnapshot polls until check passes or the deadline hits.
func waitSnapshot(t *testing.T, r *DownloadReconciler, check func(domain.DownloadSnapshot) bool) domain.DownloadSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := r.Snapshot()
		if check(snap) {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("snapshot never reached expected state")
	return nil
}

// TestDownloadReconciler_AppliesStatusStream tests stream folding
func TestDownloadReconciler_AppliesStatusStream(t *testing.T) {
	f := newReconcilerFixture(t)
	f.start(t)

	// Give Start a moment to subscribe before emitting.
	time.Sleep(20 * time.Millisecond)
	f.runner.emit(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateDownloading})

	snap := waitSnapshot(t, f.reconciler, func(s domain.DownloadSnapshot) bool {
		return s.StateOf("video1") == domain.DownloadStateDownloading
	})
	assert.Equal(t, domain.DownloadStateNotDownloaded, snap.StateOf("video2"))
}

// TestDownloadReconciler_Idempotent tests that duplicate emissions yield
// the same derived aggregate
func TestDownloadReconciler_Idempotent(t *testing.T) {
	f := newReconcilerFixture(t)
	f.start(t)
	time.Sleep(20 * time.Millisecond)

	f.runner.emit(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateDownloaded})
	waitSnapshot(t, f.reconciler, func(s domain.DownloadSnapshot) bool {
		return s.StateOf("video1") == domain.DownloadStateDownloaded
	})
	first := f.reconciler.AggregateState("v1")

	f.runner.emit(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateDownloaded})
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, first, f.reconciler.AggregateState("v1"))
	assert.Equal(t, domain.DownloadStateDownloaded, f.reconciler.AggregateState("v1"))
}

// TestDownloadReconciler_DropsUnknownBlocks tests re-joining against the
// current structure
func TestDownloadReconciler_DropsUnknownBlocks(t *testing.T) {
	f := newReconcilerFixture(t)
	f.start(t)
	time.Sleep(20 * time.Millisecond)

	// Status for a block no structure knows about is discarded.
	f.runner.emit(domain.DownloadStatus{BlockID: "ghost", State: domain.DownloadStateDownloading})
	f.runner.emit(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateDownloading})

	snap := waitSnapshot(t, f.reconciler, func(s domain.DownloadSnapshot) bool {
		return s.StateOf("video1") == domain.DownloadStateDownloading
	})
	assert.NotContains(t, snap, "ghost")
}

// TestDownloadReconciler_RefreshPurgesRemovedBlocks tests snapshot purge
// after a structure refresh drops a downloading block
func TestDownloadReconciler_RefreshPurgesRemovedBlocks(t *testing.T) {
	f := newReconcilerFixture(t)
	f.start(t)
	time.Sleep(20 * time.Millisecond)

	f.runner.emit(domain.DownloadStatus{BlockID: "video2", State: domain.DownloadStateDownloading})
	waitSnapshot(t, f.reconciler, func(s domain.DownloadSnapshot) bool {
		return s.StateOf("video2") == domain.DownloadStateDownloading
	})

	// Refresh to a structure without video2.
	replacement := testStructure()
	delete(replacement.BlockData, "video2")
	f.api.mu.Lock()
	f.api.structure = replacement
	f.api.mu.Unlock()
	require.NoError(t, f.cache.Update(context.Background(), replacement.ID, false))

	snap := waitSnapshot(t, f.reconciler, func(s domain.DownloadSnapshot) bool {
		_, present := s["video2"]
		return !present
	})
	assert.NotContains(t, snap, "video2")
}

// TestDownloadReconciler_RequestDownload tests bulk enqueueing under a scope
func TestDownloadReconciler_RequestDownload(t *testing.T) {
	f := newReconcilerFixture(t)

	err := f.reconciler.RequestDownload(context.Background(), "ch1")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"video1", "video2"}, f.runner.enqueuedIDs())
}

// TestDownloadReconciler_RequestDownload_SkipsInFlightAndDone tests the
// not-already-downloaded filter
func TestDownloadReconciler_RequestDownload_SkipsInFlightAndDone(t *testing.T) {
	f := newReconcilerFixture(t)
	f.reconciler.applyStatus(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateDownloaded})

	require.NoError(t, f.reconciler.RequestDownload(context.Background(), "ch1"))

	assert.Equal(t, []string{"video2"}, f.runner.enqueuedIDs())
}

// TestDownloadReconciler_WifiOnlyGate tests the policy rejection: one
// error for the request, nothing enqueued
func TestDownloadReconciler_WifiOnlyGate(t *testing.T) {
	f := newReconcilerFixture(t)
	require.NoError(t, f.config.Set("video.wifi_download_only", true))
	f.network.wifi = false

	err := f.reconciler.RequestDownload(context.Background(), "v1")
	assert.ErrorIs(t, err, domain.ErrWifiRequired)
	assert.Empty(t, f.runner.enqueuedIDs())

	// All leaves remain not downloaded.
	snap := f.reconciler.Snapshot()
	assert.Equal(t, domain.DownloadStateNotDownloaded, snap.StateOf("video1"))
}

// TestDownloadReconciler_WifiOnlyGate_DefaultOn tests the out-of-the-box
// policy: with the key unset the gate is active
func TestDownloadReconciler_WifiOnlyGate_DefaultOn(t *testing.T) {
	f := newReconcilerFixture(t)
	f.network.wifi = false

	err := f.reconciler.RequestDownload(context.Background(), "v1")
	assert.ErrorIs(t, err, domain.ErrWifiRequired)
	assert.Empty(t, f.runner.enqueuedIDs())
}

// TestDownloadReconciler_WifiOnlyGate_DisabledByConfig tests switching
// the default policy off
func TestDownloadReconciler_WifiOnlyGate_DisabledByConfig(t *testing.T) {
	f := newReconcilerFixture(t)
	require.NoError(t, f.config.Set("video.wifi_download_only", false))
	f.network.wifi = false

	require.NoError(t, f.reconciler.RequestDownload(context.Background(), "v1"))
	assert.Equal(t, []string{"video1"}, f.runner.enqueuedIDs())
}

// TestDownloadReconciler_WifiOnlyGate_AllowsWifi tests the gate on Wi-Fi
func TestDownloadReconciler_WifiOnlyGate_AllowsWifi(t *testing.T) {
	f := newReconcilerFixture(t)
	require.NoError(t, f.config.Set("video.wifi_download_only", true))
	f.network.wifi = true

	require.NoError(t, f.reconciler.RequestDownload(context.Background(), "v1"))
	assert.Equal(t, []string{"video1"}, f.runner.enqueuedIDs())
}

// TestDownloadReconciler_RequestDownload_NothingDownloadable tests scope
// with no downloadable leaves
func TestDownloadReconciler_RequestDownload_NothingDownloadable(t *testing.T) {
	f := newReconcilerFixture(t)

	err := f.reconciler.RequestDownload(context.Background(), "html1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestDownloadReconciler_RequestRemoval tests idempotent bulk removal
func TestDownloadReconciler_RequestRemoval(t *testing.T) {
	f := newReconcilerFixture(t)
	f.reconciler.applyStatus(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateDownloaded})

	require.NoError(t, f.reconciler.RequestRemoval(context.Background(), "seq1"))
	assert.Equal(t, []string{"video1"}, f.runner.removed)
	assert.NotContains(t, f.reconciler.Snapshot(), "video1")

	// Removing again is a no-op, not an error.
	require.NoError(t, f.reconciler.RequestRemoval(context.Background(), "seq1"))
}

// TestDownloadReconciler_AggregateState tests container state derivation
func TestDownloadReconciler_AggregateState(t *testing.T) {
	f := newReconcilerFixture(t)

	// No downloads yet.
	assert.Equal(t, domain.DownloadStateNotDownloaded, f.reconciler.AggregateState("ch1"))

	// One of two in flight: in progress.
	f.reconciler.applyStatus(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateWaiting})
	assert.Equal(t, domain.DownloadStateDownloading, f.reconciler.AggregateState("ch1"))

	// All downloadable leaves done: downloaded.
	f.reconciler.applyStatus(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateDownloaded})
	f.reconciler.applyStatus(domain.DownloadStatus{BlockID: "video2", State: domain.DownloadStateDownloaded})
	assert.Equal(t, domain.DownloadStateDownloaded, f.reconciler.AggregateState("ch1"))

	// A container with no downloadable leaves is simply not downloaded.
	assert.Equal(t, domain.DownloadStateNotDownloaded, f.reconciler.AggregateState("v2"))
}

// TestDownloadReconciler_SnapshotSubscription tests snapshot fan-out
func TestDownloadReconciler_SnapshotSubscription(t *testing.T) {
	f := newReconcilerFixture(t)

	ch, cancel := f.reconciler.Subscribe()
	defer cancel()

	f.reconciler.applyStatus(domain.DownloadStatus{BlockID: "video1", State: domain.DownloadStateDownloading})

	select {
	case snap := <-ch:
		assert.Equal(t, domain.DownloadStateDownloading, snap.StateOf("video1"))
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}
}

// TestDownloadReconciler_PrimesFromStore tests seeding from persisted records
func TestDownloadReconciler_PrimesFromStore(t *testing.T) {
	f := newReconcilerFixture(t)
	require.NoError(t, f.store.Save(context.Background(), domain.DownloadRecord{
		BlockID:  "video1",
		CourseID: "course-v1:Demo+101+2026",
		State:    domain.DownloadStateDownloaded,
	}))
	// A record for a block the structure no longer has is skipped.
	require.NoError(t, f.store.Save(context.Background(), domain.DownloadRecord{
		BlockID:  "gone",
		CourseID: "course-v1:Demo+101+2026",
		State:    domain.DownloadStateDownloaded,
	}))

	f.reconciler.prime(context.Background())

	snap := f.reconciler.Snapshot()
	assert.Equal(t, domain.DownloadStateDownloaded, snap.StateOf("video1"))
	assert.NotContains(t, snap, "gone")
}
