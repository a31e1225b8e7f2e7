package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// TestStructureCache_CurrentBeforeLoad tests the not-loaded invariant
func TestStructureCache_CurrentBeforeLoad(t *testing.T) {
	cache := NewStructureCache(&mockCourseAPI{}, newMockStructureStore(), nil)

	_, err := cache.Current()
	assert.ErrorIs(t, err, domain.ErrNotLoaded)

	_, err = cache.CurrentForVideos()
	assert.ErrorIs(t, err, domain.ErrNotLoaded)
}

// TestStructureCache_Preload tests the network path
func TestStructureCache_Preload(t *testing.T) {
	structure := testStructure()
	api := &mockCourseAPI{structure: structure}
	store := newMockStructureStore()
	cache := NewStructureCache(api, store, nil)

	err := cache.Preload(context.Background(), structure.ID)
	require.NoError(t, err)

	current, err := cache.Current()
	require.NoError(t, err)
	assert.Same(t, structure, current)

	// A durable copy was persisted.
	saved, err := store.Load(context.Background(), structure.ID)
	require.NoError(t, err)
	assert.Same(t, structure, saved)
}

// TestStructureCache_Preload_FetchError tests that a failed fetch keeps
// the previous structure serving
func TestStructureCache_Preload_FetchError(t *testing.T) {
	structure := testStructure()
	api := &mockCourseAPI{structure: structure}
	cache := NewStructureCache(api, newMockStructureStore(), nil)

	require.NoError(t, cache.Preload(context.Background(), structure.ID))

	api.fetchErr = domain.ErrConnectivity
	err := cache.Preload(context.Background(), structure.ID)
	assert.ErrorIs(t, err, domain.ErrConnectivity)

	// Readers still see the previous structure.
	current, err := cache.Current()
	require.NoError(t, err)
	assert.Same(t, structure, current)
}

// TestStructureCache_Preload_SaveFailureIsNotFatal tests that a durable
// save failure does not block the session
func TestStructureCache_Preload_SaveFailureIsNotFatal(t *testing.T) {
	structure := testStructure()
	store := newMockStructureStore()
	store.saveErr = errors.New("disk full")
	cache := NewStructureCache(&mockCourseAPI{structure: structure}, store, nil)

	require.NoError(t, cache.Preload(context.Background(), structure.ID))

	current, err := cache.Current()
	require.NoError(t, err)
	assert.Same(t, structure, current)
}

// TestStructureCache_PreloadFromStore tests the offline path
func TestStructureCache_PreloadFromStore(t *testing.T) {
	structure := testStructure()
	store := newMockStructureStore()
	require.NoError(t, store.Save(context.Background(), structure))
	cache := NewStructureCache(&mockCourseAPI{}, store, nil)

	err := cache.PreloadFromStore(context.Background(), structure.ID)
	require.NoError(t, err)

	current, err := cache.Current()
	require.NoError(t, err)
	assert.Same(t, structure, current)
}

// TestStructureCache_PreloadFromStore_NoCachedData tests the distinct
// nothing-saved-yet error
func TestStructureCache_PreloadFromStore_NoCachedData(t *testing.T) {
	cache := NewStructureCache(&mockCourseAPI{}, newMockStructureStore(), nil)

	err := cache.PreloadFromStore(context.Background(), "course-v1:Nothing+Here+2026")
	assert.ErrorIs(t, err, domain.ErrNoCachedData)
	assert.NotErrorIs(t, err, domain.ErrConnectivity)
}

// TestStructureCache_SecondCourseReplacesFirst tests wholesale replacement
func TestStructureCache_SecondCourseReplacesFirst(t *testing.T) {
	first := testStructure()
	second := testStructure()
	second.ID = "course-v1:Other+202+2026"

	api := &mockCourseAPI{structure: first}
	cache := NewStructureCache(api, newMockStructureStore(), nil)
	require.NoError(t, cache.Preload(context.Background(), first.ID))

	api.mu.Lock()
	api.structure = second
	api.mu.Unlock()
	require.NoError(t, cache.Preload(context.Background(), second.ID))

	current, err := cache.Current()
	require.NoError(t, err)
	assert.Same(t, second, current)
}

// TestStructureCache_StaleLoadDiscarded tests that a load finishing after
// a newer one does not clobber it
func TestStructureCache_StaleLoadDiscarded(t *testing.T) {
	stale := testStructure()
	fresh := testStructure()
	cache := NewStructureCache(&mockCourseAPI{}, newMockStructureStore(), nil)

	staleSeq := cache.beginLoad()
	freshSeq := cache.beginLoad()

	assert.True(t, cache.commitLoad(freshSeq, fresh))
	assert.False(t, cache.commitLoad(staleSeq, stale))

	current, err := cache.Current()
	require.NoError(t, err)
	assert.Same(t, fresh, current)
}

// TestStructureCache_Update_PublishesStructureUpdated tests the refresh event
func TestStructureCache_Update_PublishesStructureUpdated(t *testing.T) {
	structure := testStructure()
	notifier := NewCourseNotifier()
	cache := NewStructureCache(&mockCourseAPI{structure: structure}, newMockStructureStore(), notifier)

	ch, cancel := notifier.Subscribe()
	defer cancel()

	require.NoError(t, cache.Update(context.Background(), structure.ID, true))

	select {
	case event := <-ch:
		updated, ok := event.(domain.StructureUpdated)
		require.True(t, ok)
		assert.Equal(t, structure.ID, updated.CourseID)
		assert.True(t, updated.UserInitiated)
	case <-time.After(time.Second):
		t.Fatal("StructureUpdated was not published")
	}
}

// TestStructureCache_Update_NoEventOnFailure tests that failed refreshes
// stay silent
func TestStructureCache_Update_NoEventOnFailure(t *testing.T) {
	notifier := NewCourseNotifier()
	api := &mockCourseAPI{fetchErr: domain.ErrConnectivity}
	cache := NewStructureCache(api, newMockStructureStore(), notifier)

	ch, cancel := notifier.Subscribe()
	defer cancel()

	err := cache.Update(context.Background(), "course-v1:Demo+101+2026", false)
	assert.ErrorIs(t, err, domain.ErrConnectivity)

	select {
	case event := <-ch:
		t.Fatalf("no event expected, got %T", event)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestStructureCache_CurrentForVideos tests the derived projection
func TestStructureCache_CurrentForVideos(t *testing.T) {
	structure := testStructure()
	cache := NewStructureCache(&mockCourseAPI{structure: structure}, newMockStructureStore(), nil)
	require.NoError(t, cache.Preload(context.Background(), structure.ID))

	videos, err := cache.CurrentForVideos()
	require.NoError(t, err)
	assert.NotNil(t, videos.BlockByID("video1"))
	assert.Nil(t, videos.BlockByID("problem1"))

	// The full structure is untouched.
	current, err := cache.Current()
	require.NoError(t, err)
	assert.NotNil(t, current.BlockByID("problem1"))
}

// TestStructureCache_EmptyCourseID tests input validation
func TestStructureCache_EmptyCourseID(t *testing.T) {
	cache := NewStructureCache(&mockCourseAPI{}, newMockStructureStore(), nil)

	assert.ErrorIs(t, cache.Preload(context.Background(), ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, cache.PreloadFromStore(context.Background(), ""), domain.ErrInvalidInput)
}
