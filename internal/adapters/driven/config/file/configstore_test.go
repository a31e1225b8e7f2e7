package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
)

// TestNewConfigStore tests creation in an empty directory
func TestNewConfigStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

// TestConfigStore_SetPersists tests that Set writes through to disk
func TestConfigStore_SetPersists(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(driven.ConfigKeyAPIBaseURL, "https://lms.example.com"))
	require.NoError(t, store.Set(driven.ConfigKeyWifiOnly, true))

	// A second store over the same directory sees the values.
	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://lms.example.com", reopened.GetString(driven.ConfigKeyAPIBaseURL))
	assert.True(t, reopened.GetBool(driven.ConfigKeyWifiOnly))
}

// TestConfigStore_LoadFlattensTables tests dot-notation access to TOML tables
func TestConfigStore_LoadFlattensTables(t *testing.T) {
	dir := t.TempDir()
	content := "[video]\nsubtitle_language = \"de\"\nwifi_download_only = false\n\n[downloads]\nworkers = 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "de", store.GetString(driven.ConfigKeySubtitleLanguage))
	assert.False(t, store.GetBool(driven.ConfigKeyWifiOnly))
	assert.Equal(t, 3, store.GetInt("downloads.workers"))
}

// TestConfigStore_TypedGetters tests zero-value fallbacks
func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("a.string", "hello"))
	require.NoError(t, store.Set("a.int", int64(7)))

	assert.Equal(t, "", store.GetString("a.int"))
	assert.Equal(t, 0, store.GetInt("a.string"))
	assert.False(t, store.GetBool("a.string"))
	assert.Equal(t, 7, store.GetInt("a.int"))
}

// TestConfigStore_Watch tests that external file edits trigger a reload
func TestConfigStore_Watch(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(driven.ConfigKeySubtitleLanguage, "en"))

	changed := make(chan struct{}, 1)
	stop, err := store.Watch(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	// Simulate another process rewriting the file.
	content := "[video]\nsubtitle_language = \"de\"\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("watch never fired")
	}

	assert.Equal(t, "de", store.GetString(driven.ConfigKeySubtitleLanguage))
}
