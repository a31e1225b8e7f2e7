package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files), type conversion
// and change watching.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Watch invokes onChange whenever the configuration changes on disk
	// outside this process (another stride invocation, a text editor).
	// The returned stop function ends the watch.
	Watch(onChange func()) (func(), error)

	// Path returns the configuration file path.
	Path() string
}

// Config keys shared between the adapters and the CLI.
const (
	// ConfigKeyAPIBaseURL is the LMS API root.
	ConfigKeyAPIBaseURL = "api.base_url"

	// ConfigKeyClientID is the OAuth client id for the password grant.
	ConfigKeyClientID = "api.client_id"

	// ConfigKeyUsername is the logged-in username.
	ConfigKeyUsername = "auth.username"

	// ConfigKeyAccessToken is the current OAuth access token.
	ConfigKeyAccessToken = "auth.access_token"

	// ConfigKeyRefreshToken is the current OAuth refresh token.
	ConfigKeyRefreshToken = "auth.refresh_token"

	// ConfigKeyTokenExpiry is the access-token expiry (RFC 3339).
	ConfigKeyTokenExpiry = "auth.token_expiry"

	// ConfigKeyWifiOnly restricts downloads to Wi-Fi.
	ConfigKeyWifiOnly = "video.wifi_download_only"

	// ConfigKeyStreamingQuality is the playback rendition.
	ConfigKeyStreamingQuality = "video.streaming_quality"

	// ConfigKeyDownloadQuality is the offline-copy rendition.
	ConfigKeyDownloadQuality = "video.download_quality"

	// ConfigKeySubtitleLanguage is the transcript language code.
	ConfigKeySubtitleLanguage = "video.subtitle_language"

	// ConfigKeyDownloadDir is the folder downloads are written to.
	ConfigKeyDownloadDir = "downloads.directory"

	// ConfigKeyMetered declares the current connection metered, which
	// makes the Wi-Fi-only gate treat it like mobile data.
	ConfigKeyMetered = "network.metered"
)
