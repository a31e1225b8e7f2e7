package domain

const unknownDescription = "Unknown"

// VideoQuality selects the stream or download rendition.
type VideoQuality string

// Available video qualities.
const (
	// VideoQualityAuto lets the player pick based on bandwidth.
	VideoQualityAuto VideoQuality = "auto"

	// VideoQualityLow is 360p.
	VideoQualityLow VideoQuality = "low"

	// VideoQualityMedium is 540p.
	VideoQualityMedium VideoQuality = "medium"

	// VideoQualityHigh is 720p.
	VideoQualityHigh VideoQuality = "high"
)

// IsValid returns true if the quality is recognised.
func (q VideoQuality) IsValid() bool {
	switch q {
	case VideoQualityAuto, VideoQualityLow, VideoQualityMedium, VideoQualityHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (q VideoQuality) String() string {
	return string(q)
}

// Description returns a human-readable description of the quality.
func (q VideoQuality) Description() string {
	switch q {
	case VideoQualityAuto:
		return "Auto (recommended)"
	case VideoQualityLow:
		return "360p (lowest data use)"
	case VideoQualityMedium:
		return "540p"
	case VideoQualityHigh:
		return "720p (best quality)"
	default:
		return unknownDescription
	}
}

// VideoSettings holds the user's video and download preferences.
type VideoSettings struct {
	// WifiDownloadOnly restricts downloads to Wi-Fi connections.
	// When set and the device is not on Wi-Fi, download requests are
	// rejected with a user-facing message rather than silently queued.
	WifiDownloadOnly bool

	// StreamingQuality is the playback rendition.
	StreamingQuality VideoQuality

	// DownloadQuality is the offline-copy rendition.
	DownloadQuality VideoQuality

	// SubtitleLanguage is the preferred transcript language code.
	SubtitleLanguage string
}

// DefaultVideoSettings returns the out-of-the-box preferences.
func DefaultVideoSettings() VideoSettings {
	return VideoSettings{
		WifiDownloadOnly: true,
		StreamingQuality: VideoQualityAuto,
		DownloadQuality:  VideoQualityAuto,
		SubtitleLanguage: "en",
	}
}
