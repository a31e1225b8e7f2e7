package domain

// CourseEvent is a typed cross-screen notification carried on the course
// notifier. Delivery is broadcast, at-least-once and unordered relative to
// other events; subscribers must be idempotent to duplicates.
type CourseEvent interface {
	// courseEvent marks the closed set of event types.
	courseEvent()
}

// StructureUpdated announces that a course structure was re-fetched and the
// cached instance replaced.
type StructureUpdated struct {
	// CourseID is the course whose structure changed.
	CourseID string

	// UserInitiated is true for pull-to-refresh style reloads, false for
	// background reloads (e.g. after completion changes).
	UserInitiated bool
}

// CompletionSet announces that one or more blocks were marked complete.
type CompletionSet struct{}

// SectionChanged announces that unit paging crossed into a new sequential.
type SectionChanged struct {
	// BlockID is the id of the sequential that became current.
	BlockID string
}

// SubtitleLanguageChanged announces a transcript language preference change.
type SubtitleLanguageChanged struct {
	// Language is the new language code.
	Language string
}

// VideoPositionChanged announces playback progress for cross-screen sync.
type VideoPositionChanged struct {
	// URL identifies the video being played.
	URL string

	// SecondsElapsed is the playback position.
	SecondsElapsed int64

	// Playing is true while playback is active.
	Playing bool
}

func (StructureUpdated) courseEvent()        {}
func (CompletionSet) courseEvent()           {}
func (SectionChanged) courseEvent()          {}
func (SubtitleLanguageChanged) courseEvent() {}
func (VideoPositionChanged) courseEvent()    {}
