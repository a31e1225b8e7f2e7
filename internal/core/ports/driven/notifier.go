package driven

import "github.com/opencourse-labs/stride-cli/internal/core/domain"

// CourseNotifier is the cross-screen event bus.
// Delivery is broadcast to all current subscribers, at-least-once and
// unordered relative to other events; there is no replay for late
// subscribers, and subscribers must be idempotent to duplicates.
type CourseNotifier interface {
	// Publish broadcasts an event to all current subscribers.
	// Publish never blocks on a slow subscriber.
	Publish(event domain.CourseEvent)

	// Subscribe registers a new subscriber. The returned cancel function
	// unregisters it and closes the channel.
	Subscribe() (<-chan domain.CourseEvent, func())
}

// NetworkMonitor reports device connectivity.
// Used by the refresh path (online vs. cached load) and by the
// Wi-Fi-only download gate.
type NetworkMonitor interface {
	// IsOnline returns true when any network route is available.
	IsOnline() bool

	// IsWifi returns true when the active connection is Wi-Fi
	// (for this client: an unmetered connection).
	IsWifi() bool
}
