package services

import (
	"sync"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/logger"
)

// Ensure CourseNotifier implements the interface.
var _ driven.CourseNotifier = (*CourseNotifier)(nil)

// subscriberBuffer bounds each subscriber channel. A subscriber that
// falls this far behind starts losing events; consumers are idempotent
// and re-derive state from the structure, so a drop is survivable.
const subscriberBuffer = 16

// CourseNotifier is an in-process broadcast bus for course events.
// Fan-out is non-blocking: a full subscriber channel drops the event
// for that subscriber rather than stalling the publisher.
type CourseNotifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan domain.CourseEvent
}

// NewCourseNotifier creates an empty notifier.
func NewCourseNotifier() *CourseNotifier {
	return &CourseNotifier{
		subs: make(map[int]chan domain.CourseEvent),
	}
}

// Publish broadcasts an event to all current subscribers.
func (n *CourseNotifier) Publish(event domain.CourseEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for id, ch := range n.subs {
		select {
		case ch <- event:
		default:
			logger.Warn("notifier: subscriber %d is slow, dropping %T", id, event)
		}
	}
}

// Subscribe registers a new subscriber.
// The returned cancel function unregisters it and closes the channel.
// There is no replay: events published before Subscribe are not seen.
func (n *CourseNotifier) Subscribe() (<-chan domain.CourseEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan domain.CourseEvent, subscriberBuffer)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// SubscriberCount returns the number of active subscribers.
func (n *CourseNotifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
