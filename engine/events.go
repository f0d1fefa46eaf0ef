package engine

import (
	"sync"
	"time"
)

// EventKind classifies a page event.
type EventKind string

const (
	// EventConsole is a console message emitted by the target page.
	EventConsole EventKind = "console"
	// EventPageError is an uncaught error thrown by the target page.
	EventPageError EventKind = "pageerror"
)

// PageEvent is a console message or page error observed during a session.
// Events are forwarded to the log stream; the retained buffer exists for
// post-run diagnostics only.
type PageEvent struct {
	Kind EventKind
	// Type is the console message type (log, warning, error, ...), empty for
	// page errors.
	Type string
	Text string
	Time time.Time
}

// EventLog is a bounded, thread-safe buffer of page events. When the capacity
// is exceeded the oldest events are dropped.
type EventLog struct {
	mu       sync.Mutex
	events   []PageEvent
	capacity int
}

// NewEventLog creates an event log retaining at most capacity events.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &EventLog{capacity: capacity}
}

// Add appends an event, dropping the oldest ones beyond capacity.
func (l *EventLog) Add(evt PageEvent) {
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, evt)
	if len(l.events) > l.capacity {
		l.events = l.events[len(l.events)-l.capacity:]
	}
}

// Tail returns the most recent n events in chronological order.
func (l *EventLog) Tail(n int) []PageEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.events) {
		n = len(l.events)
	}
	out := make([]PageEvent, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}

// Len returns the number of retained events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
