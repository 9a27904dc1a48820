package intakekit

import "sync"

// RemovalEvent describes one entry leaving a session.
type RemovalEvent struct {
	// Session is the name of the session the entry left
	Session string

	// TrackingID is the stable identifier assigned at acceptance
	TrackingID string

	// FileName is the removed entry's file name
	FileName string
}

// RemovalTopic returns the session-scoped topic that removal events for
// the named session are published on.
func RemovalTopic(session string) string {
	return "selectedFileRemoved_" + session
}

// Events fans removal notifications out to subscribers. Topic subscribers
// receive only their session's removals; generic subscribers receive every
// removal. The zero value is ready to use.
type Events struct {
	mu      sync.RWMutex
	generic []func(RemovalEvent)
	topics  map[string][]func(RemovalEvent)
}

// NewEvents creates an event hub.
func NewEvents() *Events {
	return &Events{}
}

// OnRemoval registers a callback invoked for every removal event.
func (e *Events) OnRemoval(callback func(RemovalEvent)) (unregister func()) {
	e.mu.Lock()
	e.generic = append(e.generic, callback)
	index := len(e.generic) - 1
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if index < len(e.generic) {
			// Set to nil instead of removing to avoid index shifting
			e.generic[index] = nil
		}
	}
}

// OnTopic registers a callback on a single topic, usually one built with
// RemovalTopic.
func (e *Events) OnTopic(topic string, callback func(RemovalEvent)) (unregister func()) {
	e.mu.Lock()
	if e.topics == nil {
		e.topics = make(map[string][]func(RemovalEvent))
	}
	e.topics[topic] = append(e.topics[topic], callback)
	index := len(e.topics[topic]) - 1
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if subs := e.topics[topic]; index < len(subs) {
			subs[index] = nil
		}
	}
}

// OnSessionRemoval registers a callback for one session's removals.
func (e *Events) OnSessionRemoval(session string, callback func(RemovalEvent)) (unregister func()) {
	return e.OnTopic(RemovalTopic(session), callback)
}

// Publish delivers the event to its session topic and to every generic
// subscriber. Callbacks run synchronously on the calling goroutine.
func (e *Events) Publish(evt RemovalEvent) {
	e.mu.RLock()
	callbacks := make([]func(RemovalEvent), 0, len(e.generic))
	callbacks = append(callbacks, e.generic...)
	callbacks = append(callbacks, e.topics[RemovalTopic(evt.Session)]...)
	e.mu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(evt)
		}
	}
}
