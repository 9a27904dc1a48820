package intakekit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gobeaver/intakekit/filetype"
)

// Entry is one accepted file held by a session.
type Entry struct {
	// TrackingID identifies the entry for removal and preview correlation.
	// IDs are unique across the session's lifetime and are never reused,
	// even after the entry is removed.
	TrackingID string

	// Handle is the accepted file.
	Handle Handle

	// MIME is the type the entry was validated as.
	MIME string

	// Fingerprint is the hex-encoded xxhash64 of the content. Set only
	// when the session compares content for duplicate identity.
	Fingerprint string

	// AcceptedAt is when the entry was merged into the session.
	AcceptedAt time.Time
}

// Name returns the entry's file name.
func (e *Entry) Name() string { return e.Handle.Name() }

// Size returns the entry's size in bytes.
func (e *Entry) Size() int64 { return e.Handle.Size() }

// State describes where a session is in its lifecycle.
type State string

const (
	StateEmpty     State = "empty"
	StatePartial   State = "partial"
	StateFull      State = "full"
	StateCompleted State = "completed"
	StateDisposed  State = "disposed"
)

// EntryView is the render-facing projection of one entry.
type EntryView struct {
	TrackingID string
	Name       string
	Size       int64
	MIME       string
}

// View is an immutable snapshot of a session for rendering. Surfaces draw
// from it and never mutate session state directly.
type View struct {
	Name         string
	State        State
	Count        int
	MaxFileCount int
	TotalSize    int64
	Required     bool

	// ShowControl reports whether the intake control should be visible:
	// true while the session can still accept entries, false once it is
	// full, completed, or disposed.
	ShowControl bool

	Entries []EntryView
}

// Session is a named, stateful container of accepted file entries. All
// methods are safe for concurrent use; mutations are serialized per
// session.
type Session struct {
	cfg        *resolvedConfig
	events     *Events
	classifier *filetype.Classifier
	dispatcher *PreviewDispatcher

	mu        sync.Mutex
	entries   []*Entry
	byID      map[string]*Entry
	completed bool
	disposed  bool
}

// SessionOption customizes session construction.
type SessionOption func(*Session)

// WithEvents shares an event hub with the session. Registries use this so
// all their sessions publish through one hub.
func WithEvents(events *Events) SessionOption {
	return func(s *Session) { s.events = events }
}

// WithClassifier overrides the classifier consulted during validation.
func WithClassifier(c *filetype.Classifier) SessionOption {
	return func(s *Session) { s.classifier = c }
}

// WithPreview attaches a preview dispatcher. Accepted entries are rendered
// through it unless the session config disables previews.
func WithPreview(d *PreviewDispatcher) SessionOption {
	return func(s *Session) { s.dispatcher = d }
}

// NewSession creates a session from the config. Configuration violations
// surface here, before any intake occurs.
func NewSession(cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	rc, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:  rc,
		byID: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = NewEvents()
	}
	if s.classifier == nil {
		s.classifier = filetype.DefaultClassifier()
	}

	if s.dispatcher != nil && !rc.Preview.Disabled &&
		rc.Preview.Position == PreviewInside && !s.dispatcher.Surface().SupportsInline() {
		return nil, NewIntakeError(ReasonInvalidConfig, "",
			`preview position "inside" requires a surface with inline support`)
	}

	return s, nil
}

// Name returns the session's name.
func (s *Session) Name() string { return s.cfg.Name }

// Config returns a copy of the normalized session configuration.
func (s *Session) Config() SessionConfig { return s.cfg.SessionConfig }

// Events returns the hub the session publishes removal events on.
func (s *Session) Events() *Events { return s.events }

// newTrackingID issues a process-unique entry identifier.
func newTrackingID() string { return uuid.NewString() }

// Get returns the entry with the given tracking ID.
func (s *Session) Get(trackingID string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[trackingID]
	return e, ok
}

// Entries returns the accepted entries in acceptance order.
func (s *Session) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the number of accepted entries.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TotalSize returns the aggregate size of all accepted entries in bytes.
func (s *Session) TotalSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSizeLocked()
}

func (s *Session) totalSizeLocked() int64 {
	var total int64
	for _, e := range s.entries {
		total += e.Size()
	}
	return total
}

// Full reports whether the session holds its maximum entry count.
func (s *Session) Full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) >= s.cfg.MaxFileCount
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.disposed:
		return StateDisposed
	case s.completed:
		return StateCompleted
	case len(s.entries) == 0:
		return StateEmpty
	case len(s.entries) >= s.cfg.MaxFileCount:
		return StateFull
	default:
		return StatePartial
	}
}

// View returns a render snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.stateLocked()
	v := View{
		Name:         s.cfg.Name,
		State:        state,
		Count:        len(s.entries),
		MaxFileCount: s.cfg.MaxFileCount,
		TotalSize:    s.totalSizeLocked(),
		Required:     s.cfg.Required,
		ShowControl:  state == StateEmpty || state == StatePartial,
		Entries:      make([]EntryView, len(s.entries)),
	}
	for i, e := range s.entries {
		v.Entries[i] = EntryView{
			TrackingID: e.TrackingID,
			Name:       e.Name(),
			Size:       e.Size(),
			MIME:       e.MIME,
		}
	}
	return v
}

// Remove deletes the entry with the given tracking ID and publishes a
// removal event. The freed slot re-enables intake on a full session.
func (s *Session) Remove(trackingID string) (*Entry, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, ErrDisposed
	}
	e, ok := s.byID[trackingID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, trackingID)
	}
	delete(s.byID, trackingID)
	for i, cur := range s.entries {
		if cur == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.events.Publish(RemovalEvent{
		Session:    s.cfg.Name,
		TrackingID: e.TrackingID,
		FileName:   e.Name(),
	})
	return e, nil
}

// Clear removes every entry, publishing a removal event per entry. The
// session stays usable.
func (s *Session) Clear() {
	s.mu.Lock()
	removed := s.entries
	s.entries = nil
	s.byID = make(map[string]*Entry)
	s.mu.Unlock()

	s.publishRemovals(removed)
}

// Complete finalizes the session. A required session with no entries
// fails with ErrRequired. Completed sessions reject further intake but
// keep their entries readable.
func (s *Session) Complete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	if s.completed {
		return nil
	}
	if s.cfg.Required && len(s.entries) == 0 {
		return ErrRequired
	}
	s.completed = true
	return nil
}

// Dispose tears the session down: entries are dropped with removal events
// so previews and staged content get evicted, and every later operation
// fails with ErrDisposed. Dispose is idempotent.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	removed := s.entries
	s.entries = nil
	s.byID = make(map[string]*Entry)
	s.mu.Unlock()

	s.publishRemovals(removed)
}

func (s *Session) publishRemovals(removed []*Entry) {
	for _, e := range removed {
		s.events.Publish(RemovalEvent{
			Session:    s.cfg.Name,
			TrackingID: e.TrackingID,
			FileName:   e.Name(),
		})
	}
}
