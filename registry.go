package intakekit

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gobeaver/intakekit/filetype"
)

// SessionRegistry holds named sessions. A process may hold several
// independent registries, and all sessions opened through a registry
// publish on its shared event hub.
type SessionRegistry struct {
	events     *Events
	classifier *filetype.Classifier
	dispatcher *PreviewDispatcher

	mu       sync.RWMutex
	sessions map[string]*Session
}

// RegistryOption customizes registry construction.
type RegistryOption func(*SessionRegistry)

// WithRegistryClassifier sets the classifier inherited by opened sessions.
func WithRegistryClassifier(c *filetype.Classifier) RegistryOption {
	return func(r *SessionRegistry) { r.classifier = c }
}

// WithRegistryPreview sets the preview dispatcher inherited by opened
// sessions. The dispatcher is bound to the registry's event hub so preview
// nodes are evicted when entries leave any of its sessions.
func WithRegistryPreview(d *PreviewDispatcher) RegistryOption {
	return func(r *SessionRegistry) { r.dispatcher = d }
}

// NewSessionRegistry creates an empty registry with its own event hub.
func NewSessionRegistry(opts ...RegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		events:   NewEvents(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.classifier == nil {
		r.classifier = filetype.DefaultClassifier()
	}
	if r.dispatcher != nil {
		r.dispatcher.BindEvents(r.events)
	}
	return r
}

// Events returns the hub every session of this registry publishes on.
func (r *SessionRegistry) Events() *Events {
	return r.events
}

// Open creates a session from the config and registers it under its name.
// Opening a name that is already registered fails with ErrSessionExists.
func (r *SessionRegistry) Open(cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	s, err := r.build(cfg, opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.Name()]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, s.Name())
	}
	r.sessions[s.Name()] = s
	return s, nil
}

// GetOrOpen returns the session registered under the config's name,
// creating it on first use.
func (r *SessionRegistry) GetOrOpen(cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	s, err := r.build(cfg, opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[s.Name()]; ok {
		return existing, nil
	}
	r.sessions[s.Name()] = s
	return s, nil
}

func (r *SessionRegistry) build(cfg SessionConfig, opts []SessionOption) (*Session, error) {
	inherited := []SessionOption{
		WithEvents(r.events),
		WithClassifier(r.classifier),
	}
	if r.dispatcher != nil {
		inherited = append(inherited, WithPreview(r.dispatcher))
	}
	return NewSession(cfg, append(inherited, opts...)...)
}

// Get returns the session registered under the name.
func (r *SessionRegistry) Get(name string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	return s, nil
}

// Dispose tears down the named session and removes it from the registry.
func (r *SessionRegistry) Dispose(name string) error {
	r.mu.Lock()
	s, ok := r.sessions[name]
	if ok {
		delete(r.sessions, name)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	s.Dispose()
	return nil
}

// DisposeAll tears down every registered session.
func (r *SessionRegistry) DisposeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Dispose()
	}
}

// Names returns the registered session names in sorted order.
func (r *SessionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// --- Package-level default registry ---

var (
	defaultRegistry *SessionRegistry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, creating it on first use.
func Default() *SessionRegistry {
	defaultOnce.Do(func() {
		defaultRegistry = NewSessionRegistry()
	})
	return defaultRegistry
}

// Open opens a session in the default registry.
func Open(cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	return Default().Open(cfg, opts...)
}

// Get returns a session from the default registry.
func Get(name string) (*Session, error) {
	return Default().Get(name)
}

// OpenFromEnv opens a session configured from environment variables in the
// default registry.
func OpenFromEnv() (*Session, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return Open(cfg.SessionConfig())
}

// Reset discards the default registry after disposing its sessions.
// Intended for tests.
func Reset() {
	if defaultRegistry != nil {
		defaultRegistry.DisposeAll()
	}
	defaultRegistry = nil
	defaultOnce = sync.Once{}
}
