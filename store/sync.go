package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gobeaver/intakekit"
)

// Sync keeps a store aligned with one session. Entries accepted through
// Sync.Add are staged under their tracking ID; entries removed from the
// session, by any path, are evicted from the store through the session's
// removal events.
type Sync struct {
	session *intakekit.Session
	store   Store
	logger  *slog.Logger
	unbind  func()
}

// SyncOption configures a Sync.
type SyncOption func(*Sync)

// WithSyncLogger sets the logger used for eviction warnings.
func WithSyncLogger(logger *slog.Logger) SyncOption {
	return func(s *Sync) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// SyncSession binds a store to a session. The returned Sync evicts staged
// blobs when the session drops entries; stage new content by calling
// Sync.Add instead of Session.Add. The caller keeps ownership of both the
// session and the store.
func SyncSession(sess *intakekit.Session, st Store, opts ...SyncOption) *Sync {
	s := &Sync{
		session: sess,
		store:   st,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.unbind = sess.Events().OnSessionRemoval(sess.Name(), func(evt intakekit.RemovalEvent) {
		err := st.Remove(context.Background(), evt.TrackingID)
		if err != nil && !errors.Is(err, ErrNotStaged) {
			s.logger.Warn("stage eviction failed",
				"session", evt.Session, "tracking_id", evt.TrackingID, "error", err)
		}
	})
	return s
}

// Session returns the bound session.
func (s *Sync) Session() *intakekit.Session { return s.session }

// Store returns the bound store.
func (s *Sync) Store() Store { return s.store }

// Add runs the session's intake and stages every accepted entry. An entry
// whose content cannot be staged is removed from the session again, so the
// session and the store never disagree; the first staging error is
// returned and the entry appears in neither. The returned result lists
// only entries that were both accepted and staged.
func (s *Sync) Add(ctx context.Context, handles ...intakekit.Handle) (*intakekit.Result, error) {
	res, err := s.session.Add(ctx, handles...)
	if err != nil {
		return res, err
	}

	kept := make([]*intakekit.Entry, 0, len(res.Accepted))
	var firstErr error
	for _, e := range res.Accepted {
		serr := s.stage(ctx, e)
		if serr == nil {
			kept = append(kept, e)
			continue
		}
		if _, rerr := s.session.Remove(e.TrackingID); rerr != nil && !errors.Is(rerr, intakekit.ErrEntryNotFound) {
			s.logger.Warn("rollback after staging failure failed",
				"session", s.session.Name(), "tracking_id", e.TrackingID, "error", rerr)
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("stage %s: %w", e.Name(), serr)
		} else {
			s.logger.Warn("staging failed",
				"session", s.session.Name(), "file", e.Name(), "error", serr)
		}
	}
	res.Accepted = kept
	return res, firstErr
}

// Resync stages entries the session already holds, typically after a
// store was attached to a session mid-flight. Entries already staged are
// left alone.
func (s *Sync) Resync(ctx context.Context) error {
	for _, e := range s.session.Entries() {
		_, err := s.store.Stat(ctx, e.TrackingID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotStaged) {
			return err
		}
		if serr := s.stage(ctx, e); serr != nil {
			return fmt.Errorf("stage %s: %w", e.Name(), serr)
		}
	}
	return nil
}

func (s *Sync) stage(ctx context.Context, e *intakekit.Entry) error {
	rc, err := e.Handle.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = s.store.Put(ctx, e.TrackingID, rc, WithName(e.Name()), WithMIME(e.MIME))
	return err
}

// Close detaches the Sync from the session's events. The store and the
// session stay usable.
func (s *Sync) Close() error {
	if s.unbind != nil {
		s.unbind()
		s.unbind = nil
	}
	return nil
}
