package intakekit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gobeaver/intakekit/filetype"
)

// candidate carries one handle through the validation stages.
type candidate struct {
	handle      Handle
	mime        string
	ext         string
	fingerprint string
}

// typedHandle overrides a handle's declared MIME type with the resolved one
// so downstream classification sees what the pipeline validated.
type typedHandle struct {
	Handle
	mime string
}

func (t typedHandle) MIME() string { return t.mime }

// Add offers a candidate batch to the session. Candidates are validated in
// order against the session's constraints and current state; survivors get
// a fresh tracking ID, are merged into the session, and are rendered
// through the preview dispatcher when one is attached.
//
// A batch of exactly one file treats any per-file violation as fatal: the
// violation is returned as the error and nothing is merged. In larger
// batches offenders are dropped with a logged warning while the rest
// proceed, so the error is nil even when Result.Rejected is not empty.
// Batch-level violations (single-selection, count, aggregate size) always
// reject the whole batch and are returned as the error regardless of batch
// size. Existing entries are never evicted to make room.
func (s *Session) Add(ctx context.Context, handles ...Handle) (*Result, error) {
	start := time.Now()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	res := &Result{Session: s.cfg.Name}
	if len(handles) == 0 {
		res.Duration = time.Since(start)
		return res, nil
	}

	accepted, err := s.admit(ctx, res, handles)
	if err != nil {
		res.Duration = time.Since(start)
		return res, err
	}

	accepted, err = s.renderPreviews(ctx, res, accepted, len(handles) == 1)
	res.Accepted = accepted
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	if len(accepted) > 0 && s.cfg.OnSelect != nil {
		s.cfg.OnSelect(accepted)
	}
	return res, nil
}

// admit runs the validation stages under the session lock and merges the
// survivors. It returns the merged entries, or the violation that rejected
// the batch.
func (s *Session) admit(ctx context.Context, res *Result, handles []Handle) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, ErrDisposed
	}
	if s.completed {
		return nil, ErrCompleted
	}

	// Single-selection guard: a held entry blocks any further intake.
	if !s.cfg.Multiple && len(s.entries) > 0 {
		verr := NewIntakeError(ReasonAlreadySelected, "", "a file is already selected")
		rejectBatch(res, handles, verr)
		return nil, verr
	}

	// Count guard for the whole incoming batch.
	if total := len(s.entries) + len(handles); total > s.cfg.MaxFileCount {
		verr := NewIntakeError(ReasonCountExceeded, "",
			fmt.Sprintf("%d files would exceed the limit of %d", total, s.cfg.MaxFileCount))
		rejectBatch(res, handles, verr)
		return nil, verr
	}

	single := len(handles) == 1

	cands := make([]*candidate, len(handles))
	for i, h := range handles {
		cands[i] = &candidate{
			handle: h,
			mime:   s.classifier.ResolveMIME(ctx, h),
			ext:    filetype.ExtensionOf(h.Name()),
		}
	}

	var fatal *IntakeError
	drop := func(c *candidate, verr *IntakeError) {
		res.Rejected = append(res.Rejected, Rejection{
			Name:   c.handle.Name(),
			Size:   c.handle.Size(),
			Reason: verr.Reason,
			Err:    verr,
		})
		if single {
			fatal = verr
			return
		}
		s.cfg.logger.Warn("candidate dropped",
			"session", s.cfg.Name,
			"file", c.handle.Name(),
			"reason", string(verr.Reason),
			"detail", verr.Message,
		)
	}
	runStage := func(check func(*candidate) *IntakeError) bool {
		kept := make([]*candidate, 0, len(cands))
		for _, c := range cands {
			verr := check(c)
			if verr == nil {
				kept = append(kept, c)
				continue
			}
			drop(c, verr)
			if fatal != nil {
				return false
			}
		}
		cands = kept
		return true
	}

	// Type guard.
	if !runStage(s.checkType) {
		return nil, fatal
	}

	// Per-file size guard.
	if !runStage(s.checkFileSize) {
		return nil, fatal
	}

	// Aggregate size guard. Always fatal for the whole batch: silently
	// excluding part of it would violate the caller's total-size intent.
	if len(cands) > 0 {
		var batchTotal int64
		for _, c := range cands {
			batchTotal += c.handle.Size()
		}
		if batchTotal < s.cfg.MinTotalSize || batchTotal > s.cfg.MaxTotalSize {
			verr := NewIntakeError(ReasonTotalSizeOutOfRange, "",
				fmt.Sprintf("batch total %s is outside the allowed range %s to %s",
					FormatSizeReadable(batchTotal),
					FormatSizeReadable(s.cfg.MinTotalSize),
					FormatSizeReadable(s.cfg.MaxTotalSize)))
			for _, c := range cands {
				res.Rejected = append(res.Rejected, Rejection{
					Name:   c.handle.Name(),
					Size:   c.handle.Size(),
					Reason: verr.Reason,
					Err:    verr,
				})
			}
			return nil, verr
		}
	}

	// Image aspect-ratio guard.
	if len(s.cfg.imageRatios) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !runStage(func(c *candidate) *IntakeError {
			if !strings.HasPrefix(c.mime, "image/") {
				return nil
			}
			return s.checkRatio(ctx, c, s.cfg.imageRatios, s.cfg.ImageRatios)
		}) {
			return nil, fatal
		}
	}

	// Video aspect-ratio guard.
	if len(s.cfg.videoRatios) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !runStage(func(c *candidate) *IntakeError {
			if !strings.HasPrefix(c.mime, "video/") {
				return nil
			}
			return s.checkRatio(ctx, c, s.cfg.videoRatios, s.cfg.VideoRatios)
		}) {
			return nil, fatal
		}
	}

	// Duplicate guard. Runs sequentially so a duplicate inside the batch
	// itself is caught against earlier survivors.
	if s.cfg.RejectDuplicates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		kept := make([]*candidate, 0, len(cands))
		for _, c := range cands {
			verr := s.checkDuplicate(ctx, c, kept)
			if verr == nil {
				kept = append(kept, c)
				continue
			}
			drop(c, verr)
			if fatal != nil {
				return nil, fatal
			}
		}
		cands = kept
	}

	now := time.Now()
	accepted := make([]*Entry, 0, len(cands))
	for _, c := range cands {
		e := &Entry{
			TrackingID:  newTrackingID(),
			Handle:      c.handle,
			MIME:        c.mime,
			Fingerprint: c.fingerprint,
			AcceptedAt:  now,
		}
		s.entries = append(s.entries, e)
		s.byID[e.TrackingID] = e
		accepted = append(accepted, e)
	}
	return accepted, nil
}

func (s *Session) checkType(c *candidate) *IntakeError {
	if s.cfg.filter.Admits(c.mime, c.ext) {
		return nil
	}
	// A candidate whose type cannot be resolved can still pass on a known
	// text-document extension when the filter admits text.
	if c.mime == filetype.MIMEOctetStream &&
		s.classifier.Registry().IsTextExtension(c.ext) &&
		s.cfg.filter.AllowsText() {
		return nil
	}

	label := c.mime
	if label == filetype.MIMEOctetStream && c.ext != "" {
		label = c.ext
	}
	return NewIntakeError(ReasonUnsupportedType, c.handle.Name(),
		fmt.Sprintf("type %s is not accepted", label))
}

func (s *Session) checkFileSize(c *candidate) *IntakeError {
	size := c.handle.Size()
	if size > s.cfg.MaxFileSize {
		return NewIntakeError(ReasonSizeOutOfRange, c.handle.Name(),
			fmt.Sprintf("size %s exceeds maximum %s",
				FormatSizeReadable(size), FormatSizeReadable(s.cfg.MaxFileSize)))
	}
	if size < s.cfg.MinFileSize {
		return NewIntakeError(ReasonSizeOutOfRange, c.handle.Name(),
			fmt.Sprintf("size %s is below minimum %s",
				FormatSizeReadable(size), FormatSizeReadable(s.cfg.MinFileSize)))
	}
	return nil
}

func (s *Session) checkRatio(ctx context.Context, c *candidate, want []filetype.Ratio, wantStr []string) *IntakeError {
	ratio, err := s.classifier.AspectRatio(ctx, typedHandle{c.handle, c.mime})
	if err != nil {
		reason := ReasonDecodeFailure
		if errors.Is(err, filetype.ErrUnsupportedFormat) {
			reason = ReasonUnsupportedFormat
		}
		return &IntakeError{
			Reason:  reason,
			File:    c.handle.Name(),
			Message: err.Error(),
			Err:     err,
		}
	}
	if !ratio.Matches(want...) {
		return NewIntakeError(ReasonRatioMismatch, c.handle.Name(),
			fmt.Sprintf("aspect ratio %s does not match %s",
				ratio, strings.Join(wantStr, ", ")))
	}
	return nil
}

// checkDuplicate compares the candidate against the session's entries and
// against earlier survivors of the same batch. Identity is the (name, size,
// MIME) triple, or the content fingerprint when the session compares
// content.
func (s *Session) checkDuplicate(ctx context.Context, c *candidate, prior []*candidate) *IntakeError {
	if s.cfg.CompareContent {
		fp, err := Fingerprint(ctx, c.handle)
		if err != nil {
			return &IntakeError{
				Reason:  ReasonDecodeFailure,
				File:    c.handle.Name(),
				Message: err.Error(),
				Err:     err,
			}
		}
		c.fingerprint = fp

		for _, e := range s.entries {
			if e.Fingerprint == fp {
				return NewIntakeError(ReasonDuplicate, c.handle.Name(),
					"content matches an already selected file")
			}
		}
		for _, p := range prior {
			if p.fingerprint == fp {
				return NewIntakeError(ReasonDuplicate, c.handle.Name(),
					"content matches another file in this batch")
			}
		}
		return nil
	}

	name, size := c.handle.Name(), c.handle.Size()
	for _, e := range s.entries {
		if e.Name() == name && e.Size() == size && e.MIME == c.mime {
			return NewIntakeError(ReasonDuplicate, name, "file is already selected")
		}
	}
	for _, p := range prior {
		if p.handle.Name() == name && p.handle.Size() == size && p.mime == c.mime {
			return NewIntakeError(ReasonDuplicate, name, "file appears twice in this batch")
		}
	}
	return nil
}

// renderPreviews pushes freshly accepted entries through the dispatcher.
// A renderer failure rejects the entry after the fact: it is removed from
// the session again and reported under the batch's fatality policy.
func (s *Session) renderPreviews(ctx context.Context, res *Result, accepted []*Entry, single bool) ([]*Entry, error) {
	if s.dispatcher == nil || s.cfg.Preview.Disabled || len(accepted) == 0 {
		return accepted, nil
	}

	kept := accepted[:0]
	for _, e := range accepted {
		err := s.dispatcher.Render(ctx, RenderRequest{
			Session:     s.cfg.Name,
			TrackingID:  e.TrackingID,
			Handle:      e.Handle,
			MIME:        e.MIME,
			Interactive: s.cfg.Preview.Interactive,
			Position:    s.cfg.Preview.Position,
		})
		if err == nil {
			kept = append(kept, e)
			continue
		}

		if _, rerr := s.Remove(e.TrackingID); rerr != nil && !errors.Is(rerr, ErrEntryNotFound) {
			s.cfg.logger.Warn("evicting entry after preview failure",
				"session", s.cfg.Name, "file", e.Name(), "error", rerr)
		}
		verr := &IntakeError{
			Reason:  ReasonPreviewFailure,
			File:    e.Name(),
			Message: err.Error(),
			Err:     err,
		}
		res.Rejected = append(res.Rejected, Rejection{
			Name:   e.Name(),
			Size:   e.Size(),
			Reason: ReasonPreviewFailure,
			Err:    verr,
		})
		if single {
			return kept, verr
		}
		s.cfg.logger.Warn("preview failed, entry removed",
			"session", s.cfg.Name, "file", e.Name(), "error", err)
	}
	return kept, nil
}

func rejectBatch(res *Result, handles []Handle, verr *IntakeError) {
	for _, h := range handles {
		res.Rejected = append(res.Rejected, Rejection{
			Name:   h.Name(),
			Size:   h.Size(),
			Reason: verr.Reason,
			Err:    verr,
		})
	}
}
