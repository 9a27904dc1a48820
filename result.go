package intakekit

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Result contains detailed information about one intake batch.
type Result struct {
	// Session is the name of the session the batch was offered to
	Session string

	// Accepted lists the entries admitted to the session, in offer order
	Accepted []*Entry

	// Rejected lists the candidates dropped, with the violation that
	// dropped each one
	Rejected []Rejection

	// Duration is how long validation and admission took
	Duration time.Duration
}

// Rejection records a single dropped candidate.
type Rejection struct {
	// Name is the candidate's file name
	Name string

	// Size is the candidate's size in bytes
	Size int64

	// Reason identifies the violated constraint
	Reason Reason

	// Err carries the full violation detail
	Err *IntakeError
}

// OK reports whether every candidate in the batch was accepted.
func (r *Result) OK() bool {
	return len(r.Rejected) == 0
}

// Err returns the first rejection's error, nil if everything was accepted.
func (r *Result) Err() error {
	if len(r.Rejected) == 0 {
		return nil
	}
	return r.Rejected[0].Err
}

// AllErrors returns all rejection errors as a single combined error.
func (r *Result) AllErrors() error {
	if len(r.Rejected) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Rejected))
	for i, rej := range r.Rejected {
		msgs[i] = rej.Err.Error()
	}
	return fmt.Errorf("intake failed: %s", strings.Join(msgs, "; "))
}

// RejectedNames returns the names of all dropped candidates.
func (r *Result) RejectedNames() []string {
	if len(r.Rejected) == 0 {
		return nil
	}
	names := make([]string, len(r.Rejected))
	for i, rej := range r.Rejected {
		names[i] = rej.Name
	}
	return names
}

// Summary returns a human-readable summary of the batch.
func (r *Result) Summary() string {
	if r.OK() {
		return fmt.Sprintf("✓ %s: %d accepted in %v",
			r.Session,
			len(r.Accepted),
			r.Duration.Round(time.Microsecond),
		)
	}
	return fmt.Sprintf("✗ %s: %d accepted, %d rejected: %s",
		r.Session,
		len(r.Accepted),
		len(r.Rejected),
		r.Rejected[0].Err.Error(),
	)
}

// FormatSizeReadable converts a size in bytes to a human-readable string
func FormatSizeReadable(size int64) string {
	format := func(value float64, unit string) string {
		rounded := math.Round(value*10) / 10
		if rounded == float64(int64(rounded)) {
			return fmt.Sprintf("%.0f %s", rounded, unit)
		}
		return fmt.Sprintf("%.1f %s", rounded, unit)
	}
	switch {
	case size < KB:
		return fmt.Sprintf("%d B", size)
	case size < MB:
		return format(float64(size)/float64(KB), "KB")
	case size < GB:
		return format(float64(size)/float64(MB), "MB")
	default:
		return format(float64(size)/float64(GB), "GB")
	}
}
