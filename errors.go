package intakekit

import (
	"errors"
	"fmt"
)

// Common intake errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrDisposed        = errors.New("session disposed")
	ErrCompleted       = errors.New("session completed")
	ErrRequired        = errors.New("selection required")
	ErrNoRenderer      = errors.New("no preview renderer registered")
	ErrNoSurface       = errors.New("no preview surface attached")

	ErrUnsupportedAlgorithm = errors.New("unsupported digest algorithm")
)

// Reason categorizes an intake failure for programmatic handling.
type Reason string

const (
	ReasonInvalidConfig       Reason = "invalid_config"
	ReasonAlreadySelected     Reason = "already_selected"
	ReasonCountExceeded       Reason = "count_exceeded"
	ReasonUnsupportedType     Reason = "unsupported_type"
	ReasonSizeOutOfRange      Reason = "size_out_of_range"
	ReasonTotalSizeOutOfRange Reason = "total_size_out_of_range"
	ReasonRatioMismatch       Reason = "ratio_mismatch"
	ReasonDuplicate           Reason = "duplicate"
	ReasonPreviewFailure      Reason = "preview_failure"
	ReasonUnsupportedFormat   Reason = "unsupported_format"
	ReasonDecodeFailure       Reason = "decode_failure"
	ReasonInvalidRatio        Reason = "invalid_ratio"
)

// IntakeError records why a file or batch was refused. File is empty for
// batch-level failures such as an exceeded count or aggregate size.
type IntakeError struct {
	// Reason categorizes the failure.
	Reason Reason

	// File is the offending file's name, when the failure is per-file.
	File string

	// Message is the human-readable description.
	Message string

	// Err is the underlying cause, when one exists.
	Err error
}

// Error implements the error interface.
func (e *IntakeError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.Reason, e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Unwrap returns the underlying error
func (e *IntakeError) Unwrap() error {
	return e.Err
}

// NewIntakeError creates a new IntakeError.
func NewIntakeError(reason Reason, file, message string) *IntakeError {
	return &IntakeError{Reason: reason, File: file, Message: message}
}

// IsIntakeError checks whether an error is an IntakeError.
func IsIntakeError(err error) bool {
	var ie *IntakeError
	return errors.As(err, &ie)
}

// IsReason checks whether an error is an IntakeError with the given reason.
func IsReason(err error, reason Reason) bool {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.Reason == reason
	}
	return false
}

// ReasonOf returns an IntakeError's reason, or the empty Reason when err is
// not an IntakeError.
func ReasonOf(err error) Reason {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.Reason
	}
	return ""
}
