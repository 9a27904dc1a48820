package filetype

import "errors"

// Sentinel errors returned by classification.
var (
	// ErrUnsupportedFormat is returned when an operation only defined for
	// image or video content is applied to anything else.
	ErrUnsupportedFormat = errors.New("unsupported media format")

	// ErrDecodeFailure is returned when intrinsic dimensions cannot be
	// obtained from the content, including when no prober covers its MIME
	// type or the decoded dimensions are zero.
	ErrDecodeFailure = errors.New("cannot decode media dimensions")

	// ErrInvalidRatio is returned for aspect-ratio strings that are not
	// "W:H" with positive integers on both sides.
	ErrInvalidRatio = errors.New("invalid aspect ratio format")

	// ErrUnknownToken is returned for accept-filter tokens that are neither
	// a category, a MIME type, nor an extension.
	ErrUnknownToken = errors.New("unknown file type token")
)
