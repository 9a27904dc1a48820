package intakekit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gobeaver/intakekit/filetype"
)

// Handle is the pipeline's view of one candidate file: identity metadata
// plus content access. A Handle is immutable once obtained; the pipeline
// borrows it during validation and an accepted Entry retains it by
// reference. Open may be called any number of times and concurrently.
type Handle interface {
	// Name returns the file name, without directory components.
	Name() string

	// Size returns the content length in bytes.
	Size() int64

	// MIME returns the declared MIME type, or "" when the source did not
	// declare one.
	MIME() string

	// ModTime returns the last-modified time. Sources that cannot supply
	// one report the handle's creation time.
	ModTime() time.Time

	// Open returns a fresh reader over the content.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// HandleOption configures optional handle metadata.
type HandleOption func(*handleOptions)

type handleOptions struct {
	mime    string
	modTime time.Time
}

// WithMIME sets the declared MIME type.
func WithMIME(mime string) HandleOption {
	return func(o *handleOptions) {
		o.mime = mime
	}
}

// WithModTime sets the last-modified time.
func WithModTime(t time.Time) HandleOption {
	return func(o *handleOptions) {
		o.modTime = t
	}
}

// MemHandle is an in-memory Handle.
type MemHandle struct {
	name    string
	mime    string
	modTime time.Time
	data    []byte
}

// NewMemHandle builds a Handle over bytes already in memory. The data slice
// is retained, not copied; callers must not mutate it afterwards.
func NewMemHandle(name string, data []byte, opts ...HandleOption) *MemHandle {
	var o handleOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.modTime.IsZero() {
		o.modTime = time.Now()
	}
	return &MemHandle{
		name:    name,
		mime:    o.mime,
		modTime: o.modTime,
		data:    data,
	}
}

func (h *MemHandle) Name() string       { return h.name }
func (h *MemHandle) Size() int64        { return int64(len(h.data)) }
func (h *MemHandle) MIME() string       { return h.mime }
func (h *MemHandle) ModTime() time.Time { return h.modTime }

func (h *MemHandle) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return io.NopCloser(bytes.NewReader(h.data)), nil
}

// PathHandle is a Handle backed by a file on disk. Metadata is captured at
// construction time; content is read from disk on every Open.
type PathHandle struct {
	path    string
	name    string
	mime    string
	size    int64
	modTime time.Time
}

// NewPathHandle builds a Handle for the file at path. The declared MIME
// type defaults to empty; pass WithMIME to set one.
func NewPathHandle(path string, opts ...HandleOption) (*PathHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("stat %s: is a directory", path)
	}

	var o handleOptions
	for _, opt := range opts {
		opt(&o)
	}
	modTime := info.ModTime()
	if !o.modTime.IsZero() {
		modTime = o.modTime
	}

	return &PathHandle{
		path:    path,
		name:    filepath.Base(path),
		mime:    o.mime,
		size:    info.Size(),
		modTime: modTime,
	}, nil
}

// Path returns the file's location on disk.
func (h *PathHandle) Path() string { return h.path }

func (h *PathHandle) Name() string       { return h.name }
func (h *PathHandle) Size() int64        { return h.size }
func (h *PathHandle) MIME() string       { return h.mime }
func (h *PathHandle) ModTime() time.Time { return h.modTime }

func (h *PathHandle) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return os.Open(h.path)
}

// Interface implementation checks
var (
	_ Handle        = (*MemHandle)(nil)
	_ Handle        = (*PathHandle)(nil)
	_ filetype.File = (Handle)(nil)
)
