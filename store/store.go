// Package store persists the content of accepted entries outside their
// originating handles. A Store is a flat namespace of blobs keyed by
// tracking ID: the intake pipeline hands out IDs, the store keeps the
// bytes until the entry is removed or the session is disposed.
//
// Two backends are provided. Memory keeps blobs in process memory with an
// optional byte budget; Dir keeps one file per blob under a root
// directory. NewEncrypted wraps either backend and seals blob content with
// AES-256-GCM. SyncSession ties a store to a session so staging and
// eviction follow the session's lifecycle automatically.
package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Sentinel errors returned by stores. Wrap with fmt.Errorf("%w: ...") to
// add detail; callers test with errors.Is.
var (
	ErrNotStaged   = errors.New("blob not staged")
	ErrStageExists = errors.New("blob already staged")
	ErrStoreClosed = errors.New("store closed")
	ErrNoSpace     = errors.New("store capacity exceeded")
	ErrInvalidKey  = errors.New("invalid key")
)

// StageInfo describes one staged blob.
type StageInfo struct {
	// ID is the blob's key, normally an entry's tracking ID.
	ID string

	// Name is the original file name, when the caller supplied one.
	Name string

	// Size is the staged length in bytes.
	Size int64

	// MIME is the blob's media type, when the caller supplied one.
	MIME string

	// StagedAt is when the blob was written.
	StagedAt time.Time

	// Checksum is the 64-bit xxhash of the staged bytes, hex-encoded.
	Checksum string
}

// Store is a staging area for blob content keyed by ID.
type Store interface {
	// Put stages the reader's content under id. Staging an existing id
	// fails with ErrStageExists unless WithOverwrite is given.
	Put(ctx context.Context, id string, r io.Reader, opts ...PutOption) (*StageInfo, error)

	// Open returns a reader over a staged blob. The caller closes it.
	Open(ctx context.Context, id string) (io.ReadCloser, error)

	// Stat describes a staged blob.
	Stat(ctx context.Context, id string) (*StageInfo, error)

	// Remove discards a staged blob.
	Remove(ctx context.Context, id string) error

	// IDs lists staged blob IDs in lexical order.
	IDs(ctx context.Context) ([]string, error)

	// Clear discards every staged blob.
	Clear(ctx context.Context) error

	// Close releases the store. Every later call fails with
	// ErrStoreClosed.
	Close() error
}

// PutOption attaches optional metadata to a Put.
type PutOption func(*putOptions)

type putOptions struct {
	name      string
	mime      string
	overwrite bool
}

// WithName records the blob's original file name.
func WithName(name string) PutOption {
	return func(o *putOptions) {
		o.name = name
	}
}

// WithMIME records the blob's media type.
func WithMIME(mime string) PutOption {
	return func(o *putOptions) {
		o.mime = mime
	}
}

// WithOverwrite allows Put to replace an already staged blob.
func WithOverwrite() PutOption {
	return func(o *putOptions) {
		o.overwrite = true
	}
}

func applyPutOptions(opts ...PutOption) putOptions {
	var o putOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// validID reports whether id is usable as a blob key. IDs are opaque
// tokens, never paths: separators and traversal elements are rejected so
// directory-backed stores cannot be walked out of their root.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, `/\`) {
		return false
	}
	return !strings.ContainsRune(id, 0)
}
