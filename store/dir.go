package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// tmpPrefix marks in-flight writes so a rebuilt index skips them.
const tmpPrefix = ".staging-"

// DirConfig holds configuration for the directory store.
type DirConfig struct {
	// MaxBlobBytes caps a single blob's size (0 = unlimited). Put fails
	// with ErrNoSpace once a blob grows past the cap.
	MaxBlobBytes int64
}

// Dir stages each blob as one file under a root directory. Writes go to a
// temporary file first and are renamed into place, so a crash mid-Put
// never leaves a half-written blob under a valid ID.
//
// Metadata beyond what the filesystem records (Name, MIME, Checksum) lives
// in memory. Blobs already present under the root when the store is opened
// are indexed with what stat can supply.
type Dir struct {
	root         string
	maxBlobBytes int64

	mu     sync.RWMutex
	index  map[string]*StageInfo
	closed bool
}

// NewDir opens a directory store rooted at root, creating the directory
// when missing.
func NewDir(root string, cfg ...DirConfig) (*Dir, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, err
	}

	var maxBlobBytes int64
	if len(cfg) > 0 {
		maxBlobBytes = cfg[0].MaxBlobBytes
	}

	d := &Dir{
		root:         absRoot,
		maxBlobBytes: maxBlobBytes,
		index:        make(map[string]*StageInfo),
	}
	if err := d.rebuildIndex(); err != nil {
		return nil, err
	}
	return d, nil
}

// rebuildIndex registers blobs left behind by a previous process.
func (d *Dir) rebuildIndex() error {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		id := entry.Name()
		d.index[id] = &StageInfo{
			ID:       id,
			Name:     id,
			Size:     info.Size(),
			StagedAt: info.ModTime(),
		}
	}
	return nil
}

// Root returns the store's directory.
func (d *Dir) Root() string { return d.root }

// Put implements Store.
func (d *Dir) Put(ctx context.Context, id string, r io.Reader, opts ...PutOption) (*StageInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}

	o := applyPutOptions(opts...)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrStoreClosed
	}
	if _, exists := d.index[id]; exists && !o.overwrite {
		return nil, fmt.Errorf("%w: %s", ErrStageExists, id)
	}

	tmp, err := os.CreateTemp(d.root, tmpPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", id, err)
	}
	tmpName := tmp.Name()
	discard := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	digest := xxhash.New()
	src := io.Reader(io.TeeReader(r, digest))
	if d.maxBlobBytes > 0 {
		src = io.LimitReader(src, d.maxBlobBytes+1)
	}

	n, err := io.Copy(tmp, src)
	if err != nil {
		discard()
		return nil, fmt.Errorf("stage %s: %w", id, err)
	}
	if d.maxBlobBytes > 0 && n > d.maxBlobBytes {
		discard()
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrNoSpace, id, d.maxBlobBytes)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("stage %s: %w", id, err)
	}

	if err := os.Rename(tmpName, filepath.Join(d.root, id)); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("stage %s: %w", id, err)
	}

	info := &StageInfo{
		ID:       id,
		Name:     o.name,
		Size:     n,
		MIME:     o.mime,
		StagedAt: time.Now(),
		Checksum: fmt.Sprintf("%016x", digest.Sum64()),
	}
	d.index[id] = info

	out := *info
	return &out, nil
}

// Open implements Store.
func (d *Dir) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, ErrStoreClosed
	}
	if _, exists := d.index[id]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotStaged, id)
	}

	f, err := os.Open(filepath.Join(d.root, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotStaged, id)
		}
		return nil, fmt.Errorf("open %s: %w", id, err)
	}
	return f, nil
}

// Stat implements Store.
func (d *Dir) Stat(ctx context.Context, id string) (*StageInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, ErrStoreClosed
	}
	info, exists := d.index[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotStaged, id)
	}

	out := *info
	return &out, nil
}

// Remove implements Store.
func (d *Dir) Remove(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrStoreClosed
	}
	if _, exists := d.index[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotStaged, id)
	}

	delete(d.index, id)
	if err := os.Remove(filepath.Join(d.root, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// IDs implements Store.
func (d *Dir) IDs(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, ErrStoreClosed
	}
	ids := make([]string, 0, len(d.index))
	for id := range d.index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Clear implements Store.
func (d *Dir) Clear(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrStoreClosed
	}

	var firstErr error
	for id := range d.index {
		if err := os.Remove(filepath.Join(d.root, id)); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", id, err)
			}
		}
	}
	d.index = make(map[string]*StageInfo)
	return firstErr
}

// Close implements Store. Staged files stay on disk; reopening the same
// root finds them again.
func (d *Dir) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrStoreClosed
	}
	d.closed = true
	d.index = nil
	return nil
}

// Verify interface compliance at compile time
var _ Store = (*Dir)(nil)
