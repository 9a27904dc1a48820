package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// MemoryConfig holds configuration for the in-memory store.
type MemoryConfig struct {
	// MaxBytes caps the total staged size in bytes (0 = unlimited).
	MaxBytes int64
}

// Memory is an in-memory Store. Useful for tests and short-lived intakes
// where staged content never needs to outlive the process.
type Memory struct {
	mu       sync.RWMutex
	blobs    map[string]*memBlob
	maxBytes int64
	size     int64
	closed   bool
}

type memBlob struct {
	data []byte
	info StageInfo
}

// NewMemory creates an in-memory store.
func NewMemory(cfg ...MemoryConfig) *Memory {
	var maxBytes int64
	if len(cfg) > 0 {
		maxBytes = cfg[0].MaxBytes
	}
	return &Memory{
		blobs:    make(map[string]*memBlob),
		maxBytes: maxBytes,
	}
}

// Put implements Store.
func (m *Memory) Put(ctx context.Context, id string, r io.Reader, opts ...PutOption) (*StageInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", id, err)
	}

	o := applyPutOptions(opts...)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	if existing, exists := m.blobs[id]; exists {
		if !o.overwrite {
			return nil, fmt.Errorf("%w: %s", ErrStageExists, id)
		}
		m.size -= int64(len(existing.data))
	}

	newSize := m.size + int64(len(data))
	if m.maxBytes > 0 && newSize > m.maxBytes {
		return nil, fmt.Errorf("%w: %s would exceed %d bytes", ErrNoSpace, id, m.maxBytes)
	}

	info := StageInfo{
		ID:       id,
		Name:     o.name,
		Size:     int64(len(data)),
		MIME:     o.mime,
		StagedAt: time.Now(),
		Checksum: fmt.Sprintf("%016x", xxhash.Sum64(data)),
	}
	m.blobs[id] = &memBlob{data: data, info: info}
	m.size = newSize

	return &info, nil
}

// Open implements Store.
func (m *Memory) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	blob, exists := m.blobs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotStaged, id)
	}

	// Readers see a snapshot; an overwrite after Open does not affect them.
	return io.NopCloser(bytes.NewReader(blob.data)), nil
}

// Stat implements Store.
func (m *Memory) Stat(ctx context.Context, id string) (*StageInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	blob, exists := m.blobs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotStaged, id)
	}

	info := blob.info
	return &info, nil
}

// Remove implements Store.
func (m *Memory) Remove(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	blob, exists := m.blobs[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotStaged, id)
	}

	m.size -= int64(len(blob.data))
	delete(m.blobs, id)
	return nil
}

// IDs implements Store.
func (m *Memory) IDs(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	ids := make([]string, 0, len(m.blobs))
	for id := range m.blobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Clear implements Store.
func (m *Memory) Clear(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.blobs = make(map[string]*memBlob)
	m.size = 0
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.closed = true
	m.blobs = nil
	m.size = 0
	return nil
}

// Size returns the total staged bytes.
func (m *Memory) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Verify interface compliance at compile time
var _ Store = (*Memory)(nil)
