package store

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// Encrypted wraps a Store and seals blob content with AES-256-GCM. Each
// blob is sealed whole, nonce prepended: staged files are already bounded
// by the session's size limits, so chunked sealing buys nothing here.
//
// Metadata operations delegate to the inner store, so StageInfo describes
// the sealed blob, not the plaintext.
type Encrypted struct {
	inner Store
	gcm   cipher.AEAD
}

// NewEncrypted wraps inner with AES-256-GCM sealing. The key must be
// exactly 32 bytes.
func NewEncrypted(inner Store, key []byte) (*Encrypted, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: encryption key must be 32 bytes, got %d", ErrInvalidKey, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Encrypted{
		inner: inner,
		gcm:   gcm,
	}, nil
}

// Put seals the content before staging it on the inner store.
func (e *Encrypted) Put(ctx context.Context, id string, r io.Reader, opts ...PutOption) (*StageInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("seal %s: %w", id, err)
	}

	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("seal %s: %w", id, err)
	}

	sealed := e.gcm.Seal(nonce, nonce, plaintext, nil)
	return e.inner.Put(ctx, id, bytes.NewReader(sealed), opts...)
}

// Open unseals a staged blob.
func (e *Encrypted) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	rc, err := e.inner.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sealed, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unseal %s: %w", id, err)
	}
	if len(sealed) < e.gcm.NonceSize() {
		return nil, fmt.Errorf("unseal %s: blob shorter than nonce", id)
	}

	nonce, ciphertext := sealed[:e.gcm.NonceSize()], sealed[e.gcm.NonceSize():]
	plaintext, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("unseal %s: %w", id, err)
	}

	return io.NopCloser(bytes.NewReader(plaintext)), nil
}

// Stat delegates to the inner store.
func (e *Encrypted) Stat(ctx context.Context, id string) (*StageInfo, error) {
	return e.inner.Stat(ctx, id)
}

// Remove delegates to the inner store.
func (e *Encrypted) Remove(ctx context.Context, id string) error {
	return e.inner.Remove(ctx, id)
}

// IDs delegates to the inner store.
func (e *Encrypted) IDs(ctx context.Context) ([]string, error) {
	return e.inner.IDs(ctx)
}

// Clear delegates to the inner store.
func (e *Encrypted) Clear(ctx context.Context) error {
	return e.inner.Clear(ctx)
}

// Close delegates to the inner store.
func (e *Encrypted) Close() error {
	return e.inner.Close()
}

// Verify interface compliance at compile time
var _ Store = (*Encrypted)(nil)
