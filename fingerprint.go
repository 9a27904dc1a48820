package intakekit

import (
	"context"
	"crypto/md5"  //nolint:gosec // MD5 offered for digest verification, not security
	"crypto/sha1" //nolint:gosec // SHA1 offered for digest verification, not security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Algorithm identifies a digest algorithm.
type Algorithm string

const (
	AlgorithmXXHash Algorithm = "xxhash"
	AlgorithmCRC32  Algorithm = "crc32"
	AlgorithmMD5    Algorithm = "md5"
	AlgorithmSHA1   Algorithm = "sha1"
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmSHA512 Algorithm = "sha512"
)

// NewHasher creates a new hash.Hash for the given algorithm.
// Returns an error if the algorithm is not supported.
func NewHasher(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case AlgorithmXXHash:
		return xxhash.New(), nil
	case AlgorithmCRC32:
		return crc32.NewIEEE(), nil
	case AlgorithmMD5:
		return md5.New(), nil //nolint:gosec // digest verification, not security
	case AlgorithmSHA1:
		return sha1.New(), nil //nolint:gosec // digest verification, not security
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
}

// Fingerprint computes the content fingerprint a session uses for duplicate
// identity when content comparison is enabled: the xxhash64 of the handle's
// bytes, hex-encoded.
func Fingerprint(ctx context.Context, h Handle) (string, error) {
	rc, err := h.Open(ctx)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", h.Name(), err)
	}
	defer rc.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, rc); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", h.Name(), err)
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

// CalculateDigest reads from the reader and computes the digest using the
// specified algorithm. Returns the hex-encoded digest string.
func CalculateDigest(r io.Reader, algorithm Algorithm) (string, error) {
	h, err := NewHasher(algorithm)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to calculate digest: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// CalculateDigests reads from the reader and computes multiple digests in a
// single pass. Returns a map of algorithm to hex-encoded digest.
func CalculateDigests(r io.Reader, algorithms []Algorithm) (map[Algorithm]string, error) {
	if len(algorithms) == 0 {
		return nil, fmt.Errorf("no algorithms specified")
	}

	hashers := make(map[Algorithm]hash.Hash, len(algorithms))
	writers := make([]io.Writer, 0, len(algorithms))

	for _, algo := range algorithms {
		h, err := NewHasher(algo)
		if err != nil {
			return nil, err
		}
		hashers[algo] = h
		writers = append(writers, h)
	}

	if _, err := io.Copy(io.MultiWriter(writers...), r); err != nil {
		return nil, fmt.Errorf("failed to calculate digests: %w", err)
	}

	results := make(map[Algorithm]string, len(algorithms))
	for algo, h := range hashers {
		results[algo] = hex.EncodeToString(h.Sum(nil))
	}

	return results, nil
}

// Digests computes several digests of the handle's content in one pass.
func Digests(ctx context.Context, h Handle, algorithms ...Algorithm) (map[Algorithm]string, error) {
	rc, err := h.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("digests %s: %w", h.Name(), err)
	}
	defer rc.Close()

	return CalculateDigests(rc, algorithms)
}

// VerifyDigest reads the handle and checks its digest against an expected
// hex-encoded value. This is a convenience function for integrity
// verification of received files.
func VerifyDigest(ctx context.Context, h Handle, expected string, algorithm Algorithm) (bool, error) {
	digests, err := Digests(ctx, h, algorithm)
	if err != nil {
		return false, err
	}
	return digests[algorithm] == expected, nil
}
