package intakekit

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFingerprint(t *testing.T) {
	ctx := context.Background()

	t.Run("deterministic", func(t *testing.T) {
		a, err := Fingerprint(ctx, NewMemHandle("a.txt", []byte("same content")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := Fingerprint(ctx, NewMemHandle("b.txt", []byte("same content")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != b {
			t.Errorf("same content fingerprints differ: %s vs %s", a, b)
		}
		if len(a) != 16 {
			t.Errorf("expected 16 hex chars, got %q", a)
		}
	})

	t.Run("content sensitive", func(t *testing.T) {
		a, _ := Fingerprint(ctx, NewMemHandle("a.txt", []byte("one")))
		b, _ := Fingerprint(ctx, NewMemHandle("a.txt", []byte("two")))
		if a == b {
			t.Error("different content produced the same fingerprint")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Fingerprint(ctx, NewMemHandle("a.txt", []byte("x"))); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
	})
}

func TestNewHasher(t *testing.T) {
	algorithms := []Algorithm{
		AlgorithmXXHash, AlgorithmCRC32, AlgorithmMD5,
		AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512,
	}
	for _, algo := range algorithms {
		t.Run(string(algo), func(t *testing.T) {
			h, err := NewHasher(algo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h == nil {
				t.Fatal("expected a hasher")
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if _, err := NewHasher("whirlpool"); !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Errorf("expected ErrUnsupportedAlgorithm, got: %v", err)
		}
	})
}

func TestCalculateDigest(t *testing.T) {
	// Well-known digests of "hello world".
	tests := []struct {
		algo Algorithm
		want string
	}{
		{AlgorithmMD5, "5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{AlgorithmSHA1, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"},
		{AlgorithmSHA256, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
	}
	for _, tt := range tests {
		t.Run(string(tt.algo), func(t *testing.T) {
			got, err := CalculateDigest(strings.NewReader("hello world"), tt.algo)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("digest = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("unsupported algorithm", func(t *testing.T) {
		if _, err := CalculateDigest(strings.NewReader("x"), "whirlpool"); !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Errorf("expected ErrUnsupportedAlgorithm, got: %v", err)
		}
	})
}

func TestCalculateDigests(t *testing.T) {
	t.Run("single pass over the reader", func(t *testing.T) {
		r := bytes.NewReader([]byte("hello world"))
		got, err := CalculateDigests(r, []Algorithm{AlgorithmMD5, AlgorithmSHA256, AlgorithmXXHash})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 digests, got %d", len(got))
		}
		if got[AlgorithmMD5] != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
			t.Errorf("md5 = %s", got[AlgorithmMD5])
		}
		if got[AlgorithmXXHash] == "" {
			t.Error("expected an xxhash digest")
		}
	})

	t.Run("no algorithms", func(t *testing.T) {
		if _, err := CalculateDigests(strings.NewReader("x"), nil); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("bad algorithm fails the whole call", func(t *testing.T) {
		_, err := CalculateDigests(strings.NewReader("x"), []Algorithm{AlgorithmMD5, "whirlpool"})
		if !errors.Is(err, ErrUnsupportedAlgorithm) {
			t.Errorf("expected ErrUnsupportedAlgorithm, got: %v", err)
		}
	})
}

func TestDigests(t *testing.T) {
	got, err := Digests(context.Background(), NewMemHandle("a.txt", []byte("hello world")),
		AlgorithmSHA1, AlgorithmSHA256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[AlgorithmSHA1] != "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed" {
		t.Errorf("sha1 = %s", got[AlgorithmSHA1])
	}
	if len(got) != 2 {
		t.Errorf("expected 2 digests, got %d", len(got))
	}
}

func TestVerifyDigest(t *testing.T) {
	ctx := context.Background()
	h := NewMemHandle("a.txt", []byte("hello world"))

	ok, err := VerifyDigest(ctx, h, "5eb63bbbe01eeed093cb22bb8f5acdc3", AlgorithmMD5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected digest to verify")
	}

	ok, err = VerifyDigest(ctx, h, "5eb63bbbe01eeed093cb22bb8f5acdc3", AlgorithmSHA1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected mismatch under a different algorithm")
	}

	if _, err := VerifyDigest(ctx, h, "whatever", "whirlpool"); err == nil {
		t.Error("expected an error")
	}
}
