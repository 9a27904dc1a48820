package intakekit

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemHandle(t *testing.T) {
	modTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewMemHandle("notes.txt", []byte("hello"),
		WithMIME("text/plain"),
		WithModTime(modTime),
	)

	if h.Name() != "notes.txt" || h.Size() != 5 || h.MIME() != "text/plain" {
		t.Errorf("unexpected metadata: %s/%d/%s", h.Name(), h.Size(), h.MIME())
	}
	if !h.ModTime().Equal(modTime) {
		t.Errorf("ModTime = %v, want %v", h.ModTime(), modTime)
	}

	t.Run("open repeatedly", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rc, err := h.Open(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != "hello" {
				t.Errorf("read %q, want hello", data)
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		plain := NewMemHandle("a.bin", []byte{1, 2, 3})
		if plain.MIME() != "" {
			t.Errorf("expected no declared MIME, got %q", plain.MIME())
		}
		if plain.ModTime().IsZero() {
			t.Error("expected a creation-time ModTime")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := h.Open(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
	})
}

func TestPathHandle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h, err := NewPathHandle(path, WithMIME("text/csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.Name() != "report.csv" {
		t.Errorf("Name = %q", h.Name())
	}
	if h.Path() != path {
		t.Errorf("Path = %q", h.Path())
	}
	if h.Size() != 12 {
		t.Errorf("Size = %d", h.Size())
	}
	if h.MIME() != "text/csv" {
		t.Errorf("MIME = %q", h.MIME())
	}
	if h.ModTime().IsZero() {
		t.Error("expected the file's mod time")
	}

	t.Run("content read from disk on open", func(t *testing.T) {
		rc, err := h.Open(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "a,b,c\n1,2,3\n" {
			t.Errorf("read %q", data)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := NewPathHandle(filepath.Join(dir, "missing.txt")); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("directory", func(t *testing.T) {
		if _, err := NewPathHandle(dir); err == nil {
			t.Error("expected an error for a directory")
		}
	})

	t.Run("works end to end with a session", func(t *testing.T) {
		s := newSession(t, SessionConfig{Accept: []string{".csv"}})
		res, err := s.Add(context.Background(), h)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Accepted) != 1 || res.Accepted[0].MIME != "text/csv" {
			t.Errorf("unexpected result: %+v", res.Accepted)
		}
	})
}
