package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirLayout(t *testing.T) {
	ctx := context.Background()

	t.Run("stages one file per id", func(t *testing.T) {
		root := t.TempDir()
		d, err := NewDir(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		mustPut(t, d, "id-1", "hello")

		data, err := os.ReadFile(filepath.Join(root, "id-1"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("expected file content='hello', got %q", string(data))
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		root := t.TempDir()
		d, err := NewDir(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		mustPut(t, d, "id-1", "hello")
		mustPut(t, d, "id-2", "world")

		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), tmpPrefix) {
				t.Errorf("temp file left behind: %s", entry.Name())
			}
		}
		if len(entries) != 2 {
			t.Errorf("expected 2 files, got %d", len(entries))
		}
	})

	t.Run("failed put leaves no trace", func(t *testing.T) {
		root := t.TempDir()
		d, err := NewDir(root, DirConfig{MaxBlobBytes: 4})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = d.Put(ctx, "big", strings.NewReader("too large for the cap"))
		if !errors.Is(err, ErrNoSpace) {
			t.Fatalf("expected ErrNoSpace, got: %v", err)
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty root after failed put, got %d entries", len(entries))
		}
		if _, err := d.Open(ctx, "big"); !errors.Is(err, ErrNotStaged) {
			t.Errorf("expected ErrNotStaged, got: %v", err)
		}
	})

	t.Run("blob at the cap is accepted", func(t *testing.T) {
		d, err := NewDir(t.TempDir(), DirConfig{MaxBlobBytes: 5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info := mustPut(t, d, "exact", "12345")
		if info.Size != 5 {
			t.Errorf("expected size=5, got %d", info.Size)
		}
	})
}

func TestDirReopensExistingRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	d1, err := NewDir(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustPut(t, d1, "kept", "persisted bytes", WithName("kept.txt"))
	if err := d1.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d2, err := NewDir(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids, err := d2.IDs(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "kept" {
		t.Fatalf("expected ids=[kept], got %v", ids)
	}

	// Rich metadata does not survive the process boundary; stat falls back
	// to what the filesystem knows.
	info, err := d2.Stat(ctx, "kept")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Size != int64(len("persisted bytes")) {
		t.Errorf("expected size=%d, got %d", len("persisted bytes"), info.Size)
	}
	if got := readBlob(t, d2, "kept"); got != "persisted bytes" {
		t.Errorf("expected content round-trip, got %q", got)
	}
}
