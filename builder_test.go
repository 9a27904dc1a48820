package intakekit

import (
	"context"
	"reflect"
	"testing"
)

func TestBuilderChaining(t *testing.T) {
	var selected []*Entry
	b := NewBuilder().
		Name("gallery").
		Accept("image", ".svg").
		SizeRange(1, 5*MB).
		MaxTotalSize(20*MB).
		MinTotalSize(1).
		Multiple(4).
		CompareContent().
		ImageRatios("1:1", "16:9").
		VideoRatios("16:9").
		Required().
		PreviewAt(PreviewTop).
		Interactive().
		OnSelect(func(entries []*Entry) { selected = entries })

	cfg := b.Config()
	if cfg.Name != "gallery" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if want := []string{"image", ".svg"}; !reflect.DeepEqual(cfg.Accept, want) {
		t.Errorf("Accept = %v, want %v", cfg.Accept, want)
	}
	if cfg.MinFileSize != 1 || cfg.MaxFileSize != 5*MB {
		t.Errorf("size range = [%d, %d]", cfg.MinFileSize, cfg.MaxFileSize)
	}
	if cfg.MinTotalSize != 1 || cfg.MaxTotalSize != 20*MB {
		t.Errorf("total range = [%d, %d]", cfg.MinTotalSize, cfg.MaxTotalSize)
	}
	if !cfg.Multiple || cfg.MaxFileCount != 4 {
		t.Errorf("count config = %v/%d", cfg.Multiple, cfg.MaxFileCount)
	}
	if !cfg.RejectDuplicates || !cfg.CompareContent {
		t.Error("expected CompareContent to imply RejectDuplicates")
	}
	if want := []string{"1:1", "16:9"}; !reflect.DeepEqual(cfg.ImageRatios, want) {
		t.Errorf("ImageRatios = %v", cfg.ImageRatios)
	}
	if !cfg.Required {
		t.Error("expected required")
	}
	if cfg.Preview.Position != PreviewTop || !cfg.Preview.Interactive || cfg.Preview.Disabled {
		t.Errorf("unexpected preview config: %+v", cfg.Preview)
	}

	s, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "gallery" {
		t.Errorf("session name = %q", s.Name())
	}

	// The OnSelect hook survives into the session.
	res, err := s.Add(context.Background(), pngHandle(t, "square.png", 100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Accepted) != 1 || len(selected) != 1 {
		t.Errorf("expected the hook to see the accepted entry")
	}
}

func TestBuilderSingle(t *testing.T) {
	s, err := NewBuilder().Name("avatar").Single().Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Config().Multiple || s.Config().MaxFileCount != 1 {
		t.Errorf("expected single-entry session, got %+v", s.Config())
	}
}

func TestBuilderMultipleZeroKeepsDefault(t *testing.T) {
	s, err := NewBuilder().Multiple(0).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Config().MaxFileCount != DefaultMaxFileCount {
		t.Errorf("expected default count, got %d", s.Config().MaxFileCount)
	}
}

func TestBuilderWithoutPreview(t *testing.T) {
	cfg := NewBuilder().WithoutPreview().Config()
	if !cfg.Preview.Disabled {
		t.Error("expected previews disabled")
	}
}

func TestBuilderInvalidConfigSurfacesAtBuild(t *testing.T) {
	if _, err := NewBuilder().Accept("not a type").Build(); !IsReason(err, ReasonInvalidConfig) {
		t.Errorf("expected ReasonInvalidConfig, got: %v", err)
	}
}

func TestBuilderPresets(t *testing.T) {
	t.Run("for images", func(t *testing.T) {
		cfg := ForImages().Config()
		if !reflect.DeepEqual(cfg.Accept, []string{"image"}) {
			t.Errorf("Accept = %v", cfg.Accept)
		}
		if cfg.MaxFileSize != 10*MB {
			t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
		}
	})

	t.Run("for documents", func(t *testing.T) {
		cfg := ForDocuments().Config()
		if cfg.MaxFileSize != 50*MB {
			t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
		}
		s, err := ForDocuments().Name("docs").Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		addOne(t, s, "report.pdf", "%PDF-1.4 fake")
	})

	t.Run("for media", func(t *testing.T) {
		cfg := ForMedia().Config()
		if cfg.MaxFileSize != 500*MB || cfg.MaxTotalSize != 2*GB {
			t.Errorf("unexpected sizes: %+v", cfg)
		}
		// "media" expands to the three media categories at parse time.
		s, err := ForMedia().Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res, err := s.Add(context.Background(), pngHandle(t, "photo.png", 10, 10))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Accepted) != 1 {
			t.Errorf("expected image admitted by media preset")
		}
	})

	t.Run("for avatar", func(t *testing.T) {
		cfg := ForAvatar().Config()
		if cfg.Multiple {
			t.Error("expected single selection")
		}
		if !reflect.DeepEqual(cfg.ImageRatios, []string{"1:1"}) {
			t.Errorf("ImageRatios = %v", cfg.ImageRatios)
		}
		if cfg.MaxFileSize != 5*MB {
			t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
		}

		s, err := ForAvatar().Build()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := s.Add(context.Background(), pngHandle(t, "wide.png", 160, 90)); !IsReason(err, ReasonRatioMismatch) {
			t.Errorf("expected ReasonRatioMismatch, got: %v", err)
		}
	})
}
