package filetype

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

// stubFile is a minimal in-memory File for classifier tests.
type stubFile struct {
	name string
	mime string
	data []byte
}

func (f stubFile) Name() string { return f.name }
func (f stubFile) MIME() string { return f.mime }

func (f stubFile) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "photo.JPG", want: ".jpg"},
		{name: "path", input: "dir/sub/file.TXT", want: ".txt"},
		{name: "windows path", input: `c:\docs\file.DocX`, want: ".docx"},
		{name: "url with query", input: "https://cdn.example.com/a/b/video.mp4?sig=abc", want: ".mp4"},
		{name: "url with fragment", input: "https://example.com/notes.md#top", want: ".md"},
		{name: "double extension", input: "archive.tar.gz", want: ".gz"},
		{name: "no extension", input: "README", want: ""},
		{name: "trailing dot", input: "odd.", want: "."},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtensionOf(tt.input); got != tt.want {
				t.Errorf("ExtensionOf(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMIMEOf(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		name string
		file stubFile
		want string
	}{
		{name: "declared wins", file: stubFile{name: "x.png", mime: "image/webp"}, want: "image/webp"},
		{name: "declared case folded", file: stubFile{name: "x.png", mime: "Image/PNG"}, want: "image/png"},
		{name: "extension fallback", file: stubFile{name: "clip.mp4"}, want: "video/mp4"},
		{name: "octet stream declared falls back", file: stubFile{name: "doc.pdf", mime: "application/octet-stream"}, want: "application/pdf"},
		{name: "unknown everything", file: stubFile{name: "mystery"}, want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.MIMEOf(tt.file); got != tt.want {
				t.Errorf("MIMEOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveMIMESniffs(t *testing.T) {
	c := NewClassifier(nil, nil)
	ctx := context.Background()

	png := stubFile{name: "upload", data: encodePNG(t, 10, 10)}
	if got := c.ResolveMIME(ctx, png); got != MIMEPNG {
		t.Errorf("ResolveMIME = %q, want %q", got, MIMEPNG)
	}

	prose := stubFile{name: "upload", data: []byte("plain old prose content")}
	if got := c.ResolveMIME(ctx, prose); got != "text/plain" {
		t.Errorf("ResolveMIME = %q, want text/plain", got)
	}

	empty := stubFile{name: "upload"}
	if got := c.ResolveMIME(ctx, empty); got != MIMEOctetStream {
		t.Errorf("ResolveMIME = %q, want %q", got, MIMEOctetStream)
	}
}

func TestKindPredicates(t *testing.T) {
	c := NewClassifier(nil, nil)

	img := stubFile{name: "a.png"}
	vid := stubFile{name: "b.mov"}
	aud := stubFile{name: "c.mp3"}
	doc := stubFile{name: "d.pdf"}

	if !c.IsImage(img) || c.IsImage(vid) {
		t.Error("IsImage misclassified")
	}
	if !c.IsVideo(vid) || c.IsVideo(aud) {
		t.Error("IsVideo misclassified")
	}
	if !c.IsAudio(aud) || c.IsAudio(doc) {
		t.Error("IsAudio misclassified")
	}
	if !c.IsMedia(img) || !c.IsMedia(vid) || !c.IsMedia(aud) || c.IsMedia(doc) {
		t.Error("IsMedia misclassified")
	}
	if got := c.Kind(doc); got != CategoryDocument {
		t.Errorf("Kind(pdf) = %q, want document", got)
	}
}

func TestIsTextDocument(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		input string
		want  bool
	}{
		{"notes.md", true},
		{"md", true},
		{".yaml", true},
		{"https://example.com/a/readme.txt?x=1", true},
		{"binary.png", false},
		{"archive.zip", false},
		{"README", false},
	}

	for _, tt := range tests {
		if got := c.IsTextDocument(tt.input); got != tt.want {
			t.Errorf("IsTextDocument(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestClassifierAspectRatio(t *testing.T) {
	c := NewClassifier(nil, nil)
	ctx := context.Background()

	t.Run("image", func(t *testing.T) {
		f := stubFile{name: "wide.png", data: encodePNG(t, 160, 90)}
		got, err := c.AspectRatio(ctx, f)
		if err != nil {
			t.Fatalf("AspectRatio error = %v", err)
		}
		if got.String() != "16:9" {
			t.Errorf("AspectRatio = %s, want 16:9", got)
		}
	})

	t.Run("video", func(t *testing.T) {
		f := stubFile{name: "clip.mp4", data: buildMP4(t, Dimensions{1280, 720})}
		got, err := c.AspectRatio(ctx, f)
		if err != nil {
			t.Fatalf("AspectRatio error = %v", err)
		}
		if got.String() != "16:9" {
			t.Errorf("AspectRatio = %s, want 16:9", got)
		}
	})

	t.Run("not media", func(t *testing.T) {
		f := stubFile{name: "notes.txt", data: []byte("text")}
		if _, err := c.AspectRatio(ctx, f); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("no prober", func(t *testing.T) {
		f := stubFile{name: "clip.webm", data: []byte{0x1A, 0x45, 0xDF, 0xA3}}
		if _, err := c.AspectRatio(ctx, f); !errors.Is(err, ErrDecodeFailure) {
			t.Errorf("error = %v, want ErrDecodeFailure", err)
		}
	})

	t.Run("corrupt image", func(t *testing.T) {
		f := stubFile{name: "bad.png", data: []byte("definitely not a png")}
		if _, err := c.AspectRatio(ctx, f); !errors.Is(err, ErrDecodeFailure) {
			t.Errorf("error = %v, want ErrDecodeFailure", err)
		}
	})
}
