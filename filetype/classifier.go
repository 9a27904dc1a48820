package filetype

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"sync"
)

// File is the narrow view of a file handle the classifier needs: a name, a
// declared MIME type (possibly empty), and content access.
type File interface {
	Name() string
	MIME() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Classifier answers type questions about file handles: extension, MIME
// resolution, category membership, and aspect ratio of decoded media.
// It is stateless and safe for concurrent use.
type Classifier struct {
	reg     *Registry
	probers *ProberRegistry
}

// NewClassifier builds a classifier over the given registry and probers.
// Nil arguments fall back to the shared defaults.
func NewClassifier(reg *Registry, probers *ProberRegistry) *Classifier {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if probers == nil {
		probers = DefaultProbers()
	}
	return &Classifier{reg: reg, probers: probers}
}

var (
	defaultClassifier     *Classifier
	defaultClassifierOnce sync.Once
)

// DefaultClassifier returns the shared classifier over the default registry
// and probers.
func DefaultClassifier() *Classifier {
	defaultClassifierOnce.Do(func() {
		defaultClassifier = NewClassifier(nil, nil)
	})
	return defaultClassifier
}

// Registry returns the type registry backing this classifier.
func (c *Classifier) Registry() *Registry {
	return c.reg
}

// ExtensionOf extracts the lowercase extension (with leading dot) from a
// file name, path, or URL. Query strings and fragments are stripped first.
// Names without a dot yield the empty string.
func ExtensionOf(name string) string {
	if idx := strings.IndexAny(name, "?#"); idx != -1 {
		name = name[:idx]
	}
	if idx := strings.LastIndexAny(name, "/\\"); idx != -1 {
		name = name[idx+1:]
	}
	dot := strings.LastIndexByte(name, '.')
	if dot == -1 {
		return ""
	}
	return strings.ToLower(name[dot:])
}

// MIMEOf resolves a handle's MIME type without touching content: the
// declared type wins when present, otherwise the registry's primary mapping
// for the extension. Unknown handles resolve to application/octet-stream.
func (c *Classifier) MIMEOf(f File) string {
	declared := strings.ToLower(strings.TrimSpace(f.MIME()))
	if declared != "" && declared != MIMEOctetStream {
		return declared
	}
	return c.reg.PrimaryMIME(ExtensionOf(f.Name()))
}

// ResolveMIME resolves a handle's MIME type, additionally sniffing content
// when name and declared type give nothing. The fallback chain is declared
// type, registry by extension, magic-byte sniff, platform mime database,
// application/octet-stream.
func (c *Classifier) ResolveMIME(ctx context.Context, f File) string {
	if mt := c.MIMEOf(f); mt != MIMEOctetStream {
		return mt
	}

	if rc, err := f.Open(ctx); err == nil {
		sniffed, serr := Sniff(rc)
		rc.Close()
		if serr == nil && sniffed != "" && sniffed != MIMEOctetStream {
			return sniffed
		}
	}

	if ext := ExtensionOf(f.Name()); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			if idx := strings.Index(mt, ";"); idx > 0 {
				mt = mt[:idx]
			}
			return strings.TrimSpace(mt)
		}
	}
	return MIMEOctetStream
}

// IsImage reports whether the handle resolves to an image MIME type.
func (c *Classifier) IsImage(f File) bool {
	return strings.HasPrefix(c.MIMEOf(f), "image/")
}

// IsVideo reports whether the handle resolves to a video MIME type.
func (c *Classifier) IsVideo(f File) bool {
	return strings.HasPrefix(c.MIMEOf(f), "video/")
}

// IsAudio reports whether the handle resolves to an audio MIME type.
func (c *Classifier) IsAudio(f File) bool {
	return strings.HasPrefix(c.MIMEOf(f), "audio/")
}

// IsMedia reports whether the handle is image, video, or audio.
func (c *Classifier) IsMedia(f File) bool {
	switch CategoryOf(c.MIMEOf(f)) {
	case CategoryImage, CategoryVideo, CategoryAudio:
		return true
	}
	return false
}

// Kind buckets the handle into a coarse category.
func (c *Classifier) Kind(f File) Category {
	return CategoryOf(c.MIMEOf(f))
}

// IsTextDocument reports whether v names a text document. v may be a file
// name, path, URL, or bare extension with or without its dot.
func (c *Classifier) IsTextDocument(v string) bool {
	ext := ExtensionOf(v)
	if ext == "" {
		ext = v
	}
	return c.reg.IsTextExtension(ext)
}

// AspectRatio decodes the handle's intrinsic dimensions and classifies them
// onto a common aspect ratio. Handles that are neither image nor video fail
// with ErrUnsupportedFormat; content whose dimensions cannot be obtained
// fails with ErrDecodeFailure.
func (c *Classifier) AspectRatio(ctx context.Context, f File) (Ratio, error) {
	mt := c.MIMEOf(f)
	if !strings.HasPrefix(mt, "image/") && !strings.HasPrefix(mt, "video/") {
		return Ratio{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, f.Name(), mt)
	}

	rc, err := f.Open(ctx)
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: open %s: %v", ErrDecodeFailure, f.Name(), err)
	}
	defer rc.Close()

	dims, err := c.probers.Probe(ctx, mt, rc)
	if err != nil {
		return Ratio{}, err
	}
	return dims.AspectRatio()
}
