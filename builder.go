package intakekit

import "log/slog"

// Builder provides a fluent API for constructing sessions
type Builder struct {
	cfg SessionConfig
}

// NewBuilder creates a session builder. Unset fields take the documented
// defaults when the session is built.
func NewBuilder() *Builder {
	return &Builder{}
}

// --- Identity ---

// Name sets the session name
func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

// --- Type constraints ---

// Accept adds accepted type tokens (e.g. "image", "video/*",
// "application/pdf", ".csv")
func (b *Builder) Accept(tokens ...string) *Builder {
	b.cfg.Accept = append(b.cfg.Accept, tokens...)
	return b
}

// AcceptImages allows all image types
func (b *Builder) AcceptImages() *Builder {
	return b.Accept("image")
}

// AcceptVideo allows all video types
func (b *Builder) AcceptVideo() *Builder {
	return b.Accept("video")
}

// AcceptAudio allows all audio types
func (b *Builder) AcceptAudio() *Builder {
	return b.Accept("audio")
}

// AcceptMedia allows all image, video, and audio types
func (b *Builder) AcceptMedia() *Builder {
	return b.Accept("media")
}

// --- Size constraints ---

// MaxSize sets the maximum allowed file size
func (b *Builder) MaxSize(size int64) *Builder {
	b.cfg.MaxFileSize = size
	return b
}

// MinSize sets the minimum required file size
func (b *Builder) MinSize(size int64) *Builder {
	b.cfg.MinFileSize = size
	return b
}

// SizeRange sets both minimum and maximum file size
func (b *Builder) SizeRange(minSize, maxSize int64) *Builder {
	b.cfg.MinFileSize = minSize
	b.cfg.MaxFileSize = maxSize
	return b
}

// MaxTotalSize sets the maximum aggregate size of all entries
func (b *Builder) MaxTotalSize(size int64) *Builder {
	b.cfg.MaxTotalSize = size
	return b
}

// MinTotalSize sets the minimum aggregate size of all entries
func (b *Builder) MinTotalSize(size int64) *Builder {
	b.cfg.MinTotalSize = size
	return b
}

// --- Count and duplicates ---

// Single restricts the session to one entry
func (b *Builder) Single() *Builder {
	b.cfg.Multiple = false
	return b
}

// Multiple permits up to max entries. Zero keeps the default count.
func (b *Builder) Multiple(max int) *Builder {
	b.cfg.Multiple = true
	b.cfg.MaxFileCount = max
	return b
}

// RejectDuplicates refuses candidates already present in the session
func (b *Builder) RejectDuplicates() *Builder {
	b.cfg.RejectDuplicates = true
	return b
}

// CompareContent upgrades duplicate identity to content fingerprints
func (b *Builder) CompareContent() *Builder {
	b.cfg.RejectDuplicates = true
	b.cfg.CompareContent = true
	return b
}

// --- Media constraints ---

// ImageRatios constrains accepted image aspect ratios (e.g. "16:9", "1:1")
func (b *Builder) ImageRatios(ratios ...string) *Builder {
	b.cfg.ImageRatios = append(b.cfg.ImageRatios, ratios...)
	return b
}

// VideoRatios constrains accepted video aspect ratios
func (b *Builder) VideoRatios(ratios ...string) *Builder {
	b.cfg.VideoRatios = append(b.cfg.VideoRatios, ratios...)
	return b
}

// --- Lifecycle ---

// Required marks the session as needing at least one entry to complete
func (b *Builder) Required() *Builder {
	b.cfg.Required = true
	return b
}

// --- Preview ---

// WithoutPreview disables preview dispatch
func (b *Builder) WithoutPreview() *Builder {
	b.cfg.Preview.Disabled = true
	return b
}

// PreviewAt places rendered previews at the given position
func (b *Builder) PreviewAt(pos PreviewPosition) *Builder {
	b.cfg.Preview.Position = pos
	return b
}

// Interactive marks preview renders as user-interactive
func (b *Builder) Interactive() *Builder {
	b.cfg.Preview.Interactive = true
	return b
}

// --- Hooks ---

// OnSelect registers a callback invoked with accepted entries
func (b *Builder) OnSelect(fn func(entries []*Entry)) *Builder {
	b.cfg.OnSelect = fn
	return b
}

// WithLogger sets the session logger
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.cfg.Logger = logger
	return b
}

// --- Build ---

// Build creates the session with the configured settings
func (b *Builder) Build() (*Session, error) {
	return NewSession(b.cfg)
}

// Config returns the current configuration (for inspection)
func (b *Builder) Config() SessionConfig {
	return b.cfg
}

// --- Presets ---

// ForImages creates a builder pre-configured for image intake
func ForImages() *Builder {
	return NewBuilder().
		AcceptImages().
		MaxSize(10 * MB)
}

// ForDocuments creates a builder pre-configured for document intake
func ForDocuments() *Builder {
	return NewBuilder().
		Accept("application/pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".txt", ".csv").
		MaxSize(50 * MB)
}

// ForMedia creates a builder pre-configured for audio/video intake
func ForMedia() *Builder {
	return NewBuilder().
		AcceptMedia().
		MaxSize(500 * MB).
		MaxTotalSize(2 * GB)
}

// ForAvatar creates a builder for a single square profile image
func ForAvatar() *Builder {
	return NewBuilder().
		Single().
		AcceptImages().
		ImageRatios("1:1").
		MaxSize(5 * MB)
}
