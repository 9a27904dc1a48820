package filetype

import (
	"mime"
	"strings"
	"sync"
)

// Common MIME types used across the intake pipeline.
const (
	MIMEOctetStream = "application/octet-stream"
	MIMEPlainText   = "text/plain"
	MIMEPDF         = "application/pdf"
	MIMEZip         = "application/zip"
	MIMEWordDoc     = "application/msword"
	MIMEWordDocX    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEJPEG        = "image/jpeg"
	MIMEPNG         = "image/png"
	MIMEGIF         = "image/gif"
	MIMEWebP        = "image/webp"
	MIMEMP3         = "audio/mpeg"
	MIMEMP4         = "video/mp4"
	MIMEWebM        = "video/webm"
	MIMEQuickTime   = "video/quicktime"
)

// Category is a coarse type bucket usable as a wildcard filter token.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryText     Category = "text"
	CategoryFont     Category = "font"
	CategoryArchive  Category = "archive"
	CategoryDocument Category = "document"
	CategoryOther    Category = "other"
)

// CategoryOf buckets a MIME type into a Category.
func CategoryOf(mimeType string) Category {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage
	case strings.HasPrefix(mimeType, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(mimeType, "text/"):
		return CategoryText
	case strings.HasPrefix(mimeType, "font/"):
		return CategoryFont
	case strings.Contains(mimeType, "zip") || strings.Contains(mimeType, "tar") ||
		strings.Contains(mimeType, "rar") || strings.Contains(mimeType, "7z") ||
		strings.Contains(mimeType, "gzip") || strings.Contains(mimeType, "bzip"):
		return CategoryArchive
	case strings.Contains(mimeType, "document") || mimeType == MIMEPDF ||
		strings.Contains(mimeType, "msword") || strings.Contains(mimeType, "excel") ||
		strings.Contains(mimeType, "powerpoint"):
		return CategoryDocument
	default:
		return CategoryOther
	}
}

// ParseCategory returns the Category named by s, or false when s is not a
// known category name.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(s)) {
	case CategoryImage, CategoryVideo, CategoryAudio, CategoryText,
		CategoryFont, CategoryArchive, CategoryDocument:
		return Category(strings.ToLower(s)), true
	}
	return "", false
}

// Extension to MIME type mappings. Extensions with more than one plausible
// MIME type list them all; membership tests treat the list as "any of".
var defaultExtensionMIMEs = map[string][]string{
	".jpg":  {MIMEJPEG},
	".jpeg": {MIMEJPEG},
	".png":  {MIMEPNG},
	".gif":  {MIMEGIF},
	".webp": {MIMEWebP},
	".svg":  {"image/svg+xml"},
	".tiff": {"image/tiff"},
	".tif":  {"image/tiff"},
	".bmp":  {"image/bmp"},
	".ico":  {"image/x-icon"},
	".heic": {"image/heic"},
	".heif": {"image/heif"},
	".avif": {"image/avif"},

	".pdf":  {MIMEPDF},
	".doc":  {MIMEWordDoc},
	".docx": {MIMEWordDocX},
	".xls":  {"application/vnd.ms-excel"},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	".ppt":  {"application/vnd.ms-powerpoint"},
	".pptx": {"application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	".rtf":  {"text/rtf", "application/rtf"},

	".mp3":  {MIMEMP3},
	".wav":  {"audio/wav", "audio/x-wav"},
	".ogg":  {"audio/ogg"},
	".mid":  {"audio/midi"},
	".midi": {"audio/midi", "audio/x-midi"},
	".aac":  {"audio/aac"},
	".flac": {"audio/flac"},
	".m4a":  {"audio/mp4"},
	".wma":  {"audio/x-ms-wma"},

	".mp4":  {MIMEMP4},
	".m4v":  {"video/x-m4v", MIMEMP4},
	".mpeg": {"video/mpeg"},
	".mpg":  {"video/mpeg"},
	".webm": {MIMEWebM},
	".mov":  {MIMEQuickTime},
	".avi":  {"video/x-msvideo"},
	".wmv":  {"video/x-ms-wmv"},
	".3gp":  {"video/3gpp"},
	".flv":  {"video/x-flv"},
	".mkv":  {"video/x-matroska"},

	".txt":      {MIMEPlainText},
	".text":     {MIMEPlainText},
	".log":      {MIMEPlainText},
	".csv":      {"text/csv"},
	".tsv":      {"text/tab-separated-values"},
	".html":     {"text/html"},
	".htm":      {"text/html"},
	".css":      {"text/css"},
	".js":       {"text/javascript"},
	".mjs":      {"text/javascript"},
	".json":     {"application/json"},
	".xml":      {"application/xml", "text/xml"},
	".md":       {"text/markdown"},
	".markdown": {"text/markdown"},
	".yaml":     {"application/yaml"},
	".yml":      {"application/yaml"},

	".zip": {MIMEZip, "application/x-zip-compressed"},
	".gz":  {"application/gzip"},
	".tgz": {"application/gzip"},
	".tar": {"application/x-tar"},
	".rar": {"application/x-rar-compressed", "application/vnd.rar"},
	".7z":  {"application/x-7z-compressed"},
	".bz2": {"application/x-bzip2"},
	".xz":  {"application/x-xz"},

	".woff":  {"font/woff"},
	".woff2": {"font/woff2"},
	".ttf":   {"font/ttf"},
	".otf":   {"font/otf"},
}

// Preferred extension when a MIME type maps back to several.
var defaultPreferredExtensions = map[string]string{
	MIMEJPEG:           ".jpg",
	MIMEPNG:            ".png",
	MIMEGIF:            ".gif",
	MIMEWebP:           ".webp",
	MIMEPlainText:      ".txt",
	"text/html":        ".html",
	"text/javascript":  ".js",
	"text/markdown":    ".md",
	"application/yaml": ".yaml",
	"application/gzip": ".gz",
	MIMEMP3:            ".mp3",
	"audio/midi":       ".midi",
	"audio/wav":        ".wav",
	MIMEMP4:            ".mp4",
	"video/mpeg":       ".mpeg",
	MIMEZip:            ".zip",
}

// Extensions whose contents are treated as text documents by the intake
// pipeline and the preview dispatcher.
var defaultTextExtensions = []string{
	".txt", ".text", ".log", ".md", ".markdown", ".csv", ".tsv",
	".html", ".htm", ".css", ".js", ".mjs", ".json", ".xml",
	".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf", ".rtf",
}

var defaultArchiveExtensions = []string{
	".zip", ".gz", ".tgz", ".tar", ".rar", ".7z", ".bz2", ".xz",
}

// Registry maps file extensions to MIME types and back, and classifies
// extensions into the coarse categories the intake filter understands.
// Lookups are case-insensitive and dot-agnostic. The zero value is not
// usable; construct with NewRegistry.
type Registry struct {
	mu           sync.RWMutex
	extMIMEs     map[string][]string
	preferredExt map[string]string
	knownMIMEs   map[string]struct{}
	textExts     map[string]struct{}
	archiveExts  map[string]struct{}
}

// NewRegistry returns a Registry seeded with the built-in tables.
func NewRegistry() *Registry {
	r := &Registry{
		extMIMEs:     make(map[string][]string, len(defaultExtensionMIMEs)),
		preferredExt: make(map[string]string, len(defaultPreferredExtensions)),
		knownMIMEs:   make(map[string]struct{}, len(defaultExtensionMIMEs)),
		textExts:     make(map[string]struct{}, len(defaultTextExtensions)),
		archiveExts:  make(map[string]struct{}, len(defaultArchiveExtensions)),
	}
	for ext, mimes := range defaultExtensionMIMEs {
		r.extMIMEs[ext] = append([]string(nil), mimes...)
		for _, m := range mimes {
			r.knownMIMEs[m] = struct{}{}
			if _, ok := r.preferredExt[m]; !ok {
				r.preferredExt[m] = ext
			}
		}
	}
	for m, ext := range defaultPreferredExtensions {
		r.preferredExt[m] = ext
	}
	for _, ext := range defaultTextExtensions {
		r.textExts[ext] = struct{}{}
	}
	for _, ext := range defaultArchiveExtensions {
		r.archiveExts[ext] = struct{}{}
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared process-wide registry.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// normalizeExt lowercases an extension and guarantees a leading dot, so
// ".JPG", "jpg" and ".jpg" address the same entry.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// MIMEForExtension returns every MIME type registered for the extension.
// Unknown extensions yield a single-element application/octet-stream slice
// so callers can always index the result.
func (r *Registry) MIMEForExtension(ext string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if mimes, ok := r.extMIMEs[normalizeExt(ext)]; ok {
		return append([]string(nil), mimes...)
	}
	return []string{MIMEOctetStream}
}

// PrimaryMIME returns the first registered MIME type for the extension, or
// application/octet-stream when the extension is unknown.
func (r *Registry) PrimaryMIME(ext string) string {
	return r.MIMEForExtension(ext)[0]
}

// ExtensionForMIME returns the preferred extension (with leading dot) for a
// MIME type, or the empty string when no mapping exists. MIME parameters
// ("; charset=utf-8") are ignored.
func (r *Registry) ExtensionForMIME(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	r.mu.RLock()
	ext, ok := r.preferredExt[mimeType]
	r.mu.RUnlock()
	if ok {
		return ext
	}

	// Unknown to our tables: ask the platform mime database before giving up.
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// IsKnownExtension reports whether the extension appears in the registry.
func (r *Registry) IsKnownExtension(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extMIMEs[normalizeExt(ext)]
	return ok
}

// IsKnownMIME reports whether the MIME type appears in the registry.
func (r *Registry) IsKnownMIME(mimeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.knownMIMEs[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}

// IsTextExtension reports whether the extension names a text document.
func (r *Registry) IsTextExtension(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.textExts[normalizeExt(ext)]
	return ok
}

// IsArchiveExtension reports whether the extension names an archive format.
func (r *Registry) IsArchiveExtension(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.archiveExts[normalizeExt(ext)]
	return ok
}

// RegisterExtension adds or replaces the MIME types for an extension. The
// first MIME type becomes the preferred reverse mapping unless one is
// already registered for it.
func (r *Registry) RegisterExtension(ext string, mimes ...string) {
	ext = normalizeExt(ext)
	if ext == "" || len(mimes) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := make([]string, 0, len(mimes))
	for _, m := range mimes {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		normalized = append(normalized, m)
		r.knownMIMEs[m] = struct{}{}
		if _, ok := r.preferredExt[m]; !ok {
			r.preferredExt[m] = ext
		}
	}
	if len(normalized) > 0 {
		r.extMIMEs[ext] = normalized
	}
}

// RegisterTextExtension marks an extension as a text document format.
func (r *Registry) RegisterTextExtension(ext string) {
	ext = normalizeExt(ext)
	if ext == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textExts[ext] = struct{}{}
}
