package intakekit

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobeaver/beaver-kit/config"

	"github.com/gobeaver/intakekit/filetype"
)

// Size constants for configuration
const (
	KB = int64(1024)
	MB = KB * 1024
	GB = MB * 1024
)

// Defaults applied during configuration normalization.
const (
	DefaultSessionName  = "files"
	DefaultMaxFileSize  = 100 * MB
	DefaultMaxTotalSize = 1 * GB
	DefaultMaxFileCount = 10
)

// PreviewPosition places rendered previews relative to the intake control.
type PreviewPosition string

const (
	PreviewTop    PreviewPosition = "top"
	PreviewBottom PreviewPosition = "bottom"
	PreviewInside PreviewPosition = "inside"
)

// PreviewConfig controls preview dispatch for a session.
type PreviewConfig struct {
	// Disabled turns preview rendering off. Previews are on by default.
	Disabled bool

	// Position places rendered previews. Defaults to PreviewBottom.
	// PreviewInside requires a surface that supports inline placement.
	Position PreviewPosition

	// Interactive marks render requests as user-interactive; renderers may
	// retain the handle for richer previews. Non-interactive renders must
	// not keep the handle after returning.
	Interactive bool
}

// SessionConfig configures one selection session. The zero value is usable:
// normalization fills in the documented defaults. A config is immutable
// once a session is created from it.
type SessionConfig struct {
	// Name keys the session in its registry. Defaults to "files".
	Name string

	// Multiple permits more than one accepted entry. When false the
	// effective MaxFileCount is forced to 1.
	Multiple bool

	// RejectDuplicates refuses candidates whose identity already exists in
	// the session. Duplicates are allowed by default.
	RejectDuplicates bool

	// CompareContent upgrades duplicate identity from the (name, size,
	// MIME) triple to a content fingerprint.
	CompareContent bool

	// Accept lists filter tokens: categories ("image", "video/*"), exact
	// MIME types ("application/pdf"), or extensions (".csv"). Empty admits
	// every type.
	Accept []string

	// ImageRatios and VideoRatios constrain media aspect ratios with
	// "W:H" strings. Empty lists impose no constraint.
	ImageRatios []string
	VideoRatios []string

	// MaxFileSize and MinFileSize bound each file's size in bytes.
	// MaxFileSize defaults to 100MB.
	MaxFileSize int64
	MinFileSize int64

	// MaxTotalSize and MinTotalSize bound the aggregate size of all
	// entries in bytes. MaxTotalSize defaults to 1GB.
	MaxTotalSize int64
	MinTotalSize int64

	// MaxFileCount bounds the number of entries. Defaults to 10.
	MaxFileCount int

	// Required marks the session as needing at least one entry before
	// Complete succeeds.
	Required bool

	// Preview controls preview dispatch.
	Preview PreviewConfig

	// OnSelect is invoked with the accepted entries after every batch that
	// accepted at least one file.
	OnSelect func(entries []*Entry)

	// Logger receives non-fatal drop warnings and debug traces.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// resolvedConfig is a SessionConfig after normalization: defaults applied,
// filter tokens and ratio strings parsed exactly once.
type resolvedConfig struct {
	SessionConfig

	filter      *filetype.Filter
	imageRatios []filetype.Ratio
	videoRatios []filetype.Ratio
	logger      *slog.Logger
}

// normalize validates the config and resolves its derived state. All
// violations surface as ReasonInvalidConfig errors before any intake.
func (c SessionConfig) normalize() (*resolvedConfig, error) {
	rc := &resolvedConfig{SessionConfig: c}

	rc.Name = strings.TrimSpace(rc.Name)
	if rc.Name == "" {
		rc.Name = DefaultSessionName
	}

	if rc.MaxFileSize < 0 || rc.MinFileSize < 0 || rc.MaxTotalSize < 0 || rc.MinTotalSize < 0 {
		return nil, NewIntakeError(ReasonInvalidConfig, "", "size bounds must not be negative")
	}
	if rc.MaxFileSize == 0 {
		rc.MaxFileSize = DefaultMaxFileSize
	}
	if rc.MaxTotalSize == 0 {
		rc.MaxTotalSize = DefaultMaxTotalSize
	}
	if rc.MinFileSize > rc.MaxFileSize {
		return nil, NewIntakeError(ReasonInvalidConfig, "",
			fmt.Sprintf("min file size %d exceeds max file size %d", rc.MinFileSize, rc.MaxFileSize))
	}
	if rc.MinTotalSize > rc.MaxTotalSize {
		return nil, NewIntakeError(ReasonInvalidConfig, "",
			fmt.Sprintf("min total size %d exceeds max total size %d", rc.MinTotalSize, rc.MaxTotalSize))
	}

	if rc.MaxFileCount < 0 {
		return nil, NewIntakeError(ReasonInvalidConfig, "", "max file count must not be negative")
	}
	if rc.MaxFileCount == 0 {
		rc.MaxFileCount = DefaultMaxFileCount
	}
	if !rc.Multiple {
		rc.MaxFileCount = 1
	}

	filter, err := filetype.ParseFilter(rc.Accept)
	if err != nil {
		return nil, &IntakeError{
			Reason:  ReasonInvalidConfig,
			Message: fmt.Sprintf("accept filter: %v", err),
			Err:     err,
		}
	}
	rc.filter = filter

	rc.imageRatios, err = filetype.ParseRatios(rc.ImageRatios)
	if err != nil {
		return nil, &IntakeError{
			Reason:  ReasonInvalidConfig,
			Message: fmt.Sprintf("image aspect ratios: %v", err),
			Err:     err,
		}
	}
	rc.videoRatios, err = filetype.ParseRatios(rc.VideoRatios)
	if err != nil {
		return nil, &IntakeError{
			Reason:  ReasonInvalidConfig,
			Message: fmt.Sprintf("video aspect ratios: %v", err),
			Err:     err,
		}
	}

	switch rc.Preview.Position {
	case "":
		rc.Preview.Position = PreviewBottom
	case PreviewTop, PreviewBottom, PreviewInside:
	default:
		return nil, NewIntakeError(ReasonInvalidConfig, "",
			fmt.Sprintf("unknown preview position %q", rc.Preview.Position))
	}

	rc.logger = rc.Logger
	if rc.logger == nil {
		rc.logger = slog.Default()
	}

	return rc, nil
}

// Config holds environment-driven intake defaults.
type Config struct {
	// Default session configuration
	SessionName       string `env:"INTAKE_SESSION_NAME,default:files"`
	Multiple          bool   `env:"INTAKE_MULTIPLE,default:true"`
	RejectDuplicates  bool   `env:"INTAKE_REJECT_DUPLICATES,default:false"`
	CompareContent    bool   `env:"INTAKE_COMPARE_CONTENT,default:false"`
	AcceptTypes       string `env:"INTAKE_ACCEPT_TYPES"`         // comma-separated
	ImageAspectRatios string `env:"INTAKE_IMAGE_ASPECT_RATIOS"`  // comma-separated
	VideoAspectRatios string `env:"INTAKE_VIDEO_ASPECT_RATIOS"`  // comma-separated
	MaxFileSize       int64  `env:"INTAKE_MAX_FILE_SIZE,default:104857600"`   // 100MB default
	MinFileSize       int64  `env:"INTAKE_MIN_FILE_SIZE,default:0"`
	MaxTotalSize      int64  `env:"INTAKE_MAX_TOTAL_SIZE,default:1073741824"` // 1GB default
	MinTotalSize      int64  `env:"INTAKE_MIN_TOTAL_SIZE,default:0"`
	MaxFileCount      int    `env:"INTAKE_MAX_FILE_COUNT,default:10"`
	Required          bool   `env:"INTAKE_REQUIRED,default:false"`
	PreviewDisabled   bool   `env:"INTAKE_PREVIEW_DISABLED,default:false"`
	PreviewPosition   string `env:"INTAKE_PREVIEW_POSITION,default:bottom"`

	// Staging store configuration
	StoreBackend  string `env:"INTAKE_STORE_BACKEND"` // memory, dir; empty disables staging
	StoreDir      string `env:"INTAKE_STORE_DIR,default:./staging"`
	StoreMaxBytes int64  `env:"INTAKE_STORE_MAX_BYTES,default:0"` // 0 means unlimited

	// Encryption settings for staged content
	EncryptionEnabled bool   `env:"INTAKE_ENCRYPTION_ENABLED,default:false"`
	EncryptionKey     string `env:"INTAKE_ENCRYPTION_KEY"` // base64-encoded 32 bytes

	// Drop-folder intake configuration
	DropFolder     string `env:"INTAKE_DROP_FOLDER"`
	DropPattern    string `env:"INTAKE_DROP_PATTERN,default:*"`
	DropRecursive  bool   `env:"INTAKE_DROP_RECURSIVE,default:false"`
	DropSettleMS   int    `env:"INTAKE_DROP_SETTLE_MS,default:500"`
	DropScanOnInit bool   `env:"INTAKE_DROP_SCAN_ON_INIT,default:true"`

	DropRemoveAccepted bool `env:"INTAKE_DROP_REMOVE_ACCEPTED,default:false"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigWithPrefix returns config loaded from environment with the given
// prefix applied to every variable, so several intakes can coexist in one
// process.
func GetConfigWithPrefix(prefix string) (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: prefix}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SessionConfig converts the environment config into a session config.
func (c *Config) SessionConfig() SessionConfig {
	return SessionConfig{
		Name:             c.SessionName,
		Multiple:         c.Multiple,
		RejectDuplicates: c.RejectDuplicates,
		CompareContent:   c.CompareContent,
		Accept:           splitList(c.AcceptTypes),
		ImageRatios:      splitList(c.ImageAspectRatios),
		VideoRatios:      splitList(c.VideoAspectRatios),
		MaxFileSize:      c.MaxFileSize,
		MinFileSize:      c.MinFileSize,
		MaxTotalSize:     c.MaxTotalSize,
		MinTotalSize:     c.MinTotalSize,
		MaxFileCount:     c.MaxFileCount,
		Required:         c.Required,
		Preview: PreviewConfig{
			Disabled: c.PreviewDisabled,
			Position: PreviewPosition(c.PreviewPosition),
		},
	}
}

// splitList splits a comma-separated config value into trimmed entries.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
