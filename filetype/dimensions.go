package filetype

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"sync"
)

// Dimensions are intrinsic pixel dimensions of decoded media content.
type Dimensions struct {
	Width  int
	Height int
}

// AspectRatio classifies the dimensions onto a common aspect ratio.
func (d Dimensions) AspectRatio() (Ratio, error) {
	return ClassifyDimensions(d.Width, d.Height)
}

// DimensionProber extracts intrinsic pixel dimensions from media content.
// Probers read only as much of the content as the format's header needs.
type DimensionProber interface {
	Probe(ctx context.Context, r io.Reader) (Dimensions, error)
}

// ProberRegistry maps MIME types to dimension probers.
type ProberRegistry struct {
	mu      sync.RWMutex
	probers map[string]DimensionProber
}

// NewProberRegistry returns an empty prober registry.
func NewProberRegistry() *ProberRegistry {
	return &ProberRegistry{probers: make(map[string]DimensionProber)}
}

// NewDefaultProberRegistry returns a registry covering the formats the
// standard image decoders and the ISO-BMFF walker understand.
func NewDefaultProberRegistry() *ProberRegistry {
	r := NewProberRegistry()
	img := imageProber{}
	for _, mt := range []string{MIMEJPEG, MIMEPNG, MIMEGIF} {
		r.Register(mt, img)
	}
	mp4 := mp4Prober{}
	for _, mt := range []string{MIMEMP4, MIMEQuickTime, "video/x-m4v", "video/3gpp"} {
		r.Register(mt, mp4)
	}
	return r
}

var (
	globalProbers     *ProberRegistry
	globalProbersOnce sync.Once
)

// DefaultProbers returns the shared prober registry.
func DefaultProbers() *ProberRegistry {
	globalProbersOnce.Do(func() {
		globalProbers = NewDefaultProberRegistry()
	})
	return globalProbers
}

// Register installs a prober for a MIME type, replacing any existing one.
func (pr *ProberRegistry) Register(mimeType string, p DimensionProber) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.probers[strings.ToLower(strings.TrimSpace(mimeType))] = p
}

// ProberFor looks up the prober registered for a MIME type.
func (pr *ProberRegistry) ProberFor(mimeType string) (DimensionProber, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	p, ok := pr.probers[strings.ToLower(strings.TrimSpace(mimeType))]
	return p, ok
}

// Probe extracts dimensions using the prober registered for mimeType.
// An unregistered MIME type is a decode failure: the caller asked for
// dimensions of content nothing can decode.
func (pr *ProberRegistry) Probe(ctx context.Context, mimeType string, r io.Reader) (Dimensions, error) {
	p, ok := pr.ProberFor(mimeType)
	if !ok {
		return Dimensions{}, fmt.Errorf("%w: no dimension prober for %s", ErrDecodeFailure, mimeType)
	}
	return p.Probe(ctx, r)
}

// imageProber reads dimensions via image.DecodeConfig, which only consumes
// the format header.
type imageProber struct{}

func (imageProber) Probe(ctx context.Context, r io.Reader) (Dimensions, error) {
	select {
	case <-ctx.Done():
		return Dimensions{}, ctx.Err()
	default:
	}

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// mp4Prober walks ISO-BMFF boxes (MP4, M4V, QuickTime, 3GP) to the first
// track header carrying non-zero dimensions.
type mp4Prober struct{}

// tkhd payloads are at most ~100 bytes across versions; anything larger is
// malformed input.
const maxTrackHeaderLen = 1024

func (mp4Prober) Probe(ctx context.Context, r io.Reader) (Dimensions, error) {
	for {
		select {
		case <-ctx.Done():
			return Dimensions{}, ctx.Err()
		default:
		}

		boxType, payload, err := readBoxHeader(r)
		if err == io.EOF {
			return Dimensions{}, fmt.Errorf("%w: no video track header found", ErrDecodeFailure)
		}
		if err != nil {
			return Dimensions{}, err
		}

		if boxType != "moov" {
			if err := discardBytes(r, payload); err != nil {
				return Dimensions{}, fmt.Errorf("%w: truncated box %q", ErrDecodeFailure, boxType)
			}
			continue
		}

		return dimensionsFromMovie(io.LimitReader(r, payload))
	}
}

// dimensionsFromMovie scans a moov payload for trak/tkhd boxes.
func dimensionsFromMovie(r io.Reader) (Dimensions, error) {
	for {
		boxType, payload, err := readBoxHeader(r)
		if err == io.EOF {
			return Dimensions{}, fmt.Errorf("%w: movie has no sized track", ErrDecodeFailure)
		}
		if err != nil {
			return Dimensions{}, err
		}

		if boxType != "trak" {
			if err := discardBytes(r, payload); err != nil {
				return Dimensions{}, fmt.Errorf("%w: truncated box %q", ErrDecodeFailure, boxType)
			}
			continue
		}

		track := io.LimitReader(r, payload)
		dims, err := dimensionsFromTrack(track)
		if err != nil {
			return Dimensions{}, err
		}
		if dims.Width > 0 && dims.Height > 0 {
			return dims, nil
		}
		// Audio and hint tracks carry 0x0; drain and keep looking.
		if _, err := io.Copy(io.Discard, track); err != nil {
			return Dimensions{}, fmt.Errorf("%w: truncated trak box", ErrDecodeFailure)
		}
	}
}

// dimensionsFromTrack reads a trak payload up to its tkhd box. Track width
// and height are the final two 16.16 fixed-point fields of the header.
func dimensionsFromTrack(r io.Reader) (Dimensions, error) {
	for {
		boxType, payload, err := readBoxHeader(r)
		if err == io.EOF {
			return Dimensions{}, nil
		}
		if err != nil {
			return Dimensions{}, err
		}

		if boxType != "tkhd" {
			if err := discardBytes(r, payload); err != nil {
				return Dimensions{}, fmt.Errorf("%w: truncated box %q", ErrDecodeFailure, boxType)
			}
			continue
		}

		if payload < 16 || payload > maxTrackHeaderLen {
			return Dimensions{}, fmt.Errorf("%w: implausible tkhd length %d", ErrDecodeFailure, payload)
		}
		buf := make([]byte, payload)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Dimensions{}, fmt.Errorf("%w: truncated tkhd box", ErrDecodeFailure)
		}

		width := binary.BigEndian.Uint32(buf[len(buf)-8:]) >> 16
		height := binary.BigEndian.Uint32(buf[len(buf)-4:]) >> 16
		return Dimensions{Width: int(width), Height: int(height)}, nil
	}
}

// readBoxHeader reads one box header and returns its type and payload
// length. io.EOF is returned only at a clean box boundary.
func readBoxHeader(r io.Reader) (string, int64, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if err == io.EOF {
			return "", 0, io.EOF
		}
		return "", 0, fmt.Errorf("%w: truncated box header", ErrDecodeFailure)
	}

	size := int64(binary.BigEndian.Uint32(head[:4]))
	boxType := string(head[4:8])

	switch {
	case size == 0:
		// Box extends to end of stream.
		return boxType, int64(1<<62 - 1), nil
	case size == 1:
		var large [8]byte
		if _, err := io.ReadFull(r, large[:]); err != nil {
			return "", 0, fmt.Errorf("%w: truncated large box header", ErrDecodeFailure)
		}
		largeSize := int64(binary.BigEndian.Uint64(large[:]))
		if largeSize < 16 {
			return "", 0, fmt.Errorf("%w: invalid box size %d", ErrDecodeFailure, largeSize)
		}
		return boxType, largeSize - 16, nil
	case size < 8:
		return "", 0, fmt.Errorf("%w: invalid box size %d", ErrDecodeFailure, size)
	default:
		return boxType, size - 8, nil
	}
}

// discardBytes skips n bytes, seeking when the reader allows it.
func discardBytes(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		_, err := s.Seek(n, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
