package filetype

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SniffLen is the number of leading bytes content sniffing inspects. It
// covers every signature in the table plus http.DetectContentType's needs.
const SniffLen = 512

// Signature pairs a MIME type with the magic bytes that identify it.
type Signature struct {
	MIME    string
	Offset  int
	Pattern []byte
}

// sniffTable lists known signatures, most specific first. Container formats
// that share a header (RIFF, ZIP, EBML, ISO-BMFF) are refined afterwards.
var sniffTable = []Signature{
	// Images
	{MIME: MIMEJPEG, Offset: 0, Pattern: []byte{0xFF, 0xD8, 0xFF}},
	{MIME: MIMEPNG, Offset: 0, Pattern: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{MIME: MIMEGIF, Offset: 0, Pattern: []byte("GIF87a")},
	{MIME: MIMEGIF, Offset: 0, Pattern: []byte("GIF89a")},
	{MIME: MIMEWebP, Offset: 8, Pattern: []byte("WEBP")},
	{MIME: "image/bmp", Offset: 0, Pattern: []byte("BM")},
	{MIME: "image/tiff", Offset: 0, Pattern: []byte{0x49, 0x49, 0x2A, 0x00}},
	{MIME: "image/tiff", Offset: 0, Pattern: []byte{0x4D, 0x4D, 0x00, 0x2A}},
	{MIME: "image/x-icon", Offset: 0, Pattern: []byte{0x00, 0x00, 0x01, 0x00}},
	{MIME: "image/heic", Offset: 4, Pattern: []byte("ftypheic")},
	{MIME: "image/heic", Offset: 4, Pattern: []byte("ftypmif1")},
	{MIME: "image/avif", Offset: 4, Pattern: []byte("ftypavif")},

	// Documents
	{MIME: MIMEPDF, Offset: 0, Pattern: []byte("%PDF-")},

	// ZIP family; Office documents refine from here
	{MIME: MIMEZip, Offset: 0, Pattern: []byte{0x50, 0x4B, 0x03, 0x04}},
	{MIME: MIMEZip, Offset: 0, Pattern: []byte{0x50, 0x4B, 0x05, 0x06}},
	{MIME: MIMEZip, Offset: 0, Pattern: []byte{0x50, 0x4B, 0x07, 0x08}},

	// Other archives
	{MIME: "application/gzip", Offset: 0, Pattern: []byte{0x1F, 0x8B}},
	{MIME: "application/x-tar", Offset: 257, Pattern: []byte("ustar")},
	{MIME: "application/x-rar-compressed", Offset: 0, Pattern: []byte("Rar!\x1a\x07\x00")},
	{MIME: "application/x-rar-compressed", Offset: 0, Pattern: []byte("Rar!\x1a\x07\x01\x00")},
	{MIME: "application/x-7z-compressed", Offset: 0, Pattern: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},
	{MIME: "application/x-bzip2", Offset: 0, Pattern: []byte("BZh")},
	{MIME: "application/x-xz", Offset: 0, Pattern: []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},

	// Audio
	{MIME: MIMEMP3, Offset: 0, Pattern: []byte("ID3")},
	{MIME: MIMEMP3, Offset: 0, Pattern: []byte{0xFF, 0xFB}},
	{MIME: MIMEMP3, Offset: 0, Pattern: []byte{0xFF, 0xFA}},
	{MIME: MIMEMP3, Offset: 0, Pattern: []byte{0xFF, 0xF3}},
	{MIME: MIMEMP3, Offset: 0, Pattern: []byte{0xFF, 0xF2}},
	{MIME: "audio/flac", Offset: 0, Pattern: []byte("fLaC")},
	{MIME: "audio/ogg", Offset: 0, Pattern: []byte("OggS")},
	{MIME: "audio/wav", Offset: 0, Pattern: []byte("RIFF")}, // refined at offset 8
	{MIME: "audio/aac", Offset: 0, Pattern: []byte{0xFF, 0xF1}},
	{MIME: "audio/aac", Offset: 0, Pattern: []byte{0xFF, 0xF9}},
	{MIME: "audio/midi", Offset: 0, Pattern: []byte("MThd")},

	// Video
	{MIME: MIMEWebM, Offset: 0, Pattern: []byte{0x1A, 0x45, 0xDF, 0xA3}}, // EBML, shared with MKV
	{MIME: MIMEMP4, Offset: 4, Pattern: []byte("ftyp")},                  // refined by brand
	{MIME: MIMEQuickTime, Offset: 4, Pattern: []byte("moov")},
	{MIME: MIMEQuickTime, Offset: 4, Pattern: []byte("free")},
	{MIME: "video/x-msvideo", Offset: 0, Pattern: []byte("RIFF")}, // refined at offset 8
	{MIME: "video/x-flv", Offset: 0, Pattern: []byte("FLV")},

	// Structured text
	{MIME: "application/xml", Offset: 0, Pattern: []byte("<?xml")},
	{MIME: "text/html", Offset: 0, Pattern: []byte("<!DOCTYPE html")},
	{MIME: "text/html", Offset: 0, Pattern: []byte("<!doctype html")},
	{MIME: "text/html", Offset: 0, Pattern: []byte("<html")},

	// Executables; no intake filter admits these categories, but sniffing
	// them keeps renamed binaries out of image/video/text buckets.
	{MIME: "application/x-msdownload", Offset: 0, Pattern: []byte("MZ")},
	{MIME: "application/x-mach-binary", Offset: 0, Pattern: []byte{0xCF, 0xFA, 0xED, 0xFE}},
	{MIME: "application/x-mach-binary", Offset: 0, Pattern: []byte{0xCE, 0xFA, 0xED, 0xFE}},
	{MIME: "application/x-executable", Offset: 0, Pattern: []byte{0x7F, 'E', 'L', 'F'}},

	// Fonts
	{MIME: "font/woff", Offset: 0, Pattern: []byte("wOFF")},
	{MIME: "font/woff2", Offset: 0, Pattern: []byte("wOF2")},
	{MIME: "font/otf", Offset: 0, Pattern: []byte("OTTO")},
	{MIME: "font/ttf", Offset: 0, Pattern: []byte{0x00, 0x01, 0x00, 0x00}},
}

// Sniff detects the MIME type of the reader's content from its leading
// bytes. It reads at most SniffLen bytes.
func Sniff(r io.Reader) (string, error) {
	buf := make([]byte, SniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("sniff content type: %w", err)
	}
	return SniffBytes(buf[:n]), nil
}

// SniffBytes detects the MIME type of data from its leading bytes, falling
// back to http.DetectContentType when no signature matches. Empty input
// yields application/octet-stream.
func SniffBytes(data []byte) string {
	if len(data) == 0 {
		return MIMEOctetStream
	}

	for _, sig := range sniffTable {
		if sig.Offset+len(sig.Pattern) > len(data) {
			continue
		}
		if bytes.Equal(data[sig.Offset:sig.Offset+len(sig.Pattern)], sig.Pattern) {
			return refineContainer(data, sig.MIME)
		}
	}

	detected := http.DetectContentType(data)
	if idx := strings.Index(detected, ";"); idx > 0 {
		detected = detected[:idx]
	}
	return strings.TrimSpace(detected)
}

// refineContainer disambiguates formats that share a container header.
func refineContainer(data []byte, initial string) string {
	switch initial {
	case "audio/wav", "video/x-msvideo":
		// RIFF: the format tag sits at offset 8.
		if len(data) >= 12 {
			switch string(data[8:12]) {
			case "WAVE":
				return "audio/wav"
			case "AVI ":
				return "video/x-msvideo"
			case "WEBP":
				return MIMEWebP
			}
		}
		return initial

	case MIMEZip:
		// Office formats are ZIP archives whose member paths show up in the
		// first central-directory-free bytes. Heuristic, same as unzip -l
		// on a truncated header.
		head := string(data)
		switch {
		case strings.Contains(head, "word/"):
			return MIMEWordDocX
		case strings.Contains(head, "xl/"):
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case strings.Contains(head, "ppt/"):
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		case strings.Contains(head, "[Content_Types]"):
			return MIMEWordDocX
		}
		return initial

	case MIMEWebM:
		// WebM and Matroska share the EBML header; telling them apart needs
		// a DocType walk, and WebM is the overwhelmingly common case here.
		return MIMEWebM

	case MIMEMP4:
		// ISO-BMFF brand at offset 8 distinguishes the ftyp family.
		if len(data) >= 12 {
			switch brand := string(data[8:12]); {
			case brand == "M4A ":
				return "audio/mp4"
			case brand == "M4V ":
				return "video/x-m4v"
			case brand == "qt  ":
				return MIMEQuickTime
			case strings.HasPrefix(brand, "3gp"):
				return "video/3gpp"
			}
		}
		return initial

	default:
		return initial
	}
}
