package filetype

import (
	"errors"
	"testing"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Token
		wantErr bool
	}{
		{name: "allow all", input: "*/*", want: Token{Kind: TokenAll}},
		{name: "star", input: "*", want: Token{Kind: TokenAll}},
		{name: "image wildcard", input: "image/*", want: Token{Kind: TokenCategory, Value: "image"}},
		{name: "video wildcard", input: "video/*", want: Token{Kind: TokenCategory, Value: "video"}},
		{name: "bare category", input: "audio", want: Token{Kind: TokenCategory, Value: "audio"}},
		{name: "category case", input: "IMAGE", want: Token{Kind: TokenCategory, Value: "image"}},
		{name: "archive category", input: "archive", want: Token{Kind: TokenCategory, Value: "archive"}},
		{name: "exact mime", input: "application/pdf", want: Token{Kind: TokenMIME, Value: "application/pdf"}},
		{name: "mime case", input: "Video/MP4", want: Token{Kind: TokenMIME, Value: "video/mp4"}},
		{name: "dotted extension", input: ".csv", want: Token{Kind: TokenExtension, Value: ".csv"}},
		{name: "bare extension", input: "csv", want: Token{Kind: TokenExtension, Value: ".csv"}},
		{name: "extension case", input: ".JPG", want: Token{Kind: TokenExtension, Value: ".jpg"}},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "unknown wildcard", input: "sound/*", wantErr: true},
		{name: "half mime", input: "image/", wantErr: true},
		{name: "bare dot", input: ".", wantErr: true},
		{name: "double dot", input: ".tar.gz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToken(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseToken(%q) error = nil, want error", tt.input)
				}
				if !errors.Is(err, ErrUnknownToken) {
					t.Errorf("ParseToken(%q) error = %v, want ErrUnknownToken", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseToken(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseToken(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTokensMediaShorthand(t *testing.T) {
	tokens, err := ParseTokens([]string{"media", ".pdf"})
	if err != nil {
		t.Fatalf("ParseTokens error = %v", err)
	}
	want := []Token{
		{Kind: TokenCategory, Value: "image"},
		{Kind: TokenCategory, Value: "video"},
		{Kind: TokenCategory, Value: "audio"},
		{Kind: TokenExtension, Value: ".pdf"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("len(tokens) = %d, want %d", len(tokens), len(want))
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("tokens[%d] = %+v, want %+v", i, tokens[i], want[i])
		}
	}
}

func TestFilterAdmits(t *testing.T) {
	tests := []struct {
		name  string
		specs []string
		mime  string
		ext   string
		want  bool
	}{
		{name: "empty admits everything", specs: nil, mime: "application/pdf", ext: ".pdf", want: true},
		{name: "allow all token", specs: []string{"*/*"}, mime: "font/woff", ext: ".woff", want: true},
		{name: "category match", specs: []string{"image/*"}, mime: "image/png", ext: ".png", want: true},
		{name: "category miss", specs: []string{"image/*"}, mime: "video/mp4", ext: ".mp4", want: false},
		{name: "mime literal", specs: []string{"application/pdf"}, mime: "application/pdf", ext: ".pdf", want: true},
		{name: "mime literal miss", specs: []string{"application/pdf"}, mime: "application/zip", ext: ".zip", want: false},
		{name: "extension literal", specs: []string{".csv"}, mime: "text/csv", ext: ".csv", want: true},
		{name: "extension rescues unknown mime", specs: []string{".xyz"}, mime: "application/octet-stream", ext: ".xyz", want: true},
		{name: "mixed filter category path", specs: []string{".pdf", "image"}, mime: "image/webp", ext: ".webp", want: true},
		{name: "mixed filter miss", specs: []string{".pdf", "image"}, mime: "video/mp4", ext: ".mp4", want: false},
		{name: "document category", specs: []string{"document"}, mime: "application/pdf", ext: ".pdf", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseFilter(tt.specs)
			if err != nil {
				t.Fatalf("ParseFilter(%v) error = %v", tt.specs, err)
			}
			if got := filter.Admits(tt.mime, tt.ext); got != tt.want {
				t.Errorf("Admits(%q, %q) = %v, want %v", tt.mime, tt.ext, got, tt.want)
			}
		})
	}
}

func TestFilterAllowsText(t *testing.T) {
	empty, _ := ParseFilter(nil)
	if !empty.AllowsText() {
		t.Error("empty filter AllowsText() = false, want true")
	}

	withText, _ := ParseFilter([]string{"text", ".pdf"})
	if !withText.AllowsText() {
		t.Error("text filter AllowsText() = false, want true")
	}

	imagesOnly, _ := ParseFilter([]string{"image/*"})
	if imagesOnly.AllowsText() {
		t.Error("image filter AllowsText() = true, want false")
	}

	var nilFilter *Filter
	if !nilFilter.AllowsText() {
		t.Error("nil filter AllowsText() = false, want true")
	}
}
