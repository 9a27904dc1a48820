package filetype

import (
	"errors"
	"testing"
)

func TestParseRatio(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Ratio
		wantErr bool
	}{
		{name: "simple", input: "16:9", want: Ratio{16, 9}},
		{name: "square", input: "1:1", want: Ratio{1, 1}},
		{name: "portrait", input: "9:16", want: Ratio{9, 16}},
		{name: "surrounding space", input: " 4:3 ", want: Ratio{4, 3}},
		{name: "unreduced", input: "1280:720", want: Ratio{1280, 720}},
		{name: "zero width", input: "0:5", wantErr: true},
		{name: "zero height", input: "5:0", wantErr: true},
		{name: "negative", input: "-1:2", wantErr: true},
		{name: "wrong separator", input: "4x5", wantErr: true},
		{name: "missing height", input: "4:", wantErr: true},
		{name: "missing width", input: ":9", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "too many parts", input: "1:2:3", wantErr: true},
		{name: "float terms", input: "1.5:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRatio(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRatio(%q) error = nil, want error", tt.input)
				}
				if !errors.Is(err, ErrInvalidRatio) {
					t.Errorf("ParseRatio(%q) error = %v, want ErrInvalidRatio", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRatio(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRatio(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRatioReduced(t *testing.T) {
	tests := []struct {
		in   Ratio
		want Ratio
	}{
		{Ratio{1280, 720}, Ratio{16, 9}},
		{Ratio{1000, 1000}, Ratio{1, 1}},
		{Ratio{1000, 800}, Ratio{5, 4}},
		{Ratio{16, 9}, Ratio{16, 9}},
		{Ratio{100, 30}, Ratio{10, 3}},
	}

	for _, tt := range tests {
		if got := tt.in.Reduced(); got != tt.want {
			t.Errorf("Reduced(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRatiosMatch(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		candidates []string
		want       bool
	}{
		{name: "within tolerance", target: "4:5", candidates: []string{"2:3"}, want: true},
		{name: "outside tolerance", target: "4:5", candidates: []string{"1:1"}, want: false},
		{name: "exact", target: "16:9", candidates: []string{"16:9"}, want: true},
		{name: "any of several", target: "16:9", candidates: []string{"1:1", "4:3", "16:9"}, want: true},
		{name: "none of several", target: "16:9", candidates: []string{"1:1", "9:16"}, want: false},
		{name: "no candidates", target: "16:9", candidates: nil, want: false},
		{name: "unreduced equivalent", target: "1280:720", candidates: []string{"16:9"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RatiosMatch(tt.target, tt.candidates...)
			if err != nil {
				t.Fatalf("RatiosMatch(%q, %v) error = %v", tt.target, tt.candidates, err)
			}
			if got != tt.want {
				t.Errorf("RatiosMatch(%q, %v) = %v, want %v", tt.target, tt.candidates, got, tt.want)
			}
		})
	}

	t.Run("bad target", func(t *testing.T) {
		if _, err := RatiosMatch("nope", "1:1"); !errors.Is(err, ErrInvalidRatio) {
			t.Errorf("error = %v, want ErrInvalidRatio", err)
		}
	})

	t.Run("bad candidate", func(t *testing.T) {
		if _, err := RatiosMatch("1:1", "1:1", "x"); !errors.Is(err, ErrInvalidRatio) {
			t.Errorf("error = %v, want ErrInvalidRatio", err)
		}
	})
}

func TestClassifyDimensions(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   string
	}{
		{name: "hd video", width: 1280, height: 720, want: "16:9"},
		{name: "full hd", width: 1920, height: 1080, want: "16:9"},
		{name: "square", width: 1000, height: 1000, want: "1:1"},
		{name: "five by four", width: 1000, height: 800, want: "5:4"},
		{name: "classic photo", width: 800, height: 600, want: "4:3"},
		{name: "portrait hd", width: 720, height: 1280, want: "9:16"},
		{name: "nearest snap", width: 500, height: 1000, want: "9:16"},
		{name: "ultrawide snap", width: 999, height: 333, want: "21:9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyDimensions(tt.width, tt.height)
			if err != nil {
				t.Fatalf("ClassifyDimensions(%d, %d) error = %v", tt.width, tt.height, err)
			}
			if got.String() != tt.want {
				t.Errorf("ClassifyDimensions(%d, %d) = %s, want %s", tt.width, tt.height, got, tt.want)
			}
		})
	}

	t.Run("zero dimensions", func(t *testing.T) {
		if _, err := ClassifyDimensions(0, 100); !errors.Is(err, ErrDecodeFailure) {
			t.Errorf("error = %v, want ErrDecodeFailure", err)
		}
		if _, err := ClassifyDimensions(100, 0); !errors.Is(err, ErrDecodeFailure) {
			t.Errorf("error = %v, want ErrDecodeFailure", err)
		}
	})
}
