package filetype

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RatioTolerance is the absolute difference between two numeric aspect
// ratios below which they are considered a match. The band is deliberately
// wide: 4:5 (0.8) matches 2:3 (0.667) but not 1:1.
const RatioTolerance = 0.15

// Ratio is a width:height aspect ratio with positive integer terms.
type Ratio struct {
	W int
	H int
}

// commonRatios are the named landscape and portrait ratios dimension
// classification snaps to, checked in this order.
var commonRatios = []Ratio{
	{1, 1}, {4, 3}, {3, 2}, {16, 9}, {21, 9}, {5, 4}, {2, 1},
	{3, 4}, {2, 3}, {9, 16}, {4, 5},
}

// ParseRatio parses a "W:H" string. Both terms must be positive integers.
func ParseRatio(s string) (Ratio, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Ratio{}, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w <= 0 {
		return Ratio{}, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h <= 0 {
		return Ratio{}, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}
	return Ratio{W: w, H: h}, nil
}

// ParseRatios parses a list of "W:H" strings, failing on the first bad one.
func ParseRatios(ss []string) ([]Ratio, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	ratios := make([]Ratio, 0, len(ss))
	for _, s := range ss {
		r, err := ParseRatio(s)
		if err != nil {
			return nil, err
		}
		ratios = append(ratios, r)
	}
	return ratios, nil
}

// String renders the ratio as "W:H".
func (r Ratio) String() string {
	return strconv.Itoa(r.W) + ":" + strconv.Itoa(r.H)
}

// Value is the numeric width/height quotient.
func (r Ratio) Value() float64 {
	if r.H == 0 {
		return 0
	}
	return float64(r.W) / float64(r.H)
}

// Reduced returns the ratio with both terms divided by their GCD.
func (r Ratio) Reduced() Ratio {
	if r.W <= 0 || r.H <= 0 {
		return r
	}
	d := gcd(r.W, r.H)
	return Ratio{W: r.W / d, H: r.H / d}
}

// Matches reports whether any candidate's numeric value lies within
// RatioTolerance of r's.
func (r Ratio) Matches(candidates ...Ratio) bool {
	v := r.Value()
	for _, c := range candidates {
		if math.Abs(c.Value()-v) <= RatioTolerance {
			return true
		}
	}
	return false
}

// RatiosMatch parses target and candidates and reports whether any candidate
// matches the target within RatioTolerance.
func RatiosMatch(target string, candidates ...string) (bool, error) {
	t, err := ParseRatio(target)
	if err != nil {
		return false, err
	}
	cs, err := ParseRatios(candidates)
	if err != nil {
		return false, err
	}
	return t.Matches(cs...), nil
}

// ClassifyDimensions maps pixel dimensions onto a common aspect ratio.
// The GCD-reduced ratio is returned verbatim when it is itself a common
// ratio; otherwise the common ratio numerically closest to width/height
// wins. Zero or negative dimensions yield ErrDecodeFailure.
func ClassifyDimensions(width, height int) (Ratio, error) {
	if width <= 0 || height <= 0 {
		return Ratio{}, fmt.Errorf("%w: %dx%d", ErrDecodeFailure, width, height)
	}

	exact := Ratio{W: width, H: height}.Reduced()
	for _, c := range commonRatios {
		if exact == c {
			return c, nil
		}
	}

	value := float64(width) / float64(height)
	best := commonRatios[0]
	bestDiff := math.Abs(best.Value() - value)
	for _, c := range commonRatios[1:] {
		if diff := math.Abs(c.Value() - value); diff < bestDiff {
			best, bestDiff = c, diff
		}
	}
	return best, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
