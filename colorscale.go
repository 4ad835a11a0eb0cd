package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RGB is a 24-bit colour
type RGB struct {
	R, G, B uint8
}

// Hex formats the colour as a lower-case #rrggbb string
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb (the leading # is optional)
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Interpolate blends c1 towards c2, each channel rounded independently
func Interpolate(c1, c2 RGB, fraction float64) RGB {
	channel := func(a, b uint8) uint8 {
		v := math.Round(float64(a) + (float64(b)-float64(a))*fraction)
		return uint8(math.Max(0, math.Min(255, v)))
	}
	return RGB{
		R: channel(c1.R, c2.R),
		G: channel(c1.G, c2.G),
		B: channel(c1.B, c2.B),
	}
}

// Scale names the semantic direction of a colour scale
type Scale string

const (
	// RedToGreen colours low values red and high values green
	RedToGreen Scale = "red_to_green"
	// GreenToRed colours low values green and high values red
	GreenToRed Scale = "green_to_red"
)

var (
	scaleRed   = RGB{R: 248, G: 105, B: 107} // #f8696b
	scaleWhite = RGB{R: 255, G: 255, B: 255}
	scaleGreen = RGB{R: 99, G: 190, B: 123} // #63be7b
)

// Anchors are the low, median and high reference colours of a scale
type Anchors struct {
	Low, Mid, High RGB
}

// AnchorsFor returns the anchors of a scale; unknown scales fall back to RedToGreen
func AnchorsFor(scale Scale) Anchors {
	if scale == GreenToRed {
		return Anchors{Low: scaleGreen, Mid: scaleWhite, High: scaleRed}
	}
	return Anchors{Low: scaleRed, Mid: scaleWhite, High: scaleGreen}
}

// ColorScale maps values of one column onto a three-point colour scale
// anchored at the column minimum, median and maximum.
type ColorScale struct {
	Min, Median, Max float64
	Anchors          Anchors
}

// NewColorScale computes the statistics of values. ok is false for an empty column.
func NewColorScale(values []float64, scale Scale) (ColorScale, bool) {
	if len(values) == 0 {
		return ColorScale{}, false
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return ColorScale{
		Min:     sorted[0],
		Median:  median,
		Max:     sorted[len(sorted)-1],
		Anchors: AnchorsFor(scale),
	}, true
}

// ColorOf returns the colour of v
func (s ColorScale) ColorOf(v float64) RGB {
	if v <= s.Median {
		fraction := 0.0
		if s.Median != s.Min {
			fraction = clampFraction((v - s.Min) / (s.Median - s.Min))
		}
		return Interpolate(s.Anchors.Low, s.Anchors.Mid, fraction)
	}

	fraction := 0.0
	if s.Max != s.Median {
		fraction = clampFraction((v - s.Median) / (s.Max - s.Median))
	}
	return Interpolate(s.Anchors.Mid, s.Anchors.High, fraction)
}

func clampFraction(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// ParseNumber reports whether text is a finite number
func ParseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
