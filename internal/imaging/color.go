package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a color channel or hex string is malformed.
var ErrInvalidColor = errors.New("invalid color")

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// NRGBA returns the opaque color.NRGBA for c.
func (c RGBColor) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// Hex returns c in "#RRGGBB" form.
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// NewRGBColor builds a color from integer channels, each of which must be in
// [0, 255].
func NewRGBColor(r, g, b int) (RGBColor, error) {
	for _, ch := range []struct {
		name  string
		value int
	}{{"r", r}, {"g", g}, {"b", b}} {
		if ch.value < 0 || ch.value > 255 {
			return RGBColor{}, fmt.Errorf("%w: channel %s=%d outside 0-255", ErrInvalidColor, ch.name, ch.value)
		}
	}
	return RGBColor{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// ParseHexColor parses "#RRGGBB" or "#RGB" (the leading '#' is optional).
func ParseHexColor(s string) (RGBColor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGBColor{}, fmt.Errorf("%w: empty color string", ErrInvalidColor)
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return RGBColor{}, fmt.Errorf("%w: %q must be #RGB or #RRGGBB", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGBColor{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return RGBColor{R: r, G: g, B: b}, nil
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a sampled color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB"
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Parameters:
//   - img: The source image to sample from.
//   - x: X coordinate (0-based, 0 = leftmost pixel).
//   - y: Y coordinate (0-based, 0 = topmost pixel).
//
// Returns:
//   - *ColorResult: The color at (x, y) in multiple formats.
//   - error: Non-nil if coordinates are outside the image bounds.
//
// The native color is converted to 8-bit components by right-shifting the
// 16-bit values returned by color.Color.RGBA.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, _ := img.At(x, y).RGBA()
	rgb := RGBColor{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}

	return &ColorResult{
		Hex: rgb.Hex(),
		RGB: rgb,
		HSL: toHSL(rgb),
	}, nil
}

func toHSL(c RGBColor) HSLColor {
	h, s, l := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hsl()
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}
