package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// CrossVariant selects which overlay shape DrawCross renders.
type CrossVariant int

// Supported cross variants.
//
// The external names are the web form values: "vertical" draws
// the upright plus-sign and "horizontal" draws the diagonal X.
const (
	CrossPlus CrossVariant = iota + 1
	CrossDiagonal
)

// External names accepted by ParseCrossVariant and produced by ExternalName.
const (
	CrossTypeVertical   = "vertical"
	CrossTypeHorizontal = "horizontal"
)

// String returns the shape name ("plus" or "diagonal").
func (v CrossVariant) String() string {
	switch v {
	case CrossPlus:
		return "plus"
	case CrossDiagonal:
		return "diagonal"
	default:
		return fmt.Sprintf("CrossVariant(%d)", int(v))
	}
}

// ExternalName returns the form value for v ("vertical" or "horizontal").
func (v CrossVariant) ExternalName() string {
	switch v {
	case CrossPlus:
		return CrossTypeVertical
	case CrossDiagonal:
		return CrossTypeHorizontal
	default:
		return ""
	}
}

// ParseCrossVariant maps a cross type name to a variant.
//
// Accepted names (case-insensitive):
//   - "vertical", "plus", "+" -> CrossPlus
//   - "horizontal", "diagonal", "x" -> CrossDiagonal
func ParseCrossVariant(s string) (CrossVariant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case CrossTypeVertical, "plus", "+":
		return CrossPlus, nil
	case CrossTypeHorizontal, "diagonal", "x":
		return CrossDiagonal, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected %q or %q)", ErrUnsupportedVariant, s, CrossTypeVertical, CrossTypeHorizontal)
	}
}

// CrossSpec is the per-request overlay description.
type CrossSpec struct {
	Variant CrossVariant `json:"variant"`
	Color   RGBColor     `json:"color"`
}

// CrossThickness returns the band thickness for an image of the given size:
// floor(min(width, height) / 20), never less than 1.
func CrossThickness(width, height int) int {
	return max(min(width, height)/20, 1)
}

// DrawCross renders a cross of color c onto a copy of img.
//
// Parameters:
//   - img: Source image. It is never modified.
//   - variant: CrossPlus or CrossDiagonal.
//   - c: Fill color.
//
// Returns:
//   - *image.NRGBA: A new image with the cross drawn, origin at (0,0).
//   - error: ErrUnsupportedVariant for any other variant.
//
// # Geometry
//
// With t = CrossThickness(w, h):
//
// Plus: a vertical band covering columns [w/2 - t/2, w/2 - t/2 + t) over the
// full height, and a horizontal band covering rows [h/2 - t/2, h/2 - t/2 + t)
// over the full width.
//
// Diagonal: two bands along the image diagonals. A pixel belongs to the
// top-left to bottom-right band when the horizontal distance between its
// center and the diagonal is at most t/2. The top-right to bottom-left band is
// the exact horizontal mirror of the first, so both are symmetric and meet at
// the center.
//
// The output is deterministic: identical inputs produce identical pixels.
func DrawCross(img image.Image, variant CrossVariant, c RGBColor) (*image.NRGBA, error) {
	if variant != CrossPlus && variant != CrossDiagonal {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVariant, variant)
	}

	dst := imaging.Clone(img)
	bounds := dst.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return dst, nil
	}
	thickness := CrossThickness(width, height)
	fill := c.NRGBA()

	switch variant {
	case CrossPlus:
		src := &image.Uniform{C: fill}
		x0 := width/2 - thickness/2
		y0 := height/2 - thickness/2
		draw.Draw(dst, image.Rect(x0, 0, x0+thickness, height), src, image.Point{}, draw.Src)
		draw.Draw(dst, image.Rect(0, y0, width, y0+thickness), src, image.Point{}, draw.Src)
	case CrossDiagonal:
		drawDiagonals(dst, thickness, fill.R, fill.G, fill.B)
	}

	return dst, nil
}

// drawDiagonals fills both diagonal bands row by row.
func drawDiagonals(dst *image.NRGBA, thickness int, r, g, b uint8) {
	width, height := dst.Rect.Dx(), dst.Rect.Dy()
	half := float64(thickness) / 2
	slope := float64(width) / float64(height)

	for y := 0; y < height; y++ {
		center := (float64(y) + 0.5) * slope
		x1 := int(math.Ceil(center - half - 0.5))
		x2 := int(math.Floor(center + half - 0.5))

		fillSpan(dst, y, x1, x2, r, g, b)
		fillSpan(dst, y, width-1-x2, width-1-x1, r, g, b)
	}
}

// fillSpan paints columns [x1, x2] of row y, clipped to the image.
func fillSpan(dst *image.NRGBA, y, x1, x2 int, r, g, b uint8) {
	x1 = max(x1, 0)
	x2 = min(x2, dst.Rect.Dx()-1)
	row := y * dst.Stride
	for x := x1; x <= x2; x++ {
		i := row + x*4
		dst.Pix[i+0] = r
		dst.Pix[i+1] = g
		dst.Pix[i+2] = b
		dst.Pix[i+3] = 0xFF
	}
}
