package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Chart geometry in pixels.
const (
	ChartWidth  = 1000
	ChartHeight = 600

	chartMarginLeft   = 90
	chartMarginRight  = 30
	chartMarginTop    = 60
	chartMarginBottom = 70

	chartYTicks    = 5
	chartFillAlpha = 0x80
)

// Chart text.
const (
	chartTitlePrefix = "Color distribution: "
	chartXLabel      = "Color value (0-255)"
	chartYLabel      = "Frequency (normalized)"
)

type chartSeries struct {
	label string
	hex   string
	bins  *[HistogramBins]float64
}

var (
	chartBackground = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	chartInk        = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	chartGrid       = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x26}
)

// HistogramChart draws h as a ChartWidth x ChartHeight image.
//
// The three channels are drawn as overlaid semi-transparent fills on a plot
// whose x-axis is fixed to the 0-255 intensity range and whose y-axis spans
// zero to the largest density. The chart carries a title, axis labels, tick
// labels, a light grid and a legend naming each channel.
func HistogramChart(h *ChannelHistogram, title string) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, ChartWidth, ChartHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: chartBackground}, image.Point{}, draw.Src)

	plot := image.Rect(chartMarginLeft, chartMarginTop, ChartWidth-chartMarginRight, ChartHeight-chartMarginBottom)

	yMax := h.Max() * 1.05
	if yMax <= 0 {
		yMax = 1
	}

	xPix := func(v float64) int {
		return plot.Min.X + int(v*float64(plot.Dx())/float64(HistogramBins)+0.5)
	}
	yPix := func(v float64) int {
		return plot.Max.Y - int(v/yMax*float64(plot.Dy())+0.5)
	}

	// Grid and tick labels
	for v := 0; v < HistogramBins; v += 50 {
		drawXTick(canvas, plot, xPix(float64(v)), v)
	}
	drawXTick(canvas, plot, xPix(float64(HistogramBins-1)), HistogramBins-1)
	for i := 0; i <= chartYTicks; i++ {
		v := yMax * float64(i) / chartYTicks
		y := yPix(v)
		fillRect(canvas, image.Rect(plot.Min.X, y, plot.Max.X, y+1), chartGrid)
		label := fmt.Sprintf("%.3f", v)
		drawText(canvas, plot.Min.X-8-textWidth(label), y+4, label, chartInk)
	}

	// Channel fills
	series := []chartSeries{
		{label: "Red", hex: "#FF0000", bins: &h.R},
		{label: "Green", hex: "#008000", bins: &h.G},
		{label: "Blue", hex: "#0000FF", bins: &h.B},
	}
	for _, s := range series {
		fill := seriesColor(s.hex, chartFillAlpha)
		for i, density := range s.bins {
			if density <= 0 {
				continue
			}
			bar := image.Rect(xPix(float64(i)), yPix(density), xPix(float64(i+1)), plot.Max.Y)
			fillRect(canvas, bar, fill)
		}
	}

	// Plot frame
	fillRect(canvas, image.Rect(plot.Min.X, plot.Min.Y, plot.Max.X, plot.Min.Y+1), chartInk)
	fillRect(canvas, image.Rect(plot.Min.X, plot.Max.Y, plot.Max.X+1, plot.Max.Y+1), chartInk)
	fillRect(canvas, image.Rect(plot.Min.X, plot.Min.Y, plot.Min.X+1, plot.Max.Y), chartInk)
	fillRect(canvas, image.Rect(plot.Max.X, plot.Min.Y, plot.Max.X+1, plot.Max.Y), chartInk)

	// Title and axis labels
	heading := renderText(chartTitlePrefix+title, chartInk)
	heading = imaging.Resize(heading, heading.Bounds().Dx()*2, heading.Bounds().Dy()*2, imaging.NearestNeighbor)
	drawImage(canvas, heading, (ChartWidth-heading.Bounds().Dx())/2, (chartMarginTop-heading.Bounds().Dy())/2)

	drawText(canvas, plot.Min.X+(plot.Dx()-textWidth(chartXLabel))/2, ChartHeight-18, chartXLabel, chartInk)

	yLabel := imaging.Rotate90(renderText(chartYLabel, chartInk))
	drawImage(canvas, yLabel, 12, plot.Min.Y+(plot.Dy()-yLabel.Bounds().Dy())/2)

	drawLegend(canvas, plot, series)

	return canvas
}

func drawXTick(canvas *image.RGBA, plot image.Rectangle, x, value int) {
	fillRect(canvas, image.Rect(x, plot.Min.Y, x+1, plot.Max.Y), chartGrid)
	fillRect(canvas, image.Rect(x, plot.Max.Y, x+1, plot.Max.Y+5), chartInk)
	label := fmt.Sprintf("%d", value)
	drawText(canvas, x-textWidth(label)/2, plot.Max.Y+18, label, chartInk)
}

func drawLegend(canvas *image.RGBA, plot image.Rectangle, series []chartSeries) {
	const (
		padding = 8
		swatch  = 14
		rowH    = 20
	)
	labelW := 0
	for _, s := range series {
		labelW = max(labelW, textWidth(s.label))
	}
	boxW := padding*3 + swatch + labelW
	boxH := padding*2 + rowH*len(series) - (rowH - swatch)
	box := image.Rect(plot.Max.X-boxW-10, plot.Min.Y+10, plot.Max.X-10, plot.Min.Y+10+boxH)

	fillRect(canvas, box, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xE6})
	fillRect(canvas, image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+1), chartGrid)
	fillRect(canvas, image.Rect(box.Min.X, box.Max.Y-1, box.Max.X, box.Max.Y), chartGrid)
	fillRect(canvas, image.Rect(box.Min.X, box.Min.Y, box.Min.X+1, box.Max.Y), chartGrid)
	fillRect(canvas, image.Rect(box.Max.X-1, box.Min.Y, box.Max.X, box.Max.Y), chartGrid)

	for i, s := range series {
		top := box.Min.Y + padding + i*rowH
		fillRect(canvas, image.Rect(box.Min.X+padding, top, box.Min.X+padding+swatch, top+swatch), seriesColor(s.hex, chartFillAlpha))
		drawText(canvas, box.Min.X+padding*2+swatch, top+swatch-2, s.label, chartInk)
	}
}

// seriesColor converts a palette hex string to a translucent fill.
func seriesColor(hex string, alpha uint8) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{A: alpha}
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

// fillRect composites c over r.
func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, &image.Uniform{C: c}, image.Point{}, draw.Over)
}

func drawImage(dst draw.Image, src image.Image, x, y int) {
	b := src.Bounds()
	draw.Draw(dst, image.Rect(x, y, x+b.Dx(), y+b.Dy()), src, b.Min, draw.Over)
}

// drawText draws s with its baseline at y.
func drawText(dst draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

// renderText draws s onto a transparent image sized to fit it.
func renderText(s string, c color.Color) *image.NRGBA {
	face := basicfont.Face7x13
	img := image.NewNRGBA(image.Rect(0, 0, max(textWidth(s), 1), face.Height))
	drawText(img, 0, face.Ascent, s, c)
	return img
}
