package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
)

// HistogramBins is the number of intensity bins per channel.
const HistogramBins = 256

// ChannelHistogram holds density-normalized histograms for the R, G and B
// channels. Bin i holds the fraction of pixels whose channel value equals i,
// so every channel sums to 1 for a non-empty image.
type ChannelHistogram struct {
	R [HistogramBins]float64 `json:"r"`
	G [HistogramBins]float64 `json:"g"`
	B [HistogramBins]float64 `json:"b"`

	// Pixels is the number of pixels the histogram was built from.
	Pixels int `json:"pixels"`
}

// Max returns the largest density across all three channels.
func (h *ChannelHistogram) Max() float64 {
	var m float64
	for i := 0; i < HistogramBins; i++ {
		m = max(m, h.R[i], h.G[i], h.B[i])
	}
	return m
}

// Sums returns the total density of each channel.
func (h *ChannelHistogram) Sums() (r, g, b float64) {
	for i := 0; i < HistogramBins; i++ {
		r += h.R[i]
		g += h.G[i]
		b += h.B[i]
	}
	return r, g, b
}

// ComputeHistogram builds density-normalized channel histograms for img.
//
// img is expected to be RGB-normalized (see ToRGB). For an empty image every
// bin is zero.
func ComputeHistogram(img image.Image) ChannelHistogram {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	out := ChannelHistogram{Pixels: pixels}
	if pixels == 0 {
		return out
	}

	counts := histogram.NewRGBAHistogram(img)
	total := float64(pixels)
	for i := 0; i < HistogramBins; i++ {
		out.R[i] = float64(counts.R.Bins[i]) / total
		out.G[i] = float64(counts.G.Bins[i]) / total
		out.B[i] = float64(counts.B.Bins[i]) / total
	}
	return out
}

// RenderHistogram draws the channel histograms of img as a PNG chart.
//
// Parameters:
//   - img: An RGB-normalized image. It is only read.
//   - outputPath: Destination file. Its extension should be ".png".
//   - title: Text appended to the chart heading.
//
// Returns the output path, or an error wrapping ErrIO when the chart cannot
// be written. The parent directory must already exist.
func RenderHistogram(img image.Image, outputPath, title string) (string, error) {
	h := ComputeHistogram(img)
	chart := HistogramChart(&h, title)

	if err := imaging.Save(chart, outputPath); err != nil {
		// A file is only created once the extension has been accepted.
		if !errors.Is(err, imaging.ErrUnsupportedFormat) {
			_ = os.Remove(outputPath)
		}
		return "", fmt.Errorf("%w: failed to write histogram %s: %v", ErrIO, filepath.Base(outputPath), err)
	}
	return outputPath, nil
}
