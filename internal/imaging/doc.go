// Package imaging provides the image processing core of the cross service.
//
// The package implements three stateless stages that run in sequence for every
// upload:
//
//   - Validation: Validate checks file size, content format and dimensions and
//     returns an RGB-normalized copy of the decoded image.
//   - Cross rendering: DrawCross overlays a plus-sign or a diagonal X on a copy
//     of the validated image.
//   - Histogram rendering: ComputeHistogram builds density-normalized 256-bin
//     channel histograms and RenderHistogram draws them as a PNG chart.
//
// All pixel coordinates use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # RGB Normalization
//
// Go has no 3-channel image type. A validated image is an *image.NRGBA whose
// alpha bytes are all 255. Alpha in the source is discarded rather than
// composited, and grayscale, paletted and 16-bit sources are widened to
// 8-bit RGB.
//
// # Thread Safety
//
// No function in this package keeps state between calls. Functions may be
// called concurrently as long as each call writes to a distinct output path.
// Inputs are never mutated.
//
// # Error Handling
//
// Validation failures are reported as *ValidationError values whose Reason is
// one of ErrFileTooLarge, ErrUnsupportedFormat, ErrDimensionTooLarge or
// ErrDecode. Use errors.Is to classify them. Rendering failures wrap
// ErrUnsupportedVariant or ErrIO.
package imaging
