package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF so it is reported as unsupported, not undecodable
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP so it is reported as unsupported
	_ "golang.org/x/image/webp" // Register WebP so it is reported as unsupported
)

// Format is the content format detected while decoding an image.
type Format string

// Accepted upload formats.
const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// Default validation limits.
const (
	DefaultMaxSizeMB    = 5
	DefaultMaxDimension = 2000
)

// bytesPerMB is a binary megabyte.
const bytesPerMB = 1024 * 1024

// Limits bounds what the validator accepts.
type Limits struct {
	// MaxSizeMB is the largest accepted file size in binary megabytes.
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb"`

	// MaxDimension is the largest accepted width or height in pixels.
	MaxDimension int `json:"max_dimension" yaml:"max_dimension"`
}

// DefaultLimits returns the stock limits: 5 MB and 2000 px.
func DefaultLimits() Limits {
	return Limits{
		MaxSizeMB:    DefaultMaxSizeMB,
		MaxDimension: DefaultMaxDimension,
	}
}

// MaxBytes returns the file size limit in bytes.
func (l Limits) MaxBytes() int64 {
	return int64(l.MaxSizeMB) * bytesPerMB
}

// Validate checks an image file on disk and returns an RGB-normalized copy.
//
// Parameters:
//   - path: Path to the stored upload. The file is only read, never modified
//     or removed.
//   - limits: Size and dimension bounds.
//
// Returns:
//   - *image.NRGBA: The decoded image with every alpha byte set to 255 and
//     the original pixel dimensions.
//   - Format: The detected content format (FormatJPEG or FormatPNG).
//   - error: A *ValidationError when the file is rejected.
//
// # Checks
//
// The checks run in this order, and the first failure wins:
//
//  1. File size greater than limits.MaxSizeMB binary megabytes -> ErrFileTooLarge
//  2. Header cannot be decoded -> ErrDecode
//  3. Format other than JPEG or PNG -> ErrUnsupportedFormat
//  4. max(width, height) greater than limits.MaxDimension -> ErrDimensionTooLarge
//  5. Pixel data cannot be decoded -> ErrDecode
//
// The format is detected from the file content, not from the extension.
func Validate(path string, limits Limits) (*image.NRGBA, Format, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, "", &ValidationError{Reason: ErrDecode, Message: "failed to read image", Err: err}
	}
	if stat.Size() > limits.MaxBytes() {
		return nil, "", fileTooLarge(limits)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &ValidationError{Reason: ErrDecode, Message: "failed to read image", Err: err}
	}
	return validateData(data, limits)
}

// ValidateBytes applies the same checks as Validate to an in-memory buffer.
func ValidateBytes(data []byte, limits Limits) (*image.NRGBA, Format, error) {
	if int64(len(data)) > limits.MaxBytes() {
		return nil, "", fileTooLarge(limits)
	}
	return validateData(data, limits)
}

func validateData(data []byte, limits Limits) (*image.NRGBA, Format, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &ValidationError{Reason: ErrDecode, Message: "failed to read image", Err: err}
	}

	format := Format(name)
	if format != FormatJPEG && format != FormatPNG {
		return nil, "", &ValidationError{
			Reason:  ErrUnsupportedFormat,
			Message: fmt.Sprintf("only JPEG and PNG formats are supported (got %s)", name),
		}
	}

	if max(cfg.Width, cfg.Height) > limits.MaxDimension {
		return nil, "", &ValidationError{
			Reason:  ErrDimensionTooLarge,
			Message: fmt.Sprintf("image dimensions %dx%d exceed %dpx", cfg.Width, cfg.Height, limits.MaxDimension),
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &ValidationError{Reason: ErrDecode, Message: "failed to decode image", Err: err}
	}

	return ToRGB(img), format, nil
}

func fileTooLarge(limits Limits) *ValidationError {
	return &ValidationError{
		Reason:  ErrFileTooLarge,
		Message: fmt.Sprintf("file size exceeds %d MB", limits.MaxSizeMB),
	}
}

// ToRGB returns a copy of img in 8-bit RGB form with opaque alpha.
//
// The copy always starts at the origin. Transparency is dropped rather than
// blended against a background. Conversion never fails.
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xFF
	}
	return dst
}

// ImageInfo contains metadata about a validated image.
type ImageInfo struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        Format `json:"format"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	Thickness     int    `json:"cross_thickness"`
}

// Inspect validates the file at path and reports its metadata.
func Inspect(path string, limits Limits) (*ImageInfo, error) {
	img, format, err := Validate(path, limits)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
		Thickness:     CrossThickness(bounds.Dx(), bounds.Dy()),
	}, nil
}
