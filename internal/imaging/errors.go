package imaging

import (
	"errors"
	"strings"
)

// Failure reasons. Validation failures are terminal for a request and are
// reported to the caller with a human-readable message.
var (
	// ErrFileTooLarge is returned when the stored file exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFormat is returned when the content is a decodable image
	// that is neither JPEG nor PNG.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDimensionTooLarge is returned when the longer image side exceeds the
	// dimension limit.
	ErrDimensionTooLarge = errors.New("dimension too large")

	// ErrDecode wraps any failure to read or decode the image data.
	ErrDecode = errors.New("decode error")

	// ErrUnsupportedVariant is returned for an unknown cross variant.
	ErrUnsupportedVariant = errors.New("unsupported cross variant")

	// ErrIO is returned when an artifact cannot be written.
	ErrIO = errors.New("i/o error")
)

// ValidationError describes why an uploaded image was rejected.
//
// Reason is always one of the validation sentinels. Err carries the
// underlying cause when there is one (for example the decoder error).
type ValidationError struct {
	Reason  error
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the reason and the cause to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsValidationError reports whether err was produced by input validation
// rather than by an unexpected rendering or I/O failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
