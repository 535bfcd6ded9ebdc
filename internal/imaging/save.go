package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is the encoder quality used for image artifacts.
const DefaultJPEGQuality = 90

// SaveJPEG writes img to path as a JPEG. A quality outside 1-100 falls back
// to DefaultJPEGQuality. On failure any partially written file is removed and
// the returned error wraps ErrIO.
func SaveJPEG(img image.Image, path string, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		if !errors.Is(err, imaging.ErrUnsupportedFormat) {
			_ = os.Remove(path)
		}
		return fmt.Errorf("%w: failed to write %s: %v", ErrIO, filepath.Base(path), err)
	}
	return nil
}
