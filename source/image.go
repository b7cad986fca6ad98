package source

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/tsawler/gridscan/format"
	"github.com/tsawler/gridscan/raster"
)

// ErrUnsupportedFormat is returned for inputs that are neither a PDF nor a
// known raster format.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Page is one grayscale page image. Number is 1-based. Image is nil when
// the page could not be read, and Err then holds the reason.
type Page struct {
	Number int
	Image  *image.Gray
	Err    error
}

// IsPDF reports whether path names a PDF file
func IsPDF(path string) bool {
	return format.Detect(path) == format.PDF
}

// IsImage reports whether path names a supported raster image
func IsImage(path string) bool {
	return format.Detect(path).IsImage()
}

// Load reads the pages of a PDF or raster file. pages selects 1-based PDF
// pages; nil selects all of them. A raster file is always page 1 and
// ignores the selection. Files without a known extension are identified
// by their content.
func Load(path string, pages []int) ([]Page, error) {
	f := format.Detect(path)
	if f == format.Unknown {
		if sniffed, err := format.DetectFile(path); err == nil {
			f = sniffed
		}
	}
	switch {
	case f == format.PDF:
		return LoadPDF(path, pages)
	case f.IsImage():
		img, err := LoadImage(path)
		if err != nil {
			return nil, err
		}
		return []Page{{Number: 1, Image: img}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadImage opens a raster file, applies its EXIF orientation and converts
// it to grayscale.
func LoadImage(path string) (*image.Gray, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return gray(img)
}

// Decode reads a raster image from r and converts it to grayscale
func Decode(r io.Reader) (*image.Gray, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return gray(img)
}

func gray(img image.Image) (*image.Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, raster.ErrEmptyImage
	}
	return raster.ToGray(img), nil
}
