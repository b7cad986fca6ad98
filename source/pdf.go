package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/tsawler/gridscan/raster"
)

func init() {
	// pdfcpu would otherwise create a configuration directory on first use.
	api.DisableConfigDir()
}

// ErrNoPageImage is set on a PDF page that embeds no image.
var ErrNoPageImage = errors.New("page has no embedded image")

// LoadPDF extracts one grayscale page per selected PDF page from the page's
// largest embedded image. pages holds 1-based page numbers; nil selects all
// pages. Every selected page is returned, in page order. A page without a
// decodable image has a nil Image and Err says why.
func LoadPDF(path string, pages []int) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()
	return ReadPDF(f, pages)
}

// ReadPDF is LoadPDF for an already opened document
func ReadPDF(rs io.ReadSeeker, pages []int) ([]Page, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	for _, n := range pages {
		if n < 1 {
			return nil, fmt.Errorf("invalid page number %d", n)
		}
	}

	count, err := api.PageCount(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	numbers, err := pageNumbers(pages, count)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind PDF: %w", err)
	}

	selected := make([]string, len(numbers))
	for i, n := range numbers {
		selected[i] = strconv.Itoa(n)
	}
	perPage, err := api.ExtractImagesRaw(rs, selected, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page images: %w", err)
	}

	largest := make(map[int]model.Image)
	for _, images := range perPage {
		for _, img := range images {
			best, ok := largest[img.PageNr]
			if !ok || img.Width*img.Height > best.Width*best.Height {
				largest[img.PageNr] = img
			}
		}
	}

	out := make([]Page, 0, len(numbers))
	for _, nr := range numbers {
		page := Page{Number: nr}
		if img, ok := largest[nr]; ok {
			page.Image, page.Err = decodeEmbedded(img)
		} else {
			page.Err = fmt.Errorf("%w on page %d", ErrNoPageImage, nr)
		}
		out = append(out, page)
	}
	return out, nil
}

// pageNumbers sorts and de-duplicates the selection, or lists every page
// when it is empty.
func pageNumbers(pages []int, count int) ([]int, error) {
	if len(pages) == 0 {
		all := make([]int, count)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	numbers := slices.Clone(pages)
	slices.Sort(numbers)
	numbers = slices.Compact(numbers)
	for _, n := range numbers {
		if n > count {
			return nil, fmt.Errorf("page %d out of range (1-%d)", n, count)
		}
	}
	return numbers, nil
}

// decodeEmbedded decodes an image stream pdfcpu exported in a standard
// container format (png, jpg or tif).
func decodeEmbedded(img model.Image) (*image.Gray, error) {
	if img.Reader == nil {
		return nil, raster.ErrEmptyImage
	}
	data, err := io.ReadAll(img.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s image on page %d: %w", img.FileType, img.PageNr, err)
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image on page %d: %w", img.FileType, img.PageNr, err)
	}
	return gray(decoded)
}
