// Package format identifies the input formats gridscan can read.
package format

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document, usually a scan with one image per page.
	PDF
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// GIF indicates a GIF image.
	GIF
	// TIFF indicates a TIFF image.
	TIFF
	// BMP indicates a Windows bitmap.
	BMP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case TIFF:
		return ".tiff"
	case BMP:
		return ".bmp"
	default:
		return ""
	}
}

// IsImage reports whether the format is a single raster image
func (f Format) IsImage() bool {
	return f >= PNG && f <= BMP
}

var extensions = map[string]Format{
	".pdf":  PDF,
	".png":  PNG,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".gif":  GIF,
	".tif":  TIFF,
	".tiff": TIFF,
	".bmp":  BMP,
}

// Detect determines the format from the filename extension.
func Detect(filename string) Format {
	return extensions[strings.ToLower(filepath.Ext(filename))]
}

var signatures = []struct {
	magic  []byte
	format Format
}{
	{[]byte("%PDF"), PDF},
	{[]byte("\x89PNG\r\n\x1a\n"), PNG},
	{[]byte("\xff\xd8\xff"), JPEG},
	{[]byte("GIF87a"), GIF},
	{[]byte("GIF89a"), GIF},
	{[]byte("II*\x00"), TIFF},
	{[]byte("MM\x00*"), TIFF},
	{[]byte("BM"), BMP},
}

// DetectFromMagic checks leading magic bytes. PDF headers may follow a few
// bytes of junk, so the first 1024 bytes are searched for "%PDF".
func DetectFromMagic(data []byte) Format {
	for _, s := range signatures {
		if bytes.HasPrefix(data, s.magic) {
			return s.format
		}
	}
	if bytes.Contains(data[:min(len(data), 1024)], []byte("%PDF-")) {
		return PDF
	}
	return Unknown
}

// DetectFromReader reads the head of r and checks its magic bytes.
func DetectFromReader(r io.Reader) (Format, error) {
	head := make([]byte, 1024)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Unknown, err
	}
	return DetectFromMagic(head[:n]), nil
}

// DetectFile identifies a file by content.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path) //nolint:gosec // caller-supplied input path
	if err != nil {
		return Unknown, err
	}
	defer f.Close()
	return DetectFromReader(f)
}
