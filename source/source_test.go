package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"

	"github.com/tsawler/gridscan/raster"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(2, 3, color.Black)
	return img
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "page.png")
	if err := imaging.Save(testImage(), pngPath); err != nil {
		t.Fatal(err)
	}

	tifPath := filepath.Join(dir, "page.tiff")
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, testImage(), nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tifPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{pngPath, tifPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			g, err := LoadImage(path)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if g.Rect != image.Rect(0, 0, 8, 6) {
				t.Errorf("unexpected bounds %v", g.Rect)
			}
			if g.GrayAt(2, 3).Y != 0 || g.GrayAt(0, 0).Y != 255 {
				t.Errorf("unexpected samples %d %d", g.GrayAt(2, 3).Y, g.GrayAt(0, 0).Y)
			}
		})
	}
}

func TestLoadImageMissing(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "none.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, testImage(), imaging.PNG); err != nil {
		t.Fatal(err)
	}
	g, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if g.Rect.Dx() != 8 || g.Rect.Dy() != 6 {
		t.Errorf("unexpected bounds %v", g.Rect)
	}

	if _, err := Decode(strings.NewReader("not an image")); err == nil {
		t.Error("Expected error for garbage input")
	}
}

func TestGrayEmpty(t *testing.T) {
	if _, err := gray(image.NewGray(image.Rect(0, 0, 0, 5))); !errors.Is(err, raster.ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.PNG")
	if err := imaging.Save(testImage(), path); err != nil {
		t.Fatal(err)
	}

	pages, err := Load(path, []int{3})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("Expected a single page 1, got %+v", pages)
	}

	if _, err := Load(filepath.Join(dir, "notes.txt"), nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	// A scan without an extension is identified by content.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	bare := filepath.Join(dir, "scan")
	if err := os.WriteFile(bare, data, 0o600); err != nil {
		t.Fatal(err)
	}
	pages, err = Load(bare, nil)
	if err != nil {
		t.Fatalf("Load of extensionless scan failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Image == nil {
		t.Fatalf("Expected one decoded page, got %+v", pages)
	}
}

func TestFormatDetection(t *testing.T) {
	tests := []struct {
		path  string
		pdf   bool
		image bool
	}{
		{"a.pdf", true, false},
		{"a.PDF", true, false},
		{"a.jpeg", false, true},
		{"dir.v2/a.tif", false, true},
		{"a.bmp", false, true},
		{"a.docx", false, false},
		{"pdf", false, false},
	}
	for _, tt := range tests {
		if got := IsPDF(tt.path); got != tt.pdf {
			t.Errorf("IsPDF(%q) = %v, want %v", tt.path, got, tt.pdf)
		}
		if got := IsImage(tt.path); got != tt.image {
			t.Errorf("IsImage(%q) = %v, want %v", tt.path, got, tt.image)
		}
	}
}

func TestReadPDFErrors(t *testing.T) {
	if _, err := ReadPDF(bytes.NewReader(nil), []int{0}); err == nil {
		t.Error("Expected error for page 0")
	}
	if _, err := ReadPDF(strings.NewReader("garbage"), nil); err == nil {
		t.Error("Expected error for non-PDF input")
	}
	if _, err := LoadPDF(filepath.Join(t.TempDir(), "none.pdf"), nil); err == nil {
		t.Error("Expected error for missing file")
	}
}

// writePDF numbers objs from 1 and writes them with a valid xref table.
// Object 1 must be the catalog.
func writePDF(objs []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}

// buildPDF writes a one-page document whose content stream is content.
func buildPDF(content string) []byte {
	return writePDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		stream("", content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	})
}

// jpegImage returns an image XObject holding a w x h gray JPEG.
func jpegImage(t *testing.T, w, h int, level uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /DCTDecode", w, h)
	return stream(dict, buf.String())
}

// scanPDF builds three pages: page 1 holds a 20x10 and a 60x40 image,
// page 2 a 30x50 image and page 3 no image at all.
func scanPDF(t *testing.T) []byte {
	t.Helper()
	return writePDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R 5 0 R] /Count 3 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << /XObject << /Im1 6 0 R /Im2 7 0 R >> >> /Contents 9 0 R >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << /XObject << /Im3 8 0 R >> >> /Contents 10 0 R >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << >> /Contents 11 0 R >>",
		jpegImage(t, 20, 10, 40),
		jpegImage(t, 60, 40, 200),
		jpegImage(t, 30, 50, 120),
		stream("", "q 20 0 0 10 0 0 cm /Im1 Do Q q 60 0 0 40 0 100 cm /Im2 Do Q"),
		stream("", "q 30 0 0 50 0 0 cm /Im3 Do Q"),
		stream("", "q Q"),
	})
}

func TestReadPDF(t *testing.T) {
	data := scanPDF(t)

	pages, err := ReadPDF(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("ReadPDF failed: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d has number %d", i, p.Number)
		}
	}

	// The largest image is the page scan.
	if img := pages[0].Image; img == nil || img.Rect.Dx() != 60 || img.Rect.Dy() != 40 {
		t.Errorf("page 1: expected the 60x40 image, got %+v", pages[0])
	}
	if img := pages[1].Image; img == nil || img.Rect.Dx() != 30 || img.Rect.Dy() != 50 {
		t.Errorf("page 2: expected the 30x50 image, got %+v", pages[1])
	}
	if pages[0].Err != nil || pages[1].Err != nil {
		t.Errorf("unexpected page errors %v, %v", pages[0].Err, pages[1].Err)
	}

	if pages[2].Image != nil || !errors.Is(pages[2].Err, ErrNoPageImage) {
		t.Errorf("page 3: expected ErrNoPageImage, got %+v", pages[2])
	}
}

func TestReadPDFSelection(t *testing.T) {
	data := scanPDF(t)

	pages, err := ReadPDF(bytes.NewReader(data), []int{3, 2, 2})
	if err != nil {
		t.Fatalf("ReadPDF failed: %v", err)
	}
	if len(pages) != 2 || pages[0].Number != 2 || pages[1].Number != 3 {
		t.Fatalf("Expected pages 2 and 3, got %+v", pages)
	}
	if pages[0].Image == nil || pages[0].Image.Rect.Dx() != 30 {
		t.Errorf("page 2: expected the 30x50 image, got %+v", pages[0])
	}

	if _, err := ReadPDF(bytes.NewReader(data), []int{4}); err == nil {
		t.Error("Expected error for a page beyond the document")
	}
}

func TestLoadPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	if err := os.WriteFile(path, scanPDF(t), 0o600); err != nil {
		t.Fatal(err)
	}
	pages, err := Load(path, []int{1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 || pages[0].Image == nil {
		t.Fatalf("Expected decoded page 1, got %+v", pages)
	}
}

func TestIsScanned(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("text layer", func(t *testing.T) {
		path := write("digital.pdf", buildPDF("BT /F1 12 Tf 72 712 Td (Invoice total) Tj ET"))
		scanned, err := IsScanned(path)
		if err != nil {
			t.Fatalf("IsScanned failed: %v", err)
		}
		if scanned {
			t.Error("document with text should not be scanned")
		}
	})

	t.Run("no text", func(t *testing.T) {
		path := write("blank.pdf", buildPDF("q Q"))
		scanned, err := IsScanned(path)
		if err != nil {
			t.Fatalf("IsScanned failed: %v", err)
		}
		if !scanned {
			t.Error("document without text should be scanned")
		}
	})

	t.Run("unreadable", func(t *testing.T) {
		path := write("broken.pdf", []byte("this is not a pdf"))
		scanned, err := IsScanned(path)
		if err == nil {
			t.Error("Expected open error")
		}
		if !scanned {
			t.Error("unreadable document should count as scanned")
		}
	})
}
