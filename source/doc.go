// Package source turns input files into grayscale page images.
//
// Raster files (PNG, JPEG, GIF, TIFF, BMP) become a single page. For PDF
// documents the largest embedded image of each page is taken as the page
// scan; a PDF page without an embedded image yields no page.
//
//	pages, err := source.Load("invoice.pdf", nil)
//	for _, p := range pages {
//	    fmt.Println(p.Number, p.Image.Bounds())
//	}
//
// [IsScanned] checks whether a PDF carries a text layer at all, which is
// how callers decide between text extraction and the image path.
package source
