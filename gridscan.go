// Package gridscan provides a fluent API for extracting tables from scanned
// documents: PDF pages without a text layer and raster images.
//
// Every page is searched for its dominant ruled table, which is rectified
// and cut into cells along the detected grid lines. Cells can then be
// recognized into text records.
//
// Basic usage:
//
//	records, warnings, err := gridscan.Open("invoice.pdf").Records(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", gridscan.FormatWarnings(warnings))
//	}
//
// With options:
//
//	results, _, err := gridscan.Open("scan.png").
//	    Workers(2).
//	    CellWorkers(4).
//	    Debug(overlay.NewPNGSink("debug")).
//	    Tables(ctx)
//
// The lower-level tables, rectify and raster packages are available for
// callers that bring their own page images.
package gridscan

import (
	"image"
)

// Open returns an Extractor for a PDF or raster image file. Nothing is read
// until a terminal operation such as Tables runs.
//
// Example:
//
//	results, warnings, err := gridscan.Open("scan.pdf").Tables(ctx)
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromImages creates an Extractor over in-memory page images, numbered
// from 1 in argument order.
//
// Example:
//
//	img, _ := png.Decode(f)
//	results, _, err := gridscan.FromImages(img).Tables(ctx)
func FromImages(images ...image.Image) *Extractor {
	return &Extractor{
		images:  append([]image.Image(nil), images...),
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	scanned := gridscan.Must(gridscan.Open("document.pdf").IsScanned())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is like Must for calls that also return warnings, such as
// Tables or Records. The warnings are discarded.
//
// Example:
//
//	records := gridscan.MustResult(gridscan.Open("scan.png").Records(ctx))
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
