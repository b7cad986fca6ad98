// Package main provides the entry point for the gridscan CLI.
//
// gridscan finds the ruled table on every page of scanned PDFs and images,
// recognizes each cell with Tesseract and writes one CSV per input.
//
// Usage:
//
//	gridscan extract invoice.pdf scans/*.png -o outputs
//	gridscan config init
//
// See --help for all available options.
package main

func main() {
	Execute()
}
