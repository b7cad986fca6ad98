// Package tables extracts the ruled table of a scanned page and cuts it
// into cell images.
//
// # Detectors
//
// Extraction is performed by types implementing the [Detector] interface.
// The package provides:
//
//   - [MorphDetector] - locates the table by contour geometry and its
//     rulings by morphological line filtering
//
// Detectors are registered globally by factory and created by name:
//
//	detector, err := tables.NewDetector("morph")
//	table, err := detector.Extract(ctx, page)
//
// # Extraction
//
// [MorphDetector.Extract] runs four stages:
//
//  1. Binarize the page and rectify its largest region (the table)
//  2. [DetectGridLines] opens the table mask with long thin kernels and
//     keeps strokes spanning most of the table
//  3. [SegmentCells] pairs consecutive boundaries into candidate cells
//  4. [RefineCell] locates and deskews the bright interior of each candidate
//
// A page without a table, or with fewer than two rulings on an axis, yields
// an empty table. Only a zero-area page is an error.
//
// # Configuration
//
// Detector behavior is controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.CellWorkers = 4
//	config.Debug = true
//	config.Sink = overlay.NewPNGSink("debug")
//	detector.Configure(config)
//
// Cell indices come in two flavours: Row and Col count surviving cells
// contiguously, while GridRow and GridCol keep the position between the
// detected rulings.
package tables
