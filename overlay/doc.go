// Package overlay provides diagnostic sinks that visualise detected grid
// lines.
//
// A [Sink] is handed to the table detector through its configuration and
// receives the rectified table image with every boundary rectangle. The
// package ships:
//
//   - [Nop] - discards everything
//   - [Recorder] - keeps calls in memory, for tests
//   - [PNGSink] - writes outlined PNG files to a directory
//   - WindowSink - shows an OpenCV window; built with the gocv tag
//
// Sinks never influence extraction results.
package overlay
