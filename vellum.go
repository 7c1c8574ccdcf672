// Package vellum reads PDF documents: it exposes the document object
// graph (catalog, page tree, page resources) and renders page content
// streams into canvases of decoded text, images, and operator listings.
//
// Basic usage:
//
//	text, warnings, err := vellum.Open("document.pdf").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println(vellum.FormatWarnings(warnings))
//	}
//
// With page selection:
//
//	text, _, err := vellum.Open("report.pdf").Pages(1, 2, 3).Text()
//
// The lower-level reader and viewer packages expose the document graph
// and the rendering canvas directly.
package vellum

import (
	"strings"

	"github.com/tsawler/vellum/reader"
)

// Warning is a non-fatal finding accumulated while reading.
type Warning = reader.Warning

// Open opens a PDF file and returns an Extractor for fluent
// configuration. The Extractor is closed by its terminal operations.
func Open(filename string) *Extractor {
	return &Extractor{filename: filename}
}

// FromReader creates an Extractor over an already-open reader. The caller
// keeps ownership of the reader and closes it.
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{reader: r}
}

// FormatWarnings renders warnings one per line for display.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// Must unwraps (value, error), panicking on error. For scripts and tests.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText unwraps (value, warnings, error), discarding warnings and
// panicking on error.
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
