package vellum

import (
	"fmt"
	"sort"

	"github.com/tsawler/vellum/reader"
	"github.com/tsawler/vellum/viewer"
)

// Extractor is the fluent front door: configure with chained calls, then
// finish with a terminal operation (Text, Canvases, PageCount).
type Extractor struct {
	filename string
	reader   *reader.Reader
	pages    []int // 1-based selection; empty means all pages
	err      error
}

// Pages restricts terminal operations to the given 1-based page numbers,
// processed in ascending order.
func (e *Extractor) Pages(numbers ...int) *Extractor {
	e.pages = append(e.pages, numbers...)
	return e
}

// open ensures the reader is available. An Extractor built by FromReader
// never owns the reader.
func (e *Extractor) open() (*reader.Reader, bool, error) {
	if e.err != nil {
		return nil, false, e.err
	}
	if e.reader != nil {
		return e.reader, false, nil
	}
	r, err := reader.Open(e.filename)
	if err != nil {
		e.err = err
		return nil, false, err
	}
	return r, true, nil
}

// selection returns the 1-based pages to process.
func (e *Extractor) selection(count int) []int {
	if len(e.pages) == 0 {
		all := make([]int, count)
		for i := range all {
			all[i] = i + 1
		}
		return all
	}
	selected := append([]int(nil), e.pages...)
	sort.Ints(selected)
	out := selected[:0]
	for _, n := range selected {
		if n >= 1 && n <= count && (len(out) == 0 || out[len(out)-1] != n) {
			out = append(out, n)
		}
	}
	return out
}

// PageCount returns the number of pages in the document.
func (e *Extractor) PageCount() (int, error) {
	r, owned, err := e.open()
	if err != nil {
		return 0, err
	}
	if owned {
		defer r.Close()
	}
	return r.PageCount()
}

// Text renders the selected pages and returns their extracted text
// joined by form feeds, along with accumulated warnings.
func (e *Extractor) Text() (string, []Warning, error) {
	canvases, warnings, err := e.Canvases()
	if err != nil {
		return "", warnings, err
	}

	out := ""
	for i, c := range canvases {
		if i > 0 {
			out += "\f"
		}
		out += c.Text()
	}
	return out, warnings, nil
}

// Canvases renders the selected pages and returns their canvases in page
// order.
func (e *Extractor) Canvases() ([]*viewer.Canvas, []Warning, error) {
	r, owned, err := e.open()
	if err != nil {
		return nil, nil, err
	}
	if owned {
		defer r.Close()
	}

	count, err := r.PageCount()
	if err != nil {
		return nil, r.Warnings(), err
	}

	v := viewer.New(r)
	var canvases []*viewer.Canvas
	for _, pageNum := range e.selection(count) {
		if err := v.Navigate(pageNum); err != nil {
			return canvases, r.Warnings(), fmt.Errorf("page %d: %w", pageNum, err)
		}
		canvas, err := v.Render()
		if err != nil {
			return canvases, r.Warnings(), fmt.Errorf("page %d: %w", pageNum, err)
		}
		canvases = append(canvases, canvas)
	}

	return canvases, r.Warnings(), nil
}

// Images extracts the image XObjects of the selected pages.
func (e *Extractor) Images() ([]reader.PageImage, []Warning, error) {
	r, owned, err := e.open()
	if err != nil {
		return nil, nil, err
	}
	if owned {
		defer r.Close()
	}

	count, err := r.PageCount()
	if err != nil {
		return nil, r.Warnings(), err
	}

	var images []reader.PageImage
	for _, pageNum := range e.selection(count) {
		page, err := r.GetPage(pageNum - 1)
		if err != nil {
			return images, r.Warnings(), fmt.Errorf("page %d: %w", pageNum, err)
		}
		pageImages, err := r.ExtractPageImages(page)
		if err != nil {
			return images, r.Warnings(), fmt.Errorf("page %d: %w", pageNum, err)
		}
		images = append(images, pageImages...)
	}

	return images, r.Warnings(), nil
}
