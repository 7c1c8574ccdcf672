package viewer

import (
	"bytes"
	"fmt"

	"github.com/tsawler/vellum/contentstream"
	"github.com/tsawler/vellum/core"
	"github.com/tsawler/vellum/font"
	"github.com/tsawler/vellum/pages"
	"github.com/tsawler/vellum/reader"
)

// Viewer navigates a document's pages and renders them onto a canvas.
// Navigation is 1-based. The canvas is created fresh on every navigation
// and filled by Render.
type Viewer struct {
	reader  *reader.Reader
	current int // 1-based page number, 0 before first navigation
	page    *pages.Page
	canvas  *Canvas

	// fontCache holds fonts already built for this document, keyed by the
	// font dictionary's indirect reference. CMaps parse once per font.
	fontCache map[core.IndirectRef]*font.Font
}

// New creates a viewer over an open reader.
func New(r *reader.Reader) *Viewer {
	return &Viewer{
		reader:    r,
		canvas:    NewCanvas(),
		fontCache: make(map[core.IndirectRef]*font.Font),
	}
}

// Open opens a file and returns a viewer positioned before the first
// page.
func Open(filename string) (*Viewer, error) {
	r, err := reader.Open(filename)
	if err != nil {
		return nil, err
	}
	return New(r), nil
}

// Reader returns the underlying document reader.
func (v *Viewer) Reader() *reader.Reader { return v.reader }

// Canvas returns the current canvas.
func (v *Viewer) Canvas() *Canvas { return v.canvas }

// CurrentPage returns the 1-based page number, or 0 before navigation.
func (v *Viewer) CurrentPage() int { return v.current }

// Page returns the current page view, or nil before navigation.
func (v *Viewer) Page() *pages.Page { return v.page }

// Navigate moves to the given 1-based page, resetting the canvas.
func (v *Viewer) Navigate(pageNumber int) error {
	count, err := v.reader.PageCount()
	if err != nil {
		return err
	}
	if pageNumber < 1 || pageNumber > count {
		return fmt.Errorf("page %d out of range [1, %d]", pageNumber, count)
	}

	page, err := v.reader.GetPage(pageNumber - 1)
	if err != nil {
		return err
	}

	v.current = pageNumber
	v.page = page
	v.canvas = NewCanvas()
	return nil
}

// Next moves to the following page.
func (v *Viewer) Next() error {
	return v.Navigate(v.current + 1)
}

// Prev moves to the preceding page.
func (v *Viewer) Prev() error {
	return v.Navigate(v.current - 1)
}

// Render interprets the current page's content streams onto the canvas
// and returns it. Multiple /Contents streams are concatenated with a
// single space separator before parsing.
func (v *Viewer) Render() (*Canvas, error) {
	if v.page == nil {
		return nil, fmt.Errorf("no page selected; call Navigate first")
	}

	v.canvas = NewCanvas()

	streams, err := v.page.Contents()
	if err != nil {
		return nil, fmt.Errorf("page %d contents: %w", v.current, err)
	}

	var data bytes.Buffer
	for i, stream := range streams {
		decoded, err := stream.Decode()
		if err != nil {
			v.reader.Warn(reader.WarnFilter, "page %d content stream %d: %v", v.current, i, err)
			continue
		}
		if data.Len() > 0 {
			data.WriteByte(' ')
		}
		data.Write(decoded)
	}
	if data.Len() == 0 {
		return v.canvas, nil
	}

	ops, err := contentstream.NewParser(data.Bytes()).Parse()
	if err != nil {
		return nil, fmt.Errorf("page %d content stream: %w", v.current, err)
	}

	resources, err := v.page.Resources()
	if err != nil {
		v.reader.Warn(reader.WarnSyntax, "page %d resources: %v", v.current, err)
		resources = make(core.Dict)
	}

	interp := NewInterpreter(v.canvas, v.reader.ResolveReference, v.buildFonts,
		func(format string, args ...interface{}) {
			v.reader.Warn(reader.WarnInterpreter, "page %d: %s", v.current, fmt.Sprintf(format, args...))
		})
	interp.Run(ops, resources)

	return v.canvas, nil
}

// buildFonts constructs the fonts of a resource dictionary, reusing
// document-cached fonts for font dictionaries referenced indirectly.
func (v *Viewer) buildFonts(resources core.Dict) map[string]*font.Font {
	fonts := make(map[string]*font.Font)

	fontDictObj := resources.Get("Font")
	if fontDictObj == nil {
		return fonts
	}
	fontDictResolved, err := v.reader.Resolve(fontDictObj)
	if err != nil {
		v.reader.Warn(reader.WarnFont, "page %d: resolve font dictionary: %v", v.current, err)
		return fonts
	}
	fontDicts, ok := fontDictResolved.(core.Dict)
	if !ok {
		return fonts
	}

	for _, name := range fontDicts.Keys() {
		entry := fontDicts.Get(name)

		if ref, ok := entry.(core.IndirectRef); ok {
			if cached, ok := v.fontCache[ref]; ok {
				fonts[name] = cached
				continue
			}
		}

		resolved, err := v.reader.Resolve(entry)
		if err != nil {
			v.reader.Warn(reader.WarnFont, "page %d: font /%s: %v", v.current, name, err)
			continue
		}
		dict, ok := resolved.(core.Dict)
		if !ok {
			v.reader.Warn(reader.WarnFont, "page %d: font /%s is %T", v.current, name, resolved)
			continue
		}

		built, err := font.Build(name, dict, v.reader.ResolveReference)
		if err != nil {
			v.reader.Warn(reader.WarnFont, "page %d: font /%s: %v", v.current, name, err)
			continue
		}

		fonts[name] = built
		if ref, ok := entry.(core.IndirectRef); ok {
			v.fontCache[ref] = built
		}
	}

	return fonts
}
