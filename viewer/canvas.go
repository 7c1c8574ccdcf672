package viewer

import (
	"github.com/tsawler/vellum/contentstream"
	"github.com/tsawler/vellum/core"
)

// Image references an image XObject drawn by a Do operator.
type Image struct {
	Name   string // resource name
	Stream *core.Stream
}

// Width returns the /Width entry.
func (img *Image) Width() int {
	w, _ := img.Stream.Dict.GetInt("Width")
	return int(w)
}

// Height returns the /Height entry.
func (img *Image) Height() int {
	h, _ := img.Stream.Dict.GetInt("Height")
	return int(h)
}

// BitsPerComponent returns the /BitsPerComponent entry, defaulting to 8.
func (img *Image) BitsPerComponent() int {
	if bpc, ok := img.Stream.Dict.GetInt("BitsPerComponent"); ok {
		return int(bpc)
	}
	return 8
}

// ColorSpace returns the /ColorSpace entry's name form, or "".
func (img *Image) ColorSpace() string {
	switch cs := img.Stream.Dict.Get("ColorSpace").(type) {
	case core.Name:
		return string(cs)
	case core.Array:
		if n, ok := cs.GetName(0); ok {
			return string(n)
		}
	}
	return ""
}

// Filter returns the first declared filter name, or "".
func (img *Image) Filter() string {
	if names := img.Stream.Filters(); len(names) > 0 {
		return names[0]
	}
	return ""
}

// DecodeParms returns the /DecodeParms entry, or nil.
func (img *Image) DecodeParms() core.Object {
	return img.Stream.Dict.Get("DecodeParms")
}

// Decoded returns the image payload after the filter pipeline.
func (img *Image) Decoded() ([]byte, error) {
	return img.Stream.Decode()
}

// Form records one form XObject invocation.
type Form struct {
	Name   string
	Stream *core.Stream
}

// Canvas accumulates interpreter output for a single page.
//
// Strings holds the decoded Unicode fragments in content-stream order of
// the text-showing operators that produced them, left to right within TJ
// arrays. InlineImages and Images are in encounter order, with form
// XObject contents interleaved at the point of the invoking Do.
// TextContent reproduces the page's own content stream with string
// operands in decoded form.
type Canvas struct {
	Strings      []string
	InlineImages []*contentstream.InlineImage
	Images       []*Image
	Forms        []*Form
	TextContent  string
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{
		Strings:      []string{},
		InlineImages: []*contentstream.InlineImage{},
		Images:       []*Image{},
		Forms:        []*Form{},
	}
}

// Text joins the extracted string fragments.
func (c *Canvas) Text() string {
	out := ""
	for _, s := range c.Strings {
		out += s
	}
	return out
}
