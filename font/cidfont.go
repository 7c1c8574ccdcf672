package font

import (
	"fmt"
	"strings"

	"github.com/tsawler/vellum/core"
)

// NewType0Font builds a Font from a composite (/Subtype /Type0) font
// dictionary. The /Encoding entry names a predefined CMap (Identity-H,
// Identity-V) or references an embedded CMap stream; it drives the
// byte-sequence-to-code scanning. /ToUnicode provides the code-to-Unicode
// translation, and the descendant CIDFont carries the metrics (/W, /DW).
func NewType0Font(name string, dict core.Dict, resolve ResolverFunc) (*Font, error) {
	baseFont, _ := dict.GetName("BaseFont")

	f := &Font{
		Name:     name,
		BaseFont: string(baseFont),
		Subtype:  "Type0",
	}

	if err := f.loadCompositeEncoding(dict, resolve); err != nil {
		return nil, err
	}
	f.loadToUnicode(dict, resolve)

	descendant, err := descendantFont(dict, resolve)
	if err != nil {
		return nil, err
	}
	if descendant != nil {
		f.loadCIDWidths(descendant, resolve)
	} else {
		f.widths = NewWidthMap(1000)
	}

	return f, nil
}

// loadCompositeEncoding reads /Encoding: a predefined CMap name or an
// embedded CMap stream.
func (f *Font) loadCompositeEncoding(dict core.Dict, resolve ResolverFunc) error {
	encObj := dict.Get("Encoding")
	if encObj == nil {
		f.encoding = NewIdentityCMap(false)
		return nil
	}
	encResolved, err := resolveIfRef(encObj, resolve)
	if err != nil {
		return fmt.Errorf("resolve /Encoding: %w", err)
	}

	switch enc := encResolved.(type) {
	case core.Name:
		f.EncodingName = string(enc)
		f.vertical = strings.HasSuffix(string(enc), "-V")
		// Identity CMaps are embedded; other predefined CMaps degrade to
		// identity scanning, which covers the common two-byte case.
		f.encoding = NewIdentityCMap(f.vertical)

	case *core.Stream:
		cmap, err := ParseToUnicodeCMap(enc)
		if err != nil {
			return fmt.Errorf("parse encoding cmap: %w", err)
		}
		f.encoding = cmap
		f.EncodingName = cmap.Name()
		f.vertical = cmap.WMode() == 1

	default:
		return fmt.Errorf("invalid /Encoding type: %T", encResolved)
	}

	return nil
}

// descendantFont returns the single CIDFont from /DescendantFonts.
func descendantFont(dict core.Dict, resolve ResolverFunc) (core.Dict, error) {
	dfObj := dict.Get("DescendantFonts")
	if dfObj == nil {
		return nil, nil
	}
	dfResolved, err := resolveIfRef(dfObj, resolve)
	if err != nil {
		return nil, fmt.Errorf("resolve /DescendantFonts: %w", err)
	}
	dfArr, ok := dfResolved.(core.Array)
	if !ok || len(dfArr) == 0 {
		return nil, fmt.Errorf("invalid /DescendantFonts: %v", dfResolved)
	}
	elemResolved, err := resolveIfRef(dfArr[0], resolve)
	if err != nil {
		return nil, fmt.Errorf("resolve descendant font: %w", err)
	}
	descendant, ok := elemResolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("descendant font is %T, expected dictionary", elemResolved)
	}
	return descendant, nil
}

// loadCIDWidths reads the descendant's /DW default and /W array. The /W
// array alternates between "c [w1 w2 ...]" runs and "cFirst cLast w"
// triples.
func (f *Font) loadCIDWidths(descendant core.Dict, resolve ResolverFunc) {
	defaultWidth := 1000.0
	if dw, ok := descendant.GetNumber("DW"); ok {
		defaultWidth = dw
	}
	w := NewWidthMap(defaultWidth)
	f.widths = w

	wObj := descendant.Get("W")
	if wObj == nil {
		return
	}
	wResolved, err := resolveIfRef(wObj, resolve)
	if err != nil {
		return
	}
	wArr, ok := wResolved.(core.Array)
	if !ok {
		return
	}

	i := 0
	for i < len(wArr) {
		firstObj, err := resolveIfRef(wArr[i], resolve)
		if err != nil {
			return
		}
		first, ok := firstObj.(core.Int)
		if !ok {
			return
		}
		if i+1 >= len(wArr) {
			return
		}

		secondObj, err := resolveIfRef(wArr[i+1], resolve)
		if err != nil {
			return
		}
		switch second := secondObj.(type) {
		case core.Array:
			linear := make([]float64, 0, len(second))
			for j := range second {
				if v, ok := second.GetNumber(j); ok {
					linear = append(linear, v)
				} else {
					linear = append(linear, defaultWidth)
				}
			}
			w.AddLinear(int(first), linear)
			i += 2
		case core.Int:
			if i+2 >= len(wArr) {
				return
			}
			lastInt := second
			widthObj, err := resolveIfRef(wArr[i+2], resolve)
			if err != nil {
				return
			}
			var width float64
			switch v := widthObj.(type) {
			case core.Int:
				width = float64(v)
			case core.Real:
				width = float64(v)
			default:
				return
			}
			w.AddFixed(int(first), int(lastInt), width)
			i += 3
		default:
			return
		}
	}
}
