package font

import (
	"fmt"

	"github.com/tsawler/vellum/core"
)

// ResolverFunc follows an indirect reference to its object.
type ResolverFunc func(ref core.IndirectRef) (core.Object, error)

// resolveIfRef follows obj when it is a reference; other objects pass
// through.
func resolveIfRef(obj core.Object, resolve ResolverFunc) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		if resolve == nil {
			return nil, fmt.Errorf("unresolvable reference %s", ref)
		}
		return resolve(ref)
	}
	return obj, nil
}

// NewSimpleFont builds a Font from a simple font dictionary (Type1,
// TrueType, Type3, or MMType1). The font's encoding comes from /Encoding —
// a predefined name or a dictionary with /BaseEncoding and /Differences —
// and /ToUnicode takes precedence for text extraction when present.
func NewSimpleFont(name string, dict core.Dict, resolve ResolverFunc) (*Font, error) {
	subtype, _ := dict.GetName("Subtype")
	baseFont, _ := dict.GetName("BaseFont")

	f := &Font{
		Name:     name,
		BaseFont: string(baseFont),
		Subtype:  string(subtype),
	}

	if err := f.loadSimpleEncoding(dict, resolve); err != nil {
		return nil, err
	}
	f.loadToUnicode(dict, resolve)
	f.loadSimpleWidths(dict, resolve)

	return f, nil
}

// NewType1Font builds a Font from a /Subtype /Type1 dictionary.
func NewType1Font(name string, dict core.Dict, resolve ResolverFunc) (*Font, error) {
	return NewSimpleFont(name, dict, resolve)
}

// NewTrueTypeFont builds a Font from a /Subtype /TrueType dictionary.
func NewTrueTypeFont(name string, dict core.Dict, resolve ResolverFunc) (*Font, error) {
	return NewSimpleFont(name, dict, resolve)
}

// NewType3Font builds a Font from a /Subtype /Type3 dictionary. Type3
// glyph procedures are not executed; decoding uses /Encoding and
// /ToUnicode like the other simple fonts.
func NewType3Font(name string, dict core.Dict, resolve ResolverFunc) (*Font, error) {
	return NewSimpleFont(name, dict, resolve)
}

// loadSimpleEncoding reads /Encoding as a name or a dictionary with
// /BaseEncoding and /Differences.
func (f *Font) loadSimpleEncoding(dict core.Dict, resolve ResolverFunc) error {
	f.baseEncoding = StandardEncodingTable

	encObj := dict.Get("Encoding")
	if encObj == nil {
		return nil
	}
	encResolved, err := resolveIfRef(encObj, resolve)
	if err != nil {
		return fmt.Errorf("resolve /Encoding: %w", err)
	}

	switch enc := encResolved.(type) {
	case core.Name:
		f.EncodingName = string(enc)
		f.baseEncoding = GetEncoding(string(enc))

	case core.Dict:
		if base, ok := enc.GetName("BaseEncoding"); ok {
			f.EncodingName = string(base)
			f.baseEncoding = GetEncoding(string(base))
		}
		diffObj := enc.Get("Differences")
		if diffObj == nil {
			return nil
		}
		diffResolved, err := resolveIfRef(diffObj, resolve)
		if err != nil {
			return fmt.Errorf("resolve /Differences: %w", err)
		}
		diffs, ok := diffResolved.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Differences type: %T", diffResolved)
		}
		f.differences = parseDifferences(diffs)

	default:
		return fmt.Errorf("invalid /Encoding type: %T", encResolved)
	}

	return nil
}

// parseDifferences walks a /Differences array: each integer sets the next
// code, each following name maps one code and increments.
func parseDifferences(diffs core.Array) map[byte]string {
	out := make(map[byte]string)
	code := 0
	for _, elem := range diffs {
		switch v := elem.(type) {
		case core.Int:
			code = int(v)
		case core.Name:
			if code >= 0 && code <= 0xFF {
				out[byte(code)] = string(v)
			}
			code++
		}
	}
	return out
}

// loadToUnicode attaches the /ToUnicode CMap when present and parseable.
// A malformed CMap is dropped so decoding falls back to the encoding.
func (f *Font) loadToUnicode(dict core.Dict, resolve ResolverFunc) {
	tuObj := dict.Get("ToUnicode")
	if tuObj == nil {
		return
	}
	tuResolved, err := resolveIfRef(tuObj, resolve)
	if err != nil {
		return
	}
	stream, ok := tuResolved.(*core.Stream)
	if !ok {
		return
	}
	if cmap, err := ParseToUnicodeCMap(stream); err == nil && cmap.HasUnicodeMappings() {
		f.toUnicode = cmap
	}
}

// loadSimpleWidths reads /FirstChar, /LastChar, /Widths, and the
// descriptor's /MissingWidth, falling back to Standard 14 metrics.
func (f *Font) loadSimpleWidths(dict core.Dict, resolve ResolverFunc) {
	missing := 0.0
	if fdObj := dict.Get("FontDescriptor"); fdObj != nil {
		if fdResolved, err := resolveIfRef(fdObj, resolve); err == nil {
			if fd, ok := fdResolved.(core.Dict); ok {
				if mw, ok := fd.GetNumber("MissingWidth"); ok {
					missing = mw
				}
			}
		}
	}

	widthsObj := dict.Get("Widths")
	if widthsObj == nil {
		f.widths = StandardWidths(f.BaseFont)
		return
	}
	widthsResolved, err := resolveIfRef(widthsObj, resolve)
	if err != nil {
		f.widths = StandardWidths(f.BaseFont)
		return
	}
	widthsArr, ok := widthsResolved.(core.Array)
	if !ok {
		f.widths = StandardWidths(f.BaseFont)
		return
	}

	first := 0
	if fc, ok := dict.GetInt("FirstChar"); ok {
		first = int(fc)
	}

	linear := make([]float64, 0, len(widthsArr))
	for i := range widthsArr {
		elem, err := resolveIfRef(widthsArr[i], resolve)
		if err != nil {
			linear = append(linear, missing)
			continue
		}
		switch v := elem.(type) {
		case core.Int:
			linear = append(linear, float64(v))
		case core.Real:
			linear = append(linear, float64(v))
		default:
			linear = append(linear, missing)
		}
	}

	w := NewWidthMap(missing)
	w.AddLinear(first, linear)
	f.widths = w
}
