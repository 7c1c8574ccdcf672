package font

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Font models a font resource for text extraction. Construction goes
// through NewType1Font, NewTrueTypeFont, NewType3Font, or NewType0Font;
// NewFont builds a bare font with standard metrics for unregistered
// resource names.
type Font struct {
	Name     string // resource name, e.g. "F1"
	BaseFont string
	Subtype  string

	// EncodingName is the declared /Encoding name, or /BaseEncoding when
	// /Encoding is a dictionary, or "" when neither applies.
	EncodingName string

	baseEncoding *EncodingTable
	differences  map[byte]string // code -> glyph name overrides
	toUnicode    *CMap
	encoding     *CMap // code scanner for composite fonts

	widths   *WidthMap
	vertical bool

	unmapped []uint32 // codes seen without a mapping since last drain
}

// NewFont creates a font with standard metrics only, used when a content
// stream selects a resource name with no matching font dictionary.
func NewFont(name, baseFont, subtype string) *Font {
	return &Font{
		Name:         name,
		BaseFont:     baseFont,
		Subtype:      subtype,
		EncodingName: "WinAnsiEncoding",
		baseEncoding: WinAnsiEncoding,
		widths:       StandardWidths(baseFont),
	}
}

// Composite reports whether the font is a Type0 (composite) font.
func (f *Font) Composite() bool { return f.Subtype == "Type0" }

// IsVertical reports whether the font uses vertical writing mode,
// indicated by an Identity-V or other /…-V encoding CMap.
func (f *Font) IsVertical() bool { return f.vertical }

// ToUnicode returns the font's ToUnicode CMap, or nil.
func (f *Font) ToUnicode() *CMap { return f.toUnicode }

// Differences returns the glyph name override for a byte code, if any.
func (f *Font) Differences(code byte) (string, bool) {
	name, ok := f.differences[code]
	return name, ok
}

// DecodeString decodes raw text-showing bytes to Unicode, normalized to
// NFC. Unmapped codes decode to U+FFFD and accumulate for UnmappedCodes.
func (f *Font) DecodeString(data []byte) string {
	var out strings.Builder

	for len(data) > 0 {
		code, size, inSpace := f.nextCode(data)
		data = data[size:]

		if s, ok := f.translate(code, size, inSpace); ok {
			out.WriteString(s)
		} else {
			out.WriteRune(Replacement)
			f.unmapped = append(f.unmapped, code)
		}
	}

	return NormalizeUnicode(out.String())
}

// UnmappedCodes drains the codes that failed to decode since the last
// call. Callers surface them as non-fatal warnings.
func (f *Font) UnmappedCodes() []uint32 {
	codes := f.unmapped
	f.unmapped = nil
	return codes
}

// nextCode scans one code from data. Simple fonts consume single bytes;
// composite fonts match greedily against the scanning CMap's codespaces,
// falling back to the ToUnicode CMap's spaces when the font has no
// encoding CMap.
func (f *Font) nextCode(data []byte) (code uint32, size int, inSpace bool) {
	if !f.Composite() {
		return uint32(data[0]), 1, true
	}
	if f.encoding != nil {
		return f.encoding.NextCode(data)
	}
	if f.toUnicode != nil {
		return f.toUnicode.NextCode(data)
	}
	// Composite font with no usable CMap: two-byte codes per Identity.
	if len(data) >= 2 {
		return uint32(data[0])<<8 | uint32(data[1]), 2, false
	}
	return uint32(data[0]), 1, false
}

// translate maps one code to its Unicode string.
func (f *Font) translate(code uint32, size int, inSpace bool) (string, bool) {
	// ToUnicode is authoritative when present.
	if f.toUnicode != nil {
		if s, ok := f.toUnicode.Lookup(code, size); ok {
			return s, true
		}
	}

	if f.Composite() {
		// Without ToUnicode the CID itself carries no Unicode meaning.
		return "", false
	}

	b := byte(code)
	if name, ok := f.differences[b]; ok {
		if r, ok := GlyphToRune(name); ok {
			return string(r), true
		}
		return "", false
	}
	if f.baseEncoding != nil && f.baseEncoding.Has(b) {
		return string(f.baseEncoding.Decode(b)), true
	}
	return "", false
}

// Width returns the advance width for a code, in 1/1000 em.
func (f *Font) Width(code uint32) float64 {
	if f.widths == nil {
		return 500
	}
	return f.widths.Lookup(int(code))
}

// StringWidth sums the advance widths of every code in data, in 1/1000 em.
func (f *Font) StringWidth(data []byte) float64 {
	total := 0.0
	for len(data) > 0 {
		code, size, _ := f.nextCode(data)
		data = data[size:]
		total += f.Width(code)
	}
	return total
}

// NormalizeUnicode normalizes decoded text to NFC so that combining
// sequences from Differences arrays and CMaps compare and embed
// consistently.
func NormalizeUnicode(s string) string {
	return norm.NFC.String(s)
}

// DecodeUTF16BE decodes big-endian UTF-16 bytes without a BOM.
func DecodeUTF16BE(data []byte) string {
	return utf16BEToString(data)
}

// DecodeUTF16LE decodes little-endian UTF-16 bytes without a BOM.
func DecodeUTF16LE(data []byte) string {
	swapped := make([]byte, len(data)&^1)
	for i := 0; i+1 < len(data); i += 2 {
		swapped[i] = data[i+1]
		swapped[i+1] = data[i]
	}
	return utf16BEToString(swapped)
}
