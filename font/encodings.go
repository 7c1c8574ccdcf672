package font

import (
	"golang.org/x/text/encoding/charmap"
)

// EncodingTable maps single byte codes to runes for simple fonts.
type EncodingTable struct {
	name  string
	runes [256]rune
}

// Name returns the PDF name of the encoding.
func (e *EncodingTable) Name() string { return e.name }

// Decode returns the rune for a byte code, or utf8.RuneError-like
// replacement (U+FFFD) when the code has no mapping.
func (e *EncodingTable) Decode(b byte) rune {
	r := e.runes[b]
	if r == 0 {
		return Replacement
	}
	return r
}

// Has reports whether the code has a mapping.
func (e *EncodingTable) Has(b byte) bool { return e.runes[b] != 0 }

// Replacement is emitted for codes with no mapping.
const Replacement = '�'

// Predefined single-byte encodings.
var (
	WinAnsiEncoding       = fromCharmap("WinAnsiEncoding", charmap.Windows1252)
	MacRomanEncoding      = fromCharmap("MacRomanEncoding", charmap.Macintosh)
	PDFDocEncoding        = buildTable("PDFDocEncoding", pdfDocHigh)
	StandardEncodingTable = buildStandard()
	MacExpertEncoding     = buildMacExpert()
)

// GetEncoding returns a predefined encoding by its PDF name, defaulting to
// StandardEncoding for unknown names.
func GetEncoding(name string) *EncodingTable {
	switch name {
	case "WinAnsiEncoding":
		return WinAnsiEncoding
	case "MacRomanEncoding":
		return MacRomanEncoding
	case "MacExpertEncoding":
		return MacExpertEncoding
	case "PDFDocEncoding":
		return PDFDocEncoding
	case "StandardEncoding", "":
		return StandardEncodingTable
	default:
		return StandardEncodingTable
	}
}

// fromCharmap builds a table from an x/text character map.
func fromCharmap(name string, cm *charmap.Charmap) *EncodingTable {
	t := &EncodingTable{name: name}
	for i := 0; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r == '�' {
			continue
		}
		t.runes[i] = r
	}
	return t
}

// buildTable starts from ASCII identity for 0x20-0x7E and overlays the
// given high-range mappings.
func buildTable(name string, high map[byte]rune) *EncodingTable {
	t := &EncodingTable{name: name}
	for i := 0x20; i <= 0x7E; i++ {
		t.runes[i] = rune(i)
	}
	for b, r := range high {
		t.runes[b] = r
	}
	return t
}

// pdfDocHigh holds the PDFDocEncoding positions that differ from ASCII,
// per ISO 32000-1 Annex D.
var pdfDocHigh = map[byte]rune{
	0x18: '˘', // breve
	0x19: 'ˇ', // caron
	0x1A: 'ˆ', // circumflex
	0x1B: '˙', // dotaccent
	0x1C: '˝', // hungarumlaut
	0x1D: '˛', // ogonek
	0x1E: '˚', // ring
	0x1F: '˜', // tilde
	0x80: '•', // bullet
	0x81: '†', // dagger
	0x82: '‡', // daggerdbl
	0x83: '…', // ellipsis
	0x84: '—', // emdash
	0x85: '–', // endash
	0x86: 'ƒ', // florin
	0x87: '⁄', // fraction
	0x88: '‹', // guilsinglleft
	0x89: '›', // guilsinglright
	0x8A: '−', // minus
	0x8B: '‰', // perthousand
	0x8C: '„', // quotedblbase
	0x8D: '“', // quotedblleft
	0x8E: '”', // quotedblright
	0x8F: '‘', // quoteleft
	0x90: '’', // quoteright
	0x91: '‚', // quotesinglbase
	0x92: '™', // trademark
	0x93: 'ﬁ', // fi
	0x94: 'ﬂ', // fl
	0x95: 'Ł', // Lslash
	0x96: 'Œ', // OE
	0x97: 'Š', // Scaron
	0x98: 'Ÿ', // Ydieresis
	0x99: 'Ž', // Zcaron
	0x9A: 'ı', // dotlessi
	0x9B: 'ł', // lslash
	0x9C: 'œ', // oe
	0x9D: 'š', // scaron
	0x9E: 'ž', // zcaron
	0xA0: '€', // Euro
	0xA1: '¡',
	0xA2: '¢',
	0xA3: '£',
	0xA4: '¤',
	0xA5: '¥',
	0xA6: '¦',
	0xA7: '§',
	0xA8: '¨',
	0xA9: '©',
	0xAA: 'ª',
	0xAB: '«',
	0xAC: '¬',
	0xAE: '®',
	0xAF: '¯',
	0xB0: '°',
	0xB1: '±',
	0xB2: '²',
	0xB3: '³',
	0xB4: '´',
	0xB5: 'µ',
	0xB6: '¶',
	0xB7: '·',
	0xB8: '¸',
	0xB9: '¹',
	0xBA: 'º',
	0xBB: '»',
	0xBC: '¼',
	0xBD: '½',
	0xBE: '¾',
	0xBF: '¿',
	0xC0: 'À',
	0xC1: 'Á',
	0xC2: 'Â',
	0xC3: 'Ã',
	0xC4: 'Ä',
	0xC5: 'Å',
	0xC6: 'Æ',
	0xC7: 'Ç',
	0xC8: 'È',
	0xC9: 'É',
	0xCA: 'Ê',
	0xCB: 'Ë',
	0xCC: 'Ì',
	0xCD: 'Í',
	0xCE: 'Î',
	0xCF: 'Ï',
	0xD0: 'Ð',
	0xD1: 'Ñ',
	0xD2: 'Ò',
	0xD3: 'Ó',
	0xD4: 'Ô',
	0xD5: 'Õ',
	0xD6: 'Ö',
	0xD7: '×',
	0xD8: 'Ø',
	0xD9: 'Ù',
	0xDA: 'Ú',
	0xDB: 'Û',
	0xDC: 'Ü',
	0xDD: 'Ý',
	0xDE: 'Þ',
	0xDF: 'ß',
	0xE0: 'à',
	0xE1: 'á',
	0xE2: 'â',
	0xE3: 'ã',
	0xE4: 'ä',
	0xE5: 'å',
	0xE6: 'æ',
	0xE7: 'ç',
	0xE8: 'è',
	0xE9: 'é',
	0xEA: 'ê',
	0xEB: 'ë',
	0xEC: 'ì',
	0xED: 'í',
	0xEE: 'î',
	0xEF: 'ï',
	0xF0: 'ð',
	0xF1: 'ñ',
	0xF2: 'ò',
	0xF3: 'ó',
	0xF4: 'ô',
	0xF5: 'õ',
	0xF6: 'ö',
	0xF7: '÷',
	0xF8: 'ø',
	0xF9: 'ù',
	0xFA: 'ú',
	0xFB: 'û',
	0xFC: 'ü',
	0xFD: 'ý',
	0xFE: 'þ',
	0xFF: 'ÿ',
}

// buildStandard builds Adobe StandardEncoding. It is ASCII-like in the low
// range apart from the typographic quotes, with a sparse upper range.
func buildStandard() *EncodingTable {
	t := buildTable("StandardEncoding", map[byte]rune{
		0xA1: '¡', // exclamdown
		0xA2: '¢', // cent
		0xA3: '£', // sterling
		0xA4: '⁄', // fraction
		0xA5: '¥', // yen
		0xA6: 'ƒ', // florin
		0xA7: '§', // section
		0xA8: '¤', // currency
		0xA9: '\'', // quotesingle
		0xAA: '“', // quotedblleft
		0xAB: '«', // guillemotleft
		0xAC: '‹', // guilsinglleft
		0xAD: '›', // guilsinglright
		0xAE: 'ﬁ', // fi
		0xAF: 'ﬂ', // fl
		0xB1: '–', // endash
		0xB2: '†', // dagger
		0xB3: '‡', // daggerdbl
		0xB4: '·', // periodcentered
		0xB6: '¶', // paragraph
		0xB7: '•', // bullet
		0xB8: '‚', // quotesinglbase
		0xB9: '„', // quotedblbase
		0xBA: '”', // quotedblright
		0xBB: '»', // guillemotright
		0xBC: '…', // ellipsis
		0xBD: '‰', // perthousand
		0xBF: '¿', // questiondown
		0xC1: '`', // grave
		0xC2: '´', // acute
		0xC3: 'ˆ', // circumflex
		0xC4: '˜', // tilde
		0xC5: '¯', // macron
		0xC6: '˘', // breve
		0xC7: '˙', // dotaccent
		0xC8: '¨', // dieresis
		0xCA: '˚', // ring
		0xCB: '¸', // cedilla
		0xCD: '˝', // hungarumlaut
		0xCE: '˛', // ogonek
		0xCF: 'ˇ', // caron
		0xD0: '—', // emdash
		0xE1: 'Æ', // AE
		0xE3: 'ª', // ordfeminine
		0xE8: 'Ł', // Lslash
		0xE9: 'Ø', // Oslash
		0xEA: 'Œ', // OE
		0xEB: 'º', // ordmasculine
		0xF1: 'æ', // ae
		0xF5: 'ı', // dotlessi
		0xF8: 'ł', // lslash
		0xF9: 'ø', // oslash
		0xFA: 'œ', // oe
		0xFB: 'ß', // germandbls
	})
	// StandardEncoding renders 0x27 and 0x60 as typographic quotes.
	t.runes[0x27] = '’'
	t.runes[0x60] = '‘'
	return t
}

// buildMacExpert builds the positions of MacExpertEncoding that carry
// ordinary Unicode equivalents. The encoding is dominated by small-cap and
// fitted figures without Unicode counterparts; those stay unmapped and
// decode as U+FFFD.
func buildMacExpert() *EncodingTable {
	t := &EncodingTable{name: "MacExpertEncoding"}
	for b, r := range map[byte]rune{
		0x20: ' ',      // space
		0x27: '\u2019', // quotesingle (typographic form)
		0x2C: ',',      // comma
		0x2D: '-',      // hyphen
		0x2E: '.',      // period
		0x2F: '\u2044', // fraction
		0x3A: ':',      // colon
		0x3B: ';',      // semicolon
		0x56: '\ufb01', // fi
		0x57: '\ufb02', // fl
		0xBC: '\u00bc', // onequarter
		0xBD: '\u00bd', // onehalf
		0xBE: '\u00be', // threequarters
	} {
		t.runes[b] = r
	}
	// Oldstyle figures decode to the plain digits.
	for i := 0; i <= 9; i++ {
		t.runes[0x30+i] = rune('0' + i)
	}
	return t
}
