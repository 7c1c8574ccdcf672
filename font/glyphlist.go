package font

import (
	"strconv"
	"strings"
)

// GlyphToRune resolves an Adobe glyph name to a rune. Names of the forms
// uniXXXX and uXXXX[XX] are decoded numerically; other names go through
// the embedded glyph list. The second result reports whether the name
// resolved.
func GlyphToRune(name string) (rune, bool) {
	if r, ok := adobeGlyphList[name]; ok {
		return r, true
	}

	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil && v <= 0x10FFFF {
			return rune(v), true
		}
	}

	// Suffixed variants like a.sc or one.oldstyle resolve via their base.
	if dot := strings.IndexByte(name, '.'); dot > 0 {
		return GlyphToRune(name[:dot])
	}

	return Replacement, false
}

// adobeGlyphList is the portion of the Adobe Glyph List covering the
// Latin repertoire of the standard encodings, embedded as static data.
var adobeGlyphList = map[string]rune{
	"space":          ' ',
	"exclam":         '!',
	"quotedbl":       '"',
	"numbersign":     '#',
	"dollar":         '$',
	"percent":        '%',
	"ampersand":      '&',
	"quotesingle":    '\'',
	"parenleft":      '(',
	"parenright":     ')',
	"asterisk":       '*',
	"plus":           '+',
	"comma":          ',',
	"hyphen":         '-',
	"period":         '.',
	"slash":          '/',
	"zero":           '0',
	"one":            '1',
	"two":            '2',
	"three":          '3',
	"four":           '4',
	"five":           '5',
	"six":            '6',
	"seven":          '7',
	"eight":          '8',
	"nine":           '9',
	"colon":          ':',
	"semicolon":      ';',
	"less":           '<',
	"equal":          '=',
	"greater":        '>',
	"question":       '?',
	"at":             '@',
	"bracketleft":    '[',
	"backslash":      '\\',
	"bracketright":   ']',
	"asciicircum":    '^',
	"underscore":     '_',
	"grave":          '`',
	"braceleft":      '{',
	"bar":            '|',
	"braceright":     '}',
	"asciitilde":     '~',
	"exclamdown":     '¡',
	"cent":           '¢',
	"sterling":       '£',
	"currency":       '¤',
	"yen":            '¥',
	"brokenbar":      '¦',
	"section":        '§',
	"dieresis":       '¨',
	"copyright":      '©',
	"ordfeminine":    'ª',
	"guillemotleft":  '«',
	"logicalnot":     '¬',
	"registered":     '®',
	"macron":         '¯',
	"degree":         '°',
	"plusminus":      '±',
	"twosuperior":    '²',
	"threesuperior":  '³',
	"acute":          '´',
	"mu":             'µ',
	"paragraph":      '¶',
	"periodcentered": '·',
	"cedilla":        '¸',
	"onesuperior":    '¹',
	"ordmasculine":   'º',
	"guillemotright": '»',
	"onequarter":     '¼',
	"onehalf":        '½',
	"threequarters":  '¾',
	"questiondown":   '¿',
	"Agrave":         'À',
	"Aacute":         'Á',
	"Acircumflex":    'Â',
	"Atilde":         'Ã',
	"Adieresis":      'Ä',
	"Aring":          'Å',
	"AE":             'Æ',
	"Ccedilla":       'Ç',
	"Egrave":         'È',
	"Eacute":         'É',
	"Ecircumflex":    'Ê',
	"Edieresis":      'Ë',
	"Igrave":         'Ì',
	"Iacute":         'Í',
	"Icircumflex":    'Î',
	"Idieresis":      'Ï',
	"Eth":            'Ð',
	"Ntilde":         'Ñ',
	"Ograve":         'Ò',
	"Oacute":         'Ó',
	"Ocircumflex":    'Ô',
	"Otilde":         'Õ',
	"Odieresis":      'Ö',
	"multiply":       '×',
	"Oslash":         'Ø',
	"Ugrave":         'Ù',
	"Uacute":         'Ú',
	"Ucircumflex":    'Û',
	"Udieresis":      'Ü',
	"Yacute":         'Ý',
	"Thorn":          'Þ',
	"germandbls":     'ß',
	"agrave":         'à',
	"aacute":         'á',
	"acircumflex":    'â',
	"atilde":         'ã',
	"adieresis":      'ä',
	"aring":          'å',
	"ae":             'æ',
	"ccedilla":       'ç',
	"egrave":         'è',
	"eacute":         'é',
	"ecircumflex":    'ê',
	"edieresis":      'ë',
	"igrave":         'ì',
	"iacute":         'í',
	"icircumflex":    'î',
	"idieresis":      'ï',
	"eth":            'ð',
	"ntilde":         'ñ',
	"ograve":         'ò',
	"oacute":         'ó',
	"ocircumflex":    'ô',
	"otilde":         'õ',
	"odieresis":      'ö',
	"divide":         '÷',
	"oslash":         'ø',
	"ugrave":         'ù',
	"uacute":         'ú',
	"ucircumflex":    'û',
	"udieresis":      'ü',
	"yacute":         'ý',
	"thorn":          'þ',
	"ydieresis":      'ÿ',
	"OE":             'Œ',
	"oe":             'œ',
	"Scaron":         'Š',
	"scaron":         'š',
	"Ydieresis":      'Ÿ',
	"Zcaron":         'Ž',
	"zcaron":         'ž',
	"Lslash":         'Ł',
	"lslash":         'ł',
	"dotlessi":       'ı',
	"florin":         'ƒ',
	"circumflex":     'ˆ',
	"caron":          'ˇ',
	"breve":          '˘',
	"dotaccent":      '˙',
	"ring":           '˚',
	"ogonek":         '˛',
	"tilde":          '˜',
	"hungarumlaut":   '˝',
	"endash":         '–',
	"emdash":         '—',
	"quoteleft":      '‘',
	"quoteright":     '’',
	"quotesinglbase": '‚',
	"quotedblleft":   '“',
	"quotedblright":  '”',
	"quotedblbase":   '„',
	"dagger":         '†',
	"daggerdbl":      '‡',
	"bullet":         '•',
	"ellipsis":       '…',
	"perthousand":    '‰',
	"guilsinglleft":  '‹',
	"guilsinglright": '›',
	"fraction":       '⁄',
	"Euro":           '€',
	"trademark":      '™',
	"minus":          '−',
	"fi":             'ﬁ',
	"fl":             'ﬂ',
	"nbspace":        '\u00a0',
	"sfthyphen":      '\u00ad',
	"middot":         '·',
	"afii61664":      '\u200c',
	"apple":          '\uf8ff',
	"notequal":       '≠',
	"infinity":       '∞',
	"lessequal":      '≤',
	"greaterequal":   '≥',
	"partialdiff":    '∂',
	"summation":      '∑',
	"product":        '∏',
	"pi":             'π',
	"integral":       '∫',
	"Omega":          'Ω',
	"radical":        '√',
	"approxequal":    '≈',
	"Delta":          'Δ',
	"lozenge":        '◊',
	"A": 'A', "B": 'B', "C": 'C', "D": 'D', "E": 'E', "F": 'F', "G": 'G',
	"H": 'H', "I": 'I', "J": 'J', "K": 'K', "L": 'L', "M": 'M', "N": 'N',
	"O": 'O', "P": 'P', "Q": 'Q', "R": 'R', "S": 'S', "T": 'T', "U": 'U',
	"V": 'V', "W": 'W', "X": 'X', "Y": 'Y', "Z": 'Z',
	"a": 'a', "b": 'b', "c": 'c', "d": 'd', "e": 'e', "f": 'f', "g": 'g',
	"h": 'h', "i": 'i', "j": 'j', "k": 'k', "l": 'l', "m": 'm', "n": 'n',
	"o": 'o', "p": 'p', "q": 'q', "r": 'r', "s": 's', "t": 't', "u": 'u',
	"v": 'v', "w": 'w', "x": 'x', "y": 'y', "z": 'z',
}
