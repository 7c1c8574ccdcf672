// Package font implements PDF font decoding for text extraction.
//
// A [Font] translates the raw bytes of text-showing operands into Unicode.
// Translation prefers the font's /ToUnicode CMap; simple fonts without one
// fall back to their base encoding (WinAnsi, MacRoman, MacExpert,
// Standard, or PDFDoc) modified by a /Differences array, with glyph names
// resolved through the embedded Adobe glyph list. Composite (Type0) fonts
// scan input bytes against the CMap's codespace ranges using greedy
// longest-match before translating each code.
//
// Codes with no mapping decode to U+FFFD and are reported as non-fatal
// warnings, never as raw bytes.
package font
