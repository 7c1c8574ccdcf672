package font

import (
	"bytes"
	"fmt"
	"unicode/utf16"

	"github.com/tsawler/vellum/core"
)

// CMapError reports a malformed CMap. Font decoding falls back to the base
// encoding when a CMap fails to parse.
type CMapError struct {
	Reason string
}

func (e *CMapError) Error() string { return "cmap: " + e.Reason }

func cmapErrorf(format string, args ...interface{}) error {
	return &CMapError{Reason: fmt.Sprintf(format, args...)}
}

// CMap maps sequences of input bytes (1-4 bytes per code) to Unicode
// strings or CIDs. Codes of different byte lengths are distinct even when
// numerically equal.
type CMap struct {
	name       string
	wmode      int
	registry   string
	ordering   string
	supplement int
	usecmap    string

	codespaces []codespace
	chars      map[codeKey]string
	ranges     []bfRange
	cidChars   map[codeKey]int
	cidRanges  []cidRange

	sizes [5]bool // code byte-lengths in use, indexed 1-4
}

type codeKey struct {
	size int
	code uint32
}

type codespace struct {
	size   int
	lo, hi uint32
}

type bfRange struct {
	size   int
	lo, hi uint32
	dst    string   // starting Unicode scalar sequence, "" when dstArr set
	dstArr []string // per-code Unicode sequences
}

type cidRange struct {
	size   int
	lo, hi uint32
	base   int
}

// NewCMap creates an empty CMap.
func NewCMap() *CMap {
	return &CMap{
		chars:    make(map[codeKey]string),
		cidChars: make(map[codeKey]int),
	}
}

// NewIdentityCMap returns the predefined Identity-H/Identity-V mapping:
// two-byte codes over the full range mapping each code to itself as a CID.
func NewIdentityCMap(vertical bool) *CMap {
	cm := NewCMap()
	cm.name = "Identity-H"
	if vertical {
		cm.name = "Identity-V"
		cm.wmode = 1
	}
	cm.codespaces = append(cm.codespaces, codespace{size: 2, lo: 0x0000, hi: 0xFFFF})
	cm.cidRanges = append(cm.cidRanges, cidRange{size: 2, lo: 0x0000, hi: 0xFFFF, base: 0})
	cm.sizes[2] = true
	return cm
}

// Name returns the CMap's declared name, if any.
func (cm *CMap) Name() string { return cm.name }

// WMode returns the writing mode: 0 horizontal, 1 vertical.
func (cm *CMap) WMode() int { return cm.wmode }

// CIDSystemInfo returns the registry, ordering, and supplement.
func (cm *CMap) CIDSystemInfo() (registry, ordering string, supplement int) {
	return cm.registry, cm.ordering, cm.supplement
}

// UseCMap returns the name passed to usecmap, if any.
func (cm *CMap) UseCMap() string { return cm.usecmap }

// ParseToUnicodeCMap parses a ToUnicode CMap from a stream.
func ParseToUnicodeCMap(stream *core.Stream) (*CMap, error) {
	if stream == nil {
		return nil, cmapErrorf("stream is nil")
	}
	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode cmap stream: %w", err)
	}
	return ParseCMap(data)
}

// ParseCMap parses CMap program text. CMap files are PostScript-like, but
// the subset used is small: literal operands accumulate on a stack and a
// dozen operators consume them.
func ParseCMap(data []byte) (*CMap, error) {
	cm := NewCMap()
	lexer := core.NewLexer(bytes.NewReader(data))

	// Operand stack of the little PostScript machine. Values are
	// hexString, core.Name, int, string, []interface{} (array), or
	// map[string]interface{} (dict).
	var stack []interface{}
	pop := func() interface{} {
		if len(stack) == 0 {
			return nil
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	var sectionStart = -1 // stack depth when a begin... operator ran

	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, cmapErrorf("lex: %v", err)
		}
		if tok.Type == core.TokenEOF {
			break
		}

		switch tok.Type {
		case core.TokenComment:
			continue
		case core.TokenInteger:
			var v int
			fmt.Sscanf(string(tok.Value), "%d", &v)
			stack = append(stack, v)
		case core.TokenReal:
			stack = append(stack, string(tok.Value))
		case core.TokenName:
			stack = append(stack, core.Name(string(tok.Value)))
		case core.TokenString:
			stack = append(stack, string(tok.Value))
		case core.TokenHexString:
			digits := tok.Value
			raw := make([]byte, 0, (len(digits)+1)/2)
			for i := 0; i < len(digits); i += 2 {
				hi := hexVal(digits[i])
				lo := byte(0)
				if i+1 < len(digits) {
					lo = hexVal(digits[i+1])
				}
				raw = append(raw, hi<<4|lo)
			}
			stack = append(stack, hexString(raw))
		case core.TokenArrayStart:
			arr, err := parseCMapArray(lexer)
			if err != nil {
				return nil, err
			}
			stack = append(stack, arr)
		case core.TokenDictStart:
			dict, err := parseCMapDict(lexer)
			if err != nil {
				return nil, err
			}
			stack = append(stack, dict)
		case core.TokenDictEnd:
			return nil, cmapErrorf("unbalanced >>")
		case core.TokenKeyword, core.TokenIndirectRef:
			op := string(tok.Value)
			switch op {
			case "begincodespacerange", "beginbfchar", "beginbfrange",
				"begincidchar", "begincidrange", "beginnotdefrange":
				// The preceding entry count is not needed; the section's
				// operands are counted directly.
				if len(stack) > 0 {
					if _, ok := stack[len(stack)-1].(int); ok {
						pop()
					}
				}
				sectionStart = len(stack)
			case "endcodespacerange":
				if err := cm.addCodespaces(stack[clampStart(sectionStart, stack):]); err != nil {
					return nil, err
				}
				stack = stack[:clampStart(sectionStart, stack)]
				sectionStart = -1
			case "endbfchar":
				if err := cm.addBFChars(stack[clampStart(sectionStart, stack):]); err != nil {
					return nil, err
				}
				stack = stack[:clampStart(sectionStart, stack)]
				sectionStart = -1
			case "endbfrange":
				if err := cm.addBFRanges(stack[clampStart(sectionStart, stack):]); err != nil {
					return nil, err
				}
				stack = stack[:clampStart(sectionStart, stack)]
				sectionStart = -1
			case "endcidchar":
				if err := cm.addCIDChars(stack[clampStart(sectionStart, stack):]); err != nil {
					return nil, err
				}
				stack = stack[:clampStart(sectionStart, stack)]
				sectionStart = -1
			case "endcidrange":
				if err := cm.addCIDRanges(stack[clampStart(sectionStart, stack):]); err != nil {
					return nil, err
				}
				stack = stack[:clampStart(sectionStart, stack)]
				sectionStart = -1
			case "endnotdefrange":
				stack = stack[:clampStart(sectionStart, stack)]
				sectionStart = -1
			case "usecmap":
				if name, ok := pop().(core.Name); ok {
					cm.usecmap = string(name)
				}
			case "def":
				value := pop()
				key := pop()
				cm.define(key, value)
			case "defineresource":
				pop() // category
				value := pop()
				pop() // key
				stack = append(stack, value)
			case "findresource":
				pop() // category
				pop() // key
				stack = append(stack, map[string]interface{}{})
			case "begincmap", "endcmap", "currentdict", "end":
				// no operands consumed
			case "dict":
				pop() // capacity hint
				stack = append(stack, map[string]interface{}{})
			case "begin", "pop":
				pop()
			default:
				// Unknown operators are ignored, matching the tolerant
				// behavior of CMap consumers.
			}
		}
	}

	return cm, nil
}

func clampStart(start int, stack []interface{}) int {
	if start < 0 || start > len(stack) {
		return 0
	}
	return start
}

// hexString distinguishes hex-string operands from text strings on the
// interpreter stack.
type hexString []byte

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// parseCMapArray reads operands up to the closing bracket.
func parseCMapArray(lexer *core.Lexer) ([]interface{}, error) {
	var arr []interface{}
	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, cmapErrorf("lex array: %v", err)
		}
		switch tok.Type {
		case core.TokenEOF:
			return nil, cmapErrorf("unterminated array")
		case core.TokenArrayEnd:
			return arr, nil
		case core.TokenHexString:
			digits := tok.Value
			raw := make([]byte, 0, (len(digits)+1)/2)
			for i := 0; i < len(digits); i += 2 {
				hi := hexVal(digits[i])
				lo := byte(0)
				if i+1 < len(digits) {
					lo = hexVal(digits[i+1])
				}
				raw = append(raw, hi<<4|lo)
			}
			arr = append(arr, hexString(raw))
		case core.TokenName:
			arr = append(arr, core.Name(string(tok.Value)))
		case core.TokenInteger:
			var v int
			fmt.Sscanf(string(tok.Value), "%d", &v)
			arr = append(arr, v)
		case core.TokenString:
			arr = append(arr, string(tok.Value))
		default:
			// other element kinds are not used by CMaps
		}
	}
}

// parseCMapDict reads a dictionary of name/value pairs up to '>>'.
func parseCMapDict(lexer *core.Lexer) (map[string]interface{}, error) {
	dict := make(map[string]interface{})
	var key string
	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, cmapErrorf("lex dict: %v", err)
		}
		switch tok.Type {
		case core.TokenEOF:
			return nil, cmapErrorf("unterminated dict")
		case core.TokenDictEnd:
			return dict, nil
		case core.TokenName:
			if key == "" {
				key = string(tok.Value)
			} else {
				dict[key] = string(tok.Value)
				key = ""
			}
		case core.TokenInteger:
			var v int
			fmt.Sscanf(string(tok.Value), "%d", &v)
			if key != "" {
				dict[key] = v
				key = ""
			}
		case core.TokenString:
			if key != "" {
				dict[key] = string(tok.Value)
				key = ""
			}
		case core.TokenHexString:
			if key != "" {
				dict[key] = string(tok.Value)
				key = ""
			}
		case core.TokenKeyword:
			// "def" separating pairs inside dicts
		default:
		}
	}
}

// define records the CMap attributes set via "key value def".
func (cm *CMap) define(key, value interface{}) {
	name, ok := key.(core.Name)
	if !ok {
		return
	}
	switch string(name) {
	case "WMode":
		if v, ok := value.(int); ok {
			cm.wmode = v
		}
	case "CMapName":
		if v, ok := value.(core.Name); ok {
			cm.name = string(v)
		}
	case "CIDSystemInfo":
		if dict, ok := value.(map[string]interface{}); ok {
			if v, ok := dict["Registry"].(string); ok {
				cm.registry = v
			}
			if v, ok := dict["Ordering"].(string); ok {
				cm.ordering = v
			}
			if v, ok := dict["Supplement"].(int); ok {
				cm.supplement = v
			}
		}
	}
}

// addCodespaces consumes lo/hi pairs. Ranges of the same length must not
// overlap.
func (cm *CMap) addCodespaces(operands []interface{}) error {
	if len(operands)%2 != 0 {
		return cmapErrorf("codespacerange expects lo/hi pairs, got %d operands", len(operands))
	}
	for i := 0; i < len(operands); i += 2 {
		lo, ok1 := operands[i].(hexString)
		hi, ok2 := operands[i+1].(hexString)
		if !ok1 || !ok2 {
			return cmapErrorf("codespacerange operands must be hex strings")
		}
		if len(lo) == 0 || len(lo) != len(hi) || len(lo) > 4 {
			return cmapErrorf("codespace bounds must be 1-4 bytes of equal length")
		}
		space := codespace{size: len(lo), lo: beUint(lo), hi: beUint(hi)}
		if space.lo > space.hi {
			return cmapErrorf("codespace low %x above high %x", space.lo, space.hi)
		}
		for _, existing := range cm.codespaces {
			if existing.size == space.size && space.lo <= existing.hi && existing.lo <= space.hi {
				return cmapErrorf("overlapping codespace ranges <%0*x> and <%0*x>",
					space.size*2, space.lo, existing.size*2, existing.lo)
			}
		}
		cm.codespaces = append(cm.codespaces, space)
		cm.sizes[space.size] = true
	}
	return nil
}

// addBFChars consumes src/dst pairs; dst is a hex string of UTF-16BE code
// units or a glyph name.
func (cm *CMap) addBFChars(operands []interface{}) error {
	if len(operands)%2 != 0 {
		return cmapErrorf("bfchar expects src/dst pairs, got %d operands", len(operands))
	}
	for i := 0; i < len(operands); i += 2 {
		src, ok := operands[i].(hexString)
		if !ok || len(src) == 0 || len(src) > 4 {
			return cmapErrorf("bfchar source must be a 1-4 byte hex string")
		}
		key := codeKey{size: len(src), code: beUint(src)}
		switch dst := operands[i+1].(type) {
		case hexString:
			cm.chars[key] = utf16BEToString(dst)
		case core.Name:
			if r, ok := GlyphToRune(string(dst)); ok {
				cm.chars[key] = string(r)
			} else {
				cm.chars[key] = string(Replacement)
			}
		default:
			return cmapErrorf("bfchar destination must be a hex string or name")
		}
		cm.sizes[len(src)] = true
	}
	return nil
}

// addBFRanges consumes lo/hi/dst triples; dst is a starting hex string or
// an array of per-code hex strings. Ranges of equal code length must not
// overlap.
func (cm *CMap) addBFRanges(operands []interface{}) error {
	if len(operands)%3 != 0 {
		return cmapErrorf("bfrange expects lo/hi/dst triples, got %d operands", len(operands))
	}
	for i := 0; i < len(operands); i += 3 {
		lo, ok1 := operands[i].(hexString)
		hi, ok2 := operands[i+1].(hexString)
		if !ok1 || !ok2 || len(lo) == 0 || len(lo) != len(hi) || len(lo) > 4 {
			return cmapErrorf("bfrange bounds must be 1-4 byte hex strings of equal length")
		}
		r := bfRange{size: len(lo), lo: beUint(lo), hi: beUint(hi)}
		if r.lo > r.hi {
			return cmapErrorf("bfrange low %x above high %x", r.lo, r.hi)
		}

		switch dst := operands[i+2].(type) {
		case hexString:
			r.dst = utf16BEToString(dst)
		case []interface{}:
			if uint32(len(dst)) < r.hi-r.lo+1 {
				return cmapErrorf("bfrange array has %d entries for %d codes", len(dst), r.hi-r.lo+1)
			}
			r.dstArr = make([]string, 0, len(dst))
			for _, elem := range dst {
				switch v := elem.(type) {
				case hexString:
					r.dstArr = append(r.dstArr, utf16BEToString(v))
				case core.Name:
					if ru, ok := GlyphToRune(string(v)); ok {
						r.dstArr = append(r.dstArr, string(ru))
					} else {
						r.dstArr = append(r.dstArr, string(Replacement))
					}
				default:
					return cmapErrorf("bfrange array entries must be hex strings or names")
				}
			}
		default:
			return cmapErrorf("bfrange destination must be a hex string or array")
		}

		for _, existing := range cm.ranges {
			if existing.size == r.size && r.lo <= existing.hi && existing.lo <= r.hi {
				return cmapErrorf("overlapping bfrange <%0*x> <%0*x>", r.size*2, r.lo, r.size*2, r.hi)
			}
		}
		cm.ranges = append(cm.ranges, r)
		cm.sizes[r.size] = true
	}
	return nil
}

// addCIDChars consumes src/cid pairs.
func (cm *CMap) addCIDChars(operands []interface{}) error {
	if len(operands)%2 != 0 {
		return cmapErrorf("cidchar expects src/cid pairs, got %d operands", len(operands))
	}
	for i := 0; i < len(operands); i += 2 {
		src, ok1 := operands[i].(hexString)
		cid, ok2 := operands[i+1].(int)
		if !ok1 || !ok2 || len(src) == 0 || len(src) > 4 {
			return cmapErrorf("cidchar operands must be a hex string and an integer")
		}
		cm.cidChars[codeKey{size: len(src), code: beUint(src)}] = cid
		cm.sizes[len(src)] = true
	}
	return nil
}

// addCIDRanges consumes lo/hi/cid triples, rejecting same-length overlaps.
func (cm *CMap) addCIDRanges(operands []interface{}) error {
	if len(operands)%3 != 0 {
		return cmapErrorf("cidrange expects lo/hi/cid triples, got %d operands", len(operands))
	}
	for i := 0; i < len(operands); i += 3 {
		lo, ok1 := operands[i].(hexString)
		hi, ok2 := operands[i+1].(hexString)
		cid, ok3 := operands[i+2].(int)
		if !ok1 || !ok2 || !ok3 || len(lo) == 0 || len(lo) != len(hi) || len(lo) > 4 {
			return cmapErrorf("cidrange operands must be equal-length hex strings and an integer")
		}
		r := cidRange{size: len(lo), lo: beUint(lo), hi: beUint(hi), base: cid}
		if r.lo > r.hi {
			return cmapErrorf("cidrange low %x above high %x", r.lo, r.hi)
		}
		for _, existing := range cm.cidRanges {
			if existing.size == r.size && r.lo <= existing.hi && existing.lo <= r.hi {
				return cmapErrorf("overlapping cidrange <%0*x> <%0*x>", r.size*2, r.lo, r.size*2, r.hi)
			}
		}
		cm.cidRanges = append(cm.cidRanges, r)
		cm.sizes[r.size] = true
	}
	return nil
}

// NextCode scans the next code from data using greedy longest-match
// against the codespace ranges. When no codespace matches, the shortest
// declared code length (or one byte) is consumed with ok=false.
func (cm *CMap) NextCode(data []byte) (code uint32, size int, ok bool) {
	for size := 4; size >= 1; size-- {
		if !cm.sizes[size] || len(data) < size {
			continue
		}
		c := beUint(data[:size])
		for _, space := range cm.codespaces {
			if space.size == size && c >= space.lo && c <= space.hi {
				return c, size, true
			}
		}
	}

	// No codespace matched; consume the shortest declared length so
	// scanning makes progress.
	for size := 1; size <= 4; size++ {
		if cm.sizes[size] && len(data) >= size {
			return beUint(data[:size]), size, false
		}
	}
	if len(data) == 0 {
		return 0, 0, false
	}
	return uint32(data[0]), 1, false
}

// Lookup translates one code of the given byte length to its Unicode
// string. The second result reports whether a mapping existed.
func (cm *CMap) Lookup(code uint32, size int) (string, bool) {
	if dst, ok := cm.chars[codeKey{size: size, code: code}]; ok {
		return dst, true
	}
	for _, r := range cm.ranges {
		if r.size != size || code < r.lo || code > r.hi {
			continue
		}
		offset := code - r.lo
		if r.dstArr != nil {
			return r.dstArr[offset], true
		}
		return incrementLast(r.dst, offset), true
	}
	return "", false
}

// LookupCID translates one code to a character identifier.
func (cm *CMap) LookupCID(code uint32, size int) (int, bool) {
	if cid, ok := cm.cidChars[codeKey{size: size, code: code}]; ok {
		return cid, true
	}
	for _, r := range cm.cidRanges {
		if r.size == size && code >= r.lo && code <= r.hi {
			return r.base + int(code-r.lo), true
		}
	}
	return 0, false
}

// HasUnicodeMappings reports whether the CMap carries bfchar/bfrange data.
func (cm *CMap) HasUnicodeMappings() bool {
	return len(cm.chars) > 0 || len(cm.ranges) > 0
}

// CodeSizes returns the declared code byte-lengths in ascending order.
func (cm *CMap) CodeSizes() []int {
	var sizes []int
	for size := 1; size <= 4; size++ {
		if cm.sizes[size] {
			sizes = append(sizes, size)
		}
	}
	return sizes
}

// beUint reads up to four bytes big-endian.
func beUint(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// utf16BEToString decodes UTF-16BE bytes, including surrogate pairs. A
// single byte decodes as the code point of its value; otherwise an odd
// trailing byte is dropped.
func utf16BEToString(data []byte) string {
	if len(data) == 1 {
		return string(rune(data[0]))
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return string(utf16.Decode(units))
}

// incrementLast adds offset to the final Unicode scalar of s, the PDF rule
// for scalar bfrange destinations.
func incrementLast(s string, offset uint32) string {
	if offset == 0 || s == "" {
		return s
	}
	runes := []rune(s)
	runes[len(runes)-1] += rune(offset)
	return string(runes)
}
