package contentstream

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tsawler/vellum/core"
)

// Operation is a single content stream operation: an operator and the
// operands that preceded it. For the inline image operator "BI", Image
// carries the parsed image instead of Operands.
type Operation struct {
	Operator string
	Operands []core.Object
	Image    *InlineImage
}

// InlineImage is an image embedded in a content stream between BI and EI.
// Dict holds the image parameters with abbreviated keys normalized to
// their full names; Data holds the raw encoded payload.
type InlineImage struct {
	Dict core.Dict
	Data []byte
}

// Width returns the /Width entry.
func (img *InlineImage) Width() int {
	w, _ := img.Dict.GetInt("Width")
	return int(w)
}

// Height returns the /Height entry.
func (img *InlineImage) Height() int {
	h, _ := img.Dict.GetInt("Height")
	return int(h)
}

// BitsPerComponent returns the /BitsPerComponent entry, defaulting to 8.
func (img *InlineImage) BitsPerComponent() int {
	if bpc, ok := img.Dict.GetInt("BitsPerComponent"); ok {
		return int(bpc)
	}
	return 8
}

// ColorSpace returns the /ColorSpace name, or "".
func (img *InlineImage) ColorSpace() string {
	cs, _ := img.Dict.GetName("ColorSpace")
	return string(cs)
}

// Filter returns the first /Filter name, or "".
func (img *InlineImage) Filter() string {
	switch f := img.Dict.Get("Filter").(type) {
	case core.Name:
		return string(f)
	case core.Array:
		if n, ok := f.GetName(0); ok {
			return string(n)
		}
	}
	return ""
}

// DecodeParms returns the /DecodeParms entry, or nil.
func (img *InlineImage) DecodeParms() core.Object {
	return img.Dict.Get("DecodeParms")
}

// Decoded applies the image's filter chain to the raw payload.
func (img *InlineImage) Decoded() ([]byte, error) {
	stream := &core.Stream{Dict: img.Dict, Data: img.Data}
	return stream.Decode()
}

// Parser parses a content stream into operations.
type Parser struct {
	data     []byte
	pos      int
	ops      []Operation
	operands []core.Object
}

// NewParser creates a parser over raw (already decoded) content bytes.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse returns all operations in stream order.
func (p *Parser) Parse() ([]Operation, error) {
	for p.pos < len(p.data) {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			break
		}
		if err := p.parseNext(); err != nil {
			return nil, err
		}
	}

	if len(p.operands) > 0 {
		// Trailing operands with no operator; drop them but keep the
		// parsed operations usable.
		p.operands = nil
	}
	return p.ops, nil
}

// parseNext parses one operand or operator.
func (p *Parser) parseNext() error {
	start := p.pos
	p.skipWhitespace()
	if p.pos >= len(p.data) {
		return nil
	}

	c := p.data[p.pos]

	if c == '%' {
		p.skipComment()
		return nil
	}

	// Operators start with a letter or the quote forms.
	if isLetter(c) || c == '\'' || c == '"' {
		return p.parseOperator()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return fmt.Errorf("at position %d: %w", start, err)
	}
	p.operands = append(p.operands, operand)
	return nil
}

// parseOperator reads an operator keyword and emits the pending operation.
// The inline image operator BI switches to image parsing.
func (p *Parser) parseOperator() error {
	start := p.pos

	var op bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isLetter(c) || c == '\'' || c == '"' || c == '*' || c == '0' || c == '1' {
			op.WriteByte(c)
			p.pos++
		} else {
			break
		}
	}

	operator := op.String()
	if operator == "" {
		return fmt.Errorf("empty operator at position %d", start)
	}

	if operator == "BI" {
		img, err := p.parseInlineImage()
		if err != nil {
			return fmt.Errorf("inline image at position %d: %w", start, err)
		}
		p.ops = append(p.ops, Operation{Operator: "BI", Image: img})
		p.operands = p.operands[:0]
		return nil
	}

	operation := Operation{
		Operator: operator,
		Operands: make([]core.Object, len(p.operands)),
	}
	copy(operation.Operands, p.operands)
	p.ops = append(p.ops, operation)
	p.operands = p.operands[:0]
	return nil
}

// parseInlineImage parses the abbreviated dictionary after BI, the ID
// keyword, and the raw payload up to EI at a token boundary.
func (p *Parser) parseInlineImage() (*InlineImage, error) {
	dict := make(core.Dict)

	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unterminated inline image dictionary")
		}

		// The dictionary ends at the ID keyword.
		if p.data[p.pos] == 'I' && p.pos+1 < len(p.data) && p.data[p.pos+1] == 'D' {
			p.pos += 2
			break
		}

		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("expected name key at position %d, got %q", p.pos, p.data[p.pos])
		}
		keyObj, err := p.parseName()
		if err != nil {
			return nil, err
		}
		key := string(keyObj.(core.Name))

		value, err := p.parseOperand()
		if err != nil {
			return nil, fmt.Errorf("inline image value for %s: %w", key, err)
		}
		dict[normalizeImageKey(key)] = normalizeImageValue(key, value)
	}

	// One whitespace byte separates ID from the payload.
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}

	data, err := p.scanImagePayload()
	if err != nil {
		return nil, err
	}

	return &InlineImage{Dict: dict, Data: data}, nil
}

// scanImagePayload reads raw bytes until EI preceded by whitespace and
// followed by whitespace, a delimiter, or end of stream.
func (p *Parser) scanImagePayload() ([]byte, error) {
	start := p.pos
	for i := p.pos; i+1 < len(p.data); i++ {
		if p.data[i] != 'E' || p.data[i+1] != 'I' {
			continue
		}
		prevOK := i == start || isWhitespace(p.data[i-1])
		nextOK := i+2 >= len(p.data) || isWhitespace(p.data[i+2]) || isDelimiter(p.data[i+2])
		if !prevOK || !nextOK {
			continue
		}

		end := i
		// Trim the EOL separating payload from the marker.
		if end > start && p.data[end-1] == '\n' {
			end--
			if end > start && p.data[end-1] == '\r' {
				end--
			}
		} else if end > start && isWhitespace(p.data[end-1]) {
			end--
		}

		payload := make([]byte, end-start)
		copy(payload, p.data[start:end])
		p.pos = i + 2
		return payload, nil
	}
	return nil, fmt.Errorf("EI marker not found")
}

// normalizeImageKey expands the abbreviated inline image keys of ISO
// 32000-1 Table 93.
func normalizeImageKey(key string) string {
	switch key {
	case "W":
		return "Width"
	case "H":
		return "Height"
	case "BPC":
		return "BitsPerComponent"
	case "CS":
		return "ColorSpace"
	case "F":
		return "Filter"
	case "DP":
		return "DecodeParms"
	case "IM":
		return "ImageMask"
	case "D":
		return "Decode"
	case "I":
		return "Interpolate"
	default:
		return key
	}
}

// normalizeImageValue expands abbreviated color space and filter names.
func normalizeImageValue(key string, value core.Object) core.Object {
	expand := func(name core.Name) core.Name {
		switch string(name) {
		case "G":
			return "DeviceGray"
		case "RGB":
			return "DeviceRGB"
		case "CMYK":
			return "DeviceCMYK"
		case "I":
			return "Indexed"
		case "AHx":
			return "ASCIIHexDecode"
		case "A85":
			return "ASCII85Decode"
		case "LZW":
			return "LZWDecode"
		case "Fl":
			return "FlateDecode"
		case "RL":
			return "RunLengthDecode"
		case "CCF":
			return "CCITTFaxDecode"
		case "DCT":
			return "DCTDecode"
		default:
			return name
		}
	}

	if key != "CS" && key != "F" && key != "ColorSpace" && key != "Filter" {
		return value
	}
	switch v := value.(type) {
	case core.Name:
		return expand(v)
	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			if n, ok := elem.(core.Name); ok {
				out[i] = expand(n)
			} else {
				out[i] = elem
			}
		}
		return out
	default:
		return value
	}
}

// parseOperand parses a number, string, hex string, name, array,
// dictionary, boolean, or null.
func (p *Parser) parseOperand() (core.Object, error) {
	p.skipWhitespace()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]

	if c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9') {
		return p.parseNumber()
	}
	if c == '(' {
		return p.parseString()
	}
	if c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<' {
		return p.parseDict()
	}
	if c == '<' {
		return p.parseHexString()
	}
	if c == '/' {
		return p.parseName()
	}
	if c == '[' {
		return p.parseArray()
	}

	if c == 't' || c == 'f' || c == 'n' {
		end := p.pos
		for end < len(p.data) && !isWhitespace(p.data[end]) && !isDelimiter(p.data[end]) {
			end++
		}
		switch string(p.data[p.pos:end]) {
		case "true":
			p.pos = end
			return core.Bool(true), nil
		case "false":
			p.pos = end
			return core.Bool(false), nil
		case "null":
			p.pos = end
			return core.Null{}, nil
		}
	}

	return nil, fmt.Errorf("unexpected character %q", c)
}

// parseNumber parses an integer or real operand.
func (p *Parser) parseNumber() (core.Object, error) {
	start := p.pos
	hasDecimal := false

	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDecimal {
			hasDecimal = true
			p.pos++
		} else {
			break
		}
	}

	numStr := string(p.data[start:p.pos])
	if hasDecimal {
		val, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number %q: %w", numStr, err)
		}
		return core.Real(val), nil
	}
	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", numStr, err)
	}
	return core.Int(val), nil
}

// parseString parses a literal string with escapes and nesting.
func (p *Parser) parseString() (core.Object, error) {
	if p.data[p.pos] != '(' {
		return nil, fmt.Errorf("string must start with '('")
	}
	p.pos++

	var result bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]

		if c == '\\' && p.pos+1 < len(p.data) {
			p.pos++
			next := p.data[p.pos]
			switch next {
			case 'n':
				result.WriteByte('\n')
				p.pos++
			case 'r':
				result.WriteByte('\r')
				p.pos++
			case 't':
				result.WriteByte('\t')
				p.pos++
			case 'b':
				result.WriteByte('\b')
				p.pos++
			case 'f':
				result.WriteByte('\f')
				p.pos++
			case '(', ')', '\\':
				result.WriteByte(next)
				p.pos++
			case '\r':
				p.pos++
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
				p.pos++
			case '0', '1', '2', '3', '4', '5', '6', '7':
				octalVal := int(next - '0')
				p.pos++
				for i := 0; i < 2 && p.pos < len(p.data); i++ {
					digit := p.data[p.pos]
					if digit < '0' || digit > '7' {
						break
					}
					octalVal = octalVal*8 + int(digit-'0')
					p.pos++
				}
				result.WriteByte(byte(octalVal & 0xFF))
			default:
				result.WriteByte(next)
				p.pos++
			}
		} else if c == '(' {
			depth++
			result.WriteByte(c)
			p.pos++
		} else if c == ')' {
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
			p.pos++
		} else {
			result.WriteByte(c)
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unclosed string")
	}
	return core.String{Value: result.Bytes()}, nil
}

// parseHexString parses <hexdigits>; an odd final digit reads as if
// followed by 0.
func (p *Parser) parseHexString() (core.Object, error) {
	if p.data[p.pos] != '<' {
		return nil, fmt.Errorf("hex string must start with '<'")
	}
	p.pos++

	var result bytes.Buffer
	var pending byte
	havePending := false

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '>' {
			p.pos++
			if havePending {
				result.WriteByte(pending << 4)
			}
			return core.String{Value: result.Bytes(), Hex: true}, nil
		}
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit %q", c)
		}
		if havePending {
			result.WriteByte(pending<<4 | hexValue(c))
			havePending = false
		} else {
			pending = hexValue(c)
			havePending = true
		}
		p.pos++
	}

	return nil, fmt.Errorf("unclosed hex string")
}

// parseName parses a name with # escapes.
func (p *Parser) parseName() (core.Object, error) {
	if p.data[p.pos] != '/' {
		return nil, fmt.Errorf("name must start with '/'")
	}
	p.pos++

	var result bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) &&
			isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		result.WriteByte(c)
		p.pos++
	}

	return core.Name(result.String()), nil
}

// parseArray parses [ ... ] of operands.
func (p *Parser) parseArray() (core.Object, error) {
	if p.data[p.pos] != '[' {
		return nil, fmt.Errorf("array must start with '['")
	}
	p.pos++

	var arr core.Array
	for p.pos < len(p.data) {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
	return nil, fmt.Errorf("unclosed array")
}

// parseDict parses << ... >>, uncommon in content streams outside BDC/DP.
func (p *Parser) parseDict() (core.Object, error) {
	if p.pos+1 >= len(p.data) || p.data[p.pos] != '<' || p.data[p.pos+1] != '<' {
		return nil, fmt.Errorf("dictionary must start with '<<'")
	}
	p.pos += 2

	dict := make(core.Dict)
	for p.pos < len(p.data) {
		p.skipWhitespace()
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.pos >= len(p.data) {
			break
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name")
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		value, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		dict[string(key.(core.Name))] = value
	}
	return nil, fmt.Errorf("unclosed dictionary")
}

// skipComment skips from '%' to end of line. Comments are rare in content
// streams but legal outside strings.
func (p *Parser) skipComment() {
	for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
		p.pos++
	}
}

// skipWhitespace advances past PDF whitespace.
func (p *Parser) skipWhitespace() {
	for p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}
}

// Character class helpers.

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
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
