package core

import (
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver resolves indirect references. The parser needs one to
// resolve stream lengths that are stored as indirect objects.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser parses PDF objects from an io.Reader using a Lexer for
// tokenization. It supports all object types including indirect objects
// and streams.
type Parser struct {
	lexer        *Lexer
	currentToken *Token
	peekToken    *Token
	resolver     ReferenceResolver
	warnings     []string
}

// NewParser creates a parser for the given reader.
func NewParser(r io.Reader) *Parser {
	return NewParserAt(r, 0)
}

// NewParserAt creates a parser whose input begins at absolute offset base.
func NewParserAt(r io.Reader, base int64) *Parser {
	p := &Parser{
		lexer: NewLexerAt(r, base),
	}
	// Load the two-token lookahead.
	p.nextToken()
	p.nextToken()
	return p
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// Warnings returns non-fatal findings recorded while parsing, such as
// duplicate dictionary keys.
func (p *Parser) Warnings() []string {
	return p.warnings
}

func (p *Parser) warnf(format string, args ...interface{}) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// nextToken advances the parser by shifting the lookahead.
func (p *Parser) nextToken() error {
	p.currentToken = p.peekToken

	// When "stream" moves into currentToken the next bytes are binary
	// payload, so no further token may be read; parseStream takes over.
	if p.currentToken != nil &&
		p.currentToken.Type == TokenKeyword &&
		string(p.currentToken.Value) == "stream" {
		p.peekToken = nil
		return nil
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.peekToken = token
	return nil
}

// skipComments skips consecutive comment tokens.
func (p *Parser) skipComments() error {
	for p.currentToken != nil && p.currentToken.Type == TokenComment {
		if err := p.nextToken(); err != nil {
			return err
		}
	}
	return nil
}

// ParseObject parses and returns the next object from the input.
func (p *Parser) ParseObject() (Object, error) {
	if err := p.skipComments(); err != nil {
		return nil, err
	}

	if p.currentToken == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch p.currentToken.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenKeyword:
		keyword := string(p.currentToken.Value)
		switch keyword {
		case "null":
			p.nextToken()
			return Null{}, nil
		case "true":
			p.nextToken()
			return Bool(true), nil
		case "false":
			p.nextToken()
			return Bool(false), nil
		default:
			return nil, fmt.Errorf("unexpected keyword %q at position %d", keyword, p.currentToken.Pos)
		}

	case TokenInteger:
		// Integer, or the start of an indirect reference.
		return p.parseNumber()

	case TokenReal:
		val, err := strconv.ParseFloat(string(p.currentToken.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number: %w", err)
		}
		p.nextToken()
		return Real(val), nil

	case TokenString:
		val := make([]byte, len(p.currentToken.Value))
		copy(val, p.currentToken.Value)
		p.nextToken()
		return String{Value: val}, nil

	case TokenHexString:
		decoded, err := decodeHexDigits(p.currentToken.Value)
		if err != nil {
			return nil, err
		}
		p.nextToken()
		return String{Value: decoded, Hex: true}, nil

	case TokenName:
		val := string(p.currentToken.Value)
		p.nextToken()
		return Name(val), nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDict()

	default:
		return nil, fmt.Errorf("unexpected token type %v at position %d", p.currentToken.Type, p.currentToken.Pos)
	}
}

// decodeHexDigits turns raw hex digits into bytes; an odd final digit is
// treated as followed by 0.
func decodeHexDigits(digits []byte) ([]byte, error) {
	n := len(digits)
	result := make([]byte, 0, (n+1)/2)
	for i := 0; i < n; i += 2 {
		hi := digits[i]
		var lo byte = '0'
		if i+1 < n {
			lo = digits[i+1]
		}
		if !isHexDigit(hi) || !isHexDigit(lo) {
			return nil, fmt.Errorf("invalid hex string digit")
		}
		result = append(result, hexValue(hi)<<4|hexValue(lo))
	}
	return result, nil
}

// parseNumber parses an integer, real, or indirect reference. References
// are detected by "num gen R" lookahead.
func (p *Parser) parseNumber() (Object, error) {
	firstToken := string(p.currentToken.Value)

	firstInt, err := strconv.ParseInt(firstToken, 10, 64)
	if err != nil {
		f, err := strconv.ParseFloat(firstToken, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", firstToken)
		}
		p.nextToken()
		return Real(f), nil
	}

	if p.peekToken != nil && p.peekToken.Type == TokenInteger {
		secondToken := string(p.peekToken.Value)
		secondInt, err := strconv.ParseInt(secondToken, 10, 64)
		if err == nil {
			p.nextToken() // now at the second integer
			if p.peekToken != nil && p.peekToken.Type == TokenIndirectRef {
				p.nextToken() // at R
				p.nextToken() // past R
				return IndirectRef{
					Number:     int(firstInt),
					Generation: int(secondInt),
				}, nil
			}
			// Not a reference; the second integer stays current.
			return Int(firstInt), nil
		}
	}

	p.nextToken()
	return Int(firstInt), nil
}

// parseArray parses "[obj1 obj2 ...]".
func (p *Parser) parseArray() (Object, error) {
	if p.currentToken.Type != TokenArrayStart {
		return nil, fmt.Errorf("expected '[', got %v", p.currentToken.Type)
	}
	p.nextToken()

	var arr Array
	for {
		if err := p.skipComments(); err != nil {
			return nil, err
		}
		if p.currentToken == nil {
			return nil, fmt.Errorf("unexpected end of input in array")
		}
		if p.currentToken.Type == TokenArrayEnd {
			p.nextToken()
			break
		}
		if p.currentToken.Type == TokenEOF {
			return nil, fmt.Errorf("unexpected EOF in array")
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		arr = append(arr, obj)
	}

	return arr, nil
}

// parseDict parses "<< /Key value ... >>". A duplicate key resolves to the
// last occurrence and is recorded as a warning.
func (p *Parser) parseDict() (Object, error) {
	if p.currentToken.Type != TokenDictStart {
		return nil, fmt.Errorf("expected '<<', got %v", p.currentToken.Type)
	}
	p.nextToken()

	dict := make(Dict)
	for {
		if err := p.skipComments(); err != nil {
			return nil, err
		}
		if p.currentToken == nil {
			return nil, fmt.Errorf("unexpected end of input in dictionary")
		}
		if p.currentToken.Type == TokenDictEnd {
			p.nextToken()
			break
		}
		if p.currentToken.Type == TokenEOF {
			return nil, fmt.Errorf("unexpected EOF in dictionary")
		}

		if p.currentToken.Type != TokenName {
			return nil, fmt.Errorf("expected name for dictionary key, got %v at position %d",
				p.currentToken.Type, p.currentToken.Pos)
		}
		key := string(p.currentToken.Value)
		p.nextToken()

		value, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("dictionary value for key %q: %w", key, err)
		}

		if _, exists := dict[key]; exists {
			p.warnf("duplicate dictionary key /%s; last occurrence wins", key)
		}
		dict[key] = value
	}

	return dict, nil
}

// ParseIndirectObject parses "num gen obj <object> endobj", with optional
// "stream ... endstream" payload after a dictionary.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	if err := p.skipComments(); err != nil {
		return nil, err
	}

	if p.currentToken.Type != TokenInteger {
		return nil, fmt.Errorf("expected object number, got %v", p.currentToken.Type)
	}
	num, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid object number: %w", err)
	}
	p.nextToken()

	if p.currentToken.Type != TokenInteger {
		return nil, fmt.Errorf("expected generation number, got %v", p.currentToken.Type)
	}
	gen, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid generation number: %w", err)
	}
	p.nextToken()

	if p.currentToken.Type != TokenKeyword || string(p.currentToken.Value) != "obj" {
		return nil, fmt.Errorf("expected 'obj' keyword, got %v", p.currentToken)
	}
	p.nextToken()

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("indirect object value: %w", err)
	}

	if p.currentToken != nil && p.currentToken.Type == TokenKeyword && string(p.currentToken.Value) == "stream" {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("stream must follow a dictionary, got %T", obj)
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("stream: %w", err)
		}
		obj = stream
	}

	if p.currentToken == nil || p.currentToken.Type != TokenKeyword || string(p.currentToken.Value) != "endobj" {
		return nil, fmt.Errorf("expected 'endobj' keyword, got %v", p.currentToken)
	}
	p.nextToken()

	return &IndirectObject{
		Ref: IndirectRef{
			Number:     int(num),
			Generation: int(gen),
		},
		Object: obj,
	}, nil
}

// parseStream reads the binary payload after the "stream" keyword. The
// byte length comes from /Length, resolving an indirect reference through
// the configured resolver when necessary.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	if p.currentToken.Type != TokenKeyword || string(p.currentToken.Value) != "stream" {
		return nil, fmt.Errorf("expected 'stream' keyword")
	}

	lengthObj := dict.Get("Length")
	if lengthObj == nil {
		return nil, fmt.Errorf("stream dictionary missing /Length entry")
	}

	var length int
	switch v := lengthObj.(type) {
	case Int:
		length = int(v)
	case IndirectRef:
		if p.resolver == nil {
			return nil, fmt.Errorf("indirect /Length requires a reference resolver")
		}
		resolved, err := p.resolver.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("resolve stream length: %w", err)
		}
		resolvedInt, ok := resolved.(Int)
		if !ok {
			return nil, fmt.Errorf("stream length resolved to %T, expected Int", resolved)
		}
		length = int(resolvedInt)
	default:
		return nil, fmt.Errorf("invalid type for stream length: %T", lengthObj)
	}

	if length < 0 {
		return nil, fmt.Errorf("invalid stream length: %d", length)
	}

	// The lexer stopped right after the 'stream' keyword: skip the
	// mandatory EOL, then read exactly /Length bytes.
	if err := p.lexer.SkipStreamEOL(); err != nil {
		return nil, err
	}

	data, err := p.lexer.ReadBytes(length)
	if err != nil {
		return nil, fmt.Errorf("read stream data: %w", err)
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		return nil, fmt.Errorf("token after stream data: %w", err)
	}

	if token.Type != TokenKeyword || string(token.Value) != "endstream" {
		// /Length overstated or understated the payload. Trust the
		// endstream scan and note the disagreement.
		p.warnf("stream /Length %d not followed by endstream; scanning forward", length)
		extra, scanErr := p.lexer.ReadUntilMarker([]byte("endstream"))
		if scanErr != nil {
			return nil, fmt.Errorf("expected 'endstream', got %v (%s)", token.Type, token.Value)
		}
		data = append(data, token.Value...)
		data = append(data, extra...)
	}

	// Reload the two-token lookahead so the caller continues normally.
	p.currentToken = nil
	p.peekToken = nil
	p.nextToken()
	p.nextToken()

	return &Stream{
		Dict: dict,
		Data: data,
	}, nil
}
