package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object represents a PDF object.
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType identifies the kind of a PDF object.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjIndirect
)

// String returns the name of the object type.
func (t ObjectType) String() string {
	switch t {
	case ObjNull:
		return "Null"
	case ObjBool:
		return "Bool"
	case ObjInt:
		return "Int"
	case ObjReal:
		return "Real"
	case ObjString:
		return "String"
	case ObjName:
		return "Name"
	case ObjArray:
		return "Array"
	case ObjDict:
		return "Dict"
	case ObjStream:
		return "Stream"
	case ObjIndirect:
		return "IndirectRef"
	default:
		return "Unknown"
	}
}

// Null represents the PDF null object.
type Null struct{}

func (n Null) Type() ObjectType { return ObjNull }
func (n Null) String() string   { return "null" }

// Bool represents a PDF boolean.
type Bool bool

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int represents a PDF integer.
type Int int64

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real represents a PDF real number.
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String represents a PDF string. The value holds the decoded bytes; Hex
// records whether the source syntax was a hexadecimal string.
type String struct {
	Value []byte
	Hex   bool
}

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string {
	if s.Hex {
		return fmt.Sprintf("<%X>", s.Value)
	}
	return "(" + string(s.Value) + ")"
}

// Bytes returns the string's raw bytes.
func (s String) Bytes() []byte { return s.Value }

// Text returns the string's bytes as a Go string.
func (s String) Text() string { return string(s.Value) }

// LiteralString builds a literal (non-hex) String from text.
func LiteralString(text string) String {
	return String{Value: []byte(text)}
}

// HexString builds a hex-form String from raw bytes.
func HexString(data []byte) String {
	return String{Value: data, Hex: true}
}

// Name represents a PDF name without the leading slash.
type Name string

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return "/" + string(n) }

// Array represents a PDF array.
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a) }

// Get retrieves the element at index, or nil when out of range.
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// GetInt retrieves an integer element.
func (a Array) GetInt(index int) (Int, bool) {
	i, ok := a.Get(index).(Int)
	return i, ok
}

// GetName retrieves a name element.
func (a Array) GetName(index int) (Name, bool) {
	n, ok := a.Get(index).(Name)
	return n, ok
}

// GetNumber retrieves an element that is an Int or a Real as a float64.
func (a Array) GetNumber(index int) (float64, bool) {
	return toNumber(a.Get(index))
}

// Dict represents a PDF dictionary. Key order is irrelevant; a duplicate
// key during parsing resolves to the last occurrence.
type Dict map[string]Object

func (d Dict) Type() ObjectType { return ObjDict }
func (d Dict) String() string {
	keys := d.Keys()
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("/%s %s", key, d[key].String()))
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get retrieves a value, or nil when absent.
func (d Dict) Get(key string) Object { return d[key] }

// GetName retrieves a name value.
func (d Dict) GetName(key string) (Name, bool) {
	name, ok := d[key].(Name)
	return name, ok
}

// GetInt retrieves an integer value.
func (d Dict) GetInt(key string) (Int, bool) {
	i, ok := d[key].(Int)
	return i, ok
}

// GetNumber retrieves an Int or Real value as a float64.
func (d Dict) GetNumber(key string) (float64, bool) {
	return toNumber(d[key])
}

// GetBool retrieves a boolean value.
func (d Dict) GetBool(key string) (Bool, bool) {
	b, ok := d[key].(Bool)
	return b, ok
}

// GetDict retrieves a dictionary value.
func (d Dict) GetDict(key string) (Dict, bool) {
	dict, ok := d[key].(Dict)
	return dict, ok
}

// GetArray retrieves an array value.
func (d Dict) GetArray(key string) (Array, bool) {
	arr, ok := d[key].(Array)
	return arr, ok
}

// GetString retrieves a string value.
func (d Dict) GetString(key string) (String, bool) {
	s, ok := d[key].(String)
	return s, ok
}

// GetStream retrieves a stream value.
func (d Dict) GetStream(key string) (*Stream, bool) {
	s, ok := d[key].(*Stream)
	return s, ok
}

// GetIndirectRef retrieves an indirect reference value.
func (d Dict) GetIndirectRef(key string) (IndirectRef, bool) {
	ref, ok := d[key].(IndirectRef)
	return ref, ok
}

// Has reports whether the key exists.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Set stores a value.
func (d Dict) Set(key string, value Object) { d[key] = value }

// Keys returns the dictionary keys in sorted order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new dictionary with entries of d overlaid by entries of
// child; the child wins on conflicts. Either argument may be nil.
func Merge(d, child Dict) Dict {
	merged := make(Dict, len(d)+len(child))
	for k, v := range d {
		merged[k] = v
	}
	for k, v := range child {
		merged[k] = v
	}
	return merged
}

// Stream represents a PDF stream: a dictionary plus the raw byte payload.
// The decoded payload is produced lazily by Decode and memoized.
type Stream struct {
	Dict Dict
	Data []byte

	decoded   []byte
	decodeErr error
	decodeRun bool
}

func (s *Stream) Type() ObjectType { return ObjStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict.String(), len(s.Data))
}

// IndirectRef references an indirect object by number and generation.
type IndirectRef struct {
	Number     int
	Generation int
}

func (r IndirectRef) Type() ObjectType { return ObjIndirect }
func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// IndirectObject pairs an indirect object with its reference.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}

// toNumber converts an Int or Real to float64.
func toNumber(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	default:
		return 0, false
	}
}
