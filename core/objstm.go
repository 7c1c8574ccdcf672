package core

import (
	"bytes"
	"fmt"
)

// ObjectStream represents a PDF object stream (/Type /ObjStm, PDF 1.5+).
// Object streams pack multiple non-stream objects into one compressed
// stream for better compression.
type ObjectStream struct {
	stream  *Stream
	n       int          // number of objects in the stream
	first   int          // byte offset of the first object in the decoded data
	extends *IndirectRef // optional reference to an extended object stream
	objects map[int]Object
	offsets []objectStreamOffset
	decoded []byte
}

// objectStreamOffset pairs an object number with its byte offset within
// the decoded data, relative to First.
type objectStreamOffset struct {
	ObjNum int
	Offset int
}

// NewObjectStream wraps a stream with /Type /ObjStm. The required /N and
// /First entries are validated eagerly; decoding is deferred.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}

	typeName, ok := stream.Dict.GetName("Type")
	if !ok || typeName != "ObjStm" {
		return nil, fmt.Errorf("stream is not an object stream, got type %v", stream.Dict.Get("Type"))
	}

	nInt, ok := stream.Dict.GetInt("N")
	if !ok {
		return nil, fmt.Errorf("object stream missing /N")
	}
	n := int(nInt)
	if n < 0 {
		return nil, fmt.Errorf("invalid /N value: %d", n)
	}

	firstInt, ok := stream.Dict.GetInt("First")
	if !ok {
		return nil, fmt.Errorf("object stream missing /First")
	}
	first := int(firstInt)
	if first < 0 {
		return nil, fmt.Errorf("invalid /First value: %d", first)
	}

	var extends *IndirectRef
	if extendsObj := stream.Dict.Get("Extends"); extendsObj != nil {
		ref, ok := extendsObj.(IndirectRef)
		if !ok {
			return nil, fmt.Errorf("invalid /Extends type: %T", extendsObj)
		}
		extends = &ref
	}

	return &ObjectStream{
		stream:  stream,
		n:       n,
		first:   first,
		extends: extends,
		objects: make(map[int]Object),
	}, nil
}

// N returns the number of objects stored in the stream.
func (os *ObjectStream) N() int { return os.n }

// First returns the byte offset to the first object's data in the decoded
// stream. The header of object-number/offset pairs precedes it.
func (os *ObjectStream) First() int { return os.first }

// Extends returns the reference to the object stream this one extends, or
// nil.
func (os *ObjectStream) Extends() *IndirectRef { return os.extends }

// decode decodes the payload and parses the header, once.
func (os *ObjectStream) decode() error {
	if os.decoded != nil {
		return nil
	}

	decoded, err := os.stream.Decode()
	if err != nil {
		return fmt.Errorf("decode object stream: %w", err)
	}
	os.decoded = decoded

	if err := os.parseHeader(); err != nil {
		return fmt.Errorf("parse object stream header: %w", err)
	}
	return nil
}

// parseHeader parses N pairs of "objNum offset" integers preceding First.
func (os *ObjectStream) parseHeader() error {
	if os.first > len(os.decoded) {
		return fmt.Errorf("/First offset %d exceeds decoded length %d", os.first, len(os.decoded))
	}

	parser := NewParser(bytes.NewReader(os.decoded[:os.first]))
	os.offsets = make([]objectStreamOffset, 0, os.n)

	for i := 0; i < os.n; i++ {
		objNumObj, err := parser.ParseObject()
		if err != nil {
			return fmt.Errorf("object number %d: %w", i, err)
		}
		objNum, ok := objNumObj.(Int)
		if !ok {
			return fmt.Errorf("object number %d is not an integer: %T", i, objNumObj)
		}

		offsetObj, err := parser.ParseObject()
		if err != nil {
			return fmt.Errorf("offset %d: %w", i, err)
		}
		offset, ok := offsetObj.(Int)
		if !ok {
			return fmt.Errorf("offset %d is not an integer: %T", i, offsetObj)
		}

		os.offsets = append(os.offsets, objectStreamOffset{
			ObjNum: int(objNum),
			Offset: int(offset),
		})
	}

	return nil
}

// GetObjectByIndex extracts the object at a 0-based index within the
// stream, returning the object and its object number.
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}

	if index < 0 || index >= len(os.offsets) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.offsets))
	}

	if obj, ok := os.objects[index]; ok {
		return obj, os.offsets[index].ObjNum, nil
	}

	offset := os.first + os.offsets[index].Offset
	endOffset := len(os.decoded)
	if index+1 < len(os.offsets) {
		endOffset = os.first + os.offsets[index+1].Offset
	}

	if offset >= len(os.decoded) {
		return nil, 0, fmt.Errorf("object offset %d exceeds decoded length %d", offset, len(os.decoded))
	}
	if endOffset > len(os.decoded) {
		endOffset = len(os.decoded)
	}

	parser := NewParser(bytes.NewReader(os.decoded[offset:endOffset]))
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("parse object at index %d: %w", index, err)
	}

	os.objects[index] = obj
	return obj, os.offsets[index].ObjNum, nil
}

// GetObjectByNumber finds and extracts an object by its object number,
// returning the object and its index within the stream.
func (os *ObjectStream) GetObjectByNumber(objNum int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}

	for i, entry := range os.offsets {
		if entry.ObjNum == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, i, err
		}
	}
	return nil, 0, fmt.Errorf("object %d not found in object stream", objNum)
}

// ObjectNumbers returns all object numbers stored in this stream.
func (os *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := os.decode(); err != nil {
		return nil, err
	}
	nums := make([]int, len(os.offsets))
	for i, entry := range os.offsets {
		nums[i] = entry.ObjNum
	}
	return nums, nil
}

// ContainsObject reports whether the object number is stored in this
// stream.
func (os *ObjectStream) ContainsObject(objNum int) (bool, error) {
	if err := os.decode(); err != nil {
		return false, err
	}
	for _, entry := range os.offsets {
		if entry.ObjNum == objNum {
			return true, nil
		}
	}
	return false, nil
}
