// Package core provides low-level PDF parsing primitives and object types.
//
// This package implements the fundamental building blocks for reading PDF
// files: the eight PDF object types (null, boolean, integer, real, string,
// name, array, and dictionary), streams, indirect references, the lexer and
// object parser, cross-reference tables (both classic tables and PDF 1.5+
// cross-reference streams), and object streams.
//
// # Object Types
//
// All object kinds satisfy the Object interface:
//
//   - [Null] - the PDF null object
//   - [Bool] - PDF boolean values
//   - [Int] - PDF integers
//   - [Real] - PDF real numbers
//   - [String] - PDF strings (literal or hexadecimal)
//   - [Name] - PDF names (e.g., /Type, /Font)
//   - [Array] - PDF arrays
//   - [Dict] - PDF dictionaries
//
// [Stream] represents a stream (dictionary plus raw payload), and
// [IndirectRef] a reference to an indirect object.
//
// # Parsing
//
// [Lexer] tokenizes PDF syntax from an io.Reader and is restartable at any
// byte offset. [Parser] composes tokens into objects and indirect object
// definitions, reading stream payloads according to the /Length entry. A
// [ReferenceResolver] lets the parser resolve indirect stream lengths.
//
// # Cross-Reference Data
//
// [XRefParser] locates the startxref pointer, parses classic tables and
// cross-reference streams, follows /Prev chains, and merges incremental
// sections with newer entries taking precedence. [ObjectStream] extracts
// objects stored inside /ObjStm streams.
//
// # Stream Decoding
//
// [Stream.Decode] applies the stream's /Filter chain left to right with the
// matching /DecodeParms and memoizes the result.
package core
