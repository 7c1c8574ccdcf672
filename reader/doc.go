// Package reader opens PDF files and exposes the document object graph.
//
// A Reader parses the header and cross-reference data eagerly; everything
// else is lazy. Objects load on first access through the merged
// cross-reference table — seeking for uncompressed entries, extracting
// from object streams for compressed ones — and are cached by object
// number and generation. The catalog, info dictionary, page tree, and
// page images are exposed through typed views.
//
// Structural damage at open time (bad header, missing xref) is fatal.
// Everything after that degrades per object: failures resolve to the null
// object and are accumulated as Warnings on the Reader.
package reader
