// Package filters implements the standard PDF stream filters.
//
// Supported decoders: FlateDecode (with PNG and TIFF predictors),
// LZWDecode (with EarlyChange and predictors), ASCIIHexDecode,
// ASCII85Decode, RunLengthDecode, and CCITTFaxDecode (Group 3/4 via
// golang.org/x/image/ccitt). DCTDecode and JBIG2Decode payloads are passed
// through unchanged by the caller; raster decoding of JPEG/JBIG2 images is
// outside the engine's scope.
//
// Decode parameters arrive as a Params map of Go primitives translated
// from the stream's /DecodeParms dictionary.
package filters
