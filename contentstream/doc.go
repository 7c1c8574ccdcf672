// Package contentstream parses PDF content streams into operations.
//
// A content stream is a postfix sequence: operands accumulate until an
// operator keyword consumes them. The parser produces the operations in
// stream order, including inline images (BI ... ID ... EI), whose
// abbreviated dictionary keys are normalized to their full names and whose
// binary payload is delimited by scanning for EI at a token boundary.
package contentstream
