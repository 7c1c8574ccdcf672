// Package viewer renders page content streams into canvases.
//
// The interpreter is a stack machine over the content stream's postfix
// operators: operands accumulate until an operator consumes them against
// the graphics state and the page's resource environment. Rendering
// produces a Canvas holding the decoded text strings, inline images,
// image XObject references, form invocations, and a listing of the
// operators with string arguments replaced by their decoded Unicode form.
//
// A Viewer navigates the page tree and owns the current canvas, which is
// reset on every navigation.
package viewer
