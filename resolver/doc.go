// Package resolver resolves indirect references in PDF object graphs.
//
// The PDF object graph is cyclic (pages point at their parents, form
// XObject resources reference ancestors), so resolution tracks visited
// references and bounds recursion depth. Shallow resolution follows a
// single reference; deep resolution expands every reference reachable
// through dictionaries, arrays, and stream dictionaries.
package resolver
