// Package pages provides typed views over the PDF document structure: the
// catalog, the page tree, individual pages, annotations, and the outline
// tree.
//
// Page attributes that the PDF specification marks inheritable
// (Resources, MediaBox, CropBox, Rotate) are looked up along the page's
// ancestor chain; Resources dictionaries are merged root-to-leaf with
// descendants overriding ancestors, so every page exposes a defined
// (possibly empty) resources dictionary.
package pages
