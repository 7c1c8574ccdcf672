// Package model provides the geometry shared by the PDF engine: points,
// bounding boxes, and 2D affine transformation matrices as used by the
// graphics state and the content interpreter.
package model
