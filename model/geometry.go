package model

import "math"

// Point represents a 2D point.
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents a rectangle in PDF coordinates (origin bottom-left).
type BBox struct {
	X      float64 // left
	Y      float64 // bottom
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates.
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxFromPoints creates the bounding box spanned by two points.
func NewBBoxFromPoints(p1, p2 Point) BBox {
	x := math.Min(p1.X, p2.X)
	y := math.Min(p1.Y, p2.Y)
	return BBox{X: x, Y: y, Width: math.Abs(p2.X - p1.X), Height: math.Abs(p2.Y - p1.Y)}
}

// Left returns the left edge.
func (b BBox) Left() float64 { return b.X }

// Right returns the right edge.
func (b BBox) Right() float64 { return b.X + b.Width }

// Bottom returns the bottom edge.
func (b BBox) Bottom() float64 { return b.Y }

// Top returns the top edge.
func (b BBox) Top() float64 { return b.Y + b.Height }

// Contains reports whether the point lies inside the box.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Bottom() && p.Y <= b.Top()
}

// Intersects reports whether two boxes overlap.
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.Left() ||
		b.Left() > other.Right() ||
		b.Top() < other.Bottom() ||
		b.Bottom() > other.Top())
}

// Matrix is a 2D affine transformation in PDF order [a b c d e f],
// mapping (x, y) to (a*x + c*y + e, b*x + d*y + f).
type Matrix [6]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Transform applies the matrix to a point.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m × other, so that transforming by the result equals
// transforming by m first and other second.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}
