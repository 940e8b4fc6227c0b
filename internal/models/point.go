package models

import (
	"fmt"
	"math"
)

// Point is an integer pixel coordinate in image space.
// Points are values: two points are equal when their coordinates are equal.
type Point struct {
	// X is the column index, 0 at the left edge
	X int `yaml:"x"`

	// Y is the row index, 0 at the top edge
	Y int `yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// String implements fmt.Stringer
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// In reports whether p lies inside a width x height grid.
func (p Point) In(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// Index returns the row-major offset of p in a grid of the given width.
func (p Point) Index(width int) int {
	return p.Y*width + p.X
}

// FromIndex is the inverse of Index.
func FromIndex(idx, width int) Point {
	return Point{X: idx % width, Y: idx / width}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// IsDiagonal reports whether the step p -> q changes both coordinates.
func (p Point) IsDiagonal(q Point) bool {
	return p.X != q.X && p.Y != q.Y
}
