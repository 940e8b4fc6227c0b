// Package snap moves cursor positions onto nearby edge pixels.
package snap

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"livewire/internal/models"
	"livewire/pkg/features"
)

// edgePoint is a pixel stored in the kd-tree
type edgePoint struct {
	X, Y float64
}

// Compare implements the kdtree.Comparable interface
func (p edgePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(edgePoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p edgePoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two points
func (p edgePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(edgePoint)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

func (p edgePoint) point() models.Point {
	return models.Pt(int(p.X), int(p.Y))
}

// edgePoints satisfies kdtree.Interface
type edgePoints []edgePoint

func (p edgePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p edgePoints) Len() int                              { return len(p) }
func (p edgePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p edgePoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(plane{edgePoints: p, Dim: d}, kdtree.MedianOfRandoms(plane{edgePoints: p, Dim: d}, 100))
}

// plane implements sort.Interface and kdtree.SortSlicer for edgePoints
type plane struct {
	edgePoints
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.edgePoints[i].X < p.edgePoints[j].X
	case 1:
		return p.edgePoints[i].Y < p.edgePoints[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{edgePoints: p.edgePoints[start:end], Dim: p.Dim}
}

func (p plane) Swap(i, j int) {
	p.edgePoints[i], p.edgePoints[j] = p.edgePoints[j], p.edgePoints[i]
}

// EdgeIndex answers nearest edge pixel queries for one image.
type EdgeIndex struct {
	tree *kdtree.Tree
	size int
}

// NewEdgeIndex indexes every zero crossing (Laplace value 0) of set.
func NewEdgeIndex(set *features.Set) *EdgeIndex {
	var pts edgePoints
	lap := set.Laplace
	for y := 0; y < lap.Height; y++ {
		for x := 0; x < lap.Width; x++ {
			if lap.At(x, y) == 0 {
				pts = append(pts, edgePoint{X: float64(x), Y: float64(y)})
			}
		}
	}

	idx := &EdgeIndex{size: len(pts)}
	if len(pts) > 0 {
		idx.tree = kdtree.New(pts, false)
	}
	return idx
}

// Len returns the number of indexed edge pixels.
func (e *EdgeIndex) Len() int {
	return e.size
}

// Nearest returns the indexed pixel closest to p if it lies within radius.
// Otherwise p is returned unchanged with false.
func (e *EdgeIndex) Nearest(p models.Point, radius float64) (models.Point, bool) {
	if e.tree == nil || radius <= 0 {
		return p, false
	}

	got, dist := e.tree.Nearest(edgePoint{X: float64(p.X), Y: float64(p.Y)})
	if got == nil || dist > radius*radius {
		return p, false
	}
	return got.(edgePoint).point(), true
}
