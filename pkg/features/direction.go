package features

import (
	"math"

	"livewire/internal/models"
)

// minGradientMagnitude keeps unit vector computation finite on flat regions.
const minGradientMagnitude = 1e-100

// twoThirdPi scales the summed angles of DirectionCost.
const twoThirdPi = 2 / (3 * math.Pi)

// unitVec is the scratch vector used on the direction hot path. It is a plain
// value, so it never escapes to the heap.
type unitVec struct {
	x, y float64
}

// UnitVector returns the gradient at (x, y) scaled to unit length.
// A zero gradient yields the zero vector.
func UnitVector(gradX, gradY *Grid, x, y int) (ux, uy float64) {
	u := unitVector(gradX, gradY, x, y)
	return u.x, u.y
}

func unitVector(gradX, gradY *Grid, x, y int) unitVec {
	ox := gradX.At(x, y)
	oy := gradY.At(x, y)
	m := math.Max(math.Sqrt(ox*ox+oy*oy), minGradientMagnitude)
	return unitVec{x: ox / m, y: oy / m}
}

// DirectionCost measures how far the step p -> q deviates from the edge
// direction implied by the gradients at both pixels. Steps running along the
// edge cost 0 and the result never exceeds 2/3.
func DirectionCost(gradX, gradY *Grid, p, q models.Point) float64 {
	up := unitVector(gradX, gradY, p.X, p.Y)
	uq := unitVector(gradX, gradY, q.X, q.Y)

	sx := float64(q.X - p.X)
	sy := float64(q.Y - p.Y)

	dp := up.y*sx - up.x*sy
	dq := uq.y*sx - uq.x*sy

	// keep dp positive so both pixels are compared against the same orientation
	if dp < 0 {
		dp = -dp
		dq = -dq
	}
	if p.IsDiagonal(q) {
		dp *= math.Sqrt2 / 2
		dq *= math.Sqrt2 / 2
	}

	// an opposing gradient at q counts as a right angle, which bounds the
	// result to [0, 2/3]
	return twoThirdPi * (math.Acos(clampUnit(dp)) + math.Acos(math.Max(0, clampUnit(dq))))
}

// DirectionCost is the method form of the package-level DirectionCost.
func (s *Set) DirectionCost(p, q models.Point) float64 {
	return DirectionCost(s.GradX, s.GradY, p, q)
}

// In reports whether p lies inside the image the set was computed from.
func (s *Set) In(p models.Point) bool {
	return p.In(s.Width, s.Height)
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
