// Package features turns an RGBA pixel buffer into the scalar feature grids
// that drive the livewire cost function.
//
// Every grid has the dimensions of the source image and is stored row-major.
// Cost-like grids (gradient, laplace) are normalized and inverted so that
// strong edge evidence maps to values close to 0.
package features

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"livewire/internal/models"
)

// Grid is a dense 2D array of float64 values, one per pixel.
type Grid struct {
	// Width is the number of columns
	Width int

	// Height is the number of rows
	Height int

	// Data holds Width*Height values in row-major order
	Data []float64
}

// NewGrid allocates a zeroed width x height grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// At returns the value at column x, row y.
func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

// AtPoint returns the value at p.
func (g *Grid) AtPoint(p models.Point) float64 {
	return g.Data[p.Y*g.Width+p.X]
}

// Set stores v at column x, row y.
func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.Width+x] = v
}

// Fill sets every cell to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// Summary holds basic statistics of a grid.
type Summary struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stdDev"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
}

// Summarize computes mean, standard deviation and range of g.
func Summarize(g *Grid) Summary {
	if len(g.Data) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(g.Data, nil)
	if len(g.Data) < 2 {
		std = 0
	}
	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(g.Data),
		Max:    floats.Max(g.Data),
	}
}
