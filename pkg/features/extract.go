package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LaplaceThreshold is the Laplacian-of-Gaussian response above which a pixel
// counts as a zero crossing.
const LaplaceThreshold = 0.33

// laplaceBorder is the number of rows/columns on each side that the 5x5
// kernel cannot reach.
const laplaceBorder = 2

// logKernel is the 5x5 Laplacian-of-Gaussian stencil.
var logKernel = mat.NewDense(5, 5, []float64{
	0, 0, -1, 0, 0,
	0, -1, -2, -1, 0,
	-1, -2, 16, -2, -1,
	0, -1, -2, -1, 0,
	0, 0, -1, 0, 0,
})

// Set bundles all feature grids computed for one image.
type Set struct {
	// Width and Height are the image dimensions shared by every grid
	Width  int
	Height int

	// Greyscale is the mean of the R, G and B channels in [0,1]
	Greyscale *Grid

	// Gradient is the inverted, normalized gradient magnitude (0 = strongest edge)
	Gradient *Grid

	// GradX and GradY are the forward differences of Greyscale
	GradX *Grid
	GradY *Grid

	// Laplace is 0 at zero crossings and 1 elsewhere
	Laplace *Grid

	// Inside and Outside sample Greyscale on either side of the local edge
	Inside  *Grid
	Outside *Grid
}

// Extract computes the full feature set for an RGBA buffer.
//
// Parameters:
//   - rgba: pixel buffer, 4 bytes per pixel, row-major
//   - width, height: image dimensions
//   - edgeWidth: distance in pixels used for the inside/outside bands
func Extract(rgba []byte, width, height, edgeWidth int) (*Set, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("buffer length %d does not match %dx%dx4", len(rgba), width, height)
	}

	grey := Greyscale(rgba, width, height)
	gx := GradX(grey)
	gy := GradY(grey)
	inside, outside := Sides(float64(edgeWidth), gx, gy, grey)

	return &Set{
		Width:     width,
		Height:    height,
		Greyscale: grey,
		Gradient:  Gradient(grey),
		GradX:     gx,
		GradY:     gy,
		Laplace:   Laplace(grey),
		Inside:    inside,
		Outside:   outside,
	}, nil
}

// Greyscale averages the colour channels of every pixel into [0,1].
// Alpha is ignored.
func Greyscale(rgba []byte, width, height int) *Grid {
	g := NewGrid(width, height)
	for i := range g.Data {
		p := i * 4
		sum := int(rgba[p]) + int(rgba[p+1]) + int(rgba[p+2])
		g.Data[i] = float64(sum) / (3 * 255)
	}
	return g
}

// Gradient returns the gradient magnitude of grey, scaled by its maximum and
// flipped so that it can be used directly as a cost.
// The last row and column copy their inner neighbours.
func Gradient(grey *Grid) *Grid {
	w, h := grey.Width, grey.Height
	g := NewGrid(w, h)

	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			dx := grey.At(x+1, y) - grey.At(x, y)
			dy := grey.At(x, y+1) - grey.At(x, y)
			g.Set(x, y, math.Sqrt(dx*dx+dy*dy))
		}
		if w > 1 {
			g.Set(w-1, y, g.At(w-2, y))
		}
	}
	if h > 1 {
		copy(g.Data[(h-1)*w:], g.Data[(h-2)*w:(h-1)*w])
	}

	maxVal := floats.Max(g.Data)
	if maxVal == 0 {
		// flat image: no edge anywhere
		g.Fill(1)
		return g
	}
	for i, v := range g.Data {
		g.Data[i] = 1 - v/maxVal
	}
	return g
}

// GradX returns the horizontal forward difference. The last column reuses
// the previous difference.
func GradX(grey *Grid) *Grid {
	w, h := grey.Width, grey.Height
	g := NewGrid(w, h)
	if w < 2 {
		return g
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w-1; x++ {
			g.Set(x, y, grey.At(x+1, y)-grey.At(x, y))
		}
		g.Set(w-1, y, g.At(w-2, y))
	}
	return g
}

// GradY returns the vertical forward difference. The last row reuses the
// previous difference.
func GradY(grey *Grid) *Grid {
	w, h := grey.Width, grey.Height
	g := NewGrid(w, h)
	if h < 2 {
		return g
	}
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, grey.At(x, y+1)-grey.At(x, y))
		}
	}
	copy(g.Data[(h-1)*w:], g.Data[(h-2)*w:(h-1)*w])
	return g
}

// Laplace thresholds the Laplacian-of-Gaussian response of grey into a
// binary map: 0 where the response exceeds LaplaceThreshold, 1 elsewhere.
// The 2-pixel border is always 1.
func Laplace(grey *Grid) *Grid {
	w, h := grey.Width, grey.Height
	g := NewGrid(w, h)
	g.Fill(1)

	for y := laplaceBorder; y < h-laplaceBorder; y++ {
		for x := laplaceBorder; x < w-laplaceBorder; x++ {
			if laplaceResponse(grey, x, y) > LaplaceThreshold {
				g.Set(x, y, 0)
			}
		}
	}
	return g
}

func laplaceResponse(grey *Grid, x, y int) float64 {
	var sum float64
	for ky := 0; ky < 5; ky++ {
		for kx := 0; kx < 5; kx++ {
			k := logKernel.At(ky, kx)
			if k == 0 {
				continue
			}
			sum += k * grey.At(x+kx-laplaceBorder, y+ky-laplaceBorder)
		}
	}
	return sum
}

// Sides samples grey at distance dist on both sides of every pixel, along
// the local gradient so that the two samples straddle the edge. Inside lies
// in the gradient direction (towards brighter values), outside opposite to
// it. The sample positions are clamped to the image.
func Sides(dist float64, gradX, gradY, grey *Grid) (inside, outside *Grid) {
	w, h := grey.Width, grey.Height
	inside = NewGrid(w, h)
	outside = NewGrid(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := unitVector(gradX, gradY, x, y)

			ix := clamp(int(math.Round(float64(x)+dist*u.x)), 0, w-1)
			iy := clamp(int(math.Round(float64(y)+dist*u.y)), 0, h-1)
			ox := clamp(int(math.Round(float64(x)-dist*u.x)), 0, w-1)
			oy := clamp(int(math.Round(float64(y)-dist*u.y)), 0, h-1)

			inside.Set(x, y, grey.At(ix, iy))
			outside.Set(x, y, grey.At(ox, oy))
		}
	}
	return inside, outside
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
