package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"livewire/internal/models"
	"livewire/pkg/features"
)

// GridNames lists the feature grids a Viewer can render, in export order.
var GridNames = []string{"greyscale", "gradient", "laplace", "gradx", "grady", "inside", "outside"}

// Viewer renders the feature grids of one image for inspection.
type Viewer struct {
	// set holds the grids computed for the image
	set *features.Set
}

// NewViewer creates a viewer over an extracted feature set
func NewViewer(set *features.Set) *Viewer {
	return &Viewer{set: set}
}

// Grid returns the feature grid with the given name
func (v *Viewer) Grid(name string) (*features.Grid, error) {
	switch name {
	case "greyscale", "grey":
		return v.set.Greyscale, nil
	case "gradient":
		return v.set.Gradient, nil
	case "laplace":
		return v.set.Laplace, nil
	case "gradx":
		return v.set.GradX, nil
	case "grady":
		return v.set.GradY, nil
	case "inside":
		return v.set.Inside, nil
	case "outside":
		return v.set.Outside, nil
	default:
		return nil, fmt.Errorf("invalid grid: %s", name)
	}
}

// ExtractGrid renders the named grid as a 16-bit greyscale image
func (v *Viewer) ExtractGrid(name string) (image.Image, error) {
	g, err := v.Grid(name)
	if err != nil {
		return nil, err
	}
	return GridImage(g), nil
}

// GridImage renders g as a 16-bit greyscale image. Grids with values in
// [0,1] map directly; signed grids such as the forward differences are
// shifted from [-1,1].
func GridImage(g *features.Grid) *image.Gray16 {
	s := features.Summarize(g)
	offset, scale := 0.0, 1.0
	if s.Min < 0 {
		offset, scale = 1, 0.5
	}

	img := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := (g.At(x, y) + offset) * scale
			value := uint16(math.Max(0, math.Min(65535, v*65535)))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// ExtractRegion copies a rectangular window out of the named grid
func (v *Viewer) ExtractRegion(name string, startX, startY, sizeX, sizeY int) (*features.Grid, error) {
	if startX < 0 || startY < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}
	if sizeX <= 0 || sizeY <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive")
	}

	g, err := v.Grid(name)
	if err != nil {
		return nil, err
	}
	if startX+sizeX > g.Width || startY+sizeY > g.Height {
		return nil, fmt.Errorf("region extends beyond image boundaries")
	}

	region := features.NewGrid(sizeX, sizeY)
	for y := 0; y < sizeY; y++ {
		for x := 0; x < sizeX; x++ {
			region.Set(x, y, g.At(startX+x, startY+y))
		}
	}
	return region, nil
}

// SaveGrid renders g and writes it as a PNG file
func SaveGrid(g *features.Grid, filename string) error {
	return SavePNG(GridImage(g), filename)
}

// SaveFeatureSet writes every grid of the set into outputDir, one PNG per grid
func (v *Viewer) SaveFeatureSet(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, name := range GridNames {
		img, err := v.ExtractGrid(name)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("feature_%s.png", name))
		if err := SavePNG(img, filename); err != nil {
			return err
		}
	}

	return nil
}

// Overlay colours
var (
	PathColor    = color.RGBA{R: 255, G: 32, B: 32, A: 255}
	ControlColor = color.RGBA{R: 32, G: 255, B: 32, A: 255}
)

// PathOverlay returns a copy of img with the path painted on top. Control
// points use ControlColor, every other path pixel PathColor.
func PathOverlay(img image.Image, path models.Path) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}

	for _, p := range path.Points {
		if p.In(b.Dx(), b.Dy()) {
			out.SetRGBA(p.X, p.Y, PathColor)
		}
	}
	for _, idx := range path.ControlPoints {
		p := path.Points[idx]
		if p.In(b.Dx(), b.Dy()) {
			out.SetRGBA(p.X, p.Y, ControlColor)
		}
	}
	return out
}

// SavePNG writes img as a PNG file
func SavePNG(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
