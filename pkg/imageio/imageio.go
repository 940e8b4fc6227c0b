// Package imageio loads raster images into the RGBA buffers consumed by the
// scissors engine.
package imageio

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Image is a decoded picture as a tightly packed RGBA buffer.
type Image struct {
	Width  int
	Height int

	// Pix holds 4 bytes per pixel, row-major
	Pix []byte

	// Format is the decoder name reported by image.Decode, empty for
	// images built with FromImage
	Format string
}

// Load decodes the image file at path. The format is detected from the
// file content.
func Load(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Decode reads any registered image format from r.
func Decode(r io.Reader) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img := FromImage(src)
	img.Format = format
	return img, nil
}

// FromImage converts img into a packed RGBA buffer whose origin is the
// top-left corner of img's bounds.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    rgba.Pix,
	}
}

// RGBA wraps the buffer as an *image.RGBA without copying.
func (i *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    i.Pix,
		Stride: 4 * i.Width,
		Rect:   image.Rect(0, 0, i.Width, i.Height),
	}
}

// SupportedFormats returns the file extensions Load understands.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat reports whether path has a supported extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range SupportedFormats() {
		if ext == f {
			return true
		}
	}
	return false
}
