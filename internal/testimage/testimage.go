// Package testimage builds small synthetic RGBA buffers for tests.
package testimage

// FromFunc builds a grey RGBA buffer where every pixel has intensity f(x, y).
func FromFunc(width, height int, f func(x, y int) uint8) []byte {
	buf := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := f(x, y)
			p := (y*width + x) * 4
			buf[p] = v
			buf[p+1] = v
			buf[p+2] = v
			buf[p+3] = 255
		}
	}
	return buf
}

// VerticalEdge returns an image that is bright for columns <= edge and dark
// to the right of it, so the forward-difference gradient peaks at column edge.
func VerticalEdge(width, height, edge int) []byte {
	return FromFunc(width, height, func(x, _ int) uint8 {
		if x <= edge {
			return 255
		}
		return 0
	})
}

// HorizontalEdge is VerticalEdge rotated: bright for rows <= edge.
func HorizontalEdge(width, height, edge int) []byte {
	return FromFunc(width, height, func(_, y int) uint8 {
		if y <= edge {
			return 255
		}
		return 0
	})
}

// Square returns a dark image with a bright filled square [x0,x1]x[y0,y1].
func Square(width, height, x0, y0, x1, y1 int) []byte {
	return FromFunc(width, height, func(x, y int) uint8 {
		if x >= x0 && x <= x1 && y >= y0 && y <= y1 {
			return 255
		}
		return 0
	})
}

// Flat returns a uniform image.
func Flat(width, height int, v uint8) []byte {
	return FromFunc(width, height, func(_, _ int) uint8 { return v })
}
