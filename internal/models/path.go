package models

// Path is a traced boundary: an ordered list of pixels plus the subset of
// them the user placed explicitly (control points).
//
// Paths are built segment by segment while the user clicks anchors, and are
// handed to the drawing layer once the boundary is finalized.
type Path struct {
	// Points holds every pixel of the path in drawing order
	Points []Point `yaml:"points"`

	// ControlPoints holds indices into Points of the user-placed anchors
	ControlPoints []int `yaml:"controlPoints"`
}

// NewPath creates a path from an initial list of points.
func NewPath(points ...Point) *Path {
	p := &Path{}
	p.AddPoints(points)
	return p
}

// Len returns the number of points in the path.
func (p *Path) Len() int {
	return len(p.Points)
}

// Point returns the i-th point of the path.
func (p *Path) Point(i int) Point {
	return p.Points[i]
}

// Last returns the final point of the path and false when the path is empty.
func (p *Path) Last() (Point, bool) {
	if len(p.Points) == 0 {
		return Point{}, false
	}
	return p.Points[len(p.Points)-1], true
}

// AddPoint appends a single point.
func (p *Path) AddPoint(pt Point) {
	p.Points = append(p.Points, pt)
}

// AddPoints appends a list of points.
func (p *Path) AddPoints(pts []Point) {
	p.Points = append(p.Points, pts...)
}

// AddControlPoint marks the first occurrence of pt as a control point.
// It returns false if pt is not part of the path.
func (p *Path) AddControlPoint(pt Point) bool {
	for i, q := range p.Points {
		if q == pt {
			if !p.hasControlIndex(i) {
				p.ControlPoints = append(p.ControlPoints, i)
			}
			return true
		}
	}
	return false
}

// AddControlIndex marks the point at index i as a control point. Indices
// outside the path are ignored.
func (p *Path) AddControlIndex(i int) {
	if i < 0 || i >= len(p.Points) || p.hasControlIndex(i) {
		return
	}
	p.ControlPoints = append(p.ControlPoints, i)
}

// IsControlPoint reports whether pt was marked as a control point.
func (p *Path) IsControlPoint(pt Point) bool {
	for _, idx := range p.ControlPoints {
		if p.Points[idx] == pt {
			return true
		}
	}
	return false
}

// AppendPath appends other to p, shifting its control point indices.
func (p *Path) AppendPath(other *Path) {
	offset := len(p.Points)
	p.Points = append(p.Points, other.Points...)
	for _, idx := range other.ControlPoints {
		p.ControlPoints = append(p.ControlPoints, offset+idx)
	}
}

// Clone returns a deep copy of the path.
func (p *Path) Clone() *Path {
	c := &Path{
		Points:        make([]Point, len(p.Points)),
		ControlPoints: make([]int, len(p.ControlPoints)),
	}
	copy(c.Points, p.Points)
	copy(c.ControlPoints, p.ControlPoints)
	return c
}

func (p *Path) hasControlIndex(i int) bool {
	for _, idx := range p.ControlPoints {
		if idx == i {
			return true
		}
	}
	return false
}
