package gamemap

import "fmt"

// Point is a grid coordinate.
type Point struct {
	X, Y int
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size is a width/height extent.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Rect is an axis-aligned rectangle used for rooms, corridor segments and
// partition regions. It covers [Pos.X, Pos.X+Size.W) × [Pos.Y, Pos.Y+Size.H).
type Rect struct {
	Pos  Point
	Size Size
}

// NewRect builds a Rect from its position and extent.
func NewRect(x, y, w, h int) Rect {
	return Rect{Pos: Point{X: x, Y: y}, Size: Size{W: w, H: h}}
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.Pos.X + r.Size.W }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Pos.Y + r.Size.H }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Pos.X + r.Size.W/2, Y: r.Pos.Y + r.Size.H/2}
}

// Intersects reports whether r and other share at least one cell.
func (r Rect) Intersects(other Rect) bool {
	xOverlap := r.Right() > other.Pos.X && other.Right() > r.Pos.X
	yOverlap := r.Bottom() > other.Pos.Y && other.Bottom() > r.Pos.Y
	return xOverlap && yOverlap
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Pos.X && p.X < r.Right() && p.Y >= r.Pos.Y && p.Y < r.Bottom()
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.Pos.X >= r.Pos.X && other.Right() <= r.Right() &&
		other.Pos.Y >= r.Pos.Y && other.Bottom() <= r.Bottom()
}

// Points calls fn for every cell of r in row-major order.
func (r Rect) Points(fn func(Point)) {
	for y := r.Pos.Y; y < r.Bottom(); y++ {
		for x := r.Pos.X; x < r.Right(); x++ {
			fn(Point{X: x, Y: y})
		}
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("%s+%s", r.Pos, r.Size)
}
