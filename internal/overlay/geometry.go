package overlay

import "math"

// Point is a position or displacement in container pixels.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Size is a width and height in container pixels.
type Size struct {
	W, H float64
}

// Rect is an axis aligned rectangle in container coordinates.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Inset shrinks r by n on every side. Negative n grows it.
func (r Rect) Inset(n float64) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
}

// DeltaRect describes how each edge moved between two resize events.
type DeltaRect struct {
	Left, Top, Right, Bottom float64
	Width, Height            float64
}

func deltaOf(prev, next Rect) DeltaRect {
	return DeltaRect{
		Left:   next.X - prev.X,
		Top:    next.Y - prev.Y,
		Right:  next.Right() - prev.Right(),
		Bottom: next.Bottom() - prev.Bottom(),
		Width:  next.W - prev.W,
		Height: next.H - prev.H,
	}
}

// Edges is a set of rectangle edges.
type Edges uint8

const (
	EdgeLeft Edges = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// AllEdges enables resizing from every side.
const AllEdges = EdgeLeft | EdgeRight | EdgeTop | EdgeBottom

func (e Edges) Has(x Edges) bool { return e&x != 0 }

func snapTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
