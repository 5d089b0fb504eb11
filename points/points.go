// Package points holds the 2-D labeled point type shared by the KNN and
// regression engines, plus the distance metrics used to compare points.
package points

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Unclassified is the category carried by a demo point that is still waiting
// for a label.
const Unclassified = -1

// ErrUnknownMetric is returned by ParseMetric for names it does not recognise.
var ErrUnknownMetric = errors.New("points: unknown distance metric")

// Point is a labeled position on the plane.
//
// Points are shared by pointer: collections such as the nearest-neighbor list
// test membership by handle, not by value, so two points at the same
// coordinates are still distinct.
type Point struct {
	X float64
	Y float64

	// Category is the class label, or Unclassified.
	Category int

	// Selected is set while the point is the user's current selection.
	Selected bool
}

// New returns a new point handle.
func New(x, y float64, category int) *Point {
	return &Point{X: x, Y: y, Category: category}
}

// Coords returns the point as a []float64{x, y} vector.
func (p *Point) Coords() []float64 {
	return []float64{p.X, p.Y}
}

// DistanceTo returns the Euclidean distance between p and o.
func (p *Point) DistanceTo(o *Point) float64 {
	return Euclidean.Distance(p, o)
}

// IsClassified reports whether p carries a real category.
func (p *Point) IsClassified() bool {
	return p.Category != Unclassified
}

func (p *Point) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("(%.3f, %.3f)#%d", p.X, p.Y, p.Category)
}

// Metric selects how the distance between two points is measured.
type Metric int

const (
	// Euclidean is the straight-line (L2) distance.
	Euclidean Metric = iota
	// Manhattan is the city-block (L1) distance.
	Manhattan
)

// Distance returns the distance between a and b under m.
func (m Metric) Distance(a, b *Point) float64 {
	return floats.Distance(a.Coords(), b.Coords(), m.norm())
}

func (m Metric) norm() float64 {
	if m == Manhattan {
		return 1
	}
	return 2
}

func (m Metric) String() string {
	switch m {
	case Euclidean:
		return "euclidean"
	case Manhattan:
		return "manhattan"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// ParseMetric maps a metric name (case-insensitive) to a Metric.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "euclidean", "l2":
		return Euclidean, nil
	case "manhattan", "l1", "cityblock":
		return Manhattan, nil
	}
	return Euclidean, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// UnitRect is the [0,1]x[0,1] square the preset datasets live in.
var UnitRect = Rect{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}

// Bounds returns the bounding box of pts. ok is false when pts is empty.
func Bounds(pts []*Point) (r Rect, ok bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	r = Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range pts {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r, true
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Pad grows r by frac of its size on every side. A degenerate axis is grown
// by frac in absolute units instead.
func (r Rect) Pad(frac float64) Rect {
	px := r.Width() * frac
	py := r.Height() * frac
	if px == 0 {
		px = frac
	}
	if py == 0 {
		py = frac
	}
	return Rect{MinX: r.MinX - px, MinY: r.MinY - py, MaxX: r.MaxX + px, MaxY: r.MaxY + py}
}

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p *Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}
