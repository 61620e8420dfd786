// Package geometry provides the 2-D primitives the chemistry model is drawn
// with: points, vectors, rectangles, angle and segment intersection tests and
// simple polygon queries.
//
// Coordinates are plain float64 pairs; there is no unit. The chemistry model
// decides whether they are native or display scaled.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/turtacn/ChemGraph/pkg/errors"
)

// Epsilon is the tolerance used for degeneracy and containment checks.
const Epsilon = 1e-6

// Point is a position in the plane.
type Point r2.Vec

// Vector is a displacement in the plane.
type Vector r2.Vec

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vector { return Vector(r2.Sub(r2.Vec(p), r2.Vec(q))) }

// Add displaces p by v.
func (p Point) Add(v Vector) Point { return Point(r2.Add(r2.Vec(p), r2.Vec(v))) }

func (p Point) Scale(f float64) Point { return Point(r2.Scale(f, r2.Vec(p))) }

// Equal reports whether p and q coincide within Epsilon.
func (p Point) Equal(q Point) bool { return Distance(p, q) < Epsilon }

func (v Vector) Length() float64 { return r2.Norm(r2.Vec(v)) }

func (v Vector) Scale(f float64) Vector { return Vector(r2.Scale(f, r2.Vec(v))) }

func (v Vector) Neg() Vector { return v.Scale(-1) }

// Perpendicular returns v rotated by +90°.
func (v Vector) Perpendicular() Vector { return Vector{X: -v.Y, Y: v.X} }

// Normalize returns the unit vector along v. A zero-length v is a
// GeometryError.
func (v Vector) Normalize() (Vector, error) {
	if v.Length() < Epsilon {
		return Vector{}, errors.Geometry("cannot normalise a zero-length vector")
	}
	return Vector(r2.Unit(r2.Vec(v))), nil
}

// Cross returns the z component of a × b.
func Cross(a, b Vector) float64 { return r2.Cross(r2.Vec(a), r2.Vec(b)) }

// Dot returns a · b.
func Dot(a, b Vector) float64 { return r2.Dot(r2.Vec(a), r2.Vec(b)) }

// Distance returns |p - q|.
func Distance(p, q Point) float64 { return p.Sub(q).Length() }

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point { return Point(r2.Scale(0.5, r2.Add(r2.Vec(p), r2.Vec(q)))) }

// Sign returns -1, 0 or 1 following the sign of f, treating |f| < Epsilon as 0.
func Sign(f float64) int {
	switch {
	case f > Epsilon:
		return 1
	case f < -Epsilon:
		return -1
	default:
		return 0
	}
}

// Angle returns the angle a-vertex-b in radians, in [0, π]. Either arm having
// zero length is a GeometryError.
func Angle(a, vertex, b Point) (float64, error) {
	va := a.Sub(vertex)
	vb := b.Sub(vertex)
	if va.Length() < Epsilon || vb.Length() < Epsilon {
		return 0, errors.Geometry("angle requested with coincident points").
			WithDetailf("vertex (%.4f, %.4f)", vertex.X, vertex.Y)
	}
	c := math.Max(-1, math.Min(1, r2.Cos(r2.Vec(va), r2.Vec(vb))))
	return math.Acos(c), nil
}

// SegmentsIntersect tests the closed segments a1-a2 and b1-b2 for a single
// crossing point. Parallel or collinear segments report false. A segment of
// zero length is a GeometryError.
func SegmentsIntersect(a1, a2, b1, b2 Point) (Point, bool, error) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	if r.Length() < Epsilon || s.Length() < Epsilon {
		return Point{}, false, errors.Geometry("intersection requested for a zero-length segment")
	}
	det := Cross(r, s)
	if math.Abs(det) < Epsilon*Epsilon {
		return Point{}, false, nil
	}
	qp := b1.Sub(a1)
	t := Cross(qp, s) / det
	u := Cross(qp, r) / det
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false, nil
	}
	return a1.Add(r.Scale(t)), true, nil
}

// SignedArea returns the shoelace area of the closed polygon pts; positive
// for anticlockwise winding in a y-up frame.
func SignedArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// Centroid returns the arithmetic mean of pts. ok is false when the polygon
// has fewer than three points or (near) zero area, i.e. it has no visually
// defined interior.
func Centroid(pts []Point) (Point, bool) {
	if len(pts) < 3 {
		return Point{}, false
	}
	if math.Abs(SignedArea(pts)) < Epsilon {
		return Point{}, false
	}
	var sum r2.Vec
	for _, p := range pts {
		sum = r2.Add(sum, r2.Vec(p))
	}
	return Point(r2.Scale(1/float64(len(pts)), sum)), true
}

// PolygonContains reports whether p lies strictly inside the closed polygon
// poly. Points on (or within Epsilon of) an edge are not inside.
func PolygonContains(poly []Point, p Point) bool {
	if len(poly) < 3 {
		return false
	}
	for i := range poly {
		j := (i + 1) % len(poly)
		if distanceToSegment(p, poly[i], poly[j]) < Epsilon {
			return false
		}
	}
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			x := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func distanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := Dot(ab, ab)
	if l2 == 0 {
		return Distance(p, a)
	}
	t := Dot(p.Sub(a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, a.Add(ab.Scale(t)))
}

// Rect is an axis-aligned bounding rectangle. A single point or a line is a
// valid Rect here, unlike r2.Box.Empty, so emptiness is tracked on its own:
// the zero Rect is empty and is the identity for Union.
type Rect struct {
	r2.Box
	set bool
}

// EmptyRect returns the empty rectangle.
func EmptyRect() Rect { return Rect{} }

// BoundingRect returns the smallest Rect containing pts.
func BoundingRect(pts ...Point) Rect {
	r := EmptyRect()
	for _, p := range pts {
		r = r.Extend(p)
	}
	return r
}

// NewRect returns the rectangle spanning the two corners in any order.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{Box: r2.NewBox(x0, y0, x1, y1), set: true}
}

func (r Rect) IsEmpty() bool { return !r.set }

// Extend grows r to include p.
func (r Rect) Extend(p Point) Rect {
	return r.Union(NewRect(p.X, p.Y, p.X, p.Y))
}

// Union returns the smallest Rect containing r and o.
func (r Rect) Union(o Rect) Rect {
	switch {
	case !o.set:
		return r
	case !r.set:
		return o
	}
	return NewRect(
		math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y),
		math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y),
	)
}

// Width of r; 0 when empty.
func (r Rect) Width() float64 {
	if !r.set {
		return 0
	}
	return r.Size().X
}

// Height of r; 0 when empty.
func (r Rect) Height() float64 {
	if !r.set {
		return 0
	}
	return r.Size().Y
}

//Personal.AI order the ending
