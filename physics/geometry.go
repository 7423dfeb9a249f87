package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// planeThickness is the depth of the solid slab standing in for a half-space.
const planeThickness = 10.0

// Geometry is the collision shape description attached through a Shape.
type Geometry interface {
	// Valid reports whether the dimensions are finite and positive.
	Valid() bool
	// Area is used to split a body's mass between its shapes.
	Area() float64
	moment(mass float64) float64
	build(body *cp.Body) *cp.Shape
	staticOnly() bool
}

// BoxGeometry is an axis aligned box given by half extents.
type BoxGeometry struct {
	HalfX, HalfY float64
}

func (g BoxGeometry) Valid() bool {
	return positive(g.HalfX) && positive(g.HalfY)
}

func (g BoxGeometry) Area() float64 { return 4 * g.HalfX * g.HalfY }

func (g BoxGeometry) moment(mass float64) float64 {
	return cp.MomentForBox(mass, 2*g.HalfX, 2*g.HalfY)
}

func (g BoxGeometry) build(body *cp.Body) *cp.Shape {
	return cp.NewBox(body, 2*g.HalfX, 2*g.HalfY, 0)
}

func (BoxGeometry) staticOnly() bool { return false }

// SphereGeometry is a circle of the given radius.
type SphereGeometry struct {
	Radius float64
}

func (g SphereGeometry) Valid() bool { return positive(g.Radius) }

func (g SphereGeometry) Area() float64 { return math.Pi * g.Radius * g.Radius }

func (g SphereGeometry) moment(mass float64) float64 {
	return cp.MomentForCircle(mass, 0, g.Radius, cp.Vector{})
}

func (g SphereGeometry) build(body *cp.Body) *cp.Shape {
	return cp.NewCircle(body, g.Radius, cp.Vector{})
}

func (SphereGeometry) staticOnly() bool { return false }

// PlaneGeometry is the half-space below the body's local x axis, bounded to
// HalfLength on either side.
type PlaneGeometry struct {
	HalfLength float64
}

func (g PlaneGeometry) Valid() bool { return positive(g.HalfLength) }

func (g PlaneGeometry) Area() float64 { return 2 * g.HalfLength * planeThickness }

func (PlaneGeometry) moment(float64) float64 { return math.Inf(1) }

func (g PlaneGeometry) build(body *cp.Body) *cp.Shape {
	bb := cp.BB{L: -g.HalfLength, B: -planeThickness, R: g.HalfLength, T: 0}
	return cp.NewBox2(body, bb, 0)
}

func (PlaneGeometry) staticOnly() bool { return true }

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
