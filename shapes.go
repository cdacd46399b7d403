package levelgen

import (
	"github.com/golang/geo/r2"

	"github.com/voidshard/levelgen/internal/placement"
	"github.com/voidshard/levelgen/internal/shape"
)

// Shape is a collision shape; box, circle, polygon, capsule or a composite of
// polygons. Shapes are values, moving one returns a copy.
type Shape = shape.Shape

// ShapeKind is the kind of a Shape
type ShapeKind = shape.Kind

const (
	Box       = shape.Box
	Circle    = shape.Circle
	Polygon   = shape.Polygon
	Capsule   = shape.Capsule
	Composite = shape.Composite
)

// Mode decides where a job draws candidate positions from
type Mode = placement.Mode

const (
	Free     = placement.Free
	NearRoad = placement.NearRoad
)

// NewBox returns a w x h box centred on the origin
func NewBox(w, h float64) Shape {
	return shape.NewBox(w, h)
}

// NewCircle returns a circle of radius r centred on the origin
func NewCircle(r float64) Shape {
	return shape.NewCircle(r)
}

// NewPolygon returns a polygon with the given vertices
func NewPolygon(pts ...r2.Point) Shape {
	return shape.NewPolygon(pts...)
}

// NewCapsule returns a w x h capsule (a box with fully rounded short ends)
func NewCapsule(w, h float64) Shape {
	return shape.NewCapsule(w, h)
}

// NewComposite returns a shape made of many polygons
func NewComposite(parts ...[]r2.Point) Shape {
	return shape.NewComposite(parts...)
}

// Distance returns the distance between two shapes, <= 0 if they overlap.
func Distance(a, b Shape) (float64, error) {
	return shape.Distance(a, b)
}

// Overlaps returns if two shapes touch. Shapes that can't be tested are
// reported as overlapping along with the error.
func Overlaps(a, b Shape) (bool, error) {
	return shape.Overlaps(a, b)
}
