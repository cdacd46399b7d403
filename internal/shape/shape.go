package shape

import (
	"math"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedKind implies a shape of a Kind we cannot collide.
	// Queries return it alongside a "colliding" answer so callers fail closed.
	ErrUnsupportedKind = errors.New("unsupported shape kind")

	// ErrInvalidGeometry implies a known Kind with unusable dimensions
	// (zero size box, polygon with fewer than 3 points etc).
	ErrInvalidGeometry = errors.New("invalid shape geometry")
)

// Kind is the closed set of collision shapes.
type Kind int

const (
	Unknown Kind = iota
	Box
	Circle
	Polygon
	Capsule
	Composite
)

var (
	kindNames = map[Kind]string{
		Box:       "box",
		Circle:    "circle",
		Polygon:   "polygon",
		Capsule:   "capsule",
		Composite: "composite",
	}

	invKindNames = map[string]Kind{}
)

func init() {
	for k, v := range kindNames {
		invKindNames[v] = k
	}
}

// String returns the config name of the kind
func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "unknown"
	}
	return name
}

// MarshalText allows kinds to be written as their names in yaml / json
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText reads a kind name, unknown names are an error
func (k *Kind) UnmarshalText(data []byte) error {
	v, ok := invKindNames[strings.ToLower(strings.TrimSpace(string(data)))]
	if !ok {
		return errors.Wrapf(ErrUnsupportedKind, "%q", string(data))
	}
	*k = v
	return nil
}

// Shape is a collision shape. Geometry (Points, Parts, Size) is given relative
// to Centre and rotated about it by Rotation (radians).
//
// Shapes are values; Translate / At return copies and never modify the receiver,
// so a prototype can be moved to any number of candidate positions.
// Points & Parts slices are shared between copies and must not be mutated.
type Shape struct {
	Kind     Kind     `json:"kind" yaml:"kind"`
	Centre   r2.Point `json:"centre" yaml:"centre"`
	Rotation float64  `json:"rotation,omitempty" yaml:"rotation,omitempty"`

	// Size is the full width & height of a Box or Capsule.
	// A capsule's spine runs along its longer side.
	Size r2.Point `json:"size,omitempty" yaml:"size,omitempty"`

	// Radius of a Circle
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`

	// Points of a Polygon (in order, implicitly closed)
	Points []r2.Point `json:"points,omitempty" yaml:"points,omitempty"`

	// Parts of a Composite, each a closed polygon
	Parts [][]r2.Point `json:"parts,omitempty" yaml:"parts,omitempty"`
}

// NewBox returns a w x h box centred on the origin
func NewBox(w, h float64) Shape {
	return Shape{Kind: Box, Size: r2.Point{X: w, Y: h}}
}

// NewCircle returns a circle of radius r centred on the origin
func NewCircle(r float64) Shape {
	return Shape{Kind: Circle, Radius: r}
}

// NewPolygon returns a polygon with the given vertices (relative to the origin)
func NewPolygon(pts ...r2.Point) Shape {
	return Shape{Kind: Polygon, Points: pts}
}

// NewCapsule returns a w x h capsule centred on the origin
func NewCapsule(w, h float64) Shape {
	return Shape{Kind: Capsule, Size: r2.Point{X: w, Y: h}}
}

// NewComposite returns a shape made of many polygons
func NewComposite(parts ...[]r2.Point) Shape {
	return Shape{Kind: Composite, Parts: parts}
}

// At returns a copy of the shape centred on p
func (s Shape) At(p r2.Point) Shape {
	s.Centre = p
	return s
}

// Translate returns a copy of the shape moved by d
func (s Shape) Translate(d r2.Point) Shape {
	s.Centre = s.Centre.Add(d)
	return s
}

// Rotate returns a copy of the shape rotated by a further theta radians
func (s Shape) Rotate(theta float64) Shape {
	s.Rotation += theta
	return s
}

// Validate returns an error if queries against this shape would fail.
func (s Shape) Validate() error {
	_, err := s.Primitives()
	return err
}

// Primitive is the world space building block of every shape; a core
// (1 point, 2 point segment or 3+ point polygon) inflated by Radius.
type Primitive struct {
	Points []r2.Point
	Radius float64
}

// Primitives breaks the shape into world space primitives.
func (s Shape) Primitives() ([]Primitive, error) {
	switch s.Kind {
	case Box:
		if s.Size.X <= 0 || s.Size.Y <= 0 {
			return nil, errors.Wrapf(ErrInvalidGeometry, "box size %v", s.Size)
		}
		hx, hy := s.Size.X/2, s.Size.Y/2
		return []Primitive{{Points: s.world([]r2.Point{
			{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy},
		})}}, nil
	case Circle:
		if s.Radius <= 0 {
			return nil, errors.Wrapf(ErrInvalidGeometry, "circle radius %f", s.Radius)
		}
		return []Primitive{{Points: []r2.Point{s.Centre}, Radius: s.Radius}}, nil
	case Polygon:
		if len(s.Points) < 3 {
			return nil, errors.Wrapf(ErrInvalidGeometry, "polygon with %d points", len(s.Points))
		}
		return []Primitive{{Points: s.world(s.Points)}}, nil
	case Capsule:
		if s.Size.X <= 0 || s.Size.Y <= 0 {
			return nil, errors.Wrapf(ErrInvalidGeometry, "capsule size %v", s.Size)
		}
		// spine runs along the long side, the short side is the diameter
		var a, b r2.Point
		radius := s.Size.Y / 2
		if s.Size.X >= s.Size.Y {
			a, b = r2.Point{X: -(s.Size.X/2 - radius)}, r2.Point{X: s.Size.X/2 - radius}
		} else {
			radius = s.Size.X / 2
			a, b = r2.Point{Y: -(s.Size.Y/2 - radius)}, r2.Point{Y: s.Size.Y/2 - radius}
		}
		return []Primitive{{Points: s.world([]r2.Point{a, b}), Radius: radius}}, nil
	case Composite:
		if len(s.Parts) == 0 {
			return nil, errors.Wrap(ErrInvalidGeometry, "composite with no parts")
		}
		prims := make([]Primitive, len(s.Parts))
		for i, part := range s.Parts {
			if len(part) < 3 {
				return nil, errors.Wrapf(ErrInvalidGeometry, "composite part %d with %d points", i, len(part))
			}
			prims[i] = Primitive{Points: s.world(part)}
		}
		return prims, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedKind, "kind %d", int(s.Kind))
}

// world rotates & translates local points into world space
func (s Shape) world(local []r2.Point) []r2.Point {
	sin, cos := math.Sincos(s.Rotation)
	out := make([]r2.Point, len(local))
	for i, p := range local {
		out[i] = r2.Point{
			X: s.Centre.X + p.X*cos - p.Y*sin,
			Y: s.Centre.Y + p.X*sin + p.Y*cos,
		}
	}
	return out
}

// Bounds returns the world space axis aligned bounding box of the shape.
// An invalid shape returns an empty rect.
func (s Shape) Bounds() r2.Rect {
	prims, err := s.Primitives()
	if err != nil {
		return r2.EmptyRect()
	}
	bnds := r2.EmptyRect()
	for _, p := range prims {
		bnds = bnds.Union(r2.RectFromPoints(p.Points...).ExpandedByMargin(p.Radius))
	}
	return bnds
}

// Distance returns the nearest distance between two shapes.
// Overlapping shapes return a value <= 0 (rounded shapes report how deep
// they overlap, polygons simply report 0).
func Distance(a, b Shape) (float64, error) {
	pa, err := a.Primitives()
	if err != nil {
		return 0, err
	}
	pb, err := b.Primitives()
	if err != nil {
		return 0, err
	}

	best := math.Inf(1)
	for _, x := range pa {
		for _, y := range pb {
			d := coreDist(x.Points, y.Points) - x.Radius - y.Radius
			if d < best {
				best = d
			}
		}
	}
	return best, nil
}

// Overlaps returns if two shapes touch or intersect.
// If either shape is unsupported we report an overlap along with the error.
func Overlaps(a, b Shape) (bool, error) {
	d, err := Distance(a, b)
	if err != nil {
		return true, err
	}
	return d <= 0, nil
}

// coreDist is the distance between two primitive cores
func coreDist(p, q []r2.Point) float64 {
	switch {
	case len(p) >= 3 && len(q) >= 3:
		if contains(p, q[0]) || contains(q, p[0]) {
			return 0
		}
		return edgesDist(p, q)
	case len(p) >= 3:
		return chainPolyDist(q, p)
	case len(q) >= 3:
		return chainPolyDist(p, q)
	}
	a, b := ends(p)
	c, d := ends(q)
	return segSegDist(a, b, c, d)
}

// chainPolyDist is the distance from a point / segment to a polygon
func chainPolyDist(chain, poly []r2.Point) float64 {
	a, b := ends(chain)
	if contains(poly, a) || contains(poly, b) {
		return 0
	}
	best := math.Inf(1)
	for i := range poly {
		c, d := poly[i], poly[(i+1)%len(poly)]
		best = math.Min(best, segSegDist(a, b, c, d))
	}
	return best
}

// edgesDist is the min distance between any edge of p and any edge of q
func edgesDist(p, q []r2.Point) float64 {
	best := math.Inf(1)
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		for j := range q {
			best = math.Min(best, segSegDist(a, b, q[j], q[(j+1)%len(q)]))
			if best == 0 {
				return 0
			}
		}
	}
	return best
}

// ends returns the end points of a point or segment core
func ends(pts []r2.Point) (r2.Point, r2.Point) {
	if len(pts) == 1 {
		return pts[0], pts[0]
	}
	return pts[0], pts[1]
}

// segSegDist is the distance between segments ab and cd
func segSegDist(a, b, c, d r2.Point) float64 {
	if segmentsCross(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(pointSegDist(a, c, d), pointSegDist(b, c, d)),
		math.Min(pointSegDist(c, a, b), pointSegDist(d, a, b)),
	)
}

// segmentsCross returns if ab and cd properly cross. Touching & collinear
// cases are caught by the point distances in segSegDist.
func segmentsCross(a, b, c, d r2.Point) bool {
	d1 := d.Sub(c).Cross(a.Sub(c))
	d2 := d.Sub(c).Cross(b.Sub(c))
	d3 := b.Sub(a).Cross(c.Sub(a))
	d4 := b.Sub(a).Cross(d.Sub(a))
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// pointSegDist is the distance from p to the segment ab
func pointSegDist(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Norm()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.Mul(t))).Norm()
}

// contains returns if p sits within poly (even-odd ray cast)
func contains(poly []r2.Point, p r2.Point) bool {
	in := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				in = !in
			}
		}
		j = i
	}
	return in
}
