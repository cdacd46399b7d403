package road

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"

	"github.com/voidshard/levelgen/internal/shape"
)

const defaultResolution = 64

// CurveConfig configures a single curved road.
// Curved roads are a simpler alternative to a Network; they have no
// side roads or tiles.
type CurveConfig struct {
	// Bounds of the map, required
	Bounds r2.Rect

	// Axis the road travels along, edge to edge
	Axis Axis

	// Width of the road (required, > 0)
	Width float64

	// Inset moves the start & end of the road in from the map edge
	Inset float64

	// Resolution is the number of steps we sample the curve at, defaults to 64
	Resolution int
}

// Ribbon is a constant width strip following a quadratic bezier curve.
//
// Vertices come in left / right pairs, one pair per centreline point.
// UVs run 0 -> 1 across the road and along the road by distance travelled so
// textures don't stretch where samples bunch up.
type Ribbon struct {
	Start, Control, End r2.Point

	Width      float64
	Centerline []r2.Point
	Vertices   []r2.Point
	UVs        []r2.Point
	Triangles  [][3]int
}

// Curve builds a ribbon road from one side of the map to the other with a
// random control point.
func Curve(in *CurveConfig, rng *rand.Rand) (*Ribbon, error) {
	if in == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "no config")
	}
	cfg := *in
	if cfg.Bounds.IsEmpty() || cfg.Bounds.X.Length() <= 0 || cfg.Bounds.Y.Length() <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "bounds %v", cfg.Bounds)
	}
	if cfg.Width <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "width %f", cfg.Width)
	}
	if cfg.Resolution < 1 {
		cfg.Resolution = defaultResolution
	}

	along := cfg.Axis.along(cfg.Bounds)
	cross := cfg.Axis.cross(cfg.Bounds)
	if cfg.Inset*2 >= along.Length() {
		cfg.Inset = 0
	}

	r := &Ribbon{
		Width:   cfg.Width,
		Start:   cfg.Axis.point(along.Lo+cfg.Inset, uniform(rng, cross)),
		End:     cfg.Axis.point(along.Hi-cfg.Inset, uniform(rng, cross)),
		Control: cfg.Axis.point(along.Center(), uniform(rng, cross)),
	}
	r.extrude(cfg.Resolution)

	return r, nil
}

// at returns the curve position at t
func (r *Ribbon) at(t float64) r2.Point {
	u := 1 - t
	return r.Start.Mul(u * u).Add(r.Control.Mul(2 * u * t)).Add(r.End.Mul(t * t))
}

// tangent returns the curve direction at t
func (r *Ribbon) tangent(t float64) r2.Point {
	d := r.Control.Sub(r.Start).Mul(2 * (1 - t)).Add(r.End.Sub(r.Control).Mul(2 * t))
	if d.Norm() == 0 {
		d = r.End.Sub(r.Start)
	}
	return d.Normalize()
}

// extrude samples the curve & builds vertices, UVs & triangles
func (r *Ribbon) extrude(steps int) {
	r.Centerline = make([]r2.Point, steps+1)
	r.Vertices = make([]r2.Point, 0, 2*(steps+1))
	r.UVs = make([]r2.Point, 0, 2*(steps+1))
	r.Triangles = make([][3]int, 0, 2*steps)

	dists := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := r.at(t)
		r.Centerline[i] = p
		if i > 0 {
			dists[i] = dists[i-1] + p.Sub(r.Centerline[i-1]).Norm()
		}

		n := r.tangent(t).Ortho().Mul(r.Width / 2)
		r.Vertices = append(r.Vertices, p.Add(n), p.Sub(n))
	}

	total := dists[steps]
	for i := 0; i <= steps; i++ {
		v := 0.0
		if total > 0 {
			v = dists[i] / total
		}
		r.UVs = append(r.UVs, r2.Point{X: 0, Y: v}, r2.Point{X: 1, Y: v})

		if i == 0 {
			continue
		}
		base := 2 * (i - 1)
		r.Triangles = append(r.Triangles,
			[3]int{base, base + 2, base + 1},
			[3]int{base + 1, base + 2, base + 3},
		)
	}
}

// Length returns the length of the centreline
func (r *Ribbon) Length() float64 {
	total := 0.0
	for i := 1; i < len(r.Centerline); i++ {
		total += r.Centerline[i].Sub(r.Centerline[i-1]).Norm()
	}
	return total
}

// Outline returns the drivable boundary as a polygon; the left edge out and
// the right edge back.
func (r *Ribbon) Outline() shape.Shape {
	pts := make([]r2.Point, 0, len(r.Vertices))
	for i := 0; i < len(r.Vertices); i += 2 {
		pts = append(pts, r.Vertices[i])
	}
	for i := len(r.Vertices) - 1; i > 0; i -= 2 {
		pts = append(pts, r.Vertices[i])
	}
	return shape.NewPolygon(pts...)
}

// Mesh returns the ribbon as a flat triangle mesh (z = 0)
func (r *Ribbon) Mesh() *model3d.Mesh {
	mesh := model3d.NewMesh()
	for _, tri := range r.Triangles {
		t3d := &model3d.Triangle{}
		for i, idx := range tri {
			v := r.Vertices[idx]
			t3d[i] = model3d.XYZ(v.X, v.Y, 0)
		}
		mesh.Add(t3d)
	}
	return mesh
}

// Render draws the ribbon edges & centreline to a PNG at path
func (r *Ribbon) Render(path string) error {
	edges := []*model2d.Segment{}
	centre := []*model2d.Segment{}
	for i := 1; i < len(r.Centerline); i++ {
		j := 2 * i
		edges = append(edges,
			&model2d.Segment{coord(r.Vertices[j-2]), coord(r.Vertices[j])},
			&model2d.Segment{coord(r.Vertices[j-1]), coord(r.Vertices[j+1])},
		)
		centre = append(centre, &model2d.Segment{coord(r.Centerline[i-1]), coord(r.Centerline[i])})
	}
	outline := model2d.NewMeshSegments(edges)
	centreline := model2d.NewMeshSegments(centre)

	bg := model2d.NewRect(outline.Min(), outline.Max())
	return model2d.RasterizeColor(path, []interface{}{
		bg,
		outline,
		centreline,
	}, []color.Color{
		color.Gray{Y: 0xff},
		color.Gray{Y: 0x40},
		color.RGBA{R: 0xff, G: 0xd7, A: 0xff},
	}, math.Max(1, 512/math.Max(outline.Max().X-outline.Min().X, outline.Max().Y-outline.Min().Y)))
}

// coord converts to model2d
func coord(p r2.Point) model2d.Coord {
	return model2d.Coord{X: p.X, Y: p.Y}
}
