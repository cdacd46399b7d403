package road

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/voidshard/levelgen/internal/shape"
)

var (
	// ErrInvalidConfig implies the road config cannot produce any road at all
	ErrInvalidConfig = errors.New("invalid road config")
)

const (
	defaultAnchorRetries = 30
	defaultAnchorSpan    = 2.0 / 3.0
)

// Axis is the direction of travel of the main road
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

// String returns the axis name
func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// MarshalText writes the axis name
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// point returns the world point for the given along / cross axis values
func (a Axis) point(along, cross float64) r2.Point {
	if a == Horizontal {
		return r2.Point{X: along, Y: cross}
	}
	return r2.Point{X: cross, Y: along}
}

// along returns the interval of rect that runs with the axis
func (a Axis) along(rect r2.Rect) r1.Interval {
	if a == Horizontal {
		return rect.X
	}
	return rect.Y
}

// cross returns the interval of rect that runs across the axis
func (a Axis) cross(rect r2.Rect) r1.Interval {
	if a == Horizontal {
		return rect.Y
	}
	return rect.X
}

// rotation of tiles travelling along this axis. Tile art runs along Y so
// horizontal roads are turned 90 degrees.
func (a Axis) rotation() float64 {
	if a == Horizontal {
		return math.Pi / 2
	}
	return 0
}

// other returns the perpendicular axis
func (a Axis) other() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Config configures a tiled road network.
type Config struct {
	// Bounds of the map, required
	Bounds r2.Rect

	// Restricted is an optional no-build area. The main road runs beside it
	// and side roads never enter it.
	Restricted *r2.Rect

	// Stride is the length of each tile along the road (required, > 0)
	Stride float64

	// TileWidth is the width of each tile across the road, defaults to Stride
	TileWidth float64

	// Padding keeps roads this far from the map edge
	Padding float64

	// SideRoads is the number of side roads (K) to branch off the main road
	SideRoads int

	// MinSeparation (D) between side road anchors along the main road
	MinSeparation float64

	// MaxSideRoadLength caps the length of each side road.
	// If 0 side roads run up to the map edge.
	MaxSideRoadLength float64

	// AnchorRetries is how many candidates we try per anchor before taking
	// the best we found. Defaults to 30
	AnchorRetries int

	// AnchorSpan is the fraction of the main road (centred on its middle) that
	// anchors are drawn from. Defaults to 2/3. Widened as needed to fit
	// SideRoads anchors at MinSeparation.
	AnchorSpan float64
}

// Segment is a single road tile
type Segment struct {
	Position r2.Point
	Rotation float64 // radians; tile art runs along Y when Rotation is 0
	Length   float64 // length along the direction of travel (the stride)
	Width    float64
	Branch   int  `json:",omitempty"` // 0 for the main road, otherwise 1..K
	Side     bool `json:",omitempty"` // true if on a side road
}

// Shape returns the collision shape of the tile
func (s Segment) Shape() shape.Shape {
	return shape.NewBox(s.Width, s.Length).Rotate(s.Rotation).At(s.Position)
}

// Bounds returns the axis aligned area covered by the tile
func (s Segment) Bounds() r2.Rect {
	size := r2.Point{X: s.Width, Y: s.Length}
	if math.Abs(math.Sin(s.Rotation)) > 0.5 {
		size = r2.Point{X: s.Length, Y: s.Width}
	}
	return r2.RectFromCenterSize(s.Position, size)
}

// corners returns the tile outline in world space
func (s Segment) corners() []r2.Point {
	v := s.Bounds().Vertices()
	return v[:]
}

// Network is a main road with side roads branching off it.
// It's built once and never modified.
type Network struct {
	Axis   Axis
	Offset float64 // position of the main road on the cross axis

	Segments []Segment

	// Anchors are where side roads meet the main road, AnchorOffsets are
	// the same positions measured along the main road.
	Anchors       []r2.Point
	AnchorOffsets []float64

	// SideRoads is the number of side roads that ended up with tiles
	SideRoads int

	// Boundary is every tile merged into one shape
	Boundary shape.Shape `json:"-"`
}

// MainRoad returns tiles of the main road
func (n *Network) MainRoad() []Segment {
	return n.Branch(0)
}

// Branch returns tiles of the given side road (1..K)
func (n *Network) Branch(i int) []Segment {
	out := []Segment{}
	for _, s := range n.Segments {
		if s.Branch == i {
			out = append(out, s)
		}
	}
	return out
}

// Generate builds a new road network.
// The network always holds at least one tile, maps smaller than a tile get
// a single tile clipped to fit.
func Generate(in *Config, rng *rand.Rand) (*Network, error) {
	if in == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "no config")
	}
	cfg := *in
	if cfg.Bounds.IsEmpty() || cfg.Bounds.X.Length() <= 0 || cfg.Bounds.Y.Length() <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "bounds %v", cfg.Bounds)
	}
	if cfg.Stride <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "stride %f", cfg.Stride)
	}
	if cfg.TileWidth <= 0 {
		cfg.TileWidth = cfg.Stride
	}
	if cfg.AnchorRetries <= 0 {
		cfg.AnchorRetries = defaultAnchorRetries
	}
	if cfg.AnchorSpan <= 0 || cfg.AnchorSpan > 1 {
		cfg.AnchorSpan = defaultAnchorSpan
	}
	if cfg.SideRoads < 0 {
		cfg.SideRoads = 0
	}
	if cfg.Restricted != nil && cfg.Restricted.IsEmpty() {
		cfg.Restricted = nil
	}

	b := &builder{cfg: &cfg, rng: rng, padded: padded(cfg.Bounds, cfg.Padding)}
	return b.build(), nil
}

// padded returns the bounds shrunk by pad, or the bounds if that leaves nothing
func padded(bounds r2.Rect, pad float64) r2.Rect {
	if pad <= 0 {
		return bounds
	}
	in := bounds.ExpandedByMargin(-pad)
	if in.IsEmpty() || in.X.Length() <= 0 || in.Y.Length() <= 0 {
		return bounds
	}
	return in
}

// builder holds working state while we lay out the network
type builder struct {
	cfg    *Config
	rng    *rand.Rand
	padded r2.Rect

	axis   Axis
	offset float64
	width  float64
	tiled  r1.Interval // along axis extent of the main road tiles
	net    *Network
}

// build lays out the main road, anchors & side roads in that order
func (b *builder) build() *Network {
	b.axis = Axis(b.rng.Intn(2))
	b.width = math.Min(b.cfg.TileWidth, b.axis.cross(b.cfg.Bounds).Length())
	b.offset = b.chooseOffset()

	b.net = &Network{Axis: b.axis, Offset: b.offset, Segments: []Segment{}, Anchors: []r2.Point{}, AnchorOffsets: []float64{}}
	b.mainRoad()

	if b.cfg.SideRoads > 0 {
		for i, a := range b.anchors() {
			b.net.AnchorOffsets = append(b.net.AnchorOffsets, a)
			b.net.Anchors = append(b.net.Anchors, b.axis.point(a, b.offset))
			if b.branch(i+1, a) {
				b.net.SideRoads++
			}
		}
	}

	parts := make([][]r2.Point, len(b.net.Segments))
	for i, s := range b.net.Segments {
		parts[i] = s.corners()
	}
	b.net.Boundary = shape.NewComposite(parts...)

	return b.net
}

// chooseOffset picks where the main road sits across its axis.
// With a restricted zone we choose one of the two sides of it at random.
func (b *builder) chooseOffset() float64 {
	interior := b.axis.cross(b.padded).Expanded(-b.width / 2)
	if interior.IsEmpty() {
		return b.axis.cross(b.cfg.Bounds).Center()
	}
	if b.cfg.Restricted == nil {
		return uniform(b.rng, interior)
	}

	zone := b.axis.cross(*b.cfg.Restricted)
	sides := []r1.Interval{}
	for _, side := range []r1.Interval{
		{Lo: interior.Lo, Hi: math.Min(interior.Hi, zone.Lo-b.width/2)},
		{Lo: math.Max(interior.Lo, zone.Hi+b.width/2), Hi: interior.Hi},
	} {
		if !side.IsEmpty() {
			sides = append(sides, side)
		}
	}

	switch len(sides) {
	case 0:
		// no room beside the zone; hug whichever edge is furthest from it
		if zone.Lo-interior.Lo >= interior.Hi-zone.Hi {
			return interior.Lo
		}
		return interior.Hi
	case 1:
		return uniform(b.rng, sides[0])
	}
	return uniform(b.rng, sides[b.rng.Intn(2)])
}

// mainRoad lays tiles edge to edge along the axis, centred in the padded area
func (b *builder) mainRoad() {
	along := b.axis.along(b.padded)
	stride := b.cfg.Stride

	count := int(math.Floor(along.Length() / stride))
	if count < 1 {
		b.tiled = along
		b.net.Segments = append(b.net.Segments, Segment{
			Position: b.axis.point(along.Center(), b.offset),
			Rotation: b.axis.rotation(),
			Length:   along.Length(),
			Width:    b.width,
		})
		return
	}

	lo := along.Lo + (along.Length()-float64(count)*stride)/2
	b.tiled = r1.Interval{Lo: lo, Hi: lo + float64(count)*stride}

	start := lo + stride/2
	for i := 0; i < count; i++ {
		b.net.Segments = append(b.net.Segments, Segment{
			Position: b.axis.point(start+float64(i)*stride, b.offset),
			Rotation: b.axis.rotation(),
			Length:   stride,
			Width:    b.width,
		})
	}
}

// branch lays a side road out from the anchor at `along` on a random side.
// If the first tile on that side is blocked we try the other side.
// Returns false if no tiles were placed.
func (b *builder) branch(id int, along float64) bool {
	s := b.cfg.Stride
	maxLen := b.cfg.MaxSideRoadLength
	if maxLen <= 0 {
		maxLen = b.axis.cross(b.cfg.Bounds).Length()
	}
	maxLen = math.Max(maxLen, 2*s)
	length := 2*s + b.rng.Float64()*(maxLen-2*s)
	count := int(math.Floor(length / s))

	sign := 1.0
	if b.rng.Intn(2) == 0 {
		sign = -1
	}

	for _, dir := range []float64{sign, -sign} {
		tiles := b.branchTiles(id, along, dir, count)
		if len(tiles) > 0 {
			b.net.Segments = append(b.net.Segments, tiles...)
			return true
		}
	}
	return false
}

// branchTiles returns tiles 1..count-1 (tile 0 is the crossing on the main road)
// running in direction dir, stopping at the first that leaves the map or
// touches the restricted zone.
func (b *builder) branchTiles(id int, along, dir float64, count int) []Segment {
	s := b.cfg.Stride
	tiles := []Segment{}
	for k := 1; k < count; k++ {
		cross := b.offset + dir*(b.width/2+float64(k-1)*s+s/2)
		tile := Segment{
			Position: b.axis.point(along, cross),
			Rotation: b.axis.other().rotation(),
			Length:   s,
			Width:    b.width,
			Branch:   id,
			Side:     true,
		}
		if b.blocked(tile) {
			break
		}
		tiles = append(tiles, tile)
	}
	return tiles
}

// blocked returns if the tile leaves the padded map or touches the restricted zone
func (b *builder) blocked(tile Segment) bool {
	bnds := tile.Bounds()
	if !b.padded.ExpandedByMargin(epsilon).Contains(bnds) {
		return true
	}
	if b.cfg.Restricted == nil {
		return false
	}
	return b.cfg.Restricted.Intersects(bnds)
}

// epsilon allows for float error when checking tiles against the map edge
const epsilon = 1e-9

// uniform returns a uniform random value within i
func uniform(rng *rand.Rand, i r1.Interval) float64 {
	return i.Lo + rng.Float64()*i.Length()
}
