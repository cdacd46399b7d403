package road

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/voidshard/levelgen/internal/shape"
)

const tolerance = 1e-9

func testBounds(w, h float64) r2.Rect {
	return r2.RectFromCenterSize(r2.Point{}, r2.Point{X: w, Y: h})
}

func TestTilesWithinBounds(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		cfg := &Config{
			Bounds:        testBounds(60, 40),
			Stride:        2,
			TileWidth:     3,
			Padding:       1,
			SideRoads:     4,
			MinSeparation: 5,
		}
		net, err := Generate(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}

		outer := cfg.Bounds.ExpandedByMargin(tolerance)
		for _, s := range net.Segments {
			if !outer.Contains(s.Bounds()) {
				t.Errorf("seed %d: tile %v outside of map", seed, s.Bounds())
			}
			if !outer.Contains(s.Shape().Bounds()) {
				t.Errorf("seed %d: tile shape %v outside of map", seed, s.Shape().Bounds())
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	cfg := &Config{
		Bounds:        testBounds(50, 50),
		Stride:        1,
		SideRoads:     3,
		MinSeparation: 4,
	}

	a, err := Generate(cfg, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(cfg, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.Segments, b.Segments) {
		t.Error("same seed produced different tiles")
	}
	if !reflect.DeepEqual(a.AnchorOffsets, b.AnchorOffsets) {
		t.Error("same seed produced different anchors")
	}
}

func TestMainRoadEdgeToEdge(t *testing.T) {
	cfg := &Config{Bounds: testBounds(20, 10), Stride: 2}
	net, err := Generate(cfg, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}

	main := net.MainRoad()
	length := cfg.Bounds.Y.Length()
	rotation := 0.0
	if net.Axis == Horizontal {
		length = cfg.Bounds.X.Length()
		rotation = math.Pi / 2
	}

	if len(main) != int(length/2) {
		t.Errorf("expected %d tiles got %d", int(length/2), len(main))
	}
	for _, s := range main {
		if s.Rotation != rotation {
			t.Errorf("expected rotation %f got %f", rotation, s.Rotation)
		}
	}
	for i := 1; i < len(main); i++ {
		gap := main[i].Position.Sub(main[i-1].Position).Norm()
		if math.Abs(gap-2) > tolerance {
			t.Errorf("tiles %d & %d are %f apart", i-1, i, gap)
		}
	}
}

func TestSingleTileOnTinyMap(t *testing.T) {
	cfg := &Config{Bounds: testBounds(0.5, 0.5), Stride: 1, SideRoads: 3, MinSeparation: 1}
	net, err := Generate(cfg, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}

	if len(net.MainRoad()) != 1 {
		t.Fatalf("expected a single tile, got %d", len(net.MainRoad()))
	}
	if !cfg.Bounds.ExpandedByMargin(tolerance).Contains(net.Segments[0].Bounds()) {
		t.Errorf("tile %v outside of map", net.Segments[0].Bounds())
	}
	if len(net.Segments) != 1 {
		t.Errorf("side roads should not fit, got %d tiles", len(net.Segments))
	}
}

func TestNoSideRoads(t *testing.T) {
	cfg := &Config{Bounds: testBounds(30, 30), Stride: 1}
	net, err := Generate(cfg, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}

	if len(net.Anchors) != 0 || net.SideRoads != 0 {
		t.Errorf("expected no anchors or side roads, got %d / %d", len(net.Anchors), net.SideRoads)
	}
	for _, s := range net.Segments {
		if s.Side {
			t.Error("found side road tile")
		}
	}
}

func TestAnchorSeparation(t *testing.T) {
	// L = 40, K = 5, D = 8 -> K*D == L
	for seed := int64(1); seed <= 30; seed++ {
		cfg := &Config{
			Bounds:        testBounds(40, 40),
			Stride:        1,
			SideRoads:     5,
			MinSeparation: 8,
			AnchorRetries: 3,
		}
		net, err := Generate(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}

		if len(net.AnchorOffsets) != 5 {
			t.Fatalf("seed %d: expected 5 anchors, got %d", seed, len(net.AnchorOffsets))
		}
		for i, a := range net.AnchorOffsets {
			for j, b := range net.AnchorOffsets {
				if i != j && math.Abs(a-b) < 8-tolerance {
					t.Errorf("seed %d: anchors %f & %f closer than 8", seed, a, b)
				}
			}
		}
	}
}

func TestAnchorSeparationRandom(t *testing.T) {
	// random L, K & D with L >= K*D; D is rarely exactly representable
	params := rand.New(rand.NewSource(42))
	for seed := int64(1); seed <= 200; seed++ {
		length := 10 + params.Float64()*40
		k := 2 + params.Intn(5)
		d := length / float64(k)
		if params.Intn(4) != 0 {
			d *= 0.5 + 0.5*params.Float64()
		}

		cfg := &Config{
			Bounds:            testBounds(length, length),
			Stride:            0.5 + params.Float64()*2,
			SideRoads:         k,
			MinSeparation:     d,
			MaxSideRoadLength: 2,
			AnchorRetries:     1 + params.Intn(5),
		}
		net, err := Generate(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}

		if len(net.AnchorOffsets) != k {
			t.Fatalf("seed %d: expected %d anchors, got %d", seed, k, len(net.AnchorOffsets))
		}
		for i, a := range net.AnchorOffsets {
			for j, b := range net.AnchorOffsets {
				if i != j && math.Abs(a-b) < d-1e-6 {
					t.Errorf("seed %d: L=%f K=%d D=%f anchors %f & %f too close", seed, length, k, d, a, b)
				}
			}
		}
	}
}

func TestPackingExactFit(t *testing.T) {
	// 0.7 isn't representable; adding it ten times lands past 10*0.7
	sep := 0.7
	free := []r1.Interval{{Lo: 0, Hi: 10 * sep}}
	if !fits(free, sep, 11) {
		t.Errorf("expected 11 points %f apart to fit in %v", sep, free[0])
	}

	got := packing(free, sep, 11)
	if len(got) != 11 {
		t.Errorf("expected 11 points, got %d", len(got))
	}
	for _, p := range got {
		if !free[0].Contains(p) {
			t.Errorf("packed point %f outside %v", p, free[0])
		}
	}
}

func TestAnchorsOnTiledRoad(t *testing.T) {
	// 41.5 isn't a multiple of the stride so the tiles stop short of the bounds
	for seed := int64(1); seed <= 30; seed++ {
		cfg := &Config{
			Bounds:        testBounds(41.5, 41.5),
			Stride:        4,
			SideRoads:     3,
			MinSeparation: 4,
			AnchorSpan:    1,
		}
		net, err := Generate(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}

		tiled := r1.EmptyInterval()
		for _, s := range net.Segments {
			if s.Branch != 0 {
				continue
			}
			c := s.Position.Y
			if net.Axis == Horizontal {
				c = s.Position.X
			}
			tiled = tiled.Union(r1.Interval{Lo: c - s.Length/2, Hi: c + s.Length/2})
		}

		for _, a := range net.AnchorOffsets {
			if !tiled.Expanded(tolerance).Contains(a) {
				t.Errorf("seed %d: anchor %f off the tiled road %v", seed, a, tiled)
			}
		}
	}
}

func TestRestrictedZone(t *testing.T) {
	zone := r2.RectFromCenterSize(r2.Point{X: 2, Y: -3}, r2.Point{X: 10, Y: 10})
	for seed := int64(1); seed <= 30; seed++ {
		cfg := &Config{
			Bounds:        testBounds(50, 50),
			Restricted:    &zone,
			Stride:        1,
			TileWidth:     2,
			SideRoads:     4,
			MinSeparation: 3,
		}
		net, err := Generate(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}

		for _, a := range net.Anchors {
			if zone.ContainsPoint(a) {
				t.Errorf("seed %d: anchor %v inside restricted zone", seed, a)
			}
		}

		boxed := shape.NewBox(zone.Size().X, zone.Size().Y).At(zone.Center())
		for _, s := range net.Segments {
			if !s.Side {
				continue
			}
			d, err := shape.Distance(s.Shape(), boxed)
			if err != nil {
				t.Fatal(err)
			}
			if d < -tolerance {
				t.Errorf("seed %d: side road tile %v enters restricted zone", seed, s.Position)
			}
		}

		// the main road is beside the zone, never through it
		cross := net.Axis.cross(zone)
		if net.Offset > cross.Lo && net.Offset < cross.Hi {
			t.Errorf("seed %d: main road offset %f inside zone %v", seed, net.Offset, cross)
		}
	}
}

func TestSideRoadsStartOffMainRoad(t *testing.T) {
	cfg := &Config{Bounds: testBounds(40, 40), Stride: 2, SideRoads: 2, MinSeparation: 6, MaxSideRoadLength: 10}
	net, err := Generate(cfg, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= len(net.Anchors); i++ {
		branch := net.Branch(i)
		if len(branch) > 4 {
			t.Errorf("branch %d has %d tiles, capped at 4", i, len(branch))
		}
		for _, s := range branch {
			cross := s.Position.X
			if net.Axis == Horizontal {
				cross = s.Position.Y
			}
			if math.Abs(cross-net.Offset) < s.Width/2+s.Length/2-tolerance {
				t.Errorf("branch %d tile at %v sits on the main road", i, s.Position)
			}
		}
	}
}

func TestBoundaryCoversTiles(t *testing.T) {
	cfg := &Config{Bounds: testBounds(30, 30), Stride: 1, SideRoads: 2, MinSeparation: 3}
	net, err := Generate(cfg, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatal(err)
	}

	if net.Boundary.Kind != shape.Composite || len(net.Boundary.Parts) != len(net.Segments) {
		t.Fatalf("expected composite with %d parts", len(net.Segments))
	}
	for _, s := range net.Segments {
		hit, err := shape.Overlaps(net.Boundary, shape.NewCircle(0.1).At(s.Position))
		if err != nil {
			t.Fatal(err)
		}
		if !hit {
			t.Errorf("boundary misses tile at %v", s.Position)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	_, err := Generate(&Config{Bounds: testBounds(10, 10)}, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Error("expected error for zero stride")
	}
	_, err = Generate(&Config{Bounds: r2.EmptyRect(), Stride: 1}, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Error("expected error for empty bounds")
	}
}
