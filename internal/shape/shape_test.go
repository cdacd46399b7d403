package shape

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDistance(t *testing.T) {
	cases := []struct {
		Name   string
		A, B   Shape
		Expect float64
	}{
		{
			Name:   "circles apart",
			A:      NewCircle(1),
			B:      NewCircle(1).At(r2.Point{X: 5}),
			Expect: 3,
		},
		{
			Name:   "circles overlapping",
			A:      NewCircle(2),
			B:      NewCircle(2).At(r2.Point{X: 3}),
			Expect: -1,
		},
		{
			Name:   "boxes side by side",
			A:      NewBox(2, 2),
			B:      NewBox(2, 2).At(r2.Point{X: 4}),
			Expect: 2,
		},
		{
			Name:   "boxes touching",
			A:      NewBox(2, 2),
			B:      NewBox(2, 2).At(r2.Point{X: 2}),
			Expect: 0,
		},
		{
			Name:   "box contains box",
			A:      NewBox(10, 10),
			B:      NewBox(1, 1),
			Expect: 0,
		},
		{
			Name:   "box to circle",
			A:      NewBox(2, 2),
			B:      NewCircle(1).At(r2.Point{Y: 4}),
			Expect: 2,
		},
		{
			Name:   "circle inside box",
			A:      NewBox(4, 4),
			B:      NewCircle(0.5),
			Expect: -0.5,
		},
		{
			Name:   "capsule to circle along spine",
			A:      NewCapsule(6, 2),
			B:      NewCircle(1).At(r2.Point{X: 6}),
			Expect: 2,
		},
		{
			Name:   "vertical capsule",
			A:      NewCapsule(2, 6),
			B:      NewCircle(1).At(r2.Point{X: 4}),
			Expect: 2,
		},
		{
			Name: "polygon to box",
			A: NewPolygon(
				r2.Point{X: 0, Y: 0},
				r2.Point{X: 2, Y: 0},
				r2.Point{X: 1, Y: 2},
			),
			B:      NewBox(2, 2).At(r2.Point{X: 1, Y: -3}),
			Expect: 2,
		},
		{
			Name: "composite uses nearest part",
			A: NewComposite(
				[]r2.Point{{X: 10, Y: 0}, {X: 12, Y: 0}, {X: 12, Y: 2}, {X: 10, Y: 2}},
				[]r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}},
			),
			B:      NewCircle(1).At(r2.Point{X: 1, Y: 5}),
			Expect: 2,
		},
		{
			Name:   "rotated box",
			A:      NewBox(4, 2).Rotate(math.Pi / 2),
			B:      NewCircle(1).At(r2.Point{Y: 4}),
			Expect: 1,
		},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			d, err := Distance(tt.A, tt.B)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approxEqual(d, tt.Expect) {
				t.Errorf("expected %f got %f", tt.Expect, d)
			}

			rev, _ := Distance(tt.B, tt.A)
			if !approxEqual(d, rev) {
				t.Errorf("distance not symmetric %f vs %f", d, rev)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		Name   string
		A, B   Shape
		Expect bool
	}{
		{"apart", NewBox(1, 1), NewBox(1, 1).At(r2.Point{X: 3}), false},
		{"crossing segments", NewBox(10, 0.5), NewBox(0.5, 10), true},
		{"touching", NewCircle(1), NewCircle(1).At(r2.Point{X: 2}), true},
		{"capsule vs box", NewCapsule(4, 1), NewBox(1, 1).At(r2.Point{X: 2.2}), true},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			hit, err := Overlaps(tt.A, tt.B)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hit != tt.Expect {
				t.Errorf("expected %v got %v", tt.Expect, hit)
			}
		})
	}
}

func TestOverlapsFailsClosed(t *testing.T) {
	bad := Shape{Kind: Kind(42)}

	hit, err := Overlaps(bad, NewCircle(1).At(r2.Point{X: 100}))
	if !hit {
		t.Error("unsupported shape kind should be reported as colliding")
	}
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("expected ErrUnsupportedKind, got %v", err)
	}

	hit, err = Overlaps(NewPolygon(r2.Point{}, r2.Point{X: 1}), NewCircle(1).At(r2.Point{X: 100}))
	if !hit {
		t.Error("invalid geometry should be reported as colliding")
	}
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestTranslateDoesNotMutate(t *testing.T) {
	proto := NewBox(2, 2)
	moved := proto.Translate(r2.Point{X: 5, Y: 5})

	if proto.Centre != (r2.Point{}) {
		t.Errorf("prototype moved to %v", proto.Centre)
	}
	if moved.Centre != (r2.Point{X: 5, Y: 5}) {
		t.Errorf("expected moved to (5,5) got %v", moved.Centre)
	}
}

func TestBounds(t *testing.T) {
	b := NewCircle(2).At(r2.Point{X: 1, Y: 1}).Bounds()
	if !approxEqual(b.X.Lo, -1) || !approxEqual(b.X.Hi, 3) || !approxEqual(b.Y.Lo, -1) || !approxEqual(b.Y.Hi, 3) {
		t.Errorf("unexpected bounds %v", b)
	}

	if !(Shape{}).Bounds().IsEmpty() {
		t.Error("expected empty bounds for unknown shape")
	}
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{Box, Circle, Polygon, Capsule, Composite} {
		data, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var out Kind
		if err := out.UnmarshalText(data); err != nil {
			t.Fatal(err)
		}
		if out != k {
			t.Errorf("expected %v got %v", k, out)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("hexagon")); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("expected ErrUnsupportedKind got %v", err)
	}
}

func TestPointCoreDistance(t *testing.T) {
	// circle cores are zero length segments, distances must stay finite
	a := r2.Point{X: 1, Y: 1}
	p := r2.Point{X: 4, Y: 5}

	d := pointSegDist(p, a, a)
	if math.IsNaN(d) || !approxEqual(d, 5) {
		t.Errorf("expected 5 from a degenerate segment, got %f", d)
	}

	d = segSegDist(a, a, p, p)
	if math.IsNaN(d) || !approxEqual(d, 5) {
		t.Errorf("expected 5 between two point cores, got %f", d)
	}
}
