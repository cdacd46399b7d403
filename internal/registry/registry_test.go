package registry

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/voidshard/levelgen/internal/shape"
)

func mustAdd(t *testing.T, r *Registry, cat Category, sh shape.Shape, soft bool) *Entry {
	t.Helper()
	e, err := r.Add(cat, sh, soft)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestOverlapsSolidFirst(t *testing.T) {
	r := New()
	wall := mustAdd(t, r, "wall", shape.NewBox(2, 2), false)
	mustAdd(t, r, "road", shape.NewBox(10, 1), true)

	mask, err := r.MaskOf("wall", "road")
	if err != nil {
		t.Fatal(err)
	}

	hits, err := r.Overlaps(shape.NewCircle(0.5), mask, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != wall.ID {
		t.Errorf("expected only the solid wall, got %v", hits)
	}
}

func TestOverlapsSoftPass(t *testing.T) {
	r := New()
	mustAdd(t, r, "wall", shape.NewBox(2, 2), false)
	road := mustAdd(t, r, "road", shape.NewBox(10, 1), true)

	mask, _ := r.MaskOf("wall", "road")
	coin := shape.NewCircle(0.25).At(r2.Point{X: 4})

	hits, err := r.Overlaps(coin, mask, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("soft entries should be ignored, got %v", hits)
	}

	hits, err = r.Overlaps(coin, mask, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != road.ID {
		t.Errorf("expected road hit, got %v", hits)
	}
}

func TestOverlapsRespectsMask(t *testing.T) {
	r := New()
	mustAdd(t, r, "tree", shape.NewCircle(1), false)

	mask, _ := r.MaskOf("building")
	hits, err := r.Overlaps(shape.NewCircle(1), mask, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits outside mask, got %v", hits)
	}
}

func TestOverlapsInvalidShape(t *testing.T) {
	r := New()
	mask, _ := r.MaskOf("anything")

	_, err := r.Overlaps(shape.Shape{Kind: shape.Kind(99)}, mask, true)
	if err == nil {
		t.Error("expected an error for an unsupported shape")
	}

	_, err = r.Add("anything", shape.Shape{}, false)
	if err == nil {
		t.Error("expected an error registering an unsupported shape")
	}
}

func TestRemoveAndTagged(t *testing.T) {
	r := New()
	a := mustAdd(t, r, "coin", shape.NewCircle(1), true)
	b := mustAdd(t, r, "coin", shape.NewCircle(1).At(r2.Point{X: 5}), true)
	c := mustAdd(t, r, "coin", shape.NewCircle(1).At(r2.Point{X: 10}), true)

	if !r.Remove(a.ID) {
		t.Fatal("expected remove to succeed")
	}
	if r.Remove(a.ID) {
		t.Error("expected second remove to fail")
	}

	tagged := r.Tagged("coin")
	if len(tagged) != 2 || tagged[0].ID != b.ID || tagged[1].ID != c.ID {
		t.Errorf("unexpected tagged entries %v", tagged)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 entries got %d", r.Len())
	}

	got, ok := r.Get(b.ID)
	if !ok || got != b {
		t.Errorf("expected to get entry %d, got %v", b.ID, got)
	}
	_, ok = r.Get(a.ID)
	if ok {
		t.Error("removed entry still returned")
	}
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	r := New()
	mustAdd(t, r, "road", shape.NewBox(10, 1), true)
	_, err := r.MaskOf("tree", "road")
	if err != nil {
		t.Fatal(err)
	}
	mustAdd(t, r, "coin", shape.NewCircle(1), true)

	got := r.Categories()
	want := []Category{"road", "tree", "coin"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}

	got[0] = "mutated"
	if r.Categories()[0] != "road" {
		t.Error("categories should be a copy")
	}
}

func TestNearest(t *testing.T) {
	r := New()
	mask, _ := r.MaskOf("crate")

	e, d, err := r.Nearest(shape.NewCircle(1), mask)
	if err != nil {
		t.Fatal(err)
	}
	if e != nil || !math.IsInf(d, 1) {
		t.Errorf("expected nothing, got %v %f", e, d)
	}

	mustAdd(t, r, "crate", shape.NewBox(2, 2).At(r2.Point{X: 10}), false)
	near := mustAdd(t, r, "crate", shape.NewBox(2, 2).At(r2.Point{X: 5}), false)

	e, d, err = r.Nearest(shape.NewCircle(1), mask)
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != near.ID || math.Abs(d-3) > 1e-9 {
		t.Errorf("expected nearest crate at distance 3, got %v %f", e, d)
	}
}

func TestMaskOfLimit(t *testing.T) {
	r := New()
	for i := 0; i < 64; i++ {
		_, err := r.MaskOf(Category(string(rune('A' + i))))
		if err != nil {
			t.Fatalf("category %d: %v", i, err)
		}
	}
	_, err := r.MaskOf("one-too-many")
	if err == nil {
		t.Error("expected error for the 65th category")
	}
}
