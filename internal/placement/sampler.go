package placement

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/voidshard/levelgen/internal/registry"
	"github.com/voidshard/levelgen/internal/road"
	"github.com/voidshard/levelgen/internal/shape"
)

// Placement is a single accepted object
type Placement struct {
	ID        int // registry entry id
	Category  registry.Category
	Position  r2.Point
	Prototype int // index of the prototype used
	Shape     shape.Shape
}

// Result of placing many objects. Objects that could not be placed are counted
// in Skipped with a matching warning.
type Result struct {
	Placed   []*Placement
	Skipped  int
	Warnings []error
}

// Sampler places objects by rejection sampling against a registry.
// Accepted placements are registered immediately so later candidates
// (in the same call or not) treat them as obstacles.
type Sampler struct {
	reg    *registry.Registry
	rng    *rand.Rand
	bounds r2.Rect
	roads  []road.Segment
}

// NewSampler returns a sampler over the given map bounds.
// Roads are used for NearRoad candidates; with no roads NearRoad behaves as Free.
func NewSampler(reg *registry.Registry, rng *rand.Rand, bounds r2.Rect, roads []road.Segment) *Sampler {
	return &Sampler{reg: reg, rng: rng, bounds: bounds, roads: roads}
}

// Place attempts to place count objects. Running out of attempts for an
// object skips it (see Result.Warnings); only a spec that can never work
// returns an error.
func (s *Sampler) Place(count int, spec *Spec) (*Result, error) {
	if count < 0 {
		return nil, errors.Wrapf(ErrInvalidSpec, "%s: count %d", spec.Name, count)
	}
	err := spec.Validate()
	if err != nil {
		return nil, err
	}

	fs, err := s.filters(spec)
	if err != nil {
		return nil, err
	}

	result := &Result{Placed: []*Placement{}, Warnings: []error{}}
	for i := 0; i < count; i++ {
		p, err := s.placeOne(spec, fs)
		if errors.Is(err, ErrExhausted) {
			result.Skipped++
			result.Warnings = append(result.Warnings, errors.Wrapf(err, "%s: object %d of %d", spec.Name, i+1, count))
			continue
		} else if err != nil {
			return nil, err
		}
		result.Placed = append(result.Placed, p)
	}

	return result, nil
}

// placeOne runs the attempt loop for a single object
func (s *Sampler) placeOne(spec *Spec, fs []Filter) (*Placement, error) {
	index := s.rng.Intn(len(spec.Prototypes))
	proto := spec.Prototypes[index]
	extent := proto.Bounds()

	for attempt := 0; attempt < spec.attempts(); attempt++ {
		pos, ok := s.candidate(spec, extent)
		if !ok {
			continue
		}
		c := proto.Translate(pos)

		accepted, err := s.accepted(c, fs)
		if err != nil {
			return nil, err
		}
		if !accepted {
			continue
		}

		e, err := s.reg.Add(spec.Category, c, spec.Soft)
		if err != nil {
			return nil, err
		}
		return &Placement{ID: e.ID, Category: spec.Category, Position: c.Centre, Prototype: index, Shape: c}, nil
	}

	return nil, errors.Wrapf(ErrExhausted, "after %d attempts", spec.attempts())
}

// accepted runs every filter in order, stopping at the first rejection
func (s *Sampler) accepted(c shape.Shape, fs []Filter) (bool, error) {
	for _, fn := range fs {
		ok, err := fn(c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// candidate draws a position for a prototype with the given (origin relative)
// extent. Returns false if there is no room at all.
func (s *Sampler) candidate(spec *Spec, extent r2.Rect) (r2.Point, bool) {
	if spec.Mode == NearRoad && len(s.roads) > 0 {
		return s.roadCandidate(spec, extent), true
	}

	// the area the prototype's centre can sit in & stay within the margin
	area := shrink(s.bounds, spec.EdgeMargin)
	if area.IsEmpty() {
		return r2.Point{}, false
	}
	area = r2.Rect{
		X: intervalFor(area.X.Lo-extent.X.Lo, area.X.Hi-extent.X.Hi),
		Y: intervalFor(area.Y.Lo-extent.Y.Lo, area.Y.Hi-extent.Y.Hi),
	}
	if area.IsEmpty() {
		return r2.Point{}, false
	}

	return r2.Point{
		X: area.X.Lo + s.rng.Float64()*area.X.Length(),
		Y: area.Y.Lo + s.rng.Float64()*area.Y.Length(),
	}, true
}

// roadCandidate picks a random tile & returns a point just beyond one of its
// four sides, jittered along that side.
func (s *Sampler) roadCandidate(spec *Spec, extent r2.Rect) r2.Point {
	tile := s.roads[s.rng.Intn(len(s.roads))]
	tb := tile.Bounds()
	half := tb.Size().Mul(0.5)
	centre := tb.Center()

	gap := s.rng.Float64() * spec.roadGap()
	jitter := s.rng.Float64()*2 - 1

	switch s.rng.Intn(4) {
	case 0: // left
		return r2.Point{X: centre.X - half.X - extent.X.Hi - gap, Y: centre.Y + jitter*half.Y}
	case 1: // right
		return r2.Point{X: centre.X + half.X - extent.X.Lo + gap, Y: centre.Y + jitter*half.Y}
	case 2: // below
		return r2.Point{X: centre.X + jitter*half.X, Y: centre.Y - half.Y - extent.Y.Hi - gap}
	}
	// above
	return r2.Point{X: centre.X + jitter*half.X, Y: centre.Y + half.Y - extent.Y.Lo + gap}
}

// intervalFor returns [lo,hi] or an empty interval if lo > hi
func intervalFor(lo, hi float64) r1.Interval {
	if lo > hi || math.IsNaN(lo) || math.IsNaN(hi) {
		return r1.EmptyInterval()
	}
	return r1.Interval{Lo: lo, Hi: hi}
}
