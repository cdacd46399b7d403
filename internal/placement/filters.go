package placement

import (
	"github.com/golang/geo/r2"

	"github.com/voidshard/levelgen/internal/registry"
	"github.com/voidshard/levelgen/internal/shape"
)

// Filter accepts or rejects a candidate shape (already moved into position).
// An error means the candidate could not be tested & is fatal for the run.
type Filter func(candidate shape.Shape) (bool, error)

// filters builds the checks for a spec, cheapest first.
func (s *Sampler) filters(spec *Spec) ([]Filter, error) {
	fs := []Filter{s.WithinMargin(spec.EdgeMargin)}

	for _, ex := range spec.Exclusions {
		if ex.Radius <= 0 {
			continue
		}
		f, err := s.ExcludeNear(ex.Category, ex.Radius)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}

	f, err := s.NotBlocked(spec.Category, spec.Blocking, spec.IncludeSoft)
	if err != nil {
		return nil, err
	}
	fs = append(fs, f)

	if spec.MinSpread > 0 {
		f, err := s.MinSpread(spec.Category, spec.MinSpread)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}

	if spec.Anchor != "" {
		f, err := s.NearAnchor(spec.Anchor, spec.MaxAnchorDistance)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}

	return fs, nil
}

// WithinMargin ensures the candidate sits inside the map shrunk by margin.
func (s *Sampler) WithinMargin(margin float64) Filter {
	return func(c shape.Shape) (bool, error) {
		return shrink(s.bounds, margin).Contains(c.Bounds()), nil
	}
}

// ExcludeNear ensures nothing in cat is within radius of the candidate centre.
// This ignores the candidate's real shape.
func (s *Sampler) ExcludeNear(cat registry.Category, radius float64) (Filter, error) {
	mask, err := s.reg.MaskOf(cat)
	if err != nil {
		return nil, err
	}
	return func(c shape.Shape) (bool, error) {
		hits, err := s.reg.Overlaps(shape.NewCircle(radius).At(c.Centre), mask, true)
		return len(hits) == 0, err
	}, nil
}

// NotBlocked ensures the candidate overlaps nothing in the blocking categories
// (solid, then soft if includeSoft) nor anything of its own category.
func (s *Sampler) NotBlocked(self registry.Category, blocking []registry.Category, includeSoft bool) (Filter, error) {
	mask, err := s.reg.MaskOf(blocking...)
	if err != nil {
		return nil, err
	}
	own, err := s.reg.MaskOf(self)
	if err != nil {
		return nil, err
	}
	return func(c shape.Shape) (bool, error) {
		if mask != 0 {
			hits, err := s.reg.Overlaps(c, mask, includeSoft)
			if err != nil || len(hits) > 0 {
				return false, err
			}
		}
		hits, err := s.reg.Overlaps(c, own, true)
		return len(hits) == 0, err
	}, nil
}

// MinSpread ensures the candidate is at least dist (shape to shape) from
// everything else in cat.
func (s *Sampler) MinSpread(cat registry.Category, dist float64) (Filter, error) {
	mask, err := s.reg.MaskOf(cat)
	if err != nil {
		return nil, err
	}
	return func(c shape.Shape) (bool, error) {
		_, d, err := s.reg.Nearest(c, mask)
		return d >= dist, err
	}, nil
}

// NearAnchor ensures at least one entry of cat is within dist (shape to shape).
func (s *Sampler) NearAnchor(cat registry.Category, dist float64) (Filter, error) {
	mask, err := s.reg.MaskOf(cat)
	if err != nil {
		return nil, err
	}
	return func(c shape.Shape) (bool, error) {
		e, d, err := s.reg.Nearest(c, mask)
		return e != nil && d <= dist, err
	}, nil
}

// shrink returns the rect shrunk by margin on every side (possibly empty)
func shrink(r r2.Rect, margin float64) r2.Rect {
	if margin <= 0 {
		return r
	}
	return r.ExpandedByMargin(-margin)
}
