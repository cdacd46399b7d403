package registry

import (
	"math"
	"sort"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"

	"github.com/voidshard/levelgen/internal/shape"
)

var (
	// ErrTooManyCategories implies we've run out of bits for category masks
	ErrTooManyCategories = errors.New("registry supports at most 64 categories")
)

// Category is a tag that entries are filed under (eg. "road", "building")
type Category string

// Mask is a set of categories, each category is assigned one bit on
// first sight.
type Mask uint64

// Has returns if the mask includes bit b
func (m Mask) Has(b Mask) bool {
	return m&b != 0
}

// Entry is something with a shape that takes up space.
type Entry struct {
	ID       int
	Category Category
	Shape    shape.Shape
	Soft     bool // soft (trigger) entries are only tested if asked for

	bounds r2.Rect
}

// Registry is a categorised spatial index of everything placed so far.
// It's safe for concurrent use, though writes are serialised.
type Registry struct {
	lock sync.RWMutex

	next    int
	bits    map[Category]Mask
	order   []Category
	entries map[Category][]*Entry
	byID    map[int]*Entry
}

// New returns an empty registry
func New() *Registry {
	return &Registry{
		next:    1,
		bits:    map[Category]Mask{},
		order:   []Category{},
		entries: map[Category][]*Entry{},
		byID:    map[int]*Entry{},
	}
}

// MaskOf returns the mask for all of the given categories,
// assigning bits for categories we've not seen before.
func (r *Registry) MaskOf(cats ...Category) (Mask, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var m Mask
	for _, c := range cats {
		b, err := r.bit(c)
		if err != nil {
			return m, err
		}
		m |= b
	}
	return m, nil
}

// bit returns the bit for c, assigning one if needed. Lock must be held.
func (r *Registry) bit(c Category) (Mask, error) {
	b, ok := r.bits[c]
	if ok {
		return b, nil
	}
	if len(r.order) >= 64 {
		return 0, errors.Wrapf(ErrTooManyCategories, "adding %s", c)
	}
	b = Mask(1) << uint(len(r.order))
	r.bits[c] = b
	r.order = append(r.order, c)
	return b, nil
}

// Categories returns all known categories in the order they were first seen
func (r *Registry) Categories() []Category {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]Category, len(r.order))
	copy(out, r.order)
	return out
}

// Add files the shape under the given category & returns the new entry.
// Shapes we cannot collide are rejected.
func (r *Registry) Add(cat Category, sh shape.Shape, soft bool) (*Entry, error) {
	err := sh.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "registering %s", cat)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	_, err = r.bit(cat)
	if err != nil {
		return nil, err
	}

	e := &Entry{ID: r.next, Category: cat, Shape: sh, Soft: soft, bounds: sh.Bounds()}
	r.next++

	r.entries[cat] = append(r.entries[cat], e)
	r.byID[e.ID] = e

	return e, nil
}

// Remove the entry with the given id, returns false if it is unknown
func (r *Registry) Remove(id int) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)

	list := r.entries[e.Category]
	for i, other := range list {
		if other.ID == id {
			essentials.UnorderedDelete(&list, i)
			break
		}
	}
	r.entries[e.Category] = list

	return true
}

// Get returns the entry with the given id
func (r *Registry) Get(id int) (*Entry, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, ok := r.byID[id]
	return e, ok
}

// Len returns the total number of entries
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.byID)
}

// Tagged returns all entries of the given category, oldest first.
func (r *Registry) Tagged(cat Category) []*Entry {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]*Entry, len(r.entries[cat]))
	copy(out, r.entries[cat])
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Overlaps returns entries in the mask that the shape touches.
//
// Solid entries are tested first, if any are hit we return those. Only if
// nothing solid is hit and includeSoft is set do we go on to test soft entries.
// The given shape is never stored.
//
// If the shape (or an entry) cannot be tested we return an error; callers should
// treat this as a collision.
func (r *Registry) Overlaps(sh shape.Shape, mask Mask, includeSoft bool) ([]*Entry, error) {
	err := sh.Validate()
	if err != nil {
		return nil, err
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	qb := sh.Bounds()

	hits, err := r.pass(sh, qb, mask, false)
	if err != nil || len(hits) > 0 || !includeSoft {
		return hits, err
	}
	return r.pass(sh, qb, mask, true)
}

// pass tests all entries in mask whose Soft flag matches soft. Lock must be held.
func (r *Registry) pass(sh shape.Shape, qb r2.Rect, mask Mask, soft bool) ([]*Entry, error) {
	hits := []*Entry{}
	for _, cat := range r.order {
		if !mask.Has(r.bits[cat]) {
			continue
		}
		for _, e := range r.entries[cat] {
			if e.Soft != soft || !qb.Intersects(e.bounds) {
				continue
			}
			hit, err := shape.Overlaps(sh, e.Shape)
			if err != nil {
				return append(hits, e), err
			}
			if hit {
				hits = append(hits, e)
			}
		}
	}
	return hits, nil
}

// Nearest returns the closest entry in mask to the given shape (both solid & soft)
// and the distance between them. If nothing is in the mask we return nil & +Inf.
func (r *Registry) Nearest(sh shape.Shape, mask Mask) (*Entry, float64, error) {
	err := sh.Validate()
	if err != nil {
		return nil, 0, err
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	var best *Entry
	bestDist := math.Inf(1)
	for _, cat := range r.order {
		if !mask.Has(r.bits[cat]) {
			continue
		}
		for _, e := range r.entries[cat] {
			d, err := shape.Distance(sh, e.Shape)
			if err != nil {
				return e, 0, err
			}
			if d < bestDist {
				best, bestDist = e, d
			}
		}
	}
	return best, bestDist, nil
}
