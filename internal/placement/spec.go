package placement

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/voidshard/levelgen/internal/registry"
	"github.com/voidshard/levelgen/internal/shape"
)

var (
	// ErrMissingPrototype implies a spec with nothing to place
	ErrMissingPrototype = errors.New("placement has no prototype shape")

	// ErrExhausted implies we ran out of attempts for one object.
	// It's reported as a warning, the object is skipped.
	ErrExhausted = errors.New("placement attempts exhausted")

	// ErrInvalidSpec implies some other setting makes no sense
	ErrInvalidSpec = errors.New("invalid placement spec")
)

const (
	defaultMaxAttempts = 10
	defaultRoadGap     = 1.0
)

// Mode decides how candidate positions are drawn
type Mode int

const (
	// Free draws candidates anywhere on the map (minus the edge margin)
	Free Mode = iota

	// NearRoad draws candidates just off the side of a random road tile
	NearRoad
)

var modeNames = map[Mode]string{Free: "free", NearRoad: "road"}

// String returns the config name of the mode
func (m Mode) String() string {
	name, ok := modeNames[m]
	if !ok {
		return "unknown"
	}
	return name
}

// MarshalText writes the mode name
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText reads a mode name
func (m *Mode) UnmarshalText(data []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(data)))
	for k, v := range modeNames {
		if v == name {
			*m = k
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidSpec, "unknown mode %q", string(data))
}

// Exclusion is a cheap proximity check; candidates whose centre is within
// Radius of anything in Category are rejected regardless of their real shape.
type Exclusion struct {
	Category registry.Category
	Radius   float64
}

// Spec describes what to place & the rules it must obey.
type Spec struct {
	// Name used in warnings
	Name string

	// Category placements are registered under
	Category registry.Category

	// Prototypes are shapes centred on the origin, one is chosen at random
	// per object. At least one is required.
	Prototypes []shape.Shape

	// Mode decides how candidates are drawn
	Mode Mode

	// RoadGap is the max gap between a road tile & a NearRoad candidate.
	// Defaults to 1
	RoadGap float64

	// EdgeMargin is the min distance between a placement & the map edge
	EdgeMargin float64

	// MaxAttempts per object before we skip it. Defaults to 10
	MaxAttempts int

	// Exclusions are proximity checks run before any shape checks
	Exclusions []Exclusion

	// Blocking categories may not overlap the placed shape.
	// Solid entries are always checked, soft ones only if IncludeSoft is set.
	// Placements never overlap others of their own category.
	Blocking    []registry.Category
	IncludeSoft bool

	// MinSpread is the min shape to shape distance between placements of
	// this category. Ignored if 0
	MinSpread float64

	// Anchor requires an entry of this category within MaxAnchorDistance
	// (shape to shape). Ignored if empty
	Anchor            registry.Category
	MaxAnchorDistance float64

	// Soft registers placements as soft (trigger) entries
	Soft bool
}

// Validate returns an error if the spec can never be used.
func (s *Spec) Validate() error {
	if s.Category == "" {
		return errors.Wrapf(ErrInvalidSpec, "%s: no category", s.Name)
	}
	if len(s.Prototypes) == 0 {
		return errors.Wrapf(ErrMissingPrototype, "%s", s.Name)
	}
	for i, p := range s.Prototypes {
		err := p.Validate()
		if err != nil {
			return errors.Wrapf(err, "%s: prototype %d", s.Name, i)
		}
	}
	if _, ok := modeNames[s.Mode]; !ok {
		return errors.Wrapf(ErrInvalidSpec, "%s: mode %d", s.Name, int(s.Mode))
	}
	if s.EdgeMargin < 0 || s.MinSpread < 0 || s.MaxAnchorDistance < 0 {
		return errors.Wrapf(ErrInvalidSpec, "%s: negative distance", s.Name)
	}
	return nil
}

// attempts returns MaxAttempts or the default
func (s *Spec) attempts() int {
	if s.MaxAttempts <= 0 {
		return defaultMaxAttempts
	}
	return s.MaxAttempts
}

// roadGap returns RoadGap or the default
func (s *Spec) roadGap() float64 {
	if s.RoadGap <= 0 {
		return defaultRoadGap
	}
	return s.RoadGap
}
