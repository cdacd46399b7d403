package levelgen

import (
	"math/rand"
	"time"

	"github.com/voidshard/levelgen/internal/road"
)

// Axis is the direction a main road (or curved road) travels
type Axis = road.Axis

const (
	Vertical   = road.Vertical
	Horizontal = road.Horizontal
)

// CurvedRoad is a single road following a bezier curve, extruded into a
// ribbon mesh with UVs. It has no tiles & no side roads.
type CurvedRoad = road.Ribbon

// CurveConfig configures NewCurvedRoad
type CurveConfig struct {
	Bounds MapBounds

	// Axis the road runs along, edge to edge
	Axis Axis

	// Width of the road, required
	Width float64

	// Inset pulls both ends of the road in from the map edge
	Inset float64

	// Resolution is the number of curve samples, defaults to 64
	Resolution int

	// Seed for rng (random number chosen if not set)
	Seed int64
}

// NewCurvedRoad builds a curved road across the map. Invalid settings return
// a ConfigurationError.
func NewCurvedRoad(cfg *CurveConfig) (*CurvedRoad, error) {
	if cfg == nil {
		return nil, configError("curve", road.ErrInvalidConfig)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	ribbon, err := road.Curve(&road.CurveConfig{
		Bounds:     cfg.Bounds.Rect(),
		Axis:       cfg.Axis,
		Width:      cfg.Width,
		Inset:      cfg.Inset,
		Resolution: cfg.Resolution,
	}, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, configError("curve", err)
	}
	return ribbon, nil
}
