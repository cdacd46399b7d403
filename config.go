package levelgen

import (
	"io/ioutil"
	"log"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/voidshard/levelgen/internal/placement"
	"github.com/voidshard/levelgen/internal/road"
)

const (
	defaultSpawnAttempts = 100
)

// MapBounds is the playable area, Width & Height must be > 0
type MapBounds struct {
	Centre r2.Point `yaml:"centre" json:"centre"`
	Width  float64  `yaml:"width" json:"width"`
	Height float64  `yaml:"height" json:"height"`
}

// Rect returns the bounds as a rect
func (m MapBounds) Rect() r2.Rect {
	return r2.RectFromCenterSize(m.Centre, r2.Point{X: m.Width, Y: m.Height})
}

// RestrictedZone is a no build area (eg. a jail). The main road runs beside
// it, side roads never enter it & it's registered as a solid "restricted"
// entry for placements to block against.
type RestrictedZone struct {
	Centre r2.Point `yaml:"centre" json:"centre"`
	Width  float64  `yaml:"width" json:"width"`
	Height float64  `yaml:"height" json:"height"`
}

// Rect returns the zone as a rect
func (z *RestrictedZone) Rect() r2.Rect {
	return r2.RectFromCenterSize(z.Centre, r2.Point{X: z.Width, Y: z.Height})
}

// RoadConfig configures the road network
type RoadConfig struct {
	// Stride is the length of each road tile. Defaults to 1
	Stride float64 `yaml:"stride" json:"stride,omitempty"`

	// TileWidth is the width of road tiles. Defaults to Stride
	TileWidth float64 `yaml:"tileWidth" json:"tileWidth,omitempty"`

	// Padding between roads & the map edge
	Padding float64 `yaml:"padding" json:"padding,omitempty"`

	// SideRoads is the number of roads branching off the main road.
	// 0 gives a single straight road.
	SideRoads int `yaml:"sideRoads" json:"sideRoads,omitempty"`

	// MinSeparation between side roads along the main road
	MinSeparation float64 `yaml:"minSeparation" json:"minSeparation,omitempty"`

	// MaxSideRoadLength caps side road length, 0 lets them run to the edge
	MaxSideRoadLength float64 `yaml:"maxSideRoadLength" json:"maxSideRoadLength,omitempty"`

	// AnchorRetries is the number of random tries per side road before we
	// settle for the best spot found. Defaults to 30
	AnchorRetries int `yaml:"anchorRetries" json:"anchorRetries,omitempty"`

	// AnchorSpan is the middle fraction of the main road side roads branch
	// from. Defaults to 2/3
	AnchorSpan float64 `yaml:"anchorSpan" json:"anchorSpan,omitempty"`
}

// LayerConfig configures how a category collides.
type LayerConfig struct {
	// Soft (trigger) entries are only considered by checks that ask for them
	Soft bool `yaml:"soft" json:"soft,omitempty"`
}

// JobConfig configures one placement job; placing Count objects of one
// category.
type JobConfig struct {
	// Name of the job (for logs & Spawn), defaults to Category
	Name string `yaml:"name" json:"name,omitempty"`

	// Category placed objects are registered under, required
	Category Category `yaml:"category" json:"category"`

	// Mode is "free" (anywhere) or "road" (just off a road tile).
	// Road jobs always run before free jobs.
	Mode Mode `yaml:"mode" json:"mode,omitempty"`

	// Count is the number of objects wanted. Objects that can't be placed
	// are skipped with a warning.
	Count int `yaml:"count" json:"count"`

	// Prototypes are shapes (centred on the origin), one chosen per object.
	// At least one is required.
	Prototypes []Shape `yaml:"prototypes" json:"prototypes"`

	// EdgeMargin between objects & the map edge
	EdgeMargin float64 `yaml:"edgeMargin" json:"edgeMargin,omitempty"`

	// MaxAttempts per object. Defaults to 10
	MaxAttempts int `yaml:"maxAttempts" json:"maxAttempts,omitempty"`

	// RoadGap is the max gap between a road & a "road" mode object. Defaults to 1
	RoadGap float64 `yaml:"roadGap" json:"roadGap,omitempty"`

	// MinRoadDistance & MinBuildingDistance are quick proximity checks; the
	// object centre must be this far from any road / building.
	MinRoadDistance     float64 `yaml:"minRoadDistance" json:"minRoadDistance,omitempty"`
	MinBuildingDistance float64 `yaml:"minBuildingDistance" json:"minBuildingDistance,omitempty"`

	// Exclusions are any other proximity checks
	Exclusions []*ExclusionConfig `yaml:"exclusions" json:"exclusions,omitempty"`

	// Blocking categories may not overlap an object. Soft entries of these
	// categories are only checked if IncludeSoft is set.
	Blocking    []Category `yaml:"blocking" json:"blocking,omitempty"`
	IncludeSoft bool       `yaml:"includeSoft" json:"includeSoft,omitempty"`

	// MinSpread is the min distance between objects of this category
	MinSpread float64 `yaml:"minSpread" json:"minSpread,omitempty"`

	// Anchor requires something of this category within MaxAnchorDistance
	Anchor            Category `yaml:"anchor" json:"anchor,omitempty"`
	MaxAnchorDistance float64  `yaml:"maxAnchorDistance" json:"maxAnchorDistance,omitempty"`
}

// ExclusionConfig keeps objects Radius away from a category
type ExclusionConfig struct {
	Category Category `yaml:"category" json:"category"`
	Radius   float64  `yaml:"radius" json:"radius"`
}

// LevelConfig holds everything needed to generate a level.
type LevelConfig struct {
	// Bounds of the level, required
	Bounds MapBounds `yaml:"bounds" json:"bounds"`

	// Restricted is an optional no-build zone
	Restricted *RestrictedZone `yaml:"restricted" json:"restricted,omitempty"`

	// Seed for rng (random number chosen if not set)
	Seed int64 `yaml:"seed" json:"seed,omitempty"`

	// Road network settings
	Road RoadConfig `yaml:"road" json:"road"`

	// Layers configures collision per category. Categories not given are solid
	// except "road" which is always soft.
	Layers map[Category]*LayerConfig `yaml:"layers" json:"layers,omitempty"`

	// Jobs to run, road jobs first then free jobs, otherwise in order given
	Jobs []*JobConfig `yaml:"jobs" json:"jobs"`

	// SpawnAttempts is the attempt budget for Level.Spawn. Defaults to 100
	SpawnAttempts int `yaml:"spawnAttempts" json:"spawnAttempts,omitempty"`

	// Logger for progress & warnings. Defaults to stderr
	Logger *log.Logger `yaml:"-" json:"-"`
}

// DefaultConfig returns a small demo level; buildings along the roads,
// trees, crates next to buildings & a scattering of coins.
// Nothing here is particularly special, they just seem sane.
func DefaultConfig() *LevelConfig {
	return &LevelConfig{
		Bounds:     MapBounds{Width: 120, Height: 120},
		Restricted: &RestrictedZone{Centre: r2.Point{X: 30, Y: 30}, Width: 16, Height: 16},
		Road: RoadConfig{
			Stride:            4,  // length of a road tile
			TileWidth:         4,  // width of a road tile
			Padding:           2,  // gap between roads & the map edge
			SideRoads:         3,  // roads branching off the main road
			MinSeparation:     20, // between side roads
			MaxSideRoadLength: 48, // side roads stop after this
		},
		Layers: map[Category]*LayerConfig{
			Road:   {Soft: true},
			Pickup: {Soft: true},
		},
		Jobs: []*JobConfig{
			{
				Name:     "buildings",
				Category: Building,
				Mode:     NearRoad,
				Count:    14,
				Prototypes: []Shape{
					NewBox(6, 6),
					NewBox(8, 5),
					NewBox(5, 9),
				},
				EdgeMargin:  1,
				MaxAttempts: 40,
				RoadGap:     1.5,
				Blocking:    []Category{Road, Restricted},
				IncludeSoft: true,
				MinSpread:   1,
			},
			{
				Name:                "trees",
				Category:            Tree,
				Mode:                Free,
				Count:               40,
				Prototypes:          []Shape{NewCircle(1), NewCapsule(3, 1.5)},
				EdgeMargin:          2,
				MinRoadDistance:     3,
				MinBuildingDistance: 5,
				Blocking:            []Category{Restricted, Building},
				MinSpread:           1,
			},
			{
				Name:              "crates",
				Category:          Asset,
				Mode:              Free,
				Count:             8,
				Prototypes:        []Shape{NewBox(1, 1)},
				MaxAttempts:       60,
				Blocking:          []Category{Road, Restricted, Building, Tree},
				IncludeSoft:       true,
				Anchor:            Building,
				MaxAnchorDistance: 2,
			},
			{
				Name:            "coins",
				Category:        Pickup,
				Mode:            Free,
				Count:           10,
				Prototypes:      []Shape{NewCircle(0.5)},
				EdgeMargin:      4,
				MinRoadDistance: 1,
				Blocking:        []Category{Restricted, Building, Tree, Asset},
				MinSpread:       10,
			},
		},
	}
}

// LoadConfig reads a level config from a yaml file.
func LoadConfig(path string) (*LevelConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading level config")
	}
	return ParseConfig(data)
}

// ParseConfig reads a level config from yaml (or json) data.
func ParseConfig(data []byte) (*LevelConfig, error) {
	cfg := &LevelConfig{}
	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, configError("parse", errors.Wrap(err, "parsing level config"))
	}
	return cfg, nil
}

// Validate returns a ConfigurationError if the config can never produce a level.
func (c *LevelConfig) Validate() error {
	if c.Bounds.Width <= 0 || c.Bounds.Height <= 0 {
		return configError("bounds", errors.Errorf("width & height must be > 0, got %fx%f", c.Bounds.Width, c.Bounds.Height))
	}
	if c.Restricted != nil && (c.Restricted.Width <= 0 || c.Restricted.Height <= 0) {
		return configError("restricted zone", errors.Errorf("width & height must be > 0, got %fx%f", c.Restricted.Width, c.Restricted.Height))
	}
	if c.Road.Stride < 0 || c.Road.TileWidth < 0 || c.Road.Padding < 0 || c.Road.SideRoads < 0 || c.Road.MinSeparation < 0 {
		return configError("road", errors.New("road settings must not be negative"))
	}

	names := map[string]bool{}
	for i, j := range c.Jobs {
		if j == nil {
			return configError("jobs", errors.Errorf("job %d is empty", i))
		}
		name := j.name()
		if names[name] {
			return configError("jobs", errors.Errorf("duplicate job name %q", name))
		}
		names[name] = true

		if j.Count < 0 {
			return configError("job "+name, errors.Errorf("count %d", j.Count))
		}
		err := j.spec(c.Layers).Validate()
		if err != nil {
			return configError("job "+name, err)
		}
	}

	return nil
}

// setDefaults fills in zero values
func (c *LevelConfig) setDefaults() {
	if c.Road.Stride <= 0 {
		c.Road.Stride = 1
	}
	if c.SpawnAttempts <= 0 {
		c.SpawnAttempts = defaultSpawnAttempts
	}
	if c.Logger == nil {
		c.Logger = log.New(os.Stderr, "levelgen: ", log.LstdFlags)
	}
}

// roadConfig returns the config for the road generator
func (c *LevelConfig) roadConfig() *road.Config {
	cfg := &road.Config{
		Bounds:            c.Bounds.Rect(),
		Stride:            c.Road.Stride,
		TileWidth:         c.Road.TileWidth,
		Padding:           c.Road.Padding,
		SideRoads:         c.Road.SideRoads,
		MinSeparation:     c.Road.MinSeparation,
		MaxSideRoadLength: c.Road.MaxSideRoadLength,
		AnchorRetries:     c.Road.AnchorRetries,
		AnchorSpan:        c.Road.AnchorSpan,
	}
	if c.Restricted != nil {
		zone := c.Restricted.Rect()
		cfg.Restricted = &zone
	}
	return cfg
}

// soft returns if a category is a soft (trigger) layer
func soft(layers map[Category]*LayerConfig, cat Category) bool {
	if cat == Road {
		return true
	}
	l, ok := layers[cat]
	return ok && l != nil && l.Soft
}

// name returns the job name, or the category if not set
func (j *JobConfig) name() string {
	if j.Name == "" {
		return string(j.Category)
	}
	return j.Name
}

// spec converts the job into a placement spec
func (j *JobConfig) spec(layers map[Category]*LayerConfig) *placement.Spec {
	ex := []placement.Exclusion{}
	if j.MinRoadDistance > 0 {
		ex = append(ex, placement.Exclusion{Category: Road, Radius: j.MinRoadDistance})
	}
	if j.MinBuildingDistance > 0 {
		ex = append(ex, placement.Exclusion{Category: Building, Radius: j.MinBuildingDistance})
	}
	for _, e := range j.Exclusions {
		if e == nil {
			continue
		}
		ex = append(ex, placement.Exclusion{Category: e.Category, Radius: e.Radius})
	}

	return &placement.Spec{
		Name:              j.name(),
		Category:          j.Category,
		Prototypes:        j.Prototypes,
		Mode:              j.Mode,
		RoadGap:           j.RoadGap,
		EdgeMargin:        j.EdgeMargin,
		MaxAttempts:       j.MaxAttempts,
		Exclusions:        ex,
		Blocking:          j.Blocking,
		IncludeSoft:       j.IncludeSoft,
		MinSpread:         j.MinSpread,
		Anchor:            j.Anchor,
		MaxAnchorDistance: j.MaxAnchorDistance,
		Soft:              soft(layers, j.Category),
	}
}
