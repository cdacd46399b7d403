package levelgen

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/voidshard/levelgen/internal/placement"
	"github.com/voidshard/levelgen/internal/registry"
	"github.com/voidshard/levelgen/internal/road"
)

// Level holds a generated level; roads plus everything placed on the map.
//
// Generation happens once in New. Afterwards gameplay may Spawn more objects
// from configured jobs or Remove instances; both are safe to call from
// multiple goroutines.
type Level struct {
	cfg *LevelConfig
	log *log.Logger

	lock    sync.Mutex
	rng     *rand.Rand
	reg     *registry.Registry
	sampler *placement.Sampler
	jobs    map[string]*JobConfig
	byID    map[int]*Instance

	Seed       int64
	Bounds     r2.Rect
	Restricted *r2.Rect `json:",omitempty"`
	Roads      *RoadNetwork
	Instances  []*Instance
	Stats      *LevelStats

	// Warnings are objects that could not be placed (ErrPlacementExhausted)
	Warnings []error `json:"-"`
}

// New generates a level: roads first, then placement jobs (road jobs before
// free jobs), then the nav mesh baker (if given) is told geometry is final.
//
// Any ConfigurationError aborts generation & no level is returned.
// Objects that can't be placed are skipped & recorded in Warnings.
func New(cfg *LevelConfig, baker NavMeshBaker) (*Level, error) {
	if cfg == nil {
		return nil, configError("config", errors.New("no config given"))
	}
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	l := &Level{cfg: cfg}
	err = l.build(baker)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// JSON returns the level as json.
func (l *Level) JSON() ([]byte, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return json.Marshal(l)
}

// SaveJSON writes a json file to the given path.
func (l *Level) SaveJSON(fpath string) error {
	data, err := l.JSON()
	if err != nil {
		return err
	}
	return ioutil.WriteFile(fpath, data, 0644)
}

// Map draws the level into a LevelMap with scale pixels per world unit.
func (l *Level) Map(scale float64) (LevelMap, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return newLevelMap(l, scale)
}

// Spawn places one more object from the named job, respecting everything
// already in the level. Returns an error wrapping ErrPlacementExhausted if
// there is no room.
func (l *Level) Spawn(job string) (*Instance, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	j, ok := l.jobs[job]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownJob, "%q", job)
	}

	spec := j.spec(l.cfg.Layers)
	spec.MaxAttempts = l.cfg.SpawnAttempts

	res, err := l.sampler.Place(1, spec)
	if err != nil {
		return nil, err
	}
	if len(res.Placed) == 0 {
		return nil, res.Warnings[0]
	}

	return l.addInstance(j.name(), res.Placed[0]), nil
}

// Remove an instance (eg. a pickup being collected), freeing the space for
// later spawns. Returns false if the instance is unknown.
func (l *Level) Remove(id int) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	e, ok := l.reg.Get(id)
	if !ok {
		return false
	}
	inst, ok := l.byID[e.ID]
	if !ok {
		// roads & the restricted zone aren't instances, they stay put
		return false
	}
	l.reg.Remove(id)
	delete(l.byID, id)

	for i, other := range l.Instances {
		if other.ID == id {
			l.Instances = append(l.Instances[:i], l.Instances[i+1:]...)
			break
		}
	}
	l.Stats.decrement(inst.Category)

	return true
}

// Tagged returns all current instances of the given category, oldest first.
func (l *Level) Tagged(cat Category) []*Instance {
	l.lock.Lock()
	defer l.lock.Unlock()

	out := []*Instance{}
	for _, e := range l.reg.Tagged(cat) {
		inst, ok := l.byID[e.ID]
		if ok {
			out = append(out, inst)
		}
	}
	return out
}

// EdgeSpawnPoint returns a random point inset units in from a random edge of
// the map, useful for spawning things that walk in from off screen.
func (l *Level) EdgeSpawnPoint(inset float64) r2.Point {
	l.lock.Lock()
	defer l.lock.Unlock()

	inner := l.Bounds
	if inset > 0 {
		size := l.Bounds.Size()
		if 2*inset > size.X || 2*inset > size.Y {
			inset = 0
		}
		inner = l.Bounds.ExpandedByMargin(-inset)
	}

	t := l.rng.Float64()
	switch l.rng.Intn(4) {
	case 0:
		return r2.Point{X: inner.X.Lo, Y: inner.Y.Lo + t*inner.Y.Length()}
	case 1:
		return r2.Point{X: inner.X.Hi, Y: inner.Y.Lo + t*inner.Y.Length()}
	case 2:
		return r2.Point{X: inner.X.Lo + t*inner.X.Length(), Y: inner.Y.Lo}
	}
	return r2.Point{X: inner.X.Lo + t*inner.X.Length(), Y: inner.Y.Hi}
}

// StaticGeometry returns everything a nav mesh needs
func (l *Level) StaticGeometry() *StaticGeometry {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.staticGeometry()
}

// staticGeometry builds StaticGeometry. Lock must be held.
func (l *Level) staticGeometry() *StaticGeometry {
	obstacles := []*Instance{}
	for _, inst := range l.Instances {
		if !soft(l.cfg.Layers, inst.Category) {
			obstacles = append(obstacles, inst)
		}
	}
	return &StaticGeometry{
		Bounds:       l.Bounds,
		Restricted:   l.Restricted,
		Roads:        l.Roads.Segments,
		RoadBoundary: l.Roads.Boundary,
		Obstacles:    obstacles,
	}
}

// build runs the main construction logic. Order of the functions
// is important as later steps treat what earlier steps placed as obstacles.
func (l *Level) build(baker NavMeshBaker) error {
	err := l.init()
	if err != nil {
		return err
	}

	err = l.addRestrictedZone()
	if err != nil {
		return err
	}

	err = l.addRoads()
	if err != nil {
		return err
	}

	for _, j := range l.orderedJobs() {
		err = l.runJob(j)
		if err != nil {
			return err
		}
	}

	if baker == nil {
		return nil
	}
	err = baker.Bake(l.staticGeometry())
	if err != nil {
		return errors.Wrap(err, "nav mesh bake")
	}
	l.log.Printf("nav mesh baked: %d obstacles", len(l.staticGeometry().Obstacles))

	return nil
}

// addRestrictedZone registers the zone (if any) as a solid obstacle
func (l *Level) addRestrictedZone() error {
	if l.cfg.Restricted == nil {
		return nil
	}
	zone := l.cfg.Restricted.Rect()
	l.Restricted = &zone

	_, err := l.reg.Add(Restricted, NewBox(zone.X.Length(), zone.Y.Length()).At(zone.Center()), false)
	return configError("restricted zone", err)
}

// addRoads builds the road network & registers its boundary
func (l *Level) addRoads() error {
	net, err := road.Generate(l.cfg.roadConfig(), l.rng)
	if err != nil {
		return configError("roads", err)
	}
	l.Roads = net

	_, err = l.reg.Add(Road, net.Boundary, true)
	if err != nil {
		return configError("roads", err)
	}

	l.Stats.RoadTiles = len(net.Segments)
	l.Stats.SideRoads = net.SideRoads
	if net.SideRoads < l.cfg.Road.SideRoads {
		l.log.Printf("roads: wanted %d side roads, only %d fit", l.cfg.Road.SideRoads, net.SideRoads)
	}
	l.log.Printf("roads: %s main road at %.2f, %d tiles, %d side roads", net.Axis, net.Offset, len(net.Segments), net.SideRoads)

	l.sampler = placement.NewSampler(l.reg, l.rng, l.Bounds, net.Segments)
	return nil
}

// orderedJobs returns jobs with road jobs first, otherwise in config order
func (l *Level) orderedJobs() []*JobConfig {
	ordered := make([]*JobConfig, len(l.cfg.Jobs))
	copy(ordered, l.cfg.Jobs)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].Mode == NearRoad && ordered[b].Mode != NearRoad
	})
	return ordered
}

// runJob places everything for one job
func (l *Level) runJob(j *JobConfig) error {
	name := j.name()
	res, err := l.sampler.Place(j.Count, j.spec(l.cfg.Layers))
	if err != nil {
		return configError("job "+name, err)
	}

	for _, p := range res.Placed {
		l.addInstance(name, p)
	}
	for _, w := range res.Warnings {
		l.log.Printf("warning: %v", w)
	}
	l.Warnings = append(l.Warnings, res.Warnings...)
	l.Stats.skipped(name, res.Skipped)

	l.log.Printf("job %s: placed %d of %d %s", name, len(res.Placed), j.Count, j.Category)
	return nil
}

// addInstance records a placement. Lock must be held (or we're in build).
func (l *Level) addInstance(job string, p *placement.Placement) *Instance {
	inst := &Instance{
		ID:       p.ID,
		Category: p.Category,
		Job:      job,
		Position: p.Position,
		Shape:    p.Shape,
	}
	l.Instances = append(l.Instances, inst)
	l.byID[inst.ID] = inst
	l.Stats.increment(inst.Category)
	return inst
}

// init sets up the level with a bunch of stuff.
func (l *Level) init() error {
	l.cfg.setDefaults()
	if l.cfg.Seed == 0 {
		l.cfg.Seed = time.Now().UnixNano()
	}
	l.Seed = l.cfg.Seed
	l.rng = rand.New(rand.NewSource(l.cfg.Seed))
	l.log = l.cfg.Logger

	l.reg = registry.New()
	l.Bounds = l.cfg.Bounds.Rect()
	l.Stats = newLevelStats()
	l.Instances = []*Instance{}
	l.Warnings = []error{}
	l.byID = map[int]*Instance{}

	l.jobs = map[string]*JobConfig{}
	for _, j := range l.cfg.Jobs {
		l.jobs[j.name()] = j
	}

	return nil
}
