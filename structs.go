package levelgen

import (
	"github.com/golang/geo/r2"

	"github.com/voidshard/levelgen/internal/road"
)

// RoadNetwork is the main road & side roads of a level
type RoadNetwork = road.Network

// RoadSegment is a single road tile
type RoadSegment = road.Segment

// LevelStats holds generic stats about the level
type LevelStats struct {
	// Count of instances by category
	InstancesByCategory map[Category]int

	// Count of objects each job failed to place
	SkippedByJob map[string]int `json:",omitempty"`

	RoadTiles int
	SideRoads int
}

// newLevelStats returns blank LevelStats
func newLevelStats() *LevelStats {
	return &LevelStats{InstancesByCategory: map[Category]int{}, SkippedByJob: map[string]int{}}
}

// increment InstancesByCategory by 1
func (s *LevelStats) increment(c Category) {
	count, _ := s.InstancesByCategory[c]
	s.InstancesByCategory[c] = count + 1
}

// decrement InstancesByCategory by 1
func (s *LevelStats) decrement(c Category) {
	count, _ := s.InstancesByCategory[c]
	s.InstancesByCategory[c] = count - 1
}

// skipped adds n to the SkippedByJob count for job
func (s *LevelStats) skipped(job string, n int) {
	if n == 0 {
		return
	}
	count, _ := s.SkippedByJob[job]
	s.SkippedByJob[job] = count + n
}

// Count returns number of instances of a category
func (s *LevelStats) Count(c Category) int {
	count, _ := s.InstancesByCategory[c]
	return count
}

// Instance is an object placed by a job. Instances stay put until
// Level.Remove is called for them.
type Instance struct {
	// ID is unique within the level
	ID int

	Category Category
	Job      string
	Position r2.Point

	// Shape is the collision shape in world space
	Shape Shape
}

// StaticGeometry is everything a nav mesh needs to know about a level
type StaticGeometry struct {
	Bounds     r2.Rect
	Restricted *r2.Rect

	// Roads are tiles, RoadBoundary is all of them merged
	Roads        []RoadSegment
	RoadBoundary Shape

	// Obstacles are all solid (non trigger) instances
	Obstacles []*Instance
}
