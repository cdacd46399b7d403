package levelgen

import (
	"github.com/voidshard/levelgen/internal/registry"
)

// Category tags everything placed in a level. Categories are free form, the
// ones below are what the library itself uses or draws specially.
type Category = registry.Category

const (
	Road       Category = "road"       // the merged road boundary (always soft)
	Restricted Category = "restricted" // the no build zone
	Building   Category = "building"   // houses, shops & the like
	Tree       Category = "tree"       // greenery
	Asset      Category = "asset"      // decorative props, crates, bins
	Pickup     Category = "pickup"     // coins, power ups
)

var (
	// draw order, later categories are drawn over earlier ones
	categoryPriority = map[Category]int{
		Road:       1,
		Restricted: 2,
		Building:   3,
		Tree:       4,
		Asset:      5,
		Pickup:     6,
	}
)

// AllCategories returns the categories known to the library
func AllCategories() []Category {
	return []Category{Road, Restricted, Building, Tree, Asset, Pickup}
}

// priority returns the draw order of a category, unknown categories are
// drawn after known ones
func priority(c Category) int {
	p, ok := categoryPriority[c]
	if !ok {
		return len(categoryPriority) + 1
	}
	return p
}
