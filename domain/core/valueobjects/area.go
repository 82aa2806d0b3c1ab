package valueobjects

import "fmt"

// Area is a named geographic zone a user prefers to meet in.
type Area string

const (
	AreaDowntown     Area = "downtown"
	AreaMidtown      Area = "midtown"
	AreaEastside     Area = "eastside"
	AreaWestside     Area = "westside"
	AreaNorthLoop    Area = "north-loop"
	AreaSouthCongress Area = "south-congress"
	AreaSuburbsNorth Area = "suburbs-north"
	AreaSuburbsSouth Area = "suburbs-south"
)

// areaAdjacency lists, per zone, the zones its residents consider an easy
// trip. The relation is a one-directional lookup and is deliberately not
// symmetric: suburbanites will travel into the core far more readily than
// downtown residents will travel out.
var areaAdjacency = map[Area][]Area{
	AreaDowntown:      {AreaMidtown, AreaEastside, AreaSouthCongress},
	AreaMidtown:       {AreaDowntown, AreaNorthLoop, AreaWestside},
	AreaEastside:      {AreaDowntown},
	AreaWestside:      {AreaMidtown},
	AreaNorthLoop:     {AreaMidtown, AreaSuburbsNorth},
	AreaSouthCongress: {AreaDowntown, AreaSuburbsSouth},
	AreaSuburbsNorth:  {AreaNorthLoop, AreaMidtown, AreaDowntown},
	AreaSuburbsSouth:  {AreaSouthCongress, AreaDowntown},
}

// NewArea validates and creates an Area from its wire value
func NewArea(value string) (Area, error) {
	a := Area(value)
	if !a.IsValid() {
		return "", fmt.Errorf("unknown area %q", value)
	}
	return a, nil
}

// IsValid reports whether the zone is one of the known set
func (a Area) IsValid() bool {
	_, ok := areaAdjacency[a]
	return ok
}

// IsNearby reports whether other appears in a's adjacency list. The
// lookup is directional: a.IsNearby(b) does not imply b.IsNearby(a).
func (a Area) IsNearby(other Area) bool {
	for _, n := range areaAdjacency[a] {
		if n == other {
			return true
		}
	}
	return false
}

// String returns the wire representation
func (a Area) String() string {
	return string(a)
}
