package catchment

import (
	"math"
)

// NonRoutableCost marks an edge which can not be traversed under the chosen
// travel mode. It must never reach a shortest-path structure which performs
// arithmetic on costs; the graph builder filters such edges out before
// building the adjacency used for routing.
const NonRoutableCost = math.MaxFloat64

// TravelProfile maps road classification to a cost multiplier applied to
// physical edge length. Classes missing from the map are non-routable for
// the mode.
type TravelProfile struct {
	Name        string
	Multipliers map[RoadClass]float64
}

// Multiplier returns cost multiplier for given road class and whether the
// class is routable under this profile at all.
func (profile TravelProfile) Multiplier(class RoadClass) (float64, bool) {
	multiplier, ok := profile.Multipliers[class]
	if !ok {
		return NonRoutableCost, false
	}
	return multiplier, true
}

var walkingMultipliers = map[RoadClass]float64{
	CLASS_PRIMARY:       1.2,
	CLASS_SECONDARY:     1.1,
	CLASS_TERTIARY:      1.0,
	CLASS_RESIDENTIAL:   1.0,
	CLASS_LIVING_STREET: 1.0,
	CLASS_SERVICE:       1.0,
	CLASS_CYCLEWAY:      1.0,
	CLASS_FOOTWAY:       1.0,
	CLASS_PATH:          1.0,
	CLASS_TRACK:         1.1,
	CLASS_UNCLASSIFIED:  1.0,
}

var drivingMultipliers = map[RoadClass]float64{
	CLASS_MOTORWAY:      0.5,
	CLASS_TRUNK:         0.6,
	CLASS_PRIMARY:       0.7,
	CLASS_SECONDARY:     0.8,
	CLASS_TERTIARY:      0.9,
	CLASS_RESIDENTIAL:   1.0,
	CLASS_LIVING_STREET: 1.5,
	CLASS_SERVICE:       1.5,
	CLASS_UNCLASSIFIED:  1.0,
}

// WalkingProfile returns the default pedestrian travel profile. Motorways and
// trunks are excluded, so edges of those classes become non-routable.
func WalkingProfile() TravelProfile {
	return TravelProfile{Name: "walking", Multipliers: walkingMultipliers}
}

// DrivingProfile returns the default car travel profile. Footways, cycleways
// and paths are excluded. Multipliers below 1.0 reflect higher travel speed
// relative to a residential street.
func DrivingProfile() TravelProfile {
	return TravelProfile{Name: "driving", Multipliers: drivingMultipliers}
}
