package catchment

import (
	"github.com/paulmach/orb"
)

// Segment is a raw street segment: an ordered polyline with a road
// classification. Segments are the only geometry the graph builder consumes;
// where they come from (OSM extract, GeoJSON file) is an input adapter's
// concern.
type Segment struct {
	ID       int64
	Class    RoadClass
	Geometry []orb.Point
}
