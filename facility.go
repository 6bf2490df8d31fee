package catchment

import (
	"github.com/paulmach/orb"
)

// FacilityID is the external name of a service centre. Tie-breaks throughout
// the pipeline pick the lexicographically lowest identifier.
type FacilityID string

// Facility is a fixed service centre competing for nearest-assignment of
// demand points.
type Facility struct {
	ID   FacilityID
	Geom orb.Point
}

// QueryPoint is an arbitrary coordinate with an external identifier and an
// optional grouping key (an area code). Never part of the graph; it relates
// to the graph only through a snap lookup.
type QueryPoint struct {
	ID   string
	Geom orb.Point
	Area string
}
