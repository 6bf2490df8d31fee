package catchment

import (
	"math"
	"testing"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() orb.MultiPolygon {
	return orb.MultiPolygon{
		{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
	}
}

func quadrantPoints() ([]QueryPoint, Assignment) {
	points := []QueryPoint{
		{ID: "p1", Geom: orb.Point{0.2, 0.2}},
		{ID: "p2", Geom: orb.Point{0.2, 0.8}},
		{ID: "p3", Geom: orb.Point{0.8, 0.2}},
		{ID: "p4", Geom: orb.Point{0.8, 0.8}},
	}
	assignment := Assignment{
		"p1": AssignedTo("X"),
		"p2": AssignedTo("X"),
		"p3": AssignedTo("Y"),
		"p4": AssignedTo("Y"),
	}
	return points, assignment
}

func TestPartitionCatchments(t *testing.T) {
	points, assignment := quadrantPoints()
	catchments, err := PartitionCatchments(points, assignment, unitSquare())
	require.NoError(t, err)
	require.Len(t, catchments, 2)
	assert.Equal(t, FacilityID("X"), catchments[0].Facility)
	assert.Equal(t, FacilityID("Y"), catchments[1].Facility)

	// The two halves split the square down the middle
	areaX := planar.Area(catchments[0].Geom)
	areaY := planar.Area(catchments[1].Geom)
	assert.InDelta(t, 0.5, math.Abs(areaX), 0.02)
	assert.InDelta(t, 0.5, math.Abs(areaY), 0.02)

	// Every site sits inside its own facility's polygon
	assert.True(t, planar.MultiPolygonContains(catchments[0].Geom, points[0].Geom))
	assert.True(t, planar.MultiPolygonContains(catchments[0].Geom, points[1].Geom))
	assert.True(t, planar.MultiPolygonContains(catchments[1].Geom, points[2].Geom))
	assert.True(t, planar.MultiPolygonContains(catchments[1].Geom, points[3].Geom))
}

func TestPartitionCatchmentsNoOverlap(t *testing.T) {
	points, assignment := quadrantPoints()
	catchments, err := PartitionCatchments(points, assignment, unitSquare())
	require.NoError(t, err)
	for i := range catchments {
		for j := i + 1; j < len(catchments); j++ {
			overlap, err := polygol.Intersection(
				multiPolygonToGeom(catchments[i].Geom),
				multiPolygonToGeom(catchments[j].Geom),
			)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, math.Abs(planar.Area(geomToMultiPolygon(overlap))), 1e-9,
				"catchments %s and %s overlap", catchments[i].Facility, catchments[j].Facility)
		}
	}
}

func TestPartitionCatchmentsDedupe(t *testing.T) {
	points, assignment := quadrantPoints()
	duplicated := append([]QueryPoint{}, points...)
	duplicated = append(duplicated, QueryPoint{ID: "p1bis", Geom: orb.Point{0.2, 0.2}})
	assignment["p1bis"] = AssignedTo("X")

	base, err := PartitionCatchments(points, assignment, unitSquare())
	require.NoError(t, err)
	withDup, err := PartitionCatchments(duplicated, assignment, unitSquare())
	require.NoError(t, err)

	require.Len(t, withDup, len(base))
	for i := range base {
		assert.Equal(t, base[i].Facility, withDup[i].Facility)
		assert.InDelta(t, math.Abs(planar.Area(base[i].Geom)), math.Abs(planar.Area(withDup[i].Geom)), 1e-9)
	}
}

func TestPartitionCatchmentsDisconnectedExcluded(t *testing.T) {
	points, assignment := quadrantPoints()
	points = append(points, QueryPoint{ID: "lost", Geom: orb.Point{0.5, 0.5}})
	assignment["lost"] = DisconnectedLabel()

	catchments, err := PartitionCatchments(points, assignment, unitSquare())
	require.NoError(t, err)
	require.Len(t, catchments, 2)

	total := 0.0
	for _, catchment := range catchments {
		total += math.Abs(planar.Area(catchment.Geom))
		assert.False(t, planar.MultiPolygonContains(catchment.Geom, orb.Point{0.5, 0.5}),
			"disconnected site leaked into catchment of %s", catchment.Facility)
	}
	// The disconnected cell punches a hole in the coverage
	assert.Less(t, total, 0.99)
}

func TestPartitionCatchmentsUnlabeledPoint(t *testing.T) {
	points, assignment := quadrantPoints()
	// "stray" has no entry in the assignment
	points = append(points, QueryPoint{ID: "stray", Geom: orb.Point{0.5, 0.5}})

	catchments, err := PartitionCatchments(points, assignment, unitSquare())
	require.NoError(t, err)
	require.Len(t, catchments, 2)
	for _, catchment := range catchments {
		assert.NotEqual(t, FacilityID(""), catchment.Facility)
		assert.False(t, planar.MultiPolygonContains(catchment.Geom, orb.Point{0.5, 0.5}),
			"unlabeled site leaked into catchment of %s", catchment.Facility)
	}
}

func TestPartitionCatchmentsSingleSite(t *testing.T) {
	points := []QueryPoint{{ID: "only", Geom: orb.Point{0.4, 0.4}}}
	assignment := Assignment{"only": AssignedTo("X")}
	catchments, err := PartitionCatchments(points, assignment, unitSquare())
	require.NoError(t, err)
	require.Len(t, catchments, 1)
	assert.InDelta(t, 1.0, math.Abs(planar.Area(catchments[0].Geom)), 1e-6)
}

func TestPartitionCatchmentsNoSites(t *testing.T) {
	_, err := PartitionCatchments(nil, Assignment{}, unitSquare())
	require.Error(t, err)
	assert.Equal(t, ErrDegenerateTessellation, errors.Cause(err))
}
