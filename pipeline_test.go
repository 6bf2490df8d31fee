package catchment

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipelineInput() Input {
	// A straight street A--B--C--D with ~1.1 km hops, plus an isolated
	// street far to the north-east
	segments := []Segment{
		{ID: 1, Class: CLASS_RESIDENTIAL, Geometry: []orb.Point{{0.0, 0.0}, {0.01, 0.0}, {0.02, 0.0}, {0.03, 0.0}}},
		{ID: 2, Class: CLASS_RESIDENTIAL, Geometry: []orb.Point{{0.2, 0.2}, {0.21, 0.2}}},
	}
	facilities := []Facility{
		{ID: "A", Geom: orb.Point{0.0, 0.0}},
		{ID: "D", Geom: orb.Point{0.03, 0.0}},
	}
	points := []QueryPoint{
		{ID: "a", Geom: orb.Point{0.01, 0.0005}, Area: "1000"},
		{ID: "b", Geom: orb.Point{0.02, 0.0005}, Area: "1000"},
		{ID: "lost", Geom: orb.Point{0.2001, 0.2001}, Area: "1000"},
	}
	boundary := orb.MultiPolygon{
		{orb.Ring{{-0.05, -0.05}, {0.25, -0.05}, {0.25, 0.25}, {-0.05, 0.25}, {-0.05, -0.05}}},
	}
	return Input{
		Segments:     segments,
		Facilities:   facilities,
		Points:       points,
		Boundary:     boundary,
		Demographics: Demographics{"1000": {"65-74": 100}},
		Rates:        IncidenceRates{"65-74": 747.0},
	}
}

func TestPipelineRun(t *testing.T) {
	pipeline := NewPipeline(WithWorkers(2))
	result, err := pipeline.Run(context.Background(), pipelineInput())
	require.NoError(t, err)

	// Point 'a' is one hop from A and two from D; 'b' mirrors it
	facility, ok := result.Assignment["a"].Facility()
	require.True(t, ok)
	assert.Equal(t, FacilityID("A"), facility)
	facility, ok = result.Assignment["b"].Facility()
	require.True(t, ok)
	assert.Equal(t, FacilityID("D"), facility)

	// The isolated street has no path to any facility
	assert.True(t, result.Assignment["lost"].IsDisconnected())
	assert.Equal(t, 1, result.Diagnostics.DisconnectedPoints)
	assert.Equal(t, 1, result.Diagnostics.PointsPerFacility["A"])
	assert.Equal(t, 1, result.Diagnostics.PointsPerFacility["D"])

	// 50/50 split of the 0.747 expected events of area 1000, the
	// disconnected point out of the denominator
	require.Len(t, result.Caseload, 2)
	assert.InDelta(t, 0.3735, result.Caseload[0].Cases, 1e-9)
	assert.InDelta(t, 0.3735, result.Caseload[1].Cases, 1e-9)
	total := 0.0
	for _, estimate := range result.Caseload {
		total += estimate.Percent
	}
	assert.InDelta(t, 100.0, total, 1e-9)

	require.Len(t, result.Catchments, 2)
	assert.Equal(t, FacilityID("A"), result.Catchments[0].Facility)
	assert.Equal(t, FacilityID("D"), result.Catchments[1].Facility)
	assert.NotEmpty(t, result.Catchments[0].Geom)
	assert.NotEmpty(t, result.Catchments[1].Geom)
}

func TestPipelineCoordinateSystemMismatch(t *testing.T) {
	input := pipelineInput()
	input.SegmentsCRS = "EPSG:4326"
	input.PointsCRS = "EPSG:3857"
	pipeline := NewPipeline()
	_, err := pipeline.Run(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, ErrCoordinateSystemMismatch, errors.Cause(err))
}

func TestPipelineEmptyRoutableGraph(t *testing.T) {
	input := pipelineInput()
	for i := range input.Segments {
		input.Segments[i].Class = CLASS_MOTORWAY
	}
	pipeline := NewPipeline(WithProfile(WalkingProfile()))
	_, err := pipeline.Run(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidGraph, errors.Cause(err))
}

func TestPipelineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pipeline := NewPipeline()
	result, err := pipeline.Run(ctx, pipelineInput())
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestPipelinePrefilter(t *testing.T) {
	input := pipelineInput()
	// With a 5 km straight-line pre-filter the isolated point never reaches
	// snapping at all and still lands in the disconnected category
	pipeline := NewPipeline(WithPrefilterRadius(5000))
	result, err := pipeline.Run(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, result.Assignment["lost"].IsDisconnected())
	assert.Equal(t, 1, result.Diagnostics.DisconnectedPoints)
}

func TestCheckCRS(t *testing.T) {
	assert.NoError(t, checkCRS())
	assert.NoError(t, checkCRS("", "", ""))
	assert.NoError(t, checkCRS("EPSG:4326", "", "EPSG:4326"))
	assert.Error(t, checkCRS("EPSG:4326", "EPSG:3857"))
}
