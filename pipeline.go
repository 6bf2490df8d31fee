package catchment

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSnapRadiusMeters bounds the vertex search around any query
	// point; points farther from the network degrade to disconnected.
	DefaultSnapRadiusMeters = 500.0
	// DefaultPrefilterRadiusMeters is the straight-line pre-filter around
	// facilities: points farther than this from every facility skip network
	// routing entirely and degrade to disconnected.
	DefaultPrefilterRadiusMeters = 50000.0
)

// Input carries everything one batch run consumes. Geometric inputs must
// share a single coordinate reference system; reprojection happens before
// the core, but the core refuses mismatched systems.
type Input struct {
	Segments      []Segment
	SegmentsCRS   string
	Facilities    []Facility
	FacilitiesCRS string
	Points        []QueryPoint
	PointsCRS     string
	Boundary      orb.MultiPolygon
	BoundaryCRS   string
	Demographics  Demographics
	Rates         IncidenceRates
}

// Result is the complete output of one run. Never partially populated: a
// cancelled or failed run returns an error and no result.
type Result struct {
	Catchments  []Catchment
	Caseload    []CaseloadEstimate
	Assignment  Assignment
	Diagnostics Diagnostics
}

// Pipeline is an explicit context object wiring the components together.
// It keeps no state between runs; there are no package-level caches.
type Pipeline struct {
	profile         TravelProfile
	snapRadius      float64
	prefilterRadius float64
	workers         int
}

// NewPipeline returns a pipeline with walking defaults, customizable via
// options.
func NewPipeline(options ...func(*Pipeline)) *Pipeline {
	pipeline := &Pipeline{
		profile:         WalkingProfile(),
		snapRadius:      DefaultSnapRadiusMeters,
		prefilterRadius: DefaultPrefilterRadiusMeters,
		workers:         0,
	}
	for _, option := range options {
		option(pipeline)
	}
	return pipeline
}

// WithProfile sets the travel-mode profile.
func WithProfile(profile TravelProfile) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.profile = profile
	}
}

// WithSnapRadius sets the maximum snap radius in meters. Non-positive
// disables the limit.
func WithSnapRadius(meters float64) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.snapRadius = meters
	}
}

// WithPrefilterRadius sets the straight-line pre-filter radius in meters.
// Non-positive disables pre-filtering.
func WithPrefilterRadius(meters float64) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.prefilterRadius = meters
	}
}

// WithWorkers caps the number of parallel shortest-path workers.
// Non-positive means one worker per CPU.
func WithWorkers(workers int) func(*Pipeline) {
	return func(pipeline *Pipeline) {
		pipeline.workers = workers
	}
}

// Run executes the full batch: graph build, snapping, distance matrix,
// assignment, then the geometry and statistics branches concurrently.
func (pipeline *Pipeline) Run(ctx context.Context, input Input) (*Result, error) {
	if err := checkCRS(input.SegmentsCRS, input.FacilitiesCRS, input.PointsCRS, input.BoundaryCRS); err != nil {
		return nil, err
	}

	graph, err := BuildGraph(input.Segments, pipeline.profile)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build routable graph")
	}

	locator := NewLocator(graph)
	facilityVertices, err := locator.SnapFacilities(input.Facilities, pipeline.snapRadius)
	if err != nil {
		return nil, errors.Wrap(err, "Can't locate facilities on the network")
	}

	nearPoints, farPoints := pipeline.prefilter(input.Points, input.Facilities)
	snaps := locator.SnapPoints(nearPoints, facilityVertices, pipeline.snapRadius)
	for _, point := range farPoints {
		snaps = append(snaps, SnapResult{PointID: point.ID, Vertex: -1, Connected: false})
	}

	engine, err := NewDistanceEngine(graph)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare distance engine")
	}
	matrix, err := engine.Distances(ctx, snaps, facilityVertices, pipeline.workers)
	if err != nil {
		return nil, err
	}

	assignment := Assign(matrix)

	result := &Result{Assignment: assignment, Diagnostics: assignment.Summarize()}
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		catchments, err := PartitionCatchments(input.Points, assignment, input.Boundary)
		if err != nil {
			return errors.Wrap(err, "Can't partition catchments")
		}
		result.Catchments = catchments
		return nil
	})
	group.Go(func() error {
		result.Caseload = AggregateCaseload(input.Points, assignment, input.Demographics, input.Rates)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// prefilter splits points into those within the straight-line radius of any
// facility and those beyond it. The latter never reach the distance engine.
func (pipeline *Pipeline) prefilter(points []QueryPoint, facilities []Facility) (near, far []QueryPoint) {
	if pipeline.prefilterRadius <= 0 {
		return points, nil
	}
	for _, point := range points {
		within := false
		for _, facility := range facilities {
			if greatCircleDistanceMeters(point.Geom, facility.Geom) <= pipeline.prefilterRadius {
				within = true
				break
			}
		}
		if within {
			near = append(near, point)
			continue
		}
		far = append(far, point)
	}
	return near, far
}

// checkCRS verifies that all declared reference systems agree. Empty strings
// mean "unspecified" and are accepted; any two distinct non-empty systems
// are a fatal mismatch.
func checkCRS(systems ...string) error {
	seen := ""
	for _, system := range systems {
		if system == "" {
			continue
		}
		if seen == "" {
			seen = system
			continue
		}
		if system != seen {
			return errors.Wrapf(ErrCoordinateSystemMismatch, "'%s' vs '%s'", seen, system)
		}
	}
	return nil
}
