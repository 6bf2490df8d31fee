package catchment

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
	"github.com/pkg/errors"
)

// SnapResult relates one query point to the graph: the nearest vertex, the
// great-circle distance to it and whether that vertex can reach any facility
// over the routable edge set.
type SnapResult struct {
	PointID        string
	Vertex         VertexID
	DistanceMeters float64
	Connected      bool
}

// Locator snaps arbitrary coordinates onto graph vertices through a planar
// quadtree index. Read-only after construction.
type Locator struct {
	graph *Graph
	tree  *quadtree.Quadtree
}

// snapCandidates is the initial candidate window per lookup; the window
// doubles while ties at the minimal distance fill it completely.
const snapCandidates = 16

// NewLocator builds the quadtree index over all graph vertices.
func NewLocator(graph *Graph) *Locator {
	bound := orb.Bound{Min: graph.vertices[0].geom, Max: graph.vertices[0].geom}
	for _, vertex := range graph.vertices {
		bound = bound.Extend(vertex.geom)
	}
	tree := quadtree.New(bound)
	for _, vertex := range graph.vertices {
		tree.Add(vertex)
	}
	return &Locator{graph: graph, tree: tree}
}

// NearestVertex returns the nearest graph vertex by planar distance. Ties
// are broken by lowest vertex identifier over the complete tie set, so the
// winner does not depend on index traversal order. Returns
// ErrUnsnappablePoint when no vertex lies within maxRadiusMeters
// (non-positive radius disables the limit).
func (locator *Locator) NearestVertex(point orb.Point, maxRadiusMeters float64) (VertexID, float64, error) {
	candidates := locator.nearestWindow(point)
	if len(candidates) == 0 {
		return -1, 0, errors.Wrapf(ErrUnsnappablePoint, "No candidates around (%f, %f)", point.X(), point.Y())
	}
	best := candidates[0].(*Vertex)
	bestDistance := findDistance(point, best.geom)
	for _, candidate := range candidates[1:] {
		vertex := candidate.(*Vertex)
		distance := findDistance(point, vertex.geom)
		if distance < bestDistance || (distance == bestDistance && vertex.ID < best.ID) {
			best = vertex
			bestDistance = distance
		}
	}
	meters := greatCircleDistanceMeters(point, best.geom)
	if maxRadiusMeters > 0 && meters > maxRadiusMeters {
		return -1, meters, errors.Wrapf(ErrUnsnappablePoint, "Nearest vertex is %f m away, limit is %f m", meters, maxRadiusMeters)
	}
	return best.ID, meters, nil
}

// nearestWindow fetches the k nearest vertices, doubling k while every
// candidate sits at the same planar distance. A window whose farthest
// candidate is strictly farther than its nearest one contains every vertex
// tied at the minimal distance.
func (locator *Locator) nearestWindow(point orb.Point) []orb.Pointer {
	for k := snapCandidates; ; k *= 2 {
		buf := make([]orb.Pointer, 0, k)
		candidates := locator.tree.KNearest(buf, point, k)
		if len(candidates) < k {
			return candidates
		}
		nearest := findDistance(point, candidates[0].(*Vertex).geom)
		farthest := nearest
		for _, candidate := range candidates[1:] {
			distance := findDistance(point, candidate.(*Vertex).geom)
			if distance < nearest {
				nearest = distance
			}
			if distance > farthest {
				farthest = distance
			}
		}
		if farthest > nearest {
			return candidates
		}
	}
}

// SnapFacilities locates every facility on the graph. A facility outside the
// snap radius is fatal: it can not take part in routing at all.
func (locator *Locator) SnapFacilities(facilities []Facility, maxRadiusMeters float64) (map[FacilityID]VertexID, error) {
	snapped := make(map[FacilityID]VertexID, len(facilities))
	for _, facility := range facilities {
		vertex, _, err := locator.NearestVertex(facility.Geom, maxRadiusMeters)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't snap facility '%s'", facility.ID)
		}
		snapped[facility.ID] = vertex
	}
	return snapped, nil
}

// SnapPoints snaps demand points and flags each as connected or not. A point
// is connected only when its nearest vertex shares a weakly-connected
// component with at least one facility vertex. Unsnappable points degrade to
// disconnected instead of failing the run. Multiple points snapping to the
// same vertex is expected.
func (locator *Locator) SnapPoints(points []QueryPoint, facilityVertices map[FacilityID]VertexID, maxRadiusMeters float64) []SnapResult {
	results := make([]SnapResult, 0, len(points))
	for _, point := range points {
		vertex, meters, err := locator.NearestVertex(point.Geom, maxRadiusMeters)
		if err != nil {
			results = append(results, SnapResult{PointID: point.ID, Vertex: -1, DistanceMeters: meters, Connected: false})
			continue
		}
		connected := false
		for _, facilityVertex := range facilityVertices {
			if locator.graph.SameComponent(vertex, facilityVertex) {
				connected = true
				break
			}
		}
		results = append(results, SnapResult{PointID: point.ID, Vertex: vertex, DistanceMeters: meters, Connected: connected})
	}
	return results
}
