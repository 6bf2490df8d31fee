package catchment

import (
	"context"
	"math"
	"runtime"
	"sort"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Unreachable marks a (point, facility) pair with no path over the routable
// edge set.
var Unreachable = math.Inf(1)

// DistanceMatrix holds shortest-path distances from every demand point to
// every facility. Built once per run, read-only afterward.
type DistanceMatrix struct {
	facilities []FacilityID
	rows       map[string]map[FacilityID]float64
}

// Facilities returns facility identifiers in ascending order.
func (matrix *DistanceMatrix) Facilities() []FacilityID {
	return matrix.facilities
}

// PointIDs returns demand point identifiers in ascending order.
func (matrix *DistanceMatrix) PointIDs() []string {
	ids := make([]string, 0, len(matrix.rows))
	for id := range matrix.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Distance returns the shortest-path distance for the pair and whether the
// facility is reachable from the point at all.
func (matrix *DistanceMatrix) Distance(pointID string, facility FacilityID) (float64, bool) {
	row, ok := matrix.rows[pointID]
	if !ok {
		return Unreachable, false
	}
	distance, ok := row[facility]
	if !ok || math.IsInf(distance, 1) {
		return Unreachable, false
	}
	return distance, true
}

// DistanceEngine answers many-to-many shortest-path queries over the
// routable edge set through contraction hierarchies.
type DistanceEngine struct {
	graph  *Graph
	router *ch.Graph
}

// NewDistanceEngine builds the routing graph from the filtered edge set and
// prepares contraction hierarchies. The graph must contain routable edges
// only; the non-routable sentinel never reaches the router.
func NewDistanceEngine(graph *Graph) (*DistanceEngine, error) {
	if err := graph.validate(); err != nil {
		return nil, err
	}
	router := ch.Graph{}
	for _, edge := range graph.edges {
		source := int64(edge.Source)
		target := int64(edge.Target)
		if err := router.CreateVertex(source); err != nil {
			return nil, errors.Wrap(err, "Can't create source vertex")
		}
		if err := router.CreateVertex(target); err != nil {
			return nil, errors.Wrap(err, "Can't create target vertex")
		}
		if err := router.AddEdge(source, target, edge.Cost); err != nil {
			return nil, errors.Wrap(err, "Can't add edge to routing graph")
		}
	}
	router.PrepareContractionHierarchies()
	return &DistanceEngine{graph: graph, router: &router}, nil
}

// Distances computes the demand-points x facilities matrix. Queries batch by
// shared snapped vertex: one one-to-many run per distinct source vertex,
// fanned back out to every point sharing it. Runs are independent and execute
// on up to `workers` goroutines, each writing a disjoint slot of a
// preallocated slice; results do not depend on enumeration order. On
// cancellation not-yet-dispatched sources are not started and no partial
// matrix is returned.
func (engine *DistanceEngine) Distances(ctx context.Context, snaps []SnapResult, facilityVertices map[FacilityID]VertexID, workers int) (*DistanceMatrix, error) {
	facilities := make([]FacilityID, 0, len(facilityVertices))
	for id := range facilityVertices {
		facilities = append(facilities, id)
	}
	sort.Slice(facilities, func(i, j int) bool { return facilities[i] < facilities[j] })
	targets := make([]int64, len(facilities))
	for i, id := range facilities {
		targets[i] = int64(facilityVertices[id])
	}

	// Batch by shared source vertex
	sources := []VertexID{}
	seen := make(map[VertexID]struct{})
	for _, snap := range snaps {
		if !snap.Connected {
			continue
		}
		if _, ok := seen[snap.Vertex]; ok {
			continue
		}
		seen[snap.Vertex] = struct{}{}
		sources = append(sources, snap.Vertex)
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	perSource := make([][]float64, len(sources))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := range sources {
		if groupCtx.Err() != nil {
			// Not-yet-dispatched sources are simply not started
			break
		}
		i := i
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			costs, _ := engine.router.ShortestPathOneToMany(int64(sources[i]), targets)
			row := make([]float64, len(targets))
			for j, cost := range costs {
				if cost < 0 {
					row[j] = Unreachable
					continue
				}
				row[j] = cost
			}
			perSource[i] = row
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(err, "Distance computation interrupted")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "Distance computation interrupted")
	}

	bySource := make(map[VertexID][]float64, len(sources))
	for i, source := range sources {
		bySource[source] = perSource[i]
	}
	matrix := &DistanceMatrix{
		facilities: facilities,
		rows:       make(map[string]map[FacilityID]float64, len(snaps)),
	}
	for _, snap := range snaps {
		row := make(map[FacilityID]float64, len(facilities))
		costs, ok := bySource[snap.Vertex]
		for j, facility := range facilities {
			if !snap.Connected || !ok {
				row[facility] = Unreachable
				continue
			}
			row[facility] = costs[j]
		}
		matrix.rows[snap.PointID] = row
	}
	return matrix, nil
}
