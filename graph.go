package catchment

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type VertexID int64

// Vertex is a graph vertex with a stable identifier. Immutable after graph
// construction.
type Vertex struct {
	ID   VertexID
	geom orb.Point
}

// Point implements orb.Pointer so vertices can be stored in a quadtree
// directly.
func (v *Vertex) Point() orb.Point {
	return v.geom
}

// Edge is a directed atomic edge between two consecutive segment
// coordinates. Cost is physical length scaled by the travel-mode multiplier.
// Only routable edges survive into the graph's edge set.
type Edge struct {
	Source       VertexID
	Target       VertexID
	Class        RoadClass
	LengthMeters float64
	Cost         float64
}

// Graph owns the full vertex set and the filtered edge set containing only
// routable edges. Read-only once built; safe to share between goroutines
// without synchronization.
type Graph struct {
	vertices      []*Vertex
	edges         []Edge
	vertexByCoord map[orb.Point]VertexID
	component     []int
	droppedEdges  int
}

// BuildGraph decomposes raw street segments into atomic edges, applies the
// travel-mode profile and keeps routable edges only. Construction is
// deterministic for identical inputs: vertex identifiers are assigned in
// first-appearance order, parallel edges collapse to the cheapest one.
func BuildGraph(segments []Segment, profile TravelProfile) (*Graph, error) {
	graph := &Graph{
		vertexByCoord: make(map[orb.Point]VertexID),
	}
	edgeIndex := make(map[[2]VertexID]int)
	for _, segment := range segments {
		multiplier, routable := profile.Multiplier(segment.Class)
		for i := 1; i < len(segment.Geometry); i++ {
			source := graph.vertex(segment.Geometry[i-1])
			target := graph.vertex(segment.Geometry[i])
			if source == target {
				// Zero-length piece, nothing to traverse
				continue
			}
			if !routable {
				graph.droppedEdges++
				continue
			}
			length := greatCircleDistanceMeters(segment.Geometry[i-1], segment.Geometry[i])
			cost := length * multiplier
			graph.addEdge(edgeIndex, Edge{Source: source, Target: target, Class: segment.Class, LengthMeters: length, Cost: cost})
			graph.addEdge(edgeIndex, Edge{Source: target, Target: source, Class: segment.Class, LengthMeters: length, Cost: cost})
		}
	}
	if len(graph.edges) == 0 {
		return nil, errors.Wrap(ErrInvalidGraph, "Empty routable edge set")
	}
	graph.buildComponents()
	return graph, nil
}

// vertex returns identifier of the vertex at given coordinate, creating it
// on first sight.
func (graph *Graph) vertex(point orb.Point) VertexID {
	if id, ok := graph.vertexByCoord[point]; ok {
		return id
	}
	id := VertexID(len(graph.vertices))
	graph.vertices = append(graph.vertices, &Vertex{ID: id, geom: point})
	graph.vertexByCoord[point] = id
	return id
}

func (graph *Graph) addEdge(edgeIndex map[[2]VertexID]int, edge Edge) {
	key := [2]VertexID{edge.Source, edge.Target}
	if idx, ok := edgeIndex[key]; ok {
		if edge.Cost < graph.edges[idx].Cost {
			graph.edges[idx] = edge
		}
		return
	}
	edgeIndex[key] = len(graph.edges)
	graph.edges = append(graph.edges, edge)
}

// buildComponents labels weakly-connected components of the routable edge
// set with a plain union-find. Vertices touched only by non-routable
// segments stay in singleton components.
func (graph *Graph) buildComponents() {
	parent := make([]int, len(graph.vertices))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, edge := range graph.edges {
		a := find(int(edge.Source))
		b := find(int(edge.Target))
		if a != b {
			parent[b] = a
		}
	}
	graph.component = make([]int, len(graph.vertices))
	for i := range graph.component {
		graph.component[i] = find(i)
	}
}

// NumVertices returns size of the vertex set.
func (graph *Graph) NumVertices() int {
	return len(graph.vertices)
}

// NumEdges returns size of the routable edge set (directed edges).
func (graph *Graph) NumEdges() int {
	return len(graph.edges)
}

// DroppedEdges returns number of atomic edges discarded as non-routable
// under the travel profile.
func (graph *Graph) DroppedEdges() int {
	return graph.droppedEdges
}

// Vertex returns the vertex for given identifier or nil if not present.
func (graph *Graph) Vertex(id VertexID) *Vertex {
	if id < 0 || int(id) >= len(graph.vertices) {
		return nil
	}
	return graph.vertices[id]
}

// Edges returns the routable edge set. Callers must not modify it.
func (graph *Graph) Edges() []Edge {
	return graph.edges
}

// SameComponent reports whether two vertices belong to the same
// weakly-connected component of the routable edge set.
func (graph *Graph) SameComponent(a, b VertexID) bool {
	if graph.Vertex(a) == nil || graph.Vertex(b) == nil {
		return false
	}
	return graph.component[a] == graph.component[b]
}

// validate checks structural invariants before the graph is handed to the
// routing engine.
func (graph *Graph) validate() error {
	if len(graph.edges) == 0 {
		return errors.Wrap(ErrInvalidGraph, "Empty routable edge set")
	}
	for _, edge := range graph.edges {
		if graph.Vertex(edge.Source) == nil || graph.Vertex(edge.Target) == nil {
			return errors.Wrapf(ErrInvalidGraph, "Edge %d->%d references missing vertex", edge.Source, edge.Target)
		}
		if edge.Cost >= NonRoutableCost {
			return errors.Wrapf(ErrInvalidGraph, "Edge %d->%d carries non-routable cost", edge.Source, edge.Target)
		}
	}
	return nil
}
