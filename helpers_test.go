package catchment

import (
	"github.com/paulmach/orb"
)

// testGraph builds a graph with explicit edge costs, both directions per
// link, bypassing the segment decomposition.
func testGraph(coords []orb.Point, links [][2]int, costs []float64) *Graph {
	graph := &Graph{vertexByCoord: make(map[orb.Point]VertexID)}
	for i, coord := range coords {
		id := VertexID(i)
		graph.vertices = append(graph.vertices, &Vertex{ID: id, geom: coord})
		graph.vertexByCoord[coord] = id
	}
	for i, link := range links {
		source := VertexID(link[0])
		target := VertexID(link[1])
		graph.edges = append(graph.edges,
			Edge{Source: source, Target: target, Class: CLASS_RESIDENTIAL, LengthMeters: costs[i], Cost: costs[i]},
			Edge{Source: target, Target: source, Class: CLASS_RESIDENTIAL, LengthMeters: costs[i], Cost: costs[i]},
		)
	}
	graph.buildComponents()
	return graph
}
