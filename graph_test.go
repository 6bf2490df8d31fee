package catchment

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

func TestBuildGraph(t *testing.T) {
	segments := []Segment{
		{ID: 1, Class: CLASS_RESIDENTIAL, Geometry: []orb.Point{{37.60, 55.75}, {37.61, 55.75}, {37.62, 55.75}}},
		{ID: 2, Class: CLASS_FOOTWAY, Geometry: []orb.Point{{37.62, 55.75}, {37.62, 55.76}}},
		{ID: 3, Class: CLASS_MOTORWAY, Geometry: []orb.Point{{37.62, 55.75}, {37.63, 55.75}}},
	}
	graph, err := BuildGraph(segments, WalkingProfile())
	if err != nil {
		t.Fatal(err)
	}
	// 3 residential + 1 footway atomic edges survive, the motorway one is
	// dropped, but its far endpoint still becomes a vertex
	if graph.NumVertices() != 5 {
		t.Errorf("Graph must have 5 vertices, but got %d", graph.NumVertices())
	}
	if graph.NumEdges() != 6 {
		t.Errorf("Graph must have 6 directed edges, but got %d", graph.NumEdges())
	}
	if graph.DroppedEdges() != 1 {
		t.Errorf("Graph must have dropped 1 atomic edge, but got %d", graph.DroppedEdges())
	}
	for _, edge := range graph.Edges() {
		if edge.Cost >= NonRoutableCost {
			t.Errorf("Non-routable cost leaked into edge %d->%d", edge.Source, edge.Target)
		}
		if graph.Vertex(edge.Source) == nil || graph.Vertex(edge.Target) == nil {
			t.Errorf("Edge %d->%d references missing vertex", edge.Source, edge.Target)
		}
	}
}

func TestBuildGraphDeterministic(t *testing.T) {
	segments := []Segment{
		{ID: 1, Class: CLASS_RESIDENTIAL, Geometry: []orb.Point{{37.60, 55.75}, {37.61, 55.75}}},
		{ID: 2, Class: CLASS_FOOTWAY, Geometry: []orb.Point{{37.61, 55.75}, {37.61, 55.76}}},
	}
	first, err := BuildGraph(segments, WalkingProfile())
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildGraph(segments, WalkingProfile())
	if err != nil {
		t.Fatal(err)
	}
	if first.NumVertices() != second.NumVertices() || first.NumEdges() != second.NumEdges() {
		t.Fatalf("Graph construction is not deterministic")
	}
	for i := range first.edges {
		if first.edges[i] != second.edges[i] {
			t.Errorf("Edge %d differs between identical builds: %v vs %v", i, first.edges[i], second.edges[i])
		}
	}
	for i := range first.vertices {
		if first.vertices[i].geom != second.vertices[i].geom {
			t.Errorf("Vertex %d differs between identical builds", i)
		}
	}
}

func TestBuildGraphEmptyRoutableSet(t *testing.T) {
	segments := []Segment{
		{ID: 1, Class: CLASS_MOTORWAY, Geometry: []orb.Point{{37.60, 55.75}, {37.61, 55.75}}},
	}
	_, err := BuildGraph(segments, WalkingProfile())
	if err == nil {
		t.Fatal("Graph without routable edges must be rejected")
	}
	if errors.Cause(err) != ErrInvalidGraph {
		t.Errorf("Expected ErrInvalidGraph, but got %v", err)
	}
}

func TestGraphComponents(t *testing.T) {
	// Two islands not connected to each other
	segments := []Segment{
		{ID: 1, Class: CLASS_RESIDENTIAL, Geometry: []orb.Point{{37.60, 55.75}, {37.61, 55.75}}},
		{ID: 2, Class: CLASS_RESIDENTIAL, Geometry: []orb.Point{{37.70, 55.80}, {37.71, 55.80}}},
	}
	graph, err := BuildGraph(segments, WalkingProfile())
	if err != nil {
		t.Fatal(err)
	}
	if !graph.SameComponent(0, 1) {
		t.Errorf("Vertices 0 and 1 must share a component")
	}
	if !graph.SameComponent(2, 3) {
		t.Errorf("Vertices 2 and 3 must share a component")
	}
	if graph.SameComponent(0, 2) {
		t.Errorf("Vertices 0 and 2 must not share a component")
	}
	if graph.SameComponent(0, 100) {
		t.Errorf("Unknown vertex can not share a component")
	}
}

func TestGraphParallelEdgesCollapse(t *testing.T) {
	// Same pair of coordinates covered by two classes with different costs
	segments := []Segment{
		{ID: 1, Class: CLASS_TRACK, Geometry: []orb.Point{{37.60, 55.75}, {37.61, 55.75}}},
		{ID: 2, Class: CLASS_RESIDENTIAL, Geometry: []orb.Point{{37.60, 55.75}, {37.61, 55.75}}},
	}
	graph, err := BuildGraph(segments, WalkingProfile())
	if err != nil {
		t.Fatal(err)
	}
	if graph.NumEdges() != 2 {
		t.Fatalf("Parallel edges must collapse, got %d directed edges", graph.NumEdges())
	}
	for _, edge := range graph.Edges() {
		if edge.Class != CLASS_RESIDENTIAL {
			t.Errorf("Cheapest parallel edge must win, got class %s", edge.Class)
		}
	}
}
