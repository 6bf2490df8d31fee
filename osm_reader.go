package catchment

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

func newOSMScanner(filename string, file *os.File) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf", ".osm.pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	}
	return nil, errors.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
}

// ReadSegmentsFromOSM extracts street segments from an *.osm / *.osm.pbf
// file. Two passes over the file: ways carrying a 'highway' tag first, then
// the nodes those ways reference. Ways referencing nodes missing from the
// extract are skipped.
func ReadSegmentsFromOSM(filename string) ([]Segment, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open OSM file")
	}
	defer file.Close()

	/* Process ways */
	type rawWay struct {
		id    int64
		class RoadClass
		nodes []osm.NodeID
	}
	ways := []rawWay{}
	nodesNeeded := make(map[osm.NodeID]struct{})
	{
		scannerWays, err := newOSMScanner(filename, file)
		if err != nil {
			return nil, err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			highwayText := way.Tags.Find("highway")
			if highwayText == "" {
				continue
			}
			prepared := rawWay{
				id:    int64(way.ID),
				class: ParseRoadClass(highwayText),
				nodes: make([]osm.NodeID, 0, len(way.Nodes)),
			}
			for _, node := range way.Nodes {
				nodesNeeded[node.ID] = struct{}{}
				prepared.nodes = append(prepared.nodes, node.ID)
			}
			ways = append(ways, prepared)
		}
		if err := scannerWays.Err(); err != nil {
			return nil, err
		}
	}

	// Seek file to start
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	nodeCoords := make(map[osm.NodeID]orb.Point)
	{
		scannerNodes, err := newOSMScanner(filename, file)
		if err != nil {
			return nil, err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodesNeeded[node.ID]; ok {
				nodeCoords[node.ID] = orb.Point{node.Lon, node.Lat}
			}
		}
		if err := scannerNodes.Err(); err != nil {
			return nil, err
		}
	}

	segments := make([]Segment, 0, len(ways))
	for _, way := range ways {
		geometry := make([]orb.Point, 0, len(way.nodes))
		complete := true
		for _, nodeID := range way.nodes {
			coord, ok := nodeCoords[nodeID]
			if !ok {
				complete = false
				break
			}
			geometry = append(geometry, coord)
		}
		if !complete || len(geometry) < 2 {
			continue
		}
		segments = append(segments, Segment{ID: way.id, Class: way.class, Geometry: geometry})
	}
	return segments, nil
}
