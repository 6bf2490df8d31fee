package catchment

import (
	"sort"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"github.com/pzsz/voronoi"
)

// Catchment is the region of the study boundary attributed to one facility.
type Catchment struct {
	Facility FacilityID
	Geom     orb.MultiPolygon
}

// site is one distinct demand coordinate together with every point id
// sharing it. Tessellation is undefined on duplicate coordinates, so
// coincident points collapse into one site before it runs.
type site struct {
	coord    orb.Point
	pointIDs []string
	label    Label
}

// PartitionCatchments tessellates demand point sites into Voronoi cells,
// matches every returned cell back to its site by spatial containment,
// unions cells per assigned facility and clips each union to the study
// boundary. Disconnected sites take part in the tessellation but their cells
// belong to no facility. Resulting polygons do not overlap by construction.
func PartitionCatchments(points []QueryPoint, assignment Assignment, boundary orb.MultiPolygon) ([]Catchment, error) {
	sites := dedupeSites(points, assignment)
	if len(sites) == 0 {
		return nil, errors.Wrap(ErrDegenerateTessellation, "No distinct sites remain after deduplication")
	}

	cells, err := tessellate(sites, boundary)
	if err != nil {
		return nil, err
	}

	// Group cell polygons by assigned facility
	cellsByFacility := make(map[FacilityID][]orb.Polygon)
	for i, s := range sites {
		facility, ok := s.label.Facility()
		if !ok {
			continue
		}
		cellsByFacility[facility] = append(cellsByFacility[facility], cells[i])
	}

	facilities := make([]FacilityID, 0, len(cellsByFacility))
	for facility := range cellsByFacility {
		facilities = append(facilities, facility)
	}
	sort.Slice(facilities, func(i, j int) bool { return facilities[i] < facilities[j] })

	boundaryGeom := multiPolygonToGeom(boundary)
	catchments := make([]Catchment, 0, len(facilities))
	for _, facility := range facilities {
		polygons := cellsByFacility[facility]
		union := polygonToGeom(polygons[0])
		for _, polygon := range polygons[1:] {
			union, err = polygol.Union(union, polygonToGeom(polygon))
			if err != nil {
				return nil, errors.Wrapf(err, "Can't union cells of facility '%s'", facility)
			}
		}
		clipped, err := polygol.Intersection(union, boundaryGeom)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't clip catchment of facility '%s' to boundary", facility)
		}
		catchments = append(catchments, Catchment{Facility: facility, Geom: geomToMultiPolygon(clipped)})
	}
	return catchments, nil
}

// dedupeSites collapses coincident coordinates keeping first-appearance
// order and a back-mapping to all original point identifiers. Coincident
// points snap to the same vertex and therefore share one label; should the
// labels ever diverge, the label of the lowest point id wins. Points absent
// from the assignment count as disconnected.
func dedupeSites(points []QueryPoint, assignment Assignment) []site {
	index := make(map[orb.Point]int)
	sites := []site{}
	for _, point := range points {
		if i, ok := index[point.Geom]; ok {
			sites[i].pointIDs = append(sites[i].pointIDs, point.ID)
			continue
		}
		index[point.Geom] = len(sites)
		sites = append(sites, site{coord: point.Geom, pointIDs: []string{point.ID}})
	}
	for i := range sites {
		sort.Strings(sites[i].pointIDs)
		label, ok := assignment[sites[i].pointIDs[0]]
		if !ok {
			label = DisconnectedLabel()
		}
		sites[i].label = label
	}
	return sites
}

// tessellate computes one closed Voronoi cell polygon per site and returns
// them in site order. The tessellation library does not guarantee output
// cells in input order, so every cell is matched back to its site by a
// containment test; skipping that re-match silently mis-assigns cells.
func tessellate(sites []site, boundary orb.MultiPolygon) ([]orb.Polygon, error) {
	bound := boundary.Bound()
	for _, s := range sites {
		bound = bound.Extend(s.coord)
	}
	padX := (bound.Max.X()-bound.Min.X())*0.1 + 1e-6
	padY := (bound.Max.Y()-bound.Min.Y())*0.1 + 1e-6
	bbox := voronoi.NewBBox(bound.Min.X()-padX, bound.Max.X()+padX, bound.Min.Y()-padY, bound.Max.Y()+padY)

	if len(sites) == 1 {
		// A single site owns the whole frame
		ring := orb.Ring{
			{bbox.Xl, bbox.Yt}, {bbox.Xr, bbox.Yt}, {bbox.Xr, bbox.Yb}, {bbox.Xl, bbox.Yb}, {bbox.Xl, bbox.Yt},
		}
		return []orb.Polygon{{ring}}, nil
	}

	vertices := make([]voronoi.Vertex, len(sites))
	for i, s := range sites {
		vertices[i] = voronoi.Vertex{X: s.coord.X(), Y: s.coord.Y()}
	}
	diagram := voronoi.ComputeDiagram(vertices, bbox, true)

	cellPolygons := make([]orb.Polygon, 0, len(diagram.Cells))
	for _, cell := range diagram.Cells {
		if len(cell.Halfedges) == 0 {
			continue
		}
		ring := make(orb.Ring, 0, len(cell.Halfedges)+1)
		for _, halfedge := range cell.Halfedges {
			start := halfedge.GetStartpoint()
			ring = append(ring, orb.Point{start.X, start.Y})
		}
		ring = append(ring, ring[0])
		cellPolygons = append(cellPolygons, orb.Polygon{ring})
	}

	// Restore site order: each site lies inside exactly one returned cell
	ordered := make([]orb.Polygon, len(sites))
	for i, s := range sites {
		matched := false
		for _, polygon := range cellPolygons {
			if planar.PolygonContains(polygon, s.coord) {
				ordered[i] = polygon
				matched = true
				break
			}
		}
		if !matched {
			return nil, errors.Wrapf(ErrDegenerateTessellation, "Site (%f, %f) is not contained in any tessellation cell", s.coord.X(), s.coord.Y())
		}
	}
	return ordered, nil
}

func polygonToGeom(polygon orb.Polygon) [][][][]float64 {
	return multiPolygonToGeom(orb.MultiPolygon{polygon})
}

func multiPolygonToGeom(multiPolygon orb.MultiPolygon) [][][][]float64 {
	geom := make([][][][]float64, 0, len(multiPolygon))
	for _, polygon := range multiPolygon {
		rings := make([][][]float64, 0, len(polygon))
		for _, ring := range polygon {
			coords := make([][]float64, 0, len(ring))
			for _, point := range ring {
				coords = append(coords, []float64{point.X(), point.Y()})
			}
			rings = append(rings, coords)
		}
		geom = append(geom, rings)
	}
	return geom
}

func geomToMultiPolygon(geom [][][][]float64) orb.MultiPolygon {
	multiPolygon := make(orb.MultiPolygon, 0, len(geom))
	for _, rings := range geom {
		polygon := make(orb.Polygon, 0, len(rings))
		for _, coords := range rings {
			ring := make(orb.Ring, 0, len(coords))
			for _, coord := range coords {
				ring = append(ring, orb.Point{coord[0], coord[1]})
			}
			polygon = append(polygon, ring)
		}
		multiPolygon = append(multiPolygon, polygon)
	}
	return multiPolygon
}
