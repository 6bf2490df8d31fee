package catchment

import (
	"encoding/csv"
	"os"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

func readCSV(fname string) ([][]string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read records")
	}
	if len(records) < 1 {
		return nil, errors.Errorf("File '%s' has no header", fname)
	}
	return records[1:], nil
}

// ReadFacilitiesCSV reads facilities from a ';'-separated file with header
// name;longitude;latitude.
func ReadFacilitiesCSV(fname string) ([]Facility, error) {
	records, err := readCSV(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read facilities")
	}
	facilities := make([]Facility, 0, len(records))
	for i, record := range records {
		if len(record) < 3 {
			return nil, errors.Errorf("Facility record %d has %d fields, expected 3", i+1, len(record))
		}
		lon, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse longitude of facility record %d", i+1)
		}
		lat, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse latitude of facility record %d", i+1)
		}
		facilities = append(facilities, Facility{ID: FacilityID(record[0]), Geom: orb.Point{lon, lat}})
	}
	return facilities, nil
}

// ReadPointsCSV reads demand points from a ';'-separated file with header
// id;longitude;latitude;area.
func ReadPointsCSV(fname string) ([]QueryPoint, error) {
	records, err := readCSV(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read demand points")
	}
	points := make([]QueryPoint, 0, len(records))
	for i, record := range records {
		if len(record) < 4 {
			return nil, errors.Errorf("Point record %d has %d fields, expected 4", i+1, len(record))
		}
		lon, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse longitude of point record %d", i+1)
		}
		lat, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse latitude of point record %d", i+1)
		}
		points = append(points, QueryPoint{ID: record[0], Geom: orb.Point{lon, lat}, Area: record[3]})
	}
	return points, nil
}

// ReadDemographicsCSV reads per-area age-bracket populations from a
// ';'-separated file with header area;bracket;population.
func ReadDemographicsCSV(fname string) (Demographics, error) {
	records, err := readCSV(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read demographics")
	}
	demographics := make(Demographics)
	for i, record := range records {
		if len(record) < 3 {
			return nil, errors.Errorf("Demographics record %d has %d fields, expected 3", i+1, len(record))
		}
		population, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse population of record %d", i+1)
		}
		if demographics[record[0]] == nil {
			demographics[record[0]] = make(map[string]float64)
		}
		demographics[record[0]][record[1]] += population
	}
	return demographics, nil
}

// ReadRatesCSV reads per-bracket incidence rates (events per 100 000) from a
// ';'-separated file with header bracket;rate.
func ReadRatesCSV(fname string) (IncidenceRates, error) {
	records, err := readCSV(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read incidence rates")
	}
	rates := make(IncidenceRates)
	for i, record := range records {
		if len(record) < 2 {
			return nil, errors.Errorf("Rate record %d has %d fields, expected 2", i+1, len(record))
		}
		rate, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse rate of record %d", i+1)
		}
		rates[record[0]] = rate
	}
	return rates, nil
}

// ReadSegmentsGeoJSON reads street segments from a GeoJSON FeatureCollection
// of LineString / MultiLineString features. Road classification is taken
// from the 'highway' property (falling back to 'class').
func ReadSegmentsGeoJSON(fname string) ([]Segment, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal feature collection")
	}
	segments := []Segment{}
	nextID := int64(1)
	for _, feature := range collection.Features {
		classTag, err := feature.PropertyString("highway")
		if err != nil {
			classTag, _ = feature.PropertyString("class")
		}
		class := ParseRoadClass(classTag)
		lines := [][][]float64{}
		switch {
		case feature.Geometry.IsLineString():
			lines = append(lines, feature.Geometry.LineString)
		case feature.Geometry.IsMultiLineString():
			lines = append(lines, feature.Geometry.MultiLineString...)
		default:
			continue
		}
		for _, line := range lines {
			geometry := make([]orb.Point, 0, len(line))
			for _, coord := range line {
				if len(coord) < 2 {
					return nil, errors.Errorf("Segment feature has malformed coordinate in line geometry")
				}
				geometry = append(geometry, orb.Point{coord[0], coord[1]})
			}
			if len(geometry) < 2 {
				continue
			}
			segments = append(segments, Segment{ID: nextID, Class: class, Geometry: geometry})
			nextID++
		}
	}
	return segments, nil
}

// ReadBoundaryGeoJSON reads the study boundary: the first Polygon or
// MultiPolygon feature of the file.
func ReadBoundaryGeoJSON(fname string) (orb.MultiPolygon, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal feature collection")
	}
	for _, feature := range collection.Features {
		switch {
		case feature.Geometry.IsPolygon():
			return geomToMultiPolygon([][][][]float64{feature.Geometry.Polygon}), nil
		case feature.Geometry.IsMultiPolygon():
			return geomToMultiPolygon(feature.Geometry.MultiPolygon), nil
		}
	}
	return nil, errors.Errorf("File '%s' contains no polygonal feature", fname)
}
