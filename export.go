package catchment

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

func sortFacilities(ids []FacilityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// ExportCatchmentsGeoJSON writes catchment polygons as a GeoJSON
// FeatureCollection with a 'facility' property per feature.
func ExportCatchmentsGeoJSON(catchments []Catchment, fname string) error {
	collection := geojson.NewFeatureCollection()
	for _, catchment := range catchments {
		feature := geojson.NewFeature(geojson.NewMultiPolygonGeometry(multiPolygonToGeom(catchment.Geom)...))
		feature.SetProperty("facility", string(catchment.Facility))
		collection.AddFeature(feature)
	}
	data, err := collection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal feature collection")
	}
	if err := os.WriteFile(fname, data, 0644); err != nil {
		return errors.Wrap(err, "Can't write file")
	}
	return nil
}

// PrepareWKTCatchment returns WKT representation of a catchment polygon.
func PrepareWKTCatchment(catchment Catchment) string {
	return wkt.MarshalString(catchment.Geom)
}

// ExportCaseloadToCSV writes the caseload table: facility, absolute estimate
// and percentage share.
func ExportCaseloadToCSV(estimates []CaseloadEstimate, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"facility", "estimated_cases", "percent_share"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, estimate := range estimates {
		err = writer.Write([]string{
			string(estimate.Facility),
			fmt.Sprintf("%f", estimate.Cases),
			fmt.Sprintf("%f", estimate.Percent),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write estimate")
		}
	}
	return nil
}

// ExportDiagnosticsToCSV writes per-facility point counts plus the
// disconnected count for the reporting layer.
func ExportDiagnosticsToCSV(diagnostics Diagnostics, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"facility", "demand_points"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	facilities := make([]FacilityID, 0, len(diagnostics.PointsPerFacility))
	for facility := range diagnostics.PointsPerFacility {
		facilities = append(facilities, facility)
	}
	sortFacilities(facilities)
	for _, facility := range facilities {
		err = writer.Write([]string{string(facility), fmt.Sprintf("%d", diagnostics.PointsPerFacility[facility])})
		if err != nil {
			return errors.Wrap(err, "Can't write facility count")
		}
	}
	err = writer.Write([]string{"<disconnected>", fmt.Sprintf("%d", diagnostics.DisconnectedPoints)})
	if err != nil {
		return errors.Wrap(err, "Can't write disconnected count")
	}
	return nil
}
