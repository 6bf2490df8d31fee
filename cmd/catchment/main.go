package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opencatchment/catchment"
	"go.uber.org/zap"
)

var (
	osmFileName      = flag.String("osm", "", "Filename of *.osm / *.osm.pbf file with the street network")
	segmentsFile     = flag.String("segments", "", "Filename of GeoJSON file with street segments (alternative to -osm)")
	facilitiesFile   = flag.String("facilities", "facilities.csv", "Filename of CSV file with facilities (name;longitude;latitude)")
	pointsFile       = flag.String("points", "points.csv", "Filename of CSV file with demand points (id;longitude;latitude;area)")
	demographicsFile = flag.String("demographics", "demographics.csv", "Filename of CSV file with area demographics (area;bracket;population)")
	ratesFile        = flag.String("rates", "rates.csv", "Filename of CSV file with incidence rates per 100 000 (bracket;rate)")
	boundaryFile     = flag.String("boundary", "boundary.geojson", "Filename of GeoJSON file with the study boundary polygon")
	profileName      = flag.String("profile", "walking", "Travel-mode profile. Expected values: walking / driving")
	crs              = flag.String("crs", "EPSG:4326", "Coordinate reference system all inputs are expected in")
	out              = flag.String("out", "catchments", "Prefix of output files: <out>_catchments.geojson, <out>_caseload.csv, <out>_diagnostics.csv")
	snapRadius       = flag.Float64("snap-radius", catchment.DefaultSnapRadiusMeters, "Maximum snap radius in meters (non-positive disables the limit)")
	prefilterRadius  = flag.Float64("prefilter-radius", catchment.DefaultPrefilterRadiusMeters, "Straight-line pre-filter radius around facilities in meters (non-positive disables it)")
	workers          = flag.Int("workers", 0, "Number of parallel shortest-path workers (non-positive means one per CPU)")
	timeout          = flag.Duration("timeout", 10*time.Minute, "Overall run timeout")
)

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	var segments []catchment.Segment
	var err error
	switch {
	case *osmFileName != "":
		segments, err = catchment.ReadSegmentsFromOSM(*osmFileName)
	case *segmentsFile != "":
		segments, err = catchment.ReadSegmentsGeoJSON(*segmentsFile)
	default:
		return fmt.Errorf("either -osm or -segments must be provided")
	}
	if err != nil {
		return err
	}
	logger.Info("street network loaded", zap.Int("segments", len(segments)))

	facilities, err := catchment.ReadFacilitiesCSV(*facilitiesFile)
	if err != nil {
		return err
	}
	points, err := catchment.ReadPointsCSV(*pointsFile)
	if err != nil {
		return err
	}
	demographics, err := catchment.ReadDemographicsCSV(*demographicsFile)
	if err != nil {
		return err
	}
	rates, err := catchment.ReadRatesCSV(*ratesFile)
	if err != nil {
		return err
	}
	boundary, err := catchment.ReadBoundaryGeoJSON(*boundaryFile)
	if err != nil {
		return err
	}
	logger.Info("inputs loaded",
		zap.Int("facilities", len(facilities)),
		zap.Int("points", len(points)),
		zap.Int("areas", len(demographics)),
	)

	var profile catchment.TravelProfile
	switch strings.ToLower(*profileName) {
	case "walking":
		profile = catchment.WalkingProfile()
	case "driving":
		profile = catchment.DrivingProfile()
	default:
		return fmt.Errorf("unknown travel profile '%s'", *profileName)
	}

	pipeline := catchment.NewPipeline(
		catchment.WithProfile(profile),
		catchment.WithSnapRadius(*snapRadius),
		catchment.WithPrefilterRadius(*prefilterRadius),
		catchment.WithWorkers(*workers),
	)
	input := catchment.Input{
		Segments:      segments,
		SegmentsCRS:   *crs,
		Facilities:    facilities,
		FacilitiesCRS: *crs,
		Points:        points,
		PointsCRS:     *crs,
		Boundary:      boundary,
		BoundaryCRS:   *crs,
		Demographics:  demographics,
		Rates:         rates,
	}

	st := time.Now()
	result, err := pipeline.Run(ctx, input)
	if err != nil {
		return err
	}
	logger.Info("pipeline finished",
		zap.Duration("elapsed", time.Since(st)),
		zap.Int("catchments", len(result.Catchments)),
		zap.Int("disconnected_points", result.Diagnostics.DisconnectedPoints),
	)

	fnamePart := strings.Split(*out, ".")[0]
	if err := catchment.ExportCatchmentsGeoJSON(result.Catchments, fnamePart+"_catchments.geojson"); err != nil {
		return err
	}
	if err := catchment.ExportCaseloadToCSV(result.Caseload, fnamePart+"_caseload.csv"); err != nil {
		return err
	}
	if err := catchment.ExportDiagnosticsToCSV(result.Diagnostics, fnamePart+"_diagnostics.csv"); err != nil {
		return err
	}
	for _, estimate := range result.Caseload {
		logger.Info("caseload estimate",
			zap.String("facility", string(estimate.Facility)),
			zap.Float64("cases", estimate.Cases),
			zap.Float64("percent", estimate.Percent),
		)
	}
	return nil
}
