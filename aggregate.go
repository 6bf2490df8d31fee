package catchment

import (
	"sort"
)

// Demographics holds per-area population counts by age bracket. Read-only
// input of the aggregation step.
type Demographics map[string]map[string]float64

// IncidenceRates holds expected events per 100 000 persons for each age
// bracket.
type IncidenceRates map[string]float64

// ExpectedEvents returns the expected event count for one area: sum over
// brackets of population x bracket rate. Brackets without a rate contribute
// nothing.
func (demographics Demographics) ExpectedEvents(area string, rates IncidenceRates) float64 {
	expected := 0.0
	for bracket, population := range demographics[area] {
		rate, ok := rates[bracket]
		if !ok {
			continue
		}
		expected += population * rate / 100000.0
	}
	return expected
}

// CaseloadEstimate is the estimated absolute caseload of one facility and
// its share of the total assigned caseload.
type CaseloadEstimate struct {
	Facility FacilityID
	Cases    float64
	Percent  float64
}

// AggregateCaseload distributes each area's expected events over facilities
// proportionally to the area's sampled demand points assigned to them.
// Disconnected points participate in no numerator and no denominator. An
// area with zero sampled points contributes zero, not an error. The result
// is ordered by facility id; all sums are associative, so no iteration order
// affects it.
func AggregateCaseload(points []QueryPoint, assignment Assignment, demographics Demographics, rates IncidenceRates) []CaseloadEstimate {
	perAreaFacility := make(map[string]map[FacilityID]float64)
	perAreaTotal := make(map[string]float64)
	facilitySet := make(map[FacilityID]struct{})
	for _, point := range points {
		label, ok := assignment[point.ID]
		if !ok {
			continue
		}
		facility, ok := label.Facility()
		if !ok {
			continue
		}
		if perAreaFacility[point.Area] == nil {
			perAreaFacility[point.Area] = make(map[FacilityID]float64)
		}
		perAreaFacility[point.Area][facility]++
		perAreaTotal[point.Area]++
		facilitySet[facility] = struct{}{}
	}

	totals := make(map[FacilityID]float64, len(facilitySet))
	for area, byFacility := range perAreaFacility {
		sampled := perAreaTotal[area]
		if sampled == 0 {
			continue
		}
		expected := demographics.ExpectedEvents(area, rates)
		for facility, count := range byFacility {
			totals[facility] += expected * count / sampled
		}
	}

	grandTotal := 0.0
	for _, cases := range totals {
		grandTotal += cases
	}

	facilities := make([]FacilityID, 0, len(facilitySet))
	for facility := range facilitySet {
		facilities = append(facilities, facility)
	}
	sort.Slice(facilities, func(i, j int) bool { return facilities[i] < facilities[j] })

	estimates := make([]CaseloadEstimate, 0, len(facilities))
	for _, facility := range facilities {
		percent := 0.0
		if grandTotal > 0 {
			percent = 100.0 * totals[facility] / grandTotal
		}
		estimates = append(estimates, CaseloadEstimate{Facility: facility, Cases: totals[facility], Percent: percent})
	}
	return estimates
}
