package catchment

// Label identifies the facility a demand point is assigned to, or marks the
// point as disconnected. The disconnected state is a first-class variant so
// it can never be mistaken for a real facility downstream.
type Label struct {
	facility     FacilityID
	disconnected bool
}

// AssignedTo returns a label binding a point to a facility.
func AssignedTo(facility FacilityID) Label {
	return Label{facility: facility}
}

// DisconnectedLabel returns the label for a point with no finite-cost path
// to any facility.
func DisconnectedLabel() Label {
	return Label{disconnected: true}
}

// Facility returns the assigned facility. The second value is false for a
// disconnected point.
func (label Label) Facility() (FacilityID, bool) {
	if label.disconnected {
		return "", false
	}
	return label.facility, true
}

// IsDisconnected reports whether the point has no facility.
func (label Label) IsDisconnected() bool {
	return label.disconnected
}

// Assignment maps demand point id to its label. Always recomputable from the
// distance matrix, never independently mutated.
type Assignment map[string]Label

// Assign picks the nearest reachable facility for every demand point row of
// the matrix. Ties break to the lexicographically lowest facility
// identifier; rows without a single finite distance map to the disconnected
// category. Pure function of the matrix.
func Assign(matrix *DistanceMatrix) Assignment {
	assignment := make(Assignment, len(matrix.rows))
	for _, pointID := range matrix.PointIDs() {
		best := FacilityID("")
		bestDistance := Unreachable
		found := false
		for _, facility := range matrix.facilities {
			distance, reachable := matrix.Distance(pointID, facility)
			if !reachable {
				continue
			}
			if !found || distance < bestDistance || (distance == bestDistance && facility < best) {
				best = facility
				bestDistance = distance
				found = true
			}
		}
		if !found {
			assignment[pointID] = DisconnectedLabel()
			continue
		}
		assignment[pointID] = AssignedTo(best)
	}
	return assignment
}

// Diagnostics summarizes an assignment for reporting layers.
type Diagnostics struct {
	DisconnectedPoints int
	PointsPerFacility  map[FacilityID]int
}

// Summarize counts assigned points per facility and disconnected points.
func (assignment Assignment) Summarize() Diagnostics {
	diagnostics := Diagnostics{PointsPerFacility: make(map[FacilityID]int)}
	for _, label := range assignment {
		if facility, ok := label.Facility(); ok {
			diagnostics.PointsPerFacility[facility]++
			continue
		}
		diagnostics.DisconnectedPoints++
	}
	return diagnostics
}
