package catchment

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidGraph is returned when the routable edge set is empty or an
	// edge references a vertex which is not present in the graph.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrCoordinateSystemMismatch is returned when geometric inputs do not
	// share a single coordinate reference system. Fatal: distances computed
	// over mixed reference systems are garbage.
	ErrCoordinateSystemMismatch = errors.New("coordinate system mismatch")
	// ErrDegenerateTessellation is returned when no distinct sites remain
	// after deduplication of coincident demand points.
	ErrDegenerateTessellation = errors.New("degenerate tessellation input")
	// ErrUnsnappablePoint is reported for a point with no graph vertex within
	// the configured snap radius. Per-point it degrades to the disconnected
	// category instead of aborting the run.
	ErrUnsnappablePoint = errors.New("no vertex within snap radius")
)
