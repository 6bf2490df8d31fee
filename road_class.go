package catchment

type RoadClass uint16

const (
	CLASS_MOTORWAY = RoadClass(iota + 1)
	CLASS_TRUNK
	CLASS_PRIMARY
	CLASS_SECONDARY
	CLASS_TERTIARY
	CLASS_RESIDENTIAL
	CLASS_LIVING_STREET
	CLASS_SERVICE
	CLASS_CYCLEWAY
	CLASS_FOOTWAY
	CLASS_PATH
	CLASS_TRACK
	CLASS_UNCLASSIFIED
	CLASS_UNKNOWN
)

func (iotaIdx RoadClass) String() string {
	return [...]string{"motorway", "trunk", "primary", "secondary", "tertiary", "residential", "living_street", "service", "cycleway", "footway", "path", "track", "unclassified", "unknown"}[iotaIdx-1]
}

var roadClassByTag = map[string]RoadClass{
	"motorway":       CLASS_MOTORWAY,
	"motorway_link":  CLASS_MOTORWAY,
	"trunk":          CLASS_TRUNK,
	"trunk_link":     CLASS_TRUNK,
	"primary":        CLASS_PRIMARY,
	"primary_link":   CLASS_PRIMARY,
	"secondary":      CLASS_SECONDARY,
	"secondary_link": CLASS_SECONDARY,
	"tertiary":       CLASS_TERTIARY,
	"tertiary_link":  CLASS_TERTIARY,
	"residential":    CLASS_RESIDENTIAL,
	"living_street":  CLASS_LIVING_STREET,
	"service":        CLASS_SERVICE,
	"cycleway":       CLASS_CYCLEWAY,
	"footway":        CLASS_FOOTWAY,
	"pedestrian":     CLASS_FOOTWAY,
	"steps":          CLASS_FOOTWAY,
	"path":           CLASS_PATH,
	"track":          CLASS_TRACK,
	"unclassified":   CLASS_UNCLASSIFIED,
	"road":           CLASS_UNCLASSIFIED,
}

// ParseRoadClass maps raw road classification tag to RoadClass. Unhandled
// tags collapse into CLASS_UNKNOWN so that profiles can decide what to do
// with them explicitly.
func ParseRoadClass(tag string) RoadClass {
	if class, ok := roadClassByTag[tag]; ok {
		return class
	}
	return CLASS_UNKNOWN
}
