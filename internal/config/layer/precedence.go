package layer

// Standard priority levels for configuration layers.
// Higher values shadow lower values during lookup.
const (
	// PriorityDefault is the fallback layer.
	PriorityDefault = 0

	// PriorityLive is the layer written by setItem.
	PriorityLive = 100
)

// DefaultPriority returns the default priority for a given source.
// Seed values land in the live layer, so they share its priority.
func DefaultPriority(source Source) int {
	switch source {
	case SourceLive, SourceSeed:
		return PriorityLive
	default:
		return PriorityDefault
	}
}

// StandardLayerNames defines standard names for configuration layers.
var StandardLayerNames = map[Source]string{
	SourceDefault: "defaults",
	SourceLive:    "live",
	SourceSeed:    "live",
}

// StandardLayerName returns the standard name for a source.
func StandardLayerName(source Source) string {
	if name, ok := StandardLayerNames[source]; ok {
		return name
	}
	return "unknown"
}
