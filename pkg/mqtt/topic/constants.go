package topic

// Constants defining the standard topic segments.
// These act as the wire contract between every agent sharing a yard.
// Changing these values strands the retained documents already on the broker.
const (
	// SuffixVehicles is the retained-document segment for vehicle records.
	// Structure: {root}/vehicles/{recordID}
	SuffixVehicles = "vehicles"
)
