package model

import "time"

// Status is the lifecycle state of a vehicle in the yard.
type Status string

const (
	StatusParked      Status = "parked"
	StatusPreShipment Status = "pre_shipment"
	StatusShipped     Status = "shipped"
)

// StatusFilterAll is the view-state value meaning "no status filter".
const StatusFilterAll = "all"

// DisplayLabel returns the operator-facing label for a status. Unknown values
// map to a default label; records are never rejected for carrying one.
func (s Status) DisplayLabel() string {
	switch s {
	case StatusParked:
		return "Parked"
	case StatusPreShipment:
		return "Pre-shipment"
	case StatusShipped:
		return "Shipped"
	default:
		return "Unknown"
	}
}

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Vehicle represents one tracked vehicle's latest known state. The remote
// collection owns these records; the engine only ever replaces its snapshot
// wholesale.
type Vehicle struct {
	// RecordID is the store-assigned identity. Stable and unique; the client
	// never invents it.
	RecordID string `json:"recordId"`

	// VehicleID is the operator/business identifier. Digits or alphanumeric
	// depending on the deployment; not guaranteed unique across time, since
	// re-scanning the same vehicle updates the existing record.
	VehicleID string `json:"vehicleId"`

	// Position is the last known location.
	Position Position `json:"position"`

	// ObservedAt is set on every write. Used for recency display and default
	// ordering.
	ObservedAt time.Time `json:"observedAt"`

	// Status is the lifecycle state. Unknown values are kept as-is and mapped
	// to a default display state.
	Status Status `json:"status"`

	// TagID is the identifier from the secondary scan/NFC step. Absence is a
	// valid terminal state, not an error.
	TagID string `json:"tagId,omitempty"`
}
