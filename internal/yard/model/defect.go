package model

import "time"

// Defect is one quality-defect descriptor sourced from the external reporting
// service. It never participates in the vehicle upsert path.
type Defect struct {
	// Label is the repair code label, e.g. "ABERTO: RUIDO".
	Label string `json:"label"`

	// Element names the affected element, when the service reports one.
	Element string `json:"element,omitempty"`

	// Incident names the originating incident, when the service reports one.
	Incident string `json:"incident,omitempty"`

	// OpenedAt and RepairedAt bound the defect's lifetime. A zero RepairedAt
	// means the defect is still open.
	OpenedAt   time.Time `json:"openedAt,omitempty"`
	RepairedAt time.Time `json:"repairedAt,omitempty"`
}

// Open reports whether the defect has not been repaired yet.
func (d Defect) Open() bool {
	return d.RepairedAt.IsZero()
}

// DefectIndex maps a vehicle id to its ordered defect descriptors. It is
// rebuilt wholesale on refresh, never patched per item.
type DefectIndex map[string][]Defect

// FirstLabel returns the label of the first defect recorded for the vehicle,
// or "" when none is known. Marker coloring keys off this value.
func (idx DefectIndex) FirstLabel(vehicleID string) string {
	defects := idx[vehicleID]
	if len(defects) == 0 {
		return ""
	}
	return defects[0].Label
}
