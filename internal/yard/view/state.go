package view

// State is the ephemeral, client-owned view state. It is mutated by operator
// actions and by completion of a defect query, consumed synchronously by
// Project, and never persisted.
type State struct {
	// StatusFilter is either model.StatusFilterAll or a concrete status value.
	StatusFilter string

	// SearchText narrows the projection to vehicle ids containing it,
	// case-insensitively.
	SearchText string

	// DefectVehicleIDs, when non-empty, restricts the projection to vehicles
	// a label-scoped defect query returned.
	DefectVehicleIDs map[string]struct{}
}

// NewState returns the neutral view state: all statuses, no search, no defect
// restriction.
func NewState() State {
	return State{StatusFilter: "all"}
}

// WithDefectIDs returns a copy of s restricted to the given vehicle ids.
// A nil or empty slice clears the restriction.
func (s State) WithDefectIDs(ids []string) State {
	if len(ids) == 0 {
		s.DefectVehicleIDs = nil
		return s
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.DefectVehicleIDs = set
	return s
}
