package view

import (
	"strings"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

// Project derives the currently-displayed subset from the full snapshot and
// the view state. Filters apply in a fixed order: defect membership, status,
// then search. Input order is preserved and the function is pure, so repeated
// calls with identical inputs yield identical lists.
func Project(all []model.Vehicle, s State) []model.Vehicle {
	out := make([]model.Vehicle, 0, len(all))

	search := strings.ToLower(s.SearchText)

	for _, v := range all {
		if len(s.DefectVehicleIDs) > 0 {
			if _, ok := s.DefectVehicleIDs[v.VehicleID]; !ok {
				continue
			}
		}

		if s.StatusFilter != model.StatusFilterAll && string(v.Status) != s.StatusFilter {
			continue
		}

		if search != "" && !strings.Contains(strings.ToLower(v.VehicleID), search) {
			continue
		}

		out = append(out, v)
	}

	return out
}
