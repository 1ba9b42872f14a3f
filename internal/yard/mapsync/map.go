package mapsync

import (
	"time"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

// Marker describes one map pin.
type Marker struct {
	RecordID  string
	VehicleID string
	Position  model.Position
	Color     string
}

// Map is the rendering widget the reconciler drives. Implementations place,
// remove and animate markers; the reconciler never talks to a rendering
// surface directly.
type Map interface {
	// AddMarker places a marker. onClick fires when the operator selects it.
	AddMarker(m Marker, onClick func())

	// RemoveMarker removes the marker for the given record, if present.
	RemoveMarker(recordID string)

	// FlyTo animates the view to the given position and zoom.
	FlyTo(pos model.Position, zoom int, duration time.Duration)

	// OpenPopup opens the popup of the marker for the given record.
	OpenPopup(recordID string)

	// FitBounds adjusts the view to contain all positions.
	FitBounds(positions []model.Position, padding int, maxZoom int)
}
