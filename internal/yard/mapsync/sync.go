package mapsync

import (
	"sync"
	"time"

	"github.com/yardtrack-io/yardtrack/internal/pkg/metrics"
	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/pkg/log"
)

const (
	focusZoom     = 18
	focusDuration = time.Second

	boundsPadding = 50
	boundsMaxZoom = 17
)

// Syncer reconciles the projected vehicle subset against the live marker set.
// After every Reconcile the marker set equals the projection exactly: one
// marker per record, positioned at its current coordinates.
type Syncer struct {
	widget Map
	colors *ColorMap

	// defects supplies the current defect index at reconcile time. The index
	// is owned elsewhere and replaced wholesale, so reading it lazily is safe.
	defects func() model.DefectIndex

	// onSelect starts the detail/dashboard flow for a clicked marker.
	onSelect func(v model.Vehicle)

	mu      sync.Mutex
	markers map[string]Marker

	logger log.Logger
}

// NewSyncer creates a map reconciler over the given widget. defects and
// onSelect may be nil, disabling coloring and click-through respectively.
func NewSyncer(widget Map, colors *ColorMap, defects func() model.DefectIndex, onSelect func(model.Vehicle)) *Syncer {
	if colors == nil {
		colors = NewColorMap()
	}
	return &Syncer{
		widget:   widget,
		colors:   colors,
		defects:  defects,
		onSelect: onSelect,
		markers:  make(map[string]Marker),
		logger:   log.WithName("mapsync"),
	}
}

// Reconcile replaces the marker set with one marker per projected vehicle.
// The naive remove-all-then-recreate strategy keeps the invariant trivially;
// the projection is small enough that diffing buys nothing.
func (s *Syncer) Reconcile(projected []model.Vehicle) {
	var index model.DefectIndex
	if s.defects != nil {
		index = s.defects()
	}

	next := make(map[string]Marker, len(projected))
	for _, v := range projected {
		next[v.RecordID] = Marker{
			RecordID:  v.RecordID,
			VehicleID: v.VehicleID,
			Position:  v.Position,
			Color:     s.colors.Lookup(index.FirstLabel(v.VehicleID)),
		}
	}

	s.mu.Lock()
	prev := s.markers
	s.markers = next
	s.mu.Unlock()

	// Widget calls happen outside the lock so a click callback fired
	// synchronously by an implementation cannot deadlock Focus.
	for recordID := range prev {
		s.widget.RemoveMarker(recordID)
	}

	positions := make([]model.Position, 0, len(projected))
	for _, v := range projected {
		positions = append(positions, v.Position)

		vehicle := v
		s.widget.AddMarker(next[v.RecordID], func() {
			s.Focus(vehicle.RecordID)
			if s.onSelect != nil {
				s.onSelect(vehicle)
			}
		})
	}

	if len(positions) > 0 {
		s.widget.FitBounds(positions, boundsPadding, boundsMaxZoom)
	}

	metrics.MarkersActive.Set(float64(len(next)))
}

// Focus flies the map to a record's marker and opens its popup. Marker clicks
// and list row clicks both land here, so the two entry points behave
// identically.
func (s *Syncer) Focus(recordID string) {
	s.mu.Lock()
	m, ok := s.markers[recordID]
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("Focus on unknown record", "recordID", recordID)
		return
	}

	s.widget.FlyTo(m.Position, focusZoom, focusDuration)
	s.widget.OpenPopup(recordID)
}
