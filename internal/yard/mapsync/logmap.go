package mapsync

import (
	"time"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/pkg/log"
)

// logMap is a headless Map for terminals without a map pane. Every widget
// action becomes a debug log line, which keeps the reconciler exercised and
// observable in deployments where the real widget runs elsewhere.
type logMap struct {
	logger log.Logger
}

// NewLogMap returns a Map that logs instead of rendering.
func NewLogMap() Map {
	return &logMap{logger: log.WithName("map")}
}

func (m *logMap) AddMarker(marker Marker, onClick func()) {
	m.logger.Debug("Marker placed",
		"recordID", marker.RecordID,
		"vehicleID", marker.VehicleID,
		"lat", marker.Position.Lat,
		"lng", marker.Position.Lng,
		"color", marker.Color,
	)
}

func (m *logMap) RemoveMarker(recordID string) {
	m.logger.Debug("Marker removed", "recordID", recordID)
}

func (m *logMap) FlyTo(pos model.Position, zoom int, duration time.Duration) {
	m.logger.Debug("Fly to", "lat", pos.Lat, "lng", pos.Lng, "zoom", zoom, "duration", duration)
}

func (m *logMap) OpenPopup(recordID string) {
	m.logger.Debug("Popup opened", "recordID", recordID)
}

func (m *logMap) FitBounds(positions []model.Position, padding, maxZoom int) {
	m.logger.Debug("Bounds fitted", "markers", len(positions), "padding", padding, "maxZoom", maxZoom)
}
