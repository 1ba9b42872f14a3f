package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotsTotal counts full snapshots delivered by the remote collection.
	SnapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yardtrack_snapshots_total",
			Help: "Total number of vehicle snapshots received from the collection.",
		},
	)

	// SnapshotVehicles records the size of the most recent snapshot.
	SnapshotVehicles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yardtrack_snapshot_vehicles",
			Help: "Number of vehicles in the current snapshot.",
		},
	)

	// UpsertsTotal counts vehicle upserts by outcome.
	UpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yardtrack_upserts_total",
			Help: "Total number of vehicle upserts.",
		},
		[]string{"outcome"}, // outcome: created/updated/failed
	)

	// StatusUpdatesTotal counts direct status writes by outcome.
	StatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yardtrack_status_updates_total",
			Help: "Total number of vehicle status updates.",
		},
		[]string{"outcome"}, // outcome: success/failed
	)

	// DefectQueriesTotal counts external defect service queries.
	DefectQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yardtrack_defect_queries_total",
			Help: "Total number of defect service queries.",
		},
		[]string{"kind", "outcome"}, // kind: all/one/filter, outcome: success/failed
	)

	// MarkersActive records the marker count after the last map reconcile.
	MarkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yardtrack_markers_active",
			Help: "Number of markers currently placed on the map.",
		},
	)

	// ScanSessionsTotal counts completed scan sessions by terminal outcome.
	ScanSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yardtrack_scan_sessions_total",
			Help: "Total number of scan sessions.",
		},
		[]string{"outcome"}, // outcome: submitted/cancelled/failed
	)
)
