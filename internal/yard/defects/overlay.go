package defects

import (
	"context"
	"fmt"
	"sync"

	"github.com/yardtrack-io/yardtrack/internal/pkg/metrics"
	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/internal/yard/notify"
	"github.com/yardtrack-io/yardtrack/pkg/log"
)

// Overlay owns the defect index: externally-sourced quality data keyed by
// vehicle id. It is a side table; reads feed marker coloring and filtering,
// but nothing here ever mutates an authoritative vehicle record.
type Overlay struct {
	querier  Querier
	detail   DetailQuerier // optional; nil falls back to querier
	pji      PJI
	labels   []string
	notifier notify.Notifier
	logger   log.Logger

	mu    sync.RWMutex
	index model.DefectIndex
}

// NewOverlay creates an overlay querying for the given label set. A nil
// labels slice selects DefaultFilterLabels.
func NewOverlay(querier Querier, detail DetailQuerier, pji PJI, labels []string, notifier notify.Notifier) *Overlay {
	if labels == nil {
		labels = DefaultFilterLabels
	}
	return &Overlay{
		querier:  querier,
		detail:   detail,
		pji:      pji,
		labels:   labels,
		notifier: notifier,
		logger:   log.WithName("defects"),
		index:    model.DefectIndex{},
	}
}

// Index returns the current defect index. The returned map is shared but
// never mutated in place: refreshes swap the whole map, so holding a
// reference is safe.
func (o *Overlay) Index() model.DefectIndex {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.index
}

// FetchForAll queries defects for every given vehicle and replaces the whole
// index with the result. Failures are soft: the operator is notified and the
// previous index stays in place.
func (o *Overlay) FetchForAll(ctx context.Context, vehicleIDs []string) {
	if len(vehicleIDs) == 0 {
		// An empty yard has no defects. Only the service call is skipped;
		// the index is still rebuilt so no stale entries survive a refresh.
		o.mu.Lock()
		o.index = model.DefectIndex{}
		o.mu.Unlock()
		return
	}

	records, err := o.querier.Query(ctx, o.pji.JoinAll(vehicleIDs), o.labels)
	if err != nil {
		metrics.DefectQueriesTotal.WithLabelValues("all", "failed").Inc()
		o.logger.Error(err, "Bulk defect fetch failed")
		o.notifier.Error(fmt.Sprintf("Failed to fetch defect data: %v", err))
		return
	}
	metrics.DefectQueriesTotal.WithLabelValues("all", "success").Inc()

	next := model.DefectIndex{}
	for _, r := range records {
		vehicleID := o.pji.Split(r.PJI)
		next[vehicleID] = append(next[vehicleID], model.Defect{
			Label:    r.Label,
			Element:  r.Element,
			Incident: r.Incident,
		})
	}

	o.mu.Lock()
	o.index = next
	o.mu.Unlock()

	o.logger.Info("Defect index rebuilt", "vehiclesQueried", len(vehicleIDs), "vehiclesWithDefects", len(next))
}

// FetchForOne returns the defect list for a single vehicle's detail panel.
// It prefers the per-vehicle quality service when configured and never
// touches the index. Failures are soft and yield an empty list.
func (o *Overlay) FetchForOne(ctx context.Context, vehicleID string) []model.Defect {
	pji := o.pji.Join(vehicleID)

	if o.detail != nil {
		defects, err := o.detail.QueryOne(ctx, pji)
		if err != nil {
			metrics.DefectQueriesTotal.WithLabelValues("one", "failed").Inc()
			o.logger.Error(err, "Detail defect fetch failed", "vehicleID", vehicleID)
			o.notifier.Error(fmt.Sprintf("Failed to fetch defect data: %v", err))
			return nil
		}
		metrics.DefectQueriesTotal.WithLabelValues("one", "success").Inc()
		return defects
	}

	records, err := o.querier.Query(ctx, []string{pji}, o.labels)
	if err != nil {
		metrics.DefectQueriesTotal.WithLabelValues("one", "failed").Inc()
		o.logger.Error(err, "Detail defect fetch failed", "vehicleID", vehicleID)
		o.notifier.Error(fmt.Sprintf("Failed to fetch defect data: %v", err))
		return nil
	}
	metrics.DefectQueriesTotal.WithLabelValues("one", "success").Inc()

	defects := make([]model.Defect, 0, len(records))
	for _, r := range records {
		defects = append(defects, model.Defect{
			Label:    r.Label,
			Element:  r.Element,
			Incident: r.Incident,
		})
	}
	return defects
}

// FilterIDs runs a label-scoped query and returns the distinct vehicle ids it
// matched, for feeding the view state's defect filter. Soft failure returns
// an empty set.
func (o *Overlay) FilterIDs(ctx context.Context, vehicleIDs, labels []string) []string {
	if len(labels) == 0 {
		o.notifier.Error("Select at least one defect type.")
		return nil
	}
	if len(vehicleIDs) == 0 {
		o.notifier.Error("No vehicles in the yard to filter.")
		return nil
	}

	records, err := o.querier.Query(ctx, o.pji.JoinAll(vehicleIDs), labels)
	if err != nil {
		metrics.DefectQueriesTotal.WithLabelValues("filter", "failed").Inc()
		o.logger.Error(err, "Defect filter query failed")
		o.notifier.Error(fmt.Sprintf("Failed to fetch defect data: %v", err))
		return nil
	}
	metrics.DefectQueriesTotal.WithLabelValues("filter", "success").Inc()

	seen := map[string]struct{}{}
	ids := []string{}
	for _, r := range records {
		id := o.pji.Split(r.PJI)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		o.notifier.Success(fmt.Sprintf("%d vehicles with defects found.", len(ids)))
	} else {
		o.notifier.Info("No vehicles found with the selected defects.")
	}
	return ids
}

// Labels returns the label set this overlay queries for.
func (o *Overlay) Labels() []string {
	return append([]string(nil), o.labels...)
}
