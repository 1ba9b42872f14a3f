package yardagent

import (
	"context"
	"fmt"
	"sync"

	"github.com/yardtrack-io/yardtrack/internal/yard/defects"
	"github.com/yardtrack-io/yardtrack/internal/yard/listview"
	"github.com/yardtrack-io/yardtrack/internal/yard/mapsync"
	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/internal/yard/notify"
	"github.com/yardtrack-io/yardtrack/internal/yard/store"
	"github.com/yardtrack-io/yardtrack/internal/yard/view"
	"github.com/yardtrack-io/yardtrack/pkg/log"
)

// Controller wires the engine together: it consumes store snapshots, owns the
// view state, and drives the projector, the map reconciler and the list
// renderer on every change from either side.
type Controller struct {
	store    *store.VehicleStore
	overlay  *defects.Overlay
	mapSync  *mapsync.Syncer
	list     *listview.Renderer
	notifier notify.Notifier
	logger   log.Logger

	mu       sync.Mutex
	snapshot []model.Vehicle
	state    view.State

	prefetch sync.Once
}

// NewController creates a controller. The map syncer is attached afterwards
// via SetMapSync because the syncer's click callback points back here.
func NewController(s *store.VehicleStore, overlay *defects.Overlay, list *listview.Renderer, notifier notify.Notifier) *Controller {
	return &Controller{
		store:    s,
		overlay:  overlay,
		list:     list,
		notifier: notifier,
		logger:   log.WithName("controller"),
		state:    view.NewState(),
	}
}

// SetMapSync attaches the map reconciler.
func (c *Controller) SetMapSync(s *mapsync.Syncer) {
	c.mapSync = s
}

// Start subscribes to the vehicle store and blocks until ctx is done.
func (c *Controller) Start(ctx context.Context) error {
	sub := c.store.Subscribe(c.onSnapshot)
	defer sub.Cancel()

	<-ctx.Done()
	return nil
}

// onSnapshot replaces the controller's ground truth and re-derives the view.
// The first snapshot additionally kicks off the bulk defect prefetch.
func (c *Controller) onSnapshot(vehicles []model.Vehicle) {
	c.mu.Lock()
	c.snapshot = vehicles
	c.mu.Unlock()

	c.render()

	c.prefetch.Do(func() {
		c.notifier.Info("Fetching defect status...")
		go c.fetchAllDefects(context.Background())
	})
}

// render projects the snapshot through the current view state and pushes the
// result to both consumers.
func (c *Controller) render() []model.Vehicle {
	c.mu.Lock()
	all := c.snapshot
	state := c.state
	c.mu.Unlock()

	projected := view.Project(all, state)

	if c.mapSync != nil {
		c.mapSync.Reconcile(projected)
	}
	if c.list != nil {
		c.list.Render(projected)
	}

	c.logger.Debug("View re-rendered", "total", len(all), "projected", len(projected))
	return projected
}

func (c *Controller) fetchAllDefects(ctx context.Context) {
	c.overlay.FetchForAll(ctx, c.vehicleIDs())
	// Re-render so marker colors pick up the fresh index.
	c.render()
}

func (c *Controller) vehicleIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.snapshot))
	for _, v := range c.snapshot {
		ids = append(ids, v.VehicleID)
	}
	return ids
}

// Projection returns the currently displayed subset.
func (c *Controller) Projection() []model.Vehicle {
	c.mu.Lock()
	all := c.snapshot
	state := c.state
	c.mu.Unlock()

	return view.Project(all, state)
}

// ViewState returns a copy of the current view state.
func (c *Controller) ViewState() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetStatusFilter updates the status filter and re-renders.
func (c *Controller) SetStatusFilter(filter string) {
	c.mu.Lock()
	c.state.StatusFilter = filter
	c.mu.Unlock()

	if filter == model.StatusFilterAll {
		c.notifier.Info("Showing all vehicles.")
	} else {
		c.notifier.Info(fmt.Sprintf("Filtering by status: %s", filter))
	}
	c.render()
}

// SetSearch updates the search text and re-renders.
func (c *Controller) SetSearch(text string) {
	c.mu.Lock()
	c.state.SearchText = text
	c.mu.Unlock()

	c.render()
}

// ApplyDefectFilter restricts the view to vehicles a label-scoped defect
// query matches.
func (c *Controller) ApplyDefectFilter(ctx context.Context, labels []string) {
	ids := c.overlay.FilterIDs(ctx, c.vehicleIDs(), labels)

	c.mu.Lock()
	c.state = c.state.WithDefectIDs(ids)
	c.mu.Unlock()

	c.render()
}

// Refresh resets the view state to neutral, re-renders and re-fetches the
// defect index in the background.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.state = view.NewState()
	c.mu.Unlock()

	c.notifier.Info("List refreshed.")
	c.render()

	go c.fetchAllDefects(context.Background())
}

// UpdateStatus writes a new status for one record and notifies the outcome.
func (c *Controller) UpdateStatus(ctx context.Context, recordID string, status model.Status) error {
	c.notifier.Info(fmt.Sprintf("Updating status to '%s'...", status))

	if err := c.store.UpdateStatus(ctx, recordID, status); err != nil {
		c.notifier.Error("Failed to update status.")
		return err
	}

	c.notifier.Success("Status updated.")
	return nil
}

// Focus centers the map on one record. List rows and markers share this path.
func (c *Controller) Focus(recordID string) {
	if c.mapSync != nil {
		c.mapSync.Focus(recordID)
	}
}

// ShowDetail is the detail/dashboard flow for a selected vehicle: focus its
// marker and fetch its defect list. The fetch is display-only and does not
// touch the index.
func (c *Controller) ShowDetail(ctx context.Context, v model.Vehicle) []model.Defect {
	c.Focus(v.RecordID)
	return c.overlay.FetchForOne(ctx, v.VehicleID)
}

// FindByRecordID looks a vehicle up in the current snapshot.
func (c *Controller) FindByRecordID(recordID string) (model.Vehicle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range c.snapshot {
		if v.RecordID == recordID {
			return v, true
		}
	}
	return model.Vehicle{}, false
}
