package yardagent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yardtrack-io/yardtrack/internal/yard/defects"
	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/internal/yard/notify"
	"github.com/yardtrack-io/yardtrack/internal/yard/store"
)

// memCollection is a Collection whose snapshots the test fires directly.
type memCollection struct {
	mu sync.Mutex
	fn store.SnapshotFunc
}

func (c *memCollection) Listen(ctx context.Context, fn store.SnapshotFunc) (func(), error) {
	c.mu.Lock()
	c.fn = fn
	c.mu.Unlock()
	return func() {}, nil
}

func (c *memCollection) fire(vs []model.Vehicle) {
	c.mu.Lock()
	fn := c.fn
	c.mu.Unlock()
	if fn != nil {
		fn(vs)
	}
}

func (c *memCollection) Get(ctx context.Context, recordID string) (*model.Vehicle, error) {
	return nil, store.ErrNotFound
}

func (c *memCollection) FindByVehicleID(ctx context.Context, vehicleID string) (*model.Vehicle, error) {
	return nil, store.ErrNotFound
}

func (c *memCollection) Add(ctx context.Context, v model.Vehicle) (string, error) {
	return "rec-1", nil
}

func (c *memCollection) Update(ctx context.Context, v model.Vehicle) error { return nil }

type staticQuerier struct {
	mu      sync.Mutex
	records []defects.Record
	queries int
}

func (q *staticQuerier) Query(ctx context.Context, pjis, labels []string) ([]defects.Record, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries++
	return q.records, nil
}

func (q *staticQuerier) queryCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queries
}

func newTestController(t *testing.T, q defects.Querier) (*Controller, *memCollection, context.CancelFunc) {
	t.Helper()

	coll := &memCollection{}
	s := store.NewVehicleStore(coll)
	overlay := defects.NewOverlay(q, nil, defects.NewPJI("65625"), nil, notify.Nop())
	ctrl := NewController(s, overlay, nil, notify.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Run(ctx) }()
	go func() { _ = ctrl.Start(ctx) }()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		coll.mu.Lock()
		attached := coll.fn != nil
		coll.mu.Unlock()
		if attached {
			return ctrl, coll, cancel
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	t.Fatal("store never attached")
	return nil, nil, nil
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestControllerTracksSnapshots(t *testing.T) {
	q := &staticQuerier{}
	ctrl, coll, cancel := newTestController(t, q)
	defer cancel()

	coll.fire([]model.Vehicle{
		{RecordID: "r1", VehicleID: "1000001", Status: model.StatusParked},
		{RecordID: "r2", VehicleID: "1000002", Status: model.StatusShipped},
	})

	waitFor(t, func() bool { return len(ctrl.Projection()) == 2 }, "snapshot to land")

	// The first snapshot kicks the bulk defect prefetch.
	waitFor(t, func() bool { return q.queryCount() >= 1 }, "defect prefetch")

	// Remote changes replace the ground truth wholesale.
	coll.fire([]model.Vehicle{
		{RecordID: "r2", VehicleID: "1000002", Status: model.StatusShipped},
	})
	waitFor(t, func() bool { return len(ctrl.Projection()) == 1 }, "narrowed snapshot")
}

func TestControllerViewStateFlow(t *testing.T) {
	q := &staticQuerier{records: []defects.Record{
		{PJI: "656251000001", Label: "ABERTO: RUIDO"},
	}}
	ctrl, coll, cancel := newTestController(t, q)
	defer cancel()

	coll.fire([]model.Vehicle{
		{RecordID: "r1", VehicleID: "1000001", Status: model.StatusParked},
		{RecordID: "r2", VehicleID: "1000002", Status: model.StatusShipped},
	})
	waitFor(t, func() bool { return len(ctrl.Projection()) == 2 }, "snapshot to land")

	ctrl.SetStatusFilter("parked")
	if got := ctrl.Projection(); len(got) != 1 || got[0].VehicleID != "1000001" {
		t.Fatalf("status filter projection: %+v", got)
	}

	ctrl.SetStatusFilter("all")
	ctrl.SetSearch("000002")
	if got := ctrl.Projection(); len(got) != 1 || got[0].VehicleID != "1000002" {
		t.Fatalf("search projection: %+v", got)
	}
	ctrl.SetSearch("")

	ctrl.ApplyDefectFilter(context.Background(), []string{"ABERTO: RUIDO"})
	if got := ctrl.Projection(); len(got) != 1 || got[0].VehicleID != "1000001" {
		t.Fatalf("defect filter projection: %+v", got)
	}

	// Refresh resets every restriction.
	ctrl.Refresh(context.Background())
	if got := ctrl.Projection(); len(got) != 2 {
		t.Fatalf("projection after refresh: %+v", got)
	}
	state := ctrl.ViewState()
	if state.StatusFilter != model.StatusFilterAll || state.SearchText != "" || state.DefectVehicleIDs != nil {
		t.Fatalf("view state after refresh: %+v", state)
	}
}

func TestControllerFindByRecordID(t *testing.T) {
	ctrl, coll, cancel := newTestController(t, &staticQuerier{})
	defer cancel()

	coll.fire([]model.Vehicle{{RecordID: "r1", VehicleID: "1000001"}})
	waitFor(t, func() bool { return len(ctrl.Projection()) == 1 }, "snapshot to land")

	if v, ok := ctrl.FindByRecordID("r1"); !ok || v.VehicleID != "1000001" {
		t.Fatalf("FindByRecordID = %+v, %v", v, ok)
	}
	if _, ok := ctrl.FindByRecordID("r-missing"); ok {
		t.Fatal("found a record that does not exist")
	}
}
