package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yardtrack-io/yardtrack/internal/pkg/metrics"
	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/pkg/log"
)

// VehicleStore owns the canonical in-memory snapshot of all known vehicles.
// It subscribes to the remote collection and republishes the full set to every
// subscriber on each remote change. The snapshot is replaced wholesale; no
// field-level patching happens outside the collection.
type VehicleStore struct {
	coll Collection

	mu       sync.Mutex
	snapshot []model.Vehicle
	loaded   bool
	nextID   int
	subs     map[int]SnapshotFunc

	logger log.Logger
}

// Subscription represents one registered snapshot consumer.
type Subscription struct {
	cancel func()
}

// Cancel stops delivery to this subscriber.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// NewVehicleStore creates a store over the given collection.
func NewVehicleStore(coll Collection) *VehicleStore {
	return &VehicleStore{
		coll:   coll,
		subs:   make(map[int]SnapshotFunc),
		logger: log.WithName("store"),
	}
}

// Run attaches the store to the remote collection and blocks until ctx is
// done. Subscribers registered before or after Run both receive snapshots.
func (s *VehicleStore) Run(ctx context.Context) error {
	cancel, err := s.coll.Listen(ctx, s.onSnapshot)
	if err != nil {
		return fmt.Errorf("failed to start live query: %w", err)
	}
	defer cancel()

	s.logger.Info("Vehicle store attached to collection")
	<-ctx.Done()
	return nil
}

// Subscribe registers fn as a snapshot consumer. If a snapshot has already
// been delivered, fn is invoked immediately with the current one.
func (s *VehicleStore) Subscribe(fn SnapshotFunc) *Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	var current []model.Vehicle
	deliver := s.loaded
	if deliver {
		current = append([]model.Vehicle(nil), s.snapshot...)
	}
	s.mu.Unlock()

	if deliver {
		fn(current)
	}

	return &Subscription{cancel: func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}}
}

// Snapshot returns a copy of the current vehicle set.
func (s *VehicleStore) Snapshot() []model.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Vehicle(nil), s.snapshot...)
}

func (s *VehicleStore) onSnapshot(vehicles []model.Vehicle) {
	s.mu.Lock()
	s.snapshot = append([]model.Vehicle(nil), vehicles...)
	s.loaded = true
	fns := make([]SnapshotFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	metrics.SnapshotsTotal.Inc()
	metrics.SnapshotVehicles.Set(float64(len(vehicles)))

	for _, fn := range fns {
		fn(append([]model.Vehicle(nil), vehicles...))
	}
}

// Upsert writes the latest observation for vehicleID. An existing active
// record is overwritten; otherwise a new record is created with status parked.
// The query-then-write pair is not transactional: concurrent writers targeting
// the same vehicleID may race, which the design accepts (last writer wins on
// the retained document).
func (s *VehicleStore) Upsert(ctx context.Context, vehicleID string, pos model.Position, tagID string) error {
	existing, err := s.coll.FindByVehicleID(ctx, vehicleID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.UpsertsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	v := model.Vehicle{
		VehicleID:  vehicleID,
		Position:   pos,
		ObservedAt: time.Now(),
		Status:     model.StatusParked,
		TagID:      tagID,
	}

	if existing == nil {
		recordID, err := s.coll.Add(ctx, v)
		if err != nil {
			metrics.UpsertsTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		metrics.UpsertsTotal.WithLabelValues("created").Inc()
		s.logger.Info("Vehicle record created", "vehicleID", vehicleID, "recordID", recordID)
		return nil
	}

	v.RecordID = existing.RecordID
	if err := s.coll.Update(ctx, v); err != nil {
		metrics.UpsertsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	metrics.UpsertsTotal.WithLabelValues("updated").Inc()
	s.logger.Info("Vehicle record updated", "vehicleID", vehicleID, "recordID", existing.RecordID)
	return nil
}

// UpdateStatus performs a direct status write on one record. The observation
// timestamp is left untouched; a status change is not a new sighting.
func (s *VehicleStore) UpdateStatus(ctx context.Context, recordID string, status model.Status) error {
	existing, err := s.coll.Get(ctx, recordID)
	if err != nil {
		metrics.StatusUpdatesTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	updated := *existing
	updated.Status = status
	if err := s.coll.Update(ctx, updated); err != nil {
		metrics.StatusUpdatesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	metrics.StatusUpdatesTotal.WithLabelValues("success").Inc()
	s.logger.Info("Vehicle status updated", "recordID", recordID, "status", string(status))
	return nil
}
