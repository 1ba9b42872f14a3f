package store

import (
	"context"
	"errors"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

var (
	// ErrNotFound is returned when no record matches a query.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable is returned when the collection transport fails. Callers
	// surface it and abandon the operation; there is no automatic retry.
	ErrUnavailable = errors.New("store unavailable")
)

// SnapshotFunc receives the full current record set on every remote change.
// The slice is ordered by observedAt descending and must be treated as the new
// ground truth, not merged.
type SnapshotFunc func(vehicles []model.Vehicle)

// Collection abstracts the remote vehicle collection. Delivery is
// at-least-once and eventually consistent; queries observe the local replica
// of the remote state.
type Collection interface {
	// Listen starts the live query and invokes fn on every change, the
	// initial load included. The returned cancel function stops delivery.
	Listen(ctx context.Context, fn SnapshotFunc) (cancel func(), err error)

	// Get retrieves one record by its store-assigned identity.
	Get(ctx context.Context, recordID string) (*model.Vehicle, error)

	// FindByVehicleID retrieves the active record with the given business id,
	// or ErrNotFound.
	FindByVehicleID(ctx context.Context, vehicleID string) (*model.Vehicle, error)

	// Add creates a record and returns the identity the store assigned to it.
	Add(ctx context.Context, v model.Vehicle) (recordID string, err error)

	// Update overwrites the record identified by v.RecordID.
	Update(ctx context.Context, v model.Vehicle) error
}
