package geo

import (
	"context"
	"errors"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

var (
	// ErrPermission means the positioning source refused the request.
	ErrPermission = errors.New("location permission denied")

	// ErrTimeout means no fix arrived within the acquisition window.
	ErrTimeout = errors.New("location acquisition timed out")

	// ErrUnsupported means no positioning source is available at all.
	ErrUnsupported = errors.New("location not supported")
)

// Provider yields the device's current position. Acquire is single-shot and
// bounded; callers treat every failure as recoverable, surface a message and
// abort only the in-flight operation.
type Provider interface {
	Acquire(ctx context.Context) (model.Position, error)
}
