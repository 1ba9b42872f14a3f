package scan

import (
	"context"
	"errors"
)

var (
	// ErrCapabilityUnavailable means the camera or tag reader could not be
	// acquired. Recovered by falling back to manual entry; never fatal.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrValidation means decoded or typed text does not satisfy the
	// deployment's vehicle id policy. Recovered locally by re-prompting.
	ErrValidation = errors.New("invalid vehicle id")
)

// DecodeFunc receives each successfully decoded text. A frame with no symbol
// is a no-op inside the capability, not an error.
type DecodeFunc func(text string)

// Decoder is a camera-backed symbology decode capability. At most one Decoder
// is active at any time; the coordinator enforces that with an owned handle.
type Decoder interface {
	// Start begins decoding and delivers results to onDecode until stopped.
	// Returns ErrCapabilityUnavailable (possibly wrapped) when the camera
	// cannot be acquired.
	Start(ctx context.Context, onDecode DecodeFunc) error

	// Stop halts decoding. It returns only after the capability has fully
	// stopped, so no decode can fire into a dead session afterwards.
	Stop(ctx context.Context) error
}

// DecoderFactory creates a fresh Decoder for one scanning stage. Each stage
// gets its own handle; handles are never reused across stages.
type DecoderFactory func() Decoder

// TagReader is a short-range tag-read capability (NFC). Read blocks until one
// tag is read or ctx is cancelled.
type TagReader interface {
	// Available reports whether the capability exists on this device.
	Available() bool

	// Read waits for a single reading and returns its raw serial, typically
	// colon-delimited hex. Cancelling ctx aborts the wait.
	Read(ctx context.Context) (serial string, err error)
}
