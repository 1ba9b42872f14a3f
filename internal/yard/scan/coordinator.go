package scan

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/looplab/fsm"

	"github.com/yardtrack-io/yardtrack/internal/pkg/metrics"
	fsmutil "github.com/yardtrack-io/yardtrack/internal/pkg/util/fsm"
	"github.com/yardtrack-io/yardtrack/internal/yard/geo"
	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/internal/yard/notify"
	"github.com/yardtrack-io/yardtrack/pkg/log"
)

// Session states. The modal lifetime runs open -> capture -> submit -> idle,
// with manual entry and the tag stages branching off the capture step.
const (
	StateIdle        = "idle"
	StateScanning    = "scanning"
	StateManual      = "manual"
	StateAwaitingTag = "awaiting_tag"
	StateSubmitting  = "submitting"
)

const (
	eventOpen         = "open"
	eventCameraFailed = "camera_failed"
	eventToManual     = "to_manual"
	eventToScanning   = "to_scanning"
	eventAwaitTag     = "await_tag"
	eventSubmit       = "submit"
	eventDone         = "done"
	eventCancel       = "cancel"
)

const (
	stageVehicle = "vehicle"
	stageTag     = "tag"
)

// Upserter is the slice of the vehicle store the coordinator needs.
type Upserter interface {
	Upsert(ctx context.Context, vehicleID string, pos model.Position, tagID string) error
}

// Coordinator governs one scan session at a time: modal open, decode or
// manual entry, optional tag capture, then a single upsert. All transient
// session state lives here and is cleared on every terminal transition.
type Coordinator struct {
	policy     IDPolicy
	tagSource  string
	newDecoder DecoderFactory
	tags       TagReader
	location   geo.Provider
	store      Upserter
	notifier   notify.Notifier
	logger     log.Logger

	mu  sync.Mutex
	fsm *fsm.FSM

	// decoder is the single owned decode capability handle. It is non-nil
	// exactly while a decode capability is active, and is cleared only after
	// a completed Stop. This, not a boolean, is the concurrency guard.
	decoder Decoder

	// session increments on every terminal transition. Capability callbacks
	// carry the session they were created in and are dropped when stale.
	session uint64

	stage            string
	pendingVehicleID string
	pendingTagID     string
	tagCancel        context.CancelFunc
}

// Config carries the coordinator's collaborators.
type Config struct {
	Policy     IDPolicy
	TagSource  string // 'nfc', 'barcode' or 'none'
	NewDecoder DecoderFactory
	Tags       TagReader // may be nil
	Location   geo.Provider
	Store      Upserter
	Notifier   notify.Notifier
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(cfg Config) *Coordinator {
	c := &Coordinator{
		policy:     cfg.Policy,
		tagSource:  cfg.TagSource,
		newDecoder: cfg.NewDecoder,
		tags:       cfg.Tags,
		location:   cfg.Location,
		store:      cfg.Store,
		notifier:   cfg.Notifier,
		logger:     log.WithName("scan"),
	}

	events := fsm.Events{
		{Name: eventOpen, Src: []string{StateIdle}, Dst: StateScanning},
		{Name: eventCameraFailed, Src: []string{StateScanning}, Dst: StateManual},
		{Name: eventToManual, Src: []string{StateScanning}, Dst: StateManual},
		{Name: eventToScanning, Src: []string{StateManual}, Dst: StateScanning},
		{Name: eventAwaitTag, Src: []string{StateScanning, StateManual}, Dst: StateAwaitingTag},
		{Name: eventSubmit, Src: []string{StateScanning, StateManual, StateAwaitingTag}, Dst: StateSubmitting},
		{Name: eventDone, Src: []string{StateSubmitting}, Dst: StateIdle},
		{Name: eventCancel, Src: []string{StateScanning, StateManual, StateAwaitingTag, StateSubmitting}, Dst: StateIdle},
	}

	callbacks := fsm.Callbacks{
		"enter_state": func(ctx context.Context, e *fsm.Event) {
			c.logger.Debug("Scan session transition", "event", e.Event, "from", e.Src, "to", e.Dst)
		},
		"before_" + eventSubmit: fsmutil.WrapEvent(func(ctx context.Context, e *fsm.Event) error {
			if c.pendingVehicleID == "" {
				return fmt.Errorf("no vehicle id captured")
			}
			return nil
		}),
		"enter_" + StateIdle: func(ctx context.Context, e *fsm.Event) {
			// Terminal transition: discard all per-session state so no stale
			// callback can act on a dead session.
			c.stage = ""
			c.pendingVehicleID = ""
			c.pendingTagID = ""
			c.session++
		},
	}

	c.fsm = fsm.NewFSM(StateIdle, events, callbacks)
	return c
}

// State returns the current session state.
func (c *Coordinator) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.Current()
}

// Pending returns the transient session identifiers, for inspection.
func (c *Coordinator) Pending() (vehicleID, tagID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingVehicleID, c.pendingTagID
}

// Open starts a scan session. The decoder is acquired immediately; if the
// camera is unavailable the session falls back to manual entry with an error
// notice. That fallback is designed behavior, not a failure of Open.
func (c *Coordinator) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fsm.Event(ctx, eventOpen); err != nil {
		return err
	}
	c.stage = stageVehicle

	if err := c.startDecoderLocked(ctx); err != nil {
		c.notifier.Error("Camera unavailable. Use manual entry.")
		_ = c.fsm.Event(ctx, eventCameraFailed)
	}
	return nil
}

// Toggle switches between scanner and manual entry while the modal is open.
func (c *Coordinator) Toggle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.fsm.Current() {
	case StateScanning:
		if err := c.stopDecoderLocked(ctx); err != nil {
			c.logger.Error(err, "Failed to stop decoder on toggle")
		}
		return c.fsm.Event(ctx, eventToManual)

	case StateManual:
		if err := c.fsm.Event(ctx, eventToScanning); err != nil {
			return err
		}
		if err := c.startDecoderLocked(ctx); err != nil {
			c.notifier.Error("Camera unavailable. Use manual entry.")
			_ = c.fsm.Event(ctx, eventCameraFailed)
		}
		return nil

	default:
		return fmt.Errorf("cannot toggle while %s", c.fsm.Current())
	}
}

// SubmitManual feeds typed text into the current capture stage, exactly as a
// decode would.
func (c *Coordinator) SubmitManual(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.fsm.Current()
	if state != StateScanning && state != StateManual {
		return fmt.Errorf("no open scan session")
	}
	return c.captureLocked(ctx, text)
}

// Cancel closes the session from any point: stops and awaits any active
// capability, discards pending state and returns to idle.
func (c *Coordinator) Cancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fsm.Current() == StateIdle {
		return nil
	}

	if err := c.stopDecoderLocked(ctx); err != nil {
		c.logger.Error(err, "Failed to stop decoder on cancel")
	}
	if c.tagCancel != nil {
		c.tagCancel()
		c.tagCancel = nil
	}

	metrics.ScanSessionsTotal.WithLabelValues("cancelled").Inc()
	return c.fsm.Event(ctx, eventCancel)
}

// startDecoderLocked acquires a fresh decode capability. Creating a second
// one while a handle exists is a programming error the guard turns into a
// loud failure instead of a camera race.
func (c *Coordinator) startDecoderLocked(ctx context.Context) error {
	if c.decoder != nil {
		return fmt.Errorf("decoder already active")
	}
	if c.newDecoder == nil {
		return ErrCapabilityUnavailable
	}

	d := c.newDecoder()
	sess := c.session
	if err := d.Start(ctx, func(text string) {
		c.onDecode(sess, text)
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
	}

	c.decoder = d
	return nil
}

// stopDecoderLocked stops the active decoder, if any, and waits for the stop
// to complete before releasing the handle.
func (c *Coordinator) stopDecoderLocked(ctx context.Context) error {
	if c.decoder == nil {
		return nil
	}

	err := c.decoder.Stop(ctx)
	c.decoder = nil
	return err
}

// onDecode is the decoder callback. Stale deliveries (from a session that has
// since terminated) are dropped.
func (c *Coordinator) onDecode(sess uint64, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess != c.session || c.fsm.Current() != StateScanning {
		c.logger.Debug("Dropping stale decode", "text", text)
		return
	}

	if err := c.captureLocked(context.Background(), text); err != nil {
		c.logger.Error(err, "Capture failed")
	}
}

// captureLocked routes captured text to the current stage.
func (c *Coordinator) captureLocked(ctx context.Context, text string) error {
	switch c.stage {
	case stageTag:
		return c.captureTagLocked(ctx, text)
	default:
		return c.captureVehicleIDLocked(ctx, text)
	}
}

func (c *Coordinator) captureVehicleIDLocked(ctx context.Context, text string) error {
	id, err := c.policy.Normalize(text)
	if err != nil {
		// Invalid id: stay in the current state and let the operator retry.
		c.notifier.Error("Invalid vehicle id.")
		return nil
	}
	c.pendingVehicleID = id

	// The old capability must be fully stopped before the session advances,
	// otherwise it can deliver a second decode into the next stage.
	if err := c.stopDecoderLocked(ctx); err != nil {
		c.logger.Error(err, "Failed to stop decoder after capture")
	}

	switch c.tagSource {
	case "nfc":
		if c.tags != nil && c.tags.Available() {
			if err := c.fsm.Event(ctx, eventAwaitTag); err != nil {
				return err
			}
			c.awaitTagLocked()
			return nil
		}
		c.notifier.Info("Tag reader not available. Saving without tag.")
		return c.beginSubmitLocked(ctx)

	case "barcode":
		c.stage = stageTag
		if err := c.startDecoderLocked(ctx); err != nil {
			c.notifier.Error("Camera unavailable. Type the tag id.")
			if c.fsm.Current() == StateScanning {
				_ = c.fsm.Event(ctx, eventCameraFailed)
			}
		} else if c.fsm.Current() == StateManual {
			// Manual vehicle entry flows into a scanning tag stage.
			_ = c.fsm.Event(ctx, eventToScanning)
		}
		return nil

	default:
		return c.beginSubmitLocked(ctx)
	}
}

func (c *Coordinator) captureTagLocked(ctx context.Context, text string) error {
	tag := strings.TrimSpace(text)
	if tag == "" {
		c.notifier.Error("Invalid tag id.")
		return nil
	}
	c.pendingTagID = tag

	if err := c.stopDecoderLocked(ctx); err != nil {
		c.logger.Error(err, "Failed to stop decoder after tag capture")
	}
	return c.beginSubmitLocked(ctx)
}

// awaitTagLocked listens for exactly one tag reading in the background.
func (c *Coordinator) awaitTagLocked() {
	readCtx, cancel := context.WithCancel(context.Background())
	c.tagCancel = cancel
	sess := c.session

	go func() {
		serial, err := c.tags.Read(readCtx)

		c.mu.Lock()
		defer c.mu.Unlock()

		if sess != c.session || c.fsm.Current() != StateAwaitingTag {
			return
		}
		c.tagCancel = nil

		if err != nil {
			c.notifier.Error("Tag read failed. Vehicle not saved.")
			metrics.ScanSessionsTotal.WithLabelValues("failed").Inc()
			_ = c.fsm.Event(context.Background(), eventCancel)
			return
		}

		tag, err := NormalizeTagSerial(serial)
		if err != nil {
			c.notifier.Error("Unreadable tag serial. Vehicle not saved.")
			metrics.ScanSessionsTotal.WithLabelValues("failed").Inc()
			_ = c.fsm.Event(context.Background(), eventCancel)
			return
		}

		c.pendingTagID = tag
		if err := c.beginSubmitLocked(context.Background()); err != nil {
			c.logger.Error(err, "Failed to begin submit after tag read")
		}
	}()
}

// beginSubmitLocked moves the session to submitting and launches the
// geolocate-then-upsert step.
func (c *Coordinator) beginSubmitLocked(ctx context.Context) error {
	if err := c.fsm.Event(ctx, eventSubmit); err != nil {
		return err
	}

	sess := c.session
	vehicleID := c.pendingVehicleID
	tagID := c.pendingTagID
	go c.doSubmit(sess, vehicleID, tagID)
	return nil
}

// doSubmit acquires the device position and writes through to the store. Both
// failure paths notify and terminate the session; there is no automatic
// retry, the operator rescans.
func (c *Coordinator) doSubmit(sess uint64, vehicleID, tagID string) {
	ctx := context.Background()

	c.notifier.Info(fmt.Sprintf("Processing vehicle %s...", vehicleID))

	pos, err := c.location.Acquire(ctx)
	if err != nil {
		c.logger.Error(err, "Location acquisition failed", "vehicleID", vehicleID)
		c.notifier.Error("Could not determine location. Vehicle not saved.")
		c.finish(sess, "failed")
		return
	}

	if err := c.store.Upsert(ctx, vehicleID, pos, tagID); err != nil {
		c.logger.Error(err, "Upsert failed", "vehicleID", vehicleID)
		c.notifier.Error("Failed to save vehicle data.")
		c.finish(sess, "failed")
		return
	}

	c.notifier.Success(fmt.Sprintf("Vehicle %s saved.", vehicleID))
	c.finish(sess, "submitted")
}

func (c *Coordinator) finish(sess uint64, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess != c.session {
		return
	}

	metrics.ScanSessionsTotal.WithLabelValues(outcome).Inc()
	_ = c.fsm.Event(context.Background(), eventDone)
}
