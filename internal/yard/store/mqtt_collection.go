package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/pkg/log"
	"github.com/yardtrack-io/yardtrack/pkg/mqtt"
	"github.com/yardtrack-io/yardtrack/pkg/mqtt/topic"
)

// mqttCollection implements Collection over retained MQTT documents: one
// retained JSON payload per record on {root}/vehicles/{recordID}. Retained
// delivery gives every connecting client the full current set, and each
// publish fans out to all listeners, which matches the live-query contract.
// An empty retained payload deletes the record.
type mqttCollection struct {
	client mqtt.Client
	topics *topic.Builder
	qos    int

	mu      sync.Mutex
	docs    map[string]model.Vehicle
	onSnap  SnapshotFunc
	started bool

	logger log.Logger
}

// NewMQTTCollection creates a Collection backed by the given MQTT client and
// topic namespace. The client must already be started.
func NewMQTTCollection(client mqtt.Client, topicRoot string) Collection {
	return &mqttCollection{
		client: client,
		topics: topic.NewBuilder(topicRoot),
		qos:    1,
		docs:   make(map[string]model.Vehicle),
		logger: log.WithName("collection"),
	}
}

func (c *mqttCollection) Listen(ctx context.Context, fn SnapshotFunc) (func(), error) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil, fmt.Errorf("collection already has a listener")
	}
	c.started = true
	c.onSnap = fn
	c.mu.Unlock()

	filter := c.topics.VehiclesWildcard()
	if err := c.client.Subscribe(ctx, filter, c.qos, c.onMessage); err != nil {
		c.mu.Lock()
		c.started = false
		c.onSnap = nil
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// The initial load counts as a change. The retained replay already fired
	// the callback per document; one more delivery hands over the assembled
	// set, and an empty yard gets its empty snapshot this way.
	c.mu.Lock()
	snapshot := c.ordered()
	c.mu.Unlock()
	fn(snapshot)

	cancel := func() {
		c.mu.Lock()
		c.onSnap = nil
		c.started = false
		c.mu.Unlock()
		_ = c.client.Unsubscribe(context.Background(), filter)
	}
	return cancel, nil
}

// onMessage applies one retained-document change and republishes the full
// ordered set. At-least-once delivery makes duplicates possible; applying a
// document twice is harmless because the replica is keyed by record id.
func (c *mqttCollection) onMessage(ctx context.Context, t string, payload []byte) {
	recordID := c.topics.RecordID(t)
	if recordID == "" {
		return
	}

	c.mu.Lock()
	if len(payload) == 0 {
		delete(c.docs, recordID)
	} else {
		var v model.Vehicle
		if err := json.Unmarshal(payload, &v); err != nil {
			c.mu.Unlock()
			c.logger.Error(err, "Dropping malformed vehicle document", "topic", t)
			return
		}
		v.RecordID = recordID
		c.docs[recordID] = v
	}
	fn := c.onSnap
	snapshot := c.ordered()
	c.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// ordered returns the replica sorted by observedAt descending, record id as
// the tiebreak so equal timestamps keep a stable remote-assigned order.
// Callers must hold c.mu.
func (c *mqttCollection) ordered() []model.Vehicle {
	out := make([]model.Vehicle, 0, len(c.docs))
	for _, v := range c.docs {
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ObservedAt.Equal(out[j].ObservedAt) {
			return out[i].ObservedAt.After(out[j].ObservedAt)
		}
		return out[i].RecordID < out[j].RecordID
	})
	return out
}

func (c *mqttCollection) Get(ctx context.Context, recordID string) (*model.Vehicle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.docs[recordID]
	if !ok {
		return nil, ErrNotFound
	}
	out := v
	return &out, nil
}

func (c *mqttCollection) FindByVehicleID(ctx context.Context, vehicleID string) (*model.Vehicle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Equality query against the local replica. Under a concurrent remote
	// create this can miss and produce a duplicate record; the accepted
	// outcome per the eventual-consistency model.
	for _, v := range c.docs {
		if v.VehicleID == vehicleID {
			out := v
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (c *mqttCollection) Add(ctx context.Context, v model.Vehicle) (string, error) {
	v.RecordID = uuid.NewString()
	if err := c.publish(ctx, v); err != nil {
		return "", err
	}
	return v.RecordID, nil
}

func (c *mqttCollection) Update(ctx context.Context, v model.Vehicle) error {
	if v.RecordID == "" {
		return fmt.Errorf("update requires a record id")
	}
	return c.publish(ctx, v)
}

func (c *mqttCollection) publish(ctx context.Context, v model.Vehicle) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := c.client.Publish(ctx, c.topics.Vehicle(v.RecordID), c.qos, true, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
