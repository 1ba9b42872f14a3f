package topic

import (
	"fmt"
	"strings"
)

// Builder encapsulates the logic for constructing collection topic strings so
// every component agrees on the layout.
type Builder struct {
	// root is the base namespace for all topics (e.g. "yard/v1").
	root string
}

// NewBuilder creates a Builder with the specified root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Vehicle returns the retained-document topic for one vehicle record.
func (b *Builder) Vehicle(recordID string) string {
	return b.build(SuffixVehicles, recordID)
}

// VehiclesWildcard returns the filter matching every vehicle record topic.
// Result: {root}/vehicles/+
func (b *Builder) VehiclesWildcard() string {
	return b.build(SuffixVehicles, "+")
}

// RecordID extracts the record id from a concrete vehicle topic, or "" when
// the topic does not belong to this builder's collection.
func (b *Builder) RecordID(topic string) string {
	prefix := b.build(SuffixVehicles, "")
	if !strings.HasPrefix(topic, prefix) {
		return ""
	}
	id := strings.TrimPrefix(topic, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func (b *Builder) build(parts ...string) string {
	return fmt.Sprintf("%s/%s", b.root, strings.Join(parts, "/"))
}
