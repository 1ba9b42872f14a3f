package defects

import "strings"

// PJI converts between yard vehicle ids and the external reporting service's
// vehicle key, which prefixes every id with a plant code. The convention is
// isolated here so a plant-code change never touches engine logic.
type PJI struct {
	prefix string
}

// NewPJI creates a mapper with the given plant prefix.
func NewPJI(prefix string) PJI {
	return PJI{prefix: prefix}
}

// Join forms the external key for a vehicle id.
func (p PJI) Join(vehicleID string) string {
	return p.prefix + vehicleID
}

// JoinAll forms external keys for a batch of vehicle ids.
func (p PJI) JoinAll(vehicleIDs []string) []string {
	out := make([]string, 0, len(vehicleIDs))
	for _, id := range vehicleIDs {
		out = append(out, p.Join(id))
	}
	return out
}

// Split recovers the vehicle id from an external key. Keys without the
// expected prefix are returned unchanged, so a service echoing foreign keys
// degrades to a non-match instead of corrupting ids.
func (p PJI) Split(pji string) string {
	return strings.TrimPrefix(pji, p.prefix)
}
