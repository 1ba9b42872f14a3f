package scan

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/yardtrack-io/yardtrack/pkg/options"
)

// IDPolicy normalizes and validates decoded vehicle ids. The shape of a valid
// id differs per deployment (some plants print 7-digit numeric labels, others
// 17-character VIN-like codes), so the rule is configuration.
type IDPolicy struct {
	mode   string
	length int
}

// NewIDPolicy builds a policy from the scan options.
func NewIDPolicy(opts *options.ScanOptions) IDPolicy {
	if opts == nil {
		opts = options.NewScanOptions()
	}
	return IDPolicy{mode: opts.IDPolicy, length: opts.IDLength}
}

// Normalize validates raw per the policy and truncates it to the configured
// length. It returns ErrValidation (wrapped) when the text cannot be a
// vehicle id; the caller stays in its current state and re-prompts.
func (p IDPolicy) Normalize(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrValidation)
	}

	switch p.mode {
	case "numeric":
		// Validation covers the whole decoded text, not just the prefix:
		// a label with trailing letters is a different symbol, not a long id.
		for _, r := range id {
			if r < '0' || r > '9' {
				return "", fmt.Errorf("%w: %q is not numeric", ErrValidation, id)
			}
		}
	case "freeform", "none":
	}

	if p.mode != "none" && p.length > 0 && len(id) > p.length {
		id = id[:p.length]
	}
	return id, nil
}

// NormalizeTagSerial converts a raw NFC serial (hex, colon-delimited, e.g.
// "04:d1:6c:92:ab:1f:90") into the canonical decimal string stored on the
// vehicle record.
func NormalizeTagSerial(serial string) (string, error) {
	hex := strings.ReplaceAll(strings.TrimSpace(serial), ":", "")
	if hex == "" {
		return "", fmt.Errorf("%w: empty tag serial", ErrValidation)
	}

	// Serials can exceed 64 bits (10-byte UIDs), so parse arbitrary width.
	n, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		return "", fmt.Errorf("%w: tag serial %q is not hex", ErrValidation, serial)
	}

	return n.String(), nil
}
