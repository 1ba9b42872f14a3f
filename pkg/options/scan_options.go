package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*ScanOptions)(nil)

// ScanOptions contains the deployment-specific vehicle id policy. Different
// plants encode vehicle ids differently, so the shape is configuration, not
// code.
type ScanOptions struct {
	// IDPolicy selects how decoded text is normalized and validated.
	// One of 'numeric', 'freeform', 'none'.
	IDPolicy string `json:"id-policy" mapstructure:"id-policy"`

	// IDLength is the truncation length for the numeric and freeform policies.
	IDLength int `json:"id-length" mapstructure:"id-length"`

	// TagSource selects where the secondary tag id comes from.
	// One of 'nfc', 'barcode', 'none'.
	TagSource string `json:"tag-source" mapstructure:"tag-source"`
}

// NewScanOptions creates a ScanOptions object with default parameters.
func NewScanOptions() *ScanOptions {
	return &ScanOptions{
		IDPolicy:  "numeric",
		IDLength:  7,
		TagSource: "nfc",
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *ScanOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	switch o.IDPolicy {
	case "numeric", "freeform", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown id policy %q", o.IDPolicy))
	}

	switch o.TagSource {
	case "nfc", "barcode", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown tag source %q", o.TagSource))
	}

	if o.IDLength <= 0 {
		errs = append(errs, fmt.Errorf("id length must be positive, got %d", o.IDLength))
	}

	return errs
}

// AddFlags adds flags for ScanOptions to the specified FlagSet.
func (o *ScanOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.IDPolicy, "scan.id-policy", o.IDPolicy, "Vehicle id validation policy ('numeric', 'freeform' or 'none').")
	fs.IntVar(&o.IDLength, "scan.id-length", o.IDLength, "Truncation length for decoded vehicle ids.")
	fs.StringVar(&o.TagSource, "scan.tag-source", o.TagSource, "Source of the secondary tag id ('nfc', 'barcode' or 'none').")
}
