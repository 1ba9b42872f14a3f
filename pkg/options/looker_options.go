package options

import (
	"errors"
	"net/url"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*LookerOptions)(nil)

// LookerOptions contains configuration for the external defect reporting
// service used by the defect overlay.
type LookerOptions struct {
	// Endpoint is the URL of the label-scoped defect query service (POST).
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// QualiteEndpoint is the base URL of the per-vehicle quality service
	// (GET {base}/vehicules/pji/{pji}/qualite). Optional; when empty the
	// single-vehicle detail view also uses the POST endpoint.
	QualiteEndpoint string `json:"qualite-endpoint" mapstructure:"qualite-endpoint"`

	// PJIPrefix is prepended to a vehicle id to form the external join key.
	PJIPrefix string `json:"pji-prefix" mapstructure:"pji-prefix"`

	// Timeout bounds each defect query.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// ColorMapFile optionally points to a YAML file mapping defect labels to
	// marker colors. When set, the file is watched and reloaded on change.
	ColorMapFile string `json:"color-map-file" mapstructure:"color-map-file"`
}

// NewLookerOptions creates a LookerOptions object with default parameters.
func NewLookerOptions() *LookerOptions {
	return &LookerOptions{
		PJIPrefix: "65625",
		Timeout:   15 * time.Second,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *LookerOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if o.Endpoint == "" {
		errs = append(errs, errors.New("looker endpoint is required"))
	} else if _, err := url.Parse(o.Endpoint); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// AddFlags adds flags for LookerOptions to the specified FlagSet.
func (o *LookerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Endpoint, "looker.endpoint", o.Endpoint, "URL of the defect query service.")
	fs.StringVar(&o.QualiteEndpoint, "looker.qualite-endpoint", o.QualiteEndpoint, "Base URL of the per-vehicle quality service (optional).")
	fs.StringVar(&o.PJIPrefix, "looker.pji-prefix", o.PJIPrefix, "Prefix joined to a vehicle id to form the external PJI key.")
	fs.DurationVar(&o.Timeout, "looker.timeout", o.Timeout, "Timeout for defect queries.")
	fs.StringVar(&o.ColorMapFile, "looker.color-map-file", o.ColorMapFile, "Optional YAML file mapping defect labels to marker colors.")
}
