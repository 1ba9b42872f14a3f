package options

import (
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*GeoOptions)(nil)

// GeoOptions contains configuration for the device location provider.
type GeoOptions struct {
	// Endpoint is the URL of the local positioning daemon. When empty, the
	// agent falls back to the fixed gate position.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// Timeout bounds a single location acquisition.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// GateLat and GateLng describe the surveyed yard gate position used by the
	// fixed fallback provider.
	GateLat float64 `json:"gate-lat" mapstructure:"gate-lat"`
	GateLng float64 `json:"gate-lng" mapstructure:"gate-lng"`
}

// NewGeoOptions creates a GeoOptions object with default parameters.
func NewGeoOptions() *GeoOptions {
	return &GeoOptions{
		Timeout: 10 * time.Second,
		GateLat: -25.4411,
		GateLng: -49.2731,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *GeoOptions) Validate() []error {
	return nil
}

// AddFlags adds flags for GeoOptions to the specified FlagSet.
func (o *GeoOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Endpoint, "geo.endpoint", o.Endpoint, "URL of the local positioning daemon (optional).")
	fs.DurationVar(&o.Timeout, "geo.timeout", o.Timeout, "Timeout for a single location acquisition.")
	fs.Float64Var(&o.GateLat, "geo.gate-lat", o.GateLat, "Latitude of the yard gate fallback position.")
	fs.Float64Var(&o.GateLng, "geo.gate-lng", o.GateLng, "Longitude of the yard gate fallback position.")
}
