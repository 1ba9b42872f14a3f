package options

import (
	"github.com/spf13/pflag"

	"github.com/yardtrack-io/yardtrack/internal/yardagent"
	"github.com/yardtrack-io/yardtrack/pkg/log"
	genericoptions "github.com/yardtrack-io/yardtrack/pkg/options"
)

// AgentOptions aggregates every option group of the yard agent.
type AgentOptions struct {
	Http   *genericoptions.HttpOptions   `json:"http" mapstructure:"http"`
	Mqtt   *genericoptions.MqttOptions   `json:"mqtt" mapstructure:"mqtt"`
	Looker *genericoptions.LookerOptions `json:"looker" mapstructure:"looker"`
	Geo    *genericoptions.GeoOptions    `json:"geo" mapstructure:"geo"`
	Scan   *genericoptions.ScanOptions   `json:"scan" mapstructure:"scan"`
	Log    *log.Options                  `json:"log" mapstructure:"log"`
}

// NewAgentOptions creates an AgentOptions with default values.
func NewAgentOptions() *AgentOptions {
	return &AgentOptions{
		Http:   genericoptions.NewHttpOptions(),
		Mqtt:   genericoptions.NewMqttOptions(),
		Looker: genericoptions.NewLookerOptions(),
		Geo:    genericoptions.NewGeoOptions(),
		Scan:   genericoptions.NewScanOptions(),
		Log:    log.NewOptions(),
	}
}

// AddFlags binds all option groups to the given FlagSet.
func (o *AgentOptions) AddFlags(fs *pflag.FlagSet) {
	o.Http.AddFlags(fs)
	o.Mqtt.AddFlags(fs)
	o.Looker.AddFlags(fs)
	o.Geo.AddFlags(fs)
	o.Scan.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Validate collects validation failures from every option group.
func (o *AgentOptions) Validate() []error {
	errs := []error{}

	errs = append(errs, o.Http.Validate()...)
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.Looker.Validate()...)
	errs = append(errs, o.Geo.Validate()...)
	errs = append(errs, o.Scan.Validate()...)
	errs = append(errs, o.Log.Validate()...)

	return errs
}

// Config converts the options into the agent's runtime configuration.
func (o *AgentOptions) Config() (*yardagent.Config, error) {
	return &yardagent.Config{
		HttpOptions:   o.Http,
		MqttOptions:   o.Mqtt,
		LookerOptions: o.Looker,
		GeoOptions:    o.Geo,
		ScanOptions:   o.Scan,
	}, nil
}
