package yardagent

import (
	"context"
	"fmt"
	"os"

	"github.com/yardtrack-io/yardtrack/internal/yard/defects"
	"github.com/yardtrack-io/yardtrack/internal/yard/geo"
	"github.com/yardtrack-io/yardtrack/internal/yard/listview"
	"github.com/yardtrack-io/yardtrack/internal/yard/mapsync"
	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/internal/yard/notify"
	"github.com/yardtrack-io/yardtrack/internal/yard/scan"
	"github.com/yardtrack-io/yardtrack/internal/yard/store"
	"github.com/yardtrack-io/yardtrack/pkg/log"
	"github.com/yardtrack-io/yardtrack/pkg/mqtt"
	"github.com/yardtrack-io/yardtrack/pkg/options"
)

// Config aggregates the option groups the agent needs.
type Config struct {
	HttpOptions   *options.HttpOptions
	MqttOptions   *options.MqttOptions
	LookerOptions *options.LookerOptions
	GeoOptions    *options.GeoOptions
	ScanOptions   *options.ScanOptions
}

// NewAgent builds the fully wired agent from configuration.
func (cfg *Config) NewAgent() (*Agent, error) {
	// 1. Transport: the vehicle collection lives on the broker.
	mqttClient, err := initializeMQTTClient(cfg.MqttOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	coll := store.NewMQTTCollection(mqttClient, cfg.MqttOptions.TopicRoot)
	vehicleStore := store.NewVehicleStore(coll)

	notifier := notify.NewLogNotifier()

	// 2. Defect overlay against the external quality services.
	colors := mapsync.NewColorMap()
	if path := cfg.LookerOptions.ColorMapFile; path != "" {
		if err := colors.LoadFile(path); err != nil {
			log.Error(err, "Failed to load color map file, using defaults", "path", path)
		}
	}

	querier := defects.NewLookerClient(cfg.LookerOptions.Endpoint, cfg.LookerOptions.Timeout)
	var detail defects.DetailQuerier
	if cfg.LookerOptions.QualiteEndpoint != "" {
		detail = defects.NewQualiteClient(cfg.LookerOptions.QualiteEndpoint, cfg.LookerOptions.Timeout)
	}
	overlay := defects.NewOverlay(querier, detail, defects.NewPJI(cfg.LookerOptions.PJIPrefix), nil, notifier)

	// 3. View consumers.
	list := listview.NewRenderer(os.Stdout)
	controller := NewController(vehicleStore, overlay, list, notifier)

	syncer := mapsync.NewSyncer(mapsync.NewLogMap(), colors, overlay.Index, func(v model.Vehicle) {
		controller.ShowDetail(context.Background(), v)
	})
	controller.SetMapSync(syncer)

	// 4. Scan pipeline. The headless build ships no camera decoder; sessions
	// open straight into manual entry over the HTTP surface.
	var provider geo.Provider
	if cfg.GeoOptions.Endpoint != "" {
		provider = geo.NewHTTPProvider(cfg.GeoOptions.Endpoint, cfg.GeoOptions.Timeout)
	} else {
		provider = geo.NewFixedProvider(model.Position{Lat: cfg.GeoOptions.GateLat, Lng: cfg.GeoOptions.GateLng})
	}

	scanner := scan.NewCoordinator(scan.Config{
		Policy:    scan.NewIDPolicy(cfg.ScanOptions),
		TagSource: cfg.ScanOptions.TagSource,
		Location:  provider,
		Store:     vehicleStore,
		Notifier:  notifier,
	})

	return &Agent{
		cfg:        cfg,
		mqttClient: mqttClient,
		store:      vehicleStore,
		controller: controller,
		scanner:    scanner,
		colors:     colors,
	}, nil
}

func initializeMQTTClient(opts *options.MqttOptions) (mqtt.Client, error) {
	clientCfg := opts.ToClientConfig()

	if clientCfg.ClientID == "" {
		hostname, _ := os.Hostname()
		clientCfg.ClientID = fmt.Sprintf("yard-agent-%s", hostname)
	}

	return mqtt.NewClient(clientCfg)
}
