package yardagent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yardtrack-io/yardtrack/internal/yard/mapsync"
	"github.com/yardtrack-io/yardtrack/internal/yard/scan"
	"github.com/yardtrack-io/yardtrack/internal/yard/store"
	httpserver "github.com/yardtrack-io/yardtrack/internal/yardagent/server/http"
	"github.com/yardtrack-io/yardtrack/pkg/log"
	"github.com/yardtrack-io/yardtrack/pkg/mqtt"
)

// Agent is the composed yard agent: transport, store, controller, scan
// pipeline and the HTTP surface, run as one unit.
type Agent struct {
	cfg        *Config
	mqttClient mqtt.Client
	store      *store.VehicleStore
	controller *Controller
	scanner    *scan.Coordinator
	colors     *mapsync.ColorMap
}

// Run starts every component and blocks until ctx is done or a component
// fails.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.mqttClient.Start(ctx); err != nil {
		return err
	}
	defer a.mqttClient.Disconnect(context.Background())

	if err := a.mqttClient.AwaitConnection(ctx); err != nil {
		return err
	}
	log.Info("Connected to broker", "broker", a.cfg.MqttOptions.Broker)

	srv := httpserver.NewServer(a.cfg.HttpOptions, a.controller, a.scanner, a.mqttClient.IsConnected)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.store.Run(ctx)
	})
	g.Go(func() error {
		return a.controller.Start(ctx)
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})
	if path := a.cfg.LookerOptions.ColorMapFile; path != "" {
		g.Go(func() error {
			return mapsync.WatchColorMap(ctx, a.colors, path)
		})
	}

	return g.Wait()
}
