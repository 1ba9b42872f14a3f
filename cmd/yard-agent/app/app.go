package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yardtrack-io/yardtrack/cmd/yard-agent/app/options"
	"github.com/yardtrack-io/yardtrack/pkg/log"
)

const commandDesc = `The yard agent keeps a live replica of the vehicle yard:
it mirrors the shared vehicle collection from the broker, reconciles the map
and list views against it, overlays external defect data, and records new
vehicle observations scanned at the gate.`

// NewAgentCommand creates the yard-agent root command.
func NewAgentCommand() *cobra.Command {
	opts := options.NewAgentOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:          "yard-agent",
		Short:        "Run the vehicle yard tracking agent",
		Long:         commandDesc,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfigFile(configFile, opts); err != nil {
				return err
			}

			log.Init(opts.Log)
			defer log.Sync()

			if errs := opts.Validate(); len(errs) > 0 {
				msgs := make([]string, 0, len(errs))
				for _, err := range errs {
					msgs = append(msgs, err.Error())
				}
				return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
			}

			return run(opts)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to the yard-agent configuration file.")
	opts.AddFlags(cmd.Flags())
	return cmd
}

func run(opts *options.AgentOptions) error {
	ctx := setupSignalContext()

	cfg, err := opts.Config()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	agent, err := cfg.NewAgent()
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return agent.Run(ctx)
}

// loadConfigFile merges a config file, if given, over the current option
// values. File values take precedence over flags.
func loadConfigFile(path string, opts *options.AgentOptions) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// setupSignalContext returns a context cancelled on the first SIGINT or
// SIGTERM. A second signal exits immediately.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
		<-ch
		os.Exit(1)
	}()

	return ctx
}
