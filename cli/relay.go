package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petal-labs/toolgate/config"
	"github.com/petal-labs/toolgate/relay"
)

// NewRelayCmd creates the "relay" subcommand: the weather HTTP relay the
// weather_get_current tool consumes.
func NewRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the custom weather relay service",
		RunE:  runRelay,
	}

	cmd.Flags().String("config", "", "Path to toolgate.yaml")
	cmd.Flags().Int("port", 0, "Listen port (default from CUSTOM_WEATHER_API_PORT or 5000)")

	return cmd
}

func runRelay(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	port, _ := cmd.Flags().GetInt("port")

	logger := newLogger(cmd)

	cfg, err := config.Load(configPath)
	if err != nil {
		return exitError(1, "loading config: %v", err)
	}
	if port == 0 {
		port = cfg.RelayPort
	}
	if cfg.OpenWeatherKey == "" {
		return exitError(1, "OPENWEATHER_API_KEY not set")
	}

	service := relay.NewService(relay.Config{
		APIKey: cfg.OpenWeatherKey,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := service.ListenAndServe(ctx, fmt.Sprintf(":%d", port)); err != nil && err != context.Canceled {
		return exitError(1, "relay: %v", err)
	}
	return nil
}
