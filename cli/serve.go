package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/petal-labs/toolgate/audit"
	"github.com/petal-labs/toolgate/config"
	"github.com/petal-labs/toolgate/mcp"
	toolgateotel "github.com/petal-labs/toolgate/otel"
	"github.com/petal-labs/toolgate/tool"
)

// NewServeCmd creates the "serve" subcommand: the MCP gateway on stdio.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool gateway over stdio",
		RunE:  runServe,
	}

	cmd.Flags().String("config", "", "Path to toolgate.yaml")
	cmd.Flags().Int("workers", 8, "Max concurrent tool calls")
	cmd.Flags().Duration("call-timeout", 60*time.Second, "Per-call timeout")
	cmd.Flags().String("audit-db", "", "Path to SQLite audit log (empty disables auditing)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	workers, _ := cmd.Flags().GetInt("workers")
	callTimeout, _ := cmd.Flags().GetDuration("call-timeout")
	auditPath, _ := cmd.Flags().GetString("audit-db")

	// stdout is the wire; all logging goes to stderr.
	logger := newLogger(cmd)

	cfg, err := config.Load(configPath)
	if err != nil {
		return exitError(1, "loading config: %v", err)
	}
	if auditPath == "" {
		auditPath = cfg.AuditDBPath
	}

	catalog, err := buildCatalog(cfg)
	if err != nil {
		return exitError(1, "building catalog: %v", err)
	}

	var observers []tool.Observer
	dispatchObserver, err := toolgateotel.NewDispatchObserver(
		otelapi.GetMeterProvider().Meter("toolgate"),
		otelapi.GetTracerProvider().Tracer("toolgate"),
	)
	if err != nil {
		return exitError(1, "creating dispatch observer: %v", err)
	}
	observers = append(observers, dispatchObserver)

	if auditPath != "" {
		store, err := audit.Open(auditPath, logger)
		if err != nil {
			return exitError(1, "opening audit store: %v", err)
		}
		defer func() {
			_ = store.Close()
		}()
		observers = append(observers, store)
	}

	dispatcher, err := tool.NewDispatcher(tool.DispatcherConfig{
		Catalog:     catalog,
		CallTimeout: callTimeout,
		Logger:      logger,
		Observers:   observers,
	})
	if err != nil {
		return exitError(1, "creating dispatcher: %v", err)
	}

	server, err := mcp.NewServer(mcp.ServerConfig{
		Catalog:    catalog,
		Dispatcher: dispatcher,
		Workers:    workers,
		Logger:     logger,
	})
	if err != nil {
		return exitError(1, "creating server: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("gateway serving", "tools", catalog.Len(), "workers", workers)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
		return exitError(1, "serve: %v", err)
	}
	return nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
