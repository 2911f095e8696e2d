package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petal-labs/toolgate/backend/sentry"
	"github.com/petal-labs/toolgate/config"
	"github.com/petal-labs/toolgate/health"
)

// NewCheckCmd creates the "check" subcommand: upstream reachability checks.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check reachability of upstream services",
		RunE:  runCheck,
	}

	cmd.Flags().String("config", "", "Path to toolgate.yaml")
	cmd.Flags().Bool("watch", false, "Keep checking on a schedule instead of exiting")
	cmd.Flags().String("schedule", "*/5 * * * *", "Cron schedule used with --watch")

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	watch, _ := cmd.Flags().GetBool("watch")
	schedule, _ := cmd.Flags().GetString("schedule")

	logger := newLogger(cmd)

	cfg, err := config.Load(configPath)
	if err != nil {
		return exitError(1, "loading config: %v", err)
	}

	sentryClient := sentry.NewClient(sentry.Config{
		Token:        cfg.SentryToken,
		Organization: cfg.SentryOrg,
		BaseURL:      cfg.SentryBaseURL,
	})

	checks := []health.Check{
		health.HTTPCheck("weather-relay", cfg.WeatherURL+"?location=London", nil),
		{
			Name: "sentry",
			Probe: func(ctx context.Context) error {
				result := sentryClient.TestConnection(ctx)
				if msg, failed := result["error"]; failed {
					return fmt.Errorf("%v", msg)
				}
				return nil
			},
		},
	}
	githubBase := cfg.GitHubBaseURL
	if githubBase == "" {
		githubBase = "https://api.github.com"
	}
	checks = append(checks, health.HTTPCheck("github", githubBase, nil))

	checker, err := health.NewChecker(health.Config{
		Schedule: schedule,
		Checks:   checks,
		Logger:   logger,
	})
	if err != nil {
		return exitError(1, "%v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watch {
		checker.Run(ctx)
		return nil
	}
	checker.RunOnce(ctx)
	return nil
}
