// Package health runs scheduled reachability checks against the gateway's
// upstream services and logs the results.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
)

// Check probes one upstream and returns an error when it is unhealthy.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Config configures the checker.
type Config struct {
	// Schedule is a cron expression; defaults to every five minutes.
	Schedule string
	Checks   []Check
	Logger   *slog.Logger
	Timeout  time.Duration
}

// Checker runs checks on a cron schedule.
type Checker struct {
	schedule cron.Schedule
	checks   []Check
	logger   *slog.Logger
	timeout  time.Duration
}

// NewChecker creates a checker, validating the cron expression up front.
func NewChecker(cfg Config) (*Checker, error) {
	expr := cfg.Schedule
	if expr == "" {
		expr = "*/5 * * * *"
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("health: parse schedule %q: %w", expr, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		schedule: schedule,
		checks:   cfg.Checks,
		logger:   logger,
		timeout:  timeout,
	}, nil
}

// Run executes checks on the schedule until ctx is canceled. It runs one
// round immediately on start.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)
	for {
		next := c.schedule.Next(time.Now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
			c.RunOnce(ctx)
		}
	}
}

// RunOnce executes every check once.
func (c *Checker) RunOnce(ctx context.Context) {
	for _, check := range c.checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		err := check.Probe(checkCtx)
		cancel()

		elapsed := time.Since(start)
		if err != nil {
			c.logger.Warn("health check failed", "check", check.Name, "elapsed", elapsed, "error", err)
			continue
		}
		c.logger.Info("health check ok", "check", check.Name, "elapsed", elapsed)
	}
}

// HTTPCheck probes a URL with GET and treats any response below 500 as
// healthy; reachability is the question, not correctness.
func HTTPCheck(name, url string, client *http.Client) Check {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return Check{
		Name: name,
		Probe: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("status %d", resp.StatusCode)
			}
			return nil
		},
	}
}
