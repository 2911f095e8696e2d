// Package config loads gateway settings from an optional YAML file layered
// under environment variables. Missing backend credentials are never fatal
// here; each backend reports its own configuration errors at call time.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "toolgate.yaml"
	homeConfigName    = "config.yaml"

	defaultSentryBaseURL = "https://sentry.io/api/0"
	defaultWeatherPort   = 5000
)

// Config holds settings for every backend plus the relay.
type Config struct {
	GitHubToken   string `yaml:"github_token"`
	GitHubBaseURL string `yaml:"github_base_url"`

	SentryToken   string `yaml:"sentry_token"`
	SentryOrg     string `yaml:"sentry_org"`
	SentryBaseURL string `yaml:"sentry_base_url"`

	WeatherURL     string `yaml:"weather_url"`
	OpenWeatherKey string `yaml:"openweather_key"`
	RelayPort      int    `yaml:"relay_port"`

	AuditDBPath string `yaml:"audit_db"`
}

// Load resolves configuration: .env file (if present), then an optional YAML
// file, then environment variables, which win. explicitPath forces a specific
// YAML file and errors when it does not exist.
func Load(explicitPath string) (Config, error) {
	// Best effort; a missing .env is the common case.
	_ = godotenv.Load()

	cfg := Config{}

	path, found, err := discoverPath(explicitPath)
	if err != nil {
		return Config{}, err
	}
	if found {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func discoverPath(explicitPath string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".toolgate", homeConfigName))
		}
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

func (c *Config) applyEnv() {
	setIfEnv(&c.GitHubToken, "GITHUB_TOKEN")
	setIfEnv(&c.GitHubBaseURL, "GITHUB_API_URL")
	setIfEnv(&c.SentryToken, "SENTRY_AUTH_TOKEN")
	setIfEnv(&c.SentryOrg, "SENTRY_ORG_SLUG")
	setIfEnv(&c.SentryBaseURL, "SENTRY_API_URL")
	setIfEnv(&c.WeatherURL, "WEATHER_API_URL")
	setIfEnv(&c.OpenWeatherKey, "OPENWEATHER_API_KEY")
	setIfEnv(&c.AuditDBPath, "TOOLGATE_AUDIT_DB")

	if raw := os.Getenv("CUSTOM_WEATHER_API_PORT"); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			c.RelayPort = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.SentryBaseURL == "" {
		c.SentryBaseURL = defaultSentryBaseURL
	}
	if c.RelayPort == 0 {
		c.RelayPort = defaultWeatherPort
	}
	if c.WeatherURL == "" {
		c.WeatherURL = fmt.Sprintf("http://localhost:%d/weather", c.RelayPort)
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
