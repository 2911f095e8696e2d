package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup. (t.Chdir requires Go 1.24.)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SentryBaseURL != "https://sentry.io/api/0" {
		t.Fatalf("SentryBaseURL = %q", cfg.SentryBaseURL)
	}
	if cfg.RelayPort != 5000 {
		t.Fatalf("RelayPort = %d", cfg.RelayPort)
	}
	if cfg.WeatherURL != "http://localhost:5000/weather" {
		t.Fatalf("WeatherURL = %q", cfg.WeatherURL)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "github_token: file-token\nsentry_org: acme\nrelay_port: 6100\n"
	if err := os.WriteFile(filepath.Join(dir, "toolgate.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHubToken != "file-token" {
		t.Fatalf("GitHubToken = %q", cfg.GitHubToken)
	}
	if cfg.SentryOrg != "acme" {
		t.Fatalf("SentryOrg = %q", cfg.SentryOrg)
	}
	if cfg.WeatherURL != "http://localhost:6100/weather" {
		t.Fatalf("WeatherURL = %q", cfg.WeatherURL)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "github_token: file-token\n"
	if err := os.WriteFile(filepath.Join(dir, "toolgate.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("CUSTOM_WEATHER_API_PORT", "7200")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHubToken != "env-token" {
		t.Fatalf("GitHubToken = %q", cfg.GitHubToken)
	}
	if cfg.RelayPort != 7200 {
		t.Fatalf("RelayPort = %d", cfg.RelayPort)
	}
}

func TestExplicitMissingPathIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}
