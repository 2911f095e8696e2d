package cli

import (
	"github.com/petal-labs/toolgate/backend/fs"
	"github.com/petal-labs/toolgate/backend/github"
	"github.com/petal-labs/toolgate/backend/sentry"
	"github.com/petal-labs/toolgate/backend/weather"
	"github.com/petal-labs/toolgate/config"
	"github.com/petal-labs/toolgate/tool"
)

// buildCatalog assembles the complete tool catalog from configuration.
// Backend families keep a fixed order: filesystem, GitHub, Sentry, weather.
func buildCatalog(cfg config.Config) (*tool.Catalog, error) {
	fsService := fs.NewService()
	ghClient := github.NewClient(github.Config{
		Token:   cfg.GitHubToken,
		BaseURL: cfg.GitHubBaseURL,
	})
	sentryClient := sentry.NewClient(sentry.Config{
		Token:        cfg.SentryToken,
		Organization: cfg.SentryOrg,
		BaseURL:      cfg.SentryBaseURL,
	})
	weatherClient := weather.NewClient(weather.Config{URL: cfg.WeatherURL})

	return tool.NewCatalog(
		fs.Definitions(fsService),
		github.Definitions(ghClient),
		sentry.Definitions(sentryClient),
		weather.Definitions(weatherClient),
	)
}
