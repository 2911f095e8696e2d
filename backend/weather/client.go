// Package weather implements the weather_get_current tool against the
// companion relay service.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/petal-labs/toolgate/tool"
)

// Config configures a weather client.
type Config struct {
	// URL is the relay's weather endpoint, e.g. http://localhost:5000/weather.
	URL    string
	Client *http.Client
}

// Client queries the relay for current conditions.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a weather client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{url: cfg.URL, http: httpClient}
}

// GetCurrent fetches the current weather for a location. Relay-supplied
// error payloads pass through untouched; otherwise the OpenWeatherMap shape
// is flattened to a compact summary.
func (c *Client) GetCurrent(ctx context.Context, location string) map[string]any {
	endpoint := c.url + "?" + url.Values{"location": {location}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("Error calling custom weather API: %v", err)}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("Could not connect to custom weather API at %s. Is it running?", c.url)}
	}
	defer resp.Body.Close()

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return map[string]any{"error": fmt.Sprintf("Error calling custom weather API: %v", err)}
	}
	if _, failed := data["error"]; failed {
		return data
	}
	if resp.StatusCode != http.StatusOK {
		return map[string]any{"error": fmt.Sprintf("Error calling custom weather API: HTTP %d", resp.StatusCode)}
	}

	name := location
	if s, ok := data["name"].(string); ok && s != "" {
		name = s
	}

	main, _ := data["main"].(map[string]any)
	var temp, humidity any = "N/A", "N/A"
	if main != nil {
		if v, ok := main["temp"]; ok {
			temp = v
		}
		if v, ok := main["humidity"]; ok {
			humidity = v
		}
	}

	conditions := "N/A"
	if list, ok := data["weather"].([]any); ok && len(list) > 0 {
		if entry, ok := list[0].(map[string]any); ok {
			if desc, ok := entry["description"].(string); ok && desc != "" {
				conditions = capitalize(desc)
			}
		}
	}

	return map[string]any{
		"location":         name,
		"conditions":       conditions,
		"temperature_c":    temp,
		"humidity_percent": humidity,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Definitions returns the weather tool family bound to c.
func Definitions(c *Client) []tool.Definition {
	return []tool.Definition{
		{
			Name:        "weather_get_current",
			Description: "Gets the current weather for a location.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("location", "City name or zip code for weather"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.GetCurrent(ctx, args.String("location")), nil
			},
		},
	}
}
