// Package relay exposes the custom weather HTTP service that the
// weather_get_current tool consumes. It proxies OpenWeatherMap and rewrites
// its failure modes into stable error payloads.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
)

const openWeatherURL = "http://api.openweathermap.org/data/2.5/weather"

// Config configures the relay service.
type Config struct {
	APIKey   string
	Upstream string
	Logger   *slog.Logger
	Client   *http.Client
}

// Service is the relay HTTP service.
type Service struct {
	apiKey   string
	upstream string
	logger   *slog.Logger
	http     *http.Client
}

// NewService creates a relay service.
func NewService(cfg Config) *Service {
	upstream := cfg.Upstream
	if upstream == "" {
		upstream = openWeatherURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Service{
		apiKey:   cfg.APIKey,
		upstream: upstream,
		logger:   logger,
		http:     httpClient,
	}
}

// Router builds the HTTP routes.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/weather", s.handleWeather).Methods(http.MethodGet)
	return r
}

func (s *Service) handleWeather(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Location parameter is required."})
		return
	}

	data, ok := s.fetch(r.Context(), location)
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, data)
}

// fetch returns the upstream payload, or an error payload with ok=false.
func (s *Service) fetch(ctx context.Context, location string) (map[string]any, bool) {
	if s.apiKey == "" {
		return map[string]any{"error": "OpenWeatherMap API key not found."}, false
	}

	params := url.Values{
		"q":     {location},
		"appid": {s.apiKey},
		"units": {"metric"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.upstream+"?"+params.Encode(), nil)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("Request error: %v", err)}, false
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("Request error: %v", err)}, false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return map[string]any{"error": fmt.Sprintf("Location '%s' not found.", location)}, false
	case http.StatusUnauthorized:
		return map[string]any{"error": "Invalid OpenWeatherMap API key."}, false
	default:
		return map[string]any{"error": fmt.Sprintf("HTTP error occurred: status %d", resp.StatusCode)}, false
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return map[string]any{"error": fmt.Sprintf("Request error: %v", err)}, false
	}
	return data, true
}

// ListenAndServe runs the relay until ctx is canceled.
func (s *Service) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("weather relay listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
