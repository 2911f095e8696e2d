package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{URL: server.URL + "/weather"})
}

func TestGetCurrentFlattensUpstreamShape(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("location"); got != "London" {
			t.Errorf("location = %q", got)
		}
		_, _ = w.Write([]byte(`{
			"name":"London",
			"main":{"temp":14.2,"humidity":81},
			"weather":[{"description":"light rain"}]
		}`))
	}))

	result := client.GetCurrent(context.Background(), "London")
	want := map[string]any{
		"location":         "London",
		"conditions":       "Light rain",
		"temperature_c":    14.2,
		"humidity_percent": 81.0,
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestGetCurrentPassesThroughErrorPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Location 'Nowhereville' not found."}`))
	}))

	result := client.GetCurrent(context.Background(), "Nowhereville")
	if result["error"] != "Location 'Nowhereville' not found." {
		t.Fatalf("result = %v", result)
	}
}

func TestGetCurrentConnectionRefused(t *testing.T) {
	// Port 1 is reserved; nothing listens there.
	client := NewClient(Config{URL: "http://localhost:1/weather"})

	result := client.GetCurrent(context.Background(), "London")
	msg, _ := result["error"].(string)
	if !strings.HasPrefix(msg, "Could not connect to custom weather API at http://localhost:1/weather") {
		t.Fatalf("error = %q", msg)
	}
	if !strings.HasSuffix(msg, "Is it running?") {
		t.Fatalf("error = %q", msg)
	}
}

func TestGetCurrentMissingFieldsDegradeToNA(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	result := client.GetCurrent(context.Background(), "Springfield")
	if result["location"] != "Springfield" {
		t.Fatalf("location = %v", result["location"])
	}
	if result["conditions"] != "N/A" || result["temperature_c"] != "N/A" || result["humidity_percent"] != "N/A" {
		t.Fatalf("result = %v", result)
	}
}
