package sentry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		Token:        "test-token",
		Organization: "acme",
		BaseURL:      server.URL,
	})
}

func TestMissingCredentialsAreDomainErrors(t *testing.T) {
	client := NewClient(Config{})
	result := client.ListProjects(context.Background())
	msg, _ := result["error"].(string)
	if !strings.Contains(msg, "SENTRY_AUTH_TOKEN not set") {
		t.Fatalf("error = %q", msg)
	}
	if !strings.Contains(msg, "SENTRY_ORG_SLUG not set") {
		t.Fatalf("error = %q", msg)
	}

	client = NewClient(Config{Token: "t"})
	result = client.ListProjects(context.Background())
	msg, _ = result["error"].(string)
	if strings.Contains(msg, "SENTRY_AUTH_TOKEN") || !strings.Contains(msg, "SENTRY_ORG_SLUG not set") {
		t.Fatalf("error = %q", msg)
	}
}

func TestGetIssuesValidatesProjectFirst(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/projects/acme/ghost/" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"The requested resource does not exist"}`))
			return
		}
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))

	result := client.GetIssues(context.Background(), "ghost", "", "24h")
	if result["error"] != "Project 'ghost' not found in organization 'acme'" {
		t.Fatalf("error = %v", result["error"])
	}
}

func TestGetIssuesReturnsSummaries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/acme/web/":
			_, _ = w.Write([]byte(`{"id":"1","slug":"web","name":"Web","platform":"go","status":"active"}`))
		case "/projects/acme/web/issues/":
			if got := r.URL.Query().Get("statsPeriod"); got != "24h" {
				t.Errorf("statsPeriod = %q", got)
			}
			_, _ = w.Write([]byte(`[
				{"id":"42","title":"TypeError","count":"17","userCount":3,"level":"error",
				 "status":"unresolved","permalink":"https://sentry.io/x","culprit":"app.main",
				 "type":"error","metadata":{"value":"boom"}}
			]`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))

	result := client.GetIssues(context.Background(), "web", "", "24h")
	if _, failed := result["error"]; failed {
		t.Fatalf("GetIssues: %v", result["error"])
	}
	issues, ok := result["issues"].([]map[string]any)
	if !ok || len(issues) != 1 {
		t.Fatalf("issues = %v", result["issues"])
	}
	if issues[0]["id"] != "42" || issues[0]["count"] != "17" || issues[0]["culprit"] != "app.main" {
		t.Fatalf("issue = %v", issues[0])
	}
}

func TestGetErrorFrequencySumsBuckets(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/acme/web/stats/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("stat"); got != "received" {
			t.Errorf("stat = %q", got)
		}
		_, _ = w.Write([]byte(`[[1700000000,5],[1700086400,7],[1700172800,0]]`))
	}))

	result := client.GetErrorFrequency(context.Background(), "web", 3)
	stats, ok := result["statistics"].(map[string]any)
	if !ok {
		t.Fatalf("result = %v", result)
	}
	if stats["total_errors"] != 12.0 {
		t.Fatalf("total_errors = %v", stats["total_errors"])
	}
	if stats["average_per_day"] != 4.0 {
		t.Fatalf("average_per_day = %v", stats["average_per_day"])
	}
	if stats["timeframe"] != "Last 3 days" {
		t.Fatalf("timeframe = %v", stats["timeframe"])
	}
}

func TestUpdateIssueStatusUsesProjectScopedPath(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/projects/acme/web/issues/42/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"42","status":"resolved"}`))
	}))

	result := client.UpdateIssueStatus(context.Background(), "web", "42", "resolved")
	if result["status"] != "success" {
		t.Fatalf("result = %v", result)
	}
	if result["message"] != "Issue 42 status updated to resolved" {
		t.Fatalf("message = %v", result["message"])
	}
}

func TestGetDetailedStacktraceUsesBareIssuePath(t *testing.T) {
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/issues/42/":
			_, _ = w.Write([]byte(`{"id":"42","title":"TypeError","level":"error","culprit":"app.main"}`))
		case "/issues/42/events/latest/":
			_, _ = w.Write([]byte(`{"entries":[
				{"type":"exception","data":{"values":[{"stacktrace":{"frames":[
					{"filename":"main.go","function":"run","lineno":10,"in_app":false},
					{"filename":"handler.go","function":"Handle","lineno":33,"in_app":true}
				]}}]}}
			]}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))

	result := client.GetDetailedStacktrace(context.Background(), "web", "42")
	if _, failed := result["error"]; failed {
		t.Fatalf("GetDetailedStacktrace: %v", result["error"])
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}

	analysis, ok := result["stacktrace_analysis"].(map[string]any)
	if !ok {
		t.Fatalf("result = %v", result)
	}
	if analysis["total_frames"] != 2 || analysis["in_app_frames"] != 1 {
		t.Fatalf("analysis = %v", analysis)
	}

	propagation := analysis["error_propagation"].(map[string]any)
	origin := propagation["error_origin"].(map[string]any)
	rootCause := propagation["root_cause"].(map[string]any)
	if origin["filename"] != "main.go" {
		t.Fatalf("error_origin = %v", origin)
	}
	if rootCause["filename"] != "handler.go" {
		t.Fatalf("root_cause = %v", rootCause)
	}
}

func TestAnalyzeErrorPatternsAggregates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/acme/web/issues/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id":"1","title":"A","type":"error","level":"error","platform":"go","priority":"high","count":"10","userCount":4},
			{"id":"2","title":"B","type":"error","level":"warning","platform":"go","priority":"medium","count":"3","userCount":1},
			{"id":"3","title":"C","type":"csp","level":"error","platform":"javascript","count":"1","userCount":1}
		]`))
	}))

	result := client.AnalyzeErrorPatterns(context.Background(), "web", 7)
	if _, failed := result["error"]; failed {
		t.Fatalf("AnalyzeErrorPatterns: %v", result["error"])
	}
	if result["total_issues"] != 3 {
		t.Fatalf("total_issues = %v", result["total_issues"])
	}

	distribution := result["error_distribution"].(map[string]any)
	byType := distribution["by_type"].(map[string]any)
	if byType["error"] != 2 || byType["csp"] != 1 {
		t.Fatalf("by_type = %v", byType)
	}

	frequency := result["frequency_analysis"].(map[string]any)
	if frequency["total_errors"] != int64(14) {
		t.Fatalf("total_errors = %v", frequency["total_errors"])
	}
	if frequency["total_users_affected"] != int64(6) {
		t.Fatalf("total_users_affected = %v", frequency["total_users_affected"])
	}

	mostFrequent := frequency["most_frequent_errors"].([]any)
	first := mostFrequent[0].(map[string]any)
	if first["id"] != "1" {
		t.Fatalf("most frequent = %v", first)
	}

	priorities := result["priority_analysis"].(map[string]any)
	if priorities["high"] != 1 || priorities["medium"] != 2 {
		t.Fatalf("priority_analysis = %v", priorities)
	}
}
