// Package sentry implements the sentry_* tool family over the Sentry REST
// API. Most operations are project-scoped under
// /projects/{org}/{project}/...; issue status updates keep that shape while
// detailed stacktraces use the bare /issues/{id}/ base path, exactly as the
// upstream API exposes them.
package sentry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://sentry.io/api/0"

// Config configures a Sentry client.
type Config struct {
	// Token and Organization are pre-configured credentials. Construction
	// never fails on absence; calls report a domain error instead.
	Token        string
	Organization string
	BaseURL      string
	Client       *http.Client
}

// Client is a minimal Sentry REST client covering the dispatched operations.
type Client struct {
	token   string
	org     string
	baseURL string
	http    *http.Client
}

// NewClient creates a Sentry client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		token:   cfg.Token,
		org:     cfg.Organization,
		baseURL: base,
		http:    httpClient,
	}
}

func errResult(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

func (c *Client) validateConfig() map[string]any {
	var errs []string
	if c.token == "" {
		errs = append(errs, "SENTRY_AUTH_TOKEN not set in environment variables")
	}
	if c.org == "" {
		errs = append(errs, "SENTRY_ORG_SLUG not set in environment variables")
	}
	if len(errs) > 0 {
		return errResult("Configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.request(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("Network error: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return apiStatusError(resp.StatusCode, data, endpoint)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiStatusError(status int, body []byte, endpoint string) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
		message = payload.Detail
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return fmt.Errorf("Sentry API Error (%d): %s", status, message)
}

// ListProjects lists all projects in the organization.
func (c *Client) ListProjects(ctx context.Context) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}
	var projects []map[string]any
	if err := c.get(ctx, "/organizations/"+c.org+"/projects/", nil, &projects); err != nil {
		return errResult("%v", err)
	}
	out := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		out = append(out, map[string]any{
			"id":           p["id"],
			"slug":         p["slug"],
			"name":         p["name"],
			"platform":     p["platform"],
			"status":       p["status"],
			"dateCreated":  p["dateCreated"],
			"isBookmarked": boolOrDefault(p["isBookmarked"], false),
		})
	}
	return map[string]any{"projects": out}
}

// ValidateProject checks that a project exists and is accessible.
func (c *Client) ValidateProject(ctx context.Context, projectSlug string) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}
	var project map[string]any
	err := c.get(ctx, "/projects/"+c.org+"/"+projectSlug+"/", nil, &project)
	if err != nil {
		if strings.Contains(err.Error(), "(404)") {
			return errResult("Project '%s' not found in organization '%s'", projectSlug, c.org)
		}
		return errResult("Project validation failed: %v", err)
	}
	return map[string]any{
		"status": "valid",
		"project": map[string]any{
			"id":       project["id"],
			"slug":     project["slug"],
			"name":     project["name"],
			"platform": project["platform"],
			"status":   project["status"],
		},
	}
}

// TestConnection verifies credentials against the organization endpoint.
func (c *Client) TestConnection(ctx context.Context) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}
	var org map[string]any
	if err := c.get(ctx, "/organizations/"+c.org+"/", nil, &org); err != nil {
		return errResult("Connection test failed: %v", err)
	}
	return map[string]any{
		"status": "success",
		"organization": map[string]any{
			"name": org["name"],
			"slug": org["slug"],
			"id":   org["id"],
		},
	}
}

func issueSummary(issue map[string]any) map[string]any {
	return map[string]any{
		"id":        issue["id"],
		"title":     issue["title"],
		"count":     issue["count"],
		"userCount": issue["userCount"],
		"firstSeen": issue["firstSeen"],
		"lastSeen":  issue["lastSeen"],
		"level":     issue["level"],
		"status":    issue["status"],
		"permalink": issue["permalink"],
		"culprit":   stringOrDefault(issue["culprit"], ""),
		"type":      issue["type"],
		"metadata":  mapOrDefault(issue["metadata"]),
	}
}

// GetIssues retrieves issues for a project, validating the project first.
func (c *Client) GetIssues(ctx context.Context, projectSlug, query, statsPeriod string) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}
	validation := c.ValidateProject(ctx, projectSlug)
	if _, failed := validation["error"]; failed {
		return validation
	}

	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	if statsPeriod != "" {
		params.Set("statsPeriod", statsPeriod)
	}

	var issues []map[string]any
	if err := c.get(ctx, "/projects/"+c.org+"/"+projectSlug+"/issues/", params, &issues); err != nil {
		if strings.Contains(err.Error(), "(403)") {
			return errResult("Authentication failed. Please check your SENTRY_AUTH_TOKEN")
		}
		return errResult("%v", err)
	}

	out := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issueSummary(issue))
	}
	return map[string]any{
		"project": validation["project"],
		"issues":  out,
	}
}

// GetIssueDetails retrieves one issue plus its latest event's stacktrace
// entries.
func (c *Client) GetIssueDetails(ctx context.Context, projectSlug, issueID string) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}

	base := "/projects/" + c.org + "/" + projectSlug + "/issues/" + issueID + "/"
	var issue map[string]any
	if err := c.get(ctx, base, nil, &issue); err != nil {
		return errResult("%v", err)
	}

	var event map[string]any
	if err := c.get(ctx, base+"events/latest/", nil, &event); err != nil {
		return errResult("%v", err)
	}

	detail := issueSummary(issue)
	detail["stacktrace"] = sliceOrDefault(event["entries"])
	detail["tags"] = sliceOrDefault(issue["tags"])
	detail["assignedTo"] = issue["assignedTo"]
	detail["subscribed"] = boolOrDefault(issue["subscribed"], false)
	return map[string]any{"issue": detail}
}

// GetErrorFrequency aggregates received-event counts over a day window.
func (c *Client) GetErrorFrequency(ctx context.Context, projectSlug string, days int64) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}

	end := time.Now()
	start := end.AddDate(0, 0, -int(days))
	params := url.Values{
		"stat":       {"received"},
		"resolution": {"1d"},
		"since":      {strconv.FormatInt(start.Unix(), 10)},
		"until":      {strconv.FormatInt(end.Unix(), 10)},
	}

	buckets, err := c.fetchStats(ctx, projectSlug, params)
	if err != nil {
		return errResult("%v", err)
	}

	var total float64
	for _, count := range buckets {
		total += count
	}
	average := 0.0
	if len(buckets) > 0 {
		average = total / float64(len(buckets))
	}
	return map[string]any{
		"statistics": map[string]any{
			"timeframe":       fmt.Sprintf("Last %d days", days),
			"data":            buckets,
			"total_errors":    total,
			"average_per_day": average,
		},
	}
}

// fetchStats returns per-bucket counts from the project stats endpoint,
// which responds with [timestamp, count] pairs.
func (c *Client) fetchStats(ctx context.Context, projectSlug string, params url.Values) ([]float64, error) {
	var pairs [][]float64
	if err := c.get(ctx, "/projects/"+c.org+"/"+projectSlug+"/stats/", params, &pairs); err != nil {
		return nil, err
	}
	counts := make([]float64, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) >= 2 {
			counts = append(counts, pair[1])
		}
	}
	return counts, nil
}

// GetErrorPatterns groups a project's issues by type, level, and culprit.
func (c *Client) GetErrorPatterns(ctx context.Context, projectSlug string, days int64) map[string]any {
	issues := c.GetIssues(ctx, projectSlug, "", fmt.Sprintf("%dd", days))
	if _, failed := issues["error"]; failed {
		return issues
	}

	list, _ := issues["issues"].([]map[string]any)
	byType := map[string]int{}
	byLevel := map[string]int{}
	byCulprit := map[string]int{}
	for _, issue := range list {
		byType[stringOrDefault(issue["type"], "unknown")]++
		byLevel[stringOrDefault(issue["level"], "unknown")]++
		byCulprit[stringOrDefault(issue["culprit"], "")]++
	}

	type culpritCount struct {
		Culprit string
		Count   int
	}
	ranked := make([]culpritCount, 0, len(byCulprit))
	for culprit, count := range byCulprit {
		ranked = append(ranked, culpritCount{culprit, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Culprit < ranked[j].Culprit
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	top := make([]any, 0, len(ranked))
	for _, entry := range ranked {
		top = append(top, []any{entry.Culprit, entry.Count})
	}

	return map[string]any{
		"patterns": map[string]any{
			"timeframe":              fmt.Sprintf("Last %d days", days),
			"total_issues":           len(list),
			"by_type":                intMapToAny(byType),
			"by_level":               intMapToAny(byLevel),
			"by_culprit":             intMapToAny(byCulprit),
			"most_frequent_culprits": top,
		},
	}
}

// UpdateIssueStatus sets an issue's status via the project-scoped path.
func (c *Client) UpdateIssueStatus(ctx context.Context, projectSlug, issueID, status string) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}

	path := "/projects/" + c.org + "/" + projectSlug + "/issues/" + issueID + "/"
	var updated map[string]any
	if err := c.request(ctx, http.MethodPut, path, nil, map[string]any{"status": status}, &updated); err != nil {
		return errResult("%v", err)
	}
	return map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("Issue %s status updated to %s", issueID, status),
		"issue":   updated,
	}
}

// GetProjectStats collects received-event statistics for standard periods
// plus the current issue count.
func (c *Client) GetProjectStats(ctx context.Context, projectSlug string) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}

	stats := map[string]any{}
	rates := map[string]any{}
	for _, period := range []string{"1h", "24h", "7d", "30d"} {
		resolution := "1d"
		if period == "1h" {
			resolution = "1h"
		}
		params := url.Values{
			"stat":       {"received"},
			"resolution": {resolution},
		}
		buckets, err := c.fetchStats(ctx, projectSlug, params)
		if err != nil {
			return errResult("%v", err)
		}
		stats[period] = buckets

		var total float64
		for _, count := range buckets {
			total += count
		}
		rate := 0.0
		if len(buckets) > 0 {
			rate = total / float64(len(buckets))
		}
		rates[period] = rate
	}

	currentIssues := 0
	if issues := c.GetIssues(ctx, projectSlug, "", "24h"); issues["error"] == nil {
		if list, ok := issues["issues"].([]map[string]any); ok {
			currentIssues = len(list)
		}
	}

	return map[string]any{
		"project_health": map[string]any{
			"name":           projectSlug,
			"organization":   c.org,
			"statistics":     stats,
			"current_issues": currentIssues,
			"error_rates":    rates,
		},
	}
}

// GetDetailedStacktrace retrieves an issue and its latest event through the
// bare issue-id-scoped base path and analyzes the exception frames.
func (c *Client) GetDetailedStacktrace(ctx context.Context, projectSlug, issueID string) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}

	var issue map[string]any
	if err := c.get(ctx, "/issues/"+issueID+"/", nil, &issue); err != nil {
		return errResult("Failed to get detailed stacktrace: %v", err)
	}
	var event map[string]any
	if err := c.get(ctx, "/issues/"+issueID+"/events/latest/", nil, &event); err != nil {
		return errResult("Failed to get detailed stacktrace: %v", err)
	}

	frames := exceptionFrames(event)
	inApp := 0
	for _, frame := range frames {
		if isInApp, _ := frame["is_in_app"].(bool); isInApp {
			inApp++
		}
	}

	var rootCause, errorOrigin any
	if len(frames) > 0 {
		rootCause = frames[len(frames)-1]
		errorOrigin = frames[0]
	}

	return map[string]any{
		"issue": map[string]any{
			"id":        issue["id"],
			"title":     issue["title"],
			"type":      issue["type"],
			"level":     issue["level"],
			"status":    issue["status"],
			"priority":  issue["priority"],
			"platform":  issue["platform"],
			"count":     issue["count"],
			"userCount": issue["userCount"],
			"firstSeen": issue["firstSeen"],
			"lastSeen":  issue["lastSeen"],
			"culprit":   issue["culprit"],
			"metadata":  mapOrDefault(issue["metadata"]),
			"permalink": issue["permalink"],
		},
		"stacktrace_analysis": map[string]any{
			"total_frames":  len(frames),
			"in_app_frames": inApp,
			"frames":        frames,
			"error_propagation": map[string]any{
				"root_cause":   rootCause,
				"error_origin": errorOrigin,
			},
		},
	}
}

func exceptionFrames(event map[string]any) []map[string]any {
	out := make([]map[string]any, 0)
	for _, rawEntry := range sliceOrDefault(event["entries"]) {
		entry, ok := rawEntry.(map[string]any)
		if !ok || entry["type"] != "exception" {
			continue
		}
		data := mapOrDefault(entry["data"])
		for _, rawValue := range sliceOrDefault(data["values"]) {
			value, ok := rawValue.(map[string]any)
			if !ok {
				continue
			}
			stacktrace := mapOrDefault(value["stacktrace"])
			for _, rawFrame := range sliceOrDefault(stacktrace["frames"]) {
				frame, ok := rawFrame.(map[string]any)
				if !ok {
					continue
				}
				out = append(out, map[string]any{
					"filename":      frame["filename"],
					"function":      frame["function"],
					"line_number":   frame["lineno"],
					"column_number": frame["colno"],
					"context":       sliceOrDefault(frame["context"]),
					"variables":     mapOrDefault(frame["vars"]),
					"is_in_app":     boolOrDefault(frame["in_app"], false),
					"module":        frame["module"],
					"package":       frame["package"],
					"abs_path":      frame["abs_path"],
					"pre_context":   sliceOrDefault(frame["pre_context"]),
					"post_context":  sliceOrDefault(frame["post_context"]),
				})
			}
		}
	}
	return out
}

// AnalyzeErrorPatterns performs full distribution, frequency, platform, and
// priority analysis of a project's issues.
func (c *Client) AnalyzeErrorPatterns(ctx context.Context, projectSlug string, days int64) map[string]any {
	if bad := c.validateConfig(); bad != nil {
		return bad
	}

	var issues []map[string]any
	if err := c.get(ctx, "/projects/"+c.org+"/"+projectSlug+"/issues/", nil, &issues); err != nil {
		return errResult("Failed to analyze error patterns: %v", err)
	}

	byType := map[string]int{}
	byLevel := map[string]int{}
	byPlatform := map[string]int{}
	byPriority := map[string]int{}
	platformAnalysis := map[string]any{}
	priorityAnalysis := map[string]int{"high": 0, "medium": 0, "low": 0}
	var totalErrors, totalUsers int64

	type rankedIssue struct {
		entry map[string]any
		count int64
	}
	ranked := make([]rankedIssue, 0, len(issues))

	for _, issue := range issues {
		errType := stringOrDefault(issue["type"], "unknown")
		level := stringOrDefault(issue["level"], "unknown")
		platform := stringOrDefault(issue["platform"], "unknown")
		priority := stringOrDefault(issue["priority"], "medium")

		byType[errType]++
		byLevel[level]++
		byPlatform[platform]++
		byPriority[priority]++
		priorityAnalysis[priority]++

		userCount := intOrZero(issue["userCount"])
		errorCount := intOrZero(issue["count"])
		totalUsers += userCount
		totalErrors += errorCount

		platformEntry, ok := platformAnalysis[platform].(map[string]any)
		if !ok {
			platformEntry = map[string]any{
				"total_errors": int64(0),
				"total_users":  int64(0),
				"issues":       []any{},
			}
		}
		platformEntry["total_errors"] = platformEntry["total_errors"].(int64) + errorCount
		platformEntry["total_users"] = platformEntry["total_users"].(int64) + userCount
		platformEntry["issues"] = append(platformEntry["issues"].([]any), map[string]any{
			"id":        issue["id"],
			"title":     issue["title"],
			"count":     errorCount,
			"userCount": userCount,
			"priority":  priority,
		})
		platformAnalysis[platform] = platformEntry

		ranked = append(ranked, rankedIssue{
			entry: map[string]any{
				"id":        issue["id"],
				"title":     issue["title"],
				"count":     errorCount,
				"userCount": userCount,
				"priority":  issue["priority"],
				"platform":  issue["platform"],
				"firstSeen": issue["firstSeen"],
				"lastSeen":  issue["lastSeen"],
			},
			count: errorCount,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	mostFrequent := make([]any, 0, len(ranked))
	for _, r := range ranked {
		mostFrequent = append(mostFrequent, r.entry)
	}

	return map[string]any{
		"timeframe":    fmt.Sprintf("Last %d days", days),
		"total_issues": len(issues),
		"error_distribution": map[string]any{
			"by_type":     intMapToAny(byType),
			"by_level":    intMapToAny(byLevel),
			"by_platform": intMapToAny(byPlatform),
			"by_priority": intMapToAny(byPriority),
		},
		"frequency_analysis": map[string]any{
			"total_errors":         totalErrors,
			"total_users_affected": totalUsers,
			"most_frequent_errors": mostFrequent,
		},
		"platform_analysis": platformAnalysis,
		"priority_analysis": intMapToAny(priorityAnalysis),
	}
}

func stringOrDefault(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func boolOrDefault(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func mapOrDefault(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func sliceOrDefault(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return []any{}
}

// intOrZero handles the API's mixed numeric encodings: counts arrive as
// strings, user counts as numbers.
func intOrZero(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func intMapToAny(in map[string]int) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
