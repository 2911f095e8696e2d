package sentry

import (
	"context"

	"github.com/petal-labs/toolgate/tool"
)

func projectField() tool.FieldSpec {
	return tool.StringField("project_slug", "Sentry project slug")
}

// Definitions returns the sentry_* tool family bound to c.
func Definitions(c *Client) []tool.Definition {
	return []tool.Definition{
		{
			Name:        "sentry_get_issues",
			Description: "Gets issues for a Sentry project with optional filtering.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				projectField(),
				tool.OptionalStringField("query", "Optional search query to filter issues", ""),
				tool.OptionalStringField("stats_period", "Time period for stats (e.g., '24h', '7d')", "24h"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.GetIssues(ctx, args.String("project_slug"), args.String("query"), args.String("stats_period")), nil
			},
		},
		{
			Name:        "sentry_get_issue_details",
			Description: "Gets detailed information about a specific issue including stacktrace.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				projectField(),
				tool.StringField("issue_id", "ID of the issue to get details for"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.GetIssueDetails(ctx, args.String("project_slug"), args.String("issue_id")), nil
			},
		},
		{
			Name:        "sentry_get_error_frequency",
			Description: "Gets error frequency statistics over a time period.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				projectField(),
				tool.OptionalIntField("days", "Number of days to analyze", 7),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.GetErrorFrequency(ctx, args.String("project_slug"), args.Int("days")), nil
			},
		},
		{
			Name:        "sentry_get_error_patterns",
			Description: "Analyzes error patterns and groups similar errors.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				projectField(),
				tool.OptionalIntField("days", "Number of days to analyze patterns", 7),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.GetErrorPatterns(ctx, args.String("project_slug"), args.Int("days")), nil
			},
		},
		{
			Name:        "sentry_update_issue_status",
			Description: "Updates the status of a Sentry issue.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				projectField(),
				tool.StringField("issue_id", "ID of the issue to update"),
				tool.StringField("status", "New status (resolved, ignored, unresolved)"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.UpdateIssueStatus(ctx, args.String("project_slug"), args.String("issue_id"), args.String("status")), nil
			},
		},
		{
			Name:        "sentry_get_project_stats",
			Description: "Gets overall project statistics and health metrics.",
			Schema:      tool.Schema{Fields: []tool.FieldSpec{projectField()}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.GetProjectStats(ctx, args.String("project_slug")), nil
			},
		},
		{
			Name:        "sentry_get_detailed_stacktrace",
			Description: "Gets detailed stacktrace analysis including frame-by-frame analysis, context, and error propagation path.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				projectField(),
				tool.StringField("issue_id", "ID of the issue to get detailed stacktrace for"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.GetDetailedStacktrace(ctx, args.String("project_slug"), args.String("issue_id")), nil
			},
		},
		{
			Name:        "sentry_analyze_error_patterns",
			Description: "Analyzes error patterns in detail including frequency trends, user impact, and correlation patterns.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				projectField(),
				tool.OptionalIntField("days", "Number of days to analyze patterns", 7),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return c.AnalyzeErrorPatterns(ctx, args.String("project_slug"), args.Int("days")), nil
			},
		},
	}
}
