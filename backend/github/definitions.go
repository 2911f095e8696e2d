package github

import (
	"context"

	"github.com/petal-labs/toolgate/tool"
)

// Definitions returns the GitHub tool family bound to a client.
func Definitions(client *Client) []tool.Definition {
	return []tool.Definition{
		{
			Name:        "gh_list_repositories",
			Description: "Lists all GitHub repositories accessible by the authenticated user.",
			Schema:      tool.Schema{},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.ListRepositories(ctx), nil
			},
		},
		{
			Name:        "gh_list_repo_issues",
			Description: "Lists open issues for a GitHub repository.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("repo_full_name", "Full name of the repo (e.g., 'owner/repo')"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.ListRepoIssues(ctx, args.String("repo_full_name")), nil
			},
		},
		{
			Name:        "gh_create_repo",
			Description: "Creates a new GitHub repository.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("name", "Name for the new repository"),
				tool.OptionalStringField("description", "Optional description", ""),
				tool.OptionalBoolField("private", "Make repo private (default: False)", false),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.CreateRepo(ctx, args.String("name"), args.String("description"), args.Bool("private")), nil
			},
		},
		{
			Name:        "gh_fork_repo",
			Description: "Forks an existing GitHub repository.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("repo_full_name", "Full name of the repo to fork (e.g., 'owner/repo')"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.ForkRepo(ctx, args.String("repo_full_name")), nil
			},
		},
		{
			Name:        "gh_create_issue",
			Description: "Creates a new issue in a repository.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("repo_full_name", "Full name of the repo (e.g., 'owner/repo')"),
				tool.StringField("title", "Title of the issue"),
				tool.OptionalStringField("body", "Body/description of the issue", ""),
				{
					Name:        "labels",
					Type:        tool.TypeArray,
					Description: "List of labels to apply",
					Items:       &tool.FieldSpec{Type: tool.TypeString},
				},
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.CreateIssue(ctx, args.String("repo_full_name"), args.String("title"), args.String("body"), args.StringList("labels")), nil
			},
		},
		{
			Name:        "gh_create_pr",
			Description: "Creates a new pull request.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("repo_full_name", "Full name of the repo (e.g., 'owner/repo')"),
				tool.StringField("title", "Title of the pull request"),
				tool.StringField("head", "Branch containing changes"),
				tool.OptionalStringField("base", "Base branch to merge into", "main"),
				tool.OptionalStringField("body", "Description of the changes", ""),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.CreatePullRequest(ctx, args.String("repo_full_name"), args.String("title"), args.String("head"), args.String("base"), args.String("body")), nil
			},
		},
		{
			Name:        "gh_search_repos",
			Description: "Searches for GitHub repositories.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("query", "Search query"),
				tool.OptionalStringField("sort", "Sort by (stars, forks, updated)", "stars"),
				tool.OptionalStringField("order", "Sort order (asc, desc)", "desc"),
				tool.OptionalIntField("limit", "Maximum number of results", 10),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.SearchRepositories(ctx, args.String("query"), args.String("sort"), args.String("order"), args.Int("limit")), nil
			},
		},
		{
			Name:        "gh_search_code",
			Description: "Searches for code in GitHub repositories.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("query", "Search query"),
				tool.OptionalStringField("repo", "Limit search to specific repo", ""),
				tool.OptionalStringField("language", "Filter by programming language", ""),
				tool.OptionalIntField("limit", "Maximum number of results", 10),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.SearchCode(ctx, args.String("query"), args.String("repo"), args.String("language"), args.Int("limit")), nil
			},
		},
		{
			Name:        "gh_get_prs",
			Description: "Lists pull requests in a repository.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("repo_full_name", "Full name of the repo (e.g., 'owner/repo')"),
				tool.OptionalStringField("state", "PR state (open, closed, all)", "open"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.GetPullRequests(ctx, args.String("repo_full_name"), args.String("state")), nil
			},
		},
		{
			Name:        "gh_review_pr",
			Description: "Reviews a pull request.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("repo_full_name", "Full name of the repo (e.g., 'owner/repo')"),
				{Name: "pr_number", Type: tool.TypeInteger, Required: true, Description: "Pull request number"},
				tool.StringField("body", "Review comment"),
				tool.OptionalStringField("event", "Review event (APPROVE, REQUEST_CHANGES, COMMENT)", "APPROVE"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.ReviewPullRequest(ctx, args.String("repo_full_name"), args.Int("pr_number"), args.String("body"), args.String("event")), nil
			},
		},
		{
			Name:        "gh_update_readme",
			Description: "Updates or creates the README.md file in a repository.",
			Schema: tool.Schema{Fields: []tool.FieldSpec{
				tool.StringField("repo_full_name", "Full name of the repo (e.g., 'owner/repo')"),
				tool.StringField("content", "New content for the README file"),
				tool.OptionalStringField("commit_message", "Commit message for the update", "Update README.md"),
			}},
			Handler: func(ctx context.Context, args tool.Args) (map[string]any, error) {
				return client.UpdateReadme(ctx, args.String("repo_full_name"), args.String("content"), args.String("commit_message")), nil
			},
		},
	}
}
