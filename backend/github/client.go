// Package github implements the gh_* tool family as thin calls against the
// GitHub REST v3 API.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// Config configures a GitHub client.
type Config struct {
	// Token is the pre-configured credential. An empty token does not fail
	// construction; calls depending on it fail with a domain error.
	Token   string
	BaseURL string
	Client  *http.Client
}

// Client is a minimal GitHub REST client covering only the operations the
// gateway dispatches.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a GitHub client.
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
		baseURL: base,
		http:    httpClient,
	}
}

func errResult(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// apiError is a non-2xx response from the GitHub API.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("GH Error: %s", e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c.token == "" {
		return errors.New("GITHUB_TOKEN not set.")
	}

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
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var payload struct {
			Message string `json:"message"`
		}
		message := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
			message = payload.Message
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &apiError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type repository struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description *string   `json:"description"`
	Private     bool      `json:"private"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    *string   `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
}

func repoSummary(r repository) map[string]any {
	return map[string]any{
		"name":        r.Name,
		"full_name":   r.FullName,
		"url":         r.HTMLURL,
		"description": stringOrNil(r.Description),
		"private":     r.Private,
		"stars":       r.Stars,
		"forks":       r.Forks,
	}
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// ListRepositories lists repositories accessible by the authenticated user.
func (c *Client) ListRepositories(ctx context.Context) map[string]any {
	var repos []repository
	if err := c.do(ctx, http.MethodGet, "/user/repos", nil, nil, &repos); err != nil {
		return errResult("%v", err)
	}
	out := make([]map[string]any, 0, len(repos))
	for _, r := range repos {
		out = append(out, repoSummary(r))
	}
	return map[string]any{"repositories": out}
}

type issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	HTMLURL   string    `json:"html_url"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRepoIssues lists open issues for a repository.
func (c *Client) ListRepoIssues(ctx context.Context, repoFullName string) map[string]any {
	query := url.Values{"state": {"open"}}
	var issues []issue
	if err := c.do(ctx, http.MethodGet, "/repos/"+repoFullName+"/issues", query, nil, &issues); err != nil {
		return errResult("%v", err)
	}
	out := make([]map[string]any, 0, len(issues))
	for _, i := range issues {
		out = append(out, map[string]any{
			"number": i.Number,
			"title":  i.Title,
			"url":    i.HTMLURL,
		})
	}
	return map[string]any{"issues": out}
}

// CreateRepo creates a repository for the authenticated user, initialized
// with a README.
func (c *Client) CreateRepo(ctx context.Context, name, description string, private bool) map[string]any {
	body := map[string]any{
		"name":          name,
		"description":   description,
		"private":       private,
		"has_issues":    true,
		"has_wiki":      true,
		"has_downloads": true,
		"auto_init":     true,
	}
	var repo repository
	if err := c.do(ctx, http.MethodPost, "/user/repos", nil, body, &repo); err != nil {
		return errResult("%v", err)
	}
	return map[string]any{
		"status": "success",
		"repository": map[string]any{
			"name":        repo.Name,
			"full_name":   repo.FullName,
			"url":         repo.HTMLURL,
			"description": stringOrNil(repo.Description),
			"private":     repo.Private,
			"created_at":  repo.CreatedAt.Format(time.RFC3339),
		},
	}
}

// ForkRepo forks a repository into the authenticated user's account.
func (c *Client) ForkRepo(ctx context.Context, repoFullName string) map[string]any {
	var fork repository
	if err := c.do(ctx, http.MethodPost, "/repos/"+repoFullName+"/forks", nil, map[string]any{}, &fork); err != nil {
		return errResult("%v", err)
	}
	return map[string]any{
		"status": "success",
		"forked_repo": map[string]any{
			"name":      fork.Name,
			"full_name": fork.FullName,
			"url":       fork.HTMLURL,
			"parent":    repoFullName,
		},
	}
}

// CreateIssue opens a new issue in a repository.
func (c *Client) CreateIssue(ctx context.Context, repoFullName, title, body string, labels []string) map[string]any {
	if labels == nil {
		labels = []string{}
	}
	payload := map[string]any{
		"title":  title,
		"body":   body,
		"labels": labels,
	}
	var created issue
	if err := c.do(ctx, http.MethodPost, "/repos/"+repoFullName+"/issues", nil, payload, &created); err != nil {
		return errResult("%v", err)
	}
	return map[string]any{
		"status": "success",
		"issue": map[string]any{
			"number":     created.Number,
			"title":      created.Title,
			"url":        created.HTMLURL,
			"state":      created.State,
			"created_at": created.CreatedAt.Format(time.RFC3339),
		},
	}
}

type pullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	HTMLURL   string    `json:"html_url"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	Head struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
}

// CreatePullRequest opens a pull request.
func (c *Client) CreatePullRequest(ctx context.Context, repoFullName, title, head, base, body string) map[string]any {
	payload := map[string]any{
		"title": title,
		"body":  body,
		"head":  head,
		"base":  base,
	}
	var pr pullRequest
	if err := c.do(ctx, http.MethodPost, "/repos/"+repoFullName+"/pulls", nil, payload, &pr); err != nil {
		return errResult("%v", err)
	}
	return map[string]any{
		"status": "success",
		"pull_request": map[string]any{
			"number":     pr.Number,
			"title":      pr.Title,
			"url":        pr.HTMLURL,
			"state":      pr.State,
			"created_at": pr.CreatedAt.Format(time.RFC3339),
		},
	}
}

// SearchRepositories searches repositories, capped at limit results.
func (c *Client) SearchRepositories(ctx context.Context, query, sort, order string, limit int64) map[string]any {
	params := url.Values{
		"q":     {query},
		"sort":  {sort},
		"order": {order},
	}
	var result struct {
		Items []repository `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/search/repositories", params, nil, &result); err != nil {
		return errResult("%v", err)
	}
	items := result.Items
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	out := make([]map[string]any, 0, len(items))
	for _, r := range items {
		summary := repoSummary(r)
		delete(summary, "private")
		summary["language"] = stringOrNil(r.Language)
		out = append(out, summary)
	}
	return map[string]any{"repositories": out}
}

// SearchCode searches code, optionally scoped by repository and language.
func (c *Client) SearchCode(ctx context.Context, query, repo, language string, limit int64) map[string]any {
	q := query
	if repo != "" {
		q += " repo:" + repo
	}
	if language != "" {
		q += " language:" + language
	}
	var result struct {
		Items []struct {
			Name       string `json:"name"`
			Path       string `json:"path"`
			HTMLURL    string `json:"html_url"`
			Repository struct {
				FullName string `json:"full_name"`
			} `json:"repository"`
		} `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/search/code", url.Values{"q": {q}}, nil, &result); err != nil {
		return errResult("%v", err)
	}
	items := result.Items
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"name":       item.Name,
			"path":       item.Path,
			"url":        item.HTMLURL,
			"repository": item.Repository.FullName,
		})
	}
	return map[string]any{"results": out}
}

// GetPullRequests lists pull requests in a repository.
func (c *Client) GetPullRequests(ctx context.Context, repoFullName, state string) map[string]any {
	query := url.Values{"state": {state}}
	var prs []pullRequest
	if err := c.do(ctx, http.MethodGet, "/repos/"+repoFullName+"/pulls", query, nil, &prs); err != nil {
		return errResult("%v", err)
	}
	out := make([]map[string]any, 0, len(prs))
	for _, pr := range prs {
		out = append(out, map[string]any{
			"number":     pr.Number,
			"title":      pr.Title,
			"url":        pr.HTMLURL,
			"state":      pr.State,
			"created_at": pr.CreatedAt.Format(time.RFC3339),
			"user":       pr.User.Login,
			"head":       pr.Head.Ref,
			"base":       pr.Base.Ref,
		})
	}
	return map[string]any{"pull_requests": out}
}

// ReviewPullRequest submits a review on a pull request.
func (c *Client) ReviewPullRequest(ctx context.Context, repoFullName string, prNumber int64, body, event string) map[string]any {
	payload := map[string]any{
		"body":  body,
		"event": event,
	}
	var review struct {
		ID          int64     `json:"id"`
		State       string    `json:"state"`
		Body        string    `json:"body"`
		SubmittedAt time.Time `json:"submitted_at"`
	}
	path := fmt.Sprintf("/repos/%s/pulls/%d/reviews", repoFullName, prNumber)
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &review); err != nil {
		return errResult("%v", err)
	}
	return map[string]any{
		"status": "success",
		"review": map[string]any{
			"id":           review.ID,
			"state":        review.State,
			"body":         review.Body,
			"submitted_at": review.SubmittedAt.Format(time.RFC3339),
		},
	}
}

// UpdateReadme updates README.md in a repository, creating it when absent.
func (c *Client) UpdateReadme(ctx context.Context, repoFullName, content, commitMessage string) map[string]any {
	path := "/repos/" + repoFullName + "/contents/README.md"

	action := "created"
	payload := map[string]any{
		"message": commitMessage,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	}

	var existing struct {
		SHA string `json:"sha"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, nil, &existing)
	switch {
	case err == nil && existing.SHA != "":
		payload["sha"] = existing.SHA
		action = "updated"
	case err != nil:
		var apiErr *apiError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			return errResult("Failed to update README: %v", err)
		}
	}

	if err := c.do(ctx, http.MethodPut, path, nil, payload, nil); err != nil {
		return errResult("Failed to update README: %v", err)
	}
	return map[string]any{
		"status":         "success",
		"message":        fmt.Sprintf("README.md %s successfully", action),
		"repository":     repoFullName,
		"commit_message": commitMessage,
	}
}
