package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewClient creates a new GitHub client.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		Token:   token,
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		Token:      c.Token,
		Owner:      c.Owner,
		Repo:       c.Repo,
		BaseURL:    c.BaseURL,
		HTTPClient: httpClient,
	}
}

// WithBaseURL returns a new client with a custom base URL (for testing or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		Token:      c.Token,
		Owner:      c.Owner,
		Repo:       c.Repo,
		BaseURL:    baseURL,
		HTTPClient: c.HTTPClient,
	}
}

// repoPath returns the "/repos/owner/repo" path prefix.
func (c *Client) repoPath() string {
	return "/repos/" + c.Owner + "/" + c.Repo
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// retryAfterBackOff lets a response's Retry-After header override the next
// exponential delay.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop || b.hint <= 0 {
		return next
	}
	hint := b.hint
	b.hint = 0
	return hint
}

// isRateLimited reports whether GitHub rejected the request for rate limits.
// GitHub uses 429, or 403 with X-RateLimit-Remaining: 0.
func isRateLimited(resp *http.Response) bool {
	return resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0")
}

func isTransient(status int) bool {
	return status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}

// doRequest performs an HTTP request with authentication and retry logic.
// Rate-limited, 502/503/504 and transport failures are retried with
// exponential backoff; any other non-2xx status fails immediately.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body interface{}) ([]byte, http.Header, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	type result struct {
		body    []byte
		headers http.Header
	}

	expo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(RetryDelay),
		backoff.WithMaxElapsedTime(0),
	)
	bo := &retryAfterBackOff{BackOff: backoff.WithMaxRetries(expo, MaxRetries)}

	var (
		attempt   int
		permanent bool
	)
	op := func() (result, error) {
		attempt++
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
		if err != nil {
			permanent = true
			return result{}, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				permanent = true
				return result{}, backoff.Permanent(ctx.Err())
			}
			return result{}, fmt.Errorf("request failed (attempt %d/%d): %w", attempt, MaxRetries+1, err)
		}

		const maxResponseSize = 50 * 1024 * 1024
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			return result{}, fmt.Errorf("failed to read response (attempt %d/%d): %w", attempt, MaxRetries+1, err)
		}

		if isRateLimited(resp) {
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					bo.hint = time.Duration(seconds) * time.Second
				}
			}
			return result{}, fmt.Errorf("rate limited (attempt %d/%d)", attempt, MaxRetries+1)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
			if isTransient(resp.StatusCode) {
				return result{}, apiErr
			}
			permanent = true
			return result{}, backoff.Permanent(apiErr)
		}

		return result{body: respBody, headers: resp.Header}, nil
	}

	res, err := backoff.RetryWithData(op, backoff.WithContext(bo, ctx))
	if err != nil {
		if attempt > MaxRetries && !permanent && ctx.Err() == nil {
			return nil, nil, fmt.Errorf("max retries (%d) exceeded: %w", MaxRetries+1, err)
		}
		return nil, nil, err
	}
	return res.body, res.headers, nil
}

// linkNextPattern matches the "next" relation in GitHub Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// hasNextPage checks the Link header for a next page URL and returns it.
func hasNextPage(headers http.Header) (string, bool) {
	link := headers.Get("Link")
	if link == "" {
		return "", false
	}
	matches := linkNextPattern.FindStringSubmatch(link)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// fetchPages GETs path page by page until the Link header has no next page.
func fetchPages[T any](ctx context.Context, c *Client, path string, params map[string]string) ([]T, error) {
	var all []T
	page := 1

	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		q := map[string]string{
			"per_page": strconv.Itoa(MaxPageSize),
			"page":     strconv.Itoa(page),
		}
		for k, v := range params {
			q[k] = v
		}

		respBody, headers, err := c.doRequest(ctx, http.MethodGet, c.buildURL(path, q), nil)
		if err != nil {
			return nil, err
		}

		var items []T
		if err := json.Unmarshal(respBody, &items); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		all = append(all, items...)

		if _, ok := hasNextPage(headers); !ok {
			break
		}
		page++

		if page > MaxPages {
			return nil, fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages)
		}
	}

	return all, nil
}

// FetchIssues retrieves issues from GitHub with optional state filtering.
// state can be: "open", "closed", or "all".
// This filters out pull requests (GitHub returns PRs in the issues endpoint).
func (c *Client) FetchIssues(ctx context.Context, state string) ([]Issue, error) {
	if state == "" {
		state = "all"
	}
	issues, err := fetchPages[Issue](ctx, c, c.repoPath()+"/issues", map[string]string{"state": state})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}

	var out []Issue
	for i := range issues {
		if issues[i].PullRequest == nil {
			out = append(out, issues[i])
		}
	}
	return out, nil
}

// FetchIssueByNumber retrieves a single issue by its number.
func (c *Client) FetchIssueByNumber(ctx context.Context, number int) (*Issue, error) {
	urlStr := c.buildURL(c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse issue response: %w", err)
	}

	return &issue, nil
}

// CreateIssue creates a new issue in GitHub.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (*Issue, error) {
	reqBody := map[string]interface{}{
		"title": title,
		"body":  body,
	}
	if len(labels) > 0 {
		reqBody["labels"] = labels
	}

	urlStr := c.buildURL(c.repoPath()+"/issues", nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse create response: %w", err)
	}

	return &issue, nil
}

// UpdateIssue updates an existing issue in GitHub.
// GitHub uses PATCH for issue updates.
func (c *Client) UpdateIssue(ctx context.Context, number int, update IssueUpdate) (*Issue, error) {
	urlStr := c.buildURL(c.repoPath()+"/issues/"+strconv.Itoa(number), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPatch, urlStr, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal(respBody, &issue); err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}

	return &issue, nil
}

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, number int, body string) (*IssueComment, error) {
	urlStr := c.buildURL(c.repoPath()+"/issues/"+strconv.Itoa(number)+"/comments", nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPost, urlStr, map[string]string{"body": body})
	if err != nil {
		return nil, fmt.Errorf("failed to comment on issue #%d: %w", number, err)
	}

	var comment IssueComment
	if err := json.Unmarshal(respBody, &comment); err != nil {
		return nil, fmt.Errorf("failed to parse comment response: %w", err)
	}

	return &comment, nil
}

// AddLabels adds labels to an issue, keeping the ones it already has.
func (c *Client) AddLabels(ctx context.Context, number int, labels []string) error {
	urlStr := c.buildURL(c.repoPath()+"/issues/"+strconv.Itoa(number)+"/labels", nil)
	if _, _, err := c.doRequest(ctx, http.MethodPost, urlStr, map[string][]string{"labels": labels}); err != nil {
		return fmt.Errorf("failed to add labels to issue #%d: %w", number, err)
	}
	return nil
}

// FetchComment retrieves a single issue comment by id.
func (c *Client) FetchComment(ctx context.Context, commentID int64) (*IssueComment, error) {
	urlStr := c.buildURL(c.repoPath()+"/issues/comments/"+strconv.FormatInt(commentID, 10), nil)
	respBody, _, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comment %d: %w", commentID, err)
	}

	var comment IssueComment
	if err := json.Unmarshal(respBody, &comment); err != nil {
		return nil, fmt.Errorf("failed to parse comment response: %w", err)
	}

	return &comment, nil
}

// ListCommentReactions retrieves every reaction on an issue comment.
func (c *Client) ListCommentReactions(ctx context.Context, commentID int64) ([]Reaction, error) {
	path := c.repoPath() + "/issues/comments/" + strconv.FormatInt(commentID, 10) + "/reactions"
	reactions, err := fetchPages[Reaction](ctx, c, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions for comment %d: %w", commentID, err)
	}
	return reactions, nil
}
