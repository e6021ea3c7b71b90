// Package github provides client and data types for the GitHub REST API.
//
// This package handles every interaction doctags has with GitHub issues:
// listing, fetching, creating and updating issues, posting comments, adding
// labels and reading comment reactions. Store adapts the client to the
// store.IssueStore interface used by the engine.
package github

import (
	"fmt"
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for rate-limited or
	// temporarily failing requests.
	MaxRetries = 3

	// MaxPageSize is the maximum number of items to fetch per page.
	MaxPageSize = 100

	// MaxPages is the maximum number of pages to fetch before stopping.
	// This prevents infinite loops from malformed Link headers.
	MaxPages = 1000
)

// RetryDelay is the initial delay between retries; it grows exponentially.
var RetryDelay = time.Second

// Client provides methods to interact with the GitHub REST API.
type Client struct {
	Token      string       // GitHub token
	Owner      string       // Repository owner (user or org)
	Repo       string       // Repository name
	BaseURL    string       // API base URL (default: https://api.github.com)
	HTTPClient *http.Client // Optional custom HTTP client
}

// Issue represents an issue from the GitHub API.
type Issue struct {
	ID          int        `json:"id"`     // Global unique ID
	Number      int        `json:"number"` // Repository-scoped issue number
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	State       string     `json:"state"` // "open" or "closed"
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Labels      []Label    `json:"labels"`
	User        *User      `json:"user,omitempty"` // Author
	HTMLURL     string     `json:"html_url"`
	PullRequest *PullRef   `json:"pull_request,omitempty"` // Non-nil if this is a PR
}

// PullRef indicates an issue is actually a pull request.
// The GitHub Issues API returns PRs alongside issues; this field
// distinguishes them.
type PullRef struct {
	URL string `json:"url,omitempty"`
}

// User represents a GitHub user.
type User struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

// Label represents a GitHub label.
type Label struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// IssueComment is a comment on an issue.
type IssueComment struct {
	ID       int64  `json:"id"`
	Body     string `json:"body"`
	User     *User  `json:"user,omitempty"`
	HTMLURL  string `json:"html_url"`
	IssueURL string `json:"issue_url"`
}

// Reaction is a reaction on an issue comment.
type Reaction struct {
	ID      int64  `json:"id"`
	Content string `json:"content"` // +1, -1, laugh, confused, heart, hooray, rocket, eyes
	User    *User  `json:"user,omitempty"`
}

// IssueUpdate is the PATCH payload for an issue. Nil fields are omitted.
type IssueUpdate struct {
	Title  *string   `json:"title,omitempty"`
	Body   *string   `json:"body,omitempty"`
	State  *string   `json:"state,omitempty"`
	Labels *[]string `json:"labels,omitempty"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (status %d)", e.Body, e.StatusCode)
}

// LabelNames extracts label name strings from a slice of Label structs.
func LabelNames(labels []Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}
