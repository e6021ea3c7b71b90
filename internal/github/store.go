package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/types"
)

// Store adapts a Client to store.IssueStore.
type Store struct {
	Client *Client
}

// NewStore wraps a client.
func NewStore(c *Client) *Store {
	return &Store{Client: c}
}

var _ store.IssueStore = (*Store)(nil)

// notFound maps a 404 response to store.ErrNotFound.
func notFound(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}
	return err
}

func parseCommentID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid comment id %q: %w", id, err)
	}
	return n, nil
}

func (s *Store) ListRecords(ctx context.Context, state types.RecordState) ([]*types.TrackingRecord, error) {
	if !state.IsValid() {
		return nil, fmt.Errorf("list records: unknown state %q", state)
	}
	issues, err := s.Client.FetchIssues(ctx, string(state))
	if err != nil {
		return nil, err
	}
	out := make([]*types.TrackingRecord, len(issues))
	for i := range issues {
		out[i] = IssueToRecord(&issues[i])
	}
	return out, nil
}

func (s *Store) GetRecord(ctx context.Context, number int) (*types.TrackingRecord, error) {
	issue, err := s.Client.FetchIssueByNumber(ctx, number)
	if err != nil {
		return nil, notFound(err)
	}
	return IssueToRecord(issue), nil
}

func (s *Store) CreateRecord(ctx context.Context, title, body string, labels []string) (*types.TrackingRecord, error) {
	issue, err := s.Client.CreateIssue(ctx, title, body, labels)
	if err != nil {
		return nil, err
	}
	return IssueToRecord(issue), nil
}

func (s *Store) UpdateRecord(ctx context.Context, number int, update store.RecordUpdate) (*types.TrackingRecord, error) {
	issue, err := s.Client.UpdateIssue(ctx, number, UpdateFromRecord(update))
	if err != nil {
		return nil, notFound(err)
	}
	return IssueToRecord(issue), nil
}

func (s *Store) AddComment(ctx context.Context, number int, body string) error {
	_, err := s.Client.CreateComment(ctx, number, body)
	return notFound(err)
}

func (s *Store) AddLabels(ctx context.Context, number int, labels []string) error {
	return notFound(s.Client.AddLabels(ctx, number, labels))
}

func (s *Store) ListReactions(ctx context.Context, commentID string) ([]string, error) {
	id, err := parseCommentID(commentID)
	if err != nil {
		return nil, err
	}
	reactions, err := s.Client.ListCommentReactions(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return ReactionContents(reactions), nil
}

func (s *Store) GetComment(ctx context.Context, commentID string) (*types.Comment, error) {
	id, err := parseCommentID(commentID)
	if err != nil {
		return nil, err
	}
	c, err := s.Client.FetchComment(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return CommentToType(c), nil
}
