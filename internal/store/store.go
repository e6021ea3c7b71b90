// Package store defines the issue store the engine reads tracking records
// from and writes them back to.
package store

import (
	"context"
	"errors"

	"github.com/steveyegge/doctags/internal/types"
)

// ErrNotFound is returned when a record or comment does not exist.
var ErrNotFound = errors.New("not found")

// RecordUpdate is a partial update. Nil fields are left unchanged; a nil
// Labels slice leaves labels unchanged while an empty one clears them.
type RecordUpdate struct {
	Title  *string
	Body   *string
	State  *types.RecordState
	Labels []string
}

// IsEmpty reports whether the update changes nothing.
func (u RecordUpdate) IsEmpty() bool {
	return u.Title == nil && u.Body == nil && u.State == nil && u.Labels == nil
}

// Apply returns a copy of rec with the update applied.
func (u RecordUpdate) Apply(rec types.TrackingRecord) types.TrackingRecord {
	if u.Title != nil {
		rec.Title = *u.Title
	}
	if u.Body != nil {
		rec.Body = *u.Body
	}
	if u.State != nil {
		rec.State = *u.State
	}
	if u.Labels != nil {
		rec.Labels = types.LabelsFromNames(u.Labels)
	}
	return rec
}

// IssueStore is the external issue tracker.
type IssueStore interface {
	// ListRecords returns every record in the given state, following
	// pagination.
	ListRecords(ctx context.Context, state types.RecordState) ([]*types.TrackingRecord, error)
	// GetRecord re-reads one record.
	GetRecord(ctx context.Context, number int) (*types.TrackingRecord, error)
	CreateRecord(ctx context.Context, title, body string, labels []string) (*types.TrackingRecord, error)
	UpdateRecord(ctx context.Context, number int, update RecordUpdate) (*types.TrackingRecord, error)
	AddComment(ctx context.Context, number int, body string) error
	AddLabels(ctx context.Context, number int, labels []string) error
	// ListReactions returns the reaction contents ("rocket", "+1", ...) on a
	// record comment.
	ListReactions(ctx context.Context, commentID string) ([]string, error)
	// GetComment fetches a record comment by id.
	GetComment(ctx context.Context, commentID string) (*types.Comment, error)
}

// Ptr returns a pointer to v, for building RecordUpdate values.
func Ptr[T any](v T) *T {
	return &v
}
