package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/steveyegge/doctags/internal/types"
)

// DryRun wraps a store so reads pass through and writes are only logged.
// Writes return the record as it would look afterwards, so a dry run follows
// the same path through the engine as a real one.
type DryRun struct {
	Inner IssueStore
	Log   *slog.Logger

	mu      sync.Mutex
	nextNum int
}

// NewDryRun wraps inner. A nil logger discards output.
func NewDryRun(inner IssueStore, log *slog.Logger) *DryRun {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &DryRun{Inner: inner, Log: log}
}

var _ IssueStore = (*DryRun)(nil)

func (d *DryRun) ListRecords(ctx context.Context, state types.RecordState) ([]*types.TrackingRecord, error) {
	return d.Inner.ListRecords(ctx, state)
}

func (d *DryRun) GetRecord(ctx context.Context, number int) (*types.TrackingRecord, error) {
	return d.Inner.GetRecord(ctx, number)
}

func (d *DryRun) ListReactions(ctx context.Context, commentID string) ([]string, error) {
	return d.Inner.ListReactions(ctx, commentID)
}

func (d *DryRun) GetComment(ctx context.Context, commentID string) (*types.Comment, error) {
	return d.Inner.GetComment(ctx, commentID)
}

func (d *DryRun) CreateRecord(_ context.Context, title, body string, labels []string) (*types.TrackingRecord, error) {
	d.mu.Lock()
	d.nextNum--
	num := d.nextNum
	d.mu.Unlock()

	d.Log.Info("dry-run: create record", "title", title, "labels", labels)
	return &types.TrackingRecord{
		Number: num,
		Title:  title,
		Body:   body,
		Labels: types.LabelsFromNames(labels),
		State:  types.StateOpen,
	}, nil
}

func (d *DryRun) UpdateRecord(ctx context.Context, number int, update RecordUpdate) (*types.TrackingRecord, error) {
	d.Log.Info("dry-run: update record", "record", number, "title", deref(update.Title),
		"state", deref(update.State), "labels", update.Labels)
	if number < 0 {
		next := update.Apply(types.TrackingRecord{Number: number, State: types.StateOpen})
		return &next, nil
	}
	cur, err := d.Inner.GetRecord(ctx, number)
	if err != nil {
		return nil, err
	}
	next := update.Apply(*cur)
	return &next, nil
}

func (d *DryRun) AddComment(_ context.Context, number int, body string) error {
	d.Log.Info("dry-run: comment", "record", number, "body", body)
	return nil
}

func (d *DryRun) AddLabels(_ context.Context, number int, labels []string) error {
	d.Log.Info("dry-run: add labels", "record", number, "labels", labels)
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
