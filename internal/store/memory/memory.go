// Package memory is an in-process issue store. It backs the engine tests and
// offline previews.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/types"
)

// Store keeps records, comments and reactions in memory. It is safe for
// concurrent use.
type Store struct {
	mu        sync.Mutex
	records   map[int]*types.TrackingRecord
	comments  map[int][]*types.Comment
	byID      map[string]*types.Comment
	reactions map[string][]string
	nextNum   int
	nextID    int64

	// Errors injects failures keyed by operation and record number, for
	// example Errors["update:3"]. Keys for reactions use the comment id.
	Errors map[string]error

	// Writes counts mutating calls.
	Writes int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		records:   make(map[int]*types.TrackingRecord),
		comments:  make(map[int][]*types.Comment),
		byID:      make(map[string]*types.Comment),
		reactions: make(map[string][]string),
		nextNum:   1,
		nextID:    1000,
		Errors:    make(map[string]error),
	}
}

var _ store.IssueStore = (*Store)(nil)

func (s *Store) fail(op string, key any) error {
	return s.Errors[fmt.Sprintf("%s:%v", op, key)]
}

func clone(r *types.TrackingRecord) *types.TrackingRecord {
	c := *r
	c.Labels = slices.Clone(r.Labels)
	return &c
}

// Put inserts a record as-is, keeping its number.
func (s *Store) Put(rec types.TrackingRecord) *types.TrackingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.State == "" {
		rec.State = types.StateOpen
	}
	s.records[rec.Number] = clone(&rec)
	if rec.Number >= s.nextNum {
		s.nextNum = rec.Number + 1
	}
	return clone(&rec)
}

// Record returns a copy of a record, or nil.
func (s *Store) Record(number int) *types.TrackingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[number]; ok {
		return clone(r)
	}
	return nil
}

// Records returns copies of every record, ordered by number.
func (s *Store) Records() []*types.TrackingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.TrackingRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, clone(r))
	}
	slices.SortFunc(out, func(a, b *types.TrackingRecord) int { return a.Number - b.Number })
	return out
}

// Comments returns the comments posted on a record.
func (s *Store) Comments(number int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.comments[number] {
		out = append(out, c.Body)
	}
	return out
}

// PostComment adds a human comment to a record and returns it.
func (s *Store) PostComment(number int, author, body string) *types.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addComment(number, author, body)
}

func (s *Store) addComment(number int, author, body string) *types.Comment {
	s.nextID++
	c := &types.Comment{ID: s.nextID, Body: body, Author: author}
	s.comments[number] = append(s.comments[number], c)
	s.byID[c.CommentID()] = c
	return c
}

// React adds a reaction to a comment.
func (s *Store) React(commentID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions[commentID] = append(s.reactions[commentID], content)
}

func (s *Store) ListRecords(_ context.Context, state types.RecordState) ([]*types.TrackingRecord, error) {
	if err := s.fail("list", state); err != nil {
		return nil, err
	}
	var out []*types.TrackingRecord
	for _, r := range s.Records() {
		if r.State == state {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) GetRecord(_ context.Context, number int) (*types.TrackingRecord, error) {
	if err := s.fail("get", number); err != nil {
		return nil, err
	}
	if r := s.Record(number); r != nil {
		return r, nil
	}
	return nil, fmt.Errorf("record #%d: %w", number, store.ErrNotFound)
}

func (s *Store) CreateRecord(_ context.Context, title, body string, labels []string) (*types.TrackingRecord, error) {
	if err := s.fail("create", title); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes++
	r := &types.TrackingRecord{
		Number: s.nextNum,
		Title:  title,
		Body:   body,
		Labels: types.LabelsFromNames(labels),
		State:  types.StateOpen,
	}
	s.nextNum++
	s.records[r.Number] = r
	return clone(r), nil
}

func (s *Store) UpdateRecord(_ context.Context, number int, update store.RecordUpdate) (*types.TrackingRecord, error) {
	if err := s.fail("update", number); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[number]
	if !ok {
		return nil, fmt.Errorf("record #%d: %w", number, store.ErrNotFound)
	}
	s.Writes++
	next := update.Apply(*r)
	s.records[number] = &next
	return clone(&next), nil
}

func (s *Store) AddComment(_ context.Context, number int, body string) error {
	if err := s.fail("comment", number); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[number]; !ok {
		return fmt.Errorf("record #%d: %w", number, store.ErrNotFound)
	}
	s.Writes++
	s.addComment(number, "github-actions[bot]", body)
	return nil
}

func (s *Store) AddLabels(_ context.Context, number int, labels []string) error {
	if err := s.fail("labels", number); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[number]
	if !ok {
		return fmt.Errorf("record #%d: %w", number, store.ErrNotFound)
	}
	s.Writes++
	r.Labels = types.LabelsFromNames(types.MergeLabels(r.LabelNames(), labels))
	return nil
}

func (s *Store) ListReactions(_ context.Context, commentID string) ([]string, error) {
	if err := s.fail("reactions", commentID); err != nil {
		return nil, err
	}
	if _, err := strconv.ParseInt(commentID, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid comment id %q", commentID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.reactions[commentID]), nil
}

func (s *Store) GetComment(_ context.Context, commentID string) (*types.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[commentID]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", commentID, store.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}
