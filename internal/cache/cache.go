// Package cache indexes the tracking records of one run by the document they
// track and finds records that collide on the same document.
//
// A Cache is built once at the start of a run and discarded at its end. It is
// not safe for concurrent use.
package cache

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/steveyegge/doctags/internal/identity"
	"github.com/steveyegge/doctags/internal/tags"
	"github.com/steveyegge/doctags/internal/tasks"
	"github.com/steveyegge/doctags/internal/types"
)

// Lister lists records in one state, following pagination.
type Lister interface {
	ListRecords(ctx context.Context, state types.RecordState) ([]*types.TrackingRecord, error)
}

// Cache holds the tracking records of one run.
type Cache struct {
	open         []*types.TrackingRecord
	openByPath   map[string]*types.TrackingRecord
	closedByPath map[string]*types.TrackingRecord
	paths        map[int]string
	closedNow    map[int]bool
	closedCount  int
}

// Load fetches open and closed records once and indexes them.
func Load(ctx context.Context, l Lister) (*Cache, error) {
	open, err := l.ListRecords(ctx, types.StateOpen)
	if err != nil {
		return nil, fmt.Errorf("list open records: %w", err)
	}
	closed, err := l.ListRecords(ctx, types.StateClosed)
	if err != nil {
		return nil, fmt.Errorf("list closed records: %w", err)
	}
	return New(open, closed), nil
}

// New indexes already fetched records. Records that are not tracking records
// are ignored, as are records whose document cannot be resolved.
//
// Open records are indexed toward the lowest number. Closed records are only
// indexed when they were not auto-completed, toward the highest number.
func New(open, closed []*types.TrackingRecord) *Cache {
	c := &Cache{
		openByPath:   make(map[string]*types.TrackingRecord),
		closedByPath: make(map[string]*types.TrackingRecord),
		paths:        make(map[int]string),
		closedNow:    make(map[int]bool),
	}

	for _, rec := range open {
		if !identity.IsTrackingRecord(rec) {
			continue
		}
		c.open = append(c.open, rec)
		p, ok := c.resolve(rec)
		if !ok {
			continue
		}
		if cur, exists := c.openByPath[p]; !exists || rec.Number < cur.Number {
			c.openByPath[p] = rec
		}
	}

	for _, rec := range closed {
		if !identity.IsTrackingRecord(rec) || rec.IsAutoCompleted() {
			continue
		}
		c.closedCount++
		p, ok := c.resolve(rec)
		if !ok {
			continue
		}
		if cur, exists := c.closedByPath[p]; !exists || rec.Number > cur.Number {
			c.closedByPath[p] = rec
		}
	}
	return c
}

func (c *Cache) resolve(rec *types.TrackingRecord) (string, bool) {
	p, ok := identity.ResolveDocumentPath(rec)
	if ok {
		c.paths[rec.Number] = p
	}
	return p, ok
}

// PathOf returns the resolved document path of a cached record.
func (c *Cache) PathOf(rec *types.TrackingRecord) (string, bool) {
	if rec == nil {
		return "", false
	}
	if p, ok := c.paths[rec.Number]; ok {
		return p, true
	}
	return identity.ResolveDocumentPath(rec)
}

// FindOpen returns the open record for a document, or nil.
func (c *Cache) FindOpen(path string) *types.TrackingRecord {
	rec := c.openByPath[identity.NormalizePath(path)]
	if rec == nil || c.closedNow[rec.Number] {
		return nil
	}
	return rec
}

// FindClosed returns the reopenable closed record for a document, or nil.
func (c *Cache) FindClosed(path string) *types.TrackingRecord {
	return c.closedByPath[identity.NormalizePath(path)]
}

// Open returns the open tracking records not closed during this run, in
// listing order.
func (c *Cache) Open() []*types.TrackingRecord {
	var out []*types.TrackingRecord
	for _, rec := range c.open {
		if !c.closedNow[rec.Number] {
			out = append(out, rec)
		}
	}
	return out
}

// OpenPaths returns the sorted paths that currently own an open record.
func (c *Cache) OpenPaths() []string {
	var out []string
	for p, rec := range c.openByPath {
		if !c.closedNow[rec.Number] {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// Track registers a record that was created or reopened during this run. A
// reopened record leaves the closed index.
func (c *Cache) Track(rec *types.TrackingRecord, path string) {
	path = identity.NormalizePath(path)
	if closed := c.closedByPath[path]; closed != nil && closed.Number == rec.Number {
		delete(c.closedByPath, path)
	}
	delete(c.closedNow, rec.Number)
	c.paths[rec.Number] = path
	for i, cur := range c.open {
		if cur.Number == rec.Number {
			c.open[i] = rec
			c.index(rec, path)
			return
		}
	}
	c.open = append(c.open, rec)
	c.index(rec, path)
}

func (c *Cache) index(rec *types.TrackingRecord, path string) {
	if cur := c.openByPath[path]; cur == nil || c.closedNow[cur.Number] || rec.Number <= cur.Number {
		c.openByPath[path] = rec
	}
}

// Update replaces the cached copy of a record after a write.
func (c *Cache) Update(rec *types.TrackingRecord) {
	for i, cur := range c.open {
		if cur.Number == rec.Number {
			c.open[i] = rec
		}
	}
	for p, cur := range c.openByPath {
		if cur.Number == rec.Number {
			c.openByPath[p] = rec
		}
	}
}

// MarkClosed records that a record was closed during this run so later steps
// do not act on it again.
func (c *Cache) MarkClosed(number int) {
	c.closedNow[number] = true
}

// Counts returns the number of open and reopenable closed tracking records
// seen at load time.
func (c *Cache) Counts() (open, closed int) {
	return len(c.open), c.closedCount
}

// Group is a set of open records that track the same document.
type Group struct {
	Path       string
	Primary    *types.TrackingRecord
	Duplicates []*types.TrackingRecord
}

// DuplicateGroups returns, sorted by path, every document owned by more than
// one live open record. The lowest numbered record is the primary.
func (c *Cache) DuplicateGroups() []Group {
	byPath := make(map[string][]*types.TrackingRecord)
	for _, rec := range c.Open() {
		p, ok := c.PathOf(rec)
		if !ok {
			continue
		}
		byPath[p] = append(byPath[p], rec)
	}

	var groups []Group
	for p, recs := range byPath {
		if len(recs) < 2 {
			continue
		}
		slices.SortFunc(recs, func(a, b *types.TrackingRecord) int { return a.Number - b.Number })
		groups = append(groups, Group{Path: p, Primary: recs[0], Duplicates: recs[1:]})
	}
	slices.SortFunc(groups, func(a, b Group) int { return cmp.Compare(a.Path, b.Path) })
	return groups
}

// MergeTasks computes the task list of a merged record: the union of comment
// tasks across every body, reconciled against the document's current markers.
// File tasks from the bodies are not carried over; current markers replace
// them.
func MergeTasks(markers []tags.Marker, bodies ...string) []tasks.Task {
	lists := make([][]tasks.Task, len(bodies))
	for i, b := range bodies {
		lists[i] = tasks.Parse(b)
	}
	return tasks.Reconcile(markers, tasks.MergeComments(lists...))
}
