package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/doctags/internal/cache"
	"github.com/steveyegge/doctags/internal/identity"
	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/tags"
	"github.com/steveyegge/doctags/internal/tasks"
	"github.com/steveyegge/doctags/internal/telemetry"
	"github.com/steveyegge/doctags/internal/trigger"
	"github.com/steveyegge/doctags/internal/types"
)

// Notes posted on records.
const (
	noteCompleted = "All tasks resolved. Closing this issue."
	noteReopened  = "New tags detected in source file. Reopening this issue."
	noteOrphaned  = "Source file no longer exists. Closing orphaned issue."
	noteDuplicate = "Duplicate of #%d. Consolidating. Closing this one."
)

// BotLogin is the account the workflow posts as. Comments from it are never
// mentioned in replies.
const BotLogin = "github-actions[bot]"

// DefaultReaction resolves comment tasks when no reaction is configured.
const DefaultReaction = "rocket"

// DefaultConcurrency bounds concurrent reaction lookups.
const DefaultConcurrency = 4

// Failure stages.
const (
	StageProcess   = "process"
	StageReactions = "reactions"
	StageResolve   = "resolve"
	StageOrphan    = "orphan"
	StageDedup     = "dedup"
	StageComment   = "comment"
)

// DocumentSource lists and reads the tracked documents.
type DocumentSource interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, path string) (string, error)
}

// Links builds the web URLs rendered into record bodies.
type Links struct {
	ServerURL string // e.g. https://github.com
	Owner     string
	Repo      string
	Branch    string
}

func (l Links) repoURL() string {
	if l.Owner == "" || l.Repo == "" {
		return ""
	}
	return strings.TrimRight(l.ServerURL, "/") + "/" + l.Owner + "/" + l.Repo
}

// EditURL returns the web editor URL of a document.
func (l Links) EditURL(path string) string {
	base := l.repoURL()
	if base == "" {
		return path
	}
	return base + "/edit/" + l.Branch + "/" + path
}

// RecordURL returns the web URL of a record, or "" for records that do not
// exist yet.
func (l Links) RecordURL(number int) string {
	base := l.repoURL()
	if base == "" || number <= 0 {
		return ""
	}
	return base + "/issues/" + strconv.Itoa(number)
}

// Engine keeps tracking records in sync with the markers in documents.
type Engine struct {
	Store  store.IssueStore
	Docs   DocumentSource
	Labels identity.LabelPolicy
	Links  Links

	// Reaction resolves comment tasks; DefaultReaction when empty.
	Reaction string
	// Concurrency bounds reaction lookups; DefaultConcurrency when <= 0.
	Concurrency int
	// Actor is the account running the engine. Comment authors equal to it
	// are not mentioned in replies.
	Actor string

	Log     *slog.Logger
	Metrics *telemetry.Metrics

	// Callbacks for UI feedback (optional).
	OnMessage func(msg string)
	OnWarning func(msg string)
}

// NewEngine creates an engine with the default label policy.
func NewEngine(st store.IssueStore, docs DocumentSource, links Links) *Engine {
	return &Engine{
		Store:  st,
		Docs:   docs,
		Labels: identity.DefaultLabelPolicy(),
		Links:  links,
	}
}

var tracer = telemetry.Tracer("github.com/steveyegge/doctags/tracker")

func (e *Engine) log() *slog.Logger {
	if e.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Log
}

func (e *Engine) reaction() string {
	if e.Reaction == "" {
		return DefaultReaction
	}
	return e.Reaction
}

func (e *Engine) concurrency() int {
	if e.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return e.Concurrency
}

// Run performs one run for the given trigger. Failures confined to one
// document or record are collected in the result and the run continues;
// the returned error is non-nil only when the run could not proceed at all.
func (e *Engine) Run(ctx context.Context, trig trigger.Trigger) (*Result, error) {
	ctx, span := tracer.Start(ctx, "doctags.run",
		trace.WithAttributes(attribute.String("doctags.mode", trig.Mode.String())))
	defer span.End()

	res := &Result{Mode: trig.Mode.String()}
	e.Metrics.Run(ctx, res.Mode)

	var err error
	switch trig.Mode {
	case trigger.ModeSkip:
		res.Skipped = trig.Reason
		e.msg("Nothing to do: %s", trig.Reason)
	case trigger.ModeComment:
		err = e.runComment(ctx, trig, res)
	default:
		err = e.runDocuments(ctx, trig, res)
	}

	res.Stats.Errors = len(res.Failures)
	e.record(ctx, res.Stats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// run is the state of one document run.
type run struct {
	*Engine
	cache  *cache.Cache
	res    *Result
	listed map[string]bool
}

func (e *Engine) runDocuments(ctx context.Context, trig trigger.Trigger, res *Result) error {
	c, err := cache.Load(ctx, e.Store)
	if err != nil {
		return err
	}
	open, closed := c.Counts()
	e.log().Debug("loaded records", "open", open, "closed", closed)

	all, err := e.Docs.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	r := &run{Engine: e, cache: c, res: res, listed: make(map[string]bool, len(all))}
	for _, p := range all {
		r.listed[p] = true
	}

	for _, path := range r.selectDocuments(trig, all) {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Stats.Documents++
		if err := r.processDocument(ctx, path); err != nil {
			r.fail(ctx, Failure{Path: path, Record: r.recordFor(path), Stage: StageProcess, Err: err})
		}
	}

	r.resolveReactions(ctx)
	r.sweepOrphans(ctx)
	r.dedupe(ctx)
	return ctx.Err()
}

// selectDocuments returns the documents a trigger processes, in order.
//
// A scoped run covers the changed documents that still exist plus every
// document that owns an open record, so marker removals outside the diff are
// still seen.
func (r *run) selectDocuments(trig trigger.Trigger, all []string) []string {
	if trig.Mode != trigger.ModeScoped {
		return all
	}
	var out []string
	for _, p := range trig.Changed {
		p = identity.NormalizePath(p)
		if !r.listed[p] {
			r.log().Info("changed document no longer exists; orphan sweep will handle it", "path", p)
			continue
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	for _, p := range r.cache.OpenPaths() {
		if r.listed[p] && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *run) recordFor(path string) int {
	if rec := r.cache.FindOpen(path); rec != nil {
		return rec.Number
	}
	return 0
}

func (r *run) fail(ctx context.Context, f Failure) {
	r.failed(ctx, r.res, f)
}

func (e *Engine) failed(ctx context.Context, res *Result, f Failure) {
	res.Failures = append(res.Failures, f)
	e.Metrics.Failure(ctx, f.Stage)
	e.log().Warn("reconcile failed", "stage", f.Stage, "path", f.Path, "record", f.Record, "err", f.Err)
	e.warn("%s", f.Error())
}

// processDocument reconciles one document with its record.
func (r *run) processDocument(ctx context.Context, path string) error {
	ctx, span := tracer.Start(ctx, "doctags.document", trace.WithAttributes(attribute.String("doctags.path", path)))
	defer span.End()

	text, err := r.Docs.Read(ctx, path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	markers := tags.Extract(text)
	rec := r.cache.FindOpen(path)
	if rec == nil && len(markers) == 0 {
		return nil
	}
	r.log().Debug("document", "path", path, "markers", len(markers), "record", rec.Ref())

	if rec != nil {
		ts := tasks.Reconcile(markers, tasks.Parse(rec.Body))
		return r.sync(ctx, rec, path, ts)
	}
	if closed := r.cache.FindClosed(path); closed != nil {
		return r.reopen(ctx, closed, path, markers)
	}
	return r.create(ctx, path, markers)
}

func (e *Engine) recordURL(rec *types.TrackingRecord) string {
	if u := e.Links.RecordURL(rec.Number); u != "" {
		return u
	}
	return rec.HTMLURL
}

// body renders the body of a record for path.
func (e *Engine) body(rec *types.TrackingRecord, path string, ts []tasks.Task) string {
	links := tasks.Links{FileEdit: e.Links.EditURL(path)}
	if rec != nil {
		links.RecordURL = e.recordURL(rec)
	}
	return tasks.Body{
		Path:     path,
		EditURL:  links.FileEdit,
		Reaction: e.reaction(),
		Tasks:    tasks.Render(ts, links),
	}.String()
}

// labels returns the label set written to an open record.
func (e *Engine) labels(rec *types.TrackingRecord, path string) []string {
	var existing []string
	if rec != nil {
		existing = rec.LabelNames()
	}
	return types.MergeLabels(existing, []string{types.LabelTracking}, e.Labels.Labels(path))
}

// sync writes ts to rec, skipping the write when nothing changed, and closes
// the record when ts is empty.
func (r *run) sync(ctx context.Context, rec *types.TrackingRecord, path string, ts []tasks.Task) error {
	title := identity.Title(path, len(ts))
	body := r.body(rec, path, ts)
	labels := r.labels(rec, path)
	r.Metrics.Tasks(ctx, len(ts))

	var update store.RecordUpdate
	if title != rec.Title {
		update.Title = &title
	}
	if body != rec.Body {
		update.Body = &body
	}
	if !types.SameLabels(labels, rec.LabelNames()) {
		update.Labels = labels
	}

	if update.IsEmpty() {
		r.res.Stats.Unchanged++
	} else {
		updated, err := r.Store.UpdateRecord(ctx, rec.Number, update)
		if err != nil {
			return fmt.Errorf("update %s: %w", rec.Ref(), err)
		}
		r.cache.Update(updated)
		rec = updated
		r.res.Stats.Updated++
		r.log().Info("updated record", "record", rec.Number, "path", path, "tasks", len(ts))
		r.msg("Updated %s for %s (%d open)", rec.Ref(), path, len(ts))
	}

	if len(ts) == 0 {
		return r.complete(ctx, rec, path)
	}
	return nil
}

// complete closes a record that has no tasks left and marks it so it is
// never reopened.
func (r *run) complete(ctx context.Context, rec *types.TrackingRecord, path string) error {
	if err := r.Store.AddComment(ctx, rec.Number, noteCompleted); err != nil {
		return fmt.Errorf("comment on %s: %w", rec.Ref(), err)
	}
	labels := types.MergeLabels([]string{types.LabelTracking}, r.Labels.Labels(path), []string{types.LabelComplete})
	if _, err := r.Store.UpdateRecord(ctx, rec.Number, store.RecordUpdate{
		State:  store.Ptr(types.StateClosed),
		Labels: labels,
	}); err != nil {
		return fmt.Errorf("close %s: %w", rec.Ref(), err)
	}
	r.cache.MarkClosed(rec.Number)
	r.res.Stats.Completed++
	r.log().Info("closed completed record", "record", rec.Number, "path", path)
	r.msg("Closed %s: all tasks in %s resolved", rec.Ref(), path)
	return nil
}

// reopen brings back the most recent closed record for path with a task list
// built from the current markers only.
func (r *run) reopen(ctx context.Context, closed *types.TrackingRecord, path string, markers []tags.Marker) error {
	ts := tasks.Reconcile(markers, nil)
	title := identity.Title(path, len(ts))
	body := r.body(closed, path, ts)
	updated, err := r.Store.UpdateRecord(ctx, closed.Number, store.RecordUpdate{
		Title:  &title,
		Body:   &body,
		State:  store.Ptr(types.StateOpen),
		Labels: r.labels(closed, path),
	})
	if err != nil {
		return fmt.Errorf("reopen %s: %w", closed.Ref(), err)
	}
	r.cache.Track(updated, path)
	r.res.Stats.Reopened++
	r.Metrics.Tasks(ctx, len(ts))
	r.log().Info("reopened record", "record", updated.Number, "path", path, "tasks", len(ts))
	r.msg("Reopened %s for %s (%d open)", updated.Ref(), path, len(ts))

	if err := r.Store.AddComment(ctx, updated.Number, noteReopened); err != nil {
		return fmt.Errorf("comment on %s: %w", updated.Ref(), err)
	}
	return nil
}

func (r *run) create(ctx context.Context, path string, markers []tags.Marker) error {
	ts := tasks.Reconcile(markers, nil)
	title := identity.Title(path, len(ts))
	rec, err := r.Store.CreateRecord(ctx, title, r.body(nil, path, ts), r.labels(nil, path))
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	r.cache.Track(rec, path)
	r.res.Stats.Created++
	r.Metrics.Tasks(ctx, len(ts))
	r.log().Info("created record", "record", rec.Number, "path", path, "tasks", len(ts))
	r.msg("Created %s for %s (%d open)", rec.Ref(), path, len(ts))
	return nil
}

// markers returns the current markers of path, or none when it is gone.
func (r *run) markers(ctx context.Context, path string) ([]tags.Marker, error) {
	if !r.listed[path] {
		return nil, nil
	}
	text, err := r.Docs.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return tags.Extract(text), nil
}

type reactionCheck struct {
	rec      *types.TrackingRecord
	tasks    []tasks.Task
	resolved map[string]bool
	warnings []string
	err      error
}

// resolveReactions removes comment tasks whose comment carries the resolving
// reaction. Lookups run concurrently; writes are sequential.
func (r *run) resolveReactions(ctx context.Context) {
	var checks []*reactionCheck
	for _, rec := range r.cache.Open() {
		var withID []tasks.Task
		for _, t := range tasks.CommentTasks(tasks.Parse(rec.Body)) {
			if t.CommentID != "" {
				withID = append(withID, t)
			}
		}
		if len(withID) > 0 {
			checks = append(checks, &reactionCheck{rec: rec, tasks: withID, resolved: make(map[string]bool)})
		}
	}
	if len(checks) == 0 {
		return
	}

	want := r.reaction()
	var g errgroup.Group
	g.SetLimit(r.concurrency())
	for _, c := range checks {
		g.Go(func() error {
			for _, t := range c.tasks {
				if c.resolved[t.CommentID] {
					continue
				}
				contents, err := r.Store.ListReactions(ctx, t.CommentID)
				switch {
				case errors.Is(err, store.ErrNotFound):
					c.warnings = append(c.warnings, fmt.Sprintf("comment %s on %s no longer exists", t.CommentID, c.rec.Ref()))
				case err != nil:
					c.err = fmt.Errorf("reactions for comment %s: %w", t.CommentID, err)
				case slices.Contains(contents, want):
					c.resolved[t.CommentID] = true
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range checks {
		for _, w := range c.warnings {
			r.log().Warn(w)
			r.warn("%s", w)
		}
		path, _ := r.cache.PathOf(c.rec)
		if c.err != nil {
			r.fail(ctx, Failure{Path: path, Record: c.rec.Number, Stage: StageReactions, Err: c.err})
		}
		if len(c.resolved) == 0 {
			continue
		}
		if err := r.applyResolved(ctx, c.rec, c.resolved); err != nil {
			r.fail(ctx, Failure{Path: path, Record: c.rec.Number, Stage: StageResolve, Err: err})
		}
	}
}

// applyResolved drops the resolved comment tasks from a fresh copy of rec and
// re-reconciles it against the current document.
func (r *run) applyResolved(ctx context.Context, rec *types.TrackingRecord, resolved map[string]bool) error {
	fresh, err := r.Store.GetRecord(ctx, rec.Number)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", rec.Ref(), err)
	}
	path, ok := r.cache.PathOf(fresh)
	if !ok {
		return fmt.Errorf("%s: cannot resolve document path", rec.Ref())
	}
	before := tasks.Parse(fresh.Body)
	remaining := tasks.WithoutComments(before, resolved)
	markers, err := r.markers(ctx, path)
	if err != nil {
		return err
	}
	n := len(before) - len(remaining)
	r.res.Stats.Resolved += n
	r.log().Info("resolved comment tasks", "record", rec.Number, "path", path, "resolved", n)
	return r.sync(ctx, fresh, path, tasks.Reconcile(markers, remaining))
}

// sweepOrphans closes open records whose document no longer exists.
func (r *run) sweepOrphans(ctx context.Context) {
	for _, rec := range r.cache.Open() {
		path, ok := r.cache.PathOf(rec)
		if !ok || r.listed[path] {
			continue
		}
		if err := r.closeOrphan(ctx, rec, path); err != nil {
			r.fail(ctx, Failure{Path: path, Record: rec.Number, Stage: StageOrphan, Err: err})
		}
	}
}

func (r *run) closeOrphan(ctx context.Context, rec *types.TrackingRecord, path string) error {
	if err := r.Store.AddComment(ctx, rec.Number, noteOrphaned); err != nil {
		return fmt.Errorf("comment on %s: %w", rec.Ref(), err)
	}
	if _, err := r.Store.UpdateRecord(ctx, rec.Number, store.RecordUpdate{State: store.Ptr(types.StateClosed)}); err != nil {
		return fmt.Errorf("close %s: %w", rec.Ref(), err)
	}
	r.cache.MarkClosed(rec.Number)
	r.res.Stats.Orphaned++
	r.log().Info("closed orphaned record", "record", rec.Number, "path", path)
	r.msg("Closed %s: %s no longer exists", rec.Ref(), path)
	return nil
}

// dedupe merges every group of open records that track the same document
// into its lowest numbered record.
func (r *run) dedupe(ctx context.Context) {
	for _, g := range r.cache.DuplicateGroups() {
		if err := r.merge(ctx, g); err != nil {
			r.fail(ctx, Failure{Path: g.Path, Record: g.Primary.Number, Stage: StageDedup, Err: err})
		}
	}
}

func (r *run) merge(ctx context.Context, g cache.Group) error {
	primary, err := r.Store.GetRecord(ctx, g.Primary.Number)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", g.Primary.Ref(), err)
	}
	bodies := []string{primary.Body}
	for _, dup := range g.Duplicates {
		fresh, err := r.Store.GetRecord(ctx, dup.Number)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", dup.Ref(), err)
		}
		bodies = append(bodies, fresh.Body)
	}
	markers, err := r.markers(ctx, g.Path)
	if err != nil {
		return err
	}

	r.log().Info("merging duplicate records", "path", g.Path, "primary", primary.Number, "duplicates", len(g.Duplicates))
	if err := r.sync(ctx, primary, g.Path, cache.MergeTasks(markers, bodies...)); err != nil {
		return err
	}
	for _, dup := range g.Duplicates {
		if err := r.closeDuplicate(ctx, dup, primary); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) closeDuplicate(ctx context.Context, dup, primary *types.TrackingRecord) error {
	if err := r.Store.AddComment(ctx, dup.Number, fmt.Sprintf(noteDuplicate, primary.Number)); err != nil {
		return fmt.Errorf("comment on %s: %w", dup.Ref(), err)
	}
	if err := r.Store.AddLabels(ctx, dup.Number, []string{types.LabelDuplicate}); err != nil {
		r.log().Warn("could not label duplicate", "record", dup.Number, "err", err)
	}
	if _, err := r.Store.UpdateRecord(ctx, dup.Number, store.RecordUpdate{State: store.Ptr(types.StateClosed)}); err != nil {
		return fmt.Errorf("close %s: %w", dup.Ref(), err)
	}
	r.cache.MarkClosed(dup.Number)
	r.res.Stats.Merged++
	r.msg("Closed %s as duplicate of %s", dup.Ref(), primary.Ref())
	return nil
}

func (e *Engine) record(ctx context.Context, s Stats) {
	for action, n := range map[string]int{
		"created":   s.Created,
		"updated":   s.Updated,
		"reopened":  s.Reopened,
		"completed": s.Completed,
		"orphaned":  s.Orphaned,
		"merged":    s.Merged,
		"resolved":  s.Resolved,
		"comment":   s.CommentTasks,
	} {
		e.Metrics.Action(ctx, action, n)
	}
}

func (e *Engine) msg(format string, args ...any) {
	if e.OnMessage != nil {
		e.OnMessage(fmt.Sprintf(format, args...))
	}
}

func (e *Engine) warn(format string, args ...any) {
	if e.OnWarning != nil {
		e.OnWarning(fmt.Sprintf(format, args...))
	}
}
