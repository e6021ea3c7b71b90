package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/steveyegge/doctags/internal/config"
	"github.com/steveyegge/doctags/internal/debug"
	"github.com/steveyegge/doctags/internal/identity"
	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/store/memory"
	"github.com/steveyegge/doctags/internal/trigger"
	"github.com/steveyegge/doctags/internal/types"
	"github.com/steveyegge/doctags/internal/ui"
)

var (
	previewOffline bool
	previewNoPager bool
)

var previewCmd = &cobra.Command{
	Use:     "preview <file>...",
	GroupID: "inspect",
	Short:   "Show the tracking issue that would be written for documents",
	Long: `Runs a scoped sync for the given documents without writing anything and
renders the resulting issue titles and bodies. Existing issues are read from
GitHub unless --offline is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := config.Load()
		var inner store.IssueStore = memory.New()
		if !previewOffline {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("%w\nHint: use --offline to preview without GitHub", err)
			}
			s.DryRun = true
			inner = openStore(s)
		}

		src := newSource(s)
		var paths []string
		for _, a := range args {
			p := identity.NormalizePath(a)
			if !src.InScope(p) {
				return fmt.Errorf("%s is not a Markdown document under %s/", a, src.Root)
			}
			paths = append(paths, p)
		}

		rec := newRecordingStore(inner)
		e := newEngine(s, rec, src)
		if !debug.Enabled() {
			e.Log = slog.New(slog.DiscardHandler)
		}
		e.OnMessage = nil

		ctx := rootCtx
		if ctx == nil {
			ctx = context.Background()
		}
		if _, err := e.Run(ctx, trigger.Scoped(paths...)); err != nil {
			return err
		}

		written := rec.forPaths(paths)
		if jsonOutput {
			return outputJSON(written)
		}
		return ui.ToPager(renderPreview(paths, written), ui.PagerOptions{NoPager: previewNoPager})
	},
}

func init() {
	previewCmd.Flags().BoolVar(&previewOffline, "offline", false, "Do not read existing issues from GitHub")
	previewCmd.Flags().BoolVar(&previewNoPager, "no-pager", false, "Do not pipe output to a pager")
	rootCmd.AddCommand(previewCmd)
}

func renderPreview(paths []string, written []*types.TrackingRecord) string {
	var b strings.Builder
	for _, p := range paths {
		i := slices.IndexFunc(written, func(r *types.TrackingRecord) bool {
			rp, _ := identity.ResolveDocumentPath(r)
			return rp == p
		})
		if i < 0 {
			fmt.Fprintf(&b, "%s %s: no tags, nothing would be written\n\n", ui.StatusIcon("skip"), p)
			continue
		}
		r := written[i]
		header := r.Title
		if r.Number > 0 {
			header = fmt.Sprintf("%s (#%d, %s)", r.Title, r.Number, r.State)
		}
		fmt.Fprintf(&b, "%s\n%s\n", ui.RenderCategory(header), ui.RenderMuted("labels: "+strings.Join(r.LabelNames(), ", ")))
		b.WriteString(ui.RenderMarkdown(r.Body))
		b.WriteString("\n")
	}
	return b.String()
}

// recordingStore remembers the last state of every record written through it.
type recordingStore struct {
	store.IssueStore

	mu      sync.Mutex
	order   []int
	written map[int]*types.TrackingRecord
}

func newRecordingStore(inner store.IssueStore) *recordingStore {
	return &recordingStore{IssueStore: inner, written: make(map[int]*types.TrackingRecord)}
}

func (r *recordingStore) remember(rec *types.TrackingRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.written[rec.Number]; !ok {
		r.order = append(r.order, rec.Number)
	}
	cp := *rec
	r.written[rec.Number] = &cp
}

func (r *recordingStore) CreateRecord(ctx context.Context, title, body string, labels []string) (*types.TrackingRecord, error) {
	rec, err := r.IssueStore.CreateRecord(ctx, title, body, labels)
	if err == nil {
		r.remember(rec)
	}
	return rec, err
}

func (r *recordingStore) UpdateRecord(ctx context.Context, number int, update store.RecordUpdate) (*types.TrackingRecord, error) {
	rec, err := r.IssueStore.UpdateRecord(ctx, number, update)
	if err == nil {
		r.remember(rec)
	}
	return rec, err
}

// forPaths returns the written records that track one of paths, in write
// order.
func (r *recordingStore) forPaths(paths []string) []*types.TrackingRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*types.TrackingRecord{}
	for _, n := range r.order {
		rec := r.written[n]
		if p, ok := identity.ResolveDocumentPath(rec); ok && slices.Contains(paths, p) {
			out = append(out, rec)
		}
	}
	return out
}
