package main

import (
	"fmt"
	"os"

	"github.com/steveyegge/doctags/internal/config"
	"github.com/steveyegge/doctags/internal/debug"
	"github.com/steveyegge/doctags/internal/docs"
	"github.com/steveyegge/doctags/internal/github"
	"github.com/steveyegge/doctags/internal/identity"
	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/telemetry"
	"github.com/steveyegge/doctags/internal/tracker"
	"github.com/steveyegge/doctags/internal/ui"
)

// loadSettings resolves configuration and checks it can reach GitHub.
func loadSettings() (config.Settings, error) {
	s := config.Load()
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return s, nil
}

// openStore returns the GitHub-backed issue store for s, instrumented when
// telemetry is on and wrapped in the dry-run store when dry_run is set.
func openStore(s config.Settings) store.IssueStore {
	client := github.NewClient(s.Token, s.Owner, s.Repo).WithBaseURL(s.APIURL)
	var st store.IssueStore = telemetry.WrapStore(github.NewStore(client))
	if s.DryRun {
		st = store.NewDryRun(st, debug.NewLogger(os.Stderr))
	}
	return st
}

// newSource returns the document source for the working tree.
func newSource(s config.Settings) *docs.Source {
	return docs.NewOSSource(".", s.DocsDir)
}

// newEngine wires an engine from settings.
func newEngine(s config.Settings, st store.IssueStore, src tracker.DocumentSource) *tracker.Engine {
	e := tracker.NewEngine(st, src, tracker.Links{
		ServerURL: s.ServerURL,
		Owner:     s.Owner,
		Repo:      s.Repo,
		Branch:    s.Branch,
	})
	e.Labels = identity.LabelPolicy{
		RootDir:        identity.NormalizePath(s.DocsDir),
		ArchiveSegment: s.ArchiveSegment,
		DefaultLabel:   s.DefaultLabel,
	}
	e.Reaction = s.Reaction
	e.Concurrency = s.Concurrency
	e.Actor = s.Actor
	e.Log = debug.NewLogger(os.Stderr)
	e.Metrics = telemetry.NewMetrics()
	if !jsonOutput {
		e.OnMessage = func(msg string) { debug.PrintlnNormal(msg) }
		e.OnWarning = func(msg string) {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderWarn(ui.IconWarn), msg)
		}
	}
	return e
}
