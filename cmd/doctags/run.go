package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steveyegge/doctags/internal/config"
	"github.com/steveyegge/doctags/internal/debug"
	"github.com/steveyegge/doctags/internal/tracker"
	"github.com/steveyegge/doctags/internal/trigger"
	"github.com/steveyegge/doctags/internal/ui"
)

var runCmd = &cobra.Command{
	Use:     "run",
	GroupID: "sync",
	Short:   "Sync for the current GitHub Actions event",
	Long: `Reads GITHUB_EVENT_NAME and GITHUB_EVENT_PATH and runs the matching mode:
a push scans the changed documents (or everything when the push has no
commits), a new issue comment adds its tags to the tracking issue, and any
other event scans every document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		src := newSource(s)
		trig, err := trigger.FromFile(s.EventName, s.EventPath, src.InScope)
		if err != nil {
			return err
		}
		if trig.Actor == "" {
			trig.Actor = s.Actor
		}
		debug.Logf("event %q: mode %s", s.EventName, trig.Mode)
		return execute(cmd, newEngine(s, openStore(s), src), trig)
	},
}

var scanCmd = &cobra.Command{
	Use:     "scan [paths...]",
	GroupID: "sync",
	Short:   "Scan every document, or only the given ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		trig := trigger.Full()
		if len(args) > 0 {
			trig = trigger.Scoped(args...)
		}
		return execute(cmd, newEngine(s, openStore(s), newSource(s)), trig)
	},
}

var commentCmd = &cobra.Command{
	Use:     "comment <issue> <comment-id>",
	GroupID: "sync",
	Short:   "Add the tags of one issue comment to its tracking issue",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil || number <= 0 {
			return fmt.Errorf("invalid issue number %q", args[0])
		}
		s, err := loadSettings()
		if err != nil {
			return err
		}
		st := openStore(s)
		ctx := cmd.Context()
		rec, err := st.GetRecord(ctx, number)
		if err != nil {
			return fmt.Errorf("fetch issue #%d: %w", number, err)
		}
		c, err := st.GetComment(ctx, args[1])
		if err != nil {
			return fmt.Errorf("fetch comment %s: %w", args[1], err)
		}
		return execute(cmd, newEngine(s, st, newSource(s)), trigger.Comment(rec, c, s.Actor))
	},
}

func init() {
	rootCmd.AddCommand(runCmd, scanCmd, commentCmd)
}

// execute runs the engine once and reports the result.
func execute(cmd *cobra.Command, e *tracker.Engine, trig trigger.Trigger) error {
	ctx := cmd.Context()
	if rootCtx != nil {
		ctx = rootCtx
	}
	res, err := e.Run(ctx, trig)
	if err != nil {
		return err
	}
	if jsonOutput {
		if err := outputJSON(res); err != nil {
			return err
		}
	} else if !debug.IsQuiet() || res.Err() != nil {
		writeSummary(os.Stdout, res, config.GetBool(config.KeyDryRun))
	}
	return res.Err()
}

// writeSummary renders a run result for humans.
func writeSummary(w io.Writer, res *tracker.Result, dryRun bool) {
	title := "Sync " + res.Mode
	if dryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(w, ui.RenderCategory(title))
	if res.Skipped != "" {
		fmt.Fprintf(w, "%s skipped: %s\n", ui.StatusIcon("skip"), res.Skipped)
		return
	}

	st := res.Stats
	fmt.Fprintf(w, "  %s\n", ui.RenderCount("documents", st.Documents, ui.AccentStyle))
	for _, c := range []struct {
		label string
		n     int
	}{
		{"created", st.Created},
		{"updated", st.Updated},
		{"reopened", st.Reopened},
		{"completed", st.Completed},
		{"resolved", st.Resolved},
		{"comment tasks", st.CommentTasks},
		{"orphaned", st.Orphaned},
		{"merged", st.Merged},
		{"unchanged", st.Unchanged},
	} {
		fmt.Fprintf(w, "  %s\n", ui.RenderCount(c.label, c.n, ui.PassStyle))
	}

	if len(res.Failures) == 0 {
		fmt.Fprintf(w, "%s %s\n", ui.StatusIcon("pass"), "no failures")
		return
	}
	fmt.Fprintln(w, ui.RenderSeparator())
	fmt.Fprintf(w, "%s %d failure(s)\n", ui.StatusIcon("fail"), len(res.Failures))
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  %s%s\n", ui.TreeLast, ui.RenderFail(f.Error()))
	}
}
