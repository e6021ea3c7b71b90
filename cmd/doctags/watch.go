package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/steveyegge/doctags/internal/debug"
	"github.com/steveyegge/doctags/internal/docs"
	"github.com/steveyegge/doctags/internal/identity"
	"github.com/steveyegge/doctags/internal/tracker"
	"github.com/steveyegge/doctags/internal/trigger"
	"github.com/steveyegge/doctags/internal/ui"
)

var (
	watchDebounce  time.Duration
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "sync",
	Short:   "Sync documents as they change",
	Long: `Watches the docs directory and runs a scoped sync of the documents that
changed once edits settle. Runs a full sync first unless --no-initial is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		src := newSource(s)
		e := newEngine(s, openStore(s), src)

		ctx := rootCtx
		if ctx == nil {
			ctx = context.Background()
		}
		if !watchNoInitial {
			if err := runOnce(ctx, e, trigger.Full()); err != nil {
				return err
			}
		}
		return watch(ctx, src, watchDebounce, func(paths []string) {
			debug.Logf("changed: %v", paths)
			if err := runOnce(ctx, e, trigger.Scoped(paths...)); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before syncing changed documents")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "Skip the full sync on start")
	rootCmd.AddCommand(watchCmd)
}

// runOnce runs the engine and prints the summary. Partial failures are
// reported but do not stop the watch.
func runOnce(ctx context.Context, e *tracker.Engine, trig trigger.Trigger) error {
	res, err := e.Run(ctx, trig)
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(res)
	}
	if !debug.IsQuiet() || len(res.Failures) > 0 {
		writeSummary(os.Stdout, res, false)
	}
	return nil
}

// watch blocks until ctx is done, calling onChange with batches of changed
// documents.
func watch(ctx context.Context, src *docs.Source, quiet time.Duration, onChange func([]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addTree(watcher, filepath.FromSlash(src.Root)); err != nil {
		return fmt.Errorf("watching %s: %w", src.Root, err)
	}

	debouncer := NewDebouncer(quiet, onChange)
	defer debouncer.CancelAndWait()

	debug.PrintNormal("%s Watching %s for changes... (Press Ctrl+C to exit)\n", ui.RenderAccent(ui.IconPass), src.Root)
	for {
		select {
		case <-ctx.Done():
			debug.PrintNormal("\nStopped watching.\n")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
					}
					continue
				}
			}
			if p, ok := changedDocument(src, event); ok {
				debouncer.Trigger(p)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}

// addTree watches dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

// changedDocument returns the document path an event touches, if it is a
// tracked document. Removed and renamed documents are still reported; the
// scoped sync leaves them to the orphan sweep.
func changedDocument(src *docs.Source, event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	p := identity.NormalizePath(filepath.ToSlash(event.Name))
	if !src.InScope(p) {
		return "", false
	}
	return p, true
}
