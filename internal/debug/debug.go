package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var (
	enabled     = os.Getenv("DOCTAGS_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	jsonLogs    = false

	// stdout and stderr are swapped in tests.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// SetJSONLogs switches NewLogger to the JSON handler, for log collectors.
func SetJSONLogs(on bool) {
	jsonLogs = on
}

func Logf(format string, args ...any) {
	if enabled || verboseMode {
		fmt.Fprintf(stderr, format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...any) {
	if !quietMode {
		fmt.Fprintf(stdout, format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...any) {
	if !quietMode {
		fmt.Fprintln(stdout, args...)
	}
}

// Level returns the slog level for the current switches: debug when verbose,
// warn when quiet, info otherwise.
func Level() slog.Level {
	switch {
	case Enabled():
		return slog.LevelDebug
	case quietMode:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// NewLogger builds the structured logger handed to long-running components.
// A nil w logs to stderr.
func NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = stderr
	}
	opts := &slog.HandlerOptions{Level: Level()}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
