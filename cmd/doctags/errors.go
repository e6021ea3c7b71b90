package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/steveyegge/doctags/internal/tracker"
)

// Exit codes.
const (
	exitError   = 1 // run could not proceed
	exitPartial = 2 // run completed, some documents or records failed
)

func exitCode(err error) int {
	if errors.Is(err, tracker.ErrPartialFailure) {
		return exitPartial
	}
	return exitError
}

// reportError writes err to stderr, as JSON when --json is set.
func reportError(err error) {
	writeError(os.Stderr, err, jsonOutput)
}

func writeError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]string{"error": err.Error()})
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
