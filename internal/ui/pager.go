package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions controls pager behavior
type PagerOptions struct {
	// NoPager disables the pager (--no-pager flag)
	NoPager bool
	// Out receives the content when no pager runs. Defaults to os.Stdout.
	Out io.Writer
}

// shouldUsePager reports false when the pager is disabled by option or
// DOCTAGS_NO_PAGER, or when stdout is not a TTY.
func shouldUsePager(opts PagerOptions) bool {
	if opts.NoPager || os.Getenv("DOCTAGS_NO_PAGER") != "" {
		return false
	}
	if opts.Out != nil && opts.Out != os.Stdout {
		return false
	}
	return IsTerminal()
}

// pagerCommand checks DOCTAGS_PAGER, then PAGER, and defaults to "less".
func pagerCommand() []string {
	for _, env := range []string{"DOCTAGS_PAGER", "PAGER"} {
		if v := os.Getenv(env); v != "" {
			return strings.Fields(v)
		}
	}
	return []string{"less"}
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// ToPager pipes content to a pager when stdout is a terminal and the content
// does not fit on one screen. Otherwise it writes content directly.
func ToPager(content string, opts PagerOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	direct := func() error {
		_, err := fmt.Fprint(out, content)
		return err
	}
	if !shouldUsePager(opts) {
		return direct()
	}
	if _, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil && lineCount(content) < height {
		return direct()
	}

	parts := pagerCommand()
	if len(parts) == 0 {
		return direct()
	}
	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command is user-configurable
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}
	return cmd.Run()
}
