package tasks

import (
	"regexp"
	"strings"

	"github.com/steveyegge/doctags/internal/tags"
)

var (
	// - TODO: x [(file)](url) <!-- source:file -->
	// - TODO: x [(comment)](url) <!-- source:comment:123 -->
	trailerLine = regexp.MustCompile(`(?m)^- (.+?) <!-- source:(file|comment):?(\d*) -->$`)
	// The provenance label rendered before the trailer, linked or bare.
	sourceLabel = regexp.MustCompile(`\s*(?:\[\((?:file|comment)\)\]\(.+?\)|\((?:file|comment)\))\s*$`)

	// - [ ] TODO: x --> Added from comment #123 <--
	checkboxLine = regexp.MustCompile(`(?m)- \[([ x])\] (.*?)( --> (Added from comment #(\d+)|Added from file|Resolved from file|Manually marked as complete) <--)?$`)
)

// statusResolved marks checkbox entries that were already settled.
const statusResolved = "Resolved from file"

// Parse recovers the task list from a record body. Each line is read with
// the current trailer grammar first and the retired checkbox grammar second,
// so bodies that mix both formats lose no task. Bodies without any
// recognizable task line yield no tasks.
func Parse(body string) []Task {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out []Task
	for _, line := range strings.Split(body, "\n") {
		if t, ok := parseTrailerLine(line); ok {
			out = append(out, t)
			continue
		}
		if t, ok := parseCheckboxLine(line); ok {
			out = append(out, t)
		}
	}
	return out
}

func parseTrailerLine(line string) (Task, bool) {
	m := trailerLine.FindStringSubmatch(line)
	if m == nil {
		return Task{}, false
	}
	text := strings.TrimSpace(sourceLabel.ReplaceAllString(m[1], ""))
	t := Task{
		Text:   text,
		Key:    tags.Normalize(text),
		Source: Source(m[2]),
	}
	if t.IsComment() {
		t.CommentID = m[3]
	}
	return t, true
}

// parseCheckboxLine reads a retired checkbox entry. Settled entries are
// dropped rather than migrated.
func parseCheckboxLine(line string) (Task, bool) {
	m := checkboxLine.FindStringSubmatch(line)
	if m == nil || m[4] == statusResolved {
		return Task{}, false
	}
	text := strings.TrimSpace(m[2])
	if text == "" {
		return Task{}, false
	}
	t := Task{
		Text:   text,
		Key:    tags.Normalize(text),
		Source: SourceFile,
	}
	if m[5] != "" {
		t.Source = SourceComment
		t.CommentID = m[5]
	}
	return t, true
}
