// Package tasks reconciles the markers found in a document with the task list
// previously recorded on its tracking record, and renders and parses the
// record body that carries that list.
package tasks

import (
	"cmp"
	"slices"
	"strings"

	"github.com/steveyegge/doctags/internal/tags"
)

// Source is the provenance of a task.
type Source string

const (
	// SourceFile tasks mirror a marker in the document and vanish with it.
	SourceFile Source = "file"
	// SourceComment tasks were added by a human through a record comment and
	// survive until that comment is resolved.
	SourceComment Source = "comment"
)

// Task is one tracked unit of work on a record.
type Task struct {
	Text      string `json:"text" yaml:"text"`
	Key       string `json:"key" yaml:"key"`
	Source    Source `json:"source" yaml:"source"`
	CommentID string `json:"comment_id,omitempty" yaml:"comment_id,omitempty"`
}

// IsComment reports whether t came from a record comment.
func (t Task) IsComment() bool {
	return t.Source == SourceComment
}

// FromMarker converts a document marker into a file task.
func FromMarker(m tags.Marker) Task {
	return Task{Text: m.Text, Key: m.Key, Source: SourceFile}
}

// FromComment converts a marker found in a comment body into a comment task.
func FromComment(m tags.Marker, commentID string) Task {
	return Task{Text: m.Text, Key: m.Key, Source: SourceComment, CommentID: commentID}
}

// Reconcile computes the new task list for a document from its current
// markers and the tasks already recorded on its record.
//
// Comment tasks are always kept. A recorded file task is kept only while a
// marker with the same identity key exists; markers not yet represented are
// appended as new file tasks. No two returned tasks share a key, and when a
// file task collides with a comment task the comment task wins.
func Reconcile(markers []tags.Marker, existing []Task) []Task {
	current := make(map[string]bool, len(markers))
	for _, m := range markers {
		current[m.Key] = true
	}

	var (
		seen = make(map[string]bool, len(markers)+len(existing))
		out  []Task
	)
	add := func(t Task) {
		if seen[t.Key] {
			return
		}
		seen[t.Key] = true
		out = append(out, t)
	}

	for _, t := range existing {
		if t.IsComment() {
			add(t)
		}
	}
	for _, t := range existing {
		if !t.IsComment() && current[t.Key] {
			add(t)
		}
	}
	for _, m := range markers {
		add(FromMarker(m))
	}

	Sort(out)
	return out
}

// Sort orders tasks by keyword precedence (TODO, PLACEHOLDER, NOTE, other),
// then by case-insensitive text. The sort is stable.
func Sort(ts []Task) {
	slices.SortStableFunc(ts, func(a, b Task) int {
		if c := cmp.Compare(tags.RankOf(a.Text), tags.RankOf(b.Text)); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
	})
}

// CommentTasks returns the comment tasks in ts.
func CommentTasks(ts []Task) []Task {
	var out []Task
	for _, t := range ts {
		if t.IsComment() {
			out = append(out, t)
		}
	}
	return out
}

// WithoutComments drops comment tasks created by any of the given comments.
func WithoutComments(ts []Task, commentIDs map[string]bool) []Task {
	var out []Task
	for _, t := range ts {
		if t.IsComment() && t.CommentID != "" && commentIDs[t.CommentID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MergeComments unions comment tasks by identity key. The first copy of a
// key wins.
func MergeComments(lists ...[]Task) []Task {
	seen := make(map[string]bool)
	var out []Task
	for _, list := range lists {
		for _, t := range list {
			if !t.IsComment() || seen[t.Key] {
				continue
			}
			seen[t.Key] = true
			out = append(out, t)
		}
	}
	return out
}

// Keys returns the set of identity keys in ts.
func Keys(ts []Task) map[string]bool {
	out := make(map[string]bool, len(ts))
	for _, t := range ts {
		out[t.Key] = true
	}
	return out
}
