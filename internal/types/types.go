// Package types defines the tracking-record model shared by every doctags
// component. External issue-tracker payloads are converted into these types
// once, at the store boundary, so internal logic never inspects raw API shapes.
package types

import (
	"slices"
	"strconv"
)

// Labels managed by doctags.
const (
	// LabelTracking marks a record as a doctags tracking record.
	LabelTracking = "doc-tags"

	// LabelComplete marks a record that was closed because it reached zero
	// tasks. Such records are never reopened; a new record is created instead.
	LabelComplete = "doc-tags-complete"

	// LabelDuplicate marks a record closed by the deduplicator.
	LabelDuplicate = "duplicate"
)

// RecordState is the open/closed state of a tracking record.
type RecordState string

const (
	StateOpen   RecordState = "open"
	StateClosed RecordState = "closed"
)

// IsValid reports whether s is a known record state.
func (s RecordState) IsValid() bool {
	return s == StateOpen || s == StateClosed
}

// Label is a single label attached to a record.
type Label struct {
	Name string `json:"name"`
}

// TrackingRecord is an issue in the external tracker that represents the open
// work items for one document.
type TrackingRecord struct {
	Number  int         `json:"number"`
	Title   string      `json:"title"`
	Body    string      `json:"body"`
	Labels  []Label     `json:"labels,omitempty"`
	State   RecordState `json:"state"`
	HTMLURL string      `json:"html_url,omitempty"`
}

// HasLabel reports whether the record carries the named label.
func (r *TrackingRecord) HasLabel(name string) bool {
	if r == nil {
		return false
	}
	for _, l := range r.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// IsAutoCompleted reports whether the record was closed by doctags because it
// ran out of tasks.
func (r *TrackingRecord) IsAutoCompleted() bool {
	return r.HasLabel(LabelComplete)
}

// LabelNames returns the record's label names in their original order.
func (r *TrackingRecord) LabelNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.Labels))
	for i, l := range r.Labels {
		names[i] = l.Name
	}
	return names
}

// Ref returns the "#N" reference used in log lines and notes.
func (r *TrackingRecord) Ref() string {
	if r == nil {
		return "#?"
	}
	return "#" + strconv.Itoa(r.Number)
}

// LabelsFromNames converts plain names into Label values.
func LabelsFromNames(names []string) []Label {
	labels := make([]Label, len(names))
	for i, n := range names {
		labels[i] = Label{Name: n}
	}
	return labels
}

// MergeLabels returns the ordered union of the given label sets. The first
// occurrence of a name wins; empty names are dropped.
func MergeLabels(sets ...[]string) []string {
	var out []string
	for _, set := range sets {
		for _, name := range set {
			if name == "" || slices.Contains(out, name) {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}

// SameLabels reports whether a and b contain the same names, ignoring order.
func SameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

// Comment is a discussion comment on a tracking record.
type Comment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	Author  string `json:"author"`
	HTMLURL string `json:"html_url,omitempty"`
}

// CommentID returns the comment id in the string form stored in task trailers.
func (c *Comment) CommentID() string {
	return strconv.FormatInt(c.ID, 10)
}
