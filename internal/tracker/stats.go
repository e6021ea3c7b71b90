package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrPartialFailure is returned by Result.Err when some documents or records
// could not be reconciled.
var ErrPartialFailure = errors.New("run completed with failures")

// Stats tracks what one run did to the issue store.
type Stats struct {
	Documents    int `json:"documents"`     // Documents processed
	Created      int `json:"created"`       // Records created
	Updated      int `json:"updated"`       // Records whose title, body or labels changed
	Reopened     int `json:"reopened"`      // Closed records reopened for new markers
	Completed    int `json:"completed"`     // Records auto-closed at zero tasks
	Orphaned     int `json:"orphaned"`      // Records closed because their document is gone
	Merged       int `json:"merged"`        // Duplicate records closed into a primary
	Resolved     int `json:"resolved"`      // Comment tasks resolved by reaction
	CommentTasks int `json:"comment_tasks"` // Comment tasks added from a new comment
	Unchanged    int `json:"unchanged"`     // Records left untouched because nothing changed
	Errors       int `json:"errors"`        // Failures, see Result.Failures
}

// Writes reports whether the run changed anything.
func (s Stats) Writes() bool {
	return s.Created+s.Updated+s.Reopened+s.Completed+s.Orphaned+s.Merged+s.CommentTasks > 0
}

// Failure is one document or record that could not be reconciled. The run
// continues past it.
type Failure struct {
	Path   string `json:"path,omitempty"`
	Record int    `json:"record,omitempty"`
	Stage  string `json:"stage"`
	Err    error  `json:"-"`
}

func (f Failure) Error() string {
	switch {
	case f.Path != "" && f.Record != 0:
		return fmt.Sprintf("%s: %s (#%d): %v", f.Stage, f.Path, f.Record, f.Err)
	case f.Path != "":
		return fmt.Sprintf("%s: %s: %v", f.Stage, f.Path, f.Err)
	case f.Record != 0:
		return fmt.Sprintf("%s: #%d: %v", f.Stage, f.Record, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Stage, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// MarshalJSON includes the error message.
func (f Failure) MarshalJSON() ([]byte, error) {
	type failure Failure
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		failure
		Error string `json:"error"`
	}{failure(f), msg})
}

// Result represents the outcome of one run.
type Result struct {
	Mode     string    `json:"mode"`
	Stats    Stats     `json:"stats"`
	Failures []Failure `json:"failures,omitempty"`
	Skipped  string    `json:"skipped,omitempty"` // Reason the run did nothing
}

// Err returns nil when every document and record was reconciled, and an
// error wrapping ErrPartialFailure and each failure otherwise.
func (r *Result) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := []error{fmt.Errorf("%w: %d failure(s)", ErrPartialFailure, len(r.Failures))}
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
