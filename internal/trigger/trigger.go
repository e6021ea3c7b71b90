// Package trigger decides what a run processes from the event that started
// it: every document, the documents a push touched, or a single new comment
// on a tracking record.
package trigger

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/steveyegge/doctags/internal/identity"
	"github.com/steveyegge/doctags/internal/types"
)

// Mode is the kind of run.
type Mode int

const (
	// ModeFull processes every document.
	ModeFull Mode = iota
	// ModeScoped processes the changed documents plus every document that
	// owns an open record.
	ModeScoped
	// ModeComment appends the tasks of one new comment to its record.
	ModeComment
	// ModeSkip does nothing; Reason says why.
	ModeSkip
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeScoped:
		return "scoped"
	case ModeComment:
		return "comment"
	case ModeSkip:
		return "skip"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Event names understood by FromEvent.
const (
	EventPush         = "push"
	EventIssueComment = "issue_comment"
)

// Trigger is the decoded run request.
type Trigger struct {
	Mode  Mode
	Event string
	// Changed lists added or modified documents, for ModeScoped.
	Changed []string
	// Record and Comment are set for ModeComment.
	Record  *types.TrackingRecord
	Comment *types.Comment
	// Actor is the user that caused the event.
	Actor  string
	Reason string
}

// Full returns a full-scan trigger.
func Full() Trigger {
	return Trigger{Mode: ModeFull}
}

// Scoped returns a scoped trigger for the given paths.
func Scoped(paths ...string) Trigger {
	changed := make([]string, 0, len(paths))
	for _, p := range paths {
		p = identity.NormalizePath(p)
		if !slices.Contains(changed, p) {
			changed = append(changed, p)
		}
	}
	return Trigger{Mode: ModeScoped, Changed: changed}
}

// Comment returns a single-comment trigger.
func Comment(rec *types.TrackingRecord, c *types.Comment, actor string) Trigger {
	return Trigger{Mode: ModeComment, Event: EventIssueComment, Record: rec, Comment: c, Actor: actor}
}

type pushPayload struct {
	Commits []struct {
		Added    []string `json:"added"`
		Modified []string `json:"modified"`
	} `json:"commits"`
	Sender *user `json:"sender"`
}

type user struct {
	Login string `json:"login"`
}

type label struct {
	Name string `json:"name"`
}

type commentPayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number      int             `json:"number"`
		Title       string          `json:"title"`
		Body        string          `json:"body"`
		State       string          `json:"state"`
		HTMLURL     string          `json:"html_url"`
		Labels      []label         `json:"labels"`
		PullRequest json.RawMessage `json:"pull_request"`
	} `json:"issue"`
	Comment struct {
		ID      int64  `json:"id"`
		Body    string `json:"body"`
		HTMLURL string `json:"html_url"`
		User    *user  `json:"user"`
	} `json:"comment"`
	Sender *user `json:"sender"`
}

// FromEvent decodes a GitHub Actions event. inScope filters the changed paths
// of a push to tracked documents. Events other than push and issue_comment
// (workflow_dispatch, schedule, ...) run a full scan, as does a push without
// commit data.
func FromEvent(name string, payload []byte, inScope func(string) bool) (Trigger, error) {
	switch name {
	case EventPush:
		var p pushPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Trigger{}, fmt.Errorf("decode push event: %w", err)
		}
		if len(p.Commits) == 0 {
			t := Full()
			t.Event = name
			t.Actor = login(p.Sender)
			return t, nil
		}
		var paths []string
		for _, c := range p.Commits {
			for _, f := range slices.Concat(c.Added, c.Modified) {
				if inScope == nil || inScope(f) {
					paths = append(paths, f)
				}
			}
		}
		t := Scoped(paths...)
		t.Event = name
		t.Actor = login(p.Sender)
		return t, nil

	case EventIssueComment:
		var p commentPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Trigger{}, fmt.Errorf("decode issue_comment event: %w", err)
		}
		actor := login(p.Sender)
		switch {
		case p.Action != "" && p.Action != "created":
			return skip(name, actor, "comment "+p.Action), nil
		case len(p.Issue.PullRequest) > 0 && string(p.Issue.PullRequest) != "null":
			return skip(name, actor, "comment on a pull request"), nil
		}

		names := make([]string, len(p.Issue.Labels))
		for i, l := range p.Issue.Labels {
			names[i] = l.Name
		}
		state := types.StateOpen
		if p.Issue.State == string(types.StateClosed) {
			state = types.StateClosed
		}
		rec := &types.TrackingRecord{
			Number:  p.Issue.Number,
			Title:   p.Issue.Title,
			Body:    p.Issue.Body,
			Labels:  types.LabelsFromNames(names),
			State:   state,
			HTMLURL: p.Issue.HTMLURL,
		}
		c := &types.Comment{
			ID:      p.Comment.ID,
			Body:    p.Comment.Body,
			Author:  login(p.Comment.User),
			HTMLURL: p.Comment.HTMLURL,
		}
		return Comment(rec, c, actor), nil
	}

	t := Full()
	t.Event = name
	return t, nil
}

// FromFile reads the event payload at path. An empty path runs a full scan.
func FromFile(name, path string, inScope func(string) bool) (Trigger, error) {
	if path == "" {
		t := Full()
		t.Event = name
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Trigger{}, fmt.Errorf("read event payload: %w", err)
	}
	return FromEvent(name, data, inScope)
}

func skip(event, actor, reason string) Trigger {
	return Trigger{Mode: ModeSkip, Event: event, Actor: actor, Reason: reason}
}

func login(u *user) string {
	if u == nil {
		return ""
	}
	return u.Login
}
