package github

import (
	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/types"
)

// IssueToRecord converts a GitHub issue into a tracking record. Unknown
// states are treated as open.
func IssueToRecord(gh *Issue) *types.TrackingRecord {
	if gh == nil {
		return nil
	}
	state := types.StateOpen
	if gh.State == string(types.StateClosed) {
		state = types.StateClosed
	}
	return &types.TrackingRecord{
		Number:  gh.Number,
		Title:   gh.Title,
		Body:    gh.Body,
		Labels:  types.LabelsFromNames(LabelNames(gh.Labels)),
		State:   state,
		HTMLURL: gh.HTMLURL,
	}
}

// CommentToType converts a GitHub issue comment.
func CommentToType(gh *IssueComment) *types.Comment {
	if gh == nil {
		return nil
	}
	c := &types.Comment{
		ID:      gh.ID,
		Body:    gh.Body,
		HTMLURL: gh.HTMLURL,
	}
	if gh.User != nil {
		c.Author = gh.User.Login
	}
	return c
}

// UpdateFromRecord converts a record update into the PATCH payload.
func UpdateFromRecord(u store.RecordUpdate) IssueUpdate {
	out := IssueUpdate{
		Title: u.Title,
		Body:  u.Body,
	}
	if u.State != nil {
		s := string(*u.State)
		out.State = &s
	}
	if u.Labels != nil {
		labels := append([]string{}, u.Labels...)
		out.Labels = &labels
	}
	return out
}

// ReactionContents returns the content of each reaction.
func ReactionContents(reactions []Reaction) []string {
	out := make([]string, len(reactions))
	for i, r := range reactions {
		out[i] = r.Content
	}
	return out
}
