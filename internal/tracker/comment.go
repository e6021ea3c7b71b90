package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/steveyegge/doctags/internal/identity"
	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/tags"
	"github.com/steveyegge/doctags/internal/tasks"
	"github.com/steveyegge/doctags/internal/trigger"
	"github.com/steveyegge/doctags/internal/types"
)

// runComment appends the markers of one new comment to its record as comment
// tasks and replies with how to resolve them. Markers that already have a
// comment task on the record are skipped, so replaying the same comment writes
// nothing. A marker that only matches a file task is still appended; the next
// document run drops the file copy and the comment task outlives the marker.
func (e *Engine) runComment(ctx context.Context, trig trigger.Trigger, res *Result) error {
	if trig.Record == nil || trig.Comment == nil {
		return errors.New("comment trigger without record or comment")
	}
	if !trig.Record.HasLabel(types.LabelTracking) {
		res.Skipped = fmt.Sprintf("%s is not a tracking record", trig.Record.Ref())
		e.msg("Skipping comment on %s: not a tracking record", trig.Record.Ref())
		return nil
	}

	markers := tags.Extract(trig.Comment.Body)
	if len(markers) == 0 {
		res.Skipped = "no tasks in comment"
		e.log().Debug("no tasks in comment", "record", trig.Record.Number, "comment", trig.Comment.ID)
		return nil
	}

	// The payload copy of the record may be stale; append to the current body.
	rec, err := e.Store.GetRecord(ctx, trig.Record.Number)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", trig.Record.Ref(), err)
	}

	commentID := trig.Comment.CommentID()
	known := tasks.Keys(tasks.CommentTasks(tasks.Parse(rec.Body)))
	var added []tasks.Task
	for _, m := range markers {
		if known[m.Key] {
			continue
		}
		known[m.Key] = true
		added = append(added, tasks.FromComment(m, commentID))
	}
	if len(added) == 0 {
		res.Stats.Unchanged++
		e.msg("Comment %s on %s adds no new tasks", commentID, rec.Ref())
		return nil
	}

	links := tasks.Links{RecordURL: e.recordURL(rec)}
	lines := make([]string, len(added))
	for i, t := range added {
		lines[i] = tasks.RenderTask(t, links)
	}
	body := tasks.InsertBeforeFooter(rec.Body, lines)
	update := store.RecordUpdate{Body: &body}
	if path, ok := identity.ResolveDocumentPath(rec); ok {
		title := identity.Title(path, len(tasks.Keys(tasks.Parse(body))))
		update.Title = &title
	}

	if _, err := e.Store.UpdateRecord(ctx, rec.Number, update); err != nil {
		e.failed(ctx, res, Failure{Record: rec.Number, Stage: StageComment, Err: fmt.Errorf("update %s: %w", rec.Ref(), err)})
		return nil
	}
	res.Stats.Updated++
	res.Stats.CommentTasks += len(added)
	e.log().Info("added comment tasks", "record", rec.Number, "comment", commentID, "tasks", len(added))
	e.msg("Added %d task(s) from comment %s to %s", len(added), commentID, rec.Ref())

	commentURL := trig.Comment.HTMLURL
	if commentURL == "" {
		commentURL = links.CommentURL(commentID)
	}
	reply := e.reply(trig, added, commentURL)
	if err := e.Store.AddComment(ctx, rec.Number, reply); err != nil {
		e.failed(ctx, res, Failure{Record: rec.Number, Stage: StageComment, Err: fmt.Errorf("reply on %s: %w", rec.Ref(), err)})
	}
	return nil
}

// reply renders the acknowledgement posted after comment tasks were added.
func (e *Engine) reply(trig trigger.Trigger, added []tasks.Task, commentURL string) string {
	actor := trig.Actor
	if actor == "" {
		actor = e.Actor
	}
	mention := ""
	if author := trig.Comment.Author; author != "" && author != actor && author != BotLogin {
		mention = "@" + author + " "
	}

	quoted := make([]string, len(added))
	for i, t := range added {
		quoted[i] = "`" + t.Text + "`"
	}
	return fmt.Sprintf("%sTask detected: %s\n\nThis has been added to the tracking list. To mark it as resolved, react with %s on [your comment](%s).",
		mention, strings.Join(quoted, ", "), tasks.ReactionEmoji(e.reaction()), commentURL)
}
