package tasks

import (
	"fmt"
	"slices"
	"strings"
)

// footerSeparator starts the instructions section at the end of a body.
// Comment tasks are inserted before it.
const footerSeparator = "\n---\n"

// Links holds the URLs used for provenance labels. Empty fields render the
// label without a link.
type Links struct {
	// FileEdit is the edit URL of the source document.
	FileEdit string
	// RecordURL is the record's web URL; comment permalinks append
	// "#issuecomment-<id>".
	RecordURL string
}

// CommentURL returns the permalink of a comment on the record.
func (l Links) CommentURL(commentID string) string {
	if l.RecordURL == "" || commentID == "" {
		return ""
	}
	return l.RecordURL + "#issuecomment-" + commentID
}

func (l Links) label(t Task) string {
	if t.IsComment() {
		if u := l.CommentURL(t.CommentID); u != "" {
			return "[(comment)](" + u + ")"
		}
		return "(comment)"
	}
	if l.FileEdit != "" {
		return "[(file)](" + l.FileEdit + ")"
	}
	return "(file)"
}

// trailer is the machine-readable provenance comment parsed back by Parse.
func trailer(t Task) string {
	if t.IsComment() {
		if t.CommentID != "" {
			return "<!-- source:comment:" + t.CommentID + " -->"
		}
		return "<!-- source:comment -->"
	}
	return "<!-- source:file -->"
}

// RenderTask renders one task line:
//
//	- TODO: x [(file)](https://...) <!-- source:file -->
func RenderTask(t Task, links Links) string {
	return fmt.Sprintf("- %s %s %s", t.Text, links.label(t), trailer(t))
}

// Render renders tasks one per line.
func Render(ts []Task, links Links) string {
	lines := make([]string, len(ts))
	for i, t := range ts {
		lines[i] = RenderTask(t, links)
	}
	return strings.Join(lines, "\n")
}

// reactionEmoji maps the reaction contents GitHub accepts to the emoji shown
// in instructions.
var reactionEmoji = map[string]string{
	"+1":       "👍",
	"-1":       "👎",
	"laugh":    "😄",
	"confused": "😕",
	"heart":    "❤️",
	"hooray":   "🎉",
	"rocket":   "🚀",
	"eyes":     "👀",
}

// IsReaction reports whether content is a known reaction content.
func IsReaction(content string) bool {
	_, ok := reactionEmoji[content]
	return ok
}

// Reactions lists the known reaction contents, sorted.
func Reactions() []string {
	out := make([]string, 0, len(reactionEmoji))
	for content := range reactionEmoji {
		out = append(out, content)
	}
	slices.Sort(out)
	return out
}

// ReactionEmoji returns the emoji for a reaction content, or the content
// itself when it is unknown.
func ReactionEmoji(content string) string {
	if e, ok := reactionEmoji[content]; ok {
		return e
	}
	return content
}

// Body describes a tracking record body.
type Body struct {
	Path     string
	EditURL  string
	Reaction string // reaction content that resolves comment tasks
	Tasks    string // output of Render
}

// String renders the body layout:
//
//	File: [docs/x.md](edit-url)
//
//	**Tasks:**
//
//	- ...
//
//	---
//	*instructions*
func (b Body) String() string {
	lines := []string{
		fmt.Sprintf("File: [%s](%s)", b.Path, b.EditURL),
		"",
	}
	if strings.TrimSpace(b.Tasks) != "" {
		lines = append(lines, "**Tasks:**", "", b.Tasks, "")
	} else {
		lines = append(lines, "No open tasks.", "")
	}
	lines = append(lines,
		"---",
		"*This issue is auto-managed. To resolve a task:*",
		fmt.Sprintf("*- **File task**: delete the tag from the [source file](%s)*", b.EditURL),
		fmt.Sprintf("*- **Comment task**: react with %s on the comment that created it*", ReactionEmoji(b.Reaction)),
	)
	return strings.Join(lines, "\n")
}

// InsertBeforeFooter adds lines just before the footer separator of body, or
// at the end when the body has no footer.
func InsertBeforeFooter(body string, lines []string) string {
	if len(lines) == 0 {
		return body
	}
	added := "\n" + strings.Join(lines, "\n")
	if i := strings.Index(body, footerSeparator); i >= 0 {
		return body[:i] + added + body[i:]
	}
	return body + added
}
