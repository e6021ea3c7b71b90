// Package identity recovers which document a tracking record belongs to.
//
// Record titles have been written in several formats over time. Every format
// ever emitted must keep parsing, so titles are matched against an ordered
// list of grammars; the first match wins. When no title grammar matches, the
// "File: [path](url)" reference in the record body is used.
package identity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/steveyegge/doctags/internal/types"
)

// titleGrammar is one historical title format.
type titleGrammar struct {
	name    string
	pattern *regexp.Regexp
}

// titleGrammars are tried in this order. Do not reorder: the bare grammar
// would also match the other formats and return a path with the counter
// still attached.
var titleGrammars = []titleGrammar{
	// "[5 open] Tags in docs/foo.md" (current)
	{"count-prefixed", regexp.MustCompile(`^\[\d+ open\]\s+Tags in\s+(.+)$`)},
	// "Tags in docs/foo.md [5 open]"
	{"count-suffixed", regexp.MustCompile(`Tags in\s+(.+?)\s*\[\d+ open\]\s*$`)},
	// "(2/5 open) Tags in docs/foo.md"
	{"fractional", regexp.MustCompile(`^\(\d+/\d+ open\)\s+Tags in\s+(.+)$`)},
	// "Tags in docs/foo.md", optionally followed by a fractional counter.
	// Literal parentheses in the path are kept.
	{"bare", regexp.MustCompile(`Tags in\s+(.+?)(?:\s+\(\d+/\d+ open\))?\s*$`)},
}

var (
	bodyFileRef   = regexp.MustCompile(`(?m)^File: \[(.+?)\]`)
	trackingTitle = regexp.MustCompile(`Tags in\s+.+`)
)

// NormalizePath converts backslashes to slashes and strips leading slashes so
// path comparisons do not depend on the platform that produced them.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimLeft(p, "/")
}

// Title renders the current title format.
func Title(path string, openCount int) string {
	return fmt.Sprintf("[%d open] Tags in %s", openCount, path)
}

// PathFromTitle matches a title against every historical grammar.
func PathFromTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	for _, g := range titleGrammars {
		m := g.pattern.FindStringSubmatch(title)
		if len(m) < 2 {
			continue
		}
		if p := NormalizePath(strings.TrimSpace(m[1])); p != "" {
			return p, true
		}
	}
	return "", false
}

// PathFromBody extracts the "File: [path]" reference written into record bodies.
func PathFromBody(body string) (string, bool) {
	m := bodyFileRef.FindStringSubmatch(body)
	if len(m) < 2 {
		return "", false
	}
	p := NormalizePath(strings.TrimSpace(m[1]))
	return p, p != ""
}

// ResolveDocumentPath returns the normalized document path a record tracks.
// It returns false when neither the title nor the body identifies one; such
// records must be skipped, never guessed at.
func ResolveDocumentPath(rec *types.TrackingRecord) (string, bool) {
	if rec == nil {
		return "", false
	}
	if p, ok := PathFromTitle(rec.Title); ok {
		return p, true
	}
	return PathFromBody(rec.Body)
}

// IsTrackingRecord reports whether rec is managed by doctags: it carries the
// tracking label or its title uses one of the tracking title formats.
func IsTrackingRecord(rec *types.TrackingRecord) bool {
	if rec == nil {
		return false
	}
	return rec.HasLabel(types.LabelTracking) || trackingTitle.MatchString(rec.Title)
}
