// Package tags extracts TODO, PLACEHOLDER and NOTE markers from Markdown
// documents and canonicalizes marker text into identity keys.
//
// Extraction is deliberately strict: only all-caps keywords at the start of a
// line (after list, blockquote, checkbox and emphasis decoration) count, and
// fenced code, inline code and admonition declarations never yield markers.
package tags

import "strings"

// Keyword is one of the recognized marker keywords.
type Keyword string

const (
	KeywordTodo        Keyword = "TODO"
	KeywordPlaceholder Keyword = "PLACEHOLDER"
	KeywordNote        Keyword = "NOTE"
)

// Keywords lists the recognized keywords in precedence order.
var Keywords = []Keyword{KeywordTodo, KeywordPlaceholder, KeywordNote}

// rankUnknown sorts after every recognized keyword.
const rankUnknown = 3

// Rank returns the sort precedence of a keyword: TODO < PLACEHOLDER < NOTE <
// anything else.
func (k Keyword) Rank() int {
	for i, kw := range Keywords {
		if kw == k {
			return i
		}
	}
	return rankUnknown
}

// Detect returns the first keyword that occurs anywhere in text, ignoring
// case. Used for ordering rendered tasks, where human-entered text may not
// follow the strict marker grammar.
func Detect(text string) (Keyword, bool) {
	upper := strings.ToUpper(text)
	best, bestIdx := Keyword(""), -1
	for _, kw := range Keywords {
		idx := strings.Index(upper, string(kw))
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx = kw, idx
		}
	}
	return best, bestIdx >= 0
}

// RankOf returns the sort precedence for free-form task text.
func RankOf(text string) int {
	kw, ok := Detect(text)
	if !ok {
		return rankUnknown
	}
	return kw.Rank()
}
