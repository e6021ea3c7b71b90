package tags

import (
	"regexp"
	"strings"
)

var (
	// bracketedKeyword matches [TODO], [PLACEHOLDER] and [NOTE]. Other
	// bracketed text, such as author tags, is left alone.
	bracketedKeyword = regexp.MustCompile(`\[(TODO|PLACEHOLDER|NOTE)\]`)

	listMarker   = regexp.MustCompile(`^\s*(?:[-*+]\s+|\d+\.\s+)`)
	blockquote   = regexp.MustCompile(`^\s*>+\s*`)
	checkbox     = regexp.MustCompile(`^\s*\[[ xX]\]\s+`)
	keywordColon = regexp.MustCompile(`\b(TODO|PLACEHOLDER|NOTE)\s*:\s*`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes marker text into its identity key. Two strings
// normalize equal when they are formatting variants of the same task:
//
//	TODO: x, **TODO:** x, __TODO__: x, [TODO]: x, - TODO: x, 1. TODO: x, > TODO: x
//
// all produce "TODO: x". Normalize is total and idempotent.
func Normalize(text string) string {
	return canonicalize(text, false)
}

// canonicalize runs the normalization pipeline to a fixed point. A single pass
// can expose a new leading marker (for example "- > TODO: x"), so one pass
// alone would not be idempotent.
func canonicalize(text string, withCheckbox bool) string {
	s := normalizePass(text, withCheckbox)
	for i := 0; i <= len(text); i++ {
		next := normalizePass(s, withCheckbox)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// normalizePass applies each step once, in order. Later steps assume the
// earlier ones already ran.
func normalizePass(s string, withCheckbox bool) string {
	s = stripEmphasis(s)
	s = bracketedKeyword.ReplaceAllString(s, "$1")
	s = stripLeadingMarkers(s, withCheckbox)
	s = keywordColon.ReplaceAllString(s, "$1: ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripEmphasis removes bold, italic and underline delimiters. Runs of any
// length disappear, so every '*' and '_' goes.
func stripEmphasis(s string) string {
	if !strings.ContainsAny(s, "*_") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '*' || r == '_' {
			return -1
		}
		return r
	}, s)
}

// stripLeadingMarkers removes leading list markers and blockquote runs until
// none remain. Checkbox stripping is only used for marker matching; identity
// keys keep a "[ ]" prefix so legacy checkbox lines stay distinguishable.
func stripLeadingMarkers(s string, withCheckbox bool) string {
	for {
		prev := s
		s = blockquote.ReplaceAllString(s, "")
		s = listMarker.ReplaceAllString(s, "")
		if withCheckbox {
			s = checkbox.ReplaceAllString(s, "")
		}
		if s == prev {
			return s
		}
	}
}
