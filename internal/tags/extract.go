package tags

import "strings"

// Marker is one task annotation found in a document on the current run.
type Marker struct {
	Keyword Keyword `json:"keyword" yaml:"keyword"`
	Text    string  `json:"text" yaml:"text"` // trimmed source line
	Key     string  `json:"key" yaml:"key"`   // identity key, see Normalize
	Line    int     `json:"line" yaml:"line"` // 1-based line of first occurrence
}

// scanState is the extractor's position relative to fenced code.
type scanState int

const (
	stateNormal scanState = iota
	stateInFence
)

func (s scanState) toggle() scanState {
	if s == stateInFence {
		return stateNormal
	}
	return stateInFence
}

// lineClass is the classification of a single line for a given scan state.
type lineClass int

const (
	lineText       lineClass = iota // eligible for marker matching
	lineFence                       // opens or closes a fenced code block
	lineCode                        // inside a fenced code block
	lineAdmonition                  // admonition declaration (!!!, ???, :::)
)

// classifyLine decides how a line is treated. It is pure so every edge case
// can be tested without building documents.
func classifyLine(state scanState, line string) lineClass {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "```") {
		return lineFence
	}
	if state == stateInFence {
		return lineCode
	}
	if strings.HasPrefix(trimmed, "!!!") ||
		strings.HasPrefix(trimmed, "???") ||
		strings.HasPrefix(trimmed, ":::") {
		return lineAdmonition
	}
	return lineText
}

// Extract returns the markers in a document, in file order of first
// occurrence. Markers whose identity key repeats an earlier marker are
// dropped, so reformatting a task never produces a second copy.
//
// An unterminated fence suppresses every remaining line.
func Extract(text string) []Marker {
	var (
		state   = stateNormal
		seen    = make(map[string]bool)
		markers []Marker
	)
	for i, raw := range splitLines(text) {
		switch classifyLine(state, raw) {
		case lineFence:
			state = state.toggle()
			continue
		case lineCode, lineAdmonition:
			continue
		}

		m, ok := ParseLine(stripInlineCode(raw))
		if !ok || seen[m.Key] {
			continue
		}
		seen[m.Key] = true
		m.Line = i + 1
		markers = append(markers, m)
	}
	return markers
}

// ParseLine matches a single line that is already outside fenced code and has
// had its inline code removed.
func ParseLine(line string) (Marker, bool) {
	kw, ok := matchKeyword(canonicalize(line, true))
	if !ok {
		return Marker{}, false
	}
	return Marker{
		Keyword: kw,
		Text:    strings.TrimSpace(line),
		Key:     Normalize(line),
	}, true
}

// matchKeyword requires an uppercase keyword at the very start of the
// candidate, followed by a colon or whitespace, followed by at least one
// non-whitespace character.
func matchKeyword(candidate string) (Keyword, bool) {
	for _, kw := range Keywords {
		rest, ok := strings.CutPrefix(candidate, string(kw))
		if !ok {
			continue
		}
		if rest == "" {
			return "", false
		}
		switch rest[0] {
		case ':':
			rest = rest[1:]
		case ' ', '\t':
		default:
			return "", false
		}
		if strings.TrimSpace(rest) == "" {
			return "", false
		}
		return kw, true
	}
	return "", false
}

// stripInlineCode removes `code` spans. An unmatched backtick and everything
// after it is kept.
func stripInlineCode(line string) string {
	if !strings.Contains(line, "`") {
		return line
	}
	var b strings.Builder
	rest := line
	for {
		open := strings.IndexByte(rest, '`')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		closing := strings.IndexByte(rest[open+1:], '`')
		if closing < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		rest = rest[open+1+closing+1:]
	}
	return b.String()
}

// splitLines splits on LF and drops a trailing CR from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
