package ui

import (
	"github.com/charmbracelet/glamour"
)

// maxReadableWidth caps the wrap width of rendered markdown.
const maxReadableWidth = 100

// RenderMarkdown renders a record body for the terminal using glamour.
// Returns the original text when colors are disabled or rendering fails.
// Word wraps at terminal width, capped at maxReadableWidth.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}
	wrapWidth := TerminalWidth(80)
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
