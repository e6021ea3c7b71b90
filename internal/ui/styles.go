// Package ui provides terminal styling for doctags CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Ayu theme color palette
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

var (
	PassStyle     = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle     = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle     = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconSkip = "-"
)

// TreeLast prefixes a detail line under an entry.
const TreeLast = "└─ "

const separator = "──────────────────────────────────────────"

func render(style lipgloss.Style, s string) string {
	if !ShouldUseColor() {
		return s
	}
	return style.Render(s)
}

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string { return render(PassStyle, s) }

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string { return render(WarnStyle, s) }

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string { return render(FailStyle, s) }

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string { return render(MutedStyle, s) }

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string { return render(AccentStyle, s) }

// RenderCategory renders a section header in uppercase with accent color
func RenderCategory(s string) string {
	return render(CategoryStyle, strings.ToUpper(s))
}

// RenderSeparator renders the separator line in muted color
func RenderSeparator() string {
	return RenderMuted(separator)
}

// RenderCount renders "label: n", highlighting non-zero counts with style.
func RenderCount(label string, n int, style lipgloss.Style) string {
	value := fmt.Sprintf("%d", n)
	if n == 0 {
		return RenderMuted(fmt.Sprintf("%s: %s", label, value))
	}
	return fmt.Sprintf("%s: %s", label, render(style, value))
}

// StatusIcon returns the styled icon for a pass, warn, fail or skip line.
func StatusIcon(status string) string {
	switch status {
	case "pass":
		return RenderPass(IconPass)
	case "warn":
		return RenderWarn(IconWarn)
	case "fail":
		return RenderFail(IconFail)
	}
	return RenderMuted(IconSkip)
}

// Truncate shortens text to maxLen runes with a "..." suffix.
func Truncate(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string([]rune(text)[:maxLen-3]) + "..."
}
