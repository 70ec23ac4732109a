package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// wrapText wraps lines wider than width at word boundaries. Lines that already
// fit are left alone so column alignment in command output survives.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if lipgloss.Width(line) <= width {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

// wrapLine splits one line, repeating its indentation on continuation lines
func wrapLine(line string, width int) []string {
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]
	if len(indent) >= width/2 {
		indent = ""
	}

	var (
		out     []string
		current strings.Builder
	)
	current.WriteString(indent)
	curLen := len(indent)

	for _, word := range strings.Fields(trimmed) {
		wordLen := lipgloss.Width(word)
		if curLen > len(indent) && curLen+1+wordLen > width {
			out = append(out, current.String())
			current.Reset()
			current.WriteString(indent)
			curLen = len(indent)
		}
		if curLen > len(indent) {
			current.WriteString(" ")
			curLen++
		}
		// Truncate very long words
		if avail := width - len(indent); wordLen > avail && avail > 3 {
			word = truncate(word, avail)
			wordLen = lipgloss.Width(word)
		}
		current.WriteString(word)
		curLen += wordLen
	}
	out = append(out, current.String())
	return out
}

// truncate shortens a string to maxLen runes with ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
