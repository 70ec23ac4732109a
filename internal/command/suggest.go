package command

import (
	"fmt"
	"strings"
)

// MaxSuggestions bounds the "did you mean" list
const MaxSuggestions = 3

// Suggest picks up to limit commands from known that either contain the input
// (case-insensitive) or whose second token appears in the input.
func Suggest(input string, known []string, limit int) []string {
	query := strings.ToLower(strings.TrimSpace(input))
	suggestions := []string{}
	if query == "" || limit <= 0 {
		return suggestions
	}

	for _, candidate := range known {
		lower := strings.ToLower(candidate)
		fields := strings.Fields(lower)

		matched := strings.Contains(lower, query)
		if !matched && len(fields) > 1 {
			matched = strings.Contains(query, fields[1])
		}
		if !matched {
			continue
		}

		suggestions = append(suggestions, candidate)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}

// RenderSuggestions formats the fallback response. The list may be empty; the
// message still renders so the user always gets a pointer to help.
func RenderSuggestions(input string, suggestions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❓ Command not recognized: %q\n", strings.TrimSpace(input))
	b.WriteString("\n💡 Did you mean:\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "   • %s\n", s)
	}
	b.WriteString("\nType 'help' for the full command list.")
	return b.String()
}
