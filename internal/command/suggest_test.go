package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testKnown = []string{
	"help",
	"asoos help",
	"workflow save <name>",
	"workflow load <name>",
	"workflow list",
	"workflow delete <name>",
	"session export",
	"mcp list",
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"substring match", "workflow", []string{"workflow save <name>", "workflow load <name>", "workflow list"}},
		{"case insensitive", "MCP", []string{"mcp list"}},
		{"second token contained in input", "please export it", []string{"session export"}},
		{"second token list", "lists", []string{"workflow list", "mcp list"}},
		{"no match", "zzzznotacommand", []string{}},
		{"blank", "  ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.input, testKnown, MaxSuggestions))
		})
	}
}

func TestSuggestRespectsLimit(t *testing.T) {
	assert.Len(t, Suggest("o", testKnown, 2), 2)
	assert.Empty(t, Suggest("o", testKnown, 0))
}

func TestRenderSuggestionsWithoutItems(t *testing.T) {
	out := RenderSuggestions("zzzz", nil)
	assert.Contains(t, out, "Did you mean")
	assert.Contains(t, out, `"zzzz"`)
	assert.NotContains(t, out, "•")
}

func TestRenderSuggestionsListsItems(t *testing.T) {
	out := RenderSuggestions("work", []string{"workflow list", "workflow save <name>"})
	assert.Equal(t, 2, strings.Count(out, "•"))
	assert.Contains(t, out, "workflow list")
}
