package command

import (
	"context"
	"fmt"
	"strings"
)

// HelpMarker heads the full help page
const HelpMarker = "COMPREHENSIVE HELP"

// NewHelpHandler renders help from the registry's metadata at call time.
// "help <verb>" narrows the page to one verb.
func NewHelpHandler(registry *Registry) Handler {
	return HandlerFunc(func(_ context.Context, args []string) (string, error) {
		if len(args) > 0 {
			if entry, ok := registry.Lookup(args[0]); ok {
				return renderVerbHelp(entry), nil
			}
		}
		return renderFullHelp(registry.Entries()), nil
	})
}

func renderFullHelp(entries []Entry) string {
	var b strings.Builder
	b.WriteString("📚 ASOOS CLI - " + HelpMarker + "\n")
	b.WriteString(strings.Repeat("=", 44) + "\n")

	for category := CategoryCore; category <= CategorySession; category++ {
		var inCategory []Entry
		for _, e := range entries {
			if e.Category == category {
				inCategory = append(inCategory, e)
			}
		}
		if len(inCategory) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(category.String()))
		for _, e := range inCategory {
			fmt.Fprintf(&b, "  %-10s %s\n", e.Verb, e.Description)
			for _, form := range e.Commands {
				if form == e.Verb {
					continue
				}
				fmt.Fprintf(&b, "    %s\n", form)
			}
		}
	}

	b.WriteString("\nINTERACTIVE\n")
	b.WriteString("  clear      Reset the screen and start a new session\n")
	b.WriteString("  exit, quit Leave the shell\n")
	b.WriteString("\nVerbs are case-insensitive. 'help <verb>' shows one verb in detail.")
	return b.String()
}

func renderVerbHelp(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s - %s\n", e.Verb, e.Description)
	if e.Usage != "" {
		fmt.Fprintf(&b, "\nUsage: %s\n", e.Usage)
	}
	if len(e.Commands) > 0 {
		b.WriteString("\nCommands:\n")
		for _, form := range e.Commands {
			fmt.Fprintf(&b, "  %s\n", form)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
