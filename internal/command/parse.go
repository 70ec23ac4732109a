package command

import "strings"

// subcommandDepth defines how many subcommand levels make up a verb's pattern.
// Verbs not in this map get depth 0 (verb only).
var subcommandDepth = map[string]int{
	// Session state
	"workflow": 1,
	"session":  1,

	// Integrations
	"mcp":    1,
	"zapier": 1,

	// Assistants
	"code":  1,
	"org":   1,
	"voice": 1,

	// Namespace prefix
	"asoos": 1,
}

// Line is a parsed input line
type Line struct {
	Raw  string   // Untouched input
	Verb string   // First token, original casing
	Args []string // Remaining tokens, order preserved
}

// Parse trims raw and splits it on whitespace into a verb and its arguments
func Parse(raw string) Line {
	fields := strings.Fields(raw)
	line := Line{Raw: raw, Args: []string{}}
	if len(fields) == 0 {
		return line
	}
	line.Verb = fields[0]
	line.Args = fields[1:]
	return line
}

// Blank reports whether the line carried no verb
func (l Line) Blank() bool {
	return l.Verb == ""
}

// Pattern returns the lowercase verb plus its subcommands, e.g. "workflow save".
// Used as a low-cardinality log field.
func (l Line) Pattern() string {
	if l.Blank() {
		return ""
	}
	verb := strings.ToLower(l.Verb)
	parts := []string{verb}

	args := l.Args
	for i := 0; i < subcommandDepth[verb] && len(args) > 0; i++ {
		args = skipFlags(args)
		if len(args) == 0 {
			break
		}
		parts = append(parts, strings.ToLower(args[0]))
		args = args[1:]
	}
	return strings.Join(parts, " ")
}

// skipFlags skips leading flag arguments
func skipFlags(args []string) []string {
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		args = args[1:]
	}
	return args
}
