package collab

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Voices lists the available synthesis voices
var Voices = []string{"aria", "ember", "sage"}

// wordDuration approximates speaking time per word
const wordDuration = 400 * time.Millisecond

// Voice renders speech synthesis requests
type Voice struct{}

func (Voice) Handle(ctx context.Context, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(args) == 0 {
		return usage("🔊 Voice", "Usage: voice list | voice speak [--voice <name>] <text>"), nil
	}

	switch strings.ToLower(args[0]) {
	case "list":
		return "🔊 Voices: " + strings.Join(Voices, ", "), nil
	case "speak":
		return speak(args[1:])
	default:
		return usage("🔊 Voice", fmt.Sprintf("Unknown subcommand %q\nUsage: voice list | voice speak [--voice <name>] <text>", args[0])), nil
	}
}

func speak(args []string) (string, error) {
	voice := ""
	if len(args) >= 2 && args[0] == "--voice" {
		voice = strings.ToLower(args[1])
		args = args[2:]
	}
	text := strings.Join(args, " ")
	if text == "" {
		return usage("🔊 Voice", "Nothing to say. Usage: voice speak <text>"), nil
	}

	if voice == "" {
		voice = pick(Voices, text)
	}
	if !slices.Contains(Voices, voice) {
		return fmt.Sprintf("🔊 Unknown voice %q. Available: %s", voice, strings.Join(Voices, ", ")), nil
	}

	words := len(strings.Fields(text))
	return fmt.Sprintf("🔊 Speaking as %s (%d words, ~%s)\n\"%s\"",
		voice, words, time.Duration(words)*wordDuration, text), nil
}
