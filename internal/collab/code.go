package collab

import (
	"context"
	"fmt"
	"strings"
)

var codeSteps = []string{
	"Read the surrounding code and its tests",
	"Sketch the change as a small diff",
	"Add or update tests for the new behavior",
	"Run the suite and review the output",
}

var codeLanguages = []string{"Go", "TypeScript", "Python", "Rust", "Shell"}

// CodeAssistant renders a plan for a coding task
type CodeAssistant struct{}

func (CodeAssistant) Handle(ctx context.Context, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(args) == 0 {
		return usage("💻 Coding assistant",
			"Usage: code <task>\nExample: code add retries to the upload client"), nil
	}

	task := strings.Join(args, " ")
	var b strings.Builder
	fmt.Fprintf(&b, "💻 Coding assistant\n")
	fmt.Fprintf(&b, "Task: %s\n", task)
	fmt.Fprintf(&b, "Suggested language: %s\n", pick(codeLanguages, task))
	fmt.Fprintf(&b, "Confidence: %d%%\n", score(70, 98, "code", task))
	b.WriteString("Plan:\n")
	for i, step := range codeSteps {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Copilot answers a free-form question
type Copilot struct{}

var copilotOpeners = []string{
	"Start with the smallest change that proves the idea.",
	"Check the existing workflows before building a new one.",
	"Connect the relevant MCP servers first so context is available.",
	"Save a workflow once the sequence works so it can be replayed.",
}

func (Copilot) Handle(ctx context.Context, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(args) == 0 {
		return usage("🧭 Copilot", "Usage: copilot <question>"), nil
	}

	question := strings.Join(args, " ")
	return fmt.Sprintf("🧭 Copilot\nQ: %s\nA: %s\nRelevance: %d%%",
		question, pick(copilotOpeners, question), score(60, 95, "copilot", question)), nil
}
