package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"asoos/internal/workflow"
)

const workflowUsage = "workflow save <name> | workflow load [name] | workflow list | workflow delete <name>"

// Workflow renders the workflow verb on top of a workflow.Manager
type Workflow struct {
	manager *workflow.Manager
}

// NewWorkflow creates the workflow handler
func NewWorkflow(manager *workflow.Manager) *Workflow {
	return &Workflow{manager: manager}
}

func (h *Workflow) Handle(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return usageHint(workflowUsage), nil
	}

	name := strings.TrimSpace(strings.Join(args[1:], " "))
	switch strings.ToLower(args[0]) {
	case "save":
		return h.save(ctx, name)
	case "load":
		return h.load(ctx, name)
	case "list":
		return h.list(ctx)
	case "delete":
		return h.delete(ctx, name)
	default:
		return usageHint(workflowUsage), nil
	}
}

func (h *Workflow) save(ctx context.Context, name string) (string, error) {
	count, err := h.manager.Save(ctx, name)
	if errors.Is(err, workflow.ErrEmptyName) {
		return usageHint("workflow save <name>"), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("💾 Workflow %q saved with %d commands", name, count), nil
}

func (h *Workflow) load(ctx context.Context, name string) (string, error) {
	result, err := h.manager.Load(ctx, name)
	switch {
	case errors.Is(err, workflow.ErrNoWorkflows):
		return noWorkflows, nil
	case errors.Is(err, workflow.ErrNotFound):
		return fmt.Sprintf("❌ Workflow %q not found. Try 'workflow list'.", name), nil
	case err != nil:
		return "", err
	}

	if result.Listed() {
		return renderListing(result.Listing), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📂 Workflow %q loaded (%d commands)\n", result.Workflow.Name, len(result.Workflow.Commands))
	for i, entry := range result.Workflow.Commands {
		fmt.Fprintf(&b, "  %2d. %s\n", i+1, entry.RawInput)
	}
	if len(result.Restored) > 0 {
		fmt.Fprintf(&b, "🔌 Reconnected: %s\n", strings.Join(result.Restored, ", "))
	}
	if len(result.Warnings) > 0 {
		b.WriteString("⚠️  Reconnect warnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (h *Workflow) list(ctx context.Context) (string, error) {
	listing, err := h.manager.List(ctx)
	if errors.Is(err, workflow.ErrNoWorkflows) {
		return noWorkflows, nil
	}
	if err != nil {
		return "", err
	}
	return renderListing(listing), nil
}

func (h *Workflow) delete(ctx context.Context, name string) (string, error) {
	deleted, err := h.manager.Delete(ctx, name)
	if errors.Is(err, workflow.ErrEmptyName) {
		return usageHint("workflow delete <name>"), nil
	}
	if err != nil {
		return "", err
	}
	if !deleted {
		return fmt.Sprintf("ℹ️  No workflow named %q, nothing to delete", name), nil
	}
	return fmt.Sprintf("🗑️  Workflow %q deleted", name), nil
}

const noWorkflows = "📭 No workflows saved yet.\nSave the current session with: workflow save <name>"

func renderListing(listing []workflow.Summary) string {
	var b strings.Builder
	b.WriteString("📋 Saved workflows:\n")
	for _, s := range listing {
		fmt.Fprintf(&b, "  • %-20s %s  %d commands\n", s.Name, s.Date.Local().Format("2006-01-02 15:04"), s.CommandCount)
	}
	b.WriteString("Load one with: workflow load <name>")
	return b.String()
}
