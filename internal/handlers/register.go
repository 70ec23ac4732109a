// Package handlers renders the built-in verbs and registers them, together with
// the assistant collaborators, in a command.Registry.
package handlers

import (
	"time"

	"asoos/internal/collab"
	"asoos/internal/command"
	"asoos/internal/integration"
	"asoos/internal/session"
	"asoos/internal/workflow"
)

// Deps are the services the built-in handlers render from
type Deps struct {
	Sessions     *session.Store
	Workflows    *workflow.Manager
	Integrations *integration.Manager
	JournalPath  string
	Version      string
	Now          func() time.Time
}

// usageHint renders a usage line as a handler response
func usageHint(usage string) string {
	return "⚠️  Usage: " + usage
}

// Register adds every built-in verb to registry in help order
func Register(registry *command.Registry, deps Deps) error {
	entries := []command.Entry{
		{
			Verb:        "help",
			Description: "Show this help, or help for one verb",
			Usage:       "help [verb]",
			Commands:    []string{"help"},
			Category:    command.CategoryCore,
			Handler:     command.NewHelpHandler(registry),
		},
		{
			Verb:        "asoos",
			Description: "Platform status and version",
			Usage:       "asoos [status | version | help]",
			Commands:    []string{"asoos", "asoos help", "asoos status", "asoos version"},
			Category:    command.CategoryCore,
			Handler:     NewAsoos(deps.Sessions, deps.Integrations, deps.Version),
		},
		{
			Verb:        "demo",
			Description: "Guided tour of common commands",
			Usage:       "demo",
			Category:    command.CategoryCore,
			Handler:     Demo{},
		},
		{
			Verb:        "code",
			Description: "Plan a coding task with the coding assistant",
			Usage:       "code <task>",
			Commands:    []string{"code"},
			Category:    command.CategoryAssistants,
			Handler:     collab.CodeAssistant{},
		},
		{
			Verb:        "copilot",
			Description: "Ask the copilot a question",
			Usage:       "copilot <question>",
			Category:    command.CategoryAssistants,
			Handler:     collab.Copilot{},
		},
		{
			Verb:        "org",
			Description: "Organization context and reports",
			Usage:       "org use <organization> | org analyze | org insights | org status",
			Commands:    []string{"org use", "org analyze", "org insights", "org status"},
			Category:    command.CategoryAssistants,
			Handler:     collab.NewOrgIntelligence(deps.Sessions),
		},
		{
			Verb:        "voice",
			Description: "Speech synthesis",
			Usage:       "voice list | voice speak [--voice <name>] <text>",
			Commands:    []string{"voice list", "voice speak"},
			Category:    command.CategoryAssistants,
			Handler:     collab.Voice{},
		},
		{
			Verb:        "mcp",
			Description: "Manage MCP server connections",
			Usage:       mcpUsage,
			Commands:    []string{"mcp list", "mcp connect", "mcp disconnect", "mcp status"},
			Category:    command.CategoryIntegrations,
			Handler:     NewMCP(deps.Integrations),
		},
		{
			Verb:        "zapier",
			Description: "List and trigger Zapier zaps",
			Usage:       zapierUsage,
			Commands:    []string{"zapier list", "zapier trigger"},
			Category:    command.CategoryIntegrations,
			Handler:     NewZapier(deps.Integrations),
		},
		{
			Verb:        "workflow",
			Description: "Save and restore named command workflows",
			Usage:       workflowUsage,
			Commands:    []string{"workflow save", "workflow load", "workflow list", "workflow delete"},
			Category:    command.CategorySession,
			Handler:     NewWorkflow(deps.Workflows),
		},
		{
			Verb:        "session",
			Description: "Inspect, export and replay the session",
			Usage:       sessionUsage,
			Commands:    []string{"session info", "session history", "session export", "session journal"},
			Category:    command.CategorySession,
			Handler:     NewSession(deps.Sessions, deps.JournalPath, deps.Now),
		},
	}

	for _, entry := range entries {
		if err := registry.Register(entry); err != nil {
			return err
		}
	}
	return nil
}
