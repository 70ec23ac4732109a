package handlers

import (
	"context"
	"fmt"
	"strings"

	"asoos/internal/collab"
	"asoos/internal/integration"
	"asoos/internal/session"
)

// Asoos renders the platform status banner for the bare asoos verb
type Asoos struct {
	sessions     *session.Store
	integrations *integration.Manager
	version      string
}

// NewAsoos creates the asoos handler
func NewAsoos(sessions *session.Store, integrations *integration.Manager, version string) *Asoos {
	return &Asoos{sessions: sessions, integrations: integrations, version: version}
}

func (h *Asoos) Handle(_ context.Context, args []string) (string, error) {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "status":
		case "version":
			return "asoos " + h.version, nil
		default:
			return usageHint("asoos [status | version | help]"), nil
		}
	}

	s := h.sessions.Current()
	org := s.Context[collab.OrganizationKey]
	if org == "" {
		org = "(none)"
	}
	active := h.integrations.Active()
	connections := "(none)"
	if len(active) > 0 {
		connections = strings.Join(active, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎭 ASOOS %s\n", h.version)
	fmt.Fprintf(&b, "  Session:      %s\n", s.ID)
	fmt.Fprintf(&b, "  Commands:     %d\n", len(s.History))
	fmt.Fprintf(&b, "  Organization: %s\n", org)
	fmt.Fprintf(&b, "  Connections:  %s\n", connections)
	b.WriteString("Type 'help' for the full command list.")
	return b.String(), nil
}

// demoSteps is the guided tour shown by the demo verb
var demoSteps = []struct {
	command string
	what    string
}{
	{"org use Acme", "set the organization for this session"},
	{"mcp connect <server>", "connect an MCP server from 'mcp list'"},
	{"code add retries to the upload client", "ask the coding assistant for a plan"},
	{"workflow save morning", "snapshot the last commands and connections"},
	{"workflow load morning", "restore them in a later session"},
	{"session export ./session.json", "write the whole session to disk"},
}

// Demo prints a guided tour of the CLI
type Demo struct{}

func (Demo) Handle(context.Context, []string) (string, error) {
	var b strings.Builder
	b.WriteString("🚀 Quick start\n")
	for i, step := range demoSteps {
		fmt.Fprintf(&b, "  %d. %-40s %s\n", i+1, step.command, step.what)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
