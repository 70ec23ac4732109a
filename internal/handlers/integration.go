package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"asoos/internal/integration"
)

const (
	mcpUsage    = "mcp list | mcp connect <name> | mcp disconnect <name> | mcp status"
	zapierUsage = "zapier list | zapier trigger <zap> [args...]"
)

// MCP renders the mcp verb
type MCP struct {
	manager *integration.Manager
}

// NewMCP creates the mcp handler
func NewMCP(manager *integration.Manager) *MCP {
	return &MCP{manager: manager}
}

func (h *MCP) Handle(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return h.list(), nil
	}

	name := ""
	if len(args) > 1 {
		name = args[1]
	}

	switch strings.ToLower(args[0]) {
	case "list":
		return h.list(), nil
	case "status":
		return h.status(), nil
	case "connect":
		if name == "" {
			return usageHint("mcp connect <name>"), nil
		}
		return h.connect(ctx, name), nil
	case "disconnect":
		if name == "" {
			return usageHint("mcp disconnect <name>"), nil
		}
		return h.disconnect(name), nil
	default:
		return usageHint(mcpUsage), nil
	}
}

func (h *MCP) list() string {
	servers := h.manager.Servers()
	if len(servers) == 0 {
		return "🔌 No MCP servers configured.\nAdd them under mcp.servers or point mcp.manifest at an mcpServers JSON file."
	}

	active := make(map[string]bool)
	for _, name := range h.manager.Active() {
		active[name] = true
	}

	var b strings.Builder
	b.WriteString("🔌 MCP servers:\n")
	for _, s := range servers {
		marker := "○"
		if active[s.Name] {
			marker = "●"
		}
		target := s.URL
		if target == "" {
			target = strings.TrimSpace(s.Command + " " + strings.Join(s.Args, " "))
		}
		fmt.Fprintf(&b, "  %s %-16s %-5s %s\n", marker, s.Name, s.Transport(), target)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *MCP) status() string {
	status := h.manager.Status()
	connected := 0
	var b strings.Builder
	for _, s := range status {
		if !s.Connected {
			continue
		}
		connected++
		fmt.Fprintf(&b, "  ● %-16s since %s\n", s.Name, s.Since.Local().Format(time.TimeOnly))
	}
	header := fmt.Sprintf("📡 %d of %d MCP servers connected", connected, len(status))
	if connected == 0 {
		return header
	}
	return header + "\n" + strings.TrimRight(b.String(), "\n")
}

func (h *MCP) connect(ctx context.Context, name string) string {
	err := h.manager.Connect(ctx, name)
	switch {
	case errors.Is(err, integration.ErrUnknownServer):
		return fmt.Sprintf("❌ Unknown MCP server %q. Try 'mcp list'.", name)
	case err != nil:
		return fmt.Sprintf("⚠️  Could not connect %s: %v", name, err)
	}
	return fmt.Sprintf("✅ Connected to %s", name)
}

func (h *MCP) disconnect(name string) string {
	err := h.manager.Disconnect(name)
	switch {
	case errors.Is(err, integration.ErrUnknownServer):
		return fmt.Sprintf("❌ Unknown MCP server %q. Try 'mcp list'.", name)
	case errors.Is(err, integration.ErrNotConnected):
		return fmt.Sprintf("ℹ️  %s is not connected", name)
	case err != nil:
		return fmt.Sprintf("⚠️  Could not disconnect %s: %v", name, err)
	}
	return fmt.Sprintf("🔌 Disconnected from %s", name)
}

// Zapier renders the zapier verb
type Zapier struct {
	manager *integration.Manager
}

// NewZapier creates the zapier handler
func NewZapier(manager *integration.Manager) *Zapier {
	return &Zapier{manager: manager}
}

func (h *Zapier) Handle(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 || strings.EqualFold(args[0], "list") {
		return h.list(), nil
	}
	if !strings.EqualFold(args[0], "trigger") {
		return usageHint(zapierUsage), nil
	}
	if len(args) < 2 {
		return usageHint("zapier trigger <zap> [args...]"), nil
	}

	result, err := h.manager.Trigger(ctx, args[1], args[2:])
	if errors.Is(err, integration.ErrUnknownZap) {
		return fmt.Sprintf("❌ Unknown zap %q. Try 'zapier list'.", args[1]), nil
	}
	if err != nil {
		return "", err
	}

	out := fmt.Sprintf("⚡ Triggered %s (run %s)", result.Zap, result.RunID)
	if len(result.Args) > 0 {
		out += "\n  Payload: " + strings.Join(result.Args, " ")
	}
	return out, nil
}

func (h *Zapier) list() string {
	zaps := h.manager.Zaps()
	if len(zaps) == 0 {
		return "⚡ No zaps configured. Add them under zapier.zaps in the config."
	}

	var b strings.Builder
	b.WriteString("⚡ Zaps:\n")
	for _, z := range zaps {
		fmt.Fprintf(&b, "  • %-20s %s\n", z.Name, z.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
