package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// discoverTimeout bounds an external discovery command
const discoverTimeout = 10 * time.Second

// manifest is the mcpServers document shared by desktop MCP clients
type manifest struct {
	MCPServers map[string]Server `json:"mcpServers"`
}

// Discover runs command and parses its stdout as an mcpServers manifest.
// If the command is missing or errors, returns the error.
func Discover(ctx context.Context, command []string) ([]Server, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, fmt.Errorf("discover command is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", strings.Join(command, " "), err)
	}
	return ParseManifest(output)
}

// LoadManifest reads an mcpServers manifest from path. A missing file yields no servers.
func LoadManifest(path string) ([]Server, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read MCP manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses an mcpServers JSON document.
// Entries with neither a command nor a URL are skipped. Servers are sorted by name.
func ParseManifest(data []byte) ([]Server, error) {
	var doc manifest
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse MCP manifest: %w", err)
	}

	var servers []Server
	for name, server := range doc.MCPServers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// Skip entries that cannot be reached
		if server.Command == "" && server.URL == "" {
			continue
		}
		server.Name = name
		servers = append(servers, server)
	}

	sort.Slice(servers, func(i, j int) bool {
		return servers[i].Name < servers[j].Name
	})
	return servers, nil
}
