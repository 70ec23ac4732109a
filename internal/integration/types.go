// Package integration tracks the MCP servers and Zapier zaps the CLI knows about
// and which of them are connected.
package integration

import (
	"errors"
	"time"
)

var (
	ErrUnknownServer = errors.New("unknown MCP server")
	ErrUnknownZap    = errors.New("unknown zap")
	ErrNotConnected  = errors.New("server not connected")
)

// Server is an MCP server definition
type Server struct {
	Name        string            `json:"-" yaml:"name"`
	Command     string            `json:"command" yaml:"command"`
	Args        []string          `json:"args,omitempty" yaml:"args"`
	Env         map[string]string `json:"env,omitempty" yaml:"env"`
	URL         string            `json:"url,omitempty" yaml:"url"`
	Description string            `json:"description,omitempty" yaml:"description"`
}

// Transport describes how the server is reached
func (s Server) Transport() string {
	if s.URL != "" {
		return "http"
	}
	return "stdio"
}

// Zap is a named Zapier automation
type Zap struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Webhook     string `yaml:"webhook"`
}

// Status is one row of the connection status report
type Status struct {
	Name      string
	Transport string
	Connected bool
	Since     time.Time // Zero when not connected
}

// TriggerResult describes a zap run
type TriggerResult struct {
	Zap    string
	RunID  string
	Args   []string
	At     time.Time
	Target string
}
