// Package workflow saves bounded snapshots of session history and connection state
// under user-chosen names and restores them later.
package workflow

import (
	"errors"
	"time"

	"asoos/internal/session"
)

// DefaultWindow is how many recent history entries a save captures. It is also
// the upper bound: no saved workflow holds more commands than this.
const DefaultWindow = 10

var (
	ErrEmptyName   = errors.New("workflow name is required")
	ErrNotFound    = errors.New("workflow not found")
	ErrNoWorkflows = errors.New("no workflows saved")
)

// Workflow is a named snapshot. Saving under an existing name replaces it.
type Workflow struct {
	Name              string                 `json:"name" yaml:"name"`
	Timestamp         time.Time              `json:"timestamp" yaml:"timestamp"`
	Commands          []session.HistoryEntry `json:"commands" yaml:"commands"`
	ActiveConnections []string               `json:"activeConnections" yaml:"active_connections"`
	Context           session.Context        `json:"context" yaml:"context"`
}

// Summary is one row of the workflow listing
type Summary struct {
	Name         string
	Date         time.Time
	CommandCount int
}

// Summarize converts a workflow into its listing row
func (w Workflow) Summarize() Summary {
	return Summary{Name: w.Name, Date: w.Timestamp, CommandCount: len(w.Commands)}
}

// LoadResult reports what a load restored
type LoadResult struct {
	Workflow Workflow
	Restored []string  // Connections that reconnected
	Warnings []string  // Non-fatal reconnect failures
	Listing  []Summary // Set instead of Workflow when load was called without a name
}

// Listed reports whether the result is a listing rather than a loaded workflow
func (r LoadResult) Listed() bool {
	return r.Workflow.Name == ""
}
