package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExportVersion is the fixed format version written into every export
const ExportVersion = "1.0"

// Export is a versioned snapshot of a session
type Export struct {
	SessionID  string         `json:"sessionId"`
	StartedAt  time.Time      `json:"startedAt"`
	History    []HistoryEntry `json:"history"`
	Context    Context        `json:"context"`
	ExportedAt time.Time      `json:"exportedAt"`
	Version    string         `json:"version"`
}

// NewExport snapshots s at the given time
func NewExport(s Session, exportedAt time.Time) Export {
	s = s.clone()
	return Export{
		SessionID:  s.ID,
		StartedAt:  s.StartedAt,
		History:    s.History,
		Context:    s.Context,
		ExportedAt: exportedAt.UTC(),
		Version:    ExportVersion,
	}
}

// Marshal renders the export as indented JSON
func (e Export) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session export: %w", err)
	}
	return data, nil
}

// WriteFile writes the export to path, creating parent directories
func (e Export) WriteFile(path string) error {
	data, err := e.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write session export: %w", err)
	}
	return nil
}
