package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"asoos/internal/integration"
	"asoos/internal/workflow"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Themes are the catppuccin flavors the front-end can render
var Themes = []string{"latte", "frappe", "macchiato", "mocha"}

// ErrNotFound is returned when an explicitly requested config file does not exist
var ErrNotFound = errors.New("config file not found")

// StoreConfig selects where workflows are kept
type StoreConfig struct {
	// Backend is one of memory, file or sqlite
	Backend string `yaml:"backend"`

	// Path is the workflow file or database. Empty uses the data directory.
	Path string `yaml:"path"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `yaml:"level"`

	// Path is the log file. Empty disables logging; the terminal belongs to the prompt.
	Path string `yaml:"path"`
}

// MCPConfig lists MCP servers
type MCPConfig struct {
	// Manifest is an mcpServers JSON file, as written by desktop MCP clients
	Manifest string `yaml:"manifest"`

	// DiscoverCommand is run at startup; its stdout is parsed as an mcpServers manifest
	DiscoverCommand []string `yaml:"discover_command"`

	// VerifyCommands makes connect check that a stdio server's command is on PATH
	VerifyCommands bool `yaml:"verify_commands"`

	// Servers are defined inline and take precedence over manifest entries of the same name
	Servers []integration.Server `yaml:"servers"`
}

// ZapierConfig lists Zapier zaps
type ZapierConfig struct {
	Zaps []integration.Zap `yaml:"zaps"`
}

// Config holds the application configuration
type Config struct {
	// Theme is the color theme to use (mocha, macchiato, frappe, latte)
	Theme string `yaml:"theme"`

	// Prompt is shown before every input line
	Prompt string `yaml:"prompt"`

	// WorkflowWindow is how many recent commands a workflow save captures
	WorkflowWindow int `yaml:"workflow_window"`

	// HandlerTimeout bounds a single command. Negative disables the bound.
	HandlerTimeout time.Duration `yaml:"handler_timeout"`

	// ReconnectTimeout bounds each reconnect issued by workflow load
	ReconnectTimeout time.Duration `yaml:"reconnect_timeout"`

	Store StoreConfig `yaml:"store"`

	// JournalPath is the JSONL history journal. Empty disables it.
	JournalPath string `yaml:"journal_path"`

	Log    LogConfig    `yaml:"log"`
	MCP    MCPConfig    `yaml:"mcp"`
	Zapier ZapierConfig `yaml:"zapier"`
}

// DataDir is where stores and the journal live by default
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "asoos")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "asoos")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dataDir := DataDir()
	return &Config{
		Theme:            "mocha",
		Prompt:           "🎭 asoos> ",
		WorkflowWindow:   workflow.DefaultWindow,
		HandlerTimeout:   30 * time.Second,
		ReconnectTimeout: 5 * time.Second,
		Store: StoreConfig{
			Backend: BackendFile,
		},
		JournalPath: filepath.Join(dataDir, "history.jsonl"),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// StorePath returns the configured store path, or the backend's default location
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return ExpandPath(c.Store.Path)
	}
	switch c.Store.Backend {
	case BackendSQLite:
		return filepath.Join(DataDir(), "workflows.db")
	default:
		return filepath.Join(DataDir(), "workflows.yaml")
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if !slices.Contains(Themes, c.Theme) {
		return fmt.Errorf("unknown theme %q (want one of %s)", c.Theme, strings.Join(Themes, ", "))
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file or sqlite)", c.Store.Backend)
	}
	if c.WorkflowWindow <= 0 || c.WorkflowWindow > workflow.DefaultWindow {
		return fmt.Errorf("workflow_window must be between 1 and %d, got %d", workflow.DefaultWindow, c.WorkflowWindow)
	}
	if c.ReconnectTimeout < 0 {
		return fmt.Errorf("reconnect_timeout must not be negative, got %s", c.ReconnectTimeout)
	}
	for _, s := range c.MCP.Servers {
		if strings.TrimSpace(s.Name) == "" {
			return errors.New("mcp server without a name")
		}
	}
	return nil
}

// ExpandPath replaces a leading ~ with the home directory
func ExpandPath(path string) string {
	if path == "~" {
		return os.Getenv("HOME")
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(os.Getenv("HOME"), rest)
	}
	return path
}

// Load reads the config from a YAML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", cleanPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}

	cfg.JournalPath = ExpandPath(cfg.JournalPath)
	cfg.Log.Path = ExpandPath(cfg.Log.Path)
	cfg.MCP.Manifest = ExpandPath(cfg.MCP.Manifest)
	return cfg, nil
}

// DefaultPaths lists the locations searched for a config file, in order
func DefaultPaths() []string {
	// Check in order: current dir, ~/.config/asoos/, XDG_CONFIG_HOME
	paths := []string{
		"asoos.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "asoos", "config.yaml"),
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "asoos", "config.yaml"))
	}
	return paths
}

// Resolve loads explicit if set, otherwise the first existing default path.
// Returns the file that was read, or "" when running on defaults.
func Resolve(explicit string) (*Config, string, error) {
	if explicit != "" {
		path := ExpandPath(explicit)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return nil, "", err
		}
		cfg, err := Load(path)
		return cfg, path, err
	}

	for _, path := range DefaultPaths() {
		cleanPath := filepath.Clean(path)
		if _, err := os.Stat(cleanPath); err == nil {
			cfg, err := Load(cleanPath)
			return cfg, cleanPath, err
		}
	}

	return DefaultConfig(), "", nil
}
