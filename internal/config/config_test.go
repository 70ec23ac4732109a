package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

// replaceConfig swaps the file in with a rename so watchers never see a partial write
func replaceConfig(t *testing.T, path, body string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(body), 0o600))
	require.NoError(t, os.Rename(tmp, path))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "mocha", cfg.Theme)
	assert.Equal(t, "🎭 asoos> ", cfg.Prompt)
	assert.Equal(t, 10, cfg.WorkflowWindow)
	assert.Equal(t, 30*time.Second, cfg.HandlerTimeout)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Empty(t, cfg.Log.Path, "logging is off unless a file is configured")
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	tests := []struct {
		name     string
		body     string
		wantErr  string
		validate func(*testing.T, *Config)
	}{
		{
			name: "partial override keeps defaults",
			body: "theme: latte\nworkflow_window: 5\n",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "latte", cfg.Theme)
				assert.Equal(t, 5, cfg.WorkflowWindow)
				assert.Equal(t, "🎭 asoos> ", cfg.Prompt)
			},
		},
		{
			name: "durations and nested sections",
			body: `
handler_timeout: 2s
reconnect_timeout: 250ms
store:
  backend: sqlite
  path: ~/wf.db
journal_path: ""
log:
  level: debug
  path: ~/asoos.log
mcp:
  manifest: ~/mcp.json
  discover_command: [mcp-hub, export]
  servers:
    - name: github
      command: mcp-github
      args: [--stdio]
zapier:
  zaps:
    - name: notify
      webhook: https://hooks.zapier.com/x
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2*time.Second, cfg.HandlerTimeout)
				assert.Equal(t, 250*time.Millisecond, cfg.ReconnectTimeout)
				assert.Equal(t, BackendSQLite, cfg.Store.Backend)
				assert.Equal(t, filepath.Join(dir, "wf.db"), cfg.StorePath())
				assert.Empty(t, cfg.JournalPath)
				assert.Equal(t, filepath.Join(dir, "asoos.log"), cfg.Log.Path)
				assert.Equal(t, filepath.Join(dir, "mcp.json"), cfg.MCP.Manifest)
				assert.Equal(t, []string{"mcp-hub", "export"}, cfg.MCP.DiscoverCommand)
				require.Len(t, cfg.MCP.Servers, 1)
				assert.Equal(t, "github", cfg.MCP.Servers[0].Name)
				assert.Equal(t, []string{"--stdio"}, cfg.MCP.Servers[0].Args)
				require.Len(t, cfg.Zapier.Zaps, 1)
				assert.Equal(t, "notify", cfg.Zapier.Zaps[0].Name)
			},
		},
		{
			name:    "unknown theme",
			body:    "theme: solarized\n",
			wantErr: "unknown theme",
		},
		{
			name:    "unknown backend",
			body:    "store:\n  backend: redis\n",
			wantErr: "unknown store backend",
		},
		{
			name:    "non-positive window",
			body:    "workflow_window: 0\n",
			wantErr: "workflow_window",
		},
		{
			name:    "window above the save limit",
			body:    "workflow_window: 11\n",
			wantErr: "workflow_window must be between 1 and 10",
		},
		{
			name:    "nameless server",
			body:    "mcp:\n  servers:\n    - command: x\n",
			wantErr: "without a name",
		},
		{
			name:    "invalid yaml",
			body:    "theme: [",
			wantErr: "parse",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "cfg", string(rune('a'+i))+".yaml")
			writeConfig(t, path, tt.body)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestStorePathDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/data", "asoos", "workflows.yaml"), cfg.StorePath())
	assert.Equal(t, filepath.Join("/data", "asoos", "history.jsonl"), cfg.JournalPath)

	cfg.Store.Backend = BackendSQLite
	assert.Equal(t, filepath.Join("/data", "asoos", "workflows.db"), cfg.StorePath())
}

func TestResolve(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Chdir(t.TempDir())

	cfg, path, err := Resolve("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "mocha", cfg.Theme)

	homeCfg := filepath.Join(home, ".config", "asoos", "config.yaml")
	writeConfig(t, homeCfg, "theme: frappe\n")
	cfg, path, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, homeCfg, path)
	assert.Equal(t, "frappe", cfg.Theme)

	writeConfig(t, "asoos.yaml", "theme: macchiato\n")
	cfg, path, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "asoos.yaml", path)
	assert.Equal(t, "macchiato", cfg.Theme)

	cfg, path, err = Resolve("~/.config/asoos/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, homeCfg, path)
	assert.Equal(t, "frappe", cfg.Theme)

	_, _, err = Resolve(filepath.Join(home, "missing.yaml"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWatcherPublishesReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "theme: mocha\n")

	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial)
	require.NoError(t, err)
	w.Start()
	defer func() { require.NoError(t, w.Stop()) }()

	replaceConfig(t, path, "theme: latte\nprompt: \"> \"\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-w.Updates:
			if cfg.Theme != "latte" {
				continue
			}
			assert.Equal(t, "> ", cfg.Prompt)
			assert.Same(t, cfg, w.Current())
			return
		case err := <-w.Errors:
			t.Fatalf("unexpected watcher error: %v", err)
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}
}

func TestWatcherKeepsLastGoodConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "theme: mocha\n")

	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial)
	require.NoError(t, err)
	w.Start()
	defer func() { require.NoError(t, w.Stop()) }()

	replaceConfig(t, path, "theme: solarized\n")

	select {
	case err := <-w.Errors:
		assert.Contains(t, err.Error(), "unknown theme")
		assert.Same(t, initial, w.Current())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config error")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config.yaml"), DefaultConfig())
	require.NoError(t, err)
	w.Start()
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
