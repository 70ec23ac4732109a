// Package app wires the session store, registry, dispatcher, workflow manager and
// integrations into one explicitly constructed Context.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"asoos/internal/command"
	"asoos/internal/config"
	"asoos/internal/handlers"
	"asoos/internal/integration"
	"asoos/internal/session"
	"asoos/internal/workflow"
)

// Options configures New
type Options struct {
	Config  *config.Config
	Logger  *zap.Logger
	Version string
	Now     func() time.Time
}

// Context owns every long-lived service of a running process
type Context struct {
	Config       *config.Config
	Log          *zap.Logger
	Sessions     *session.Store
	Registry     *command.Registry
	Dispatcher   *command.Dispatcher
	Workflows    *workflow.Manager
	Integrations *integration.Manager

	closers []func() error
}

// New builds a Context from opts. Any failure here is a startup failure.
func New(ctx context.Context, opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	a := &Context{Config: cfg, Log: log}

	sessionOpts := []session.Option{session.WithClock(now)}
	if cfg.JournalPath != "" {
		journal, err := session.OpenJournal(cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open history journal: %w", err)
		}
		sessionOpts = append(sessionOpts, session.WithJournal(journal))
	}
	a.Sessions = session.NewStore(sessionOpts...)

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	servers, err := a.loadServers(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	dialer := integration.NopDialer
	if cfg.MCP.VerifyCommands {
		dialer = integration.LookPathDialer
	}
	a.Integrations = integration.NewManager(servers, cfg.Zapier.Zaps,
		integration.WithDialer(dialer),
		integration.WithLogger(log.Named("integration")),
		integration.WithClock(now),
	)

	a.Workflows = workflow.NewManager(store, a.Sessions, a.Integrations,
		workflow.WithWindow(cfg.WorkflowWindow),
		workflow.WithReconnectTimeout(cfg.ReconnectTimeout),
		workflow.WithLogger(log.Named("workflow")),
		workflow.WithClock(now),
	)

	a.Registry = command.NewRegistry()
	if err := handlers.Register(a.Registry, handlers.Deps{
		Sessions:     a.Sessions,
		Workflows:    a.Workflows,
		Integrations: a.Integrations,
		JournalPath:  cfg.JournalPath,
		Version:      version,
		Now:          now,
	}); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("register handlers: %w", err)
	}

	a.Dispatcher = command.NewDispatcher(a.Registry, a.Sessions, command.Options{
		Timeout: cfg.HandlerTimeout,
		Logger:  log.Named("dispatch"),
	})

	log.Info("asoos started",
		zap.String("session", a.Sessions.Current().ID),
		zap.String("store", cfg.Store.Backend),
		zap.Int("mcp_servers", len(servers)),
	)
	return a, nil
}

// openStore creates the configured workflow store
func (a *Context) openStore() (workflow.Store, error) {
	switch a.Config.Store.Backend {
	case config.BackendMemory:
		return workflow.NewMemoryStore(), nil
	case config.BackendSQLite:
		s, err := workflow.NewSQLiteStore(a.Config.StorePath())
		if err != nil {
			return nil, fmt.Errorf("open workflow database: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.BackendFile, "":
		s, err := workflow.NewFileStore(a.Config.StorePath())
		if err != nil {
			return nil, fmt.Errorf("open workflow file: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.Config.Store.Backend)
	}
}

// loadServers merges manifest, discovered and inline servers. Later sources win
// on name clashes. A failing discovery command is logged, not fatal.
func (a *Context) loadServers(ctx context.Context) ([]integration.Server, error) {
	byName := make(map[string]integration.Server)
	var order []string
	add := func(servers []integration.Server) {
		for _, s := range servers {
			if _, seen := byName[s.Name]; !seen {
				order = append(order, s.Name)
			}
			byName[s.Name] = s
		}
	}

	if path := a.Config.MCP.Manifest; path != "" {
		servers, err := integration.LoadManifest(path)
		if err != nil {
			return nil, err
		}
		add(servers)
	}

	if cmd := a.Config.MCP.DiscoverCommand; len(cmd) > 0 {
		servers, err := integration.Discover(ctx, cmd)
		if err != nil {
			a.Log.Warn("MCP discovery failed", zap.Strings("command", cmd), zap.Error(err))
		} else {
			add(servers)
		}
	}

	add(a.Config.MCP.Servers)

	out := make([]integration.Server, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

// Dispatch runs one input line
func (a *Context) Dispatch(ctx context.Context, line string) string {
	return a.Dispatcher.Dispatch(ctx, line)
}

// ListWorkflows returns saved workflow summaries in insertion order
func (a *Context) ListWorkflows(ctx context.Context) ([]workflow.Summary, error) {
	return a.Workflows.List(ctx)
}

// ResetSession starts a fresh session. Workflows and connections are kept.
func (a *Context) ResetSession() session.Session {
	s := a.Sessions.Reset()
	a.Log.Info("session reset", zap.String("session", s.ID))
	return s
}

// Close releases stores and flushes the logger
func (a *Context) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.Log.Sync()
	return errors.Join(errs...)
}
