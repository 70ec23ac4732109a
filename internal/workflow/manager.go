package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"asoos/internal/session"
)

// DefaultReconnectTimeout bounds a single reconnect issued by Load
const DefaultReconnectTimeout = 5 * time.Second

// maxParallelReconnects caps how many reconnects Load runs at once
const maxParallelReconnects = 4

// Connections is the integration-manager surface workflows need
type Connections interface {
	Active() []string
	Reconnect(ctx context.Context, name string) error
}

// Manager implements save/load/list/delete on top of a Store and the live session
type Manager struct {
	store            Store
	sessions         *session.Store
	conns            Connections
	window           int
	reconnectTimeout time.Duration
	log              *zap.Logger
	now              func() time.Time
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithWindow sets how many recent history entries a save captures, capped at DefaultWindow
func WithWindow(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.window = min(n, DefaultWindow)
		}
	}
}

// WithReconnectTimeout sets the per-connection timeout used by Load
func WithReconnectTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.reconnectTimeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the time source (useful for testing)
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a workflow manager. conns may be nil when no integrations exist.
func NewManager(store Store, sessions *session.Store, conns Connections, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:            store,
		sessions:         sessions,
		conns:            conns,
		window:           DefaultWindow,
		reconnectTimeout: DefaultReconnectTimeout,
		log:              zap.NewNop(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Window returns the snapshot window size
func (m *Manager) Window() int {
	return m.window
}

// Save snapshots the most recent history, active connections and context under name,
// replacing any workflow already saved under it. Returns the number of commands captured.
func (m *Manager) Save(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}

	var active []string
	if m.conns != nil {
		active = m.conns.Active()
	}

	wf := Workflow{
		Name:              name,
		Timestamp:         m.now().UTC(),
		Commands:          m.sessions.Recent(m.window),
		ActiveConnections: active,
		Context:           m.sessions.Context(),
	}
	if err := m.store.Put(ctx, wf); err != nil {
		return 0, fmt.Errorf("save workflow %q: %w", name, err)
	}

	m.log.Debug("workflow saved",
		zap.String("name", name),
		zap.Int("commands", len(wf.Commands)),
		zap.Strings("connections", wf.ActiveConnections))
	return len(wf.Commands), nil
}

// Load restores the named workflow's context onto the session and reconnects its
// connections. An empty name returns the listing instead. A missing workflow returns
// ErrNotFound and leaves the session untouched. Reconnect failures become warnings.
func (m *Manager) Load(ctx context.Context, name string) (LoadResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		listing, err := m.List(ctx)
		if err != nil {
			return LoadResult{}, err
		}
		return LoadResult{Listing: listing}, nil
	}

	wf, ok, err := m.store.Get(ctx, name)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load workflow %q: %w", name, err)
	}
	if !ok {
		return LoadResult{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	m.sessions.SetContext(wf.Context)

	restored, warnings := m.reconnect(ctx, wf.ActiveConnections)
	m.log.Debug("workflow loaded",
		zap.String("name", name),
		zap.Strings("restored", restored),
		zap.Int("warnings", len(warnings)))

	return LoadResult{Workflow: wf, Restored: restored, Warnings: warnings}, nil
}

// reconnect runs one bounded reconnect per connection. Results keep the
// workflow's connection order.
func (m *Manager) reconnect(ctx context.Context, names []string) (restored, warnings []string) {
	restored = []string{}
	warnings = []string{}
	if len(names) == 0 {
		return restored, warnings
	}
	if m.conns == nil {
		for _, name := range names {
			warnings = append(warnings, fmt.Sprintf("%s: no integration manager available", name))
		}
		return restored, warnings
	}

	errs := make([]error, len(names))
	g := new(errgroup.Group)
	g.SetLimit(maxParallelReconnects)
	for i, name := range names {
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(ctx, m.reconnectTimeout)
			defer cancel()
			errs[i] = m.reconnectOne(rctx, name)
			return nil
		})
	}
	_ = g.Wait()

	for i, name := range names {
		if errs[i] != nil {
			m.log.Warn("reconnect failed", zap.String("connection", name), zap.Error(errs[i]))
			warnings = append(warnings, fmt.Sprintf("%s: %v", name, errs[i]))
			continue
		}
		restored = append(restored, name)
	}
	return restored, warnings
}

// reconnectOne waits for the reconnect or the deadline, whichever comes first,
// so a collaborator that ignores ctx cannot stall Load.
func (m *Manager) reconnectOne(ctx context.Context, name string) error {
	done := make(chan error, 1)
	go func() {
		done <- m.conns.Reconnect(ctx, name)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("reconnect timed out after %s", m.reconnectTimeout)
		}
		return ctx.Err()
	}
}

// List returns workflow summaries in insertion order, or ErrNoWorkflows
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	workflows, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	if len(workflows) == 0 {
		return nil, ErrNoWorkflows
	}

	out := make([]Summary, 0, len(workflows))
	for _, wf := range workflows {
		out = append(out, wf.Summarize())
	}
	return out, nil
}

// Delete removes the named workflow. Deleting a missing name returns false, nil.
func (m *Manager) Delete(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}
	deleted, err := m.store.Delete(ctx, name)
	if err != nil {
		return false, fmt.Errorf("delete workflow %q: %w", name, err)
	}
	return deleted, nil
}
