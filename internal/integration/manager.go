package integration

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dialer establishes a connection to a server
type Dialer interface {
	Dial(ctx context.Context, server Server) error
}

// DialerFunc adapts a function to Dialer
type DialerFunc func(ctx context.Context, server Server) error

func (f DialerFunc) Dial(ctx context.Context, server Server) error {
	return f(ctx, server)
}

// NopDialer accepts every server
var NopDialer = DialerFunc(func(ctx context.Context, _ Server) error {
	return ctx.Err()
})

// LookPathDialer checks that a stdio server's command resolves on PATH.
// HTTP servers are accepted as-is.
var LookPathDialer = DialerFunc(func(ctx context.Context, server Server) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if server.Transport() != "stdio" {
		return nil
	}
	if _, err := exec.LookPath(server.Command); err != nil {
		return fmt.Errorf("command %q not found: %w", server.Command, err)
	}
	return nil
})

// Manager holds the known servers and zaps and the set of live connections
type Manager struct {
	mu      sync.RWMutex
	servers map[string]Server
	zaps    map[string]Zap
	active  map[string]time.Time
	dialer  Dialer
	log     *zap.Logger
	now     func() time.Time
	newRun  func() string
}

// Option configures a Manager
type Option func(*Manager)

// WithDialer overrides how connections are established
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		if d != nil {
			m.dialer = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the time source (useful for testing)
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRunIDFunc overrides zap run id generation (useful for testing)
func WithRunIDFunc(fn func() string) Option {
	return func(m *Manager) { m.newRun = fn }
}

// NewManager creates a manager with no connections
func NewManager(servers []Server, zaps []Zap, opts ...Option) *Manager {
	m := &Manager{
		servers: make(map[string]Server, len(servers)),
		zaps:    make(map[string]Zap, len(zaps)),
		active:  make(map[string]time.Time),
		dialer:  NopDialer,
		log:     zap.NewNop(),
		now:     time.Now,
		newRun:  func() string { return "run_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, s := range servers {
		m.AddServer(s)
	}
	for _, z := range zaps {
		if name := strings.TrimSpace(z.Name); name != "" {
			z.Name = name
			m.zaps[name] = z
		}
	}
	return m
}

// AddServer registers or replaces a server definition. Returns false for a nameless server.
func (m *Manager) AddServer(s Server) bool {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.servers[s.Name] = s
	return true
}

// Servers returns the known servers sorted by name
func (m *Manager) Servers() []Server {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Server, 0, len(m.servers))
	for _, s := range m.servers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Zaps returns the known zaps sorted by name
func (m *Manager) Zaps() []Zap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Zap, 0, len(m.zaps))
	for _, z := range m.zaps {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Connect dials the named server and marks it active. Connecting an active
// server re-dials it.
func (m *Manager) Connect(ctx context.Context, name string) error {
	m.mu.RLock()
	server, ok := m.servers[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownServer, name)
	}

	// Dial without the lock so one slow server does not block status reads
	if err := m.dialer.Dial(ctx, server); err != nil {
		m.log.Warn("MCP connect failed", zap.String("server", name), zap.Error(err))
		return fmt.Errorf("connect %s: %w", name, err)
	}

	m.mu.Lock()
	m.active[name] = m.now().UTC()
	m.mu.Unlock()

	m.log.Info("MCP server connected", zap.String("server", name), zap.String("transport", server.Transport()))
	return nil
}

// Reconnect is Connect under the name workflow loads use
func (m *Manager) Reconnect(ctx context.Context, name string) error {
	return m.Connect(ctx, name)
}

// Disconnect marks the named server inactive
func (m *Manager) Disconnect(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.servers[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownServer, name)
	}
	if _, ok := m.active[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotConnected, name)
	}
	delete(m.active, name)
	m.log.Info("MCP server disconnected", zap.String("server", name))
	return nil
}

// Active returns the connected server names, sorted
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.active))
	for name := range m.active {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Status reports every known server with its connection state
func (m *Manager) Status() []Status {
	servers := m.Servers()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Status, 0, len(servers))
	for _, s := range servers {
		since, connected := m.active[s.Name]
		out = append(out, Status{
			Name:      s.Name,
			Transport: s.Transport(),
			Connected: connected,
			Since:     since,
		})
	}
	return out
}

// Trigger records a run of the named zap. No request leaves the process; the
// result is what a webhook call would acknowledge.
func (m *Manager) Trigger(ctx context.Context, name string, args []string) (TriggerResult, error) {
	if err := ctx.Err(); err != nil {
		return TriggerResult{}, err
	}

	m.mu.RLock()
	z, ok := m.zaps[name]
	m.mu.RUnlock()
	if !ok {
		return TriggerResult{}, fmt.Errorf("%w: %s", ErrUnknownZap, name)
	}

	result := TriggerResult{
		Zap:    z.Name,
		RunID:  m.newRun(),
		Args:   append([]string{}, args...),
		At:     m.now().UTC(),
		Target: z.Webhook,
	}
	m.log.Info("zap triggered", zap.String("zap", z.Name), zap.String("run_id", result.RunID))
	return result, nil
}
