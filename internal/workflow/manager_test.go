package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"asoos/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeConnections records reconnects; names in fail return an error and names in
// hang block until ctx is done.
type fakeConnections struct {
	mu         sync.Mutex
	active     []string
	fail       map[string]bool
	hang       map[string]bool
	reconnects []string
}

func (f *fakeConnections) Active() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.active)
}

func (f *fakeConnections) Reconnect(ctx context.Context, name string) error {
	f.mu.Lock()
	f.reconnects = append(f.reconnects, name)
	fail, hang := f.fail[name], f.hang[name]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if fail {
		return fmt.Errorf("server %s unreachable", name)
	}
	return nil
}

func newTestManager(t *testing.T, conns Connections, opts ...ManagerOption) (*Manager, *session.Store) {
	t.Helper()
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sessions := session.NewStore(
		session.WithIDFunc(func() string { return "sess_test" }),
		session.WithClock(func() time.Time { return clock }),
	)
	opts = append([]ManagerOption{WithClock(func() time.Time { return clock })}, opts...)
	return NewManager(NewMemoryStore(), sessions, conns, opts...), sessions
}

func record(t *testing.T, s *session.Store, n int) {
	t.Helper()
	for i := range n {
		_, err := s.Record(fmt.Sprintf("cmd %d", i))
		require.NoError(t, err)
	}
}

func TestManagerSaveTruncatesToWindow(t *testing.T) {
	tests := []struct {
		name    string
		history int
		want    int
	}{
		{"empty history", 0, 0},
		{"short history", 3, 3},
		{"exactly window", 10, 10},
		{"long history", 25, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m, sessions := newTestManager(t, nil)
			record(t, sessions, tt.history)

			count, err := m.Save(ctx, "snap")
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)

			wf, ok, err := m.store.Get(ctx, "snap")
			require.NoError(t, err)
			require.True(t, ok)
			require.Len(t, wf.Commands, tt.want)
			if tt.want > 0 {
				assert.Equal(t, fmt.Sprintf("cmd %d", tt.history-1), wf.Commands[tt.want-1].RawInput)
				assert.Equal(t, fmt.Sprintf("cmd %d", tt.history-tt.want), wf.Commands[0].RawInput)
			}
			assert.Equal(t, tt.history, sessions.HistoryLen(), "live history must not be truncated")
		})
	}
}

func TestManagerSaveCustomWindow(t *testing.T) {
	m, sessions := newTestManager(t, nil, WithWindow(2))
	record(t, sessions, 5)

	count, err := m.Save(context.Background(), "small")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, m.Window())
}

func TestManagerWindowNeverExceedsDefault(t *testing.T) {
	m, sessions := newTestManager(t, nil, WithWindow(50))
	record(t, sessions, 20)

	count, err := m.Save(context.Background(), "wide")
	require.NoError(t, err)
	assert.Equal(t, DefaultWindow, count)
	assert.Equal(t, DefaultWindow, m.Window())

	wf, ok, err := m.store.Get(context.Background(), "wide")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, wf.Commands, DefaultWindow)
	assert.Equal(t, "cmd 19", wf.Commands[DefaultWindow-1].RawInput)
}

func TestManagerSaveRejectsEmptyName(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	for _, name := range []string{"", "   ", "\t"} {
		_, err := m.Save(ctx, name)
		assert.ErrorIs(t, err, ErrEmptyName)
	}
	_, err := m.List(ctx)
	assert.ErrorIs(t, err, ErrNoWorkflows)
}

func TestManagerOverwrite(t *testing.T) {
	ctx := context.Background()
	m, sessions := newTestManager(t, nil)

	record(t, sessions, 2)
	_, err := m.Save(ctx, "dup")
	require.NoError(t, err)

	record(t, sessions, 3)
	_, err = m.Save(ctx, "dup")
	require.NoError(t, err)

	listing, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Equal(t, "dup", listing[0].Name)
	assert.Equal(t, 5, listing[0].CommandCount)
}

func TestManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	conns := &fakeConnections{active: []string{"github", "linear"}}
	m, sessions := newTestManager(t, conns)

	sessions.SetContextValue("organization", "acme")
	record(t, sessions, 4)
	_, err := m.Save(ctx, "x")
	require.NoError(t, err)

	sessions.SetContext(session.Context{"organization": "other", "extra": "1"})

	result, err := m.Load(ctx, "x")
	require.NoError(t, err)
	assert.False(t, result.Listed())
	assert.Equal(t, session.Context{"organization": "acme"}, sessions.Context())
	assert.Equal(t, []string{"github", "linear"}, result.Workflow.ActiveConnections)
	assert.Equal(t, []string{"github", "linear"}, result.Restored)
	assert.Empty(t, result.Warnings)
	assert.ElementsMatch(t, []string{"github", "linear"}, conns.reconnects)
}

func TestManagerLoadMissingLeavesContext(t *testing.T) {
	ctx := context.Background()
	m, sessions := newTestManager(t, &fakeConnections{})
	sessions.SetContextValue("organization", "acme")

	_, err := m.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, session.Context{"organization": "acme"}, sessions.Context())
}

func TestManagerLoadWithoutNameLists(t *testing.T) {
	ctx := context.Background()
	m, sessions := newTestManager(t, nil)

	_, err := m.Load(ctx, "")
	require.ErrorIs(t, err, ErrNoWorkflows)

	record(t, sessions, 1)
	for _, name := range []string{"zeta", "alpha"} {
		_, err := m.Save(ctx, name)
		require.NoError(t, err)
	}

	result, err := m.Load(ctx, "  ")
	require.NoError(t, err)
	assert.True(t, result.Listed())
	require.Len(t, result.Listing, 2)
	assert.Equal(t, "zeta", result.Listing[0].Name)
	assert.Equal(t, "alpha", result.Listing[1].Name)
}

func TestManagerLoadAggregatesReconnectFailures(t *testing.T) {
	ctx := context.Background()
	conns := &fakeConnections{
		active: []string{"ok-1", "broken", "slow", "ok-2"},
		fail:   map[string]bool{"broken": true},
		hang:   map[string]bool{"slow": true},
	}
	m, _ := newTestManager(t, conns, WithReconnectTimeout(20*time.Millisecond))

	_, err := m.Save(ctx, "mixed")
	require.NoError(t, err)

	start := time.Now()
	result, err := m.Load(ctx, "mixed")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Equal(t, []string{"ok-1", "ok-2"}, result.Restored)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "broken")
	assert.Contains(t, result.Warnings[0], "unreachable")
	assert.Contains(t, result.Warnings[1], "slow")
	assert.Contains(t, result.Warnings[1], "timed out")
}

func TestManagerLoadWithoutConnections(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, sampleWorkflow("legacy", "a")))

	sessions := session.NewStore()
	m := NewManager(store, sessions, nil)

	result, err := m.Load(ctx, "legacy")
	require.NoError(t, err)
	assert.Empty(t, result.Restored)
	assert.Len(t, result.Warnings, 2)
}

func TestManagerDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	m, sessions := newTestManager(t, nil)
	record(t, sessions, 1)
	_, err := m.Save(ctx, "temp")
	require.NoError(t, err)

	deleted, err := m.Delete(ctx, "temp")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = m.Delete(ctx, "temp")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = m.List(ctx)
	assert.ErrorIs(t, err, ErrNoWorkflows)

	_, err = m.Delete(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

type failingStore struct{ *MemoryStore }

func (f *failingStore) Put(context.Context, Workflow) error {
	return errors.New("disk full")
}

func TestManagerSaveWrapsStoreError(t *testing.T) {
	sessions := session.NewStore()
	m := NewManager(&failingStore{MemoryStore: NewMemoryStore()}, sessions, nil)

	_, err := m.Save(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
