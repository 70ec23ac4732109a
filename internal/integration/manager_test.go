package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestManager(opts ...Option) *Manager {
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithRunIDFunc(func() string { return "run_test" }),
	}, opts...)
	return NewManager(
		[]Server{
			{Name: "github", Command: "mcp-github"},
			{Name: "docs", URL: "https://docs.example.com/mcp"},
			{Name: "  "},
		},
		[]Zap{{Name: "notify-slack", Webhook: "https://hooks.zapier.com/x"}},
		opts...,
	)
}

func TestManagerConnectLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	assert.Len(t, m.Servers(), 2)
	assert.Empty(t, m.Active())

	require.NoError(t, m.Connect(ctx, "github"))
	require.NoError(t, m.Reconnect(ctx, "docs"))
	assert.Equal(t, []string{"docs", "github"}, m.Active())

	status := m.Status()
	require.Len(t, status, 2)
	assert.Equal(t, Status{Name: "docs", Transport: "http", Connected: true, Since: testNow}, status[0])

	require.NoError(t, m.Disconnect("github"))
	assert.Equal(t, []string{"docs"}, m.Active())

	assert.ErrorIs(t, m.Disconnect("github"), ErrNotConnected)
	assert.ErrorIs(t, m.Disconnect("nope"), ErrUnknownServer)
	assert.ErrorIs(t, m.Connect(ctx, "nope"), ErrUnknownServer)
}

func TestManagerDialFailureLeavesInactive(t *testing.T) {
	m := newTestManager(WithDialer(DialerFunc(func(context.Context, Server) error {
		return errors.New("refused")
	})))

	err := m.Connect(context.Background(), "github")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
	assert.Empty(t, m.Active())
}

func TestManagerConnectRespectsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager()
	assert.ErrorIs(t, m.Connect(ctx, "github"), context.Canceled)
}

func TestLookPathDialer(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, LookPathDialer.Dial(ctx, Server{Name: "docs", URL: "https://x"}))
	assert.Error(t, LookPathDialer.Dial(ctx, Server{Name: "x", Command: "asoos-definitely-not-a-binary"}))
}

func TestManagerTrigger(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	result, err := m.Trigger(ctx, "notify-slack", []string{"deploy", "done"})
	require.NoError(t, err)
	assert.Equal(t, TriggerResult{
		Zap:    "notify-slack",
		RunID:  "run_test",
		Args:   []string{"deploy", "done"},
		At:     testNow,
		Target: "https://hooks.zapier.com/x",
	}, result)

	_, err = m.Trigger(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrUnknownZap)
}
