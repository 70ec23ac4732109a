package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asoos/internal/session"
)

type storeFactory func(t *testing.T) Store

func storeBackends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "workflows.yaml"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "workflows.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func sampleWorkflow(name string, commands ...string) Workflow {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]session.HistoryEntry, 0, len(commands))
	for i, raw := range commands {
		entries = append(entries, session.HistoryEntry{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			RawInput:  raw,
			Kind:      session.KindCommand,
		})
	}
	return Workflow{
		Name:              name,
		Timestamp:         base,
		Commands:          entries,
		ActiveConnections: []string{"github", "slack"},
		Context:           session.Context{"organization": "acme"},
	}
}

func names(workflows []Workflow) []string {
	out := make([]string, 0, len(workflows))
	for _, wf := range workflows {
		out = append(out, wf.Name)
	}
	return out
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for backend, factory := range storeBackends() {
		t.Run(backend, func(t *testing.T) {
			t.Run("round trip", func(t *testing.T) {
				s := factory(t)
				want := sampleWorkflow("alpha", "help", "mcp list")
				require.NoError(t, s.Put(ctx, want))

				got, ok, err := s.Get(ctx, "alpha")
				require.NoError(t, err)
				require.True(t, ok)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("workflow mismatch (-want +got):\n%s", diff)
				}
			})

			t.Run("missing", func(t *testing.T) {
				s := factory(t)
				_, ok, err := s.Get(ctx, "nope")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("names are case sensitive", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Put(ctx, sampleWorkflow("Demo", "help")))
				_, ok, err := s.Get(ctx, "demo")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("overwrite keeps position and replaces content", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Put(ctx, sampleWorkflow("first", "a")))
				require.NoError(t, s.Put(ctx, sampleWorkflow("second", "b")))
				require.NoError(t, s.Put(ctx, sampleWorkflow("first", "c", "d")))

				all, err := s.List(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"first", "second"}, names(all))
				require.Len(t, all[0].Commands, 2)
				assert.Equal(t, "c", all[0].Commands[0].RawInput)
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Put(ctx, sampleWorkflow("gone", "a")))

				deleted, err := s.Delete(ctx, "gone")
				require.NoError(t, err)
				assert.True(t, deleted)

				deleted, err = s.Delete(ctx, "gone")
				require.NoError(t, err)
				assert.False(t, deleted)

				all, err := s.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, all)
			})

			t.Run("nil collections come back empty", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Put(ctx, Workflow{Name: "bare", Timestamp: time.Now().UTC()}))

				got, ok, err := s.Get(ctx, "bare")
				require.NoError(t, err)
				require.True(t, ok)
				assert.NotNil(t, got.Commands)
				assert.NotNil(t, got.ActiveConnections)
				assert.NotNil(t, got.Context)
			})

			t.Run("returned workflows do not alias store state", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Put(ctx, sampleWorkflow("alias", "a")))

				got, _, err := s.Get(ctx, "alias")
				require.NoError(t, err)
				got.Context["organization"] = "mutated"
				got.ActiveConnections[0] = "mutated"

				again, _, err := s.Get(ctx, "alias")
				require.NoError(t, err)
				assert.Equal(t, "acme", again.Context["organization"])
				assert.Equal(t, "github", again.ActiveConnections[0])
			})
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "workflows.yaml")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, sampleWorkflow("one", "a")))
	require.NoError(t, s.Put(ctx, sampleWorkflow("two", "b", "c")))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	all, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, names(all))
	assert.Len(t, all[1].Commands, 2)
	assert.Equal(t, path, reopened.Path())
}

func TestFileStoreRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workflows: [unterminated"), 0o600))

	_, err := NewFileStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse workflow file")
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "workflows.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, sampleWorkflow("b-first", "a")))
	require.NoError(t, s.Put(ctx, sampleWorkflow("a-second", "b")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-first", "a-second"}, names(all))
}
