package workflow

import (
	"context"
	"slices"

	"asoos/internal/session"
)

// Store persists workflows. Implementations keep insertion order: List returns
// workflows in the order their names were first saved, and overwriting a name
// keeps its position.
type Store interface {
	Put(ctx context.Context, wf Workflow) error
	Get(ctx context.Context, name string) (Workflow, bool, error)
	Delete(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]Workflow, error)
}

// normalize makes a deep copy with non-nil collections
func normalize(wf Workflow) Workflow {
	out := wf
	out.Commands = slices.Clone(wf.Commands)
	if out.Commands == nil {
		out.Commands = []session.HistoryEntry{}
	}
	out.ActiveConnections = slices.Clone(wf.ActiveConnections)
	if out.ActiveConnections == nil {
		out.ActiveConnections = []string{}
	}
	out.Context = wf.Context.Clone()
	return out
}
