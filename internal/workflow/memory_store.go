package workflow

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps workflows for the life of the process
type MemoryStore struct {
	mu        sync.RWMutex
	workflows map[string]Workflow
	order     []string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{workflows: make(map[string]Workflow)}
}

func (s *MemoryStore) Put(_ context.Context, wf Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workflows[wf.Name]; !exists {
		s.order = append(s.order, wf.Name)
	}
	s.workflows[wf.Name] = normalize(wf)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (Workflow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.workflows[name]
	if !ok {
		return Workflow{}, false, nil
	}
	return normalize(wf), true, nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workflows[name]; !exists {
		return false, nil
	}
	delete(s.workflows, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return true, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Workflow, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, normalize(s.workflows[name]))
	}
	return out, nil
}
