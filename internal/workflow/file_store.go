package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// fileFormatVersion is written at the top of every workflow file
const fileFormatVersion = 1

// workflowFile is the on-disk YAML document
type workflowFile struct {
	Version   int        `yaml:"version"`
	Workflows []Workflow `yaml:"workflows"`
}

// FileStore keeps workflows in a YAML file. The whole document is rewritten on
// every change through a temp file and rename.
type FileStore struct {
	mu        sync.RWMutex
	path      string
	workflows []Workflow
}

// NewFileStore opens the YAML store at path. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: filepath.Clean(path)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read workflow file: %w", err)
	}

	var doc workflowFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow file %s: %w", s.path, err)
	}
	for _, wf := range doc.Workflows {
		if wf.Name == "" {
			continue
		}
		s.upsert(normalize(wf))
	}
	return s, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Put(_ context.Context, wf Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := slices.Clone(s.workflows)
	s.upsert(normalize(wf))
	if err := s.flush(); err != nil {
		s.workflows = previous
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, name string) (Workflow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.index(name)
	if idx < 0 {
		return Workflow{}, false, nil
	}
	return normalize(s.workflows[idx]), true, nil
}

func (s *FileStore) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(name)
	if idx < 0 {
		return false, nil
	}

	previous := slices.Clone(s.workflows)
	s.workflows = slices.Delete(s.workflows, idx, idx+1)
	if err := s.flush(); err != nil {
		s.workflows = previous
		return false, err
	}
	return true, nil
}

func (s *FileStore) List(_ context.Context) ([]Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, normalize(wf))
	}
	return out, nil
}

// upsert replaces in place or appends. Must be called with s.mu held for writing.
func (s *FileStore) upsert(wf Workflow) {
	if idx := s.index(wf.Name); idx >= 0 {
		s.workflows[idx] = wf
		return
	}
	s.workflows = append(s.workflows, wf)
}

// index finds name. Must be called with s.mu held.
func (s *FileStore) index(name string) int {
	return slices.IndexFunc(s.workflows, func(wf Workflow) bool { return wf.Name == name })
}

// flush writes the document. Must be called with s.mu held for writing.
func (s *FileStore) flush() error {
	data, err := yaml.Marshal(workflowFile{Version: fileFormatVersion, Workflows: s.workflows})
	if err != nil {
		return fmt.Errorf("encode workflow file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create workflow dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".workflows-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp workflow file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp workflow file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp workflow file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace workflow file: %w", err)
	}
	return nil
}
