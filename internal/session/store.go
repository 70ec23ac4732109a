package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the active Session. History is append-only; the only way to drop it is
// Reset, which replaces the whole session.
type Store struct {
	mu      sync.Mutex
	current Session
	journal *Journal
	newID   func() string
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithJournal mirrors every recorded entry into a JSONL journal
func WithJournal(j *Journal) Option {
	return func(s *Store) { s.journal = j }
}

// WithClock overrides the time source (useful for testing)
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides session id generation (useful for testing)
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates a store holding a fresh session
func NewStore(opts ...Option) *Store {
	s := &Store{
		newID: func() string { return "sess_" + uuid.NewString() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = s.freshSession()
	return s
}

func (s *Store) freshSession() Session {
	return Session{
		ID:        s.newID(),
		StartedAt: s.now().UTC(),
		History:   []HistoryEntry{},
		Context:   Context{},
	}
}

// Record appends a command entry for rawInput stamped with the current time.
// The entry is always appended; a non-nil error only reports a journal failure.
func (s *Store) Record(rawInput string) (HistoryEntry, error) {
	entry := HistoryEntry{
		Timestamp: s.now().UTC(),
		RawInput:  rawInput,
		Kind:      KindCommand,
	}
	return entry, s.RecordHistory(entry)
}

// RecordHistory appends entry to the live history. It never truncates.
func (s *Store) RecordHistory(entry HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Kind == "" {
		entry.Kind = KindCommand
	}
	s.current.History = append(s.current.History, entry)

	if s.journal == nil {
		return nil
	}
	if err := s.journal.Append(s.current.ID, entry); err != nil {
		return fmt.Errorf("journal history entry: %w", err)
	}
	return nil
}

// Current returns a copy of the active session
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// HistoryLen returns the number of recorded entries
func (s *Store) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current.History)
}

// Recent returns up to n most recent entries in chronological order
func (s *Store) Recent(n int) []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.current.History
	if n < 0 {
		n = 0
	}
	if n < len(history) {
		history = history[len(history)-n:]
	}
	out := make([]HistoryEntry, len(history))
	copy(out, history)
	return out
}

// Context returns a copy of the session context
func (s *Store) Context() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Context.Clone()
}

// SetContext replaces the session context wholesale
func (s *Store) SetContext(ctx Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Context = ctx.Clone()
}

// SetContextValue sets a single context key
func (s *Store) SetContextValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Context == nil {
		s.current.Context = Context{}
	}
	s.current.Context[key] = value
}

// Reset replaces the active session with a new one and returns it.
// Only the terminal front-end's clear affordance should call this.
func (s *Store) Reset() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.freshSession()
	return s.current.clone()
}
