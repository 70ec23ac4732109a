package session

import (
	"maps"
	"time"
)

// Kind tags a history entry. Only KindCommand is produced today.
type Kind string

const (
	KindCommand Kind = "command"
)

// HistoryEntry is a single line submitted to the dispatcher
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"` // Set at append time
	RawInput  string    `json:"rawInput" yaml:"raw_input"`  // Exactly what the user typed
	Kind      Kind      `json:"kind" yaml:"kind"`           // Always KindCommand for now
}

// Context is the opaque key/value blob carried by a session and saved with workflows.
// The org handler stores the active organization here.
type Context map[string]string

// Clone returns an independent copy. A nil context clones to an empty one.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	maps.Copy(out, c)
	return out
}

// Session is the single in-memory conversation context of one running process
type Session struct {
	ID        string         // Generated once, never changes for the session's lifetime
	StartedAt time.Time      // When the session was created
	History   []HistoryEntry // Append-only, insertion order is meaningful
	Context   Context        // Restored by workflow load
}

// clone deep-copies the session so callers never alias store state
func (s Session) clone() Session {
	history := make([]HistoryEntry, len(s.History))
	copy(history, s.History)
	return Session{
		ID:        s.ID,
		StartedAt: s.StartedAt,
		History:   history,
		Context:   s.Context.Clone(),
	}
}
