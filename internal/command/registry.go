package command

import (
	"errors"
	"fmt"
	"strings"
)

// Category groups verbs in help output
type Category int

const (
	CategoryCore         Category = iota // help, asoos, demo
	CategoryAssistants                   // code, copilot, org, voice
	CategoryIntegrations                 // mcp, zapier
	CategorySession                      // workflow, session
)

// String returns the category name
func (c Category) String() string {
	names := []string{"Core", "Assistants", "Integrations", "Session"}
	if int(c) >= 0 && int(c) < len(names) {
		return names[c]
	}
	return "Unknown"
}

// Entry is one verb in the registry
type Entry struct {
	Verb        string   // Lowercase verb, e.g. "workflow"
	Description string   // One-line summary for help
	Usage       string   // e.g. "workflow save <name>"
	Commands    []string // Full command forms contributed to the known-command list
	Category    Category
	Handler     Handler
}

var (
	ErrEmptyVerb     = errors.New("verb is required")
	ErrNilHandler    = errors.New("handler is required")
	ErrDuplicateVerb = errors.New("verb already registered")
)

// Registry maps verbs to handlers. Lookups are case-insensitive; registration
// order is kept for help output and the known-command list.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds entry. Verbs are normalized to lowercase.
func (r *Registry) Register(entry Entry) error {
	verb := strings.ToLower(strings.TrimSpace(entry.Verb))
	if verb == "" {
		return ErrEmptyVerb
	}
	if entry.Handler == nil {
		return fmt.Errorf("register %q: %w", verb, ErrNilHandler)
	}
	if _, exists := r.entries[verb]; exists {
		return fmt.Errorf("register %q: %w", verb, ErrDuplicateVerb)
	}

	entry.Verb = verb
	r.entries[verb] = entry
	r.order = append(r.order, verb)
	return nil
}

// Lookup returns the entry registered for verb, ignoring case
func (r *Registry) Lookup(verb string) (Entry, bool) {
	entry, ok := r.entries[strings.ToLower(verb)]
	return entry, ok
}

// Entries returns all entries in registration order
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, verb := range r.order {
		out = append(out, r.entries[verb])
	}
	return out
}

// KnownCommands flattens every entry's command forms in registration order.
// Entries without explicit forms contribute their bare verb.
func (r *Registry) KnownCommands() []string {
	var known []string
	for _, entry := range r.Entries() {
		if len(entry.Commands) == 0 {
			known = append(known, entry.Verb)
			continue
		}
		known = append(known, entry.Commands...)
	}
	return known
}
