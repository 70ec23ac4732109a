package handlers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"asoos/internal/session"
)

const (
	defaultHistoryCount = 10
	defaultJournalCount = 20
	sessionUsage        = "session info | session history [n] | session export [path] | session journal [n]"
)

// Session renders the session verb
type Session struct {
	store       *session.Store
	journalPath string
	now         func() time.Time
}

// NewSession creates the session handler. journalPath may be empty when the
// journal is disabled.
func NewSession(store *session.Store, journalPath string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{store: store, journalPath: journalPath, now: now}
}

func (h *Session) Handle(ctx context.Context, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(args) == 0 {
		return h.info(), nil
	}

	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "info":
		return h.info(), nil
	case "history":
		n, ok := countArg(rest, defaultHistoryCount)
		if !ok {
			return usageHint(sessionUsage), nil
		}
		return h.history(n), nil
	case "export":
		return h.export(strings.Join(rest, " "))
	case "journal":
		n, ok := countArg(rest, defaultJournalCount)
		if !ok {
			return usageHint(sessionUsage), nil
		}
		return h.journal(n)
	default:
		return usageHint(sessionUsage), nil
	}
}

// countArg parses an optional positive count
func countArg(args []string, def int) (int, bool) {
	if len(args) == 0 {
		return def, true
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (h *Session) info() string {
	s := h.store.Current()

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Session %s\n", s.ID)
	fmt.Fprintf(&b, "  Started:  %s\n", s.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "  Commands: %d\n", len(s.History))
	fmt.Fprintf(&b, "  Context:  %s", renderContext(s.Context))
	return b.String()
}

func renderContext(c session.Context) string {
	if len(c) == 0 {
		return "(empty)"
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+c[k])
	}
	return strings.Join(parts, ", ")
}

func (h *Session) history(n int) string {
	entries := h.store.Recent(n)
	if len(entries) == 0 {
		return "📜 No commands recorded yet"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📜 Last %d commands:\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "  %2d. %s  %s\n", i+1, e.Timestamp.Local().Format(time.TimeOnly), e.RawInput)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Session) export(path string) (string, error) {
	exp := session.NewExport(h.store.Current(), h.now())
	if path == "" {
		data, err := exp.Marshal()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if err := exp.WriteFile(path); err != nil {
		return "", err
	}
	return fmt.Sprintf("📤 Session exported to %s (%d commands)", path, len(exp.History)), nil
}

func (h *Session) journal(n int) (string, error) {
	if h.journalPath == "" {
		return "📓 History journal is disabled. Set journal_path in the config to enable it.", nil
	}

	records, err := session.ReadJournal(h.journalPath)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "📓 Journal is empty", nil
	}
	if len(records) > n {
		records = records[len(records)-n:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📓 Last %d journal entries (%s):\n", len(records), h.journalPath)
	for _, r := range records {
		fmt.Fprintf(&b, "  %s  %-13s %s\n",
			r.Timestamp.Local().Format(time.DateTime), shortID(r.SessionID), r.RawInput)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// shortID trims a session id for display
func shortID(id string) string {
	const maxLen = 13
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}
