// Package collab holds the deterministic assistant collaborators behind the
// code, copilot, org and voice verbs. Every "score" is derived from a hash of
// its input so output is reproducible.
package collab

import (
	"fmt"
	"hash/fnv"
	"strings"

	"asoos/internal/session"
)

// OrganizationKey is the session context key holding the active organization
const OrganizationKey = "organization"

// ContextStore is the part of the session store collaborators use
type ContextStore interface {
	Context() session.Context
	SetContextValue(key, value string)
}

// score maps parts onto a stable value in [lo, hi]
func score(lo, hi int, parts ...string) int {
	h := fnv.New32a()
	for _, p := range parts {
		_, _ = h.Write([]byte(strings.ToLower(p)))
		_, _ = h.Write([]byte{0})
	}
	return lo + int(h.Sum32()%uint32(hi-lo+1))
}

// pick chooses one of options by hashing parts
func pick(options []string, parts ...string) string {
	return options[score(0, len(options)-1, parts...)]
}

func usage(title, body string) string {
	return fmt.Sprintf("%s\n%s", title, body)
}
