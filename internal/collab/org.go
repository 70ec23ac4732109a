package collab

import (
	"context"
	"fmt"
	"strings"
)

var orgDimensions = []string{"Alignment", "Delivery", "Communication", "Capacity"}

// OrgIntelligence renders organization reports for the organization stored in
// the session context
type OrgIntelligence struct {
	sessions ContextStore
}

// NewOrgIntelligence creates the org collaborator
func NewOrgIntelligence(sessions ContextStore) *OrgIntelligence {
	return &OrgIntelligence{sessions: sessions}
}

func (o *OrgIntelligence) Handle(ctx context.Context, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "use":
		name := strings.TrimSpace(strings.Join(args[1:], " "))
		if name == "" {
			return usage("🏢 Organization", "Usage: org use <organization>"), nil
		}
		o.sessions.SetContextValue(OrganizationKey, name)
		return fmt.Sprintf("🏢 Active organization set to %s", name), nil
	case "analyze":
		return o.analyze(), nil
	case "insights":
		return o.insights(), nil
	case "", "status":
		return o.status(), nil
	default:
		return usage("🏢 Organization",
			fmt.Sprintf("Unknown subcommand %q\nUsage: org use <organization> | org analyze | org insights | org status", args[0])), nil
	}
}

func (o *OrgIntelligence) current() (string, bool) {
	name, ok := o.sessions.Context()[OrganizationKey]
	return name, ok && name != ""
}

func (o *OrgIntelligence) status() string {
	name, ok := o.current()
	if !ok {
		return "🏢 No active organization\nSet one with: org use <organization>"
	}
	return fmt.Sprintf("🏢 Active organization: %s", name)
}

func (o *OrgIntelligence) analyze() string {
	name, ok := o.current()
	if !ok {
		return o.status()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Organization analysis: %s\n", name)
	for _, dim := range orgDimensions {
		fmt.Fprintf(&b, "  %-14s %3d/100\n", dim, score(40, 99, name, dim))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (o *OrgIntelligence) insights() string {
	name, ok := o.current()
	if !ok {
		return o.status()
	}

	weakest, low := "", 101
	for _, dim := range orgDimensions {
		if s := score(40, 99, name, dim); s < low {
			weakest, low = dim, s
		}
	}
	return fmt.Sprintf("💡 Insights for %s\n  Focus area: %s (%d/100)\n  Next step: review %s with team leads this week",
		name, weakest, low, strings.ToLower(weakest))
}
