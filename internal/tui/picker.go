package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"asoos/internal/workflow"
)

// workflowItem wraps a workflow summary for the picker list
type workflowItem struct {
	summary workflow.Summary
}

func (i workflowItem) FilterValue() string { return i.summary.Name }
func (i workflowItem) Title() string       { return i.summary.Name }
func (i workflowItem) Description() string {
	return fmt.Sprintf("%d commands | %s", i.summary.CommandCount, formatTimeAgo(i.summary.Date))
}

// workflowDelegate renders workflow items
type workflowDelegate struct {
	theme Theme
	width int
}

func newWorkflowDelegate(theme Theme) workflowDelegate {
	return workflowDelegate{theme: theme}
}

func (d workflowDelegate) Height() int                             { return 2 }
func (d workflowDelegate) Spacing() int                            { return 1 }
func (d workflowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d workflowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(workflowItem)
	if !ok {
		return
	}

	indicator := "  "
	nameStyle := d.theme.Normal
	if index == m.Index() {
		indicator = d.theme.Selected.Render("▸ ")
		nameStyle = d.theme.Selected
	}

	name := nameStyle.Render(truncate(i.summary.Name, max(d.width-4, 8)))
	count := d.theme.CountBadge.Render(fmt.Sprintf("%d", i.summary.CommandCount))
	desc := d.theme.Muted.Render("  " + formatTimeAgo(i.summary.Date))

	fmt.Fprintf(w, "%s%s %s\n%s", indicator, name, count, desc)
}

func newPicker(theme Theme) list.Model {
	l := list.New([]list.Item{}, newWorkflowDelegate(theme), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// formatTimeAgo returns a human-readable relative time string
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	default:
		return t.Local().Format("Jan 2")
	}
}
