package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

// setPickerItems replaces the picker contents
func (m Model) setPickerItems(msg workflowsLoadedMsg) Model {
	m.pickerErr = msg.err
	items := make([]list.Item, len(msg.summaries))
	for i, s := range msg.summaries {
		items[i] = workflowItem{summary: s}
	}
	m.picker.SetItems(items)
	m.picker.Select(0)
	return m
}

// View renders the UI based on the model state
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderViewTabs())
	b.WriteString("\n")

	switch m.viewMode {
	case ViewPrompt:
		b.WriteString(m.transcript.View())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case ViewWorkflows:
		b.WriteString(m.renderPicker())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderHeader renders the top header bar
func (m Model) renderHeader() string {
	title := m.theme.Title.Render("🎭 ASOOS")

	state := "ready"
	if m.busy {
		state = "running..."
	}
	status := m.theme.Status.Render(fmt.Sprintf("%d commands | %s | %s", len(m.entries), m.theme.Name, state))

	spacing := max(m.width-lipgloss.Width(title)-lipgloss.Width(status)-2, 1)
	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Repeat(" ", spacing), status)
}

// renderViewTabs renders the tab bar for view modes
func (m Model) renderViewTabs() string {
	tabs := []struct {
		name string
		mode ViewMode
	}{
		{"Prompt", ViewPrompt},
		{"Workflows", ViewWorkflows},
	}

	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if t.mode == m.viewMode {
			rendered[i] = m.theme.ActiveTab.Render(t.name)
		} else {
			rendered[i] = m.theme.Muted.Padding(0, 2).Render(t.name)
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	gap := strings.Repeat("─", max(0, m.width-lipgloss.Width(row)-2))
	return row + m.theme.TabGap.Render(gap)
}

func (m Model) renderPicker() string {
	if m.pickerErr != nil {
		return m.theme.Error.Render(fmt.Sprintf("Error: %v", m.pickerErr))
	}
	if len(m.picker.Items()) == 0 {
		return m.theme.Muted.Render("No workflows saved yet. Use 'workflow save <name>' at the prompt.")
	}
	return m.picker.View()
}

// renderHelp renders the help footer
func (m Model) renderHelp() string {
	var help []string
	switch m.viewMode {
	case ViewPrompt:
		help = []string{"enter:run", "↑/↓:history", "pgup/pgdn:scroll", "tab:workflows", "ctrl+c:quit"}
	case ViewWorkflows:
		help = []string{"j/k:navigate", "enter:load", "esc:back", "ctrl+c:quit"}
	}
	return m.theme.Help.Render(strings.Join(help, " | "))
}
