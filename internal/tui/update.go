package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.updateSizes(), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.viewMode == ViewWorkflows {
			return m.handlePickerKey(msg)
		}
		return m.handlePromptKey(msg)

	case dispatchedMsg:
		m.busy = false
		m.entries = append(m.entries, transcriptEntry{input: msg.input, output: msg.output})
		return m.refreshTranscript(), nil

	case workflowsLoadedMsg:
		return m.setPickerItems(msg), nil

	case configReloadedMsg:
		if msg.cfg != nil {
			m.input.Prompt = msg.cfg.Prompt
			m = m.applyTheme(NewTheme(msg.cfg.Theme)).updateSizes()
		}
		return m, m.waitForConfigCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handlePromptKey handles keys while the input line has focus
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit(m.input.Value())
	case "up":
		return m.recallPrev(), nil
	case "down":
		return m.recallNext(), nil
	case "tab":
		m.viewMode = ViewWorkflows
		m.input.Blur()
		return m, m.loadWorkflowsCmd()
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handlePickerKey handles keys while the workflow picker is shown
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab", "q":
		return m.closePicker(), nil
	case "enter":
		item, ok := m.picker.SelectedItem().(workflowItem)
		m = m.closePicker()
		if !ok {
			return m, nil
		}
		return m.submit("workflow load " + item.summary.Name)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) closePicker() Model {
	m.viewMode = ViewPrompt
	m.input.Focus()
	return m
}

// submit handles one line. exit, quit and clear belong to the front-end;
// everything else goes to the backend exactly as typed, one line at a time.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || m.busy {
		return m, nil
	}

	m.input.Reset()
	m.pushRecall(trimmed)

	switch strings.ToLower(trimmed) {
	case "exit", "quit":
		m.quitting = true
		return m, tea.Quit
	case "clear":
		m.backend.ResetSession()
		m.entries = nil
		return m.refreshTranscript(), tea.ClearScreen
	}

	m.busy = true
	return m, m.dispatchCmd(line)
}

// pushRecall appends line to the recall list, skipping immediate repeats
func (m *Model) pushRecall(line string) {
	if n := len(m.recall); n == 0 || m.recall[n-1] != line {
		m.recall = append(m.recall, line)
	}
	m.recallIdx = len(m.recall)
	m.draft = ""
}

func (m Model) recallPrev() Model {
	if m.recallIdx == 0 {
		return m
	}
	if m.recallIdx == len(m.recall) {
		m.draft = m.input.Value()
	}
	m.recallIdx--
	m.input.SetValue(m.recall[m.recallIdx])
	m.input.CursorEnd()
	return m
}

func (m Model) recallNext() Model {
	if m.recallIdx >= len(m.recall) {
		return m
	}
	m.recallIdx++
	if m.recallIdx == len(m.recall) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.recall[m.recallIdx])
	}
	m.input.CursorEnd()
	return m
}
