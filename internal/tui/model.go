package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"asoos/internal/config"
	"asoos/internal/session"
	"asoos/internal/workflow"
)

// Backend is what the front-end drives
type Backend interface {
	Dispatch(ctx context.Context, line string) string
	ResetSession() session.Session
	ListWorkflows(ctx context.Context) ([]workflow.Summary, error)
}

// ViewMode represents the current view
type ViewMode int

const (
	ViewPrompt    ViewMode = iota // Transcript and input line
	ViewWorkflows                 // Saved workflow picker
)

// Options configures NewModel
type Options struct {
	Backend Backend
	Theme   string
	Prompt  string

	// Updates delivers reloaded configs. May be nil.
	Updates <-chan *config.Config

	// Context is passed to every dispatch. Defaults to context.Background().
	Context context.Context
}

// transcriptEntry is one dispatched line and its response
type transcriptEntry struct {
	input  string
	output string
}

// Model represents the application state
type Model struct {
	ctx      context.Context
	backend  Backend
	updates  <-chan *config.Config
	theme    Theme
	viewMode ViewMode

	// Prompt state
	input      textinput.Model
	transcript viewport.Model
	entries    []transcriptEntry
	busy       bool // A dispatch is in flight; the next line waits for it

	// Up/down recall over lines typed in this process
	recall    []string
	recallIdx int
	draft     string

	// Workflow picker
	picker    list.Model
	pickerErr error

	// UI dimensions
	width  int
	height int

	quitting bool
}

// NewModel creates a new Model with initialized state
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = config.DefaultConfig().Prompt
	}
	theme := NewTheme(opts.Theme)

	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = "help"
	input.CharLimit = 1024
	input.Focus()

	m := Model{
		ctx:        ctx,
		backend:    opts.Backend,
		updates:    opts.Updates,
		viewMode:   ViewPrompt,
		input:      input,
		transcript: viewport.New(0, 0),
		picker:     newPicker(theme),
	}
	return m.applyTheme(theme)
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.waitForConfigCmd(),
	)
}

// Message types
type (
	dispatchedMsg struct {
		input  string
		output string
	}
	workflowsLoadedMsg struct {
		summaries []workflow.Summary
		err       error
	}
	configReloadedMsg struct{ cfg *config.Config }
)

// dispatchCmd runs one line through the backend off the UI goroutine
func (m Model) dispatchCmd(line string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		return dispatchedMsg{input: line, output: backend.Dispatch(ctx, line)}
	}
}

// loadWorkflowsCmd fetches the picker contents
func (m Model) loadWorkflowsCmd() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		summaries, err := backend.ListWorkflows(ctx)
		if errors.Is(err, workflow.ErrNoWorkflows) {
			return workflowsLoadedMsg{}
		}
		return workflowsLoadedMsg{summaries: summaries, err: err}
	}
}

// waitForConfigCmd returns a command that waits for the next config reload
func (m Model) waitForConfigCmd() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	updates, done := m.updates, m.ctx.Done()
	return func() tea.Msg {
		select {
		case cfg, ok := <-updates:
			if !ok {
				return nil
			}
			return configReloadedMsg{cfg: cfg}
		case <-done:
			return nil
		}
	}
}

// applyTheme restyles every component
func (m Model) applyTheme(theme Theme) Model {
	m.theme = theme
	m.input.PromptStyle = theme.Prompt
	m.input.TextStyle = theme.Input
	m.input.PlaceholderStyle = theme.Muted

	d := newWorkflowDelegate(theme)
	d.width = m.contentWidth()
	m.picker.SetDelegate(d)
	return m.refreshTranscript()
}

// contentWidth is the usable width inside the margins
func (m Model) contentWidth() int {
	return max(m.width-2, 20)
}

// updateSizes updates component dimensions based on terminal size
func (m Model) updateSizes() Model {
	// Reserve space for header (1), tabs (1), input (1), help (1), separators (2)
	bodyHeight := max(m.height-6, 3)
	width := m.contentWidth()

	m.transcript.Width = width
	m.transcript.Height = bodyHeight
	m.input.Width = width - len([]rune(m.input.Prompt)) - 1
	m.picker.SetSize(width, bodyHeight+1)

	d := newWorkflowDelegate(m.theme)
	d.width = width
	m.picker.SetDelegate(d)
	return m.refreshTranscript()
}

// refreshTranscript re-renders the transcript and scrolls to the newest entry
func (m Model) refreshTranscript() Model {
	width := m.contentWidth()
	blocks := []string{m.theme.RenderBanner()}
	for _, e := range m.entries {
		echo := m.theme.EchoInput.Render(strings.TrimRight(m.input.Prompt, " ") + " " + e.input)
		block := echo
		if e.output != "" {
			out := wrapText(e.output, width)
			block += "\n" + m.theme.StyleForOutput(e.output).Render(out)
		}
		blocks = append(blocks, block)
	}
	m.transcript.SetContent(strings.Join(blocks, "\n\n"))
	m.transcript.GotoBottom()
	return m
}

// Quitting reports whether the user asked to leave
func (m Model) Quitting() bool {
	return m.quitting
}
