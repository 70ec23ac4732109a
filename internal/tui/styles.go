package tui

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// palette is the subset of a catppuccin flavor the UI draws with
type palette interface {
	Red() catppuccin.Color
	Peach() catppuccin.Color
	Yellow() catppuccin.Color
	Green() catppuccin.Color
	Mauve() catppuccin.Color
	Lavender() catppuccin.Color
	Text() catppuccin.Color
	Subtext0() catppuccin.Color
	Overlay1() catppuccin.Color
	Surface0() catppuccin.Color
}

// flavor returns the palette for a theme name, defaulting to mocha
func flavor(name string) palette {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	default:
		return catppuccin.Mocha
	}
}

func color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

// Theme holds every style the UI renders with
type Theme struct {
	Name string

	Title      lipgloss.Style
	Status     lipgloss.Style
	Prompt     lipgloss.Style
	Input      lipgloss.Style
	EchoInput  lipgloss.Style
	Output     lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Muted      lipgloss.Style
	Help       lipgloss.Style
	Banner     lipgloss.Style
	Selected   lipgloss.Style
	Normal     lipgloss.Style
	CountBadge lipgloss.Style
	ActiveTab  lipgloss.Style
	TabGap     lipgloss.Style
}

// NewTheme builds the styles for a catppuccin flavor name
func NewTheme(name string) Theme {
	p := flavor(name)
	return Theme{
		Name: name,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(color(p.Mauve())),

		Status: lipgloss.NewStyle().
			Foreground(color(p.Subtext0())),

		Prompt: lipgloss.NewStyle().
			Foreground(color(p.Mauve())).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(color(p.Text())),

		EchoInput: lipgloss.NewStyle().
			Foreground(color(p.Lavender())).
			Bold(true),

		Output: lipgloss.NewStyle().
			Foreground(color(p.Text())),

		Warning: lipgloss.NewStyle().
			Foreground(color(p.Yellow())),

		Error: lipgloss.NewStyle().
			Foreground(color(p.Red())).
			Bold(true).
			Padding(1),

		Muted: lipgloss.NewStyle().
			Foreground(color(p.Overlay1())),

		Help: lipgloss.NewStyle().
			Foreground(color(p.Overlay1())),

		Banner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color(p.Mauve())).
			Foreground(color(p.Text())).
			Padding(0, 2),

		Selected: lipgloss.NewStyle().
			Background(color(p.Surface0())).
			Foreground(color(p.Green())).
			Bold(true),

		Normal: lipgloss.NewStyle().
			Foreground(color(p.Text())),

		CountBadge: lipgloss.NewStyle().
			Background(color(p.Peach())).
			Foreground(color(p.Surface0())).
			Padding(0, 1),

		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Background(color(p.Mauve())).
			Foreground(color(p.Surface0())).
			Padding(0, 2),

		TabGap: lipgloss.NewStyle().
			Foreground(color(p.Overlay1())),
	}
}

// StyleForOutput picks the style for a handler response by its leading marker
func (t Theme) StyleForOutput(out string) lipgloss.Style {
	switch {
	case strings.HasPrefix(out, "❌"):
		return t.Warning.Foreground(t.Error.GetForeground())
	case strings.HasPrefix(out, "⚠️"), strings.HasPrefix(out, "❓"):
		return t.Warning
	default:
		return t.Output
	}
}

// bannerText is shown at startup and after clear
const bannerText = "🎭 ASOOS CLI\nType 'help' for commands, 'demo' for a tour, 'exit' to leave."

// RenderBanner renders the startup banner
func (t Theme) RenderBanner() string {
	return t.Banner.Render(bannerText)
}
