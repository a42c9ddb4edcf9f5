package tui

import "github.com/charmbracelet/lipgloss"

// Viewer colors. The accent matches the chart hover outline.
var (
	ColorPrimary = lipgloss.Color("#A78BFA")
	ColorDanger  = lipgloss.Color("#F87171")
	ColorMuted   = lipgloss.Color("#52525B")
	ColorCyan    = lipgloss.Color("#22D3EE")
	ColorText    = lipgloss.Color("#E4E4E7")
	ColorDim     = lipgloss.Color("#A1A1AA")
)

// header
var (
	ChartTabActive = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#18181B")).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	ChartTabInactive = lipgloss.NewStyle().
				Foreground(ColorDim).
				Padding(0, 1)

	StatsStyle = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
)

// status line and help
var (
	StatusStyle = lipgloss.NewStyle().Foreground(ColorText).Padding(0, 1)
	StatusDim   = lipgloss.NewStyle().Foreground(ColorDim)

	HelpStyle      = lipgloss.NewStyle().Padding(0, 1)
	HelpKey        = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	HelpDesc       = lipgloss.NewStyle().Foreground(ColorMuted)
	HelpOverlayKey = lipgloss.NewStyle().Foreground(ColorCyan).Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorDanger).Padding(0, 1)
)
