package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// keyColumn is the width of the key column in the overlay
const keyColumn = 16

// helpSections titles the groups of KeyMap.FullHelp
var helpSections = []string{"Charts", "Navigation", "Actions", ""}

// mouseHelp lists the pointer gestures, which have no key binding
var mouseHelp = []key.Binding{
	key.NewBinding(key.WithHelp("click", "focus a group")),
	key.NewBinding(key.WithHelp("wheel", "pan, ctrl to zoom (flamegraph)")),
	key.NewBinding(key.WithHelp("drag", "pan (flamegraph)")),
}

// HelpOverlay lists every binding in a box centered over the viewer
type HelpOverlay struct {
	visible       bool
	width, height int
	version       string
	keys          KeyMap
}

func NewHelpOverlay(version string, keys KeyMap) HelpOverlay {
	return HelpOverlay{version: version, keys: keys}
}

func (h *HelpOverlay) Toggle() { h.visible = !h.visible }

func (h *HelpOverlay) SetVisible(v bool) { h.visible = v }

func (h HelpOverlay) IsVisible() bool { return h.visible }

func (h *HelpOverlay) SetSize(w, ht int) { h.width, h.height = w, ht }

// View renders the overlay, or nothing while hidden
func (h HelpOverlay) View() string {
	if !h.visible {
		return ""
	}
	title := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	section := lipgloss.NewStyle().Foreground(ColorMuted).MarginTop(1)

	var b strings.Builder
	b.WriteString(title.Render("nanovis"))
	if h.version != "" {
		b.WriteString(StatusDim.Render(" " + h.version))
	}
	b.WriteString("\n")

	groups := append(h.keys.FullHelp(), mouseHelp)
	titles := append(helpSections, "Mouse")
	for i, group := range groups {
		if i < len(titles) && titles[i] != "" {
			b.WriteString(section.Render(titles[i]) + "\n")
		}
		for _, binding := range group {
			b.WriteString(helpLine(binding) + "\n")
		}
	}
	b.WriteString("\n" + StatusDim.Render("press any key to close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 3).
		Render(b.String())
	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box)
}

func helpLine(b key.Binding) string {
	hl := b.Help()
	return HelpOverlayKey.Width(keyColumn).Render(hl.Key) + lipgloss.NewStyle().Foreground(ColorText).Render(hl.Desc)
}

// HelpBar renders the one-line key hints. Hints that do not fit are cut
// with an ellipsis.
func HelpBar(keys KeyMap, width int) string {
	m := help.New()
	m.Width = width - HelpStyle.GetHorizontalPadding()
	m.ShortSeparator = "  "
	m.Styles.ShortKey = HelpKey
	m.Styles.ShortDesc = HelpDesc
	m.Styles.ShortSeparator = HelpDesc
	m.Styles.Ellipsis = HelpDesc
	return HelpStyle.Width(width).MaxHeight(1).Render(m.ShortHelpView(keys.ShortHelp()))
}
