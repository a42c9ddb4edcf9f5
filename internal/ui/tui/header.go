package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/nanovis/internal/chart"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// Header shows the app name, the chart tabs and the input summary on one line
type Header struct {
	kind         chart.Kind
	name         string
	total        int64
	width        int
	scanning     bool
	scanProgress string
	version      string
}

// NewHeader creates a new header component
func NewHeader(name, version string) Header {
	return Header{
		name:    name,
		version: version,
		kind:    chart.Treemap,
	}
}

// SetKind marks the active chart tab
func (h *Header) SetKind(k chart.Kind) {
	h.kind = k
}

// SetTotal sets the root size shown on the right
func (h *Header) SetTotal(total int64) {
	h.total = total
}

// SetScanning sets the scanning state
func (h *Header) SetScanning(scanning bool, progress string) {
	h.scanning = scanning
	h.scanProgress = progress
}

// ScanProgress returns the current scan progress text
func (h Header) ScanProgress() string {
	return h.scanProgress
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
// nanovis 0.1.0  [treemap] flamegraph sunburst              input  1.2 MB
func (h Header) View() string {
	nameStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	versionStyle := lipgloss.NewStyle().
		Foreground(ColorDim)

	left := nameStyle.Render("nanovis")
	if h.version != "" {
		left += versionStyle.Render(" " + h.version)
	}
	left += "  "
	for i, k := range chart.Kinds {
		if i > 0 {
			left += " "
		}
		if k == h.kind {
			left += ChartTabActive.Render(string(k))
		} else {
			left += ChartTabInactive.Render(string(k))
		}
	}

	var right string
	switch {
	case h.scanning:
		right = versionStyle.Render("scanning ") + StatsStyle.Render(h.scanProgress)
	case h.name != "":
		right = versionStyle.Render(h.name+"  ") + StatsStyle.Render(model.FormatBytes(h.total))
	}

	gap := h.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		// Narrow: drop the summary
		gap = h.width - lipgloss.Width(left)
		right = ""
		if gap < 0 {
			gap = 0
		}
	}
	return left + strings.Repeat(" ", gap) + right
}
