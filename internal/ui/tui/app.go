package tui

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/nanovis/internal/cache"
	"github.com/lumipallolabs/nanovis/internal/chart"
	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/config"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/logging"
	"github.com/lumipallolabs/nanovis/internal/model"
	"github.com/lumipallolabs/nanovis/internal/scanner"
	"github.com/lumipallolabs/nanovis/internal/watcher"
)

// Message types for Bubble Tea
type (
	frameMsg       struct{}
	spinnerTickMsg struct{}
	scanDoneMsg    struct {
		root *model.Node
		err  error
	}
	snapshotSavedMsg struct {
		path string
		err  error
	}
	inputChangedMsg struct{ ev watcher.Event }
	reloadedMsg     struct {
		tree     *model.Tree
		getColor color.Getter
		err      error
	}
)

// Spinner frames - modern braille dots spinner
var spinnerFrames = []string{
	"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏",
}

const spinnerTickInterval = 80 * time.Millisecond

// Layout rows outside the chart
const (
	headerHeight  = 1
	statusHeight  = 1
	helpBarHeight = 1
)

// AppOptions configures the interactive viewer
type AppOptions struct {
	// Tree is shown right away. Leave nil and set ScanDir to scan first.
	Tree    *model.Tree
	ScanDir string
	// Scanner walks ScanDir; a default walker is used when nil
	Scanner scanner.Scanner

	Kind    chart.Kind
	Options graph.Options

	// Name labels the input in the header
	Name string
	// Dir is the directory node IDs are relative to. Opening and previewing
	// nodes is only possible when it is set.
	Dir string

	Version string
	State   *config.StateManager
	// Cache receives a snapshot of every finished scan
	Cache *cache.Cache

	// Changes triggers Reload, which reads the input again
	Changes <-chan watcher.Event
	Reload  func() (*model.Tree, color.Getter, error)
}

// App is the main TUI application model
type App struct {
	opts AppOptions

	// UI Components
	header Header
	help   HelpOverlay
	keys   KeyMap
	pg     *Playground

	tree      *model.Tree
	scanStart time.Time
	scanning  bool
	ticking   bool
	err       error
	notice    string

	// launch starts reveal and preview commands
	launch func(*exec.Cmd) error

	// Dimensions
	width  int
	height int
}

// NewApp creates a new application instance
func NewApp(opts AppOptions) App {
	if opts.Kind == "" {
		opts.Kind = chart.Treemap
	}
	if opts.Scanner == nil {
		opts.Scanner = scanner.NewWalker(0)
	}
	if opts.ScanDir != "" && opts.Dir == "" {
		opts.Dir = opts.ScanDir
	}

	app := App{
		opts:   opts,
		header: NewHeader(opts.Name, opts.Version),
		help:   NewHelpOverlay(opts.Version, DefaultKeyMap()),
		keys:   DefaultKeyMap(),
		tree:   opts.Tree,
		launch: (*exec.Cmd).Start,
	}
	app.header.SetKind(opts.Kind)
	if opts.Tree != nil {
		app.header.SetTotal(opts.Tree.Root.Size)
	} else if opts.ScanDir != "" {
		app.scanning = true
		app.scanStart = time.Now()
		app.header.SetScanning(true, "")
	}
	return app
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	if !a.scanning {
		return a.listenForChanges()
	}
	return tea.Batch(a.scan(), spinnerTick(), a.listenForChanges())
}

// listenForChanges waits for the next input change
func (a App) listenForChanges() tea.Cmd {
	if a.opts.Changes == nil || a.opts.Reload == nil {
		return nil
	}
	ch := a.opts.Changes
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil // Channel closed
		}
		return inputChangedMsg{ev: ev}
	}
}

// reload reads the input again in the background
func (a App) reload() tea.Cmd {
	fn := a.opts.Reload
	return func() tea.Msg {
		tree, getColor, err := fn()
		return reloadedMsg{tree: tree, getColor: getColor, err: err}
	}
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerTickInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// scan walks ScanDir in the background
func (a App) scan() tea.Cmd {
	s, dir := a.opts.Scanner, a.opts.ScanDir
	return func() tea.Msg {
		root, err := s.Scan(context.Background(), dir)
		return scanDoneMsg{root: root, err: err}
	}
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if err := a.updateLayout(); err != nil {
			a.err = err
		}
		cmd := a.scheduleFrame()
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		if a.pg == nil || a.help.IsVisible() {
			return a, nil
		}
		msg.Y -= headerHeight
		a.pg.Mouse(msg)
		cmd := a.scheduleFrame()
		return a, cmd

	case frameMsg:
		a.ticking = false
		if a.pg != nil {
			a.pg.Frame()
		}
		cmd := a.scheduleFrame()
		return a, cmd

	case spinnerTickMsg:
		if !a.scanning {
			return a, nil
		}
		p := a.opts.Scanner.Progress()
		a.header.SetScanning(true, fmt.Sprintf("%d files, %s, %s",
			p.FilesScanned, model.FormatBytes(p.BytesFound), time.Since(a.scanStart).Round(100*time.Millisecond)))
		return a, spinnerTick()

	case scanDoneMsg:
		return a.finalizeScan(msg)

	case inputChangedMsg:
		logging.Engine.Debug("reloading input", "path", msg.ev.Path)
		return a, tea.Batch(a.reload(), a.listenForChanges())

	case reloadedMsg:
		return a.applyReload(msg)

	case snapshotSavedMsg:
		if msg.err != nil {
			logging.Scanner.Warn("save snapshot", "err", msg.err)
		} else {
			logging.Scanner.Debug("snapshot saved", "path", msg.path)
		}
		return a, nil
	}

	return a, nil
}

// finalizeScan shows the scanned tree
func (a App) finalizeScan(msg scanDoneMsg) (tea.Model, tea.Cmd) {
	a.scanning = false
	a.header.SetScanning(false, "")
	if msg.err != nil {
		a.err = msg.err
		return a, nil
	}
	tree, err := model.NewTree(msg.root)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.tree = tree
	a.header.SetTotal(tree.Root.Size)
	logging.Scanner.Debug("scan complete", "dir", a.opts.ScanDir, "size", tree.Root.Size, "elapsed", time.Since(a.scanStart))
	if a.opts.State != nil {
		a.opts.State.SetLastInput(a.opts.ScanDir)
	}
	if err := a.updateLayout(); err != nil {
		a.err = err
		return a, nil
	}
	cmd := a.scheduleFrame()
	return a, tea.Batch(a.saveSnapshot(), cmd)
}

// applyReload shows a reloaded tree. A failed reload keeps the old tree,
// since the input may be caught half written.
func (a App) applyReload(msg reloadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.notice = "reload failed: " + msg.err.Error()
		return a, nil
	}
	a.tree = msg.tree
	a.header.SetTotal(msg.tree.Root.Size)
	if msg.getColor != nil {
		a.opts.Options.GetColor = msg.getColor
	}
	a.notice = "reloaded"
	if a.pg != nil {
		if err := a.pg.SetTree(msg.tree, msg.getColor); err != nil {
			a.err = err
			return a, nil
		}
	}
	cmd := a.scheduleFrame()
	return a, cmd
}

func (a App) saveSnapshot() tea.Cmd {
	if a.opts.Cache == nil || a.tree == nil {
		return nil
	}
	c, name, root := a.opts.Cache, a.opts.Name, a.tree.Root
	return func() tea.Msg {
		path, err := c.Save(name, root)
		return snapshotSavedMsg{path: path, err: err}
	}
}

// scheduleFrame starts the frame ticker while the chart has work queued
func (a *App) scheduleFrame() tea.Cmd {
	if a.pg == nil || a.ticking || !a.pg.Pending() {
		return nil
	}
	a.ticking = true
	return tea.Tick(graph.FrameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay - any key closes it
	if a.help.IsVisible() {
		a.help.SetVisible(false)
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		if a.pg != nil {
			a.pg.Close()
		}
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
		return a, nil
	}

	if a.pg == nil {
		return a, nil
	}
	a.notice = ""

	switch {
	case key.Matches(msg, a.keys.NextChart):
		return a.setKind(a.pg.Kind().Next())
	case key.Matches(msg, a.keys.PrevChart):
		return a.setKind(prevKind(a.pg.Kind()))
	case key.Matches(msg, a.keys.Treemap):
		return a.setKind(chart.Treemap)
	case key.Matches(msg, a.keys.Flamegraph):
		return a.setKind(chart.Flamegraph)
	case key.Matches(msg, a.keys.Sunburst):
		return a.setKind(chart.Sunburst)

	case key.Matches(msg, a.keys.Enter):
		if n := a.pg.Hovered(); n != nil {
			a.pg.Select(n)
		}
	case key.Matches(msg, a.keys.Back):
		a.pg.Back()
	case key.Matches(msg, a.keys.Unfocus):
		a.pg.Select(nil)
	case key.Matches(msg, a.keys.Dark):
		a.pg.ToggleDark()

	case key.Matches(msg, a.keys.OpenExplorer):
		a.reveal(revealCommand)
	case key.Matches(msg, a.keys.Preview):
		a.reveal(previewCommand)
	}
	cmd := a.scheduleFrame()
	return a, cmd
}

func prevKind(k chart.Kind) chart.Kind {
	for i, known := range chart.Kinds {
		if known == k {
			return chart.Kinds[(i+len(chart.Kinds)-1)%len(chart.Kinds)]
		}
	}
	return chart.Kinds[0]
}

func (a App) setKind(k chart.Kind) (tea.Model, tea.Cmd) {
	if err := a.pg.SetKind(k); err != nil {
		a.err = err
		return a, nil
	}
	a.header.SetKind(k)
	if a.opts.State != nil {
		a.opts.State.SetLastChart(string(k))
	}
	cmd := a.scheduleFrame()
	return a, cmd
}

// target is the node keyboard actions apply to
func (a App) target() *model.Node {
	if n := a.pg.Hovered(); n != nil {
		return n
	}
	return a.pg.Selected()
}

// nodePath maps a node ID to a file path under Dir
func (a App) nodePath(n *model.Node) (string, bool) {
	if a.opts.Dir == "" || n == nil {
		return "", false
	}
	rel := strings.TrimSuffix(n.ID, "/")
	if rel == "." || rel == "" {
		return a.opts.Dir, true
	}
	return filepath.Join(a.opts.Dir, filepath.FromSlash(rel)), true
}

// reveal launches the command built for the targeted node's file
func (a *App) reveal(command func(string) *exec.Cmd) {
	path, ok := a.nodePath(a.target())
	if !ok {
		a.notice = "nothing to open"
		return
	}
	logging.Engine.Debug("reveal", "path", path)
	if err := a.launch(command(path)); err != nil {
		a.notice = err.Error()
	}
}

// updateLayout calculates component sizes
func (a *App) updateLayout() error {
	a.header.SetWidth(a.width)
	a.help.SetSize(a.width, a.height)

	rows := a.height - headerHeight - statusHeight - helpBarHeight
	if rows < 1 {
		rows = 1
	}
	if a.tree == nil || a.width == 0 {
		return nil
	}
	if a.pg != nil {
		a.pg.SetCells(a.width, rows)
		return nil
	}
	pg, err := NewPlayground(a.tree, a.opts.Kind, a.opts.Options, a.width, rows)
	if err != nil {
		return err
	}
	a.pg = pg
	return nil
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		if a.scanning {
			return "Scanning..."
		}
		return "Loading..."
	}

	if a.help.IsVisible() {
		return a.help.View()
	}

	var sections []string
	sections = append(sections, a.header.View())

	rows := a.height - headerHeight - statusHeight - helpBarHeight
	switch {
	case a.err != nil:
		body := ErrorStyle.Render(fmt.Sprintf("Error: %v", a.err))
		sections = append(sections, lipgloss.Place(a.width, rows, lipgloss.Left, lipgloss.Top, body))
	case a.pg == nil:
		sections = append(sections, a.renderScanning(rows))
	default:
		sections = append(sections, a.pg.View())
	}

	sections = append(sections, a.statusLine(), HelpBar(a.keys, a.width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderScanning renders the spinner while the tree is not ready
func (a App) renderScanning(rows int) string {
	spinnerStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	spinnerIdx := int(time.Since(a.scanStart)/spinnerTickInterval) % len(spinnerFrames)
	if spinnerIdx < 0 {
		spinnerIdx = 0
	}
	line := spinnerStyle.Render(spinnerFrames[spinnerIdx]) + " " +
		lipgloss.NewStyle().Foreground(ColorCyan).Render("Scanning "+a.opts.ScanDir)
	if p := a.header.ScanProgress(); p != "" {
		line += "\n\n" + StatusDim.Render(p)
	}
	return lipgloss.Place(a.width, rows, lipgloss.Center, lipgloss.Center, line)
}

// statusLine describes the hovered node, or the focused one
func (a App) statusLine() string {
	if a.notice != "" {
		return StatusStyle.Width(a.width).MaxHeight(1).Render(StatusDim.Render(a.notice))
	}
	if a.pg == nil {
		return ""
	}
	n := a.target()
	if n == nil {
		return StatusStyle.Width(a.width).MaxHeight(1).Render(StatusDim.Render("hover a node to inspect it"))
	}

	line := Breadcrumb(n)
	if n.Subtext != "" {
		line += StatusDim.Render("  " + n.Subtext)
	}
	if a.opts.Options.GetColor != nil {
		if label := color.ModuleTypeLabel(a.opts.Options.GetColor(n), "  "); label != "" {
			line += StatusDim.Render(label)
		}
	}
	return StatusStyle.Width(a.width).MaxHeight(1).Render(line)
}

// Breadcrumb joins the texts from the root down to n
func Breadcrumb(n *model.Node) string {
	var parts []string
	for ; n != nil; n = n.Parent {
		if text := strings.TrimSuffix(n.Text, "/"); text != "" {
			parts = append(parts, text)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " › ")
}

// Run starts the interactive viewer and blocks until it quits
func Run(opts AppOptions) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen(), tea.WithMouseAllMotion())
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	if app, ok := m.(App); ok && app.err != nil {
		return app.err
	}
	return nil
}
