// Package ui is the terminal host of the galaxy: a bubbletea program that
// steps the session on a timer, routes mouse gestures to it and shows the
// ingredient details next to the canvas.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/foodgalaxy/internal/datasource"
	"github.com/vanderheijden86/foodgalaxy/pkg/config"
	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/export"
	"github.com/vanderheijden86/foodgalaxy/pkg/force"
	"github.com/vanderheijden86/foodgalaxy/pkg/galaxy"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
	"github.com/vanderheijden86/foodgalaxy/pkg/watcher"
)

// ErrNoDataset is returned when the model is created without records.
var ErrNoDataset = errors.New("dataset has no ingredients")

const (
	headerRows  = 1
	footerRows  = 1
	panStep     = 40.0
	zoomStep    = 1.25
	wheelDelta  = 100.0
	reloadLimit = 30 * time.Second
)

// FrameMsg advances the simulation by one tick.
type FrameMsg time.Time

// DatasetChangedMsg is sent when the watched dataset file changed.
type DatasetChangedMsg struct{}

// DatasetReloadedMsg carries the result of a reload.
type DatasetReloadedMsg struct {
	Dataset *model.Dataset
	Err     error
}

// noticeExpiredMsg only forces a redraw once a notice timed out.
type noticeExpiredMsg struct{}

// Options configures the terminal host.
type Options struct {
	Dataset *model.Dataset
	Config  config.Config
	// Save persists config changes such as favorites. Optional.
	Save func(config.Config) error
	// Watcher and Reload enable live dataset reloads. Both optional.
	Watcher *watcher.Watcher
	Reload  func(context.Context) (*model.Dataset, error)
	Seed    int64
	Theme   *Theme
}

// Model is the bubbletea model of the galaxy view.
type Model struct {
	cfg     config.Config
	save    func(config.Config) error
	watcher *watcher.Watcher
	reload  func(context.Context) (*model.Dataset, error)

	theme   Theme
	session *galaxy.Session
	nav     *galaxy.Navigator
	canvas  *Canvas
	details *DetailPanel
	search  SearchBox

	width, height int
	interval      time.Duration
	ticking       bool
	showPanel     bool
	focusID       string
	status        string

	clipboardWrite func(string) error
}

// New creates the model centered on the configured default center.
func New(opts Options) (Model, error) {
	ds := opts.Dataset
	if ds.Len() == 0 {
		return Model{}, ErrNoDataset
	}
	cfg := opts.Config
	center, _ := ds.DefaultCenter(cfg.DefaultCenter)

	var theme Theme
	if opts.Theme != nil {
		theme = *opts.Theme
	} else {
		theme = DefaultTheme(lipgloss.DefaultRenderer(), cfg.UI.Theme)
	}

	sessionOpts := []galaxy.Option{
		galaxy.WithFilters(cfg.Filters),
		galaxy.WithParams(cfg.Physics),
		galaxy.WithViewport(cfg.ViewportOptions()...),
	}
	if opts.Seed != 0 {
		sessionOpts = append(sessionOpts, galaxy.WithSeed(opts.Seed))
	}

	m := Model{
		cfg:            cfg,
		save:           opts.Save,
		watcher:        opts.Watcher,
		reload:         opts.Reload,
		theme:          theme,
		canvas:         NewCanvas(80, 22),
		details:        NewDetailPanel(cfg.UI.Theme, SidePanelWidth-4),
		search:         NewSearchBox(),
		width:          80,
		height:         24,
		interval:       cfg.UI.TickInterval,
		ticking:        true, // Init schedules the first frame
		showPanel:      true,
		clipboardWrite: clipboard.WriteAll,
	}
	if m.interval <= 0 {
		m.interval = time.Second / 30
	}
	w, h := m.canvas.PixelSize()
	sessionOpts = append(sessionOpts, galaxy.WithSize(w, h))
	m.session = galaxy.New(ds, *center, sessionOpts...)
	m.nav = galaxy.NewNavigator(m.session, ds)
	m.layout()
	m.paint(m.session.Current())
	return m, nil
}

// Run starts the program on the alternate screen with mouse motion events.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// WatchFileCmd returns a command that waits for dataset changes.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return DatasetChangedMsg{}
	}
}

func reloadCmd(fn func(context.Context) (*model.Dataset, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reloadLimit)
		defer cancel()
		ds, err := fn(ctx)
		return DatasetReloadedMsg{Dataset: ds, Err: err}
	}
}

func noticeCmd() tea.Cmd {
	return tea.Tick(galaxy.NoticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{}
	})
}

// kick schedules a frame unless one is already pending.
func (m *Model) kick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return frameCmd(m.interval)
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameCmd(m.interval)}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// layout sizes the canvas and the session to the terminal.
func (m *Model) layout() {
	cols := m.width
	if m.panelVisible() {
		cols -= SidePanelWidth
	}
	rows := m.height - headerRows - footerRows
	m.canvas.Resize(cols, rows)
	w, h := m.canvas.PixelSize()
	m.session.Resize(w, h)
	m.details.SetWidth(SidePanelWidth - 4)
}

func (m Model) panelVisible() bool {
	return m.showPanel && m.width >= SplitViewMinWidth
}

// Update repaints the canvas from the frames the session delivers. A tick
// whose positions went non-finite delivers none and the canvas keeps the
// previous frame. Other messages repaint the present state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(FrameMsg); ok {
		m.ticking = false
		m.session.Frame(m.paint)
		if sim := m.session.Simulation(); sim != nil && sim.State() == force.Running {
			return m, m.kick()
		}
		return m, nil
	}
	next, cmd := m.update(msg)
	if nm, ok := next.(Model); ok {
		nm.paint(nm.session.Current())
	}
	return next, cmd
}

// paint rasterizes f into the canvas.
func (m Model) paint(f galaxy.Frame) {
	if m.focusID != "" {
		f.Highlighted = m.focusID
	}
	m.canvas.Draw(f)
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, m.kick()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.search.Active() {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)

	case DatasetChangedMsg:
		var cmds []tea.Cmd
		if m.reload != nil {
			cmds = append(cmds, reloadCmd(m.reload))
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case DatasetReloadedMsg:
		return m.applyReload(msg)

	case noticeExpiredMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	cols, rows := m.canvas.Size()
	col, row := msg.X, msg.Y-headerRows
	inside := col >= 0 && col < cols && row >= 0 && row < rows
	p := ToPixel(col, row)
	cb := m.nav.Callbacks()
	center := m.session.Center().Name

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		m.session.Wheel(p, -wheelDelta)
	case msg.Button == tea.MouseButtonWheelDown && inside:
		m.session.Wheel(p, wheelDelta)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
		m.session.PointerDown(p)
	case msg.Action == tea.MouseActionMotion:
		m.session.PointerMove(p, cb)
	case msg.Action == tea.MouseActionRelease:
		m.session.PointerUp(p, cb)
	default:
		return m, nil
	}

	var cmds []tea.Cmd
	if m.session.Center().Name != center {
		m.focusID = ""
	}
	if _, ok := m.nav.Notice(); ok && msg.Action == tea.MouseActionRelease {
		cmds = append(cmds, noticeCmd())
	}
	cmds = append(cmds, m.kick())
	return m, tea.Batch(cmds...)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Close()
		return m, nil
	case "enter":
		ing, ok := m.search.Selected()
		m.search.Close()
		if !ok {
			return m, nil
		}
		m.nav.Select(ing)
		m.focusID = ""
		return m, m.kick()
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg, m.nav.Dataset())
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.session.Viewport()
	w, h := m.canvas.PixelSize()
	mid := layout.Point{X: w / 2, Y: h / 2}

	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		return m, m.search.Open()
	case "1", "2", "3", "4", "5":
		c := model.RelationCategories[key[0]-'1']
		m.nav.ToggleFilter(c)
		m.focusID = ""
	case "tab", "shift+tab":
		m.cycleFocus(key == "tab")
		return m, nil
	case "enter":
		if !m.nav.NavigatePreview() {
			if _, ok := m.nav.Notice(); ok {
				return m, noticeCmd()
			}
			return m, nil
		}
		m.focusID = ""
		if _, ok := m.nav.Notice(); ok {
			return m, tea.Batch(noticeCmd(), m.kick())
		}
	case "esc":
		m.nav.Hover(nil, "")
		m.focusID = ""
		return m, nil
	case "r":
		view.Reset()
		return m, nil
	case "+", "=":
		view.ZoomAt(mid, zoomStep)
		return m, nil
	case "-", "_":
		view.ZoomAt(mid, 1/zoomStep)
		return m, nil
	case "left", "h":
		view.PanBy(panStep, 0)
		return m, nil
	case "right", "l":
		view.PanBy(-panStep, 0)
		return m, nil
	case "up", "k":
		view.PanBy(0, panStep)
		return m, nil
	case "down", "j":
		view.PanBy(0, -panStep)
		return m, nil
	case "R":
		if sim := m.session.Simulation(); sim != nil {
			sim.SetAlpha(1)
			sim.Restart()
		}
	case "p":
		m.showPanel = !m.showPanel
		m.layout()
	case "c":
		name := m.nav.Panel().Name
		if err := m.clipboardWrite(name); err != nil {
			m.status = fmt.Sprintf("Presse-papiers indisponible : %v", err)
		} else {
			m.status = fmt.Sprintf("📋 %s copié", name)
		}
		return m, nil
	case "f":
		m.toggleFavorite()
		return m, nil
	case "s":
		m.saveSnapshot()
		return m, nil
	default:
		return m, nil
	}
	return m, m.kick()
}

// cycleFocus moves the keyboard preview to the next or previous satellite.
func (m *Model) cycleFocus(forward bool) {
	sats := m.session.Graph().Satellites()
	if len(sats) == 0 {
		return
	}
	idx := -1
	for i, n := range sats {
		if n.ID == m.focusID {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && forward:
		idx = 0
	case idx < 0:
		idx = len(sats) - 1
	case forward:
		idx = (idx + 1) % len(sats)
	default:
		idx = (idx - 1 + len(sats)) % len(sats)
	}
	n := sats[idx]
	m.focusID = n.ID
	m.nav.Hover(n.Data, n.ID)
}

func (m *Model) toggleFavorite() {
	name := m.session.Center().Name
	m.cfg.ToggleFavorite(name)
	if m.cfg.IsFavorite(name) {
		m.status = fmt.Sprintf("★ %s ajouté aux favoris", name)
	} else {
		m.status = fmt.Sprintf("☆ %s retiré des favoris", name)
	}
	if m.save == nil {
		return
	}
	if err := m.save(m.cfg); err != nil {
		m.status = fmt.Sprintf("Favoris non enregistrés : %v", err)
	}
}

func (m *Model) saveSnapshot() {
	w, h := m.canvas.PixelSize()
	path := filepath.Join(config.CacheDir(), "snapshots", strings.ToLower(m.session.Center().Name)+".svg")
	err := export.SaveSnapshot(export.SnapshotOptions{
		Path:   path,
		Width:  int(w),
		Height: int(h),
		Frame:  m.session.Current(),
	})
	if err != nil {
		m.status = fmt.Sprintf("Capture impossible : %v", err)
		return
	}
	m.status = "Capture enregistrée : " + path
}

func (m Model) applyReload(msg DatasetReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		debug.Log("ui: reload failed: %v", msg.Err)
		m.status = fmt.Sprintf("Rechargement impossible : %v", msg.Err)
		return m, nil
	}
	diff := datasource.Diff(m.nav.Dataset(), msg.Dataset)
	if err := m.nav.Reload(msg.Dataset); err != nil {
		m.status = fmt.Sprintf("Rechargement impossible : %v", err)
		return m, nil
	}
	m.details.Invalidate()
	m.focusID = ""
	m.status = "Données rechargées (" + diff.Summary() + ")"
	return m, m.kick()
}

func (m Model) View() string {
	header := m.renderHeader()

	body := m.canvas.Render(m.theme)

	if m.panelVisible() {
		_, rows := m.canvas.Size()
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderPanel(rows))
	} else if m.search.Active() {
		body = m.search.View(m.theme, m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())
}

func (m Model) renderHeader() string {
	center := m.session.Center().Name
	title := "✦ " + center
	if m.cfg.IsFavorite(center) {
		title += " ★"
	}
	parts := []string{m.theme.Header.Render(title)}
	filters := m.session.Filters()
	for i, c := range model.RelationCategories {
		parts = append(parts, RenderFilterChip(m.theme, i+1, c, filters.Enabled(c)))
	}
	return clip(strings.Join(parts, "  "), m.width)
}

func (m Model) renderPanel(rows int) string {
	var content string
	if m.search.Active() {
		content = m.search.View(m.theme, SidePanelWidth-4)
	} else {
		panel := m.nav.Panel()
		content = m.details.Render(panel, m.nav.Dataset())
		if panel.Data != nil {
			if badge := RenderTypeBadge(m.theme, panel.Data.Type); badge != "" {
				content = badge + "\n" + content
			}
		}
	}
	style := m.theme.Panel.
		Width(SidePanelWidth - 2).
		Height(rows - 2).
		MaxHeight(rows)
	return style.Render(content)
}

func (m Model) renderFooter() string {
	if notice, ok := m.nav.Notice(); ok {
		return clip(m.theme.Notice.Render("⚠ "+notice), m.width)
	}
	if m.search.Active() && !m.panelVisible() {
		return ""
	}
	if m.status != "" {
		return clip(m.theme.Status.Render(m.status), m.width)
	}
	hints := RenderKeyHint(m.theme,
		"/", "chercher",
		"1-5", "filtres",
		"tab", "parcourir",
		"⏎", "centrer",
		"+/-", "zoom",
		"c", "copier",
		"f", "favori",
		"q", "quitter",
	)
	return clip(hints, m.width)
}

// clip truncates a possibly styled line to width cells.
func clip(line string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// Session exposes the underlying session, mainly for hosts and tests.
func (m Model) Session() *galaxy.Session { return m.session }

// Navigator exposes the navigator.
func (m Model) Navigator() *galaxy.Navigator { return m.nav }

// Status returns the last status line.
func (m Model) Status() string { return m.status }

// Config returns the possibly modified config.
func (m Model) Config() config.Config { return m.cfg }
