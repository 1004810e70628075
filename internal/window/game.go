// Package window hosts the galaxy in a desktop window drawn with ebiten,
// over a perlin-noise nebula that drifts with the pan.
package window

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/foodgalaxy/internal/datasource"
	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/config"
	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/galaxy"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
	"github.com/vanderheijden86/foodgalaxy/pkg/viewport"
	"github.com/vanderheijden86/foodgalaxy/pkg/watcher"
)

// ErrNoDataset is returned when the window is opened without records.
var ErrNoDataset = errors.New("dataset has no ingredients")

const (
	panelWidth   = 300
	panelPadding = 12
	lineHeight   = 16
	wheelDelta   = 100.0
	reloadLimit  = 30 * time.Second
)

var (
	gridColor  = color.RGBA{0x33, 0x41, 0x55, 0x60}
	textColor  = color.RGBA{0xe2, 0xe8, 0xf0, 0xff}
	mutedColor = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	panelColor = color.RGBA{0x0f, 0x17, 0x2a, 0xe0}
	noticeBg   = color.RGBA{0x7f, 0x1d, 0x1d, 0xe0}
)

// Options configures the window host.
type Options struct {
	Dataset *model.Dataset
	Config  config.Config
	Seed    int64
	Title   string
	// Watcher and Reload enable live dataset reloads. Both optional.
	Watcher *watcher.Watcher
	Reload  func(context.Context) (*model.Dataset, error)
}

type reloadResult struct {
	ds  *model.Dataset
	err error
}

// Game implements ebiten.Game around one galaxy session.
type Game struct {
	session *galaxy.Session
	nav     *galaxy.Navigator
	cfg     config.Config
	frame   galaxy.Frame // what Draw paints

	nebula     *Nebula
	nebulaTile *ebiten.Image
	bg         viewport.Background
	face       text.Face

	width, height int
	lastCursor    layout.Point

	watcher  *watcher.Watcher
	reload   func(context.Context) (*model.Dataset, error)
	reloaded chan reloadResult
	status   string
}

// New creates a game centered on the configured default center.
func New(opts Options) (*Game, error) {
	ds := opts.Dataset
	if ds == nil || ds.Len() == 0 {
		return nil, ErrNoDataset
	}
	cfg := opts.Config
	center, _ := ds.DefaultCenter(cfg.DefaultCenter)

	g := &Game{
		cfg:      cfg,
		face:     text.NewGoXFace(basicfont.Face7x13),
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
		watcher:  opts.Watcher,
		reload:   opts.Reload,
		reloaded: make(chan reloadResult, 1),
	}
	if g.width <= 0 || g.height <= 0 {
		g.width, g.height = int(galaxy.DefaultWidth), int(galaxy.DefaultHeight)
	}
	if cfg.Window.Nebula {
		g.nebula = NewNebula(opts.Seed)
	}

	viewOpts := append(cfg.ViewportOptions(), viewport.WithBackgroundObserver(func(b viewport.Background) {
		g.bg = b
	}))
	sessionOpts := []galaxy.Option{
		galaxy.WithFilters(cfg.Filters),
		galaxy.WithParams(cfg.Physics),
		galaxy.WithViewport(viewOpts...),
		galaxy.WithSize(g.canvasSize()),
	}
	if opts.Seed != 0 {
		sessionOpts = append(sessionOpts, galaxy.WithSeed(opts.Seed))
	}
	g.session = galaxy.New(ds, *center, sessionOpts...)
	g.nav = galaxy.NewNavigator(g.session, ds)
	g.bg = g.session.Viewport().Background()
	g.frame = g.session.Current().Clone()
	return g, nil
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	g, err := New(opts)
	if err != nil {
		return err
	}
	title := opts.Title
	if title == "" {
		title = "Food Galaxy"
	}
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

func (g *Game) canvasSize() (w, h float64) {
	return float64(g.width - panelWidth), float64(g.height)
}

// Layout keeps the session in step with the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.session.Resize(g.canvasSize())
	}
	return outsideWidth, outsideHeight
}

// Update handles input and advances the simulation by one tick.
func (g *Game) Update() error {
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if err := g.HandleKey(k); err != nil {
			return err
		}
	}
	g.handleMouse()
	g.pollReload()
	g.step()
	return nil
}

// step ticks the session and keeps the frame it delivers. A non-finite tick
// delivers none and the previous frame stays on screen. Without a tick the
// present state is shown, so pans and hovers on a settled galaxy appear.
func (g *Game) step() {
	ticked := g.session.Frame(func(f galaxy.Frame) {
		g.frame = f.Clone()
	})
	if !ticked {
		g.frame = g.session.Current().Clone()
	}
}

// HandleKey applies one key press.
func (g *Game) HandleKey(k ebiten.Key) error {
	view := g.session.Viewport()
	w, h := g.canvasSize()
	mid := layout.Point{X: w / 2, Y: h / 2}

	switch k {
	case ebiten.KeyQ:
		return ebiten.Termination
	case ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5:
		g.nav.ToggleFilter(model.RelationCategories[k-ebiten.KeyDigit1])
	case ebiten.KeyEnter:
		g.nav.NavigatePreview()
	case ebiten.KeyEscape:
		g.nav.Hover(nil, "")
	case ebiten.KeyR:
		view.Reset()
	case ebiten.KeyEqual, ebiten.KeyNumpadAdd:
		view.ZoomAt(mid, 1.25)
	case ebiten.KeyMinus, ebiten.KeyNumpadSubtract:
		view.ZoomAt(mid, 0.8)
	case ebiten.KeyN:
		if g.nebula == nil {
			g.nebula = NewNebula(time.Now().UnixNano())
		} else {
			g.nebula, g.nebulaTile = nil, nil
		}
	}
	return nil
}

func (g *Game) handleMouse() {
	x, y := ebiten.CursorPosition()
	p := layout.Point{X: float64(x), Y: float64(y)}
	w, _ := g.canvasSize()
	inside := p.X < w
	cb := g.nav.Callbacks()

	if _, dy := ebiten.Wheel(); dy != 0 && inside {
		g.session.Wheel(p, -dy*wheelDelta)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && inside {
		g.session.PointerDown(p)
	}
	if p != g.lastCursor {
		g.session.PointerMove(p, cb)
		g.lastCursor = p
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.session.PointerUp(p, cb)
	}
}

// pollReload starts a reload when the watched file changed and applies a
// finished one. It never blocks the frame.
func (g *Game) pollReload() {
	if g.watcher != nil && g.reload != nil {
		select {
		case <-g.watcher.Changed():
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), reloadLimit)
				defer cancel()
				ds, err := g.reload(ctx)
				g.reloaded <- reloadResult{ds: ds, err: err}
			}()
		default:
		}
	}
	select {
	case r := <-g.reloaded:
		g.ApplyReload(r.ds, r.err)
	default:
	}
}

// ApplyReload swaps in a reloaded dataset, keeping the view.
func (g *Game) ApplyReload(ds *model.Dataset, err error) {
	if err == nil {
		diff := datasource.Diff(g.nav.Dataset(), ds)
		if err = g.nav.Reload(ds); err == nil {
			g.status = "Données rechargées (" + diff.Summary() + ")"
			return
		}
	}
	debug.Log("window: reload failed: %v", err)
	g.status = fmt.Sprintf("Rechargement impossible : %v", err)
}

// Draw paints the nebula, the grid, the galaxy and the side panel.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(spaceColor)
	g.drawNebula(screen)
	g.drawGrid(screen)

	g.drawGalaxy(screen, g.frame)
	g.drawPanel(screen)
	g.drawFooter(screen)
}

func (g *Game) drawNebula(screen *ebiten.Image) {
	if g.nebula == nil {
		return
	}
	if g.nebulaTile == nil {
		g.nebulaTile = ebiten.NewImageFromImage(g.nebula.Tile(NebulaTile))
	}
	ox, oy := ParallaxOffset(g.bg, ParallaxFactor, NebulaTile)
	for y := oy; y < float64(g.height); y += NebulaTile {
		for x := ox; x < float64(g.width); x += NebulaTile {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(x, y)
			screen.DrawImage(g.nebulaTile, op)
		}
	}
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	w, h := g.canvasSize()
	for _, x := range GridLines(g.bg.OffsetX, g.bg.CellSize, w) {
		vector.StrokeLine(screen, float32(x), 0, float32(x), float32(h), 1, gridColor, false)
	}
	for _, y := range GridLines(g.bg.OffsetY, g.bg.CellSize, h) {
		vector.StrokeLine(screen, 0, float32(y), float32(w), float32(y), 1, gridColor, false)
	}
}

func (g *Game) drawGalaxy(screen *ebiten.Image, f galaxy.Frame) {
	t := f.Transform
	pos := make(map[string]layout.Point, len(f.Nodes))
	for _, n := range f.Nodes {
		if n.Finite() {
			pos[n.ID] = t.Apply(layout.Point{X: n.X, Y: n.Y})
		}
	}

	for _, l := range f.Links {
		a, okA := pos[l.Source]
		b, okB := pos[l.Target]
		if !okA || !okB {
			continue
		}
		c, err := category.ParseHex(l.Color)
		if err != nil {
			c = category.RGBA(model.CategoryMain)
		}
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y),
			float32(1.5*t.K), WithAlpha(c, 0x99), true)
	}

	for _, n := range f.Nodes {
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		r := n.Radius * t.K
		c := NodeColor(n)
		if n.IsCenter() {
			for i := glowLayers; i >= 1; i-- {
				vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(r+float64(i)*6*t.K), WithAlpha(c, uint8(18*i)), true)
			}
		}
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(r), c, true)
		if n.ID == f.Highlighted {
			vector.StrokeCircle(screen, float32(p.X), float32(p.Y), float32(r+2), 2, textColor, true)
		}
		if !n.IsCenter() && !n.IsTerminal() {
			for _, s := range DashedCircle(p.X, p.Y, r+ringGap*t.K, ringDash*t.K) {
				vector.StrokeLine(screen, float32(s.X0), float32(s.Y0), float32(s.X1), float32(s.Y1), 1, WithAlpha(c, 0xb0), true)
			}
		}

		op := &text.DrawOptions{}
		op.PrimaryAlign = text.AlignCenter
		if n.IsCenter() {
			op.SecondaryAlign = text.AlignCenter
			op.GeoM.Translate(p.X, p.Y)
			op.ColorScale.ScaleWithColor(color.Black)
		} else {
			op.GeoM.Translate(p.X, p.Y+r+labelOffset*t.K)
			op.ColorScale.ScaleWithColor(textColor)
		}
		text.Draw(screen, n.ID, g.face, op)
	}
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	x0, _ := g.canvasSize()
	vector.DrawFilledRect(screen, float32(x0), 0, panelWidth, float32(g.height), panelColor, false)

	cols := (panelWidth - 2*panelPadding) / 7
	y := float64(panelPadding)
	line := func(s string, c color.Color) {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x0+panelPadding, y)
		op.ColorScale.ScaleWithColor(c)
		text.Draw(screen, s, g.face, op)
		y += lineHeight
	}

	panel := g.nav.Panel()
	line(panel.Name, textColor)
	if panel.Data == nil {
		line("Terminus", mutedColor)
		return
	}
	ing := panel.Data
	if ing.Type != "" {
		line(ing.Type, mutedColor)
	}
	if ing.FlavorFamily != "" {
		line(ing.FlavorFamily, mutedColor)
	}
	y += lineHeight / 2
	for _, l := range WrapText(ing.Description, cols) {
		line(l, textColor)
	}
	for _, c := range model.RelationCategories {
		names := ing.Associations.For(c)
		if len(names) == 0 || !g.session.Filters().Enabled(c) {
			continue
		}
		y += lineHeight / 2
		line(category.Label(c), category.RGBA(c))
		for _, l := range WrapText(strings.Join(names, ", "), cols) {
			line(l, mutedColor)
		}
	}
	if !panel.IsCenter {
		y += lineHeight / 2
		line("Entrée pour centrer", mutedColor)
	}
}

func (g *Game) drawFooter(screen *ebiten.Image) {
	msg, ok := g.nav.Notice()
	bg := noticeBg
	if !ok {
		if g.status == "" {
			return
		}
		msg, bg = g.status, panelColor
	}
	w, _ := g.canvasSize()
	vector.DrawFilledRect(screen, 0, float32(g.height-lineHeight-8), float32(w), lineHeight+8, bg, false)
	op := &text.DrawOptions{}
	op.GeoM.Translate(panelPadding, float64(g.height-lineHeight-4))
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, msg, g.face, op)
}

// Session exposes the session, mainly for tests.
func (g *Game) Session() *galaxy.Session { return g.session }

// Navigator exposes the navigator.
func (g *Game) Navigator() *galaxy.Navigator { return g.nav }

// Status returns the last status line.
func (g *Game) Status() string { return g.status }
