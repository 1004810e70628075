package window

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/mattn/go-runewidth"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/foodgalaxy/pkg/config"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
	"github.com/vanderheijden86/foodgalaxy/pkg/viewport"
)

func windowDataset() *model.Dataset {
	abricot := model.Ingredient{Name: "Abricot", Type: "Fruit"}
	abricot.Associations.Set(model.CategorySavory, []string{"Porc"})
	abricot.Associations.Set(model.CategorySweet, []string{"Vanille"})
	return model.NewDataset([]model.Ingredient{abricot, {Name: "Vanille"}})
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Window.Nebula = false
	g, err := New(Options{Dataset: windowDataset(), Config: cfg, Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewRequiresDataset(t *testing.T) {
	if _, err := New(Options{Dataset: model.NewDataset(nil)}); !errors.Is(err, ErrNoDataset) {
		t.Fatalf("expected ErrNoDataset, got %v", err)
	}
}

func TestLayoutResizesSession(t *testing.T) {
	g := newTestGame(t)
	if w, h := g.Layout(1000, 700); w != 1000 || h != 700 {
		t.Fatalf("Layout = %dx%d", w, h)
	}
	if w, h := g.Session().Size(); w != 1000-panelWidth || h != 700 {
		t.Errorf("session size = %vx%v", w, h)
	}
}

func TestHandleKey(t *testing.T) {
	g := newTestGame(t)
	if err := g.HandleKey(ebiten.KeyDigit1); err != nil {
		t.Fatal(err)
	}
	if g.Session().Graph().Node("Porc") != nil {
		t.Error("digit 1 should hide the savory category")
	}

	g.HandleKey(ebiten.KeyEqual)
	if k := g.Session().Viewport().Transform().K; k <= 1 {
		t.Errorf("zoom in left k = %v", k)
	}
	g.HandleKey(ebiten.KeyR)
	if tr := g.Session().Viewport().Transform(); tr != viewport.Identity {
		t.Errorf("reset left %v", tr)
	}

	g.Navigator().Hover(nil, "Vanille")
	g.HandleKey(ebiten.KeyEnter)
	if g.Session().Center().Name != "Vanille" {
		t.Errorf("enter should follow the preview, center = %q", g.Session().Center().Name)
	}

	if err := g.HandleKey(ebiten.KeyQ); !errors.Is(err, ebiten.Termination) {
		t.Errorf("q should terminate, got %v", err)
	}
}

func TestApplyReload(t *testing.T) {
	g := newTestGame(t)
	items := append(windowDataset().All(), model.Ingredient{Name: "Porc"})
	g.ApplyReload(model.NewDataset(items), nil)
	if !strings.Contains(g.Status(), "+1") {
		t.Errorf("status = %q", g.Status())
	}
	g.ApplyReload(nil, errors.New("boom"))
	if !strings.Contains(g.Status(), "boom") {
		t.Errorf("status = %q", g.Status())
	}
	g.ApplyReload(model.NewDataset(nil), nil)
	if !strings.Contains(g.Status(), "impossible") {
		t.Errorf("empty reload should fail, status = %q", g.Status())
	}
}

func TestBackgroundFollowsPan(t *testing.T) {
	g := newTestGame(t)
	g.Session().Viewport().PanBy(30, -10)
	if g.bg.OffsetX != 30 || g.bg.OffsetY != -10 {
		t.Errorf("background observer not called: %+v", g.bg)
	}
}

func TestNonFiniteTickKeepsFrame(t *testing.T) {
	g := newTestGame(t)
	g.step()
	vanille := g.Session().Graph().Node("Vanille")
	var before layout.Node
	for _, n := range g.frame.Nodes {
		if n.ID == "Vanille" {
			before = *n
		}
	}
	if before.ID == "" {
		t.Fatal("Vanille missing from the first frame")
	}

	vanille.X = math.NaN()
	g.step()
	if !vanille.Finite() {
		t.Fatal("the tick should have healed the node")
	}
	for _, n := range g.frame.Nodes {
		if n.ID == "Vanille" && (n.X != before.X || n.Y != before.Y) {
			t.Errorf("non-finite tick changed the drawn frame: (%v, %v) -> (%v, %v)", before.X, before.Y, n.X, n.Y)
		}
	}

	g.Session().Settle(10_000)
	g.step()
	for _, n := range g.frame.Nodes {
		if n.ID == "Vanille" && (n.X != vanille.X || n.Y != vanille.Y) {
			t.Error("a settled galaxy should draw its present state")
		}
	}
}

func TestNebulaDeterministic(t *testing.T) {
	a, b := NewNebula(7), NewNebula(7)
	for _, p := range [][2]float64{{0, 0}, {13, 200}, {511, 42}} {
		if a.Value(p[0], p[1]) != b.Value(p[0], p[1]) {
			t.Errorf("seed 7 differs at %v", p)
		}
	}
	tile := a.Tile(32)
	if tile.Bounds().Dx() != 32 || tile.Bounds().Dy() != 32 {
		t.Fatalf("tile bounds %v", tile.Bounds())
	}
	// mirrored edges join
	if tile.RGBAAt(1, 5) != tile.RGBAAt(31, 5) {
		t.Error("tile is not mirrored horizontally")
	}
}

func TestShade(t *testing.T) {
	if Shade(0) != spaceColor || Shade(0.5) != spaceColor {
		t.Error("low noise should be plain space")
	}
	hi := Shade(1)
	if hi.B <= spaceColor.B || hi.A != 0xff {
		t.Errorf("Shade(1) = %v", hi)
	}
	if Shade(7) != hi {
		t.Error("values above 1 should clamp")
	}
}

func TestParallaxOffset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bg := viewport.Background{
			OffsetX: rapid.Float64Range(-1e5, 1e5).Draw(t, "x"),
			OffsetY: rapid.Float64Range(-1e5, 1e5).Draw(t, "y"),
		}
		x, y := ParallaxOffset(bg, ParallaxFactor, NebulaTile)
		for _, v := range []float64{x, y} {
			if v > 0 || v <= -NebulaTile {
				t.Fatalf("offset %v outside (-tile, 0]", v)
			}
		}
		rx := math.Mod(bg.OffsetX*ParallaxFactor-x, NebulaTile)
		if math.Abs(rx) > 1e-6 && math.Abs(math.Abs(rx)-NebulaTile) > 1e-6 {
			t.Fatalf("x offset %v is not congruent to %v", x, bg.OffsetX*ParallaxFactor)
		}
	})
}

func TestGridLines(t *testing.T) {
	tests := []struct {
		name                 string
		offset, cell, extent float64
		want                 []float64
	}{
		{"aligned", 0, 40, 100, []float64{0, 40, 80}},
		{"positive offset", 50, 40, 100, []float64{10, 50, 90}},
		{"negative offset", -30, 40, 100, []float64{10, 50, 90}},
		{"too small", 0, 4, 100, nil},
		{"empty", 0, 40, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GridLines(tt.offset, tt.cell, tt.extent)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("line %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDashedCircle(t *testing.T) {
	segs := DashedCircle(100, 100, 26, 3)
	if len(segs) != int(math.Floor(math.Pi*26/3)) {
		t.Errorf("got %d dashes", len(segs))
	}
	for _, s := range segs {
		for _, p := range [][2]float64{{s.X0, s.Y0}, {s.X1, s.Y1}} {
			if d := math.Hypot(p[0]-100, p[1]-100); math.Abs(d-26) > 1e-9 {
				t.Fatalf("dash endpoint off the circle: %v", d)
			}
		}
	}
	if DashedCircle(0, 0, 0, 3) != nil {
		t.Error("zero radius should give no dashes")
	}
}

func TestNodeColor(t *testing.T) {
	n := &layout.Node{Color: "#ec4899", Category: model.CategorySweet}
	if c := NodeColor(n); c.R != 0xec || c.G != 0x48 || c.B != 0x99 {
		t.Errorf("NodeColor = %v", c)
	}
	n.Color = "pink"
	if c := NodeColor(n); c.R != 0xec {
		t.Errorf("fallback should use the category colour, got %v", c)
	}
	if c := WithAlpha(NodeColor(n), 0); c.R != 0 || c.A != 0 {
		t.Errorf("WithAlpha 0 = %v", c)
	}
}

func TestWrapText(t *testing.T) {
	lines := WrapText("Fruit à noyau très parfumé, idéal rôti au four", 12)
	for _, l := range lines {
		if runewidth.StringWidth(l) > 12 {
			t.Errorf("line %q wider than 12", l)
		}
	}
	if got := strings.Join(lines, " "); got != "Fruit à noyau très parfumé, idéal rôti au four" {
		t.Errorf("words lost: %q", got)
	}
	if got := WrapText("a\nb", 40); len(got) != 2 {
		t.Errorf("newline should split, got %v", got)
	}
}
