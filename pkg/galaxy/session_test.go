package galaxy

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/vanderheijden86/foodgalaxy/pkg/force"
	"github.com/vanderheijden86/foodgalaxy/pkg/interaction"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
	"github.com/vanderheijden86/foodgalaxy/pkg/viewport"
)

func fixture() *model.Dataset {
	abricot := model.Ingredient{Name: "Abricot", Type: "Fruit"}
	abricot.Associations.Set(model.CategorySavory, []string{"Porc"})
	abricot.Associations.Set(model.CategorySweet, []string{"Vanille"})
	vanille := model.Ingredient{Name: "Vanille", Type: "Épice"}
	vanille.Associations.Set(model.CategorySweet, []string{"Abricot", "Fraise"})
	return model.NewDataset([]model.Ingredient{abricot, vanille})
}

func newSession(t *testing.T, opts ...Option) (*Session, *model.Dataset) {
	t.Helper()
	ds := fixture()
	center, ok := ds.Lookup("Abricot")
	if !ok {
		t.Fatal("fixture missing Abricot")
	}
	opts = append([]Option{WithSeed(1), WithSize(800, 600)}, opts...)
	return New(ds, *center, opts...), ds
}

func TestTransformSurvivesRebuild(t *testing.T) {
	s, ds := newSession(t)
	want := viewport.Transform{X: 100, Y: 50, K: 2}
	s.Viewport().Set(want)

	vanille, _ := ds.Lookup("Vanille")
	s.SetCenter(*vanille)

	var first *Frame
	s.Frame(func(f Frame) {
		if first == nil {
			first = &f
		}
	})
	if first == nil {
		t.Fatal("no frame rendered after rebuild")
	}
	if first.Transform != want {
		t.Errorf("first frame transform = %v, want %v", first.Transform, want)
	}
	if first.Nodes[0].ID != "Vanille" {
		t.Errorf("first frame still shows %q", first.Nodes[0].ID)
	}
}

func TestRebuildDisposesPreviousSimulation(t *testing.T) {
	s, _ := newSession(t)
	old := s.Simulation()

	s.SetFilters(model.NoFilters())
	if old.State() != force.Disposed {
		t.Errorf("old simulation state = %v, want disposed", old.State())
	}
	if s.Simulation() == old {
		t.Error("session kept the old simulation")
	}
	if got := s.Graph().IDs(); !reflect.DeepEqual(got, []string{"Abricot"}) {
		t.Errorf("all filters off gave %v", got)
	}

	rebuilds := s.Rebuilds()
	s.SetFilters(model.NoFilters())
	s.Resize(800, 600)
	s.Resize(0, 10)
	if s.Rebuilds() != rebuilds {
		t.Error("no-op changes should not rebuild")
	}
}

func TestResizeRecentersPin(t *testing.T) {
	s, _ := newSession(t)
	s.Resize(1000, 400)
	c := s.Graph().Center()
	if c.Pin == nil || c.Pin.X != 500 || c.Pin.Y != 200 {
		t.Errorf("center pin after resize = %+v, want (500, 200)", c.Pin)
	}
}

func TestSettleStopsFrames(t *testing.T) {
	s, _ := newSession(t)
	if n := s.Settle(10_000); n == 0 {
		t.Fatal("Settle ran no ticks")
	}
	if s.Frame(func(Frame) { t.Error("settled session rendered") }) {
		t.Error("Frame ticked a settled session")
	}
	if !s.Current().Settled {
		t.Error("Current should report settled")
	}
}

func TestFrameCloneKeepsPositions(t *testing.T) {
	s, _ := newSession(t)
	f := s.Current().Clone()
	live := s.Graph().Node("Vanille")
	x := live.X

	s.Settle(10_000)
	if live.X == x {
		t.Skip("Vanille did not move while settling")
	}
	for _, n := range f.Nodes {
		if n == live {
			t.Fatal("clone shares node pointers with the session")
		}
		if n.ID == "Vanille" && n.X != x {
			t.Errorf("cloned Vanille moved from %v to %v", x, n.X)
		}
	}
}

func TestPointerClickNavigates(t *testing.T) {
	s, ds := newSession(t)
	s.Settle(10_000)
	nav := NewNavigator(s, ds)

	vanille := s.Graph().Node("Vanille")
	at := s.Viewport().Transform().Apply(layout.Point{X: vanille.X, Y: vanille.Y})

	s.PointerDown(at)
	if s.Simulation().State() != force.Running {
		t.Error("drag start should restart the simulation")
	}
	s.PointerUp(layout.Point{X: at.X + 2, Y: at.Y}, nav.Callbacks())

	if s.Center().Name != "Vanille" {
		t.Errorf("center = %q after clicking Vanille", s.Center().Name)
	}
	if p := nav.Panel(); !p.IsCenter || p.Name != "Vanille" {
		t.Errorf("panel = %+v, want the new center", p)
	}
}

func TestPointerDragDoesNotNavigate(t *testing.T) {
	s, ds := newSession(t)
	s.Settle(10_000)
	nav := NewNavigator(s, ds)

	vanille := s.Graph().Node("Vanille")
	at := layout.Point{X: vanille.X, Y: vanille.Y}
	s.PointerDown(at)
	s.PointerMove(layout.Point{X: at.X + 50, Y: at.Y}, nav.Callbacks())
	if vanille.Pin == nil || math.Abs(vanille.Pin.X-(at.X+50)) > 1e-9 {
		t.Errorf("dragged node pin = %+v", vanille.Pin)
	}
	s.PointerUp(layout.Point{X: at.X + 50, Y: at.Y}, nav.Callbacks())

	if s.Center().Name != "Abricot" {
		t.Errorf("50px drag navigated to %q", s.Center().Name)
	}
	if vanille.Pin != nil {
		t.Error("satellite still pinned after drag")
	}
}

func TestPanAndBackgroundClick(t *testing.T) {
	s, ds := newSession(t)
	nav := NewNavigator(s, ds)
	nav.Hover(nil, "Porc")

	empty := layout.Point{X: 2, Y: 2}
	if s.NodeAt(empty) != nil {
		t.Fatal("expected empty space in the corner")
	}

	s.PointerDown(empty)
	s.PointerMove(layout.Point{X: 42, Y: 12}, nav.Callbacks())
	s.PointerUp(layout.Point{X: 42, Y: 12}, nav.Callbacks())
	if tr := s.Viewport().Transform(); tr.X != 40 || tr.Y != 10 {
		t.Errorf("pan gave %v", tr)
	}
	if p := nav.Panel(); p.Name != "Porc" {
		t.Error("a real pan must not clear the preview")
	}

	s.PointerDown(empty)
	s.PointerUp(layout.Point{X: 3, Y: 2}, nav.Callbacks())
	if p := nav.Panel(); !p.IsCenter {
		t.Errorf("background click should clear the preview, panel = %+v", p)
	}
}

func screenOf(s *Session, id string) layout.Point {
	n := s.Graph().Node(id)
	return s.Viewport().Transform().Apply(layout.Point{X: n.X, Y: n.Y})
}

func click(s *Session, at layout.Point, cb interaction.Callbacks) {
	s.PointerDown(at)
	s.PointerUp(layout.Point{X: at.X + 1, Y: at.Y}, cb)
}

func TestBackgroundClickAfterCenterClick(t *testing.T) {
	s, ds := newSession(t)
	s.Settle(10_000)
	nav := NewNavigator(s, ds)
	nav.Hover(nil, "Porc")

	click(s, screenOf(s, "Abricot"), nav.Callbacks())
	if p := nav.Panel(); p.Name != "Porc" {
		t.Fatalf("center click changed the panel to %+v", p)
	}

	empty := layout.Point{X: 2, Y: 2}
	if s.NodeAt(empty) != nil {
		t.Fatal("expected empty space in the corner")
	}
	click(s, empty, nav.Callbacks())
	if p := nav.Panel(); !p.IsCenter || p.Name != "Abricot" {
		t.Errorf("background click after a center click left panel %+v", p)
	}
}

func TestBackgroundClickAfterTerminalClick(t *testing.T) {
	s, ds := newSession(t)
	s.Settle(10_000)
	nav := NewNavigator(s, ds)

	click(s, screenOf(s, "Porc"), nav.Callbacks())
	if s.Center().Name != "Abricot" {
		t.Fatalf("terminal click recentered on %q", s.Center().Name)
	}
	if _, ok := nav.Notice(); !ok {
		t.Error("terminal click should raise the terminus notice")
	}

	s.PointerMove(screenOf(s, "Vanille"), nav.Callbacks())
	if p := nav.Panel(); p.Name != "Vanille" {
		t.Fatalf("hover gave panel %+v", p)
	}
	s.PointerMove(layout.Point{X: 2, Y: 2}, nav.Callbacks())

	click(s, layout.Point{X: 2, Y: 2}, nav.Callbacks())
	if p := nav.Panel(); !p.IsCenter {
		t.Errorf("background click after a terminal click left panel %+v", p)
	}
}

func TestHoverThroughPointer(t *testing.T) {
	s, ds := newSession(t)
	s.Settle(10_000)
	nav := NewNavigator(s, ds)

	porc := s.Graph().Node("Porc")
	s.PointerMove(layout.Point{X: porc.X, Y: porc.Y}, nav.Callbacks())
	if s.Current().Highlighted != "Porc" {
		t.Errorf("highlighted = %q", s.Current().Highlighted)
	}
	p := nav.Panel()
	if p.Name != "Porc" || p.Data != nil || p.IsCenter {
		t.Errorf("panel = %+v, want terminal Porc", p)
	}

	s.PointerMove(layout.Point{X: 1, Y: 1}, nav.Callbacks())
	if s.Current().Highlighted != "" {
		t.Error("leaving the node should clear the highlight")
	}
	if nav.Panel().Name != "Porc" {
		t.Error("leaving the node should keep the preview")
	}
}

func TestWheelZoomsAroundPointer(t *testing.T) {
	s, _ := newSession(t)
	s.Wheel(layout.Point{X: 400, Y: 300}, -500)
	tr := s.Viewport().Transform()
	if tr.K != 2 {
		t.Errorf("K = %v, want 2", tr.K)
	}
	if w := tr.Invert(layout.Point{X: 400, Y: 300}); w.X != 400 || w.Y != 300 {
		t.Errorf("focus drifted to %+v", w)
	}
}

func TestNavigatorTerminusNotice(t *testing.T) {
	s, ds := newSession(t)
	nav := NewNavigator(s, ds)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	nav.now = func() time.Time { return now }

	if nav.Click("Porc") {
		t.Error("Porc has no record and should not recenter")
	}
	msg, ok := nav.Notice()
	if !ok || msg != `L'ingrédient "Porc" est un terminus. Pas d'autres associations disponibles.` {
		t.Errorf("notice = %q, %v", msg, ok)
	}
	if s.Center().Name != "Abricot" {
		t.Errorf("center changed to %q", s.Center().Name)
	}

	now = now.Add(NoticeTTL)
	if _, ok := nav.Notice(); ok {
		t.Error("notice should expire")
	}

	if err := nav.Navigate("Porc"); !errors.Is(err, ErrUnknownIngredient) {
		t.Errorf("Navigate error = %v", err)
	}
}

func TestNavigatorHoverDedupe(t *testing.T) {
	s, ds := newSession(t)
	nav := NewNavigator(s, ds)
	first := &model.Ingredient{Name: "Vanille"}
	nav.Hover(first, "Vanille")
	nav.Hover(&model.Ingredient{Name: "Vanille", Type: "autre"}, "Vanille")
	if nav.Panel().Data != first {
		t.Error("hovering the same name should keep the first preview")
	}

	if !nav.NavigatePreview() || s.Center().Name != "Vanille" {
		t.Error("navigating the preview should recenter on it")
	}
	if nav.NavigatePreview() {
		t.Error("preview should be cleared after navigation")
	}
}

func TestNavigatorToggleFilter(t *testing.T) {
	s, ds := newSession(t)
	nav := NewNavigator(s, ds)
	nav.ToggleFilter(model.CategorySavory)
	if s.Graph().Node("Porc") != nil {
		t.Error("Porc should disappear with savory off")
	}
	nav.ToggleFilter(model.CategorySavory)
	if s.Graph().Node("Porc") == nil {
		t.Error("Porc should come back")
	}
}

func TestCallbacksReachNavigator(t *testing.T) {
	s, ds := newSession(t)
	nav := NewNavigator(s, ds)
	var cb interaction.Callbacks = nav.Callbacks()
	cb.OnNodeClick("Vanille")
	if s.Center().Name != "Vanille" {
		t.Errorf("center = %q", s.Center().Name)
	}
}

func TestNavigatorReload(t *testing.T) {
	s, ds := newSession(t)
	nav := NewNavigator(s, ds)
	s.Viewport().Set(viewport.Transform{X: 10, Y: 20, K: 1.5})

	porc := model.Ingredient{Name: "Porc", Type: "Viande"}
	abricot, _ := ds.Lookup("Abricot")
	next := model.NewDataset([]model.Ingredient{*abricot, porc})
	if err := nav.Reload(next); err != nil {
		t.Fatal(err)
	}
	if s.Center().Name != "Abricot" {
		t.Errorf("center should survive reload, got %q", s.Center().Name)
	}
	if n := s.Graph().Node("Porc"); n == nil || n.Data == nil {
		t.Error("Porc should now resolve to a record")
	}
	if got := s.Viewport().Transform(); got != (viewport.Transform{X: 10, Y: 20, K: 1.5}) {
		t.Errorf("transform lost on reload: %v", got)
	}

	if err := nav.Reload(model.NewDataset([]model.Ingredient{porc})); err != nil {
		t.Fatal(err)
	}
	if s.Center().Name != "Porc" {
		t.Errorf("missing center should fall back to the first record, got %q", s.Center().Name)
	}
	if err := nav.Reload(model.NewDataset(nil)); !errors.Is(err, ErrUnknownIngredient) {
		t.Errorf("empty dataset should fail, got %v", err)
	}
	if nav.Dataset().Len() != 1 {
		t.Error("failed reload must keep the previous dataset")
	}
}
