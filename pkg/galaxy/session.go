// Package galaxy ties the builder, the force simulation, the viewport and
// the interaction layer into one interactive view.
//
// A Session owns exactly one simulation at a time. Changing the center, the
// filters or the size rebuilds the graph from scratch: the old simulation is
// disposed before the new one ticks, and the current pan/zoom transform is
// re-applied to the new content before its first frame.
package galaxy

import (
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/force"
	"github.com/vanderheijden86/foodgalaxy/pkg/interaction"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/metrics"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
	"github.com/vanderheijden86/foodgalaxy/pkg/viewport"
)

const (
	DefaultWidth  = 1200.0
	DefaultHeight = 800.0
)

// Frame is what a host draws for one tick.
type Frame struct {
	Nodes       []*layout.Node
	Links       []layout.Link
	Transform   viewport.Transform
	Background  viewport.Background
	Highlighted string
	Tick        int
	Settled     bool
}

// Clone copies the nodes and links of f, so the copy keeps this tick's
// positions while the simulation moves on.
func (f Frame) Clone() Frame {
	nodes := make([]*layout.Node, len(f.Nodes))
	for i, n := range f.Nodes {
		c := *n
		nodes[i] = &c
	}
	f.Nodes = nodes
	f.Links = slices.Clone(f.Links)
	return f
}

// Session is one interactive galaxy view. It is not safe for concurrent
// use; independent sessions share nothing mutable.
type Session struct {
	dataset layout.Lookup
	angles  category.Angles
	params  force.Params

	width, height float64
	center        model.Ingredient
	filters       model.FilterState

	rng   *rand.Rand
	graph layout.Graph
	sim   *force.Simulation
	view  *viewport.Controller
	input *interaction.Controller

	viewOpts []viewport.Option

	// pointer routing
	pressAt  layout.Point
	pressed  bool
	hoverID  string
	rebuilds int
}

// Option configures a Session.
type Option func(*Session)

// WithSize sets the viewport size.
func WithSize(w, h float64) Option {
	return func(s *Session) {
		s.width, s.height = w, h
	}
}

// WithParams sets the simulation parameters.
func WithParams(p force.Params) Option {
	return func(s *Session) {
		s.params = p
	}
}

// WithAngles overrides the category sector angles.
func WithAngles(a category.Angles) Option {
	return func(s *Session) {
		s.angles = a
	}
}

// WithFilters sets the initial filter state.
func WithFilters(f model.FilterState) Option {
	return func(s *Session) {
		s.filters = f
	}
}

// WithSeed makes layouts reproducible.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithViewport passes options to the viewport controller.
func WithViewport(opts ...viewport.Option) Option {
	return func(s *Session) {
		s.viewOpts = append(s.viewOpts, opts...)
	}
}

// New creates a session centered on center and builds its first graph.
func New(dataset layout.Lookup, center model.Ingredient, opts ...Option) *Session {
	s := &Session{
		dataset: dataset,
		angles:  category.DefaultAngles(),
		params:  force.DefaultParams(),
		width:   DefaultWidth,
		height:  DefaultHeight,
		center:  center,
		filters: model.AllFilters(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.view = viewport.NewController(s.viewOpts...)
	s.input = interaction.New(interaction.WithReheatTarget(s.params.ReheatTarget))
	s.Rebuild()
	return s
}

// Rebuild discards the current simulation and lays out the graph again for
// the current center, filters and size. The transform is kept.
func (s *Session) Rebuild() {
	defer metrics.Timer(metrics.Build)()

	if s.sim != nil {
		s.sim.Dispose()
		s.sim = nil
	}
	s.input.Reset()
	s.pressed = false
	s.hoverID = ""

	vp := force.Viewport{Width: s.width, Height: s.height}
	s.graph = layout.Build(s.center, s.filters, s.dataset, vp.Center(), s.angles, layout.WithRand(s.rng))
	s.sim = force.New(s.graph, vp, s.angles, s.params, force.WithRand(s.rng))
	s.rebuilds++

	t := s.view.Resync()
	debug.Log("galaxy: rebuilt %q with %d nodes (filters %v) at %s", s.center.Name, len(s.graph.Nodes), s.filters.Active(), t)
}

// SetCenter recenters the galaxy on ing.
func (s *Session) SetCenter(ing model.Ingredient) {
	s.center = ing
	s.Rebuild()
}

// SetDataset swaps the record source, for example after the dataset file
// changed on disk, and rebuilds around center.
func (s *Session) SetDataset(ds layout.Lookup, center model.Ingredient) {
	s.dataset = ds
	s.center = center
	s.Rebuild()
}

// SetFilters changes the visible categories.
func (s *Session) SetFilters(f model.FilterState) {
	if f == s.filters {
		return
	}
	s.filters = f
	s.Rebuild()
}

// Resize changes the viewport size. Sizes that do not change anything are
// ignored.
func (s *Session) Resize(w, h float64) {
	if w <= 0 || h <= 0 || (w == s.width && h == s.height) {
		return
	}
	s.width, s.height = w, h
	s.Rebuild()
}

// Frame advances the simulation by one tick and hands the result to render.
// It reports whether a tick happened; settled sessions return false until
// something reheats them.
func (s *Session) Frame(render func(Frame)) bool {
	if s.sim == nil {
		return false
	}
	return s.sim.Step(func([]*layout.Node) {
		if render == nil {
			return
		}
		defer metrics.Timer(metrics.Render)()
		render(s.Current())
	})
}

// Current returns the frame for the present state without ticking.
func (s *Session) Current() Frame {
	f := Frame{
		Nodes:       s.graph.Nodes,
		Links:       s.graph.Links,
		Transform:   s.view.Transform(),
		Background:  s.view.Background(),
		Highlighted: s.input.Highlighted(),
	}
	if s.sim != nil {
		f.Tick = s.sim.Ticks()
		f.Settled = s.sim.State() != force.Running
	}
	return f
}

// Settle runs the simulation until it settles or maxTicks pass.
func (s *Session) Settle(maxTicks int) int {
	if s.sim == nil {
		return 0
	}
	return s.sim.Run(maxTicks)
}

// NodeAt returns the topmost node under the screen point p.
func (s *Session) NodeAt(p layout.Point) *layout.Node {
	w := s.view.Transform().Invert(p)
	for i := len(s.graph.Nodes) - 1; i >= 0; i-- {
		n := s.graph.Nodes[i]
		if math.Hypot(n.X-w.X, n.Y-w.Y) <= n.Radius {
			return n
		}
	}
	return nil
}

// PointerDown starts a node drag when p hits a node and a pan otherwise.
func (s *Session) PointerDown(p layout.Point) {
	s.pressed = true
	s.pressAt = p
	if n := s.NodeAt(p); n != nil {
		s.input.DragStart(n, s.view.Transform().Invert(p), s.sim)
		return
	}
	s.input.PressBackground()
	s.view.BeginPan(p)
}

// PointerMove continues a drag or pan, or updates the hover state when no
// button is held.
func (s *Session) PointerMove(p layout.Point, cb interaction.Callbacks) {
	switch {
	case s.input.Dragging() != nil:
		s.input.DragMove(s.view.Transform().Invert(p))
	case s.view.Panning():
		s.view.PanTo(p)
	default:
		s.hover(s.NodeAt(p), cb)
	}
}

func (s *Session) hover(n *layout.Node, cb interaction.Callbacks) {
	id := ""
	if n != nil {
		id = n.ID
	}
	if id == s.hoverID {
		return
	}
	if prev := s.graph.Node(s.hoverID); prev != nil {
		s.input.HoverLeave(prev)
	}
	s.hoverID = id
	if n != nil {
		s.input.HoverEnter(n, cb)
	}
}

// PointerUp ends the current gesture. A short press on empty space is a
// background click.
func (s *Session) PointerUp(p layout.Point, cb interaction.Callbacks) {
	if !s.pressed {
		return
	}
	s.pressed = false
	if s.input.Dragging() != nil {
		s.input.DragEnd(s.view.Transform().Invert(p), s.sim, cb)
		return
	}
	if s.view.Panning() {
		s.view.EndPan()
		if math.Hypot(p.X-s.pressAt.X, p.Y-s.pressAt.Y) < interaction.ClickThreshold {
			s.input.BackgroundClick(cb)
		}
	}
}

// Wheel zooms around p. dy follows browser wheel deltas: negative zooms in.
func (s *Session) Wheel(p layout.Point, dy float64) {
	s.view.ZoomAt(p, math.Pow(2, -dy*0.002))
}

// Center returns the current center ingredient.
func (s *Session) Center() model.Ingredient { return s.center }

// Filters returns the current filter state.
func (s *Session) Filters() model.FilterState { return s.filters }

// Size returns the viewport size.
func (s *Session) Size() (w, h float64) { return s.width, s.height }

// Graph returns the current graph.
func (s *Session) Graph() layout.Graph { return s.graph }

// Simulation returns the live simulation.
func (s *Session) Simulation() *force.Simulation { return s.sim }

// Viewport returns the transform controller.
func (s *Session) Viewport() *viewport.Controller { return s.view }

// Interaction returns the interaction controller.
func (s *Session) Interaction() *interaction.Controller { return s.input }

// Rebuilds counts graph rebuilds since the session was created.
func (s *Session) Rebuilds() int { return s.rebuilds }
