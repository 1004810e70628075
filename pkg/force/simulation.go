// Package force advances the galaxy layout one tick at a time.
//
// A Simulation applies an ordered list of named forces to the node
// velocities (link, charge, collide, radialGrouping), integrates velocity into
// position with damping and cools its alpha until it drops below AlphaMin.
//
// Simulations are not safe for concurrent use; the owner steps them from a
// single goroutine (frame loop, tea.Tick, ebiten Update).
package force

import (
	"math"
	"math/rand"
	"time"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/metrics"
)

// State is the lifecycle state of a Simulation.
type State int

const (
	// Running simulations advance on every Step.
	Running State = iota
	// Settled simulations are idle until restarted.
	Settled
	// Disposed simulations never tick again.
	Disposed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Settled:
		return "settled"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Func applies one force to the node velocities, scaled by alpha where the
// force is alpha-dependent.
type Func func(nodes []*layout.Node, alpha float64)

// Force is a named entry of the per-tick force list.
type Force struct {
	Name  string
	Apply Func
}

// Viewport is the size of the drawing area in world units.
type Viewport struct {
	Width, Height float64
}

// Center returns the middle of the viewport.
func (v Viewport) Center() layout.Point {
	return layout.Point{X: v.Width / 2, Y: v.Height / 2}
}

// OrbitRadius returns factor × min(width, height).
func (v Viewport) OrbitRadius(factor float64) float64 {
	return math.Min(v.Width, v.Height) * factor
}

// Simulation is one run of the force layout over a fixed node set.
type Simulation struct {
	nodes    []*layout.Node
	forces   []Force
	params   Params
	viewport Viewport
	angles   category.Angles

	alpha       float64
	alphaTarget float64
	state       State
	ticks       int

	rng *rand.Rand
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithRand sets the random source used to separate coincident nodes.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) {
		s.rng = r
	}
}

// WithForce appends an extra force after the built-in ones.
func WithForce(f Force) Option {
	return func(s *Simulation) {
		s.forces = append(s.forces, f)
	}
}

// New creates a running simulation over g's nodes with alpha 1.
func New(g layout.Graph, vp Viewport, angles category.Angles, p Params, opts ...Option) *Simulation {
	p = p.withDefaults()
	if angles == nil {
		angles = category.DefaultAngles()
	}
	s := &Simulation{
		nodes:    g.Nodes,
		params:   p,
		viewport: vp,
		angles:   angles,
		alpha:    1,
		state:    Running,
	}

	s.forces = []Force{
		{Name: "link", Apply: Link(g.Nodes, g.Links, p.LinkDistance, s.jiggle)},
		{Name: "charge", Apply: ManyBody(p.ChargeStrength, p.Theta, p.DistanceMin, s.jiggle)},
		{Name: "collide", Apply: Collide(p.CollideStrength, p.CollidePadding, p.LabelFactor, s.jiggle)},
		{Name: "radialGrouping", Apply: RadialGrouping(vp, angles, p.RadialGain, p.OrbitFactor)},
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Step advances one tick if the simulation is running and then hands the
// nodes to onTick. The callback is skipped when any position was non-finite
// during the tick. Step reports whether a tick happened.
func (s *Simulation) Step(onTick func(nodes []*layout.Node)) bool {
	if s.state != Running {
		return false
	}
	finite := s.tick()
	debug.LogIf(!finite, "force: non-finite tick at alpha %.4f, frame skipped", s.alpha)
	if s.alpha <= s.params.AlphaMin {
		s.state = Settled
	}
	if finite && onTick != nil {
		onTick(s.nodes)
	}
	return true
}

// Run steps until the simulation settles or maxTicks ticks have run, and
// returns the number of ticks performed.
func (s *Simulation) Run(maxTicks int) int {
	n := 0
	for n < maxTicks && s.Step(nil) {
		n++
	}
	return n
}

// Tick advances n ticks manually, regardless of whether the simulation has
// settled. Alpha does not decay while settled. It does nothing on a disposed
// simulation. The result reports whether every position stayed finite.
func (s *Simulation) Tick(n int) bool {
	ok := true
	for i := 0; i < n && s.state != Disposed; i++ {
		if !s.tick() {
			ok = false
		}
	}
	return ok
}

func (s *Simulation) tick() bool {
	defer metrics.Timer(metrics.Tick)()

	dirty := s.heal()

	// a settled simulation holds its alpha: cooling further would let
	// collision, the one force not scaled by alpha, drift the layout
	if s.state == Running {
		s.alpha += (s.alphaTarget - s.alpha) * s.params.AlphaDecay
	}
	for _, f := range s.forces {
		f.Apply(s.nodes, s.alpha)
	}

	keep := 1 - s.params.VelocityDecay
	for _, n := range s.nodes {
		if n.Pin != nil {
			n.X, n.Y = n.Pin.X, n.Pin.Y
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX
		n.Y += n.VY
	}
	s.ticks++

	if s.heal() {
		dirty = true
	}
	return !dirty
}

// heal moves nodes with non-finite state back to a sane position and
// reports whether any node needed it.
func (s *Simulation) heal() bool {
	healed := false
	for _, n := range s.nodes {
		if n.Finite() && finite(n.VX) && finite(n.VY) {
			continue
		}
		healed = true
		n.VX, n.VY = 0, 0
		if n.Pin != nil {
			n.X, n.Y = n.Pin.X, n.Pin.Y
			continue
		}
		c := s.viewport.Center()
		r := s.viewport.OrbitRadius(s.params.OrbitFactor)
		a := s.angles.Of(n.Category)
		n.X = c.X + math.Cos(a)*r + s.jiggle()
		n.Y = c.Y + math.Sin(a)*r + s.jiggle()
	}
	return healed
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Restart resumes a settled simulation. Disposed simulations stay disposed.
func (s *Simulation) Restart() {
	if s.state == Settled {
		s.state = Running
	}
}

// Dispose stops the simulation for good and drops its node references.
func (s *Simulation) Dispose() {
	s.state = Disposed
	s.nodes = nil
	s.forces = nil
}

// State returns the lifecycle state.
func (s *Simulation) State() State { return s.state }

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha overrides the current energy.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// AlphaTarget returns the value alpha decays towards.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget changes the value alpha decays towards.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// Ticks returns the number of ticks performed so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Nodes returns the simulated nodes (nil once disposed).
func (s *Simulation) Nodes() []*layout.Node { return s.nodes }

// Params returns the effective parameters.
func (s *Simulation) Params() Params { return s.params }

// ForceNames lists the forces in application order.
func (s *Simulation) ForceNames() []string {
	names := make([]string, len(s.forces))
	for i, f := range s.forces {
		names[i] = f.Name
	}
	return names
}
