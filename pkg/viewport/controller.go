package viewport

import (
	"math"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
)

const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 4.0
	DefaultGridSize = 40.0
)

// Controller holds the current transform and notifies its observers
// synchronously on every change, in registration order. Render observers
// run before background observers.
type Controller struct {
	t    Transform
	minK float64
	maxK float64
	grid float64

	render     []func(Transform)
	background []func(Background)

	// pan gesture anchor
	panning  bool
	panStart layout.Point
	panLast  layout.Point
	panFrom  Transform
}

// Option configures a Controller.
type Option func(*Controller)

// WithScaleExtent sets the allowed zoom range.
func WithScaleExtent(min, max float64) Option {
	return func(c *Controller) {
		if min > 0 && max >= min {
			c.minK, c.maxK = min, max
		}
	}
}

// WithGridSize sets the background cell size at scale 1.
func WithGridSize(size float64) Option {
	return func(c *Controller) {
		if size > 0 {
			c.grid = size
		}
	}
}

// WithRenderObserver registers fn to receive every transform change.
func WithRenderObserver(fn func(Transform)) Option {
	return func(c *Controller) {
		c.OnRender(fn)
	}
}

// WithBackgroundObserver registers fn to receive every grid change.
func WithBackgroundObserver(fn func(Background)) Option {
	return func(c *Controller) {
		c.OnBackground(fn)
	}
}

// WithInitial starts the controller at t instead of the identity.
func WithInitial(t Transform) Option {
	return func(c *Controller) {
		c.t = t
	}
}

// NewController creates a controller at the identity transform.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		t:    Identity,
		minK: DefaultMinScale,
		maxK: DefaultMaxScale,
		grid: DefaultGridSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.t.K = c.clamp(c.t.K)
	return c
}

// OnRender adds a render observer.
func (c *Controller) OnRender(fn func(Transform)) {
	if fn != nil {
		c.render = append(c.render, fn)
	}
}

// OnBackground adds a background observer.
func (c *Controller) OnBackground(fn func(Background)) {
	if fn != nil {
		c.background = append(c.background, fn)
	}
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Background returns the current grid placement.
func (c *Controller) Background() Background { return BackgroundFor(c.t, c.grid) }

// ScaleExtent returns the allowed zoom range.
func (c *Controller) ScaleExtent() (min, max float64) { return c.minK, c.maxK }

func (c *Controller) clamp(k float64) float64 {
	if math.IsNaN(k) || k <= 0 {
		return 1
	}
	return math.Max(c.minK, math.Min(c.maxK, k))
}

// Set replaces the transform, clamping its scale, and notifies observers.
func (c *Controller) Set(t Transform) {
	t.K = c.clamp(t.K)
	c.t = t
	c.notify()
}

func (c *Controller) notify() {
	for _, fn := range c.render {
		fn(c.t)
	}
	bg := c.Background()
	for _, fn := range c.background {
		fn(bg)
	}
}

// PanBy shifts the view by (dx, dy) screen units.
func (c *Controller) PanBy(dx, dy float64) {
	c.Set(c.t.Translate(dx, dy))
}

// ZoomAt multiplies the scale by factor while keeping the screen point
// focus over the same world point.
func (c *Controller) ZoomAt(focus layout.Point, factor float64) {
	c.ZoomTo(focus, c.t.K*factor)
}

// ZoomTo sets the scale to k around the screen point focus.
func (c *Controller) ZoomTo(focus layout.Point, k float64) {
	k = c.clamp(k)
	world := c.t.Invert(focus)
	c.Set(Transform{
		X: focus.X - world.X*k,
		Y: focus.Y - world.Y*k,
		K: k,
	})
}

// BeginPan anchors a drag-to-pan gesture at the screen point p.
func (c *Controller) BeginPan(p layout.Point) {
	c.panning = true
	c.panStart = p
	c.panLast = p
	c.panFrom = c.t
}

// PanTo moves an active pan gesture to the screen point p.
func (c *Controller) PanTo(p layout.Point) {
	if !c.panning {
		return
	}
	c.panLast = p
	c.Set(c.panFrom.Translate(p.X-c.panStart.X, p.Y-c.panStart.Y))
}

// EndPan finishes the pan gesture.
func (c *Controller) EndPan() {
	c.panning = false
}

// Panning reports whether a pan gesture is active.
func (c *Controller) Panning() bool { return c.panning }

// Resync re-applies the current transform to freshly built content. Any
// gesture in progress continues from the current transform rather than the
// one it started from.
func (c *Controller) Resync() Transform {
	if c.panning {
		c.panStart = c.panLast
		c.panFrom = c.t
	}
	debug.Log("viewport: resync %s", c.t)
	c.notify()
	return c.t
}

// Reset returns to the identity transform.
func (c *Controller) Reset() {
	c.panning = false
	c.Set(Identity)
}
