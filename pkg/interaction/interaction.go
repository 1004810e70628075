// Package interaction turns pointer gestures on galaxy nodes into pins,
// simulation reheats and click/hover callbacks.
package interaction

import (
	"math"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// ClickThreshold is the largest pointer travel, in world units, for which a
// drag still counts as a click.
const ClickThreshold = 5.0

// Callbacks receive user intents. They are passed with every call, so the
// host can swap handlers without rebuilding the session. Nil members are
// ignored.
type Callbacks struct {
	OnNodeClick func(name string)
	OnNodeHover func(data *model.Ingredient, name string)
}

func (c Callbacks) click(name string) {
	if c.OnNodeClick != nil {
		c.OnNodeClick(name)
	}
}

func (c Callbacks) hover(data *model.Ingredient, name string) {
	if c.OnNodeHover != nil {
		c.OnNodeHover(data, name)
	}
}

// Heater is the part of a simulation that drags drive.
type Heater interface {
	SetAlphaTarget(t float64)
	Restart()
}

type drag struct {
	node    *layout.Node
	pointer layout.Point // pointer at drag start
	origin  layout.Point // node position at drag start
}

// Controller tracks the active drag and the highlighted node.
type Controller struct {
	reheat    float64
	threshold float64

	drag        *drag
	highlighted string

	// set when a drag ended as a click, so the same release does not also
	// count as a background click. Any new press clears it.
	swallowBackground bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithReheatTarget sets the alpha target held while dragging.
func WithReheatTarget(t float64) Option {
	return func(c *Controller) { c.reheat = t }
}

// WithClickThreshold overrides ClickThreshold.
func WithClickThreshold(d float64) Option {
	return func(c *Controller) { c.threshold = d }
}

// New creates a Controller.
func New(opts ...Option) *Controller {
	c := &Controller{reheat: 0.3, threshold: ClickThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DragStart pins n where it is and reheats the simulation. p is the pointer
// in world coordinates.
func (c *Controller) DragStart(n *layout.Node, p layout.Point, sim Heater) {
	if n == nil {
		return
	}
	c.swallowBackground = false
	c.drag = &drag{
		node:    n,
		pointer: p,
		origin:  layout.Point{X: n.X, Y: n.Y},
	}
	if sim != nil {
		sim.SetAlphaTarget(c.reheat)
		sim.Restart()
	}
	n.PinAt(n.X, n.Y)
}

// PressBackground starts a gesture on empty space. A click swallow left
// over from an earlier node click no longer applies.
func (c *Controller) PressBackground() {
	c.swallowBackground = false
}

// DragMove moves the pin of the dragged node by the pointer travel since
// DragStart.
func (c *Controller) DragMove(p layout.Point) {
	d := c.drag
	if d == nil {
		return
	}
	d.node.PinAt(d.origin.X+p.X-d.pointer.X, d.origin.Y+p.Y-d.pointer.Y)
}

// DragEnd releases the dragged node (the center stays pinned) and cools the
// simulation. A release within the click threshold of the start is a click:
// OnNodeClick fires for satellites and the pending background click is
// swallowed. DragEnd reports whether the gesture was a click.
func (c *Controller) DragEnd(p layout.Point, sim Heater, cb Callbacks) bool {
	d := c.drag
	if d == nil {
		return false
	}
	c.drag = nil

	if sim != nil {
		sim.SetAlphaTarget(0)
	}
	if !d.node.IsCenter() {
		d.node.Unpin()
	}

	dist := math.Hypot(p.X-d.pointer.X, p.Y-d.pointer.Y)
	if dist >= c.threshold {
		return false
	}
	c.swallowBackground = true
	if d.node.IsCenter() {
		return true
	}
	debug.Log("interaction: click %q", d.node.Name())
	cb.click(d.node.Name())
	return true
}

// Dragging returns the node being dragged, if any.
func (c *Controller) Dragging() *layout.Node {
	if c.drag == nil {
		return nil
	}
	return c.drag.node
}

// HoverEnter highlights n and reports it to OnNodeHover.
func (c *Controller) HoverEnter(n *layout.Node, cb Callbacks) {
	if n == nil {
		return
	}
	c.highlighted = n.ID
	cb.hover(n.Data, n.Name())
}

// HoverLeave removes the highlight of n. The preview stays.
func (c *Controller) HoverLeave(n *layout.Node) {
	if n != nil && c.highlighted == n.ID {
		c.highlighted = ""
	}
}

// Highlighted returns the id of the highlighted node, or "".
func (c *Controller) Highlighted() string { return c.highlighted }

// BackgroundClick clears the preview unless the click belongs to a node
// click that just ended. It reports whether the click was handled.
func (c *Controller) BackgroundClick(cb Callbacks) bool {
	if c.swallowBackground {
		c.swallowBackground = false
		return false
	}
	cb.hover(nil, "")
	return true
}

// Reset forgets drag and highlight state, e.g. when the graph is rebuilt.
func (c *Controller) Reset() {
	c.drag = nil
	c.highlighted = ""
	c.swallowBackground = false
}
