// Package layout builds the center/satellite graph that the force simulation
// animates.
package layout

import (
	"math"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// Role distinguishes the single center node from its satellites.
type Role string

const (
	RoleCenter    Role = "center"
	RoleSatellite Role = "satellite"
)

// Point is a position in world coordinates.
type Point struct {
	X, Y float64
}

// Node is the simulation-owned record of one ingredient in the galaxy.
// Data is nil for terminal satellites that have no record in the dataset.
type Node struct {
	ID       string
	Role     Role
	Category model.Category
	Data     *model.Ingredient
	Color    string
	Radius   float64

	X, Y   float64
	VX, VY float64

	// Pin overrides physics while set: the node is held at Pin every tick.
	Pin *Point
}

// Name returns the ingredient name shown for the node.
func (n *Node) Name() string { return n.ID }

// IsCenter reports whether n is the center node.
func (n *Node) IsCenter() bool { return n.Role == RoleCenter }

// IsTerminal reports whether n has no backing record.
func (n *Node) IsTerminal() bool { return n.Data == nil }

// PinAt fixes the node at (x, y).
func (n *Node) PinAt(x, y float64) {
	n.Pin = &Point{X: x, Y: y}
}

// Unpin releases the node back to the simulation.
func (n *Node) Unpin() {
	n.Pin = nil
}

// Finite reports whether the node's position is a real number.
func (n *Node) Finite() bool {
	return !math.IsNaN(n.X) && !math.IsNaN(n.Y) && !math.IsInf(n.X, 0) && !math.IsInf(n.Y, 0)
}

// Link joins the center to one satellite.
type Link struct {
	Source string
	Target string
	Color  string
	Value  int
}

// Graph is the output of Build: the center node first, then satellites in
// insertion order.
type Graph struct {
	Nodes []*Node
	Links []Link
}

// Center returns the center node, or nil for an empty graph.
func (g Graph) Center() *Node {
	for _, n := range g.Nodes {
		if n.IsCenter() {
			return n
		}
	}
	return nil
}

// Node returns the node with the given id.
func (g Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Satellites returns all non-center nodes.
func (g Graph) Satellites() []*Node {
	out := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if !n.IsCenter() {
			out = append(out, n)
		}
	}
	return out
}

// IDs returns the node ids in order.
func (g Graph) IDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}
