// Package viewport owns the pan/zoom transform of the galaxy view and keeps
// the render surface and the background grid in step with it.
package viewport

import (
	"fmt"

	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
)

// Transform maps world coordinates to screen coordinates:
// screen = world*K + (X, Y).
type Transform struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	K float64 `yaml:"k" json:"k"`
}

// Identity is the transform of a fresh view.
var Identity = Transform{K: 1}

// Apply maps a world point to the screen.
func (t Transform) Apply(p layout.Point) layout.Point {
	return layout.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to world coordinates.
func (t Transform) Invert(p layout.Point) layout.Point {
	return layout.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// Translate returns t shifted by (dx, dy) screen units.
func (t Transform) Translate(dx, dy float64) Transform {
	return Transform{X: t.X + dx, Y: t.Y + dy, K: t.K}
}

func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// Background is the placement of the tiled grid behind the galaxy.
type Background struct {
	OffsetX, OffsetY float64
	CellSize         float64
}

// BackgroundFor derives the grid placement for t with the given base cell
// size.
func BackgroundFor(t Transform, grid float64) Background {
	return Background{OffsetX: t.X, OffsetY: t.Y, CellSize: grid * t.K}
}
