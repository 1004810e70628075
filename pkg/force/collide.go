package force

import (
	"math"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
)

// ExclusionRadius is the collision radius of n: its disc plus room for the
// label drawn beside it.
func ExclusionRadius(n *layout.Node, padding, labelFactor float64) float64 {
	return n.Radius + float64(runewidth.StringWidth(n.Name()))*labelFactor + padding
}

// Collide returns a single-pass overlap resolver working on the positions
// each node will have after this tick's velocity. The push is shared by the
// two nodes in inverse proportion to their squared radii.
func Collide(strength, padding, labelFactor float64, jiggle func() float64) Func {
	return func(nodes []*layout.Node, _ float64) {
		radii := make([]float64, len(nodes))
		for i, n := range nodes {
			radii[i] = ExclusionRadius(n, padding, labelFactor)
		}

		for i, a := range nodes {
			ri := radii[i]
			ri2 := ri * ri
			xi := a.X + a.VX
			yi := a.Y + a.VY
			for j := i + 1; j < len(nodes); j++ {
				b := nodes[j]
				rj := radii[j]
				r := ri + rj
				x := xi - b.X - b.VX
				y := yi - b.Y - b.VY
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = jiggle()
					l += x * x
				}
				if y == 0 {
					y = jiggle()
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * strength
				x *= l
				y *= l
				rj2 := rj * rj
				w := rj2 / (ri2 + rj2)
				a.VX += x * w
				a.VY += y * w
				b.VX -= x * (1 - w)
				b.VY -= y * (1 - w)
			}
		}
	}
}
