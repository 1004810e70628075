package force

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
)

// body adapts a node to barneshut.Particle2. Every node has unit mass.
type body struct{ n *layout.Node }

func (b body) Coord2() r2.Vec { return r2.Vec{X: b.n.X, Y: b.n.Y} }
func (b body) Mass() float64  { return 1 }

// ManyBody returns an all-pairs charge force approximated with a Barnes-Hut
// quadtree. Negative strength repels. Pair distances below distanceMin are
// clamped so close neighbours do not explode.
func ManyBody(strength, theta, distanceMin float64, jiggle func() float64) Func {
	min2 := distanceMin * distanceMin
	charge := func(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		d2 := v.X*v.X + v.Y*v.Y
		if d2 == 0 {
			return r2.Vec{}
		}
		if d2 < min2 {
			d2 = math.Sqrt(min2 * d2)
		}
		return r2.Scale(strength*m2/d2, v)
	}

	return func(nodes []*layout.Node, alpha float64) {
		if len(nodes) < 2 {
			return
		}
		separate(nodes, jiggle)

		bodies := make([]barneshut.Particle2, len(nodes))
		for i, n := range nodes {
			bodies[i] = body{n}
		}
		// NewPlane fails when the bounding box cannot be subdivided any
		// further; the exact sum is still well defined then.
		plane, err := barneshut.NewPlane(bodies)
		for i, b := range bodies {
			var f r2.Vec
			if err == nil {
				f = plane.ForceOn(b, theta, charge)
			} else {
				f = pairwise(bodies, b, charge)
			}
			nodes[i].VX += f.X * alpha
			nodes[i].VY += f.Y * alpha
		}
	}
}

func pairwise(bodies []barneshut.Particle2, p barneshut.Particle2, fn barneshut.Force2) r2.Vec {
	var sum r2.Vec
	pos := p.Coord2()
	for _, q := range bodies {
		if q == p {
			continue
		}
		sum = r2.Add(sum, fn(p, q, p.Mass(), q.Mass(), r2.Sub(q.Coord2(), pos)))
	}
	return sum
}

// separate nudges nodes that sit exactly on top of an earlier node.
func separate(nodes []*layout.Node, jiggle func() float64) {
	seen := make(map[r2.Vec]struct{}, len(nodes))
	for _, n := range nodes {
		p := r2.Vec{X: n.X, Y: n.Y}
		if _, dup := seen[p]; dup && n.Pin == nil {
			n.X += jiggle()
			n.Y += jiggle()
			p = r2.Vec{X: n.X, Y: n.Y}
		}
		seen[p] = struct{}{}
	}
}
