package force

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
)

type spring struct {
	source, target *layout.Node
	strength       float64
	bias           float64
}

// Link returns a spring force pulling every linked pair towards distance.
// Each spring is weakened by the smaller endpoint degree and the correction
// is split by degree, so the hub moves less than its leaves. Links naming
// unknown nodes are ignored.
func Link(nodes []*layout.Node, links []layout.Link, distance float64, jiggle func() float64) Func {
	index := make(map[string]int, len(nodes))
	g := simple.NewUndirectedGraph()
	for i, n := range nodes {
		index[n.ID] = i
		g.AddNode(simple.Node(i))
	}

	var pairs [][2]int
	for _, l := range links {
		si, ok := index[l.Source]
		if !ok {
			continue
		}
		ti, ok := index[l.Target]
		if !ok || si == ti {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(si), T: simple.Node(ti)})
		pairs = append(pairs, [2]int{si, ti})
	}

	springs := make([]spring, 0, len(pairs))
	for _, p := range pairs {
		ds := float64(g.From(int64(p[0])).Len())
		dt := float64(g.From(int64(p[1])).Len())
		springs = append(springs, spring{
			source:   nodes[p[0]],
			target:   nodes[p[1]],
			strength: 1 / math.Min(ds, dt),
			bias:     ds / (ds + dt),
		})
	}

	return func(_ []*layout.Node, alpha float64) {
		for _, sp := range springs {
			x := sp.target.X + sp.target.VX - sp.source.X - sp.source.VX
			y := sp.target.Y + sp.target.VY - sp.source.Y - sp.source.VY
			if x == 0 {
				x = jiggle()
			}
			if y == 0 {
				y = jiggle()
			}
			l := math.Sqrt(x*x + y*y)
			l = (l - distance) / l * alpha * sp.strength
			x *= l
			y *= l
			sp.target.VX -= x * sp.bias
			sp.target.VY -= y * sp.bias
			sp.source.VX += x * (1 - sp.bias)
			sp.source.VY += y * (1 - sp.bias)
		}
	}
}
