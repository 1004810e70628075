package force

import (
	"math"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// SectorTarget returns the orbit point of category c around the viewport
// center.
func SectorTarget(vp Viewport, angles category.Angles, orbitFactor float64, c model.Category) layout.Point {
	center := vp.Center()
	r := vp.OrbitRadius(orbitFactor)
	a := angles.Of(c)
	return layout.Point{X: center.X + math.Cos(a)*r, Y: center.Y + math.Sin(a)*r}
}

// RadialGrouping returns a force that draws each satellite towards the
// orbit point of its category. The center node is left alone.
func RadialGrouping(vp Viewport, angles category.Angles, gain, orbitFactor float64) Func {
	targets := make(map[model.Category]layout.Point)
	return func(nodes []*layout.Node, alpha float64) {
		k := alpha * gain
		for _, n := range nodes {
			if n.Role != layout.RoleSatellite {
				continue
			}
			t, ok := targets[n.Category]
			if !ok {
				t = SectorTarget(vp, angles, orbitFactor, n.Category)
				targets[n.Category] = t
			}
			n.VX += (t.X - n.X) * k
			n.VY += (t.Y - n.Y) * k
		}
	}
}
