package layout

import (
	"math"
	"math/rand"
	"time"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// Lookup resolves an ingredient record by exact name.
type Lookup interface {
	Lookup(name string) (*model.Ingredient, bool)
}

const (
	DefaultCenterRadius    = 50.0
	DefaultSatelliteRadius = 22.0
	DefaultMinDistance     = 100.0
	DefaultMaxDistance     = 200.0
	DefaultAngleJitter     = 0.5 // total width of the jitter window, radians
)

type buildConfig struct {
	rng             *rand.Rand
	centerRadius    float64
	satelliteRadius float64
	minDistance     float64
	maxDistance     float64
	jitter          float64
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithRand sets the random source used for initial placement.
func WithRand(r *rand.Rand) BuildOption {
	return func(c *buildConfig) {
		c.rng = r
	}
}

// WithSeed makes initial placement reproducible.
func WithSeed(seed int64) BuildOption {
	return func(c *buildConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRadii overrides the center and satellite display radii.
func WithRadii(center, satellite float64) BuildOption {
	return func(c *buildConfig) {
		c.centerRadius = center
		c.satelliteRadius = satellite
	}
}

// WithSpawnDistance overrides the [min, max) distance band used for initial
// satellite placement.
func WithSpawnDistance(min, max float64) BuildOption {
	return func(c *buildConfig) {
		c.minDistance = min
		c.maxDistance = max
	}
}

// Build produces the node and link lists for one galaxy.
//
// The center is pinned at viewportCenter. Each enabled category contributes
// its names in order; a name already present (including the center itself)
// is skipped, so the first category listing a name owns it. Satellites start
// jittered around their category's sector; the jitter affects only where the
// simulation starts, not where it settles.
func Build(center model.Ingredient, filters model.FilterState, dataset Lookup, viewportCenter Point, angles category.Angles, opts ...BuildOption) Graph {
	cfg := buildConfig{
		centerRadius:    DefaultCenterRadius,
		satelliteRadius: DefaultSatelliteRadius,
		minDistance:     DefaultMinDistance,
		maxDistance:     DefaultMaxDistance,
		jitter:          DefaultAngleJitter,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if angles == nil {
		angles = category.DefaultAngles()
	}

	centerData := center
	root := &Node{
		ID:       center.Name,
		Role:     RoleCenter,
		Category: model.CategoryMain,
		Data:     &centerData,
		Color:    category.Color(model.CategoryMain),
		Radius:   cfg.centerRadius,
		X:        viewportCenter.X,
		Y:        viewportCenter.Y,
	}
	root.PinAt(viewportCenter.X, viewportCenter.Y)

	g := Graph{Nodes: []*Node{root}}
	seen := map[string]bool{root.ID: true}

	for _, cat := range filters.Active() {
		angle := angles.Of(cat)
		color := category.Color(cat)
		for _, name := range center.Associations.For(cat) {
			if seen[name] {
				continue
			}
			seen[name] = true

			var data *model.Ingredient
			if dataset != nil {
				if rec, ok := dataset.Lookup(name); ok {
					data = rec
				}
			}

			dist := cfg.minDistance + cfg.rng.Float64()*(cfg.maxDistance-cfg.minDistance)
			theta := angle + (cfg.rng.Float64()-0.5)*cfg.jitter

			g.Nodes = append(g.Nodes, &Node{
				ID:       name,
				Role:     RoleSatellite,
				Category: cat,
				Data:     data,
				Color:    color,
				Radius:   cfg.satelliteRadius,
				X:        viewportCenter.X + math.Cos(theta)*dist,
				Y:        viewportCenter.Y + math.Sin(theta)*dist,
			})
			g.Links = append(g.Links, Link{
				Source: root.ID,
				Target: name,
				Color:  color,
				Value:  1,
			})
		}
	}

	return g
}
