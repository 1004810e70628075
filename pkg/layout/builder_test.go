package layout

import (
	"math"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

var viewportCenter = Point{X: 400, Y: 300}

func abricot() model.Ingredient {
	return model.Ingredient{
		Name: "Abricot",
		Type: "Fruit",
		Associations: model.Associations{
			Savory: []string{"Porc"},
			Sweet:  []string{"Vanille"},
		},
	}
}

func TestBuild_AbricotScenario(t *testing.T) {
	ds := model.NewDataset([]model.Ingredient{abricot(), {Name: "Vanille", Type: "Épice"}})
	g := Build(abricot(), model.AllFilters(), ds, viewportCenter, category.DefaultAngles(), WithSeed(1))

	if got, want := g.IDs(), []string{"Abricot", "Porc", "Vanille"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("node ids = %v, want %v", got, want)
	}
	if g.Nodes[0].Role != RoleCenter || g.Nodes[0].Category != model.CategoryMain {
		t.Errorf("first node should be the center, got %+v", g.Nodes[0])
	}
	if g.Nodes[1].Category != model.CategorySavory || g.Nodes[2].Category != model.CategorySweet {
		t.Errorf("unexpected satellite categories: %s, %s", g.Nodes[1].Category, g.Nodes[2].Category)
	}

	wantLinks := []Link{
		{Source: "Abricot", Target: "Porc", Color: category.Color(model.CategorySavory), Value: 1},
		{Source: "Abricot", Target: "Vanille", Color: category.Color(model.CategorySweet), Value: 1},
	}
	if !reflect.DeepEqual(g.Links, wantLinks) {
		t.Errorf("links = %+v, want %+v", g.Links, wantLinks)
	}

	if !g.Node("Porc").IsTerminal() {
		t.Error("Porc has no record and should be terminal")
	}
	if g.Node("Vanille").IsTerminal() || g.Node("Vanille").Data.Type != "Épice" {
		t.Error("Vanille should resolve its record from the dataset")
	}
}

func TestBuild_CenterPinnedAtViewportCenter(t *testing.T) {
	g := Build(abricot(), model.AllFilters(), nil, viewportCenter, nil, WithSeed(2))
	c := g.Center()
	if c == nil {
		t.Fatal("expected a center node")
	}
	if c.Pin == nil || *c.Pin != viewportCenter {
		t.Errorf("center pin = %v, want %v", c.Pin, viewportCenter)
	}
	if c.X != viewportCenter.X || c.Y != viewportCenter.Y {
		t.Errorf("center position = (%f,%f)", c.X, c.Y)
	}
	if c.Radius != DefaultCenterRadius {
		t.Errorf("center radius = %f", c.Radius)
	}
	for _, s := range g.Satellites() {
		if s.Pin != nil {
			t.Errorf("satellite %s should not be pinned", s.ID)
		}
		if s.Radius != DefaultSatelliteRadius {
			t.Errorf("satellite %s radius = %f", s.ID, s.Radius)
		}
	}
}

func TestBuild_AllFiltersOff(t *testing.T) {
	g := Build(abricot(), model.NoFilters(), nil, viewportCenter, nil, WithSeed(3))
	if len(g.Nodes) != 1 || !g.Nodes[0].IsCenter() {
		t.Errorf("expected only the center node, got %v", g.IDs())
	}
	if len(g.Links) != 0 {
		t.Errorf("expected no links, got %d", len(g.Links))
	}
}

func TestBuild_DedupFirstCategoryWins(t *testing.T) {
	center := model.Ingredient{
		Name: "Poire",
		Associations: model.Associations{
			Savory:   []string{"Roquefort", "Poire"},
			Sweet:    []string{"Chocolat", "Roquefort"},
			Mixology: []string{"Chocolat"},
		},
	}
	g := Build(center, model.AllFilters(), nil, viewportCenter, nil, WithSeed(4))

	if got, want := g.IDs(), []string{"Poire", "Roquefort", "Chocolat"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if g.Node("Roquefort").Category != model.CategorySavory {
		t.Error("Roquefort should belong to the first category listing it")
	}
	if len(g.Links) != 2 {
		t.Errorf("expected one link per satellite, got %d", len(g.Links))
	}

	// With savory disabled, Roquefort moves to the sweet sector.
	g = Build(center, model.AllFilters().With(model.CategorySavory, false), nil, viewportCenter, nil, WithSeed(4))
	if g.Node("Roquefort").Category != model.CategorySweet {
		t.Errorf("Roquefort category = %s, want sucre", g.Node("Roquefort").Category)
	}
}

func TestBuild_InitialPlacementInSector(t *testing.T) {
	angles := category.DefaultAngles()
	center := model.Ingredient{Name: "Miel"}
	for _, c := range model.RelationCategories {
		center.Associations.Set(c, []string{"a-" + string(c), "b-" + string(c), "c-" + string(c)})
	}

	g := Build(center, model.AllFilters(), nil, viewportCenter, angles, WithSeed(5))
	for _, n := range g.Satellites() {
		dx, dy := n.X-viewportCenter.X, n.Y-viewportCenter.Y
		dist := math.Hypot(dx, dy)
		if dist < DefaultMinDistance-1e-9 || dist >= DefaultMaxDistance {
			t.Errorf("%s spawned at distance %f", n.ID, dist)
		}
		delta := math.Remainder(math.Atan2(dy, dx)-angles.Of(n.Category), 2*math.Pi)
		if math.Abs(delta) > DefaultAngleJitter/2+1e-9 {
			t.Errorf("%s spawned %f rad away from its sector", n.ID, delta)
		}
	}
}

func TestBuild_SeedIsReproducible(t *testing.T) {
	a := Build(abricot(), model.AllFilters(), nil, viewportCenter, nil, WithSeed(9))
	b := Build(abricot(), model.AllFilters(), nil, viewportCenter, nil, WithSeed(9))
	for i := range a.Nodes {
		if a.Nodes[i].X != b.Nodes[i].X || a.Nodes[i].Y != b.Nodes[i].Y {
			t.Fatalf("node %s placed differently under the same seed", a.Nodes[i].ID)
		}
	}
}

var namePool = []string{"Porc", "Vanille", "Miel", "Thym", "Cidre", "Gin", "Comté", "Fraise", "Basilic", "Café"}

func drawCenter(t *rapid.T) model.Ingredient {
	center := model.Ingredient{Name: rapid.SampledFrom(namePool).Draw(t, "center")}
	for _, c := range model.RelationCategories {
		names := rapid.SliceOfN(rapid.SampledFrom(namePool), 0, 6).Draw(t, "names-"+string(c))
		center.Associations.Set(c, names)
	}
	return center
}

func drawFilters(t *rapid.T) model.FilterState {
	var f model.FilterState
	for _, c := range model.RelationCategories {
		f = f.With(c, rapid.Bool().Draw(t, "filter-"+string(c)))
	}
	return f
}

func TestBuild_PropertyUniqueIDsSingleCenter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		center := drawCenter(t)
		filters := drawFilters(t)
		g := Build(center, filters, nil, viewportCenter, nil, WithSeed(rapid.Int64().Draw(t, "seed")))

		centers := 0
		seen := make(map[string]bool)
		for _, n := range g.Nodes {
			if n.IsCenter() {
				centers++
			}
			if seen[n.ID] {
				t.Fatalf("duplicate node id %q", n.ID)
			}
			seen[n.ID] = true
			if !n.IsCenter() && !filters.Enabled(n.Category) {
				t.Fatalf("satellite %q comes from disabled category %s", n.ID, n.Category)
			}
		}
		if centers != 1 {
			t.Fatalf("expected exactly one center, got %d", centers)
		}

		// Expected satellites: distinct names across active categories minus the center.
		want := make(map[string]bool)
		for _, c := range filters.Active() {
			for _, name := range center.Associations.For(c) {
				if name != center.Name {
					want[name] = true
				}
			}
		}
		if len(g.Nodes)-1 != len(want) {
			t.Fatalf("got %d satellites, want %d", len(g.Nodes)-1, len(want))
		}
		if len(g.Links) != len(want) {
			t.Fatalf("got %d links, want %d", len(g.Links), len(want))
		}
		for _, l := range g.Links {
			if l.Source != center.Name || !want[l.Target] {
				t.Fatalf("unexpected link %+v", l)
			}
		}
	})
}

func TestBuild_PropertyRefilterIsHistoryFree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		center := drawCenter(t)
		filters := drawFilters(t)
		cat := rapid.SampledFrom(model.RelationCategories).Draw(t, "toggled")

		direct := Build(center, filters, nil, viewportCenter, nil, WithSeed(1))

		// Disable then restore the category; only the current state matters.
		_ = Build(center, filters.Toggle(cat), nil, viewportCenter, nil, WithSeed(2))
		again := Build(center, filters.Toggle(cat).Toggle(cat), nil, viewportCenter, nil, WithSeed(3))

		if !reflect.DeepEqual(direct.IDs(), again.IDs()) {
			t.Fatalf("ids differ after refilter: %v vs %v", direct.IDs(), again.IDs())
		}
		for i := range direct.Nodes {
			if direct.Nodes[i].Category != again.Nodes[i].Category {
				t.Fatalf("%s changed category after refilter", direct.Nodes[i].ID)
			}
		}
	})
}
