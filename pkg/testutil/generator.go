// Package testutil provides deterministic ingredient fixtures and assertions
// shared by the galaxy package tests.
package testutil

import (
	"fmt"
	"math/rand"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed       int64
	NamePrefix string
	// TerminalRatio is the share of association names that get no record
	// of their own.
	TerminalRatio float64
}

// DefaultConfig returns a deterministic config.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		NamePrefix:    "ing",
		TerminalRatio: 0.25,
	}
}

// Generator creates ingredient fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.NamePrefix == "" {
		cfg.NamePrefix = "ing"
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Star returns a center ingredient with perCategory distinct associations in
// every relation category. Names are "<center>/<category>/<i>".
func (g *Generator) Star(center string, perCategory int) model.Ingredient {
	ing := model.Ingredient{Name: center, Type: "Fixture"}
	for _, c := range model.RelationCategories {
		names := make([]string, perCategory)
		for i := range names {
			names[i] = fmt.Sprintf("%s/%s/%d", center, c, i)
		}
		ing.Associations.Set(c, names)
	}
	return ing
}

// Dataset returns size ingredients, each associated with up to
// perCategory others drawn at random. A share of the drawn names are
// terminals that have no record.
func (g *Generator) Dataset(size, perCategory int) []model.Ingredient {
	names := make([]string, size)
	for i := range names {
		names[i] = fmt.Sprintf("%s%03d", g.cfg.NamePrefix, i)
	}

	items := make([]model.Ingredient, size)
	for i, name := range names {
		ing := model.Ingredient{
			Name:         name,
			Type:         "Fixture",
			FlavorFamily: fmt.Sprintf("famille %d", i%4),
			Description:  fmt.Sprintf("Description de %s.", name),
		}
		for _, c := range model.RelationCategories {
			n := g.rng.Intn(perCategory + 1)
			assoc := make([]string, 0, n)
			for j := 0; j < n; j++ {
				if g.rng.Float64() < g.cfg.TerminalRatio {
					assoc = append(assoc, fmt.Sprintf("terminus-%s-%d", c, g.rng.Intn(size)))
					continue
				}
				assoc = append(assoc, names[g.rng.Intn(size)])
			}
			ing.Associations.Set(c, assoc)
		}
		items[i] = ing
	}
	return items
}

// ToJSON encodes items the way a data.json override file stores them.
func ToJSON(items []model.Ingredient) []byte {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("testutil: encode fixtures: %v", err))
	}
	return data
}

// QuickStar returns a star center with the default generator.
func QuickStar(perCategory int) model.Ingredient {
	return NewDefault().Star("Centre", perCategory)
}

// QuickDataset returns a small deterministic dataset.
func QuickDataset(size int) *model.Dataset {
	return model.NewDataset(NewDefault().Dataset(size, 3))
}
