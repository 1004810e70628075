// Package category maps relation categories to their angular sector, colour
// and display label.
package category

import (
	"fmt"
	"image/color"
	"math"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// Sector is the static presentation data of one category.
type Sector struct {
	Category model.Category
	Angle    float64 // radians, screen coordinates (y grows downwards)
	Color    string  // #rrggbb
	Label    string
}

// DefaultColor is used for categories without an assigned colour.
const DefaultColor = "#94a3b8"

var colors = map[model.Category]string{
	model.CategoryMain:      "#fbbf24",
	model.CategorySavory:    "#10b981",
	model.CategorySweet:     "#ec4899",
	model.CategoryWine:      "#991b1b",
	model.CategoryMixology:  "#f97316",
	model.CategoryBeerCider: "#eab308",
}

var labels = map[model.Category]string{
	model.CategoryMain:      "CENTRE",
	model.CategorySavory:    "SALÉ",
	model.CategorySweet:     "SUCRÉ",
	model.CategoryWine:      "VIN",
	model.CategoryMixology:  "MIXOLOGIE",
	model.CategoryBeerCider: "BIÈRE & CIDRE",
}

// Angles maps each relation category to its sector direction.
type Angles map[model.Category]float64

// DefaultAngles spreads the five relation categories evenly around the
// circle, starting straight up with the savory sector.
func DefaultAngles() Angles {
	a := make(Angles, len(model.RelationCategories))
	step := 2 * math.Pi / float64(len(model.RelationCategories))
	for i, c := range model.RelationCategories {
		a[c] = -math.Pi/2 + step*float64(i)
	}
	return a
}

// Of returns the angle for c, or 0 for categories without a sector.
func (a Angles) Of(c model.Category) float64 {
	return a[c]
}

// Color returns the hex colour of c.
func Color(c model.Category) string {
	if hex, ok := colors[c]; ok {
		return hex
	}
	return DefaultColor
}

// RGBA returns the colour of c as an opaque color.RGBA.
func RGBA(c model.Category) color.RGBA {
	rgba, err := ParseHex(Color(c))
	if err != nil {
		return color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	}
	return rgba
}

// Label returns the display label of c.
func Label(c model.Category) string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Sectors returns the sector table for the relation categories in canonical order.
func Sectors(a Angles) []Sector {
	out := make([]Sector, 0, len(model.RelationCategories))
	for _, c := range model.RelationCategories {
		out = append(out, Sector{Category: c, Angle: a.Of(c), Color: Color(c), Label: Label(c)})
	}
	return out
}

// ParseHex parses a #rrggbb colour.
func ParseHex(hex string) (color.RGBA, error) {
	var r, g, b uint8
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", hex)
	}
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
