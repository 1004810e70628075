package category

import (
	"image/color"
	"math"
	"testing"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

func TestDefaultAngles(t *testing.T) {
	a := DefaultAngles()
	if got := a.Of(model.CategorySavory); math.Abs(got+math.Pi/2) > 1e-12 {
		t.Errorf("savory sector should point up, got %f", got)
	}
	step := 2 * math.Pi / 5
	for i, c := range model.RelationCategories {
		want := -math.Pi/2 + step*float64(i)
		if math.Abs(a.Of(c)-want) > 1e-12 {
			t.Errorf("%s: angle %f, want %f", c, a.Of(c), want)
		}
	}
	if a.Of(model.CategoryMain) != 0 {
		t.Error("main category has no sector angle")
	}
}

func TestColorsAndLabels(t *testing.T) {
	for _, c := range append([]model.Category{model.CategoryMain}, model.RelationCategories...) {
		if Color(c) == DefaultColor {
			t.Errorf("%s should have its own colour", c)
		}
		if Label(c) == string(c) {
			t.Errorf("%s should have a display label", c)
		}
	}
	if Color("unknown") != DefaultColor {
		t.Error("unknown category should use the default colour")
	}
	if got := RGBA(model.CategorySavory); got != (color.RGBA{0x10, 0xb9, 0x81, 0xff}) {
		t.Errorf("unexpected savory RGBA %v", got)
	}
}

func TestParseHex(t *testing.T) {
	if _, err := ParseHex("fff"); err == nil {
		t.Error("expected error for short colour")
	}
	if _, err := ParseHex("#zzzzzz"); err == nil {
		t.Error("expected error for non-hex colour")
	}
	c, err := ParseHex("#0a0b0c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.R != 0x0a || c.G != 0x0b || c.B != 0x0c || c.A != 0xff {
		t.Errorf("unexpected colour %v", c)
	}
}

func TestSectors(t *testing.T) {
	s := Sectors(DefaultAngles())
	if len(s) != 5 {
		t.Fatalf("expected 5 sectors, got %d", len(s))
	}
	if s[0].Category != model.CategorySavory || s[4].Category != model.CategoryBeerCider {
		t.Errorf("sectors not in canonical order: %+v", s)
	}
}
