package model

// FilterState holds one visibility flag per relation category.
type FilterState struct {
	Savory    bool `yaml:"sale" json:"sale"`
	Sweet     bool `yaml:"sucre" json:"sucre"`
	Wine      bool `yaml:"vin" json:"vin"`
	Mixology  bool `yaml:"mixologie" json:"mixologie"`
	BeerCider bool `yaml:"biere_cidre" json:"biere_cidre"`
}

// AllFilters returns a FilterState with every category enabled.
func AllFilters() FilterState {
	return FilterState{Savory: true, Sweet: true, Wine: true, Mixology: true, BeerCider: true}
}

// NoFilters returns a FilterState with every category disabled.
func NoFilters() FilterState {
	return FilterState{}
}

// Enabled reports whether category c contributes satellites.
func (f FilterState) Enabled(c Category) bool {
	switch c {
	case CategorySavory:
		return f.Savory
	case CategorySweet:
		return f.Sweet
	case CategoryWine:
		return f.Wine
	case CategoryMixology:
		return f.Mixology
	case CategoryBeerCider:
		return f.BeerCider
	default:
		return false
	}
}

// With returns a copy of f with category c set to on.
func (f FilterState) With(c Category, on bool) FilterState {
	switch c {
	case CategorySavory:
		f.Savory = on
	case CategorySweet:
		f.Sweet = on
	case CategoryWine:
		f.Wine = on
	case CategoryMixology:
		f.Mixology = on
	case CategoryBeerCider:
		f.BeerCider = on
	}
	return f
}

// Toggle returns a copy of f with category c flipped.
func (f FilterState) Toggle(c Category) FilterState {
	return f.With(c, !f.Enabled(c))
}

// Active returns the enabled categories in canonical order.
func (f FilterState) Active() []Category {
	var out []Category
	for _, c := range RelationCategories {
		if f.Enabled(c) {
			out = append(out, c)
		}
	}
	return out
}

// Only returns a FilterState enabling exactly the given categories.
func Only(cats ...Category) FilterState {
	var f FilterState
	for _, c := range cats {
		f = f.With(c, true)
	}
	return f
}
