// Package model defines the ingredient records the galaxy is built from and
// the relation categories that connect them.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// Category identifies a relation category (or the center pseudo-category).
type Category string

const (
	CategorySavory    Category = "sale"
	CategorySweet     Category = "sucre"
	CategoryWine      Category = "vin"
	CategoryMixology  Category = "mixologie"
	CategoryBeerCider Category = "biere_cidre"

	// CategoryMain is carried by the center node only.
	CategoryMain Category = "main"
)

// RelationCategories lists the relation categories in their canonical order.
// Builders iterate in this order, so the first category listing a name owns it.
var RelationCategories = []Category{
	CategorySavory,
	CategorySweet,
	CategoryWine,
	CategoryMixology,
	CategoryBeerCider,
}

// IsRelation reports whether c is one of the five relation categories.
func (c Category) IsRelation() bool {
	switch c {
	case CategorySavory, CategorySweet, CategoryWine, CategoryMixology, CategoryBeerCider:
		return true
	default:
		return false
	}
}

// ParseCategory resolves a category key, accepting a few common aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale", "salé", "savory":
		return CategorySavory, nil
	case "sucre", "sucré", "sweet":
		return CategorySweet, nil
	case "vin", "wine":
		return CategoryWine, nil
	case "mixologie", "mixology", "cocktail":
		return CategoryMixology, nil
	case "biere_cidre", "biere", "bière", "cidre", "beer", "cider":
		return CategoryBeerCider, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// Associations holds the ordered pairing names per relation category.
type Associations struct {
	Savory    []string `json:"sale" toml:"sale"`
	Sweet     []string `json:"sucre" toml:"sucre"`
	Wine      []string `json:"vin" toml:"vin"`
	Mixology  []string `json:"mixologie" toml:"mixologie"`
	BeerCider []string `json:"biere_cidre" toml:"biere_cidre"`
}

// For returns the names listed under category c (nil for unknown categories).
func (a Associations) For(c Category) []string {
	switch c {
	case CategorySavory:
		return a.Savory
	case CategorySweet:
		return a.Sweet
	case CategoryWine:
		return a.Wine
	case CategoryMixology:
		return a.Mixology
	case CategoryBeerCider:
		return a.BeerCider
	default:
		return nil
	}
}

// Set replaces the list for category c. Unknown categories are ignored.
func (a *Associations) Set(c Category, names []string) {
	switch c {
	case CategorySavory:
		a.Savory = names
	case CategorySweet:
		a.Sweet = names
	case CategoryWine:
		a.Wine = names
	case CategoryMixology:
		a.Mixology = names
	case CategoryBeerCider:
		a.BeerCider = names
	}
}

// Count returns the total number of listed names across all categories.
func (a Associations) Count() int {
	n := 0
	for _, c := range RelationCategories {
		n += len(a.For(c))
	}
	return n
}

// Recipe is the inspiration recipe embedded in an ingredient record.
type Recipe struct {
	Title   string `json:"titre" toml:"titre"`
	Details string `json:"details" toml:"details"`
}

// Ingredient is one record of the pairing dataset. Name is the identity key.
type Ingredient struct {
	Name           string       `json:"nom" toml:"nom"`
	Type           string       `json:"type" toml:"type"`
	FlavorFamily   string       `json:"famille_saveur" toml:"famille_saveur"`
	Description    string       `json:"description" toml:"description"`
	SensoryProfile string       `json:"profil_sensoriel" toml:"profil_sensoriel"`
	TechnicalInfo  string       `json:"info_technique" toml:"info_technique"`
	Associations   Associations `json:"associations" toml:"associations"`
	Recipe         Recipe       `json:"recette_data" toml:"recette_data"`
}

// ErrMissingName is returned by Validate for records without a name.
var ErrMissingName = errors.New("ingredient has no name")

// Validate checks the minimal invariants of a record.
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrMissingName
	}
	return nil
}

// ProportionItems splits recipe details of the form
// "Proportions : 4cl gin, 2cl citron" into their items. ok is false when the
// details are free text.
func (r Recipe) ProportionItems() (items []string, ok bool) {
	if !strings.Contains(r.Details, "Proportions") {
		return nil, false
	}
	clean := strings.TrimSpace(strings.Replace(r.Details, "Proportions :", "", 1))
	for _, part := range strings.Split(clean, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items, true
}
