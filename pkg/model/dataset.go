package model

import (
	"sort"
	"strings"
)

// DefaultCenterName is the ingredient shown first when it exists.
const DefaultCenterName = "Abricot"

// Dataset is an immutable, name-indexed collection of ingredients.
// The first record carrying a given name wins; later duplicates are dropped.
type Dataset struct {
	items  []Ingredient
	byName map[string]int
}

// NewDataset indexes items. Records without a name are skipped.
func NewDataset(items []Ingredient) *Dataset {
	d := &Dataset{
		items:  make([]Ingredient, 0, len(items)),
		byName: make(map[string]int, len(items)),
	}
	for _, it := range items {
		if it.Validate() != nil {
			continue
		}
		if _, dup := d.byName[it.Name]; dup {
			continue
		}
		d.byName[it.Name] = len(d.items)
		d.items = append(d.items, it)
	}
	return d
}

// Lookup returns the record named exactly name.
func (d *Dataset) Lookup(name string) (*Ingredient, bool) {
	if d == nil {
		return nil, false
	}
	idx, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return &d.items[idx], true
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}

// All returns the records in load order. The slice must not be modified.
func (d *Dataset) All() []Ingredient {
	if d == nil {
		return nil
	}
	return d.items
}

// Names returns all record names sorted alphabetically.
func (d *Dataset) Names() []string {
	names := make([]string, 0, d.Len())
	for _, it := range d.All() {
		names = append(names, it.Name)
	}
	sort.Strings(names)
	return names
}

// Search returns records whose name contains query, case-insensitively,
// in load order. An empty query matches nothing.
func (d *Dataset) Search(query string) []Ingredient {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Ingredient
	for _, it := range d.All() {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

// DefaultCenter returns the preferred record if present, else the first one.
func (d *Dataset) DefaultCenter(preferred string) (*Ingredient, bool) {
	if preferred == "" {
		preferred = DefaultCenterName
	}
	if it, ok := d.Lookup(preferred); ok {
		return it, true
	}
	if d.Len() == 0 {
		return nil, false
	}
	return &d.items[0], true
}

// Merge returns a dataset holding d's records followed by other's records
// whose names d does not already contain.
func (d *Dataset) Merge(other *Dataset) *Dataset {
	items := make([]Ingredient, 0, d.Len()+other.Len())
	items = append(items, d.All()...)
	items = append(items, other.All()...)
	return NewDataset(items)
}
