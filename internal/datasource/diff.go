package datasource

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// DatasetDiff lists the names that changed between two loads.
type DatasetDiff struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty reports whether nothing changed.
func (d DatasetDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Summary returns a one-line description such as "+2 -1 ~3".
func (d DatasetDiff) Summary() string {
	if d.Empty() {
		return "no changes"
	}
	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("+%d", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("-%d", n))
	}
	if n := len(d.Changed); n > 0 {
		parts = append(parts, fmt.Sprintf("~%d", n))
	}
	return strings.Join(parts, " ")
}

// Diff compares two datasets by name. Output follows the load order of the
// dataset each name comes from.
func Diff(before, after *model.Dataset) DatasetDiff {
	var d DatasetDiff
	for _, it := range after.All() {
		old, ok := before.Lookup(it.Name)
		switch {
		case !ok:
			d.Added = append(d.Added, it.Name)
		case !reflect.DeepEqual(*old, it):
			d.Changed = append(d.Changed, it.Name)
		}
	}
	for _, it := range before.All() {
		if _, ok := after.Lookup(it.Name); !ok {
			d.Removed = append(d.Removed, it.Name)
		}
	}
	return d
}
