package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

func (a *app) listCmd() *cobra.Command {
	var (
		search    string
		favorites bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List ingredients and their number of pairings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			items := ds.All()
			if search != "" {
				items = ds.Search(search)
			}
			if favorites {
				var favs []model.Ingredient
				for _, it := range items {
					if a.cfg.IsFavorite(it.Name) {
						favs = append(favs, it)
					}
				}
				items = favs
			}

			out := cmd.OutOrStdout()
			banner(out, fmt.Sprintf("%d ingrédients", len(items)))
			table(out, []string{"", "nom", "type", "famille", "associations"}, listRows(items, ds, a.cfg.IsFavorite))
			if len(items) == 0 {
				subtle.Fprintln(out, "  aucun ingrédient")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "only favorites")
	return cmd
}

// listRows marks favorites with ★ and counts pairings that have their own
// record separately from terminal ones.
func listRows(items []model.Ingredient, ds *model.Dataset, favorite func(string) bool) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		mark := ""
		if favorite(it.Name) {
			mark = "★"
		}
		known := 0
		for _, c := range model.RelationCategories {
			for _, n := range it.Associations.For(c) {
				if _, ok := ds.Lookup(n); ok {
					known++
				}
			}
		}
		total := it.Associations.Count()
		count := strconv.Itoa(total)
		if total > 0 {
			count = fmt.Sprintf("%d (%d explorables)", total, known)
		}
		rows = append(rows, []string{mark, it.Name, it.Type, it.FlavorFamily, count})
	}
	return rows
}
