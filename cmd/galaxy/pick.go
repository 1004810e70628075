package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/foodgalaxy/internal/window"
	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

const (
	pickTUI    = "tui"
	pickWindow = "window"
	pickSave   = "save"
)

// pickChoice is what the picker form fills in.
type pickChoice struct {
	Center     string
	Categories []model.Category
	Action     string
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm falls back to the accessible (line based) mode without a TTY.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func (a *app) pickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose the center ingredient and categories interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			choice := defaultChoice(ds, a.cfg.DefaultCenter, a.cfg.Filters)
			if err := pickForm(ds, &choice).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}

			a.cfg.DefaultCenter = choice.Center
			a.cfg.Filters = model.Only(choice.Categories...)
			a.center = choice.Center

			switch choice.Action {
			case pickSave:
				if err := a.saveConfig(a.cfg); err != nil {
					return err
				}
				good.Fprintf(cmd.OutOrStdout(), "✓ %s enregistré comme centre par défaut\n", choice.Center)
				return nil
			case pickWindow:
				return window.Run(window.Options{Dataset: ds, Config: a.cfg, Seed: a.seed})
			default:
				return a.runTUI(cmd.Context(), tuiFlags{})
			}
		},
	}
}

// defaultChoice preselects the current center and the enabled categories.
func defaultChoice(ds *model.Dataset, center string, filters model.FilterState) pickChoice {
	c := pickChoice{Categories: filters.Active(), Action: pickTUI}
	if ing, ok := ds.DefaultCenter(center); ok {
		c.Center = ing.Name
	}
	return c
}

func pickForm(ds *model.Dataset, c *pickChoice) *huh.Form {
	names := ds.Names()
	cats := make([]huh.Option[model.Category], 0, len(model.RelationCategories))
	for _, cat := range model.RelationCategories {
		cats = append(cats, huh.NewOption(category.Label(cat), cat))
	}

	return newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Ingrédient central").
				Description(fmt.Sprintf("%d ingrédients, / pour filtrer", len(names))).
				Options(huh.NewOptions(names...)...).
				Filtering(true).
				Height(12).
				Value(&c.Center),
		),
		huh.NewGroup(
			huh.NewMultiSelect[model.Category]().
				Title("Catégories visibles").
				Options(cats...).
				Value(&c.Categories),
			huh.NewSelect[string]().
				Title("Ensuite").
				Options(
					huh.NewOption("Ouvrir dans le terminal", pickTUI),
					huh.NewOption("Ouvrir dans une fenêtre", pickWindow),
					huh.NewOption("Enregistrer comme défaut", pickSave),
				).
				Value(&c.Action),
		),
	)
}
