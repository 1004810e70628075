package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/foodgalaxy/pkg/export"
	"github.com/vanderheijden86/foodgalaxy/pkg/galaxy"
	"github.com/vanderheijden86/foodgalaxy/pkg/hooks"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

type snapshotFlags struct {
	out           string
	format        string
	title         string
	width, height int
	ticks         int
	markdown      bool
	noHooks       bool
}

func (a *app) snapshotCmd() *cobra.Command {
	var f snapshotFlags
	cmd := &cobra.Command{
		Use:   "snapshot [ingredient]",
		Short: "Render one settled galaxy to SVG or PNG",
		Example: `  galaxy snapshot Abricot -o abricot.png
  galaxy snapshot "Vin jaune" --filters vin,sale --markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			name := a.cfg.DefaultCenter
			if len(args) == 1 {
				name = args[0]
			}
			center, err := centerOf(ds, name)
			if err != nil {
				return err
			}
			s := a.settledSession(ds, *center, f.width, f.height, f.ticks)

			out := f.out
			if out == "" {
				ext := f.format
				if ext == "" {
					ext = "svg"
				}
				out = snapshotName(center.Name) + "." + strings.ToLower(ext)
			}
			write := func() error {
				err := export.SaveSnapshot(export.SnapshotOptions{
					Path:   out,
					Format: f.format,
					Title:  f.title,
					Width:  f.width,
					Height: f.height,
					Frame:  s.Current(),
				})
				if err != nil {
					return fmt.Errorf("snapshot %q: %w", center.Name, err)
				}
				good.Fprintf(cmd.OutOrStdout(), "✓ %s\n", out)

				if f.markdown {
					md := strings.TrimSuffix(out, filepath.Ext(out)) + ".md"
					if err := export.SaveMarkdown(md, *center, s.Graph(), ds); err != nil {
						return err
					}
					good.Fprintf(cmd.OutOrStdout(), "✓ %s\n", md)
				}
				return nil
			}
			format := f.format
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			return withHooks(cmd.ErrOrStderr(), f.noHooks, hooks.ExportContext{
				ExportPath:      out,
				ExportFormat:    strings.ToLower(format),
				Center:          center.Name,
				IngredientCount: 1,
			}, write)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.out, "out", "o", "", "output file (default: <ingredient>.svg)")
	fl.StringVar(&f.format, "format", "", "svg or png (default: from the file extension)")
	fl.StringVar(&f.title, "title", "", "title drawn in the corner (default: the ingredient)")
	fl.IntVar(&f.width, "width", int(galaxy.DefaultWidth), "image width")
	fl.IntVar(&f.height, "height", int(galaxy.DefaultHeight), "image height")
	fl.IntVar(&f.ticks, "ticks", export.DefaultMaxTicks, "maximum simulation ticks")
	fl.BoolVar(&f.markdown, "markdown", false, "also write an ingredient sheet next to the image")
	fl.BoolVar(&f.noHooks, "no-hooks", false, "skip .foodgalaxy/hooks.yaml")
	return cmd
}

// settledSession builds a session for center and runs it until it settles
// or ticks run out.
func (a *app) settledSession(ds *model.Dataset, center model.Ingredient, w, h, ticks int) *galaxy.Session {
	opts := []galaxy.Option{
		galaxy.WithSize(float64(w), float64(h)),
		galaxy.WithFilters(a.cfg.Filters),
		galaxy.WithParams(a.cfg.Physics),
		galaxy.WithViewport(a.cfg.ViewportOptions()...),
	}
	if a.seed != 0 {
		opts = append(opts, galaxy.WithSeed(a.seed))
	}
	s := galaxy.New(ds, center, opts...)
	s.Settle(ticks)
	return s
}

// snapshotName turns an ingredient name into a file name.
func snapshotName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '\'', '"':
			return '-'
		}
		return r
	}, name)
	if name == "" {
		return "galaxy"
	}
	return name
}
