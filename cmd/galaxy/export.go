package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/foodgalaxy/pkg/export"
	"github.com/vanderheijden86/foodgalaxy/pkg/galaxy"
	"github.com/vanderheijden86/foodgalaxy/pkg/hooks"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

type exportFlags struct {
	out           string
	format        string
	width, height int
	concurrency   int
	quiet         bool
	noHooks       bool
}

func (a *app) exportCmd() *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dataset, ingredient sheets or every galaxy",
		Long: `Export the loaded dataset.

  json, toml, sqlite  the merged dataset as one file
  md                  one Markdown sheet per ingredient, with its galaxy
  svg, png            one settled galaxy image per ingredient

Hooks in .foodgalaxy/hooks.yaml run before and after the export.`,
		Example: `  galaxy export --format sqlite -o ingredients.db
  galaxy export --format png -o galaxies/ --filters sale,sucre`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := a.loadDataset(ctx)
			if err != nil {
				return err
			}
			format := strings.ToLower(f.format)
			if format == "" {
				format = strings.ToLower(strings.TrimPrefix(filepath.Ext(f.out), "."))
			}
			if format == "" {
				format = "json"
			}
			out, write, err := a.exportWriter(ctx, ds, format, f, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return withHooks(cmd.ErrOrStderr(), f.noHooks, hooks.ExportContext{
				ExportPath:      out,
				ExportFormat:    format,
				IngredientCount: ds.Len(),
			}, write)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.out, "out", "o", "", "output file or directory")
	fl.StringVar(&f.format, "format", "", "json, toml, sqlite, md, svg or png (default: from --out)")
	fl.IntVar(&f.width, "width", int(galaxy.DefaultWidth), "image width")
	fl.IntVar(&f.height, "height", int(galaxy.DefaultHeight), "image height")
	fl.IntVar(&f.concurrency, "jobs", 0, "parallel renders (default: GOMAXPROCS)")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "no progress output")
	fl.BoolVar(&f.noHooks, "no-hooks", false, "skip .foodgalaxy/hooks.yaml")
	return cmd
}

// exportWriter resolves the output location for format and returns the
// function that writes it.
func (a *app) exportWriter(ctx context.Context, ds *model.Dataset, format string, f exportFlags, stdout io.Writer) (string, func() error, error) {
	out := f.out
	switch format {
	case "svg", "png":
		if out == "" {
			out = "galaxies"
		}
		filters := a.cfg.Filters
		return out, func() error {
			res, err := export.ExportAll(ctx, ds, export.BatchOptions{
				Dir:         out,
				Format:      format,
				Width:       f.width,
				Height:      f.height,
				Filters:     &filters,
				Params:      a.cfg.Physics,
				Seed:        a.seed,
				Concurrency: f.concurrency,
				Progress: func(done, total int, name string) {
					if !f.quiet {
						subtle.Fprintf(stdout, "  [%d/%d] %s\n", done, total, name)
					}
				},
			})
			if err != nil {
				return err
			}
			good.Fprintf(stdout, "✓ %d images in %s\n", len(res.Files), out)
			return nil
		}, nil

	case "md", "markdown":
		if out == "" {
			out = "sheets"
		}
		return out, func() error {
			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			for i, ing := range ds.All() {
				if err := ctx.Err(); err != nil {
					return err
				}
				// the sheet only needs the graph, not settled positions
				s := a.settledSession(ds, ing, int(galaxy.DefaultWidth), int(galaxy.DefaultHeight), 0)
				path := filepath.Join(out, fmt.Sprintf("%03d-%s.md", i+1, snapshotName(ing.Name)))
				if err := export.SaveMarkdown(path, ing, s.Graph(), ds); err != nil {
					return err
				}
			}
			good.Fprintf(stdout, "✓ %d sheets in %s\n", ds.Len(), out)
			return nil
		}, nil
	}

	kind, err := export.DatasetFormat(format, out)
	if err != nil {
		return "", nil, err
	}
	if out == "" {
		ext := kind
		if kind == "sqlite" {
			ext = "db"
		}
		out = "ingredients." + ext
	}
	return out, func() error {
		if err := export.SaveDataset(ctx, out, kind, ds.All()); err != nil {
			return err
		}
		good.Fprintf(stdout, "✓ %d ingredients → %s\n", ds.Len(), out)
		return nil
	}, nil
}
