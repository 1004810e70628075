package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/foodgalaxy/internal/datasource"
	"github.com/vanderheijden86/foodgalaxy/pkg/config"
	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/metrics"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
	"github.com/vanderheijden86/foodgalaxy/pkg/version"
)

// app holds the global flags and what they resolve to.
type app struct {
	configPath  string
	dataset     string
	sources     []string
	center      string
	filters     string
	seed        int64
	debug       bool
	showMetrics bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "galaxy",
		Short: star + " galaxy: explore food pairings as a galaxy",
		Long: brand.Sprint(star+" galaxy") + ": explore food pairings as a force-directed galaxy\n" +
			subtle.Sprint("One ingredient in the center, its pairings orbiting by category."),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.showMetrics {
				a.printMetrics(cmd)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context(), tuiFlags{})
		},
	}
	root.SetVersionTemplate("galaxy {{ .Version }}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: XDG config dir)")
	pf.StringVarP(&a.dataset, "dataset", "d", "", "dataset file or URL (JSON, TOML or SQLite)")
	pf.StringSliceVar(&a.sources, "source", nil, "extra dataset merged after the main one (repeatable)")
	pf.StringVarP(&a.center, "center", "c", "", "ingredient to start from")
	pf.StringVarP(&a.filters, "filters", "f", "", `visible categories, e.g. "sale,vin" or "none"`)
	pf.Int64Var(&a.seed, "seed", 0, "layout seed (0 = random)")
	pf.BoolVar(&a.debug, "debug", false, "log debug output (same as FG_DEBUG=1)")
	pf.BoolVar(&a.showMetrics, "metrics", false, "print timing metrics on exit")

	root.AddCommand(
		a.tuiCmd(),
		a.windowCmd(),
		a.snapshotCmd(),
		a.exportCmd(),
		a.pickCmd(),
		a.listCmd(),
		versionCmd(),
	)
	return root
}

// setup loads the config and applies the flags that override it.
func (a *app) setup() error {
	if a.debug {
		debug.SetEnabled(true)
	}
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.dataset != "" {
		a.cfg.Dataset = a.dataset
	}
	if len(a.sources) > 0 {
		a.cfg.Sources = append(a.cfg.Sources, a.sources...)
	}
	if a.center != "" {
		a.cfg.DefaultCenter = a.center
	}
	if a.filters != "" {
		f, err := parseFilters(a.filters)
		if err != nil {
			return err
		}
		a.cfg.Filters = f
	}
	debug.Dump("config", a.cfg)
	return nil
}

func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ConfigPath()
}

func (a *app) saveConfig(cfg config.Config) error {
	path := a.configFile()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return config.SaveTo(cfg, path)
}

func (a *app) loadOptions() datasource.Options {
	return datasource.Options{
		Primary: a.cfg.Dataset,
		Sources: a.cfg.Sources,
		Fetcher: datasource.NewFetcher(config.CacheDir()),
	}
}

// loadDataset loads the configured dataset and reports unusable sources on
// stderr.
func (a *app) loadDataset(ctx context.Context) (*model.Dataset, error) {
	ds, report, err := datasource.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	for _, w := range report.Warnings() {
		warn.Fprintf(os.Stderr, "galaxy: %v\n", w)
	}
	if report.Fallback {
		subtle.Fprintln(os.Stderr, "galaxy: using the built-in dataset")
	}
	return ds, nil
}

// reloadFunc reloads the dataset quietly, for live reloads.
func (a *app) reloadFunc() func(context.Context) (*model.Dataset, error) {
	opts := a.loadOptions()
	return func(ctx context.Context) (*model.Dataset, error) {
		ds, _, err := datasource.Load(ctx, opts)
		return ds, err
	}
}

// centerOf resolves name, falling back to the default center.
func centerOf(ds *model.Dataset, name string) (*model.Ingredient, error) {
	if name != "" {
		if ing, ok := ds.Lookup(name); ok {
			return ing, nil
		}
		return nil, fmt.Errorf("unknown ingredient %q", name)
	}
	ing, ok := ds.DefaultCenter("")
	if !ok {
		return nil, datasource.ErrEmptyDataset
	}
	return ing, nil
}

// parseFilters reads a comma-separated category list. "all" and "none" are
// shortcuts.
func parseFilters(s string) (model.FilterState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return model.AllFilters(), nil
	case "none":
		return model.NoFilters(), nil
	}
	var cats []model.Category
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := model.ParseCategory(part)
		if err != nil {
			return model.FilterState{}, err
		}
		cats = append(cats, c)
	}
	return model.Only(cats...), nil
}

// localDataset returns the dataset path when it is a local file that can be
// watched.
func localDataset(location string) (string, bool) {
	if location == "" || strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return "", false
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", false
	}
	return abs, true
}

func (a *app) printMetrics(cmd *cobra.Command) {
	stats := metrics.AllTimingStats()
	if len(stats) == 0 {
		return
	}
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprint(s.Count),
			fmt.Sprintf("%.2f", s.AvgMs),
			fmt.Sprintf("%.2f", s.MaxMs),
		})
	}
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out)
	table(out, []string{"metric", "count", "avg ms", "max ms"}, rows)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "galaxy %s\n", version.String())
		},
	}
}
