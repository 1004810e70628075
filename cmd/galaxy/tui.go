package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/foodgalaxy/pkg/config"
	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/ui"
	"github.com/vanderheijden86/foodgalaxy/pkg/watcher"
)

type tuiFlags struct {
	theme   string
	noWatch bool
}

func (a *app) tuiCmd() *cobra.Command {
	var f tuiFlags
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the galaxy in the terminal (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.theme, "theme", "", "auto, dark or light")
	cmd.Flags().BoolVar(&f.noWatch, "no-watch", false, "do not reload when the dataset file changes")
	return cmd
}

func (a *app) runTUI(ctx context.Context, f tuiFlags) error {
	if f.theme != "" {
		a.cfg.UI.Theme = f.theme
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}
	if a.center != "" {
		if _, err := centerOf(ds, a.center); err != nil {
			return err
		}
	}

	// stderr belongs to the alt screen while the program runs
	if debug.Enabled() {
		closeLog, err := redirectDebugLog()
		if err != nil {
			return err
		}
		defer closeLog()
	}

	opts := ui.Options{
		Dataset: ds,
		Config:  a.cfg,
		Save:    a.saveConfig,
		Reload:  a.reloadFunc(),
		Seed:    a.seed,
	}
	if path, ok := localDataset(a.cfg.Dataset); ok && a.cfg.UI.WatchDataset && !f.noWatch {
		w, err := startWatcher(ctx, path)
		if err != nil {
			warn.Fprintf(os.Stderr, "galaxy: not watching %s: %v\n", path, err)
		} else {
			defer w.Close()
			opts.Watcher = w
		}
	}
	return ui.Run(opts)
}

func startWatcher(ctx context.Context, path string) (*watcher.Watcher, error) {
	return watcher.Watch(ctx, path, watcher.WithOnError(func(err error) {
		debug.Log("watcher: %v", err)
	}))
}

func redirectDebugLog() (func(), error) {
	path := filepath.Join(config.CacheDir(), "debug.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
