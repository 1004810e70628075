package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/foodgalaxy/internal/window"
)

func (a *app) windowCmd() *cobra.Command {
	var (
		width, height int
		noNebula      bool
		noWatch       bool
	)
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Open the galaxy in a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if width > 0 {
				a.cfg.Window.Width = width
			}
			if height > 0 {
				a.cfg.Window.Height = height
			}
			if noNebula {
				a.cfg.Window.Nebula = false
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
			opts := window.Options{
				Dataset: ds,
				Config:  a.cfg,
				Seed:    a.seed,
				Reload:  a.reloadFunc(),
			}
			if path, ok := localDataset(a.cfg.Dataset); ok && a.cfg.UI.WatchDataset && !noWatch {
				w, err := startWatcher(ctx, path)
				if err != nil {
					warn.Fprintf(os.Stderr, "galaxy: not watching %s: %v\n", path, err)
				} else {
					defer w.Close()
					opts.Watcher = w
				}
			}
			return window.Run(opts)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "window width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "window height in pixels")
	cmd.Flags().BoolVar(&noNebula, "no-nebula", false, "plain background")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the dataset file changes")
	return cmd
}
