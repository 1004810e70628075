package export

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/force"
	"github.com/vanderheijden86/foodgalaxy/pkg/galaxy"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// DefaultMaxTicks bounds a batch render that never settles.
const DefaultMaxTicks = 600

// BatchOptions controls the export of one image per ingredient.
type BatchOptions struct {
	Dir         string
	Format      string // "svg" (default) or "png"
	Width       int
	Height      int
	Filters     *model.FilterState // nil shows every category
	Params      force.Params
	Seed        int64
	MaxTicks    int
	Concurrency int
	Progress    func(done, total int, name string)
}

// BatchResult lists the files written, in dataset order.
type BatchResult struct {
	Files []string
}

// ExportAll renders the settled galaxy of every ingredient in ds. Each
// ingredient gets its own session; sessions run concurrently and share only
// the read-only dataset.
func ExportAll(ctx context.Context, ds *model.Dataset, opts BatchOptions) (BatchResult, error) {
	defer debug.LogEnterExit("export.ExportAll")()
	if ds.Len() == 0 {
		return BatchResult{}, errNoNodes
	}
	format := opts.Format
	if format == "" {
		format = "svg"
	}
	if _, _, err := snapshotFormat(format, "x."+format); err != nil {
		return BatchResult{}, err
	}
	if opts.MaxTicks <= 0 {
		opts.MaxTicks = DefaultMaxTicks
	}
	if opts.Width <= 0 {
		opts.Width = int(galaxy.DefaultWidth)
	}
	if opts.Height <= 0 {
		opts.Height = int(galaxy.DefaultHeight)
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	items := ds.All()
	files := make([]string, len(items))
	var (
		mu   sync.Mutex
		done int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ing := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(opts.Dir, fmt.Sprintf("%03d-%s.%s", i+1, slug(ing.Name), format))
			if err := exportOne(ds, ing, path, format, opts); err != nil {
				return fmt.Errorf("export %q: %w", ing.Name, err)
			}
			files[i] = path

			// Progress is called under mu, so calls never overlap and done
			// only grows.
			mu.Lock()
			defer mu.Unlock()
			done++
			if opts.Progress != nil {
				opts.Progress(done, len(items), ing.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}
	debug.Log("export: wrote %d %s snapshots to %s", len(files), format, opts.Dir)
	return BatchResult{Files: files}, nil
}

func exportOne(ds *model.Dataset, ing model.Ingredient, path, format string, opts BatchOptions) error {
	sopts := []galaxy.Option{
		galaxy.WithSize(float64(opts.Width), float64(opts.Height)),
		galaxy.WithSeed(opts.Seed),
	}
	if opts.Filters != nil {
		sopts = append(sopts, galaxy.WithFilters(*opts.Filters))
	}
	if opts.Params != (force.Params{}) {
		sopts = append(sopts, galaxy.WithParams(opts.Params))
	}
	s := galaxy.New(ds, ing, sopts...)
	defer s.Simulation().Dispose()
	s.Settle(opts.MaxTicks)

	return SaveSnapshot(SnapshotOptions{
		Path:   path,
		Format: format,
		Width:  opts.Width,
		Height: opts.Height,
		Frame:  s.Current(),
	})
}
