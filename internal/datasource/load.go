package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/metrics"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// Options configures Load.
type Options struct {
	// Primary replaces the embedded dataset when it loads to a non-empty
	// list. Any failure falls back to the embedded dataset.
	Primary string
	// Sources are merged after the primary dataset, in order; the first
	// record with a given name wins.
	Sources []string
	// Fetcher downloads URL sources. Nil uses NewFetcher("").
	Fetcher *Fetcher
	// Concurrency bounds parallel source loads (default 4).
	Concurrency int
}

// Report describes where the loaded records came from.
type Report struct {
	Primary  Source
	Fallback bool // the embedded dataset was used instead of Primary
	Sources  []Source
}

// Warnings returns the errors of sources that could not be used.
func (r Report) Warnings() []error {
	var errs []error
	if r.Fallback && r.Primary.Err != nil {
		errs = append(errs, r.Primary.Err)
	}
	if r.Primary.Stale != nil {
		errs = append(errs, r.Primary.Stale)
	}
	for _, s := range r.Sources {
		switch {
		case s.Err != nil:
			errs = append(errs, s.Err)
		case s.Stale != nil:
			errs = append(errs, s.Stale)
		}
	}
	return errs
}

// Load builds the dataset. It only fails when the result is empty or ctx is
// cancelled; unusable sources are recorded in the report.
func Load(ctx context.Context, opts Options) (*model.Dataset, Report, error) {
	defer metrics.Timer(metrics.DatasetLoad)()
	defer debug.LogEnterExit("datasource.Load")()

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher("")
	}

	var report Report
	items, src := ReadSource(ctx, opts.Primary, fetcher)
	report.Primary = src
	if !src.Valid() {
		if opts.Primary != "" {
			debug.Log("datasource: %s unusable, using embedded data: %v", opts.Primary, src.Err)
		}
		report.Fallback = opts.Primary != ""
		var err error
		items, err = Embedded()
		if err != nil {
			return nil, report, err
		}
	}
	ds := model.NewDataset(items)

	if len(opts.Sources) > 0 {
		limit := opts.Concurrency
		if limit <= 0 {
			limit = 4
		}
		results := make([][]model.Ingredient, len(opts.Sources))
		report.Sources = make([]Source, len(opts.Sources))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i, loc := range opts.Sources {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i], report.Sources[i] = ReadSource(gctx, loc, fetcher)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, report, fmt.Errorf("load sources: %w", err)
		}
		for _, r := range results {
			ds = ds.Merge(model.NewDataset(r))
		}
	}

	if ds.Len() == 0 {
		return nil, report, ErrEmptyDataset
	}
	debug.Log("datasource: loaded %d ingredients (fallback=%v, extra sources=%d)", ds.Len(), report.Fallback, len(opts.Sources))
	return ds, report, nil
}

// ReadSource reads one location. The returned Source carries any error.
func ReadSource(ctx context.Context, location string, fetcher *Fetcher) ([]model.Ingredient, Source) {
	src := Source{Location: location}
	kind, err := Detect(location)
	if err != nil {
		src.Err = err
		return nil, src
	}
	src.Kind = kind
	if location == "" {
		src.Location = string(KindEmbedded)
	}

	var items []model.Ingredient
	switch kind {
	case KindEmbedded:
		items, err = Embedded()
	case KindURL:
		items, err = readURL(ctx, location, fetcher)
	case KindSQLite:
		items, err = readSQLite(ctx, location)
	case KindJSON, KindTOML:
		items, err = readFile(location, kind)
	default:
		err = fmt.Errorf("%s: %w", location, ErrUnsupportedFormat)
	}

	if fi, statErr := os.Stat(location); statErr == nil {
		src.ModTime = fi.ModTime()
		src.Size = fi.Size()
	}
	var stale *StaleError
	if errors.As(err, &stale) && items != nil {
		src.Stale = err
		err = nil
	}
	if err == nil && len(items) == 0 {
		err = ErrEmptyDataset
	}
	if err != nil {
		src.Err = fmt.Errorf("%s: %w", src.Location, err)
		return nil, src
	}
	src.Count = len(items)
	return items, src
}

func readFile(path string, kind Kind) ([]model.Ingredient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if kind == KindTOML {
		return DecodeTOML(data)
	}
	return DecodeJSON(data)
}

func readSQLite(ctx context.Context, path string) ([]model.Ingredient, error) {
	r, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Load(ctx)
}

// readURL returns the fetch error alongside the items when they come from
// the cache.
func readURL(ctx context.Context, url string, f *Fetcher) ([]model.Ingredient, error) {
	data, fetchErr := f.Fetch(ctx, url)
	if data == nil {
		return nil, fetchErr
	}
	items, err := DecodeJSON(data)
	if err != nil {
		return nil, errors.Join(fetchErr, err)
	}
	if fetchErr == nil {
		f.Remember(url, data)
	}
	return items, fetchErr
}
