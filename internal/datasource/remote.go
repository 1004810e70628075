package datasource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
)

// maxRemoteSize caps the body read from a dataset URL.
const maxRemoteSize = 32 << 20

// StaleError is returned with a cached copy served because the download
// failed.
type StaleError struct {
	URL string
	Err error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s: serving cached copy: %v", e.URL, e.Err)
}

func (e *StaleError) Unwrap() error { return e.Err }

// Fetcher downloads JSON datasets over http(s) and keeps the last good copy
// of each URL in a cache directory.
type Fetcher struct {
	Client   *http.Client
	CacheDir string
}

// NewFetcher returns a Fetcher with a 10 second timeout.
func NewFetcher(cacheDir string) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 10 * time.Second},
		CacheDir: cacheDir,
	}
}

// Fetch downloads url. When the request fails and url has a cached copy,
// the copy is returned with a *StaleError wrapping the request error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := f.get(ctx, url)
	if err == nil {
		return data, nil
	}
	if cached, cerr := f.cached(url); cerr == nil {
		debug.Log("datasource: %s unreachable, using cache: %v", url, err)
		return cached, &StaleError{URL: url, Err: err}
	}
	return nil, err
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return data, nil
}

// Remember caches data as the last good download of url.
func (f *Fetcher) Remember(url string, data []byte) {
	if f.CacheDir == "" {
		return
	}
	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		debug.Log("datasource: cache dir: %v", err)
		return
	}
	path := f.cachePath(url)
	tmp, err := os.CreateTemp(f.CacheDir, filepath.Base(path)+".*.tmp")
	if err != nil {
		debug.Log("datasource: cache write: %v", err)
		return
	}
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		debug.Log("datasource: cache write: %v", err)
		os.Remove(tmp.Name())
	}
}

// cachePath names the cache file of url by its sha256.
func (f *Fetcher) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.CacheDir, hex.EncodeToString(sum[:])+".json")
}

func (f *Fetcher) cached(url string) ([]byte, error) {
	if f.CacheDir == "" {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(f.cachePath(url))
}
