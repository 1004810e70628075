// Package config loads and saves the galaxy configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/foodgalaxy/config.yaml
//   - Cache:  ~/.cache/foodgalaxy/ (last fetched remote dataset)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/foodgalaxy/pkg/force"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
	"github.com/vanderheijden86/foodgalaxy/pkg/viewport"
)

const appName = "foodgalaxy"

// ViewportConfig bounds pan/zoom.
type ViewportConfig struct {
	MinScale float64 `yaml:"min_scale"`
	MaxScale float64 `yaml:"max_scale"`
	GridSize float64 `yaml:"grid_size"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Theme        string        `yaml:"theme,omitempty"` // auto, dark, light
	WatchDataset bool          `yaml:"watch_dataset"`   // reload when the dataset file changes
}

// WindowConfig holds the desktop window settings.
type WindowConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Nebula bool `yaml:"nebula"` // draw the noise background
}

// Config is the top-level configuration.
type Config struct {
	// Dataset is a JSON, TOML or SQLite file, or an http(s) URL to a JSON
	// file. Empty means the embedded dataset.
	Dataset string `yaml:"dataset,omitempty"`
	// Sources are merged after Dataset; earlier names win.
	Sources []string `yaml:"sources,omitempty"`

	DefaultCenter string            `yaml:"default_center,omitempty"`
	Favorites     []string          `yaml:"favorites,omitempty"`
	Filters       model.FilterState `yaml:"filters"`
	Physics       force.Params      `yaml:"physics"`
	Viewport      ViewportConfig    `yaml:"viewport"`
	UI            UIConfig          `yaml:"ui"`
	Window        WindowConfig      `yaml:"window"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		DefaultCenter: model.DefaultCenterName,
		Filters:       model.AllFilters(),
		Physics:       force.DefaultParams(),
		Viewport: ViewportConfig{
			MinScale: viewport.DefaultMinScale,
			MaxScale: viewport.DefaultMaxScale,
			GridSize: viewport.DefaultGridSize,
		},
		UI: UIConfig{
			TickInterval: time.Second / 30,
			Theme:        "auto",
			WatchDataset: true,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
			Nebula: true,
		},
	}
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Viewport.MinScale <= 0 || c.Viewport.MaxScale < c.Viewport.MinScale {
		errs = append(errs, fmt.Errorf("viewport: scale extent [%g, %g] is empty", c.Viewport.MinScale, c.Viewport.MaxScale))
	}
	if c.UI.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("ui: tick_interval must be positive, got %v", c.UI.TickInterval))
	}
	switch c.UI.Theme {
	case "", "auto", "dark", "light":
	default:
		errs = append(errs, fmt.Errorf("ui: unknown theme %q", c.UI.Theme))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size %dx%d is invalid", c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}

// ViewportOptions converts the viewport section to controller options.
func (c Config) ViewportOptions() []viewport.Option {
	return []viewport.Option{
		viewport.WithScaleExtent(c.Viewport.MinScale, c.Viewport.MaxScale),
		viewport.WithGridSize(c.Viewport.GridSize),
	}
}

// IsFavorite reports whether name is a favorite ingredient.
func (c Config) IsFavorite(name string) bool {
	for _, f := range c.Favorites {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// ToggleFavorite adds or removes name from the favorites.
func (c *Config) ToggleFavorite(name string) {
	// copies of c may share the backing array, so never edit it in place
	for i, f := range c.Favorites {
		if strings.EqualFold(f, name) {
			c.Favorites = slices.Delete(slices.Clone(c.Favorites), i, i+1)
			return
		}
	}
	c.Favorites = append(slices.Clip(c.Favorites), name)
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns the XDG cache directory.
func CacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path. Keys missing from the file keep their
// defaults; a missing file yields DefaultConfig.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cfg.Dataset != "" && !isURL(cfg.Dataset) {
		cfg.Dataset = expandHome(cfg.Dataset)
	}
	for i, src := range cfg.Sources {
		if !isURL(src) {
			cfg.Sources[i] = expandHome(src)
		}
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a temporary file next to path and renames it
// over path, so readers never see a half-written file.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
