// Package hooks runs user commands around galaxy exports.
//
// Hooks live in .foodgalaxy/hooks.yaml under the directory the export runs
// from:
//
//	hooks:
//	  pre-export:
//	    - command: test -d "$(dirname "$FG_EXPORT_PATH")"
//	  post-export:
//	    - name: publish
//	      command: rsync -a "$FG_EXPORT_PATH" host:/srv/galaxies
//	      timeout: 2m
//
// A failing pre-export hook cancels the export unless its on_error is
// "continue". Post-export hooks only warn unless on_error is "fail".
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase says when a hook runs.
type Phase string

const (
	PreExport  Phase = "pre-export"
	PostExport Phase = "post-export"
)

const (
	// ConfigDir is the directory holding hooks.yaml.
	ConfigDir  = ".foodgalaxy"
	configFile = "hooks.yaml"

	DefaultTimeout = 30 * time.Second

	onErrorFail     = "fail"
	onErrorContinue = "continue"
)

// Hook is one shell command.
type Hook struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Timeout time.Duration     `yaml:"-"`
	Env     map[string]string `yaml:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty"`
}

// UnmarshalYAML accepts timeouts as durations ("90s") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type plain Hook
	if err := node.Decode((*plain)(h)); err != nil {
		return err
	}
	var raw struct {
		Timeout string `yaml:"timeout"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	d, err := parseTimeout(raw.Timeout)
	if err != nil {
		return err
	}
	h.Timeout = d
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// fatal reports whether a failure of h should fail its phase.
func (h Hook) fatal() bool { return h.OnError == onErrorFail }

// Set is the hooks configured for a project.
type Set struct {
	Pre  []Hook `yaml:"pre-export,omitempty"`
	Post []Hook `yaml:"post-export,omitempty"`
}

// Empty reports whether no hook is configured.
func (s Set) Empty() bool { return len(s.Pre) == 0 && len(s.Post) == 0 }

// Phase returns the hooks of phase p.
func (s Set) Phase(p Phase) []Hook {
	switch p {
	case PreExport:
		return s.Pre
	case PostExport:
		return s.Post
	}
	return nil
}

// Load reads projectDir/.foodgalaxy/hooks.yaml. A missing file yields an
// empty set. Hooks without a command are dropped with a warning; the rest
// get their defaults filled in.
func Load(projectDir string) (Set, []string, error) {
	path := filepath.Join(projectDir, ConfigDir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Set{}, nil, nil
	}
	if err != nil {
		return Set{}, nil, fmt.Errorf("reading hooks: %w", err)
	}

	var doc struct {
		Hooks Set `yaml:"hooks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Set{}, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var warnings []string
	set := Set{
		Pre:  withDefaults(doc.Hooks.Pre, PreExport, &warnings),
		Post: withDefaults(doc.Hooks.Post, PostExport, &warnings),
	}
	return set, warnings, nil
}

func withDefaults(in []Hook, phase Phase, warnings *[]string) []Hook {
	out := make([]Hook, 0, len(in))
	for i, h := range in {
		if strings.TrimSpace(h.Command) == "" {
			*warnings = append(*warnings, fmt.Sprintf("%s hook #%d has no command, ignored", phase, i+1))
			continue
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s #%d", phase, i+1)
		}
		if h.Timeout <= 0 {
			h.Timeout = DefaultTimeout
		}
		if h.OnError == "" {
			h.OnError = onErrorContinue
			if phase == PreExport {
				h.OnError = onErrorFail
			}
		}
		out = append(out, h)
	}
	return out
}

// ExportContext describes the export a hook runs around.
type ExportContext struct {
	ExportPath      string
	ExportFormat    string
	Center          string // empty for batch exports
	IngredientCount int
	Timestamp       time.Time
}

// ToEnv returns the FG_* variables handed to every hook.
func (c ExportContext) ToEnv() []string {
	return []string{
		"FG_EXPORT_PATH=" + c.ExportPath,
		"FG_EXPORT_FORMAT=" + c.ExportFormat,
		"FG_CENTER=" + c.Center,
		"FG_INGREDIENT_COUNT=" + strconv.Itoa(c.IngredientCount),
		"FG_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}
