package hooks

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeHooks(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, ConfigDir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigDir, "hooks.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func pre(hooks ...Hook) Set  { return Set{Pre: hooks} }
func post(hooks ...Hook) Set { return Set{Post: hooks} }

func TestExportContextEnv(t *testing.T) {
	env := ExportContext{
		ExportPath:      "/tmp/galaxies",
		ExportFormat:    "png",
		Center:          "Abricot",
		IngredientCount: 42,
		Timestamp:       time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}.ToEnv()
	for _, want := range []string{
		"FG_EXPORT_PATH=/tmp/galaxies",
		"FG_EXPORT_FORMAT=png",
		"FG_CENTER=Abricot",
		"FG_INGREDIENT_COUNT=42",
		"FG_TIMESTAMP=2026-03-01T10:30:00Z",
	} {
		if !slices.Contains(env, want) {
			t.Errorf("env missing %s: %v", want, env)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	set, warnings, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !set.Empty() || len(warnings) != 0 {
		t.Errorf("no file should mean no hooks, got %+v %v", set, warnings)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeHooks(t, dir, `
hooks:
  pre-export:
    - command: test -n "$FG_EXPORT_PATH"
    - name: blank
      command: "  "
  post-export:
    - name: publish
      command: rsync -a "$FG_EXPORT_PATH" host:/srv
      timeout: 90
      env:
        TARGET: prod
`)
	set, warnings, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(set.Pre) != 1 {
		t.Fatalf("blank commands should be dropped, got %d pre hooks", len(set.Pre))
	}
	if h := set.Pre[0]; h.Name != "pre-export #1" || !h.fatal() || h.Timeout != DefaultTimeout {
		t.Errorf("pre hook defaults = %+v", h)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "#2") {
		t.Errorf("warnings = %v", warnings)
	}

	h := set.Phase(PostExport)[0]
	if h.fatal() || h.Timeout != 90*time.Second || h.Env["TARGET"] != "prod" {
		t.Errorf("post hook = %+v", h)
	}
	if set.Phase(Phase("during")) != nil {
		t.Error("unknown phase should have no hooks")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeHooks(t, dir, "hooks: [not, a, map")
	if _, _, err := Load(dir); err == nil {
		t.Error("expected a parse error")
	}
}

func TestHookTimeoutParsing(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"timeout: 5s", 5 * time.Second, false},
		{"timeout: 2", 2 * time.Second, false},
		{"timeout: 1.5", 1500 * time.Millisecond, false},
		{"timeout: soon", 0, true},
		{"timeout: -3", 0, true},
		{"name: x", 0, false},
	}
	for _, tt := range tests {
		var h Hook
		err := yaml.Unmarshal([]byte("command: true\n"+tt.in), &h)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v", tt.in, err)
			continue
		}
		if h.Timeout != tt.want {
			t.Errorf("%q: timeout = %v, want %v", tt.in, h.Timeout, tt.want)
		}
	}
}

func TestExecutorStdoutAndEnv(t *testing.T) {
	t.Setenv("HOOK_TEST_BASE", "expanded")
	e := NewExecutor(pre(Hook{
		Name:    "env",
		Command: `echo "$FG_EXPORT_PATH $FG_INGREDIENT_COUNT $EXTRA"`,
		Env:     map[string]string{"EXTRA": "${HOOK_TEST_BASE}"},
		OnError: "fail",
	}), ExportContext{ExportPath: "out.svg", IngredientCount: 3})

	if err := e.RunPreExport(); err != nil {
		t.Fatal(err)
	}
	r := e.Results()[0]
	if !r.Success || r.Stdout != "out.svg 3 expanded" {
		t.Errorf("result = %+v", r)
	}
}

func TestPreExportStopsAtFailure(t *testing.T) {
	e := NewExecutor(pre(
		Hook{Name: "check", Command: "exit 3", OnError: "fail"},
		Hook{Name: "never", Command: "echo no", OnError: "fail"},
	), ExportContext{})
	err := e.RunPreExport()
	if err == nil || !strings.Contains(err.Error(), "check") {
		t.Fatalf("err = %v", err)
	}
	if len(e.Results()) != 1 {
		t.Errorf("later hooks must not run, got %d results", len(e.Results()))
	}
}

func TestPreExportContinue(t *testing.T) {
	e := NewExecutor(pre(
		Hook{Name: "soft", Command: "exit 1", OnError: "continue"},
		Hook{Name: "next", Command: "echo ran", OnError: "fail"},
	), ExportContext{})
	if err := e.RunPreExport(); err != nil {
		t.Fatal(err)
	}
	if got := e.Results(); len(got) != 2 || got[1].Stdout != "ran" {
		t.Errorf("results = %+v", got)
	}
}

func TestPostExportRunsAll(t *testing.T) {
	e := NewExecutor(post(
		Hook{Name: "hard", Command: "exit 1", OnError: "fail"},
		Hook{Name: "soft", Command: "exit 1", OnError: "continue"},
		Hook{Name: "last", Command: "echo ok", OnError: "continue"},
	), ExportContext{})
	err := e.RunPostExport()
	if err == nil || !strings.Contains(err.Error(), "hard") || strings.Contains(err.Error(), "soft") {
		t.Errorf("err = %v", err)
	}
	if got := e.Results(); len(got) != 3 || got[2].Stdout != "ok" {
		t.Errorf("results = %+v", got)
	}
}

func TestExecutorTimeout(t *testing.T) {
	e := NewExecutor(pre(Hook{Name: "slow", Command: "sleep 5", Timeout: 100 * time.Millisecond, OnError: "fail"}), ExportContext{})
	if err := e.RunPreExport(); err == nil {
		t.Fatal("expected a timeout")
	}
	r := e.Results()[0]
	if r.Success || r.Duration < 100*time.Millisecond || !strings.Contains(r.Error.Error(), "timed out") {
		t.Errorf("result = %+v", r)
	}
}

func TestExecutorMissingCommand(t *testing.T) {
	e := NewExecutor(pre(Hook{Name: "missing", Command: "no-such-command-fg", OnError: "fail"}), ExportContext{})
	if err := e.RunPreExport(); err == nil {
		t.Fatal("expected an error")
	}
	if r := e.Results()[0]; r.Stderr == "" {
		t.Error("shell error should be captured")
	}
}

func TestSummary(t *testing.T) {
	e := NewExecutor(Set{
		Pre:  []Hook{{Name: "ok", Command: "true", OnError: "fail"}},
		Post: []Hook{{Name: "noisy", Command: "printf '%0300d' 0 1>&2; exit 1", OnError: "continue"}},
	}, ExportContext{})
	_ = e.RunPreExport()
	_ = e.RunPostExport()

	s := e.Summary()
	if !strings.HasPrefix(s, "hooks: 1 succeeded, 1 failed") {
		t.Errorf("summary = %q", s)
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, "stderr:") && (len(line) > 230 || !strings.HasSuffix(line, "...")) {
			t.Errorf("stderr line not truncated: %d bytes", len(line))
		}
	}
	if NewExecutor(Set{}, ExportContext{}).Summary() != "" {
		t.Error("no runs should give an empty summary")
	}
}

func TestRunHooks(t *testing.T) {
	dir := t.TempDir()
	if e, err := RunHooks(dir, ExportContext{}, false); e != nil || err != nil {
		t.Errorf("no config: %v, %v", e, err)
	}
	writeHooks(t, dir, "hooks:\n  post-export:\n    - command: echo done\n")
	if e, err := RunHooks(dir, ExportContext{}, true); e != nil || err != nil {
		t.Errorf("disabled: %v, %v", e, err)
	}
	e, err := RunHooks(dir, ExportContext{}, false)
	if err != nil || e == nil {
		t.Fatalf("RunHooks = %v, %v", e, err)
	}
	if len(e.Results()) != 0 {
		t.Error("nothing should run before the export")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdefghijklmnopqrstuvwxyz", 8, "abcde..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q", tt.in, tt.n, got)
		}
	}
}
