package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/foodgalaxy/internal/datasource"
	"github.com/vanderheijden86/foodgalaxy/pkg/export"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

func fixtureItems() []model.Ingredient {
	abricot := model.Ingredient{Name: "Abricot", Type: "Fruit", FlavorFamily: "Fruité"}
	abricot.Associations.Set(model.CategorySavory, []string{"Porc"})
	abricot.Associations.Set(model.CategorySweet, []string{"Vanille", "Miel"})
	vanille := model.Ingredient{Name: "Vanille", Type: "Épice"}
	vanille.Associations.Set(model.CategorySweet, []string{"Abricot"})
	return []model.Ingredient{abricot, vanille, {Name: "Miel", Type: "Sucrant"}}
}

// writeFixture writes the fixture dataset as JSON and returns its path.
func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := export.SaveDataset(context.Background(), path, "json", fixtureItems()); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"tui": false, "window": false, "snapshot": false, "export": false, "pick": false, "list": false, "version": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		in      string
		want    model.FilterState
		wantErr bool
	}{
		{"", model.AllFilters(), false},
		{"all", model.AllFilters(), false},
		{"none", model.NoFilters(), false},
		{"sale,vin", model.Only(model.CategorySavory, model.CategoryWine), false},
		{"sucré, bière,", model.Only(model.CategorySweet, model.CategoryBeerCider), false},
		{"sale,soup", model.FilterState{}, true},
	}
	for _, tt := range tests {
		got, err := parseFilters(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFilters(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseFilters(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLocalDataset(t *testing.T) {
	if _, ok := localDataset(""); ok {
		t.Error("empty location is not watchable")
	}
	if _, ok := localDataset("https://example.com/data.json"); ok {
		t.Error("URLs are not watchable")
	}
	p, ok := localDataset("data.json")
	if !ok || !filepath.IsAbs(p) {
		t.Errorf("localDataset = %q, %v", p, ok)
	}
}

func TestCenterOf(t *testing.T) {
	ds := model.NewDataset(fixtureItems())
	if ing, err := centerOf(ds, ""); err != nil || ing.Name != "Abricot" {
		t.Errorf("default center = %v, %v", ing, err)
	}
	if ing, err := centerOf(ds, "Miel"); err != nil || ing.Name != "Miel" {
		t.Errorf("Miel = %v, %v", ing, err)
	}
	if _, err := centerOf(ds, "Porc"); err == nil {
		t.Error("terminal names cannot be centers")
	}
}

func TestSnapshotName(t *testing.T) {
	tests := map[string]string{
		"Abricot":      "abricot",
		"Vin jaune":    "vin-jaune",
		"AC/DC":        "ac-dc",
		"  ":           "galaxy",
		"Crème brûlée": "crème-brûlée",
	}
	for in, want := range tests {
		if got := snapshotName(in); got != want {
			t.Errorf("snapshotName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListRows(t *testing.T) {
	ds := model.NewDataset(fixtureItems())
	rows := listRows(ds.All(), ds, func(n string) bool { return n == "Miel" })
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][4] != "3 (2 explorables)" {
		t.Errorf("Abricot count = %q", rows[0][4])
	}
	if rows[2][0] != "★" || rows[2][4] != "0" {
		t.Errorf("Miel row = %v", rows[2])
	}
}

func TestTableAligns(t *testing.T) {
	var buf bytes.Buffer
	table(&buf, []string{"nom", "type"}, [][]string{{"Épice", "x"}, {"Abricot", "y"}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	col := func(line, s string) int { return runewidth.StringWidth(line[:strings.Index(line, s)]) }
	if col(lines[2], "x") != col(lines[3], "y") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "galaxy v") {
		t.Errorf("output = %q", out)
	}
}

func TestListCommand(t *testing.T) {
	data := writeFixture(t)
	out, err := runCmd(t, "--dataset", data, "list", "--search", "an")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Vanille") || strings.Contains(out, "Abricot") {
		t.Errorf("unexpected list output:\n%s", out)
	}
}

func TestSnapshotCommand(t *testing.T) {
	data := writeFixture(t)
	out := filepath.Join(t.TempDir(), "abricot.svg")
	stdout, err := runCmd(t, "--dataset", data, "--seed", "3", "snapshot", "Abricot", "-o", out, "--ticks", "50", "--markdown")
	if err != nil {
		t.Fatal(err)
	}
	svg, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "Vanille") {
		t.Error("snapshot should draw the satellites")
	}
	md, err := os.ReadFile(strings.TrimSuffix(out, ".svg") + ".md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(md), "# Abricot") {
		t.Errorf("markdown sheet starts with %q", strings.SplitN(string(md), "\n", 2)[0])
	}
	if !strings.Contains(stdout, out) {
		t.Errorf("stdout should name the file: %q", stdout)
	}

	if _, err := runCmd(t, "--dataset", data, "snapshot", "Porc", "-o", out); err == nil {
		t.Error("snapshot of a terminal ingredient should fail")
	}
}

func TestExportDatasetCommand(t *testing.T) {
	data := writeFixture(t)
	out := filepath.Join(t.TempDir(), "copy.toml")
	if _, err := runCmd(t, "--dataset", data, "export", "-o", out); err != nil {
		t.Fatal(err)
	}
	items, src := datasource.ReadSource(context.Background(), out, nil)
	if !src.Valid() || len(items) != 3 {
		t.Fatalf("round trip gave %d items (%v)", len(items), src.Err)
	}
}

func TestExportImagesCommand(t *testing.T) {
	data := writeFixture(t)
	dir := filepath.Join(t.TempDir(), "img")
	stdout, err := runCmd(t, "--dataset", data, "--seed", "1", "export", "--format", "svg", "-o", dir, "-q", "--width", "400", "--height", "300")
	if err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d images", len(entries))
	}
	if strings.Contains(stdout, "[1/3]") {
		t.Error("-q should hide progress")
	}
}

func TestExportMarkdownCommand(t *testing.T) {
	data := writeFixture(t)
	dir := filepath.Join(t.TempDir(), "md")
	if _, err := runCmd(t, "--dataset", data, "export", "--format", "md", "-o", dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "002-vanille.md")); err != nil {
		t.Error(err)
	}
}

func TestBadFilterFlag(t *testing.T) {
	if _, err := runCmd(t, "--filters", "soup", "version"); err == nil {
		t.Error("unknown category should fail")
	}
}

func TestExportRunsHooks(t *testing.T) {
	data := writeFixture(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.MkdirAll(".foodgalaxy", 0o755); err != nil {
		t.Fatal(err)
	}
	hooksYAML := `hooks:
  post-export:
    - name: marker
      command: echo "$FG_EXPORT_FORMAT $FG_INGREDIENT_COUNT" > marker.txt
`
	if err := os.WriteFile(filepath.Join(".foodgalaxy", "hooks.yaml"), []byte(hooksYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCmd(t, "--dataset", data, "export", "-o", "out.json"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "marker.txt"))
	if err != nil {
		t.Fatalf("post-export hook did not run: %v", err)
	}
	if strings.TrimSpace(string(got)) != "json 3" {
		t.Errorf("marker = %q", got)
	}

	os.Remove(filepath.Join(dir, "marker.txt"))
	if _, err := runCmd(t, "--dataset", data, "export", "-o", "out.json", "--no-hooks"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "marker.txt")); err == nil {
		t.Error("--no-hooks should skip hooks")
	}
}

func TestPreExportHookBlocksExport(t *testing.T) {
	data := writeFixture(t)
	dir := t.TempDir()
	t.Chdir(dir)
	os.MkdirAll(".foodgalaxy", 0o755)
	os.WriteFile(filepath.Join(".foodgalaxy", "hooks.yaml"), []byte("hooks:\n  pre-export:\n    - command: exit 1\n"), 0o644)

	if _, err := runCmd(t, "--dataset", data, "export", "-o", "out.json"); err == nil {
		t.Fatal("failing pre-export hook should abort")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.json")); err == nil {
		t.Error("export should not be written")
	}
}

func TestDefaultChoice(t *testing.T) {
	ds := model.NewDataset(fixtureItems())
	c := defaultChoice(ds, "Vanille", model.Only(model.CategoryWine))
	if c.Center != "Vanille" || c.Action != pickTUI {
		t.Errorf("choice = %+v", c)
	}
	if len(c.Categories) != 1 || c.Categories[0] != model.CategoryWine {
		t.Errorf("categories = %v", c.Categories)
	}
	if c := defaultChoice(ds, "Porc", model.AllFilters()); c.Center != "Abricot" {
		t.Errorf("unknown default should fall back, got %q", c.Center)
	}
}
