package testutil

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// AssertNodeCount verifies the number of nodes in g.
func AssertNodeCount(t *testing.T, g layout.Graph, expected int) {
	t.Helper()
	if len(g.Nodes) != expected {
		t.Errorf("expected %d nodes, got %d (%v)", expected, len(g.Nodes), g.IDs())
	}
}

// AssertGraphShape verifies one center, unique ids and one link per
// satellite from the center.
func AssertGraphShape(t *testing.T, g layout.Graph) {
	t.Helper()
	seen := make(map[string]bool, len(g.Nodes))
	centers := 0
	for _, n := range g.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node id: %s", n.ID)
		}
		seen[n.ID] = true
		if n.IsCenter() {
			centers++
		}
	}
	if centers != 1 {
		t.Errorf("expected exactly one center, got %d", centers)
	}
	if len(g.Links) != len(g.Nodes)-1 {
		t.Errorf("expected %d links, got %d", len(g.Nodes)-1, len(g.Links))
	}
	c := g.Center()
	for _, l := range g.Links {
		if c != nil && l.Source != c.ID {
			t.Errorf("link %s->%s does not start at the center", l.Source, l.Target)
		}
		if !seen[l.Target] {
			t.Errorf("link target %s is not a node", l.Target)
		}
	}
}

// AssertFinite verifies every node has a finite position.
func AssertFinite(t *testing.T, nodes []*layout.Node) {
	t.Helper()
	for _, n := range nodes {
		if !n.Finite() {
			t.Errorf("node %s has non-finite position (%v, %v)", n.ID, n.X, n.Y)
		}
	}
}

// AssertAt verifies n sits within tol of p.
func AssertAt(t *testing.T, n *layout.Node, p layout.Point, tol float64) {
	t.Helper()
	if d := math.Hypot(n.X-p.X, n.Y-p.Y); d > tol {
		t.Errorf("node %s at (%.3f, %.3f), want (%.3f, %.3f) ± %v", n.ID, n.X, n.Y, p.X, p.Y, tol)
	}
}

// Snapshot copies node positions keyed by id.
func Snapshot(nodes []*layout.Node) map[string]layout.Point {
	out := make(map[string]layout.Point, len(nodes))
	for _, n := range nodes {
		out[n.ID] = layout.Point{X: n.X, Y: n.Y}
	}
	return out
}

// MaxDisplacement returns the largest distance a node moved since before.
func MaxDisplacement(before map[string]layout.Point, nodes []*layout.Node) float64 {
	max := 0.0
	for _, n := range nodes {
		p, ok := before[n.ID]
		if !ok {
			continue
		}
		if d := math.Hypot(n.X-p.X, n.Y-p.Y); d > max {
			max = d
		}
	}
	return max
}

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper. Setting GENERATE_GOLDEN
// rewrites the file instead of comparing.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual against the golden file.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()
	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		g.t.Fatalf("read golden file %s (run with GENERATE_GOLDEN=1 to create it): %v", path, err)
	}
	if string(expected) == actual {
		return
	}
	want := strings.Split(string(expected), "\n")
	got := strings.Split(actual, "\n")
	for i := 0; i < len(want) || i < len(got); i++ {
		var w, a string
		if i < len(want) {
			w = want[i]
		}
		if i < len(got) {
			a = got[i]
		}
		if w != a {
			g.t.Errorf("golden mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, w, a)
			return
		}
	}
}

// WriteDatasetFile writes items as a JSON dataset into dir and returns the
// file path.
func WriteDatasetFile(t *testing.T, dir string, items []model.Ingredient) string {
	t.Helper()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, ToJSON(items), 0o644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

// Names returns the ingredient names in order.
func Names(items []model.Ingredient) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}
