package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/foodgalaxy/pkg/galaxy"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellGrid
	cellLink
	cellLabel
	cellNode
	cellCenter
	cellCenterLabel
	cellHighlight
)

const (
	runeGrid     = '·'
	runeLink     = '∙'
	runeNode     = '●'
	runeTerminal = '○'
	runeCenter   = '░'
)

type cell struct {
	r    rune // 0 marks the second half of a wide rune
	kind cellKind
	cat  model.Category
}

// Canvas rasterizes galaxy frames into terminal cells.
type Canvas struct {
	cols, rows int
	cells      []cell
}

// NewCanvas creates a cols x rows canvas.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the canvas size and clears it.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.cols, c.rows = cols, rows
	c.cells = make([]cell, cols*rows)
	c.clear()
}

// Size returns the canvas size in cells.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// PixelSize is the galaxy viewport that the canvas covers.
func (c *Canvas) PixelSize() (w, h float64) {
	return float64(c.cols) * CellWidth, float64(c.rows) * CellHeight
}

// ToCell maps a screen pixel to the cell that contains it.
func ToCell(p layout.Point) (col, row int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

// ToPixel maps a cell to the screen pixel at its middle.
func ToPixel(col, row int) layout.Point {
	return layout.Point{X: (float64(col) + 0.5) * CellWidth, Y: (float64(row) + 0.5) * CellHeight}
}

func (c *Canvas) clear() {
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
}

func (c *Canvas) in(col, row int) bool {
	return col >= 0 && row >= 0 && col < c.cols && row < c.rows
}

func (c *Canvas) writable(col, row int, kind cellKind) bool {
	return c.in(col, row) && (kind == cellHighlight || c.cells[row*c.cols+col].kind <= kind)
}

func (c *Canvas) set(col, row int, r rune, kind cellKind, cat model.Category) {
	if !c.writable(col, row, kind) {
		return
	}
	cur := &c.cells[row*c.cols+col]
	// overwriting half of a wide rune blanks the other half
	if cur.r == 0 && col > 0 {
		c.cells[row*c.cols+col-1] = cell{r: ' '}
	} else if r != 0 && runewidth.RuneWidth(cur.r) == 2 && col+1 < c.cols {
		c.cells[row*c.cols+col+1] = cell{r: ' '}
	}
	*cur = cell{r: r, kind: kind, cat: cat}
}

// At returns the rune drawn at (col, row).
func (c *Canvas) At(col, row int) rune {
	if !c.in(col, row) {
		return 0
	}
	return c.cells[row*c.cols+col].r
}

// Draw renders f onto the canvas, replacing what was there.
func (c *Canvas) Draw(f galaxy.Frame) {
	c.clear()
	t := f.Transform
	if t.K <= 0 {
		t.K = 1
	}

	c.drawGrid(f)

	pos := make(map[string]layout.Point, len(f.Nodes))
	byID := make(map[string]*layout.Node, len(f.Nodes))
	for _, n := range f.Nodes {
		if !n.Finite() {
			continue
		}
		pos[n.ID] = t.Apply(layout.Point{X: n.X, Y: n.Y})
		byID[n.ID] = n
	}

	for _, l := range f.Links {
		a, ok1 := pos[l.Source]
		b, ok2 := pos[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		c0, r0 := ToCell(a)
		c1, r1 := ToCell(b)
		c.line(c0, r0, c1, r1, byID[l.Target].Category)
	}

	for _, n := range f.Nodes {
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		col, row := ToCell(p)
		r := n.Radius * t.K
		if n.IsCenter() {
			c.disk(col, row, r)
			c.label(col, row, n.ID, cellCenterLabel, model.CategoryMain)
			continue
		}

		glyph := runeNode
		if n.IsTerminal() {
			glyph = runeTerminal
		}
		kind := cellNode
		if n.ID == f.Highlighted {
			kind = cellHighlight
		}
		c.set(col, row, glyph, kind, n.Category)

		// label sits radius + 8 below the node
		dy := int(math.Round((r + 8) / CellHeight))
		if dy < 1 {
			dy = 1
		}
		c.label(col, row+dy, n.ID, cellLabel, n.Category)
	}
}

func (c *Canvas) drawGrid(f galaxy.Frame) {
	bg := f.Background
	if bg.CellSize < 2*CellWidth {
		return
	}
	w, h := c.PixelSize()
	for x := math.Mod(bg.OffsetX, bg.CellSize); x < w; x += bg.CellSize {
		if x < 0 {
			continue
		}
		for y := math.Mod(bg.OffsetY, bg.CellSize); y < h; y += bg.CellSize {
			if y < 0 {
				continue
			}
			col, row := ToCell(layout.Point{X: x, Y: y})
			c.set(col, row, runeGrid, cellGrid, "")
		}
	}
}

// line draws a Bresenham segment without its end points.
func (c *Canvas) line(c0, r0, c1, r1 int, cat model.Category) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	err := dc + dr
	col, row := c0, r0
	for steps := 0; steps < c.cols+c.rows+dc-dr; steps++ {
		if col == c1 && row == r1 {
			return
		}
		if col != c0 || row != r0 {
			c.set(col, row, runeLink, cellLink, cat)
		}
		e2 := 2 * err
		if e2 >= dr {
			err += dr
			col += sc
		}
		if e2 <= dc {
			err += dc
			row += sr
		}
	}
}

// disk fills the ellipse covering a circle of radius r pixels.
func (c *Canvas) disk(col, row int, r float64) {
	rc := math.Max(r/CellWidth, 0.5)
	rr := math.Max(r/CellHeight, 0.5)
	for dr := -int(rr); dr <= int(rr); dr++ {
		for dc := -int(rc); dc <= int(rc); dc++ {
			x, y := float64(dc)/rc, float64(dr)/rr
			if x*x+y*y <= 1 {
				c.set(col+dc, row+dr, runeCenter, cellCenter, model.CategoryMain)
			}
		}
	}
}

// label writes s centered on col.
func (c *Canvas) label(col, row int, s string, kind cellKind, cat model.Category) {
	start := col - runewidth.StringWidth(s)/2
	x := start
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > c.cols {
			return
		}
		if x >= 0 && c.writable(x, row, kind) && (w == 1 || c.writable(x+1, row, kind)) {
			c.set(x, row, r, kind, cat)
			if w == 2 {
				c.set(x+1, row, 0, kind, cat)
			}
		}
		x += w
	}
}

// Text returns the canvas without styling.
func (c *Canvas) Text() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			if r := c.cells[row*c.cols+col].r; r != 0 {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

// Render returns the canvas with t's styles applied, one run per style.
func (c *Canvas) Render(t Theme) string {
	var sb strings.Builder
	var run strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		var cur lipgloss.Style
		var curKey styleKey
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if curKey.kind == cellEmpty {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(cur.Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if cl.r == 0 {
				continue
			}
			key := styleKey{cl.kind, cl.cat}
			if col == 0 || key != curKey {
				flush()
				curKey = key
				cur = t.cellStyle(cl)
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return sb.String()
}

type styleKey struct {
	kind cellKind
	cat  model.Category
}

func (t Theme) cellStyle(cl cell) lipgloss.Style {
	switch cl.kind {
	case cellGrid:
		return t.Grid
	case cellLink:
		return t.LinkStyle(cl.cat)
	case cellNode, cellCenter:
		return t.CategoryStyle(cl.cat)
	case cellLabel:
		return t.Status
	case cellCenterLabel:
		return t.Base.Bold(true)
	case cellHighlight:
		return t.Selected.Foreground(t.CategoryStyle(cl.cat).GetForeground())
	}
	return t.Base
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
