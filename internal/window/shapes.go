package window

import (
	"image/color"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
)

const (
	labelOffset = 8.0
	ringGap     = 4.0
	ringDash    = 3.0
	glowLayers  = 4
)

// Segment is a straight stroke from (X0, Y0) to (X1, Y1).
type Segment struct {
	X0, Y0, X1, Y1 float64
}

// DashedCircle splits a circle into dash-long strokes separated by equal
// gaps.
func DashedCircle(cx, cy, r, dash float64) []Segment {
	if r <= 0 || dash <= 0 {
		return nil
	}
	n := int(math.Floor(math.Pi * r / dash))
	if n < 2 {
		n = 2
	}
	step := 2 * math.Pi / float64(2*n)
	segs := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		a0 := float64(2*i) * step
		a1 := a0 + step
		segs = append(segs, Segment{
			X0: cx + r*math.Cos(a0), Y0: cy + r*math.Sin(a0),
			X1: cx + r*math.Cos(a1), Y1: cy + r*math.Sin(a1),
		})
	}
	return segs
}

// NodeColor parses the node colour, falling back to the category colour.
func NodeColor(n *layout.Node) color.RGBA {
	if c, err := category.ParseHex(n.Color); err == nil {
		return c
	}
	return category.RGBA(n.Category)
}

// WithAlpha returns c with alpha a, premultiplied as ebiten expects.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	f := float64(a) / 255
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: a,
	}
}

// WrapText breaks s into lines at most width cells wide. Words longer than
// width get a line of their own.
func WrapText(s string, width int) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var line string
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return lines
}
