package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/galaxy"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/metrics"
)

// ErrUnsupportedFormat is returned for output formats the exporter cannot write.
var ErrUnsupportedFormat = errors.New("unsupported format")

var errNoNodes = errors.New("no nodes to export")

// SnapshotOptions controls a static galaxy render.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // Optional title; defaults to the center name
	Width  int
	Height int
	Frame  galaxy.Frame
}

// SaveSnapshot renders the frame to an SVG or PNG file.
func SaveSnapshot(opts SnapshotOptions) error {
	defer metrics.Timer(metrics.Snapshot)()

	if len(opts.Frame.Nodes) == 0 {
		return errNoNodes
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	format, path, err := snapshotFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	opts.Path = path

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	scene := buildScene(opts)
	switch format {
	case "svg":
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		if err := renderSVG(f, scene); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return renderPNG(opts.Path, scene)
	}
}

// WriteSVG renders the frame as SVG to w.
func WriteSVG(w io.Writer, opts SnapshotOptions) error {
	if len(opts.Frame.Nodes) == 0 {
		return errNoNodes
	}
	return renderSVG(w, buildScene(opts))
}

// snapshotFormat resolves the image format. A path without extension gets
// ".svg" appended.
func snapshotFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		case "":
			format = "svg"
			path += ".svg"
		default:
			return "", "", fmt.Errorf("%w %q (want svg or png)", ErrUnsupportedFormat, filepath.Ext(path))
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("%w %q (want svg or png)", ErrUnsupportedFormat, format)
	}
	return format, path, nil
}

// --- scene ------------------------------------------------------------------

type sceneNode struct {
	Name    string
	X, Y, R float64
	Fill    color.RGBA
	Center  bool
	HasData bool
}

type sceneLink struct {
	X1, Y1, X2, Y2 float64
	Stroke         color.RGBA
}

type scene struct {
	Width, Height int
	Title         string
	Subtitle      string
	Scale         float64
	Nodes         []sceneNode
	Links         []sceneLink
	Legend        []category.Sector
}

// buildScene projects the frame through its transform into image space.
func buildScene(opts SnapshotOptions) scene {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = int(galaxy.DefaultWidth)
	}
	if h <= 0 {
		h = int(galaxy.DefaultHeight)
	}
	t := opts.Frame.Transform
	if t.K <= 0 {
		t.K = 1
	}

	byID := make(map[string]*layout.Node, len(opts.Frame.Nodes))
	sc := scene{Width: w, Height: h, Scale: t.K, Legend: category.Sectors(category.DefaultAngles())}
	for _, n := range opts.Frame.Nodes {
		if !n.Finite() {
			continue
		}
		byID[n.ID] = n
		p := t.Apply(layout.Point{X: n.X, Y: n.Y})
		sc.Nodes = append(sc.Nodes, sceneNode{
			Name:    n.ID,
			X:       p.X,
			Y:       p.Y,
			R:       n.Radius * t.K,
			Fill:    category.RGBA(n.Category),
			Center:  n.IsCenter(),
			HasData: n.Data != nil,
		})
		if n.IsCenter() && sc.Title == "" {
			sc.Title = n.ID
		}
	}
	for _, l := range opts.Frame.Links {
		s, ok1 := byID[l.Source]
		d, ok2 := byID[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		a := t.Apply(layout.Point{X: s.X, Y: s.Y})
		b := t.Apply(layout.Point{X: d.X, Y: d.Y})
		stroke, err := category.ParseHex(l.Color)
		if err != nil {
			stroke = category.RGBA(d.Category)
		}
		sc.Links = append(sc.Links, sceneLink{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y, Stroke: stroke})
	}
	if strings.TrimSpace(opts.Title) != "" {
		sc.Title = opts.Title
	}
	sc.Subtitle = fmt.Sprintf("%d associations", len(sc.Links))
	return sc
}

// --- rendering --------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0x0b, 0x10, 0x20, 0xff}
	colorText     = color.RGBA{0xe2, 0xe8, 0xf0, 0xff}
	colorSubtle   = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colorLegendBG = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
)

// labelOffset is the distance from a node's edge to its label baseline.
const labelOffset = 8

func renderPNG(path string, sc scene) error {
	dc := gg.NewContext(sc.Width, sc.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, l := range sc.Links {
		dc.SetRGBA255(int(l.Stroke.R), int(l.Stroke.G), int(l.Stroke.B), 110)
		dc.SetLineWidth(1.5 * sc.Scale)
		dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()
	}

	for _, n := range sc.Nodes {
		if n.Center {
			// glow
			for i := 4; i >= 1; i-- {
				dc.SetRGBA255(int(n.Fill.R), int(n.Fill.G), int(n.Fill.B), 18*i)
				dc.DrawCircle(n.X, n.Y, n.R+float64(5-i)*6*sc.Scale)
				dc.Fill()
			}
		}
		dc.SetColor(n.Fill)
		dc.DrawCircle(n.X, n.Y, n.R)
		dc.Fill()
		if n.HasData && !n.Center {
			dc.SetColor(n.Fill)
			dc.SetLineWidth(1)
			dc.SetDash(3, 3)
			dc.DrawCircle(n.X, n.Y, n.R+4*sc.Scale)
			dc.Stroke()
			dc.SetDash()
		}
		dc.SetColor(colorText)
		if n.Center {
			dc.DrawStringAnchored(n.Name, n.X, n.Y, 0.5, 0.5)
		} else {
			dc.DrawStringAnchored(n.Name, n.X, n.Y+n.R+labelOffset, 0.5, 1)
		}
	}

	drawHeader(dc, sc)
	drawLegend(dc, sc)
	return dc.SavePNG(path)
}

func drawHeader(dc *gg.Context, sc scene) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(sc.Title, 24, 28, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(sc.Subtitle, 24, 46, 0, 0.5)
}

func drawLegend(dc *gg.Context, sc scene) {
	boxW, boxH := 170.0, 20.0+16*float64(len(sc.Legend))
	x := float64(sc.Width) - boxW - 20
	y := 20.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	dc.Fill()
	for i, s := range sc.Legend {
		rowY := y + 18 + float64(i)*16
		c, _ := category.ParseHex(s.Color)
		dc.SetColor(c)
		dc.DrawCircle(x+16, rowY, 5)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(s.Label, x+28, rowY, 0, 0.5)
	}
}

func renderSVG(w io.Writer, sc scene) error {
	canvas := svg.New(w)
	canvas.Start(sc.Width, sc.Height)
	canvas.Rect(0, 0, sc.Width, sc.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	canvas.Gid("links")
	for _, l := range sc.Links {
		canvas.Line(px(l.X1), px(l.Y1), px(l.X2), px(l.Y2),
			fmt.Sprintf("stroke:%s;stroke-opacity:0.45;stroke-width:%.1f", css(l.Stroke), 1.5*sc.Scale))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range sc.Nodes {
		x, y, r := px(n.X), px(n.Y), px(n.R)
		if n.Center {
			for i := 4; i >= 1; i-- {
				canvas.Circle(x, y, px(n.R+float64(5-i)*6*sc.Scale),
					fmt.Sprintf("fill:%s;fill-opacity:%.2f", css(n.Fill), 0.07*float64(i)))
			}
		}
		canvas.Circle(x, y, r, fmt.Sprintf("fill:%s", css(n.Fill)))
		if n.HasData && !n.Center {
			canvas.Circle(x, y, px(n.R+4*sc.Scale),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:1;stroke-dasharray:3,3", css(n.Fill)))
		}
		style := fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif;text-anchor:middle", css(colorText))
		if n.Center {
			canvas.Text(x, y+4, n.Name, style+";font-weight:bold")
		} else {
			canvas.Text(x, px(n.Y+n.R+labelOffset+10), n.Name, style)
		}
	}
	canvas.Gend()

	canvas.Text(24, 32, sc.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;font-weight:bold", css(colorText)))
	canvas.Text(24, 52, sc.Subtitle, fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", css(colorSubtle)))

	boxW := 170
	x := sc.Width - boxW - 20
	canvas.Roundrect(x, 20, boxW, 20+16*len(sc.Legend), 8, 8, fmt.Sprintf("fill:%s", css(colorLegendBG)))
	for i, s := range sc.Legend {
		rowY := 38 + i*16
		canvas.Circle(x+16, rowY, 5, fmt.Sprintf("fill:%s", s.Color))
		canvas.Text(x+28, rowY+4, s.Label, fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

// --- helpers ----------------------------------------------------------------

func px(v float64) int {
	return int(math.Round(v))
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// slug turns an ingredient name into a file name stem.
func slug(name string) string {
	s := strings.Map(foldAccent, strings.ToLower(name))
	s = strings.Trim(slugNonAlphanumericRegex.ReplaceAllString(s, "-"), "-")
	if s == "" {
		return "ingredient"
	}
	return s
}

func foldAccent(r rune) rune {
	switch r {
	case 'à', 'â', 'ä', 'á':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'î', 'ï', 'í':
		return 'i'
	case 'ô', 'ö', 'ó', 'œ':
		return 'o'
	case 'ù', 'û', 'ü', 'ú':
		return 'u'
	case 'ç':
		return 'c'
	}
	return r
}
