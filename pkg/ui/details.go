package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/foodgalaxy/pkg/export"
	"github.com/vanderheijden86/foodgalaxy/pkg/galaxy"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
)

// DetailPanel renders the ingredient details with glamour. Renders are
// cached per ingredient and width.
type DetailPanel struct {
	style    string
	width    int
	renderer *glamour.TermRenderer

	cacheKey string
	cached   string
}

// NewDetailPanel creates a panel. style is a glamour standard style name
// ("dark", "light", ...) or "" / "auto" for terminal detection.
func NewDetailPanel(style string, width int) *DetailPanel {
	p := &DetailPanel{style: style}
	p.SetWidth(width)
	return p
}

// SetWidth changes the wrap width and drops the cache.
func (p *DetailPanel) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == p.width && p.renderer != nil {
		return
	}
	p.width = width
	p.cacheKey = ""

	styleOpt := glamour.WithAutoStyle()
	if p.style != "" && p.style != "auto" {
		styleOpt = glamour.WithStandardStyle(p.style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		p.renderer = nil
		return
	}
	p.renderer = r
}

// Markdown returns the raw markdown for panel.
func (p *DetailPanel) Markdown(panel galaxy.Panel, lookup layout.Lookup) string {
	if panel.Data == nil {
		// terminus: nothing beyond the name is known
		return "# " + panel.Name + "\n\n*Terminus : pas d'autres associations disponibles.*\n"
	}
	md := export.IngredientMarkdown(*panel.Data, lookup)
	if !panel.IsCenter {
		md += "\n---\n\n*Entrée pour centrer la galaxie sur " + panel.Name + ".*\n"
	}
	return md
}

// Render returns the styled panel body.
func (p *DetailPanel) Render(panel galaxy.Panel, lookup layout.Lookup) string {
	key := panelKey(panel)
	if key == p.cacheKey {
		return p.cached
	}
	md := p.Markdown(panel, lookup)
	out := md
	if p.renderer != nil {
		if rendered, err := p.renderer.Render(md); err == nil {
			out = rendered
		}
	}
	// Strip trailing whitespace/newlines that glamour adds
	out = strings.TrimRight(out, " \n")
	p.cacheKey, p.cached = key, out
	return out
}

func panelKey(panel galaxy.Panel) string {
	var typ string
	if panel.Data != nil {
		typ = panel.Data.Type + "|" + panel.Data.Description + "|" + panel.Data.Recipe.Details
	}
	center := "s"
	if panel.IsCenter {
		center = "c"
	}
	return center + "|" + panel.Name + "|" + typ
}

// Invalidate drops the cache, for example after a dataset reload.
func (p *DetailPanel) Invalidate() { p.cacheKey = "" }
