package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// Cell geometry used to map terminal cells to galaxy pixels. A cell is about
// twice as tall as it is wide.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// Panel geometry.
const (
	SidePanelWidth    = 44
	SplitViewMinWidth = 100
)

// Adaptive palette for light and dark terminals.
var (
	ColorBgSubtle = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorText     = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}

	ColorTypeBadgeText = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
)

// RenderFilterChip renders the toggle chip of one category: its key, label
// and a filled or hollow dot.
func RenderFilterChip(t Theme, key int, c model.Category, on bool) string {
	dot := "○"
	style := t.Renderer.NewStyle().Foreground(ColorMuted)
	if on {
		dot = "●"
		style = t.CategoryStyle(c)
	}
	return style.Render(fmt.Sprintf("%d %s %s", key, dot, category.Label(c)))
}

// RenderTypeBadge returns the ingredient type as a small colored badge.
func RenderTypeBadge(t Theme, typ string) string {
	if strings.TrimSpace(typ) == "" {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(ColorTypeBadgeText).
		Background(t.Primary).
		Padding(0, 1).
		Render(typ)
}

// RenderKeyHint renders "key action" pairs for the footer.
func RenderKeyHint(t Theme, pairs ...string) string {
	keyStyle := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, keyStyle.Render(pairs[i])+" "+t.Status.Render(pairs[i+1]))
	}
	return strings.Join(parts, t.Status.Render(" · "))
}
