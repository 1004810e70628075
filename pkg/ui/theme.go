package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// TermProfile is the color profile of stdout, detected once.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the styles of the galaxy TUI.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Grid     lipgloss.Style
	Notice   lipgloss.Style
	Status   lipgloss.Style
	Panel    lipgloss.Style

	// Pre-computed per-category styles, indexed by category. The canvas asks
	// for these once per cell run, so they are built once here.
	categories map[model.Category]lipgloss.Style
	links      map[model.Category]lipgloss.Style
}

// DefaultTheme returns the adaptive theme. mode "light" or "dark" forces the
// background detection; anything else keeps the renderer's guess.
func DefaultTheme(r *lipgloss.Renderer, mode string) Theme {
	switch mode {
	case "light":
		r.SetHasDarkBackground(false)
	case "dark":
		r.SetHasDarkBackground(true)
	}

	t := Theme{
		Renderer: r,
		Primary:  ColorPrimary,
		Subtext:  ColorSubtext,
		Border:   lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Muted:    ColorMuted,
	}

	t.Base = r.NewStyle().Foreground(ColorText)
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Selected = r.NewStyle().Reverse(true).Bold(true)
	t.Grid = r.NewStyle().Foreground(ColorBgSubtle)
	t.Notice = r.NewStyle().Foreground(ColorWarning).Bold(true)
	t.Status = r.NewStyle().Foreground(t.Subtext)
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.categories = make(map[model.Category]lipgloss.Style, len(model.RelationCategories)+1)
	t.links = make(map[model.Category]lipgloss.Style, len(model.RelationCategories)+1)
	for _, c := range append([]model.Category{model.CategoryMain}, model.RelationCategories...) {
		fg := ThemeFg(category.Color(c))
		t.categories[c] = r.NewStyle().Foreground(fg).Bold(c == model.CategoryMain)
		t.links[c] = r.NewStyle().Foreground(fg).Faint(true)
	}
	return t
}

// CategoryStyle returns the node style for c.
func (t Theme) CategoryStyle(c model.Category) lipgloss.Style {
	if s, ok := t.categories[c]; ok {
		return s
	}
	return t.Base
}

// LinkStyle returns the faint link style for c.
func (t Theme) LinkStyle(c model.Category) lipgloss.Style {
	if s, ok := t.links[c]; ok {
		return s
	}
	return t.Grid
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout), "dark")
}
