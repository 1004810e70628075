package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

const maxSearchResults = 8

// SearchBox is the ingredient search overlay: a text input plus the
// matching names in dataset order.
type SearchBox struct {
	input   textinput.Model
	results []model.Ingredient
	cursor  int
	active  bool
}

// NewSearchBox creates an inactive search box.
func NewSearchBox() SearchBox {
	ti := textinput.New()
	ti.Placeholder = "Rechercher un ingrédient…"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return SearchBox{input: ti}
}

// Open focuses the input with an empty query.
func (s *SearchBox) Open() tea.Cmd {
	s.active = true
	s.cursor = 0
	s.results = nil
	s.input.SetValue("")
	return s.input.Focus()
}

// Close hides the box.
func (s *SearchBox) Close() {
	s.active = false
	s.input.Blur()
}

// Active reports whether the box has focus.
func (s SearchBox) Active() bool { return s.active }

// Query returns the current input.
func (s SearchBox) Query() string { return s.input.Value() }

// Results returns the visible matches.
func (s SearchBox) Results() []model.Ingredient { return s.results }

// Selected returns the highlighted match.
func (s SearchBox) Selected() (model.Ingredient, bool) {
	if s.cursor < 0 || s.cursor >= len(s.results) {
		return model.Ingredient{}, false
	}
	return s.results[s.cursor], true
}

// Update feeds msg to the input and refreshes the matches against ds.
func (s SearchBox) Update(msg tea.Msg, ds *model.Dataset) (SearchBox, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "ctrl+p":
			if s.cursor > 0 {
				s.cursor--
			}
			return s, nil
		case "down", "ctrl+n", "tab":
			if s.cursor < len(s.results)-1 {
				s.cursor++
			}
			return s, nil
		}
	}
	var cmd tea.Cmd
	before := s.input.Value()
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != before {
		s.refresh(ds)
	}
	return s, cmd
}

func (s *SearchBox) refresh(ds *model.Dataset) {
	s.results = ds.Search(s.input.Value())
	if len(s.results) > maxSearchResults {
		s.results = s.results[:maxSearchResults]
	}
	s.cursor = 0
}

// View renders the input and the match list.
func (s SearchBox) View(t Theme, width int) string {
	var sb strings.Builder
	sb.WriteString(s.input.View())
	if strings.TrimSpace(s.input.Value()) != "" && len(s.results) == 0 {
		sb.WriteString("\n" + t.Status.Render("  aucun résultat"))
	}
	for i, it := range s.results {
		line := "  " + it.Name
		if it.Type != "" {
			line += t.Status.Render("  " + it.Type)
		}
		if i == s.cursor {
			line = t.Selected.Render("› " + it.Name)
		}
		sb.WriteString("\n" + clip(line, width))
	}
	return sb.String()
}
