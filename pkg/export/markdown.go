package export

import (
	"fmt"
	"hash/fnv"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/vanderheijden86/foodgalaxy/pkg/category"
	"github.com/vanderheijden86/foodgalaxy/pkg/layout"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeMermaidID ensures an ID is valid for Mermaid diagrams.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	result := sb.String()
	if result == "" {
		return "node"
	}
	return result
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, replacer.Replace(text))
	return strings.TrimSpace(result)
}

// GalaxyMermaid renders the center/satellite graph as a Mermaid flowchart,
// one class per category.
func GalaxyMermaid(g layout.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	for _, c := range append([]model.Category{model.CategoryMain}, model.RelationCategories...) {
		sb.WriteString(fmt.Sprintf("    classDef %s fill:%s,stroke:#333,color:#000\n", c, category.Color(c)))
	}
	sb.WriteString("\n")

	// collision-free ids; accents are dropped by sanitizeMermaidID
	safe := make(map[string]string, len(g.Nodes))
	used := make(map[string]bool, len(g.Nodes))
	safeID := func(orig string) string {
		if s, ok := safe[orig]; ok {
			return s
		}
		s := sanitizeMermaidID(orig)
		if used[s] {
			h := fnv.New32a()
			_, _ = h.Write([]byte(orig))
			s = fmt.Sprintf("%s_%x", s, h.Sum32())
		}
		used[s] = true
		safe[orig] = s
		return s
	}

	for _, n := range g.Nodes {
		id := safeID(n.ID)
		shape := "[\"%s\"]"
		if n.IsCenter() {
			shape = "((\"%s\"))"
		} else if n.IsTerminal() {
			shape = "(\"%s\")"
		}
		sb.WriteString(fmt.Sprintf("    %s"+shape+"\n", id, sanitizeMermaidText(n.ID)))
		sb.WriteString(fmt.Sprintf("    class %s %s\n", id, n.Category))
	}
	sb.WriteString("\n")
	for _, l := range g.Links {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID(l.Source), safeID(l.Target)))
	}
	return sb.String()
}

// IngredientMarkdown renders the details panel for ing. Associations that
// lookup cannot resolve are marked as terminus. lookup may be nil.
func IngredientMarkdown(ing model.Ingredient, lookup layout.Lookup) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", ing.Name))
	if ing.Type != "" {
		sb.WriteString(fmt.Sprintf("`%s`", ing.Type))
		if ing.FlavorFamily != "" {
			sb.WriteString(fmt.Sprintf(" · *%s*", ing.FlavorFamily))
		}
		sb.WriteString("\n\n")
	} else if ing.FlavorFamily != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", ing.FlavorFamily))
	}
	if ing.Description != "" {
		sb.WriteString(ing.Description + "\n\n")
	}
	section := func(title, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", title, body))
	}
	section("Profil sensoriel", ing.SensoryProfile)
	section("Info technique", ing.TechnicalInfo)

	if ing.Associations.Count() > 0 {
		sb.WriteString("## Associations\n\n")
		for _, c := range model.RelationCategories {
			names := ing.Associations.For(c)
			if len(names) == 0 {
				continue
			}
			parts := make([]string, 0, len(names))
			for _, name := range names {
				if lookup != nil {
					if _, ok := lookup.Lookup(name); !ok {
						name += " ◦"
					}
				}
				parts = append(parts, name)
			}
			sb.WriteString(fmt.Sprintf("- **%s** : %s\n", category.Label(c), strings.Join(parts, ", ")))
		}
		sb.WriteString("\n")
	}

	if r := ing.Recipe; r.Title != "" || r.Details != "" {
		title := r.Title
		if title == "" {
			title = "Recette"
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", title))
		if items, ok := r.ProportionItems(); ok {
			for _, it := range items {
				sb.WriteString("- " + it + "\n")
			}
			sb.WriteString("\n")
		} else if r.Details != "" {
			sb.WriteString(r.Details + "\n\n")
		}
	}
	return sb.String()
}

// SaveMarkdown writes the details of ing followed by its galaxy diagram.
func SaveMarkdown(path string, ing model.Ingredient, g layout.Graph, lookup layout.Lookup) error {
	var sb strings.Builder
	sb.WriteString(IngredientMarkdown(ing, lookup))
	sb.WriteString("## Galaxie\n\n```mermaid\n")
	sb.WriteString(GalaxyMermaid(g))
	sb.WriteString("```\n")
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
