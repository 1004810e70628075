package galaxy

import (
	"errors"
	"fmt"
	"time"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/interaction"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// ErrUnknownIngredient is returned when a name has no record to center on.
var ErrUnknownIngredient = errors.New("unknown ingredient")

// NoticeTTL is how long a notice stays visible.
const NoticeTTL = 3 * time.Second

// TerminusMessage is the notice shown when a clicked satellite has no
// record of its own.
func TerminusMessage(name string) string {
	return fmt.Sprintf("L'ingrédient \"%s\" est un terminus. Pas d'autres associations disponibles.", name)
}

// Panel describes what the details panel shows.
type Panel struct {
	Data     *model.Ingredient // nil for terminal ingredients
	Name     string
	IsCenter bool
}

type preview struct {
	data *model.Ingredient
	name string
}

// Navigator is the host-side state around a Session: the hover preview,
// click-to-recenter and transient notices.
type Navigator struct {
	session *Session
	dataset *model.Dataset

	preview *preview

	notice   string
	noticeAt time.Time
	now      func() time.Time
}

// NewNavigator wraps s. Click lookups go through ds.
func NewNavigator(s *Session, ds *model.Dataset) *Navigator {
	return &Navigator{session: s, dataset: ds, now: time.Now}
}

// Callbacks returns the node callbacks to pass to the session.
func (n *Navigator) Callbacks() interaction.Callbacks {
	return interaction.Callbacks{
		OnNodeClick: func(name string) { n.Click(name) },
		OnNodeHover: n.Hover,
	}
}

// Click recenters on name when it has a record and shows the terminus
// notice otherwise. It reports whether the galaxy was recentered.
func (n *Navigator) Click(name string) bool {
	if err := n.Navigate(name); err != nil {
		debug.Log("navigator: %v", err)
		n.Notify(TerminusMessage(name))
		return false
	}
	return true
}

// Navigate recenters on the record named name.
func (n *Navigator) Navigate(name string) error {
	ing, ok := n.dataset.Lookup(name)
	if !ok {
		return fmt.Errorf("navigate to %q: %w", name, ErrUnknownIngredient)
	}
	n.Select(*ing)
	return nil
}

// Select recenters on ing and clears the preview.
func (n *Navigator) Select(ing model.Ingredient) {
	n.preview = nil
	n.session.SetCenter(ing)
}

// Hover updates the preview. An empty name clears it; hovering the name
// already previewed keeps the existing preview.
func (n *Navigator) Hover(data *model.Ingredient, name string) {
	if name == "" {
		n.preview = nil
		return
	}
	if n.preview != nil && n.preview.name == name {
		return
	}
	n.preview = &preview{data: data, name: name}
}

// NavigatePreview follows the previewed ingredient, as the panel's
// navigate action does.
func (n *Navigator) NavigatePreview() bool {
	if n.preview == nil || n.preview.name == "" {
		return false
	}
	return n.Click(n.preview.name)
}

// Panel returns the preview when there is one and the center otherwise.
func (n *Navigator) Panel() Panel {
	center := n.session.Center()
	if n.preview == nil {
		return Panel{Data: &center, Name: center.Name, IsCenter: true}
	}
	return Panel{
		Data:     n.preview.data,
		Name:     n.preview.name,
		IsCenter: n.preview.name == center.Name,
	}
}

// Reload switches to ds. The current center is kept when ds still has a
// record for it; otherwise the galaxy moves to ds's default center. It
// returns ErrUnknownIngredient when ds is empty.
func (n *Navigator) Reload(ds *model.Dataset) error {
	name := n.session.Center().Name
	ing, ok := ds.Lookup(name)
	if !ok {
		if ing, ok = ds.DefaultCenter(""); !ok {
			return fmt.Errorf("reload: %w", ErrUnknownIngredient)
		}
	}
	n.dataset = ds
	n.preview = nil
	n.session.SetDataset(ds, *ing)
	return nil
}

// Dataset returns the records clicks are resolved against.
func (n *Navigator) Dataset() *model.Dataset { return n.dataset }

// ToggleFilter flips the visibility of category c.
func (n *Navigator) ToggleFilter(c model.Category) {
	n.session.SetFilters(n.session.Filters().Toggle(c))
}

// Notify shows msg for NoticeTTL.
func (n *Navigator) Notify(msg string) {
	n.notice = msg
	n.noticeAt = n.now()
}

// Notice returns the active notice, if it has not expired.
func (n *Navigator) Notice() (string, bool) {
	if n.notice == "" || n.now().Sub(n.noticeAt) >= NoticeTTL {
		return "", false
	}
	return n.notice, true
}
