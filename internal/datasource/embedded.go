package datasource

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

//go:embed data/ingredients.toml
var embeddedTOML []byte

var (
	embeddedOnce  sync.Once
	embeddedItems []model.Ingredient
	embeddedErr   error
)

// Embedded returns the dataset compiled into the binary.
func Embedded() ([]model.Ingredient, error) {
	embeddedOnce.Do(func() {
		embeddedItems, embeddedErr = DecodeTOML(embeddedTOML)
		if embeddedErr != nil {
			embeddedErr = fmt.Errorf("embedded dataset: %w", embeddedErr)
		}
	})
	out := make([]model.Ingredient, len(embeddedItems))
	copy(out, embeddedItems)
	return out, embeddedErr
}
