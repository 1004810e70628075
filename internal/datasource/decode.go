package datasource

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// DecodeJSON parses a JSON array of ingredient records, the format of a
// data.json override file.
func DecodeJSON(data []byte) ([]model.Ingredient, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var items []model.Ingredient
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyDataset
	}
	return items, nil
}

// EncodeJSON writes items in the data.json format.
func EncodeJSON(items []model.Ingredient) ([]byte, error) {
	return json.MarshalIndent(items, "", "  ")
}

type tomlFile struct {
	Ingredients []model.Ingredient `toml:"ingredient"`
}

// DecodeTOML parses a TOML document holding [[ingredient]] tables.
func DecodeTOML(data []byte) ([]model.Ingredient, error) {
	var f tomlFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	if len(f.Ingredients) == 0 {
		return nil, ErrEmptyDataset
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return f.Ingredients, fmt.Errorf("decode toml: unknown keys %v", keys)
	}
	return f.Ingredients, nil
}

// EncodeTOML writes items as [[ingredient]] tables.
func EncodeTOML(items []model.Ingredient) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tomlFile{Ingredients: items}); err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return buf.Bytes(), nil
}
