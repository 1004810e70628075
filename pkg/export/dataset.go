package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/foodgalaxy/internal/datasource"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

// DatasetFormat infers the dataset format from an explicit name or the path
// extension.
func DatasetFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	switch format {
	case "json", "toml":
		return format, nil
	case "sqlite", "sqlite3", "db":
		return "sqlite", nil
	}
	return "", fmt.Errorf("%w %q (want json, toml or sqlite)", ErrUnsupportedFormat, format)
}

// SaveDataset writes items to path as JSON, TOML or SQLite.
func SaveDataset(ctx context.Context, path, format string, items []model.Ingredient) error {
	format, err := DatasetFormat(format, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	var data []byte
	switch format {
	case "sqlite":
		return datasource.WriteSQLite(ctx, path, items)
	case "toml":
		data, err = datasource.EncodeTOML(items)
	default:
		data, err = datasource.EncodeJSON(items)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return os.WriteFile(path, data, 0o644)
}
