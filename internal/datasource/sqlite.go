package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/foodgalaxy/pkg/debug"
	"github.com/vanderheijden86/foodgalaxy/pkg/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ingredients (
	nom              TEXT PRIMARY KEY,
	position         INTEGER NOT NULL,
	type             TEXT NOT NULL DEFAULT '',
	famille_saveur   TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	profil_sensoriel TEXT NOT NULL DEFAULT '',
	info_technique   TEXT NOT NULL DEFAULT '',
	recette_titre    TEXT NOT NULL DEFAULT '',
	recette_details  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS associations (
	nom       TEXT NOT NULL REFERENCES ingredients(nom) ON DELETE CASCADE,
	categorie TEXT NOT NULL,
	position  INTEGER NOT NULL,
	cible     TEXT NOT NULL,
	PRIMARY KEY (nom, categorie, position)
);
`

// SQLiteReader reads a dataset stored in a SQLite database.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens path read-only.
func OpenSQLite(path string) (*SQLiteReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite dataset: %w", err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite dataset: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA temp_store = MEMORY",
	} {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("datasource: %s: %v", pragma, err)
		}
	}
	return &SQLiteReader{db: db, path: path}, nil
}

// Close closes the database.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads every ingredient with its associations, in stored order.
func (r *SQLiteReader) Load(ctx context.Context) ([]model.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT nom, type, famille_saveur, description, profil_sensoriel,
		       info_technique, recette_titre, recette_details
		FROM ingredients
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	var items []model.Ingredient
	index := make(map[string]int)
	for rows.Next() {
		var it model.Ingredient
		if err := rows.Scan(&it.Name, &it.Type, &it.FlavorFamily, &it.Description,
			&it.SensoryProfile, &it.TechnicalInfo, &it.Recipe.Title, &it.Recipe.Details); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		index[it.Name] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyDataset
	}

	if err := r.loadAssociations(ctx, items, index); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLiteReader) loadAssociations(ctx context.Context, items []model.Ingredient, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT nom, categorie, cible
		FROM associations
		ORDER BY nom, categorie, position`)
	if err != nil {
		return fmt.Errorf("query associations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, cat, target string
		if err := rows.Scan(&name, &cat, &target); err != nil {
			return fmt.Errorf("scan association: %w", err)
		}
		i, ok := index[name]
		if !ok {
			continue
		}
		c, err := model.ParseCategory(cat)
		if err != nil || !c.IsRelation() {
			debug.Log("datasource: %s: skipping association category %q", r.path, cat)
			continue
		}
		a := &items[i].Associations
		a.Set(c, append(a.For(c), target))
	}
	return rows.Err()
}

// WriteSQLite stores items in a fresh database at path, replacing any
// existing file.
func WriteSQLite(ctx context.Context, path string, items []model.Ingredient) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("create sqlite dataset: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	insIng, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO ingredients
		(nom, position, type, famille_saveur, description, profil_sensoriel, info_technique, recette_titre, recette_details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ingredients: %w", err)
	}
	defer insIng.Close()

	insAssoc, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO associations
		(nom, categorie, position, cible) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare associations: %w", err)
	}
	defer insAssoc.Close()

	seen := make(map[string]bool, len(items))
	for pos, it := range items {
		if seen[it.Name] || it.Validate() != nil {
			continue
		}
		seen[it.Name] = true
		if _, err := insIng.ExecContext(ctx, it.Name, pos, it.Type, it.FlavorFamily, it.Description,
			it.SensoryProfile, it.TechnicalInfo, it.Recipe.Title, it.Recipe.Details); err != nil {
			return fmt.Errorf("insert %q: %w", it.Name, err)
		}
		for _, c := range model.RelationCategories {
			for i, target := range it.Associations.For(c) {
				if _, err := insAssoc.ExecContext(ctx, it.Name, string(c), i, target); err != nil {
					return fmt.Errorf("insert association %q -> %q: %w", it.Name, target, err)
				}
			}
		}
	}
	return tx.Commit()
}
