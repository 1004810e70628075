// Package datasource loads the ingredient dataset from the embedded default,
// JSON, TOML and SQLite files, and http(s) URLs, and merges several sources
// into one model.Dataset.
package datasource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrUnsupportedFormat is returned for files that are not JSON, TOML or
	// SQLite.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrEmptyDataset is returned when a source decodes to zero records.
	ErrEmptyDataset = errors.New("dataset is empty")
)

// Kind identifies how a source is read.
type Kind string

const (
	KindEmbedded Kind = "embedded"
	KindJSON     Kind = "json"
	KindTOML     Kind = "toml"
	KindSQLite   Kind = "sqlite"
	KindURL      Kind = "url"
)

const sqliteMagic = "SQLite format 3\x00"

// Source describes one dataset location after it was read.
type Source struct {
	Kind     Kind      `json:"kind"`
	Location string    `json:"location"`
	ModTime  time.Time `json:"mod_time,omitempty"`
	Size     int64     `json:"size"`
	Count    int       `json:"count"`
	Err      error     `json:"-"`
	// Stale is set when a cached download was served instead of a fresh one.
	Stale    error     `json:"-"`
}

// Valid reports whether the source produced records.
func (s Source) Valid() bool { return s.Err == nil && s.Count > 0 }

func (s Source) String() string {
	status := "ok"
	switch {
	case s.Err != nil:
		status = s.Err.Error()
	case s.Stale != nil:
		status = "stale: " + s.Stale.Error()
	}
	return fmt.Sprintf("%s (%s, %d records, %s)", s.Location, s.Kind, s.Count, status)
}

// Detect decides how location should be read. URLs and file extensions
// are trusted; other files are sniffed.
func Detect(location string) (Kind, error) {
	switch {
	case location == "" || location == string(KindEmbedded):
		return KindEmbedded, nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return KindURL, nil
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".json":
		return KindJSON, nil
	case ".toml":
		return KindTOML, nil
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite, nil
	}

	f, err := os.Open(location)
	if err != nil {
		return "", fmt.Errorf("detect %s: %w", location, err)
	}
	defer f.Close()
	head := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("detect %s: %w", location, err)
	}
	return sniff(head[:n], location)
}

func sniff(head []byte, location string) (Kind, error) {
	if string(head) == sqliteMagic {
		return KindSQLite, nil
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n\ufeff")
	switch {
	case bytes.HasPrefix(trimmed, []byte("[[")), bytes.HasPrefix(trimmed, []byte("#")):
		return KindTOML, nil
	case len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{'):
		return KindJSON, nil
	}
	return "", fmt.Errorf("%s: %w", location, ErrUnsupportedFormat)
}
