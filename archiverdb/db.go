package archiverdb

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when no run exists with the requested id.
var ErrRunNotFound = errors.New("no run with that id")

// Schema for the staging tables. Applied on Open.
const Schema = `
CREATE TABLE IF NOT EXISTS runs_metadata (
	run_id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL,
	uuid TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	body_content BLOB,
	body_sha256 TEXT NOT NULL,
	headers TEXT
);
CREATE TABLE IF NOT EXISTS child_urls (
	url_id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT UNIQUE NOT NULL,
	run_id INTEGER NOT NULL REFERENCES runs_metadata(run_id),
	timestamp INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS files (
	file_id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL REFERENCES runs_metadata(run_id),
	file_contents BLOB NOT NULL,
	filename TEXT NOT NULL,
	file_sha256 TEXT NOT NULL,
	comments TEXT,
	timestamp INTEGER NOT NULL
);
`

// SQLite represents the staging database client. morph.io collects the
// database as a single file, data.sqlite by convention.
type SQLite struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the staging database at path and
// applies the schema. Use ":memory:" for a throwaway database in tests.
func Open(path string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Unable to open staging database %s: %v", path, err)
	}
	// a single connection keeps writes serialized and makes ":memory:"
	// databases (one per connection otherwise) behave
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Unable to apply schema to %s: %v", path, err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
