package archiverdb

import (
	"database/sql"
	"fmt"
)

// CreateRun records the metadata for a new scraper run and returns the
// assigned run id.
func (s *SQLite) CreateRun(r *Run) (int, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs_metadata
		(url, uuid, timestamp, body_content, body_sha256, headers)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.URL, r.UUID, r.Timestamp, r.Body, r.BodySHA256, r.Headers)
	if err != nil {
		return 0, fmt.Errorf("Unable to create run for url %s: %v", r.URL, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("Unable to read id of created run: %v", err)
	}
	return int(id), nil
}

// GetRun returns the run associated with the given id.
func (s *SQLite) GetRun(id int) (*Run, error) {
	var r Run
	err := s.db.Get(&r,
		`SELECT run_id, url, uuid, timestamp, body_content, body_sha256, headers
		FROM runs_metadata
		WHERE run_id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Unable to get run %d: %v", id, err)
	}
	return &r, nil
}

// ListRuns returns all recorded runs, oldest first, without body contents.
func (s *SQLite) ListRuns() ([]*Run, error) {
	var runs []*Run
	err := s.db.Select(&runs,
		`SELECT run_id, url, uuid, timestamp, body_sha256
		FROM runs_metadata
		ORDER BY run_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("Unable to list runs: %v", err)
	}
	return runs, nil
}
