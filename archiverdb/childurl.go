package archiverdb

import (
	"fmt"
)

// AddChildURL stages a discovered URL for the given run. The url column is
// UNIQUE across all runs; staging a URL that is already present is not an
// error, and the returned bool reports whether a new row was inserted.
func (s *SQLite) AddChildURL(runID int, url string, timestamp int64) (bool, error) {
	result, err := s.db.Exec(
		`INSERT INTO child_urls
		(url, run_id, timestamp)
		VALUES (?, ?, ?)
		ON CONFLICT (url) DO NOTHING`, url, runID, timestamp)
	if err != nil {
		return false, fmt.Errorf("Unable to stage child url %s for run %d: %v", url, runID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Unable to stage child url %s for run %d: %v", url, runID, err)
	}
	return n > 0, nil
}

// ChildURLs returns the child URLs staged for a run, in the order they were
// added.
func (s *SQLite) ChildURLs(runID int) ([]ChildURL, error) {
	var urls []ChildURL
	err := s.db.Select(&urls,
		`SELECT url_id, url, run_id, timestamp
		FROM child_urls
		WHERE run_id = ?
		ORDER BY url_id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("Unable to get child urls for run %d: %v", runID, err)
	}
	return urls, nil
}
