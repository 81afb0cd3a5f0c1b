package archiverdb

import (
	"fmt"
)

// AddFile stages a file blob for the given run and returns the assigned
// file id.
func (s *SQLite) AddFile(f *File) (int, error) {
	result, err := s.db.Exec(
		`INSERT INTO files
		(run_id, file_contents, filename, file_sha256, comments, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.RunID, f.Contents, f.Filename, f.SHA256, f.Comments, f.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("Unable to stage file %s for run %d: %v", f.Filename, f.RunID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("Unable to read id of staged file %s: %v", f.Filename, err)
	}
	return int(id), nil
}

// Files returns the files staged for a run, in the order they were added.
func (s *SQLite) Files(runID int) ([]File, error) {
	var files []File
	err := s.db.Select(&files,
		`SELECT file_id, run_id, file_contents, filename, file_sha256, comments, timestamp
		FROM files
		WHERE run_id = ?
		ORDER BY file_id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("Unable to get files for run %d: %v", runID, err)
	}
	return files, nil
}
