package archiverdb

// Run represents the metadata recorded for a single scraper run: the page
// that was fetched, the run UUID assigned by the caller, and the response
// body with its SHA-256 digest.
type Run struct {
	ID         int    `db:"run_id"`
	URL        string `db:"url"`
	UUID       string `db:"uuid"`
	Timestamp  int64  `db:"timestamp"`
	Body       []byte `db:"body_content"`
	BodySHA256 string `db:"body_sha256"`
	Headers    string `db:"headers"`
}

// ChildURL represents a URL discovered during a run, staged to be fed back
// into the downstream crawler.
type ChildURL struct {
	ID        int    `db:"url_id"`
	RunID     int    `db:"run_id"`
	URL       string `db:"url"`
	Timestamp int64  `db:"timestamp"`
}

// File represents a file staged for ingestion, stored as a blob together
// with its chosen filename and content hash.
type File struct {
	ID        int    `db:"file_id"`
	RunID     int    `db:"run_id"`
	Contents  []byte `db:"file_contents"`
	Filename  string `db:"filename"`
	SHA256    string `db:"file_sha256"`
	Comments  string `db:"comments"`
	Timestamp int64  `db:"timestamp"`
}
