// Package archiver helps web-scraping scripts forward discovered URLs and
// files into the Data Together ingestion pipeline. A session is scoped to
// one page URL and one run UUID; everything it stages lands in a local
// SQLite database that morph.io collects after the run.
package archiver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/datatogether/archivertools/archiverdb"
	"github.com/datatogether/archivertools/config"
	"github.com/datatogether/archivertools/identity"
)

// Archiver is one scraper run's session. Creating it fetches the page and
// records the run metadata; AddURL and AddFile stage data against that run.
type Archiver struct {
	url    string
	uuid   string
	runID  int
	db     *archiverdb.SQLite
	ident  *identity.Client
	logger *log.Logger
}

// Options overrides the defaults used by New. Zero values fall back to the
// environment-driven config.
type Options struct {
	// DBPath is the staging database path, data.sqlite by default.
	DBPath string
	// DB uses an already-open staging database instead of opening DBPath.
	DB *archiverdb.SQLite
	// HTTPClient is used for the construction fetch.
	HTTPClient *http.Client
	// Identity overrides the identity client used by Commit.
	Identity *identity.Client
	// Logger defaults to the package-level charmbracelet logger.
	Logger *log.Logger
}

// New creates a session for pageURL under the given run UUID: it fetches
// the page, hashes the body, and records the run metadata. An empty
// runUUID gets a generated one.
func New(pageURL, runUUID string) (*Archiver, error) {
	return NewWithOptions(pageURL, runUUID, Options{})
}

// NewWithOptions is New with explicit collaborators, useful for pointing
// the session at a test server or a throwaway database.
func NewWithOptions(pageURL, runUUID string, opts Options) (*Archiver, error) {
	cfg := config.Default()
	if opts.DBPath != "" {
		cfg.DatabasePath = opts.DBPath
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if runUUID == "" {
		runUUID = uuid.NewString()
	}

	resp, err := getRequest(opts.HTTPClient, pageURL)
	if err != nil {
		return nil, err
	}
	body, headers, err := readPage(resp)
	if err != nil {
		return nil, err
	}

	db := opts.DB
	if db == nil {
		if db, err = archiverdb.Open(cfg.DatabasePath); err != nil {
			return nil, err
		}
	}

	headerJSON, err := json.Marshal(headers)
	if err != nil {
		db.Close()
		return nil, err
	}
	runID, err := db.CreateRun(&archiverdb.Run{
		URL:        pageURL,
		UUID:       runUUID,
		Timestamp:  time.Now().Unix(),
		Body:       body,
		BodySHA256: hashBytes(body),
		Headers:    string(headerJSON),
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	opts.Logger.Info("Started archiver run", "url", pageURL, "uuid", runUUID, "run_id", runID)

	ident := opts.Identity
	if ident == nil {
		ident = identity.New(cfg.IdentityURL, cfg.APIKey, opts.HTTPClient)
	}
	return &Archiver{
		url:    pageURL,
		uuid:   runUUID,
		runID:  runID,
		db:     db,
		ident:  ident,
		logger: opts.Logger,
	}, nil
}

// RunID returns the database id assigned to this run.
func (a *Archiver) RunID() int { return a.runID }

// URL returns the page URL the session was created with.
func (a *Archiver) URL() string { return a.url }

// UUID returns the run identifier.
func (a *Archiver) UUID() string { return a.uuid }

// AddURL stages a child URL to be added back into the downstream crawler.
// A URL that has already been staged, by this run or any earlier one, is
// skipped silently.
func (a *Archiver) AddURL(url string) error {
	inserted, err := a.db.AddChildURL(a.runID, url, time.Now().Unix())
	if err != nil {
		return err
	}
	if !inserted {
		a.logger.Debug("Child url already staged, skipping", "url", url)
	}
	return nil
}

// Commit notifies Data Together that the scrape has completed. It
// authenticates with the API key, verifies the returned JWT, and checks
// the session with the bearer token.
func (a *Archiver) Commit(ctx context.Context) error {
	token, err := a.ident.Token(ctx)
	if err != nil {
		return err
	}
	if err := a.ident.CheckSession(ctx, token); err != nil {
		return err
	}
	a.logger.Info("Scrape committed", "url", a.url, "uuid", a.uuid)
	return nil
}

// Close releases the staging database handle. The staged data stays on
// disk for collection.
func (a *Archiver) Close() error {
	return a.db.Close()
}
