// Command archiver inspects a staging database produced by an archiver
// session and commits completed scrapes to Data Together.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/datatogether/archivertools/archiverdb"
	"github.com/datatogether/archivertools/config"
	"github.com/datatogether/archivertools/identity"
)

// Globals are the flags shared by every subcommand.
type Globals struct {
	DB     string `help:"Path to the staging database." default:"data.sqlite"`
	Config string `help:"Path to a YAML config file." default:"archiver.yaml"`
}

// CLI is the kong command tree.
type CLI struct {
	Globals

	Runs   RunsCmd   `cmd:"" help:"List recorded scraper runs."`
	Urls   UrlsCmd   `cmd:"" help:"List child URLs staged for a run."`
	Files  FilesCmd  `cmd:"" help:"List files staged for a run."`
	Commit CommitCmd `cmd:"" help:"Notify Data Together that the scrape has completed."`
}

// RunsCmd lists all runs recorded in the staging database.
type RunsCmd struct{}

func (c *RunsCmd) Run(g *Globals) error {
	db, err := openDB(g)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%d\t%s\t%s\t%s\t%s\n",
			r.ID, time.Unix(r.Timestamp, 0).Format(time.RFC3339), r.UUID, r.URL, r.BodySHA256)
	}
	return nil
}

// UrlsCmd lists the child URLs staged for one run.
type UrlsCmd struct {
	RunID int `help:"Run to list child URLs for." required:""`
}

func (c *UrlsCmd) Run(g *Globals) error {
	db, err := openDB(g)
	if err != nil {
		return err
	}
	defer db.Close()

	urls, err := db.ChildURLs(c.RunID)
	if err != nil {
		return err
	}
	for _, u := range urls {
		fmt.Printf("%d\t%s\t%s\n", u.ID, time.Unix(u.Timestamp, 0).Format(time.RFC3339), u.URL)
	}
	return nil
}

// FilesCmd lists the files staged for one run. Blob contents are never
// printed, only names, hashes, and sizes.
type FilesCmd struct {
	RunID int `help:"Run to list files for." required:""`
}

func (c *FilesCmd) Run(g *Globals) error {
	db, err := openDB(g)
	if err != nil {
		return err
	}
	defer db.Close()

	files, err := db.Files(c.RunID)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("%d\t%s\t%s\t%d bytes", f.ID, f.Filename, f.SHA256, len(f.Contents))
		if f.Comments != "" {
			fmt.Printf("\t%s", f.Comments)
		}
		fmt.Println()
	}
	return nil
}

// CommitCmd performs the end-of-scrape identity round-trip.
type CommitCmd struct {
	Timeout time.Duration `help:"Overall timeout for the identity round-trip." default:"1m"`
}

func (c *CommitCmd) Run(g *Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	ident := identity.New(cfg.IdentityURL, cfg.APIKey, nil)
	token, err := ident.Token(ctx)
	if err != nil {
		return err
	}
	if err := ident.CheckSession(ctx, token); err != nil {
		return err
	}
	log.Info("Scrape committed", "identity", cfg.IdentityURL)
	return nil
}

func openDB(g *Globals) (*archiverdb.SQLite, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	path := g.DB
	if path == "data.sqlite" && cfg.DatabasePath != "" {
		path = cfg.DatabasePath
	}
	return archiverdb.Open(path)
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("archiver"),
		kong.Description("Inspect and commit Data Together staging databases."))
	if err := ctx.Run(&cli.Globals); err != nil {
		log.Fatal(err)
	}
}
