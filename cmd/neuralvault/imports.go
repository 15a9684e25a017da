package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hyperjump/neuralvault/internal/extract"
	"github.com/hyperjump/neuralvault/internal/importer"
	"github.com/hyperjump/neuralvault/internal/models"
)

func (a *app) runImportCommits(args []string) error {
	fs, configPath := a.newFlagSet("import-commits")
	repo := fs.String("repo", ".", "git repository path")
	days := fs.Int("days", 0, "days of history, today included (default from config)")
	dryRun := fs.Bool("dry-run", false, "print the digests that would be written")
	if err := parse(fs, args); err != nil {
		return err
	}
	cfg, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if *days == 0 {
		*days = cfg.Importer.Days
	}
	repoPath, err := filepath.Abs(*repo)
	if err != nil {
		return err
	}

	im := importer.NewCommitImporter(files, cfg.Importer, importer.WithLogger(logger))
	results, err := im.Import(context.Background(), repoPath, *days, *dryRun)
	for _, r := range results {
		action := "Updated"
		if r.Created {
			action = "Created"
		}
		if *dryRun {
			action = "Would write"
		}
		fmt.Fprintf(a.stdout, "%s: %s (%d commits)\n", action, r.Slug, r.Commits)
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(a.stdout, "No commits in the last %d day(s)\n", *days)
	}
	return nil
}

func (a *app) runImportDoc(args []string) error {
	fs, configPath := a.newFlagSet("import-doc")
	sl := fs.String("slug", "", "note slug (default: imports/<file name>)")
	title := fs.String("title", "", "note title (default: file name)")
	tags := fs.String("tags", "", "comma-separated tags")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		ex := extract.NewExtractor()
		fmt.Fprintf(a.stderr, "Usage: neuralvault import-doc [flags] <file>\nSupported: %v\n", ex.Extensions())
		return errUsage
	}
	_, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	d := importer.NewDocImporter(files, extract.NewExtractor(), importer.WithLogger(logger))
	n, err := d.Import(context.Background(), fs.Arg(0), importer.DocOptions{
		Slug:  *sl,
		Title: *title,
		Tags:  models.ParseTags(*tags),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Imported: %s\n", n.Slug)
	return nil
}
