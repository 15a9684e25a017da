package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/neuralvault/internal/cli"
	"github.com/hyperjump/neuralvault/internal/markdown"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/slug"
	"github.com/hyperjump/neuralvault/internal/storage"
)

func (a *app) runList(args []string) error {
	fs, configPath := a.newFlagSet("list")
	tag := fs.String("tag", "", "only notes carrying this tag")
	formatStr := formatFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	format, err := cli.ParseFormat(*formatStr)
	if err != nil {
		return err
	}
	_, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	notes := storage.List(context.Background(), files)
	if *tag != "" {
		filtered := notes[:0]
		for _, n := range notes {
			if n.HasTag(*tag) {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}
	return cli.WriteNotes(a.stdout, notes, format)
}

func (a *app) runShow(args []string) error {
	fs, configPath := a.newFlagSet("show")
	formatStr := formatFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "Usage: neuralvault show [flags] <slug>")
		return errUsage
	}
	format, err := cli.ParseFormat(*formatStr)
	if err != nil {
		return err
	}
	_, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	n, err := files.Get(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}
	return cli.WriteNote(a.stdout, n, format)
}

// readContent returns the contents of path, or stdin when path is "-".
func (a *app) readContent(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *app) runNew(args []string) error {
	fs, configPath := a.newFlagSet("new")
	title := fs.String("title", "", "note title (required)")
	sl := fs.String("slug", "", "note slug (default: derived from the title)")
	tags := fs.String("tags", "", "comma-separated tags")
	file := fs.String("file", "-", "markdown file with the content, - for stdin")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*title) == "" {
		fmt.Fprintln(a.stderr, "Usage: neuralvault new --title <title> [--slug s] [--tags a,b] [--file f]")
		return errUsage
	}
	content, err := a.readContent(*file)
	if err != nil {
		return err
	}
	_, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	in := models.NoteInput{Slug: *sl, Title: *title, Content: content, Tags: models.ParseTags(*tags)}
	if strings.TrimSpace(in.Slug) == "" {
		in.Slug = slug.Slugify(*title)
	}
	n, err := files.Create(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Created: %s\n", n.Slug)
	return nil
}

func (a *app) runEdit(args []string) error {
	fs, configPath := a.newFlagSet("edit")
	title := fs.String("title", "", "new title")
	tags := fs.String("tags", "", "new comma-separated tags (empty clears)")
	file := fs.String("file", "", "markdown file with the new content, - for stdin")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "Usage: neuralvault edit [--title t] [--tags a,b] [--file f] <slug>")
		return errUsage
	}

	u := models.NoteUpdate{Slug: fs.Arg(0)}
	var readErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			u.Title = title
		case "tags":
			t := models.ParseTags(*tags)
			u.Tags = &t
		case "file":
			content, err := a.readContent(*file)
			if err != nil {
				readErr = err
				return
			}
			u.Content = &content
		}
	})
	if readErr != nil {
		return readErr
	}
	_, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	n, err := files.Update(context.Background(), u)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Updated: %s\n", n.Slug)
	return nil
}

func (a *app) runDelete(args []string) error {
	fs, configPath := a.newFlagSet("delete")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "Usage: neuralvault delete [flags] <slug>")
		return errUsage
	}
	_, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := files.Delete(context.Background(), fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted: %s\n", fs.Arg(0))
	return nil
}

func (a *app) runRender(args []string) error {
	fs, configPath := a.newFlagSet("render")
	file := fs.String("file", "", "render a markdown file (- for stdin) instead of a note")
	if err := parse(fs, args); err != nil {
		return err
	}
	var src string
	switch {
	case *file != "":
		content, err := a.readContent(*file)
		if err != nil {
			return err
		}
		src = content
	case fs.NArg() == 1:
		_, files, logger, err := a.openStore(*configPath)
		if err != nil {
			return err
		}
		defer logger.Sync()
		n, err := files.Get(context.Background(), fs.Arg(0))
		if err != nil {
			return err
		}
		src = n.Content
	default:
		fmt.Fprintln(a.stderr, "Usage: neuralvault render <slug> | --file <path>")
		return errUsage
	}
	_, err := fmt.Fprintln(a.stdout, markdown.Render(src))
	return err
}
