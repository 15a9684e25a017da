// Package importer writes notes from outside sources: a day-by-day digest of
// git commits, and documents converted to text.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/config"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/slug"
	"github.com/hyperjump/neuralvault/internal/storage"
)

// Commit is the part of a git commit shown in a digest.
type Commit struct {
	Hash    string
	Author  string
	Subject string
	When    time.Time
}

// CommitDay is the commits authored on one calendar day.
type CommitDay struct {
	Date    string // YYYY-MM-DD
	Commits []Commit
}

// Result describes one digest note.
type Result struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Commits int    `json:"commits"`
	Created bool   `json:"created"`
}

// unsafe characters would break the commit markup or the YAML front matter.
var unsafe = strings.NewReplacer("'", "", `"`, "", "`", "", "\n", " ", "\r", "")

func clean(s string) string {
	return strings.TrimSpace(unsafe.Replace(s))
}

// ReadCommits returns the commits reachable from HEAD made at or after since,
// in log order. A repository without commits yields none.
func ReadCommits(ctx context.Context, repoPath string, since time.Time) ([]Commit, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository %s: %w", repoPath, err)
	}
	iter, err := repo.Log(&git.LogOptions{Since: &since})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	var out []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
		cm := Commit{
			Hash:    clean(c.Hash.String()),
			Author:  clean(c.Author.Name),
			Subject: clean(subject),
			When:    c.Author.When,
		}
		if cm.Hash == "" || cm.Author == "" || cm.Subject == "" {
			return nil
		}
		out = append(out, cm)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GroupByDay buckets commits by the author's calendar day, oldest day
// first. Commits keep their relative order within a day.
func GroupByDay(commits []Commit) []CommitDay {
	byDay := make(map[string][]Commit)
	for _, c := range commits {
		d := c.When.Format(time.DateOnly)
		byDay[d] = append(byDay[d], c)
	}
	days := make([]CommitDay, 0, len(byDay))
	for d, cs := range byDay {
		days = append(days, CommitDay{Date: d, Commits: cs})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// CommitsMarkdown renders the digest body: a "## Commits" heading and one
// list item per commit with nested Hash, Author and Time items.
func CommitsMarkdown(commits []Commit) string {
	var b strings.Builder
	b.WriteString("## Commits\n\n")
	for _, c := range commits {
		fmt.Fprintf(&b, "- `%s`\n", c.Subject)
		fmt.Fprintf(&b, "  - Hash: `%s`\n", c.Hash)
		fmt.Fprintf(&b, "  - Author: %s\n", c.Author)
		fmt.Fprintf(&b, "  - Time: %s\n", c.When.Format(time.RFC3339))
		b.WriteString("\n")
	}
	return b.String()
}

// CommitImporter turns recent git history into one note per day.
type CommitImporter struct {
	store  storage.NoteStore
	cfg    config.ImporterConfig
	now    storage.Clock
	logger *zap.Logger
}

// Option configures an importer.
type Option func(*options)

type options struct {
	now    storage.Clock
	logger *zap.Logger
}

// WithClock sets the clock used to compute the import window.
func WithClock(c storage.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.now = c
		}
	}
}

// WithLogger sets a logger for progress output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewCommitImporter returns an importer writing to store.
func NewCommitImporter(store storage.NoteStore, cfg config.ImporterConfig, opts ...Option) *CommitImporter {
	o := buildOptions(opts)
	return &CommitImporter{store: store, cfg: cfg, now: o.now, logger: o.logger}
}

// Since returns local midnight days-1 days before now, so days=1 means today.
func Since(now time.Time, days int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-(days-1), 0, 0, 0, 0, now.Location())
}

// DaySlug returns the slug of the digest note for date.
func (im *CommitImporter) DaySlug(date string) string {
	return slug.Normalize(im.cfg.SlugPrefix + "/commits-" + date)
}

// DayTitle returns the title of the digest note for date.
func (im *CommitImporter) DayTitle(date string) string {
	return im.cfg.TitlePrefix + " – " + date
}

// Import reads the last days of history from repoPath and creates or
// replaces one digest note per day. With dryRun nothing is written.
func (im *CommitImporter) Import(ctx context.Context, repoPath string, days int, dryRun bool) ([]Result, error) {
	if days <= 0 {
		return nil, apperr.Malformed("days must be a positive number")
	}
	since := Since(im.now(), days)
	commits, err := ReadCommits(ctx, repoPath, since)
	if err != nil {
		return nil, err
	}
	im.logger.Info("importing commits", zap.String("repo", repoPath), zap.Time("since", since), zap.Int("commits", len(commits)))

	var results []Result
	for _, day := range GroupByDay(commits) {
		res, err := im.writeDay(ctx, day, dryRun)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (im *CommitImporter) writeDay(ctx context.Context, day CommitDay, dryRun bool) (Result, error) {
	sl := im.DaySlug(day.Date)
	res := Result{Slug: sl, Title: im.DayTitle(day.Date), Commits: len(day.Commits)}
	body := CommitsMarkdown(day.Commits)

	_, err := im.store.Get(ctx, sl)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		res.Created = true
	case err != nil:
		return res, err
	}
	if dryRun {
		return res, nil
	}

	if res.Created {
		_, err = im.store.Create(ctx, models.NoteInput{
			Slug:    sl,
			Title:   res.Title,
			Content: body,
			Tags:    append([]string(nil), im.cfg.Tags...),
		})
	} else {
		_, err = im.store.Update(ctx, models.NoteUpdate{Slug: sl, Content: &body})
	}
	if err != nil {
		return res, fmt.Errorf("write %s: %w", sl, err)
	}
	im.logger.Info("wrote commit digest", zap.String("slug", sl), zap.Int("commits", res.Commits), zap.Bool("created", res.Created))
	return res, nil
}
