package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/cli"
	"github.com/hyperjump/neuralvault/internal/indexer"
	"github.com/hyperjump/neuralvault/internal/keyword"
	"github.com/hyperjump/neuralvault/internal/models"
)

func (a *app) printSearchUsage(fs interface{ PrintDefaults() }) {
	fmt.Fprintf(a.stderr, "Usage: neuralvault search [flags] <query>\n\n")
	fmt.Fprintf(a.stderr, "Query is all remaining arguments joined by spaces. Quote a phrase to match it\nas written; prefix a word with - to exclude notes containing it.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(a.stderr, `
Without --server the notes directory is indexed in memory for this query,
so searching never contends with a running server for the index files.

Examples:
  neuralvault search postgres vacuum
  neuralvault search --tag ops --limit 5 rollout
  neuralvault search '"connection pool" -mysql'
  neuralvault search --server http://localhost:8080 --format json kubernetes
`)
}

func (a *app) runSearch(args []string) error {
	fs, configPath := a.newFlagSet("search")
	serverURL := fs.String("server", "", "server URL (empty = index the notes directory in memory)")
	limit := fs.Int("limit", 0, "number of results (default from config)")
	tag := fs.String("tag", "", "only notes carrying this tag")
	formatStr := formatFlag(fs)
	fs.Usage = func() { a.printSearchUsage(fs) }
	if err := parse(fs, args); err != nil {
		return err
	}
	query := models.SearchQuery{Query: joinArgs(fs.Args()), Limit: *limit, Tag: *tag}
	if query.Query == "" {
		a.printSearchUsage(fs)
		return errUsage
	}
	format, err := cli.ParseFormat(*formatStr)
	if err != nil {
		return err
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, query)
	} else {
		response, err = a.searchLocal(*configPath, query)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return cli.WriteSearchResults(a.stdout, response, format)
}

func (a *app) searchLocal(configPath string, query models.SearchQuery) (*models.SearchResponse, error) {
	cfg, files, logger, err := a.openStore(configPath)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()
	if err := query.Validate(cfg.Search.DefaultLimit, cfg.Search.MaxLimit); err != nil {
		return nil, err
	}

	index, err := keyword.NewBleveIndex("")
	if err != nil {
		return nil, err
	}
	defer index.Close()
	ctx := context.Background()
	if _, err := indexer.NewIndexer(files, index, indexer.WithLogger(logger)).Reindex(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := index.Search(ctx, query.Query, query.Limit, &keyword.SearchOptions{
		TitleBoost: cfg.Search.TitleBoost,
		Fuzziness:  cfg.Search.Fuzziness,
		Tag:        query.Tag,
	})
	if err != nil {
		return nil, err
	}
	response := &models.SearchResponse{
		Query:     query.Query,
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	}
	if cfg.Search.SuggestOrDefault() {
		if response.Suggestions, err = keyword.SpellCheckerFor(index).Suggestions(query.Query); err != nil {
			logger.Warn("spell check failed", zap.Error(err))
		}
	}
	return response, nil
}

func searchViaHTTP(serverURL string, query models.SearchQuery) (*models.SearchResponse, error) {
	params := url.Values{"q": {query.Query}}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Tag != "" {
		params.Set("tag", query.Tag)
	}
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/search?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}
