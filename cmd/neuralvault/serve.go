package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/indexer"
	"github.com/hyperjump/neuralvault/internal/keyword"
	"github.com/hyperjump/neuralvault/internal/server"
	"github.com/hyperjump/neuralvault/internal/storage"
	"github.com/hyperjump/neuralvault/internal/watcher"
	"github.com/hyperjump/neuralvault/pkg/utils"
)

func (a *app) runServer(args []string) error {
	fs, configPath := a.newFlagSet("server")
	debug := fs.Bool("debug", false, "enable debug logging (requests, reindexing, file events)")
	if err := parse(fs, args); err != nil {
		return err
	}
	cfg, err := a.loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", *configPath),
		zap.String("notes_dir", cfg.Notes.Dir),
		zap.Bool("debug", debugMode),
	)

	files := storage.NewFileStore(cfg.Notes.Dir,
		storage.WithExtension(cfg.Notes.Extension),
		storage.WithLogger(logger),
	)
	index, err := keyword.NewBleveIndex(cfg.Search.IndexPath)
	if err != nil {
		return fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	defer index.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idx := indexer.NewIndexer(files, index, indexer.WithLogger(logger))
	n, err := idx.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("initial reindex failed: %w", err)
	}
	logger.Info("notes indexed", zap.Int("notes", n))
	store := indexer.NewIndexedStore(idx)

	if cfg.Watch.EnabledOrDefault() {
		w := watcher.NewWatcher(files.Root(), files.SlugFor,
			func(sl string) {
				if err := idx.Sync(ctx, sl); err != nil {
					logger.Warn("watch reindex failed", zap.String("slug", sl), zap.Error(err))
				}
			},
			watcher.WithDebounce(cfg.Watch.Debounce()),
			watcher.WithLogger(logger),
		)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
	}

	gw, err := newGateway(ctx, cfg, store, logger, false)
	if err != nil {
		return err
	}

	srv := server.NewServer(store, index, gw, cfg, logger,
		server.WithDiskUsage(files.DiskUsage),
		server.WithNoteCount(files.Count),
	)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}
