package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/chat"
	"github.com/hyperjump/neuralvault/internal/cli"
	"github.com/hyperjump/neuralvault/internal/config"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/storage"
)

// newGateway builds the chat gateway. When requireModel is false a missing
// credential yields a gateway without a model, whose calls fail with
// "server misconfigured".
func newGateway(ctx context.Context, cfg *config.Config, store storage.NoteStore, logger *zap.Logger, requireModel bool) (*chat.Gateway, error) {
	m, err := chat.NewModel(ctx, &cfg.Chat)
	if err != nil {
		if requireModel {
			return nil, err
		}
		logger.Warn("chat disabled", zap.String("provider", cfg.Chat.Provider), zap.Error(err))
		m = nil
	}
	return chat.NewGateway(store, m,
		chat.WithLogger(logger),
		chat.WithRetrieval(&cfg.Retrieval),
		chat.WithHistoryLimit(cfg.Chat.HistoryLimit),
		chat.WithMaxTokens(cfg.Chat.MaxTokens),
		chat.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Chat.RequestsPerSecond), cfg.Chat.Burst)),
	), nil
}

func (a *app) runAsk(args []string) error {
	fs, configPath := a.newFlagSet("ask")
	formatStr := formatFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	question := joinArgs(fs.Args())
	if question == "" {
		fmt.Fprintln(a.stderr, "Usage: neuralvault ask [flags] <question>")
		return errUsage
	}
	format, err := cli.ParseFormat(*formatStr)
	if err != nil {
		return err
	}
	cfg, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	gw, err := newGateway(ctx, cfg, files, logger, true)
	if err != nil {
		return err
	}
	answer, err := gw.AskVault(ctx, question)
	if err != nil {
		return userError(err)
	}
	return cli.WriteAnswer(a.stdout, answer, format)
}

// runChat sends one message when given as arguments, otherwise reads a
// conversation line by line from stdin until EOF or "/quit".
func (a *app) runChat(args []string) error {
	fs, configPath := a.newFlagSet("chat")
	note := fs.String("note", "", "slug of the note to chat about (default: whole vault)")
	if err := parse(fs, args); err != nil {
		return err
	}
	cfg, files, logger, err := a.openStore(*configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	gw, err := newGateway(ctx, cfg, files, logger, true)
	if err != nil {
		return err
	}

	if msg := joinArgs(fs.Args()); msg != "" {
		resp, err := gw.Chat(ctx, models.ChatRequest{Message: msg, NoteSlug: *note})
		if err != nil {
			return userError(err)
		}
		fmt.Fprintln(a.stdout, resp.Reply)
		return nil
	}

	var history []models.ChatMessage
	scanner := bufio.NewScanner(a.stdin)
	fmt.Fprint(a.stdout, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			break
		}
		if line == "" {
			fmt.Fprint(a.stdout, "> ")
			continue
		}
		history = append(history, models.ChatMessage{Role: models.RoleUser, Content: line})
		resp, err := gw.Chat(ctx, models.ChatRequest{Messages: history, NoteSlug: *note})
		if err != nil {
			msg := userError(err).Error()
			history = append(history, models.ChatMessage{Role: models.RoleAssistant, Content: msg, Error: true})
			fmt.Fprintf(a.stdout, "! %s\n> ", msg)
			continue
		}
		history = append(history, models.ChatMessage{Role: models.RoleAssistant, Content: resp.Reply})
		fmt.Fprintf(a.stdout, "%s\n> ", resp.Reply)
	}
	fmt.Fprintln(a.stdout)
	return scanner.Err()
}

// userError keeps only the user-facing message of gateway errors. The
// gateway has already logged the cause.
func userError(err error) error {
	if k := apperr.KindOf(err); k != apperr.KindInternal {
		return errors.New(apperr.Message(err, string(k)))
	}
	return err
}
