package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/neuralvault/internal/apperr"
	"github.com/hyperjump/neuralvault/internal/models"
	"github.com/hyperjump/neuralvault/internal/ranking"
	"github.com/hyperjump/neuralvault/internal/slug"
	"github.com/hyperjump/neuralvault/internal/storage"
	"github.com/hyperjump/neuralvault/pkg/utils"
)

const (
	chatSystemPrompt = "You are Neural Vault, a helpful assistant. Answer concisely and practically. " +
		"Use the provided CONTEXT when relevant. If the answer is not in the context, say so briefly " +
		"and then answer from general knowledge."
	vaultSystemPrompt = "You are Neural Vault. Answer the user's question based only on the provided notes. " +
		"If a detail is not found in the notes, say you cannot find it. Cite the notes you used."

	noChatContext  = "No directly relevant notes were found."
	noVaultContext = "(No relevant notes found)"

	defaultReply  = "Neural Vault had trouble forming a reply."
	defaultAnswer = "I couldn't generate an answer at this time."

	msgMisconfigured = "server misconfigured"
	msgUpstream      = "error talking to the assistant"

	vaultTemperature    = 0.2
	defaultHistoryLimit = 10
)

// Gateway builds prompts from notes and forwards them to a ChatModel.
type Gateway struct {
	store        storage.NoteStore
	model        ChatModel
	retrieval    *ranking.RetrievalConfig
	chatRanker   *ranking.Ranker
	vaultRanker  *ranking.Ranker
	historyLimit int
	maxTokens    int
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRetrieval overrides the retrieval weights, caps and result sizes.
func WithRetrieval(c *ranking.RetrievalConfig) GatewayOption {
	return func(g *Gateway) {
		if c != nil {
			cp := *c
			g.retrieval = &cp
		}
	}
}

// WithHistoryLimit caps the number of conversation turns sent upstream.
func WithHistoryLimit(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.historyLimit = n
		}
	}
}

// WithMaxTokens caps the length of each reply.
func WithMaxTokens(n int) GatewayOption {
	return func(g *Gateway) { g.maxTokens = n }
}

// WithLimiter throttles upstream calls.
func WithLimiter(l *rate.Limiter) GatewayOption {
	return func(g *Gateway) { g.limiter = l }
}

// NewGateway returns a gateway over store. A nil model makes every call fail
// with a misconfiguration error.
func NewGateway(store storage.NoteStore, m ChatModel, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:        store,
		model:        m,
		retrieval:    ranking.DefaultRetrievalConfig(),
		historyLimit: defaultHistoryLimit,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.retrieval.ApplyDefaults()
	g.chatRanker = ranking.NewRanker(ranking.NewSubstringScorer(g.retrieval), g.retrieval.ChatTopN)
	g.vaultRanker = ranking.NewRanker(ranking.NewOverlapScorer(g.retrieval), g.retrieval.VaultTopN)
	return g
}

// Ready reports whether a chat model is configured.
func (g *Gateway) Ready() bool { return g.model != nil }

// Chat answers the latest turn of a conversation. The note named by
// req.NoteSlug is the context when it exists; otherwise the best matching
// notes for the latest user message are.
func (g *Gateway) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	history := g.history(req)
	if len(history) == 0 {
		return nil, apperr.Malformed("missing message(s)")
	}
	if g.model == nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, msgMisconfigured, ErrNotConfigured)
	}

	notes, err := g.chatContext(ctx, req.NoteSlug, lastUserContent(history))
	if err != nil {
		return nil, err
	}
	block := noChatContext
	if len(notes) > 0 {
		parts := make([]string, len(notes))
		for i, n := range notes {
			parts[i] = strings.Join([]string{
				"Title: " + n.Title,
				"Slug: /notes/" + n.Slug,
				"Content:",
				utils.Truncate(n.Content, g.retrieval.ChatSnippetChars),
			}, "\n")
		}
		block = strings.Join(parts, "\n\n---\n\n")
	}

	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(chatSystemPrompt), schema.SystemMessage("CONTEXT:\n"+block))
	for _, m := range history {
		if m.Role == models.RoleAssistant {
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		} else {
			msgs = append(msgs, schema.UserMessage(m.Content))
		}
	}

	reply, err := g.generate(ctx, "chat", msgs)
	if err != nil {
		return nil, err
	}
	if reply == "" {
		reply = defaultReply
	}
	return &models.ChatResponse{Reply: reply, Sources: noteSlugs(notes)}, nil
}

// AskVault answers a one-shot question from the best matching notes only.
func (g *Gateway) AskVault(ctx context.Context, question string) (*models.VaultAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.Malformed("missing question")
	}
	if g.model == nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, msgMisconfigured, ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := g.vaultRanker.Rank(question, g.store.All(ctx))
	blocks := make([]string, len(ranked))
	for i, r := range ranked {
		blocks[i] = fmt.Sprintf("[%s]:\nTitle: %s\nContent:\n\"\"\"\n%s\n\"\"\"",
			r.Note.Slug, r.Note.Title, utils.Head(r.Note.Content, g.retrieval.VaultSnippetChars))
	}
	notesContext := strings.Join(blocks, "\n\n")
	if notesContext == "" {
		notesContext = noVaultContext
	}

	msgs := []*schema.Message{
		schema.SystemMessage(vaultSystemPrompt),
		schema.SystemMessage("Here are the top relevant notes:\n\n" + notesContext),
		schema.UserMessage(question),
	}
	answer, err := g.generate(ctx, "vault", msgs, model.WithTemperature(vaultTemperature))
	if err != nil {
		return nil, err
	}
	if answer == "" {
		answer = defaultAnswer
	}
	return &models.VaultAnswer{Answer: answer, Sources: ranking.Slugs(ranked)}, nil
}

// history keeps user and assistant turns that carry content and were not
// failures, newest historyLimit of them.
func (g *Gateway) history(req models.ChatRequest) []models.ChatMessage {
	var out []models.ChatMessage
	for _, m := range req.Messages {
		if m.Error || strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			continue
		}
		out = append(out, m)
	}
	if len(req.Messages) == 0 && strings.TrimSpace(req.Message) != "" {
		out = append(out, models.ChatMessage{Role: models.RoleUser, Content: req.Message})
	}
	if len(out) > g.historyLimit {
		out = out[len(out)-g.historyLimit:]
	}
	return out
}

func (g *Gateway) chatContext(ctx context.Context, noteSlug, query string) ([]*models.Note, error) {
	if sl := slug.Normalize(noteSlug); sl != "" {
		n, err := g.store.Get(ctx, sl)
		switch {
		case err == nil:
			return []*models.Note{n}, nil
		case !apperr.Is(err, apperr.KindNotFound):
			return nil, err
		}
		g.logger.Debug("chat note not found, ranking vault", zap.String("slug", sl))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ranked := g.chatRanker.Rank(query, g.store.All(ctx))
	notes := make([]*models.Note, len(ranked))
	for i, r := range ranked {
		notes[i] = r.Note
	}
	return notes, nil
}

func (g *Gateway) generate(ctx context.Context, endpoint string, msgs []*schema.Message, opts ...model.Option) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.logger.Warn("chat rate limit wait failed", zap.String("endpoint", endpoint), zap.Error(err))
			return "", apperr.Wrap(apperr.KindUpstreamUnavailable, msgUpstream, err)
		}
	}
	if g.maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(g.maxTokens))
	}
	g.logger.Debug("chat request", zap.String("endpoint", endpoint), zap.Int("messages", len(msgs)))
	resp, err := g.model.Generate(ctx, msgs, opts...)
	if err != nil {
		g.logger.Error("chat upstream failed", zap.String("endpoint", endpoint), zap.Error(err))
		return "", apperr.Wrap(apperr.KindUpstreamUnavailable, msgUpstream, err)
	}
	if resp == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Content), nil
}

func lastUserContent(history []models.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

func noteSlugs(notes []*models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Slug
	}
	return out
}
