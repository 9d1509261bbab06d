// Package agent runs the chat pipeline for the companion persona.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/Little-pure-light/language-Model/internal/emotion"
	"github.com/Little-pure-light/language-Model/internal/memory"
	"github.com/Little-pure-light/language-Model/internal/metrics"
	"github.com/Little-pure-light/language-Model/internal/models"
	"github.com/Little-pure-light/language-Model/internal/personality"
	"github.com/Little-pure-light/language-Model/internal/types"
)

// DefaultUserID is used when a chat request carries no user id.
const DefaultUserID = "default_user"

// DefaultTemperature is the sampling temperature used when none is configured.
const DefaultTemperature = 0.8

var tracer = otel.Tracer("chenguang.agent")

var (
	// ErrInvalidRequest marks requests rejected before any work is done.
	ErrInvalidRequest = errors.New("invalid chat request")
	// ErrGeneration marks a failed completion; no reply is produced.
	ErrGeneration = errors.New("generation failed")
)

// MemoryService is the memory side of the pipeline.
type MemoryService interface {
	Recall(ctx context.Context, conversationID, query string) memory.Result
	History(ctx context.Context, conversationID string, limit int) memory.Result
	Save(ctx context.Context, req memory.SaveRequest) error
	SaveEmotionalState(ctx context.Context, userID string, analysis emotion.Analysis, contextText string) error
	ListMemories(ctx context.Context, conversationID string, page types.Page) ([]types.MemoryRecord, error)
	ListEmotionalStates(ctx context.Context, userID string, page types.Page) ([]types.EmotionalState, error)
}

// PromptComposer builds the model input for one turn.
type PromptComposer interface {
	Compose(userMessage, recalled, history string) ([]*genai.Content, emotion.Analysis, error)
}

// Completer produces the assistant reply.
type Completer interface {
	Name() string
	Complete(ctx context.Context, contents []*genai.Content, opts models.CompletionOptions) (string, error)
}

// Config tunes the pipeline.
type Config struct {
	HistoryLimit int
	MaxTokens    int
	// Temperature falls back to DefaultTemperature when nil.
	Temperature *float64
	AIID        string
}

// ChatRequest is one user turn.
type ChatRequest struct {
	UserMessage    string
	ConversationID string
	UserID         string
}

// ChatResponse is the reply plus the analysis of the user message.
type ChatResponse struct {
	AssistantMessage string
	Analysis         emotion.Analysis
	ConversationID   string
}

// Companion wires memory, prompt composition, generation and personality learning.
type Companion struct {
	memory      MemoryService
	composer    PromptComposer
	generator   Completer
	personality personality.Repo
	metrics     *metrics.Metrics
	cfg         Config
}

// NewCompanion builds a Companion. m may be nil.
func NewCompanion(mem MemoryService, composer PromptComposer, generator Completer, personalityRepo personality.Repo, m *metrics.Metrics, cfg Config) *Companion {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 5
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Temperature == nil {
		t := DefaultTemperature
		cfg.Temperature = &t
	}
	if cfg.AIID == "" {
		cfg.AIID = types.DefaultAIID
	}
	return &Companion{
		memory:      mem,
		composer:    composer,
		generator:   generator,
		personality: personalityRepo,
		metrics:     m,
		cfg:         cfg,
	}
}

// Reply runs one turn: recall, compose, generate, then persist.
// Only an invalid request or a generation failure is returned as an error.
func (c *Companion) Reply(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	// the message is stored and analyzed as sent; trimming only decides emptiness
	if strings.TrimSpace(req.UserMessage) == "" {
		return ChatResponse{}, fmt.Errorf("%w: user_message is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.ConversationID) == "" {
		return ChatResponse{}, fmt.Errorf("%w: conversation_id is required", ErrInvalidRequest)
	}
	if req.UserID == "" {
		req.UserID = DefaultUserID
	}

	ctx, span := tracer.Start(ctx, "Companion.Reply", trace.WithAttributes(
		attribute.String("conversation.id", req.ConversationID),
		attribute.String("user.id", req.UserID),
	))
	defer span.End()

	recalled, history := c.gatherContext(ctx, req.ConversationID, req.UserMessage)

	contents, analysis, err := c.composer.Compose(req.UserMessage, recalled.Text, history.Text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compose failed")
		return ChatResponse{}, fmt.Errorf("failed to compose prompt: %w", err)
	}
	span.SetAttributes(
		attribute.String("emotion.dominant", string(analysis.DominantEmotion)),
		attribute.Float64("emotion.intensity", analysis.Intensity),
	)

	reply, err := c.generate(ctx, contents)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return ChatResponse{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	c.persist(ctx, req, reply, analysis)

	return ChatResponse{
		AssistantMessage: reply,
		Analysis:         analysis,
		ConversationID:   req.ConversationID,
	}, nil
}

// gatherContext fetches recall and history concurrently. Both reads degrade
// to empty text on failure.
func (c *Companion) gatherContext(ctx context.Context, conversationID, userMessage string) (memory.Result, memory.Result) {
	ctx, span := tracer.Start(ctx, "Companion.gatherContext")
	defer span.End()

	var recalled, history memory.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recalled = c.memory.Recall(gctx, conversationID, userMessage)
		return nil
	})
	g.Go(func() error {
		history = c.memory.History(gctx, conversationID, c.cfg.HistoryLimit)
		return nil
	})
	_ = g.Wait()

	c.metrics.Recall(string(recalled.Source), recalled.Status.String())
	c.metrics.Recall(string(memory.SourceHistory), history.Status.String())
	span.SetAttributes(
		attribute.String("recall.source", string(recalled.Source)),
		attribute.String("recall.status", recalled.Status.String()),
		attribute.String("history.status", history.Status.String()),
	)
	return recalled, history
}

func (c *Companion) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	ctx, span := tracer.Start(ctx, "Companion.generate", trace.WithAttributes(
		attribute.String("llm.model", c.generator.Name()),
	))
	defer span.End()

	start := time.Now()
	reply, err := c.generator.Complete(ctx, contents, models.CompletionOptions{
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	c.metrics.Generation(c.generator.Name(), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		slog.Error("generation failed", "model", c.generator.Name(), "error", err)
		return "", err
	}
	return reply, nil
}

// persist records the exchange, the emotion event and the personality update.
// Each step is independent and failures are logged and dropped.
func (c *Companion) persist(ctx context.Context, req ChatRequest, reply string, analysis emotion.Analysis) {
	// the reply is already generated; a disconnecting client must not drop the writes
	ctx, span := tracer.Start(context.WithoutCancel(ctx), "Companion.persist")
	defer span.End()

	if err := c.memory.Save(ctx, memory.SaveRequest{
		ConversationID:   req.ConversationID,
		UserMessage:      req.UserMessage,
		AssistantMessage: reply,
		Analysis:         analysis,
		AIID:             c.cfg.AIID,
	}); err != nil {
		c.persistFailed(span, "memory", req.ConversationID, err)
	}

	if err := c.memory.SaveEmotionalState(ctx, req.UserID, analysis, req.UserMessage); err != nil {
		c.persistFailed(span, "emotional_state", req.ConversationID, err)
	}

	if c.personality == nil {
		return
	}
	engine := personality.New(req.ConversationID, c.personality)
	if err := engine.Load(ctx); err != nil {
		// saving defaults here would overwrite the stored snapshot
		c.persistFailed(span, "personality", req.ConversationID, err)
		return
	}
	engine.Learn(req.UserMessage, reply, &analysis)
	if err := engine.Save(ctx); err != nil {
		c.persistFailed(span, "personality", req.ConversationID, err)
		return
	}
	summary := engine.Summary()
	slog.Debug("personality updated", "conversation_id", req.ConversationID,
		"total_interactions", summary.TotalInteractions, "traits", summary.Traits)
}

func (c *Companion) persistFailed(span trace.Span, stage, conversationID string, err error) {
	slog.Error("persistence failed", "stage", stage, "conversation_id", conversationID, "error", err)
	span.RecordError(err, trace.WithAttributes(attribute.String("stage", stage)))
	c.metrics.PersistenceFailure(stage)
}

// Memories pages through a conversation's stored exchanges, newest first.
func (c *Companion) Memories(ctx context.Context, conversationID string, page types.Page) ([]types.MemoryRecord, error) {
	return c.memory.ListMemories(ctx, conversationID, page)
}

// EmotionalStates pages through a user's emotion events, newest first.
func (c *Companion) EmotionalStates(ctx context.Context, userID string, page types.Page) ([]types.EmotionalState, error) {
	return c.memory.ListEmotionalStates(ctx, userID, page)
}
