package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Little-pure-light/language-Model/internal/emotion"
	"github.com/Little-pure-light/language-Model/internal/types"
)

const (
	recallHeader     = "【喚醒記憶】"
	userSaidFormat   = "- 你曾對我說：「%s」"
	replyFormat      = "- 我當時回應你：「%s」"
	historyUserLabel = "用戶"
)

// Config tunes recall and history.
type Config struct {
	// RecallLimit is the top-k for semantic and keyword recall.
	RecallLimit int
	// RecentLimit is the number of recent memories used as the last recall fallback.
	RecentLimit int
	// PersonaName labels assistant lines in history.
	PersonaName string
	// AIID is recorded on saved memories when the request does not set one.
	AIID string
}

func (c Config) withDefaults() Config {
	if c.RecallLimit <= 0 {
		c.RecallLimit = 3
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = 5
	}
	if c.PersonaName == "" {
		c.PersonaName = "小宸光"
	}
	if c.AIID == "" {
		c.AIID = types.DefaultAIID
	}
	return c
}

// SaveRequest is one exchange to persist.
type SaveRequest struct {
	ConversationID   string
	UserMessage      string
	AssistantMessage string
	Analysis         emotion.Analysis
	AIID             string
}

// Service recalls and persists conversation memories.
type Service struct {
	embedder Embedder
	memories MemoryRepo
	states   EmotionalStateRepo
	cfg      Config
	nowFunc  func() time.Time
}

// NewService returns a memory service. embedder may be nil, in which case
// recall starts at the keyword stage.
func NewService(embedder Embedder, memories MemoryRepo, states EmotionalStateRepo, cfg Config) *Service {
	return &Service{
		embedder: embedder,
		memories: memories,
		states:   states,
		cfg:      cfg.withDefaults(),
		nowFunc:  time.Now,
	}
}

// Recall finds memories related to query: semantic search, then keyword match,
// then the most recent exchanges. It never returns an error; failures are
// reported in the result.
func (s *Service) Recall(ctx context.Context, conversationID, query string) Result {
	var errs []error

	records, err := s.semanticSearch(ctx, conversationID, query)
	source := SourceSemantic
	if err != nil {
		slog.Warn("semantic recall failed", "conversation_id", conversationID, "error", err)
		errs = append(errs, err)
	}

	if len(records) == 0 {
		records, err = s.keywordSearch(ctx, conversationID, query)
		source = SourceKeyword
		if err != nil {
			slog.Warn("keyword recall failed", "conversation_id", conversationID, "error", err)
			errs = append(errs, err)
		}
	}

	if len(records) == 0 {
		records, err = s.memories.ListConversation(ctx, conversationID, types.Page{Limit: s.cfg.RecentLimit})
		source = SourceRecent
		if err != nil {
			err = fmt.Errorf("failed to list recent memories: %w", err)
			slog.Warn("recent recall failed", "conversation_id", conversationID, "error", err)
			errs = append(errs, err)
		}
	}

	text := formatRecall(records)
	switch {
	case text != "":
		return Result{Status: StatusFound, Source: source, Text: text}
	case len(errs) > 0:
		return Result{Status: StatusFailed, Source: SourceNone, Err: errors.Join(errs...)}
	default:
		return Result{Status: StatusEmpty, Source: SourceNone}
	}
}

func (s *Service) semanticSearch(ctx context.Context, conversationID, query string) ([]types.MemoryRecord, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("semantic search unavailable: no embedder configured")
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vec) == 0 {
		return nil, nil
	}
	scored, err := s.memories.SearchSimilar(ctx, conversationID, vec, s.cfg.RecallLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar memories: %w", err)
	}
	records := make([]types.MemoryRecord, 0, len(scored))
	for _, m := range scored {
		records = append(records, m.MemoryRecord)
	}
	return records, nil
}

// keywordSearch scans up to twice the recall limit of candidates for any
// whitespace-delimited query token in the user message.
func (s *Service) keywordSearch(ctx context.Context, conversationID, query string) ([]types.MemoryRecord, error) {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	limit := s.cfg.RecallLimit
	candidates, err := s.memories.ListConversation(ctx, conversationID, types.Page{Limit: 2 * limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list keyword candidates: %w", err)
	}

	var matched []types.MemoryRecord
	for _, c := range candidates {
		msg := strings.ToLower(c.UserMessage)
		for _, tok := range tokens {
			if strings.Contains(msg, tok) {
				matched = append(matched, c)
				break
			}
		}
		if len(matched) >= limit {
			break
		}
	}
	return matched, nil
}

func formatRecall(records []types.MemoryRecord) string {
	lines := []string{recallHeader}
	for _, r := range records {
		if r.UserMessage == "" && r.AssistantMessage == "" {
			continue
		}
		lines = append(lines,
			fmt.Sprintf(userSaidFormat, r.UserMessage),
			fmt.Sprintf(replyFormat, r.AssistantMessage),
		)
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// History renders the latest limit exchanges oldest-first.
func (s *Service) History(ctx context.Context, conversationID string, limit int) Result {
	if limit <= 0 {
		return Result{Status: StatusEmpty, Source: SourceNone}
	}
	records, err := s.memories.ListConversation(ctx, conversationID, types.Page{Limit: limit})
	if err != nil {
		err = fmt.Errorf("failed to load history: %w", err)
		slog.Warn("history unavailable", "conversation_id", conversationID, "error", err)
		return Result{Status: StatusFailed, Source: SourceNone, Err: err}
	}
	if len(records) == 0 {
		return Result{Status: StatusEmpty, Source: SourceNone}
	}

	lines := make([]string, 0, 2*len(records))
	// Oldest -> newest
	for i := len(records) - 1; i >= 0; i-- {
		lines = append(lines,
			historyUserLabel+": "+records[i].UserMessage,
			s.cfg.PersonaName+": "+records[i].AssistantMessage,
		)
	}
	return Result{Status: StatusFound, Source: SourceHistory, Text: strings.Join(lines, "\n")}
}

// Save stores an exchange. An existing memory with the same user message in
// the conversation is updated in place and its access count incremented.
func (s *Service) Save(ctx context.Context, req SaveRequest) error {
	if req.ConversationID == "" {
		return fmt.Errorf("conversation id is required")
	}
	aiID := req.AIID
	if aiID == "" {
		aiID = s.cfg.AIID
	}

	importance := ComputeImportance(req.UserMessage, req.Analysis)

	var embedding []float32
	if s.embedder != nil {
		vec, err := s.embedder.EmbedDocument(ctx, req.UserMessage+" "+req.AssistantMessage)
		if err != nil {
			return fmt.Errorf("failed to embed memory: %w", err)
		}
		embedding = vec
	}

	existing, err := s.memories.FindConversation(ctx, req.ConversationID, req.UserMessage)
	if err != nil {
		return fmt.Errorf("failed to look up memory: %w", err)
	}

	now := s.nowFunc()
	if existing != nil {
		existing.AssistantMessage = req.AssistantMessage
		existing.DocumentContent = documentContent(req.UserMessage, req.AssistantMessage)
		existing.Embedding = embedding
		existing.ImportanceScore = importance
		existing.AccessCount++
		existing.AIID = aiID
		existing.Platform = types.DefaultPlatform
		existing.CreatedAt = now
		if err := s.memories.UpdateMemory(ctx, existing); err != nil {
			return fmt.Errorf("failed to update memory: %w", err)
		}
		slog.Debug("memory updated", "conversation_id", req.ConversationID, "access_count", existing.AccessCount, "importance_score", importance)
		return nil
	}

	record := &types.MemoryRecord{
		ConversationID:   req.ConversationID,
		UserMessage:      req.UserMessage,
		AssistantMessage: req.AssistantMessage,
		DocumentContent:  documentContent(req.UserMessage, req.AssistantMessage),
		MemoryType:       types.MemoryTypeConversation,
		ImportanceScore:  importance,
		AccessCount:      1,
		Platform:         types.DefaultPlatform,
		AIID:             aiID,
		MessageType:      "text",
		Embedding:        embedding,
		CreatedAt:        now,
	}
	if err := s.memories.CreateMemory(ctx, record); err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	slog.Debug("memory saved", "conversation_id", req.ConversationID, "importance_score", importance)
	return nil
}

func documentContent(userMessage, assistantMessage string) string {
	return fmt.Sprintf("對話記錄: %s -> %s", userMessage, assistantMessage)
}

// SaveEmotionalState appends an emotion event for the user.
func (s *Service) SaveEmotionalState(ctx context.Context, userID string, analysis emotion.Analysis, contextText string) error {
	if s.states == nil {
		return fmt.Errorf("emotional state repo not configured")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	state := &types.EmotionalState{
		UserID:      userID,
		EmotionType: string(analysis.DominantEmotion),
		Intensity:   analysis.Intensity,
		Context:     contextText,
		Timestamp:   s.nowFunc(),
	}
	if err := s.states.AddEmotionalState(ctx, state); err != nil {
		return fmt.Errorf("failed to save emotional state: %w", err)
	}
	return nil
}

// ListMemories pages through a conversation's memories, newest first.
func (s *Service) ListMemories(ctx context.Context, conversationID string, page types.Page) ([]types.MemoryRecord, error) {
	records, err := s.memories.ListConversation(ctx, conversationID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	return records, nil
}

// ListEmotionalStates pages through a user's emotion events, newest first.
func (s *Service) ListEmotionalStates(ctx context.Context, userID string, page types.Page) ([]types.EmotionalState, error) {
	if s.states == nil {
		return nil, fmt.Errorf("emotional state repo not configured")
	}
	states, err := s.states.ListEmotionalStates(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list emotional states: %w", err)
	}
	return states, nil
}
