package personality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Little-pure-light/language-Model/internal/emotion"
	"github.com/Little-pure-light/language-Model/internal/types"
	"github.com/Little-pure-light/language-Model/internal/utils"
)

const (
	snapshotUserMessage      = "個性檔案更新"
	snapshotAssistantMessage = "個性特質已儲存"
)

// Repo persists the single personality row of a conversation.
type Repo interface {
	// GetPersonality returns the personality row, or nil when none exists.
	GetPersonality(ctx context.Context, conversationID string) (*types.MemoryRecord, error)
	UpsertPersonality(ctx context.Context, record *types.MemoryRecord) error
}

// Summary is a read-only view of the state.
type Summary struct {
	Traits            map[string]float64 `json:"traits"`
	EmotionalProfile  EmotionalProfile   `json:"emotional_profile"`
	KnowledgeDomains  map[string]int     `json:"knowledge_domains"`
	TotalInteractions int                `json:"total_interactions"`
}

// Engine owns the personality state of one conversation.
type Engine struct {
	conversationID string
	repo           Repo
	nowFunc        func() time.Time

	mu    sync.Mutex
	state State
}

// New returns an engine with default state. Call Load to rehydrate it.
func New(conversationID string, repo Repo) *Engine {
	return &Engine{
		conversationID: conversationID,
		repo:           repo,
		nowFunc:        time.Now,
		state:          DefaultState(),
	}
}

// Load reads the stored snapshot. A missing row keeps the defaults; a
// malformed snapshot is logged and replaced by defaults.
func (e *Engine) Load(ctx context.Context) error {
	record, err := e.repo.GetPersonality(ctx, e.conversationID)
	if errors.Is(err, types.ErrMalformedRecord) {
		// the next Save overwrites the bad row in place
		slog.Warn("malformed personality row, using defaults", "conversation_id", e.conversationID, "error", err)
		record, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load personality: %w", err)
	}

	state := DefaultState()
	if record != nil && strings.TrimSpace(record.DocumentContent) != "" {
		var stored State
		if err := json.Unmarshal([]byte(record.DocumentContent), &stored); err != nil {
			slog.Warn("malformed personality snapshot, using defaults", "conversation_id", e.conversationID, "error", err)
		} else {
			stored.normalize()
			state = stored
		}
	}

	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
	return nil
}

// Learn updates the state from one exchange. analysis may be nil.
func (e *Engine) Learn(userMessage, assistantMessage string, analysis *emotion.Analysis) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch emotion.Sentiment(strings.ToLower(userMessage)) {
	case emotion.LabelPositive:
		e.state.Emotions.Positive++
	case emotion.LabelNegative:
		e.state.Emotions.Negative++
	default:
		e.state.Emotions.Neutral++
	}

	if analysis != nil {
		e.state.EmotionHistory = append(e.state.EmotionHistory, Snapshot{
			Timestamp:       e.nowFunc().Format(time.RFC3339),
			DominantEmotion: analysis.DominantEmotion,
			Intensity:       analysis.Intensity,
			Confidence:      analysis.Confidence,
			UserMessage:     utils.TruncateRunes(userMessage, messagePrefix),
		})
		for _, d := range traitDeltas[analysis.DominantEmotion] {
			e.adjustTrait(d.trait, d.delta*analysis.Intensity)
		}
	}

	for _, d := range domainKeywords {
		for _, kw := range d.keywords {
			if strings.Contains(userMessage, kw) {
				e.state.Domains[d.domain]++
				break
			}
		}
	}
}

// adjustTrait applies delta to a known trait and clamps it. Caller holds e.mu.
func (e *Engine) adjustTrait(trait string, delta float64) {
	value, ok := e.state.Traits[trait]
	if !ok {
		return
	}
	e.state.Traits[trait] = emotion.Clamp01(value + delta)
}

// Save writes the snapshot, keeping the last 50 history entries.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	e.state = e.state.trimmed()
	snapshot := e.state.clone()
	e.mu.Unlock()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode personality: %w", err)
	}

	record := &types.MemoryRecord{
		ConversationID:   e.conversationID,
		UserMessage:      snapshotUserMessage,
		AssistantMessage: snapshotAssistantMessage,
		DocumentContent:  string(payload),
		MemoryType:       types.MemoryTypePersonality,
		Platform:         types.DefaultPlatform,
		CreatedAt:        e.nowFunc(),
	}
	if err := e.repo.UpsertPersonality(ctx, record); err != nil {
		return fmt.Errorf("failed to save personality: %w", err)
	}
	return nil
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Summary reports traits, counters and domains.
func (e *Engine) Summary() Summary {
	s := e.State()
	return Summary{
		Traits:            s.Traits,
		EmotionalProfile:  s.Emotions,
		KnowledgeDomains:  s.Domains,
		TotalInteractions: s.Emotions.Total(),
	}
}
