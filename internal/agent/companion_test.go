package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Little-pure-light/language-Model/internal/emotion"
	"github.com/Little-pure-light/language-Model/internal/memory"
	"github.com/Little-pure-light/language-Model/internal/metrics"
	"github.com/Little-pure-light/language-Model/internal/models"
	"github.com/Little-pure-light/language-Model/internal/personality"
	"github.com/Little-pure-light/language-Model/internal/types"
)

type fakeMemory struct {
	mu       sync.Mutex
	recall   memory.Result
	history  memory.Result
	saveErr  error
	stateErr error

	historyLimit int
	saves        []memory.SaveRequest
	states       []string
	contexts     []string
}

func (f *fakeMemory) Recall(ctx context.Context, conversationID, query string) memory.Result {
	return f.recall
}

func (f *fakeMemory) History(ctx context.Context, conversationID string, limit int) memory.Result {
	f.mu.Lock()
	f.historyLimit = limit
	f.mu.Unlock()
	return f.history
}

func (f *fakeMemory) Save(ctx context.Context, req memory.SaveRequest) error {
	f.saves = append(f.saves, req)
	return f.saveErr
}

func (f *fakeMemory) SaveEmotionalState(ctx context.Context, userID string, analysis emotion.Analysis, contextText string) error {
	f.states = append(f.states, userID)
	f.contexts = append(f.contexts, contextText)
	return f.stateErr
}

func (f *fakeMemory) ListMemories(ctx context.Context, conversationID string, page types.Page) ([]types.MemoryRecord, error) {
	return []types.MemoryRecord{{ConversationID: conversationID}}, nil
}

func (f *fakeMemory) ListEmotionalStates(ctx context.Context, userID string, page types.Page) ([]types.EmotionalState, error) {
	return []types.EmotionalState{{UserID: userID}}, nil
}

type fakeComposer struct {
	message  string
	recalled string
	history  string
	analysis emotion.Analysis
}

func (f *fakeComposer) Compose(userMessage, recalled, history string) ([]*genai.Content, emotion.Analysis, error) {
	f.message = userMessage
	f.recalled = recalled
	f.history = history
	return []*genai.Content{
		genai.NewContentFromText("system prompt", "system"),
		genai.NewContentFromText(userMessage, "user"),
	}, f.analysis, nil
}

type fakeCompleter struct {
	reply string
	err   error
	opts  models.CompletionOptions
	calls int
}

func (f *fakeCompleter) Name() string { return "fake-model" }

func (f *fakeCompleter) Complete(ctx context.Context, contents []*genai.Content, opts models.CompletionOptions) (string, error) {
	f.calls++
	f.opts = opts
	return f.reply, f.err
}

type fakePersonalityRepo struct {
	record    *types.MemoryRecord
	getErr    error
	upsertErr error
	upserts   int
}

func (f *fakePersonalityRepo) GetPersonality(ctx context.Context, conversationID string) (*types.MemoryRecord, error) {
	return f.record, f.getErr
}

func (f *fakePersonalityRepo) UpsertPersonality(ctx context.Context, record *types.MemoryRecord) error {
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.record = record
	return nil
}

func sadAnalysis() emotion.Analysis {
	return emotion.Analysis{
		DominantEmotion: emotion.EmotionSadness,
		Emotions:        map[emotion.Emotion]float64{emotion.EmotionSadness: 1},
		Intensity:       1.0,
		Confidence:      0.8,
	}
}

func TestReplyRunsPipeline(t *testing.T) {
	mem := &fakeMemory{
		recall:  memory.Result{Status: memory.StatusFound, Source: memory.SourceKeyword, Text: "recalled"},
		history: memory.Result{Status: memory.StatusFound, Source: memory.SourceHistory, Text: "history"},
	}
	composer := &fakeComposer{analysis: sadAnalysis()}
	gen := &fakeCompleter{reply: "抱抱你"}
	repo := &fakePersonalityRepo{}
	c := NewCompanion(mem, composer, gen, repo, nil, Config{AIID: "ai-1"})

	resp, err := c.Reply(context.Background(), ChatRequest{UserMessage: "我很難過", ConversationID: "conv-1"})
	require.NoError(t, err)

	assert.Equal(t, "抱抱你", resp.AssistantMessage)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, emotion.EmotionSadness, resp.Analysis.DominantEmotion)

	assert.Equal(t, "recalled", composer.recalled)
	assert.Equal(t, "history", composer.history)
	assert.Equal(t, 5, mem.historyLimit)
	require.NotNil(t, gen.opts.Temperature)
	assert.InDelta(t, DefaultTemperature, *gen.opts.Temperature, 1e-9)
	assert.Equal(t, 1000, gen.opts.MaxTokens)

	require.Len(t, mem.saves, 1)
	assert.Equal(t, "我很難過", mem.saves[0].UserMessage)
	assert.Equal(t, "抱抱你", mem.saves[0].AssistantMessage)
	assert.Equal(t, "ai-1", mem.saves[0].AIID)
	assert.Equal(t, []string{DefaultUserID}, mem.states)
	assert.Equal(t, []string{"我很難過"}, mem.contexts)

	require.NotNil(t, repo.record)
	var state personality.State
	require.NoError(t, json.Unmarshal([]byte(repo.record.DocumentContent), &state))
	defaults := personality.DefaultState()
	assert.Greater(t, state.Traits[personality.TraitEmpathy], defaults.Traits[personality.TraitEmpathy])
	assert.Len(t, state.EmotionHistory, 1)
	assert.Equal(t, 1, state.Emotions.Negative)
}

func TestReplyRejectsInvalidRequest(t *testing.T) {
	c := NewCompanion(&fakeMemory{}, &fakeComposer{}, &fakeCompleter{reply: "x"}, nil, nil, Config{})

	_, err := c.Reply(context.Background(), ChatRequest{UserMessage: " ", ConversationID: "c"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = c.Reply(context.Background(), ChatRequest{UserMessage: "hi"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestReplyKeepsRawUserMessage(t *testing.T) {
	mem := &fakeMemory{}
	composer := &fakeComposer{analysis: sadAnalysis()}
	repo := &fakePersonalityRepo{}
	c := NewCompanion(mem, composer, &fakeCompleter{reply: "抱抱你"}, repo, nil, Config{})

	raw := "  我很難過\n"
	_, err := c.Reply(context.Background(), ChatRequest{UserMessage: raw, ConversationID: "conv-1"})
	require.NoError(t, err)

	assert.Equal(t, raw, composer.message)
	require.Len(t, mem.saves, 1)
	assert.Equal(t, raw, mem.saves[0].UserMessage)
	assert.Equal(t, []string{raw}, mem.contexts)
}

func TestReplyHonorsZeroTemperature(t *testing.T) {
	gen := &fakeCompleter{reply: "好"}
	zero := 0.0
	c := NewCompanion(&fakeMemory{}, &fakeComposer{analysis: emotion.NeutralAnalysis()}, gen, nil, nil, Config{Temperature: &zero})

	_, err := c.Reply(context.Background(), ChatRequest{UserMessage: "hi", ConversationID: "c"})
	require.NoError(t, err)
	require.NotNil(t, gen.opts.Temperature)
	assert.Zero(t, *gen.opts.Temperature)
}

func TestReplyGenerationFailureSkipsPersistence(t *testing.T) {
	mem := &fakeMemory{}
	repo := &fakePersonalityRepo{}
	gen := &fakeCompleter{err: errors.New("quota exceeded")}
	c := NewCompanion(mem, &fakeComposer{analysis: emotion.NeutralAnalysis()}, gen, repo, nil, Config{})

	_, err := c.Reply(context.Background(), ChatRequest{UserMessage: "hi", ConversationID: "c"})
	require.ErrorIs(t, err, ErrGeneration)
	assert.Empty(t, mem.saves)
	assert.Empty(t, mem.states)
	assert.Zero(t, repo.upserts)
}

func TestReplySwallowsPersistenceFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	mem := &fakeMemory{saveErr: errors.New("db down"), stateErr: errors.New("db down")}
	repo := &fakePersonalityRepo{upsertErr: errors.New("db down")}
	c := NewCompanion(mem, &fakeComposer{analysis: sadAnalysis()}, &fakeCompleter{reply: "在這裡"}, repo, metrics.New(reg), Config{})

	resp, err := c.Reply(context.Background(), ChatRequest{UserMessage: "hi", ConversationID: "c", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "在這裡", resp.AssistantMessage)
	assert.Len(t, mem.saves, 1)
	assert.Equal(t, []string{"u1"}, mem.states)
	assert.Equal(t, 1, repo.upserts)

	count, err := testutil.GatherAndCount(reg, "chenguang_memory_persistence_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestReplySkipsPersonalityWhenLoadFails(t *testing.T) {
	repo := &fakePersonalityRepo{getErr: errors.New("timeout")}
	c := NewCompanion(&fakeMemory{}, &fakeComposer{analysis: sadAnalysis()}, &fakeCompleter{reply: "ok"}, repo, nil, Config{})

	_, err := c.Reply(context.Background(), ChatRequest{UserMessage: "hi", ConversationID: "c"})
	require.NoError(t, err)
	assert.Zero(t, repo.upserts)
}

func TestPagedReads(t *testing.T) {
	c := NewCompanion(&fakeMemory{}, &fakeComposer{}, &fakeCompleter{}, nil, nil, Config{})

	records, err := c.Memories(context.Background(), "conv-9", types.Page{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, "conv-9", records[0].ConversationID)

	states, err := c.EmotionalStates(context.Background(), "u9", types.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "u9", states[0].UserID)
}
