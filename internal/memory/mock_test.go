package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Little-pure-light/language-Model/internal/types"
)

type mockEmbedder struct {
	vec      []float32
	err      error
	queries  []string
	docs     []string
	docCalls int
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.queries = append(m.queries, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

func (m *mockEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	m.docs = append(m.docs, text)
	m.docCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

// mockMemoryRepo keeps records in memory. Similar holds canned semantic results.
type mockMemoryRepo struct {
	mu        sync.Mutex
	records   []types.MemoryRecord
	similar   []types.ScoredMemory
	searchErr error
	listErr   error
	nextID    int
	listCalls []types.Page
}

func (m *mockMemoryRepo) SearchSimilar(ctx context.Context, conversationID string, embedding []float32, topK int) ([]types.ScoredMemory, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	out := m.similar
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (m *mockMemoryRepo) ListConversation(ctx context.Context, conversationID string, page types.Page) ([]types.MemoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, page)
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []types.MemoryRecord
	for _, r := range m.records {
		if r.ConversationID == conversationID && r.MemoryType == types.MemoryTypeConversation {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if page.Offset >= len(out) {
		return nil, nil
	}
	out = out[page.Offset:]
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (m *mockMemoryRepo) FindConversation(ctx context.Context, conversationID, userMessage string) (*types.MemoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ConversationID == conversationID && r.UserMessage == userMessage && r.MemoryType == types.MemoryTypeConversation {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockMemoryRepo) CreateMemory(ctx context.Context, record *types.MemoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	record.ID = fmt.Sprintf("mem-%d", m.nextID)
	m.records = append(m.records, *record)
	return nil
}

func (m *mockMemoryRepo) UpdateMemory(ctx context.Context, record *types.MemoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == record.ID {
			m.records[i] = *record
			return nil
		}
	}
	return fmt.Errorf("memory %s not found", record.ID)
}

type mockStateRepo struct {
	states []types.EmotionalState
	err    error
}

func (m *mockStateRepo) AddEmotionalState(ctx context.Context, state *types.EmotionalState) error {
	if m.err != nil {
		return m.err
	}
	m.states = append(m.states, *state)
	return nil
}

func (m *mockStateRepo) ListEmotionalStates(ctx context.Context, userID string, page types.Page) ([]types.EmotionalState, error) {
	var out []types.EmotionalState
	for i := len(m.states) - 1; i >= 0; i-- {
		if m.states[i].UserID == userID {
			out = append(out, m.states[i])
		}
	}
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}
