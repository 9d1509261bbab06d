package memory

import (
	"context"

	"github.com/Little-pure-light/language-Model/internal/types"
)

// MemoryRepo is the conversation-memory side of the record store.
type MemoryRepo interface {
	// SearchSimilar returns conversation memories ordered by similarity, most similar first.
	SearchSimilar(ctx context.Context, conversationID string, embedding []float32, topK int) ([]types.ScoredMemory, error)
	// ListConversation returns conversation memories newest first.
	ListConversation(ctx context.Context, conversationID string, page types.Page) ([]types.MemoryRecord, error)
	// FindConversation returns the memory with the given user message, or nil.
	FindConversation(ctx context.Context, conversationID, userMessage string) (*types.MemoryRecord, error)
	CreateMemory(ctx context.Context, record *types.MemoryRecord) error
	UpdateMemory(ctx context.Context, record *types.MemoryRecord) error
}

// EmotionalStateRepo stores append-only emotion events.
type EmotionalStateRepo interface {
	AddEmotionalState(ctx context.Context, state *types.EmotionalState) error
	ListEmotionalStates(ctx context.Context, userID string, page types.Page) ([]types.EmotionalState, error)
}
