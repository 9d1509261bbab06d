package types

import (
	"errors"
	"time"
)

const (
	// MemoryTypeConversation is one user/assistant exchange.
	MemoryTypeConversation = "conversation"
	// MemoryTypePersonality holds the serialized personality snapshot of a conversation.
	MemoryTypePersonality = "personality"
)

const (
	// DefaultAIID identifies the persona that wrote a memory.
	DefaultAIID = "xiaochenguang_v1"
	// DefaultPlatform is recorded on every memory row.
	DefaultPlatform = "Web"
)

// ErrMalformedRecord marks a stored row that fails validation.
var ErrMalformedRecord = errors.New("malformed memory record")

// MemoryRecord is a row of the memories table.
type MemoryRecord struct {
	ID               string    `json:"id" validate:"required"`
	ConversationID   string    `json:"conversation_id" validate:"required"`
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
	DocumentContent  string    `json:"document_content"`
	MemoryType       string    `json:"memory_type" validate:"required,oneof=conversation personality"`
	ImportanceScore  float64   `json:"importance_score" validate:"gte=0"`
	AccessCount      int       `json:"access_count" validate:"gte=0"`
	Platform         string    `json:"platform"`
	AIID             string    `json:"ai_id"`
	MessageType      string    `json:"message_type"`
	Embedding        []float32 `json:"-"` // embedding vectors, not serialized
	CreatedAt        time.Time `json:"created_at" validate:"required"`
}

// ScoredMemory is a memory returned by a similarity search.
type ScoredMemory struct {
	MemoryRecord
	Similarity float64 `json:"similarity"`
}

// EmotionalState is an append-only emotion event for a user.
type EmotionalState struct {
	ID          string    `json:"id" validate:"required"`
	UserID      string    `json:"user_id" validate:"required"`
	EmotionType string    `json:"emotion_type" validate:"required"`
	Intensity   float64   `json:"intensity" validate:"gte=0"`
	Context     string    `json:"context"`
	Timestamp   time.Time `json:"timestamp" validate:"required"`
}

// Page selects a window of rows, newest first.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize applies defaults and bounds to a page request.
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
