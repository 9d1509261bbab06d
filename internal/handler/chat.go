// Package handler exposes the companion over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Little-pure-light/language-Model/internal/agent"
	"github.com/Little-pure-light/language-Model/internal/emotion"
	"github.com/Little-pure-light/language-Model/internal/metrics"
	"github.com/Little-pure-light/language-Model/internal/types"
)

const (
	defaultMemoryLimit = 20
	defaultStateLimit  = 10
	maxPageLimit       = 100
)

// Companion is the chat pipeline served by the API.
type Companion interface {
	Reply(ctx context.Context, req agent.ChatRequest) (agent.ChatResponse, error)
	Memories(ctx context.Context, conversationID string, page types.Page) ([]types.MemoryRecord, error)
	EmotionalStates(ctx context.Context, userID string, page types.Page) ([]types.EmotionalState, error)
}

type chatRequest struct {
	UserMessage    string `json:"user_message" binding:"required"`
	ConversationID string `json:"conversation_id" binding:"required"`
	UserID         string `json:"user_id"`
}

type chatResponse struct {
	AssistantMessage string           `json:"assistant_message"`
	EmotionAnalysis  emotion.Analysis `json:"emotion_analysis"`
	ConversationID   string           `json:"conversation_id"`
}

type memoryItem struct {
	ID               string    `json:"id"`
	UserMessage      string    `json:"user_message"`
	AssistantMessage string    `json:"assistant_message"`
	CreatedAt        time.Time `json:"created_at"`
	ImportanceScore  float64   `json:"importance_score"`
	AccessCount      int       `json:"access_count"`
}

type pageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (q pageQuery) page(defaultLimit int) types.Page {
	return types.Page{Limit: q.Limit, Offset: q.Offset}.Normalize(defaultLimit, maxPageLimit)
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleChat runs one chat turn.
func HandleChat(companion Companion, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			m.ChatRequest("bad_request")
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
			return
		}

		resp, err := companion.Reply(c.Request.Context(), agent.ChatRequest{
			UserMessage:    req.UserMessage,
			ConversationID: req.ConversationID,
			UserID:         req.UserID,
		})
		if err != nil {
			if errors.Is(err, agent.ErrInvalidRequest) {
				m.ChatRequest("bad_request")
				c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			m.ChatRequest("error")
			slog.Error("chat failed", "conversation_id", req.ConversationID, "error", err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to generate a reply"})
			return
		}

		m.ChatRequest("ok")
		c.JSON(http.StatusOK, chatResponse{
			AssistantMessage: resp.AssistantMessage,
			EmotionAnalysis:  resp.Analysis,
			ConversationID:   resp.ConversationID,
		})
	}
}

// ListMemories returns a conversation's stored exchanges, newest first.
func ListMemories(companion Companion) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q pageQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid pagination: " + err.Error()})
			return
		}
		conversationID := c.Param("conversation_id")

		records, err := companion.Memories(c.Request.Context(), conversationID, q.page(defaultMemoryLimit))
		if err != nil {
			slog.Error("list memories failed", "conversation_id", conversationID, "error", err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load memories"})
			return
		}

		items := make([]memoryItem, 0, len(records))
		for _, r := range records {
			items = append(items, memoryItem{
				ID:               r.ID,
				UserMessage:      r.UserMessage,
				AssistantMessage: r.AssistantMessage,
				CreatedAt:        r.CreatedAt,
				ImportanceScore:  r.ImportanceScore,
				AccessCount:      r.AccessCount,
			})
		}
		c.JSON(http.StatusOK, items)
	}
}

// ListEmotionalStates returns a user's emotion events, newest first.
func ListEmotionalStates(companion Companion) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q pageQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid pagination: " + err.Error()})
			return
		}
		userID := c.Param("user_id")

		states, err := companion.EmotionalStates(c.Request.Context(), userID, q.page(defaultStateLimit))
		if err != nil {
			slog.Error("list emotional states failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load emotional states"})
			return
		}
		if states == nil {
			states = []types.EmotionalState{}
		}
		c.JSON(http.StatusOK, states)
	}
}
