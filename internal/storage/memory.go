package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/Little-pure-light/language-Model/internal/types"
)

// memoryModel maps to the memories table.
type memoryModel struct {
	ID               string `gorm:"primaryKey;type:uuid"`
	ConversationID   string `gorm:"not null"`
	UserMessage      string
	AssistantMessage string
	DocumentContent  string
	MemoryType       string `gorm:"not null"`
	ImportanceScore  float64
	AccessCount      int
	Platform         string
	AIID             string `gorm:"column:ai_id"`
	MessageType      string
	// Embedding stores vector representation for similarity search.
	Embedding *pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
}

// scoredMemoryRow is a similarity search row.
type scoredMemoryRow struct {
	memoryModel
	Similarity float64
}

// MemoryRepo accesses memory data.
type MemoryRepo struct {
	db       *gorm.DB
	table    string
	validate *validator.Validate
}

func (r *MemoryRepo) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// CreateMemory inserts a record, assigning an ID when missing.
func (r *MemoryRepo) CreateMemory(ctx context.Context, record *types.MemoryRecord) error {
	if record == nil {
		return fmt.Errorf("memory cannot be nil")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.validate.Struct(record); err != nil {
		return fmt.Errorf("invalid memory: %w", err)
	}
	model := memoryToModel(record)
	if err := r.query(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	return nil
}

// UpdateMemory overwrites the mutable columns of a record.
func (r *MemoryRepo) UpdateMemory(ctx context.Context, record *types.MemoryRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("memory id is required")
	}
	if err := r.validate.Struct(record); err != nil {
		return fmt.Errorf("invalid memory: %w", err)
	}
	model := memoryToModel(record)
	if err := r.query(ctx).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"assistant_message": model.AssistantMessage,
			"document_content":  model.DocumentContent,
			"importance_score":  model.ImportanceScore,
			"access_count":      model.AccessCount,
			"platform":          model.Platform,
			"ai_id":             model.AIID,
			"embedding":         model.Embedding,
			"created_at":        model.CreatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update memory: %w", err)
	}
	return nil
}

// FindConversation returns the conversation memory with the given user message, or nil.
// A malformed match is skipped.
func (r *MemoryRepo) FindConversation(ctx context.Context, conversationID, userMessage string) (*types.MemoryRecord, error) {
	record, err := r.findOne(r.query(ctx).
		Where("conversation_id = ?", conversationID).
		Where("user_message = ?", userMessage).
		Where("memory_type = ?", types.MemoryTypeConversation))
	if errors.Is(err, types.ErrMalformedRecord) {
		slog.Warn("skipping malformed memory row", "conversation_id", conversationID, "error", err)
		return nil, nil
	}
	return record, err
}

// GetPersonality returns the personality row of a conversation, or nil.
// A malformed row is reported as types.ErrMalformedRecord.
func (r *MemoryRepo) GetPersonality(ctx context.Context, conversationID string) (*types.MemoryRecord, error) {
	return r.findOne(r.personalityQuery(ctx, conversationID))
}

func (r *MemoryRepo) personalityQuery(ctx context.Context, conversationID string) *gorm.DB {
	return r.query(ctx).
		Where("conversation_id = ?", conversationID).
		Where("memory_type = ?", types.MemoryTypePersonality)
}

func (r *MemoryRepo) findOne(query *gorm.DB) (*types.MemoryRecord, error) {
	var records []memoryModel
	if err := query.Order("created_at DESC").Limit(1).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query memory: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	record, err := r.checkRow(records[0])
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// checkRow converts a stored row and validates it.
func (r *MemoryRepo) checkRow(model memoryModel) (types.MemoryRecord, error) {
	record := memoryFromModel(model)
	if err := r.validate.Struct(record); err != nil {
		return types.MemoryRecord{}, fmt.Errorf("%w: id %s: %v", types.ErrMalformedRecord, model.ID, err)
	}
	return record, nil
}

// UpsertPersonality writes the single personality row of a conversation.
// An existing row is overwritten in place even when it no longer validates.
func (r *MemoryRepo) UpsertPersonality(ctx context.Context, record *types.MemoryRecord) error {
	if record == nil {
		return fmt.Errorf("personality cannot be nil")
	}

	var ids []string
	if err := r.personalityQuery(ctx, record.ConversationID).
		Order("created_at DESC").
		Limit(1).
		Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("failed to query personality: %w", err)
	}
	if len(ids) == 0 {
		return r.CreateMemory(ctx, record)
	}

	record.ID = ids[0]
	record.MemoryType = types.MemoryTypePersonality
	if err := r.validate.Struct(record); err != nil {
		return fmt.Errorf("invalid memory: %w", err)
	}
	if err := r.query(ctx).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"document_content":  record.DocumentContent,
			"user_message":      record.UserMessage,
			"assistant_message": record.AssistantMessage,
			"importance_score":  record.ImportanceScore,
			"access_count":      record.AccessCount,
			"platform":          record.Platform,
			"created_at":        record.CreatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update personality: %w", err)
	}
	return nil
}

// ListConversation returns conversation memories newest first.
func (r *MemoryRepo) ListConversation(ctx context.Context, conversationID string, page types.Page) ([]types.MemoryRecord, error) {
	query := r.query(ctx).
		Where("conversation_id = ?", conversationID).
		Where("memory_type = ?", types.MemoryTypeConversation).
		Order("created_at DESC")
	if page.Limit > 0 {
		query = query.Limit(page.Limit)
	}
	if page.Offset > 0 {
		query = query.Offset(page.Offset)
	}

	var records []memoryModel
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	return r.toRecords(records), nil
}

// SearchSimilar ranks conversation memories by cosine similarity to embedding.
func (r *MemoryRepo) SearchSimilar(ctx context.Context, conversationID string, embedding []float32, topK int) ([]types.ScoredMemory, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 3
	}

	query := fmt.Sprintf(`
		SELECT id, conversation_id, user_message, assistant_message, document_content,
		       memory_type, importance_score, access_count, platform, ai_id, message_type, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM %s
		WHERE embedding IS NOT NULL AND conversation_id = $2 AND memory_type = $3
		ORDER BY embedding <=> $1
		LIMIT $4`, r.table)

	var rows []scoredMemoryRow
	if err := r.db.WithContext(ctx).
		Raw(query, pgvector.NewVector(embedding), conversationID, types.MemoryTypeConversation, topK).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar memories: %w", err)
	}

	results := make([]types.ScoredMemory, 0, len(rows))
	for _, row := range rows {
		record, err := r.checkRow(row.memoryModel)
		if err != nil {
			slog.Warn("skipping malformed memory row", "error", err)
			continue
		}
		results = append(results, types.ScoredMemory{MemoryRecord: record, Similarity: row.Similarity})
	}
	return results, nil
}

func (r *MemoryRepo) toRecords(models []memoryModel) []types.MemoryRecord {
	results := make([]types.MemoryRecord, 0, len(models))
	for _, m := range models {
		record, err := r.checkRow(m)
		if err != nil {
			slog.Warn("skipping malformed memory row", "error", err)
			continue
		}
		results = append(results, record)
	}
	return results
}

func memoryToModel(record *types.MemoryRecord) memoryModel {
	var vector *pgvector.Vector
	if len(record.Embedding) > 0 {
		v := pgvector.NewVector(record.Embedding)
		vector = &v
	}
	return memoryModel{
		ID:               record.ID,
		ConversationID:   record.ConversationID,
		UserMessage:      record.UserMessage,
		AssistantMessage: record.AssistantMessage,
		DocumentContent:  record.DocumentContent,
		MemoryType:       record.MemoryType,
		ImportanceScore:  record.ImportanceScore,
		AccessCount:      record.AccessCount,
		Platform:         record.Platform,
		AIID:             record.AIID,
		MessageType:      record.MessageType,
		Embedding:        vector,
		CreatedAt:        record.CreatedAt,
	}
}

// memoryFromModel converts database model to domain struct.
func memoryFromModel(model memoryModel) types.MemoryRecord {
	var embedding []float32
	if model.Embedding != nil {
		embedding = model.Embedding.Slice()
	}
	return types.MemoryRecord{
		ID:               model.ID,
		ConversationID:   model.ConversationID,
		UserMessage:      model.UserMessage,
		AssistantMessage: model.AssistantMessage,
		DocumentContent:  model.DocumentContent,
		MemoryType:       model.MemoryType,
		ImportanceScore:  model.ImportanceScore,
		AccessCount:      model.AccessCount,
		Platform:         model.Platform,
		AIID:             model.AIID,
		MessageType:      model.MessageType,
		Embedding:        embedding,
		CreatedAt:        model.CreatedAt,
	}
}
