package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Little-pure-light/language-Model/internal/types"
)

// emotionalStateModel maps to the append-only emotional_states table.
type emotionalStateModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	UserID      string `gorm:"not null"`
	EmotionType string `gorm:"not null"`
	Intensity   float64
	Context     string
	Timestamp   time.Time `gorm:"not null"`
}

// EmotionalStateRepo accesses emotional state events. Rows are never updated.
type EmotionalStateRepo struct {
	db       *gorm.DB
	table    string
	validate *validator.Validate
}

// AddEmotionalState inserts an event.
func (r *EmotionalStateRepo) AddEmotionalState(ctx context.Context, state *types.EmotionalState) error {
	if state == nil {
		return fmt.Errorf("emotional state cannot be nil")
	}
	if state.ID == "" {
		state.ID = uuid.NewString()
	}
	if err := r.validate.Struct(state); err != nil {
		return fmt.Errorf("invalid emotional state: %w", err)
	}
	model := emotionalStateModel{
		ID:          state.ID,
		UserID:      state.UserID,
		EmotionType: state.EmotionType,
		Intensity:   state.Intensity,
		Context:     state.Context,
		Timestamp:   state.Timestamp,
	}
	if err := r.db.WithContext(ctx).Table(r.table).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to insert emotional state: %w", err)
	}
	return nil
}

// ListEmotionalStates returns a user's events newest first.
func (r *EmotionalStateRepo) ListEmotionalStates(ctx context.Context, userID string, page types.Page) ([]types.EmotionalState, error) {
	query := r.db.WithContext(ctx).Table(r.table).
		Where("user_id = ?", userID).
		Order("timestamp DESC")
	if page.Limit > 0 {
		query = query.Limit(page.Limit)
	}
	if page.Offset > 0 {
		query = query.Offset(page.Offset)
	}

	var records []emotionalStateModel
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query emotional states: %w", err)
	}

	results := make([]types.EmotionalState, 0, len(records))
	for _, m := range records {
		state := types.EmotionalState{
			ID:          m.ID,
			UserID:      m.UserID,
			EmotionType: m.EmotionType,
			Intensity:   m.Intensity,
			Context:     m.Context,
			Timestamp:   m.Timestamp,
		}
		if err := r.validate.Struct(state); err != nil {
			slog.Warn("skipping malformed emotional state row", "id", m.ID, "error", err)
			continue
		}
		results = append(results, state)
	}
	return results, nil
}
