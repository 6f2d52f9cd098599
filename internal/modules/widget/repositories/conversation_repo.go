package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/models"
)

// ConversationRepo persists answered chat turns.
type ConversationRepo interface {
	LogTurn(ctx context.Context, turn *models.ConversationTurn) error
	GetBySession(ctx context.Context, sessionID string, limit int) ([]models.ConversationTurn, error)
	CountByIntent(ctx context.Context, businessID string) (map[string]int64, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) LogTurn(ctx context.Context, turn *models.ConversationTurn) error {
	return r.db.WithContext(ctx).Create(turn).Error
}

// GetBySession returns the newest turns first.
func (r *conversationRepo) GetBySession(ctx context.Context, sessionID string, limit int) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&turns).Error

	return turns, err
}

func (r *conversationRepo) CountByIntent(ctx context.Context, businessID string) (map[string]int64, error) {
	var rows []struct {
		Intent string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ConversationTurn{}).
		Select("intent, COUNT(*) AS total").
		Where("business_id = ?", businessID).
		Group("intent").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Intent] = row.Total
	}
	return counts, nil
}
