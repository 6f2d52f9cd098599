package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/models"
)

type KBRepo interface {
	Create(ctx context.Context, entry *models.KnowledgeEntry) error
	ListActive(ctx context.Context, businessID string) ([]models.KnowledgeEntry, error)
}

type kbRepo struct {
	db *gorm.DB
}

func NewKBRepo(db *gorm.DB) KBRepo {
	return &kbRepo{db: db}
}

func (r *kbRepo) Create(ctx context.Context, entry *models.KnowledgeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListActive returns the active entries of a business, highest priority first.
func (r *kbRepo) ListActive(ctx context.Context, businessID string) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessID, true).
		Order("priority DESC").
		Find(&entries).Error

	return entries, err
}
