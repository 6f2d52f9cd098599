package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
)

// KnowledgeEntry is a knowledge item authored through the API, kept next to the profile file
type KnowledgeEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID string         `gorm:"type:text;not null;index:idx_kb_business_item" json:"business_id"`
	ItemID     string         `gorm:"type:text;not null;index:idx_kb_business_item" json:"item_id"`
	Question   string         `gorm:"type:text;not null" json:"question"`
	Answer     string         `gorm:"type:text;not null" json:"answer"`
	Tags       pq.StringArray `gorm:"type:text[]" json:"tags"`        // PostgreSQL text array
	ContentIDs pq.StringArray `gorm:"type:text[]" json:"content_ids"` // content panels to open
	Priority   int            `json:"priority"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (KnowledgeEntry) TableName() string {
	return "widget_knowledge_base"
}

// BeforeCreate sets UUID before creating
func (e *KnowledgeEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Item converts the row to the in-memory knowledge item.
func (e KnowledgeEntry) Item() business.KnowledgeItem {
	return business.KnowledgeItem{
		ID:         e.ItemID,
		Question:   e.Question,
		Answer:     e.Answer,
		Tags:       []string(e.Tags),
		ContentIDs: []string(e.ContentIDs),
		Priority:   e.Priority,
	}
}

// NewKnowledgeEntry builds a row for businessID from an in-memory item.
func NewKnowledgeEntry(businessID string, item business.KnowledgeItem) *KnowledgeEntry {
	return &KnowledgeEntry{
		BusinessID: businessID,
		ItemID:     item.ID,
		Question:   item.Question,
		Answer:     item.Answer,
		Tags:       pq.StringArray(item.Tags),
		ContentIDs: pq.StringArray(item.ContentIDs),
		Priority:   item.Priority,
		IsActive:   true,
	}
}
