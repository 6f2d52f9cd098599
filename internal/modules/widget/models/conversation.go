package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConversationTurn is one answered visitor message
type ConversationTurn struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID        string         `gorm:"type:text;not null;index" json:"session_id"`
	BusinessID       string         `gorm:"type:text;not null;index" json:"business_id"`
	UserMessage      string         `gorm:"type:text;not null" json:"user_message"`
	Response         string         `gorm:"type:text" json:"response"`
	Intent           string         `gorm:"type:text" json:"intent"`
	Route            string         `gorm:"type:text" json:"route"`
	Confidence       float64        `json:"confidence"`
	SuggestedContent datatypes.JSON `gorm:"type:jsonb" json:"suggested_content"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (ConversationTurn) TableName() string {
	return "widget_conversations"
}

// BeforeCreate sets UUID before creating
func (t *ConversationTurn) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
