package chat

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry of a conversation. IDs are ULIDs so they sort by creation time.
type Message struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Role        Role      `json:"role"`
	Timestamp   time.Time `json:"timestamp"`
	ContentType string    `json:"contentType,omitempty"`
}

func newMessage(role Role, content string, now time.Time) Message {
	return Message{
		ID:        ulid.Make().String(),
		Content:   content,
		Role:      role,
		Timestamp: now,
	}
}
