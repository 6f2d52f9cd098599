package detector

import "github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"

// Detector is a narrow intent classifier that answers its own queries.
type Detector interface {
	Name() string
	Detect(message string) bool
	Handle(message string) *llm.AIResponse
}
