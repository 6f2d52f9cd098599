package cache

import (
	"context"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
)

const (
	DefaultTTL      = 10 * time.Minute
	DefaultCapacity = 100
)

// Cache stores generated responses keyed by business and normalized message.
type Cache interface {
	Get(ctx context.Context, key string) (*llm.AIResponse, bool)
	Set(ctx context.Context, key string, resp *llm.AIResponse) error
	Len(ctx context.Context) int
}

// Entry is a cached response and when it was stored.
type Entry struct {
	Response  llm.AIResponse `json:"response"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Key builds the cache key: business id plus the lower-cased, whitespace-collapsed message.
func Key(businessID, message string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(message)), " ")
	return businessID + ":" + normalized
}
