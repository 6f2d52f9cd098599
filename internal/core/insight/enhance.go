package insight

import (
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/kb"
)

const (
	enhanceThreshold = 5
	enhanceLimit     = 10
)

// Enhance adds up to 10 suggested entries to the store when the profile ships with
// fewer than 5 knowledge items. It returns how many entries were added.
func Enhance(store *kb.Store, b *business.Config) int {
	if store == nil || b == nil || len(b.KnowledgeBase) >= enhanceThreshold {
		return 0
	}

	suggestions := SuggestKnowledge(b)
	if len(suggestions) > enhanceLimit {
		suggestions = suggestions[:enhanceLimit]
	}

	added := 0
	for _, item := range suggestions {
		if store.Add(item) {
			added++
		}
	}

	if added > 0 {
		log.Info().Str("business", b.ID).Int("added", added).Msg("knowledge base enhanced with suggested entries")
	}
	return added
}
