package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/cache"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/kb"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
)

const (
	RouteScheduling = "scheduling"
	RouteDetector   = "detector"
	RouteCache      = "cache"
	RouteLocal      = "local"
	RouteKnowledge  = "knowledge"
	RouteAI         = "ai"
	RouteFallback   = "fallback"
	RouteError      = "error"
)

// directAnswerScore is the lowest knowledge score answered without the model.
// A single tag token match is enough; weaker hits only feed the prompt.
const directAnswerScore = 2

var schedulingWords = []string{"schedule", "meeting", "appointment", "book", "consultation", "meet", "calendar"}

// Turn carries one user message through the route table.
type Turn struct {
	Text     string
	Lower    string
	Session  *Session
	Business *business.Config
	Hits     []kb.Hit
	CacheKey string
}

// Route is one (predicate, handler) pair. A handler returning nil passes the turn on.
type Route struct {
	Name   string
	Match  func(t *Turn) bool
	Handle func(ctx context.Context, t *Turn) (*llm.AIResponse, error)
}

// routes returns the fixed answering order. The first route producing a response wins.
func (o *Orchestrator) routes() []Route {
	return []Route{
		{Name: RouteScheduling, Match: isSchedulingRequest, Handle: o.handleScheduling},
		{Name: RouteDetector, Match: o.detectorMatches, Handle: o.handleDetector},
		{Name: RouteCache, Match: o.cacheEnabled, Handle: o.handleCache},
		{Name: RouteLocal, Match: o.localEnabled, Handle: o.handleLocal},
		{Name: RouteKnowledge, Match: strongKnowledgeHit, Handle: o.handleKnowledge},
		{Name: RouteAI, Match: o.aiAvailable, Handle: o.handleAI},
		{Name: RouteFallback, Match: always, Handle: o.handleFallback},
	}
}

func always(*Turn) bool { return true }

func isSchedulingRequest(t *Turn) bool {
	for _, w := range schedulingWords {
		if strings.Contains(t.Lower, w) {
			return true
		}
	}
	return strings.Contains(t.Lower, "available") &&
		(strings.Contains(t.Lower, "time") || strings.Contains(t.Lower, "when"))
}

func (o *Orchestrator) handleScheduling(_ context.Context, t *Turn) (*llm.AIResponse, error) {
	name := t.Business.DisplayName("our team")
	return &llm.AIResponse{
		Message:          "I can help you schedule a meeting with " + name + ". Pick a date and time that works for you and we'll send you a confirmation.",
		SuggestedContent: []string{"schedule-meeting"},
		Intent:           llm.IntentMeetingInquiry,
		Confidence:       0.95,
	}, nil
}

func (o *Orchestrator) detectorMatches(t *Turn) bool {
	return o.detector != nil && o.detector.Detect(t.Text)
}

func (o *Orchestrator) handleDetector(_ context.Context, t *Turn) (*llm.AIResponse, error) {
	return o.detector.Handle(t.Text), nil
}

func (o *Orchestrator) cacheEnabled(t *Turn) bool {
	if o.cache == nil {
		return false
	}
	t.CacheKey = cache.Key(t.Business.ID, t.Text)
	return true
}

func (o *Orchestrator) handleCache(ctx context.Context, t *Turn) (*llm.AIResponse, error) {
	resp, ok := o.cache.Get(ctx, t.CacheKey)
	if !ok {
		return nil, nil
	}
	o.stats.cacheHits.Add(1)
	o.metrics.CacheHits.Inc()
	return resp, nil
}

func (o *Orchestrator) localEnabled(*Turn) bool { return o.local != nil }

func (o *Orchestrator) handleLocal(_ context.Context, t *Turn) (*llm.AIResponse, error) {
	resp := o.local.TryLocal(t.Text, t.Business)
	if resp != nil {
		o.stats.local.Add(1)
		o.metrics.LocalResponses.Inc()
	}
	return resp, nil
}

func strongKnowledgeHit(t *Turn) bool {
	return len(t.Hits) > 0 && t.Hits[0].Score >= directAnswerScore
}

func (o *Orchestrator) handleKnowledge(_ context.Context, t *Turn) (*llm.AIResponse, error) {
	o.stats.knowledge.Add(1)
	return knowledgeAnswer(t.Hits[0].Item, 0.9), nil
}

func knowledgeAnswer(item business.KnowledgeItem, confidence float64) *llm.AIResponse {
	ids := item.ContentIDs
	if ids == nil {
		ids = []string{}
	}
	return &llm.AIResponse{
		Message:          item.Answer,
		SuggestedContent: ids,
		Intent:           llm.IntentKnowledgeAnswer,
		Confidence:       confidence,
	}
}

func (o *Orchestrator) aiAvailable(*Turn) bool { return o.composer.Available() }

func (o *Orchestrator) handleAI(ctx context.Context, t *Turn) (*llm.AIResponse, error) {
	hits := make([]business.KnowledgeItem, 0, llm.MaxPromptHits)
	for _, h := range t.Hits {
		if len(hits) == llm.MaxPromptHits {
			break
		}
		hits = append(hits, h.Item)
	}

	cc := llm.ConversationContext{
		SessionID: t.Session.ID,
		Business:  t.Business,
		Messages:  t.Session.history(llm.HistoryTurns),
	}

	o.metrics.AICalls.Inc()
	resp := o.composer.Generate(ctx, t.Text, cc, hits)
	if resp.Intent == llm.IntentError {
		o.metrics.AIErrors.Inc()
		return &resp, nil
	}

	// the model asked for a trader search; run it against the directory
	if search, ok := resp.Action.(llm.SearchTraders); ok {
		h, ok := o.detector.(ActionHandler)
		if !ok {
			log.Warn().Str("session_id", t.Session.ID).Msg("trader search requested without a trader directory")
			generic := llm.GenericActionReply()
			return &generic, nil
		}
		resp = *h.HandleAction(search)
	}

	if o.cache != nil {
		key := t.CacheKey
		if key == "" {
			key = cache.Key(t.Business.ID, t.Text)
		}
		if err := o.cache.Set(ctx, key, &resp); err != nil {
			log.Warn().Err(err).Str("session_id", t.Session.ID).Msg("failed to cache AI response")
		}
	}
	return &resp, nil
}

func (o *Orchestrator) handleFallback(_ context.Context, t *Turn) (*llm.AIResponse, error) {
	if len(t.Hits) > 0 {
		o.stats.knowledge.Add(1)
		return knowledgeAnswer(t.Hits[0].Item, 0.6), nil
	}
	name := t.Business.DisplayName("our company")
	return &llm.AIResponse{
		Message:          "I'm here to help you learn about " + name + "! You can ask me about our services, pricing, hours, location, or how to get in touch with us.",
		SuggestedContent: []string{},
		Intent:           llm.IntentGeneralHelp,
		Confidence:       0.5,
	}, nil
}
