package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/cache"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/detector"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/insight"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/kb"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/responder"
)

const errorReply = "Sorry, I encountered an error. Please try again."

var ErrEmptyMessage = errors.New("message is empty")

// ActionHandler is implemented by detectors that can run a search the model requested.
type ActionHandler interface {
	HandleAction(a llm.SearchTraders) *llm.AIResponse
}

// Deps wires the orchestrator. Every field may be nil; Knowledge, Metrics and Composer get defaults.
type Deps struct {
	Knowledge *kb.Store
	Cache     cache.Cache
	Local     *responder.Local
	Detector  detector.Detector
	Composer  *llm.Composer
	Metrics   *metrics.Chat
}

// Reply is the outcome of one SendMessage call.
type Reply struct {
	UserMessage Message        `json:"userMessage"`
	Message     Message        `json:"message"`
	Response    llm.AIResponse `json:"response"`
	Route       string         `json:"route"`
}

// Stats summarizes how turns were answered since start.
type Stats struct {
	Turns            int64   `json:"turns"`
	AICalls          int64   `json:"aiCalls"`
	LocalResponses   int64   `json:"localResponses"`
	CacheHits        int64   `json:"cacheHits"`
	KnowledgeAnswers int64   `json:"knowledgeAnswers"`
	SavingsPercent   float64 `json:"savingsPercent"`
	Provider         string  `json:"provider"`
	KnowledgeItems   int     `json:"knowledgeItems"`
}

type counters struct {
	turns     atomic.Int64
	local     atomic.Int64
	cacheHits atomic.Int64
	knowledge atomic.Int64
}

// Orchestrator runs the answering pipeline for every session of one business.
type Orchestrator struct {
	mu       sync.RWMutex
	business *business.Config

	knowledge *kb.Store
	cache     cache.Cache
	local     *responder.Local
	detector  detector.Detector
	composer  *llm.Composer
	metrics   *metrics.Chat

	stats counters
}

func NewOrchestrator(b *business.Config, deps Deps) *Orchestrator {
	if deps.Knowledge == nil {
		deps.Knowledge = kb.NewStore(nil)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewChat(nil)
	}
	if deps.Composer == nil {
		deps.Composer = llm.NewComposer(nil, llm.ComposerConfig{})
	}

	o := &Orchestrator{
		knowledge: deps.Knowledge,
		cache:     deps.Cache,
		local:     deps.Local,
		detector:  deps.Detector,
		composer:  deps.Composer,
		metrics:   deps.Metrics,
	}
	o.SetBusiness(b)
	return o
}

// SetBusiness swaps the active profile and rebuilds the knowledge store from it.
func (o *Orchestrator) SetBusiness(b *business.Config) {
	if b == nil {
		b = &business.Config{}
	}
	o.knowledge.Load(b.KnowledgeBase)
	added := insight.Enhance(o.knowledge, b)

	o.mu.Lock()
	o.business = b
	o.mu.Unlock()

	log.Info().
		Str("business_id", b.ID).
		Int("knowledge_items", o.knowledge.Len()).
		Int("suggested_added", added).
		Msg("business profile loaded")
}

func (o *Orchestrator) Business() *business.Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.business
}

func (o *Orchestrator) Knowledge() *kb.Store { return o.knowledge }

// SendMessage runs one turn. Turns on the same session are serialized; the only
// error is an empty message. Handler failures become an error reply.
func (o *Orchestrator) SendMessage(ctx context.Context, s *Session, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.turn.Lock()
	defer s.turn.Unlock()

	start := time.Now()
	o.stats.turns.Add(1)

	userMsg := s.append(RoleUser, text)
	s.setState(StateAwaitingResponse, true)
	defer s.setState(StateIdle, false)

	b := o.Business()
	t := &Turn{
		Text:     text,
		Lower:    strings.ToLower(text),
		Session:  s,
		Business: b,
		Hits:     o.knowledge.Rank(text),
	}

	resp, route, err := o.dispatch(ctx, t)
	if err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Str("route", route).Msg("chat turn failed")
		resp = &llm.AIResponse{
			Message:          errorReply,
			SuggestedContent: []string{},
			Intent:           llm.IntentError,
			Error:            err.Error(),
		}
		route = RouteError
	}

	reply := s.append(RoleAssistant, resp.Message)
	if len(resp.SuggestedContent) > 0 {
		s.notify(Event{
			Type:      EventContentSuggested,
			SessionID: s.ID,
			State:     StateAwaitingResponse,
			Typing:    true,
			Suggestion: &ContentSuggestion{
				ContentIDs: append([]string(nil), resp.SuggestedContent...),
				Intent:     resp.Intent,
			},
		})
	}

	o.metrics.Routes.WithLabelValues(route).Inc()
	o.metrics.TurnDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

	log.Debug().
		Str("session_id", s.ID).
		Str("route", route).
		Str("intent", resp.Intent).
		Dur("duration", time.Since(start)).
		Msg("chat turn answered")

	return &Reply{UserMessage: userMsg, Message: reply, Response: *resp, Route: route}, nil
}

// dispatch walks the route table. A panic inside a handler is reported as an error.
func (o *Orchestrator) dispatch(ctx context.Context, t *Turn) (resp *llm.AIResponse, route string, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("route %s panicked: %v", route, r)
		}
	}()

	for _, r := range o.routes() {
		route = r.Name
		if !r.Match(t) {
			continue
		}
		resp, err = r.Handle(ctx, t)
		if err != nil {
			return nil, route, err
		}
		if resp != nil {
			return resp, route, nil
		}
	}
	return nil, route, errors.New("no route produced a response")
}

// Stats reports answering counters. Savings is the share of would-be model
// requests answered locally or from cache.
func (o *Orchestrator) Stats() Stats {
	st := Stats{
		Turns:            o.stats.turns.Load(),
		AICalls:          o.composer.Calls(),
		LocalResponses:   o.stats.local.Load(),
		CacheHits:        o.stats.cacheHits.Load(),
		KnowledgeAnswers: o.stats.knowledge.Load(),
		Provider:         o.composer.ProviderName(),
		KnowledgeItems:   o.knowledge.Len(),
	}
	saved := st.LocalResponses + st.CacheHits
	if total := saved + st.AICalls; total > 0 {
		st.SavingsPercent = float64(saved) / float64(total) * 100
	}
	return st
}
