package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/insight"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/models"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/repositories"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/shared/utils"
)

var (
	ErrInvalidKnowledge   = errors.New("invalid knowledge item")
	ErrDuplicateKnowledge = errors.New("knowledge item already exists")
)

// Insights bundles the analysis and readiness score of the active profile.
type Insights struct {
	Analysis  insight.Analysis  `json:"analysis"`
	Readiness insight.Readiness `json:"readiness"`
}

// BusinessService owns the active profile and the knowledge authored through the API.
type BusinessService struct {
	orchestrator *chat.Orchestrator
	kbRepo       repositories.KBRepo
}

// NewBusinessService accepts a nil repo; authored entries then live in memory only.
func NewBusinessService(o *chat.Orchestrator, kbRepo repositories.KBRepo) *BusinessService {
	return &BusinessService{orchestrator: o, kbRepo: kbRepo}
}

func (s *BusinessService) Business() *business.Config {
	return s.orchestrator.Business()
}

// SetBusiness swaps the profile and re-applies persisted knowledge entries.
func (s *BusinessService) SetBusiness(b *business.Config) {
	s.orchestrator.SetBusiness(b)
	if _, err := s.LoadPersisted(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to reload persisted knowledge entries")
	}
}

func (s *BusinessService) Insights() Insights {
	b := s.Business()
	return Insights{
		Analysis:  insight.Analyze(b),
		Readiness: insight.ReadinessScore(b),
	}
}

func (s *BusinessService) Knowledge() []business.KnowledgeItem {
	return s.orchestrator.Knowledge().Items()
}

func (s *BusinessService) SearchKnowledge(query string) []business.KnowledgeItem {
	return s.orchestrator.Knowledge().Search(query)
}

// AddKnowledge validates item, persists it when a repo is configured and makes it searchable.
func (s *BusinessService) AddKnowledge(ctx context.Context, item business.KnowledgeItem) (business.KnowledgeItem, error) {
	item.Question = strings.TrimSpace(item.Question)
	item.Answer = strings.TrimSpace(item.Answer)
	if item.Question == "" || item.Answer == "" {
		return item, fmt.Errorf("%w: question and answer are required", ErrInvalidKnowledge)
	}
	if item.ID == "" {
		item.ID = "kb_custom_" + uuid.NewString()[:8]
	}

	store := s.orchestrator.Knowledge()
	for _, existing := range store.Items() {
		if existing.ID == item.ID {
			return item, fmt.Errorf("%w: %s", ErrDuplicateKnowledge, item.ID)
		}
	}

	if s.kbRepo != nil {
		entry := models.NewKnowledgeEntry(s.Business().ID, item)
		if err := s.kbRepo.Create(ctx, entry); err != nil {
			return item, fmt.Errorf("persist knowledge item: %w", err)
		}
	}

	if !store.Add(item) {
		return item, fmt.Errorf("%w: %s", ErrDuplicateKnowledge, item.ID)
	}
	utils.LogInfo("knowledge item added", map[string]interface{}{
		"business_id": s.Business().ID,
		"item_id":     item.ID,
		"persisted":   s.kbRepo != nil,
	})
	return item, nil
}

// LoadPersisted adds stored entries of the active business to the knowledge store.
func (s *BusinessService) LoadPersisted(ctx context.Context) (int, error) {
	if s.kbRepo == nil {
		return 0, nil
	}
	entries, err := s.kbRepo.ListActive(ctx, s.Business().ID)
	if err != nil {
		return 0, fmt.Errorf("list knowledge entries: %w", err)
	}

	added := 0
	store := s.orchestrator.Knowledge()
	for _, e := range entries {
		if store.Add(e.Item()) {
			added++
		}
	}
	if added > 0 {
		log.Info().Int("added", added).Msg("persisted knowledge entries loaded")
	}
	return added, nil
}
