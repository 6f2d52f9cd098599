package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/models"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/repositories"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/shared/utils"
)

const logTimeout = 5 * time.Second

// ChatService connects HTTP sessions to the orchestrator and records every turn.
type ChatService struct {
	orchestrator *chat.Orchestrator
	sessions     *chat.Manager
	convRepo     repositories.ConversationRepo

	wg sync.WaitGroup
}

// NewChatService accepts a nil repo; turns are then not persisted.
func NewChatService(o *chat.Orchestrator, sessions *chat.Manager, conv repositories.ConversationRepo) *ChatService {
	return &ChatService{
		orchestrator: o,
		sessions:     sessions,
		convRepo:     conv,
	}
}

// StartSession opens a session greeted with the business welcome message.
func (s *ChatService) StartSession() *chat.Session {
	b := s.orchestrator.Business()
	return s.sessions.Create(b.ID, b.Settings.WelcomeMessage)
}

func (s *ChatService) Session(id string) (*chat.Session, error) {
	return s.sessions.Get(id)
}

func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string) (*chat.Reply, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	reply, err := s.orchestrator.SendMessage(ctx, session, text)
	if err != nil {
		return nil, err
	}

	utils.LogDebug("chat turn answered", map[string]interface{}{
		"session_id": session.ID,
		"route":      reply.Route,
		"intent":     reply.Response.Intent,
	})
	s.logTurn(session, reply)
	return reply, nil
}

func (s *ChatService) Messages(sessionID string) ([]chat.Message, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Messages(), nil
}

func (s *ChatService) ClearMessages(sessionID string) error {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	session.ClearMessages()
	return nil
}

func (s *ChatService) DeleteSession(sessionID string) bool {
	return s.sessions.Delete(sessionID)
}

func (s *ChatService) CleanupSessions(ttl time.Duration) int {
	return s.sessions.CleanupExpired(ttl)
}

func (s *ChatService) Stats() chat.Stats {
	return s.orchestrator.Stats()
}

func (s *ChatService) ActiveSessions() int {
	return s.sessions.Len()
}

// History returns persisted turns of a session, newest first.
func (s *ChatService) History(ctx context.Context, sessionID string, limit int) ([]models.ConversationTurn, error) {
	if s.convRepo == nil {
		return []models.ConversationTurn{}, nil
	}
	return s.convRepo.GetBySession(ctx, sessionID, limit)
}

// IntentCounts tallies logged turns of the active business by intent.
func (s *ChatService) IntentCounts(ctx context.Context) (map[string]int64, error) {
	if s.convRepo == nil {
		return map[string]int64{}, nil
	}
	return s.convRepo.CountByIntent(ctx, s.orchestrator.Business().ID)
}

// Wait blocks until pending conversation writes are done.
func (s *ChatService) Wait() {
	s.wg.Wait()
}

// logTurn writes the turn in the background so the reply is not delayed by the database.
func (s *ChatService) logTurn(session *chat.Session, reply *chat.Reply) {
	if s.convRepo == nil {
		return
	}

	suggested, _ := json.Marshal(reply.Response.SuggestedContent)
	turn := &models.ConversationTurn{
		SessionID:        session.ID,
		BusinessID:       session.BusinessID,
		UserMessage:      reply.UserMessage.Content,
		Response:         reply.Message.Content,
		Intent:           reply.Response.Intent,
		Route:            reply.Route,
		Confidence:       reply.Response.Confidence,
		SuggestedContent: datatypes.JSON(suggested),
		CreatedAt:        reply.Message.Timestamp,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), logTimeout)
		defer cancel()

		if err := s.convRepo.LogTurn(ctx, turn); err != nil {
			utils.LogError("failed to log conversation turn", err, map[string]interface{}{
				"session_id": turn.SessionID,
			})
		}
	}()
}
