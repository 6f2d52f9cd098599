package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
)

// DefaultHistoryLimit bounds how many messages a session keeps.
const DefaultHistoryLimit = 100

// State of a session within a turn: Idle -> AwaitingResponse -> Idle.
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateAwaitingResponse:
		return "awaiting_response"
	default:
		return "idle"
	}
}

type EventType string

const (
	EventStateChanged     EventType = "state_changed"
	EventContentSuggested EventType = "content_suggested"
)

// ContentSuggestion tells the UI which content panels to open.
type ContentSuggestion struct {
	ContentIDs []string `json:"contentIds"`
	Intent     string   `json:"intent"`
}

type Event struct {
	Type       EventType          `json:"type"`
	SessionID  string             `json:"sessionId"`
	State      State              `json:"-"`
	Typing     bool               `json:"typing"`
	Suggestion *ContentSuggestion `json:"suggestion,omitempty"`
}

// Listener receives session events synchronously; it must not call back into SendMessage.
type Listener func(Event)

// Session is the conversation state of one visitor.
type Session struct {
	ID         string
	BusinessID string
	CreatedAt  time.Time

	// turn serializes SendMessage for this session.
	turn sync.Mutex

	mu         sync.RWMutex
	messages   []Message
	limit      int
	state      State
	typing     bool
	lastActive time.Time
	listeners  []Listener
	now        func() time.Time
}

func NewSession(id, businessID string, limit int) *Session {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	now := time.Now()
	return &Session{
		ID:         id,
		BusinessID: businessID,
		CreatedAt:  now,
		limit:      limit,
		lastActive: now,
		now:        time.Now,
	}
}

func (s *Session) AddListener(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Messages returns a copy of the history, oldest first.
func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing
}

func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// AddWelcomeMessage seeds an empty conversation with the business greeting.
func (s *Session) AddWelcomeMessage(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) > 0 || strings.TrimSpace(text) == "" {
		return false
	}
	s.appendLocked(RoleAssistant, text)
	return true
}

func (s *Session) ClearMessages() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}

// ContextText renders the last ten messages as "role: content" lines.
func (s *Session) ContextText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := s.messages
	if len(recent) > llm.HistoryTurns {
		recent = recent[len(recent)-llm.HistoryTurns:]
	}
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}

// history returns up to n messages before the newest one as model turns.
func (s *Session) history(n int) []llm.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prior := s.messages
	if len(prior) > 0 {
		prior = prior[:len(prior)-1]
	}
	if len(prior) > n {
		prior = prior[len(prior)-n:]
	}
	turns := make([]llm.Turn, 0, len(prior))
	for _, m := range prior {
		turns = append(turns, llm.Turn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}

func (s *Session) append(role Role, content string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(role, content)
}

// appendLocked adds a message and drops the oldest ones past the limit.
func (s *Session) appendLocked(role Role, content string) Message {
	now := s.now()
	msg := newMessage(role, content, now)
	s.messages = append(s.messages, msg)
	if over := len(s.messages) - s.limit; over > 0 {
		s.messages = append([]Message(nil), s.messages[over:]...)
	}
	s.lastActive = now
	return msg
}

func (s *Session) setState(state State, typing bool) {
	s.mu.Lock()
	s.state = state
	s.typing = typing
	s.mu.Unlock()

	s.notify(Event{Type: EventStateChanged, SessionID: s.ID, State: state, Typing: typing})
}

func (s *Session) notify(e Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}
