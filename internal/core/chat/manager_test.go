package chat

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/metrics"
)

func TestManager_CreateGetDelete(t *testing.T) {
	m := metrics.NewChat(nil)
	mgr := NewManager(0, m)

	s := mgr.Create("acme", "Welcome to Acme!")
	require.NotEmpty(t, s.ID)

	got, err := mgr.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Welcome to Acme!", msgs[0].Content)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))

	assert.True(t, mgr.Delete(s.ID))
	assert.False(t, mgr.Delete(s.ID))
	_, err = mgr.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestManager_GetOrCreate(t *testing.T) {
	mgr := NewManager(0, nil)

	s := mgr.GetOrCreate("", "acme", "")
	assert.Empty(t, s.Messages(), "no welcome configured")
	assert.Same(t, s, mgr.GetOrCreate(s.ID, "acme", ""))

	other := mgr.GetOrCreate("unknown-id", "acme", "")
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, mgr.Len())
}

func TestManager_CleanupExpired(t *testing.T) {
	mgr := NewManager(0, nil)
	stale := mgr.Create("acme", "")
	fresh := mgr.Create("acme", "")

	now := time.Now()
	stale.mu.Lock()
	stale.lastActive = now.Add(-2 * time.Hour)
	stale.mu.Unlock()
	mgr.now = func() time.Time { return now }

	assert.Equal(t, 1, mgr.CleanupExpired(time.Hour))
	_, err := mgr.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = mgr.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSession_WelcomeOnlyOnEmptyHistory(t *testing.T) {
	s := NewSession("s1", "acme", 0)
	assert.True(t, s.AddWelcomeMessage("Hi!"))
	assert.False(t, s.AddWelcomeMessage("Hi again!"))

	s.ClearMessages()
	assert.Empty(t, s.Messages())
	assert.False(t, s.AddWelcomeMessage("  "))
}

func TestSession_ContextTextKeepsLastTen(t *testing.T) {
	s := NewSession("s1", "acme", 0)
	for i := 0; i < 12; i++ {
		s.append(RoleUser, string(rune('a'+i)))
	}

	text := s.ContextText()
	assert.NotContains(t, text, "user: a\n")
	assert.NotContains(t, text, "user: b\n")
	assert.Contains(t, text, "user: c\n")
	assert.Contains(t, text, "user: l")
}

func TestSession_HistoryExcludesNewestMessage(t *testing.T) {
	s := NewSession("s1", "acme", 0)
	s.append(RoleAssistant, "welcome")
	s.append(RoleUser, "first")
	s.append(RoleAssistant, "reply")
	s.append(RoleUser, "current")

	turns := s.history(2)
	require.Len(t, turns, 2)
	assert.Equal(t, "first", turns[0].Content)
	assert.Equal(t, "assistant", turns[1].Role)
}

func TestMessage_IDsAreUnique(t *testing.T) {
	s := NewSession("s1", "acme", 3)
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		msg := s.append(RoleUser, "x")
		assert.False(t, seen[msg.ID])
		seen[msg.ID] = true
	}
	assert.Len(t, s.Messages(), 3)
}
