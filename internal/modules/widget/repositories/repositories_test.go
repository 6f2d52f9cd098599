package repositories

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/models"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/shared/database"
)

func setupMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := database.FromConn(conn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return db, mock
}

func TestConversationRepo_LogTurn(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewConversationRepo(db.GORM)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "widget_conversations"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	turn := &models.ConversationTurn{
		SessionID:        "s1",
		BusinessID:       "acme",
		UserMessage:      "hello",
		Response:         "Hi!",
		Intent:           "greeting",
		Route:            "local",
		Confidence:       0.9,
		SuggestedContent: datatypes.JSON(`[]`),
	}
	require.NoError(t, repo.LogTurn(context.Background(), turn))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", turn.ID.String(), "BeforeCreate assigns an id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepo_GetBySession(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewConversationRepo(db.GORM)

	rows := sqlmock.NewRows([]string{"id", "session_id", "business_id", "user_message", "response", "intent", "route", "confidence", "created_at"}).
		AddRow("8d7f5b0e-7c1e-4c1f-9d55-0f3f1d1c2a01", "s1", "acme", "hello", "Hi!", "greeting", "local", 0.9, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "widget_conversations" WHERE session_id = $1 ORDER BY created_at DESC`)).
		WillReturnRows(rows)

	turns, err := repo.GetBySession(context.Background(), "s1", 20)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "hello", turns[0].UserMessage)
	assert.Equal(t, "local", turns[0].Route)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepo_CountByIntent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewConversationRepo(db.GORM)

	rows := sqlmock.NewRows([]string{"intent", "total"}).
		AddRow("greeting", 3).
		AddRow("hours_inquiry", 1)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT intent, COUNT(*) AS total FROM "widget_conversations" WHERE business_id = $1 GROUP BY "intent"`)).
		WillReturnRows(rows)

	counts, err := repo.CountByIntent(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"greeting": 3, "hours_inquiry": 1}, counts)
}

func TestKBRepo_CreateAndList(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewKBRepo(db.GORM)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "widget_knowledge_base"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := models.NewKnowledgeEntry("acme", business.KnowledgeItem{
		ID: "kb_parking", Question: "Is there parking?", Answer: "Yes.", Tags: []string{"parking"}, Priority: 4,
	})
	require.NoError(t, repo.Create(context.Background(), entry))

	rows := sqlmock.NewRows([]string{"id", "business_id", "item_id", "question", "answer", "tags", "content_ids", "priority", "is_active"}).
		AddRow(entry.ID.String(), "acme", "kb_parking", "Is there parking?", "Yes.", "{parking}", "{}", 4, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "widget_knowledge_base" WHERE business_id = $1 AND is_active = $2 ORDER BY priority DESC`)).
		WillReturnRows(rows)

	entries, err := repo.ListActive(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	item := entries[0].Item()
	assert.Equal(t, "kb_parking", item.ID)
	assert.Equal(t, []string{"parking"}, item.Tags)
	assert.Equal(t, 4, item.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteConversationRepo(t *testing.T) {
	repo, err := NewSQLiteConversationRepo(filepath.Join(t.TempDir(), "log", "widget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	base := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	for i, msg := range []string{"hello", "are you open on sunday?", "thanks"} {
		intent := "greeting"
		if i == 1 {
			intent = "hours_inquiry"
		}
		require.NoError(t, repo.LogTurn(ctx, &models.ConversationTurn{
			SessionID:        "s1",
			BusinessID:       "acme",
			UserMessage:      msg,
			Response:         "ok",
			Intent:           intent,
			SuggestedContent: datatypes.JSON(`["contact-form"]`),
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.LogTurn(ctx, &models.ConversationTurn{SessionID: "s2", BusinessID: "other", UserMessage: "hi"}))

	turns, err := repo.GetBySession(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "thanks", turns[0].UserMessage, "newest first")
	assert.Equal(t, "are you open on sunday?", turns[1].UserMessage)
	assert.JSONEq(t, `["contact-form"]`, string(turns[0].SuggestedContent))
	assert.True(t, turns[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	counts, err := repo.CountByIntent(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"greeting": 2, "hours_inquiry": 1}, counts)
}

func TestSQLiteKBRepo(t *testing.T) {
	repo, err := NewSQLiteKBRepo(filepath.Join(t.TempDir(), "widget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	low := models.NewKnowledgeEntry("acme", business.KnowledgeItem{ID: "kb_low", Question: "Low?", Answer: "Low.", Priority: 1})
	high := models.NewKnowledgeEntry("acme", business.KnowledgeItem{
		ID:         "kb_high",
		Question:   "Is there parking?",
		Answer:     "Yes.",
		Tags:       []string{"parking", "car"},
		ContentIDs: []string{"location"},
		Priority:   9,
	})
	inactive := models.NewKnowledgeEntry("acme", business.KnowledgeItem{ID: "kb_off", Question: "Off?", Answer: "Off."})
	inactive.IsActive = false
	other := models.NewKnowledgeEntry("other", business.KnowledgeItem{ID: "kb_other", Question: "Other?", Answer: "Other."})

	for _, e := range []*models.KnowledgeEntry{low, high, inactive, other} {
		require.NoError(t, repo.Create(ctx, e))
	}
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", high.ID.String())

	entries, err := repo.ListActive(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "kb_high", entries[0].ItemID)
	assert.Equal(t, high.ID, entries[0].ID)
	assert.Equal(t, []string{"parking", "car"}, []string(entries[0].Tags))
	assert.Equal(t, []string{"location"}, []string(entries[0].ContentIDs))
	assert.True(t, entries[0].IsActive)
	assert.Equal(t, "kb_low", entries[1].ItemID)
	assert.Empty(t, entries[1].Tags)

	item := entries[0].Item()
	assert.Equal(t, "Is there parking?", item.Question)
	assert.Equal(t, 9, item.Priority)
}
