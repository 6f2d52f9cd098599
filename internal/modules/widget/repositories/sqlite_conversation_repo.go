package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/models"
)

// sqliteTime sorts lexically in created_at order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLiteConversationRepo keeps the conversation log in a local file when no
// Postgres database is configured.
type SQLiteConversationRepo struct {
	db *sql.DB
}

func NewSQLiteConversationRepo(dbPath string) (*SQLiteConversationRepo, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer; the async logger and readers share it
	db.SetMaxOpenConns(1)

	r := &SQLiteConversationRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteConversationRepo) migrate() error {
	_, err := r.db.Exec(`
	CREATE TABLE IF NOT EXISTS widget_conversations (
		id                TEXT PRIMARY KEY,
		session_id        TEXT NOT NULL,
		business_id       TEXT NOT NULL,
		user_message      TEXT NOT NULL,
		response          TEXT,
		intent            TEXT,
		route             TEXT,
		confidence        REAL NOT NULL DEFAULT 0,
		suggested_content TEXT,
		created_at        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_widget_conversations_session ON widget_conversations(session_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_widget_conversations_business ON widget_conversations(business_id);
	`)
	return err
}

func (r *SQLiteConversationRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteConversationRepo) LogTurn(ctx context.Context, turn *models.ConversationTurn) error {
	if turn.ID == uuid.Nil {
		turn.ID = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO widget_conversations
			(id, session_id, business_id, user_message, response, intent, route, confidence, suggested_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID.String(), turn.SessionID, turn.BusinessID, turn.UserMessage, turn.Response,
		turn.Intent, turn.Route, turn.Confidence, string(turn.SuggestedContent),
		turn.CreatedAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

func (r *SQLiteConversationRepo) GetBySession(ctx context.Context, sessionID string, limit int) ([]models.ConversationTurn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, business_id, user_message, response, intent, route, confidence, suggested_content, created_at
		FROM widget_conversations
		WHERE session_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var (
			t                  models.ConversationTurn
			id, createdAt      string
			response, intent   sql.NullString
			route, suggestions sql.NullString
		)
		if err := rows.Scan(&id, &t.SessionID, &t.BusinessID, &t.UserMessage, &response, &intent, &route, &t.Confidence, &suggestions, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.ID, _ = uuid.Parse(id)
		t.Response = response.String
		t.Intent = intent.String
		t.Route = route.String
		if suggestions.Valid && suggestions.String != "" {
			t.SuggestedContent = []byte(suggestions.String)
		}
		t.CreatedAt, _ = time.Parse(sqliteTime, createdAt)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (r *SQLiteConversationRepo) CountByIntent(ctx context.Context, businessID string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(intent, ''), COUNT(*)
		FROM widget_conversations
		WHERE business_id = ?
		GROUP BY intent`, businessID)
	if err != nil {
		return nil, fmt.Errorf("count intents: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var intent string
		var total int64
		if err := rows.Scan(&intent, &total); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[intent] = total
	}
	return counts, rows.Err()
}
