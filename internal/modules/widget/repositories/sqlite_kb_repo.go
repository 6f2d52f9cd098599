package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/models"
)

// SQLiteKBRepo keeps authored knowledge entries in a local file when no
// Postgres database is configured. Tags and content ids are stored as JSON.
type SQLiteKBRepo struct {
	db *sql.DB
}

func NewSQLiteKBRepo(dbPath string) (*SQLiteKBRepo, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &SQLiteKBRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteKBRepo) migrate() error {
	_, err := r.db.Exec(`
	CREATE TABLE IF NOT EXISTS widget_knowledge_base (
		id          TEXT PRIMARY KEY,
		business_id TEXT NOT NULL,
		item_id     TEXT NOT NULL,
		question    TEXT NOT NULL,
		answer      TEXT NOT NULL,
		tags        TEXT NOT NULL DEFAULT '[]',
		content_ids TEXT NOT NULL DEFAULT '[]',
		priority    INTEGER NOT NULL DEFAULT 0,
		is_active   INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_kb_business_item ON widget_knowledge_base(business_id, item_id);
	`)
	return err
}

func (r *SQLiteKBRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteKBRepo) Create(ctx context.Context, entry *models.KnowledgeEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	tags, err := json.Marshal(nonNil(entry.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	contentIDs, err := json.Marshal(nonNil(entry.ContentIDs))
	if err != nil {
		return fmt.Errorf("encode content ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
	INSERT INTO widget_knowledge_base
		(id, business_id, item_id, question, answer, tags, content_ids, priority, is_active, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.BusinessID, entry.ItemID, entry.Question, entry.Answer,
		string(tags), string(contentIDs), entry.Priority, entry.IsActive,
		entry.CreatedAt.UTC().Format(sqliteTime), entry.UpdatedAt.Format(sqliteTime),
	)
	if err != nil {
		return fmt.Errorf("insert knowledge entry: %w", err)
	}
	return nil
}

// ListActive returns the active entries of a business, highest priority first.
func (r *SQLiteKBRepo) ListActive(ctx context.Context, businessID string) ([]models.KnowledgeEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, business_id, item_id, question, answer, tags, content_ids, priority, is_active, created_at, updated_at
	FROM widget_knowledge_base
	WHERE business_id = ? AND is_active = 1
	ORDER BY priority DESC, created_at ASC`, businessID)
	if err != nil {
		return nil, fmt.Errorf("query knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []models.KnowledgeEntry
	for rows.Next() {
		var (
			e                    models.KnowledgeEntry
			id, tags, contentIDs string
			created, updated     string
		)
		if err := rows.Scan(&id, &e.BusinessID, &e.ItemID, &e.Question, &e.Answer,
			&tags, &contentIDs, &e.Priority, &e.IsActive, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan knowledge entry: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse id: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		if err := json.Unmarshal([]byte(contentIDs), &e.ContentIDs); err != nil {
			return nil, fmt.Errorf("decode content ids: %w", err)
		}
		e.CreatedAt, _ = time.Parse(sqliteTime, created)
		e.UpdatedAt, _ = time.Parse(sqliteTime, updated)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
