package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// ChatRepository persists chat sessions with history inlined as JSONB.
// Mutations are optimistic: the WHERE clause pins the version the caller
// read, and zero affected rows on an existing session means a conflict.
type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082802)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS chat_sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	pinned BOOLEAN NOT NULL DEFAULT FALSE,
	history JSONB NOT NULL DEFAULT '[]'::jsonb,
	document_id TEXT NOT NULL DEFAULT '',
	version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions(user_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const chatColumns = `id, user_id, name, pinned, history, document_id, version, created_at, last_updated`

func (r *ChatRepository) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	historyJSON, err := json.Marshal(historyOrEmpty(session.History))
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO chat_sessions (`+chatColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		session.ID, session.UserID, session.Name, session.Pinned, historyJSON,
		session.DocumentID, session.Version, session.CreatedAt, session.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

func (r *ChatRepository) GetSession(ctx context.Context, userID, chatID string) (*domain.ChatSession, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+chatColumns+`
FROM chat_sessions
WHERE id = $1 AND user_id = $2
`, chatID, userID)
	return scanChatSessionRow(row)
}

func (r *ChatRepository) ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+chatColumns+`
FROM chat_sessions
WHERE user_id = $1
ORDER BY pinned DESC, last_updated DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession
	for rows.Next() {
		session, err := scanChatSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat sessions: %w", err)
	}
	return sessions, nil
}

func (r *ChatRepository) AppendHistory(ctx context.Context, userID, chatID string, entries []domain.HistoryEntry, documentID string, expectedVersion int) error {
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history entries: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE chat_sessions
SET history = history || $4::jsonb,
    document_id = CASE WHEN $5 <> '' THEN $5 ELSE document_id END,
    version = version + 1,
    last_updated = $6
WHERE id = $1 AND user_id = $2 AND version = $3
`, chatID, userID, expectedVersion, entriesJSON, documentID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append chat history: %w", err)
	}
	return r.requireVersionedRow(ctx, result, userID, chatID, "append chat history")
}

func (r *ChatRepository) ReplaceHistory(ctx context.Context, userID, chatID string, history []domain.HistoryEntry, expectedVersion int) error {
	historyJSON, err := json.Marshal(historyOrEmpty(history))
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE chat_sessions
SET history = $4::jsonb, version = version + 1, last_updated = $5
WHERE id = $1 AND user_id = $2 AND version = $3
`, chatID, userID, expectedVersion, historyJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("replace chat history: %w", err)
	}
	return r.requireVersionedRow(ctx, result, userID, chatID, "replace chat history")
}

func (r *ChatRepository) Rename(ctx context.Context, userID, chatID, name string, expectedVersion int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE chat_sessions
SET name = $4, version = version + 1, last_updated = $5
WHERE id = $1 AND user_id = $2 AND version = $3
`, chatID, userID, expectedVersion, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("rename chat session: %w", err)
	}
	return r.requireVersionedRow(ctx, result, userID, chatID, "rename chat session")
}

func (r *ChatRepository) SetPinned(ctx context.Context, userID, chatID string, pinned bool, expectedVersion int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE chat_sessions
SET pinned = $4, version = version + 1, last_updated = $5
WHERE id = $1 AND user_id = $2 AND version = $3
`, chatID, userID, expectedVersion, pinned, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("pin chat session: %w", err)
	}
	return r.requireVersionedRow(ctx, result, userID, chatID, "pin chat session")
}

func (r *ChatRepository) DeleteSession(ctx context.Context, userID, chatID string) error {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM chat_sessions WHERE id = $1 AND user_id = $2
`, chatID, userID)
	if err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	return requireRow(result, "delete chat session", domain.ErrChatNotFound)
}

func (r *ChatRepository) DeleteAllSessions(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete chat sessions: %w", err)
	}
	return nil
}

// requireVersionedRow distinguishes a missing session from a version
// conflict after a zero-row CAS update.
func (r *ChatRepository) requireVersionedRow(ctx context.Context, result sql.Result, userID, chatID, operation string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1 AND user_id = $2)`,
		chatID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s existence check: %w", operation, err)
	}
	if exists {
		return domain.WrapError(domain.ErrVersionConflict, operation,
			fmt.Errorf("chat %s moved past version", chatID))
	}
	return domain.WrapError(domain.ErrChatNotFound, operation, sql.ErrNoRows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChatSessionRow(row rowScanner) (*domain.ChatSession, error) {
	var (
		session    domain.ChatSession
		historyRaw []byte
	)
	err := row.Scan(
		&session.ID, &session.UserID, &session.Name, &session.Pinned, &historyRaw,
		&session.DocumentID, &session.Version, &session.CreatedAt, &session.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrChatNotFound, "scan chat session", err)
		}
		return nil, fmt.Errorf("scan chat session: %w", err)
	}

	if err := json.Unmarshal(historyRaw, &session.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return &session, nil
}

func historyOrEmpty(history []domain.HistoryEntry) []domain.HistoryEntry {
	if history == nil {
		return []domain.HistoryEntry{}
	}
	return history
}
