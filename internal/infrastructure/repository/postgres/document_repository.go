package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	original_name TEXT NOT NULL,
	stored_name TEXT NOT NULL,
	file_type TEXT NOT NULL,
	size BIGINT NOT NULL,
	content_hash TEXT NOT NULL,
	extracted_text TEXT NOT NULL DEFAULT '',
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	chunks JSONB NOT NULL DEFAULT '[]'::jsonb,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_user_hash ON documents(user_id, content_hash);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const documentColumns = `id, user_id, original_name, stored_name, file_type, size, content_hash, extracted_text, metadata, chunks, status, error_message, created_at, updated_at`

// CreateIfAbsent relies on the unique (user_id, content_hash) index: the
// insert is a no-op when an identical upload already exists, and the stored
// row is re-read so concurrent uploads converge on one document.
func (r *DocumentRepository) CreateIfAbsent(ctx context.Context, doc *domain.Document) (*domain.Document, bool, error) {
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, false, fmt.Errorf("marshal metadata: %w", err)
	}
	chunksJSON, err := json.Marshal(chunksOrEmpty(doc.Chunks))
	if err != nil {
		return nil, false, fmt.Errorf("marshal chunks: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (user_id, content_hash) DO NOTHING
`,
		doc.ID, doc.UserID, doc.OriginalName, doc.StoredName, string(doc.FileType), doc.Size,
		doc.ContentHash, doc.ExtractedText, metaJSON, chunksJSON, string(doc.Status), doc.Error,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert document rows affected: %w", err)
	}
	if affected == 0 {
		stored, err := r.FindByHash(ctx, doc.UserID, doc.ContentHash)
		if err != nil {
			return nil, false, fmt.Errorf("reread conflicting document: %w", err)
		}
		return stored, false, nil
	}
	return doc, true, nil
}

func (r *DocumentRepository) FindByHash(ctx context.Context, userID, contentHash string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE user_id = $1 AND content_hash = $2
`, userID, contentHash)
	return scanDocument(row, "find document by hash")
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)
	return scanDocument(row, "get document by id")
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRow(result, "update document status", domain.ErrDocumentNotFound)
}

func (r *DocumentRepository) SaveProcessingResult(ctx context.Context, id string, text string, meta domain.DocumentMetadata, chunks []domain.Chunk) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	chunksJSON, err := json.Marshal(chunksOrEmpty(chunks))
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET extracted_text = $2, metadata = $3, chunks = $4, updated_at = $5
WHERE id = $1
`, id, text, metaJSON, chunksJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save processing result: %w", err)
	}
	return requireRow(result, "save processing result", domain.ErrDocumentNotFound)
}

func scanDocument(row *sql.Row, operation string) (*domain.Document, error) {
	var (
		doc       domain.Document
		fileType  string
		status    string
		metaRaw   []byte
		chunksRaw []byte
	)
	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.OriginalName, &doc.StoredName, &fileType, &doc.Size,
		&doc.ContentHash, &doc.ExtractedText, &metaRaw, &chunksRaw, &status, &doc.Error,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, operation, err)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(metaRaw, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if err := json.Unmarshal(chunksRaw, &doc.Chunks); err != nil {
		return nil, fmt.Errorf("unmarshal chunks: %w", err)
	}
	doc.FileType = domain.FileType(fileType)
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func requireRow(result sql.Result, operation string, kind error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(kind, operation, sql.ErrNoRows)
	}
	return nil
}

func chunksOrEmpty(chunks []domain.Chunk) []domain.Chunk {
	if chunks == nil {
		return []domain.Chunk{}
	}
	return chunks
}
