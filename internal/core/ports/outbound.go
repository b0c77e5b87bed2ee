package ports

import (
	"context"
	"io"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// DocumentStore persists documents keyed by (owning user, content hash).
type DocumentStore interface {
	// CreateIfAbsent inserts the document unless one with the same user and
	// content hash already exists; the stored row wins. Check-then-insert is
	// atomic: concurrent identical uploads converge on one document.
	CreateIfAbsent(ctx context.Context, doc *domain.Document) (*domain.Document, bool, error)
	FindByHash(ctx context.Context, userID, contentHash string) (*domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	// SaveProcessingResult stores extraction and embedding output so cache
	// hits can rebuild retrieval state without reprocessing.
	SaveProcessingResult(ctx context.Context, id string, text string, meta domain.DocumentMetadata, chunks []domain.Chunk) error
}

// ChatStore persists chat sessions with optimistic version control. Mutations
// take the version the caller read and fail with domain.ErrVersionConflict
// when the row moved underneath them.
type ChatStore interface {
	CreateSession(ctx context.Context, session *domain.ChatSession) error
	GetSession(ctx context.Context, userID, chatID string) (*domain.ChatSession, error)
	ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error)
	AppendHistory(ctx context.Context, userID, chatID string, entries []domain.HistoryEntry, documentID string, expectedVersion int) error
	ReplaceHistory(ctx context.Context, userID, chatID string, history []domain.HistoryEntry, expectedVersion int) error
	Rename(ctx context.Context, userID, chatID, name string, expectedVersion int) error
	SetPinned(ctx context.Context, userID, chatID string, pinned bool, expectedVersion int) error
	DeleteSession(ctx context.Context, userID, chatID string) error
	DeleteAllSessions(ctx context.Context, userID string) error
}

// ObjectStorage stores source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a stored object; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// ExtractResult is extractor output: concatenated plain text, the natural
// segment units fed to the chunker (PDF pages, DOCX body, XLSX sheets), and
// the structural metadata record.
type ExtractResult struct {
	Text     string
	Segments []string
	Metadata domain.DocumentMetadata
}

// TextExtractor converts raw file bytes into text and metadata.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (ExtractResult, error)
}

// Chunker splits extracted segments into ordered, section-labeled chunks.
type Chunker interface {
	Split(ctx context.Context, segments []string) ([]domain.Chunk, error)
}

// ChunkEmbedder attaches embedding vectors to chunks in batches. A failed
// batch degrades to zero vectors for its chunks instead of failing the call.
type ChunkEmbedder interface {
	EmbedChunks(ctx context.Context, chunks []domain.Chunk, query string) ([]domain.Chunk, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is an in-memory nearest-neighbor structure over chunk vectors.
type VectorIndex interface {
	Search(queryVector []float32, k int) []domain.RetrievedChunk
	Len() int
}

// IndexBuilder constructs a VectorIndex from chunks with non-zero embeddings.
// It fails when no valid (chunk, vector) pair exists; callers fall back to
// section-based retrieval.
type IndexBuilder interface {
	Build(chunks []domain.Chunk) (VectorIndex, error)
}

// CompletionOptions bound a single generative call.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// CompletionService is the external generative text service.
type CompletionService interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// VisionService is the external image-understanding service.
type VisionService interface {
	SummarizeImage(ctx context.Context, data []byte, fileType domain.FileType, prompt string) (string, error)
}
