package ports

import (
	"context"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// UploadedFile carries the raw bytes of a file attached to a request. The
// bytes are needed up front for content hashing, so uploads are read fully
// before the pipeline starts (file size is capped well below memory limits).
type UploadedFile struct {
	Filename string
	FileType domain.FileType
	Data     []byte
}

// RespondRequest is the top-level query input: a question plus optionally a
// new file and/or an existing chat session to continue.
type RespondRequest struct {
	UserID    string
	RequestID string
	ChatID    string
	ChatName  string
	Query     string
	File      *UploadedFile
}

// RespondResult is the orchestrator output. Response is always non-empty:
// generative-service failures degrade to explanatory text, never to an error.
type RespondResult struct {
	Response   string `json:"response"`
	ChatID     string `json:"chat_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`

	// Pipeline facts for observability, not serialized to clients.
	CacheHit bool `json:"-"`
	FastPath bool `json:"-"`
}

// DocumentIngestor is the inbound contract for document upload with
// content-hash deduplication. The returned flag is false on a cache hit.
type DocumentIngestor interface {
	Upload(ctx context.Context, userID string, file UploadedFile) (*domain.Document, bool, error)
}

// DocumentProcessor is the inbound contract for asynchronous document
// processing (extract, chunk, embed, persist).
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QueryResponder is the inbound contract for answering a query against a
// document plus chat history.
type QueryResponder interface {
	Respond(ctx context.Context, req RespondRequest) (*RespondResult, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
