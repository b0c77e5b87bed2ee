package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
)

// ExtractorRegistry maps a file type to its extractor.
type ExtractorRegistry map[domain.FileType]ports.TextExtractor

func (r ExtractorRegistry) For(t domain.FileType) (ports.TextExtractor, error) {
	if ex, ok := r[t]; ok {
		return ex, nil
	}
	return nil, domain.WrapError(domain.ErrContentProcessing, "select extractor",
		fmt.Errorf("unsupported file type %q", t))
}

// ProcessDocumentUseCase runs the offline half of the pipeline for an
// uploaded document: extract, chunk, embed, persist. Retrieval state is
// rebuilt from the persisted chunks on demand.
type ProcessDocumentUseCase struct {
	store      ports.DocumentStore
	storage    ports.ObjectStorage
	extractors ExtractorRegistry
	chunker    ports.Chunker
	embedder   ports.ChunkEmbedder
}

func NewProcessDocumentUseCase(
	store ports.DocumentStore,
	storage ports.ObjectStorage,
	extractors ExtractorRegistry,
	chunker ports.Chunker,
	embedder ports.ChunkEmbedder,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		store:      store,
		storage:    storage,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.store.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.Metadata.IsImage {
		// Images are summarized at ingest time; nothing to extract.
		return nil
	}

	if err := uc.store.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.runPipeline(ctx, doc); err != nil {
		if failErr := uc.store.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.store.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, doc *domain.Document) error {
	data, err := uc.readStored(ctx, doc.StoredName)
	if err != nil {
		return err
	}

	extractor, err := uc.extractors.For(doc.FileType)
	if err != nil {
		return err
	}
	result, err := extractor.Extract(ctx, data, doc.OriginalName)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if err := checkAborted(ctx); err != nil {
		return err
	}

	chunks, err := uc.chunker.Split(ctx, result.Segments)
	if err != nil {
		return fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 && result.Text == "" {
		return domain.WrapError(domain.ErrContentProcessing, "chunk document",
			errors.New("document yielded no usable content"))
	}

	embedded, err := uc.embedder.EmbedChunks(ctx, chunks, "")
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if err := checkAborted(ctx); err != nil {
		return err
	}

	if err := uc.store.SaveProcessingResult(ctx, doc.ID, result.Text, result.Metadata, embedded); err != nil {
		return fmt.Errorf("persist processing result: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) readStored(ctx context.Context, key string) ([]byte, error) {
	reader, err := uc.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read stored file: %w", err)
	}
	return data, nil
}

// checkAborted converts a cancelled request context into the distinct abort
// signal checked at stage boundaries.
func checkAborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrAborted, "pipeline stage", err)
	}
	return nil
}
