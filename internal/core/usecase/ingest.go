package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
)

const defaultImagePrompt = "Summarize the content of this image"

const (
	maxDocumentBytes = 10 << 20
	maxImageBytes    = 5 << 20
)

type IngestDocumentUseCase struct {
	store   ports.DocumentStore
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	vision  ports.VisionService
}

func NewIngestDocumentUseCase(
	store ports.DocumentStore,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	vision ports.VisionService,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		store:   store,
		storage: storage,
		queue:   queue,
		vision:  vision,
	}
}

// Upload stores the file and registers a Document for it. Byte-identical
// re-uploads short-circuit to the stored Document: the second return is false
// and no reprocessing happens. Images are summarized inline; text documents
// are queued for asynchronous processing.
func (uc *IngestDocumentUseCase) Upload(ctx context.Context, userID string, file ports.UploadedFile) (*domain.Document, bool, error) {
	if !file.FileType.IsDocument() && !file.FileType.IsImage() {
		return nil, false, domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("unsupported file type %q", file.FileType))
	}
	if len(file.Data) == 0 {
		return nil, false, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("empty file"))
	}
	if err := checkUploadLimits(file); err != nil {
		return nil, false, err
	}

	hash := ContentHash(file.Data)
	if existing, err := uc.store.FindByHash(ctx, userID, hash); err == nil {
		slog.Info("upload deduplicated", "content_hash", hash, "document_id", existing.ID)
		return existing, false, nil
	} else if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		return nil, false, fmt.Errorf("look up document by hash: %w", err)
	}

	id := uuid.NewString()
	storedName := fmt.Sprintf("doc_%s.%s", id, file.FileType)
	if err := uc.storage.Save(ctx, storedName, bytes.NewReader(file.Data)); err != nil {
		return nil, false, fmt.Errorf("save to object storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:           id,
		UserID:       userID,
		OriginalName: sanitizeFilename(file.Filename),
		StoredName:   storedName,
		FileType:     file.FileType,
		Size:         int64(len(file.Data)),
		ContentHash:  hash,
		Status:       domain.StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if file.FileType.IsImage() {
		summary, err := uc.vision.SummarizeImage(ctx, file.Data, file.FileType, defaultImagePrompt)
		if err != nil {
			summary = visionFallbackMessage(err)
		}
		doc.Metadata = domain.DocumentMetadata{
			IsImage:      true,
			FileType:     string(file.FileType),
			ImageSummary: summary,
		}
		doc.Status = domain.StatusReady
	}

	stored, created, err := uc.store.CreateIfAbsent(ctx, doc)
	if err != nil {
		return nil, false, fmt.Errorf("create document: %w", err)
	}
	if !created {
		// Lost the insert race to a concurrent identical upload; drop the
		// object this attempt saved, nothing references it.
		if delErr := uc.storage.Delete(ctx, storedName); delErr != nil {
			slog.Warn("failed to remove orphaned object", "key", storedName, "error", delErr)
		}
		return stored, false, nil
	}

	if file.FileType.IsDocument() {
		if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
			return nil, false, fmt.Errorf("publish ingestion event: %w", err)
		}
	}
	return stored, true, nil
}

func checkUploadLimits(file ports.UploadedFile) error {
	if file.FileType.IsImage() {
		if len(file.Data) > maxImageBytes {
			return domain.WrapError(domain.ErrInvalidInput, "upload",
				fmt.Errorf("image size %d bytes exceeds limit of %d bytes", len(file.Data), maxImageBytes))
		}
		if _, _, err := image.DecodeConfig(bytes.NewReader(file.Data)); err != nil {
			return domain.WrapError(domain.ErrInvalidInput, "upload",
				fmt.Errorf("decode image header: %w", err))
		}
		return nil
	}
	if len(file.Data) > maxDocumentBytes {
		return domain.WrapError(domain.ErrInvalidInput, "upload",
			fmt.Errorf("file size %d bytes exceeds limit of %d bytes", len(file.Data), maxDocumentBytes))
	}
	return nil
}

// ContentHash returns the hex SHA-256 digest used as the deduplication key.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
