package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
)

const (
	defaultChatName   = "New Chat"
	noSummaryFallback = "No summary available"
)

// RespondConfig bounds the generative call and retrieval.
type RespondConfig struct {
	LLMTimeout    time.Duration
	MaxTokens     int
	MaxContextLen int
}

func (c RespondConfig) normalize() RespondConfig {
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = 30 * time.Second
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1500
	}
	if c.MaxContextLen <= 0 {
		c.MaxContextLen = 8000
	}
	return c
}

// RespondUseCase is the top-level orchestrator: it resolves the document
// (content-addressed cache first), classifies the query intent, assembles a
// bounded context and delegates to the generative service. Generative
// failures degrade to explanatory text; only pipeline failures are errors.
type RespondUseCase struct {
	store      ports.DocumentStore
	chats      ports.ChatStore
	storage    ports.ObjectStorage
	extractors ExtractorRegistry
	chunker    ports.Chunker
	embedder   ports.ChunkEmbedder
	indexes    ports.IndexBuilder
	completion ports.CompletionService
	vision     ports.VisionService
	assembler  *ContextAssembler
	cfg        RespondConfig
}

func NewRespondUseCase(
	store ports.DocumentStore,
	chats ports.ChatStore,
	storage ports.ObjectStorage,
	extractors ExtractorRegistry,
	chunker ports.Chunker,
	embedder ports.ChunkEmbedder,
	indexes ports.IndexBuilder,
	completion ports.CompletionService,
	vision ports.VisionService,
	cfg RespondConfig,
) *RespondUseCase {
	cfg = cfg.normalize()
	return &RespondUseCase{
		store:      store,
		chats:      chats,
		storage:    storage,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		indexes:    indexes,
		completion: completion,
		vision:     vision,
		assembler:  NewContextAssembler(embedder, cfg.MaxContextLen),
		cfg:        cfg,
	}
}

func (uc *RespondUseCase) Respond(ctx context.Context, req ports.RespondRequest) (*ports.RespondResult, error) {
	if strings.TrimSpace(req.Query) == "" && req.File == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "respond",
			errors.New("query or file must be provided"))
	}
	if strings.TrimSpace(req.RequestID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "respond",
			errors.New("request id is required"))
	}
	if err := checkAborted(ctx); err != nil {
		return nil, err
	}

	session, err := uc.loadSession(ctx, req)
	if err != nil {
		return nil, err
	}

	var history []domain.HistoryEntry
	if session != nil {
		history = session.History
	}

	doc, cacheHit, response, err := uc.resolveDocument(ctx, req, session)
	if err != nil {
		return nil, err
	}

	var (
		imageContext string
		meta         domain.DocumentMetadata
		chunks       []domain.Chunk
	)
	if doc != nil {
		meta = doc.Metadata
		chunks = doc.Chunks
		if meta.IsImage && response == "" {
			summary := meta.ImageSummary
			if summary == "" {
				summary = noSummaryFallback
			}
			if strings.Contains(strings.ToLower(req.Query), "summar") {
				response = summary
			} else {
				imageContext = summary
			}
		}
	}

	fastPath := false
	if response == "" {
		scores := AnalyzeQueryIntent(req.Query)

		if scores.MetadataQuery > 0.7 {
			if answer, ok := answerMetadataQuery(req.Query, meta); ok {
				response = answer
				fastPath = true
			}
		}

		if response == "" {
			if err := checkAborted(ctx); err != nil {
				return nil, err
			}
			response, err = uc.generate(ctx, req.Query, scores, chunks, meta, history, imageContext)
			if err != nil {
				return nil, err
			}
		}
	}

	result := &ports.RespondResult{
		Response: response,
		CacheHit: cacheHit,
		FastPath: fastPath,
	}
	if doc != nil {
		result.DocumentID = doc.ID
	}

	if req.UserID != "" {
		chatID, err := uc.recordTurn(ctx, req, session, result.DocumentID, response)
		if err != nil {
			return nil, err
		}
		result.ChatID = chatID
	}
	return result, nil
}

func (uc *RespondUseCase) loadSession(ctx context.Context, req ports.RespondRequest) (*domain.ChatSession, error) {
	if req.ChatID == "" || req.UserID == "" {
		return nil, nil
	}
	session, err := uc.chats.GetSession(ctx, req.UserID, req.ChatID)
	if err != nil {
		if domain.IsKind(err, domain.ErrChatNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load chat session: %w", err)
	}
	return session, nil
}

// resolveDocument returns the document the query runs against: a fresh or
// cached upload, or the document bound to the continued chat session. The
// returned string short-circuits the generative call (image summary replies).
func (uc *RespondUseCase) resolveDocument(
	ctx context.Context,
	req ports.RespondRequest,
	session *domain.ChatSession,
) (*domain.Document, bool, string, error) {
	if req.File != nil {
		doc, cacheHit, err := uc.resolveUpload(ctx, req.UserID, *req.File, req.Query)
		return doc, cacheHit, "", err
	}

	if session != nil {
		if session.DocumentID == "" {
			return nil, false, "", domain.WrapError(domain.ErrInvalidInput, "respond",
				errors.New("no document associated with this chat"))
		}
		doc, err := uc.store.GetByID(ctx, session.DocumentID)
		if err != nil {
			return nil, false, "", fmt.Errorf("load chat document: %w", err)
		}
		return doc, true, "", nil
	}
	return nil, false, "", nil
}

func (uc *RespondUseCase) resolveUpload(
	ctx context.Context,
	userID string,
	file ports.UploadedFile,
	query string,
) (*domain.Document, bool, error) {
	if !file.FileType.IsDocument() && !file.FileType.IsImage() {
		return nil, false, domain.WrapError(domain.ErrInvalidInput, "respond",
			fmt.Errorf("unsupported file type %q", file.FileType))
	}
	if len(file.Data) == 0 {
		return nil, false, domain.WrapError(domain.ErrInvalidInput, "respond", errors.New("empty file"))
	}
	if err := checkUploadLimits(file); err != nil {
		return nil, false, err
	}

	hash := ContentHash(file.Data)
	existing, err := uc.store.FindByHash(ctx, userID, hash)
	switch {
	case err == nil && documentAnswerable(existing):
		slog.Info("document cache hit", "content_hash", hash, "document_id", existing.ID)
		return existing, true, nil
	case err == nil:
		// Stored but not processed yet, the async worker may still be on
		// it. Process inline so this answer has document content.
		return uc.adoptUnprocessed(ctx, existing, file, query)
	case !domain.IsKind(err, domain.ErrDocumentNotFound):
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
		Status:       domain.StatusReady,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if file.FileType.IsImage() {
		prompt := query
		if strings.TrimSpace(prompt) == "" {
			prompt = defaultImagePrompt
		}
		summary, err := uc.vision.SummarizeImage(ctx, file.Data, file.FileType, prompt)
		if err != nil {
			summary = visionFallbackMessage(err)
		}
		doc.Metadata = domain.DocumentMetadata{
			IsImage:      true,
			FileType:     string(file.FileType),
			ImageSummary: summary,
		}
	} else {
		text, meta, chunks, err := uc.processInline(ctx, file, query)
		if err != nil {
			return nil, false, err
		}
		doc.ExtractedText = text
		doc.Metadata = meta
		doc.Chunks = chunks
	}

	stored, created, err := uc.store.CreateIfAbsent(ctx, doc)
	if err != nil {
		return nil, false, fmt.Errorf("create document: %w", err)
	}
	if !created {
		// A concurrent identical upload won; reuse its result and drop the
		// object this attempt saved, nothing references it.
		if delErr := uc.storage.Delete(ctx, storedName); delErr != nil {
			slog.Warn("failed to remove orphaned object", "key", storedName, "error", delErr)
		}
		return stored, true, nil
	}
	return stored, false, nil
}

// documentAnswerable reports whether the stored document can already back an
// answer: processed chunks exist or it is a summarized image.
func documentAnswerable(doc *domain.Document) bool {
	return len(doc.Chunks) > 0 || doc.Metadata.IsImage
}

// adoptUnprocessed runs the pipeline on a document some earlier upload stored
// but has not finished processing, and persists the result. Racing the worker
// is harmless: both write equivalent content for the same bytes.
func (uc *RespondUseCase) adoptUnprocessed(
	ctx context.Context,
	existing *domain.Document,
	file ports.UploadedFile,
	query string,
) (*domain.Document, bool, error) {
	text, meta, chunks, err := uc.processInline(ctx, file, query)
	if err != nil {
		return nil, false, err
	}
	if err := uc.store.SaveProcessingResult(ctx, existing.ID, text, meta, chunks); err != nil {
		return nil, false, fmt.Errorf("save processing result: %w", err)
	}
	if err := uc.store.UpdateStatus(ctx, existing.ID, domain.StatusReady, ""); err != nil {
		return nil, false, fmt.Errorf("mark document ready: %w", err)
	}

	doc := *existing
	doc.ExtractedText = text
	doc.Metadata = meta
	doc.Chunks = chunks
	doc.Status = domain.StatusReady
	return &doc, false, nil
}

func (uc *RespondUseCase) processInline(
	ctx context.Context,
	file ports.UploadedFile,
	query string,
) (string, domain.DocumentMetadata, []domain.Chunk, error) {
	fail := func(err error) (string, domain.DocumentMetadata, []domain.Chunk, error) {
		return "", domain.DocumentMetadata{}, nil, err
	}

	extractor, err := uc.extractors.For(file.FileType)
	if err != nil {
		return fail(err)
	}
	result, err := extractor.Extract(ctx, file.Data, file.Filename)
	if err != nil {
		return fail(fmt.Errorf("extract text: %w", err))
	}
	if err := checkAborted(ctx); err != nil {
		return fail(err)
	}

	chunks, err := uc.chunker.Split(ctx, result.Segments)
	if err != nil {
		return fail(fmt.Errorf("chunk document: %w", err))
	}
	if len(chunks) == 0 && result.Text == "" {
		return fail(domain.WrapError(domain.ErrContentProcessing, "respond",
			errors.New("failed to process document content")))
	}

	embedded, err := uc.embedder.EmbedChunks(ctx, chunks, query)
	if err != nil {
		return fail(fmt.Errorf("embed chunks: %w", err))
	}
	if err := checkAborted(ctx); err != nil {
		return fail(err)
	}
	return result.Text, result.Metadata, embedded, nil
}

// generate assembles the context and delegates to the generative service.
// Service failures degrade to a user-facing string; only cancellation
// propagates as an error.
func (uc *RespondUseCase) generate(
	ctx context.Context,
	query string,
	scores domain.IntentScores,
	chunks []domain.Chunk,
	meta domain.DocumentMetadata,
	history []domain.HistoryEntry,
	imageContext string,
) (string, error) {
	var index ports.VectorIndex
	if hasEmbeddedChunk(chunks) {
		built, err := uc.indexes.Build(chunks)
		if err != nil {
			slog.Warn("vector index construction failed, using section fallback", "error", err)
		} else {
			index = built
		}
	}

	contextText := uc.assembler.Assemble(ctx, AssembleInput{
		Query:        query,
		Intent:       scores,
		Chunks:       chunks,
		Metadata:     meta,
		History:      history,
		Index:        index,
		ImageContext: imageContext,
	})

	style := determineResponseStyle(scores, meta)
	prompt := buildPrompt(query, contextText, style)
	temperature, maxTokens := completionOptionsFor(prompt, uc.cfg.MaxTokens)

	llmCtx, cancel := context.WithTimeout(ctx, uc.cfg.LLMTimeout)
	defer cancel()

	text, err := uc.completion.Complete(llmCtx, prompt, ports.CompletionOptions{
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", domain.WrapError(domain.ErrAborted, "generate answer", ctx.Err())
		}
		slog.Warn("generative call degraded", "error", err)
		return completionFallbackMessage(err), nil
	}
	return text, nil
}

// recordTurn appends the {user, response} pair to the chat session, creating
// the session when needed. On a version conflict it re-reads once and
// retries; a second conflict surfaces to the caller.
func (uc *RespondUseCase) recordTurn(
	ctx context.Context,
	req ports.RespondRequest,
	session *domain.ChatSession,
	documentID string,
	response string,
) (string, error) {
	now := time.Now().UTC()

	if session == nil {
		name := req.ChatName
		if strings.TrimSpace(name) == "" {
			name = defaultChatName
		}
		session = &domain.ChatSession{
			ID:          uuid.NewString(),
			UserID:      req.UserID,
			Name:        name,
			DocumentID:  documentID,
			Version:     1,
			CreatedAt:   now,
			LastUpdated: now,
		}
		if err := uc.chats.CreateSession(ctx, session); err != nil {
			return "", fmt.Errorf("create chat session: %w", err)
		}
	}

	var fileName string
	if req.File != nil {
		fileName = req.File.Filename
	}
	entries := []domain.HistoryEntry{
		{
			Role:      domain.HistoryRoleUser,
			Content:   req.Query,
			FileName:  fileName,
			RequestID: req.RequestID,
			Timestamp: now,
		},
		{
			Role:      domain.HistoryRoleResponse,
			Content:   response,
			Timestamp: now,
		},
	}

	err := uc.chats.AppendHistory(ctx, req.UserID, session.ID, entries, documentID, session.Version)
	if domain.IsKind(err, domain.ErrVersionConflict) {
		fresh, getErr := uc.chats.GetSession(ctx, req.UserID, session.ID)
		if getErr != nil {
			return "", fmt.Errorf("reload chat session after conflict: %w", getErr)
		}
		err = uc.chats.AppendHistory(ctx, req.UserID, session.ID, entries, documentID, fresh.Version)
	}
	if err != nil {
		return "", fmt.Errorf("append chat history: %w", err)
	}
	return session.ID, nil
}

func hasEmbeddedChunk(chunks []domain.Chunk) bool {
	for _, chunk := range chunks {
		if chunk.HasEmbedding() {
			return true
		}
	}
	return false
}
