// Package bootstrap wires infrastructure and use cases into a runnable app.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/vaishh-cloud/tattva-project/internal/config"
	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
	"github.com/vaishh-cloud/tattva-project/internal/core/usecase"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/chunking"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/embedding/ollama"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/extractor/docx"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/extractor/pdf"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/extractor/xlsx"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/llm/together"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/queue/nats"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/repository/postgres"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/resilience"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/storage/localfs"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/vector/memindex"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Documents *postgres.DocumentRepository
	Chats     *postgres.ChatRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	RespondUC ports.QueryResponder

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	documents := postgres.NewDocumentRepository(db)
	if err := documents.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	chats := postgres.NewChatRepository(db)
	if err := chats.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure chats schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	embedClient := ollama.New(ollama.Config{
		BaseURL:   cfg.OllamaURL,
		Model:     cfg.OllamaEmbedModel,
		Dimension: cfg.EmbedDimension,
	}, executor)
	embedder := ollama.NewBatcher(embedClient)

	llmClient := together.New(together.Config{
		BaseURL:     cfg.TogetherURL,
		APIKey:      cfg.TogetherAPIKey,
		Model:       cfg.TogetherModel,
		VisionModel: cfg.TogetherVisionModel,
		Timeout:     time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
	}, executor)

	extractors := usecase.ExtractorRegistry{
		domain.FileTypePDF:  pdf.NewExtractor(),
		domain.FileTypeDOCX: docx.NewExtractor(),
		domain.FileTypeXLSX: xlsx.NewExtractor(),
	}
	chunker := chunking.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap, cfg.ChunkWorkers)
	indexes := memindex.NewBuilder()

	ingestUC := usecase.NewIngestDocumentUseCase(documents, storage, queue, llmClient)
	processUC := usecase.NewProcessDocumentUseCase(documents, storage, extractors, chunker, embedder)
	respondUC := usecase.NewRespondUseCase(
		documents, chats, storage, extractors, chunker, embedder, indexes,
		llmClient, llmClient,
		usecase.RespondConfig{
			LLMTimeout:    time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
			MaxTokens:     cfg.LLMMaxTokens,
			MaxContextLen: cfg.MaxContextChars,
		},
	)

	return &App{
		Config:    cfg,
		Queue:     queue,
		Documents: documents,
		Chats:     chats,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		RespondUC: respondUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
