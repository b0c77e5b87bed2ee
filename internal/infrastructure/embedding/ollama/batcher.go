package ollama

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

const (
	baseBatchSize    = 8
	summaryBatchSize = 4
	summaryChunkCap  = 50
)

// vectorSource is the slice of the client the batcher needs; tests substitute
// a fake.
type vectorSource interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Batcher embeds chunks in sequential batches. Summary-style queries only
// need the document head, so they run a smaller batch over fewer chunks. A
// failed batch degrades its chunks to zero vectors instead of failing the
// whole document.
type Batcher struct {
	source vectorSource
}

func NewBatcher(source vectorSource) *Batcher {
	return &Batcher{source: source}
}

func (b *Batcher) EmbedChunks(ctx context.Context, chunks []domain.Chunk, query string) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	limit := len(chunks)
	batchSize := baseBatchSize
	if strings.Contains(strings.ToLower(query), "summar") {
		batchSize = summaryBatchSize
		if limit > summaryChunkCap {
			limit = summaryChunkCap
		}
	}

	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)

	for start := 0; start < limit; start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + batchSize
		if end > limit {
			end = limit
		}
		b.embedBatch(ctx, out[start:end])
	}
	return out, nil
}

func (b *Batcher) embedBatch(ctx context.Context, batch []domain.Chunk) {
	indices := make([]int, 0, len(batch))
	texts := make([]string, 0, len(batch))
	for i, chunk := range batch {
		if strings.TrimSpace(chunk.Content) == "" {
			continue
		}
		indices = append(indices, i)
		texts = append(texts, chunk.Content)
	}
	if len(texts) == 0 {
		return
	}

	vectors, err := b.source.Embed(ctx, texts)
	if err != nil {
		slog.Warn("embedding batch failed, degrading to zero vectors",
			"batch_size", len(texts), "error", err)
		zero := make([]float32, b.source.Dimension())
		for _, i := range indices {
			batch[i].Embedding = zero
		}
		return
	}
	for n, i := range indices {
		batch[i].Embedding = vectors[n]
	}
}

func (b *Batcher) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return b.source.EmbedQuery(ctx, text)
}
