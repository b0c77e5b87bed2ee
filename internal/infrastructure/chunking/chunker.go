package chunking

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

const defaultWorkers = 2

// Chunker splits extracted segments concurrently and reassembles the result
// in segment order, so chunk indices are deterministic for identical input.
type Chunker struct {
	splitter *Splitter
	workers  int
}

func NewChunker(chunkSize, overlap, workers int) *Chunker {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Chunker{
		splitter: NewSplitter(chunkSize, overlap),
		workers:  workers,
	}
}

func (c *Chunker) Split(ctx context.Context, segments []string) ([]domain.Chunk, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	pieces := make([][]string, len(segments))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				pieces[i] = c.splitter.Split(segments[i])
			}
		}()
	}

feed:
	for i := range segments {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for _, segmentPieces := range pieces {
		for _, content := range segmentPieces {
			chunks = append(chunks, domain.NewChunk(
				uuid.NewString(),
				len(chunks),
				content,
				classifySection(content),
			))
		}
	}
	return chunks, nil
}
