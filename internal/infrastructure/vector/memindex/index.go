// Package memindex is an in-memory cosine-similarity index over chunk
// embeddings. Retrieval state is cheap to rebuild from persisted chunks, so
// nothing here survives a restart on purpose.
package memindex

import (
	"errors"
	"math"
	"sort"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
)

// ErrNoValidVectors means no chunk carried a usable embedding; callers fall
// back to section-based retrieval.
var ErrNoValidVectors = errors.New("no chunks with valid embeddings")

type entry struct {
	chunk domain.Chunk
	norm  float64
}

type Index struct {
	entries []entry
}

type Builder struct{}

func NewBuilder() Builder { return Builder{} }

// Build indexes every chunk with a non-zero embedding, preserving input
// order so equal-score results are deterministic.
func (Builder) Build(chunks []domain.Chunk) (ports.VectorIndex, error) {
	index := &Index{}
	for _, chunk := range chunks {
		if !chunk.HasEmbedding() {
			continue
		}
		index.entries = append(index.entries, entry{
			chunk: chunk,
			norm:  vectorNorm(chunk.Embedding),
		})
	}
	if len(index.entries) == 0 {
		return nil, ErrNoValidVectors
	}
	return index, nil
}

func (i *Index) Len() int { return len(i.entries) }

// Search returns the k entries most similar to the query vector, highest
// score first. Ties keep insertion order.
func (i *Index) Search(queryVector []float32, k int) []domain.RetrievedChunk {
	queryNorm := vectorNorm(queryVector)
	if queryNorm == 0 || k <= 0 || len(i.entries) == 0 {
		return nil
	}

	scored := make([]domain.RetrievedChunk, 0, len(i.entries))
	for _, e := range i.entries {
		scored = append(scored, domain.RetrievedChunk{
			Chunk: e.chunk,
			Score: dotProduct(queryVector, e.chunk.Embedding) / (queryNorm * e.norm),
		})
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func dotProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
