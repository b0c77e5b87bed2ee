package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
)

const (
	historyWindow   = 5
	retrievalTopK   = 5
	fallbackChunkN  = 3
	renderedChunksN = 5
)

// ContextAssembler turns retrieved chunks, metadata, chat history and an
// optional image summary into one bounded text context.
type ContextAssembler struct {
	embedder      ports.ChunkEmbedder
	maxContextLen int
}

func NewContextAssembler(embedder ports.ChunkEmbedder, maxContextLen int) *ContextAssembler {
	if maxContextLen <= 0 {
		maxContextLen = 8000
	}
	return &ContextAssembler{
		embedder:      embedder,
		maxContextLen: maxContextLen,
	}
}

// AssembleInput carries everything one assembly pass needs. Index may be nil;
// retrieval then falls back to section-based selection.
type AssembleInput struct {
	Query        string
	Intent       domain.IntentScores
	Chunks       []domain.Chunk
	Metadata     domain.DocumentMetadata
	History      []domain.HistoryEntry
	Index        ports.VectorIndex
	ImageContext string
}

// Assemble renders the context sections in fixed order: image summary,
// metadata block, prior conversation, document content. The document-content
// section is capped at the configured budget, truncated at the last paragraph
// boundary before the limit.
func (a *ContextAssembler) Assemble(ctx context.Context, in AssembleInput) string {
	var parts []string

	if in.ImageContext != "" {
		parts = append(parts, "IMAGE SUMMARY:\n"+in.ImageContext)
	}

	if in.Intent.MetadataQuery > 0.3 {
		parts = append(parts, formatMetadata(in.Metadata))
	}

	if len(in.History) > 0 {
		parts = append(parts, a.renderHistory(in.Query, in.History)...)
	}

	if len(in.Chunks) > 0 {
		relevant := a.selectChunks(ctx, in)
		if len(relevant) > 0 {
			parts = append(parts, "DOCUMENT CONTENT:\n"+a.renderChunks(relevant))
		}
	}

	return strings.Join(parts, "\n\n")
}

func (a *ContextAssembler) renderHistory(query string, history []domain.HistoryEntry) []string {
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	lines := make([]string, 0, len(recent))
	for _, entry := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(entry.Role), entry.Content))
	}
	parts := []string{"PREVIOUS CONVERSATION:\n" + strings.Join(lines, "\n")}

	queryLower := strings.ToLower(query)
	for _, entry := range recent {
		if entry.Role != domain.HistoryRoleUser {
			continue
		}
		if sharesWord(queryLower, entry.Content) {
			parts = append(parts, fmt.Sprintf("NOTE: You previously asked about '%s', which may be related.", entry.Content))
		}
	}
	return parts
}

func sharesWord(queryLower, content string) bool {
	for _, word := range strings.Fields(strings.ToLower(content)) {
		if word != "" && strings.Contains(queryLower, word) {
			return true
		}
	}
	return false
}

// selectChunks retrieves by similarity when an index exists, otherwise falls
// back to section-based heuristics driven by the intent scores.
func (a *ContextAssembler) selectChunks(ctx context.Context, in AssembleInput) []domain.Chunk {
	if in.Index != nil && in.Index.Len() > 0 {
		queryVector, err := a.embedder.EmbedQuery(ctx, in.Query)
		if err == nil {
			hits := in.Index.Search(queryVector, retrievalTopK)
			if len(hits) > 0 {
				chunks := make([]domain.Chunk, 0, len(hits))
				for _, hit := range hits {
					chunks = append(chunks, hit.Chunk)
				}
				return chunks
			}
		} else {
			slog.Warn("query embedding failed, using section fallback", "error", err)
		}
	}

	var sections []domain.SectionLabel
	switch {
	case in.Intent.TechnicalDetail > 0.5:
		sections = []domain.SectionLabel{domain.SectionMethods, domain.SectionResults}
	case in.Intent.Comparison > 0.4:
		sections = []domain.SectionLabel{domain.SectionResults, domain.SectionDiscussion}
	default:
		sections = []domain.SectionLabel{domain.SectionAbstract, domain.SectionIntroduction, "conclusion"}
	}

	var relevant []domain.Chunk
	for _, chunk := range in.Chunks {
		for _, section := range sections {
			if chunk.Section == section {
				relevant = append(relevant, chunk)
				break
			}
		}
	}
	if len(relevant) == 0 {
		n := fallbackChunkN
		if n > len(in.Chunks) {
			n = len(in.Chunks)
		}
		relevant = in.Chunks[:n]
	}
	return relevant
}

func (a *ContextAssembler) renderChunks(chunks []domain.Chunk) string {
	if len(chunks) > renderedChunksN {
		chunks = chunks[:renderedChunksN]
	}
	rendered := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		rendered = append(rendered, fmt.Sprintf("[Section: %s]\n%s", chunk.Section, chunk.Content))
	}
	return truncateAtParagraph(strings.Join(rendered, "\n\n"), a.maxContextLen)
}

// truncateAtParagraph caps s at limit characters, preferring the last
// paragraph break before the limit. The budget counts runes, so the hard cut
// never lands inside a multibyte character.
func truncateAtParagraph(s string, limit int) string {
	byteLimit := -1
	seen := 0
	for i := range s {
		if seen == limit {
			byteLimit = i
			break
		}
		seen++
	}
	if byteLimit < 0 {
		return s
	}

	if cut := strings.LastIndex(s[:byteLimit], "\n\n"); cut > 0 {
		return s[:cut]
	}
	return s[:byteLimit]
}
