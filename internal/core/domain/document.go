package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeXLSX FileType = "xlsx"
	FileTypePNG  FileType = "png"
	FileTypeJPEG FileType = "jpeg"
	FileTypeJPG  FileType = "jpg"
)

// IsImage reports whether the file type is one of the accepted image formats.
func (t FileType) IsImage() bool {
	switch t {
	case FileTypePNG, FileTypeJPEG, FileTypeJPG:
		return true
	default:
		return false
	}
}

// IsDocument reports whether the file type is a text-bearing document format.
func (t FileType) IsDocument() bool {
	switch t {
	case FileTypePDF, FileTypeDOCX, FileTypeXLSX:
		return true
	default:
		return false
	}
}

// Document is the unit of processing. ContentHash (SHA-256 of the raw bytes)
// is the deduplication key: one Document per distinct hash per owning user.
type Document struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	OriginalName  string           `json:"original_name"`
	StoredName    string           `json:"stored_name"`
	FileType      FileType         `json:"file_type"`
	Size          int64            `json:"size"`
	ContentHash   string           `json:"content_hash"`
	ExtractedText string           `json:"extracted_text,omitempty"`
	Metadata      DocumentMetadata `json:"metadata"`
	Chunks        []Chunk          `json:"chunks,omitempty"`
	Status        DocumentStatus   `json:"status"`
	Error         string           `json:"error,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// DocumentMetadata is the structural record produced by extraction.
type DocumentMetadata struct {
	Title        string   `json:"title,omitempty"`
	Author       string   `json:"author,omitempty"`
	Subject      string   `json:"subject,omitempty"`
	Keywords     string   `json:"keywords,omitempty"`
	TotalPages   int      `json:"total_pages"`
	IsResearch   bool     `json:"is_research"`
	Sections     []string `json:"sections,omitempty"`
	FigureCount  int      `json:"figure_count"`
	TableCount   int      `json:"table_count"`
	ImageCount   int      `json:"image_count"`
	IsImage      bool     `json:"is_image"`
	FileType     string   `json:"file_type,omitempty"`
	ImageSummary string   `json:"summary,omitempty"`
}

type SectionLabel string

const (
	SectionAbstract     SectionLabel = "abstract"
	SectionIntroduction SectionLabel = "introduction"
	SectionMethods      SectionLabel = "methods"
	SectionResults      SectionLabel = "results"
	SectionDiscussion   SectionLabel = "discussion"
	SectionReferences   SectionLabel = "references"
	SectionAppendix     SectionLabel = "appendix"
	SectionOther        SectionLabel = "other"
)

// Chunk is a contiguous text segment belonging to exactly one Document.
// Embedding is nil until embedding succeeds; an all-zero vector marks a chunk
// whose embedding batch failed, excluded from index construction.
type Chunk struct {
	ID        string       `json:"id"`
	Index     int          `json:"index"`
	Content   string       `json:"content"`
	Section   SectionLabel `json:"section"`
	Embedding []float32    `json:"embedding,omitempty"`
}

// NewChunk is the single chunk constructor, used both for freshly split
// segments and for chunks rehydrated from the persisted store.
func NewChunk(id string, index int, content string, section SectionLabel) Chunk {
	if section == "" {
		section = SectionOther
	}
	return Chunk{
		ID:      id,
		Index:   index,
		Content: content,
		Section: section,
	}
}

// HasEmbedding reports whether the chunk carries a usable (non-zero) vector.
func (c Chunk) HasEmbedding() bool {
	for _, v := range c.Embedding {
		if v != 0 {
			return true
		}
	}
	return false
}

// RetrievedChunk pairs a chunk with its retrieval score.
type RetrievedChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
