package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/extractor/scan"
)

// Extractor parses PDF bytes into per-page segments plus the structural
// metadata record (pages, captions, embedded images, headings).
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (result ports.ExtractResult, err error) {
	if err = scan.ValidateSize(data); err != nil {
		return ports.ExtractResult{}, err
	}

	// The parser panics on malformed files instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			err = domain.WrapError(domain.ErrContentProcessing, "parse pdf",
				fmt.Errorf("malformed file: %v", r))
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ports.ExtractResult{}, domain.WrapError(domain.ErrContentProcessing, "parse pdf", err)
	}

	totalPages := reader.NumPage()
	meta := domain.DocumentMetadata{
		Title:      filepath.Base(filename),
		Author:     "Unknown",
		TotalPages: totalPages,
	}
	applyInfoDict(reader, &meta)

	var segments []string
	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return ports.ExtractResult{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			segments = append(segments, text)
		}

		if i <= scan.MaxSectionCheck {
			meta.FigureCount += scan.CountFigures(text)
			meta.TableCount += scan.CountTables(text)
			meta.ImageCount += countPageImages(page)
		}
		if i == 1 {
			meta.IsResearch = scan.IsResearch(text)
			meta.Sections = scan.Headings(text)
		}
	}

	return ports.ExtractResult{
		Text:     strings.Join(segments, "\n"),
		Segments: segments,
		Metadata: meta,
	}, nil
}

func applyInfoDict(reader *pdflib.Reader, meta *domain.DocumentMetadata) {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return
	}
	if v := info.Key("Title").Text(); v != "" {
		meta.Title = v
	}
	if v := info.Key("Author").Text(); v != "" {
		meta.Author = v
	}
	if v := info.Key("Keywords").Text(); v != "" {
		meta.Keywords = v
	}
	if v := info.Key("Subject").Text(); v != "" {
		meta.Subject = v
	}
}

// countPageImages counts image XObjects in the page resource dictionary.
func countPageImages(page pdflib.Page) int {
	xobjects := page.V.Key("Resources").Key("XObject")
	if xobjects.IsNull() {
		return 0
	}
	count := 0
	for _, name := range xobjects.Keys() {
		if xobjects.Key(name).Key("Subtype").Name() == "Image" {
			count++
		}
	}
	return count
}
