// Package xlsx extracts text from spreadsheet workbooks. Each sheet becomes
// one segment: rows joined by newlines, cells by tabs.
package xlsx

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/extractor/scan"
)

type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (ports.ExtractResult, error) {
	if err := scan.ValidateSize(data); err != nil {
		return ports.ExtractResult{}, err
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return ports.ExtractResult{}, domain.WrapError(domain.ErrContentProcessing, "open xlsx", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	meta := domain.DocumentMetadata{
		Title:      filepath.Base(filename),
		Author:     "Unknown",
		TotalPages: len(sheets),
		Sections:   sheets,
	}
	applyDocProps(workbook, &meta)

	var segments []string
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return ports.ExtractResult{}, err
		}
		rows, rowsErr := workbook.GetRows(sheet)
		if rowsErr != nil {
			continue
		}

		lines := make([]string, 0, len(rows)+1)
		lines = append(lines, "Sheet: "+sheet)
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 1 {
			segments = append(segments, strings.Join(lines, "\n"))
			meta.TableCount++
		}
	}

	return ports.ExtractResult{
		Text:     strings.Join(segments, "\n\n"),
		Segments: segments,
		Metadata: meta,
	}, nil
}

func applyDocProps(workbook *excelize.File, meta *domain.DocumentMetadata) {
	props, err := workbook.GetDocProps()
	if err != nil || props == nil {
		return
	}
	if props.Title != "" {
		meta.Title = props.Title
	}
	if props.Creator != "" {
		meta.Author = props.Creator
	}
	if props.Subject != "" {
		meta.Subject = props.Subject
	}
	if props.Keywords != "" {
		meta.Keywords = props.Keywords
	}
}
