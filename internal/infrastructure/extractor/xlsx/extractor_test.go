package xlsx

import (
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Revenue"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	cells := map[string]any{
		"A1": "quarter", "B1": "amount",
		"A2": "Q1", "B2": 1200,
		"A3": "Q2", "B3": 1350,
	}
	for cell, value := range cells {
		if err := f.SetCellValue("Revenue", cell, value); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	if _, err := f.NewSheet("Notes"); err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	if err := f.SetCellValue("Notes", "A1", "figures are preliminary"); err != nil {
		t.Fatalf("set note: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serialize workbook: %v", err)
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	data := buildWorkbook(t)

	result, err := NewExtractor().Extract(context.Background(), data, "report.xlsx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.Segments) != 2 {
		t.Fatalf("segments = %d, want one per non-empty sheet", len(result.Segments))
	}
	if !strings.HasPrefix(result.Segments[0], "Sheet: Revenue") {
		t.Fatalf("first segment = %q", result.Segments[0])
	}
	if !strings.Contains(result.Segments[0], "Q1\t1200") {
		t.Fatalf("row content missing: %q", result.Segments[0])
	}
	if !strings.Contains(result.Segments[1], "figures are preliminary") {
		t.Fatalf("second segment = %q", result.Segments[1])
	}

	meta := result.Metadata
	if meta.TotalPages != 2 {
		t.Fatalf("total pages = %d, want 2", meta.TotalPages)
	}
	if len(meta.Sections) != 2 || meta.Sections[0] != "Revenue" || meta.Sections[1] != "Notes" {
		t.Fatalf("sections = %v", meta.Sections)
	}
	if meta.TableCount != 2 {
		t.Fatalf("table count = %d, want 2", meta.TableCount)
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), []byte("not a workbook"), "x.xlsx")
	if !domain.IsKind(err, domain.ErrContentProcessing) {
		t.Fatalf("err = %v, want ErrContentProcessing", err)
	}
}
