package pdf

import (
	"context"
	"testing"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/extractor/scan"
)

func TestExtractRejectsOversizedFile(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), make([]byte, scan.MaxDocumentSize+1), "big.pdf")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestExtractRejectsMalformedFile(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), []byte("%PDF-1.7 truncated garbage"), "bad.pdf")
	if !domain.IsKind(err, domain.ErrContentProcessing) {
		t.Fatalf("err = %v, want ErrContentProcessing", err)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), []byte("plain text file"), "notes.pdf")
	if !domain.IsKind(err, domain.ErrContentProcessing) {
		t.Fatalf("err = %v, want ErrContentProcessing", err)
	}
}
