package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Abstract</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>We present</w:t></w:r>
      <w:r><w:t xml:space="preserve"> a new approach.</w:t></w:r>
    </w:p>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Results</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>The approach works.</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`

const coreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Sample Study</dc:title>
  <dc:creator>J. Doe</dc:creator>
  <dc:subject>testing</dc:subject>
  <cp:keywords>alpha, beta</cp:keywords>
</cp:coreProperties>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": documentXML,
		"docProps/core.xml": coreXML,
	})

	result, err := NewExtractor().Extract(context.Background(), data, "sample.docx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	wantText := "Abstract\nWe present a new approach.\nResults\nThe approach works."
	if result.Text != wantText {
		t.Fatalf("text = %q, want %q", result.Text, wantText)
	}
	if len(result.Segments) != 1 || result.Segments[0] != wantText {
		t.Fatalf("segments = %v", result.Segments)
	}

	meta := result.Metadata
	if meta.Title != "Sample Study" || meta.Author != "J. Doe" {
		t.Fatalf("core properties not applied: %+v", meta)
	}
	if meta.Subject != "testing" || meta.Keywords != "alpha, beta" {
		t.Fatalf("core properties not applied: %+v", meta)
	}
	if !meta.IsResearch {
		t.Fatal("abstract heading should flag research")
	}
	if len(meta.Sections) != 2 || meta.Sections[0] != "Abstract" || meta.Sections[1] != "Results" {
		t.Fatalf("sections = %v", meta.Sections)
	}
	if meta.TotalPages != 1 {
		t.Fatalf("total pages = %d, want 1", meta.TotalPages)
	}
}

func TestExtractWithoutCoreProperties(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/document.xml": documentXML})

	result, err := NewExtractor().Extract(context.Background(), data, "report.docx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Metadata.Title != "report.docx" || result.Metadata.Author != "Unknown" {
		t.Fatalf("defaults not applied: %+v", result.Metadata)
	}
}

func TestExtractRejectsNonArchive(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), []byte("not a zip"), "x.docx")
	if !domain.IsKind(err, domain.ErrContentProcessing) {
		t.Fatalf("err = %v, want ErrContentProcessing", err)
	}
}

func TestExtractMissingBody(t *testing.T) {
	data := buildDocx(t, map[string]string{"docProps/core.xml": coreXML})
	_, err := NewExtractor().Extract(context.Background(), data, "x.docx")
	if !domain.IsKind(err, domain.ErrContentProcessing) {
		t.Fatalf("err = %v, want ErrContentProcessing", err)
	}
}

func TestParseBodyTabsAndBreaks(t *testing.T) {
	body := `<w:document xmlns:w="ns"><w:body>
	  <w:p><w:r><w:t>left</w:t><w:tab/><w:t>right</w:t><w:br/><w:t>below</w:t></w:r></w:p>
	</w:body></w:document>`

	paragraphs, err := parseBody([]byte(body))
	if err != nil {
		t.Fatalf("parseBody: %v", err)
	}
	if len(paragraphs) != 1 {
		t.Fatalf("paragraphs = %+v", paragraphs)
	}
	if !strings.Contains(paragraphs[0].text, "left\tright\nbelow") {
		t.Fatalf("paragraph text = %q", paragraphs[0].text)
	}
}
