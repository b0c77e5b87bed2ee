// Package docx extracts text and metadata from OOXML word-processing files.
// The format is a zip archive: word/document.xml carries the body and
// docProps/core.xml the Dublin Core properties, so plain archive/zip plus
// encoding/xml is enough.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/extractor/scan"
)

// paragraphsPerPage approximates the page count: the body XML carries no
// pagination.
const paragraphsPerPage = 30

type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (ports.ExtractResult, error) {
	if err := scan.ValidateSize(data); err != nil {
		return ports.ExtractResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ports.ExtractResult{}, err
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ports.ExtractResult{}, domain.WrapError(domain.ErrContentProcessing, "open docx", err)
	}

	body, err := readArchiveFile(archive, "word/document.xml")
	if err != nil {
		return ports.ExtractResult{}, domain.WrapError(domain.ErrContentProcessing, "open docx", err)
	}
	paragraphs, err := parseBody(body)
	if err != nil {
		return ports.ExtractResult{}, domain.WrapError(domain.ErrContentProcessing, "parse docx body", err)
	}

	meta := domain.DocumentMetadata{
		Title:      filepath.Base(filename),
		Author:     "Unknown",
		TotalPages: max(1, len(paragraphs)/paragraphsPerPage),
	}
	if props, propsErr := readArchiveFile(archive, "docProps/core.xml"); propsErr == nil {
		applyCoreProperties(props, &meta)
	}

	head := paragraphs
	if len(head) > scan.MaxSectionCheck {
		head = head[:scan.MaxSectionCheck]
	}
	var headTexts []string
	for _, para := range head {
		headTexts = append(headTexts, para.text)
		if para.heading && strings.TrimSpace(para.text) != "" {
			meta.Sections = append(meta.Sections, strings.TrimSpace(para.text))
		}
	}
	meta.IsResearch = scan.IsResearch(strings.Join(headTexts, "\n"))

	texts := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		texts = append(texts, para.text)
	}
	text := strings.TrimSpace(strings.Join(texts, "\n"))

	var segments []string
	if text != "" {
		segments = []string{text}
	}
	return ports.ExtractResult{
		Text:     text,
		Segments: segments,
		Metadata: meta,
	}, nil
}

func readArchiveFile(archive *zip.Reader, name string) ([]byte, error) {
	for _, file := range archive.File {
		if file.Name != name {
			continue
		}
		reader, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer reader.Close()
		return io.ReadAll(reader)
	}
	return nil, fmt.Errorf("%s missing from archive", name)
}

type paragraph struct {
	text    string
	heading bool
}

// parseBody walks the body XML collecting run text per paragraph. Only the
// local element names matter; the wordprocessingml namespace is implied.
func parseBody(body []byte) ([]paragraph, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var (
		paragraphs  []paragraph
		current     strings.Builder
		inParagraph bool
		inText      bool
		heading     bool
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				heading = false
				current.Reset()
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" && strings.HasPrefix(strings.ToLower(attr.Value), "heading") {
						heading = true
					}
				}
			case "t":
				inText = true
			case "tab":
				if inParagraph {
					current.WriteByte('\t')
				}
			case "br":
				if inParagraph {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					paragraphs = append(paragraphs, paragraph{text: current.String(), heading: heading})
					inParagraph = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

type coreProperties struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Subject  string `xml:"subject"`
	Keywords string `xml:"keywords"`
}

func applyCoreProperties(raw []byte, meta *domain.DocumentMetadata) {
	var props coreProperties
	if err := xml.Unmarshal(raw, &props); err != nil {
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
