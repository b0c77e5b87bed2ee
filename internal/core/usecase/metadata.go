package usecase

import (
	"fmt"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// answerMetadataQuery produces a canned answer for direct metadata questions
// (page count, figures, tables, sections, image type), bypassing the
// generative call. The second return is false when the query does not map to
// any known metadata fact.
func answerMetadataQuery(query string, meta domain.DocumentMetadata) (string, bool) {
	lower := strings.ToLower(query)

	switch {
	case strings.Contains(lower, "pages") || strings.Contains(lower, "length"):
		if meta.TotalPages > 0 {
			return fmt.Sprintf("The document has %d pages.", meta.TotalPages), true
		}
		return "The document has an unknown number of pages.", true
	case strings.Contains(lower, "figure") || strings.Contains(lower, "image"):
		return fmt.Sprintf("There are %d figures and %d images.", meta.FigureCount, meta.ImageCount), true
	case strings.Contains(lower, "table"):
		return fmt.Sprintf("The document contains %d tables.", meta.TableCount), true
	case strings.Contains(lower, "sections") || strings.Contains(lower, "contents"):
		if len(meta.Sections) > 0 {
			return "Main sections: " + strings.Join(meta.Sections, ", "), true
		}
		return "The document structure information isn't available.", true
	case meta.IsImage && (strings.Contains(lower, "type") || strings.Contains(lower, "format")):
		fileType := meta.FileType
		if fileType == "" {
			fileType = "unknown"
		}
		return fmt.Sprintf("The file is an image of type %s.", fileType), true
	}
	return "", false
}

// formatMetadata renders the metadata context block.
func formatMetadata(meta domain.DocumentMetadata) string {
	lines := []string{"DOCUMENT METADATA:"}
	if meta.TotalPages > 0 {
		lines = append(lines, fmt.Sprintf("Pages: %d", meta.TotalPages))
	} else {
		lines = append(lines, "Pages: Unknown")
	}
	if meta.IsResearch {
		lines = append(lines, "Type: Research paper")
	}
	if len(meta.Sections) > 0 {
		lines = append(lines, "Sections: "+strings.Join(meta.Sections, ", "))
	}
	if meta.IsImage {
		fileType := meta.FileType
		if fileType == "" {
			fileType = "unknown"
		}
		lines = append(lines, fmt.Sprintf("Type: Image (%s)", fileType))
	}
	return strings.Join(lines, "\n")
}
