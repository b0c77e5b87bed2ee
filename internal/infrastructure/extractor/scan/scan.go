// Package scan holds the structural probes shared by the document
// extractors: caption counting, research-paper detection and heading
// discovery.
package scan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// MaxSectionCheck caps how many leading units (pages, paragraphs) the
// structural probes examine.
const MaxSectionCheck = 20

// MaxDocumentSize is the upload ceiling for text documents.
const MaxDocumentSize = 10 << 20

var (
	figureRe  = regexp.MustCompile(`(?i)(?:Figure|Fig\.?)\s*\d+`)
	tableRe   = regexp.MustCompile(`(?i)(?:Table|Tab\.?)\s*\d+`)
	headingRe = regexp.MustCompile(`(?m)^(?:[1-9]\.\s+)?([A-Z][A-Za-z\s]+?)\s*$`)

	researchMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)abstract`),
		regexp.MustCompile(`(?i)introduction`),
		regexp.MustCompile(`(?i)methodology`),
		regexp.MustCompile(`(?i)references`),
	}
)

// ValidateSize rejects inputs over the document ceiling before any parsing
// happens.
func ValidateSize(data []byte) error {
	if len(data) > MaxDocumentSize {
		return domain.WrapError(domain.ErrInvalidInput, "validate file size",
			fmt.Errorf("file size %d exceeds limit of %d bytes", len(data), MaxDocumentSize))
	}
	return nil
}

// CountFigures counts figure caption references ("Figure 1", "Fig. 2").
func CountFigures(text string) int {
	return len(figureRe.FindAllString(text, -1))
}

// CountTables counts table caption references ("Table 1", "Tab. 2").
func CountTables(text string) int {
	return len(tableRe.FindAllString(text, -1))
}

// IsResearch reports whether the text looks like a research paper: any of
// the canonical front-matter markers is enough.
func IsResearch(text string) bool {
	for _, marker := range researchMarkers {
		if marker.MatchString(text) {
			return true
		}
	}
	return false
}

// Headings extracts capitalized standalone lines (optionally numbered) that
// look like section headings. Short matches are noise and dropped.
func Headings(text string) []string {
	var out []string
	for _, match := range headingRe.FindAllStringSubmatch(text, -1) {
		heading := strings.TrimSpace(match[1])
		if len(heading) > 5 {
			out = append(out, heading)
		}
	}
	return out
}
