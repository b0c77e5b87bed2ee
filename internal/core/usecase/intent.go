package usecase

import (
	"regexp"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

const keywordWeight = 0.3

var intentKeywords = map[string][]string{
	"casual_chat":      {"hi", "hello", "hey", "what's up", "how are you"},
	"summary_request":  {"summarize", "overview", "main points", "tl;dr"},
	"technical_detail": {"method", "result", "data", "analysis", "how does"},
	"comparison":       {"vs", "versus", "compare", "difference", "similarity"},
	"metadata_query":   {"author", "title", "date", "pages", "figure", "table"},
}

var (
	explainSimplyRe = regexp.MustCompile(`explain (like|to) (a|me|i'm)`)
	prosConsRe      = regexp.MustCompile(`\b(advantage|disadvantage|pros?|cons?)\b`)
)

// AnalyzeQueryIntent scores a query across the fixed intent categories by
// case-insensitive substring matching, 0.3 per keyword hit, plus two pattern
// bonuses. Scores are normalized to sum to 1 unless nothing matched.
func AnalyzeQueryIntent(query string) domain.IntentScores {
	lower := strings.ToLower(query)

	count := func(category string) float64 {
		hits := 0
		for _, kw := range intentKeywords[category] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		return float64(hits) * keywordWeight
	}

	scores := domain.IntentScores{
		CasualChat:      count("casual_chat"),
		SummaryRequest:  count("summary_request"),
		TechnicalDetail: count("technical_detail"),
		Comparison:      count("comparison"),
		MetadataQuery:   count("metadata_query"),
	}

	if explainSimplyRe.MatchString(lower) {
		scores.CasualChat += 0.5
	}
	if prosConsRe.MatchString(lower) {
		scores.Comparison += 0.4
	}

	if total := scores.Sum(); total > 0 {
		scores.CasualChat /= total
		scores.SummaryRequest /= total
		scores.TechnicalDetail /= total
		scores.Comparison /= total
		scores.MetadataQuery /= total
	}
	return scores
}
