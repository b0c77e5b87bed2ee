package usecase

import (
	"fmt"
	"strings"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

// determineResponseStyle derives the tone/structure/depth directive from
// intent thresholds. An all-zero score vector keeps the default style.
func determineResponseStyle(scores domain.IntentScores, meta domain.DocumentMetadata) domain.ResponseStyle {
	style := domain.DefaultResponseStyle()

	if scores.CasualChat > 0.5 {
		style.Tone = "friendly"
	} else if scores.TechnicalDetail > 0.6 && meta.IsResearch {
		style.Tone = "academic"
	}

	if scores.Comparison > 0.4 {
		style.Structure = "table"
	} else if scores.SummaryRequest > 0.5 {
		style.Structure = "bullet"
	}

	return style
}

// buildPrompt composes the final instruction + context + query prompt.
func buildPrompt(query, context string, style domain.ResponseStyle) string {
	var parts []string

	instruction := fmt.Sprintf(`You are an AI assistant with %s tone. Respond with:
- Depth: %s
- Structure: %s
- Style: Adapt to user's apparent knowledge level
- Instruction: If relevant, reference prior conversation to maintain continuity.`,
		style.Tone, style.Depth, style.Structure)
	if style.Structure == "table" {
		instruction += "\nFormat comparisons or lists as markdown tables when helpful"
	}
	parts = append(parts, instruction)

	if context != "" {
		parts = append(parts, "CONTEXT:\n"+context)
	}
	parts = append(parts, "USER QUERY:\n"+query)

	lower := strings.ToLower(query)
	if strings.Contains(lower, "explain like i'm 5") {
		parts = append(parts, "USE: Simple analogies, avoid jargon, max 3 sentences")
	}
	if strings.Contains(lower, "advantages and disadvantages") {
		parts = append(parts, "STRUCTURE: Bullet points for pros/cons with 1-sentence explanations")
	}

	return strings.Join(parts, "\n\n")
}

// completionOptionsFor picks sampling parameters: casual prompts run warmer.
func completionOptionsFor(prompt string, maxTokens int) (float64, int) {
	temperature := 0.3
	if strings.Contains(strings.ToLower(prompt), "casual") {
		temperature = 0.7
	}
	return temperature, maxTokens
}
