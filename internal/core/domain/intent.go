package domain

// IntentScores holds the normalized weight of each query intent category.
// Scores sum to 1 when at least one keyword or pattern matched, and are
// all zero otherwise.
type IntentScores struct {
	CasualChat      float64 `json:"casual_chat"`
	SummaryRequest  float64 `json:"summary_request"`
	TechnicalDetail float64 `json:"technical_detail"`
	Comparison      float64 `json:"comparison"`
	MetadataQuery   float64 `json:"metadata_query"`
}

func (s IntentScores) Sum() float64 {
	return s.CasualChat + s.SummaryRequest + s.TechnicalDetail + s.Comparison + s.MetadataQuery
}

// ResponseStyle is the tone/structure/depth directive derived from intent
// scores and passed to the prompt builder.
type ResponseStyle struct {
	Tone      string `json:"tone"`
	Structure string `json:"structure"`
	Depth     string `json:"depth"`
}

// DefaultResponseStyle applies when no intent threshold is crossed.
func DefaultResponseStyle() ResponseStyle {
	return ResponseStyle{
		Tone:      "professional",
		Structure: "paragraph",
		Depth:     "detailed",
	}
}
