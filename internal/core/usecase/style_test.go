package usecase

import (
	"strings"
	"testing"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
)

func TestDetermineResponseStyle(t *testing.T) {
	tests := []struct {
		name   string
		scores domain.IntentScores
		meta   domain.DocumentMetadata
		want   domain.ResponseStyle
	}{
		{
			name: "all zero keeps defaults",
			want: domain.ResponseStyle{Tone: "professional", Structure: "paragraph", Depth: "detailed"},
		},
		{
			name:   "casual tone",
			scores: domain.IntentScores{CasualChat: 0.6},
			want:   domain.ResponseStyle{Tone: "friendly", Structure: "paragraph", Depth: "detailed"},
		},
		{
			name:   "academic needs research paper",
			scores: domain.IntentScores{TechnicalDetail: 0.7},
			meta:   domain.DocumentMetadata{IsResearch: true},
			want:   domain.ResponseStyle{Tone: "academic", Structure: "paragraph", Depth: "detailed"},
		},
		{
			name:   "technical without research keeps tone",
			scores: domain.IntentScores{TechnicalDetail: 0.7},
			want:   domain.ResponseStyle{Tone: "professional", Structure: "paragraph", Depth: "detailed"},
		},
		{
			name:   "comparison wins over summary",
			scores: domain.IntentScores{Comparison: 0.5, SummaryRequest: 0.6},
			want:   domain.ResponseStyle{Tone: "professional", Structure: "table", Depth: "detailed"},
		},
		{
			name:   "summary bullets",
			scores: domain.IntentScores{SummaryRequest: 0.6},
			want:   domain.ResponseStyle{Tone: "professional", Structure: "bullet", Depth: "detailed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := determineResponseStyle(tt.scores, tt.meta)
			if got != tt.want {
				t.Fatalf("style = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	style := domain.ResponseStyle{Tone: "professional", Structure: "table", Depth: "detailed"}
	prompt := buildPrompt("explain like i'm 5 the advantages and disadvantages", "some context", style)

	for _, fragment := range []string{
		"professional tone",
		"Structure: table",
		"markdown tables",
		"CONTEXT:\nsome context",
		"USER QUERY:\nexplain like i'm 5 the advantages and disadvantages",
		"USE: Simple analogies",
		"STRUCTURE: Bullet points for pros/cons",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}

	noContext := buildPrompt("hello", "", domain.DefaultResponseStyle())
	if strings.Contains(noContext, "CONTEXT:") {
		t.Fatalf("empty context should not render a CONTEXT section:\n%s", noContext)
	}
}

func TestCompletionOptionsFor(t *testing.T) {
	if temp, _ := completionOptionsFor("respond in a casual tone", 1500); temp != 0.7 {
		t.Fatalf("casual prompt temperature = %v, want 0.7", temp)
	}
	temp, maxTokens := completionOptionsFor("plain prompt", 1500)
	if temp != 0.3 || maxTokens != 1500 {
		t.Fatalf("got (%v, %d), want (0.3, 1500)", temp, maxTokens)
	}
}
